package dto

// ── PDF 导入模块 DTO ──

// ResumenIngesta 导入数量汇总
type ResumenIngesta struct {
	Programas             int `json:"programas"`
	Competencias          int `json:"competencias"`
	ResultadosAprendizaje int `json:"resultados_aprendizaje"`
}

// ProcesarProgramaResponse 项目 PDF 导入结果
type ProcesarProgramaResponse struct {
	IDPrograma      *uint          `json:"id_programa"`
	IDsCompetencias []uint         `json:"ids_competencias"`
	IDsRaps         []uint         `json:"ids_raps"`
	Resumen         ResumenIngesta `json:"resumen"`
}

// ProcesarProyectoResponse 课题 PDF 导入结果
type ProcesarProyectoResponse struct {
	IDProyecto        *uint    `json:"id_proyecto"`
	IDPrograma        *uint    `json:"id_programa"`
	Fases             int      `json:"fases"`
	Actividades       int      `json:"actividades"`
	Relaciones        int      `json:"relaciones"`
	RapsNoEncontrados []string `json:"raps_no_encontrados"`
}
