package dto

// ── 培训项目模块 DTO ──

// CreateProgramaRequest 手动创建项目
type CreateProgramaRequest struct {
	CodigoPrograma       string  `json:"codigo_programa" binding:"required,max=50"`
	NombrePrograma       string  `json:"nombre_programa" binding:"required,max=255"`
	Vigencia             *string `json:"vigencia"`
	TipoPrograma         *string `json:"tipo_programa"`
	VersionPrograma      *string `json:"version_programa"`
	HorasTotales         *int    `json:"horas_totales"          binding:"omitempty,min=0"`
	HorasEtapaLectiva    *int    `json:"horas_etapa_lectiva"    binding:"omitempty,min=0"`
	HorasEtapaProductiva *int    `json:"horas_etapa_productiva" binding:"omitempty,min=0"`
}

// UpdateProgramaRequest 部分更新项目
type UpdateProgramaRequest struct {
	CodigoPrograma       *string `json:"codigo_programa" binding:"omitempty,max=50"`
	NombrePrograma       *string `json:"nombre_programa" binding:"omitempty,max=255"`
	Vigencia             *string `json:"vigencia"`
	TipoPrograma         *string `json:"tipo_programa"`
	VersionPrograma      *string `json:"version_programa"`
	HorasTotales         *int    `json:"horas_totales"          binding:"omitempty,min=0"`
	HorasEtapaLectiva    *int    `json:"horas_etapa_lectiva"    binding:"omitempty,min=0"`
	HorasEtapaProductiva *int    `json:"horas_etapa_productiva" binding:"omitempty,min=0"`
}

// ProgramaResponse 项目信息
type ProgramaResponse struct {
	IDPrograma           uint    `json:"id_programa"`
	CodigoPrograma       *string `json:"codigo_programa"`
	NombrePrograma       *string `json:"nombre_programa"`
	Vigencia             *string `json:"vigencia"`
	TipoPrograma         *string `json:"tipo_programa"`
	VersionPrograma      *string `json:"version_programa"`
	HorasTotales         *int    `json:"horas_totales"`
	HorasEtapaLectiva    *int    `json:"horas_etapa_lectiva"`
	HorasEtapaProductiva *int    `json:"horas_etapa_productiva"`
	TotalFichas          int64   `json:"total_fichas"`
}

// FichaEliminada 级联删除时每个班次的明细
type FichaEliminada struct {
	IDFicha      uint   `json:"id_ficha"`
	CodigoFicha  string `json:"codigo_ficha"`
	Trimestres   int64  `json:"trimestres"`
	Asignaciones int64  `json:"asignaciones"`
	Planeaciones int64  `json:"planeaciones"`
	Instructores int64  `json:"instructores"`
}

// DeleteProgramaResponse 级联删除结果
// 失败时同样返回计数（表示本应删除的数量）
type DeleteProgramaResponse struct {
	Success                bool             `json:"success"`
	Mensaje                string           `json:"mensaje"`
	Programa               string           `json:"programa"`
	FichasEliminadas       int              `json:"fichasEliminadas"`
	CompetenciasEliminadas int              `json:"competenciasEliminadas"`
	RapsEliminados         int              `json:"rapsEliminados"`
	DetallesFichas         []FichaEliminada `json:"detallesFichas"`
}
