package dto

// ── 教学计划模块 DTO ──

// DetallePlaneacionRequest 计划中单个 RAP 的教学内容
type DetallePlaneacionRequest struct {
	IDRap                  uint    `json:"id_rap"      binding:"required"`
	CodigoRap              string  `json:"codigo_rap"`
	NombreRap              string  `json:"nombre_rap"`
	Competencia            string  `json:"competencia"`
	HorasTrimestre         float64 `json:"horas_trimestre"        binding:"min=0"`
	ActividadesAprendizaje string  `json:"actividades_aprendizaje"`
	DuracionDirecta        float64 `json:"duracion_directa"       binding:"min=0"`
	DuracionIndependiente  float64 `json:"duracion_independiente" binding:"min=0"`
	DescripcionEvidencia   string  `json:"descripcion_evidencia"`
	EstrategiasDidacticas  string  `json:"estrategias_didacticas"`
	AmbientesAprendizaje   string  `json:"ambientes_aprendizaje"`
	MaterialesFormacion    string  `json:"materiales_formacion"`
	Observaciones          string  `json:"observaciones"`
	SaberesConceptos       string  `json:"saberes_conceptos"`
	SaberesProceso         string  `json:"saberes_proceso"`
	CriteriosEvaluacion    string  `json:"criterios_evaluacion"`
}

// CreatePlaneacionRequest 创建教学计划
// trimestre 为季度序号；id_trimestre 可选，提供时校验其属于该班次
type CreatePlaneacionRequest struct {
	IDFicha       uint                       `json:"id_ficha"       binding:"required"`
	Trimestre     int                        `json:"trimestre"      binding:"required,min=1"`
	IDTrimestre   *uint                      `json:"id_trimestre"`
	FechaCreacion *string                    `json:"fecha_creacion" binding:"omitempty,datetime=2006-01-02"`
	Observaciones *string                    `json:"observaciones"`
	Raps          []DetallePlaneacionRequest `json:"raps"           binding:"required,min=1,dive"`
}

// CreatePlaneacionResponse 创建结果
type CreatePlaneacionResponse struct {
	IDPlaneacion uint `json:"id_planeacion"`
	TotalRaps    int  `json:"total_raps"`
	Trimestre    int  `json:"trimestre"`
	Ficha        uint `json:"ficha"`
}

// PlaneacionResumen 班次下的计划列表项
type PlaneacionResumen struct {
	IDPlaneacion  uint   `json:"id_planeacion"`
	IDFicha       uint   `json:"id_ficha"`
	IDTrimestre   *uint  `json:"id_trimestre"`
	NoTrimestre   int    `json:"no_trimestre"`
	Observaciones string `json:"observaciones"`
	FechaCreacion string `json:"fecha_creacion"`
	TotalRaps     int64  `json:"total_raps"`
}

// PlaneacionDetalleResponse 计划及其明细
type PlaneacionDetalleResponse struct {
	PlaneacionResumen
	Detalles []DetallePlaneacionResponse `json:"detalles"`
}

// DetallePlaneacionResponse 明细行
type DetallePlaneacionResponse struct {
	IDDetalle uint `json:"id_detalle"`
	DetallePlaneacionRequest
}

// DeletePlaneacionResponse 删除结果
type DeletePlaneacionResponse struct {
	IDPlaneacion       uint  `json:"id_planeacion"`
	DetallesEliminados int64 `json:"detalles_eliminados"`
}
