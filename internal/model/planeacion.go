package model

import "time"

// PlaneacionPedagogica 教学计划主表，表 planeacion_pedagogica
type PlaneacionPedagogica struct {
	IDPlaneacion  uint      `gorm:"column:id_planeacion;primaryKey;autoIncrement" json:"id_planeacion"`
	IDFicha       uint      `gorm:"column:id_ficha;not null;index"                json:"id_ficha"`
	IDTrimestre   *uint     `gorm:"column:id_trimestre;index"                     json:"id_trimestre"`
	NoTrimestre   int       `gorm:"not null"                                      json:"no_trimestre"`
	Observaciones string    `gorm:"type:text"                                     json:"observaciones"`
	FechaCreacion time.Time `gorm:"not null"                                      json:"fecha_creacion"`
}

// TableName 指定表名
func (PlaneacionPedagogica) TableName() string { return "planeacion_pedagogica" }

// DetallePlaneacion 教学计划明细（每个 RAP 一行），表 detalle_planeacion_pedagogica
type DetallePlaneacion struct {
	IDDetalle              uint    `gorm:"column:id_detalle;primaryKey;autoIncrement" json:"id_detalle"`
	IDPlaneacion           uint    `gorm:"column:id_planeacion;not null;index"        json:"id_planeacion"`
	IDRap                  uint    `gorm:"column:id_rap;not null;index"               json:"id_rap"`
	CodigoRap              string  `gorm:"type:varchar(10)"                           json:"codigo_rap"`
	NombreRap              string  `gorm:"type:text"                                  json:"nombre_rap"`
	Competencia            string  `gorm:"type:text"                                  json:"competencia"`
	HorasTrimestre         float64 `gorm:"not null;default:0"                         json:"horas_trimestre"`
	ActividadesAprendizaje string  `gorm:"type:text"                                  json:"actividades_aprendizaje"`
	DuracionDirecta        float64 `gorm:"not null;default:0"                         json:"duracion_directa"`
	DuracionIndependiente  float64 `gorm:"not null;default:0"                         json:"duracion_independiente"`
	DescripcionEvidencia   string  `gorm:"type:text"                                  json:"descripcion_evidencia"`
	EstrategiasDidacticas  string  `gorm:"type:text"                                  json:"estrategias_didacticas"`
	AmbientesAprendizaje   string  `gorm:"type:text"                                  json:"ambientes_aprendizaje"`
	MaterialesFormacion    string  `gorm:"type:text"                                  json:"materiales_formacion"`
	Observaciones          string  `gorm:"type:text"                                  json:"observaciones"`
	SaberesConceptos       string  `gorm:"type:text"                                  json:"saberes_conceptos"`
	SaberesProceso         string  `gorm:"type:text"                                  json:"saberes_proceso"`
	CriteriosEvaluacion    string  `gorm:"type:text"                                  json:"criterios_evaluacion"`
}

// TableName 指定表名
func (DetallePlaneacion) TableName() string { return "detalle_planeacion_pedagogica" }
