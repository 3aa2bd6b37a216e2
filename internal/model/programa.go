package model

// Programa 培训项目，表 programa_formacion
type Programa struct {
	IDPrograma           uint    `gorm:"column:id_programa;primaryKey;autoIncrement"  json:"id_programa"`
	CodigoPrograma       *string `gorm:"type:varchar(50);uniqueIndex"                 json:"codigo_programa"`
	NombrePrograma       *string `gorm:"type:varchar(255)"                            json:"nombre_programa"`
	Vigencia             *string `gorm:"type:varchar(100)"                            json:"vigencia"`
	TipoPrograma         *string `gorm:"type:varchar(100)"                            json:"tipo_programa"`
	VersionPrograma      *string `gorm:"type:varchar(20)"                             json:"version_programa"`
	HorasTotales         *int    `gorm:"type:integer"                                 json:"horas_totales"`
	HorasEtapaLectiva    *int    `gorm:"type:integer"                                 json:"horas_etapa_lectiva"`
	HorasEtapaProductiva *int    `gorm:"type:integer"                                 json:"horas_etapa_productiva"`
	BaseModel
}

// TableName 指定表名
func (Programa) TableName() string { return "programa_formacion" }

// Competencia 能力单元，表 competencias，隶属于 Programa
type Competencia struct {
	IDCompetencia     uint    `gorm:"column:id_competencia;primaryKey;autoIncrement" json:"id_competencia"`
	IDPrograma        *uint   `gorm:"column:id_programa;index"                       json:"id_programa"`
	CodigoNorma       *string `gorm:"type:varchar(50);index"                         json:"codigo_norma"`
	NombreCompetencia *string `gorm:"type:text"                                      json:"nombre_competencia"`
	UnidadCompetencia *string `gorm:"type:text"                                      json:"unidad_competencia"`
	DuracionMaxima    *int    `gorm:"type:integer"                                   json:"duracion_maxima"`
	BaseModel
}

// TableName 指定表名
func (Competencia) TableName() string { return "competencias" }

// Rap 学习成果，表 raps
// Duracion 由所属能力单元的 duracion_maxima ÷ RAP 数量四舍五入得出
type Rap struct {
	IDRap         uint   `gorm:"column:id_rap;primaryKey;autoIncrement" json:"id_rap"`
	IDCompetencia uint   `gorm:"column:id_competencia;not null;index"    json:"id_competencia"`
	Codigo        string `gorm:"type:varchar(10);not null"               json:"codigo"`
	Denominacion  string `gorm:"type:text;not null"                      json:"denominacion"`
	Duracion      *int   `gorm:"type:integer"                            json:"duracion"`
	BaseModel
}

// TableName 指定表名
func (Rap) TableName() string { return "raps" }

// ConocimientoSaber 概念性知识（每个 RAP 至多一条）
type ConocimientoSaber struct {
	IDSaber uint   `gorm:"column:id_saber;primaryKey;autoIncrement" json:"id_saber"`
	IDRap   uint   `gorm:"column:id_rap;not null;index"             json:"id_rap"`
	Nombre  string `gorm:"type:text;not null"                       json:"nombre"`
}

// TableName 指定表名
func (ConocimientoSaber) TableName() string { return "conocimiento_saber" }

// ConocimientoProceso 过程性知识（每个 RAP 至多一条）
type ConocimientoProceso struct {
	IDProceso uint   `gorm:"column:id_proceso;primaryKey;autoIncrement" json:"id_proceso"`
	IDRap     uint   `gorm:"column:id_rap;not null;index"               json:"id_rap"`
	Nombre    string `gorm:"type:text;not null"                         json:"nombre"`
}

// TableName 指定表名
func (ConocimientoProceso) TableName() string { return "conocimiento_proceso" }

// CriterioEvaluacion 评估标准（每个 RAP 至多一条）
type CriterioEvaluacion struct {
	IDCriterio uint   `gorm:"column:id_criterio;primaryKey;autoIncrement" json:"id_criterio"`
	IDRap      uint   `gorm:"column:id_rap;not null;index"                json:"id_rap"`
	Nombre     string `gorm:"type:text;not null"                          json:"nombre"`
}

// TableName 指定表名
func (CriterioEvaluacion) TableName() string { return "criterios_evaluacion" }
