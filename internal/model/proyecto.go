package model

// Proyecto 培训项目课题，表 proyectos
type Proyecto struct {
	IDProyecto      uint    `gorm:"column:id_proyecto;primaryKey;autoIncrement" json:"id_proyecto"`
	CodigoProyecto  *string `gorm:"type:varchar(50)"                            json:"codigo_proyecto"`
	NombreProyecto  *string `gorm:"type:text"                                   json:"nombre_proyecto"`
	CodigoPrograma  *string `gorm:"type:varchar(50)"                            json:"codigo_programa"`
	CentroFormacion *string `gorm:"type:varchar(255)"                           json:"centro_formacion"`
	Regional        *string `gorm:"type:varchar(255)"                           json:"regional"`
	IDPrograma      *uint   `gorm:"column:id_programa;index"                    json:"id_programa"`
	BaseModel
}

// TableName 指定表名
func (Proyecto) TableName() string { return "proyectos" }

// Fase 课题阶段，表 fases
type Fase struct {
	IDFase uint   `gorm:"column:id_fase;primaryKey;autoIncrement" json:"id_fase"`
	Nombre string `gorm:"type:varchar(100);not null"              json:"nombre"`
}

// TableName 指定表名
func (Fase) TableName() string { return "fases" }

// ActividadProyecto 课题活动，表 actividades_proyecto
type ActividadProyecto struct {
	IDActividad     uint   `gorm:"column:id_actividad;primaryKey;autoIncrement" json:"id_actividad"`
	Fase            string `gorm:"type:varchar(100)"                            json:"fase"`
	NombreActividad string `gorm:"type:text;not null"                           json:"nombre_actividad"`
}

// TableName 指定表名
func (ActividadProyecto) TableName() string { return "actividades_proyecto" }

// ActividadRap 活动与 RAP 关联，表 actividad_rap
type ActividadRap struct {
	IDActividadRap uint `gorm:"column:id_actividad_rap;primaryKey;autoIncrement" json:"id_actividad_rap"`
	IDActividad    uint `gorm:"column:id_actividad;not null;index"               json:"id_actividad"`
	IDRap          uint `gorm:"column:id_rap;not null;index"                     json:"id_rap"`
}

// TableName 指定表名
func (ActividadRap) TableName() string { return "actividad_rap" }
