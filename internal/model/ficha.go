package model

import "time"

// Jornada 取值
const (
	JornadaDiurna   = "Diurna"
	JornadaNocturna = "Nocturna"
)

// Ficha 培训班次（cohort），表 fichas
// CodigoFicha 与 Jornada 创建后不可修改
type Ficha struct {
	IDFicha           uint      `gorm:"column:id_ficha;primaryKey;autoIncrement" json:"id_ficha"`
	CodigoFicha       string    `gorm:"type:varchar(30);not null;uniqueIndex"     json:"codigo_ficha"`
	Modalidad         string    `gorm:"type:varchar(50);not null"                 json:"modalidad"`
	Jornada           string    `gorm:"type:varchar(20);not null"                 json:"jornada"`
	Ambiente          *string   `gorm:"type:varchar(100)"                         json:"ambiente"`
	FechaInicio       time.Time `gorm:"type:date;not null"                        json:"fecha_inicio"`
	FechaFinal        time.Time `gorm:"type:date;not null"                        json:"fecha_final"`
	CantidadTrimestre int       `gorm:"not null"                                  json:"cantidad_trimestre"`
	IDPrograma        uint      `gorm:"column:id_programa;not null;index"         json:"id_programa"`
	IDGestor          *uint     `gorm:"column:id_gestor;index"                    json:"id_gestor"`
	BaseModel
}

// TableName 指定表名
func (Ficha) TableName() string { return "fichas" }

// TrimestresPorJornada 返回该 jornada 对应的季度数：日间 7，夜间 9；未知返回 0
func TrimestresPorJornada(jornada string) int {
	switch jornada {
	case JornadaDiurna:
		return 7
	case JornadaNocturna:
		return 9
	default:
		return 0
	}
}

// Trimestre 季度，表 trimestre，隶属于 Ficha
type Trimestre struct {
	IDTrimestre uint    `gorm:"column:id_trimestre;primaryKey;autoIncrement" json:"id_trimestre"`
	NoTrimestre int     `gorm:"not null;uniqueIndex:uq_trimestre_ficha_no"    json:"no_trimestre"`
	Fase        *string `gorm:"type:varchar(30)"                             json:"fase"`
	IDFicha     uint    `gorm:"column:id_ficha;not null;uniqueIndex:uq_trimestre_ficha_no;index" json:"id_ficha"`
}

// TableName 指定表名
func (Trimestre) TableName() string { return "trimestre" }

// InstructorFicha 讲师与班次的多对多关联
type InstructorFicha struct {
	IDInstructorFicha uint `gorm:"column:id_instructor_ficha;primaryKey;autoIncrement" json:"id_instructor_ficha"`
	IDInstructor      uint `gorm:"column:id_instructor;not null;uniqueIndex:uq_instructor_ficha" json:"id_instructor"`
	IDFicha           uint `gorm:"column:id_ficha;not null;uniqueIndex:uq_instructor_ficha;index" json:"id_ficha"`
}

// TableName 指定表名
func (InstructorFicha) TableName() string { return "instructor_ficha" }
