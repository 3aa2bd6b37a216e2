package model

// 排课状态
const (
	EstadoPlaneado = "Planeado"
)

// SemanasPorTrimestre 每个季度的教学周数，horas_semana = horas_trimestre / 11
const SemanasPorTrimestre = 11

// RapTrimestre RAP 在某班次某季度的排课记录，表 rap_trimestre
// 同一 (id_rap, id_ficha) 同时只允许出现在一个季度中，由 move 语义保证
type RapTrimestre struct {
	IDRapTrimestre     uint    `gorm:"column:id_rap_trimestre;primaryKey;autoIncrement" json:"id_rap_trimestre"`
	IDRap              uint    `gorm:"column:id_rap;not null;uniqueIndex:uq_rap_trimestre_ficha"  json:"id_rap"`
	IDTrimestre        uint    `gorm:"column:id_trimestre;not null;uniqueIndex:uq_rap_trimestre_ficha;index" json:"id_trimestre"`
	IDFicha            uint    `gorm:"column:id_ficha;not null;uniqueIndex:uq_rap_trimestre_ficha;index" json:"id_ficha"`
	HorasTrimestre     float64 `gorm:"not null;default:0"                               json:"horas_trimestre"`
	HorasSemana        float64 `gorm:"not null;default:0"                               json:"horas_semana"`
	Estado             string  `gorm:"type:varchar(30);not null;default:'Planeado'"     json:"estado"`
	IDInstructor       *uint   `gorm:"column:id_instructor;index"                       json:"id_instructor"`
	InstructorAsignado *string `gorm:"type:varchar(255)"                                json:"instructor_asignado"`
	VersionedModel
}

// TableName 指定表名
func (RapTrimestre) TableName() string { return "rap_trimestre" }
