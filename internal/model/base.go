package model

import "time"

// BaseModel 通用时间戳字段
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;autoUpdateTime" json:"updated_at"`
}

// VersionedModel 支持乐观锁的模型
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// All 返回全部持久化模型（sqlite 开发模式与测试中用于 AutoMigrate）
func All() []interface{} {
	return []interface{}{
		&Rol{},
		&Permiso{},
		&RolPermiso{},
		&Instructor{},
		&Programa{},
		&Competencia{},
		&Rap{},
		&ConocimientoSaber{},
		&ConocimientoProceso{},
		&CriterioEvaluacion{},
		&Ficha{},
		&Trimestre{},
		&InstructorFicha{},
		&RapTrimestre{},
		&PlaneacionPedagogica{},
		&DetallePlaneacion{},
		&Proyecto{},
		&Fase{},
		&ActividadProyecto{},
		&ActividadRap{},
	}
}
