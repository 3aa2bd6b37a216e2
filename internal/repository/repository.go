package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Programa        ProgramaRepository
	Competencia     CompetenciaRepository
	Rap             RapRepository
	Conocimiento    ConocimientoRepository
	Ficha           FichaRepository
	Trimestre       TrimestreRepository
	InstructorFicha InstructorFichaRepository
	RapTrimestre    RapTrimestreRepository
	Sabana          SabanaRepository
	Instructor      InstructorRepository
	Rol             RolRepository
	Planeacion      PlaneacionRepository
	Proyecto        ProyectoRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:              db,
		Programa:        NewProgramaRepo(db),
		Competencia:     NewCompetenciaRepo(db),
		Rap:             NewRapRepo(db),
		Conocimiento:    NewConocimientoRepo(db),
		Ficha:           NewFichaRepo(db),
		Trimestre:       NewTrimestreRepo(db),
		InstructorFicha: NewInstructorFichaRepo(db),
		RapTrimestre:    NewRapTrimestreRepo(db),
		Sabana:          NewSabanaRepo(db),
		Instructor:      NewInstructorRepo(db),
		Rol:             NewRolRepo(db),
		Planeacion:      NewPlaneacionRepo(db),
		Proyecto:        NewProyectoRepo(db),
	}
}

// BeginTx 开启事务；未绑定连接的聚合返回 nil
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到事务的 Repository；tx 为空时返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
