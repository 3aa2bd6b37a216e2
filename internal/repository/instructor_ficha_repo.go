package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
)

// InstructorFichaRepository 讲师与班次关联数据访问接口
type InstructorFichaRepository interface {
	// Vincular 建立关联，已存在时忽略
	Vincular(ctx context.Context, idInstructor, idFicha uint) error
	CountByFicha(ctx context.Context, idFicha uint) (int64, error)
	DeleteByFichas(ctx context.Context, idsFicha []uint) (int64, error)
	DeleteByInstructor(ctx context.Context, idInstructor uint) (int64, error)
}

type instructorFichaRepo struct {
	db *gorm.DB
}

// NewInstructorFichaRepo 创建 InstructorFichaRepository 实例
func NewInstructorFichaRepo(db *gorm.DB) InstructorFichaRepository {
	return &instructorFichaRepo{db: db}
}

func (r *instructorFichaRepo) Vincular(ctx context.Context, idInstructor, idFicha uint) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.InstructorFicha{IDInstructor: idInstructor, IDFicha: idFicha}).Error
}

func (r *instructorFichaRepo) CountByFicha(ctx context.Context, idFicha uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.InstructorFicha{}).
		Where("id_ficha = ?", idFicha).
		Count(&count).Error
	return count, err
}

func (r *instructorFichaRepo) DeleteByFichas(ctx context.Context, idsFicha []uint) (int64, error) {
	if len(idsFicha) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id_ficha IN ?", idsFicha).Delete(&model.InstructorFicha{})
	return res.RowsAffected, res.Error
}

func (r *instructorFichaRepo) DeleteByInstructor(ctx context.Context, idInstructor uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("id_instructor = ?", idInstructor).Delete(&model.InstructorFicha{})
	return res.RowsAffected, res.Error
}
