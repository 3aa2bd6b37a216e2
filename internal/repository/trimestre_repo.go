package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
)

// TrimestreRepository 季度数据访问接口
type TrimestreRepository interface {
	CreateBatch(ctx context.Context, trimestres []model.Trimestre) error
	GetByID(ctx context.Context, id uint) (*model.Trimestre, error)
	ListByFicha(ctx context.Context, idFicha uint) ([]model.Trimestre, error)
	ListByFichas(ctx context.Context, idsFicha []uint) ([]model.Trimestre, error)
	PerteneceFicha(ctx context.Context, idTrimestre, idFicha uint) (bool, error)
	DeleteByFichas(ctx context.Context, idsFicha []uint) (int64, error)
}

type trimestreRepo struct {
	db *gorm.DB
}

// NewTrimestreRepo 创建 TrimestreRepository 实例
func NewTrimestreRepo(db *gorm.DB) TrimestreRepository {
	return &trimestreRepo{db: db}
}

func (r *trimestreRepo) CreateBatch(ctx context.Context, trimestres []model.Trimestre) error {
	if len(trimestres) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&trimestres).Error
}

func (r *trimestreRepo) GetByID(ctx context.Context, id uint) (*model.Trimestre, error) {
	var t model.Trimestre
	if err := r.db.WithContext(ctx).Where("id_trimestre = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *trimestreRepo) ListByFicha(ctx context.Context, idFicha uint) ([]model.Trimestre, error) {
	var list []model.Trimestre
	err := r.db.WithContext(ctx).
		Where("id_ficha = ?", idFicha).
		Order("no_trimestre").
		Find(&list).Error
	return list, err
}

func (r *trimestreRepo) ListByFichas(ctx context.Context, idsFicha []uint) ([]model.Trimestre, error) {
	if len(idsFicha) == 0 {
		return nil, nil
	}
	var list []model.Trimestre
	err := r.db.WithContext(ctx).
		Where("id_ficha IN ?", idsFicha).
		Order("id_ficha, no_trimestre").
		Find(&list).Error
	return list, err
}

func (r *trimestreRepo) PerteneceFicha(ctx context.Context, idTrimestre, idFicha uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Trimestre{}).
		Where("id_trimestre = ? AND id_ficha = ?", idTrimestre, idFicha).
		Count(&count).Error
	return count > 0, err
}

func (r *trimestreRepo) DeleteByFichas(ctx context.Context, idsFicha []uint) (int64, error) {
	if len(idsFicha) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id_ficha IN ?", idsFicha).Delete(&model.Trimestre{})
	return res.RowsAffected, res.Error
}
