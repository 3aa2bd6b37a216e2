package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
)

// RapRepository 学习成果数据访问接口
type RapRepository interface {
	Create(ctx context.Context, rap *model.Rap) error
	GetByID(ctx context.Context, id uint) (*model.Rap, error)
	ListByCompetencias(ctx context.Context, idsCompetencia []uint) ([]model.Rap, error)
	// FindByCodigoDenominacion 按 codigo 精确匹配且 denominacion 包含 fragmento
	FindByCodigoDenominacion(ctx context.Context, codigo, fragmento string) (*model.Rap, error)
	// PerteneceProgramaDeFicha RAP 是否属于班次所在项目
	PerteneceProgramaDeFicha(ctx context.Context, idRap, idFicha uint) (bool, error)
	DeleteByIDs(ctx context.Context, ids []uint) (int64, error)
}

type rapRepo struct {
	db *gorm.DB
}

// NewRapRepo 创建 RapRepository 实例
func NewRapRepo(db *gorm.DB) RapRepository {
	return &rapRepo{db: db}
}

func (r *rapRepo) Create(ctx context.Context, rap *model.Rap) error {
	return r.db.WithContext(ctx).Create(rap).Error
}

func (r *rapRepo) GetByID(ctx context.Context, id uint) (*model.Rap, error) {
	var rap model.Rap
	if err := r.db.WithContext(ctx).Where("id_rap = ?", id).First(&rap).Error; err != nil {
		return nil, err
	}
	return &rap, nil
}

func (r *rapRepo) ListByCompetencias(ctx context.Context, idsCompetencia []uint) ([]model.Rap, error) {
	if len(idsCompetencia) == 0 {
		return nil, nil
	}
	var list []model.Rap
	err := r.db.WithContext(ctx).
		Where("id_competencia IN ?", idsCompetencia).
		Order("id_rap").
		Find(&list).Error
	return list, err
}

func (r *rapRepo) FindByCodigoDenominacion(ctx context.Context, codigo, fragmento string) (*model.Rap, error) {
	var rap model.Rap
	err := r.db.WithContext(ctx).
		Where("codigo = ? AND denominacion LIKE ?", codigo, "%"+fragmento+"%").
		Order("id_rap").
		First(&rap).Error
	if err != nil {
		return nil, err
	}
	return &rap, nil
}

func (r *rapRepo) PerteneceProgramaDeFicha(ctx context.Context, idRap, idFicha uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("raps AS r").
		Joins("JOIN competencias c ON c.id_competencia = r.id_competencia").
		Joins("JOIN fichas f ON f.id_programa = c.id_programa").
		Where("r.id_rap = ? AND f.id_ficha = ?", idRap, idFicha).
		Count(&count).Error
	return count > 0, err
}

func (r *rapRepo) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id_rap IN ?", ids).Delete(&model.Rap{})
	return res.RowsAffected, res.Error
}
