package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
)

// CompetenciaRepository 能力单元数据访问接口
type CompetenciaRepository interface {
	Create(ctx context.Context, c *model.Competencia) error
	// GetByCodigoNorma 同一 norma 可能被多次导入，返回最新一条
	GetByCodigoNorma(ctx context.Context, codigo string) (*model.Competencia, error)
	ListByPrograma(ctx context.Context, idPrograma uint) ([]model.Competencia, error)
	DeleteByIDs(ctx context.Context, ids []uint) (int64, error)
}

type competenciaRepo struct {
	db *gorm.DB
}

// NewCompetenciaRepo 创建 CompetenciaRepository 实例
func NewCompetenciaRepo(db *gorm.DB) CompetenciaRepository {
	return &competenciaRepo{db: db}
}

func (r *competenciaRepo) Create(ctx context.Context, c *model.Competencia) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *competenciaRepo) GetByCodigoNorma(ctx context.Context, codigo string) (*model.Competencia, error) {
	var c model.Competencia
	err := r.db.WithContext(ctx).
		Where("codigo_norma = ?", codigo).
		Order("id_competencia DESC").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *competenciaRepo) ListByPrograma(ctx context.Context, idPrograma uint) ([]model.Competencia, error) {
	var list []model.Competencia
	err := r.db.WithContext(ctx).
		Where("id_programa = ?", idPrograma).
		Order("id_competencia").
		Find(&list).Error
	return list, err
}

func (r *competenciaRepo) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id_competencia IN ?", ids).Delete(&model.Competencia{})
	return res.RowsAffected, res.Error
}
