package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
)

// ConocimientoRepository RAP 的知识与评估标准数据访问接口
type ConocimientoRepository interface {
	CreateSaber(ctx context.Context, s *model.ConocimientoSaber) error
	CreateProceso(ctx context.Context, p *model.ConocimientoProceso) error
	CreateCriterio(ctx context.Context, c *model.CriterioEvaluacion) error

	ListSaberes(ctx context.Context, idRap uint) ([]model.ConocimientoSaber, error)
	ListProcesos(ctx context.Context, idRap uint) ([]model.ConocimientoProceso, error)
	ListCriterios(ctx context.Context, idRap uint) ([]model.CriterioEvaluacion, error)

	DeleteSaberesByRaps(ctx context.Context, idsRap []uint) (int64, error)
	DeleteProcesosByRaps(ctx context.Context, idsRap []uint) (int64, error)
	DeleteCriteriosByRaps(ctx context.Context, idsRap []uint) (int64, error)
}

type conocimientoRepo struct {
	db *gorm.DB
}

// NewConocimientoRepo 创建 ConocimientoRepository 实例
func NewConocimientoRepo(db *gorm.DB) ConocimientoRepository {
	return &conocimientoRepo{db: db}
}

func (r *conocimientoRepo) CreateSaber(ctx context.Context, s *model.ConocimientoSaber) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *conocimientoRepo) CreateProceso(ctx context.Context, p *model.ConocimientoProceso) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *conocimientoRepo) CreateCriterio(ctx context.Context, c *model.CriterioEvaluacion) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *conocimientoRepo) ListSaberes(ctx context.Context, idRap uint) ([]model.ConocimientoSaber, error) {
	var list []model.ConocimientoSaber
	err := r.db.WithContext(ctx).Where("id_rap = ?", idRap).Order("id_saber").Find(&list).Error
	return list, err
}

func (r *conocimientoRepo) ListProcesos(ctx context.Context, idRap uint) ([]model.ConocimientoProceso, error) {
	var list []model.ConocimientoProceso
	err := r.db.WithContext(ctx).Where("id_rap = ?", idRap).Order("id_proceso").Find(&list).Error
	return list, err
}

func (r *conocimientoRepo) ListCriterios(ctx context.Context, idRap uint) ([]model.CriterioEvaluacion, error) {
	var list []model.CriterioEvaluacion
	err := r.db.WithContext(ctx).Where("id_rap = ?", idRap).Order("id_criterio").Find(&list).Error
	return list, err
}

func (r *conocimientoRepo) DeleteSaberesByRaps(ctx context.Context, idsRap []uint) (int64, error) {
	return deleteByRaps(r.db.WithContext(ctx), &model.ConocimientoSaber{}, idsRap)
}

func (r *conocimientoRepo) DeleteProcesosByRaps(ctx context.Context, idsRap []uint) (int64, error) {
	return deleteByRaps(r.db.WithContext(ctx), &model.ConocimientoProceso{}, idsRap)
}

func (r *conocimientoRepo) DeleteCriteriosByRaps(ctx context.Context, idsRap []uint) (int64, error) {
	return deleteByRaps(r.db.WithContext(ctx), &model.CriterioEvaluacion{}, idsRap)
}

func deleteByRaps(db *gorm.DB, value interface{}, idsRap []uint) (int64, error) {
	if len(idsRap) == 0 {
		return 0, nil
	}
	res := db.Where("id_rap IN ?", idsRap).Delete(value)
	return res.RowsAffected, res.Error
}
