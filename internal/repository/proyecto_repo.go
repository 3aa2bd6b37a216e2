package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
)

// ProyectoRepository 课题、阶段、活动数据访问接口
type ProyectoRepository interface {
	Create(ctx context.Context, p *model.Proyecto) error
	CreateFase(ctx context.Context, f *model.Fase) error
	CreateActividad(ctx context.Context, a *model.ActividadProyecto) error
	VincularRap(ctx context.Context, idActividad, idRap uint) error
	DeleteActividadRapsByRaps(ctx context.Context, idsRap []uint) (int64, error)
	// DesvincularPrograma 清空课题对项目的外键引用
	DesvincularPrograma(ctx context.Context, idPrograma uint) (int64, error)
}

type proyectoRepo struct {
	db *gorm.DB
}

// NewProyectoRepo 创建 ProyectoRepository 实例
func NewProyectoRepo(db *gorm.DB) ProyectoRepository {
	return &proyectoRepo{db: db}
}

func (r *proyectoRepo) Create(ctx context.Context, p *model.Proyecto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *proyectoRepo) CreateFase(ctx context.Context, f *model.Fase) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *proyectoRepo) CreateActividad(ctx context.Context, a *model.ActividadProyecto) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *proyectoRepo) VincularRap(ctx context.Context, idActividad, idRap uint) error {
	return r.db.WithContext(ctx).Create(&model.ActividadRap{IDActividad: idActividad, IDRap: idRap}).Error
}

func (r *proyectoRepo) DeleteActividadRapsByRaps(ctx context.Context, idsRap []uint) (int64, error) {
	return deleteByRaps(r.db.WithContext(ctx), &model.ActividadRap{}, idsRap)
}

func (r *proyectoRepo) DesvincularPrograma(ctx context.Context, idPrograma uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Proyecto{}).
		Where("id_programa = ?", idPrograma).
		Update("id_programa", nil)
	return res.RowsAffected, res.Error
}
