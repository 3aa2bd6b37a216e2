package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
)

// PlaneacionRepository 教学计划数据访问接口
type PlaneacionRepository interface {
	Create(ctx context.Context, p *model.PlaneacionPedagogica) error
	CreateDetalles(ctx context.Context, detalles []model.DetallePlaneacion) error
	GetByID(ctx context.Context, id uint) (*model.PlaneacionPedagogica, error)
	ListByFicha(ctx context.Context, idFicha uint) ([]model.PlaneacionPedagogica, error)
	ListIDsByFichas(ctx context.Context, idsFicha []uint) ([]uint, error)
	ListDetalles(ctx context.Context, idPlaneacion uint) ([]model.DetallePlaneacion, error)
	// CountDetalles 返回 id_planeacion → 明细数
	CountDetalles(ctx context.Context, idsPlaneacion []uint) (map[uint]int64, error)
	DeleteDetallesByPlaneaciones(ctx context.Context, idsPlaneacion []uint) (int64, error)
	DeleteDetallesByRaps(ctx context.Context, idsRap []uint) (int64, error)
	DeleteByIDs(ctx context.Context, ids []uint) (int64, error)
}

type planeacionRepo struct {
	db *gorm.DB
}

// NewPlaneacionRepo 创建 PlaneacionRepository 实例
func NewPlaneacionRepo(db *gorm.DB) PlaneacionRepository {
	return &planeacionRepo{db: db}
}

func (r *planeacionRepo) Create(ctx context.Context, p *model.PlaneacionPedagogica) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *planeacionRepo) CreateDetalles(ctx context.Context, detalles []model.DetallePlaneacion) error {
	if len(detalles) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&detalles).Error
}

func (r *planeacionRepo) GetByID(ctx context.Context, id uint) (*model.PlaneacionPedagogica, error) {
	var p model.PlaneacionPedagogica
	if err := r.db.WithContext(ctx).Where("id_planeacion = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *planeacionRepo) ListByFicha(ctx context.Context, idFicha uint) ([]model.PlaneacionPedagogica, error) {
	var list []model.PlaneacionPedagogica
	err := r.db.WithContext(ctx).
		Where("id_ficha = ?", idFicha).
		Order("fecha_creacion DESC, id_planeacion DESC").
		Find(&list).Error
	return list, err
}

func (r *planeacionRepo) ListIDsByFichas(ctx context.Context, idsFicha []uint) ([]uint, error) {
	if len(idsFicha) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&model.PlaneacionPedagogica{}).
		Where("id_ficha IN ?", idsFicha).
		Pluck("id_planeacion", &ids).Error
	return ids, err
}

func (r *planeacionRepo) ListDetalles(ctx context.Context, idPlaneacion uint) ([]model.DetallePlaneacion, error) {
	var list []model.DetallePlaneacion
	err := r.db.WithContext(ctx).
		Where("id_planeacion = ?", idPlaneacion).
		Order("id_detalle").
		Find(&list).Error
	return list, err
}

func (r *planeacionRepo) CountDetalles(ctx context.Context, idsPlaneacion []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(idsPlaneacion))
	if len(idsPlaneacion) == 0 {
		return out, nil
	}
	var rows []struct {
		IDPlaneacion uint  `gorm:"column:id_planeacion"`
		Total        int64 `gorm:"column:total"`
	}
	err := r.db.WithContext(ctx).
		Model(&model.DetallePlaneacion{}).
		Select("id_planeacion, COUNT(*) AS total").
		Where("id_planeacion IN ?", idsPlaneacion).
		Group("id_planeacion").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.IDPlaneacion] = row.Total
	}
	return out, nil
}

func (r *planeacionRepo) DeleteDetallesByPlaneaciones(ctx context.Context, idsPlaneacion []uint) (int64, error) {
	if len(idsPlaneacion) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id_planeacion IN ?", idsPlaneacion).Delete(&model.DetallePlaneacion{})
	return res.RowsAffected, res.Error
}

func (r *planeacionRepo) DeleteDetallesByRaps(ctx context.Context, idsRap []uint) (int64, error) {
	return deleteByRaps(r.db.WithContext(ctx), &model.DetallePlaneacion{}, idsRap)
}

func (r *planeacionRepo) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id_planeacion IN ?", ids).Delete(&model.PlaneacionPedagogica{})
	return res.RowsAffected, res.Error
}
