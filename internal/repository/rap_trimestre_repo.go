package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
	pkgerrors "github.com/k4mimi/Proyecto-Alistamiento/pkg/errors"
)

// RapTrimestreRepository 排课记录数据访问接口
// 所有修改都会使 version 自增
type RapTrimestreRepository interface {
	Create(ctx context.Context, rt *model.RapTrimestre) error
	GetByID(ctx context.Context, id uint) (*model.RapTrimestre, error)
	GetByClave(ctx context.Context, idRap, idTrimestre, idFicha uint) (*model.RapTrimestre, error)
	// ListByRapFicha 按季度序号升序返回 RAP 在班次中的全部排课
	ListByRapFicha(ctx context.Context, idRap, idFicha uint) ([]model.RapTrimestre, error)
	ListByFichas(ctx context.Context, idsFicha []uint) ([]model.RapTrimestre, error)
	ExisteEnTrimestre(ctx context.Context, idRap, idTrimestre uint) (bool, error)

	// UpdateHoras 写入学时；expectedVersion 非空时按乐观锁更新
	UpdateHoras(ctx context.Context, id uint, horasTrimestre, horasSemana float64, expectedVersion *int) error
	UpdateInstructor(ctx context.Context, id uint, idInstructor *uint, nombre *string) (int64, error)
	// FichasDeInstructor 该讲师被指定过的班次（去重）
	FichasDeInstructor(ctx context.Context, idInstructor uint) ([]uint, error)
	// ClearInstructor 清空该讲师在所有排课记录中的指定
	ClearInstructor(ctx context.Context, idInstructor uint) (int64, error)

	DeleteOtrosTrimestres(ctx context.Context, idRap, idFicha, idTrimestreDestino uint) (int64, error)
	DeleteByClave(ctx context.Context, idRap, idTrimestre, idFicha uint) (int64, error)
	DeleteByFichas(ctx context.Context, idsFicha []uint) (int64, error)
	DeleteByRaps(ctx context.Context, idsRap []uint) (int64, error)
}

type rapTrimestreRepo struct {
	db *gorm.DB
}

// NewRapTrimestreRepo 创建 RapTrimestreRepository 实例
func NewRapTrimestreRepo(db *gorm.DB) RapTrimestreRepository {
	return &rapTrimestreRepo{db: db}
}

func (r *rapTrimestreRepo) Create(ctx context.Context, rt *model.RapTrimestre) error {
	return r.db.WithContext(ctx).Create(rt).Error
}

func (r *rapTrimestreRepo) GetByID(ctx context.Context, id uint) (*model.RapTrimestre, error) {
	var rt model.RapTrimestre
	if err := r.db.WithContext(ctx).Where("id_rap_trimestre = ?", id).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *rapTrimestreRepo) GetByClave(ctx context.Context, idRap, idTrimestre, idFicha uint) (*model.RapTrimestre, error) {
	var rt model.RapTrimestre
	err := r.db.WithContext(ctx).
		Where("id_rap = ? AND id_trimestre = ? AND id_ficha = ?", idRap, idTrimestre, idFicha).
		First(&rt).Error
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *rapTrimestreRepo) ListByRapFicha(ctx context.Context, idRap, idFicha uint) ([]model.RapTrimestre, error) {
	var list []model.RapTrimestre
	err := r.db.WithContext(ctx).
		Joins("JOIN trimestre t ON t.id_trimestre = rap_trimestre.id_trimestre").
		Where("rap_trimestre.id_rap = ? AND rap_trimestre.id_ficha = ?", idRap, idFicha).
		Order("t.no_trimestre, rap_trimestre.id_rap_trimestre").
		Find(&list).Error
	return list, err
}

func (r *rapTrimestreRepo) ListByFichas(ctx context.Context, idsFicha []uint) ([]model.RapTrimestre, error) {
	if len(idsFicha) == 0 {
		return nil, nil
	}
	var list []model.RapTrimestre
	err := r.db.WithContext(ctx).Where("id_ficha IN ?", idsFicha).Find(&list).Error
	return list, err
}

func (r *rapTrimestreRepo) ExisteEnTrimestre(ctx context.Context, idRap, idTrimestre uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.RapTrimestre{}).
		Where("id_rap = ? AND id_trimestre = ?", idRap, idTrimestre).
		Count(&count).Error
	return count > 0, err
}

func (r *rapTrimestreRepo) UpdateHoras(ctx context.Context, id uint, horasTrimestre, horasSemana float64, expectedVersion *int) error {
	db := r.db.WithContext(ctx).
		Model(&model.RapTrimestre{}).
		Where("id_rap_trimestre = ?", id)
	if expectedVersion != nil {
		db = db.Where("version = ?", *expectedVersion)
	}

	res := db.Updates(map[string]interface{}{
		"horas_trimestre": horasTrimestre,
		"horas_semana":    horasSemana,
		"version":         gorm.Expr("version + 1"),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if expectedVersion != nil {
			return pkgerrors.ErrOptimisticLock
		}
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *rapTrimestreRepo) UpdateInstructor(ctx context.Context, id uint, idInstructor *uint, nombre *string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.RapTrimestre{}).
		Where("id_rap_trimestre = ?", id).
		Updates(map[string]interface{}{
			"id_instructor":       idInstructor,
			"instructor_asignado": nombre,
			"version":             gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}

func (r *rapTrimestreRepo) FichasDeInstructor(ctx context.Context, idInstructor uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&model.RapTrimestre{}).
		Where("id_instructor = ?", idInstructor).
		Distinct().
		Order("id_ficha").
		Pluck("id_ficha", &ids).Error
	return ids, err
}

func (r *rapTrimestreRepo) ClearInstructor(ctx context.Context, idInstructor uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.RapTrimestre{}).
		Where("id_instructor = ?", idInstructor).
		Updates(map[string]interface{}{
			"id_instructor":       nil,
			"instructor_asignado": nil,
			"version":             gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}

func (r *rapTrimestreRepo) DeleteOtrosTrimestres(ctx context.Context, idRap, idFicha, idTrimestreDestino uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id_rap = ? AND id_ficha = ? AND id_trimestre <> ?", idRap, idFicha, idTrimestreDestino).
		Delete(&model.RapTrimestre{})
	return res.RowsAffected, res.Error
}

func (r *rapTrimestreRepo) DeleteByClave(ctx context.Context, idRap, idTrimestre, idFicha uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id_rap = ? AND id_trimestre = ? AND id_ficha = ?", idRap, idTrimestre, idFicha).
		Delete(&model.RapTrimestre{})
	return res.RowsAffected, res.Error
}

func (r *rapTrimestreRepo) DeleteByFichas(ctx context.Context, idsFicha []uint) (int64, error) {
	if len(idsFicha) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id_ficha IN ?", idsFicha).Delete(&model.RapTrimestre{})
	return res.RowsAffected, res.Error
}

func (r *rapTrimestreRepo) DeleteByRaps(ctx context.Context, idsRap []uint) (int64, error) {
	return deleteByRaps(r.db.WithContext(ctx), &model.RapTrimestre{}, idsRap)
}
