package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
)

// FichaRepository 班次数据访问接口
type FichaRepository interface {
	Create(ctx context.Context, f *model.Ficha) error
	GetByID(ctx context.Context, id uint) (*model.Ficha, error)
	List(ctx context.Context) ([]model.Ficha, error)
	ListByPrograma(ctx context.Context, idPrograma uint) ([]model.Ficha, error)
	// ListByInstructor 讲师作为 gestor 或通过 instructor_ficha 关联的班次
	ListByInstructor(ctx context.Context, idInstructor uint) ([]model.Ficha, error)
	Update(ctx context.Context, f *model.Ficha) error
	DeleteByIDs(ctx context.Context, ids []uint) (int64, error)
	// ClearGestor 将以该讲师为 gestor 的班次置为无 gestor
	ClearGestor(ctx context.Context, idInstructor uint) (int64, error)
	// CountByPrograma 返回 id_programa → 班次数
	CountByPrograma(ctx context.Context) (map[uint]int64, error)
}

type fichaRepo struct {
	db *gorm.DB
}

// NewFichaRepo 创建 FichaRepository 实例
func NewFichaRepo(db *gorm.DB) FichaRepository {
	return &fichaRepo{db: db}
}

func (r *fichaRepo) Create(ctx context.Context, f *model.Ficha) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *fichaRepo) GetByID(ctx context.Context, id uint) (*model.Ficha, error) {
	var f model.Ficha
	if err := r.db.WithContext(ctx).Where("id_ficha = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fichaRepo) List(ctx context.Context) ([]model.Ficha, error) {
	var list []model.Ficha
	err := r.db.WithContext(ctx).Order("id_ficha DESC").Find(&list).Error
	return list, err
}

func (r *fichaRepo) ListByPrograma(ctx context.Context, idPrograma uint) ([]model.Ficha, error) {
	var list []model.Ficha
	err := r.db.WithContext(ctx).
		Where("id_programa = ?", idPrograma).
		Order("id_ficha").
		Find(&list).Error
	return list, err
}

func (r *fichaRepo) ListByInstructor(ctx context.Context, idInstructor uint) ([]model.Ficha, error) {
	var list []model.Ficha
	err := r.db.WithContext(ctx).
		Where("id_gestor = ?", idInstructor).
		Or("id_ficha IN (?)", r.db.Model(&model.InstructorFicha{}).
			Select("id_ficha").
			Where("id_instructor = ?", idInstructor)).
		Order("id_ficha").
		Find(&list).Error
	return list, err
}

func (r *fichaRepo) Update(ctx context.Context, f *model.Ficha) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *fichaRepo) ClearGestor(ctx context.Context, idInstructor uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Ficha{}).
		Where("id_gestor = ?", idInstructor).
		Update("id_gestor", nil)
	return res.RowsAffected, res.Error
}

func (r *fichaRepo) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id_ficha IN ?", ids).Delete(&model.Ficha{})
	return res.RowsAffected, res.Error
}

func (r *fichaRepo) CountByPrograma(ctx context.Context) (map[uint]int64, error) {
	var rows []struct {
		IDPrograma uint  `gorm:"column:id_programa"`
		Total      int64 `gorm:"column:total"`
	}
	err := r.db.WithContext(ctx).
		Model(&model.Ficha{}).
		Select("id_programa, COUNT(*) AS total").
		Group("id_programa").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uint]int64, len(rows))
	for _, row := range rows {
		out[row.IDPrograma] = row.Total
	}
	return out, nil
}
