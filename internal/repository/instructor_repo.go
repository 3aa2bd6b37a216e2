package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
)

// InstructorRepository 讲师数据访问接口
type InstructorRepository interface {
	Create(ctx context.Context, i *model.Instructor) error
	GetByID(ctx context.Context, id uint) (*model.Instructor, error)
	GetByEmail(ctx context.Context, email string) (*model.Instructor, error)
	List(ctx context.Context) ([]model.Instructor, error)
	Update(ctx context.Context, i *model.Instructor) error
	UpdateContrasena(ctx context.Context, id uint, hash string) (int64, error)
	Delete(ctx context.Context, id uint) (int64, error)
	// ExistsCedula / ExistsEmail 检查唯一字段，excludeID 为 0 时不排除任何记录
	ExistsCedula(ctx context.Context, cedula string, excludeID uint) (bool, error)
	ExistsEmail(ctx context.Context, email string, excludeID uint) (bool, error)
}

type instructorRepo struct {
	db *gorm.DB
}

// NewInstructorRepo 创建 InstructorRepository 实例
func NewInstructorRepo(db *gorm.DB) InstructorRepository {
	return &instructorRepo{db: db}
}

func (r *instructorRepo) Create(ctx context.Context, i *model.Instructor) error {
	return r.db.WithContext(ctx).Omit("Rol").Create(i).Error
}

func (r *instructorRepo) GetByID(ctx context.Context, id uint) (*model.Instructor, error) {
	var i model.Instructor
	err := r.db.WithContext(ctx).
		Preload("Rol").
		Where("id_instructor = ?", id).
		First(&i).Error
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *instructorRepo) GetByEmail(ctx context.Context, email string) (*model.Instructor, error) {
	var i model.Instructor
	err := r.db.WithContext(ctx).
		Preload("Rol").
		Where("email = ?", email).
		First(&i).Error
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *instructorRepo) List(ctx context.Context) ([]model.Instructor, error) {
	var list []model.Instructor
	err := r.db.WithContext(ctx).
		Preload("Rol").
		Order("nombre").
		Find(&list).Error
	return list, err
}

func (r *instructorRepo) Update(ctx context.Context, i *model.Instructor) error {
	return r.db.WithContext(ctx).Omit("Rol").Save(i).Error
}

func (r *instructorRepo) UpdateContrasena(ctx context.Context, id uint, hash string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Instructor{}).
		Where("id_instructor = ?", id).
		Updates(map[string]interface{}{
			"contrasena":    hash,
			"primer_acceso": 0,
		})
	return res.RowsAffected, res.Error
}

func (r *instructorRepo) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("id_instructor = ?", id).Delete(&model.Instructor{})
	return res.RowsAffected, res.Error
}

func (r *instructorRepo) ExistsCedula(ctx context.Context, cedula string, excludeID uint) (bool, error) {
	return r.exists(ctx, "cedula = ?", cedula, excludeID)
}

func (r *instructorRepo) ExistsEmail(ctx context.Context, email string, excludeID uint) (bool, error) {
	return r.exists(ctx, "email = ?", email, excludeID)
}

func (r *instructorRepo) exists(ctx context.Context, cond string, value string, excludeID uint) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(&model.Instructor{}).Where(cond, value)
	if excludeID != 0 {
		db = db.Where("id_instructor <> ?", excludeID)
	}
	err := db.Count(&count).Error
	return count > 0, err
}
