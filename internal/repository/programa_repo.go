package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
)

// ProgramaRepository 培训项目数据访问接口
type ProgramaRepository interface {
	Create(ctx context.Context, p *model.Programa) error
	GetByID(ctx context.Context, id uint) (*model.Programa, error)
	GetByCodigo(ctx context.Context, codigo string) (*model.Programa, error)
	List(ctx context.Context) ([]model.Programa, error)
	Update(ctx context.Context, p *model.Programa) error
	Delete(ctx context.Context, id uint) (int64, error)
}

type programaRepo struct {
	db *gorm.DB
}

// NewProgramaRepo 创建 ProgramaRepository 实例
func NewProgramaRepo(db *gorm.DB) ProgramaRepository {
	return &programaRepo{db: db}
}

func (r *programaRepo) Create(ctx context.Context, p *model.Programa) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *programaRepo) GetByID(ctx context.Context, id uint) (*model.Programa, error) {
	var p model.Programa
	if err := r.db.WithContext(ctx).Where("id_programa = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *programaRepo) GetByCodigo(ctx context.Context, codigo string) (*model.Programa, error) {
	var p model.Programa
	if err := r.db.WithContext(ctx).Where("codigo_programa = ?", codigo).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *programaRepo) List(ctx context.Context) ([]model.Programa, error) {
	var list []model.Programa
	err := r.db.WithContext(ctx).Order("id_programa DESC").Find(&list).Error
	return list, err
}

func (r *programaRepo) Update(ctx context.Context, p *model.Programa) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *programaRepo) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("id_programa = ?", id).Delete(&model.Programa{})
	return res.RowsAffected, res.Error
}
