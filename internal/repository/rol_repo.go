package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
)

// RolRepository 角色与权限数据访问接口（数据由迁移预置，只读）
type RolRepository interface {
	GetByID(ctx context.Context, id uint) (*model.Rol, error)
	GetByNombre(ctx context.Context, nombre string) (*model.Rol, error)
	List(ctx context.Context) ([]model.Rol, error)
	ListPermisos(ctx context.Context) ([]model.Permiso, error)
	// PermisosDeRol roles_permisos ⋈ permisos，按名称排序
	PermisosDeRol(ctx context.Context, idRol uint) ([]string, error)
}

type rolRepo struct {
	db *gorm.DB
}

// NewRolRepo 创建 RolRepository 实例
func NewRolRepo(db *gorm.DB) RolRepository {
	return &rolRepo{db: db}
}

func (r *rolRepo) GetByID(ctx context.Context, id uint) (*model.Rol, error) {
	var rol model.Rol
	if err := r.db.WithContext(ctx).Where("id_rol = ?", id).First(&rol).Error; err != nil {
		return nil, err
	}
	return &rol, nil
}

func (r *rolRepo) GetByNombre(ctx context.Context, nombre string) (*model.Rol, error) {
	var rol model.Rol
	if err := r.db.WithContext(ctx).Where("nombre = ?", nombre).First(&rol).Error; err != nil {
		return nil, err
	}
	return &rol, nil
}

func (r *rolRepo) List(ctx context.Context) ([]model.Rol, error) {
	var list []model.Rol
	err := r.db.WithContext(ctx).Order("id_rol").Find(&list).Error
	return list, err
}

func (r *rolRepo) ListPermisos(ctx context.Context) ([]model.Permiso, error) {
	var list []model.Permiso
	err := r.db.WithContext(ctx).Order("nombre").Find(&list).Error
	return list, err
}

func (r *rolRepo) PermisosDeRol(ctx context.Context, idRol uint) ([]string, error) {
	var nombres []string
	err := r.db.WithContext(ctx).
		Table("roles_permisos AS rp").
		Joins("JOIN permisos p ON p.id_permiso = rp.id_permiso").
		Where("rp.id_rol = ?", idRol).
		Order("p.nombre").
		Pluck("p.nombre", &nombres).Error
	return nombres, err
}
