package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/repository"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/jwt"
)

var (
	ErrCredencialesInvalidas = errors.New("Credenciales inválidas")
	ErrUsuarioInactivo       = errors.New("Usuario inactivo")
)

const rolPorDefecto = "Sin rol"

// TokenBlacklist 已注销令牌的存储（由 pkg/redis 实现）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	// Logout 将令牌 jti 加入黑名单直至其原本的过期时间
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	Me(ctx context.Context, idInstructor uint) (*dto.InstructorSesion, error)
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例；blacklist 可为 nil（未启用 Redis）
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	// 1. 查询讲师
	inst, err := s.repo.Instructor.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCredencialesInvalidas
		}
		s.logger.Error("查询讲师失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(inst.Contrasena), []byte(req.Password)); err != nil {
		return nil, ErrCredencialesInvalidas
	}
	if inst.Estado != model.EstadoActivo {
		return nil, ErrUsuarioInactivo
	}

	// 3. 权限与令牌
	sesion, err := s.sesion(ctx, inst)
	if err != nil {
		return nil, err
	}
	token, err := s.jwtMgr.GenerateToken(inst.IDInstructor, sesion.Rol, sesion.Permisos)
	if err != nil {
		s.logger.Error("生成 Token 失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("讲师登录", zap.Uint("id_instructor", inst.IDInstructor), zap.String("rol", sesion.Rol))
	return &dto.LoginResponse{
		Token:      token,
		ExpiresIn:  int(s.jwtMgr.AccessTokenTTL().Seconds()),
		Instructor: *sesion,
	}, nil
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, ttl); err != nil {
		s.logger.Error("写入 Token 黑名单失败", zap.String("jti", jti), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) Me(ctx context.Context, idInstructor uint) (*dto.InstructorSesion, error) {
	inst, err := s.repo.Instructor.GetByID(ctx, idInstructor)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstructorNoEncontrado
		}
		s.logger.Error("查询讲师失败", zap.Uint("id", idInstructor), zap.Error(err))
		return nil, err
	}
	return s.sesion(ctx, inst)
}

func (s *authService) sesion(ctx context.Context, inst *model.Instructor) (*dto.InstructorSesion, error) {
	permisos, err := s.repo.Rol.PermisosDeRol(ctx, inst.IDRol)
	if err != nil {
		s.logger.Error("查询角色权限失败", zap.Uint("id_rol", inst.IDRol), zap.Error(err))
		return nil, err
	}
	if permisos == nil {
		permisos = []string{}
	}

	rol := rolPorDefecto
	if inst.Rol != nil {
		rol = inst.Rol.Nombre
	}
	return &dto.InstructorSesion{
		ID:           inst.IDInstructor,
		Nombre:       inst.Nombre,
		Email:        inst.Email,
		Cedula:       inst.Cedula,
		Rol:          rol,
		Permisos:     permisos,
		PrimerAcceso: inst.PrimerAcceso == 1,
	}, nil
}
