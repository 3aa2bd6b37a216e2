package service

import (
	"go.uber.org/zap"

	"github.com/k4mimi/Proyecto-Alistamiento/config"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/repository"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Instructor InstructorService
	Programa   ProgramaService
	Ficha      FichaService
	Sabana     SabanaService
	Pdf        PdfService
	Planeacion PlaneacionService
	Export     ExportService
}

// Cache Redis 提供的能力集合；未启用 Redis 时传入 nil
type Cache interface {
	MatrizCache
	TokenBlacklist
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	cache Cache,
	ext Extractor,
	logger *zap.Logger,
) *Service {
	// cache 为 nil 时矩阵不缓存、注销不写黑名单
	var (
		matriz    MatrizCache
		blacklist TokenBlacklist
	)
	if cache != nil {
		// 所有会失效矩阵的服务共用同一份失效代数
		matriz, blacklist = coherente(cache), cache
	}

	sabana := NewSabanaService(repo, matriz, logger)
	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, blacklist, logger),
		Instructor: NewInstructorService(repo, cfg.Auth.BcryptCost, matriz, logger),
		Programa:   NewProgramaService(repo, logger),
		Ficha:      NewFichaService(repo, matriz, logger),
		Sabana:     sabana,
		Pdf:        NewPdfService(repo, ext, logger),
		Planeacion: NewPlaneacionService(repo, logger),
		Export:     NewExportService(repo, sabana, logger),
	}
}
