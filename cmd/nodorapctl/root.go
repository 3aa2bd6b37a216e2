package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/config"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/repository"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/database"
	applogger "github.com/k4mimi/Proyecto-Alistamiento/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "nodorapctl",
	Short:         "Herramientas de operación de NodoRAP",
	Long:          "Migraciones, ingesta de PDF desde disco y alta del administrador inicial.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "ruta del archivo de configuración (por defecto ./config.yaml)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(createAdminCmd)
}

// entorno 命令运行所需的公共依赖
type entorno struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	repo   *repository.Repository
}

// cargarEntorno 加载配置、日志与数据库连接
func cargarEntorno() (*entorno, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, err
	}
	return &entorno{cfg: cfg, logger: logger, db: db, repo: repository.NewRepository(db)}, nil
}

func (e *entorno) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		sqlDB.Close()
	}
	e.logger.Sync()
}
