package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/k4mimi/Proyecto-Alistamiento/config"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/api/handler"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/api/router"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/repository"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/service"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/database"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/extractor"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/jwt"
	applogger "github.com/k4mimi/Proyecto-Alistamiento/pkg/logger"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/redis"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/tracing"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("NODORAP_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 链路追踪（未启用时为 noop）
	shutdownTracing, err := tracing.Init(context.Background(), &cfg.Tracing, logger)
	if err != nil {
		logger.Warn("链路追踪初始化失败，继续运行", zap.Error(err))
	}

	// 4. 连接数据库并准备表结构
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	if err := database.Prepare(db, cfg.Database.Driver, model.All(), logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 5. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	// 接口参数必须传无类型 nil，避免 typed-nil 指针被当作已启用
	var (
		svcCache    service.Cache
		routerCache router.Cache
		rdb         *redis.Client
	)
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，令牌黑名单、限流与矩阵缓存将不可用", zap.Error(err))
		rdb = nil
	} else {
		svcCache, routerCache = rdb, rdb
	}

	// 6. 初始化 JWT 管理器与 PDF 抽取客户端
	jwtMgr := jwt.NewManager(&cfg.Auth)
	ext := extractor.NewClient(&cfg.Extractor, logger)

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, svcCache, ext, logger)
	h := handler.NewHandler(cfg, svc, logger)

	// 8. 初始化路由
	if err := handler.RegisterValidators(); err != nil {
		logger.Fatal("注册校验规则失败", zap.Error(err))
	}
	engine := router.Setup(cfg, h, jwtMgr, routerCache, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	// PDF 抽取同步执行，写超时需覆盖抽取超时
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Extractor.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("链路追踪关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
