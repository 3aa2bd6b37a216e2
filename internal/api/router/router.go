package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/k4mimi/Proyecto-Alistamiento/config"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/api/handler"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/api/middleware"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/jwt"
)

// multipart 表单字段与边界的余量，文件大小本身由 upload.max_size 限制
const multipartOverhead = 1 << 20

// Cache Redis 在 HTTP 层提供的能力；未启用 Redis 时传入 nil
type Cache interface {
	middleware.TokenChecker
	middleware.RateLimiter
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, cache Cache, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	var (
		checker middleware.TokenChecker
		limiter middleware.RateLimiter
	)
	if cache != nil {
		checker, limiter = cache, cache
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit, cfg.Upload.MaxSize+multipartOverhead))
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// 认证模块（无需认证）
		api.POST("/auth/login", middleware.RateLimit(limiter, 10, time.Minute), h.Auth.Login)

		// 需要认证的路由
		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, checker))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 讲师模块
			instructores := authorized.Group("/instructores")
			{
				instructores.GET("", middleware.PermisoAuth(model.PermisoGestionarInstructores), h.Instructor.List)
				instructores.GET("/:id", middleware.PermisoAuth(model.PermisoGestionarInstructores), h.Instructor.Get)
				instructores.POST("", middleware.PermisoAuth(model.PermisoGestionarInstructores), h.Instructor.Create)
				instructores.PUT("/:id", middleware.PermisoAuth(model.PermisoGestionarInstructores), h.Instructor.Update)
				instructores.DELETE("/:id", middleware.PermisoAuth(model.PermisoGestionarInstructores), h.Instructor.Delete)
				instructores.PUT("/:id/cambiar-contrasena", h.Instructor.CambiarContrasena) // 本人或管理员（Handler 层鉴权）
				instructores.GET("/:id/fichas", h.Instructor.Fichas)
			}
			authorized.GET("/roles", h.Instructor.ListRoles)
			authorized.GET("/permisos", h.Instructor.ListPermisos)

			// 培训项目模块
			programas := authorized.Group("/programas")
			{
				programas.GET("", h.Programa.List)
				programas.GET("/:id", h.Programa.Get)
				programas.POST("", middleware.PermisoAuth(model.PermisoGestionarProgramas), h.Programa.Create)
				programas.PUT("/:id", middleware.PermisoAuth(model.PermisoGestionarProgramas), h.Programa.Update)
				programas.DELETE("/:id", middleware.PermisoAuth(model.PermisoGestionarProgramas), h.Programa.Delete)
			}

			// 班次模块
			fichas := authorized.Group("/fichas")
			{
				fichas.GET("", h.Ficha.List)
				fichas.GET("/programa/:id_programa", h.Ficha.ListByPrograma)
				fichas.GET("/instructor/:id_instructor", h.Ficha.ListByInstructor)
				fichas.GET("/:id", h.Ficha.Get)
				fichas.GET("/:id/calendario.ics", h.Ficha.Calendario)
				fichas.POST("", middleware.PermisoAuth(model.PermisoGestionarFichas), h.Ficha.Create)
				fichas.PUT("/:id", middleware.PermisoAuth(model.PermisoGestionarFichas), h.Ficha.Update)
				fichas.DELETE("/:id", middleware.PermisoAuth(model.PermisoGestionarFichas), h.Ficha.Delete)
			}

			// 排课模块
			ver := middleware.PermisoAuth(model.PermisoVerSabana, model.PermisoEditarSabana)
			editar := middleware.PermisoAuth(model.PermisoEditarSabana)

			sabana := authorized.Group("/sabana")
			{
				sabana.GET("/trimestres/:id_ficha", ver, h.Sabana.Trimestres)
				sabana.GET("/instructores/:id_ficha", ver, h.Sabana.Instructores)
				sabana.GET("/matriz/:id_ficha", ver, h.Sabana.Matriz)
				sabana.GET("/matriz/:id_ficha/export", ver, h.Export.ExportarMatriz)
				sabana.GET("/:id_ficha", ver, h.Sabana.Base)
				sabana.POST("/assign", editar, h.Sabana.AsignarRap)
				sabana.DELETE("/unassign", editar, h.Sabana.QuitarRap)
				sabana.PATCH("/update-hours", editar, h.Sabana.ActualizarHoras)
				sabana.PATCH("/assign-instructor", editar, h.Sabana.AsignarInstructor)
				sabana.DELETE("/unassign-instructor", editar, h.Sabana.DesasignarInstructor)
			}

			raps := authorized.Group("/raps")
			{
				raps.GET("/disponibles/:id_ficha", ver, h.Sabana.RapsDisponibles)
				raps.GET("/asignados/:id_ficha/:id_trimestre", ver, h.Sabana.RapsAsignados)
				raps.GET("/:id/saberes", h.Sabana.Saberes)
				raps.GET("/:id/procesos", h.Sabana.Procesos)
				raps.GET("/:id/criterios", h.Sabana.Criterios)
				// 旧版路径
				raps.POST("/asignar", editar, h.Sabana.AsignarRap)
				raps.DELETE("/quitar", editar, h.Sabana.QuitarRap)
			}

			// PDF 导入模块
			pdf := authorized.Group("/pdf")
			pdf.Use(middleware.PermisoAuth(model.PermisoCargarPDF), middleware.RateLimit(limiter, 10, time.Minute))
			{
				pdf.POST("/procesar/programa", h.Pdf.ProcesarPrograma)
				pdf.POST("/procesar/proyecto", h.Pdf.ProcesarProyecto)
			}

			// 教学计划模块
			planeaciones := authorized.Group("/planeaciones")
			planeaciones.Use(middleware.PermisoAuth(model.PermisoGestionarPlaneaciones))
			{
				planeaciones.POST("", h.Planeacion.Create)
				planeaciones.GET("/ficha/:id_ficha", h.Planeacion.ListByFicha)
				planeaciones.GET("/:id", h.Planeacion.Get)
				planeaciones.DELETE("/:id", h.Planeacion.Delete)
			}
		}
	}

	return r
}
