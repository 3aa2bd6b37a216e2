package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/k4mimi/Proyecto-Alistamiento/pkg/jwt"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/response"
)

// 上下文键；handler 包以同名常量读取
const (
	ctxInstructorID = "instructor_id"
	ctxRol          = "rol"
	ctxPermisos     = "permisos"
	ctxTokenJTI     = "token_jti"
	ctxTokenExp     = "token_exp"
)

// TokenChecker 令牌黑名单查询；由 Redis 客户端实现
type TokenChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token
// checker 为 nil 时不检查黑名单
func JWTAuth(jwtMgr *jwt.Manager, checker TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "Token no proporcionado")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "Formato de autorización inválido")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token inválido o expirado")
			c.Abort()
			return
		}
		id, err := claims.InstructorID()
		if err != nil {
			response.Unauthorized(c, 10002, "Token inválido o expirado")
			c.Abort()
			return
		}

		if checker != nil && claims.ID != "" {
			revoked, err := checker.IsBlacklisted(c.Request.Context(), claims.ID)
			// Redis 出错时降级放行
			if err == nil && revoked {
				response.Unauthorized(c, 10002, "Sesión cerrada, inicie sesión de nuevo")
				c.Abort()
				return
			}
		}

		var exp time.Time
		if claims.ExpiresAt != nil {
			exp = claims.ExpiresAt.Time
		}

		// 将讲师信息注入上下文
		c.Set(ctxInstructorID, id)
		c.Set(ctxRol, claims.Rol)
		c.Set(ctxPermisos, claims.Permisos)
		c.Set(ctxTokenJTI, claims.ID)
		c.Set(ctxTokenExp, exp)

		c.Next()
	}
}

// PermisoAuth 权限中间件
// 当前讲师持有任一指定权限即放行
func PermisoAuth(permisos ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(ctxPermisos)
		if !exists {
			response.Unauthorized(c, 10002, "No autenticado")
			c.Abort()
			return
		}

		propios, _ := v.([]string)
		for _, p := range propios {
			for _, requerido := range permisos {
				if p == requerido {
					c.Next()
					return
				}
			}
		}

		response.Forbidden(c, 10003, "No tiene permisos para esta operación")
		c.Abort()
	}
}
