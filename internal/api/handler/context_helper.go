package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/k4mimi/Proyecto-Alistamiento/pkg/response"
)

// 上下文键，由 JWTAuth 中间件写入
const (
	CtxInstructorID = "instructor_id"
	CtxRol          = "rol"
	CtxPermisos     = "permisos"
	CtxTokenJTI     = "token_jti"
	CtxTokenExp     = "token_exp"
)

// MustGetInstructorID 从 Gin 上下文中安全提取当前讲师 id。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetInstructorID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(CtxInstructorID)
	if !exists {
		response.Unauthorized(c, 10002, "No autenticado")
		return 0, false
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		response.Unauthorized(c, 10002, "No autenticado")
		return 0, false
	}
	return id, true
}

// GetToken 提取当前令牌的 jti 与过期时间；缺失时返回零值
func GetToken(c *gin.Context) (string, time.Time) {
	jti := c.GetString(CtxTokenJTI)
	exp, _ := c.Get(CtxTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}

// parseIDParam 解析路径中的正整数 id；失败时写入 400 响应
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, 10001, "El parámetro "+name+" debe ser un número válido")
		return 0, false
	}
	return uint(id), true
}

// TienePermiso 当前讲师是否持有指定权限
func TienePermiso(c *gin.Context, permiso string) bool {
	v, _ := c.Get(CtxPermisos)
	permisos, _ := v.([]string)
	for _, p := range permisos {
		if p == permiso {
			return true
		}
	}
	return false
}
