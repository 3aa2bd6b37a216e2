package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/service"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 讲师登录
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Email y contraseña son requeridos")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	response.OKWithMessage(c, "Login exitoso", result)
}

// Logout 注销：当前令牌加入黑名单
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp := GetToken(c)
	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		response.InternalError(c)
		return
	}
	response.OKWithMessage(c, "Sesión cerrada", nil)
}

// Me 当前登录讲师
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := MustGetInstructorID(c)
	if !ok {
		return
	}

	result, err := h.authSvc.Me(c.Request.Context(), id)
	if err != nil {
		handleAuthError(c, err)
		return
	}
	response.OK(c, result)
}

func handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCredencialesInvalidas):
		response.Error(c, http.StatusUnauthorized, 11001, err.Error())
	case errors.Is(err, service.ErrUsuarioInactivo):
		response.Forbidden(c, 11002, err.Error())
	case errors.Is(err, service.ErrInstructorNoEncontrado):
		response.NotFound(c, 11003, err.Error())
	default:
		response.InternalError(c)
	}
}
