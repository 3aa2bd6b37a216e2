package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
// Mensaje 面向用户（西班牙语）；Error/Detalles 仅在失败时出现，保留外部诊断信息
type Response struct {
	Code     int         `json:"code"`
	Mensaje  string      `json:"mensaje"`
	Data     interface{} `json:"data,omitempty"`
	Error    string      `json:"error,omitempty"`
	Detalles interface{} `json:"detalles,omitempty"`
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	OKWithMessage(c, "ok", data)
}

// OKWithMessage 200 成功响应（自定义提示语）
func OKWithMessage(c *gin.Context, mensaje string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Mensaje: mensaje,
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, mensaje string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Mensaje: mensaje,
		Data:    data,
	})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, mensaje string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Mensaje: mensaje,
		Error:   mensaje,
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, mensaje string, detalles interface{}) {
	c.JSON(httpStatus, Response{
		Code:     code,
		Mensaje:  mensaje,
		Error:    mensaje,
		Detalles: detalles,
	})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, mensaje string) {
	Error(c, http.StatusBadRequest, code, mensaje)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, mensaje string) {
	Error(c, http.StatusUnauthorized, code, mensaje)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, mensaje string) {
	Error(c, http.StatusForbidden, code, mensaje)
}

// NotFound 404
func NotFound(c *gin.Context, code int, mensaje string) {
	Error(c, http.StatusNotFound, code, mensaje)
}

// Conflict 409
func Conflict(c *gin.Context, code int, mensaje string) {
	Error(c, http.StatusConflict, code, mensaje)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "Error interno del servidor")
}
