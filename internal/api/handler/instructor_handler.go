package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/service"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/response"
)

// InstructorHandler 讲师、角色与权限模块 HTTP 处理器
type InstructorHandler struct {
	svc      service.InstructorService
	fichaSvc service.FichaService
}

// NewInstructorHandler 创建 InstructorHandler
func NewInstructorHandler(svc service.InstructorService, fichaSvc service.FichaService) *InstructorHandler {
	return &InstructorHandler{svc: svc, fichaSvc: fichaSvc}
}

// List 讲师列表
// GET /api/instructores
func (h *InstructorHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		handleInstructorError(c, err)
		return
	}
	response.OK(c, list)
}

// Get 讲师详情
// GET /api/instructores/:id
func (h *InstructorHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleInstructorError(c, err)
		return
	}
	response.OK(c, result)
}

// Create 创建讲师
// POST /api/instructores
func (h *InstructorHandler) Create(c *gin.Context) {
	var req dto.CreateInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, service.ErrInstructorCampos.Error())
		return
	}
	result, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		handleInstructorError(c, err)
		return
	}
	response.Created(c, "Instructor creado exitosamente", result)
}

// Update 更新讲师
// PUT /api/instructores/:id
func (h *InstructorHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, err.Error())
		return
	}
	result, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleInstructorError(c, err)
		return
	}
	response.OKWithMessage(c, "Instructor actualizado exitosamente", result)
}

// Delete 删除讲师
// DELETE /api/instructores/:id
func (h *InstructorHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		handleInstructorError(c, err)
		return
	}
	response.OKWithMessage(c, "Instructor eliminado exitosamente", nil)
}

// CambiarContrasena 修改密码并清除首次登录标记
// PUT /api/instructores/:id/cambiar-contrasena
func (h *InstructorHandler) CambiarContrasena(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	actual, ok := MustGetInstructorID(c)
	if !ok {
		return
	}
	// 仅本人或具备讲师管理权限者
	if actual != id && !TienePermiso(c, model.PermisoGestionarInstructores) {
		response.Forbidden(c, 10003, "No tiene permisos para esta operación")
		return
	}
	var req dto.CambiarContrasenaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, service.ErrContrasenaCorta.Error())
		return
	}
	if err := h.svc.CambiarContrasena(c.Request.Context(), id, &req); err != nil {
		handleInstructorError(c, err)
		return
	}
	response.OKWithMessage(c, "Contraseña actualizada exitosamente", nil)
}

// Fichas 讲师关联的班次
// GET /api/instructores/:id/fichas
func (h *InstructorHandler) Fichas(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.svc.GetByID(c.Request.Context(), id); err != nil {
		handleInstructorError(c, err)
		return
	}
	list, err := h.fichaSvc.ListByInstructor(c.Request.Context(), id)
	if err != nil {
		handleFichaError(c, err)
		return
	}
	response.OK(c, list)
}

// ListRoles 角色列表
// GET /api/roles
func (h *InstructorHandler) ListRoles(c *gin.Context) {
	list, err := h.svc.ListRoles(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, list)
}

// ListPermisos 权限列表
// GET /api/permisos
func (h *InstructorHandler) ListPermisos(c *gin.Context) {
	list, err := h.svc.ListPermisos(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, list)
}

func handleInstructorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInstructorNoEncontrado):
		response.NotFound(c, 11003, err.Error())
	case errors.Is(err, service.ErrCedulaRegistrada):
		response.BadRequest(c, 11004, err.Error())
	case errors.Is(err, service.ErrEmailRegistrado):
		response.BadRequest(c, 11005, err.Error())
	case errors.Is(err, service.ErrEmailInvalido):
		response.BadRequest(c, 11006, err.Error())
	case errors.Is(err, service.ErrContrasenaCorta):
		response.BadRequest(c, 11007, err.Error())
	case errors.Is(err, service.ErrRolNoEncontrado):
		response.BadRequest(c, 11008, err.Error())
	case errors.Is(err, service.ErrEstadoInvalido):
		response.BadRequest(c, 11009, err.Error())
	case errors.Is(err, service.ErrInstructorCampos):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, service.ErrInstructorEnUso):
		response.Conflict(c, 11010, err.Error())
	default:
		response.InternalError(c)
	}
}
