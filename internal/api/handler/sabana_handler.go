package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/service"
	pkgerrors "github.com/k4mimi/Proyecto-Alistamiento/pkg/errors"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/response"
)

// SabanaHandler 排课（sábana）模块 HTTP 处理器
type SabanaHandler struct {
	svc service.SabanaService
}

// NewSabanaHandler 创建 SabanaHandler
func NewSabanaHandler(svc service.SabanaService) *SabanaHandler {
	return &SabanaHandler{svc: svc}
}

// ────────────────────── 查询 ──────────────────────

// Trimestres 班次的季度列表
// GET /api/sabana/trimestres/:id_ficha
func (h *SabanaHandler) Trimestres(c *gin.Context) {
	idFicha, ok := parseIDParam(c, "id_ficha")
	if !ok {
		return
	}
	list, err := h.svc.ObtenerTrimestres(c.Request.Context(), idFicha)
	if err != nil {
		handleSabanaError(c, err)
		return
	}
	response.OK(c, list)
}

// RapsDisponibles 尚未排入任何季度的 RAP
// GET /api/raps/disponibles/:id_ficha
func (h *SabanaHandler) RapsDisponibles(c *gin.Context) {
	idFicha, ok := parseIDParam(c, "id_ficha")
	if !ok {
		return
	}
	list, err := h.svc.ObtenerRapsDisponibles(c.Request.Context(), idFicha)
	if err != nil {
		handleSabanaError(c, err)
		return
	}
	response.OK(c, list)
}

// RapsAsignados 某季度已排的 RAP
// GET /api/raps/asignados/:id_ficha/:id_trimestre
func (h *SabanaHandler) RapsAsignados(c *gin.Context) {
	idFicha, ok := parseIDParam(c, "id_ficha")
	if !ok {
		return
	}
	idTrimestre, ok := parseIDParam(c, "id_trimestre")
	if !ok {
		return
	}
	list, err := h.svc.ObtenerRapsAsignados(c.Request.Context(), idFicha, idTrimestre)
	if err != nil {
		handleSabanaError(c, err)
		return
	}
	response.OK(c, list)
}

// Base 扁平排课视图
// GET /api/sabana/:id_ficha
func (h *SabanaHandler) Base(c *gin.Context) {
	idFicha, ok := parseIDParam(c, "id_ficha")
	if !ok {
		return
	}
	list, err := h.svc.ObtenerSabanaBase(c.Request.Context(), idFicha)
	if err != nil {
		handleSabanaError(c, err)
		return
	}
	response.OKWithMessage(c, "Sabana base obtenida exitosamente", list)
}

// Matriz 透视后的排课矩阵
// GET /api/sabana/matriz/:id_ficha
func (h *SabanaHandler) Matriz(c *gin.Context) {
	idFicha, ok := parseIDParam(c, "id_ficha")
	if !ok {
		return
	}
	filas, err := h.svc.ObtenerSabanaMatriz(c.Request.Context(), idFicha)
	if err != nil {
		handleSabanaError(c, err)
		return
	}
	response.OKWithMessage(c, "Sabana matriz obtenida exitosamente", filas)
}

// Instructores 班次关联的在职讲师
// GET /api/sabana/instructores/:id_ficha
func (h *SabanaHandler) Instructores(c *gin.Context) {
	idFicha, ok := parseIDParam(c, "id_ficha")
	if !ok {
		return
	}
	list, err := h.svc.ObtenerInstructoresFicha(c.Request.Context(), idFicha)
	if err != nil {
		handleSabanaError(c, err)
		return
	}
	response.OK(c, list)
}

// Saberes RAP 的概念性知识
// GET /api/raps/:id/saberes
func (h *SabanaHandler) Saberes(c *gin.Context) {
	h.conocimiento(c, h.svc.ObtenerSaberes)
}

// Procesos RAP 的过程性知识
// GET /api/raps/:id/procesos
func (h *SabanaHandler) Procesos(c *gin.Context) {
	h.conocimiento(c, h.svc.ObtenerProcesos)
}

// Criterios RAP 的评价标准
// GET /api/raps/:id/criterios
func (h *SabanaHandler) Criterios(c *gin.Context) {
	h.conocimiento(c, h.svc.ObtenerCriterios)
}

func (h *SabanaHandler) conocimiento(c *gin.Context, fn func(ctx context.Context, idRap uint) ([]dto.ConocimientoResponse, error)) {
	idRap, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	list, err := fn(c.Request.Context(), idRap)
	if err != nil {
		handleSabanaError(c, err)
		return
	}
	response.OK(c, list)
}

// ────────────────────── 变更 ──────────────────────

// AsignarRap 将 RAP 排入季度，返回刷新后的矩阵
// POST /api/sabana/assign（兼容 POST /api/raps/asignar）
func (h *SabanaHandler) AsignarRap(c *gin.Context) {
	var req dto.AsignarRapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "id_rap, id_trimestre e id_ficha son requeridos")
		return
	}
	matriz, err := h.svc.AsignarRap(c.Request.Context(), &req)
	if err != nil {
		handleSabanaError(c, err)
		return
	}
	response.OKWithMessage(c, "RAP asignado exitosamente al trimestre", matriz)
}

// QuitarRap 从季度移除 RAP，返回刷新后的矩阵
// DELETE /api/sabana/unassign（兼容 DELETE /api/raps/quitar）
func (h *SabanaHandler) QuitarRap(c *gin.Context) {
	var req dto.QuitarRapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "id_rap, id_trimestre e id_ficha son requeridos")
		return
	}
	matriz, err := h.svc.QuitarRap(c.Request.Context(), &req)
	if err != nil {
		handleSabanaError(c, err)
		return
	}
	response.OKWithMessage(c, "RAP quitado exitosamente del trimestre", matriz)
}

// ActualizarHoras 手动调整季度学时
// PATCH /api/sabana/update-hours
func (h *SabanaHandler) ActualizarHoras(c *gin.Context) {
	var req dto.ActualizarHorasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "id_rap_trimestre, horas_trimestre e id_ficha son requeridos")
		return
	}
	result, err := h.svc.ActualizarHoras(c.Request.Context(), &req)
	if err != nil {
		handleSabanaError(c, err)
		return
	}
	response.OKWithMessage(c, "Horas actualizadas exitosamente", result)
}

// AsignarInstructor 为排课记录指定讲师；id_instructor 为空时取消指定
// PATCH /api/sabana/assign-instructor
func (h *SabanaHandler) AsignarInstructor(c *gin.Context) {
	var req dto.AsignarInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "id_rap_trimestre es requerido")
		return
	}
	result, err := h.svc.AsignarInstructor(c.Request.Context(), req.IDRapTrimestre, req.IDInstructor)
	if err != nil {
		handleSabanaError(c, err)
		return
	}
	mensaje := "Instructor asignado exitosamente"
	if req.IDInstructor == nil {
		mensaje = "Instructor desasignado exitosamente"
	}
	response.OKWithMessage(c, mensaje, result)
}

// DesasignarInstructor 取消讲师指定
// DELETE /api/sabana/unassign-instructor
func (h *SabanaHandler) DesasignarInstructor(c *gin.Context) {
	var req dto.DesasignarInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "id_rap_trimestre es requerido")
		return
	}
	result, err := h.svc.DesasignarInstructor(c.Request.Context(), req.IDRapTrimestre)
	if err != nil {
		handleSabanaError(c, err)
		return
	}
	response.OKWithMessage(c, "Instructor desasignado exitosamente", result)
}

func handleSabanaError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFichaNoEncontrada):
		response.NotFound(c, 14001, err.Error())
	case errors.Is(err, service.ErrTrimestreAjeno),
		errors.Is(err, service.ErrTrimestreNoPerteneceFicha):
		response.BadRequest(c, 14002, err.Error())
	case errors.Is(err, service.ErrRapNoEncontrado):
		response.NotFound(c, 14003, err.Error())
	case errors.Is(err, service.ErrRapNoPertenecePrograma):
		response.BadRequest(c, 14004, err.Error())
	case errors.Is(err, service.ErrAsignacionNoEncontrada):
		response.BadRequest(c, 14005, err.Error())
	case errors.Is(err, service.ErrRapTrimestreNoEncontrado):
		response.NotFound(c, 14006, err.Error())
	case errors.Is(err, service.ErrRapTrimestreOtraFicha):
		response.BadRequest(c, 14007, err.Error())
	case errors.Is(err, service.ErrInstructorNoEncontrado):
		response.NotFound(c, 14008, err.Error())
	case errors.Is(err, service.ErrInstructorInactivo):
		response.BadRequest(c, 14009, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Error(c, http.StatusConflict, 14010, err.Error())
	default:
		response.InternalError(c)
	}
}
