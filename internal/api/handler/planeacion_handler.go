package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/service"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/response"
)

// PlaneacionHandler 教学计划模块 HTTP 处理器
type PlaneacionHandler struct {
	svc service.PlaneacionService
}

// NewPlaneacionHandler 创建 PlaneacionHandler
func NewPlaneacionHandler(svc service.PlaneacionService) *PlaneacionHandler {
	return &PlaneacionHandler{svc: svc}
}

// Create 创建教学计划（主表与明细同一事务）
// POST /api/planeaciones
func (h *PlaneacionHandler) Create(c *gin.Context) {
	var req dto.CreatePlaneacionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, service.ErrPlaneacionIncompleta.Error())
		return
	}
	result, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		handlePlaneacionError(c, err)
		return
	}
	response.Created(c, "Planeación guardada exitosamente", result)
}

// ListByFicha 班次的教学计划
// GET /api/planeaciones/ficha/:id_ficha
func (h *PlaneacionHandler) ListByFicha(c *gin.Context) {
	idFicha, ok := parseIDParam(c, "id_ficha")
	if !ok {
		return
	}
	list, err := h.svc.ListByFicha(c.Request.Context(), idFicha)
	if err != nil {
		handlePlaneacionError(c, err)
		return
	}
	response.OK(c, list)
}

// Get 教学计划详情
// GET /api/planeaciones/:id
func (h *PlaneacionHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		handlePlaneacionError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete 删除教学计划
// DELETE /api/planeaciones/:id
func (h *PlaneacionHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		handlePlaneacionError(c, err)
		return
	}
	response.OKWithMessage(c, "Planeación eliminada exitosamente", result)
}

func handlePlaneacionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlaneacionNoEncontrada):
		response.NotFound(c, 16001, err.Error())
	case errors.Is(err, service.ErrFichaNoEncontrada):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrPlaneacionIncompleta):
		response.BadRequest(c, 16002, err.Error())
	case errors.Is(err, service.ErrPlaneacionRapDuplicado):
		response.BadRequest(c, 16003, err.Error())
	case errors.Is(err, service.ErrTrimestreFueraDeRango),
		errors.Is(err, service.ErrTrimestreNoPerteneceFicha):
		response.BadRequest(c, 16004, err.Error())
	case errors.Is(err, service.ErrRapNoPertenecePrograma):
		response.BadRequest(c, 16005, err.Error())
	case errors.Is(err, service.ErrFechaInvalida):
		response.BadRequest(c, 16006, err.Error())
	default:
		response.InternalError(c)
	}
}
