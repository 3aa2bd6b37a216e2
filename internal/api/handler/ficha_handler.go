package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/service"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/response"
)

// FichaHandler 班次模块 HTTP 处理器
type FichaHandler struct {
	svc service.FichaService
}

// NewFichaHandler 创建 FichaHandler
func NewFichaHandler(svc service.FichaService) *FichaHandler {
	return &FichaHandler{svc: svc}
}

// List 班次列表
// GET /api/fichas
func (h *FichaHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		handleFichaError(c, err)
		return
	}
	response.OK(c, list)
}

// ListByPrograma 项目下的班次
// GET /api/fichas/programa/:id_programa
func (h *FichaHandler) ListByPrograma(c *gin.Context) {
	id, ok := parseIDParam(c, "id_programa")
	if !ok {
		return
	}
	list, err := h.svc.ListByPrograma(c.Request.Context(), id)
	if err != nil {
		handleFichaError(c, err)
		return
	}
	response.OK(c, list)
}

// ListByInstructor 讲师关联的班次
// GET /api/fichas/instructor/:id_instructor
func (h *FichaHandler) ListByInstructor(c *gin.Context) {
	id, ok := parseIDParam(c, "id_instructor")
	if !ok {
		return
	}
	list, err := h.svc.ListByInstructor(c.Request.Context(), id)
	if err != nil {
		handleFichaError(c, err)
		return
	}
	response.OK(c, list)
}

// Get 班次详情
// GET /api/fichas/:id
func (h *FichaHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleFichaError(c, err)
		return
	}
	response.OK(c, result)
}

// Create 创建班次及其季度
// POST /api/fichas
func (h *FichaHandler) Create(c *gin.Context) {
	var req dto.CreateFichaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, err.Error())
		return
	}
	result, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		handleFichaError(c, err)
		return
	}
	response.Created(c, "Ficha creada exitosamente", result)
}

// Update 更新班次（编号与 jornada 不可修改）
// PUT /api/fichas/:id
func (h *FichaHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateFichaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, err.Error())
		return
	}
	result, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleFichaError(c, err)
		return
	}
	response.OKWithMessage(c, "Ficha actualizada exitosamente", result)
}

// Delete 删除班次及其从属数据
// DELETE /api/fichas/:id
func (h *FichaHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		handleFichaError(c, err)
		return
	}
	response.OKWithMessage(c, "Ficha eliminada exitosamente", nil)
}

// Calendario 导出季度日历
// GET /api/fichas/:id/calendario.ics
func (h *FichaHandler) Calendario(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ics, err := h.svc.ExportarCalendario(c.Request.Context(), id)
	if err != nil {
		handleFichaError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"ficha_%d.ics\"", id))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

func handleFichaError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFichaNoEncontrada):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrProgramaNoEncontrado):
		response.NotFound(c, 12001, err.Error())
	case errors.Is(err, service.ErrCodigoFichaExiste):
		response.BadRequest(c, 13002, err.Error())
	case errors.Is(err, service.ErrJornadaInvalida):
		response.BadRequest(c, 13003, err.Error())
	case errors.Is(err, service.ErrFechaInvalida):
		response.BadRequest(c, 13004, err.Error())
	case errors.Is(err, service.ErrDuracionFicha):
		response.BadRequest(c, 13005, err.Error())
	case errors.Is(err, service.ErrGestorNoEncontrado):
		response.BadRequest(c, 13006, err.Error())
	case errors.Is(err, service.ErrCampoInmutable):
		response.BadRequest(c, 13007, err.Error())
	default:
		response.InternalError(c)
	}
}
