package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/service"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/response"
)

// ProgramaHandler 培训项目模块 HTTP 处理器
type ProgramaHandler struct {
	svc service.ProgramaService
}

// NewProgramaHandler 创建 ProgramaHandler
func NewProgramaHandler(svc service.ProgramaService) *ProgramaHandler {
	return &ProgramaHandler{svc: svc}
}

// List 项目列表（含班次数量）
// GET /api/programas
func (h *ProgramaHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		handleProgramaError(c, err)
		return
	}
	response.OK(c, list)
}

// Get 项目详情
// GET /api/programas/:id
func (h *ProgramaHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleProgramaError(c, err)
		return
	}
	response.OK(c, result)
}

// Create 创建项目
// POST /api/programas
func (h *ProgramaHandler) Create(c *gin.Context) {
	var req dto.CreateProgramaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, service.ErrProgramaCamposFaltantes.Error())
		return
	}
	result, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		handleProgramaError(c, err)
		return
	}
	response.Created(c, "Programa creado exitosamente", result)
}

// Update 部分更新项目
// PUT /api/programas/:id
func (h *ProgramaHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProgramaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, err.Error())
		return
	}
	result, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleProgramaError(c, err)
		return
	}
	response.OKWithMessage(c, "Programa actualizado exitosamente", result)
}

// Delete 级联删除项目
// DELETE /api/programas/:id
func (h *ProgramaHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		handleProgramaError(c, err)
		return
	}
	response.OKWithMessage(c, result.Mensaje, result)
}

func handleProgramaError(c *gin.Context, err error) {
	var delErr *service.DeletionError
	switch {
	case errors.As(err, &delErr):
		// 回滚后仍返回计数，便于前端提示影响范围
		response.ErrorWithDetails(c, http.StatusInternalServerError, 12004, delErr.Mensaje, delErr.Resumen)
	case errors.Is(err, service.ErrProgramaNoEncontrado):
		response.NotFound(c, 12001, err.Error())
	case errors.Is(err, service.ErrCodigoProgramaExiste):
		response.BadRequest(c, 12002, err.Error())
	case errors.Is(err, service.ErrProgramaCamposFaltantes):
		response.BadRequest(c, 12003, err.Error())
	default:
		response.InternalError(c)
	}
}
