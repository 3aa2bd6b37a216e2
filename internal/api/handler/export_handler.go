package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/service"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/response"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportarMatriz 下载 sábana 矩阵 Excel
// GET /api/sabana/matriz/:id_ficha/export
func (h *ExportHandler) ExportarMatriz(c *gin.Context) {
	idFicha, ok := parseIDParam(c, "id_ficha")
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportarMatriz(c.Request.Context(), idFicha)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFichaNoEncontrada):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrExportSinRaps):
		response.BadRequest(c, 17001, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 17002, err.Error())
	default:
		response.InternalError(c)
	}
}
