package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"

	"github.com/k4mimi/Proyecto-Alistamiento/config"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/service"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/extractor"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/response"
)

const (
	campoArchivo        = "archivo"
	mensajePdfOK        = "PDF procesado exitosamente"
	mensajePdfSinFile   = "No se ha subido ningún archivo"
	mensajePdfError     = "Error al procesar el PDF"
	mensajePdfExtension = "Solo se permiten archivos PDF"
	mensajePdfInvalido  = "El archivo no es un PDF válido"
	mensajePdfGrande    = "El archivo excede el tamaño máximo permitido"
)

// pdfcpu 仅用于结构校验，不读写用户配置目录
func init() {
	api.DisableConfigDir()
}

// PdfHandler PDF 导入模块 HTTP 处理器
type PdfHandler struct {
	svc    service.PdfService
	upload *config.UploadConfig
	logger *zap.Logger
}

// NewPdfHandler 创建 PdfHandler
func NewPdfHandler(svc service.PdfService, upload *config.UploadConfig, logger *zap.Logger) *PdfHandler {
	return &PdfHandler{svc: svc, upload: upload, logger: logger}
}

// ProcesarPrograma 上传项目 PDF 并导入能力单元与 RAP
// POST /api/pdf/procesar/programa（multipart：archivo，可选 tipo）
func (h *PdfHandler) ProcesarPrograma(c *gin.Context) {
	path, ok := h.recibirPDF(c)
	if !ok {
		return
	}
	defer h.eliminar(path)

	result, err := h.svc.ProcesarPrograma(c.Request.Context(), path, c.PostForm("tipo"))
	if err != nil {
		h.handlePdfError(c, err)
		return
	}
	response.OKWithMessage(c, mensajePdfOK, result)
}

// ProcesarProyecto 上传课题 PDF 并导入阶段、活动及其 RAP 关联
// POST /api/pdf/procesar/proyecto（multipart：archivo）
func (h *PdfHandler) ProcesarProyecto(c *gin.Context) {
	path, ok := h.recibirPDF(c)
	if !ok {
		return
	}
	defer h.eliminar(path)

	result, err := h.svc.ProcesarProyecto(c.Request.Context(), path)
	if err != nil {
		h.handlePdfError(c, err)
		return
	}
	response.OKWithMessage(c, mensajePdfOK, result)
}

// recibirPDF 校验并保存上传文件，返回临时路径
// 失败时已写入响应，并负责清理已保存的文件
func (h *PdfHandler) recibirPDF(c *gin.Context) (string, bool) {
	fh, err := c.FormFile(campoArchivo)
	if err != nil {
		response.BadRequest(c, 15001, mensajePdfSinFile)
		return "", false
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		response.BadRequest(c, 15002, mensajePdfExtension)
		return "", false
	}
	if h.upload.MaxSize > 0 && fh.Size > h.upload.MaxSize {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, mensajePdfGrande)
		return "", false
	}

	if err := os.MkdirAll(h.upload.Dir, 0o755); err != nil {
		h.logger.Error("创建上传目录失败", zap.String("dir", h.upload.Dir), zap.Error(err))
		response.InternalError(c)
		return "", false
	}
	nombre := fmt.Sprintf("%d-%s-%s", time.Now().UnixNano(), uuid.NewString(), filepath.Base(fh.Filename))
	path := filepath.Join(h.upload.Dir, nombre)
	if err := c.SaveUploadedFile(fh, path); err != nil {
		h.logger.Error("保存上传文件失败", zap.String("path", path), zap.Error(err))
		response.InternalError(c)
		return "", false
	}

	// 扩展名可以伪造，交给 pdfcpu 校验文件结构
	pdfCtx, err := api.ReadContextFile(path)
	if err == nil {
		err = api.ValidateContext(pdfCtx)
	}
	if err != nil {
		h.eliminar(path)
		response.ErrorWithDetails(c, http.StatusBadRequest, 15003, mensajePdfInvalido, err.Error())
		return "", false
	}

	h.logger.Info("PDF 已接收", zap.String("archivo", fh.Filename), zap.Int64("bytes", fh.Size))
	return path, true
}

// eliminar 删除临时文件；失败只记录日志
func (h *PdfHandler) eliminar(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		h.logger.Warn("删除临时文件失败", zap.String("path", path), zap.Error(err))
	}
}

func (h *PdfHandler) handlePdfError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrModoInvalido) {
		response.BadRequest(c, 15004, err.Error())
		return
	}
	if extErr, ok := extractor.AsError(err); ok {
		response.ErrorWithDetails(c, http.StatusInternalServerError, 15005, mensajePdfError, extErr)
		return
	}
	h.logger.Error("PDF 导入失败", zap.Error(err))
	response.ErrorWithDetails(c, http.StatusInternalServerError, 15000, mensajePdfError, err.Error())
}
