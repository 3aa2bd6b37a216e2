package handler

import (
	"go.uber.org/zap"

	"github.com/k4mimi/Proyecto-Alistamiento/config"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Instructor *InstructorHandler
	Programa   *ProgramaHandler
	Ficha      *FichaHandler
	Sabana     *SabanaHandler
	Pdf        *PdfHandler
	Planeacion *PlaneacionHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Instructor: NewInstructorHandler(svc.Instructor, svc.Ficha),
		Programa:   NewProgramaHandler(svc.Programa),
		Ficha:      NewFichaHandler(svc.Ficha),
		Sabana:     NewSabanaHandler(svc.Sabana),
		Pdf:        NewPdfHandler(svc.Pdf, &cfg.Upload, logger),
		Planeacion: NewPlaneacionHandler(svc.Planeacion),
		Export:     NewExportHandler(svc.Export),
	}
}
