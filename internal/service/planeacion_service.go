package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/repository"
)

var (
	ErrPlaneacionIncompleta   = errors.New("Datos incompletos: se requiere ficha, trimestre y al menos un RAP")
	ErrPlaneacionNoEncontrada = errors.New("Planeación no encontrada")
	ErrPlaneacionRapDuplicado = errors.New("Un RAP no puede repetirse en la misma planeación")
	ErrTrimestreFueraDeRango  = errors.New("El trimestre no existe en la ficha")
)

// PlaneacionService 教学计划业务接口
type PlaneacionService interface {
	Create(ctx context.Context, req *dto.CreatePlaneacionRequest) (*dto.CreatePlaneacionResponse, error)
	ListByFicha(ctx context.Context, idFicha uint) ([]dto.PlaneacionResumen, error)
	GetByID(ctx context.Context, id uint) (*dto.PlaneacionDetalleResponse, error)
	Delete(ctx context.Context, id uint) (*dto.DeletePlaneacionResponse, error)
}

type planeacionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPlaneacionService 创建 PlaneacionService 实例
func NewPlaneacionService(repo *repository.Repository, logger *zap.Logger) PlaneacionService {
	return &planeacionService{repo: repo, logger: logger}
}

// Create 主表与全部明细在同一事务内写入
func (s *planeacionService) Create(ctx context.Context, req *dto.CreatePlaneacionRequest) (*dto.CreatePlaneacionResponse, error) {
	if req.IDFicha == 0 || req.Trimestre < 1 || len(req.Raps) == 0 {
		return nil, ErrPlaneacionIncompleta
	}

	ficha, err := s.getFicha(ctx, req.IDFicha)
	if err != nil {
		return nil, err
	}
	idTrimestre, err := s.resolverTrimestre(ctx, req)
	if err != nil {
		return nil, err
	}

	fecha := time.Now()
	if req.FechaCreacion != nil && *req.FechaCreacion != "" {
		fecha, err = time.ParseInLocation(fechaLayout, *req.FechaCreacion, time.Local)
		if err != nil {
			return nil, ErrFechaInvalida
		}
	}

	observaciones := fmt.Sprintf("Planeación Trimestre %d - Ficha %s", req.Trimestre, ficha.CodigoFicha)
	if req.Observaciones != nil && strings.TrimSpace(*req.Observaciones) != "" {
		observaciones = strings.TrimSpace(*req.Observaciones)
	}

	vistos := make(map[uint]struct{}, len(req.Raps))
	for _, r := range req.Raps {
		if _, ok := vistos[r.IDRap]; ok {
			return nil, ErrPlaneacionRapDuplicado
		}
		vistos[r.IDRap] = struct{}{}
		pertenece, err := s.repo.Rap.PerteneceProgramaDeFicha(ctx, r.IDRap, req.IDFicha)
		if err != nil {
			return nil, err
		}
		if !pertenece {
			return nil, ErrRapNoPertenecePrograma
		}
	}

	cab := &model.PlaneacionPedagogica{
		IDFicha:       req.IDFicha,
		IDTrimestre:   idTrimestre,
		NoTrimestre:   req.Trimestre,
		Observaciones: observaciones,
		FechaCreacion: fecha,
	}
	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.Planeacion.Create(ctx, cab); err != nil {
			return err
		}
		detalles := make([]model.DetallePlaneacion, 0, len(req.Raps))
		for _, r := range req.Raps {
			detalles = append(detalles, toDetallePlaneacion(cab.IDPlaneacion, &r))
		}
		return txRepo.Planeacion.CreateDetalles(ctx, detalles)
	})
	if err != nil {
		s.logger.Error("保存教学计划失败", zap.Uint("id_ficha", req.IDFicha), zap.Error(err))
		return nil, err
	}

	s.logger.Info("创建教学计划",
		zap.Uint("id_planeacion", cab.IDPlaneacion),
		zap.Uint("id_ficha", req.IDFicha),
		zap.Int("trimestre", req.Trimestre),
		zap.Int("raps", len(req.Raps)),
	)
	return &dto.CreatePlaneacionResponse{
		IDPlaneacion: cab.IDPlaneacion,
		TotalRaps:    len(req.Raps),
		Trimestre:    req.Trimestre,
		Ficha:        req.IDFicha,
	}, nil
}

func (s *planeacionService) ListByFicha(ctx context.Context, idFicha uint) ([]dto.PlaneacionResumen, error) {
	if _, err := s.getFicha(ctx, idFicha); err != nil {
		return nil, err
	}
	list, err := s.repo.Planeacion.ListByFicha(ctx, idFicha)
	if err != nil {
		s.logger.Error("查询教学计划失败", zap.Uint("id_ficha", idFicha), zap.Error(err))
		return nil, err
	}

	ids := make([]uint, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.IDPlaneacion)
	}
	totales, err := s.repo.Planeacion.CountDetalles(ctx, ids)
	if err != nil {
		s.logger.Error("统计教学计划明细失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.PlaneacionResumen, 0, len(list))
	for i := range list {
		out = append(out, toPlaneacionResumen(&list[i], totales[list[i].IDPlaneacion]))
	}
	return out, nil
}

func (s *planeacionService) GetByID(ctx context.Context, id uint) (*dto.PlaneacionDetalleResponse, error) {
	p, err := s.repo.Planeacion.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlaneacionNoEncontrada
		}
		s.logger.Error("查询教学计划失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	detalles, err := s.repo.Planeacion.ListDetalles(ctx, id)
	if err != nil {
		s.logger.Error("查询教学计划明细失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	resp := &dto.PlaneacionDetalleResponse{
		PlaneacionResumen: toPlaneacionResumen(p, int64(len(detalles))),
		Detalles:          make([]dto.DetallePlaneacionResponse, 0, len(detalles)),
	}
	for i := range detalles {
		resp.Detalles = append(resp.Detalles, toDetallePlaneacionResponse(&detalles[i]))
	}
	return resp, nil
}

// Delete 先删明细再删主表；主表不存在时整体回滚
func (s *planeacionService) Delete(ctx context.Context, id uint) (*dto.DeletePlaneacionResponse, error) {
	var eliminados int64
	err := runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		n, err := txRepo.Planeacion.DeleteDetallesByPlaneaciones(ctx, []uint{id})
		if err != nil {
			return err
		}
		eliminados = n
		n, err = txRepo.Planeacion.DeleteByIDs(ctx, []uint{id})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrPlaneacionNoEncontrada
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrPlaneacionNoEncontrada) {
			s.logger.Error("删除教学计划失败", zap.Uint("id", id), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("删除教学计划", zap.Uint("id_planeacion", id), zap.Int64("detalles", eliminados))
	return &dto.DeletePlaneacionResponse{IDPlaneacion: id, DetallesEliminados: eliminados}, nil
}

// ────────────────────── 内部方法 ──────────────────────

func (s *planeacionService) getFicha(ctx context.Context, idFicha uint) (*model.Ficha, error) {
	ficha, err := s.repo.Ficha.GetByID(ctx, idFicha)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFichaNoEncontrada
		}
		s.logger.Error("查询班次失败", zap.Uint("id_ficha", idFicha), zap.Error(err))
		return nil, err
	}
	return ficha, nil
}

// resolverTrimestre 校验 id_trimestre 属于班次；未提供时按季度序号查找
func (s *planeacionService) resolverTrimestre(ctx context.Context, req *dto.CreatePlaneacionRequest) (*uint, error) {
	trimestres, err := s.repo.Trimestre.ListByFicha(ctx, req.IDFicha)
	if err != nil {
		return nil, err
	}
	for _, t := range trimestres {
		if req.IDTrimestre != nil {
			if t.IDTrimestre == *req.IDTrimestre {
				if t.NoTrimestre != req.Trimestre {
					return nil, ErrTrimestreNoPerteneceFicha
				}
				id := t.IDTrimestre
				return &id, nil
			}
			continue
		}
		if t.NoTrimestre == req.Trimestre {
			id := t.IDTrimestre
			return &id, nil
		}
	}
	if req.IDTrimestre != nil {
		return nil, ErrTrimestreNoPerteneceFicha
	}
	return nil, ErrTrimestreFueraDeRango
}

func toDetallePlaneacion(idPlaneacion uint, r *dto.DetallePlaneacionRequest) model.DetallePlaneacion {
	return model.DetallePlaneacion{
		IDPlaneacion:           idPlaneacion,
		IDRap:                  r.IDRap,
		CodigoRap:              r.CodigoRap,
		NombreRap:              r.NombreRap,
		Competencia:            r.Competencia,
		HorasTrimestre:         r.HorasTrimestre,
		ActividadesAprendizaje: r.ActividadesAprendizaje,
		DuracionDirecta:        r.DuracionDirecta,
		DuracionIndependiente:  r.DuracionIndependiente,
		DescripcionEvidencia:   r.DescripcionEvidencia,
		EstrategiasDidacticas:  r.EstrategiasDidacticas,
		AmbientesAprendizaje:   r.AmbientesAprendizaje,
		MaterialesFormacion:    r.MaterialesFormacion,
		Observaciones:          r.Observaciones,
		SaberesConceptos:       r.SaberesConceptos,
		SaberesProceso:         r.SaberesProceso,
		CriteriosEvaluacion:    r.CriteriosEvaluacion,
	}
}

func toDetallePlaneacionResponse(d *model.DetallePlaneacion) dto.DetallePlaneacionResponse {
	return dto.DetallePlaneacionResponse{
		IDDetalle: d.IDDetalle,
		DetallePlaneacionRequest: dto.DetallePlaneacionRequest{
			IDRap:                  d.IDRap,
			CodigoRap:              d.CodigoRap,
			NombreRap:              d.NombreRap,
			Competencia:            d.Competencia,
			HorasTrimestre:         d.HorasTrimestre,
			ActividadesAprendizaje: d.ActividadesAprendizaje,
			DuracionDirecta:        d.DuracionDirecta,
			DuracionIndependiente:  d.DuracionIndependiente,
			DescripcionEvidencia:   d.DescripcionEvidencia,
			EstrategiasDidacticas:  d.EstrategiasDidacticas,
			AmbientesAprendizaje:   d.AmbientesAprendizaje,
			MaterialesFormacion:    d.MaterialesFormacion,
			Observaciones:          d.Observaciones,
			SaberesConceptos:       d.SaberesConceptos,
			SaberesProceso:         d.SaberesProceso,
			CriteriosEvaluacion:    d.CriteriosEvaluacion,
		},
	}
}

func toPlaneacionResumen(p *model.PlaneacionPedagogica, totalRaps int64) dto.PlaneacionResumen {
	return dto.PlaneacionResumen{
		IDPlaneacion:  p.IDPlaneacion,
		IDFicha:       p.IDFicha,
		IDTrimestre:   p.IDTrimestre,
		NoTrimestre:   p.NoTrimestre,
		Observaciones: p.Observaciones,
		FechaCreacion: p.FechaCreacion.Format(fechaLayout),
		TotalRaps:     totalRaps,
	}
}
