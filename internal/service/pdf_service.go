package service

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/repository"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/extractor"
)

// ErrModoInvalido 未知的抽取模式
var ErrModoInvalido = errors.New("Tipo de extracción inválido")

// denominacionFragmento 活动关联 RAP 时比较的 denominacion 前缀长度
const denominacionFragmento = 30

// Extractor PDF 抽取边界；生产环境由 pkg/extractor.Client 实现
type Extractor interface {
	Extract(ctx context.Context, pdfPath string, mode extractor.Mode) (*extractor.Result, error)
}

// PdfService PDF 导入业务接口
type PdfService interface {
	ProcesarPrograma(ctx context.Context, pdfPath, tipo string) (*dto.ProcesarProgramaResponse, error)
	ProcesarProyecto(ctx context.Context, pdfPath string) (*dto.ProcesarProyectoResponse, error)
}

type pdfService struct {
	repo      *repository.Repository
	extractor Extractor
	tracer    trace.Tracer
	logger    *zap.Logger
}

// NewPdfService 创建 PdfService 实例
func NewPdfService(repo *repository.Repository, ext Extractor, logger *zap.Logger) PdfService {
	return &pdfService{
		repo:      repo,
		extractor: ext,
		tracer:    otel.Tracer("nodorap/service/pdf"),
		logger:    logger,
	}
}

// ProcesarPrograma 抽取项目 PDF，并在一个事务内写入项目、能力单元、RAP 及其知识文本
func (s *pdfService) ProcesarPrograma(ctx context.Context, pdfPath, tipo string) (*dto.ProcesarProgramaResponse, error) {
	if strings.TrimSpace(tipo) == "" {
		tipo = string(extractor.ModeTodo)
	}
	mode, ok := extractor.ParseMode(tipo)
	if !ok {
		return nil, ErrModoInvalido
	}

	ctx, span := s.tracer.Start(ctx, "pdf.ProcesarPrograma", trace.WithAttributes(attribute.String("mode", string(mode))))
	defer span.End()

	resultado, err := s.extraer(ctx, pdfPath, mode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extract")
		return nil, err
	}

	resp := &dto.ProcesarProgramaResponse{
		IDsCompetencias: []uint{},
		IDsRaps:         []uint{},
		Resumen: dto.ResumenIngesta{
			Programas:             len(resultado.Programa),
			Competencias:          len(resultado.Competencias),
			ResultadosAprendizaje: len(resultado.UnidadRaps),
		},
	}

	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		return s.guardarPrograma(ctx, txRepo, resultado, resp)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist")
		s.logger.Error("保存项目 PDF 数据失败", zap.String("pdf", pdfPath), zap.Error(err))
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("competencias", len(resp.IDsCompetencias)),
		attribute.Int("raps", len(resp.IDsRaps)),
	)
	s.logger.Info("项目 PDF 导入完成",
		zap.Int("competencias", len(resp.IDsCompetencias)),
		zap.Int("raps", len(resp.IDsRaps)),
	)
	return resp, nil
}

func (s *pdfService) guardarPrograma(ctx context.Context, repo *repository.Repository, res *extractor.Result, resp *dto.ProcesarProgramaResponse) error {
	if len(res.Programa) > 0 {
		p := res.Programa[0]
		programa := &model.Programa{
			CodigoPrograma:       p.CodigoPrograma.Ptr(),
			NombrePrograma:       p.NombrePrograma.Ptr(),
			Vigencia:             p.Vigencia.Ptr(),
			TipoPrograma:         p.Tipo.Ptr(),
			VersionPrograma:      p.VersionPrograma.Ptr(),
			HorasTotales:         extractor.ExtraerNumeroHoras(p.HorasTotales.String()),
			HorasEtapaLectiva:    extractor.ExtraerNumeroHoras(p.HorasEtapaLectiva.String()),
			HorasEtapaProductiva: extractor.ExtraerNumeroHoras(p.HorasEtapaProductiva.String()),
		}
		if err := repo.Programa.Create(ctx, programa); err != nil {
			return err
		}
		resp.IDPrograma = &programa.IDPrograma
	}

	// 本次导入的能力单元优先于库中同 norma 的旧记录
	porNorma := make(map[string]*model.Competencia, len(res.Competencias))
	for _, c := range res.Competencias {
		comp := &model.Competencia{
			IDPrograma:        resp.IDPrograma,
			CodigoNorma:       c.CodigoNorma.Ptr(),
			NombreCompetencia: c.NombreCompetencia.Ptr(),
			UnidadCompetencia: c.UnidadCompetencia.Ptr(),
			DuracionMaxima:    extractor.ExtraerNumeroHoras(c.DuracionMaxima.String()),
		}
		if err := repo.Competencia.Create(ctx, comp); err != nil {
			return err
		}
		resp.IDsCompetencias = append(resp.IDsCompetencias, comp.IDCompetencia)
		if comp.CodigoNorma != nil {
			porNorma[*comp.CodigoNorma] = comp
		}
	}

	for _, unidad := range res.UnidadRaps {
		codigo := strings.TrimSpace(unidad.CodigoCompetencia.String())
		raps := ProcesarCompetencia(unidad)
		if len(raps) == 0 {
			s.logger.Warn("能力单元没有 RAP，跳过", zap.String("codigo_competencia", codigo))
			continue
		}

		comp, ok := porNorma[codigo]
		if !ok {
			found, err := repo.Competencia.GetByCodigoNorma(ctx, codigo)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					s.logger.Warn("能力单元不存在，跳过其 RAP", zap.String("codigo_competencia", codigo))
					continue
				}
				return err
			}
			comp = found
		}

		duracion := DuracionPorRap(comp.DuracionMaxima, len(raps))
		for _, pr := range raps {
			rap := &model.Rap{
				IDCompetencia: comp.IDCompetencia,
				Codigo:        pr.Codigo,
				Denominacion:  pr.Denominacion,
				Duracion:      duracion,
			}
			if err := repo.Rap.Create(ctx, rap); err != nil {
				return err
			}
			resp.IDsRaps = append(resp.IDsRaps, rap.IDRap)

			if err := guardarConocimientos(ctx, repo, rap.IDRap, &pr); err != nil {
				return err
			}
		}
		s.logger.Debug("能力单元 RAP 已保存",
			zap.String("codigo_competencia", codigo),
			zap.Int("raps", len(raps)),
			zap.Intp("duracion_por_rap", duracion),
		)
	}
	return nil
}

// guardarConocimientos 每类文本非空时写入一条记录
func guardarConocimientos(ctx context.Context, repo *repository.Repository, idRap uint, pr *ParsedRap) error {
	if strings.TrimSpace(pr.ConocimientosProceso) != "" {
		if err := repo.Conocimiento.CreateProceso(ctx, &model.ConocimientoProceso{IDRap: idRap, Nombre: pr.ConocimientosProceso}); err != nil {
			return err
		}
	}
	if strings.TrimSpace(pr.ConocimientosSaber) != "" {
		if err := repo.Conocimiento.CreateSaber(ctx, &model.ConocimientoSaber{IDRap: idRap, Nombre: pr.ConocimientosSaber}); err != nil {
			return err
		}
	}
	if strings.TrimSpace(pr.CriteriosEvaluacion) != "" {
		if err := repo.Conocimiento.CreateCriterio(ctx, &model.CriterioEvaluacion{IDRap: idRap, Nombre: pr.CriteriosEvaluacion}); err != nil {
			return err
		}
	}
	return nil
}

// ProcesarProyecto 依次执行 proyecto / fases / actividades 三次抽取，再在一个事务内写入
func (s *pdfService) ProcesarProyecto(ctx context.Context, pdfPath string) (*dto.ProcesarProyectoResponse, error) {
	ctx, span := s.tracer.Start(ctx, "pdf.ProcesarProyecto")
	defer span.End()

	partes := make(map[extractor.Mode]*extractor.Result, 3)
	for _, mode := range []extractor.Mode{extractor.ModeProyecto, extractor.ModeFases, extractor.ModeActividades} {
		res, err := s.extraer(ctx, pdfPath, mode)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "extract")
			return nil, err
		}
		partes[mode] = res
	}

	resp := &dto.ProcesarProyectoResponse{RapsNoEncontrados: []string{}}
	err := runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := s.guardarProyecto(ctx, txRepo, partes[extractor.ModeProyecto], partes[extractor.ModeFases], resp); err != nil {
			return err
		}
		return s.guardarActividades(ctx, txRepo, partes[extractor.ModeActividades], resp)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist")
		s.logger.Error("保存课题 PDF 数据失败", zap.String("pdf", pdfPath), zap.Error(err))
		return nil, err
	}

	s.logger.Info("课题 PDF 导入完成",
		zap.Int("actividades", resp.Actividades),
		zap.Int("relaciones", resp.Relaciones),
		zap.Int("raps_no_encontrados", len(resp.RapsNoEncontrados)),
	)
	return resp, nil
}

// guardarProyecto 课题按 codigo_programa 关联项目；阶段只在课题存在时写入
func (s *pdfService) guardarProyecto(ctx context.Context, repo *repository.Repository, proy, fases *extractor.Result, resp *dto.ProcesarProyectoResponse) error {
	if proy == nil || len(proy.Proyecto) == 0 {
		return nil
	}
	p := proy.Proyecto[0]

	proyecto := &model.Proyecto{
		CodigoProyecto:  p.CodigoProyecto.Ptr(),
		NombreProyecto:  p.NombreProyecto.Ptr(),
		CodigoPrograma:  p.CodigoPrograma.Ptr(),
		CentroFormacion: p.CentroFormacion.Ptr(),
		Regional:        p.Regional.Ptr(),
	}
	if proyecto.CodigoPrograma != nil {
		programa, err := repo.Programa.GetByCodigo(ctx, *proyecto.CodigoPrograma)
		switch {
		case err == nil:
			proyecto.IDPrograma = &programa.IDPrograma
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
	}
	if err := repo.Proyecto.Create(ctx, proyecto); err != nil {
		return err
	}
	resp.IDProyecto = &proyecto.IDProyecto
	resp.IDPrograma = proyecto.IDPrograma

	if fases == nil {
		return nil
	}
	for _, f := range fases.Fases {
		nombre := strings.TrimSpace(f.Nombre.String())
		if nombre == "" {
			continue
		}
		if err := repo.Proyecto.CreateFase(ctx, &model.Fase{Nombre: nombre}); err != nil {
			return err
		}
		resp.Fases++
	}
	return nil
}

func (s *pdfService) guardarActividades(ctx context.Context, repo *repository.Repository, acts *extractor.Result, resp *dto.ProcesarProyectoResponse) error {
	if acts == nil {
		return nil
	}
	for _, a := range acts.Actividades {
		actividad := &model.ActividadProyecto{
			Fase:            strings.TrimSpace(a.Fase.String()),
			NombreActividad: strings.TrimSpace(a.NombreActividad.String()),
		}
		if err := repo.Proyecto.CreateActividad(ctx, actividad); err != nil {
			return err
		}
		resp.Actividades++

		for _, ref := range a.Raps {
			rap, err := repo.Rap.FindByCodigoDenominacion(ctx, ref.Codigo, prefijoRunas(ref.Denominacion, denominacionFragmento))
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					s.logger.Warn("活动引用的 RAP 不存在，跳过",
						zap.Uint("id_actividad", actividad.IDActividad),
						zap.String("codigo", ref.Codigo),
					)
					resp.RapsNoEncontrados = append(resp.RapsNoEncontrados, ref.Codigo)
					continue
				}
				return err
			}
			if err := repo.Proyecto.VincularRap(ctx, actividad.IDActividad, rap.IDRap); err != nil {
				return err
			}
			resp.Relaciones++
		}
	}
	return nil
}

func (s *pdfService) extraer(ctx context.Context, pdfPath string, mode extractor.Mode) (*extractor.Result, error) {
	ctx, span := s.tracer.Start(ctx, "extractor.Extract", trace.WithAttributes(attribute.String("mode", string(mode))))
	defer span.End()

	res, err := s.extractor.Extract(ctx, pdfPath, mode)
	if err != nil {
		if e, ok := extractor.AsError(err); ok {
			span.SetAttributes(attribute.String("extractor.kind", string(e.Kind)))
			s.logger.Error("PDF 抽取失败",
				zap.String("mode", string(mode)),
				zap.String("kind", string(e.Kind)),
				zap.String("details", e.Details),
			)
		} else {
			s.logger.Error("PDF 抽取失败", zap.String("mode", string(mode)), zap.Error(err))
		}
		return nil, err
	}
	return res, nil
}

// prefijoRunas 取前 n 个字符（按 rune 计）
func prefijoRunas(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
