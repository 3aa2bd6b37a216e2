package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/repository"
	pkgerrors "github.com/k4mimi/Proyecto-Alistamiento/pkg/errors"
)

const fechaLayout = "2006-01-02"

// mesesPorTrimestre 日历导出时每个季度的跨度
const mesesPorTrimestre = 3

// 季度阶段
const (
	FaseAnalisis   = "Análisis"
	FasePlaneacion = "Planeación"
	FaseEjecucion  = "Ejecución"
	FaseEvaluacion = "Evaluación"
)

var (
	ErrCodigoFichaExiste  = errors.New("El código de ficha ya existe")
	ErrJornadaInvalida    = errors.New("Jornada inválida: debe ser Diurna o Nocturna")
	ErrFechaInvalida      = errors.New("Formato de fecha inválido, use YYYY-MM-DD")
	ErrDuracionFicha      = errors.New("La fecha final debe ser al menos 12 meses posterior a la fecha de inicio")
	ErrGestorNoEncontrado = errors.New("El gestor indicado no existe")
	ErrCampoInmutable     = errors.New("El código de ficha y la jornada no se pueden modificar")
)

// FichaService 班次业务接口
type FichaService interface {
	Create(ctx context.Context, req *dto.CreateFichaRequest) (*dto.FichaResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.FichaResponse, error)
	List(ctx context.Context) ([]dto.FichaResponse, error)
	ListByPrograma(ctx context.Context, idPrograma uint) ([]dto.FichaResponse, error)
	ListByInstructor(ctx context.Context, idInstructor uint) ([]dto.FichaResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateFichaRequest) (*dto.FichaResponse, error)
	Delete(ctx context.Context, id uint) error
	ExportarCalendario(ctx context.Context, id uint) (string, error)
}

type fichaService struct {
	repo   *repository.Repository
	cache  MatrizCache
	logger *zap.Logger
}

// NewFichaService 创建 FichaService 实例；cache 可为 nil
func NewFichaService(repo *repository.Repository, cache MatrizCache, logger *zap.Logger) FichaService {
	return &fichaService{repo: repo, cache: cache, logger: logger}
}

// Create 在一个事务内创建班次及其 1..N 个季度；指定 gestor 时同时关联到班次
func (s *fichaService) Create(ctx context.Context, req *dto.CreateFichaRequest) (*dto.FichaResponse, error) {
	cantidad := model.TrimestresPorJornada(req.Jornada)
	if cantidad == 0 {
		return nil, ErrJornadaInvalida
	}
	inicio, fin, err := parsearRango(req.FechaInicio, req.FechaFinal)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Programa.GetByID(ctx, req.IDPrograma); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramaNoEncontrado
		}
		s.logger.Error("查询项目失败", zap.Uint("id_programa", req.IDPrograma), zap.Error(err))
		return nil, err
	}
	if err := s.validarGestor(ctx, req.IDGestor); err != nil {
		return nil, err
	}

	ficha := &model.Ficha{
		CodigoFicha:       strings.TrimSpace(req.CodigoFicha),
		Modalidad:         req.Modalidad,
		Jornada:           req.Jornada,
		Ambiente:          req.Ambiente,
		FechaInicio:       inicio,
		FechaFinal:        fin,
		CantidadTrimestre: cantidad,
		IDPrograma:        req.IDPrograma,
		IDGestor:          req.IDGestor,
	}

	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.Ficha.Create(ctx, ficha); err != nil {
			return err
		}
		if err := txRepo.Trimestre.CreateBatch(ctx, generarTrimestres(ficha.IDFicha, cantidad)); err != nil {
			return err
		}
		if ficha.IDGestor != nil {
			return txRepo.InstructorFicha.Vincular(ctx, *ficha.IDGestor, ficha.IDFicha)
		}
		return nil
	})
	if err != nil {
		if pkgerrors.IsDuplicate(err) {
			return nil, ErrCodigoFichaExiste
		}
		s.logger.Error("创建班次失败", zap.String("codigo_ficha", ficha.CodigoFicha), zap.Error(err))
		return nil, err
	}

	s.logger.Info("班次已创建",
		zap.Uint("id_ficha", ficha.IDFicha),
		zap.String("codigo_ficha", ficha.CodigoFicha),
		zap.Int("trimestres", cantidad),
	)
	return toFichaResponse(ficha), nil
}

func (s *fichaService) GetByID(ctx context.Context, id uint) (*dto.FichaResponse, error) {
	f, err := s.getFicha(ctx, id)
	if err != nil {
		return nil, err
	}
	return toFichaResponse(f), nil
}

func (s *fichaService) List(ctx context.Context) ([]dto.FichaResponse, error) {
	list, err := s.repo.Ficha.List(ctx)
	if err != nil {
		s.logger.Error("查询班次列表失败", zap.Error(err))
		return nil, err
	}
	return toFichaResponses(list), nil
}

func (s *fichaService) ListByPrograma(ctx context.Context, idPrograma uint) ([]dto.FichaResponse, error) {
	list, err := s.repo.Ficha.ListByPrograma(ctx, idPrograma)
	if err != nil {
		s.logger.Error("查询项目班次失败", zap.Uint("id_programa", idPrograma), zap.Error(err))
		return nil, err
	}
	return toFichaResponses(list), nil
}

func (s *fichaService) ListByInstructor(ctx context.Context, idInstructor uint) ([]dto.FichaResponse, error) {
	list, err := s.repo.Ficha.ListByInstructor(ctx, idInstructor)
	if err != nil {
		s.logger.Error("查询讲师班次失败", zap.Uint("id_instructor", idInstructor), zap.Error(err))
		return nil, err
	}
	return toFichaResponses(list), nil
}

// Update 更新可变字段；codigo_ficha 与 jornada 出现在请求中即拒绝
func (s *fichaService) Update(ctx context.Context, id uint, req *dto.UpdateFichaRequest) (*dto.FichaResponse, error) {
	if req.CodigoFicha != nil || req.Jornada != nil {
		return nil, ErrCampoInmutable
	}

	f, err := s.getFicha(ctx, id)
	if err != nil {
		return nil, err
	}

	inicio, fin := f.FechaInicio.Format(fechaLayout), f.FechaFinal.Format(fechaLayout)
	if req.FechaInicio != nil {
		inicio = *req.FechaInicio
	}
	if req.FechaFinal != nil {
		fin = *req.FechaFinal
	}
	f.FechaInicio, f.FechaFinal, err = parsearRango(inicio, fin)
	if err != nil {
		return nil, err
	}

	if req.Modalidad != nil {
		f.Modalidad = *req.Modalidad
	}
	if req.Ambiente != nil {
		f.Ambiente = req.Ambiente
	}
	if req.IDGestor != nil {
		if err := s.validarGestor(ctx, req.IDGestor); err != nil {
			return nil, err
		}
		f.IDGestor = req.IDGestor
	}

	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.Ficha.Update(ctx, f); err != nil {
			return err
		}
		if req.IDGestor != nil {
			return txRepo.InstructorFicha.Vincular(ctx, *req.IDGestor, f.IDFicha)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("更新班次失败", zap.Uint("id_ficha", id), zap.Error(err))
		return nil, err
	}
	return toFichaResponse(f), nil
}

// Delete 在一个事务内删除班次及其季度、排课、计划与讲师关联
func (s *fichaService) Delete(ctx context.Context, id uint) error {
	if _, err := s.getFicha(ctx, id); err != nil {
		return err
	}

	err := runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		return eliminarDatosFichas(ctx, txRepo, []uint{id})
	})
	if err != nil {
		s.logger.Error("删除班次失败", zap.Uint("id_ficha", id), zap.Error(err))
		return err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateMatriz(ctx, id); err != nil {
			s.logger.Warn("清除矩阵缓存失败", zap.Uint("id_ficha", id), zap.Error(err))
		}
	}
	s.logger.Info("班次已删除", zap.Uint("id_ficha", id))
	return nil
}

// ExportarCalendario 每个季度导出为一个全天 VEVENT
// 第 n 季度从 fecha_inicio + 3×(n-1) 个月开始，持续 3 个月
func (s *fichaService) ExportarCalendario(ctx context.Context, id uint) (string, error) {
	f, err := s.getFicha(ctx, id)
	if err != nil {
		return "", err
	}
	trimestres, err := s.repo.Trimestre.ListByFicha(ctx, id)
	if err != nil {
		s.logger.Error("查询季度失败", zap.Uint("id_ficha", id), zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//NodoRAP//Fichas//ES")
	cal.SetName("Ficha " + f.CodigoFicha)

	stamp := time.Now().UTC()
	for _, t := range trimestres {
		inicio, fin := RangoTrimestre(f.FechaInicio, t.NoTrimestre)

		ev := cal.AddEvent(fmt.Sprintf("ficha-%d-trimestre-%d@nodorap", f.IDFicha, t.NoTrimestre))
		ev.SetDtStampTime(stamp)
		ev.SetAllDayStartAt(inicio)
		ev.SetAllDayEndAt(fin)
		ev.SetSummary(fmt.Sprintf("Ficha %s - Trimestre %d", f.CodigoFicha, t.NoTrimestre))
		if t.Fase != nil {
			ev.SetDescription("Fase: " + *t.Fase)
		}
		if f.Ambiente != nil {
			ev.SetLocation(*f.Ambiente)
		}
	}
	return cal.Serialize(), nil
}

// RangoTrimestre 第 n 季度的 [inicio, fin)
func RangoTrimestre(fechaInicio time.Time, n int) (time.Time, time.Time) {
	inicio := fechaInicio.AddDate(0, mesesPorTrimestre*(n-1), 0)
	return inicio, inicio.AddDate(0, mesesPorTrimestre, 0)
}

// FaseDeTrimestre 第一季度为分析，第二季度为规划，最后一个季度为评估，其余为执行
func FaseDeTrimestre(n, total int) string {
	switch {
	case n == 1:
		return FaseAnalisis
	case n == 2:
		return FasePlaneacion
	case n == total:
		return FaseEvaluacion
	default:
		return FaseEjecucion
	}
}

func generarTrimestres(idFicha uint, cantidad int) []model.Trimestre {
	out := make([]model.Trimestre, 0, cantidad)
	for n := 1; n <= cantidad; n++ {
		fase := FaseDeTrimestre(n, cantidad)
		out = append(out, model.Trimestre{NoTrimestre: n, Fase: &fase, IDFicha: idFicha})
	}
	return out
}

// parsearRango 解析日期并校验 fecha_final ≥ fecha_inicio + 12 个月
func parsearRango(inicioStr, finStr string) (time.Time, time.Time, error) {
	inicio, err := time.Parse(fechaLayout, strings.TrimSpace(inicioStr))
	if err != nil {
		return time.Time{}, time.Time{}, ErrFechaInvalida
	}
	fin, err := time.Parse(fechaLayout, strings.TrimSpace(finStr))
	if err != nil {
		return time.Time{}, time.Time{}, ErrFechaInvalida
	}
	if fin.Before(inicio.AddDate(1, 0, 0)) {
		return time.Time{}, time.Time{}, ErrDuracionFicha
	}
	return inicio, fin, nil
}

func (s *fichaService) validarGestor(ctx context.Context, idGestor *uint) error {
	if idGestor == nil {
		return nil
	}
	if _, err := s.repo.Instructor.GetByID(ctx, *idGestor); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGestorNoEncontrado
		}
		s.logger.Error("查询 gestor 失败", zap.Uint("id_gestor", *idGestor), zap.Error(err))
		return err
	}
	return nil
}

func (s *fichaService) getFicha(ctx context.Context, id uint) (*model.Ficha, error) {
	f, err := s.repo.Ficha.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFichaNoEncontrada
		}
		s.logger.Error("查询班次失败", zap.Uint("id_ficha", id), zap.Error(err))
		return nil, err
	}
	return f, nil
}

func toFichaResponse(f *model.Ficha) *dto.FichaResponse {
	return &dto.FichaResponse{
		IDFicha:           f.IDFicha,
		CodigoFicha:       f.CodigoFicha,
		Modalidad:         f.Modalidad,
		Jornada:           f.Jornada,
		Ambiente:          f.Ambiente,
		FechaInicio:       f.FechaInicio.Format(fechaLayout),
		FechaFinal:        f.FechaFinal.Format(fechaLayout),
		CantidadTrimestre: f.CantidadTrimestre,
		IDPrograma:        f.IDPrograma,
		IDGestor:          f.IDGestor,
	}
}

func toFichaResponses(list []model.Ficha) []dto.FichaResponse {
	out := make([]dto.FichaResponse, 0, len(list))
	for i := range list {
		out = append(out, *toFichaResponse(&list[i]))
	}
	return out
}
