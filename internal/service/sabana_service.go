package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/repository"
	pkgerrors "github.com/k4mimi/Proyecto-Alistamiento/pkg/errors"
)

// ── sábana 排课模块业务错误 ──

var (
	ErrFichaNoEncontrada         = errors.New("Ficha no encontrada")
	ErrTrimestreAjeno            = errors.New("El trimestre no pertenece a la ficha especificada")
	ErrTrimestreNoPerteneceFicha = errors.New("El trimestre no pertenece a esta ficha")
	ErrRapNoEncontrado           = errors.New("RAP no encontrado")
	ErrRapNoPertenecePrograma    = errors.New("El RAP no pertenece al programa de la ficha")
	ErrAsignacionNoEncontrada    = errors.New("El RAP no existe en el trimestre indicado")
	ErrRapTrimestreNoEncontrado  = errors.New("Registro rap_trimestre no encontrado")
	ErrRapTrimestreOtraFicha     = errors.New("El registro no pertenece a esta ficha")
	ErrInstructorNoEncontrado    = errors.New("Instructor no encontrado")
	ErrInstructorInactivo        = errors.New("El instructor no está activo")
)

// MatrizCache 矩阵读缓存；写操作后按班次失效
type MatrizCache interface {
	GetMatriz(ctx context.Context, idFicha uint) ([]byte, error)
	SetMatriz(ctx context.Context, idFicha uint, payload []byte) error
	InvalidateMatriz(ctx context.Context, idFicha uint) error
}

// SabanaService sábana 排课业务接口
type SabanaService interface {
	ObtenerRapsDisponibles(ctx context.Context, idFicha uint) ([]dto.RapDisponible, error)
	ObtenerRapsAsignados(ctx context.Context, idFicha, idTrimestre uint) ([]dto.RapAsignado, error)
	ObtenerSabanaBase(ctx context.Context, idFicha uint) ([]dto.SabanaBaseRow, error)
	ObtenerSabanaMatriz(ctx context.Context, idFicha uint) ([]dto.MatrizFila, error)
	ObtenerTrimestres(ctx context.Context, idFicha uint) ([]dto.TrimestreResponse, error)
	ObtenerInstructoresFicha(ctx context.Context, idFicha uint) ([]dto.InstructorFichaResponse, error)

	AsignarRap(ctx context.Context, req *dto.AsignarRapRequest) ([]dto.MatrizFila, error)
	QuitarRap(ctx context.Context, req *dto.QuitarRapRequest) ([]dto.MatrizFila, error)
	ActualizarHoras(ctx context.Context, req *dto.ActualizarHorasRequest) (*dto.RapTrimestreResponse, error)
	AsignarInstructor(ctx context.Context, idRapTrimestre uint, idInstructor *uint) (*dto.RapTrimestreResponse, error)
	DesasignarInstructor(ctx context.Context, idRapTrimestre uint) (*dto.RapTrimestreResponse, error)

	ValidarRapPertenecePrograma(ctx context.Context, idRap, idFicha uint) (bool, error)
	ValidarRapYaAsignado(ctx context.Context, idRap, idTrimestre uint) (bool, error)
	ValidarTrimestrePerteneceFicha(ctx context.Context, idTrimestre, idFicha uint) (bool, error)

	ObtenerSaberes(ctx context.Context, idRap uint) ([]dto.ConocimientoResponse, error)
	ObtenerProcesos(ctx context.Context, idRap uint) ([]dto.ConocimientoResponse, error)
	ObtenerCriterios(ctx context.Context, idRap uint) ([]dto.ConocimientoResponse, error)
}

type sabanaService struct {
	repo   *repository.Repository
	cache  *matrizCoherente
	logger *zap.Logger

	// 同一班次并发的矩阵重建只执行一次
	builds singleflight.Group
}

// NewSabanaService 创建 SabanaService 实例；cache 可为 nil
func NewSabanaService(repo *repository.Repository, cache MatrizCache, logger *zap.Logger) SabanaService {
	return &sabanaService{repo: repo, cache: coherente(cache), logger: logger}
}

// ═══════════════════════════════════════════════════════════
// 读投影
// ═══════════════════════════════════════════════════════════

func (s *sabanaService) ObtenerRapsDisponibles(ctx context.Context, idFicha uint) ([]dto.RapDisponible, error) {
	ficha, err := s.getFicha(ctx, idFicha)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Sabana.RapsDisponibles(ctx, idFicha, ficha.IDPrograma)
	if err != nil {
		s.logger.Error("查询可用 RAP 失败", zap.Uint("id_ficha", idFicha), zap.Error(err))
		return nil, err
	}

	result := make([]dto.RapDisponible, 0, len(rows))
	for i := range rows {
		result = append(result, toRapDisponible(&rows[i]))
	}
	return result, nil
}

func (s *sabanaService) ObtenerRapsAsignados(ctx context.Context, idFicha, idTrimestre uint) ([]dto.RapAsignado, error) {
	ok, err := s.repo.Trimestre.PerteneceFicha(ctx, idTrimestre, idFicha)
	if err != nil {
		s.logger.Error("校验季度归属失败", zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, ErrTrimestreAjeno
	}

	rows, err := s.repo.Sabana.RapsAsignados(ctx, idTrimestre)
	if err != nil {
		s.logger.Error("查询季度 RAP 失败", zap.Uint("id_trimestre", idTrimestre), zap.Error(err))
		return nil, err
	}

	result := make([]dto.RapAsignado, 0, len(rows))
	for _, r := range rows {
		result = append(result, dto.RapAsignado{
			RapDisponible:      toRapDisponible(&r.RapProgramaRow),
			IDRapTrimestre:     r.IDRapTrimestre,
			HorasTrimestre:     r.HorasTrimestre,
			HorasSemana:        r.HorasSemana,
			Estado:             r.Estado,
			NoTrimestre:        r.NoTrimestre,
			Fase:               r.Fase,
			IDInstructor:       r.IDInstructor,
			InstructorAsignado: r.InstructorAsignado,
			Version:            r.Version,
		})
	}
	return result, nil
}

func (s *sabanaService) ObtenerSabanaBase(ctx context.Context, idFicha uint) ([]dto.SabanaBaseRow, error) {
	ficha, err := s.getFicha(ctx, idFicha)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Sabana.Base(ctx, idFicha, ficha.IDPrograma)
	if err != nil {
		s.logger.Error("查询 sábana 基础视图失败", zap.Uint("id_ficha", idFicha), zap.Error(err))
		return nil, err
	}

	// 按能力单元、RAP 编号（数值）、季度序号排序
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.IDCompetencia != b.IDCompetencia {
			return a.IDCompetencia < b.IDCompetencia
		}
		if c := compararCodigoRap(a.Codigo, b.Codigo); c != 0 {
			return c < 0
		}
		return derefInt(a.NoTrimestre) < derefInt(b.NoTrimestre)
	})

	result := make([]dto.SabanaBaseRow, 0, len(rows))
	for _, r := range rows {
		result = append(result, dto.SabanaBaseRow{
			IDFicha:            idFicha,
			IDPrograma:         ficha.IDPrograma,
			IDCompetencia:      r.IDCompetencia,
			CodigoNorma:        r.CodigoNorma,
			NombreCompetencia:  r.NombreCompetencia,
			IDRap:              r.IDRap,
			CodigoRap:          r.Codigo,
			Denominacion:       r.Denominacion,
			Duracion:           r.Duracion,
			IDRapTrimestre:     r.IDRapTrimestre,
			IDTrimestre:        r.IDTrimestre,
			NoTrimestre:        r.NoTrimestre,
			Fase:               r.Fase,
			HorasTrimestre:     r.HorasTrimestre,
			HorasSemana:        r.HorasSemana,
			Estado:             r.Estado,
			IDInstructor:       r.IDInstructor,
			InstructorAsignado: r.InstructorAsignado,
		})
	}
	return result, nil
}

// ObtenerSabanaMatriz 每个 RAP 一行，班次的每个季度在行内都有一组 t{n}_* 字段
func (s *sabanaService) ObtenerSabanaMatriz(ctx context.Context, idFicha uint) ([]dto.MatrizFila, error) {
	ficha, err := s.getFicha(ctx, idFicha)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := s.cache.GetMatriz(ctx, idFicha); err == nil {
			var cached []dto.MatrizFila
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			s.logger.Warn("矩阵缓存内容无效，重新计算", zap.Uint("id_ficha", idFicha))
		}
	}

	// 共享的重建不随首个调用方取消
	buildCtx := context.WithoutCancel(ctx)
	v, err, _ := s.builds.Do(matrizBuildKey(idFicha), func() (interface{}, error) {
		var gen uint64
		if s.cache != nil {
			gen = s.cache.generacion(idFicha)
		}
		matriz, err := s.construirMatriz(buildCtx, ficha)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if raw, err := json.Marshal(matriz); err == nil {
				vigente, err := s.cache.setSiVigente(buildCtx, idFicha, gen, raw)
				if err != nil {
					s.logger.Warn("写入矩阵缓存失败", zap.Uint("id_ficha", idFicha), zap.Error(err))
				} else if !vigente {
					s.logger.Debug("重建期间矩阵已失效，结果不写入缓存", zap.Uint("id_ficha", idFicha))
				}
			}
		}
		return matriz, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dto.MatrizFila), nil
}

func matrizBuildKey(idFicha uint) string {
	return strconv.FormatUint(uint64(idFicha), 10)
}

func (s *sabanaService) construirMatriz(ctx context.Context, ficha *model.Ficha) ([]dto.MatrizFila, error) {
	trimestres, err := s.repo.Trimestre.ListByFicha(ctx, ficha.IDFicha)
	if err != nil {
		s.logger.Error("查询季度失败", zap.Uint("id_ficha", ficha.IDFicha), zap.Error(err))
		return nil, err
	}

	rows, err := s.repo.Sabana.Base(ctx, ficha.IDFicha, ficha.IDPrograma)
	if err != nil {
		s.logger.Error("查询 sábana 基础视图失败", zap.Uint("id_ficha", ficha.IDFicha), zap.Error(err))
		return nil, err
	}

	filas := make([]*dto.MatrizFila, 0)
	porRap := make(map[uint]*dto.MatrizFila)

	for i := range rows {
		r := &rows[i]
		fila, ok := porRap[r.IDRap]
		if !ok {
			fila = &dto.MatrizFila{
				IDFicha:           ficha.IDFicha,
				IDCompetencia:     r.IDCompetencia,
				CodigoNorma:       r.CodigoNorma,
				NombreCompetencia: r.NombreCompetencia,
				IDRap:             r.IDRap,
				CodigoRap:         r.Codigo,
				Denominacion:      r.Denominacion,
				Duracion:          r.Duracion,
				Trimestres:        make(map[int]dto.MatrizCelda, len(trimestres)),
			}
			for _, t := range trimestres {
				fila.Trimestres[t.NoTrimestre] = dto.MatrizCelda{}
			}
			porRap[r.IDRap] = fila
			filas = append(filas, fila)
		}

		if r.NoTrimestre == nil {
			continue
		}
		fila.Trimestres[*r.NoTrimestre] = dto.MatrizCelda{
			IDRapTrimestre: r.IDRapTrimestre,
			HorasTrimestre: r.HorasTrimestre,
			HorasSemana:    r.HorasSemana,
			Estado:         r.Estado,
			IDInstructor:   r.IDInstructor,
			Instructor:     r.InstructorAsignado,
		}
		if r.HorasTrimestre != nil {
			fila.TotalHoras += *r.HorasTrimestre
		}
	}

	sort.SliceStable(filas, func(i, j int) bool {
		if filas[i].IDCompetencia != filas[j].IDCompetencia {
			return filas[i].IDCompetencia < filas[j].IDCompetencia
		}
		return compararCodigoRap(filas[i].CodigoRap, filas[j].CodigoRap) < 0
	})

	result := make([]dto.MatrizFila, 0, len(filas))
	for _, f := range filas {
		result = append(result, *f)
	}
	return result, nil
}

func (s *sabanaService) ObtenerTrimestres(ctx context.Context, idFicha uint) ([]dto.TrimestreResponse, error) {
	list, err := s.repo.Trimestre.ListByFicha(ctx, idFicha)
	if err != nil {
		s.logger.Error("查询季度失败", zap.Uint("id_ficha", idFicha), zap.Error(err))
		return nil, err
	}
	result := make([]dto.TrimestreResponse, 0, len(list))
	for _, t := range list {
		result = append(result, toTrimestreResponse(&t))
	}
	return result, nil
}

func (s *sabanaService) ObtenerInstructoresFicha(ctx context.Context, idFicha uint) ([]dto.InstructorFichaResponse, error) {
	rows, err := s.repo.Sabana.InstructoresActivos(ctx, idFicha)
	if err != nil {
		s.logger.Error("查询班次讲师失败", zap.Uint("id_ficha", idFicha), zap.Error(err))
		return nil, err
	}
	result := make([]dto.InstructorFichaResponse, 0, len(rows))
	for _, r := range rows {
		result = append(result, dto.InstructorFichaResponse{
			IDInstructor: r.IDInstructor,
			Nombre:       r.Nombre,
			Email:        r.Email,
			Cedula:       r.Cedula,
		})
	}
	return result, nil
}

// ═══════════════════════════════════════════════════════════
// 排课变更
// ═══════════════════════════════════════════════════════════

// AsignarRap 校验后在一个事务内完成 move、upsert 与学时重算，返回最新矩阵
func (s *sabanaService) AsignarRap(ctx context.Context, req *dto.AsignarRapRequest) ([]dto.MatrizFila, error) {
	if _, err := s.getFicha(ctx, req.IDFicha); err != nil {
		return nil, err
	}
	if err := s.validarAsignacion(ctx, req.IDRap, req.IDTrimestre, req.IDFicha); err != nil {
		return nil, err
	}

	err := runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if req.Move {
			if _, err := txRepo.RapTrimestre.DeleteOtrosTrimestres(ctx, req.IDRap, req.IDFicha, req.IDTrimestre); err != nil {
				return err
			}
		}
		if err := asignarRapTrimestre(ctx, txRepo, req.IDRap, req.IDTrimestre, req.IDFicha); err != nil {
			return err
		}
		return recalcularHorasRap(ctx, txRepo, req.IDRap, req.IDFicha)
	})
	if err != nil {
		s.logger.Error("分配 RAP 失败",
			zap.Uint("id_rap", req.IDRap), zap.Uint("id_trimestre", req.IDTrimestre),
			zap.Uint("id_ficha", req.IDFicha), zap.Bool("move", req.Move), zap.Error(err))
		return nil, err
	}

	s.invalidar(ctx, req.IDFicha)
	return s.ObtenerSabanaMatriz(ctx, req.IDFicha)
}

// QuitarRap 删除排课记录并重算该 RAP 剩余季度的学时
func (s *sabanaService) QuitarRap(ctx context.Context, req *dto.QuitarRapRequest) ([]dto.MatrizFila, error) {
	ok, err := s.repo.Trimestre.PerteneceFicha(ctx, req.IDTrimestre, req.IDFicha)
	if err != nil {
		s.logger.Error("校验季度归属失败", zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, ErrTrimestreNoPerteneceFicha
	}

	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		return quitarRapTrimestre(ctx, txRepo, req.IDRap, req.IDTrimestre, req.IDFicha)
	})
	if err != nil {
		if !errors.Is(err, ErrAsignacionNoEncontrada) {
			s.logger.Error("移除 RAP 失败",
				zap.Uint("id_rap", req.IDRap), zap.Uint("id_trimestre", req.IDTrimestre), zap.Error(err))
		}
		return nil, err
	}

	s.invalidar(ctx, req.IDFicha)
	return s.ObtenerSabanaMatriz(ctx, req.IDFicha)
}

// ActualizarHoras 手动设置季度学时；提供 version 时按乐观锁校验
func (s *sabanaService) ActualizarHoras(ctx context.Context, req *dto.ActualizarHorasRequest) (*dto.RapTrimestreResponse, error) {
	rt, err := s.getRapTrimestre(ctx, req.IDRapTrimestre)
	if err != nil {
		return nil, err
	}
	if rt.IDFicha != req.IDFicha {
		return nil, ErrRapTrimestreOtraFicha
	}

	var horas float64
	if req.HorasTrimestre != nil {
		horas = *req.HorasTrimestre
	}
	if err := s.repo.RapTrimestre.UpdateHoras(ctx, rt.IDRapTrimestre, horas, HorasSemana(horas), req.Version); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, err
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRapTrimestreNoEncontrado
		}
		s.logger.Error("更新学时失败", zap.Uint("id_rap_trimestre", rt.IDRapTrimestre), zap.Error(err))
		return nil, err
	}

	s.invalidar(ctx, rt.IDFicha)
	return s.reload(ctx, rt.IDRapTrimestre)
}

// AsignarInstructor 指定讲师并冗余其姓名；idInstructor 为空时等同于取消指定
func (s *sabanaService) AsignarInstructor(ctx context.Context, idRapTrimestre uint, idInstructor *uint) (*dto.RapTrimestreResponse, error) {
	if idInstructor == nil || *idInstructor == 0 {
		return s.DesasignarInstructor(ctx, idRapTrimestre)
	}

	instructor, err := s.repo.Instructor.GetByID(ctx, *idInstructor)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstructorNoEncontrado
		}
		s.logger.Error("查询讲师失败", zap.Uint("id_instructor", *idInstructor), zap.Error(err))
		return nil, err
	}
	if instructor.Estado != model.EstadoActivo {
		return nil, ErrInstructorInactivo
	}

	rt, err := s.getRapTrimestre(ctx, idRapTrimestre)
	if err != nil {
		return nil, err
	}

	nombre := instructor.Nombre
	if _, err := s.repo.RapTrimestre.UpdateInstructor(ctx, idRapTrimestre, &instructor.IDInstructor, &nombre); err != nil {
		s.logger.Error("指定讲师失败", zap.Uint("id_rap_trimestre", idRapTrimestre), zap.Error(err))
		return nil, err
	}

	s.invalidar(ctx, rt.IDFicha)
	return s.reload(ctx, idRapTrimestre)
}

// DesasignarInstructor 同时清空讲师外键与冗余姓名
func (s *sabanaService) DesasignarInstructor(ctx context.Context, idRapTrimestre uint) (*dto.RapTrimestreResponse, error) {
	rt, err := s.getRapTrimestre(ctx, idRapTrimestre)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.RapTrimestre.UpdateInstructor(ctx, idRapTrimestre, nil, nil); err != nil {
		s.logger.Error("取消讲师指定失败", zap.Uint("id_rap_trimestre", idRapTrimestre), zap.Error(err))
		return nil, err
	}

	s.invalidar(ctx, rt.IDFicha)
	return s.reload(ctx, idRapTrimestre)
}

// ═══════════════════════════════════════════════════════════
// 校验
// ═══════════════════════════════════════════════════════════

func (s *sabanaService) ValidarRapPertenecePrograma(ctx context.Context, idRap, idFicha uint) (bool, error) {
	return s.repo.Rap.PerteneceProgramaDeFicha(ctx, idRap, idFicha)
}

func (s *sabanaService) ValidarRapYaAsignado(ctx context.Context, idRap, idTrimestre uint) (bool, error) {
	return s.repo.RapTrimestre.ExisteEnTrimestre(ctx, idRap, idTrimestre)
}

func (s *sabanaService) ValidarTrimestrePerteneceFicha(ctx context.Context, idTrimestre, idFicha uint) (bool, error) {
	return s.repo.Trimestre.PerteneceFicha(ctx, idTrimestre, idFicha)
}

func (s *sabanaService) validarAsignacion(ctx context.Context, idRap, idTrimestre, idFicha uint) error {
	ok, err := s.ValidarTrimestrePerteneceFicha(ctx, idTrimestre, idFicha)
	if err != nil {
		s.logger.Error("校验季度归属失败", zap.Error(err))
		return err
	}
	if !ok {
		return ErrTrimestreNoPerteneceFicha
	}

	if _, err := s.repo.Rap.GetByID(ctx, idRap); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRapNoEncontrado
		}
		s.logger.Error("查询 RAP 失败", zap.Uint("id_rap", idRap), zap.Error(err))
		return err
	}

	ok, err = s.ValidarRapPertenecePrograma(ctx, idRap, idFicha)
	if err != nil {
		s.logger.Error("校验 RAP 归属失败", zap.Error(err))
		return err
	}
	if !ok {
		return ErrRapNoPertenecePrograma
	}
	return nil
}

// ═══════════════════════════════════════════════════════════
// 知识 / 标准
// ═══════════════════════════════════════════════════════════

func (s *sabanaService) ObtenerSaberes(ctx context.Context, idRap uint) ([]dto.ConocimientoResponse, error) {
	list, err := s.repo.Conocimiento.ListSaberes(ctx, idRap)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ConocimientoResponse, 0, len(list))
	for _, c := range list {
		result = append(result, dto.ConocimientoResponse{ID: c.IDSaber, IDRap: c.IDRap, Nombre: c.Nombre})
	}
	return result, nil
}

func (s *sabanaService) ObtenerProcesos(ctx context.Context, idRap uint) ([]dto.ConocimientoResponse, error) {
	list, err := s.repo.Conocimiento.ListProcesos(ctx, idRap)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ConocimientoResponse, 0, len(list))
	for _, c := range list {
		result = append(result, dto.ConocimientoResponse{ID: c.IDProceso, IDRap: c.IDRap, Nombre: c.Nombre})
	}
	return result, nil
}

func (s *sabanaService) ObtenerCriterios(ctx context.Context, idRap uint) ([]dto.ConocimientoResponse, error) {
	list, err := s.repo.Conocimiento.ListCriterios(ctx, idRap)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ConocimientoResponse, 0, len(list))
	for _, c := range list {
		result = append(result, dto.ConocimientoResponse{ID: c.IDCriterio, IDRap: c.IDRap, Nombre: c.Nombre})
	}
	return result, nil
}

// ═══════════════════════════════════════════════════════════
// 排课原语（在调用方事务内执行）
// ═══════════════════════════════════════════════════════════

// asignarRapTrimestre 按 (id_rap, id_trimestre, id_ficha) 幂等写入；新记录状态为 Planeado
func asignarRapTrimestre(ctx context.Context, repo *repository.Repository, idRap, idTrimestre, idFicha uint) error {
	_, err := repo.RapTrimestre.GetByClave(ctx, idRap, idTrimestre, idFicha)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return repo.RapTrimestre.Create(ctx, &model.RapTrimestre{
		IDRap:       idRap,
		IDTrimestre: idTrimestre,
		IDFicha:     idFicha,
		Estado:      model.EstadoPlaneado,
	})
}

// quitarRapTrimestre 删除排课记录后重算；记录不存在时返回 ErrAsignacionNoEncontrada
func quitarRapTrimestre(ctx context.Context, repo *repository.Repository, idRap, idTrimestre, idFicha uint) error {
	n, err := repo.RapTrimestre.DeleteByClave(ctx, idRap, idTrimestre, idFicha)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAsignacionNoEncontrada
	}
	return recalcularHorasRap(ctx, repo, idRap, idFicha)
}

// recalcularHorasRap 将 RAP 的总学时分摊到其在班次中的全部季度
// 每个季度 round(duracion / count)，按 no_trimestre 最后一个季度吸收余数，总和等于 duracion
func recalcularHorasRap(ctx context.Context, repo *repository.Repository, idRap, idFicha uint) error {
	asignaciones, err := repo.RapTrimestre.ListByRapFicha(ctx, idRap, idFicha)
	if err != nil {
		return err
	}
	if len(asignaciones) == 0 {
		return nil
	}

	rap, err := repo.Rap.GetByID(ctx, idRap)
	if err != nil {
		return err
	}

	horas := RepartirHoras(rap.Duracion, len(asignaciones))
	for i, a := range asignaciones {
		if err := repo.RapTrimestre.UpdateHoras(ctx, a.IDRapTrimestre, horas[i], HorasSemana(horas[i]), nil); err != nil {
			return err
		}
	}
	return nil
}

// RepartirHoras 把 duracion 分成 n 份；duracion 为空时全部为 0
func RepartirHoras(duracion *int, n int) []float64 {
	out := make([]float64, n)
	if duracion == nil || n == 0 {
		return out
	}
	base := math.Round(float64(*duracion) / float64(n))
	for i := 0; i < n-1; i++ {
		out[i] = base
	}
	out[n-1] = float64(*duracion) - base*float64(n-1)
	return out
}

// HorasSemana horas_trimestre / 11，不做舍入
func HorasSemana(horasTrimestre float64) float64 {
	return horasTrimestre / model.SemanasPorTrimestre
}

// ── 内部辅助方法 ──

func (s *sabanaService) getFicha(ctx context.Context, idFicha uint) (*model.Ficha, error) {
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

func (s *sabanaService) getRapTrimestre(ctx context.Context, id uint) (*model.RapTrimestre, error) {
	rt, err := s.repo.RapTrimestre.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRapTrimestreNoEncontrado
		}
		s.logger.Error("查询排课记录失败", zap.Uint("id_rap_trimestre", id), zap.Error(err))
		return nil, err
	}
	return rt, nil
}

func (s *sabanaService) reload(ctx context.Context, id uint) (*dto.RapTrimestreResponse, error) {
	rt, err := s.getRapTrimestre(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRapTrimestreResponse(rt), nil
}

func (s *sabanaService) invalidar(ctx context.Context, idFicha uint) {
	// 变更提交后不再复用进行中的旧重建
	s.builds.Forget(matrizBuildKey(idFicha))
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateMatriz(ctx, idFicha); err != nil {
		s.logger.Warn("清除矩阵缓存失败", zap.Uint("id_ficha", idFicha), zap.Error(err))
	}
}

func toRapDisponible(r *repository.RapProgramaRow) dto.RapDisponible {
	return dto.RapDisponible{
		IDRap:             r.IDRap,
		Codigo:            r.Codigo,
		Denominacion:      r.Denominacion,
		Duracion:          r.Duracion,
		IDCompetencia:     r.IDCompetencia,
		NombreCompetencia: r.NombreCompetencia,
		CodigoNorma:       r.CodigoNorma,
	}
}

func toRapTrimestreResponse(rt *model.RapTrimestre) *dto.RapTrimestreResponse {
	return &dto.RapTrimestreResponse{
		IDRapTrimestre:     rt.IDRapTrimestre,
		IDRap:              rt.IDRap,
		IDTrimestre:        rt.IDTrimestre,
		IDFicha:            rt.IDFicha,
		HorasTrimestre:     rt.HorasTrimestre,
		HorasSemana:        rt.HorasSemana,
		Estado:             rt.Estado,
		IDInstructor:       rt.IDInstructor,
		InstructorAsignado: rt.InstructorAsignado,
		Version:            rt.Version,
	}
}

func toTrimestreResponse(t *model.Trimestre) dto.TrimestreResponse {
	return dto.TrimestreResponse{
		IDTrimestre: t.IDTrimestre,
		NoTrimestre: t.NoTrimestre,
		Fase:        t.Fase,
		IDFicha:     t.IDFicha,
	}
}

// compararCodigoRap 数值编号按数值比较，非数值按字符串比较
func compararCodigoRap(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na - nb
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
