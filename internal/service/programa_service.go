package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/repository"
	pkgerrors "github.com/k4mimi/Proyecto-Alistamiento/pkg/errors"
)

var (
	ErrProgramaNoEncontrado    = errors.New("Programa no encontrado")
	ErrCodigoProgramaExiste    = errors.New("El código del programa ya existe")
	ErrProgramaCamposFaltantes = errors.New("Código y nombre del programa son requeridos")
)

// 删除失败时返回给调用方的信息
const (
	mensajeEliminacionFK       = "No se puede eliminar el programa porque tiene datos relacionados que no pudieron ser eliminados"
	mensajeEliminacionGenerico = "Error al eliminar programa"
	mensajeEliminacionOK       = "Programa y todos sus datos relacionados eliminados correctamente"
)

// DeletionError 级联删除失败；Resumen 中的计数表示本应删除的数量
type DeletionError struct {
	Mensaje string
	Resumen *dto.DeleteProgramaResponse
	Err     error
}

func (e *DeletionError) Error() string { return e.Mensaje + ": " + e.Err.Error() }

func (e *DeletionError) Unwrap() error { return e.Err }

// ProgramaService 培训项目业务接口
type ProgramaService interface {
	List(ctx context.Context) ([]dto.ProgramaResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.ProgramaResponse, error)
	Create(ctx context.Context, req *dto.CreateProgramaRequest) (*dto.ProgramaResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateProgramaRequest) (*dto.ProgramaResponse, error)
	Delete(ctx context.Context, id uint) (*dto.DeleteProgramaResponse, error)
}

type programaService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProgramaService 创建 ProgramaService 实例
func NewProgramaService(repo *repository.Repository, logger *zap.Logger) ProgramaService {
	return &programaService{repo: repo, logger: logger}
}

func (s *programaService) List(ctx context.Context) ([]dto.ProgramaResponse, error) {
	list, err := s.repo.Programa.List(ctx)
	if err != nil {
		s.logger.Error("查询项目列表失败", zap.Error(err))
		return nil, err
	}
	totales, err := s.repo.Ficha.CountByPrograma(ctx)
	if err != nil {
		s.logger.Error("统计项目班次数失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ProgramaResponse, 0, len(list))
	for i := range list {
		result = append(result, toProgramaResponse(&list[i], totales[list[i].IDPrograma]))
	}
	return result, nil
}

func (s *programaService) GetByID(ctx context.Context, id uint) (*dto.ProgramaResponse, error) {
	p, err := s.getPrograma(ctx, id)
	if err != nil {
		return nil, err
	}
	fichas, err := s.repo.Ficha.ListByPrograma(ctx, id)
	if err != nil {
		s.logger.Error("查询项目班次失败", zap.Uint("id_programa", id), zap.Error(err))
		return nil, err
	}
	resp := toProgramaResponse(p, int64(len(fichas)))
	return &resp, nil
}

func (s *programaService) Create(ctx context.Context, req *dto.CreateProgramaRequest) (*dto.ProgramaResponse, error) {
	codigo := strings.TrimSpace(req.CodigoPrograma)
	nombre := strings.TrimSpace(req.NombrePrograma)
	if codigo == "" || nombre == "" {
		return nil, ErrProgramaCamposFaltantes
	}

	p := &model.Programa{
		CodigoPrograma:       &codigo,
		NombrePrograma:       &nombre,
		Vigencia:             req.Vigencia,
		TipoPrograma:         req.TipoPrograma,
		VersionPrograma:      req.VersionPrograma,
		HorasTotales:         req.HorasTotales,
		HorasEtapaLectiva:    req.HorasEtapaLectiva,
		HorasEtapaProductiva: req.HorasEtapaProductiva,
	}
	if err := s.repo.Programa.Create(ctx, p); err != nil {
		if pkgerrors.IsDuplicate(err) {
			return nil, ErrCodigoProgramaExiste
		}
		s.logger.Error("创建项目失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("项目已创建", zap.Uint("id_programa", p.IDPrograma), zap.String("codigo", codigo))
	resp := toProgramaResponse(p, 0)
	return &resp, nil
}

func (s *programaService) Update(ctx context.Context, id uint, req *dto.UpdateProgramaRequest) (*dto.ProgramaResponse, error) {
	p, err := s.getPrograma(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CodigoPrograma != nil {
		codigo := strings.TrimSpace(*req.CodigoPrograma)
		if codigo == "" {
			return nil, ErrProgramaCamposFaltantes
		}
		p.CodigoPrograma = &codigo
	}
	if req.NombrePrograma != nil {
		nombre := strings.TrimSpace(*req.NombrePrograma)
		if nombre == "" {
			return nil, ErrProgramaCamposFaltantes
		}
		p.NombrePrograma = &nombre
	}
	if req.Vigencia != nil {
		p.Vigencia = req.Vigencia
	}
	if req.TipoPrograma != nil {
		p.TipoPrograma = req.TipoPrograma
	}
	if req.VersionPrograma != nil {
		p.VersionPrograma = req.VersionPrograma
	}
	if req.HorasTotales != nil {
		p.HorasTotales = req.HorasTotales
	}
	if req.HorasEtapaLectiva != nil {
		p.HorasEtapaLectiva = req.HorasEtapaLectiva
	}
	if req.HorasEtapaProductiva != nil {
		p.HorasEtapaProductiva = req.HorasEtapaProductiva
	}

	if err := s.repo.Programa.Update(ctx, p); err != nil {
		if pkgerrors.IsDuplicate(err) {
			return nil, ErrCodigoProgramaExiste
		}
		s.logger.Error("更新项目失败", zap.Uint("id_programa", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete 在一个事务内删除项目及其全部从属数据
// 失败时整体回滚，返回携带计数的 *DeletionError
func (s *programaService) Delete(ctx context.Context, id uint) (*dto.DeleteProgramaResponse, error) {
	p, err := s.getPrograma(ctx, id)
	if err != nil {
		return nil, err
	}

	resumen, idsCompetencia, idsRap, err := s.resumenEliminacion(ctx, p)
	if err != nil {
		return nil, err
	}

	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		idsFicha := make([]uint, 0, len(resumen.DetallesFichas))
		for _, f := range resumen.DetallesFichas {
			idsFicha = append(idsFicha, f.IDFicha)
		}
		if err := eliminarDatosFichas(ctx, txRepo, idsFicha); err != nil {
			return err
		}
		if err := eliminarDatosRaps(ctx, txRepo, idsRap); err != nil {
			return err
		}
		if _, err := txRepo.Competencia.DeleteByIDs(ctx, idsCompetencia); err != nil {
			return err
		}
		// 课题保留，仅解除对项目的引用
		if _, err := txRepo.Proyecto.DesvincularPrograma(ctx, id); err != nil {
			return err
		}
		_, err := txRepo.Programa.Delete(ctx, id)
		return err
	})
	if err != nil {
		mensaje := mensajeEliminacionGenerico
		if pkgerrors.IsForeignKey(err) {
			mensaje = mensajeEliminacionFK
		}
		s.logger.Error("级联删除项目失败，已回滚",
			zap.Uint("id_programa", id),
			zap.String("sqlstate", pkgerrors.SQLState(err)),
			zap.Error(err),
		)
		resumen.Mensaje = mensaje
		return nil, &DeletionError{Mensaje: mensaje, Resumen: resumen, Err: err}
	}

	resumen.Success = true
	resumen.Mensaje = mensajeEliminacionOK
	s.logger.Info("项目已级联删除",
		zap.Uint("id_programa", id),
		zap.Int("fichas", resumen.FichasEliminadas),
		zap.Int("competencias", resumen.CompetenciasEliminadas),
		zap.Int("raps", resumen.RapsEliminados),
	)
	return resumen, nil
}

// resumenEliminacion 在事务外收集将被删除的记录
func (s *programaService) resumenEliminacion(ctx context.Context, p *model.Programa) (*dto.DeleteProgramaResponse, []uint, []uint, error) {
	fichas, err := s.repo.Ficha.ListByPrograma(ctx, p.IDPrograma)
	if err != nil {
		s.logger.Error("查询项目班次失败", zap.Uint("id_programa", p.IDPrograma), zap.Error(err))
		return nil, nil, nil, err
	}
	detalles, err := detallarFichas(ctx, s.repo, fichas)
	if err != nil {
		s.logger.Error("统计班次关联数据失败", zap.Uint("id_programa", p.IDPrograma), zap.Error(err))
		return nil, nil, nil, err
	}

	competencias, err := s.repo.Competencia.ListByPrograma(ctx, p.IDPrograma)
	if err != nil {
		s.logger.Error("查询项目能力单元失败", zap.Uint("id_programa", p.IDPrograma), zap.Error(err))
		return nil, nil, nil, err
	}
	idsCompetencia := make([]uint, 0, len(competencias))
	for _, c := range competencias {
		idsCompetencia = append(idsCompetencia, c.IDCompetencia)
	}

	raps, err := s.repo.Rap.ListByCompetencias(ctx, idsCompetencia)
	if err != nil {
		s.logger.Error("查询项目 RAP 失败", zap.Uint("id_programa", p.IDPrograma), zap.Error(err))
		return nil, nil, nil, err
	}
	idsRap := make([]uint, 0, len(raps))
	for _, r := range raps {
		idsRap = append(idsRap, r.IDRap)
	}

	nombre := ""
	if p.NombrePrograma != nil {
		nombre = *p.NombrePrograma
	}
	return &dto.DeleteProgramaResponse{
		Programa:               nombre,
		FichasEliminadas:       len(fichas),
		CompetenciasEliminadas: len(competencias),
		RapsEliminados:         len(raps),
		DetallesFichas:         detalles,
	}, idsCompetencia, idsRap, nil
}

func (s *programaService) getPrograma(ctx context.Context, id uint) (*model.Programa, error) {
	p, err := s.repo.Programa.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramaNoEncontrado
		}
		s.logger.Error("查询项目失败", zap.Uint("id_programa", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func toProgramaResponse(p *model.Programa, totalFichas int64) dto.ProgramaResponse {
	return dto.ProgramaResponse{
		IDPrograma:           p.IDPrograma,
		CodigoPrograma:       p.CodigoPrograma,
		NombrePrograma:       p.NombrePrograma,
		Vigencia:             p.Vigencia,
		TipoPrograma:         p.TipoPrograma,
		VersionPrograma:      p.VersionPrograma,
		HorasTotales:         p.HorasTotales,
		HorasEtapaLectiva:    p.HorasEtapaLectiva,
		HorasEtapaProductiva: p.HorasEtapaProductiva,
		TotalFichas:          totalFichas,
	}
}
