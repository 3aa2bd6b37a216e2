package service

import (
	"context"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/repository"
)

// ── 级联删除 ──
// 不关闭外键检查，而是按固定顺序先删叶子表：
// instructor_ficha → rap_trimestre → detalle_planeacion → planeacion → trimestre → fichas
// → actividad_rap → conocimiento_saber → conocimiento_proceso → criterios_evaluacion → raps → competencias → programa

// detallarFichas 统计每个班次将被删除的关联记录数
func detallarFichas(ctx context.Context, repo *repository.Repository, fichas []model.Ficha) ([]dto.FichaEliminada, error) {
	ids := idsDeFichas(fichas)

	trimestres, err := repo.Trimestre.ListByFichas(ctx, ids)
	if err != nil {
		return nil, err
	}
	asignaciones, err := repo.RapTrimestre.ListByFichas(ctx, ids)
	if err != nil {
		return nil, err
	}

	porFicha := make(map[uint]*dto.FichaEliminada, len(fichas))
	out := make([]dto.FichaEliminada, len(fichas))
	for i, f := range fichas {
		out[i] = dto.FichaEliminada{IDFicha: f.IDFicha, CodigoFicha: f.CodigoFicha}
		porFicha[f.IDFicha] = &out[i]
	}
	for _, t := range trimestres {
		porFicha[t.IDFicha].Trimestres++
	}
	for _, a := range asignaciones {
		if d, ok := porFicha[a.IDFicha]; ok {
			d.Asignaciones++
		}
	}
	for i := range out {
		planeaciones, err := repo.Planeacion.ListByFicha(ctx, out[i].IDFicha)
		if err != nil {
			return nil, err
		}
		out[i].Planeaciones = int64(len(planeaciones))

		instructores, err := repo.InstructorFicha.CountByFicha(ctx, out[i].IDFicha)
		if err != nil {
			return nil, err
		}
		out[i].Instructores = instructores
	}
	return out, nil
}

// eliminarDatosFichas 删除班次及其全部从属记录（必须在事务内调用）
func eliminarDatosFichas(ctx context.Context, repo *repository.Repository, idsFicha []uint) error {
	if len(idsFicha) == 0 {
		return nil
	}
	if _, err := repo.InstructorFicha.DeleteByFichas(ctx, idsFicha); err != nil {
		return err
	}
	if _, err := repo.RapTrimestre.DeleteByFichas(ctx, idsFicha); err != nil {
		return err
	}

	idsPlaneacion, err := repo.Planeacion.ListIDsByFichas(ctx, idsFicha)
	if err != nil {
		return err
	}
	if _, err := repo.Planeacion.DeleteDetallesByPlaneaciones(ctx, idsPlaneacion); err != nil {
		return err
	}
	if _, err := repo.Planeacion.DeleteByIDs(ctx, idsPlaneacion); err != nil {
		return err
	}

	if _, err := repo.Trimestre.DeleteByFichas(ctx, idsFicha); err != nil {
		return err
	}
	_, err = repo.Ficha.DeleteByIDs(ctx, idsFicha)
	return err
}

// eliminarDatosRaps 删除 RAP 及引用它们的排课、计划明细、活动关联与知识文本（必须在事务内调用）
func eliminarDatosRaps(ctx context.Context, repo *repository.Repository, idsRap []uint) error {
	if len(idsRap) == 0 {
		return nil
	}
	// 其它项目班次中引用这些 RAP 的记录
	if _, err := repo.RapTrimestre.DeleteByRaps(ctx, idsRap); err != nil {
		return err
	}
	if _, err := repo.Planeacion.DeleteDetallesByRaps(ctx, idsRap); err != nil {
		return err
	}
	if _, err := repo.Proyecto.DeleteActividadRapsByRaps(ctx, idsRap); err != nil {
		return err
	}
	if _, err := repo.Conocimiento.DeleteSaberesByRaps(ctx, idsRap); err != nil {
		return err
	}
	if _, err := repo.Conocimiento.DeleteProcesosByRaps(ctx, idsRap); err != nil {
		return err
	}
	if _, err := repo.Conocimiento.DeleteCriteriosByRaps(ctx, idsRap); err != nil {
		return err
	}
	_, err := repo.Rap.DeleteByIDs(ctx, idsRap)
	return err
}

func idsDeFichas(fichas []model.Ficha) []uint {
	ids := make([]uint, 0, len(fichas))
	for _, f := range fichas {
		ids = append(ids, f.IDFicha)
	}
	return ids
}
