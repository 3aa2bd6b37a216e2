package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/repository"
)

// poblarGrafo 为项目补全所有从属表的数据
func poblarGrafo(t *testing.T, e *escenario) model.Proyecto {
	t.Helper()
	ctx := context.Background()
	svc := newSabanaSvc(e)

	e.asignar(t, svc, e.raps[0], 0, false)
	e.asignar(t, svc, e.raps[3], 1, false)
	if err := e.repo.InstructorFicha.Vincular(ctx, e.instructor.IDInstructor, e.ficha.IDFicha); err != nil {
		t.Fatalf("关联讲师失败: %v", err)
	}

	plan := model.PlaneacionPedagogica{IDFicha: e.ficha.IDFicha, NoTrimestre: 1, FechaCreacion: time.Now()}
	mustCreate(t, e.db, &plan)
	mustCreate(t, e.db, &model.DetallePlaneacion{IDPlaneacion: plan.IDPlaneacion, IDRap: e.raps[0].IDRap})

	mustCreate(t, e.db, &model.ConocimientoSaber{IDRap: e.raps[0].IDRap, Nombre: "saber"})
	mustCreate(t, e.db, &model.ConocimientoProceso{IDRap: e.raps[0].IDRap, Nombre: "proceso"})
	mustCreate(t, e.db, &model.CriterioEvaluacion{IDRap: e.raps[0].IDRap, Nombre: "criterio"})

	proyecto := model.Proyecto{NombreProyecto: strPtr("SISTEMA"), IDPrograma: &e.programa.IDPrograma}
	mustCreate(t, e.db, &proyecto)
	act := model.ActividadProyecto{NombreActividad: "Levantar requisitos"}
	mustCreate(t, e.db, &act)
	mustCreate(t, e.db, &model.ActividadRap{IDActividad: act.IDActividad, IDRap: e.raps[0].IDRap})
	return proyecto
}

func contar(t *testing.T, db *gorm.DB, v interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(v).Count(&n).Error; err != nil {
		t.Fatalf("统计 %T 失败: %v", v, err)
	}
	return n
}

func TestProgramaService_Delete_Cascade(t *testing.T) {
	e := nuevoEscenario(t)
	proyecto := poblarGrafo(t, e)
	svc := NewProgramaService(e.repo, zap.NewNop())

	resp, err := svc.Delete(context.Background(), e.programa.IDPrograma)
	if err != nil {
		t.Fatalf("级联删除失败: %v", err)
	}
	if !resp.Success {
		t.Error("期望 success=true")
	}
	if resp.FichasEliminadas != 1 || resp.CompetenciasEliminadas != 2 || resp.RapsEliminados != 4 {
		t.Errorf("计数不符: fichas=%d competencias=%d raps=%d",
			resp.FichasEliminadas, resp.CompetenciasEliminadas, resp.RapsEliminados)
	}
	if len(resp.DetallesFichas) != 1 {
		t.Fatalf("期望 1 个班次明细，实际 %d", len(resp.DetallesFichas))
	}
	d := resp.DetallesFichas[0]
	if d.CodigoFicha != "2879000" || d.Trimestres != 3 || d.Asignaciones != 2 || d.Planeaciones != 1 || d.Instructores != 1 {
		t.Errorf("班次明细不符: %+v", d)
	}

	for _, v := range []interface{}{
		&model.InstructorFicha{}, &model.RapTrimestre{}, &model.DetallePlaneacion{}, &model.PlaneacionPedagogica{},
		&model.Trimestre{}, &model.Ficha{}, &model.ActividadRap{}, &model.ConocimientoSaber{},
		&model.ConocimientoProceso{}, &model.CriterioEvaluacion{}, &model.Rap{}, &model.Competencia{}, &model.Programa{},
	} {
		if n := contar(t, e.db, v); n != 0 {
			t.Errorf("%T 应被清空，剩余 %d", v, n)
		}
	}

	// 课题与讲师保留
	var p model.Proyecto
	if err := e.db.First(&p, "id_proyecto = ?", proyecto.IDProyecto).Error; err != nil {
		t.Fatalf("课题不应被删除: %v", err)
	}
	if p.IDPrograma != nil {
		t.Errorf("课题对项目的引用应被清空，实际 %v", *p.IDPrograma)
	}
	if n := contar(t, e.db, &model.Instructor{}); n != 1 {
		t.Errorf("讲师不应被删除，实际剩余 %d", n)
	}
}

func TestProgramaService_Delete_RollbackOnFailure(t *testing.T) {
	e := nuevoEscenario(t)
	poblarGrafo(t, e)
	svc := NewProgramaService(e.repo, zap.NewNop())

	// 删除 raps 时注入失败
	err := e.db.Callback().Delete().Before("gorm:delete").Register("test:fail_raps", func(tx *gorm.DB) {
		if tx.Statement.Table == "raps" {
			tx.AddError(errors.New("fallo simulado"))
		}
	})
	if err != nil {
		t.Fatalf("注册回调失败: %v", err)
	}

	resp, err := svc.Delete(context.Background(), e.programa.IDPrograma)
	if resp != nil {
		t.Error("失败时不应返回成功结果")
	}
	var delErr *DeletionError
	if !errors.As(err, &delErr) {
		t.Fatalf("期望 *DeletionError，实际: %v", err)
	}
	if delErr.Mensaje != mensajeEliminacionGenerico {
		t.Errorf("非外键错误应为通用信息，实际 %q", delErr.Mensaje)
	}
	if delErr.Resumen == nil || delErr.Resumen.Success || delErr.Resumen.RapsEliminados != 4 {
		t.Errorf("错误应携带本应删除的计数，实际 %+v", delErr.Resumen)
	}

	// 事务已回滚：先于 raps 删除的表也应保持原样
	if n := contar(t, e.db, &model.Ficha{}); n != 1 {
		t.Errorf("班次应被回滚保留，实际 %d", n)
	}
	if n := contar(t, e.db, &model.RapTrimestre{}); n != 2 {
		t.Errorf("排课应被回滚保留，实际 %d", n)
	}
	if n := contar(t, e.db, &model.ConocimientoSaber{}); n != 1 {
		t.Errorf("知识文本应被回滚保留，实际 %d", n)
	}
	if n := contar(t, e.db, &model.Programa{}); n != 1 {
		t.Errorf("项目应被回滚保留，实际 %d", n)
	}
}

func TestProgramaService_Delete_NotFound(t *testing.T) {
	e := nuevoEscenario(t)
	svc := NewProgramaService(e.repo, zap.NewNop())

	if _, err := svc.Delete(context.Background(), 9999); !errors.Is(err, ErrProgramaNoEncontrado) {
		t.Errorf("期望 ErrProgramaNoEncontrado，实际: %v", err)
	}
}

func TestProgramaService_Delete_WithoutFichas(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgramaService(repository.NewRepository(db), zap.NewNop())
	p := model.Programa{CodigoPrograma: strPtr("1"), NombrePrograma: strPtr("VACIO")}
	mustCreate(t, db, &p)

	resp, err := svc.Delete(context.Background(), p.IDPrograma)
	if err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if resp.FichasEliminadas != 0 || resp.Programa != "VACIO" || len(resp.DetallesFichas) != 0 {
		t.Errorf("结果不符: %+v", resp)
	}
}

func TestProgramaService_CreateAndList(t *testing.T) {
	e := nuevoEscenario(t)
	svc := NewProgramaService(e.repo, zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, &dto.CreateProgramaRequest{CodigoPrograma: " 133100 ", NombrePrograma: "CONTABILIDAD"})
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if created.CodigoPrograma == nil || *created.CodigoPrograma != "133100" {
		t.Errorf("编号应去除空白，实际 %v", created.CodigoPrograma)
	}

	if _, err := svc.Create(ctx, &dto.CreateProgramaRequest{CodigoPrograma: "133100", NombrePrograma: "OTRO"}); !errors.Is(err, ErrCodigoProgramaExiste) {
		t.Errorf("期望 ErrCodigoProgramaExiste，实际: %v", err)
	}
	if _, err := svc.Create(ctx, &dto.CreateProgramaRequest{CodigoPrograma: "  ", NombrePrograma: "X"}); !errors.Is(err, ErrProgramaCamposFaltantes) {
		t.Errorf("期望 ErrProgramaCamposFaltantes，实际: %v", err)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("期望 2 个项目，实际 %d", len(list))
	}
	for _, p := range list {
		want := int64(0)
		if p.IDPrograma == e.programa.IDPrograma {
			want = 1
		}
		if p.TotalFichas != want {
			t.Errorf("项目 %d 期望 total_fichas=%d，实际 %d", p.IDPrograma, want, p.TotalFichas)
		}
	}
}

func TestProgramaService_Update(t *testing.T) {
	e := nuevoEscenario(t)
	svc := NewProgramaService(e.repo, zap.NewNop())
	ctx := context.Background()

	nombre := "ADSO V2"
	resp, err := svc.Update(ctx, e.programa.IDPrograma, &dto.UpdateProgramaRequest{NombrePrograma: &nombre, HorasTotales: intPtr(3000)})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if *resp.NombrePrograma != "ADSO V2" || *resp.CodigoPrograma != "228118" {
		t.Errorf("部分更新不应修改未提供的字段，实际 %+v", resp)
	}
	if resp.HorasTotales == nil || *resp.HorasTotales != 3000 {
		t.Errorf("期望 horas_totales=3000，实际 %v", resp.HorasTotales)
	}
	if resp.TotalFichas != 1 {
		t.Errorf("期望 total_fichas=1，实际 %d", resp.TotalFichas)
	}

	if _, err := svc.Update(ctx, 9999, &dto.UpdateProgramaRequest{}); !errors.Is(err, ErrProgramaNoEncontrado) {
		t.Errorf("期望 ErrProgramaNoEncontrado，实际: %v", err)
	}
}
