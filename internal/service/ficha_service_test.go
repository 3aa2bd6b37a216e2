package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
)

func nuevaFichaReq(e *escenario, codigo, jornada string) *dto.CreateFichaRequest {
	return &dto.CreateFichaRequest{
		CodigoFicha: codigo,
		Modalidad:   "Presencial",
		Jornada:     jornada,
		FechaInicio: "2026-01-19",
		FechaFinal:  "2027-07-19",
		IDPrograma:  e.programa.IDPrograma,
	}
}

func TestFichaService_Create_GeneratesTrimestres(t *testing.T) {
	cases := []struct {
		jornada string
		want    int
	}{
		{model.JornadaDiurna, 7},
		{model.JornadaNocturna, 9},
	}
	for _, tc := range cases {
		t.Run(tc.jornada, func(t *testing.T) {
			e := nuevoEscenario(t)
			svc := NewFichaService(e.repo, nil, zap.NewNop())
			ctx := context.Background()

			resp, err := svc.Create(ctx, nuevaFichaReq(e, "F-"+tc.jornada, tc.jornada))
			if err != nil {
				t.Fatalf("创建班次失败: %v", err)
			}
			if resp.CantidadTrimestre != tc.want {
				t.Errorf("期望 %d 个季度，实际 %d", tc.want, resp.CantidadTrimestre)
			}

			trimestres, err := e.repo.Trimestre.ListByFicha(ctx, resp.IDFicha)
			if err != nil {
				t.Fatalf("查询季度失败: %v", err)
			}
			if len(trimestres) != tc.want {
				t.Fatalf("期望写入 %d 个季度，实际 %d", tc.want, len(trimestres))
			}
			for i, tr := range trimestres {
				if tr.NoTrimestre != i+1 {
					t.Errorf("季度序号应连续，第 %d 个为 %d", i, tr.NoTrimestre)
				}
			}
			if *trimestres[0].Fase != FaseAnalisis || *trimestres[tc.want-1].Fase != FaseEvaluacion {
				t.Errorf("阶段映射不符: 首=%s 末=%s", *trimestres[0].Fase, *trimestres[tc.want-1].Fase)
			}
		})
	}
}

func TestFichaService_Create_Validaciones(t *testing.T) {
	e := nuevoEscenario(t)
	svc := NewFichaService(e.repo, nil, zap.NewNop())
	ctx := context.Background()

	req := nuevaFichaReq(e, "X1", "Mixta")
	if _, err := svc.Create(ctx, req); !errors.Is(err, ErrJornadaInvalida) {
		t.Errorf("期望 ErrJornadaInvalida，实际: %v", err)
	}

	req = nuevaFichaReq(e, "X2", model.JornadaDiurna)
	req.FechaFinal = "2027-01-18"
	if _, err := svc.Create(ctx, req); !errors.Is(err, ErrDuracionFicha) {
		t.Errorf("不足 12 个月应被拒绝，实际: %v", err)
	}

	req = nuevaFichaReq(e, "X3", model.JornadaDiurna)
	req.FechaFinal = "2027-01-19"
	if _, err := svc.Create(ctx, req); err != nil {
		t.Errorf("恰好 12 个月应通过，实际: %v", err)
	}

	req = nuevaFichaReq(e, "X4", model.JornadaDiurna)
	req.FechaInicio = "19/01/2026"
	if _, err := svc.Create(ctx, req); !errors.Is(err, ErrFechaInvalida) {
		t.Errorf("期望 ErrFechaInvalida，实际: %v", err)
	}

	req = nuevaFichaReq(e, "X5", model.JornadaDiurna)
	req.IDGestor = uintPtr(9999)
	if _, err := svc.Create(ctx, req); !errors.Is(err, ErrGestorNoEncontrado) {
		t.Errorf("期望 ErrGestorNoEncontrado，实际: %v", err)
	}

	req = nuevaFichaReq(e, "X6", model.JornadaDiurna)
	req.IDPrograma = 9999
	if _, err := svc.Create(ctx, req); !errors.Is(err, ErrProgramaNoEncontrado) {
		t.Errorf("期望 ErrProgramaNoEncontrado，实际: %v", err)
	}

	if _, err := svc.Create(ctx, nuevaFichaReq(e, e.ficha.CodigoFicha, model.JornadaDiurna)); !errors.Is(err, ErrCodigoFichaExiste) {
		t.Errorf("期望 ErrCodigoFichaExiste，实际: %v", err)
	}
}

func TestFichaService_Create_LinksGestor(t *testing.T) {
	e := nuevoEscenario(t)
	svc := NewFichaService(e.repo, nil, zap.NewNop())
	ctx := context.Background()

	req := nuevaFichaReq(e, "G1", model.JornadaDiurna)
	req.IDGestor = &e.instructor.IDInstructor
	resp, err := svc.Create(ctx, req)
	if err != nil {
		t.Fatalf("创建班次失败: %v", err)
	}

	n, err := e.repo.InstructorFicha.CountByFicha(ctx, resp.IDFicha)
	if err != nil || n != 1 {
		t.Errorf("gestor 应关联到班次，实际 %d (%v)", n, err)
	}

	fichas, err := svc.ListByInstructor(ctx, e.instructor.IDInstructor)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(fichas) != 1 || fichas[0].IDFicha != resp.IDFicha {
		t.Errorf("期望讲师名下 1 个班次，实际 %+v", fichas)
	}
}

func TestFichaService_Update(t *testing.T) {
	e := nuevoEscenario(t)
	svc := NewFichaService(e.repo, nil, zap.NewNop())
	ctx := context.Background()

	codigo := "NUEVO"
	if _, err := svc.Update(ctx, e.ficha.IDFicha, &dto.UpdateFichaRequest{CodigoFicha: &codigo}); !errors.Is(err, ErrCampoInmutable) {
		t.Errorf("修改 codigo_ficha 期望 ErrCampoInmutable，实际: %v", err)
	}
	jornada := model.JornadaNocturna
	if _, err := svc.Update(ctx, e.ficha.IDFicha, &dto.UpdateFichaRequest{Jornada: &jornada}); !errors.Is(err, ErrCampoInmutable) {
		t.Errorf("修改 jornada 期望 ErrCampoInmutable，实际: %v", err)
	}

	corta := "2026-06-01"
	if _, err := svc.Update(ctx, e.ficha.IDFicha, &dto.UpdateFichaRequest{FechaFinal: &corta}); !errors.Is(err, ErrDuracionFicha) {
		t.Errorf("期望 ErrDuracionFicha，实际: %v", err)
	}

	ambiente := "Ambiente 204"
	resp, err := svc.Update(ctx, e.ficha.IDFicha, &dto.UpdateFichaRequest{Ambiente: &ambiente})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if resp.Ambiente == nil || *resp.Ambiente != ambiente || resp.CodigoFicha != e.ficha.CodigoFicha {
		t.Errorf("更新结果不符: %+v", resp)
	}
}

func TestFichaService_Delete(t *testing.T) {
	e := nuevoEscenario(t)
	poblarGrafo(t, e)
	cache := newMockMatrizCache()
	svc := NewFichaService(e.repo, cache, zap.NewNop())
	ctx := context.Background()

	if err := svc.Delete(ctx, e.ficha.IDFicha); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	for _, v := range []interface{}{
		&model.Ficha{}, &model.Trimestre{}, &model.RapTrimestre{}, &model.InstructorFicha{},
		&model.PlaneacionPedagogica{}, &model.DetallePlaneacion{},
	} {
		if n := contar(t, e.db, v); n != 0 {
			t.Errorf("%T 应被清空，剩余 %d", v, n)
		}
	}
	// 项目侧数据不受影响
	if n := contar(t, e.db, &model.Rap{}); n != 4 {
		t.Errorf("RAP 不应被删除，实际 %d", n)
	}
	if cache.invalidations != 1 {
		t.Errorf("删除班次后应清除矩阵缓存")
	}

	if err := svc.Delete(ctx, e.ficha.IDFicha); !errors.Is(err, ErrFichaNoEncontrada) {
		t.Errorf("期望 ErrFichaNoEncontrada，实际: %v", err)
	}
}

func TestFichaService_ExportarCalendario(t *testing.T) {
	e := nuevoEscenario(t)
	svc := NewFichaService(e.repo, nil, zap.NewNop())
	ctx := context.Background()

	resp, err := svc.Create(ctx, nuevaFichaReq(e, "CAL1", model.JornadaDiurna))
	if err != nil {
		t.Fatalf("创建班次失败: %v", err)
	}

	out, err := svc.ExportarCalendario(ctx, resp.IDFicha)
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("导出内容不是合法 iCalendar: %v", err)
	}
	if n := len(cal.Events()); n != 7 {
		t.Errorf("期望 7 个事件，实际 %d", n)
	}
	for _, want := range []string{"20260119", "20260419", "20270419"} {
		if !strings.Contains(out, want) {
			t.Errorf("期望包含日期 %s", want)
		}
	}
	if !strings.Contains(out, "Trimestre 7") {
		t.Error("期望包含第 7 季度摘要")
	}

	if _, err := svc.ExportarCalendario(ctx, 9999); !errors.Is(err, ErrFichaNoEncontrada) {
		t.Errorf("期望 ErrFichaNoEncontrada，实际: %v", err)
	}
}

func TestRangoTrimestre(t *testing.T) {
	inicio := time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC)
	ini, fin := RangoTrimestre(inicio, 3)
	if !ini.Equal(time.Date(2026, 7, 19, 0, 0, 0, 0, time.UTC)) || !fin.Equal(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("第 3 季度范围不符: %s - %s", ini, fin)
	}
}

func TestFaseDeTrimestre(t *testing.T) {
	want := []string{FaseAnalisis, FasePlaneacion, FaseEjecucion, FaseEjecucion, FaseEjecucion, FaseEjecucion, FaseEvaluacion}
	for i, w := range want {
		if got := FaseDeTrimestre(i+1, 7); got != w {
			t.Errorf("第 %d 季度期望 %s，实际 %s", i+1, w, got)
		}
	}
}
