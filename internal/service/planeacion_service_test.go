package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
)

func nuevaPlaneacionReq(e *escenario) *dto.CreatePlaneacionRequest {
	return &dto.CreatePlaneacionRequest{
		IDFicha:       e.ficha.IDFicha,
		Trimestre:     2,
		FechaCreacion: strPtr("2026-04-20"),
		Raps: []dto.DetallePlaneacionRequest{
			{IDRap: e.raps[1].IDRap, CodigoRap: "2", NombreRap: "CONSTRUIR", HorasTrimestre: 88, DuracionDirecta: 60, DuracionIndependiente: 28},
			{IDRap: e.raps[3].IDRap, CodigoRap: "01", NombreRap: "COMUNICAR", HorasTrimestre: 48, ActividadesAprendizaje: "Taller"},
		},
	}
}

func TestPlaneacionService_Create(t *testing.T) {
	e := nuevoEscenario(t)
	svc := NewPlaneacionService(e.repo, zap.NewNop())
	ctx := context.Background()

	resp, err := svc.Create(ctx, nuevaPlaneacionReq(e))
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}
	if resp.TotalRaps != 2 || resp.Trimestre != 2 || resp.Ficha != e.ficha.IDFicha {
		t.Errorf("创建结果不符: %+v", resp)
	}

	det, err := svc.GetByID(ctx, resp.IDPlaneacion)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if det.IDTrimestre == nil || *det.IDTrimestre != e.trimestres[1].IDTrimestre {
		t.Errorf("应按序号解析到第 2 季度，实际: %v", det.IDTrimestre)
	}
	if det.FechaCreacion != "2026-04-20" {
		t.Errorf("期望 fecha_creacion=2026-04-20，实际: %s", det.FechaCreacion)
	}
	if !strings.HasPrefix(det.Observaciones, "Planeación Trimestre 2 - Ficha 2879000") {
		t.Errorf("默认备注不符: %q", det.Observaciones)
	}
	if len(det.Detalles) != 2 || det.TotalRaps != 2 {
		t.Fatalf("期望 2 条明细，实际 %d", len(det.Detalles))
	}
	if det.Detalles[0].DuracionDirecta != 60 || det.Detalles[1].ActividadesAprendizaje != "Taller" {
		t.Errorf("明细内容不符: %+v", det.Detalles)
	}
}

func TestPlaneacionService_Create_Validaciones(t *testing.T) {
	e := nuevoEscenario(t)
	svc := NewPlaneacionService(e.repo, zap.NewNop())

	otraFicha := model.Ficha{CodigoFicha: "2879001", Modalidad: "Presencial", Jornada: model.JornadaDiurna, IDPrograma: e.programa.IDPrograma,
		FechaInicio: e.ficha.FechaInicio, FechaFinal: e.ficha.FechaFinal, CantidadTrimestre: 1}
	mustCreate(t, e.db, &otraFicha)
	ajeno := model.Trimestre{NoTrimestre: 2, IDFicha: otraFicha.IDFicha}
	mustCreate(t, e.db, &ajeno)

	otroPrograma := model.Programa{CodigoPrograma: strPtr("999999")}
	mustCreate(t, e.db, &otroPrograma)
	comp := model.Competencia{IDPrograma: &otroPrograma.IDPrograma, CodigoNorma: strPtr("1")}
	mustCreate(t, e.db, &comp)
	rapAjeno := model.Rap{IDCompetencia: comp.IDCompetencia, Codigo: "01", Denominacion: "AJENO"}
	mustCreate(t, e.db, &rapAjeno)

	cases := []struct {
		name   string
		mutate func(r *dto.CreatePlaneacionRequest)
		want   error
	}{
		{"sin raps", func(r *dto.CreatePlaneacionRequest) { r.Raps = nil }, ErrPlaneacionIncompleta},
		{"sin trimestre", func(r *dto.CreatePlaneacionRequest) { r.Trimestre = 0 }, ErrPlaneacionIncompleta},
		{"ficha inexistente", func(r *dto.CreatePlaneacionRequest) { r.IDFicha = 9999 }, ErrFichaNoEncontrada},
		{"trimestre fuera de rango", func(r *dto.CreatePlaneacionRequest) { r.Trimestre = 7 }, ErrTrimestreFueraDeRango},
		{"id_trimestre ajeno", func(r *dto.CreatePlaneacionRequest) { r.IDTrimestre = &ajeno.IDTrimestre }, ErrTrimestreNoPerteneceFicha},
		{"id_trimestre con otro número", func(r *dto.CreatePlaneacionRequest) { r.IDTrimestre = &e.trimestres[0].IDTrimestre }, ErrTrimestreNoPerteneceFicha},
		{"rap repetido", func(r *dto.CreatePlaneacionRequest) { r.Raps[1].IDRap = r.Raps[0].IDRap }, ErrPlaneacionRapDuplicado},
		{"rap de otro programa", func(r *dto.CreatePlaneacionRequest) { r.Raps[0].IDRap = rapAjeno.IDRap }, ErrRapNoPertenecePrograma},
		{"fecha inválida", func(r *dto.CreatePlaneacionRequest) { r.FechaCreacion = strPtr("20/04/2026") }, ErrFechaInvalida},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := nuevaPlaneacionReq(e)
			tc.mutate(req)
			if _, err := svc.Create(context.Background(), req); !errors.Is(err, tc.want) {
				t.Errorf("期望 %v，实际: %v", tc.want, err)
			}
		})
	}

	if n := contar(t, e.db, &model.PlaneacionPedagogica{}); n != 0 {
		t.Errorf("校验失败时不应写入任何计划，实际 %d", n)
	}
}

func TestPlaneacionService_Create_RollbackOnDetalleError(t *testing.T) {
	e := nuevoEscenario(t)
	svc := NewPlaneacionService(e.repo, zap.NewNop())

	e.db.Callback().Create().Before("gorm:create").Register("fallo_detalle", func(tx *gorm.DB) {
		if tx.Statement.Table == "detalle_planeacion_pedagogica" {
			tx.AddError(errors.New("fallo simulado"))
		}
	})

	if _, err := svc.Create(context.Background(), nuevaPlaneacionReq(e)); err == nil {
		t.Fatal("明细写入失败应返回错误")
	}
	if n := contar(t, e.db, &model.PlaneacionPedagogica{}); n != 0 {
		t.Errorf("主表应随事务回滚，实际 %d", n)
	}
}

func TestPlaneacionService_ListByFicha(t *testing.T) {
	e := nuevoEscenario(t)
	svc := NewPlaneacionService(e.repo, zap.NewNop())
	ctx := context.Background()

	primera := nuevaPlaneacionReq(e)
	primera.FechaCreacion = strPtr("2026-02-01")
	primera.Raps = primera.Raps[:1]
	if _, err := svc.Create(ctx, primera); err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if _, err := svc.Create(ctx, nuevaPlaneacionReq(e)); err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	list, err := svc.ListByFicha(ctx, e.ficha.IDFicha)
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("期望 2 个计划，实际 %d", len(list))
	}
	// fecha_creacion 降序
	if list[0].TotalRaps != 2 || list[1].TotalRaps != 1 {
		t.Errorf("total_raps 或排序不符: %+v", list)
	}

	if _, err := svc.ListByFicha(ctx, 9999); !errors.Is(err, ErrFichaNoEncontrada) {
		t.Errorf("期望 ErrFichaNoEncontrada，实际: %v", err)
	}
}

func TestPlaneacionService_Delete(t *testing.T) {
	e := nuevoEscenario(t)
	svc := NewPlaneacionService(e.repo, zap.NewNop())
	ctx := context.Background()

	creada, err := svc.Create(ctx, nuevaPlaneacionReq(e))
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	resp, err := svc.Delete(ctx, creada.IDPlaneacion)
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}
	if resp.DetallesEliminados != 2 {
		t.Errorf("期望删除 2 条明细，实际 %d", resp.DetallesEliminados)
	}
	if n := contar(t, e.db, &model.DetallePlaneacion{}); n != 0 {
		t.Errorf("明细应全部删除，剩余 %d", n)
	}

	if _, err := svc.Delete(ctx, creada.IDPlaneacion); !errors.Is(err, ErrPlaneacionNoEncontrada) {
		t.Errorf("期望 ErrPlaneacionNoEncontrada，实际: %v", err)
	}
	if _, err := svc.GetByID(ctx, creada.IDPlaneacion); !errors.Is(err, ErrPlaneacionNoEncontrada) {
		t.Errorf("期望 ErrPlaneacionNoEncontrada，实际: %v", err)
	}
}
