package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
	pkgerrors "github.com/k4mimi/Proyecto-Alistamiento/pkg/errors"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/redis"
)

// ── Mock MatrizCache ──

type mockMatrizCache struct {
	mu            sync.Mutex
	data          map[uint][]byte
	invalidations int

	// beforeSet 只在下一次 SetMatriz 写入前调用一次
	beforeSet func()
}

func newMockMatrizCache() *mockMatrizCache {
	return &mockMatrizCache{data: make(map[uint][]byte)}
}

func (m *mockMatrizCache) GetMatriz(_ context.Context, idFicha uint) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.data[idFicha]; ok {
		return b, nil
	}
	return nil, redis.ErrCacheMiss
}

func (m *mockMatrizCache) SetMatriz(_ context.Context, idFicha uint, payload []byte) error {
	m.mu.Lock()
	hook := m.beforeSet
	m.beforeSet = nil
	m.mu.Unlock()
	if hook != nil {
		hook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[idFicha] = payload
	return nil
}

func (m *mockMatrizCache) InvalidateMatriz(_ context.Context, idFicha uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, idFicha)
	m.invalidations++
	return nil
}

func (m *mockMatrizCache) has(idFicha uint) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[idFicha]
	return ok
}

func filaDeRap(matriz []dto.MatrizFila, idRap uint) *dto.MatrizFila {
	for i := range matriz {
		if matriz[i].IDRap == idRap {
			return &matriz[i]
		}
	}
	return nil
}

func newSabanaSvc(e *escenario) SabanaService {
	return NewSabanaService(e.repo, nil, zap.NewNop())
}

func (e *escenario) asignar(t *testing.T, svc SabanaService, rap model.Rap, idxTrimestre int, move bool) {
	t.Helper()
	_, err := svc.AsignarRap(context.Background(), &dto.AsignarRapRequest{
		IDRap:       rap.IDRap,
		IDTrimestre: e.trimestres[idxTrimestre].IDTrimestre,
		IDFicha:     e.ficha.IDFicha,
		Move:        move,
	})
	if err != nil {
		t.Fatalf("分配 RAP %s 到第 %d 季度失败: %v", rap.Codigo, idxTrimestre+1, err)
	}
}

func (e *escenario) asignaciones(t *testing.T, rap model.Rap) []model.RapTrimestre {
	t.Helper()
	list, err := e.repo.RapTrimestre.ListByRapFicha(context.Background(), rap.IDRap, e.ficha.IDFicha)
	if err != nil {
		t.Fatalf("查询排课失败: %v", err)
	}
	return list
}

// ═══════════════════════════════════════════════════════════
// 纯函数
// ═══════════════════════════════════════════════════════════

func TestRepartirHoras(t *testing.T) {
	cases := []struct {
		duracion *int
		n        int
		want     []float64
	}{
		{intPtr(88), 1, []float64{88}},
		{intPtr(88), 2, []float64{44, 44}},
		{intPtr(100), 3, []float64{33, 33, 34}},
		{intPtr(50), 4, []float64{13, 13, 13, 11}},
		{nil, 2, []float64{0, 0}},
		{intPtr(10), 0, []float64{}},
	}
	for _, tc := range cases {
		got := RepartirHoras(tc.duracion, tc.n)
		if len(got) != len(tc.want) {
			t.Fatalf("n=%d: 期望 %d 项，实际 %d", tc.n, len(tc.want), len(got))
		}
		var sum float64
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("duracion=%v n=%d: 第 %d 项期望 %v，实际 %v", tc.duracion, tc.n, i, tc.want[i], got[i])
			}
			sum += got[i]
		}
		if tc.duracion != nil && tc.n > 0 && sum != float64(*tc.duracion) {
			t.Errorf("总和应等于 duracion=%d，实际 %v", *tc.duracion, sum)
		}
	}
}

func TestHorasSemana(t *testing.T) {
	// 不做舍入：10 / 11 存为 0.9090…，而不是 0.91
	cases := map[float64]float64{88: 8, 44: 4, 33: 3, 0: 0, 10: 10.0 / 11, 100: 100.0 / 11}
	for in, want := range cases {
		if got := HorasSemana(in); got != want {
			t.Errorf("HorasSemana(%v): 期望 %v，实际 %v", in, want, got)
		}
	}
	if got := HorasSemana(10); got == 0.91 {
		t.Errorf("期望保留原始商，实际被舍入为 %v", got)
	}
}

// ═══════════════════════════════════════════════════════════
// AsignarRap / QuitarRap
// ═══════════════════════════════════════════════════════════

func TestAsignarRap_SingleTrimestreGetsFullDuration(t *testing.T) {
	e := nuevoEscenario(t)
	svc := newSabanaSvc(e)

	e.asignar(t, svc, e.raps[1], 0, false)

	list := e.asignaciones(t, e.raps[1])
	if len(list) != 1 {
		t.Fatalf("期望 1 条排课，实际 %d", len(list))
	}
	if list[0].HorasTrimestre != 88 || list[0].HorasSemana != 8 {
		t.Errorf("期望 88 / 8.0，实际 %v / %v", list[0].HorasTrimestre, list[0].HorasSemana)
	}
	if list[0].Estado != model.EstadoPlaneado {
		t.Errorf("期望状态 Planeado，实际 %s", list[0].Estado)
	}
}

func TestAsignarRap_Idempotent(t *testing.T) {
	e := nuevoEscenario(t)
	svc := newSabanaSvc(e)

	e.asignar(t, svc, e.raps[1], 0, false)
	e.asignar(t, svc, e.raps[1], 0, false)

	if n := len(e.asignaciones(t, e.raps[1])); n != 1 {
		t.Errorf("重复分配不应新增记录，实际 %d 条", n)
	}
}

func TestAsignarRap_MoveKeepsSingleTrimestre(t *testing.T) {
	e := nuevoEscenario(t)
	svc := newSabanaSvc(e)

	e.asignar(t, svc, e.raps[1], 0, false)
	e.asignar(t, svc, e.raps[1], 1, true)

	list := e.asignaciones(t, e.raps[1])
	if len(list) != 1 {
		t.Fatalf("move 后期望仅 1 条排课，实际 %d", len(list))
	}
	if list[0].IDTrimestre != e.trimestres[1].IDTrimestre {
		t.Errorf("期望位于第 2 季度，实际 id_trimestre=%d", list[0].IDTrimestre)
	}
	if list[0].HorasTrimestre != 88 || list[0].HorasSemana != 8 {
		t.Errorf("期望 88 / 8.0，实际 %v / %v", list[0].HorasTrimestre, list[0].HorasSemana)
	}
}

func TestAsignarRap_SplitAcrossTrimestres(t *testing.T) {
	e := nuevoEscenario(t)
	svc := newSabanaSvc(e)

	for i := 0; i < 3; i++ {
		e.asignar(t, svc, e.raps[0], i, false)
	}

	list := e.asignaciones(t, e.raps[0])
	if len(list) != 3 {
		t.Fatalf("期望 3 条排课，实际 %d", len(list))
	}
	want := []float64{33, 33, 34}
	var sum float64
	for i, rt := range list {
		if rt.HorasTrimestre != want[i] {
			t.Errorf("第 %d 季度期望 %v 小时，实际 %v", i+1, want[i], rt.HorasTrimestre)
		}
		sum += rt.HorasTrimestre
	}
	if sum != 100 {
		t.Errorf("总学时应等于 duracion=100，实际 %v", sum)
	}
}

func TestAsignarRap_NullDuracionGivesZero(t *testing.T) {
	e := nuevoEscenario(t)
	svc := newSabanaSvc(e)

	e.asignar(t, svc, e.raps[2], 0, false)

	list := e.asignaciones(t, e.raps[2])
	if len(list) != 1 || list[0].HorasTrimestre != 0 || list[0].HorasSemana != 0 {
		t.Errorf("duracion 为空时期望 0 学时，实际 %+v", list)
	}
}

func TestAsignarRap_Validaciones(t *testing.T) {
	e := nuevoEscenario(t)
	svc := newSabanaSvc(e)
	ctx := context.Background()

	// 另一个项目及其班次
	otro := model.Programa{CodigoPrograma: strPtr("999999")}
	mustCreate(t, e.db, &otro)
	otraComp := model.Competencia{IDPrograma: &otro.IDPrograma}
	mustCreate(t, e.db, &otraComp)
	rapAjeno := model.Rap{IDCompetencia: otraComp.IDCompetencia, Codigo: "01", Denominacion: "AJENO"}
	mustCreate(t, e.db, &rapAjeno)
	otraFicha := model.Ficha{
		CodigoFicha: "3000000", Modalidad: "Virtual", Jornada: model.JornadaNocturna,
		FechaInicio: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), FechaFinal: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		CantidadTrimestre: 1, IDPrograma: otro.IDPrograma,
	}
	mustCreate(t, e.db, &otraFicha)
	trAjeno := model.Trimestre{NoTrimestre: 1, IDFicha: otraFicha.IDFicha}
	mustCreate(t, e.db, &trAjeno)

	cases := []struct {
		name string
		req  dto.AsignarRapRequest
		want error
	}{
		{"班次不存在", dto.AsignarRapRequest{IDRap: e.raps[0].IDRap, IDTrimestre: e.trimestres[0].IDTrimestre, IDFicha: 9999}, ErrFichaNoEncontrada},
		{"季度不属于班次", dto.AsignarRapRequest{IDRap: e.raps[0].IDRap, IDTrimestre: trAjeno.IDTrimestre, IDFicha: e.ficha.IDFicha}, ErrTrimestreNoPerteneceFicha},
		{"RAP 不存在", dto.AsignarRapRequest{IDRap: 9999, IDTrimestre: e.trimestres[0].IDTrimestre, IDFicha: e.ficha.IDFicha}, ErrRapNoEncontrado},
		{"RAP 属于其它项目", dto.AsignarRapRequest{IDRap: rapAjeno.IDRap, IDTrimestre: e.trimestres[0].IDTrimestre, IDFicha: e.ficha.IDFicha}, ErrRapNoPertenecePrograma},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			_, err := svc.AsignarRap(ctx, &req)
			if !errors.Is(err, tc.want) {
				t.Errorf("期望 %v，实际: %v", tc.want, err)
			}
		})
	}
}

func TestQuitarRap_RecalculatesRemaining(t *testing.T) {
	e := nuevoEscenario(t)
	svc := newSabanaSvc(e)

	e.asignar(t, svc, e.raps[0], 0, false)
	e.asignar(t, svc, e.raps[0], 1, false)

	_, err := svc.QuitarRap(context.Background(), &dto.QuitarRapRequest{
		IDRap: e.raps[0].IDRap, IDTrimestre: e.trimestres[0].IDTrimestre, IDFicha: e.ficha.IDFicha,
	})
	if err != nil {
		t.Fatalf("移除失败: %v", err)
	}

	list := e.asignaciones(t, e.raps[0])
	if len(list) != 1 {
		t.Fatalf("期望剩余 1 条排课，实际 %d", len(list))
	}
	if list[0].HorasTrimestre != 100 {
		t.Errorf("剩余季度应吸收全部学时 100，实际 %v", list[0].HorasTrimestre)
	}
}

func TestQuitarRap_Errores(t *testing.T) {
	e := nuevoEscenario(t)
	svc := newSabanaSvc(e)
	ctx := context.Background()

	_, err := svc.QuitarRap(ctx, &dto.QuitarRapRequest{
		IDRap: e.raps[0].IDRap, IDTrimestre: e.trimestres[0].IDTrimestre, IDFicha: e.ficha.IDFicha,
	})
	if !errors.Is(err, ErrAsignacionNoEncontrada) {
		t.Errorf("期望 ErrAsignacionNoEncontrada，实际: %v", err)
	}

	_, err = svc.QuitarRap(ctx, &dto.QuitarRapRequest{
		IDRap: e.raps[0].IDRap, IDTrimestre: e.trimestres[0].IDTrimestre, IDFicha: 9999,
	})
	if !errors.Is(err, ErrTrimestreNoPerteneceFicha) {
		t.Errorf("期望 ErrTrimestreNoPerteneceFicha，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// 矩阵与读投影
// ═══════════════════════════════════════════════════════════

func TestObtenerSabanaMatriz_PivotAndOrder(t *testing.T) {
	e := nuevoEscenario(t)
	svc := newSabanaSvc(e)

	e.asignar(t, svc, e.raps[1], 2, false)

	matriz, err := svc.ObtenerSabanaMatriz(context.Background(), e.ficha.IDFicha)
	if err != nil {
		t.Fatalf("查询矩阵失败: %v", err)
	}
	if len(matriz) != 4 {
		t.Fatalf("期望 4 行（每个 RAP 一行），实际 %d", len(matriz))
	}

	// 同一能力单元内按数值编号排序：1, 2, 10；随后是第二个能力单元
	wantCodigos := []string{"1", "2", "10", "01"}
	for i, fila := range matriz {
		if fila.CodigoRap != wantCodigos[i] {
			t.Errorf("第 %d 行期望编号 %s，实际 %s", i, wantCodigos[i], fila.CodigoRap)
		}
		if nums := fila.NumerosTrimestre(); len(nums) != 3 {
			t.Errorf("每行都应包含 3 个季度，实际 %v", nums)
		}
	}

	fila := matriz[1]
	if fila.IDRap != e.raps[1].IDRap {
		t.Fatalf("第 2 行应为 RAP 2")
	}
	c3 := fila.Trimestres[3]
	if c3.HorasTrimestre == nil || *c3.HorasTrimestre != 88 || c3.HorasSemana == nil || *c3.HorasSemana != 8 {
		t.Errorf("t3 单元格期望 88 / 8.0，实际 %+v", c3)
	}
	for _, n := range []int{1, 2} {
		c := fila.Trimestres[n]
		if c.HorasTrimestre != nil || c.IDRapTrimestre != nil || c.Estado != nil {
			t.Errorf("t%d 应为空单元格，实际 %+v", n, c)
		}
	}
	if fila.TotalHoras != 88 {
		t.Errorf("期望 total_horas=88，实际 %v", fila.TotalHoras)
	}

	raw, err := json.Marshal(fila)
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	var keys map[string]interface{}
	if err := json.Unmarshal(raw, &keys); err != nil {
		t.Fatalf("反序列化失败: %v", err)
	}
	if v, ok := keys["t1_htrim"]; !ok || v != nil {
		t.Errorf("期望 t1_htrim 存在且为 null，实际 %v (%v)", v, ok)
	}
	if v := keys["t3_htrim"]; v != float64(88) {
		t.Errorf("期望 t3_htrim=88，实际 %v", v)
	}
	if v := keys["t3_estado"]; v != model.EstadoPlaneado {
		t.Errorf("期望 t3_estado=Planeado，实际 %v", v)
	}
}

func TestObtenerSabanaMatriz_FichaNoEncontrada(t *testing.T) {
	e := nuevoEscenario(t)
	svc := newSabanaSvc(e)

	if _, err := svc.ObtenerSabanaMatriz(context.Background(), 9999); !errors.Is(err, ErrFichaNoEncontrada) {
		t.Errorf("期望 ErrFichaNoEncontrada，实际: %v", err)
	}
}

func TestObtenerSabanaMatriz_CacheInvalidatedOnMutation(t *testing.T) {
	e := nuevoEscenario(t)
	cache := newMockMatrizCache()
	svc := NewSabanaService(e.repo, cache, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.ObtenerSabanaMatriz(ctx, e.ficha.IDFicha); err != nil {
		t.Fatalf("查询矩阵失败: %v", err)
	}
	if !cache.has(e.ficha.IDFicha) {
		t.Fatal("首次查询后应写入缓存")
	}

	e.asignar(t, svc, e.raps[3], 0, false)
	if cache.invalidations == 0 {
		t.Error("分配 RAP 后应清除缓存")
	}

	matriz, err := svc.ObtenerSabanaMatriz(ctx, e.ficha.IDFicha)
	if err != nil {
		t.Fatalf("查询矩阵失败: %v", err)
	}
	ultima := matriz[len(matriz)-1]
	if c := ultima.Trimestres[1]; c.HorasTrimestre == nil || *c.HorasTrimestre != 48 {
		t.Errorf("缓存失效后应读到最新排课，实际 %+v", c)
	}

	// 命中缓存时应还原 t{n}_* 单元格
	cached, err := svc.ObtenerSabanaMatriz(ctx, e.ficha.IDFicha)
	if err != nil {
		t.Fatalf("查询矩阵失败: %v", err)
	}
	if c := cached[len(cached)-1].Trimestres[1]; c.HorasTrimestre == nil || *c.HorasTrimestre != 48 {
		t.Errorf("缓存内容应包含季度单元格，实际 %+v", c)
	}
}

func TestObtenerSabanaMatriz_StaleBuildNotCached(t *testing.T) {
	e := nuevoEscenario(t)
	cache := newMockMatrizCache()
	svc := NewSabanaService(e.repo, cache, zap.NewNop())
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	cache.beforeSet = func() {
		close(entered)
		<-release
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.ObtenerSabanaMatriz(ctx, e.ficha.IDFicha)
		done <- err
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("读取方未进入写缓存阶段")
	}
	// 读取方已按旧数据建好矩阵，此时提交新的排课
	e.asignar(t, svc, e.raps[3], 0, false)
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("查询矩阵失败: %v", err)
	}
	if cache.has(e.ficha.IDFicha) {
		t.Error("期望过期的重建结果不保留在缓存中")
	}

	matriz, err := svc.ObtenerSabanaMatriz(ctx, e.ficha.IDFicha)
	if err != nil {
		t.Fatalf("查询矩阵失败: %v", err)
	}
	fila := filaDeRap(matriz, e.raps[3].IDRap)
	if fila == nil {
		t.Fatalf("矩阵中缺少 RAP %s", e.raps[3].Codigo)
	}
	if c := fila.Trimestres[1]; c.IDRapTrimestre == nil {
		t.Errorf("期望读到刚分配的排课，实际 %+v", c)
	}
	if !cache.has(e.ficha.IDFicha) {
		t.Error("期望最新矩阵写入缓存")
	}
}

func TestObtenerRapsDisponibles_ExcludesAssigned(t *testing.T) {
	e := nuevoEscenario(t)
	svc := newSabanaSvc(e)

	e.asignar(t, svc, e.raps[0], 0, false)

	list, err := svc.ObtenerRapsDisponibles(context.Background(), e.ficha.IDFicha)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("期望 3 个可用 RAP，实际 %d", len(list))
	}
	for _, r := range list {
		if r.IDRap == e.raps[0].IDRap {
			t.Errorf("已排课的 RAP 不应出现在可用列表中")
		}
	}
}

func TestObtenerRapsAsignados(t *testing.T) {
	e := nuevoEscenario(t)
	svc := newSabanaSvc(e)
	ctx := context.Background()

	e.asignar(t, svc, e.raps[1], 1, false)

	list, err := svc.ObtenerRapsAsignados(ctx, e.ficha.IDFicha, e.trimestres[1].IDTrimestre)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(list) != 1 || list[0].IDRap != e.raps[1].IDRap || list[0].NoTrimestre != 2 {
		t.Errorf("期望第 2 季度包含 RAP 2，实际 %+v", list)
	}

	if _, err := svc.ObtenerRapsAsignados(ctx, 9999, e.trimestres[1].IDTrimestre); !errors.Is(err, ErrTrimestreAjeno) {
		t.Errorf("期望 ErrTrimestreAjeno，实际: %v", err)
	}
}

func TestObtenerSabanaBase_OneRowPerRapAndTrimestre(t *testing.T) {
	e := nuevoEscenario(t)
	svc := newSabanaSvc(e)

	e.asignar(t, svc, e.raps[0], 0, false)
	e.asignar(t, svc, e.raps[0], 1, false)

	rows, err := svc.ObtenerSabanaBase(context.Background(), e.ficha.IDFicha)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	// RAP 10 两行 + 其余 3 个 RAP 各一行（未排课）
	if len(rows) != 5 {
		t.Fatalf("期望 5 行，实际 %d", len(rows))
	}
	var asignadas int
	for _, r := range rows {
		if r.IDRapTrimestre != nil {
			asignadas++
		}
	}
	if asignadas != 2 {
		t.Errorf("期望 2 行带排课字段，实际 %d", asignadas)
	}
}

// ═══════════════════════════════════════════════════════════
// ActualizarHoras
// ═══════════════════════════════════════════════════════════

func TestActualizarHoras(t *testing.T) {
	e := nuevoEscenario(t)
	svc := newSabanaSvc(e)
	ctx := context.Background()

	e.asignar(t, svc, e.raps[1], 0, false)
	rt := e.asignaciones(t, e.raps[1])[0]

	horas := 22.0
	resp, err := svc.ActualizarHoras(ctx, &dto.ActualizarHorasRequest{
		IDRapTrimestre: rt.IDRapTrimestre, HorasTrimestre: &horas, IDFicha: e.ficha.IDFicha, Version: &rt.Version,
	})
	if err != nil {
		t.Fatalf("更新学时失败: %v", err)
	}
	if resp.HorasTrimestre != 22 || resp.HorasSemana != 2 {
		t.Errorf("期望 22 / 2.0，实际 %v / %v", resp.HorasTrimestre, resp.HorasSemana)
	}
	if resp.Version != rt.Version+1 {
		t.Errorf("期望 version=%d，实际 %d", rt.Version+1, resp.Version)
	}

	// 旧版本号
	_, err = svc.ActualizarHoras(ctx, &dto.ActualizarHorasRequest{
		IDRapTrimestre: rt.IDRapTrimestre, HorasTrimestre: &horas, IDFicha: e.ficha.IDFicha, Version: &rt.Version,
	})
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际: %v", err)
	}

	// 每周学时存原始商
	diez := 10.0
	resp, err = svc.ActualizarHoras(ctx, &dto.ActualizarHorasRequest{
		IDRapTrimestre: rt.IDRapTrimestre, HorasTrimestre: &diez, IDFicha: e.ficha.IDFicha,
	})
	if err != nil {
		t.Fatalf("更新学时失败: %v", err)
	}
	if resp.HorasSemana != 10.0/11 {
		t.Errorf("期望 horas_semana=%v，实际: %v", 10.0/11, resp.HorasSemana)
	}

	_, err = svc.ActualizarHoras(ctx, &dto.ActualizarHorasRequest{
		IDRapTrimestre: rt.IDRapTrimestre, HorasTrimestre: &horas, IDFicha: 9999,
	})
	if !errors.Is(err, ErrRapTrimestreOtraFicha) {
		t.Errorf("期望 ErrRapTrimestreOtraFicha，实际: %v", err)
	}

	_, err = svc.ActualizarHoras(ctx, &dto.ActualizarHorasRequest{
		IDRapTrimestre: 9999, HorasTrimestre: &horas, IDFicha: e.ficha.IDFicha,
	})
	if !errors.Is(err, ErrRapTrimestreNoEncontrado) {
		t.Errorf("期望 ErrRapTrimestreNoEncontrado，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// 讲师指定
// ═══════════════════════════════════════════════════════════

func TestAsignarInstructor(t *testing.T) {
	e := nuevoEscenario(t)
	svc := newSabanaSvc(e)
	ctx := context.Background()

	e.asignar(t, svc, e.raps[1], 0, false)
	rt := e.asignaciones(t, e.raps[1])[0]

	resp, err := svc.AsignarInstructor(ctx, rt.IDRapTrimestre, &e.instructor.IDInstructor)
	if err != nil {
		t.Fatalf("指定讲师失败: %v", err)
	}
	if resp.IDInstructor == nil || *resp.IDInstructor != e.instructor.IDInstructor {
		t.Errorf("期望 id_instructor=%d，实际 %v", e.instructor.IDInstructor, resp.IDInstructor)
	}
	if resp.InstructorAsignado == nil || *resp.InstructorAsignado != "Laura Gómez" {
		t.Errorf("期望冗余讲师姓名，实际 %v", resp.InstructorAsignado)
	}

	// nil 等同于取消指定
	resp, err = svc.AsignarInstructor(ctx, rt.IDRapTrimestre, nil)
	if err != nil {
		t.Fatalf("取消指定失败: %v", err)
	}
	if resp.IDInstructor != nil || resp.InstructorAsignado != nil {
		t.Errorf("取消指定后两列都应为空，实际 %v / %v", resp.IDInstructor, resp.InstructorAsignado)
	}
}

func TestAsignarInstructor_Errores(t *testing.T) {
	e := nuevoEscenario(t)
	svc := newSabanaSvc(e)
	ctx := context.Background()

	e.asignar(t, svc, e.raps[1], 0, false)
	rt := e.asignaciones(t, e.raps[1])[0]

	if _, err := svc.AsignarInstructor(ctx, rt.IDRapTrimestre, uintPtr(9999)); !errors.Is(err, ErrInstructorNoEncontrado) {
		t.Errorf("期望 ErrInstructorNoEncontrado，实际: %v", err)
	}

	inactivo := model.Instructor{
		IDRol: e.instructor.IDRol, Nombre: "Pedro", Email: "pedro@sena.edu.co",
		Contrasena: "x", Cedula: "2020", Estado: model.EstadoInactivo,
	}
	mustCreate(t, e.db, &inactivo)
	if _, err := svc.AsignarInstructor(ctx, rt.IDRapTrimestre, &inactivo.IDInstructor); !errors.Is(err, ErrInstructorInactivo) {
		t.Errorf("期望 ErrInstructorInactivo，实际: %v", err)
	}

	if _, err := svc.DesasignarInstructor(ctx, 9999); !errors.Is(err, ErrRapTrimestreNoEncontrado) {
		t.Errorf("期望 ErrRapTrimestreNoEncontrado，实际: %v", err)
	}
}

func TestObtenerInstructoresFicha(t *testing.T) {
	e := nuevoEscenario(t)
	svc := newSabanaSvc(e)
	ctx := context.Background()

	if err := e.repo.InstructorFicha.Vincular(ctx, e.instructor.IDInstructor, e.ficha.IDFicha); err != nil {
		t.Fatalf("关联讲师失败: %v", err)
	}

	list, err := svc.ObtenerInstructoresFicha(ctx, e.ficha.IDFicha)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(list) != 1 || list[0].Nombre != "Laura Gómez" {
		t.Errorf("期望 1 名讲师，实际 %+v", list)
	}
}

func TestObtenerSaberes(t *testing.T) {
	e := nuevoEscenario(t)
	svc := newSabanaSvc(e)
	ctx := context.Background()

	mustCreate(t, e.db, &model.ConocimientoSaber{IDRap: e.raps[0].IDRap, Nombre: "Ciclo de vida del software"})

	list, err := svc.ObtenerSaberes(ctx, e.raps[0].IDRap)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(list) != 1 || list[0].Nombre != "Ciclo de vida del software" {
		t.Errorf("期望 1 条知识，实际 %+v", list)
	}

	procesos, err := svc.ObtenerProcesos(ctx, e.raps[0].IDRap)
	if err != nil || len(procesos) != 0 {
		t.Errorf("期望空列表，实际 %v / %v", procesos, err)
	}
}

func TestObtenerSabanaMatriz_Concurrente(t *testing.T) {
	e := nuevoEscenario(t)
	svc := newSabanaSvc(e)
	e.asignar(t, svc, e.raps[0], 0, false)

	const n = 8
	var wg sync.WaitGroup
	resultados := make([][]dto.MatrizFila, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resultados[i], errs[i] = svc.ObtenerSabanaMatriz(context.Background(), e.ficha.IDFicha)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("第 %d 个调用出错: %v", i, errs[i])
		}
		if len(resultados[i]) != len(resultados[0]) {
			t.Errorf("并发结果不一致: %d vs %d", len(resultados[i]), len(resultados[0]))
		}
	}
}
