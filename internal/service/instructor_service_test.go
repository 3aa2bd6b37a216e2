package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
)

func setupTestInstructorService(t *testing.T) (InstructorService, *escenario) {
	t.Helper()
	e := nuevoEscenario(t)
	return NewInstructorService(e.repo, bcrypt.MinCost, nil, zap.NewNop()), e
}

func nuevoInstructorReq(e *escenario) *dto.CreateInstructorRequest {
	return &dto.CreateInstructorRequest{
		Cedula:     "2020",
		Nombre:     "  Andrés Ruiz ",
		Email:      "andres@sena.edu.co",
		Contrasena: "secreto1",
		IDRol:      e.instructor.IDRol,
	}
}

func TestInstructorService_Create(t *testing.T) {
	svc, e := setupTestInstructorService(t)

	resp, err := svc.Create(context.Background(), nuevoInstructorReq(e))
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}
	if resp.Nombre != "Andrés Ruiz" {
		t.Errorf("姓名应去除首尾空格，实际: %q", resp.Nombre)
	}
	if resp.Estado != model.EstadoActivo || !resp.PrimerAcceso || resp.Rol != "Instructor" {
		t.Errorf("默认字段不符: %+v", resp)
	}

	var inst model.Instructor
	e.db.First(&inst, resp.IDInstructor)
	if inst.Contrasena == "secreto1" {
		t.Fatal("密码不应明文存储")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(inst.Contrasena), []byte("secreto1")); err != nil {
		t.Errorf("密码哈希无法校验: %v", err)
	}
}

func TestInstructorService_Create_Validaciones(t *testing.T) {
	svc, e := setupTestInstructorService(t)

	cases := []struct {
		name   string
		mutate func(r *dto.CreateInstructorRequest)
		want   error
	}{
		{"cédula duplicada", func(r *dto.CreateInstructorRequest) { r.Cedula = "1010" }, ErrCedulaRegistrada},
		{"email duplicado", func(r *dto.CreateInstructorRequest) { r.Email = "laura@sena.edu.co" }, ErrEmailRegistrado},
		{"email sin dominio", func(r *dto.CreateInstructorRequest) { r.Email = "andres@sena" }, ErrEmailInvalido},
		{"email con espacio", func(r *dto.CreateInstructorRequest) { r.Email = "an dres@sena.edu.co" }, ErrEmailInvalido},
		{"contraseña corta", func(r *dto.CreateInstructorRequest) { r.Contrasena = "12345" }, ErrContrasenaCorta},
		{"rol inexistente", func(r *dto.CreateInstructorRequest) { r.IDRol = 999 }, ErrRolNoEncontrado},
		{"estado inválido", func(r *dto.CreateInstructorRequest) { r.Estado = "Suspendido" }, ErrEstadoInvalido},
		{"nombre vacío", func(r *dto.CreateInstructorRequest) { r.Nombre = "   " }, ErrInstructorCampos},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := nuevoInstructorReq(e)
			tc.mutate(req)
			if _, err := svc.Create(context.Background(), req); !errors.Is(err, tc.want) {
				t.Errorf("期望 %v，实际: %v", tc.want, err)
			}
		})
	}
}

func TestInstructorService_Update(t *testing.T) {
	svc, e := setupTestInstructorService(t)
	creado, err := svc.Create(context.Background(), nuevoInstructorReq(e))
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	// 使用他人的 cédula
	if _, err := svc.Update(context.Background(), creado.IDInstructor, &dto.UpdateInstructorRequest{Cedula: strPtr("1010")}); !errors.Is(err, ErrCedulaRegistrada) {
		t.Errorf("期望 ErrCedulaRegistrada，实际: %v", err)
	}
	// 保留自己的 cédula 不算重复
	estado := model.EstadoInactivo
	resp, err := svc.Update(context.Background(), creado.IDInstructor, &dto.UpdateInstructorRequest{
		Cedula:     strPtr("2020"),
		Nombre:     strPtr("Andrés R."),
		Estado:     &estado,
		Contrasena: strPtr(""),
	})
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}
	if resp.Nombre != "Andrés R." || resp.Estado != model.EstadoInactivo {
		t.Errorf("更新结果不符: %+v", resp)
	}

	var inst model.Instructor
	e.db.First(&inst, creado.IDInstructor)
	if err := bcrypt.CompareHashAndPassword([]byte(inst.Contrasena), []byte("secreto1")); err != nil {
		t.Error("空密码不应覆盖原密码")
	}

	if _, err := svc.Update(context.Background(), 9999, &dto.UpdateInstructorRequest{}); !errors.Is(err, ErrInstructorNoEncontrado) {
		t.Errorf("期望 ErrInstructorNoEncontrado，实际: %v", err)
	}
}

func TestInstructorService_CambiarContrasena(t *testing.T) {
	svc, e := setupTestInstructorService(t)
	id := e.instructor.IDInstructor

	if err := svc.CambiarContrasena(context.Background(), id, &dto.CambiarContrasenaRequest{NuevaContrasena: "corta"}); !errors.Is(err, ErrContrasenaCorta) {
		t.Errorf("期望 ErrContrasenaCorta，实际: %v", err)
	}
	if err := svc.CambiarContrasena(context.Background(), id, &dto.CambiarContrasenaRequest{NuevaContrasena: "nueva123"}); err != nil {
		t.Fatalf("不期望错误: %v", err)
	}

	var inst model.Instructor
	e.db.First(&inst, id)
	if inst.PrimerAcceso != 0 {
		t.Errorf("修改密码后 primer_acceso 应为 0，实际: %d", inst.PrimerAcceso)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(inst.Contrasena), []byte("nueva123")); err != nil {
		t.Error("新密码无法校验")
	}

	if err := svc.CambiarContrasena(context.Background(), 9999, &dto.CambiarContrasenaRequest{NuevaContrasena: "nueva123"}); !errors.Is(err, ErrInstructorNoEncontrado) {
		t.Errorf("期望 ErrInstructorNoEncontrado，实际: %v", err)
	}
}

func TestInstructorService_Delete(t *testing.T) {
	svc, e := setupTestInstructorService(t)
	ctx := context.Background()
	id := e.instructor.IDInstructor

	// 关联班次、作为 gestor、在排课中被指定
	if err := e.repo.InstructorFicha.Vincular(ctx, id, e.ficha.IDFicha); err != nil {
		t.Fatalf("关联失败: %v", err)
	}
	e.db.Model(&model.Ficha{}).Where("id_ficha = ?", e.ficha.IDFicha).Update("id_gestor", id)
	e.asignar(t, newSabanaSvc(e), e.raps[1], 0, false)
	rt := e.asignaciones(t, e.raps[1])[0]
	if _, err := e.repo.RapTrimestre.UpdateInstructor(ctx, rt.IDRapTrimestre, &id, strPtr("Laura Gómez")); err != nil {
		t.Fatalf("指定讲师失败: %v", err)
	}

	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("不期望错误: %v", err)
	}

	if n := contar(t, e.db, &model.Instructor{}); n != 0 {
		t.Errorf("讲师应被删除，剩余 %d", n)
	}
	if n := contar(t, e.db, &model.InstructorFicha{}); n != 0 {
		t.Errorf("班次关联应被删除，剩余 %d", n)
	}
	var f model.Ficha
	e.db.First(&f, e.ficha.IDFicha)
	if f.IDGestor != nil {
		t.Errorf("gestor 应被清空，实际: %v", *f.IDGestor)
	}
	got, _ := e.repo.RapTrimestre.GetByID(ctx, rt.IDRapTrimestre)
	if got.IDInstructor != nil || got.InstructorAsignado != nil {
		t.Errorf("排课中的讲师应被清空: %+v", got)
	}

	if err := svc.Delete(ctx, id); !errors.Is(err, ErrInstructorNoEncontrado) {
		t.Errorf("期望 ErrInstructorNoEncontrado，实际: %v", err)
	}
}

func TestInstructorService_Delete_InvalidatesMatriz(t *testing.T) {
	e := nuevoEscenario(t)
	cache := newMockMatrizCache()
	sabana := NewSabanaService(e.repo, cache, zap.NewNop())
	svc := NewInstructorService(e.repo, bcrypt.MinCost, cache, zap.NewNop())
	ctx := context.Background()
	id := e.instructor.IDInstructor

	e.asignar(t, sabana, e.raps[1], 0, false)
	rt := e.asignaciones(t, e.raps[1])[0]
	if _, err := e.repo.RapTrimestre.UpdateInstructor(ctx, rt.IDRapTrimestre, &id, strPtr("Laura Gómez")); err != nil {
		t.Fatalf("指定讲师失败: %v", err)
	}

	// 预热缓存
	matriz, err := sabana.ObtenerSabanaMatriz(ctx, e.ficha.IDFicha)
	if err != nil {
		t.Fatalf("查询矩阵失败: %v", err)
	}
	if c := filaDeRap(matriz, e.raps[1].IDRap).Trimestres[1]; c.Instructor == nil || *c.Instructor != "Laura Gómez" {
		t.Fatalf("期望矩阵显示讲师 Laura Gómez，实际 %+v", c)
	}
	if !cache.has(e.ficha.IDFicha) {
		t.Fatal("期望矩阵已写入缓存")
	}

	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("不期望错误: %v", err)
	}
	if cache.has(e.ficha.IDFicha) {
		t.Error("删除讲师后应清除受影响班次的矩阵缓存")
	}

	matriz, err = sabana.ObtenerSabanaMatriz(ctx, e.ficha.IDFicha)
	if err != nil {
		t.Fatalf("查询矩阵失败: %v", err)
	}
	if c := filaDeRap(matriz, e.raps[1].IDRap).Trimestres[1]; c.IDInstructor != nil || c.Instructor != nil {
		t.Errorf("期望矩阵中不再有讲师，实际 %+v", c)
	}
}

func TestInstructorService_RolesPermisos(t *testing.T) {
	svc, e := setupTestInstructorService(t)
	conPassword(t, e, "x", "sabana.editar")
	mustCreate(t, e.db, &model.Rol{Nombre: "Coordinador"})

	roles, err := svc.ListRoles(context.Background())
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}
	if len(roles) != 2 {
		t.Fatalf("期望 2 个角色，实际 %d", len(roles))
	}
	if roles[0].Nombre != "Instructor" || len(roles[0].Permisos) != 1 {
		t.Errorf("角色权限不符: %+v", roles[0])
	}
	if roles[1].Permisos == nil {
		t.Error("无权限的角色应返回空数组")
	}

	permisos, err := svc.ListPermisos(context.Background())
	if err != nil || len(permisos) != 1 || permisos[0].Nombre != "sabana.editar" {
		t.Errorf("权限列表不符: %+v, %v", permisos, err)
	}
}
