package service

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/config"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/repository"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// 内存 SQLite 测试环境
// ═══════════════════════════════════════════════════════════

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, "silent", zap.NewNop())
	if err != nil {
		t.Fatalf("打开 SQLite 失败: %v", err)
	}
	if err := database.AutoMigrate(db, model.All(), zap.NewNop()); err != nil {
		t.Fatalf("AutoMigrate 失败: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// escenario 一个项目、两个能力单元（共 4 个 RAP）、一个 3 季度的班次、一名讲师
type escenario struct {
	db         *gorm.DB
	repo       *repository.Repository
	programa   model.Programa
	comps      []model.Competencia
	raps       []model.Rap // raps[0..2] 属于 comps[0]，编号 10/2/1；raps[3] 属于 comps[1]
	ficha      model.Ficha
	trimestres []model.Trimestre
	instructor model.Instructor
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func uintPtr(n uint) *uint    { return &n }

func nuevoEscenario(t *testing.T) *escenario {
	t.Helper()
	db := newTestDB(t)
	e := &escenario{db: db, repo: repository.NewRepository(db)}

	e.programa = model.Programa{CodigoPrograma: strPtr("228118"), NombrePrograma: strPtr("ANALISIS Y DESARROLLO DE SOFTWARE")}
	mustCreate(t, db, &e.programa)

	for i, norma := range []string{"220501096", "240201530"} {
		c := model.Competencia{
			IDPrograma:        &e.programa.IDPrograma,
			CodigoNorma:       strPtr(norma),
			NombreCompetencia: strPtr("COMPETENCIA " + norma),
			DuracionMaxima:    intPtr(100 * (i + 1)),
		}
		mustCreate(t, db, &c)
		e.comps = append(e.comps, c)
	}

	raps := []model.Rap{
		{IDCompetencia: e.comps[0].IDCompetencia, Codigo: "10", Denominacion: "VALIDAR", Duracion: intPtr(100)},
		{IDCompetencia: e.comps[0].IDCompetencia, Codigo: "2", Denominacion: "CONSTRUIR", Duracion: intPtr(88)},
		{IDCompetencia: e.comps[0].IDCompetencia, Codigo: "1", Denominacion: "PLANIFICAR", Duracion: nil},
		{IDCompetencia: e.comps[1].IDCompetencia, Codigo: "01", Denominacion: "COMUNICAR", Duracion: intPtr(48)},
	}
	for i := range raps {
		mustCreate(t, db, &raps[i])
	}
	e.raps = raps

	e.ficha = model.Ficha{
		CodigoFicha:       "2879000",
		Modalidad:         "Presencial",
		Jornada:           model.JornadaDiurna,
		FechaInicio:       time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC),
		FechaFinal:        time.Date(2027, 7, 19, 0, 0, 0, 0, time.UTC),
		CantidadTrimestre: 3,
		IDPrograma:        e.programa.IDPrograma,
	}
	mustCreate(t, db, &e.ficha)

	for n := 1; n <= 3; n++ {
		tr := model.Trimestre{NoTrimestre: n, IDFicha: e.ficha.IDFicha}
		mustCreate(t, db, &tr)
		e.trimestres = append(e.trimestres, tr)
	}

	rol := model.Rol{Nombre: "Instructor"}
	mustCreate(t, db, &rol)
	e.instructor = model.Instructor{
		IDRol:      rol.ID,
		Nombre:     "Laura Gómez",
		Email:      "laura@sena.edu.co",
		Contrasena: "x",
		Cedula:     "1010",
		Estado:     model.EstadoActivo,
	}
	mustCreate(t, db, &e.instructor)
	return e
}

func mustCreate(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("创建 %T 失败: %v", v, err)
	}
}
