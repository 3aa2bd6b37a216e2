package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
)

// RapProgramaRow RAP 及其能力单元
type RapProgramaRow struct {
	IDRap             uint    `gorm:"column:id_rap"`
	Codigo            string  `gorm:"column:codigo"`
	Denominacion      string  `gorm:"column:denominacion"`
	Duracion          *int    `gorm:"column:duracion"`
	IDCompetencia     uint    `gorm:"column:id_competencia"`
	NombreCompetencia *string `gorm:"column:nombre_competencia"`
	CodigoNorma       *string `gorm:"column:codigo_norma"`
}

// RapAsignadoRow 季度中的 RAP 及排课字段
type RapAsignadoRow struct {
	RapProgramaRow
	IDRapTrimestre     uint    `gorm:"column:id_rap_trimestre"`
	HorasTrimestre     float64 `gorm:"column:horas_trimestre"`
	HorasSemana        float64 `gorm:"column:horas_semana"`
	Estado             string  `gorm:"column:estado"`
	NoTrimestre        int     `gorm:"column:no_trimestre"`
	Fase               *string `gorm:"column:fase"`
	IDInstructor       *uint   `gorm:"column:id_instructor"`
	InstructorAsignado *string `gorm:"column:instructor_asignado"`
	Version            int     `gorm:"column:version"`
}

// SabanaBaseRow 项目 RAP 左连接本班次排课；未排课时排课字段为 NULL
type SabanaBaseRow struct {
	RapProgramaRow
	IDRapTrimestre     *uint    `gorm:"column:id_rap_trimestre"`
	IDTrimestre        *uint    `gorm:"column:id_trimestre"`
	NoTrimestre        *int     `gorm:"column:no_trimestre"`
	Fase               *string  `gorm:"column:fase"`
	HorasTrimestre     *float64 `gorm:"column:horas_trimestre"`
	HorasSemana        *float64 `gorm:"column:horas_semana"`
	Estado             *string  `gorm:"column:estado"`
	IDInstructor       *uint    `gorm:"column:id_instructor"`
	InstructorAsignado *string  `gorm:"column:instructor_asignado"`
}

// InstructorFichaRow 班次关联的讲师
type InstructorFichaRow struct {
	IDInstructor uint   `gorm:"column:id_instructor"`
	Nombre       string `gorm:"column:nombre"`
	Email        string `gorm:"column:email"`
	Cedula       string `gorm:"column:cedula"`
}

// SabanaRepository sábana 读投影（替代数据库视图 v_sabana_base / v_sabana_matriz）
type SabanaRepository interface {
	// RapsDisponibles 项目中尚未排入该班次任何季度的 RAP，按 codigo 排序
	RapsDisponibles(ctx context.Context, idFicha, idPrograma uint) ([]RapProgramaRow, error)
	// RapsAsignados 某季度中的 RAP，按 codigo 排序
	RapsAsignados(ctx context.Context, idTrimestre uint) ([]RapAsignadoRow, error)
	// Base 项目全部 RAP 左连接本班次排课
	Base(ctx context.Context, idFicha, idPrograma uint) ([]SabanaBaseRow, error)
	// InstructoresActivos 通过 instructor_ficha 关联且状态为 Activo 的讲师，按姓名排序
	InstructoresActivos(ctx context.Context, idFicha uint) ([]InstructorFichaRow, error)
}

type sabanaRepo struct {
	db *gorm.DB
}

// NewSabanaRepo 创建 SabanaRepository 实例
func NewSabanaRepo(db *gorm.DB) SabanaRepository {
	return &sabanaRepo{db: db}
}

const rapProgramaColumns = "r.id_rap, r.codigo, r.denominacion, r.duracion, " +
	"c.id_competencia, c.nombre_competencia, c.codigo_norma"

func (r *sabanaRepo) RapsDisponibles(ctx context.Context, idFicha, idPrograma uint) ([]RapProgramaRow, error) {
	var rows []RapProgramaRow
	err := r.db.WithContext(ctx).
		Table("raps AS r").
		Select(rapProgramaColumns).
		Joins("JOIN competencias c ON c.id_competencia = r.id_competencia").
		Where("c.id_programa = ?", idPrograma).
		Where(`NOT EXISTS (
			SELECT 1 FROM rap_trimestre rt
			JOIN trimestre t ON t.id_trimestre = rt.id_trimestre
			WHERE rt.id_rap = r.id_rap AND t.id_ficha = ?)`, idFicha).
		Order("r.codigo, r.id_rap").
		Scan(&rows).Error
	return rows, err
}

func (r *sabanaRepo) RapsAsignados(ctx context.Context, idTrimestre uint) ([]RapAsignadoRow, error) {
	var rows []RapAsignadoRow
	err := r.db.WithContext(ctx).
		Table("rap_trimestre AS rt").
		Select(rapProgramaColumns+", rt.id_rap_trimestre, rt.horas_trimestre, rt.horas_semana, rt.estado, "+
			"rt.id_instructor, rt.instructor_asignado, rt.version, t.no_trimestre, t.fase").
		Joins("JOIN raps r ON r.id_rap = rt.id_rap").
		Joins("JOIN competencias c ON c.id_competencia = r.id_competencia").
		Joins("JOIN trimestre t ON t.id_trimestre = rt.id_trimestre").
		Where("rt.id_trimestre = ?", idTrimestre).
		Order("r.codigo, r.id_rap").
		Scan(&rows).Error
	return rows, err
}

func (r *sabanaRepo) Base(ctx context.Context, idFicha, idPrograma uint) ([]SabanaBaseRow, error) {
	var rows []SabanaBaseRow
	err := r.db.WithContext(ctx).
		Table("raps AS r").
		Select(rapProgramaColumns+", rt.id_rap_trimestre, rt.id_trimestre, t.no_trimestre, t.fase, "+
			"rt.horas_trimestre, rt.horas_semana, rt.estado, rt.id_instructor, rt.instructor_asignado").
		Joins("JOIN competencias c ON c.id_competencia = r.id_competencia").
		Joins("LEFT JOIN rap_trimestre rt ON rt.id_rap = r.id_rap AND rt.id_ficha = ?", idFicha).
		Joins("LEFT JOIN trimestre t ON t.id_trimestre = rt.id_trimestre").
		Where("c.id_programa = ?", idPrograma).
		Order("c.id_competencia, r.id_rap, t.no_trimestre").
		Scan(&rows).Error
	return rows, err
}

func (r *sabanaRepo) InstructoresActivos(ctx context.Context, idFicha uint) ([]InstructorFichaRow, error) {
	var rows []InstructorFichaRow
	err := r.db.WithContext(ctx).
		Table("instructores AS i").
		Distinct("i.id_instructor, i.nombre, i.email, i.cedula").
		Joins("JOIN instructor_ficha inf ON inf.id_instructor = i.id_instructor").
		Where("inf.id_ficha = ? AND i.estado = ?", idFicha, model.EstadoActivo).
		Order("i.nombre").
		Scan(&rows).Error
	return rows, err
}
