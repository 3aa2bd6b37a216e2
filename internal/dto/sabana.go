package dto

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// ── sábana 排课模块 DTO ──

// AsignarRapRequest 将 RAP 排入季度
// move=true 时先删除该 RAP 在本班次其它季度的记录
type AsignarRapRequest struct {
	IDRap       uint `json:"id_rap"       binding:"required"`
	IDTrimestre uint `json:"id_trimestre" binding:"required"`
	IDFicha     uint `json:"id_ficha"     binding:"required"`
	Move        bool `json:"move"`
}

// QuitarRapRequest 将 RAP 移出季度
type QuitarRapRequest struct {
	IDRap       uint `json:"id_rap"       binding:"required"`
	IDTrimestre uint `json:"id_trimestre" binding:"required"`
	IDFicha     uint `json:"id_ficha"     binding:"required"`
}

// ActualizarHorasRequest 手动修改季度学时
// version 可选：提供时按乐观锁校验
type ActualizarHorasRequest struct {
	IDRapTrimestre uint     `json:"id_rap_trimestre" binding:"required"`
	HorasTrimestre *float64 `json:"horas_trimestre"  binding:"required,min=0"`
	IDFicha        uint     `json:"id_ficha"         binding:"required"`
	Version        *int     `json:"version"          binding:"omitempty,min=1"`
}

// AsignarInstructorRequest 为排课记录指定讲师；id_instructor 为空等同于取消指定
type AsignarInstructorRequest struct {
	IDRapTrimestre uint  `json:"id_rap_trimestre" binding:"required"`
	IDInstructor   *uint `json:"id_instructor"`
}

// DesasignarInstructorRequest 取消讲师指定
type DesasignarInstructorRequest struct {
	IDRapTrimestre uint `json:"id_rap_trimestre" binding:"required"`
}

// RapDisponible 尚未排入任何季度的 RAP
type RapDisponible struct {
	IDRap             uint    `json:"id_rap"`
	Codigo            string  `json:"codigo"`
	Denominacion      string  `json:"denominacion"`
	Duracion          *int    `json:"duracion"`
	IDCompetencia     uint    `json:"id_competencia"`
	NombreCompetencia *string `json:"nombre_competencia"`
	CodigoNorma       *string `json:"codigo_norma"`
}

// RapAsignado 某季度中的 RAP
type RapAsignado struct {
	RapDisponible
	IDRapTrimestre     uint    `json:"id_rap_trimestre"`
	HorasTrimestre     float64 `json:"horas_trimestre"`
	HorasSemana        float64 `json:"horas_semana"`
	Estado             string  `json:"estado"`
	NoTrimestre        int     `json:"no_trimestre"`
	Fase               *string `json:"fase"`
	IDInstructor       *uint   `json:"id_instructor"`
	InstructorAsignado *string `json:"instructor_asignado"`
	Version            int     `json:"version"`
}

// RapTrimestreResponse 排课记录
type RapTrimestreResponse struct {
	IDRapTrimestre     uint    `json:"id_rap_trimestre"`
	IDRap              uint    `json:"id_rap"`
	IDTrimestre        uint    `json:"id_trimestre"`
	IDFicha            uint    `json:"id_ficha"`
	HorasTrimestre     float64 `json:"horas_trimestre"`
	HorasSemana        float64 `json:"horas_semana"`
	Estado             string  `json:"estado"`
	IDInstructor       *uint   `json:"id_instructor"`
	InstructorAsignado *string `json:"instructor_asignado"`
	Version            int     `json:"version"`
}

// SabanaBaseRow 班次的扁平视图：每个 (RAP, 季度) 一行；未排课的 RAP 季度字段为 null
type SabanaBaseRow struct {
	IDFicha            uint     `json:"id_ficha"`
	IDPrograma         uint     `json:"id_programa"`
	IDCompetencia      uint     `json:"id_competencia"`
	CodigoNorma        *string  `json:"codigo_norma"`
	NombreCompetencia  *string  `json:"nombre_competencia"`
	IDRap              uint     `json:"id_rap"`
	CodigoRap          string   `json:"codigo_rap"`
	Denominacion       string   `json:"denominacion"`
	Duracion           *int     `json:"duracion"`
	IDRapTrimestre     *uint    `json:"id_rap_trimestre"`
	IDTrimestre        *uint    `json:"id_trimestre"`
	NoTrimestre        *int     `json:"no_trimestre"`
	Fase               *string  `json:"fase"`
	HorasTrimestre     *float64 `json:"horas_trimestre"`
	HorasSemana        *float64 `json:"horas_semana"`
	Estado             *string  `json:"estado"`
	IDInstructor       *uint    `json:"id_instructor"`
	InstructorAsignado *string  `json:"instructor_asignado"`
}

// InstructorFichaResponse 班次的可用讲师
type InstructorFichaResponse struct {
	IDInstructor uint   `json:"id_instructor"`
	Nombre       string `json:"nombre"`
	Email        string `json:"email"`
	Cedula       string `json:"cedula"`
}

// ConocimientoResponse RAP 的知识 / 评估标准文本
type ConocimientoResponse struct {
	ID     uint   `json:"id"`
	IDRap  uint   `json:"id_rap"`
	Nombre string `json:"nombre"`
}

// ────────────────────── 矩阵 ──────────────────────

// MatrizCelda 矩阵中某 RAP 在某季度的单元格；未排课时所有字段为 null
type MatrizCelda struct {
	IDRapTrimestre *uint
	HorasTrimestre *float64
	HorasSemana    *float64
	Estado         *string
	IDInstructor   *uint
	Instructor     *string
}

// MatrizFila 矩阵的一行（一个 RAP）
// 季度单元格序列化为 t{n}_htrim / t{n}_hsem / t{n}_id_rap_trimestre / t{n}_estado / t{n}_id_instructor / t{n}_instructor
type MatrizFila struct {
	IDFicha           uint    `json:"id_ficha"`
	IDCompetencia     uint    `json:"id_competencia"`
	CodigoNorma       *string `json:"codigo_norma"`
	NombreCompetencia *string `json:"nombre_competencia"`
	IDRap             uint    `json:"id_rap"`
	CodigoRap         string  `json:"codigo_rap"`
	Denominacion      string  `json:"denominacion"`
	Duracion          *int    `json:"duracion"`
	TotalHoras        float64 `json:"total_horas"`

	// Trimestres 以 no_trimestre 为键；班次的每个季度都有一项
	Trimestres map[int]MatrizCelda `json:"-"`
}

type matrizFilaBase MatrizFila

// MarshalJSON 展开季度单元格为 t{n}_* 键
func (f MatrizFila) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(matrizFilaBase(f))
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, 9+6*len(f.Trimestres))
	if err := json.Unmarshal(base, &out); err != nil {
		return nil, err
	}
	for n, c := range f.Trimestres {
		p := "t" + strconv.Itoa(n) + "_"
		out[p+"htrim"] = c.HorasTrimestre
		out[p+"hsem"] = c.HorasSemana
		out[p+"id_rap_trimestre"] = c.IDRapTrimestre
		out[p+"estado"] = c.Estado
		out[p+"id_instructor"] = c.IDInstructor
		out[p+"instructor"] = c.Instructor
	}
	return json.Marshal(out)
}

var matrizKeyRe = regexp.MustCompile(`^t(\d+)_(htrim|hsem|id_rap_trimestre|estado|id_instructor|instructor)$`)

// UnmarshalJSON 从 t{n}_* 键还原季度单元格（用于读取缓存）
func (f *MatrizFila) UnmarshalJSON(b []byte) error {
	var base matrizFilaBase
	if err := json.Unmarshal(b, &base); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*f = MatrizFila(base)
	f.Trimestres = make(map[int]MatrizCelda)
	for k, v := range raw {
		m := matrizKeyRe.FindStringSubmatch(k)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		c := f.Trimestres[n]
		var err error
		switch m[2] {
		case "htrim":
			err = json.Unmarshal(v, &c.HorasTrimestre)
		case "hsem":
			err = json.Unmarshal(v, &c.HorasSemana)
		case "id_rap_trimestre":
			err = json.Unmarshal(v, &c.IDRapTrimestre)
		case "estado":
			err = json.Unmarshal(v, &c.Estado)
		case "id_instructor":
			err = json.Unmarshal(v, &c.IDInstructor)
		case "instructor":
			err = json.Unmarshal(v, &c.Instructor)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		f.Trimestres[n] = c
	}
	return nil
}

// NumerosTrimestre 返回行内季度序号（升序）
func (f MatrizFila) NumerosTrimestre() []int {
	nums := make([]int, 0, len(f.Trimestres))
	for n := range f.Trimestres {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}
