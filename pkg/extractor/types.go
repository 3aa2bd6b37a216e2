package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Mode 抽取模式，作为第二个命令行参数传给外部脚本
type Mode string

const (
	ModePrograma     Mode = "programa"
	ModeCompetencias Mode = "competencias"
	ModeRaps         Mode = "raps"
	ModeProyecto     Mode = "proyecto"
	ModeFases        Mode = "fases"
	ModeActividades  Mode = "actividades"
	ModeTodo         Mode = "todo"
)

// ParseMode 校验外部传入的模式字符串
func ParseMode(s string) (Mode, bool) {
	switch m := Mode(strings.TrimSpace(s)); m {
	case ModePrograma, ModeCompetencias, ModeRaps, ModeProyecto, ModeFases, ModeActividades, ModeTodo:
		return m, true
	default:
		return "", false
	}
}

// Text 宽松文本：脚本输出的字段可能是字符串、数字、null 或字符串数组
// 数组按行拼接；其它类型视为格式错误
type Text string

// UnmarshalJSON 实现 json.Unmarshaler
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	case '[':
		var parts []Text
		if err := json.Unmarshal(b, &parts); err != nil {
			return err
		}
		lines := make([]string, 0, len(parts))
		for _, p := range parts {
			lines = append(lines, string(p))
		}
		*t = Text(strings.Join(lines, "\n"))
		return nil
	case '{':
		return fmt.Errorf("se esperaba texto, se recibió un objeto")
	default:
		// 数字 / 布尔按字面量保存
		*t = Text(b)
		return nil
	}
}

// String 返回原始字符串
func (t Text) String() string { return string(t) }

// Ptr 空白字符串返回 nil，便于写入可空列
func (t Text) Ptr() *string {
	s := strings.TrimSpace(string(t))
	if s == "" {
		return nil
	}
	return &s
}

// Envelope 脚本标准输出的顶层结构
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Result 各模式数据段的并集；未请求的模式对应字段为空
type Result struct {
	Programa     []Programa    `json:"programa"`
	Competencias []Competencia `json:"competencias"`
	UnidadRaps   []UnidadRap   `json:"unidadRaps"`
	Proyecto     []Proyecto    `json:"proyecto"`
	Fases        []Fase        `json:"fases"`
	Actividades  []Actividad   `json:"actividades"`
}

// Programa 项目基本信息
type Programa struct {
	CodigoPrograma       Text `json:"codigo_programa"`
	NombrePrograma       Text `json:"nombre_programa"`
	Vigencia             Text `json:"vigencia"`
	Tipo                 Text `json:"tipo"`
	VersionPrograma      Text `json:"version_programa"`
	HorasTotales         Text `json:"horas_totales"`
	HorasEtapaLectiva    Text `json:"horas_etapa_lectiva"`
	HorasEtapaProductiva Text `json:"horas_etapa_productiva"`
	Titulo               Text `json:"titulo"`
}

// Competencia 能力单元
type Competencia struct {
	CodigoNorma       Text `json:"codigo_norma"`
	NombreCompetencia Text `json:"nombre_competencia"`
	UnidadCompetencia Text `json:"unidad_competencia"`
	DuracionMaxima    Text `json:"duracion_maxima"`
}

// UnidadRap 一个能力单元下的 RAP 标签与三段自由文本
type UnidadRap struct {
	CodigoCompetencia     Text   `json:"codigo_competencia"`
	Competencia           Text   `json:"competencia"`
	ResultadosAprendizaje []Text `json:"resultados_aprendizaje"`
	ConocimientosProceso  Text   `json:"conocimientos_proceso"`
	ConocimientosSaber    Text   `json:"conocimientos_saber"`
	CriteriosEvaluacion   Text   `json:"criterios_evaluacion"`
}

// Labels 返回 RAP 标签字符串
func (u UnidadRap) Labels() []string {
	out := make([]string, 0, len(u.ResultadosAprendizaje))
	for _, l := range u.ResultadosAprendizaje {
		out = append(out, string(l))
	}
	return out
}

// Proyecto 课题信息
type Proyecto struct {
	CodigoProyecto    Text `json:"codigo_proyecto"`
	NombreProyecto    Text `json:"nombre_proyecto"`
	CodigoPrograma    Text `json:"codigo_programa"`
	CentroFormacion   Text `json:"centro_formacion"`
	Regional          Text `json:"regional"`
	ProgramaFormacion Text `json:"programa_formacion"`
}

// Fase 课题阶段
type Fase struct {
	Nombre Text `json:"nombre"`
}

// Actividad 课题活动及其引用的 RAP
type Actividad struct {
	Fase            Text     `json:"fase"`
	NombreActividad Text     `json:"nombre_actividad"`
	Raps            []RapRef `json:"raps"`
}

// RapRef 活动引用的 RAP，脚本输出为二元数组 [codigo, denominacion]
type RapRef struct {
	Codigo       string
	Denominacion string
}

// UnmarshalJSON 实现 json.Unmarshaler
func (r *RapRef) UnmarshalJSON(b []byte) error {
	var pair []Text
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("referencia RAP inválida: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("referencia RAP inválida: se esperaban 2 elementos, se recibieron %d", len(pair))
	}
	r.Codigo = strings.TrimSpace(string(pair[0]))
	r.Denominacion = strings.TrimSpace(string(pair[1]))
	return nil
}
