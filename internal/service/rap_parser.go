package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/k4mimi/Proyecto-Alistamiento/pkg/extractor"
)

// ── RAP 文本解析器 ──────────────────────────────────────────
//
// 将一个能力单元的三段自由文本（过程性知识 / 概念性知识 / 评估标准）
// 按 RAP 切分。纯函数，无 I/O。
//
// 格式自动识别：
//   - 带标题：文本中存在 "长大写标题 + 冒号" 的行，按标题切段后与 RAP 名称做双向包含匹配
//   - 无标题：抽取全部 * 开头的行，按 RAP 顺序连续均分（启发式，非语义匹配）
// ─────────────────────────────────────────────────────────────

var (
	// 识别：换行后出现至少 21 个大写字母 / 空白组成的标题并以冒号结束
	tituloDetectRe = regexp.MustCompile(`\n[A-ZÑÁÉÍÓÚ][A-ZÑÁÉÍÓÚ\s]{20,}:`)
	// 切段：从行首开始的至少 16 个字符的标题
	tituloInicioRe = regexp.MustCompile(`^[A-ZÑÁÉÍÓÚ][A-ZÑÁÉÍÓÚ\s]{15,}:`)
	ordinalRe      = regexp.MustCompile(`^\d+\s+`)
	vinetaRe       = regexp.MustCompile(`^\*\s*`)
	etiquetaRe     = regexp.MustCompile(`^(\d{1,2})\s+(.+)`)
)

const claveRapMaxRunes = 40

// ParsedRap 一个 RAP 的结构化结果
type ParsedRap struct {
	Codigo               string
	Denominacion         string
	ConocimientosProceso string
	ConocimientosSaber   string
	CriteriosEvaluacion  string
}

// Normalizar 去除重音、转大写并合并空白，用于标题与 RAP 名称比较
func Normalizar(texto string) string {
	if texto == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	sinAcentos, _, err := transform.String(t, texto)
	if err != nil {
		sinAcentos = texto
	}
	return strings.Join(strings.Fields(strings.ToUpper(sinAcentos)), " ")
}

// ExtraerBloque 保留以 * 开头的行，去掉标记后按换行拼接
func ExtraerBloque(texto string) string {
	if texto == "" {
		return ""
	}
	var items []string
	for _, l := range strings.Split(texto, "\n") {
		l = strings.TrimSpace(l)
		if !strings.HasPrefix(l, "*") {
			continue
		}
		items = append(items, strings.TrimSpace(vinetaRe.ReplaceAllString(l, "")))
	}
	return strings.Join(items, "\n")
}

// TieneTitulos 判断文本是否为带标题格式
func TieneTitulos(texto string) bool {
	return texto != "" && tituloDetectRe.MatchString(texto)
}

// ParsearPorRap 将一段自由文本按 RAP 切分，键为 raps 中的原始标签
// 文本或 RAP 列表为空时返回空 map
func ParsearPorRap(texto string, raps []string) map[string]string {
	if texto == "" || len(raps) == 0 {
		return map[string]string{}
	}
	if TieneTitulos(texto) {
		return parsearConTitulos(texto, raps)
	}
	return parsearSinTitulos(texto, raps)
}

type claveRap struct {
	original string
	clave    string
}

func parsearConTitulos(texto string, raps []string) map[string]string {
	resultado := make(map[string]string)

	claves := make([]claveRap, 0, len(raps))
	for _, rap := range raps {
		sinOrdinal := []rune(ordinalRe.ReplaceAllString(rap, ""))
		if len(sinOrdinal) > claveRapMaxRunes {
			sinOrdinal = sinOrdinal[:claveRapMaxRunes]
		}
		claves = append(claves, claveRap{original: rap, clave: Normalizar(string(sinOrdinal))})
	}

	for _, seccion := range dividirSecciones(texto) {
		if strings.TrimSpace(seccion) == "" {
			continue
		}
		primera, _, _ := strings.Cut(seccion, "\n")
		titulo := Normalizar(strings.TrimSuffix(strings.TrimSpace(primera), ":"))

		for _, c := range claves {
			if !strings.Contains(titulo, c.clave) && !strings.Contains(c.clave, titulo) {
				continue
			}
			if bloque := ExtraerBloque(seccion); bloque != "" {
				resultado[c.original] = bloque
			}
			break
		}
	}
	return resultado
}

// dividirSecciones 在每个以标题开头的行之前切分（去掉分隔的换行符）
func dividirSecciones(texto string) []string {
	var secciones []string
	inicio := 0
	for i := 0; i < len(texto); i++ {
		if texto[i] == '\n' && tituloInicioRe.MatchString(texto[i+1:]) {
			secciones = append(secciones, texto[inicio:i])
			inicio = i + 1
		}
	}
	return append(secciones, texto[inicio:])
}

func parsearSinTitulos(texto string, raps []string) map[string]string {
	resultado := make(map[string]string)

	bloque := ExtraerBloque(texto)
	if bloque == "" {
		return resultado
	}

	lineas := strings.Split(bloque, "\n")
	total := len(lineas)
	porRap := int(math.Ceil(float64(total) / float64(len(raps))))

	for i, rap := range raps {
		ini := min(i*porRap, total)
		fin := min(ini+porRap, total)
		resultado[rap] = strings.Join(lineas[ini:fin], "\n")
	}
	return resultado
}

// ProcesarCompetencia 为能力单元的每个 RAP 标签生成一条结构化记录，保持输入顺序
// 没有 RAP 标签时返回空切片，由调用方记录告警并跳过
func ProcesarCompetencia(u extractor.UnidadRap) []ParsedRap {
	labels := u.Labels()
	if len(labels) == 0 {
		return []ParsedRap{}
	}

	proceso := ParsearPorRap(u.ConocimientosProceso.String(), labels)
	saber := ParsearPorRap(u.ConocimientosSaber.String(), labels)
	criterios := ParsearPorRap(u.CriteriosEvaluacion.String(), labels)

	out := make([]ParsedRap, 0, len(labels))
	for i, label := range labels {
		codigo, denominacion := separarEtiqueta(label, i+1)
		out = append(out, ParsedRap{
			Codigo:               codigo,
			Denominacion:         denominacion,
			ConocimientosProceso: proceso[label],
			ConocimientosSaber:   saber[label],
			CriteriosEvaluacion:  criterios[label],
		})
	}
	return out
}

// separarEtiqueta "3 PLANIFICAR ..." → ("03", "PLANIFICAR ...")；无编号时用位置补齐
func separarEtiqueta(label string, posicion int) (string, string) {
	limpio := strings.TrimSpace(strings.ReplaceAll(label, "\n", " "))
	if m := etiquetaRe.FindStringSubmatch(limpio); m != nil {
		n, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%02d", n), strings.TrimSpace(m[2])
	}
	return fmt.Sprintf("%02d", posicion), limpio
}

// DuracionPorRap round(D / n)，每个 RAP 相同；总时长可能存在舍入误差
func DuracionPorRap(duracionMaxima *int, n int) *int {
	if duracionMaxima == nil || n <= 0 {
		return nil
	}
	d := int(math.Round(float64(*duracionMaxima) / float64(n)))
	return &d
}
