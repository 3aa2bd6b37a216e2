package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportSinRaps      = errors.New("La ficha no tiene RAPs para exportar")
	ErrExportGenerateFail = errors.New("No se pudo generar el archivo Excel")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出内容与 GET /api/sabana/matriz/:id_ficha 一致，直接复用矩阵查询（含缓存）
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportarMatriz 导出班次的 sábana 矩阵为 Excel
	ExportarMatriz(ctx context.Context, idFicha uint) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	sabana SabanaService
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, sabana SabanaService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, sabana: sabana, logger: logger}
}

// 每个季度占用的列：学时 / 周学时 / 讲师
const columnasPorTrimestre = 3

// 固定列：Norma | Competencia | RAP | Denominación | Duración
const columnasFijas = 5

// ═══════════════════════════════════════════════════════════
// ExportarMatriz 导出 sábana 为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行：标题（班次编号 + 项目名称），跨全部列合并
//   - 第 2 行：季度分组表头 "Trimestre n (fase)"，每组合并 3 列
//   - 第 3 行：列表头
//   - 第 4 行起：每个 RAP 一行；同一能力单元的 Norma / Competencia 单元格纵向合并
//   - 冻结前 5 列与前 3 行
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportarMatriz(ctx context.Context, idFicha uint) (*bytes.Buffer, string, error) {
	// 1. 班次、季度与矩阵
	ficha, err := s.repo.Ficha.GetByID(ctx, idFicha)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrFichaNoEncontrada
		}
		s.logger.Error("查询班次失败", zap.Uint("id_ficha", idFicha), zap.Error(err))
		return nil, "", err
	}
	trimestres, err := s.sabana.ObtenerTrimestres(ctx, idFicha)
	if err != nil {
		return nil, "", err
	}
	filas, err := s.sabana.ObtenerSabanaMatriz(ctx, idFicha)
	if err != nil {
		return nil, "", err
	}
	if len(filas) == 0 {
		return nil, "", ErrExportSinRaps
	}

	// 2. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sábana"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	totalCols := columnasFijas + columnasPorTrimestre*len(trimestres) + 1

	// 列宽
	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 36)
	f.SetColWidth(sheetName, "C", "C", 8)
	f.SetColWidth(sheetName, "D", "D", 48)
	f.SetColWidth(sheetName, "E", "E", 10)
	for i := range trimestres {
		base := columnasFijas + columnasPorTrimestre*i
		f.SetColWidth(sheetName, colName(base), colName(base+1), 9)
		f.SetColWidth(sheetName, colName(base+2), colName(base+2), 22)
	}
	f.SetColWidth(sheetName, colName(totalCols-1), colName(totalCols-1), 10)

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#39A900"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	wrapStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	horasStyle, _ := f.NewStyle(&excelize.Style{
		NumFmt:    2, // 0.00
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	// 标题行
	titulo := "Ficha " + ficha.CodigoFicha
	if p, err := s.repo.Programa.GetByID(ctx, ficha.IDPrograma); err == nil && p.NombrePrograma != nil {
		titulo += " - " + *p.NombrePrograma
	}
	f.SetCellValue(sheetName, "A1", titulo)
	f.MergeCell(sheetName, "A1", cell(colName(totalCols-1), 1))
	f.SetCellStyle(sheetName, "A1", cell(colName(totalCols-1), 1), headerStyle)

	// 季度分组表头
	for i, t := range trimestres {
		base := columnasFijas + columnasPorTrimestre*i
		grupo := fmt.Sprintf("Trimestre %d", t.NoTrimestre)
		if t.Fase != nil {
			grupo += " (" + *t.Fase + ")"
		}
		f.SetCellValue(sheetName, cell(colName(base), 2), grupo)
		f.MergeCell(sheetName, cell(colName(base), 2), cell(colName(base+2), 2))
	}

	// 列表头
	row := 3
	for i, h := range []string{"Norma", "Competencia", "RAP", "Denominación", "Duración"} {
		f.SetCellValue(sheetName, cell(colName(i), row), h)
	}
	for i := range trimestres {
		base := columnasFijas + columnasPorTrimestre*i
		f.SetCellValue(sheetName, cell(colName(base), row), "H. trim")
		f.SetCellValue(sheetName, cell(colName(base+1), row), "H. sem")
		f.SetCellValue(sheetName, cell(colName(base+2), row), "Instructor")
	}
	f.SetCellValue(sheetName, cell(colName(totalCols-1), row), "Total")
	f.SetCellStyle(sheetName, "A2", cell(colName(totalCols-1), row), headerStyle)

	// 数据行
	row = 4
	inicioGrupo := row
	for i, fila := range filas {
		f.SetCellValue(sheetName, cell("A", row), deref(fila.CodigoNorma))
		f.SetCellValue(sheetName, cell("B", row), deref(fila.NombreCompetencia))
		f.SetCellValue(sheetName, cell("C", row), fila.CodigoRap)
		f.SetCellValue(sheetName, cell("D", row), fila.Denominacion)
		if fila.Duracion != nil {
			f.SetCellValue(sheetName, cell("E", row), *fila.Duracion)
		}

		for j, t := range trimestres {
			base := columnasFijas + columnasPorTrimestre*j
			c, ok := fila.Trimestres[t.NoTrimestre]
			if !ok || c.HorasTrimestre == nil {
				continue
			}
			f.SetCellValue(sheetName, cell(colName(base), row), *c.HorasTrimestre)
			if c.HorasSemana != nil {
				f.SetCellValue(sheetName, cell(colName(base+1), row), *c.HorasSemana)
			}
			if c.Instructor != nil {
				f.SetCellValue(sheetName, cell(colName(base+2), row), *c.Instructor)
			}
			f.SetCellStyle(sheetName, cell(colName(base), row), cell(colName(base+1), row), horasStyle)
		}
		f.SetCellValue(sheetName, cell(colName(totalCols-1), row), fila.TotalHoras)
		f.SetCellStyle(sheetName, cell(colName(totalCols-1), row), cell(colName(totalCols-1), row), horasStyle)

		// 能力单元变化或最后一行时合并上一组
		ultima := i == len(filas)-1
		if ultima || filas[i+1].IDCompetencia != fila.IDCompetencia {
			if row > inicioGrupo {
				f.MergeCell(sheetName, cell("A", inicioGrupo), cell("A", row))
				f.MergeCell(sheetName, cell("B", inicioGrupo), cell("B", row))
			}
			inicioGrupo = row + 1
		}
		row++
	}
	f.SetCellStyle(sheetName, "A4", cell("D", row-1), wrapStyle)

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      columnasFijas,
		YSplit:      3,
		TopLeftCell: cell(colName(columnasFijas), 4),
		ActivePane:  "bottomRight",
	}); err != nil {
		s.logger.Warn("冻结窗格失败", zap.Error(err))
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Uint("id_ficha", idFicha), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("导出 sábana", zap.Uint("id_ficha", idFicha), zap.Int("raps", len(filas)))
	filename := fmt.Sprintf("sabana_%s.xlsx", ficha.CodigoFicha)
	return buf, filename, nil
}

// ── 辅助函数 ──

// colName 0 起始的列号转列名（0 → A）
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
