package quattro

import (
	"sort"

	"github.com/go-wps/wpscore/model"
	"github.com/go-wps/wpscore/sink"
)

// emit replays a sealed model.SpreadsheetModel into out, following spec
// §4.5's sheet-emission contract: open_sheet(widths, name), then for each
// row open_row(height, repeat) and the row's sparse cells, coalescing runs
// of equal-style empty cells into a single numRepeat emission.
func emit(m *model.SpreadsheetModel, out sink.SpreadsheetSink) {
	out.StartDocument()
	for _, sheet := range m.Sheets {
		widths := make([]float64, 0, len(sheet.Columns))
		for _, c := range sheet.Columns {
			widths = append(widths, c.Width)
		}
		out.OpenSheet(widths, sheet.Name)

		var rowIdx []int
		sheet.Rows(func(row int, _ map[int]model.CellValue) bool {
			rowIdx = append(rowIdx, row)
			return true
		})

		for _, r := range rowIdx {
			out.OpenRow(0, 1)
			emitRow(out, rowCells(sheet, r))
			out.CloseRow()
		}
		out.CloseSheet()
	}
	out.EndDocument()
}

func rowCells(sheet *model.Sheet, row int) map[int]model.CellValue {
	var cells map[int]model.CellValue
	sheet.Rows(func(r int, c map[int]model.CellValue) bool {
		if r == row {
			cells = c
			return false
		}
		return true
	})
	return cells
}

// emitRow walks a row's sparse columns in order, coalescing consecutive
// empty cells that share a style into one numRepeat emission.
func emitRow(out sink.SpreadsheetSink, cells map[int]model.CellValue) {
	cols := make([]int, 0, len(cells))
	for c := range cells {
		cols = append(cols, c)
	}
	sort.Ints(cols)

	i := 0
	for i < len(cols) {
		col := cols[i]
		v := cells[col]
		if v.Kind != model.CellEmpty {
			out.OpenCell(col, 1, v)
			out.CloseCell()
			i++
			continue
		}
		run := 1
		for i+run < len(cols) &&
			cols[i+run] == col+run &&
			cells[cols[i+run]].Kind == model.CellEmpty &&
			cells[cols[i+run]].Style == v.Style {
			run++
		}
		out.OpenCell(col, run, v)
		out.CloseCell()
		i += run
	}
}
