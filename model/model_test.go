package model_test

import (
	"testing"

	"github.com/go-wps/wpscore/model"
)

func TestSheetSetCellSparse(t *testing.T) {
	sheet := model.NewSpreadsheetModel().AddSheet("Sheet1")
	sheet.SetCell(0, 0, model.CellValue{Kind: model.CellString, Str: "a"})
	sheet.SetCell(0, 2, model.CellValue{Kind: model.CellFloat, Float: 1})
	sheet.SetCell(5, 1, model.CellValue{Kind: model.CellBool, Bool: true})

	if v := sheet.Cell(0, 0); v.Kind != model.CellString || v.Str != "a" {
		t.Fatalf("cell(0,0) = %+v", v)
	}
	// unset cells, including in sparsely populated rows, read back as the
	// empty value rather than panicking or fabricating a row.
	if v := sheet.Cell(0, 1); v.Kind != model.CellEmpty {
		t.Fatalf("cell(0,1) = %+v, want empty", v)
	}
	if v := sheet.Cell(1, 0); v.Kind != model.CellEmpty {
		t.Fatalf("cell(1,0) = %+v, want empty", v)
	}

	var rows []int
	sheet.Rows(func(row int, cells map[int]model.CellValue) bool {
		rows = append(rows, row)
		return true
	})
	if len(rows) != 2 || rows[0] != 0 || rows[1] != 5 {
		t.Fatalf("rows = %v, want [0 5] (ascending, only non-empty rows)", rows)
	}
}

func TestSheetRowsEarlyStop(t *testing.T) {
	sheet := model.NewSpreadsheetModel().AddSheet("Sheet1")
	sheet.SetCell(0, 0, model.CellValue{Kind: model.CellFloat, Float: 1})
	sheet.SetCell(1, 0, model.CellValue{Kind: model.CellFloat, Float: 2})
	sheet.SetCell(2, 0, model.CellValue{Kind: model.CellFloat, Float: 3})

	var seen []int
	sheet.Rows(func(row int, cells map[int]model.CellValue) bool {
		seen = append(seen, row)
		return row < 1
	})
	if len(seen) != 2 {
		t.Fatalf("seen = %v, expected iteration to stop after the second row", seen)
	}
}

func TestSheetSetCellOverwrite(t *testing.T) {
	sheet := model.NewSpreadsheetModel().AddSheet("Sheet1")
	sheet.SetCell(3, 3, model.CellValue{Kind: model.CellFloat, Float: 1})
	sheet.SetCell(3, 3, model.CellValue{Kind: model.CellString, Str: "overwritten"})
	if v := sheet.Cell(3, 3); v.Kind != model.CellString || v.Str != "overwritten" {
		t.Fatalf("cell(3,3) = %+v", v)
	}
}

func TestSheetSetCellAfterSealPanics(t *testing.T) {
	m := model.NewSpreadsheetModel()
	sheet := m.AddSheet("Sheet1")
	sheet.SetCell(0, 0, model.CellValue{Kind: model.CellFloat, Float: 1})
	m.Seal()

	defer func() {
		if recover() == nil {
			t.Fatal("expected SetCell after Seal to panic")
		}
	}()
	sheet.SetCell(0, 1, model.CellValue{Kind: model.CellFloat, Float: 2})
}

func TestMergedAreaTopLeftAnchoring(t *testing.T) {
	// A merged rectangle is recorded once, anchored at its top-left cell;
	// every other cell it covers stays absent from the sparse row map.
	sheet := model.NewSpreadsheetModel().AddSheet("Sheet1")
	sheet.Merged = append(sheet.Merged, model.MergedArea{R: 1, C: 1, H: 2, W: 3})
	sheet.SetCell(1, 1, model.CellValue{Kind: model.CellString, Str: "merged"})

	if len(sheet.Merged) != 1 {
		t.Fatalf("merged = %+v", sheet.Merged)
	}
	area := sheet.Merged[0]
	if v := sheet.Cell(area.R, area.C); v.Kind != model.CellString {
		t.Fatalf("anchor cell(%d,%d) = %+v, want the merged area's value", area.R, area.C, v)
	}
	if v := sheet.Cell(area.R, area.C+1); v.Kind != model.CellEmpty {
		t.Fatalf("non-anchor cell inside the merge = %+v, want empty", v)
	}
}

func TestModelAddSheetAndLookup(t *testing.T) {
	m := model.NewSpreadsheetModel()
	m.AddSheet("Sheet1")
	m.AddSheet("Sheet2")

	if got := m.Sheet("Sheet2"); got == nil || got.Name != "Sheet2" {
		t.Fatalf("Sheet(%q) = %+v", "Sheet2", got)
	}
	if got := m.Sheet("Missing"); got != nil {
		t.Fatalf("Sheet(missing) = %+v, want nil", got)
	}
	if len(m.Sheets) != 2 {
		t.Fatalf("len(Sheets) = %d, want 2", len(m.Sheets))
	}
}
