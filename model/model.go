// Package model holds the document-agnostic in-memory shapes produced by the
// format parsers (quattro, xywrite, wps8): spreadsheet sheets, cell values,
// styles, and a sparse merged-cell set. Parsers build a SpreadsheetModel
// incrementally as records stream in; sink implementations consume the
// sealed result.
package model

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// CellKind discriminates the dynamic type held by a CellValue.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellFloat
	CellString
	CellBool
	CellError
	CellFormula
)

// CellValue is a single cell's typed payload plus its style index.
type CellValue struct {
	Kind  CellKind
	Float float64
	Str   string
	Bool  bool
	// ErrCode holds the legacy error-value code (e.g. Quattro's ERR/NA
	// byte) when Kind == CellError.
	ErrCode byte
	// Formula is non-nil when Kind == CellFormula; Float or Str still
	// carries the cached result.
	Formula *FormulaNode
	Style   int
}

// Dimension describes a sheet's used range, 0-based and inclusive of width
// and height (mirrors the teacher's worksheet.Dimension).
type Dimension struct {
	R, C int
	H, W int
}

// Column carries a per-column width/style override.
type Column struct {
	C1, C2 int
	Width  float64
	Style  int
}

// MergedArea is a merged-cell rectangle anchored at its top-left cell.
type MergedArea struct {
	R, C int
	H, W int
}

// Row is a sparse set of non-empty cells, keyed by 0-based column.
type Row struct {
	Cells map[int]CellValue
}

// Sheet is one worksheet/page within a SpreadsheetModel.
type Sheet struct {
	Name      string
	Dimension *Dimension
	Columns   []Column
	Merged    []MergedArea
	rows      map[int]*Row
	maxRow    int
	sealed    bool
}

func newSheet(name string) *Sheet {
	return &Sheet{Name: name, rows: make(map[int]*Row)}
}

// SetCell places a value at (row, col), creating the row on first use. It
// panics if called after Seal, which would indicate a parser bug (emitting
// records after its own end-of-sheet marker).
func (s *Sheet) SetCell(row, col int, v CellValue) {
	if s.sealed {
		panic(fmt.Sprintf("model: SetCell(%d,%d) after Seal on sheet %q", row, col, s.Name))
	}
	r, ok := s.rows[row]
	if !ok {
		r = &Row{Cells: make(map[int]CellValue)}
		s.rows[row] = r
	}
	r.Cells[col] = v
	if row > s.maxRow {
		s.maxRow = row
	}
}

// Cell returns the value at (row, col); the zero CellValue (CellEmpty) if
// unset.
func (s *Sheet) Cell(row, col int) CellValue {
	r, ok := s.rows[row]
	if !ok {
		return CellValue{}
	}
	return r.Cells[col]
}

// Rows yields (rowIndex, cells) pairs in ascending row order for every row
// that holds at least one non-empty cell. Go 1.23 range-over-func iterator,
// matching the teacher's worksheet.Rows shape.
func (s *Sheet) Rows(yield func(row int, cells map[int]CellValue) bool) {
	for _, idx := range sortedKeys(s.rows) {
		if !yield(idx, s.rows[idx].Cells) {
			return
		}
	}
}

func sortedKeys(m map[int]*Row) []int {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// seal marks the sheet complete; further SetCell calls are a parser bug.
func (s *Sheet) seal() {
	s.sealed = true
}

// SpreadsheetModel is the parsed, in-memory form of one spreadsheet
// document: an ordered list of sheets plus a shared style table.
type SpreadsheetModel struct {
	Sheets []*Sheet
	Styles *StyleTable
}

// NewSpreadsheetModel returns an empty model with an initialised style
// table.
func NewSpreadsheetModel() *SpreadsheetModel {
	return &SpreadsheetModel{Styles: NewStyleTable()}
}

// AddSheet appends and returns a new, unsealed sheet.
func (m *SpreadsheetModel) AddSheet(name string) *Sheet {
	s := newSheet(name)
	m.Sheets = append(m.Sheets, s)
	return s
}

// Seal finalises every sheet, forbidding further mutation. Parsers call this
// once their end-of-document marker is reached (spec §8, "cell sparse
// invariants").
func (m *SpreadsheetModel) Seal() {
	for _, s := range m.Sheets {
		s.seal()
	}
}

// Sheet returns the sheet at name, or nil if not present.
func (m *SpreadsheetModel) Sheet(name string) *Sheet {
	for _, s := range m.Sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}
