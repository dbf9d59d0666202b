package model

// FormulaOp identifies the dynamic shape of a FormulaNode (spec §3.5: "a
// flat postfix-encoded instruction list" reduced to a tree by the decoder).
type FormulaOp int

const (
	OpLiteralFloat FormulaOp = iota
	OpLiteralInt
	OpLiteralText
	OpCell
	OpCellList
	OpFunction
	OpOperator
)

// CellRef is a single cell reference, spec §3.5 `Cell{sheet, (col,row),
// rel:(b,b), sheet_name?, file?}`. RelCol/RelRow record whether the axis was
// relative at decode time (already resolved against the referencing cell by
// the time a FormulaNode reaches this package).
type CellRef struct {
	Sheet     int
	Col, Row  int
	RelCol    bool
	RelRow    bool
	SheetName string // set when the reference crosses sheets or files
	File      string
}

// CellRange is a rectangular cell reference, spec §3.5 `CellList`.
type CellRange struct {
	Sheet      int
	C1, R1     int
	C2, R2     int
	RelCol     bool
	RelRow     bool
	SheetNames []string
	File       string
}

// FormulaNode is one node of the resolved formula tree. Exactly one of the
// payload fields is meaningful, selected by Op.
type FormulaNode struct {
	Op FormulaOp

	Float float64
	Int   int32
	Text  string
	Cell  CellRef
	Range CellRange
	Name  string // function name or operator symbol

	Args []*FormulaNode

	// Bad is set when the postfix walk could not reduce to a single tree
	// (spec §4.6); the formula's cached result (stored on the owning
	// CellValue) is retained even so.
	Bad bool
}
