// Package sink defines the abstract event interfaces every parser emits
// into (spec §6). A caller implements one of TextSink, SpreadsheetSink, or
// DatabaseSink to receive the decoded document; the core packages never
// assume a concrete renderer.
package sink

import "github.com/go-wps/wpscore/model"

// PageSpanSpec describes one page geometry change (new section, new page
// size/orientation).
type PageSpanSpec struct {
	WidthTwips, HeightTwips int
	MarginTop, MarginBottom int
	MarginLeft, MarginRight int
	Landscape               bool
}

// BreakKind enumerates insert_break(kind) variants.
type BreakKind int

const (
	BreakPage BreakKind = iota
	BreakColumn
	BreakSection
)

// NoteKind enumerates insert_note(kind, ...) variants.
type NoteKind int

const (
	NoteFootnote NoteKind = iota
	NoteEndnote
	NoteComment
)

// FieldKind enumerates insert_field(kind) variants (page number, date,
// time, and similar auto-updating text).
type FieldKind int

const (
	FieldPageNumber FieldKind = iota
	FieldDate
	FieldTime
)

// Position anchors an inline object in the text stream. Its unit is set by
// the emitting parser: xywrite passes the count of characters emitted so far
// in the (sub-)document, wps8 passes the frame's index among the FRAM zones.
type Position int

// Object is an opaque embedded object (OLE package, picture, frame target)
// identified by its content-addressed handle; see package objectid.
type Object struct {
	ID   [16]byte
	Kind string
	Data []byte
}

// SubDocument is a self-contained run of text events (a footnote, a table
// cell, a text box) replayed into the same sink that owns it.
type SubDocument struct {
	Events []Event
}

// Event is a single recorded TextSink call, used to build SubDocuments and
// to let a parser buffer output before a sink is known (e.g. while a table
// cell's extent is still being discovered).
type Event struct {
	Kind  string
	Font  *model.Style
	Text  string
	Break BreakKind
	Note  NoteKind
	Field FieldKind
	Obj   *Object
	Sub   *SubDocument
}

// TextSink receives the flow of events common to every document kind (spec
// §6). Spreadsheet and database documents additionally implement
// SpreadsheetSink.
type TextSink interface {
	StartDocument()
	EndDocument()
	OpenPageSpan(spec PageSpanSpec)
	ClosePageSpan()
	SetFont(style model.Style)
	SetParagraph(style model.Style)
	InsertTab()
	InsertEOL()
	InsertBreak(kind BreakKind)
	InsertUnicode(codepoint rune)
	InsertObject(pos Position, obj Object)
	InsertTextBox(pos Position, sub SubDocument)
	InsertNote(kind NoteKind, sub SubDocument)
	InsertField(kind FieldKind)
}

// SpreadsheetSink extends TextSink with the grid-shaped events a
// spreadsheet or database emits.
type SpreadsheetSink interface {
	TextSink
	OpenSheet(widths []float64, name string)
	CloseSheet()
	OpenRow(height float64, repeat int)
	CloseRow()
	// OpenCell opens the cell at col with the given content; repeat > 1
	// means the next (repeat-1) columns carry the identical content
	// (spec §4.5 "coalesced into one numRepeat emission").
	OpenCell(col int, repeat int, content model.CellValue)
	CloseCell()
}

// DatabaseSink is a SpreadsheetSink by another name: spec §6 describes a
// database document as "a reduced spreadsheet" (one sheet, no merges, no
// graphics); the type alias documents that intent for callers that want to
// say so in their own code.
type DatabaseSink = SpreadsheetSink
