package model

// BorderStyle describes one edge of a cell border.
type BorderStyle struct {
	Style byte // line style (thin/thick/dashed/...), format-defined
	Type  byte // edge-specific type byte, format-defined
	Width byte
	Color Color
}

// Color is a plain RGBA colour; A is typically 0xFF (opaque) or 0x00
// (transparent/"no fill").
type Color struct {
	R, G, B, A byte
}

// blendTable maps Quattro's 0..6 background pattern id to its opacity
// fraction toward the foreground colour (spec §4.5: "small fixed
// colour-blend table 0..6 mapping to percentages {0,1,2,3,4,5,6}/6").
var blendTable = [7]float64{0, 1.0 / 6, 2.0 / 6, 3.0 / 6, 4.0 / 6, 5.0 / 6, 1}

// BlendBackground composes a pattern id, foreground and background colour
// into one flat colour by linear interpolation, as the Quattro style
// record requires (spec §4.5). patternID is clamped into [0,6].
func BlendBackground(patternID int, fg, bg Color) Color {
	if patternID < 0 {
		patternID = 0
	}
	if patternID > 6 {
		patternID = 6
	}
	t := blendTable[patternID]
	lerp := func(a, b byte) byte {
		return byte(float64(a) + (float64(b)-float64(a))*t)
	}
	return Color{
		R: lerp(bg.R, fg.R),
		G: lerp(bg.G, fg.G),
		B: lerp(bg.B, fg.B),
		A: lerp(bg.A, fg.A),
	}
}

// Style is one entry in a document's style table (spec §3.4). It is
// immutable once inserted; StyleTable hands out Style values by index and
// never mutates a previously returned one. The same type backs the running
// WPSFont/WPSParagraph snapshot a text parser (xywrite, wps8) feeds to
// sink.TextSink.SetFont/SetParagraph: FontName/FontSize/Bold/Italic/
// Underline carry character formatting, HAlign/Wrap carry paragraph
// formatting, and the spreadsheet-only fields (FormatByte, Borders,
// Background's pattern use) are simply left at their zero value outside
// quattro.
type Style struct {
	FontID     int
	FontName   string
	FontSize   float64 // points
	Bold       bool
	Italic     bool
	Underline  bool
	FormatByte byte // numeric/date/percent/currency/user-defined format tag
	HAlign     byte
	VAlign     byte
	Rotation   int // degrees
	Wrap       bool
	Borders    [4]BorderStyle // top, bottom, left, right
	Background Color
	Protected  bool
	Language   int
}

// StyleTable is an append-only, index-addressed table of Styles.
type StyleTable struct {
	styles []Style
}

// NewStyleTable returns an empty table with style index 0 reserved for the
// document's default style.
func NewStyleTable() *StyleTable {
	return &StyleTable{styles: []Style{{}}}
}

// Add inserts s and returns its index.
func (t *StyleTable) Add(s Style) int {
	t.styles = append(t.styles, s)
	return len(t.styles) - 1
}

// Get returns the style at idx, or the default style (index 0) if idx is
// out of range.
func (t *StyleTable) Get(idx int) Style {
	if idx < 0 || idx >= len(t.styles) {
		return t.styles[0]
	}
	return t.styles[idx]
}

// Len returns the number of styles in the table, including the default.
func (t *StyleTable) Len() int {
	return len(t.styles)
}
