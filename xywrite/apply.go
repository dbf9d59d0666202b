package xywrite

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-wps/wpscore/model"
	"github.com/go-wps/wpscore/objectid"
	"github.com/go-wps/wpscore/sink"
	"github.com/go-wps/wpscore/wpsenc"
)

// apply dispatches one parsed Format to the handler for its category (spec
// §4.7 "Classify"/"Apply"). In Restricted mode (PocketWord, spec §5) only
// the font/paragraph/field subset is recognised; every other category is
// left as an opaque no-op.
func (p *Parser) apply(f Format) {
	cat := classify(f.Name)
	if p.restricted {
		switch cat {
		case categoryFont, categoryParagraph, categoryField:
		default:
			return
		}
	}
	switch cat {
	case categoryFont:
		p.applyFont(f)
	case categoryParagraph:
		p.applyParagraph(f)
	case categoryPage:
		p.applyPage(f)
	case categoryCounter:
		p.applyCounter(f)
	case categoryStyle:
		p.applyStyle(f)
	case categoryNote:
		p.applyNote(f)
	case categoryFrame:
		p.applyFrame(f)
	case categoryField:
		p.applyField(f)
	case categoryLabel:
		p.applyLabel(f)
	default:
		p.logger.Debugf("xywrite: skipping unrecognised format %q", f.Name)
	}
}

// applyFont updates the running WPSFont snapshot and re-emits it (spec
// §4.7 item 3 "Apply"). MD carries a mode suffix (BO bold, IT italic, UL
// underline, NM normal/reset); RG and FG are font-table slot numbers this
// package has no table for, so they only update FontID; SZ is a number+unit
// size; UF is a nonzero underline-format code.
func (p *Parser) applyFont(f Format) {
	switch {
	case strings.HasPrefix(f.Name, "MD"):
		switch strings.TrimPrefix(f.Name, "MD") {
		case "BO":
			p.font.Bold = true
		case "IT":
			p.font.Italic = true
		case "UL":
			p.font.Underline = true
		case "NM":
			p.font.Bold, p.font.Italic, p.font.Underline = false, false, false
		}
	case f.Name == "RG" || f.Name == "FG":
		if n, ok := parseIntArg(f.Args); ok {
			p.font.FontID = n
		}
	case f.Name == "SZ":
		if len(f.Args) > 0 {
			if u := parseUnit(f.Args[0]); u.Valid {
				p.font.FontSize = u.Points
			}
		}
	case f.Name == "UF":
		if n, ok := parseIntArg(f.Args); ok {
			p.font.Underline = n != 0
		}
	default:
		return
	}
	p.out.SetFont(p.font)
}

// applyParagraph updates the running WPSParagraph snapshot. Only the
// alignment and wrap bits spec §3.4's Style promises to a generic sink are
// tracked; indent/spacing/tab-stop/list detail (IP/RM/LS/LL/EL/TS/NB/BB/LM)
// is consumed as a state transition with no Style field to carry it.
func (p *Parser) applyParagraph(f Format) {
	switch f.Name {
	case "JU", "AL":
		p.para.HAlign = 3 // justify
	case "FC":
		p.para.HAlign = 1 // center
	case "FR":
		p.para.HAlign = 2 // right
	case "FL", "NJ":
		p.para.HAlign = 0 // left
	case "BG":
		p.para.Wrap = true
	default:
		return
	}
	p.out.SetParagraph(p.para)
}

// applyPage folds a page-geometry tag into the running PageSpanSpec and, on
// PG itself, opens the span (spec §4.7 "PG/RH/RF/PW/FD/OF/TP/BT").
func (p *Parser) applyPage(f Format) {
	twips := func(args []string) (int, bool) {
		if len(args) == 0 {
			return 0, false
		}
		u := parseUnit(args[0])
		if !u.Valid {
			return 0, false
		}
		return int(u.Points * 20), true // 1pt = 20 twips
	}
	switch f.Name {
	case "PW":
		if v, ok := twips(f.Args); ok {
			p.pageSpan.WidthTwips = v
		}
	case "FD":
		if v, ok := twips(f.Args); ok {
			p.pageSpan.HeightTwips = v
		}
	case "OF":
		if v, ok := twips(f.Args); ok {
			p.pageSpan.MarginLeft = v
		}
	case "TP":
		if v, ok := twips(f.Args); ok {
			p.pageSpan.MarginTop = v
		}
	case "BT":
		if v, ok := twips(f.Args); ok {
			p.pageSpan.MarginBottom = v
		}
	case "PG":
		p.out.OpenPageSpan(p.pageSpan)
	}
}

// applyCounter implements DC<n>=<type> (declare) and C<n> (increment and
// emit), per spec §4.7 "Counters / lists". classify/splitNameArgs already
// folded the tag's own digits into Args (e.g. "DC1=1" -> Name "DC", Args
// ["1=1"]; "C1" -> Name "C", Args ["1"]).
func (p *Parser) applyCounter(f Format) {
	switch f.Name {
	case "DC":
		if len(f.Args) == 0 {
			return
		}
		parts := strings.SplitN(f.Args[0], "=", 2)
		if len(parts) != 2 || parts[1] == "" {
			return
		}
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			return
		}
		p.counters[n] = &counter{kind: parts[1][0]}

	case "C":
		n := 0
		if len(f.Args) > 0 {
			if v, err := strconv.Atoi(f.Args[0]); err == nil {
				n = v
			}
		}
		c, ok := p.counters[n]
		if !ok {
			c = &counter{kind: '1'}
			p.counters[n] = c
		}
		c.value++
		p.emitText(renderCounter(c.kind, c.value))
	}
}

// applyStyle implements SS<name> (define, storing the complex Format's
// nested children) and US<name> (apply, replaying each stored child through
// apply). A trailing '!' on the US body resets font/paragraph to their zero
// value before replay (spec §4.7 "the parser resets font/paragraph to
// defaults first when the US record has a trailing character").
func (p *Parser) applyStyle(f Format) {
	switch f.Name {
	case "SS":
		if len(f.Args) == 0 {
			return
		}
		p.styles[f.Args[0]] = f.Children
	case "US":
		if len(f.Args) == 0 {
			return
		}
		name := f.Args[0]
		if strings.HasSuffix(name, "!") {
			name = strings.TrimSuffix(name, "!")
			p.font, p.para = model.Style{}, model.Style{}
		}
		for _, child := range p.styles[name] {
			p.apply(child)
		}
	}
}

// applyNote replays a footnote/endnote/comment body as a sub-document (spec
// §4.7 "FM<n>/FN/NT (notes)"). FM/FN are footnotes; NT is a general note.
func (p *Parser) applyNote(f Format) {
	kind := sink.NoteFootnote
	if f.Name == "NT" {
		kind = sink.NoteComment
	}
	p.out.InsertNote(kind, p.runSubParse(f.Payload))
}

// applyFrame implements CT/CO/EC (tables) and FA/IG (text boxes/images),
// spec §4.7 "Tables" and "Frames and pictures".
func (p *Parser) applyFrame(f Format) {
	switch f.Name {
	case "CT":
		p.startTable(f.Args)
	case "CO":
		p.tableBreak(f.Args)
	case "EC":
		p.endTable()
	case "FA":
		sub := p.runSubParse(f.Payload)
		p.out.InsertTextBox(sink.Position(p.pos), sub)
	case "IG":
		obj := sink.Object{ID: objectid.Hash(f.Payload), Kind: "image", Data: f.Payload}
		p.out.InsertObject(sink.Position(p.pos), obj)
	}
}

// startTable opens a CT<size1>,<size2>,… region (spec §4.7 "Tables"):
// column widths in points, with an optional trailing alignment suffix
// parseUnit already tolerates by stopping at the first non-numeric byte.
func (p *Parser) startTable(args []string) {
	p.table = p.table[:0]
	for _, a := range args {
		if u := parseUnit(a); u.Valid {
			p.table = append(p.table, u.Points)
		} else {
			p.table = append(p.table, 0)
		}
	}
	p.inTable = true
	p.tableCol = 1
	p.cellText.Reset()
	p.cellRow = nil
	p.cellRows = nil
}

// tableBreak implements one CO<n> marker: it closes the cell currently
// accumulating text, assigning it to the column the table is on, then
// starts a new row when n is at or before that column (spec §4.7: "column
// n, wrapping to next row when n ≤ previous column index").
func (p *Parser) tableBreak(args []string) {
	n := p.tableCol + 1
	if v, ok := parseIntArg(args); ok {
		n = v
	}
	p.flushCell()
	if n <= p.tableCol {
		p.flushRow()
	}
	p.tableCol = n
}

// endTable closes the table: the in-flight cell becomes the last cell of
// the last row, every row is padded to the declared column count, and the
// assembled grid is replayed into out as a tab/EOL-delimited text box (spec
// §6 has no dedicated table sink event; a TextSink document represents a
// table this way, same as a frame body).
func (p *Parser) endTable() {
	p.flushCell()
	p.flushRow()
	p.inTable = false

	cols := len(p.table)
	if cols == 0 {
		for _, row := range p.cellRows {
			if len(row) > cols {
				cols = len(row)
			}
		}
	}

	var sb strings.Builder
	for ri, row := range p.cellRows {
		if ri > 0 {
			sb.WriteByte('\n')
		}
		for ci := 0; ci < cols; ci++ {
			if ci > 0 {
				sb.WriteByte('\t')
			}
			if ci < len(row) {
				sb.WriteString(row[ci])
			}
		}
	}
	sub := sink.SubDocument{Events: []sink.Event{{Kind: "text", Text: sb.String()}}}
	p.out.InsertTextBox(sink.Position(p.pos), sub)
	p.cellRows = nil
}

func (p *Parser) flushCell() {
	p.cellRow = append(p.cellRow, p.cellText.String())
	p.cellText.Reset()
}

func (p *Parser) flushRow() {
	if p.cellRow == nil {
		return
	}
	p.cellRows = append(p.cellRows, p.cellRow)
	p.cellRow = nil
}

// applyField implements PN/DA/TM/TI (page number, date, time fields).
func (p *Parser) applyField(f Format) {
	switch f.Name {
	case "PN":
		p.out.InsertField(sink.FieldPageNumber)
	case "DA":
		p.out.InsertField(sink.FieldDate)
	case "TM", "TI":
		p.out.InsertField(sink.FieldTime)
	}
}

// applyLabel records a post-zone-end metadata label (spec §4.7 "Metadata"):
// LBAU -> property "AU" (author), LBRV -> "RV" (revision), and so on for any
// two-letter suffix XYWrite defines. RE (reference) entries are recorded
// under their own name, keyed by args[0] if present.
func (p *Parser) applyLabel(f Format) {
	switch {
	case strings.HasPrefix(f.Name, "LB"):
		key := strings.TrimPrefix(f.Name, "LB")
		val := strings.Join(f.Args, ",")
		if val == "" && len(f.Payload) > 0 {
			val = wpsenc.Decode(f.Payload, p.encoding)
		}
		p.properties[key] = val
	case f.Name == "RE":
		if len(f.Args) > 0 {
			p.properties["RE"] = f.Args[0]
		}
	}
}

func (p *Parser) emitText(s string) {
	for _, r := range s {
		p.pos++
		p.out.InsertUnicode(r)
	}
}

func parseIntArg(args []string) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, false
	}
	return n, true
}

// renderCounter renders counter value n under kind's numbering scheme: '1'
// decimal, 'a'/'A' lowercase/uppercase alphabetic, 'i'/'I' lowercase/
// uppercase roman (spec §4.7 "DC<n>=<type> declares counter n with type
// from {1,a,A,i,I}").
func renderCounter(kind byte, n int) string {
	switch kind {
	case 'a':
		return strings.ToLower(letterCounter(n))
	case 'A':
		return letterCounter(n)
	case 'i':
		return strings.ToLower(romanNumeral(n))
	case 'I':
		return romanNumeral(n)
	default:
		return strconv.Itoa(n)
	}
}

// letterCounter renders n (1-based) as a spreadsheet-column-style letter
// sequence: 1->A, 26->Z, 27->AA.
func letterCounter(n int) string {
	if n <= 0 {
		return ""
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

func romanNumeral(n int) string {
	if n <= 0 {
		return ""
	}
	var sb strings.Builder
	for _, r := range romanTable {
		for n >= r.value {
			sb.WriteString(r.symbol)
			n -= r.value
		}
	}
	return sb.String()
}

// recordingSink buffers TextSink calls as sink.Events, used to build the
// SubDocument a table cell, frame, or note replays through its owning sink.
type recordingSink struct {
	events []sink.Event
}

func (r *recordingSink) StartDocument() {}
func (r *recordingSink) EndDocument()   {}
func (r *recordingSink) OpenPageSpan(sink.PageSpanSpec) {}
func (r *recordingSink) ClosePageSpan()                 {}
func (r *recordingSink) SetFont(s model.Style) {
	r.events = append(r.events, sink.Event{Kind: "font", Font: &s})
}
func (r *recordingSink) SetParagraph(s model.Style) {
	r.events = append(r.events, sink.Event{Kind: "para", Font: &s})
}
func (r *recordingSink) InsertTab() { r.events = append(r.events, sink.Event{Kind: "tab"}) }
func (r *recordingSink) InsertEOL() { r.events = append(r.events, sink.Event{Kind: "eol"}) }
func (r *recordingSink) InsertBreak(k sink.BreakKind) {
	r.events = append(r.events, sink.Event{Kind: "break", Break: k})
}
func (r *recordingSink) InsertUnicode(c rune) {
	r.events = append(r.events, sink.Event{Kind: "text", Text: string(c)})
}
func (r *recordingSink) InsertObject(pos sink.Position, obj sink.Object) {
	r.events = append(r.events, sink.Event{Kind: "object", Obj: &obj})
}
func (r *recordingSink) InsertTextBox(pos sink.Position, sub sink.SubDocument) {
	r.events = append(r.events, sink.Event{Kind: "textbox", Sub: &sub})
}
func (r *recordingSink) InsertNote(k sink.NoteKind, sub sink.SubDocument) {
	r.events = append(r.events, sink.Event{Kind: "note", Note: k, Sub: &sub})
}
func (r *recordingSink) InsertField(k sink.FieldKind) {
	r.events = append(r.events, sink.Event{Kind: "field", Field: k})
}

// runSubParse interprets payload with a fresh Parser over the same grammar,
// collecting its output into a SubDocument (spec §4.7: frame/picture/table/
// note bodies are themselves marker-driven text runs, not opaque blobs).
func (p *Parser) runSubParse(payload []byte) sink.SubDocument {
	sub := New(payload, Options{Encoding: p.encoding, Logger: p.logger, Restricted: p.restricted})
	rec := &recordingSink{}
	_ = sub.Parse(context.Background(), rec)
	return sink.SubDocument{Events: rec.events}
}

