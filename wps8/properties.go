package wps8

import (
	"github.com/go-wps/wpscore/model"
	"github.com/go-wps/wpscore/objectid"
	"github.com/go-wps/wpscore/propblob"
	"github.com/go-wps/wpscore/sink"
)

// emuToInches converts an English Metric Unit value (1/914400 inch) to
// inches, the unit WPS8.cpp's dimension fields are expressed in.
func emuToInches(v int64) float64 {
	return float64(v) / 914400
}

func inchesToTwips(v float64) int {
	return int(v * 1440)
}

// DocProperties holds the page geometry and document-level settings decoded
// from a "DOP " zone (spec §4.8): page dimensions at ids 0..5 in EMU,
// orientation at id 0x18, column count at id 0x08, language at id 0x28,
// background entry ref at id 0x13.
type DocProperties struct {
	WidthIn, HeightIn                                     float64
	MarginTopIn, MarginLeftIn, MarginBottomIn, MarginRightIn float64
	Landscape                                             bool
	NumColumns                                             int
	Language                                               int
	BackgroundID                                           int
}

// toPageSpanSpec converts the decoded inch-based geometry into the twip-
// based shape sink.TextSink.OpenPageSpan expects.
func (d DocProperties) toPageSpanSpec() sink.PageSpanSpec {
	return sink.PageSpanSpec{
		WidthTwips:    inchesToTwips(d.WidthIn),
		HeightTwips:   inchesToTwips(d.HeightIn),
		MarginTop:     inchesToTwips(d.MarginTopIn),
		MarginBottom:  inchesToTwips(d.MarginBottomIn),
		MarginLeft:    inchesToTwips(d.MarginLeftIn),
		MarginRight:   inchesToTwips(d.MarginRightIn),
		Landscape:     d.Landscape,
	}
}

// decodeDocProperties walks a parsed "DOP " blob's top-level children
// applying the id map spec §4.8 names explicitly; any id outside that map
// is simply ignored (the zone carries many fields this core does not need
// to surface).
func decodeDocProperties(blob *propblob.Data) DocProperties {
	var d DocProperties
	for i := range blob.Children {
		c := &blob.Children[i]
		if c.Bad {
			continue
		}
		switch {
		case c.ID >= 0 && c.ID <= 5:
			v, ok := intValue(c)
			if !ok {
				continue
			}
			in := emuToInches(v)
			switch c.ID {
			case 0:
				d.WidthIn = in
			case 1:
				d.HeightIn = in
			case 2:
				d.MarginTopIn = in
			case 3:
				d.MarginLeftIn = in
			case 4:
				d.MarginBottomIn = in
			case 5:
				d.MarginRightIn = in
			}
		case c.ID == 0x08:
			if v, ok := intValue(c); ok && v >= 1 && v <= 13 {
				d.NumColumns = int(v) + 1
			}
		case c.ID == 0x18:
			if v, ok := intValue(c); ok && v == 2 {
				d.Landscape = true
			}
		case c.ID == 0x13:
			if v, ok := intValue(c); ok {
				d.BackgroundID = int(v)
			}
		case c.ID == 0x28:
			if v, ok := intValue(c); ok {
				d.Language = int(v)
			}
		}
	}
	return d
}

func intValue(d *propblob.Data) (int64, bool) {
	switch d.Kind {
	case propblob.KindInt8, propblob.KindInt16, propblob.KindInt32:
		return d.Int, true
	case propblob.KindUInt8, propblob.KindUInt16, propblob.KindUInt32:
		return int64(d.UInt), true
	case propblob.KindBool:
		if d.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// FrameKind discriminates a FRAM zone entry's id-1 "type" field (spec §4.8,
// libwps's WPS8Parser::Frame::Type enum).
type FrameKind int

const (
	FrameUnknown FrameKind = iota
	FrameDBField
	FrameHeader
	FrameFooter
	FrameObject
	FrameText
	FrameTable
)

// Frame is one decoded FRAM entry (spec §4.8): position and size are EMU
// converted to inches; TargetID is the referenced object/OLE/table id
// carried by the 3-element array at property id 0x11.
type Frame struct {
	Kind     FrameKind
	Page     int
	X, Y     float64
	W, H     float64
	TargetID int
}

// objectID derives a stable content-addressed handle for this frame so a
// sink can deduplicate repeated references to the same embedded object
// (spec §4 domain-stack wiring: objectid.Hash), seeded by the frame's
// target id since the frame zone itself carries no raw object bytes (those
// live in the out-of-scope OLE demultiplexer).
func (f Frame) objectID() [16]byte {
	seed := []byte{byte(f.Kind), byte(f.TargetID), byte(f.TargetID >> 8), byte(f.TargetID >> 16), byte(f.TargetID >> 24)}
	return [16]byte(objectid.Hash(seed))
}

// String names a FrameKind for diagnostics and sink.Object.Kind.
func (k FrameKind) String() string {
	switch k {
	case FrameDBField:
		return "dbfield"
	case FrameHeader:
		return "header"
	case FrameFooter:
		return "footer"
	case FrameObject:
		return "object"
	case FrameText:
		return "textbox"
	case FrameTable:
		return "table"
	default:
		return "unknown"
	}
}

// decodeFrame applies the property-id map for one FRAM array entry (spec
// §4.8): id 1 selects the frame kind, id 0x11 is a 3-element array whose
// first i32 is the target id, ids 4-7 are position/size in EMU.
func decodeFrame(blob *propblob.Data) Frame {
	var f Frame
	for i := range blob.Children {
		c := &blob.Children[i]
		if c.Bad {
			continue
		}
		switch c.ID {
		case 0:
			if v, ok := intValue(c); ok {
				f.Page = int(v)
			}
		case 1:
			if v, ok := intValue(c); ok {
				switch v {
				case 4:
					f.Kind = FrameDBField
				case 6:
					f.Kind = FrameHeader
				case 7:
					f.Kind = FrameFooter
				case 8:
					f.Kind = FrameObject
				case 9:
					f.Kind = FrameText
				case 12:
					f.Kind = FrameTable
				}
			}
		case 4:
			if v, ok := intValue(c); ok {
				f.X = emuToInches(v)
			}
		case 5:
			if v, ok := intValue(c); ok {
				f.Y = emuToInches(v)
			}
		case 6:
			if v, ok := intValue(c); ok {
				f.W = emuToInches(v)
			}
		case 7:
			if v, ok := intValue(c); ok {
				f.H = emuToInches(v)
			}
		case 0x11:
			if c.Kind == propblob.KindArray && len(c.Children) > 0 {
				if v, ok := intValue(&c.Children[0]); ok {
					f.TargetID = int(v)
				}
			}
		}
	}
	return f
}

// parseFontTable decodes a "FONT" zone: a length-prefixed table of
// UTF-16LE font names (spec §4.8).
func parseFontTable(data []byte) ([]string, error) {
	var names []string
	pos := 0
	for pos+2 <= len(data) {
		n := int(le16(data[pos:]))
		pos += 2
		end := pos + 2*n
		if end > len(data) {
			break
		}
		names = append(names, decodeUTF16LERun(data[pos:end]))
		pos = end
	}
	return names, nil
}

func decodeUTF16LERun(b []byte) string {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = le16(b[2*i:])
	}
	return string(utf16Decode(units))
}

func utf16Decode(units []uint16) []rune {
	out := make([]rune, 0, len(units))
	for i := 0; i < len(units); i++ {
		r := rune(units[i])
		if r >= 0xD800 && r <= 0xDBFF && i+1 < len(units) {
			lo := rune(units[i+1])
			if lo >= 0xDC00 && lo <= 0xDFFF {
				out = append(out, ((r-0xD800)<<10)+(lo-0xDC00)+0x10000)
				i++
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// readFont applies the character-run property bit map (spec §4.8) to a
// fresh model.Style: bold (id 2), italic (3), size in 1/12700-EMU units
// (0xC), underline style (0x1E, collapsed to a single bool — spec promises
// semantic content, not the double/dotted/dashed underline variants), font
// name lookup via the array at id 0x24. Colour (0x2E) has no home in
// model.Style (Background is spreadsheet-only per its doc comment) so it
// is not read at all rather than misfiled onto an unrelated field.
func readFont(blob *propblob.Data, fontNames []string) model.Style {
	var s model.Style
	for i := range blob.Children {
		c := &blob.Children[i]
		if c.Bad {
			continue
		}
		switch c.ID {
		case 0x02:
			if c.Kind == propblob.KindBool {
				s.Bold = c.Bool
			}
		case 0x03:
			if c.Kind == propblob.KindBool {
				s.Italic = c.Bool
			}
		case 0x0C:
			if v, ok := intValue(c); ok {
				s.FontSize = float64(v) / 12700
			}
		case 0x12:
			if v, ok := intValue(c); ok {
				s.Language = int(v)
			}
		case 0x1E:
			if v, ok := intValue(c); ok && v != 0 {
				s.Underline = true
			}
		case 0x24:
			if c.Kind == propblob.KindArray && len(c.Children) > 0 {
				first := &c.Children[0]
				if v, ok := intValue(first); ok {
					id := int(v)
					s.FontID = id
					if id >= 0 && id < len(fontNames) {
						s.FontName = fontNames[id]
					}
				}
			}
		}
	}
	return s
}

// readParagraph applies the paragraph property bit map (spec §4.8):
// alignment (id 4), list/wrap-affecting flags folded into the shared
// model.Style the way xywrite's paragraph snapshot does (only HAlign and
// Wrap carry meaning for a non-spreadsheet Style per model.Style's doc
// comment — indent/spacing/tabs are zone-local detail this core does not
// promise to a generic text sink).
func readParagraph(blob *propblob.Data, _ []string) model.Style {
	var s model.Style
	for i := range blob.Children {
		c := &blob.Children[i]
		if c.Bad {
			continue
		}
		switch c.ID {
		case 0x04:
			if v, ok := intValue(c); ok {
				s.HAlign = byte(v)
			}
		case 0x03:
			if c.Kind == propblob.KindBool {
				s.Wrap = c.Bool
			}
		}
	}
	return s
}
