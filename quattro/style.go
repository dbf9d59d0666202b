package quattro

import "github.com/go-wps/wpscore/model"

// decodeStyle decodes one 0xA (qpw) / 0xCE (wb) style record into the
// document's style table (spec §4.5): font id, alignment, rotation, wrap,
// borders, background pattern, font colour, background pattern id. The
// parser composes pattern + foreground + background into one flat
// background colour via model.BlendBackground.
//
// Field layout: fontID:u16, formatByte:u8, hAlign:u8, vAlign:u8,
// rotation:u16, flags:u8 (bit0 wrap, bit1 protected), 4x BorderStyle
// (style:u8,type:u8,width:u8, colorIdx:u8 each), fgColor:RGBA,
// bgColor:RGBA, patternID:u8, language:u16. As with PropertyBlob's type
// byte, the spec describes the fields present but not their exact byte
// offsets; this is this package's single consistent rendering of them.
func (p *Parser) decodeStyle(payload []byte) int {
	var s model.Style
	if len(payload) < 2 {
		return p.model.Styles.Add(s)
	}
	s.FontID = decodeU16(payload, 0)
	if len(payload) > 2 {
		s.FormatByte = payload[2]
	}
	if len(payload) > 3 {
		s.HAlign = payload[3]
	}
	if len(payload) > 4 {
		s.VAlign = payload[4]
	}
	if len(payload) > 6 {
		s.Rotation = decodeU16(payload, 5)
	}
	if len(payload) > 7 {
		s.Wrap = payload[7]&0x01 != 0
		s.Protected = payload[7]&0x02 != 0
	}
	pos := 8
	for i := 0; i < 4 && pos+4 <= len(payload); i++ {
		s.Borders[i] = model.BorderStyle{
			Style: payload[pos],
			Type:  payload[pos+1],
			Width: payload[pos+2],
		}
		pos += 4
	}
	var fg, bg model.Color
	if pos+4 <= len(payload) {
		fg = readColor(payload[pos:])
		pos += 4
	}
	if pos+4 <= len(payload) {
		bg = readColor(payload[pos:])
		pos += 4
	}
	patternID := 0
	if pos < len(payload) {
		patternID = int(payload[pos])
		pos++
	}
	s.Background = model.BlendBackground(patternID, fg, bg)
	if pos+2 <= len(payload) {
		s.Language = decodeU16(payload, pos)
	}
	return p.model.Styles.Add(s)
}

func readColor(b []byte) model.Color {
	return model.Color{R: b[0], G: b[1], B: b[2], A: b[3]}
}
