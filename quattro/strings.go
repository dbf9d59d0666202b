package quattro

import "github.com/go-wps/wpscore/wpsenc"

// decodeStringsTable decodes the 0x407 strings-table record (spec §4.5):
// N pascal-style strings with optional inline run styles, stored by index.
// Inline run styling is not surfaced by this library's CellValue (plain
// text only is promised by spec §1 Non-goal "perfect fidelity to layout").
// This decoder reads the payload as back-to-back pascal strings; inline
// run-style bytes are not recognised or skipped, so a record carrying them
// is read as if those bytes began further strings.
func (p *Parser) decodeStringsTable(payload []byte) {
	pos := 0
	for pos < len(payload) {
		n := int(payload[pos])
		pos++
		if pos+n > len(payload) {
			break
		}
		p.strings = append(p.strings, wpsenc.Decode(payload[pos:pos+n], p.encoding))
		pos += n
	}
}

// decodeFormulaTable decodes the 0x408 formula-table record (spec §4.5): N
// raw byte spans, each length-prefixed by a u16, kept by reference and
// decoded lazily when a cell references them.
func (p *Parser) decodeFormulaTable(payload []byte) {
	pos := 0
	for pos+2 <= len(payload) {
		n := decodeU16(payload, pos)
		pos += 2
		if pos+n > len(payload) {
			break
		}
		p.formulas = append(p.formulas, payload[pos:pos+n])
		pos += n
	}
}

// decodeUserFormats decodes the user-format table the parser state keeps
// alongside the style/font/color tables (spec §4.5's parser-state list):
// N pascal-style format strings, indexed by position, addressed by a
// style's file-format byte in the 0x78-0x7F range (see quattro/format.go).
func (p *Parser) decodeUserFormats(payload []byte) {
	pos := 0
	for pos < len(payload) {
		n := int(payload[pos])
		pos++
		if pos+n > len(payload) {
			break
		}
		p.userFormats = append(p.userFormats, wpsenc.Decode(payload[pos:pos+n], p.encoding))
		pos += n
	}
}
