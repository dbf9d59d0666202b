package formula

import (
	"encoding/binary"
	"fmt"

	"github.com/go-wps/wpscore/model"
)

// parseRefSection decodes the formula's reference section into a flat list
// consumed in order by postfix opcodes 0x01 (cell) and 0x02 (range).
//
// Each entry starts with a one-byte kind tag (spec §4.6: "a leading type
// whose top bits select: 0 = single cell, 1 = range, 2 = field, 3 =
// collection"); the source material does not spell out the remaining byte
// layout beyond the overall sizes ("8/16/2 bytes"), so this package commits
// to one internally consistent layout:
//
//   - single cell (8 bytes total): kind:u8, sheet:u16, col:u16, rawRow:u16,
//     pad:u8. rawRow's top 3 bits are the sheet/col/row relative flags
//     (0x8000/0x4000/0x2000); the low 13 bits are the row value.
//   - range (16 bytes total): two single-cell entries back to back; the
//     second entry's kind byte (offset 8) is ignored, the range entry's own
//     kind byte governs both.
//   - field (2 bytes total): kind:u8, fieldIndex:u8.
//   - collection (2 bytes total): kind:u8, collectionIndex:u8.
func parseRefSection(b []byte, dialect Dialect, origin Origin, sheetName func(int) string) ([]refEntry, error) {
	var out []refEntry
	pos := 0
	for pos < len(b) {
		kind := refKind(b[pos] >> 6)
		switch kind {
		case refSingleCell:
			if pos+8 > len(b) {
				return out, fmt.Errorf("single-cell ref truncated at %d", pos)
			}
			cell := decodeCellRef(b[pos+1:pos+7], dialect, origin, sheetName)
			out = append(out, refEntry{cell: &cell})
			pos += 8
		case refRange:
			if pos+16 > len(b) {
				return out, fmt.Errorf("range ref truncated at %d", pos)
			}
			c1 := decodeCellRef(b[pos+1:pos+7], dialect, origin, sheetName)
			c2 := decodeCellRef(b[pos+9:pos+15], dialect, origin, sheetName)
			out = append(out, refEntry{rng: &model.CellRange{
				Sheet: c1.Sheet,
				C1:    c1.Col, R1: c1.Row,
				C2: c2.Col, R2: c2.Row,
				RelCol: c1.RelCol, RelRow: c1.RelRow,
				File: c1.File,
			}})
			pos += 16
		case refField, refCollection:
			if pos+2 > len(b) {
				return out, fmt.Errorf("field/collection ref truncated at %d", pos)
			}
			pos += 2
		default:
			pos++
		}
	}
	return out, nil
}

// decodeCellRef decodes a 6-byte (sheet:u16, col:u16, rawRow:u16) cell body
// and resolves its relative components against origin, per spec §4.6's
// qpw-wrap-add / wb-13-bit-signed rule.
func decodeCellRef(b []byte, dialect Dialect, origin Origin, sheetName func(int) string) model.CellRef {
	sheet := int(binary.LittleEndian.Uint16(b[0:2]))
	col := int(binary.LittleEndian.Uint16(b[2:4]))
	rawRow := binary.LittleEndian.Uint16(b[4:6])

	relSheet := rawRow&relSheetFlag != 0
	relCol := rawRow&relColFlag != 0
	relRow := rawRow&relRowFlag != 0

	var row int
	switch dialect {
	case DialectQPW:
		row = int(rawRow & rowValueMask)
		if relRow {
			row = int(uint16(row + origin.Row))
		}
	default: // DialectWB: 13-bit signed field, spec §4.6: ((raw & 0x1FFF) << 3) >> 3
		v := int16(rawRow&rowValueMask) << 3
		v >>= 3
		row = int(v)
		if relRow {
			row += origin.Row
		}
	}
	if relCol {
		col += origin.Col
	}

	ref := model.CellRef{Sheet: sheet, Col: col, Row: row, RelCol: relCol, RelRow: relRow}
	if relSheet && sheetName != nil {
		ref.SheetName = sheetName(sheet)
	}
	return ref
}
