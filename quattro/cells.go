package quattro

import (
	"encoding/binary"
	"math"

	"github.com/go-wps/wpscore/formula"
	"github.com/go-wps/wpscore/model"
)

// decodeCellList decodes one qpw CellList record (spec §4.5): a starting
// row, a row count, then a sequence of (type, style?, listLen?, payload)
// entries, each entry supplying either one value per row in [startRow,
// startRow+numRows) or, for the 0x60 series encoding, a (base, increment)
// pair from which every row's value is computed.
func (p *Parser) decodeCellList(payload []byte) {
	sheet := p.activeSheet()
	if sheet == nil || len(payload) < 4 {
		return
	}
	startRow := decodeU16(payload, 0)
	numRows := decodeU16(payload, 2)
	pos := 4

	for pos < len(payload) {
		typeByte := payload[pos]
		pos++
		style := 0
		if typeByte&0x80 != 0 {
			style = decodeU16(payload, pos)
			pos += 2
		}

		series := typeByte&0x60 == 0x60
		listLen := numRows
		if typeByte&0x60 == 0x40 || series {
			listLen = decodeU16(payload, pos)
			pos += 2
		}

		shape := typeByte & 0x1F
		if typeByte&0x60 == 0x20 {
			// Unsupported list encoding (spec §4.5); its element width is
			// unspecified, so the rest of this record cannot be parsed.
			return
		}

		values, consumed := decodeShapeValues(p, payload[pos:], shape, listLen, startRow)
		pos += consumed

		if series && len(values) >= 2 {
			base, inc := values[0].Float, values[1].Float
			for r := 0; r < numRows; r++ {
				v := model.CellValue{Kind: model.CellFloat, Float: base + float64(r)*inc, Style: style}
				sheet.SetCell(startRow+r, p.curCol, v)
			}
			continue
		}

		for i, v := range values {
			v.Style = style
			sheet.SetCell(startRow+i, p.curCol, v)
		}
	}
}

// decodeShapeValues reads n entries of the given payload shape (spec §4.5)
// and returns the decoded values plus the number of bytes consumed.
func decodeShapeValues(p *Parser, b []byte, shape byte, n int, rowBase int) ([]model.CellValue, int) {
	pos := 0
	var out []model.CellValue
	switch shape {
	case 1:
		for i := 0; i < n; i++ {
			out = append(out, model.CellValue{})
		}
	case 2, 3:
		for i := 0; i < n && pos+2 <= len(b); i++ {
			var v float64
			if shape == 2 {
				v = float64(binary.LittleEndian.Uint16(b[pos:]))
			} else {
				v = float64(int16(binary.LittleEndian.Uint16(b[pos:])))
			}
			pos += 2
			out = append(out, model.CellValue{Kind: model.CellFloat, Float: v})
		}
	case 4:
		for i := 0; i < n && pos+4 <= len(b); i++ {
			v := float64(math.Float32frombits(binary.LittleEndian.Uint32(b[pos:])))
			pos += 4
			out = append(out, model.CellValue{Kind: model.CellFloat, Float: v})
		}
	case 5:
		for i := 0; i < n && pos+8 <= len(b); i++ {
			v := math.Float64frombits(binary.LittleEndian.Uint64(b[pos:]))
			pos += 8
			out = append(out, model.CellValue{Kind: model.CellFloat, Float: v})
		}
	case 7:
		for i := 0; i < n && pos+4 <= len(b); i++ {
			idx := binary.LittleEndian.Uint32(b[pos:])
			pos += 4
			text := ""
			if int(idx) < len(p.strings) {
				text = p.strings[idx]
			}
			out = append(out, model.CellValue{Kind: model.CellString, Str: text})
		}
	case 8:
		for i := 0; i < n && pos+14 <= len(b); i++ {
			result := math.Float64frombits(binary.LittleEndian.Uint64(b[pos:]))
			formulaIdx := binary.LittleEndian.Uint32(b[pos+10:])
			pos += 14
			cv := model.CellValue{Kind: model.CellFormula, Float: result}
			if int(formulaIdx) < len(p.formulas) {
				origin := formula.Origin{Col: p.curCol, Row: rowBase + i}
				node, err := formula.Decode(p.formulas[formulaIdx], p.dialect, origin, p.lookupSheetName)
				if err == nil {
					cv.Formula = node
				}
			}
			out = append(out, cv)
		}
	}
	return out, pos
}

func (p *Parser) lookupSheetName(idx int) string {
	return p.sheetName[idx]
}
