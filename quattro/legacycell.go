package quattro

import (
	"encoding/binary"
	"math"

	"github.com/go-wps/wpscore/chunk"
	"github.com/go-wps/wpscore/formula"
	"github.com/go-wps/wpscore/model"
)

// Legacy wb1/wb3 cell record ids (spec §4.5 lists the bucket only as
// "qpw id 0xC01, wb cell zones 0x0C-0x10, 0x33" without spelling out their
// byte layout). This package commits to one internally consistent layout,
// shared by all of them: col:u16, row:u16, style:u16, then an id-specific
// payload. 0x33 additionally carries a u16 repeat count after the header,
// filling a run of consecutive columns with blank cells of that style.
const (
	recCellBlankWB   = 0x000C
	recCellIntWB     = 0x000D
	recCellFloatWB   = 0x000E
	recCellLabelWB   = 0x000F
	recCellFormulaWB = 0x0010
	recCellRepeatWB  = 0x0033
)

func (p *Parser) decodeLegacyCell(rec chunk.Record) {
	sheet := p.activeSheet()
	b := rec.Payload
	if sheet == nil || len(b) < 6 {
		return
	}
	col := decodeU16(b, 0)
	row := decodeU16(b, 2)
	style := decodeU16(b, 4)
	body := b[6:]

	switch rec.ID {
	case recCellBlankWB:
		sheet.SetCell(row, col, model.CellValue{Style: style})

	case recCellIntWB:
		if len(body) < 2 {
			return
		}
		v := float64(int16(binary.LittleEndian.Uint16(body)))
		sheet.SetCell(row, col, model.CellValue{Kind: model.CellFloat, Float: v, Style: style})

	case recCellFloatWB:
		if len(body) < 8 {
			return
		}
		v := math.Float64frombits(binary.LittleEndian.Uint64(body))
		sheet.SetCell(row, col, model.CellValue{Kind: model.CellFloat, Float: v, Style: style})

	case recCellLabelWB:
		text := decodePascalOrRaw(body, p.encoding)
		sheet.SetCell(row, col, model.CellValue{Kind: model.CellString, Str: text, Style: style})

	case recCellFormulaWB:
		if len(body) < 12 {
			return
		}
		result := math.Float64frombits(binary.LittleEndian.Uint64(body))
		formulaBlob := body[8:]
		cv := model.CellValue{Kind: model.CellFormula, Float: result, Style: style}
		origin := formula.Origin{Col: col, Row: row}
		if node, err := formula.Decode(formulaBlob, p.dialect, origin, p.lookupSheetName); err == nil {
			cv.Formula = node
		}
		sheet.SetCell(row, col, cv)

	case recCellRepeatWB:
		if len(body) < 2 {
			return
		}
		repeat := decodeU16(body, 0)
		for c := col; c < col+repeat; c++ {
			sheet.SetCell(row, c, model.CellValue{Style: style})
		}
	}
}
