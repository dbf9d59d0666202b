// Package quattro implements the Quattro Pro spreadsheet decoder (spec
// §4.5): a chunk.Engine-driven RecordHandler that accumulates sheets,
// styles, strings, and formulas into a model.SpreadsheetModel and replays
// them into a sink.SpreadsheetSink.
package quattro

// Record IDs, named per their behavioural bucket in spec §4.5. qpw and wb
// share some ids and diverge on others; both families are listed here and
// the parser matches every id regardless of the active dialect.
const (
	recEndOfFile      = 0x0001
	recQPWEnd         = 0x0002
	recOpenSheet      = 0x0014
	recCloseSheet     = 0x0015
	recOpenColumn     = 0x0016
	recCloseColumn    = 0x0017
	recColDefault     = 0x0018
	recRowDefault     = 0x0019
	recColSizeIndex   = 0x001A
	recRowSizeIndex   = 0x001B
	recColSizeRange   = 0x001C
	recRowSizeRange   = 0x001D

	recCellListQPW = 0x0C01
	recCellWBLow   = 0x000C
	recCellWBHigh  = 0x0010
	recCellWB33    = 0x0033

	recStringsTable  = 0x0407
	recFormulaTable  = 0x0408
	recUserFormats   = 0x0409

	recStyleQPW = 0x000A
	recStyleWB  = 0x00CE

	recKeyQPW = 0x0004
	recKeyWB  = 0x004B

	recGraphicsLoQPW = 0x0321
	recGraphicsHiQPW = 0x04D3
	recGraphicsLoWB  = 0x2001
	recGraphicsHiWB  = 0x2FF4

	recEncodedZoneOpenWB  = 0x0341
	recEncodedZoneCloseWB = 0x031F
)

func isGraphicsRecord(id uint16) bool {
	return (id >= recGraphicsLoQPW && id <= recGraphicsHiQPW) || (id >= recGraphicsLoWB && id <= recGraphicsHiWB)
}

func isCellRecordWB(id uint16) bool {
	return (id >= recCellWBLow && id <= recCellWBHigh) || id == recCellWB33
}
