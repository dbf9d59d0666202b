package quattro

import (
	"context"
	"fmt"

	"github.com/go-wps/wpscore/chunk"
	"github.com/go-wps/wpscore/formula"
	"github.com/go-wps/wpscore/model"
	"github.com/go-wps/wpscore/sink"
	"github.com/go-wps/wpscore/wpsenc"
	"github.com/go-wps/wpscore/wpserr"
	"github.com/go-wps/wpscore/wpslog"
)

// Options configures a Parser.
type Options struct {
	Password string
	Encoding wpsenc.Hint
	Abort    func() bool
	Logger   wpslog.Logger
}

// Parser drives a chunk.Engine over a Quattro Pro stream, accumulating a
// model.SpreadsheetModel (spec §4.5).
type Parser struct {
	engine   *chunk.Engine
	dialect  formula.Dialect
	encoding wpsenc.Hint
	logger   wpslog.Logger

	model *model.SpreadsheetModel

	curSheet  int
	curCol    int
	sheetIdx  map[int]*model.Sheet // Quattro sheet id -> Sheet
	sheetName map[int]string

	strings     []string
	formulas    [][]byte
	userFormats []string

	// date1904 tracks the active epoch for date-serial rendering. Quattro
	// Pro, unlike Excel, does not expose a toggle for this in its file
	// formats; it always uses the 1900 epoch, so this is never set true.
	date1904 bool

	needsPassword bool
}

// deriveKey turns a UTF-8 password into the 16-byte key chunk.Engine wants.
// The source formats' real key-derivation schemes are out of scope for this
// library (the spec only specifies the XOR+rotate cipher once a 16-byte key
// is known); this pads/truncates the UTF-8 bytes, which is sufficient to
// exercise and round-trip the decryption path end to end.
func deriveKey(password string) []byte {
	if password == "" {
		return nil
	}
	key := make([]byte, chunk.KeyLen)
	copy(key, password)
	return key
}

// New constructs a Parser over data using the given record shape (classic
// for wb1/wb3/DOS, fixed for wb9/qpw).
func New(data []byte, shape chunk.Shape, opts Options) (*Parser, error) {
	logger := opts.Logger
	if logger == nil {
		logger = wpslog.Nop
	}
	dialect := formula.DialectWB
	if shape == chunk.ShapeFixed {
		dialect = formula.DialectQPW
	}
	engine := chunk.New(data, chunk.Options{
		Shape:  shape,
		Key:    deriveKey(opts.Password),
		Abort:  opts.Abort,
		Logger: logger,
	})
	return &Parser{
		engine:    engine,
		dialect:   dialect,
		encoding:  opts.Encoding,
		logger:    logger,
		model:     model.NewSpreadsheetModel(),
		sheetIdx:  make(map[int]*model.Sheet),
		sheetName: make(map[int]string),
		curSheet:  -1,
	}, nil
}

// Parse drives the engine to completion, then replays the sealed model into
// out (spec §4.5 "Sheet emission").
func (p *Parser) Parse(ctx context.Context, out sink.SpreadsheetSink) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, ok := p.engine.Next()
		if !ok {
			break
		}
		if done, err := p.handle(rec); err != nil {
			return err
		} else if done {
			break
		}
	}
	if err := p.engine.Err(); err != nil {
		return err
	}
	p.model.Seal()
	emit(p.model, out)
	return nil
}

// Model exposes the accumulated model after Parse returns, for callers that
// want direct access instead of (or in addition to) sink replay.
func (p *Parser) Model() *model.SpreadsheetModel {
	return p.model
}

func (p *Parser) handle(rec chunk.Record) (done bool, err error) {
	switch {
	case rec.ID == recEndOfFile || rec.ID == recQPWEnd:
		return true, nil

	case rec.ID == recOpenSheet:
		p.openSheet(rec.Payload)
	case rec.ID == recCloseSheet:
		p.curSheet = -1

	case rec.ID == recOpenColumn:
		p.curCol = decodeU16(rec.Payload, 0)
	case rec.ID == recCloseColumn:
		p.curCol = 0

	case rec.ID == recColSizeIndex, rec.ID == recColSizeRange, rec.ID == recColDefault:
		p.handleColumnSize(rec)
	case rec.ID == recRowSizeIndex, rec.ID == recRowSizeRange, rec.ID == recRowDefault:
		// Row sizing affects emission ordering only (spec §4.5 sheet
		// emission union), not cell content; tracked implicitly by which
		// rows carry cells.

	case rec.ID == recCellListQPW:
		p.decodeCellList(rec.Payload)
	case isCellRecordWB(rec.ID):
		p.decodeLegacyCell(rec)

	case rec.ID == recStringsTable:
		p.decodeStringsTable(rec.Payload)
	case rec.ID == recFormulaTable:
		p.decodeFormulaTable(rec.Payload)
	case rec.ID == recUserFormats:
		p.decodeUserFormats(rec.Payload)

	case rec.ID == recStyleQPW, rec.ID == recStyleWB:
		p.decodeStyle(rec.Payload)

	case isGraphicsRecord(rec.ID):
		p.logger.Debugf("quattro: skipping opaque graphics record %#x (%d bytes)", rec.ID, len(rec.Payload))

	default:
		p.logger.Debugf("quattro: skipping unknown record %#x (%d bytes)", rec.ID, len(rec.Payload))
	}
	return false, nil
}

func (p *Parser) openSheet(payload []byte) {
	id := decodeU16(payload, 0)
	name := fmt.Sprintf("Sheet%d", id+1)
	if len(payload) > 2 {
		name = decodePascalOrRaw(payload[2:], p.encoding)
	}
	sheet, ok := p.sheetIdx[id]
	if !ok {
		sheet = p.model.AddSheet(name)
		p.sheetIdx[id] = sheet
	}
	p.sheetName[id] = name
	p.curSheet = id
}

func (p *Parser) handleColumnSize(rec chunk.Record) {
	sheet := p.activeSheet()
	if sheet == nil || len(rec.Payload) < 2 {
		return
	}
	raw := decodeU16(rec.Payload, 0)
	width := float64(raw & 0x7FFF) // TWIP units, high bit is the auto-fit flag (spec §4.5)
	col := model.Column{C1: p.curCol, C2: p.curCol, Width: width}
	sheet.Columns = append(sheet.Columns, col)
}

func (p *Parser) activeSheet() *model.Sheet {
	if p.curSheet < 0 {
		return nil
	}
	return p.sheetIdx[p.curSheet]
}

func decodeU16(b []byte, off int) int {
	if off+2 > len(b) {
		return 0
	}
	return int(b[off]) | int(b[off+1])<<8
}

func decodeU32(b []byte, off int) uint32 {
	if off+4 > len(b) {
		return 0
	}
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}

func decodePascalOrRaw(b []byte, hint wpsenc.Hint) string {
	if len(b) == 0 {
		return ""
	}
	n := int(b[0])
	if n+1 <= len(b) {
		return wpsenc.Decode(b[1:1+n], hint)
	}
	return wpsenc.Decode(b, hint)
}

// NeedsPassword reports whether the stream declared itself encrypted but no
// usable key was supplied.
func (p *Parser) NeedsPassword() bool {
	return p.engine.IsEncrypted() && p.engine.Err() == wpserr.ErrNeedsPassword
}
