// Package chunk implements the tag-length record engine shared by Quattro
// Pro and the Works family (spec §3.1, §4.3): an iterator over
// (id, length, payload) records that hides the reserved big-block bit,
// reassembles Quattro's classic continuation chunks, and decrypts a scope
// once a 16-byte password key is known.
package chunk

import (
	"fmt"

	"github.com/go-wps/wpscore/bytecursor"
	"github.com/go-wps/wpscore/wpserr"
	"github.com/go-wps/wpscore/wpslog"
)

// Shape selects the record header layout (spec §4.3).
type Shape int

const (
	// ShapeFixed is the WB9/qpw layout: id:u16 + length:u16, or
	// length:u32 when the id's top bit (big-block flag) is set.
	ShapeFixed Shape = iota
	// ShapeClassic is the wb1/wb3 layout: id:u16 + length:u16, with
	// length == 0xFF00 triggering 0x10F continuation-chunk reassembly.
	ShapeClassic
)

// Record is one decoded (id, payload) unit. ID has the reserved top bit
// (big-block flag) already stripped; BigBlock reports that bit's value.
type Record struct {
	ID       uint16
	Payload  []byte
	BigBlock bool
}

// continuationID is the Quattro "more data follows" record (classic shape).
const continuationID = 0x10F

// wb/qpw-specific structural ids used by the decryption scope logic.
const (
	keyRecordWB   = 0x4B
	keyRecordQPW  = 0x4
	zoneOpenWB    = 0x341
	zoneCloseWB   = 0x31F
	qpwEndRecord  = 0x2
	zoneHeaderLen = 75
)

// Options configures an Engine.
type Options struct {
	Shape Shape
	// Key is the 16-byte password key. Nil means "no password known": an
	// encrypted stream then surfaces wpserr.ErrNeedsPassword.
	Key []byte
	// Abort, if set, is checked before each Next() call; returning true
	// stops iteration without error (cooperative cancellation, spec §5).
	Abort  func() bool
	Logger wpslog.Logger
}

// Engine iterates the records of one byte stream.
type Engine struct {
	cur    *bytecursor.Cursor
	shape  Shape
	key    *[KeyLen]byte
	abort  func() bool
	logger wpslog.Logger

	pending   []Record // records produced by recursing into a decoded container (e.g. wb zone 0x341)
	encrypted bool
	stopped   bool
	err       error

	// keyOffset is the running keystream position, in payload bytes
	// decrypted so far. It resets to 0 at the key record and advances by
	// len(payload) for every record read after it; record headers are
	// never part of the keystream (spec §4.3).
	keyOffset int
}

// New creates an Engine over data.
func New(data []byte, opts Options) *Engine {
	e := &Engine{
		cur:    bytecursor.New(data),
		shape:  opts.Shape,
		abort:  opts.Abort,
		logger: opts.Logger,
	}
	if e.logger == nil {
		e.logger = wpslog.Nop
	}
	if len(opts.Key) == KeyLen {
		var k [KeyLen]byte
		copy(k[:], opts.Key)
		e.key = &k
	}
	return e
}

// IsEncrypted reports whether a key/password record has been observed,
// regardless of whether a key was supplied to decode it.
func (e *Engine) IsEncrypted() bool {
	return e.encrypted
}

// Err returns the error that stopped iteration, if any.
func (e *Engine) Err() error {
	return e.err
}

// Next returns the next logical record, or (Record{}, false) at end of
// stream or on a structural error (check Err). Continuation reassembly and
// decryption happen transparently: the handler never learns a chunk was
// split or that the underlying bytes were re-keyed.
func (e *Engine) Next() (Record, bool) {
	if e.stopped {
		return Record{}, false
	}
	if e.abort != nil && e.abort() {
		e.stopped = true
		return Record{}, false
	}
	if len(e.pending) > 0 {
		r := e.pending[0]
		e.pending = e.pending[1:]
		return r, true
	}
	if e.cur.Remaining() == 0 {
		e.stopped = true
		return Record{}, false
	}

	rec, ok := e.readOne(e.cur)
	if !ok {
		return Record{}, false
	}

	if e.isKeyRecord(rec.ID) {
		e.encrypted = true
		if e.key == nil {
			e.fail(wpserr.ErrNeedsPassword)
			return Record{}, false
		}
		e.logger.Debugf("chunk: decrypting from offset %d", e.cur.Tell())
		e.keyOffset = 0
	} else if e.encrypted && e.key != nil {
		rec.Payload = decryptRegion(*e.key, e.keyOffset, rec.Payload)
		e.keyOffset += len(rec.Payload)
	}

	if e.shape == ShapeClassic && rec.ID == zoneOpenWB && e.key != nil {
		e.expandEncodedZone(rec)
	}

	return rec, true
}

func (e *Engine) fail(err error) {
	e.err = err
	e.stopped = true
}

// readOne reads one record header (shape-dependent) and its payload,
// performing classic-chunk reassembly when the shape calls for it.
func (e *Engine) readOne(cur *bytecursor.Cursor) (Record, bool) {
	switch e.shape {
	case ShapeFixed:
		return e.readFixed(cur)
	default:
		return e.readClassic(cur)
	}
}

func (e *Engine) readFixed(cur *bytecursor.Cursor) (Record, bool) {
	rawID, err := cur.ReadU16LE()
	if err != nil {
		e.fail(fmt.Errorf("chunk: read id: %w", err))
		return Record{}, false
	}
	bigBlock := rawID&0x8000 != 0
	id := rawID & 0x7FFF

	var length int
	if bigBlock {
		n, err := cur.ReadU32LE()
		if err != nil {
			e.fail(fmt.Errorf("chunk: read big-block length for id %#x: %w", id, err))
			return Record{}, false
		}
		length = int(n)
	} else {
		n, err := cur.ReadU16LE()
		if err != nil {
			e.fail(fmt.Errorf("chunk: read length for id %#x: %w", id, err))
			return Record{}, false
		}
		length = int(n)
	}

	payload, err := cur.ReadBytes(length)
	if err != nil {
		e.fail(fmt.Errorf("chunk: read payload (%d bytes) for id %#x: %w", length, id, err))
		return Record{}, false
	}
	return Record{ID: id, Payload: payload, BigBlock: bigBlock}, true
}

func (e *Engine) readClassic(cur *bytecursor.Cursor) (Record, bool) {
	rawID, err := cur.ReadU16LE()
	if err != nil {
		e.fail(fmt.Errorf("chunk: read id: %w", err))
		return Record{}, false
	}
	bigBlock := rawID&0x8000 != 0
	id := rawID & 0x7FFF

	length, err := cur.ReadU16LE()
	if err != nil {
		e.fail(fmt.Errorf("chunk: read length for id %#x: %w", id, err))
		return Record{}, false
	}

	if length != 0xFF00 {
		payload, err := cur.ReadBytes(int(length))
		if err != nil {
			e.fail(fmt.Errorf("chunk: read payload (%d bytes) for id %#x: %w", length, id, err))
			return Record{}, false
		}
		return Record{ID: id, Payload: payload, BigBlock: bigBlock}, true
	}

	// Reassembly: this record carries no bytes of its own; concatenate
	// 0x10F continuation payloads until a non-continuation record appears.
	var payload []byte
	for {
		mark := cur.Tell()
		contRawID, err := cur.ReadU16LE()
		if err != nil {
			e.fail(fmt.Errorf("chunk: read continuation id after id %#x: %w", id, err))
			return Record{}, false
		}
		contLen, err := cur.ReadU16LE()
		if err != nil {
			e.fail(fmt.Errorf("chunk: read continuation length after id %#x: %w", id, err))
			return Record{}, false
		}
		if contRawID&0x7FFF != continuationID {
			if err := cur.Seek(mark); err != nil {
				e.fail(err)
				return Record{}, false
			}
			break
		}
		chunk, err := cur.ReadBytes(int(contLen))
		if err != nil {
			e.fail(fmt.Errorf("chunk: read continuation payload for id %#x: %w", id, err))
			return Record{}, false
		}
		payload = append(payload, chunk...)
	}
	return Record{ID: id, Payload: payload, BigBlock: bigBlock}, true
}

func (e *Engine) isKeyRecord(id uint16) bool {
	switch e.shape {
	case ShapeFixed:
		return id == keyRecordQPW
	default:
		return id == keyRecordWB
	}
}

// expandEncodedZone implements the wb 0x341/0x31F nesting described in
// spec §4.3/§9. Record headers are always read in plaintext, so by the time
// Next() hands rec to this method its payload has already gone through the
// ordinary per-record decryption pass above (same running keystream as
// every other record, not a phase of its own); only the zone's first
// zoneHeaderLen bytes are meaningful as a record stream, recursed into to
// produce the zone's children up to (and including) the 0x31F terminator.
// Those children are queued and drained by Next() before the engine resumes
// reading the outer stream.
func (e *Engine) expandEncodedZone(rec Record) {
	n := zoneHeaderLen
	if n > len(rec.Payload) {
		n = len(rec.Payload)
	}

	inner := New(rec.Payload[:n], Options{Shape: ShapeClassic, Logger: e.logger})
	for {
		child, ok := inner.Next()
		if !ok {
			break
		}
		e.pending = append(e.pending, child)
		if child.ID == zoneCloseWB {
			break
		}
	}
}
