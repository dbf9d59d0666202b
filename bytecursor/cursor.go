// Package bytecursor provides a seekable little-endian reader over an
// in-memory byte source, shared by every format-specific decoder in this
// module.
package bytecursor

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-wps/wpscore/wpserr"
)

// Cursor is a cheap-to-clone, bounds-checked little-endian reader over a
// byte slice. The zero value is not usable; construct with New.
type Cursor struct {
	data []byte
	pos  int
}

// New wraps data for typed reads starting at offset 0.
func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Tell returns the current byte offset.
func (c *Cursor) Tell() int {
	return c.pos
}

// Len returns the total length of the underlying byte slice.
func (c *Cursor) Len() int {
	return len(c.data)
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	if c.pos >= len(c.data) {
		return 0
	}
	return len(c.data) - c.pos
}

// Seek repositions the cursor to an absolute offset. Seeking past the end is
// allowed (it simply makes Remaining return 0); seeking before 0 is an error.
func (c *Cursor) Seek(pos int) error {
	if pos < 0 {
		return fmt.Errorf("bytecursor: seek to negative offset %d: %w", pos, wpserr.ErrShortRead)
	}
	c.pos = pos
	return nil
}

// SeekRel repositions the cursor relative to its current position.
func (c *Cursor) SeekRel(delta int) error {
	return c.Seek(c.pos + delta)
}

// Sub returns a new Cursor over the next n bytes, useful for bounded
// recursive parsing (PropertyBlob containers, ChunkEngine records). It
// advances c past the n bytes on success.
func (c *Cursor) Sub(n int) (*Cursor, error) {
	b, err := c.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	return New(b), nil
}

// Clone returns an independent copy positioned at the same offset.
func (c *Cursor) Clone() *Cursor {
	cl := *c
	return &cl
}

// PeekRemaining returns the unread tail of the underlying buffer without
// advancing the cursor. The returned slice aliases the underlying data.
func (c *Cursor) PeekRemaining() []byte {
	return c.data[c.pos:]
}

func (c *Cursor) need(n int) error {
	if n < 0 || c.Remaining() < n {
		return fmt.Errorf("bytecursor: need %d bytes, have %d: %w", n, c.Remaining(), wpserr.ErrShortRead)
	}
	return nil
}

// ReadBytes returns the next n bytes and advances the cursor. The returned
// slice aliases the underlying data; callers that need to retain it beyond
// the lifetime of the source buffer must copy it themselves.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadU8 reads one unsigned byte.
func (c *Cursor) ReadU8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

// ReadI8 reads one signed byte.
func (c *Cursor) ReadI8() (int8, error) {
	v, err := c.ReadU8()
	return int8(v), err
}

// ReadU16LE reads a little-endian uint16.
func (c *Cursor) ReadU16LE() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

// ReadI16LE reads a little-endian int16.
func (c *Cursor) ReadI16LE() (int16, error) {
	v, err := c.ReadU16LE()
	return int16(v), err
}

// ReadU32LE reads a little-endian uint32.
func (c *Cursor) ReadU32LE() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

// ReadI32LE reads a little-endian int32.
func (c *Cursor) ReadI32LE() (int32, error) {
	v, err := c.ReadU32LE()
	return int32(v), err
}

// ReadU64LE reads a little-endian uint64.
func (c *Cursor) ReadU64LE() (uint64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(c.data[c.pos:])
	c.pos += 8
	return v, nil
}

// ReadF64LE reads a little-endian IEEE-754 double.
func (c *Cursor) ReadF64LE() (float64, error) {
	v, err := c.ReadU64LE()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadMSFloat reads the legacy Microsoft 4-byte floating point format used by
// older Works/Multiplan records: bit 1 (0x02) of the 32-bit word flags a
// scaled-integer encoding (value >> 2, following the same convention BIFF12's
// RK-style packed numbers use); otherwise the 32 bits, with their two low
// bits cleared, are the high word of an IEEE double whose low word is zero,
// and bit 0 (0x01) divides that double by 100.
func (c *Cursor) ReadMSFloat() (float64, error) {
	raw, err := c.ReadI32LE()
	if err != nil {
		return 0, err
	}
	if raw&0x02 != 0 {
		return float64(raw >> 2), nil
	}
	hi := uint32(raw) & 0xFFFFFFFC
	bits := uint64(hi) << 32
	v := math.Float64frombits(bits)
	if raw&0x01 != 0 {
		v /= 100
	}
	return v, nil
}

// ReadPascalString reads a one-byte length prefix followed by that many
// bytes, returned as a raw (undecoded) byte slice; callers apply the active
// encoding hint.
func (c *Cursor) ReadPascalString() ([]byte, error) {
	n, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	return c.ReadBytes(int(n))
}
