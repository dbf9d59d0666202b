// Package propblob implements the recursive "tagged property" encoding
// shared by the Works/Quattro family (spec §3.2, §4.2): a Data tree whose
// nodes are (id, kind, value) triples, read with a byte budget enforced at
// every container boundary and never thrown on mismatch — only flagged Bad.
package propblob

import (
	"fmt"

	"github.com/go-wps/wpscore/bytecursor"
)

// Kind is the tag carried in a Data node's type byte.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindUInt8
	KindUInt16
	KindUInt32
	KindFloat64
	KindColor32
	KindBytes
	KindArray
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "Bool"
	case KindInt8:
		return "Int8"
	case KindInt16:
		return "Int16"
	case KindInt32:
		return "Int32"
	case KindUInt8:
		return "UInt8"
	case KindUInt16:
		return "UInt16"
	case KindUInt32:
		return "UInt32"
	case KindFloat64:
		return "Float64"
	case KindColor32:
		return "Color32"
	case KindBytes:
		return "Bytes"
	case KindArray:
		return "Array"
	case KindStruct:
		return "Struct"
	default:
		return "Unknown"
	}
}

// Type-byte layout. The low nibble carries the Kind (0-12, room for 16); the
// upper nibble carries three independent flags plus one bit reserved for the
// Bool node's truthiness (a Bool node has no payload bytes, so its value has
// to live somewhere in the header).
const (
	kindMask      = 0x0F
	flagBoolTrue  = 0x10 // meaningful only when Kind == KindBool
	flagLenPrefix = 0x20 // an inline 32-bit length prefix follows (else a local u16 is used, for Bytes/Array/Struct)
	flagHasID     = 0x40 // an inline u8 id follows the type byte
	flagContainer = 0x80 // node is an Array or a Struct (sanity-checked against Kind)
)

// Color is an R,G,B,A quadruplet.
type Color [4]byte

// Data is one node of a parsed property blob. Exactly one of the typed
// fields is meaningful, selected by Kind; Children holds sub-nodes for
// KindArray and KindStruct.
type Data struct {
	ID    int
	Kind  Kind
	Bool  bool
	Int   int64  // Int8/Int16/Int32, sign-extended
	UInt  uint64 // UInt8/UInt16/UInt32
	Float float64
	Color Color
	Bytes []byte
	Children []Data

	// Bad is set when this node's declared length did not match the bytes
	// actually consumed, or a nested read ran past the available bytes.
	// A Bad node is never thrown; parsing resumes after its declared extent.
	Bad bool
	// Extra holds bytes left over inside a Bad container's declared length
	// that could not be parsed as further children.
	Extra []byte
}

// Parse decodes one top-level blob: a u16 total length (including itself)
// followed by a flat sequence of property records, returned as the Children
// of a synthetic root KindStruct node with ID 0.
func Parse(data []byte) (Data, error) {
	cur := bytecursor.New(data)
	totalLen, err := cur.ReadU16LE()
	if err != nil {
		return Data{}, fmt.Errorf("propblob: read blob length: %w", err)
	}
	bodyLen := int(totalLen) - 2
	if bodyLen < 0 {
		bodyLen = 0
	}
	if bodyLen > cur.Remaining() {
		bodyLen = cur.Remaining()
	}
	body, err := cur.ReadBytes(bodyLen)
	if err != nil {
		return Data{}, fmt.Errorf("propblob: read blob body: %w", err)
	}
	root := Data{Kind: KindStruct}
	root.Children, root.Bad, root.Extra = parseChildren(bytecursor.New(body))
	return root, nil
}

// parseChildren reads successive Data records from cur until it is
// exhausted. It never returns an error: a short read while decoding a child
// truncates the child list, flags the caller as Bad, and reports whatever
// bytes remain unconsumed as Extra.
func parseChildren(cur *bytecursor.Cursor) (children []Data, bad bool, extra []byte) {
	for cur.Remaining() > 0 {
		start := cur.Tell()
		node, ok := parseNode(cur)
		if !ok {
			cur.Seek(start)
			rest, _ := cur.ReadBytes(cur.Remaining())
			return children, true, rest
		}
		children = append(children, node)
	}
	return children, false, nil
}

// parseNode reads one (type byte, optional id, typed value) record. ok is
// false only when the cursor ran out of bytes mid-record (a structural
// short read); a recognised-but-invalid record is still returned with
// Bad == true and ok == true so sibling parsing can continue.
func parseNode(cur *bytecursor.Cursor) (Data, bool) {
	typeByte, err := cur.ReadU8()
	if err != nil {
		return Data{}, false
	}
	kind := Kind(typeByte & kindMask)
	isContainer := typeByte&flagContainer != 0

	d := Data{Kind: kind}

	if typeByte&flagHasID != 0 {
		id, err := cur.ReadU8()
		if err != nil {
			return d, false
		}
		d.ID = int(id)
	}

	switch kind {
	case KindBool:
		d.Bool = typeByte&flagBoolTrue != 0

	case KindInt8:
		v, err := cur.ReadI8()
		if err != nil {
			return d, false
		}
		d.Int = int64(v)

	case KindInt16:
		v, err := cur.ReadI16LE()
		if err != nil {
			return d, false
		}
		d.Int = int64(v)

	case KindInt32:
		v, err := cur.ReadI32LE()
		if err != nil {
			return d, false
		}
		d.Int = int64(v)

	case KindUInt8:
		v, err := cur.ReadU8()
		if err != nil {
			return d, false
		}
		d.UInt = uint64(v)

	case KindUInt16:
		v, err := cur.ReadU16LE()
		if err != nil {
			return d, false
		}
		d.UInt = uint64(v)

	case KindUInt32:
		v, err := cur.ReadU32LE()
		if err != nil {
			return d, false
		}
		d.UInt = uint64(v)

	case KindFloat64:
		v, err := cur.ReadF64LE()
		if err != nil {
			return d, false
		}
		d.Float = v

	case KindColor32:
		b, err := cur.ReadBytes(4)
		if err != nil {
			return d, false
		}
		copy(d.Color[:], b)

	case KindBytes, KindArray, KindStruct:
		n, err := readLen(cur, typeByte)
		if err != nil {
			return d, false
		}
		payload, err := cur.Sub(n)
		if err != nil {
			// Declared length exceeds what remains: flag Bad, consume
			// whatever is left, and stop — never throw.
			d.Bad = true
			rest, _ := cur.ReadBytes(cur.Remaining())
			d.Bytes = rest
			return d, true
		}
		if kind == KindBytes {
			raw, _ := payload.ReadBytes(payload.Len())
			d.Bytes = raw
		} else {
			d.Children, d.Bad, d.Extra = parseChildren(payload)
		}

	default:
		// Unknown kind tag: nothing to parse after the (optional) id; flag
		// the node Bad so callers don't trust any zero-valued field.
		d.Bad = true
	}

	if isContainer != (kind == KindArray || kind == KindStruct) {
		d.Bad = true
	}

	return d, true
}

// readLen reads the length prefix for a Bytes/Array/Struct node: a 32-bit
// prefix when flagLenPrefix is set, otherwise a local 16-bit prefix.
func readLen(cur *bytecursor.Cursor, typeByte byte) (int, error) {
	if typeByte&flagLenPrefix != 0 {
		n, err := cur.ReadU32LE()
		if err != nil {
			return 0, err
		}
		return int(n), nil
	}
	n, err := cur.ReadU16LE()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Find returns the first child with the given id, or false if none exists.
func (d *Data) Find(id int) (*Data, bool) {
	for i := range d.Children {
		if d.Children[i].ID == id {
			return &d.Children[i], true
		}
	}
	return nil, false
}

// GetInt returns the signed integer value of the child with the given id.
// It accepts Int8/Int16/Int32 and sign-converted UInt8/16/32 nodes; it never
// assumes the kind without checking.
func (d *Data) GetInt(id int) (int64, bool) {
	c, ok := d.Find(id)
	if !ok || c.Bad {
		return 0, false
	}
	switch c.Kind {
	case KindInt8, KindInt16, KindInt32:
		return c.Int, true
	case KindUInt8, KindUInt16, KindUInt32:
		return int64(c.UInt), true
	default:
		return 0, false
	}
}

// GetColor returns the Color32 value of the child with the given id.
func (d *Data) GetColor(id int) (Color, bool) {
	c, ok := d.Find(id)
	if !ok || c.Bad || c.Kind != KindColor32 {
		return Color{}, false
	}
	return c.Color, true
}

// GetStruct returns the Struct (or Array) child with the given id.
func (d *Data) GetStruct(id int) (*Data, bool) {
	c, ok := d.Find(id)
	if !ok || c.Bad || (c.Kind != KindStruct && c.Kind != KindArray) {
		return nil, false
	}
	return c, true
}

// GetBytes returns the raw payload of a Bytes child with the given id.
func (d *Data) GetBytes(id int) ([]byte, bool) {
	c, ok := d.Find(id)
	if !ok || c.Bad || c.Kind != KindBytes {
		return nil, false
	}
	return c.Bytes, true
}

// GetBool returns the value of a Bool child with the given id.
func (d *Data) GetBool(id int) (bool, bool) {
	c, ok := d.Find(id)
	if !ok || c.Bad || c.Kind != KindBool {
		return false, false
	}
	return c.Bool, true
}
