package propblob

import (
	"encoding/binary"
	"math"
)

// Encode serialises a flat list of nodes back into the wire format Parse
// reads, for use by tests that need a round-trip fixture. It is the
// mirror image of parseChildren/parseNode for every Kind this package
// produces; Bad nodes are not re-encodable (there is no canonical "bad"
// wire form) and are skipped.
func Encode(nodes []Data) []byte {
	var out []byte
	for _, n := range nodes {
		out = append(out, encodeNode(n)...)
	}
	return out
}

// EncodeBlob wraps Encode's output with the u16 total-length header that
// Parse expects at the start of a top-level blob.
func EncodeBlob(nodes []Data) []byte {
	body := Encode(nodes)
	total := len(body) + 2
	out := make([]byte, 2, 2+len(body))
	binary.LittleEndian.PutUint16(out, uint16(total))
	return append(out, body...)
}

func encodeNode(n Data) []byte {
	if n.Bad {
		return nil
	}
	typeByte := byte(n.Kind) & kindMask
	hasID := n.ID != 0
	if hasID {
		typeByte |= flagHasID
	}
	switch n.Kind {
	case KindArray, KindStruct:
		typeByte |= flagContainer
	}
	if n.Kind == KindBool && n.Bool {
		typeByte |= flagBoolTrue
	}

	var payload []byte
	switch n.Kind {
	case KindBool:
		// no payload
	case KindInt8:
		payload = []byte{byte(int8(n.Int))}
	case KindInt16:
		payload = make([]byte, 2)
		binary.LittleEndian.PutUint16(payload, uint16(int16(n.Int)))
	case KindInt32:
		payload = make([]byte, 4)
		binary.LittleEndian.PutUint32(payload, uint32(int32(n.Int)))
	case KindUInt8:
		payload = []byte{byte(n.UInt)}
	case KindUInt16:
		payload = make([]byte, 2)
		binary.LittleEndian.PutUint16(payload, uint16(n.UInt))
	case KindUInt32:
		payload = make([]byte, 4)
		binary.LittleEndian.PutUint32(payload, uint32(n.UInt))
	case KindFloat64:
		payload = make([]byte, 8)
		binary.LittleEndian.PutUint64(payload, math.Float64bits(n.Float))
	case KindColor32:
		payload = append([]byte{}, n.Color[:]...)
	case KindBytes:
		payload = n.Bytes
	case KindArray, KindStruct:
		payload = Encode(n.Children)
	}

	out := []byte{typeByte}
	if hasID {
		out = append(out, byte(n.ID))
	}
	switch n.Kind {
	case KindBytes, KindArray, KindStruct:
		lenPrefix := make([]byte, 2)
		if len(payload) > 0xFFFF {
			typeByte |= flagLenPrefix
			out[0] = typeByte
			lp := make([]byte, 4)
			binary.LittleEndian.PutUint32(lp, uint32(len(payload)))
			out = append(out, lp...)
		} else {
			binary.LittleEndian.PutUint16(lenPrefix, uint16(len(payload)))
			out = append(out, lenPrefix...)
		}
	}
	out = append(out, payload...)
	return out
}
