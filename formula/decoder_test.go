package formula_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-wps/wpscore/formula"
	"github.com/go-wps/wpscore/model"
)

func u16(v uint16) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); return b }

// buildBlob assembles [totalLen u16][refOffset u16][postfix...][refs...].
func buildBlob(postfix, refs []byte) []byte {
	refOffset := 4 + len(postfix)
	total := refOffset + len(refs)
	out := append([]byte{}, u16(uint16(total))...)
	out = append(out, u16(uint16(refOffset))...)
	out = append(out, postfix...)
	out = append(out, refs...)
	return out
}

func TestDecodeSimpleAddition(t *testing.T) {
	// 3 4 + : two f64 literals then binary '+' (opcode 0x09), then end (0x03)
	var postfix []byte
	lit := func(v float64) []byte {
		b := make([]byte, 9)
		b[0] = 0x00
		binary.LittleEndian.PutUint64(b[1:], math.Float64bits(v))
		return b
	}
	postfix = append(postfix, lit(3)...)
	postfix = append(postfix, lit(4)...)
	postfix = append(postfix, 0x09, 0x03)

	blob := buildBlob(postfix, nil)
	node, err := formula.Decode(blob, formula.DialectWB, formula.Origin{}, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if node.Bad {
		t.Fatalf("unexpected Bad node")
	}
	if node.Op != model.OpOperator || node.Name != "+" || len(node.Args) != 2 {
		t.Fatalf("node = %+v", node)
	}
	if node.Args[0].Float != 3 || node.Args[1].Float != 4 {
		t.Fatalf("operands = %v, %v", node.Args[0].Float, node.Args[1].Float)
	}
}

func TestDecodeCellReference(t *testing.T) {
	// single postfix opcode 0x01 (pop cell ref), then end.
	postfix := []byte{0x01, 0x03}

	// single-cell ref: kind(top 2 bits=0)<<6 | pad, sheet u16, col u16, rawRow u16, pad u8
	ref := make([]byte, 8)
	ref[0] = 0x00
	binary.LittleEndian.PutUint16(ref[1:3], 0)  // sheet 0
	binary.LittleEndian.PutUint16(ref[3:5], 5)  // col 5
	binary.LittleEndian.PutUint16(ref[5:7], 10) // row 10, no rel flags

	blob := buildBlob(postfix, ref)
	node, err := formula.Decode(blob, formula.DialectQPW, formula.Origin{Col: 100, Row: 100}, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if node.Op != model.OpCell || node.Cell.Col != 5 || node.Cell.Row != 10 {
		t.Fatalf("cell ref = %+v", node.Cell)
	}
}

func TestDecodeUnreducedStackIsBad(t *testing.T) {
	lit := func(v float64) []byte {
		b := make([]byte, 9)
		b[0] = 0x00
		binary.LittleEndian.PutUint64(b[1:], math.Float64bits(v))
		return b
	}
	postfix := append(lit(1), lit(2)...) // two literals, no operator to combine them, end
	postfix = append(postfix, 0x03)

	blob := buildBlob(postfix, nil)
	node, err := formula.Decode(blob, formula.DialectWB, formula.Origin{}, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !node.Bad {
		t.Fatalf("expected Bad node for unreduced stack")
	}
}

func TestTermRewrite(t *testing.T) {
	lit := func(v float64) []byte {
		b := make([]byte, 9)
		b[0] = 0x00
		binary.LittleEndian.PutUint64(b[1:], math.Float64bits(v))
		return b
	}
	// TERM(pmt=1, pint=2, fv=3) -> postfix: lit(1) lit(2) lit(3) TERM(0x55) end
	postfix := append(lit(1), lit(2)...)
	postfix = append(postfix, lit(3)...)
	postfix = append(postfix, 0x55, 0x03)

	blob := buildBlob(postfix, nil)
	node, err := formula.Decode(blob, formula.DialectWB, formula.Origin{}, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if node.Op != model.OpFunction || node.Name != "NPER" {
		t.Fatalf("expected rewritten NPER call, got %+v", node)
	}
	if len(node.Args) != 4 || node.Args[0].Float != 2 {
		t.Fatalf("NPER args = %+v", node.Args)
	}
}
