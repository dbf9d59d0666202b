package propblob_test

import (
	"reflect"
	"testing"

	"github.com/go-wps/wpscore/propblob"
)

func TestRoundTrip(t *testing.T) {
	nodes := []propblob.Data{
		{ID: 1, Kind: propblob.KindBool, Bool: true},
		{ID: 2, Kind: propblob.KindInt32, Int: -12345},
		{ID: 3, Kind: propblob.KindUInt16, UInt: 4000},
		{ID: 4, Kind: propblob.KindFloat64, Float: 3.5},
		{ID: 5, Kind: propblob.KindColor32, Color: propblob.Color{10, 20, 30, 255}},
		{ID: 6, Kind: propblob.KindBytes, Bytes: []byte("hello")},
		{ID: 7, Kind: propblob.KindStruct, Children: []propblob.Data{
			{ID: 1, Kind: propblob.KindInt8, Int: -1},
			{ID: 2, Kind: propblob.KindUInt8, UInt: 200},
		}},
	}

	wire := propblob.EncodeBlob(nodes)
	root, err := propblob.Parse(wire)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if root.Bad {
		t.Fatalf("root flagged Bad unexpectedly")
	}
	if !reflect.DeepEqual(root.Children, nodes) {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", root.Children, nodes)
	}
}

func TestLengthMismatchFlagsBad(t *testing.T) {
	// A Struct node (id=1, flagContainer|flagHasID|kindStruct) declaring a
	// 16-bit length of 100 but backed by only 2 bytes of payload.
	const kindStruct = 0x0C
	const flagHasID = 0x40
	const flagContainer = 0x80
	typeByte := byte(kindStruct) | flagHasID | flagContainer
	body := []byte{typeByte, 0x01, 100, 0, 0xAA, 0xBB}
	blob := make([]byte, 2+len(body))
	blob[0] = byte(len(blob))
	blob[1] = 0
	copy(blob[2:], body)

	root, err := propblob.Parse(blob)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(root.Children) != 1 {
		t.Fatalf("expected one child, got %d", len(root.Children))
	}
	if !root.Children[0].Bad {
		t.Fatalf("expected truncated struct to be flagged Bad")
	}
}

func TestFindHelpers(t *testing.T) {
	nodes := []propblob.Data{
		{ID: 9, Kind: propblob.KindInt16, Int: -7},
		{ID: 10, Kind: propblob.KindColor32, Color: propblob.Color{1, 2, 3, 4}},
	}
	root, err := propblob.Parse(propblob.EncodeBlob(nodes))
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := root.GetInt(9); !ok || v != -7 {
		t.Fatalf("GetInt(9) = %v, %v", v, ok)
	}
	if c, ok := root.GetColor(10); !ok || c != (propblob.Color{1, 2, 3, 4}) {
		t.Fatalf("GetColor(10) = %v, %v", c, ok)
	}
	if _, ok := root.GetInt(999); ok {
		t.Fatalf("GetInt(999) should not be found")
	}
}
