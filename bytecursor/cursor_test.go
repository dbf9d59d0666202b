package bytecursor_test

import (
	"errors"
	"testing"

	"github.com/go-wps/wpscore/bytecursor"
	"github.com/go-wps/wpscore/wpserr"
)

func TestTypedReads(t *testing.T) {
	data := []byte{
		0x2A,       // u8 = 42
		0x34, 0x12, // u16le = 0x1234
		0x78, 0x56, 0x34, 0x12, // u32le = 0x12345678
		0, 0, 0, 0, 0, 0, 0xF0, 0x3F, // f64le = 1.0
	}
	c := bytecursor.New(data)

	u8, err := c.ReadU8()
	if err != nil || u8 != 0x2A {
		t.Fatalf("ReadU8 = %v, %v", u8, err)
	}
	u16, err := c.ReadU16LE()
	if err != nil || u16 != 0x1234 {
		t.Fatalf("ReadU16LE = %v, %v", u16, err)
	}
	u32, err := c.ReadU32LE()
	if err != nil || u32 != 0x12345678 {
		t.Fatalf("ReadU32LE = %v, %v", u32, err)
	}
	f64, err := c.ReadF64LE()
	if err != nil || f64 != 1.0 {
		t.Fatalf("ReadF64LE = %v, %v", f64, err)
	}
	if c.Remaining() != 0 {
		t.Fatalf("Remaining = %d, want 0", c.Remaining())
	}
}

func TestShortReadIsWrapped(t *testing.T) {
	c := bytecursor.New([]byte{0x01})
	if _, err := c.ReadU32LE(); !errors.Is(err, wpserr.ErrShortRead) {
		t.Fatalf("err = %v, want wpserr.ErrShortRead", err)
	}
}

func TestSeekAndSub(t *testing.T) {
	c := bytecursor.New([]byte{1, 2, 3, 4, 5, 6})
	if err := c.Seek(2); err != nil {
		t.Fatal(err)
	}
	sub, err := c.Sub(3)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Len() != 3 {
		t.Fatalf("sub.Len() = %d, want 3", sub.Len())
	}
	b, _ := sub.ReadBytes(3)
	if string(b) != string([]byte{3, 4, 5}) {
		t.Fatalf("sub bytes = %v", b)
	}
	if c.Tell() != 5 {
		t.Fatalf("c.Tell() = %d, want 5 (advanced past sub)", c.Tell())
	}
}

func TestReadMSFloatScaledInteger(t *testing.T) {
	// Bit 1 set (0x02): value is (raw >> 2). raw = (5<<2)|0x02 = 0x16.
	c := bytecursor.New([]byte{0x16, 0, 0, 0})
	v, err := c.ReadMSFloat()
	if err != nil {
		t.Fatal(err)
	}
	if v != 5 {
		t.Fatalf("ReadMSFloat = %v, want 5", v)
	}
}

func TestSeekNegativeIsError(t *testing.T) {
	c := bytecursor.New([]byte{1, 2, 3})
	if err := c.Seek(-1); err == nil {
		t.Fatal("expected error seeking to negative offset")
	}
}
