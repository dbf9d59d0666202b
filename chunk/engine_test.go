package chunk_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-wps/wpscore/chunk"
	"github.com/go-wps/wpscore/wpserr"
)

func fixedRecord(id uint16, payload []byte) []byte {
	var out []byte
	out = append(out, byte(id), byte(id>>8))
	out = append(out, byte(len(payload)), byte(len(payload)>>8))
	return append(out, payload...)
}

func TestFixedShapeBasic(t *testing.T) {
	data := append(fixedRecord(0x10, []byte{1, 2, 3}), fixedRecord(0x20, []byte{9})...)
	e := chunk.New(data, chunk.Options{Shape: chunk.ShapeFixed})

	r, ok := e.Next()
	if !ok || r.ID != 0x10 || !bytes.Equal(r.Payload, []byte{1, 2, 3}) {
		t.Fatalf("first record = %+v, %v", r, ok)
	}
	r, ok = e.Next()
	if !ok || r.ID != 0x20 || !bytes.Equal(r.Payload, []byte{9}) {
		t.Fatalf("second record = %+v, %v", r, ok)
	}
	if _, ok := e.Next(); ok {
		t.Fatalf("expected end of stream")
	}
	if e.Err() != nil {
		t.Fatalf("unexpected error: %v", e.Err())
	}
}

func TestFixedShapeBigBlock(t *testing.T) {
	payload := bytes.Repeat([]byte{0x7A}, 70000)
	var rec []byte
	rec = append(rec, 0x00, 0x80) // id 0 with big-block bit set
	length := make([]byte, 4)
	length[0] = byte(len(payload))
	length[1] = byte(len(payload) >> 8)
	length[2] = byte(len(payload) >> 16)
	length[3] = byte(len(payload) >> 24)
	rec = append(rec, length...)
	rec = append(rec, payload...)

	e := chunk.New(rec, chunk.Options{Shape: chunk.ShapeFixed})
	r, ok := e.Next()
	if !ok {
		t.Fatalf("Next failed: %v", e.Err())
	}
	if !r.BigBlock || r.ID != 0 || len(r.Payload) != len(payload) {
		t.Fatalf("big-block record mismatch: bigBlock=%v id=%#x len=%d", r.BigBlock, r.ID, len(r.Payload))
	}
}

// classicRecord builds one classic-shape record; if split is non-empty, the
// payload is carried as a 0x10F continuation chain instead of inline bytes.
func classicRecord(id uint16, payload []byte, split []int) []byte {
	var out []byte
	if len(split) == 0 {
		out = append(out, byte(id), byte(id>>8))
		out = append(out, byte(len(payload)), byte(len(payload)>>8))
		return append(out, payload...)
	}
	out = append(out, byte(id), byte(id>>8), 0x00, 0xFF)
	pos := 0
	for _, n := range split {
		chunkBytes := payload[pos : pos+n]
		pos += n
		out = append(out, 0x0F, 0x01, byte(len(chunkBytes)), byte(len(chunkBytes)>>8))
		out = append(out, chunkBytes...)
	}
	return out
}

func TestClassicShapeContinuationReassembly(t *testing.T) {
	payload := []byte("abcdefghijklmnop")
	data := classicRecord(0x50, payload, []int{6, 6, 4})
	data = append(data, classicRecord(0x60, []byte{1, 2}, nil)...)

	e := chunk.New(data, chunk.Options{Shape: chunk.ShapeClassic})
	r, ok := e.Next()
	if !ok {
		t.Fatalf("Next failed: %v", e.Err())
	}
	if r.ID != 0x50 || !bytes.Equal(r.Payload, payload) {
		t.Fatalf("reassembled payload mismatch: id=%#x payload=%q", r.ID, r.Payload)
	}
	r, ok = e.Next()
	if !ok || r.ID != 0x60 || !bytes.Equal(r.Payload, []byte{1, 2}) {
		t.Fatalf("trailing record mismatch: %+v, %v", r, ok)
	}
	if _, ok := e.Next(); ok {
		t.Fatalf("expected end of stream")
	}
}

// classicKeyRecordID mirrors chunk's unexported wb key-record id (0x4B);
// duplicated here since this is an external (_test) package.
const classicKeyRecordID = 0x4B

func encryptForTest(key [chunk.KeyLen]byte, offset int, b []byte) []byte {
	out := make([]byte, len(b))
	for i, p := range b {
		k := key[(offset+i)%chunk.KeyLen]
		rotl := (p << 5) | (p >> 3)
		out[i] = rotl ^ k
	}
	return out
}

func TestDecryptionRoundTripsThroughEngine(t *testing.T) {
	var key [chunk.KeyLen]byte
	for i := range key {
		key[i] = byte(i * 7)
	}

	plain := []byte("the quick brown fox jumps over the lazy dog")
	cipherBytes := encryptForTest(key, 0, plain)

	data := classicRecord(classicKeyRecordID, []byte{0}, nil)
	data = append(data, classicRecord(0x70, cipherBytes, nil)...)

	e := chunk.New(data, chunk.Options{Shape: chunk.ShapeClassic, Key: key[:]})
	r, ok := e.Next()
	if !ok {
		t.Fatalf("Next (key record) failed: %v", e.Err())
	}
	if !e.IsEncrypted() {
		t.Fatalf("expected IsEncrypted after key record")
	}
	_ = r

	r, ok = e.Next()
	if !ok {
		t.Fatalf("Next (ciphertext record) failed: %v", e.Err())
	}
	if !bytes.Equal(r.Payload, plain) {
		t.Fatalf("decrypted payload = %q, want %q", r.Payload, plain)
	}
}

// fixedKeyRecordID mirrors chunk's unexported qpw key-record id (0x4);
// duplicated here since this is an external (_test) package.
const fixedKeyRecordID = 0x4

// TestDecryptionRoundTripsThroughEngineFixed covers spec §8 scenario 6: a
// qpw password record followed by an encrypted strings record (id 0x407),
// with a further encrypted record after it. The trailing record's header
// must come back untouched — only declared payload bytes are ever part of
// the keystream.
func TestDecryptionRoundTripsThroughEngineFixed(t *testing.T) {
	var key [chunk.KeyLen]byte
	for i := range key {
		key[i] = byte(i*11 + 3)
	}

	plain := []byte("quattro pro encrypted strings record payload")
	cipherBytes := encryptForTest(key, 0, plain)

	trailing := []byte{5, 6, 7}
	cipherTrailing := encryptForTest(key, len(plain), trailing)

	data := fixedRecord(fixedKeyRecordID, make([]byte, 20))
	data = append(data, fixedRecord(0x407, cipherBytes)...)
	data = append(data, fixedRecord(0x99, cipherTrailing)...)

	e := chunk.New(data, chunk.Options{Shape: chunk.ShapeFixed, Key: key[:]})

	r, ok := e.Next()
	if !ok {
		t.Fatalf("Next (key record) failed: %v", e.Err())
	}
	if !e.IsEncrypted() {
		t.Fatalf("expected IsEncrypted after key record")
	}
	_ = r

	r, ok = e.Next()
	if !ok {
		t.Fatalf("Next (ciphertext record) failed: %v", e.Err())
	}
	if r.ID != 0x407 || !bytes.Equal(r.Payload, plain) {
		t.Fatalf("decrypted payload: id=%#x payload=%q, want id=0x407 payload=%q", r.ID, r.Payload, plain)
	}

	r, ok = e.Next()
	if !ok {
		t.Fatalf("Next (trailing record) failed: %v", e.Err())
	}
	if r.ID != 0x99 || !bytes.Equal(r.Payload, trailing) {
		t.Fatalf("trailing record header corrupted: id=%#x payload=%v, want id=0x99 payload=%v", r.ID, r.Payload, trailing)
	}

	if _, ok := e.Next(); ok {
		t.Fatalf("expected end of stream")
	}
}

func TestMissingKeyYieldsNeedsPassword(t *testing.T) {
	data := classicRecord(classicKeyRecordID, []byte{0}, nil)
	e := chunk.New(data, chunk.Options{Shape: chunk.ShapeClassic})
	if _, ok := e.Next(); ok {
		t.Fatalf("expected Next to fail without a key")
	}
	if !errors.Is(e.Err(), wpserr.ErrNeedsPassword) {
		t.Fatalf("Err() = %v, want ErrNeedsPassword", e.Err())
	}
	if !e.IsEncrypted() {
		t.Fatalf("expected IsEncrypted even without a key")
	}
}
