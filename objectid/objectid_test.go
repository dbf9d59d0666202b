package objectid_test

import (
	"testing"

	"github.com/go-wps/wpscore/objectid"
)

func TestHashIsDeterministic(t *testing.T) {
	blob := []byte("an embedded OLE package's raw bytes")
	a := objectid.Hash(blob)
	b := objectid.Hash(blob)
	if a != b {
		t.Fatalf("Hash(%q) = %v, %v, want equal", blob, a, b)
	}
}

func TestHashDistinguishesContent(t *testing.T) {
	a := objectid.Hash([]byte("frame target A"))
	b := objectid.Hash([]byte("frame target B"))
	if a == b {
		t.Fatalf("distinct blobs hashed to the same id %v", a)
	}
}

func TestHashEmptyBlob(t *testing.T) {
	if objectid.Hash(nil) != objectid.Hash([]byte{}) {
		t.Fatal("nil and empty blobs should hash identically")
	}
}
