// Package objectid hands out stable, content-addressed identifiers for
// embedded objects (OLE packages, frame targets, graphics blobs) so that a
// sink can deduplicate and cross-reference them without relying on a
// format's own (often reused or missing) numbering.
package objectid

import (
	"hash/fnv"

	"github.com/google/uuid"
)

// Hash returns a deterministic UUID derived from blob's content: an FNV-128
// digest fed through uuid.FromBytes, mirroring the blob-hashing scheme used
// to key embedded media in spreadsheet archives.
func Hash(blob []byte) uuid.UUID {
	h := fnv.New128()
	h.Write(blob)
	sum := h.Sum(nil)
	id, err := uuid.FromBytes(sum)
	if err != nil {
		// fnv.New128's Sum is always exactly 16 bytes; FromBytes can only
		// fail on length mismatch.
		panic("objectid: unexpected fnv-128 digest length")
	}
	return id
}
