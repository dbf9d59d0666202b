package chunk

// KeyLen is the fixed length of a ChunkEngine password key (spec §4.3).
const KeyLen = 16

// decryptRegion XORs each byte with the 16-byte key cycled by position and
// then rotates the result right by 5 bits. offset is the position of b[0]
// within the encrypted region (position 0 is the first byte after the key
// record), so resuming decryption mid-stream uses the correct keystream
// phase.
func decryptRegion(key [KeyLen]byte, offset int, b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		k := key[(offset+i)%KeyLen]
		x := c ^ k
		out[i] = rotr5(x)
	}
	return out
}

// encryptRegion is decryptRegion's inverse: rotate left 5, then XOR with the
// cycled key. Used only by tests to check the round-trip invariant (spec
// §8, "Decryption idempotence").
func encryptRegion(key [KeyLen]byte, offset int, b []byte) []byte {
	out := make([]byte, len(b))
	for i, p := range b {
		k := key[(offset+i)%KeyLen]
		out[i] = rotl5(p) ^ k
	}
	return out
}

func rotr5(b byte) byte {
	return (b >> 5) | (b << 3)
}

func rotl5(b byte) byte {
	return (b << 5) | (b >> 3)
}
