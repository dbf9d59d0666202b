package wpsenc_test

import (
	"testing"

	"github.com/go-wps/wpscore/wpsenc"
)

func TestDecodeASCIIIsStableAcrossHints(t *testing.T) {
	hints := []wpsenc.Hint{wpsenc.HintWindows1252, wpsenc.HintCP850, wpsenc.HintCP437}
	for _, h := range hints {
		if got := wpsenc.Decode([]byte("Hello"), h); got != "Hello" {
			t.Fatalf("Decode(%q, %v) = %q, want unchanged ASCII", "Hello", h, got)
		}
	}
}

func TestDecodeCP437HighBytes(t *testing.T) {
	// 0xE9 is the Greek capital theta in CP437, distinct from its
	// Windows-1252 mapping ("e acute"): CP437's upper 128 code points
	// diverge entirely from Latin-1 above 0x80.
	got := wpsenc.Decode([]byte{0xE9}, wpsenc.HintCP437)
	want := wpsenc.Decode([]byte{0xE9}, wpsenc.HintWindows1252)
	if got == want {
		t.Fatalf("expected CP437 and Windows-1252 to disagree on 0xE9, both gave %q", got)
	}
}

func TestDecodeUTF16LE(t *testing.T) {
	// "Hi" little-endian: 'H'=0x0048, 'i'=0x0069.
	got := wpsenc.Decode([]byte{0x48, 0x00, 0x69, 0x00}, wpsenc.HintUTF16LE)
	if got != "Hi" {
		t.Fatalf("Decode(UTF16LE) = %q, want %q", got, "Hi")
	}
}

func TestDecodeUTF16LESurrogatePair(t *testing.T) {
	// U+1F600 ("grinning face") encodes as the surrogate pair D83D DE00.
	got := wpsenc.Decode([]byte{0x3D, 0xD8, 0x00, 0xDE}, wpsenc.HintUTF16LE)
	want := string(rune(0x1F600))
	if got != want {
		t.Fatalf("Decode(UTF16LE surrogate pair) = %q, want %q", got, want)
	}
}

func TestDecodeEmpty(t *testing.T) {
	if got := wpsenc.Decode(nil, wpsenc.HintWindows1252); got != "" {
		t.Fatalf("Decode(nil) = %q, want empty", got)
	}
}
