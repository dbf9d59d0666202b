// Package wpsenc resolves the legacy 8-bit and UTF-16LE text encodings used
// across the supported formats into UTF-8 Go strings.
package wpsenc

import (
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// Hint identifies which legacy encoding a byte string should be decoded
// with. The dispatcher picks a default from the sniffed format family (spec
// §4.4: "Windows-1252 for Windows-era formats, DOS-850 / CP-437 for
// DOS-era formats"); callers may override it.
type Hint int

const (
	HintWindows1252 Hint = iota
	HintCP850
	HintCP437
	HintUTF16LE
)

// Decode converts b from the encoding named by h into a UTF-8 string.
func Decode(b []byte, h Hint) string {
	switch h {
	case HintUTF16LE:
		return decodeUTF16LE(b)
	case HintCP850:
		return decodeCharmap(b, charmap.CodePage850)
	case HintCP437:
		return decodeCP437(b)
	default:
		return decodeCharmap(b, charmap.Windows1252)
	}
}

func decodeCharmap(b []byte, cm *charmap.Charmap) string {
	out := make([]rune, len(b))
	for i, c := range b {
		r := cm.DecodeByte(c)
		out[i] = r
	}
	return string(out)
}

// decodeUTF16LE decodes a little-endian UTF-16 byte string, used for the
// Works8 STRS text zones.
func decodeUTF16LE(b []byte) string {
	n := len(b) / 2
	units := make([]uint16, n)
	for i := 0; i < n; i++ {
		units[i] = uint16(b[2*i]) | uint16(b[2*i+1])<<8
	}
	return string(utf16.Decode(units))
}

// decodeCP437 decodes IBM PC code page 437, used by the oldest DOS-era
// documents (Multiplan, early Quattro). golang.org/x/text does not ship a
// CP437 table, so this is a small static array of the upper 128 code
// points; the lower 128 are identical to ASCII.
func decodeCP437(b []byte) string {
	out := make([]rune, len(b))
	for i, c := range b {
		if c < 0x80 {
			out[i] = rune(c)
		} else {
			out[i] = cp437Upper[c-0x80]
		}
	}
	return string(out)
}

var cp437Upper = [128]rune{
	'Ç', 'ü', 'é', 'â', 'ä', 'à', 'å', 'ç', 'ê', 'ë', 'è', 'ï', 'î', 'ì', 'Ä', 'Å',
	'É', 'æ', 'Æ', 'ô', 'ö', 'ò', 'û', 'ù', 'ÿ', 'Ö', 'Ü', '¢', '£', '¥', '₧', 'ƒ',
	'á', 'í', 'ó', 'ú', 'ñ', 'Ñ', 'ª', 'º', '¿', '⌐', '¬', '½', '¼', '¡', '«', '»',
	'░', '▒', '▓', '│', '┤', '╡', '╢', '╖', '╕', '╣', '║', '╗', '╝', '╜', '╛', '┐',
	'└', '┴', '┬', '├', '─', '┼', '╞', '╟', '╚', '╔', '╩', '╦', '╠', '═', '╬', '╧',
	'╨', '╤', '╥', '╙', '╘', '╒', '╓', '╫', '╪', '┘', '┌', '█', '▄', '▌', '▐', '▀',
	'α', 'ß', 'Γ', 'π', 'Σ', 'σ', 'µ', 'τ', 'Φ', 'Θ', 'Ω', 'δ', '∞', 'φ', 'ε', '∩',
	'≡', '±', '≥', '≤', '⌠', '⌡', '÷', '≈', '°', '∙', '·', '√', 'ⁿ', '²', '■', ' ',
}
