// Package numfmt renders spreadsheet cell values to their display string
// using a number format string. The public entry point is [FormatValue].
// All format-string parsing is delegated to [github.com/xuri/nfp]; this
// package only implements the rendering logic on top of the resulting
// token stream.
//
// Quattro Pro carries its cell format as a single file-format byte on the
// style record rather than an indexed numFmtId with a side table of
// built-ins; resolving that byte to a format string and deciding whether
// it denotes a date/time is package quattro's job (see quattro/format.go).
// This package only renders an already-resolved format string plus an
// already-decided date/non-date classification.
package numfmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/nfp"
)

// FormatValue renders a raw cell value v using fmtStr.
//
//   - fmtStr is the effective format string; pass "General" (or "") for
//     the default rendering.
//   - isDate selects the date/time rendering path over the numeric one.
//   - date1904 selects the epoch used when isDate is true.
//
// The dynamic type of v must be one of: nil, string, bool, float64. Any
// other type falls back to [fmt.Sprint].
func FormatValue(v any, fmtStr string, isDate bool, date1904 bool) string {
	effective := fmtStr
	if effective == "" {
		effective = "General"
	}

	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		return formatFloat(val, effective, isDate, date1904)
	default:
		return fmt.Sprint(v)
	}
}

// ── float64 dispatch ──────────────────────────────────────────────────────────

func formatFloat(val float64, effective string, isDate bool, date1904 bool) string {
	if effective == "General" {
		return renderGeneral(val)
	}

	ps := nfp.NumberFormatParser()
	sections := ps.Parse(effective)
	if len(sections) == 0 {
		return renderGeneral(val)
	}

	sec := selectSection(sections, val)

	if isDate {
		return renderDateTime(val, sec, date1904)
	}
	return renderNumber(val, sec, sections)
}

// selectSection picks the correct section based on the value's sign.
//
//	1 section  → applies to all values
//	2 sections → [0]=positive+zero  [1]=negative
//	3 sections → [0]=positive  [1]=negative  [2]=zero
//	4 sections → [0]=positive  [1]=negative  [2]=zero  [3]=text
func selectSection(sections []nfp.Section, val float64) nfp.Section {
	switch {
	case len(sections) == 1:
		return sections[0]
	case len(sections) == 2:
		if val < 0 {
			return sections[1]
		}
		return sections[0]
	default: // 3 or 4
		switch {
		case val > 0:
			return sections[0]
		case val < 0:
			return sections[1]
		default: // zero
			return sections[2]
		}
	}
}

// ── General rendering ─────────────────────────────────────────────────────────

// renderGeneral formats a float64 the way a spreadsheet's default "General"
// format does: integer values are rendered without a decimal point,
// fractional values use Go's shortest-representation float.
func renderGeneral(val float64) string {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return strconv.FormatFloat(val, 'G', -1, 64)
	}
	if val == math.Trunc(val) && math.Abs(val) < 1e15 {
		return strconv.FormatInt(int64(val), 10)
	}
	return strconv.FormatFloat(val, 'G', -1, 64)
}

// ── date/time renderer ────────────────────────────────────────────────────────

// renderDateTime renders a date/time serial number using the tokens in sec.
// serial is the raw serial (fractional days since the epoch).
func renderDateTime(serial float64, sec nfp.Section, date1904 bool) string {
	t, err := ConvertSerial(serial, date1904)
	if err != nil {
		return renderGeneral(serial)
	}

	hasAmPm := false
	for _, tok := range sec.Items {
		if tok.TType == nfp.TokenTypeDateTimes {
			upper := strings.ToUpper(tok.TValue)
			if upper == "AM/PM" || upper == "A/P" {
				hasAmPm = true
				break
			}
		}
	}

	var sb strings.Builder
	lastWasHour := false

	for _, tok := range sec.Items {
		switch tok.TType {

		case nfp.TokenTypeDateTimes:
			upper := strings.ToUpper(tok.TValue)
			switch {
			case lastWasHour && upper == "MM":
				sb.WriteString(fmt.Sprintf("%02d", t.Minute()))
			case lastWasHour && upper == "M":
				sb.WriteString(strconv.Itoa(t.Minute()))
			default:
				sb.WriteString(renderDateToken(upper, t, hasAmPm))
			}
			lastWasHour = upper == "H" || upper == "HH"

		case nfp.TokenTypeElapsedDateTimes:
			upper := strings.ToUpper(tok.TValue)
			sb.WriteString(renderElapsed(upper, serial))
			lastWasHour = upper == "H" || upper == "HH"

		case nfp.TokenTypeLiteral:
			// A literal separator between an hour and a following M/MM must
			// not break minute-vs-month disambiguation.
			sb.WriteString(tok.TValue)

		default:
			lastWasHour = false
		}
	}

	if sb.Len() == 0 {
		return renderGeneral(serial)
	}
	return sb.String()
}

func renderDateToken(upper string, t time.Time, hasAmPm bool) string {
	switch upper {
	case "YYYY":
		return fmt.Sprintf("%04d", t.Year())
	case "YY":
		return fmt.Sprintf("%02d", t.Year()%100)
	case "MMMM":
		return t.Month().String()
	case "MMM":
		return t.Month().String()[:3]
	case "MM":
		return fmt.Sprintf("%02d", int(t.Month()))
	case "M":
		return strconv.Itoa(int(t.Month()))
	case "DDDD":
		return t.Weekday().String()
	case "DDD":
		return t.Weekday().String()[:3]
	case "DD":
		return fmt.Sprintf("%02d", t.Day())
	case "D":
		return strconv.Itoa(t.Day())
	case "HH":
		h := t.Hour()
		if hasAmPm {
			h = h % 12
			if h == 0 {
				h = 12
			}
		}
		return fmt.Sprintf("%02d", h)
	case "H":
		h := t.Hour()
		if hasAmPm {
			h = h % 12
			if h == 0 {
				h = 12
			}
		}
		return strconv.Itoa(h)
	case "SS":
		return fmt.Sprintf("%02d", t.Second())
	case "S":
		return strconv.Itoa(t.Second())
	case "AM/PM":
		if t.Hour() < 12 {
			return "AM"
		}
		return "PM"
	case "A/P":
		if t.Hour() < 12 {
			return "A"
		}
		return "P"
	}
	return ""
}

// renderElapsed renders an elapsed-time token (h, hh, mm, ss, with brackets
// already stripped by the parser) using the raw serial (fractional days).
func renderElapsed(upper string, serial float64) string {
	switch upper {
	case "H", "HH":
		return strconv.Itoa(int(serial * 24))
	case "MM":
		return fmt.Sprintf("%02d", int(serial*24*60)%60)
	case "M":
		return strconv.Itoa(int(serial*24*60) % 60)
	case "SS":
		return fmt.Sprintf("%02d", int(serial*24*3600)%60)
	case "S":
		return strconv.Itoa(int(serial*24*3600) % 60)
	}
	return ""
}

// ConvertSerial converts a spreadsheet date serial (fractional days since
// the epoch) to a time.Time, handling both the 1900 and 1904 date systems.
func ConvertSerial(serial float64, date1904 bool) (time.Time, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 0 {
		return time.Time{}, fmt.Errorf("numfmt: invalid serial %v", serial)
	}
	fracSec := int64(math.Round((serial - math.Trunc(serial)) * 86400))
	if fracSec < 0 {
		fracSec = 0
	} else if fracSec > 86399 {
		fracSec = 86399
	}
	if date1904 {
		base := time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
		intPart := int(serial)
		return base.Add(time.Duration(intPart)*24*time.Hour + time.Duration(fracSec)*time.Second), nil
	}
	base := time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
	intPart := int(serial)
	var t time.Time
	switch {
	case intPart == 0:
		t = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(fracSec) * time.Second)
	case intPart >= 61:
		t = base.Add(time.Duration(intPart-1)*24*time.Hour + time.Duration(fracSec)*time.Second)
	default:
		t = base.Add(time.Duration(intPart)*24*time.Hour + time.Duration(fracSec)*time.Second)
	}
	return t, nil
}

// ── number renderer ───────────────────────────────────────────────────────────

// renderNumber renders a numeric (non-date) float64 value using the token
// section sec. sections is the full parsed set (needed to check whether
// the negative section has its own sign tokens).
func renderNumber(val float64, sec nfp.Section, sections []nfp.Section) string {
	type meta struct {
		hasPercent      bool
		hasThousands    bool
		decZeros        int // count of '0' placeholders after decimal point
		decHashes       int // count of '#' placeholders after decimal point
		intZeros        int // count of '0' placeholders before decimal point
		hasDecimal      bool
		hasExplicitSign bool
	}
	var m meta
	afterDecimal := false
	for _, tok := range sec.Items {
		switch tok.TType {
		case nfp.TokenTypePercent:
			m.hasPercent = true
		case nfp.TokenTypeThousandsSeparator:
			m.hasThousands = true
		case nfp.TokenTypeDecimalPoint:
			m.hasDecimal = true
			afterDecimal = true
		case nfp.TokenTypeZeroPlaceHolder:
			if afterDecimal {
				m.decZeros += len(tok.TValue)
			} else {
				m.intZeros += len(tok.TValue)
			}
		case nfp.TokenTypeHashPlaceHolder:
			if afterDecimal {
				m.decHashes += len(tok.TValue)
			}
		case nfp.TokenTypeLiteral:
			if tok.TValue == "+" || tok.TValue == "-" {
				m.hasExplicitSign = true
			}
		}
	}
	totalDecPlaces := m.decZeros + m.decHashes

	absVal := math.Abs(val)
	if m.hasPercent {
		absVal *= 100
	}

	var intStr, fracStr string
	if m.hasDecimal {
		formatted := strconv.FormatFloat(absVal, 'f', totalDecPlaces, 64)
		dotIdx := strings.IndexByte(formatted, '.')
		if dotIdx >= 0 {
			intStr = formatted[:dotIdx]
			fracStr = formatted[dotIdx+1:]
		} else {
			intStr = formatted
			fracStr = strings.Repeat("0", totalDecPlaces)
		}
		if m.decHashes > 0 && len(fracStr) > m.decZeros {
			trimTo := len(fracStr)
			for trimTo > m.decZeros && trimTo > 0 && fracStr[trimTo-1] == '0' {
				trimTo--
			}
			fracStr = fracStr[:trimTo]
		}
	} else {
		intStr = strconv.FormatFloat(absVal, 'f', 0, 64)
	}

	for len(intStr) < m.intZeros {
		intStr = "0" + intStr
	}

	if m.hasThousands && len(intStr) > 3 {
		intStr = insertThousandsSep(intStr)
	}

	// When the negative section is selected and it has no explicit sign
	// tokens of its own, only a lone section needs the minus prepended —
	// a dedicated negative section encodes the sign visually (parentheses,
	// colour) instead.
	needsMinus := val < 0 && !m.hasExplicitSign && len(sections) < 2

	var sb strings.Builder
	if needsMinus {
		sb.WriteByte('-')
	}

	intConsumed := false
	fracConsumed := false
	afterDecimal = false

	for _, tok := range sec.Items {
		switch tok.TType {
		case nfp.TokenTypeLiteral:
			sb.WriteString(tok.TValue)

		case nfp.TokenTypeDecimalPoint:
			if len(fracStr) > 0 {
				sb.WriteByte('.')
			}
			afterDecimal = true

		case nfp.TokenTypeZeroPlaceHolder, nfp.TokenTypeHashPlaceHolder:
			if afterDecimal {
				if !fracConsumed {
					sb.WriteString(fracStr)
					fracConsumed = true
				}
			} else if !intConsumed {
				sb.WriteString(intStr)
				intConsumed = true
			}

		case nfp.TokenTypePercent:
			sb.WriteByte('%')
		}
	}

	if !intConsumed && !afterDecimal {
		sb.WriteString(intStr)
	}
	if sb.Len() == 0 {
		return renderGeneral(val)
	}
	return sb.String()
}

// insertThousandsSep inserts commas every three digits from the right in
// an integer string (digits only, no sign).
func insertThousandsSep(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var b strings.Builder
	b.Grow(n + n/3)
	rem := n % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < n; i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
