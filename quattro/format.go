package quattro

import (
	"fmt"
	"strings"

	"github.com/go-wps/wpscore/model"
	"github.com/go-wps/wpscore/numfmt"
)

// Quattro/1-2-3-family file-format byte: low 7 bits select a format code,
// bit 7 (0x80) is the international/currency-symbol flag for the
// currency/comma codes. Several codes pack a decimal-place count into the
// low nibble of the code itself (codes 0x00-0x0F = fixed, 0x10-0x1F =
// scientific, 0x20-0x2F = currency, 0x30-0x3F = percent, 0x40-0x4F =
// comma), matching the classic 1-2-3 cell-format byte layout that Quattro
// Pro inherited for backward file compatibility.
const (
	fmtMaskDecimals = 0x0F
	fmtMaskCode     = 0x70
	fmtIntlFlag     = 0x80

	fmtCodeFixed      = 0x00
	fmtCodeScientific = 0x10
	fmtCodeCurrency   = 0x20
	fmtCodePercent    = 0x30
	fmtCodeComma      = 0x40

	fmtCodeGeneral  = 0x70 // 0x70 escapes the decimal-count scheme below
	fmtCodeDate1    = 0x71 // long international date: DD-MMM-YYYY
	fmtCodeDate2    = 0x72 // DD-MMM
	fmtCodeDate3    = 0x73 // MMM-YYYY
	fmtCodeDate4    = 0x74 // long international time: HH:MM:SS
	fmtCodeDate5    = 0x75 // HH:MM
	fmtCodeText     = 0x76
	fmtCodeHidden   = 0x77
	fmtCodeUserBase = 0x78 // 0x78-0x7F index into the document's user-format table
)

// resolveFormat maps a Quattro file-format byte to an ECMA-376-style
// format string and reports whether the format renders as a date/time.
// userFormats holds any custom format strings decoded from the document's
// named-style records (spec §4.5); codes 0x78-0x7F index into it.
func resolveFormat(formatByte byte, userFormats []string) (fmtStr string, isDate bool) {
	if formatByte == fmtCodeGeneral {
		return "General", false
	}
	if formatByte >= fmtCodeUserBase && formatByte <= 0x7F {
		idx := int(formatByte - fmtCodeUserBase)
		if idx < len(userFormats) && userFormats[idx] != "" {
			return userFormats[idx], isCustomDateFormat(userFormats[idx])
		}
		return "General", false
	}

	switch formatByte {
	case fmtCodeDate1:
		return "DD-MMM-YYYY", true
	case fmtCodeDate2:
		return "DD-MMM", true
	case fmtCodeDate3:
		return "MMM-YYYY", true
	case fmtCodeDate4:
		return "HH:MM:SS", true
	case fmtCodeDate5:
		return "HH:MM", true
	case fmtCodeText:
		return "@", false
	case fmtCodeHidden:
		return ";;;", false
	}

	decimals := int(formatByte & fmtMaskDecimals)
	intl := formatByte&fmtIntlFlag != 0
	switch formatByte & fmtMaskCode {
	case fmtCodeFixed:
		return fixedFormat(decimals, false), false
	case fmtCodeScientific:
		return scientificFormat(decimals), false
	case fmtCodeCurrency:
		return currencyFormat(decimals, intl), false
	case fmtCodePercent:
		return percentFormat(decimals), false
	case fmtCodeComma:
		return fixedFormat(decimals, true), false
	}
	return "General", false
}

func fixedFormat(decimals int, thousands bool) string {
	var sb strings.Builder
	if thousands {
		sb.WriteString("#,##0")
	} else {
		sb.WriteString("0")
	}
	if decimals > 0 {
		sb.WriteByte('.')
		sb.WriteString(strings.Repeat("0", decimals))
	}
	return sb.String()
}

func scientificFormat(decimals int) string {
	var sb strings.Builder
	sb.WriteString("0")
	if decimals > 0 {
		sb.WriteByte('.')
		sb.WriteString(strings.Repeat("0", decimals))
	}
	sb.WriteString("E+00")
	return sb.String()
}

func currencyFormat(decimals int, intl bool) string {
	symbol := "$"
	if intl {
		symbol = "" // international symbol resolved by the active locale, not here
	}
	base := fixedFormat(decimals, true)
	return fmt.Sprintf("%s%s;(%s%s)", symbol, base, symbol, base)
}

func percentFormat(decimals int) string {
	var sb strings.Builder
	sb.WriteString("0")
	if decimals > 0 {
		sb.WriteByte('.')
		sb.WriteString(strings.Repeat("0", decimals))
	}
	sb.WriteByte('%')
	return sb.String()
}

// isCustomDateFormat scans an unquoted custom format string for date/time
// token letters, the way a BIFF-family reader scans a custom numFmtId's
// format string to classify it.
func isCustomDateFormat(fmtStr string) bool {
	inQuote := false
	for _, ch := range fmtStr {
		switch {
		case inQuote:
			if ch == '"' {
				inQuote = false
			}
		case ch == '"':
			inQuote = true
		case ch == 'd' || ch == 'D' || ch == 'm' || ch == 'M' ||
			ch == 'y' || ch == 'Y' || ch == 'h' || ch == 'H':
			return true
		}
	}
	return false
}

// FormatCellValue renders a cell's display string using the document's
// style table and user-format list (spec §4.5's "file-format byte" field).
func (p *Parser) FormatCellValue(cv model.CellValue) string {
	style := p.model.Styles.Get(cv.Style)
	fmtStr, isDate := resolveFormat(style.FormatByte, p.userFormats)

	var v any
	switch cv.Kind {
	case model.CellFloat, model.CellFormula:
		v = cv.Float
	case model.CellString:
		v = cv.Str
	case model.CellBool:
		v = cv.Bool
	case model.CellError:
		return "#ERR"
	default:
		return ""
	}
	return numfmt.FormatValue(v, fmtStr, isDate, p.date1904)
}
