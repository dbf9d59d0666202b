package numfmt

import "testing"

func TestFormatValueGeneral(t *testing.T) {
	if got := FormatValue(float64(42), "General", false, false); got != "42" {
		t.Fatalf("General integer: got %q", got)
	}
	if got := FormatValue(nil, "General", false, false); got != "" {
		t.Fatalf("nil: got %q", got)
	}
	if got := FormatValue(true, "General", false, false); got != "TRUE" {
		t.Fatalf("bool: got %q", got)
	}
}

func TestFormatValueNumber(t *testing.T) {
	got := FormatValue(float64(1234.5), "#,##0.00", false, false)
	if got != "1,234.50" {
		t.Fatalf("number: got %q", got)
	}
}

func TestFormatValuePercent(t *testing.T) {
	got := FormatValue(float64(0.256), "0.0%", false, false)
	if got != "25.6%" {
		t.Fatalf("percent: got %q", got)
	}
}

func TestFormatValueDate(t *testing.T) {
	// serial 1 is 1900-01-01 in the 1900 date system.
	got := FormatValue(float64(1), "YYYY-MM-DD", true, false)
	if got != "1900-01-01" {
		t.Fatalf("date: got %q", got)
	}
}

func TestFormatValueNegativeSection(t *testing.T) {
	got := FormatValue(float64(-5), "0;(0)", false, false)
	if got != "(5)" {
		t.Fatalf("negative section: got %q", got)
	}
}

func TestConvertSerial1904(t *testing.T) {
	tt, err := ConvertSerial(0, true)
	if err != nil {
		t.Fatal(err)
	}
	if tt.Year() != 1904 || tt.Month() != 1 || tt.Day() != 1 {
		t.Fatalf("1904 epoch: got %v", tt)
	}
}
