package quattro

import "testing"

func TestResolveFormatFixed(t *testing.T) {
	s, isDate := resolveFormat(0x02, nil) // fixed, 2 decimals
	if isDate {
		t.Fatal("fixed format should not be a date")
	}
	if s != "0.00" {
		t.Fatalf("got %q", s)
	}
}

func TestResolveFormatPercent(t *testing.T) {
	s, _ := resolveFormat(fmtCodePercent|0x01, nil)
	if s != "0.0%" {
		t.Fatalf("got %q", s)
	}
}

func TestResolveFormatDate(t *testing.T) {
	s, isDate := resolveFormat(fmtCodeDate1, nil)
	if !isDate {
		t.Fatal("expected date format")
	}
	if s != "DD-MMM-YYYY" {
		t.Fatalf("got %q", s)
	}
}

func TestResolveFormatUser(t *testing.T) {
	userFormats := []string{"0.000"}
	s, isDate := resolveFormat(fmtCodeUserBase, userFormats)
	if isDate {
		t.Fatal("0.000 is not a date format")
	}
	if s != "0.000" {
		t.Fatalf("got %q", s)
	}
}

func TestResolveFormatGeneral(t *testing.T) {
	s, isDate := resolveFormat(fmtCodeGeneral, nil)
	if s != "General" || isDate {
		t.Fatalf("got %q, %v", s, isDate)
	}
}
