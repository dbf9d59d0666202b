package xywrite_test

import (
	"context"
	"testing"

	"github.com/go-wps/wpscore/model"
	"github.com/go-wps/wpscore/sink"
	"github.com/go-wps/wpscore/xywrite"
)

const (
	markerOpen    = 0xAE
	markerClose   = 0xAF
	markerZoneEnd = 0x1A
)

// fakeSink records every TextSink call this test cares about.
type fakeSink struct {
	started, ended bool
	fonts          []model.Style
	text           []rune
	textBoxes      []sink.SubDocument
}

func (s *fakeSink) StartDocument()                      { s.started = true }
func (s *fakeSink) EndDocument()                         { s.ended = true }
func (s *fakeSink) OpenPageSpan(sink.PageSpanSpec)       {}
func (s *fakeSink) ClosePageSpan()                       {}
func (s *fakeSink) SetFont(style model.Style)            { s.fonts = append(s.fonts, style) }
func (s *fakeSink) SetParagraph(model.Style)             {}
func (s *fakeSink) InsertTab()                           {}
func (s *fakeSink) InsertEOL()                           {}
func (s *fakeSink) InsertBreak(sink.BreakKind)           {}
func (s *fakeSink) InsertUnicode(r rune)                 { s.text = append(s.text, r) }
func (s *fakeSink) InsertObject(sink.Position, sink.Object) {}
func (s *fakeSink) InsertTextBox(_ sink.Position, sub sink.SubDocument) {
	s.textBoxes = append(s.textBoxes, sub)
}
func (s *fakeSink) InsertNote(sink.NoteKind, sink.SubDocument) {}
func (s *fakeSink) InsertField(sink.FieldKind)                 {}

// TestParseBoldWord is spec §8 scenario 4: "A" then bold "B" then normal
// "C" renders "ABC" with B bold and A/C normal weight.
func TestParseBoldWord(t *testing.T) {
	var data []byte
	data = append(data, 'A')
	data = append(data, markerOpen)
	data = append(data, []byte("MDBO")...)
	data = append(data, markerClose)
	data = append(data, 'B')
	data = append(data, markerOpen)
	data = append(data, []byte("MDNM")...)
	data = append(data, markerClose)
	data = append(data, 'C')
	data = append(data, markerZoneEnd)

	p := xywrite.New(data, xywrite.Options{})
	out := &fakeSink{}
	if err := p.Parse(context.Background(), out); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !out.started || !out.ended {
		t.Fatal("expected StartDocument/EndDocument")
	}
	if string(out.text) != "ABC" {
		t.Fatalf("text = %q", string(out.text))
	}
	// fonts[0] is the initial default SetFont emitted at StartDocument;
	// fonts[1] is after MDBO (bold); fonts[2] is after MDNM (reset).
	if len(out.fonts) != 3 {
		t.Fatalf("fonts = %+v", out.fonts)
	}
	if out.fonts[1].Bold != true {
		t.Fatalf("expected bold after MDBO, got %+v", out.fonts[1])
	}
	if out.fonts[2].Bold != false {
		t.Fatalf("expected normal after MDNM, got %+v", out.fonts[2])
	}
}

// TestParseTable is spec §8 scenario 5: a 2-column table whose second row
// has only one explicit cell, padded with an empty second cell.
func TestParseTable(t *testing.T) {
	var data []byte
	data = append(data, markerOpen)
	data = append(data, []byte("CT72pt,72pt")...)
	data = append(data, markerClose)
	data = append(data, 'X')
	data = append(data, markerOpen)
	data = append(data, []byte("CO2")...)
	data = append(data, markerClose)
	data = append(data, 'Y')
	data = append(data, markerOpen)
	data = append(data, []byte("CO1")...)
	data = append(data, markerClose)
	data = append(data, 'Z')
	data = append(data, markerOpen)
	data = append(data, []byte("EC")...)
	data = append(data, markerClose)

	p := xywrite.New(data, xywrite.Options{})
	out := &fakeSink{}
	if err := p.Parse(context.Background(), out); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(out.textBoxes) != 1 {
		t.Fatalf("expected one table text box, got %d", len(out.textBoxes))
	}
	sub := out.textBoxes[0]
	if len(sub.Events) != 1 {
		t.Fatalf("expected one flattened table event, got %+v", sub.Events)
	}
	want := "X\tY\nZ\t"
	if sub.Events[0].Text != want {
		t.Fatalf("table text = %q, want %q", sub.Events[0].Text, want)
	}
}

// TestParseMetadataLabel covers the Win4 post-zone-end "LBAU" author label
// (spec §4.7 "Metadata").
func TestParseMetadataLabel(t *testing.T) {
	var data []byte
	data = append(data, 'H', 'i', markerZoneEnd)
	data = append(data, markerOpen)
	data = append(data, []byte("LBAU")...)
	data = append(data, markerClose)
	data = append(data, markerZoneEnd)

	p := xywrite.New(data, xywrite.Options{})
	out := &fakeSink{}
	if err := p.Parse(context.Background(), out); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if string(out.text) != "Hi" {
		t.Fatalf("text = %q", string(out.text))
	}
	if _, ok := p.Properties()["AU"]; !ok {
		t.Fatalf("expected an AU property from LBAU, got %+v", p.Properties())
	}
}
