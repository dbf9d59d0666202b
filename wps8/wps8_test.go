package wps8_test

import (
	"context"
	"testing"

	"github.com/go-wps/wpscore/model"
	"github.com/go-wps/wpscore/propblob"
	"github.com/go-wps/wpscore/sink"
	"github.com/go-wps/wpscore/wps8"
)

func putU16(b []byte, off int, v uint16) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
}

func putU32(b []byte, off int, v uint32) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
	b[off+2] = byte(v >> 16)
	b[off+3] = byte(v >> 24)
}

func appendU16(b []byte, v uint16) []byte {
	return append(b, byte(v), byte(v>>8))
}

func appendU32(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func utf16Encode(s string) []uint16 {
	var out []uint16
	for _, r := range s {
		if r <= 0xFFFF {
			out = append(out, uint16(r))
			continue
		}
		r -= 0x10000
		out = append(out, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
	}
	return out
}

func utf16Bytes(s string) []byte {
	var out []byte
	for _, u := range utf16Encode(s) {
		out = appendU16(out, u)
	}
	return out
}

// fontTableBytes builds a "FONT" zone payload: a length-prefixed table of
// UTF-16LE font names.
func fontTableBytes(names ...string) []byte {
	var out []byte
	for _, n := range names {
		u := utf16Encode(n)
		out = appendU16(out, uint16(len(u)))
		for _, c := range u {
			out = appendU16(out, c)
		}
	}
	return out
}

// fdpZoneBytes builds one FDPC/FDPP zone: run count, cumulative position
// table, then each run's property blob back to back.
func fdpZoneBytes(limPos uint32, nodes []propblob.Data) []byte {
	blob := propblob.EncodeBlob(nodes)
	var out []byte
	out = appendU16(out, 1) // one run
	out = appendU32(out, 0)
	out = appendU32(out, limPos)
	out = append(out, blob...)
	return out
}

// zoneFixture is one named header-index entry plus its payload, used to
// assemble a fake CONTENTS substream (spec §4.8).
type zoneFixture struct {
	name string
	typ  string
	data []byte
}

// buildContents assembles a CONTENTS substream: a single header-index page
// at offset 0x18 listing every zone, followed by each zone's raw bytes.
func buildContents(zones []zoneFixture) []byte {
	contents := make([]byte, 0x18)

	header := make([]byte, 8)
	putU16(header, 2, uint16(len(zones)))
	putU32(header, 4, 0xFFFFFFFF)
	contents = append(contents, header...)

	entriesOffset := len(contents)
	entriesLen := 24 * len(zones)
	contents = append(contents, make([]byte, entriesLen)...)

	dataOffset := len(contents)
	for i, z := range zones {
		entry := contents[entriesOffset+24*i : entriesOffset+24*i+24]
		putU16(entry, 0, 24)
		copy(entry[2:6], z.name)
		typ := z.typ
		if typ == "" {
			typ = z.name
		}
		copy(entry[12:16], typ)
		putU32(entry, 16, uint32(dataOffset))
		putU32(entry, 20, uint32(len(z.data)))

		contents = append(contents, z.data...)
		dataOffset += len(z.data)
	}
	return contents
}

type fakeStructuredSource struct {
	streams map[string][]byte
}

func (f fakeStructuredSource) ListSubstreams() []string {
	var names []string
	for n := range f.streams {
		names = append(names, n)
	}
	return names
}

func (f fakeStructuredSource) Open(name string) ([]byte, error) {
	return f.streams[name], nil
}

// fakeSink records every TextSink call this test cares about.
type fakeSink struct {
	started, ended bool
	pageSpan       sink.PageSpanSpec
	fonts          []model.Style
	paras          []model.Style
	text           []rune
	tabs, eols     int
	objects        []sink.Object
	textBoxes      int
}

func (s *fakeSink) StartDocument()                { s.started = true }
func (s *fakeSink) EndDocument()                   { s.ended = true }
func (s *fakeSink) OpenPageSpan(spec sink.PageSpanSpec) { s.pageSpan = spec }
func (s *fakeSink) ClosePageSpan()                 {}
func (s *fakeSink) SetFont(style model.Style)      { s.fonts = append(s.fonts, style) }
func (s *fakeSink) SetParagraph(style model.Style) { s.paras = append(s.paras, style) }
func (s *fakeSink) InsertTab()                     { s.tabs++ }
func (s *fakeSink) InsertEOL()                     { s.eols++ }
func (s *fakeSink) InsertBreak(sink.BreakKind)      {}
func (s *fakeSink) InsertUnicode(r rune)            { s.text = append(s.text, r) }
func (s *fakeSink) InsertObject(_ sink.Position, obj sink.Object) {
	s.objects = append(s.objects, obj)
}
func (s *fakeSink) InsertTextBox(sink.Position, sink.SubDocument) { s.textBoxes++ }
func (s *fakeSink) InsertNote(sink.NoteKind, sink.SubDocument)    {}
func (s *fakeSink) InsertField(sink.FieldKind)                    {}

func TestParseEndToEnd(t *testing.T) {
	dop := propblob.EncodeBlob([]propblob.Data{
		{ID: 0, Kind: propblob.KindInt32, Int: 8 * 914400},
		{ID: 1, Kind: propblob.KindInt32, Int: 10 * 914400},
		{ID: 0x18, Kind: propblob.KindUInt8, UInt: 2},
	})
	fram := propblob.EncodeBlob([]propblob.Data{
		{ID: 1, Kind: propblob.KindUInt8, UInt: 8}, // object
		{ID: 4, Kind: propblob.KindInt32, Int: 914400},
		{ID: 5, Kind: propblob.KindInt32, Int: 2 * 914400},
		{ID: 0x11, Kind: propblob.KindArray, Children: []propblob.Data{
			{Kind: propblob.KindInt32, Int: 42},
		}},
	})
	font := fontTableBytes("Arial", "Courier")
	btec := fdpZoneBytes(2, []propblob.Data{
		{ID: 0x02, Kind: propblob.KindBool, Bool: true},
		{ID: 0x24, Kind: propblob.KindArray, Children: []propblob.Data{
			{Kind: propblob.KindInt32, Int: 1},
		}},
	})
	btep := fdpZoneBytes(2, []propblob.Data{
		{ID: 0x04, Kind: propblob.KindUInt8, UInt: 1},
	})
	strs := utf16Bytes("Hi")

	contents := buildContents([]zoneFixture{
		{name: "FONT", data: font},
		{name: "DOP ", data: dop},
		{name: "FRAM", data: fram},
		{name: "BTEC", data: btec},
		{name: "BTEP", data: btep},
		{name: "STRS", data: strs},
	})

	ss := fakeStructuredSource{streams: map[string][]byte{"CONTENTS": contents}}
	p, err := wps8.New(ss, wps8.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out := &fakeSink{}
	if err := p.Parse(context.Background(), out); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !out.started || !out.ended {
		t.Fatal("expected StartDocument/EndDocument")
	}
	if out.pageSpan.WidthTwips != 8*1440 || out.pageSpan.HeightTwips != 10*1440 {
		t.Fatalf("page span = %+v", out.pageSpan)
	}
	if !out.pageSpan.Landscape {
		t.Fatal("expected landscape page span")
	}
	if string(out.text) != "Hi" {
		t.Fatalf("text = %q", string(out.text))
	}
	if len(out.fonts) != 1 || !out.fonts[0].Bold || out.fonts[0].FontName != "Courier" {
		t.Fatalf("fonts = %+v", out.fonts)
	}
	if len(out.paras) != 1 || out.paras[0].HAlign != 1 {
		t.Fatalf("paras = %+v", out.paras)
	}
	if len(out.objects) != 1 || out.objects[0].Kind != "object" {
		t.Fatalf("objects = %+v", out.objects)
	}
}

func TestNewRejectsShortContents(t *testing.T) {
	ss := fakeStructuredSource{streams: map[string][]byte{"CONTENTS": []byte{1, 2, 3}}}
	if _, err := wps8.New(ss, wps8.Options{}); err == nil {
		t.Fatal("expected an error for a too-short CONTENTS stream")
	}
}

func TestFrameKindString(t *testing.T) {
	if wps8.FrameObject.String() != "object" {
		t.Fatalf("got %q", wps8.FrameObject.String())
	}
	if wps8.FrameTable.String() != "table" {
		t.Fatalf("got %q", wps8.FrameTable.String())
	}
}
