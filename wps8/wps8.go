// Package wps8 implements the Works 7/8/2000 ("WPS8") format driver (spec
// §4.8): it walks the CONTENTS substream's header index to locate named
// zones, decodes each zone with propblob, and replays the result into a
// sink.TextSink. The recursive typed-property decoding itself lives in
// propblob; this package only knows what each zone's ids mean.
package wps8

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-wps/wpscore/model"
	"github.com/go-wps/wpscore/propblob"
	"github.com/go-wps/wpscore/sink"
	"github.com/go-wps/wpscore/source"
	"github.com/go-wps/wpscore/wpsenc"
	"github.com/go-wps/wpscore/wpserr"
	"github.com/go-wps/wpscore/wpslog"
)

// Options configures a Parser.
type Options struct {
	Encoding wpsenc.Hint
	Logger   wpslog.Logger
}

// zoneEntry is one 24-byte header-index record (spec §4.8): a 4-char name,
// a 4-char type, a numeric id, and a (offset, length) span into CONTENTS.
type zoneEntry struct {
	name   string
	typ    string
	id     int
	offset uint32
	length uint32
}

func (z zoneEntry) bytes(contents []byte) []byte {
	start := int(z.offset)
	end := start + int(z.length)
	if start < 0 || start > len(contents) {
		return nil
	}
	if end > len(contents) {
		end = len(contents)
	}
	return contents[start:end]
}

// Parser drives the WPS8 header index and zone decoders (spec §4.8).
type Parser struct {
	contents []byte
	encoding wpsenc.Hint
	logger   wpslog.Logger

	// zonesByName mirrors libwps's NameMultiMap: a zone name ("DOP ",
	// "FRAM", "FONT", "BTEC", "BTEP", "STRS", ...) can occur more than
	// once, each occurrence covering a different id.
	zonesByName map[string][]zoneEntry

	docProps  DocProperties
	fontNames []string
	frames    []Frame
}

// New constructs a Parser over the CONTENTS substream of ss (spec §4.8's
// "CONTENTS substream" sniffed by dispatch's KindWorksV78 branch).
func New(ss source.StructuredSource, opts Options) (*Parser, error) {
	logger := opts.Logger
	if logger == nil {
		logger = wpslog.Nop
	}
	contents, err := ss.Open("CONTENTS")
	if err != nil {
		return nil, fmt.Errorf("wps8: open CONTENTS: %w", err)
	}
	p := &Parser{
		contents:    contents,
		encoding:    opts.Encoding,
		logger:      logger,
		zonesByName: make(map[string][]zoneEntry),
	}
	if err := p.parseHeaderIndex(); err != nil {
		return nil, err
	}
	return p, nil
}

// parseHeaderIndex walks the linked list of header-index pages starting at
// offset 0x18 (spec §4.8): each page is an
// {unknown:u16, localCount:u16, nextPageOffset:u32} header followed by
// localCount 24-byte zoneEntry records, chained via nextPageOffset until a
// page reports 0xFFFFFFFF.
func (p *Parser) parseHeaderIndex() error {
	if len(p.contents) < 0x18 {
		return fmt.Errorf("wps8: CONTENTS too short for a header index: %w", wpserr.ErrShortInput)
	}
	pos := 0x18
	for {
		if pos+8 > len(p.contents) {
			return fmt.Errorf("wps8: header index page at %#x runs past CONTENTS: %w", pos, wpserr.ErrMalformed)
		}
		localCount := int(le16(p.contents[pos+2:]))
		next := le32(p.contents[pos+4:])
		if localCount > 0x20 {
			return fmt.Errorf("wps8: header index page at %#x claims %d entries: %w", pos, localCount, wpserr.ErrMalformed)
		}
		pos += 8
		for i := 0; i < localCount; i++ {
			entry, n, ok := p.parseHeaderIndexEntry(pos)
			if !ok {
				p.logger.Warnf("wps8: bad header index entry at %#x, stopping", pos)
				return nil
			}
			p.zonesByName[entry.name] = append(p.zonesByName[entry.name], entry)
			pos = n
		}
		if next == 0xFFFFFFFF {
			return nil
		}
		pos = int(next)
	}
}

// parseHeaderIndexEntry reads one 24-byte (or longer, per its own cch
// prefix) entry starting at pos: cch:u16, name:[4]byte, id:u16, two
// reserved i16s, type:[4]byte, offset:u32, length:u32 (spec §4.8).
func (p *Parser) parseHeaderIndexEntry(pos int) (zoneEntry, int, bool) {
	if pos+2 > len(p.contents) {
		return zoneEntry{}, pos, false
	}
	cch := int(le16(p.contents[pos:]))
	if cch < 10 || pos+cch > len(p.contents) {
		return zoneEntry{}, pos, false
	}
	body := p.contents[pos+2 : pos+cch]
	if len(body) < 22 {
		return zoneEntry{}, pos, false
	}
	name := string(body[0:4])
	for _, c := range []byte(name) {
		if c != 0 && c != 0x20 && (c < 41 || c > 90) {
			return zoneEntry{}, pos, false
		}
	}
	id := int(le16(body[4:]))
	typ := string(body[10:14])
	offset := le32(body[14:])
	length := le32(body[18:])
	return zoneEntry{name: name, typ: typ, id: id, offset: offset, length: length}, pos + cch, true
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// Parse drives every recognised zone and replays the document into out
// (spec §4.8, §6).
func (p *Parser) Parse(ctx context.Context, out sink.TextSink) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out.StartDocument()

	for _, e := range p.zonesByName["FONT"] {
		names, err := parseFontTable(e.bytes(p.contents))
		if err != nil {
			p.logger.Warnf("wps8: FONT zone %d: %v", e.id, err)
			continue
		}
		p.fontNames = append(p.fontNames, names...)
	}

	for _, e := range p.zonesByName["DOP "] {
		if e.typ != "DOP " {
			continue
		}
		blob, err := propblob.Parse(e.bytes(p.contents))
		if err != nil {
			p.logger.Warnf("wps8: DOP zone: %v", err)
			continue
		}
		p.docProps = decodeDocProperties(&blob)
	}
	out.OpenPageSpan(p.docProps.toPageSpanSpec())

	for _, e := range p.zonesByName["FRAM"] {
		if e.typ != "FRAM" {
			continue
		}
		blob, err := propblob.Parse(e.bytes(p.contents))
		if err != nil {
			p.logger.Warnf("wps8: FRAM zone: %v", err)
			continue
		}
		p.frames = append(p.frames, decodeFrame(&blob))
	}

	fonts := p.decodeFODs("BTEC", readFont, p.fontNames)
	paras := p.decodeFODs("BTEP", readParagraph, nil)
	runs := mergeFODs(fonts, paras)

	if err := ctx.Err(); err != nil {
		return err
	}
	p.emitText(out, runs)

	for i, fr := range p.frames {
		p.emitFrame(out, i, fr)
	}

	out.ClosePageSpan()
	out.EndDocument()
	return nil
}

// decodeFODs reads every FDPC/FDPP zone named zoneName (spec §4.8's BTEC/
// BTEP binary tree leaves) and parses each into its run list. base, when
// non-nil, is the font-name table the apply function may need.
func (p *Parser) decodeFODs(zoneName string, apply func(blob *propblob.Data, base []string) model.Style, base []string) []fod {
	var out []fod
	for _, e := range p.zonesByName[zoneName] {
		runs, err := parseFDPZone(e.bytes(p.contents), apply, base)
		if err != nil {
			p.logger.Warnf("wps8: %s zone %d: %v", zoneName, e.id, err)
			continue
		}
		out = append(out, runs...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].limPos < out[j].limPos })
	return out
}

// emitText walks the STRS (string/text) zones in id order, applying the
// merged font/paragraph run list at each text-position boundary.
func (p *Parser) emitText(out sink.TextSink, runs []run) {
	entries := append([]zoneEntry(nil), p.zonesByName["STRS"]...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	pos := 0
	runIdx := 0
	advance := func(textPos int) {
		for runIdx < len(runs) && runs[runIdx].limPos <= textPos {
			r := runs[runIdx]
			if r.font != nil {
				out.SetFont(*r.font)
			}
			if r.para != nil {
				out.SetParagraph(*r.para)
			}
			runIdx++
		}
	}

	for _, e := range entries {
		text := wpsenc.Decode(e.bytes(p.contents), wpsenc.HintUTF16LE)
		for _, r := range text {
			advance(pos)
			switch r {
			case '\t':
				out.InsertTab()
			case '\r', '\n':
				out.InsertEOL()
			default:
				out.InsertUnicode(r)
			}
			pos++
		}
	}
	advance(pos)
}

func (p *Parser) emitFrame(out sink.TextSink, idx int, fr Frame) {
	sub := sink.SubDocument{}
	obj := sink.Object{ID: fr.objectID(), Kind: fr.Kind.String(), Data: nil}
	if fr.Kind == FrameObject {
		out.InsertObject(sink.Position(idx), obj)
		return
	}
	out.InsertTextBox(sink.Position(idx), sub)
}
