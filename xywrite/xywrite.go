package xywrite

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-wps/wpscore/model"
	"github.com/go-wps/wpscore/sink"
	"github.com/go-wps/wpscore/wpsenc"
	"github.com/go-wps/wpscore/wpslog"
)

const (
	markerOpen    = 0xAE
	markerClose   = 0xAF
	markerComplex = 0xFA
	markerZoneEnd = 0x1A
	markerEscape  = 0xFF
)

// Options configures a Parser.
type Options struct {
	Encoding wpsenc.Hint
	Logger   wpslog.Logger
	// Restricted limits tag recognition to the font/paragraph/field subset
	// PocketWord's grammar carries (spec §5); every other tag is skipped as
	// an opaque marker instead of applied.
	Restricted bool
}

// counter is one DC<n>-declared counter's live state.
type counter struct {
	kind  byte // '1', 'a', 'A', 'i', 'I'
	value int
}

// Parser drives a streaming interpretation of an XYWrite/PocketWord byte
// stream (spec §4.7): it keeps a running font/paragraph snapshot and a
// small amount of document state (named styles, counters, table/frame
// nesting) updated by each Format it encounters.
type Parser struct {
	data       []byte
	encoding   wpsenc.Hint
	logger     wpslog.Logger
	restricted bool

	font     model.Style
	para     model.Style
	pageSpan sink.PageSpanSpec

	styles     map[string][]Format
	counters   map[int]*counter
	properties map[string]string

	out sink.TextSink
	pos int // running offset into the emitted text stream, for Position args

	// table tracks an open CT...EC region: column widths, the 1-based
	// column the current cell belongs to, and the rows completed so far.
	table     []float64
	inTable   bool
	tableCol  int
	cellText  strings.Builder
	cellRow   []string
	cellRows  [][]string
}

// New constructs a Parser over data.
func New(data []byte, opts Options) *Parser {
	logger := opts.Logger
	if logger == nil {
		logger = wpslog.Nop
	}
	return &Parser{
		data:       data,
		encoding:   opts.Encoding,
		logger:     logger,
		restricted: opts.Restricted,
		styles:     make(map[string][]Format),
		counters:   make(map[int]*counter),
		properties: make(map[string]string),
	}
}

// Properties returns the document property list populated by post-zone-end
// label Formats (spec §4.7 "Metadata"), e.g. LBAU -> "AU" (author).
func (p *Parser) Properties() map[string]string {
	return p.properties
}

// Parse streams the document into out (spec §4.7).
func (p *Parser) Parse(ctx context.Context, out sink.TextSink) error {
	p.out = out
	out.StartDocument()
	out.SetFont(p.font)
	out.SetParagraph(p.para)

	i := 0
	for i < len(p.data) {
		if err := ctx.Err(); err != nil {
			return err
		}
		b := p.data[i]
		switch b {
		case markerZoneEnd:
			i = p.parseMetadataZone(i + 1)
			out.EndDocument()
			return nil

		case markerOpen:
			f, next := p.readFormat(i + 1)
			p.apply(f)
			i = next

		case markerEscape:
			if i+2 < len(p.data) && isHexDigit(p.data[i+1]) && isHexDigit(p.data[i+2]) {
				v, err := strconv.ParseUint(string(p.data[i+1:i+3]), 16, 8)
				if err == nil {
					p.emitByte(byte(v))
					i += 3
					continue
				}
			}
			p.logger.Warnf("xywrite: 0xFF escape at offset %d not followed by two hex digits, treating as literal byte", i)
			p.emitByte(b)
			i++

		default:
			p.emitByte(b)
			i++
		}
	}
	out.EndDocument()
	return nil
}

// readFormat reads one Format header starting just after its opening
// 0xAE, returning the parsed node and the index of the byte following its
// closing 0xAF.
func (p *Parser) readFormat(pos int) (Format, int) {
	start := pos
	for pos < len(p.data) && p.data[pos] != markerClose && p.data[pos] != markerComplex {
		pos++
	}
	header := string(p.data[start:pos])
	name, rest := splitNameArgs(header)
	f := Format{Name: name, Args: splitArgs(rest)}

	if pos >= len(p.data) {
		return f, pos
	}
	if p.data[pos] == markerClose {
		return f, pos + 1
	}

	// markerComplex: the format carries a payload running up to its
	// matching 0xAF, with one level of nested 0xAE...0xAF children and one
	// level of nested 0xFA allowed inside it.
	payloadStart := pos + 1
	depth := 1
	inChild := false // inside a nested 0xAE header, whose 0xFA shares its 0xAF
	j := payloadStart
	for j < len(p.data) {
		switch p.data[j] {
		case markerOpen:
			depth++
			inChild = true
		case markerComplex:
			if !inChild {
				depth++
			}
		case markerClose:
			depth--
			inChild = false
			if depth == 0 {
				goto closed
			}
		}
		j++
	}
closed:
	f.Payload = p.data[payloadStart:j]
	f.Children = parseChildFormats(f.Payload)
	if j < len(p.data) {
		j++ // consume the closing 0xAF
	}
	return f, j
}

// parseChildFormats extracts the nested 0xAE...0xAF Formats inside a
// complex payload (spec §3.6), e.g. a style definition's comma-separated
// body, or a table's CO/EC cell markers.
func parseChildFormats(payload []byte) []Format {
	var children []Format
	i := 0
	for i < len(payload) {
		if payload[i] == markerOpen {
			start := i + 1
			j := start
			for j < len(payload) && payload[j] != markerClose {
				j++
			}
			header := string(payload[start:j])
			name, rest := splitNameArgs(header)
			children = append(children, Format{Name: name, Args: splitArgs(rest)})
			i = j + 1
			continue
		}
		i++
	}
	return children
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// emitByte decodes one raw document byte under the active encoding and
// forwards it to the sink as a control character or a run of text.
func (p *Parser) emitByte(b byte) {
	if p.inTable {
		if b == '\t' {
			p.cellText.WriteByte('\t')
			return
		}
		s := wpsenc.Decode([]byte{b}, p.encoding)
		p.cellText.WriteString(s)
		return
	}
	p.pos++
	switch b {
	case '\t':
		p.out.InsertTab()
		return
	case '\r', '\n':
		p.out.InsertEOL()
		return
	}
	s := wpsenc.Decode([]byte{b}, p.encoding)
	for _, r := range s {
		p.out.InsertUnicode(r)
	}
}

// parseMetadataZone scans the post-0x1A metadata zone for Win4 files (spec
// §4.7 "Metadata"): Formats like LBAU (author), LBRV (revision). It stops
// at a second 0x1A or end of data and returns the index just past it.
func (p *Parser) parseMetadataZone(pos int) int {
	for pos < len(p.data) {
		b := p.data[pos]
		if b == markerZoneEnd {
			return pos + 1
		}
		if b == markerOpen {
			f, next := p.readFormat(pos + 1)
			p.applyLabel(f)
			pos = next
			continue
		}
		pos++
	}
	return pos
}
