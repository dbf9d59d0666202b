// Package dispatch implements the format-identification decision table
// (spec §4.4) and the top-level entry point that constructs the matching
// parser and drives it to completion.
package dispatch

import (
	"bytes"
	"fmt"

	"github.com/go-wps/wpscore/source"
	"github.com/go-wps/wpscore/source/cfb"
	"github.com/go-wps/wpscore/wpserr"
	"github.com/go-wps/wpscore/wpsenc"
)

// Kind is the coarse document family a sniff resolves to.
type Kind int

const (
	KindUnknown Kind = iota
	KindWorksV2
	KindWorksDatabase
	KindQuattroDOS
	KindQuattroWB
	KindLotus
	KindMSWrite
	KindMSWordDOS
	KindPocketWord
	KindMultiplan
	KindXYWriteDOS
	KindXYWriteWin4
	KindWorksMac
	KindWorksV78
	KindQuattroStructured
	KindLotusStructured
)

// Creator mirrors libwps's notion of "which application produced this
// file", surfaced to callers mostly for diagnostics.
type Creator string

const (
	CreatorMSWorks    Creator = "Microsoft Works"
	CreatorQuattroPro Creator = "Quattro Pro"
	CreatorLotus123   Creator = "Lotus 1-2-3"
	CreatorMSWrite    Creator = "Microsoft Write"
	CreatorMSWordDOS  Creator = "Microsoft Word for DOS"
	CreatorPocketWord Creator = "Pocket Word"
	CreatorMultiplan  Creator = "Multiplan"
	CreatorXYWrite    Creator = "XyWrite"
)

// Sniffed is the result of identifying a document, spec §6 "Sniff return".
type Sniffed struct {
	Kind             Kind
	Creator          Creator
	Version          int32
	NeedsEncoding    bool
	DefaultEncoding  wpsenc.Hint
	StructuredSource source.StructuredSource // non-nil only for structured container kinds
}

const sniffWindow = 128

// Sniff identifies the format of bs, reading up to the first 128 bytes and,
// for structured containers, the substream directory (spec §4.4). Ties
// resolve by specificity: version-qualified signatures are checked before
// generic fallbacks.
func Sniff(bs source.ByteSource, ss source.StructuredSource) (Sniffed, error) {
	if ss != nil {
		return sniffStructured(ss)
	}
	data := bs.Bytes()
	if len(data) == 0 {
		return Sniffed{}, fmt.Errorf("dispatch: empty input: %w", wpserr.ErrShortInput)
	}
	head := data
	if len(head) > sniffWindow {
		head = head[:sniffWindow]
	}
	return sniffFlat(data, head)
}

func sniffFlat(full, head []byte) (Sniffed, error) {
	switch {
	case matchWorksV2(head):
		return Sniffed{Kind: KindWorksV2, Creator: CreatorMSWorks, DefaultEncoding: wpsenc.HintWindows1252}, nil
	case len(head) >= 2 && head[0] == 0xFF && head[1] == 0x54:
		return Sniffed{Kind: KindWorksDatabase, Creator: CreatorMSWorks, DefaultEncoding: wpsenc.HintWindows1252}, nil
	case matchQuattroDOS(head):
		return Sniffed{Kind: KindQuattroDOS, Creator: CreatorQuattroPro, DefaultEncoding: wpsenc.HintCP437}, nil
	case matchQuattroWB(head):
		return Sniffed{Kind: KindQuattroWB, Creator: CreatorQuattroPro, DefaultEncoding: wpsenc.HintCP850}, nil
	case len(head) >= 4 && head[0] == 0x00 && head[1] == 0x00 && head[2] == 0x1A && head[3] == 0x00:
		return Sniffed{Kind: KindLotus, Creator: CreatorLotus123, DefaultEncoding: wpsenc.HintCP437}, nil
	case matchWriteFamily(head):
		if len(head) > 96 && head[96] != 0 {
			return Sniffed{Kind: KindMSWrite, Creator: CreatorMSWrite, DefaultEncoding: wpsenc.HintWindows1252}, nil
		}
		return Sniffed{Kind: KindMSWordDOS, Creator: CreatorMSWordDOS, DefaultEncoding: wpsenc.HintCP437}, nil
	case bytes.HasPrefix(head, []byte{0x7B, 0x5C, 0x70, 0x77, 0x69, 0x15}):
		return Sniffed{Kind: KindPocketWord, Creator: CreatorPocketWord, DefaultEncoding: wpsenc.HintWindows1252}, nil
	case bytes.HasPrefix(head, []byte{0x08, 0xE7}), bytes.HasPrefix(head, []byte{0x0C, 0xEC}), bytes.HasPrefix(head, []byte{0x0C, 0xED}):
		return Sniffed{Kind: KindMultiplan, Creator: CreatorMultiplan, DefaultEncoding: wpsenc.HintCP437}, nil
	case len(full) > 0 && full[len(full)-1] == 0x1A:
		return Sniffed{Kind: KindXYWriteDOS, Creator: CreatorXYWrite, DefaultEncoding: wpsenc.HintCP437}, nil
	case bytes.HasSuffix(full, []byte{0x01, 0xFE, 0xFC, 0xFE, 0x00}):
		return Sniffed{Kind: KindXYWriteWin4, Creator: CreatorXYWrite, DefaultEncoding: wpsenc.HintWindows1252}, nil
	default:
		return Sniffed{}, wpserr.ErrUnsupported
	}
}

func matchWorksV2(head []byte) bool {
	if len(head) < 3 {
		return false
	}
	size := head[0]
	return size <= 7 && head[1] == 0xFE && head[2] == 0xFE
}

func matchQuattroDOS(head []byte) bool {
	if len(head) < 7 {
		return false
	}
	if head[0] != 0x00 || head[1] != 0x00 || head[2] != 0x02 || head[5] != 0x00 {
		return false
	}
	return head[6] == 0x20 || head[6] == 0x21
}

func matchQuattroWB(head []byte) bool {
	if len(head) < 7 {
		return false
	}
	if head[0] != 0x00 || head[1] != 0x00 || head[2] != 0x02 || head[5] != 0x10 {
		return false
	}
	return head[6] == 0x01 || head[6] == 0x02
}

func matchWriteFamily(head []byte) bool {
	if len(head) < 6 {
		return false
	}
	return (head[0] == 0x31 || head[0] == 0x32) && head[1] == 0xBE && head[2] == 0x00 && head[3] == 0x00 && head[4] == 0x00 && head[5] == 0xAB
}

func sniffStructured(ss source.StructuredSource) (Sniffed, error) {
	names := ss.ListSubstreams()
	has := func(name string) bool {
		for _, n := range names {
			if n == name {
				return true
			}
		}
		return false
	}
	hasPrefix := func(prefix string) (string, bool) {
		for _, n := range names {
			if bytes.HasPrefix([]byte(n), []byte(prefix)) {
				return n, true
			}
		}
		return "", false
	}

	switch {
	case has("MN0"):
		return Sniffed{Kind: KindWorksMac, Creator: CreatorMSWorks, StructuredSource: ss, DefaultEncoding: wpsenc.HintWindows1252}, nil
	case has("CONTENTS"):
		body, err := ss.Open("CONTENTS")
		if err == nil && (bytes.HasPrefix(body, []byte("CHNKWKS")) || bytes.HasPrefix(body, []byte("CHNKINK"))) {
			return Sniffed{Kind: KindWorksV78, Creator: CreatorMSWorks, StructuredSource: ss, DefaultEncoding: wpsenc.HintWindows1252}, nil
		}
		fallthrough
	case has("PerfectOffice_MAIN"), has("NativeContent_MAIN"):
		return Sniffed{Kind: KindQuattroStructured, Creator: CreatorQuattroPro, StructuredSource: ss, DefaultEncoding: wpsenc.HintWindows1252}, nil
	default:
		if _, ok := hasPrefix("WK1"); ok {
			if _, ok := hasPrefix("FMT"); ok {
				return Sniffed{Kind: KindLotusStructured, Creator: CreatorLotus123, StructuredSource: ss, DefaultEncoding: wpsenc.HintCP437}, nil
			}
		}
		if _, ok := hasPrefix("WK3"); ok {
			if _, ok := hasPrefix("FM3"); ok {
				return Sniffed{Kind: KindLotusStructured, Creator: CreatorLotus123, StructuredSource: ss, DefaultEncoding: wpsenc.HintCP437}, nil
			}
		}
		return Sniffed{}, wpserr.ErrUnsupported
	}
}

// OpenCompoundFile is a convenience constructor wiring source/cfb's mscfb
// adapter to Sniff's StructuredSource parameter.
var OpenCompoundFile = cfb.Open
