package dispatch

import (
	"context"
	"fmt"

	"github.com/go-wps/wpscore/chunk"
	"github.com/go-wps/wpscore/quattro"
	"github.com/go-wps/wpscore/sink"
	"github.com/go-wps/wpscore/source"
	"github.com/go-wps/wpscore/wpsenc"
	"github.com/go-wps/wpscore/wpserr"
	"github.com/go-wps/wpscore/wpslog"
	"github.com/go-wps/wpscore/wps8"
	"github.com/go-wps/wpscore/xywrite"
)

// Options configures the top-level Parse entry point.
type Options struct {
	// Password, if non-empty, is tried against any encryption key record
	// the chunk engine encounters.
	Password string
	// EncodingOverride, if non-zero-valued (use HasEncodingOverride),
	// replaces the sniffed default encoding hint.
	EncodingOverride    wpsenc.Hint
	HasEncodingOverride bool
	Abort               func() bool
	Logger              wpslog.Logger
}

// Parse sniffs bs/ss, constructs the matching RecordHandler, and drives it
// to completion against the supplied sink, per spec §4.4's "runs its
// parse(emitter) to completion". Only the three formats spec §1 names as
// in-scope parsers (Quattro, XYWrite, Works8) actually decode; every other
// sniffed kind returns wpserr.ErrUnsupported even though Sniff recognizes
// it, matching the Non-goal "decoding formats not listed above".
func Parse(ctx context.Context, bs source.ByteSource, ss source.StructuredSource, out sink.TextSink, opts Options) (Sniffed, error) {
	sniffed, err := Sniff(bs, ss)
	if err != nil {
		return sniffed, err
	}
	encoding := sniffed.DefaultEncoding
	if opts.HasEncodingOverride {
		encoding = opts.EncodingOverride
	}
	logger := opts.Logger
	if logger == nil {
		logger = wpslog.Nop
	}

	switch sniffed.Kind {
	case KindQuattroDOS, KindQuattroWB:
		p, err := quattro.New(bs.Bytes(), chunk.ShapeClassic, quattro.Options{
			Password: opts.Password,
			Encoding: encoding,
			Abort:    opts.Abort,
			Logger:   logger,
		})
		if err != nil {
			return sniffed, err
		}
		ss, ok := out.(sink.SpreadsheetSink)
		if !ok {
			return sniffed, fmt.Errorf("dispatch: quattro requires a SpreadsheetSink")
		}
		return sniffed, p.Parse(ctx, ss)

	case KindQuattroStructured:
		body, err := openQuattroStructuredMain(sniffed.StructuredSource)
		if err != nil {
			return sniffed, err
		}
		p, err := quattro.New(body, chunk.ShapeFixed, quattro.Options{
			Password: opts.Password,
			Encoding: encoding,
			Abort:    opts.Abort,
			Logger:   logger,
		})
		if err != nil {
			return sniffed, err
		}
		ss, ok := out.(sink.SpreadsheetSink)
		if !ok {
			return sniffed, fmt.Errorf("dispatch: quattro requires a SpreadsheetSink")
		}
		return sniffed, p.Parse(ctx, ss)

	case KindXYWriteDOS, KindXYWriteWin4:
		p := xywrite.New(bs.Bytes(), xywrite.Options{Encoding: encoding, Logger: logger})
		return sniffed, p.Parse(ctx, out)

	case KindPocketWord:
		p := xywrite.New(bs.Bytes(), xywrite.Options{Encoding: encoding, Logger: logger, Restricted: true})
		return sniffed, p.Parse(ctx, out)

	case KindWorksV78:
		p, err := wps8.New(sniffed.StructuredSource, wps8.Options{Encoding: encoding, Logger: logger})
		if err != nil {
			return sniffed, err
		}
		return sniffed, p.Parse(ctx, out)

	default:
		return sniffed, wpserr.ErrUnsupported
	}
}

func openQuattroStructuredMain(ss source.StructuredSource) ([]byte, error) {
	for _, name := range []string{"PerfectOffice_MAIN", "NativeContent_MAIN"} {
		if b, err := ss.Open(name); err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("dispatch: no recognised Quattro main stream: %w", wpserr.ErrMalformed)
}
