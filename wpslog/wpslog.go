// Package wpslog defines the pluggable debug-logging sink used across the
// core. It is off by default: nothing is printed unless a caller supplies a
// Logger other than Nop, such as one built by New.
package wpslog

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger is the minimal logging surface the core depends on. Structural and
// payload-level recoveries (spec §7 kinds 1–2) are reported here, never
// returned as errors.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

// Nop is a Logger that discards everything. It is the default used when no
// Logger is supplied to dispatch.Options.
var Nop Logger = zerologLogger{zerolog.Nop()}

// New returns a Logger that writes timestamped zerolog JSON lines to w. It
// sets no level of its own, so Debugf and Warnf messages are both written
// (subject only to zerolog's global level).
func New(w io.Writer) Logger {
	return zerologLogger{zerolog.New(w).With().Timestamp().Logger()}
}

type zerologLogger struct {
	z zerolog.Logger
}

func (l zerologLogger) Debugf(format string, args ...any) {
	l.z.Debug().Msgf(format, args...)
}

func (l zerologLogger) Warnf(format string, args ...any) {
	l.z.Warn().Msgf(format, args...)
}
