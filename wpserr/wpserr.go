// Package wpserr defines the sentinel errors returned by the legacy-document
// core. Callers compare with errors.Is; every layer wraps one of these with
// fmt.Errorf("pkg: context: %w", err) rather than inventing a parallel error
// code enum.
package wpserr

import "errors"

var (
	// ErrShortRead is returned by a ByteCursor (or anything built on one) when
	// a read runs past the end of the available bytes.
	ErrShortRead = errors.New("wps: short read")

	// ErrUnsupported is returned when FormatDispatcher.Sniff cannot match any
	// known signature, or a parser recognises a container it cannot decode.
	ErrUnsupported = errors.New("wps: unsupported format")

	// ErrMalformed is returned for structural errors severe enough that no
	// partial document can be produced (see spec §7 kind 4, "fatal errors").
	// Payload- and record-level errors are recovered from silently and never
	// surface this.
	ErrMalformed = errors.New("wps: malformed input")

	// ErrNeedsPassword is returned when ChunkEngine detects an encrypted
	// stream and no key was supplied.
	ErrNeedsPassword = errors.New("wps: needs password")

	// ErrShortInput is returned when FormatDispatcher.Sniff cannot read even
	// the minimum number of bytes needed to attempt signature matching.
	ErrShortInput = errors.New("wps: input too short to sniff")
)
