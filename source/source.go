// Package source abstracts the two shapes FormatDispatcher.Sniff can read
// from (spec §6): a flat byte stream, or a structured container exposing
// named substreams (OLE2 compound files, ZIP-based archives).
package source

// ByteSource is a flat, in-memory document: wb1/wb3 Quattro files, XYWrite
// DOS/Win4 files, and MS-DOS Word/Write files are all read this way.
type ByteSource interface {
	Bytes() []byte
}

// StructuredSource is a document stored as a directory of named substreams
// (OLE2 compound files for qpw/wb3/Works8/PocketWord). Sniff inspects the
// substream directory itself before deciding which substream(s) to read as
// ByteSources.
type StructuredSource interface {
	ListSubstreams() []string
	Open(name string) ([]byte, error)
}

// Flat adapts a plain byte slice to ByteSource.
type Flat []byte

func (f Flat) Bytes() []byte { return []byte(f) }
