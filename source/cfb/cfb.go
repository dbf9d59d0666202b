// Package cfb adapts an OLE2 compound file (the container format behind
// Works8, PocketWord, and wb3/qpw's substream-based variants) to
// source.StructuredSource, backed by mscfb.
package cfb

import (
	"fmt"
	"io"

	"github.com/richardlehane/mscfb"
)

// Container reads every substream of an OLE2 compound file eagerly into
// memory on Open, since mscfb's Reader is itself a forward-only iterator:
// a document that reopens a substream after sniffing needs already-read
// bytes available.
type Container struct {
	streams map[string][]byte
	order   []string
}

// Open reads r fully into a Container, indexing every substream by its
// full path joined with "/".
func Open(r io.ReaderAt) (*Container, error) {
	mr, err := mscfb.New(r)
	if err != nil {
		return nil, fmt.Errorf("cfb: open compound file: %w", err)
	}
	c := &Container{streams: make(map[string][]byte)}
	for entry, err := mr.Next(); err == nil; entry, err = mr.Next() {
		if entry.Size == 0 {
			continue
		}
		name := substreamPath(entry)
		buf := make([]byte, entry.Size)
		n, rerr := io.ReadFull(mr, buf)
		if rerr != nil && rerr != io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("cfb: read substream %q: %w", name, rerr)
		}
		c.streams[name] = buf[:n]
		c.order = append(c.order, name)
	}
	return c, nil
}

func substreamPath(entry *mscfb.File) string {
	if len(entry.Path) == 0 {
		return entry.Name
	}
	path := ""
	for _, p := range entry.Path {
		path += p + "/"
	}
	return path + entry.Name
}

// ListSubstreams implements source.StructuredSource.
func (c *Container) ListSubstreams() []string {
	return append([]string(nil), c.order...)
}

// Open implements source.StructuredSource.
func (c *Container) Open(name string) ([]byte, error) {
	b, ok := c.streams[name]
	if !ok {
		return nil, fmt.Errorf("cfb: no substream named %q", name)
	}
	return b, nil
}
