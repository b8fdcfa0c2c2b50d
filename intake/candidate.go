// Package intake decides whether a picked file may be submitted for analysis.
package intake

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

// Candidate is a file the user picked, with its declared media type and size.
// The payload is reopened on every Open so a failed upload can be retried
// with the same candidate.
type Candidate struct {
	Name      string
	MediaType string
	Size      int64

	open func() (io.ReadCloser, error)
}

// NewCandidate wraps an in-memory payload with an explicitly declared type.
func NewCandidate(name, mediaType string, data []byte) Candidate {
	return Candidate{
		Name:      name,
		MediaType: mediaType,
		Size:      int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// FromFile builds a candidate from a path on disk. The declared type is
// sniffed from the file header.
func FromFile(path string) (Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("intake: %w", err)
	}
	if info.IsDir() {
		return Candidate{}, fmt.Errorf("intake: %s is a directory", path)
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("intake: detect %s: %w", path, err)
	}
	return Candidate{
		Name:      filepath.Base(path),
		MediaType: mt.String(),
		Size:      info.Size(),
		open:      func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// FromReader drains r into memory and sniffs its type the same way FromFile
// does.
func FromReader(name string, r io.Reader) (Candidate, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Candidate{}, fmt.Errorf("intake: read %s: %w", name, err)
	}
	return NewCandidate(name, mimetype.Detect(data).String(), data), nil
}

// Open returns a fresh reader over the payload.
func (c Candidate) Open() (io.ReadCloser, error) {
	if c.open == nil {
		return nil, fmt.Errorf("intake: candidate %q has no payload", c.Name)
	}
	return c.open()
}

// DisplaySize renders the size the way the picker shows it, in binary units, e.g. "12 MiB".
func (c Candidate) DisplaySize() string {
	if c.Size < 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(c.Size))
}
