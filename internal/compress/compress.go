// Package compress wraps trace and spill file streams with the compression
// formats supported by binlog.
package compress

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
)

type Compression int

const (
	None Compression = iota
	Snappy
	Zstd
)

var names = [...]string{
	None:   "none",
	Snappy: "snappy",
	Zstd:   "zstd",
}

func (c Compression) String() string {
	if c >= 0 && int(c) < len(names) {
		return names[c]
	}
	return fmt.Sprintf("Compression(%d)", int(c))
}

// Ext returns the file extension of streams compressed with c.
func (c Compression) Ext() string {
	switch c {
	case Snappy:
		return ".sz"
	case Zstd:
		return ".zst"
	default:
		return ""
	}
}

func Parse(s string) (Compression, error) {
	for i, name := range names {
		if s == name {
			return Compression(i), nil
		}
	}
	return None, fmt.Errorf("unsupported compression: %q (not one of none, snappy, zstd)", s)
}

// FromPath returns the compression of a file according to its extension.
func FromPath(path string) Compression {
	switch filepath.Ext(path) {
	case ".sz":
		return Snappy
	case ".zst", ".zstd":
		return Zstd
	default:
		return None
	}
}

func (c *Compression) Set(s string) error {
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (c Compression) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Compression) UnmarshalText(b []byte) error { return c.Set(string(b)) }

// NewReader returns a reader decompressing r. Closing the returned reader
// does not close r.
func NewReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case None:
		return io.NopCloser(r), nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case Zstd:
		d, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return zstdReader{d}, nil
	default:
		return nil, fmt.Errorf("unsupported compression: %s", c)
	}
}

type zstdReader struct{ *zstd.Decoder }

func (r zstdReader) Close() error {
	r.Decoder.Close()
	return nil
}

// NewWriter returns a writer compressing to w. The returned writer must be
// closed to flush its buffers; closing it does not close w.
func NewWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case None:
		return nopWriteCloser{w}, nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case Zstd:
		e, err := zstd.NewWriter(w,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.SpeedFastest),
		)
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unsupported compression: %s", c)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
