package tracelog

import (
	"os"

	"github.com/chi-cdk/binlog/internal/compress"
	"github.com/chi-cdk/binlog/internal/preamble"
)

// OpenEvents opens the trace file at path and returns a reader of its events.
// Files ending with .zst or .sz are decompressed on the fly.
func OpenEvents(path string, p *preamble.Preamble, opts ...EventOption) (*EventReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	input, err := compress.NewReader(f, compress.FromPath(path))
	if err != nil {
		f.Close()
		return nil, err
	}
	r := NewEventReader(input, path, p, opts...)
	r.closer = closers{input, f}
	return r, nil
}

type closers []interface{ Close() error }

func (c closers) Close() error {
	var err error
	for _, closer := range c {
		if cerr := closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
