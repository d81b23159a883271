package pipeline

import (
	"bufio"
	"encoding/gob"
	"errors"
	"io"
	"os"

	"github.com/chi-cdk/binlog/internal/compress"
	"github.com/chi-cdk/binlog/internal/decoder"
	"github.com/chi-cdk/binlog/internal/stream"
	"github.com/chi-cdk/binlog/internal/tracelog"
)

func init() {
	gob.Register(decoder.Int(0))
	gob.Register(decoder.Uint(0))
	gob.Register(decoder.Float(0))
	gob.Register(decoder.Bool(false))
	gob.Register(decoder.String(""))
	gob.Register(decoder.Pointer(0))
	gob.Register(decoder.Result(""))
	gob.Register(decoder.Hex(nil))
	gob.Register(decoder.Corrupted(nil))
	gob.Register(decoder.List(nil))
	gob.Register(decoder.Record(nil))
}

// entry is the unit stored in spill files: a decoded event and the timestamp
// it is merged by.
type entry struct {
	Timestamp int64
	Name      string
	Offset    int64
	Fields    decoder.Record
}

func (e entry) event() (tracelog.Event, error) {
	return tracelog.Event{Name: e.Name, Offset: e.Offset, Fields: e.Fields}, nil
}

type spillWriter struct {
	file   *os.File
	buffer *bufio.Writer
	output io.WriteCloser
	enc    *gob.Encoder
}

func createSpill(path string, c compress.Compression) (*spillWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	b := bufio.NewWriterSize(f, 64*1024)
	w, err := compress.NewWriter(b, c)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &spillWriter{file: f, buffer: b, output: w, enc: gob.NewEncoder(w)}, nil
}

func (w *spillWriter) Write(entries []entry) (int, error) {
	for i := range entries {
		if err := w.enc.Encode(&entries[i]); err != nil {
			return i, err
		}
	}
	return len(entries), nil
}

func (w *spillWriter) Close() error {
	return errors.Join(w.output.Close(), w.buffer.Flush(), w.file.Close())
}

type spillReader struct {
	file  *os.File
	input io.ReadCloser
	dec   *gob.Decoder
}

func openSpill(path string, c compress.Compression) (*spillReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := compress.NewReader(bufio.NewReaderSize(f, 64*1024), c)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &spillReader{file: f, input: r, dec: gob.NewDecoder(r)}, nil
}

func (r *spillReader) Read(entries []entry) (n int, err error) {
	for n < len(entries) {
		entries[n] = entry{}
		if err = r.dec.Decode(&entries[n]); err != nil {
			if err == io.EOF && n > 0 {
				err = nil
			}
			return n, err
		}
		n++
	}
	return n, nil
}

func (r *spillReader) Close() error {
	return errors.Join(r.input.Close(), r.file.Close())
}

var (
	_ stream.WriteCloser[entry] = (*spillWriter)(nil)
	_ stream.ReadCloser[entry]  = (*spillReader)(nil)
)
