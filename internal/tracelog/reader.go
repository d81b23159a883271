// Package tracelog reads and writes binary trace files.
//
// A trace file is a sequence of length-prefixed records:
//
//	[8 bytes: little-endian payload length N]
//	[N bytes: payload]
//
// The first two bytes of a payload are the little-endian event id. The rest
// holds the fields of the event laid out as described by the preamble.
package tracelog

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/chi-cdk/binlog/internal/buffer"
	"github.com/chi-cdk/binlog/internal/stream"
)

const (
	headerSize  = 8
	eventIDSize = 2

	// DefaultMaxRecordSize bounds the payload size accepted by readers, so a
	// corrupted length does not trigger huge allocations.
	DefaultMaxRecordSize = 16 * 1024 * 1024
)

var payloadPool buffer.Pool

// Record is a record read from a trace file.
type Record struct {
	// Offset of the record header in the file.
	Offset  int64
	Payload []byte
}

func (r Record) EventID() uint16 { return binary.LittleEndian.Uint16(r.Payload) }

// Data returns the bytes following the event id.
func (r Record) Data() []byte { return r.Payload[eventIDSize:] }

// RecordReader reads the records of a trace file.
type RecordReader struct {
	input   *bufio.Reader
	path    string
	offset  int64
	maxSize int64
	payload *buffer.Buffer
	err     error
}

// NewRecordReader returns a reader of the records of input. The path is only
// used to report errors.
func NewRecordReader(input io.Reader, path string) *RecordReader {
	return NewRecordReaderSize(input, path, DefaultMaxRecordSize)
}

// NewRecordReaderSize is like NewRecordReader but configures the maximum
// payload size.
func NewRecordReaderSize(input io.Reader, path string, maxRecordSize int64) *RecordReader {
	if maxRecordSize <= 0 {
		maxRecordSize = DefaultMaxRecordSize
	}
	return &RecordReader{
		input:   bufio.NewReaderSize(input, 64*1024),
		path:    path,
		maxSize: maxRecordSize,
	}
}

func (r *RecordReader) Path() string { return r.path }

// Offset returns the number of bytes consumed from the input.
func (r *RecordReader) Offset() int64 { return r.offset }

// Close releases the buffers held by the reader.
func (r *RecordReader) Close() error {
	buffer.Release(&r.payload, &payloadPool)
	return nil
}

// Read reads the next record. It returns io.EOF when the input ends exactly
// after a record and a *CorruptFileError when it ends in the middle of one.
// Errors are sticky.
//
// The record payload is only valid until the next call to Read.
func (r *RecordReader) Read(records []Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	if r.err != nil {
		return 0, r.err
	}
	rec, err := r.readRecord()
	if err != nil {
		r.err = err
		return 0, err
	}
	records[0] = rec
	return 1, nil
}

func (r *RecordReader) readRecord() (Record, error) {
	buffer.Release(&r.payload, &payloadPool)
	offset := r.offset

	var header [headerSize]byte
	n, err := io.ReadFull(r.input, header[:])
	r.offset += int64(n)
	switch err {
	case nil:
	case io.EOF:
		return Record{}, io.EOF
	case io.ErrUnexpectedEOF:
		return Record{}, r.corrupt(offset, "partial record header of %d bytes", n)
	default:
		return Record{}, fmt.Errorf("%s: reading record header at offset %d: %w", r.path, offset, err)
	}

	length := binary.LittleEndian.Uint64(header[:])
	if length <= eventIDSize {
		return Record{}, r.corrupt(offset, "record of %d bytes is too short to hold an event id", length)
	}
	if length > uint64(r.maxSize) {
		return Record{}, r.corrupt(offset, "record of %d bytes exceeds the maximum size of %d bytes", length, r.maxSize)
	}

	r.payload = payloadPool.Get(int(length))
	n, err = io.ReadFull(r.input, r.payload.Data)
	r.offset += int64(n)
	switch err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		return Record{}, r.corrupt(offset, "short payload: %d of %d bytes", n, length)
	default:
		return Record{}, fmt.Errorf("%s: reading record payload at offset %d: %w", r.path, offset, err)
	}
	return Record{Offset: offset, Payload: r.payload.Data}, nil
}

func (r *RecordReader) corrupt(offset int64, format string, args ...any) error {
	return &CorruptFileError{Path: r.path, Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

var (
	_ stream.ReadCloser[Record] = (*RecordReader)(nil)
)
