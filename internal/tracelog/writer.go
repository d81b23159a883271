package tracelog

import (
	"bufio"
	"encoding/binary"
	"io"
)

// RecordWriter writes records to a trace file.
type RecordWriter struct {
	output *bufio.Writer
	// When writing to the underlying io.Writer fails the file is assumed to
	// be corrupted and all later writes fail with the same error.
	stickyErr error
}

func NewRecordWriter(output io.Writer) *RecordWriter {
	return &RecordWriter{output: bufio.NewWriter(output)}
}

// WriteRecord writes a record holding payload, which must start with the
// event id.
func (w *RecordWriter) WriteRecord(payload []byte) error {
	var header [headerSize]byte
	binary.LittleEndian.PutUint64(header[:], uint64(len(payload)))
	return w.write(header[:], payload)
}

// WriteEvent writes a record for the event id followed by the encoded fields
// in data.
func (w *RecordWriter) WriteEvent(id uint16, data []byte) error {
	var header [headerSize + eventIDSize]byte
	binary.LittleEndian.PutUint64(header[:headerSize], uint64(eventIDSize+len(data)))
	binary.LittleEndian.PutUint16(header[headerSize:], id)
	return w.write(header[:], data)
}

func (w *RecordWriter) write(header, data []byte) error {
	if w.stickyErr != nil {
		return w.stickyErr
	}
	if _, err := w.output.Write(header); err != nil {
		w.stickyErr = err
		return err
	}
	if _, err := w.output.Write(data); err != nil {
		w.stickyErr = err
		return err
	}
	return nil
}

// Flush writes buffered records to the underlying io.Writer.
func (w *RecordWriter) Flush() error {
	if w.stickyErr != nil {
		return w.stickyErr
	}
	if err := w.output.Flush(); err != nil {
		w.stickyErr = err
		return err
	}
	return nil
}
