// Package stream is a library of generic types designed to work on streams of
// values.
//
// Decoded trace events flow through the program as stream.Reader values: the
// record reader of each trace file, the k-way merge of several files, and the
// printers at the end of the pipeline all speak the same interface.
package stream

import "io"

// Reader is an interface implemented by types that produce a stream of values
// of type T.
type Reader[T any] interface {
	// Reads values from the stream, returning the number of values read and any
	// error that occurred.
	//
	// The error is io.EOF when the end of the stream has been reached.
	Read(values []T) (int, error)
}

// Writer is an interface implemented by types that consume a stream of values
// of type T.
type Writer[T any] interface {
	// Writes values to the stream, returning the number of values written and
	// any error that occurred.
	Write(values []T) (int, error)
}

// ReadCloser represents a closable stream of values of T.
//
// ReadClosers is like io.ReadCloser for values of any type.
type ReadCloser[T any] interface {
	Reader[T]
	io.Closer
}

// WriteCloser represents a closable sink of values of T.
//
// Closing a WriteCloser flushes values that it may still be buffering.
type WriteCloser[T any] interface {
	Writer[T]
	io.Closer
}

// NewReader constructs a Reader from a sequence of values.
func NewReader[T any](values ...T) Reader[T] {
	return &reader[T]{values: append([]T{}, values...)}
}

type reader[T any] struct{ values []T }

func (r *reader[T]) Read(values []T) (n int, err error) {
	n = copy(values, r.values)
	r.values = r.values[n:]
	if len(r.values) == 0 {
		err = io.EOF
	}
	return n, err
}

// NewReadCloser constructs a ReadCloser from the pair of r and c.
func NewReadCloser[T any](r Reader[T], c io.Closer) ReadCloser[T] {
	return &readCloser[T]{reader: r, closer: c}
}

type readCloser[T any] struct {
	reader Reader[T]
	closer io.Closer
}

func (r *readCloser[T]) Close() error                 { return r.closer.Close() }
func (r *readCloser[T]) Read(values []T) (int, error) { return r.reader.Read(values) }

// NopCloser constructs a ReadCloser from a Reader.
func NopCloser[T any](r Reader[T]) ReadCloser[T] {
	return &nopCloser[T]{reader: r}
}

type nopCloser[T any] struct{ reader Reader[T] }

func (r *nopCloser[T]) Close() error                 { return nil }
func (r *nopCloser[T]) Read(values []T) (int, error) { return r.reader.Read(values) }

// ReadAll reads all values from r and returns them as a slice, along with any
// error that occurred (other than io.EOF).
func ReadAll[T any](r Reader[T]) ([]T, error) {
	values := make([]T, 0, 1)
	for {
		if len(values) == cap(values) {
			values = append(values, make([]T, 2*len(values))...)[:len(values)]
		}
		n, err := r.Read(values[len(values):cap(values)])
		values = values[:len(values)+n]
		if err != nil {
			if err == io.EOF {
				err = nil
			}
			return values, err
		}
	}
}

const copyBufferSize = 64

// Copy writes all values read from r to w, returning the number of values
// copied. Like io.Copy, reaching io.EOF on r is not reported as an error.
func Copy[T any](w Writer[T], r Reader[T]) (int64, error) {
	var buf [copyBufferSize]T
	var n int64
	for {
		rn, err := r.Read(buf[:])
		if rn > 0 {
			wn, werr := w.Write(buf[:rn])
			n += int64(wn)
			if werr != nil {
				return n, werr
			}
			if wn < rn {
				return n, io.ErrShortWrite
			}
		}
		if err != nil {
			if err == io.EOF {
				err = nil
			}
			return n, err
		}
	}
}

// Limit returns a Reader which produces at most n values from r.
func Limit[T any](r Reader[T], n int) Reader[T] {
	return &limitReader[T]{base: r, n: n}
}

type limitReader[T any] struct {
	base Reader[T]
	n    int
}

func (r *limitReader[T]) Read(values []T) (int, error) {
	if r.n <= 0 {
		return 0, io.EOF
	}
	if len(values) > r.n {
		values = values[:r.n]
	}
	n, err := r.base.Read(values)
	r.n -= n
	return n, err
}
