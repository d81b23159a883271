package stream

import "io"

// Iterator consumes the values of a Reader one at a time.
//
// Values are read in batches into an internal buffer, so the iterator must not
// be shared between goroutines.
type Iterator[T any] struct {
	base Reader[T]
	err  error
	off  int
	len  int
	buf  [100]T
}

// Values drains it and returns all the values it produced.
func Values[T any](it *Iterator[T]) ([]T, error) {
	var values []T
	for it.Next() {
		values = append(values, it.Value())
	}
	return values, it.Err()
}

// Iter constructs an iterator over the values of r.
func Iter[T any](r Reader[T]) *Iterator[T] {
	return &Iterator[T]{base: r}
}

// Next advances to the next value, returning false at the end of the stream
// or when an error occurred.
func (it *Iterator[T]) Next() bool {
	if it.off++; it.off < it.len {
		return true
	}
	return it.next()
}

// Split out of Next so the fast path stays inlinable.
func (it *Iterator[T]) next() bool {
	if it.base == nil || it.err != nil {
		return false
	}
	var zero T
	for i := range it.buf[:it.len] {
		it.buf[i] = zero
	}
	for {
		n, err := it.base.Read(it.buf[:])
		it.err = err
		it.off = 0
		it.len = n
		if n > 0 {
			return true
		}
		if err != nil {
			return false
		}
	}
}

// Value returns the current value. It is only valid after Next returned true.
func (it *Iterator[T]) Value() T {
	return it.buf[it.off]
}

// Err returns the error that interrupted the iteration, if any. Reaching the
// end of the stream is not an error.
func (it *Iterator[T]) Err() error {
	err := it.err
	if err == io.EOF {
		err = nil
	}
	return err
}
