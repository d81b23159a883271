package stream

import (
	"errors"
	"io"

	"golang.org/x/exp/slices"
)

// MultiReader returns a Reader that is the logical concatenation of the
// provided readers. They are read sequentially.
func MultiReader[T any](readers ...Reader[T]) Reader[T] {
	return &multiReader[T]{readers: slices.Clone(readers)}
}

type multiReader[T any] struct {
	readers []Reader[T]
}

func (m *multiReader[T]) Read(values []T) (n int, err error) {
	for len(m.readers) > 0 && n < len(values) {
		rn, err := m.readers[0].Read(values[n:])
		n += rn
		if err != nil {
			if err != io.EOF {
				return n, err
			}
			m.readers = m.readers[1:]
		} else if rn == 0 {
			if n > 0 {
				return n, nil
			}
			return n, io.ErrNoProgress
		}
	}
	if len(m.readers) == 0 {
		return n, io.EOF
	}
	return n, nil
}

// MultiReadCloser is like MultiReader but the returned value owns the
// readers, closing all of them when it is closed.
func MultiReadCloser[T any](readers ...ReadCloser[T]) ReadCloser[T] {
	bases := make([]Reader[T], len(readers))
	for i, r := range readers {
		bases[i] = r
	}
	return &multiReadCloser[T]{
		Reader:  MultiReader(bases...),
		closers: slices.Clone(readers),
	}
}

type multiReadCloser[T any] struct {
	Reader[T]
	closers []ReadCloser[T]
}

func (m *multiReadCloser[T]) Close() error {
	var errs []error
	for _, c := range m.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}
