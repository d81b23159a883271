// Package jsonprint writes streams of values as a sequence of JSON documents.
package jsonprint

import (
	"encoding/json"
	"io"

	"github.com/chi-cdk/binlog/internal/stream"
)

type WriterOption func(*json.Encoder)

// Indent sets the indentation of the JSON documents. The default is two
// spaces; an empty indent writes one compact document per line.
func Indent(indent string) WriterOption {
	return func(e *json.Encoder) { e.SetIndent("", indent) }
}

func NewWriter[T any](w io.Writer, opts ...WriterOption) stream.WriteCloser[T] {
	e := json.NewEncoder(w)
	e.SetEscapeHTML(false)
	e.SetIndent("", "  ")
	for _, opt := range opts {
		opt(e)
	}
	return writer[T]{e}
}

type writer[T any] struct{ *json.Encoder }

func (w writer[T]) Write(values []T) (int, error) {
	for n := range values {
		if err := w.Encode(values[n]); err != nil {
			return n, err
		}
	}
	return len(values), nil
}

func (w writer[T]) Close() error {
	return nil
}
