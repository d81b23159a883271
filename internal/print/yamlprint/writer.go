// Package yamlprint writes streams of values as a sequence of YAML documents
// separated by "---".
package yamlprint

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/chi-cdk/binlog/internal/stream"
)

// NewWriter returns a writer encoding each value as a YAML document indented
// with two spaces. Writing no values produces no output.
func NewWriter[T any](w io.Writer) stream.WriteCloser[T] {
	return &writer[T]{output: w}
}

type writer[T any] struct {
	output  io.Writer
	encoder *yaml.Encoder
}

func (w *writer[T]) Write(values []T) (int, error) {
	if len(values) > 0 && w.encoder == nil {
		w.encoder = yaml.NewEncoder(w.output)
		w.encoder.SetIndent(2)
	}
	for i := range values {
		if err := w.encoder.Encode(values[i]); err != nil {
			return i, err
		}
	}
	return len(values), nil
}

func (w *writer[T]) Close() error {
	if w.encoder == nil {
		return nil
	}
	return w.encoder.Close()
}
