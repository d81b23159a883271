package stream_test

import (
	"errors"
	"io"
	"testing"

	"github.com/chi-cdk/binlog/internal/assert"
	"github.com/chi-cdk/binlog/internal/stream"
)

func TestIteratorValues(t *testing.T) {
	values := make([]int, 250)
	for i := range values {
		values[i] = i
	}
	read, err := stream.Values(stream.Iter(stream.NewReader(values...)))
	assert.OK(t, err)
	assert.EqualAll(t, read, values)
}

func TestIteratorEmpty(t *testing.T) {
	it := stream.Iter(stream.NewReader[string]())
	assert.True(t, !it.Next(), "empty iterator produced a value")
	assert.OK(t, it.Err())
}

type failingReader struct{ err error }

func (r failingReader) Read(values []int) (int, error) {
	if len(values) == 0 {
		return 0, nil
	}
	values[0] = 42
	return 1, r.err
}

func TestIteratorError(t *testing.T) {
	failure := errors.New("disk on fire")
	it := stream.Iter[int](failingReader{err: failure})

	assert.True(t, it.Next(), "value read before the error was lost")
	assert.Equal(t, it.Value(), 42)
	assert.True(t, !it.Next(), "iterator continued after an error")
	assert.Error(t, it.Err(), failure)
}

func TestIteratorEOF(t *testing.T) {
	it := stream.Iter[int](failingReader{err: io.EOF})
	values, err := stream.Values(it)
	assert.OK(t, err)
	assert.EqualAll(t, values, []int{42})
}
