package stream

import (
	"container/heap"
	"io"
)

// MergeReader returns a Reader producing the values of all readers ordered by
// compare. Each reader must already produce its values in that order.
//
// The merge is stable: values comparing equal are produced in the order of
// the readers in the argument list, and the values of a single reader keep
// their relative order.
func MergeReader[T any](compare func(T, T) int, readers ...Reader[T]) Reader[T] {
	m := &mergeReader[T]{
		compare: compare,
		cursors: make([]*cursor[T], len(readers)),
	}
	for i, r := range readers {
		m.cursors[i] = &cursor[T]{index: i, iter: Iter(r)}
	}
	return m
}

type cursor[T any] struct {
	index int
	iter  *Iterator[T]
}

type mergeReader[T any] struct {
	compare func(T, T) int
	cursors []*cursor[T]
	heap    cursorHeap[T]
	init    bool
}

func (m *mergeReader[T]) Read(values []T) (n int, err error) {
	if !m.init {
		m.init = true
		m.heap.compare = m.compare
		for _, c := range m.cursors {
			if c.iter.Next() {
				m.heap.cursors = append(m.heap.cursors, c)
			} else if err := c.iter.Err(); err != nil {
				return 0, err
			}
		}
		heap.Init(&m.heap)
	}

	for n < len(values) && len(m.heap.cursors) > 0 {
		c := m.heap.cursors[0]
		values[n] = c.iter.Value()
		n++

		if c.iter.Next() {
			heap.Fix(&m.heap, 0)
		} else {
			heap.Pop(&m.heap)
			if err := c.iter.Err(); err != nil {
				return n, err
			}
		}
	}

	if len(m.heap.cursors) == 0 {
		return n, io.EOF
	}
	return n, nil
}

type cursorHeap[T any] struct {
	compare func(T, T) int
	cursors []*cursor[T]
}

func (h *cursorHeap[T]) Len() int { return len(h.cursors) }

func (h *cursorHeap[T]) Less(i, j int) bool {
	ci, cj := h.cursors[i], h.cursors[j]
	if c := h.compare(ci.iter.Value(), cj.iter.Value()); c != 0 {
		return c < 0
	}
	return ci.index < cj.index
}

func (h *cursorHeap[T]) Swap(i, j int) { h.cursors[i], h.cursors[j] = h.cursors[j], h.cursors[i] }

func (h *cursorHeap[T]) Push(x any) { h.cursors = append(h.cursors, x.(*cursor[T])) }

func (h *cursorHeap[T]) Pop() any {
	i := len(h.cursors) - 1
	c := h.cursors[i]
	h.cursors[i] = nil
	h.cursors = h.cursors[:i]
	return c
}
