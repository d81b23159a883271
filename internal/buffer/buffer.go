// Package buffer pools the byte slices holding record payloads while trace
// files are scanned.
package buffer

import "sync"

// Capacities are rounded up to a multiple of pageSize so a buffer can be
// reused for records of slightly different sizes.
const pageSize = 4096

// Buffers larger than maxPooledSize are left to the garbage collector when
// released, one oversized record must not pin its memory.
const maxPooledSize = 1 << 20

type Buffer struct{ Data []byte }

// Pool is a sync.Pool of buffers. The zero value is ready to use.
type Pool struct{ pool sync.Pool }

// Get returns a buffer of length size. Pooled buffers which are too small
// are dropped.
func (p *Pool) Get(size int) *Buffer {
	b, _ := p.pool.Get().(*Buffer)
	if b == nil || cap(b.Data) < size {
		b = &Buffer{Data: make([]byte, 0, roundUp(size))}
	}
	b.Data = b.Data[:size]
	return b
}

func (p *Pool) Put(b *Buffer) {
	if b != nil && cap(b.Data) <= maxPooledSize {
		p.pool.Put(b)
	}
}

// Release returns *buf to the pool and clears the reference.
func Release(buf **Buffer, pool *Pool) {
	if b := *buf; b != nil {
		*buf = nil
		pool.Put(b)
	}
}

func roundUp(size int) int {
	return ((size + pageSize - 1) / pageSize) * pageSize
}
