package buffer

import (
	"testing"

	"github.com/chi-cdk/binlog/internal/assert"
)

func TestRoundUp(t *testing.T) {
	assert.Equal(t, roundUp(0), 0)
	assert.Equal(t, roundUp(1), pageSize)
	assert.Equal(t, roundUp(pageSize), pageSize)
	assert.Equal(t, roundUp(pageSize+1), 2*pageSize)
}

func TestPoolGet(t *testing.T) {
	var pool Pool

	b := pool.Get(10)
	assert.Equal(t, len(b.Data), 10)
	assert.Equal(t, cap(b.Data), pageSize)

	Release(&b, &pool)
	assert.True(t, b == nil, "released buffer reference must be cleared")

	b = pool.Get(3 * pageSize)
	assert.Equal(t, len(b.Data), 3*pageSize)
	assert.Equal(t, cap(b.Data), 3*pageSize)
}

func TestPoolDropsLargeBuffers(t *testing.T) {
	var pool Pool
	b := &Buffer{Data: make([]byte, maxPooledSize+1)}
	pool.Put(b)
	// The pool may drop any value, it is only checked that a large buffer
	// is never returned.
	got := pool.Get(1)
	assert.True(t, got != b, "oversized buffer was pooled")
}
