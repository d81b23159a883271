package stream_test

import (
	"cmp"
	"errors"
	"testing"

	"github.com/chi-cdk/binlog/internal/assert"
	"github.com/chi-cdk/binlog/internal/stream"
)

type item struct {
	time int
	name string
}

func byTime(a, b item) int { return cmp.Compare(a.time, b.time) }

func TestMergeReader(t *testing.T) {
	merged := stream.MergeReader(byTime,
		stream.NewReader(item{10, "A"}, item{30, "B"}),
		stream.NewReader(item{20, "C"}, item{30, "D"}),
	)
	read, err := stream.ReadAll(merged)
	assert.OK(t, err)
	assert.EqualAll(t, read, []item{{10, "A"}, {20, "C"}, {30, "B"}, {30, "D"}})
}

func TestMergeReaderStableTies(t *testing.T) {
	merged := stream.MergeReader(byTime,
		stream.NewReader(item{1, "a0"}, item{1, "a1"}, item{2, "a2"}),
		stream.NewReader[item](),
		chunks([][]item{{{1, "c0"}}, {}, {{2, "c1"}, {3, "c2"}}}),
	)
	read, err := stream.ReadAll(merged)
	assert.OK(t, err)
	assert.EqualAll(t, read, []item{
		{1, "a0"}, {1, "a1"}, {1, "c0"}, {2, "a2"}, {2, "c1"}, {3, "c2"},
	})
}

func TestMergeReaderError(t *testing.T) {
	errBroken := errors.New("broken")
	merged := stream.MergeReader(cmp.Compare[int],
		stream.NewReader(1, 4),
		&failingReader{values: []int{2, 3}, err: errBroken},
	)
	_, err := stream.ReadAll(merged)
	assert.Error(t, err, errBroken)
}
