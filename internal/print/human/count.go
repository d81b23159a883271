package human

import (
	"flag"
	"strconv"
)

// Count is a number of items, for example the maximum number of events
// printed by a command. Values like "1234", "10 K" or "1.5M" are accepted.
type Count uint64

const (
	K Count = 1000
	M Count = 1000 * K
	G Count = 1000 * M
)

var countUnits = []unit{
	{"K", uint64(K)},
	{"M", uint64(M)},
	{"G", uint64(G)},
}

func ParseCount(s string) (Count, error) {
	n, err := parseScaled("count", s, countUnits)
	return Count(n), err
}

func (c Count) String() string { return strconv.FormatUint(uint64(c), 10) }

func (c *Count) Set(s string) error {
	n, err := ParseCount(s)
	if err != nil {
		return err
	}
	*c = n
	return nil
}

var _ flag.Value = (*Count)(nil)
