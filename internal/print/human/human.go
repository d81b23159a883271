// Package human parses and formats the human-friendly values accepted by
// binlog flags and configuration files: file system paths, byte sizes and
// counts of items.
package human

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/exp/slices"
)

type unit struct {
	name  string
	scale uint64
}

// parseScaled parses a decimal number followed by an optional unit. A unit
// is selected by any case-insensitive prefix of its name, so "k", "Ki" and
// "KiB" may all designate the same unit; the first match in units wins.
func parseScaled(what, s string, units []unit) (uint64, error) {
	head, name := strings.TrimSpace(s), ""
	if i := strings.IndexFunc(head, unicode.IsLetter); i >= 0 {
		head, name = strings.TrimSpace(head[:i]), head[i:]
	}

	scale := uint64(1)
	if name != "" {
		i := slices.IndexFunc(units, func(u unit) bool {
			return len(name) <= len(u.name) && strings.EqualFold(name, u.name[:len(name)])
		})
		if i < 0 {
			return 0, fmt.Errorf("malformed %s: %q: unknown unit %q", what, s, name)
		}
		scale = units[i].scale
	}

	f, err := strconv.ParseFloat(head, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed %s: %q", what, s)
	}
	if f < 0 {
		return 0, fmt.Errorf("invalid negative %s: %q", what, s)
	}
	return uint64(math.Floor(f * float64(scale))), nil
}

// formatScaled formats v in the largest of units not greater than v, keeping
// at most three significant digits.
func formatScaled(v uint64, units []unit) string {
	if v == 0 {
		return "0"
	}
	u := units[0]
	for _, next := range units[1:] {
		if v >= next.scale {
			u = next
		}
	}
	f := float64(v) / float64(u.scale)
	var s string
	switch {
	case f >= 100:
		s = strconv.FormatFloat(f, 'f', 0, 64)
	case f >= 10:
		s = strconv.FormatFloat(f, 'f', 1, 64)
	default:
		s = strconv.FormatFloat(f, 'f', 2, 64)
	}
	if strings.Contains(s, ".") {
		s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
	}
	if u.name != "" {
		s += " " + u.name
	}
	return s
}
