package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/chi-cdk/binlog/internal/assert"
	"github.com/chi-cdk/binlog/internal/preamble"
)

var mergeTests = tests{
	"merging preambles combines their events": func(t *testing.T) {
		a := writePreambleFile(t, callSites)
		b := writePreambleFile(t, otherCallSites)
		output := filepath.Join(t.TempDir(), "merged.json")

		_, stderr, exitCode := binlog(t, "merge", "-o", output, a, b)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")

		p, err := preamble.Load(output)
		assert.OK(t, err)
		assert.EqualAll(t, p.Events(), []preamble.EnumDescriptor{
			{ID: "Foo", Value: 7, Size: 2},
			{ID: "Tick", Value: 8, Size: 8},
			{ID: "Baz", Value: 9, Size: 4},
		})
	},

	"merging a preamble with itself is a no-op": func(t *testing.T) {
		a := writePreambleFile(t, callSites)

		stdout, _, exitCode := binlog(t, "merge", a, a)
		assert.Equal(t, exitCode, 0)

		merged, err := preamble.Unmarshal("stdout", []byte(stdout))
		assert.OK(t, err)
		p, err := preamble.Load(a)
		assert.OK(t, err)
		assert.True(t, merged.Equal(p), "merged preamble differs from its input")
	},

	"merging conflicting encodings fails": func(t *testing.T) {
		a := writePreambleFile(t, callSites)
		b := writePreambleFile(t, strings.Replace(callSites, `"unsigned short", "size": 2`, `"short", "size": 2`, 1))

		_, stderr, exitCode := binlog(t, "merge", a, b)
		assert.Equal(t, exitCode, 1)
		assert.HasPrefix(t, stderr, "ERR: binlog merge: ")
	},
}
