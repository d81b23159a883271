package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chi-cdk/binlog/internal/assert"
)

var decodeTests = tests{
	"decoding a trace file prints one event per line": func(t *testing.T) {
		p := writePreambleFile(t, callSites)
		trace := writeTrace(t, "trace.bin", foo(42))

		stdout, stderr, exitCode := binlog(t, "decode", "-p", p, trace)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, "Foo x=42\n")
		assert.Equal(t, stderr, "")
	},

	"events of several trace files are merged by timestamp": func(t *testing.T) {
		p := writePreambleFile(t, callSites)
		a := writeTrace(t, "a.bin", tick(10, "cam0"), foo(1), tick(30, "cam0"))
		b := writeTrace(t, "b.bin", tick(20, "cam1"))

		stdout, stderr, exitCode := binlog(t, "decode", "-p", p, a, b)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, strings.Join([]string{
			`Tick timestamp=10 name="cam0"`,
			`Foo x=1`,
			`Tick timestamp=20 name="cam1"`,
			`Tick timestamp=30 name="cam0"`,
		}, "\n")+"\n")
		assert.Equal(t, stderr, "")
	},

	"events are printed in input order without merging": func(t *testing.T) {
		p := writePreambleFile(t, callSites)
		a := writeTrace(t, "a.bin", tick(30, "cam0"))
		b := writeTrace(t, "b.bin", tick(20, "cam1"))

		stdout, _, exitCode := binlog(t, "decode", "--no-merge", "-p", p, a, b)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, "Tick timestamp=30 name=\"cam0\"\nTick timestamp=20 name=\"cam1\"\n")
	},

	"the number of events printed can be limited": func(t *testing.T) {
		p := writePreambleFile(t, callSites)
		trace := writeTrace(t, "trace.bin", foo(1), foo(2), foo(3))

		stdout, _, exitCode := binlog(t, "decode", "-n", "2", "-p", p, trace)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, "Foo x=1\nFoo x=2\n")
	},

	"events can be printed as json": func(t *testing.T) {
		p := writePreambleFile(t, callSites)
		trace := writeTrace(t, "trace.bin", foo(42), tick(1, "cam0"))

		stdout, _, exitCode := binlog(t, "decode", "-o", "json", "-p", p, trace)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, `{"event":"Foo","fields":{"x":42}}`+"\n"+
			`{"event":"Tick","fields":{"timestamp":1,"name":"cam0"}}`+"\n")
	},

	"events can be printed as yaml": func(t *testing.T) {
		p := writePreambleFile(t, callSites)
		trace := writeTrace(t, "trace.bin", foo(42))

		stdout, _, exitCode := binlog(t, "decode", "-o", "yaml", "-p", p, trace)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, "event: Foo\nfields:\n  x: 42\n")
	},

	"char arrays can be decoded as lists": func(t *testing.T) {
		p := writePreambleFile(t, callSites)
		trace := writeTrace(t, "trace.bin", tick(1, "ab\x00\x00"))

		stdout, _, exitCode := binlog(t, "decode", "--raw-chars", "-p", p, trace)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, "Tick timestamp=1 name=[\"a\" \"b\" \"\\x00\" \"\\x00\"]\n")
	},

	"events can be written to a file": func(t *testing.T) {
		p := writePreambleFile(t, callSites)
		trace := writeTrace(t, "trace.bin", foo(42))
		output := filepath.Join(t.TempDir(), "events.txt")

		stdout, _, exitCode := binlog(t, "decode", "-O", output, "-p", p, trace)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, "")

		b, err := os.ReadFile(output)
		assert.OK(t, err)
		assert.Equal(t, string(b), "Foo x=42\n")
	},

	"a corrupt trace file fails the command": func(t *testing.T) {
		p := writePreambleFile(t, callSites)
		trace := writeFile(t, "trace.bin", "\x01\x02\x03")

		stdout, stderr, exitCode := binlog(t, "decode", "-p", p, trace)
		assert.Equal(t, exitCode, 1)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "ERR: binlog decode: ")
		assert.Contains(t, stderr, "corrupt log file")
	},

	"corrupt trace files can be skipped": func(t *testing.T) {
		p := writePreambleFile(t, callSites)
		a := writeTrace(t, "a.bin", foo(1))
		b := writeFile(t, "b.bin", "\x01\x02\x03")

		stdout, stderr, exitCode := binlog(t, "decode", "--skip-errors", "-p", p, a, b)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, "Foo x=1\n")
		assert.Contains(t, stderr, "skipping trace file")
	},

	"unknown event ids are skipped with a warning": func(t *testing.T) {
		p := writePreambleFile(t, callSites)
		trace := writeTrace(t, "trace.bin", traceRecord{id: 99, data: []byte{0}}, foo(1))

		stdout, stderr, exitCode := binlog(t, "decode", "-p", p, trace)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, "Foo x=1\n")
		assert.Contains(t, stderr, "unknown event id")
	},

	"unknown event ids can fail the command": func(t *testing.T) {
		p := writePreambleFile(t, callSites)
		trace := writeTrace(t, "trace.bin", traceRecord{id: 99, data: []byte{0}}, foo(1))

		_, stderr, exitCode := binlog(t, "decode", "--fail-unknown", "-p", p, trace)
		assert.Equal(t, exitCode, 1)
		assert.Contains(t, stderr, "unknown event id 99")
	},

	"the preamble is required": func(t *testing.T) {
		_, stderr, exitCode := binlog(t, "decode", writeTrace(t, "trace.bin", foo(1)))
		assert.Equal(t, exitCode, 2)
		assert.Contains(t, stderr, "-p")
	},
}
