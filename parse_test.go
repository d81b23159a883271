package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/chi-cdk/binlog/internal/assert"
	"github.com/chi-cdk/binlog/internal/preamble"
)

const callSites = `[
  {"log": {"var": "Foo", "enum val": 7, "size": 2},
   "data": [{"var": "x", "type": "unsigned short", "size": 2}]},
  {"log": {"var": "Tick", "enum val": 8, "size": 8},
   "data": [
     {"var": "timestamp", "type": "unsigned int", "size": 4},
     {"var": "name", "type": "char[4]", "size": 4}
   ]}
]`

const otherCallSites = `[
  {"log": {"var": "Baz", "enum val": 9, "size": 4},
   "data": [{"var": "level", "type": "int", "size": 4}]}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.OK(t, os.WriteFile(path, []byte(content), 0666))
	return path
}

// writePreambleFile parses the call sites with the binlog parse command and
// returns the path of the preamble it wrote.
func writePreambleFile(t *testing.T, callSites ...string) string {
	t.Helper()
	args := []string{"parse", "-o", filepath.Join(t.TempDir(), "preamble.json")}
	for i, sites := range callSites {
		args = append(args, writeFile(t, "callsites-"+string(rune('a'+i))+".json", sites))
	}
	_, stderr, exitCode := binlog(t, args...)
	assert.Equal(t, stderr, "")
	assert.Equal(t, exitCode, 0)
	return args[2]
}

type traceRecord struct {
	id   uint16
	data []byte
}

func foo(x uint16) traceRecord {
	return traceRecord{id: 7, data: binary.LittleEndian.AppendUint16(nil, x)}
}

func tick(timestamp uint32, name string) traceRecord {
	data := binary.LittleEndian.AppendUint32(nil, timestamp)
	return traceRecord{id: 8, data: append(data, []byte(name)...)}
}

func writeTrace(t *testing.T, name string, records ...traceRecord) string {
	t.Helper()
	var b []byte
	for _, r := range records {
		b = binary.LittleEndian.AppendUint64(b, uint64(2+len(r.data)))
		b = binary.LittleEndian.AppendUint16(b, r.id)
		b = append(b, r.data...)
	}
	return writeFile(t, name, string(b))
}

var parseTests = tests{
	"parsing call sites writes a preamble": func(t *testing.T) {
		path := writePreambleFile(t, callSites)

		p, err := preamble.Load(path)
		assert.OK(t, err)
		assert.EqualAll(t, p.Events(), []preamble.EnumDescriptor{
			{ID: "Foo", Value: 7, Size: 2},
			{ID: "Tick", Value: 8, Size: 8},
		})
	},

	"parsing several files merges their preambles": func(t *testing.T) {
		path := writePreambleFile(t, callSites, otherCallSites)

		p, err := preamble.Load(path)
		assert.OK(t, err)
		assert.Equal(t, len(p.Events()), 3)
		_, ok := p.Encoding("Baz")
		assert.True(t, ok, "Baz has no encoding")
	},

	"the preamble is written to stdout by default": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "parse", writeFile(t, "callsites.json", callSites))
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")

		p, err := preamble.Unmarshal("stdout", []byte(stdout))
		assert.OK(t, err)
		assert.Equal(t, len(p.Events()), 2)
	},

	"parsing an invalid file fails": func(t *testing.T) {
		_, stderr, exitCode := binlog(t, "parse", writeFile(t, "callsites.json", `{"log": 1}`))
		assert.Equal(t, exitCode, 1)
		assert.HasPrefix(t, stderr, "ERR: binlog parse: ")
	},

	"parsing requires at least one file": func(t *testing.T) {
		_, _, exitCode := binlog(t, "parse")
		assert.Equal(t, exitCode, 2)
	},
}
