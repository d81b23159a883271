package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/chi-cdk/binlog/internal/assert"
)

var describeTests = tests{
	"describing a preamble lists its events": func(t *testing.T) {
		p := writePreambleFile(t, callSites)

		stdout, stderr, exitCode := binlog(t, "describe", p)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, ""+
			"EVENT  VALUE  SIZE  FIELDS\n"+
			"Foo    7      2     1\n"+
			"Tick   8      8     2\n")
		assert.Equal(t, stderr, "")
	},

	"describing a preamble as json lists the fields of events": func(t *testing.T) {
		p := writePreambleFile(t, callSites)

		stdout, _, exitCode := binlog(t, "describe", "-o", "json", p)
		assert.Equal(t, exitCode, 0)

		var foo struct {
			Event  string `json:"event"`
			Value  int64  `json:"value"`
			Fields []struct {
				Name string `json:"name"`
				Kind string `json:"kind"`
			} `json:"fields"`
		}
		// The first document describes the first event.
		assert.OK(t, json.NewDecoder(strings.NewReader(stdout)).Decode(&foo))
		assert.Equal(t, foo.Event, "Foo")
		assert.Equal(t, foo.Value, 7)
		assert.Equal(t, len(foo.Fields), 1)
		assert.Equal(t, foo.Fields[0].Name, "x")
		assert.Equal(t, foo.Fields[0].Kind, "uint16")
	},

	"describing the types of a preamble": func(t *testing.T) {
		p := writePreambleFile(t, callSites)

		stdout, _, exitCode := binlog(t, "describe", "--types", p)
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "TYPE ")
		assert.Contains(t, stdout, "char[4]")
		assert.Contains(t, stdout, "unsigned short")
	},

	"describing requires exactly one preamble": func(t *testing.T) {
		_, _, exitCode := binlog(t, "describe")
		assert.Equal(t, exitCode, 2)
	},
}
