package main

import (
	"testing"

	"github.com/chi-cdk/binlog/internal/assert"
)

var configTests = tests{
	"show the config command help with the short option": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "config", "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tbinlog config ")
		assert.Equal(t, stderr, "")
	},

	"the text output prints the configuration file": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "config")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "spill:\n    location: ")
		assert.Equal(t, stderr, "")
	},

	"the yaml output includes default values": func(t *testing.T) {
		stdout, _, exitCode := binlog(t, "config", "-o", "yaml")
		assert.Equal(t, exitCode, 0)
		assert.Contains(t, stdout, "  on-error: abort\n")
		assert.Contains(t, stdout, "  compression: zstd\n")
		assert.Contains(t, stdout, "  level: warn\n")
	},

	"the json output includes default values": func(t *testing.T) {
		stdout, _, exitCode := binlog(t, "config", "-o", "json")
		assert.Equal(t, exitCode, 0)
		assert.Contains(t, stdout, `"timestamp": "timestamp"`)
	},

	"an unsupported output format is a usage error": func(t *testing.T) {
		_, _, exitCode := binlog(t, "config", "-o", "xml")
		assert.Equal(t, exitCode, 2)
	},
}
