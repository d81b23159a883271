package main

import (
	"testing"

	"github.com/chi-cdk/binlog/internal/assert"
)

var rootTests = tests{
	"invoking binlog without a command prints the introduction message": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t)
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "binlog - binary trace log decoder\n")
		assert.Equal(t, stderr, "")
	},

	"show the binlog help with the short option": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tbinlog <command> ")
		assert.Equal(t, stderr, "")
	},

	"show the binlog help with the long option": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "--help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tbinlog <command> ")
		assert.Equal(t, stderr, "")
	},

	"an invalid log level is a usage error": func(t *testing.T) {
		_, stderr, exitCode := binlog(t, "version", "--log-level", "loud")
		assert.Equal(t, exitCode, 2)
		assert.Contains(t, stderr, "unsupported log level")
	},
}
