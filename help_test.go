package main

import (
	"testing"

	"github.com/chi-cdk/binlog/internal/assert"
)

var helpTests = tests{
	"calling help with an unknown command causes an error": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "help", "whatever")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stdout, "")
		assert.Equal(t, stderr, "binlog help whatever: unknown command\n")
	},

	"passing an unsupported flag to the command causes an error": func(t *testing.T) {
		_, _, exitCode := binlog(t, "help", "-_")
		assert.Equal(t, exitCode, 2)
	},

	"show the help command help with the short option": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "help", "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tbinlog <command> ")
		assert.Equal(t, stderr, "")
	},

	"show the help command help after a command name": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "help", "decode", "--help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tbinlog <command> ")
		assert.Equal(t, stderr, "")
	},

	"binlog help config": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "help", "config")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tbinlog config ")
		assert.Equal(t, stderr, "")
	},

	"binlog help decode": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "help", "decode")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tbinlog decode ")
		assert.Equal(t, stderr, "")
	},

	"binlog help describe": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "help", "describe")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tbinlog describe ")
		assert.Equal(t, stderr, "")
	},

	"binlog help help": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "help", "help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tbinlog <command> ")
		assert.Equal(t, stderr, "")
	},

	"binlog help merge": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "help", "merge")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tbinlog merge ")
		assert.Equal(t, stderr, "")
	},

	"binlog help parse": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "help", "parse")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tbinlog parse ")
		assert.Equal(t, stderr, "")
	},

	"binlog help version": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "help", "version")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tbinlog version ")
		assert.Equal(t, stderr, "")
	},
}
