package main

import (
	"strings"
	"testing"

	"github.com/chi-cdk/binlog/internal/assert"
)

var versionTests = tests{
	"show the version command help with the short option": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "version", "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tbinlog version ")
		assert.Equal(t, stderr, "")
	},

	"show the version command help with the long option": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "version", "--help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tbinlog version ")
		assert.Equal(t, stderr, "")
	},

	"the version starts with the prefix binlog": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "version")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "binlog ")
		assert.Equal(t, stderr, "")
	},

	"the version number is not empty": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "version")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")

		_, version, _ := strings.Cut(strings.TrimSpace(stdout), " ")
		assert.NotEqual(t, version, "")
	},

	"the verbose version includes the go version": func(t *testing.T) {
		stdout, stderr, exitCode := binlog(t, "version", "--verbose")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "binlog ")
		assert.Contains(t, stdout, "\ngo:       go")
		assert.Equal(t, stderr, "")
	},

	"passing an unsupported flag to the command causes an error": func(t *testing.T) {
		_, _, exitCode := binlog(t, "version", "-_")
		assert.Equal(t, exitCode, 2)
	},
}
