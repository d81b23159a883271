package main

import (
	"context"
)

const unknownCommand = `binlog %s: unknown command
For a list of commands available, run 'binlog help'.`

func unknown(ctx context.Context, cmd string) error {
	return usageError(unknownCommand, cmd)
}
