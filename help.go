package main

import (
	"context"
	"fmt"
	"os"
)

const helpUsage = `
Usage:	binlog <command> [options]

Preamble Commands:
   parse     Build a preamble from call-site description files
   merge     Merge preamble files into one
   describe  Show the events and encodings of a preamble

Decoding Commands:
   decode    Decode trace files into events

Other Commands:
   config    Show the binlog configuration
   help      Show usage information about binlog commands
   version   Show the binlog version information

Global Options:
   -c, --config path    Path to the binlog configuration file (overrides BINLOGCONFIG)
       --log-level lvl  Minimum level of diagnostics, one of: debug, info, warn, error

For a description of each command, run 'binlog help <command>'.`

func help(ctx context.Context, args []string) error {
	flagSet := newFlagSet("binlog help", helpUsage)
	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}

	var cmd string
	var msg string

	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "config":
		msg = configUsage
	case "decode":
		msg = decodeUsage
	case "describe":
		msg = describeUsage
	case "help", "":
		msg = helpUsage
	case "merge":
		msg = mergeUsage
	case "parse":
		msg = parseUsage
	case "version":
		msg = versionUsage
	default:
		fmt.Fprintf(os.Stderr, "binlog help %s: unknown command\n", cmd)
		return exitCode(2)
	}

	fmt.Println(msg[1:])
	return nil
}
