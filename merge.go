package main

import (
	"context"

	"github.com/chi-cdk/binlog/internal/preamble"
)

const mergeUsage = `
Usage:	binlog merge [options] <preamble.json>...

   The merge command combines preambles previously written by 'binlog parse'
   or 'binlog merge'. Identical types and encodings are deduplicated, two
   different encodings of the same event are an error.

Example:

   $ binlog merge -o all.json camera.json sensor.json

Options:
   -c, --config path    Path to the binlog configuration file (overrides BINLOGCONFIG)
   -h, --help           Show this usage information
   -o, --output path    Write the preamble to a file instead of stdout
`

func merge(ctx context.Context, args []string) error {
	var output string

	flagSet := newFlagSet("binlog merge", mergeUsage)
	stringVar(flagSet, &output, "o", "output")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return usageError(`binlog merge: expected at least one preamble file as argument`)
	}
	if _, _, err := loadConfig(); err != nil {
		return err
	}

	preambles := make([]*preamble.Preamble, len(args))
	for i, path := range args {
		p, err := preamble.Load(path)
		if err != nil {
			return err
		}
		preambles[i] = p
	}

	p, err := preamble.Merge(preambles...)
	if err != nil {
		return err
	}
	return writePreamble(output, p)
}
