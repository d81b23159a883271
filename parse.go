package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/chi-cdk/binlog/internal/preamble"
)

const parseUsage = `
Usage:	binlog parse [options] <callsites.json>...

   The parse command builds a preamble from the call-site description files
   produced by the compiler plugin, one per compilation unit. Preambles of
   separate files are merged; types declared with the same name but different
   layouts are renamed after the file they come from.

   The preamble is written in its JSON interchange form, which is the input
   of the describe and decode commands.

Example:

   $ binlog parse -o preamble.json build/callsites/*.json

Options:
   -c, --config path    Path to the binlog configuration file (overrides BINLOGCONFIG)
   -h, --help           Show this usage information
   -o, --output path    Write the preamble to a file instead of stdout
`

func parse(ctx context.Context, args []string) error {
	var output string

	flagSet := newFlagSet("binlog parse", parseUsage)
	stringVar(flagSet, &output, "o", "output")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return usageError(`binlog parse: expected at least one call-site file as argument`)
	}
	_, logger, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := preamble.ParseFiles(args...)
	if err != nil {
		return err
	}
	warnOffsetMismatches(logger, p)
	return writePreamble(output, p)
}

func warnOffsetMismatches(logger *slog.Logger, p *preamble.Preamble) {
	for _, m := range p.OffsetMismatches() {
		logger.Warn("field offset reported by the compiler differs from its packed offset",
			slog.String("event", m.Event),
			slog.String("field", m.Field),
			slog.Int64("reported", m.Reported),
			slog.Int64("packed", m.Packed))
	}
}

func writePreamble(output string, p *preamble.Preamble) error {
	b, err := preamble.MarshalIndent(p, "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if output == "" || output == "-" {
		_, err = os.Stdout.Write(b)
		return err
	}
	return os.WriteFile(output, b, 0666)
}
