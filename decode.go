package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/chi-cdk/binlog/internal/pipeline"
	"github.com/chi-cdk/binlog/internal/preamble"
	"github.com/chi-cdk/binlog/internal/print/human"
	"github.com/chi-cdk/binlog/internal/print/jsonprint"
	"github.com/chi-cdk/binlog/internal/print/textprint"
	"github.com/chi-cdk/binlog/internal/print/yamlprint"
	"github.com/chi-cdk/binlog/internal/stream"
	"github.com/chi-cdk/binlog/internal/tracelog"
)

const decodeUsage = `
Usage:	binlog decode -p <preamble.json> [options] <trace>...

   The decode command decodes trace files into events, using the preamble
   built from the call sites of the program which wrote them. Trace files are
   decoded in parallel and their events merged in timestamp order; events
   which carry no timestamp keep their position after the event preceding
   them in the same file.

   Trace files ending with .zst or .sz are decompressed while being read.

Example:

   $ binlog decode -p preamble.json trace-0.bin trace-1.bin
   Foo x=42
   Bar name="cam0" timestamp=1024
   ...

Options:
   -c, --config path       Path to the binlog configuration file (overrides BINLOGCONFIG)
       --fail-unknown      Fail trace files containing event ids missing from the preamble
   -h, --help              Show this usage information
   -j, --jobs n            Number of trace files decoded concurrently (default: number of CPUs)
   -n, --limit n           Print at most n events (e.g. 500, 10K)
       --no-merge          Print the events of each trace file in turn instead of merging them
   -o, --output format     Output format, one of: text, json, yaml
   -O, --output-file path  Write the events to a file instead of stdout
   -p, --preamble path     Path to the preamble of the trace files (required)
       --raw-chars         Decode char arrays as lists of characters instead of strings
       --skip-errors       Skip trace files which cannot be decoded instead of failing
`

func decode(ctx context.Context, args []string) error {
	var (
		preamblePath string
		output       = outputFormat("text")
		outputFile   string
		jobs         int
		limit        human.Count
		noMerge      bool
		rawChars     bool
		skipErrors   bool
		failUnknown  bool
	)

	flagSet := newFlagSet("binlog decode", decodeUsage)
	stringVar(flagSet, &preamblePath, "p", "preamble")
	customVar(flagSet, &output, "o", "output")
	stringVar(flagSet, &outputFile, "O", "output-file")
	intVar(flagSet, &jobs, "j", "jobs")
	customVar(flagSet, &limit, "n", "limit")
	boolVar(flagSet, &noMerge, "no-merge")
	boolVar(flagSet, &rawChars, "raw-chars")
	boolVar(flagSet, &skipErrors, "skip-errors")
	boolVar(flagSet, &failUnknown, "fail-unknown")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if preamblePath == "" {
		return usageError(`binlog decode: the path to a preamble must be set with -p`)
	}
	if len(args) == 0 {
		return usageError(`binlog decode: expected at least one trace file as argument`)
	}
	if jobs < 0 {
		return usageError(`binlog decode: the number of jobs must not be negative`)
	}

	config, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if jobs > 0 {
		config.Decode.Workers = jobs
	}
	if rawChars {
		config.Decode.Strings = false
	}
	if skipErrors {
		config.Decode.OnError = pipeline.Skip
	}
	if failUnknown {
		config.Decode.UnknownEvents = tracelog.FailUnknown
	}

	p, err := preamble.Load(preamblePath)
	if err != nil {
		return err
	}
	warnOffsetMismatches(logger, p)

	pl, err := config.NewPipeline(p, logger)
	if err != nil {
		return err
	}
	res, err := pl.Run(ctx, args)
	if err != nil {
		return err
	}
	defer res.Close()

	logger.Debug("decoded trace files",
		slog.String("run", res.ID.String()),
		slog.Int("files", len(args)-len(res.Failed)),
		slog.Int("failed", len(res.Failed)),
		slog.Int64("events", res.Decoded()))

	var events stream.ReadCloser[tracelog.Event]
	if noMerge {
		events, err = res.Concat()
	} else {
		events, err = res.Merged()
	}
	if err != nil {
		return err
	}
	defer events.Close()

	var reader stream.Reader[tracelog.Event] = events
	if limit > 0 {
		reader = stream.Limit(reader, int(limit))
	}

	out := io.Writer(os.Stdout)
	if outputFile != "" && outputFile != "-" {
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	var writer stream.WriteCloser[tracelog.Event]
	switch output {
	case "json":
		writer = jsonprint.NewWriter[tracelog.Event](out, jsonprint.Indent(""))
	case "yaml":
		writer = yamlprint.NewWriter[tracelog.Event](out)
	default:
		writer = textprint.NewWriter[tracelog.Event](out)
	}

	_, err = stream.Copy[tracelog.Event](writer, reader)
	if cerr := writer.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if f, ok := out.(*os.File); ok && f != os.Stdout {
		return f.Close()
	}
	return nil
}
