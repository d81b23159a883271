package main

// Notes on program structure
// --------------------------
//
// binlog uses subcommands to invoke specific functionalities of the program.
// Each subcommand is implemented by a function named after the command, in a
// file of the same name (e.g. the "help" command is implemented by the help
// function in help.go).
//
// The usage message for each command is declared by a constant starting with
// the command name and followed by the suffix "Usage". For example, the usage
// message for the "help" command is declared by the constant helpUsage.
//
// The usage message contains a "Usage:	binlog <command>" section presenting
// the structure of the command. Note the tabulation separating "Usage:" and
// "binlog".

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/exp/slices"

	conf "github.com/chi-cdk/binlog/internal/config"
	"github.com/chi-cdk/binlog/internal/logging"
	"github.com/chi-cdk/binlog/internal/print/human"
)

const rootUsage = `binlog - binary trace log decoder

   binlog decodes the compact binary trace logs written by instrumented camera
   pipelines, using a preamble built from the call-site descriptions the
   compiler plugin extracts at build time.

Example:

   $ binlog parse -o preamble.json callsites/*.json
   $ binlog decode -p preamble.json trace.bin
   Foo x=42
   ...

For a list of commands available, run 'binlog help'.`

var (
	configPath human.Path
	logLevel   logging.Level
	logLevelOK bool
)

// root is the binlog entrypoint.
func root(ctx context.Context, args ...string) int {
	if path := os.Getenv("BINLOGCONFIG"); path != "" {
		conf.Path = human.Path(path)
	}
	configPath = conf.Path

	if len(args) == 0 {
		fmt.Println(rootUsage)
		return 0
	}

	cmd, args := args[0], args[1:]

	var err error
	switch cmd {
	case "config":
		err = config(ctx, args)
	case "decode":
		err = decode(ctx, args)
	case "describe":
		err = describe(ctx, args)
	case "help", "-h", "--help":
		err = help(ctx, args)
	case "merge":
		err = merge(ctx, args)
	case "parse":
		err = parse(ctx, args)
	case "version":
		err = version(ctx, args)
	default:
		err = unknown(ctx, cmd)
	}

	switch e := err.(type) {
	case nil:
		return 0
	case exitCode:
		return int(e)
	case usage:
		fmt.Fprintf(os.Stderr, "%s\n", e)
		return 2
	default:
		if errors.Is(err, context.Canceled) {
			return 130
		}
		fmt.Fprintf(os.Stderr, "ERR: binlog %s: %s\n", cmd, err)
		return 1
	}
}

// exitCode is an error type returned from command functions to indicate the
// exit code that should be returned by the program.
type exitCode int

func (e exitCode) Error() string {
	return fmt.Sprintf("exit: %d", e)
}

// usage is an error type returned from command functions to indicate a usage
// error.
//
// Usage errors cause the program to exit with status code 2.
type usage string

func usageError(msg string, args ...any) error {
	return usage(fmt.Sprintf(msg, args...))
}

func (e usage) Error() string {
	return string(e)
}

// loadConfig reads the configuration file selected by -c or BINLOGCONFIG and
// installs the default logger at the configured level.
func loadConfig() (*conf.Config, *slog.Logger, error) {
	conf.Path = configPath
	c, err := conf.Load()
	if err != nil {
		return nil, nil, err
	}
	if logLevelOK {
		c.Log.Level = logLevel
	}
	return c, logging.Init(slog.Level(c.Log.Level)), nil
}

func setEnum[T ~string](enum *T, typ string, value string, options ...string) error {
	for _, option := range options {
		if option == value {
			*enum = T(option)
			return nil
		}
	}
	return fmt.Errorf("unsupported %s: %q (not one of %s)", typ, value, strings.Join(options, ", "))
}

type outputFormat string

func (o outputFormat) String() string {
	return string(o)
}

func (o *outputFormat) Set(value string) error {
	return setEnum(o, "output format", value, "text", "json", "yaml")
}

type levelFlag struct{}

func (levelFlag) String() string { return logLevel.String() }

func (levelFlag) Set(value string) error {
	if err := logLevel.Set(value); err != nil {
		return err
	}
	logLevelOK = true
	return nil
}

func newFlagSet(cmd, usage string) *flag.FlagSet {
	usage = strings.TrimSpace(usage)
	flagSet := flag.NewFlagSet(cmd, flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.Usage = func() { fmt.Fprintln(flagSet.Output(), usage) }
	customVar(flagSet, &configPath, "c", "config")
	customVar(flagSet, levelFlag{}, "log-level")
	return flagSet
}

// parseFlags is a greedy parser which consumes all options known to f and
// returns the remaining arguments.
func parseFlags(f *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := f.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				f.SetOutput(os.Stdout)
				f.Usage()
				return nil, exitCode(0)
			}
			return nil, usageError("%s: %s", f.Name(), err)
		}
		if args = f.Args(); len(args) == 0 {
			return positional, nil
		}
		i := slices.IndexFunc(args, func(s string) bool {
			return strings.HasPrefix(s, "-") && s != "-"
		})
		if i < 0 {
			i = len(args)
		}
		positional = append(positional, args[:i]...)
		args = args[i:]
	}
}

func boolVar(f *flag.FlagSet, dst *bool, name string, alias ...string) {
	f.BoolVar(dst, name, *dst, "")
	for _, name := range alias {
		f.BoolVar(dst, name, *dst, "")
	}
}

func intVar(f *flag.FlagSet, dst *int, name string, alias ...string) {
	f.IntVar(dst, name, *dst, "")
	for _, name := range alias {
		f.IntVar(dst, name, *dst, "")
	}
}

func stringVar(f *flag.FlagSet, dst *string, name string, alias ...string) {
	f.StringVar(dst, name, *dst, "")
	for _, name := range alias {
		f.StringVar(dst, name, *dst, "")
	}
}

func customVar(f *flag.FlagSet, dst flag.Value, name string, alias ...string) {
	f.Var(dst, name, "")
	for _, name := range alias {
		f.Var(dst, name, "")
	}
}
