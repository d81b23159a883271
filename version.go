package main

import (
	"context"
	"fmt"
	"runtime/debug"
)

const versionUsage = `
Usage:	binlog version [options]

   The version command prints the binlog version. With --verbose, the Go
   version and the revision binlog was built from are printed as well.

Options:
   -h, --help     Show this usage information
   -v, --verbose  Show build information
`

func version(ctx context.Context, args []string) error {
	var verbose bool

	flagSet := newFlagSet("binlog version", versionUsage)
	boolVar(flagSet, &verbose, "v", "verbose")

	if _, err := parseFlags(flagSet, args); err != nil {
		return err
	}

	info, _ := debug.ReadBuildInfo()
	fmt.Printf("binlog %s\n", currentVersion(info))
	if verbose && info != nil {
		fmt.Printf("go:       %s\n", info.GoVersion)
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision", "vcs.time", "vcs.modified":
				fmt.Printf("%-9s %s\n", setting.Key[4:]+":", setting.Value)
			}
		}
	}
	return nil
}

func currentVersion(info *debug.BuildInfo) string {
	if info == nil {
		return "devel"
	}
	switch info.Main.Version {
	case "", "(devel)":
		return "devel"
	default:
		return info.Main.Version
	}
}
