package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	conf "github.com/chi-cdk/binlog/internal/config"
	"github.com/chi-cdk/binlog/internal/print/jsonprint"
	"github.com/chi-cdk/binlog/internal/print/yamlprint"
	"github.com/chi-cdk/binlog/internal/stream"
)

const configUsage = `
Usage:	binlog config [options]

   The config command prints the configuration used by other commands. Keys
   missing from the configuration file are shown with their default value in
   the json and yaml outputs.

Options:
   -c, --config path    Path to the binlog configuration file (overrides BINLOGCONFIG)
       --edit           Open $EDITOR to edit the configuration
   -h, --help           Show usage information
   -o, --output format  Output format, one of: text, json, yaml
`

func config(ctx context.Context, args []string) error {
	var (
		edit   bool
		output = outputFormat("text")
	)

	flagSet := newFlagSet("binlog config", configUsage)
	boolVar(flagSet, &edit, "edit")
	customVar(flagSet, &output, "o", "output")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return usageError("binlog config: unexpected arguments: %q", args)
	}
	conf.Path = configPath

	if edit {
		if err := editConfig(); err != nil {
			return err
		}
	}

	c, _, err := loadConfig()
	if err != nil {
		return err
	}

	var w stream.WriteCloser[*conf.Config]
	switch output {
	case "json":
		w = jsonprint.NewWriter[*conf.Config](os.Stdout)
	case "yaml":
		w = yamlprint.NewWriter[*conf.Config](os.Stdout)
	default:
		r, _, err := conf.Open()
		if err != nil {
			return err
		}
		defer r.Close()
		_, err = io.Copy(os.Stdout, r)
		return err
	}
	if _, err := w.Write([]*conf.Config{c}); err != nil {
		return err
	}
	return w.Close()
}

func editConfig() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		return errors.New(`$EDITOR is not set`)
	}
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}

	r, path, err := conf.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		if !errors.Is(err, fs.ErrExist) {
			return err
		}
	}

	tmp, err := createTempFile(path, r)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	p, err := os.StartProcess(shell, []string{shell, "-c", editor + " " + tmp}, &os.ProcAttr{
		Files: []*os.File{
			0: os.Stdin,
			1: os.Stdout,
			2: os.Stderr,
		},
	})
	if err != nil {
		return err
	}
	if _, err := p.Wait(); err != nil {
		return err
	}
	f, err := os.Open(tmp)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := conf.Read(f); err != nil {
		return fmt.Errorf("not applying configuration updates because the file is invalid: %w", err)
	}
	return os.Rename(tmp, path)
}

func createTempFile(path string, r io.Reader) (string, error) {
	dir, file := filepath.Split(path)
	w, err := os.CreateTemp(dir, "."+file+".*")
	if err != nil {
		return "", err
	}
	defer w.Close()
	_, err = io.Copy(w, r)
	return w.Name(), err
}
