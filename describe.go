package main

import (
	"cmp"
	"context"
	"os"

	"github.com/chi-cdk/binlog/internal/preamble"
	"github.com/chi-cdk/binlog/internal/print/jsonprint"
	"github.com/chi-cdk/binlog/internal/print/textprint"
	"github.com/chi-cdk/binlog/internal/print/yamlprint"
	"github.com/chi-cdk/binlog/internal/stream"
)

const describeUsage = `
Usage:	binlog describe [options] <preamble.json>

   The describe command prints the events declared in a preamble, with the
   layout of the fields they carry. The text output lists one event per line,
   the json and yaml outputs also list the fields of each event.

Examples:

   $ binlog describe preamble.json
   EVENT  VALUE  SIZE  FIELDS
   Foo    7      2     1
   Bar    8      16    3

   $ binlog describe --types preamble.json
   TYPE          KIND     SIZE  MEMBERS  ORIGIN
   unsigned int  uint32   4     0
   ...

Options:
   -c, --config path    Path to the binlog configuration file (overrides BINLOGCONFIG)
   -h, --help           Show this usage information
   -o, --output format  Output format, one of: text, json, yaml
   -t, --types          Describe the types of the preamble instead of its events
`

type eventDescription struct {
	Event     string             `json:"event"  yaml:"event"  text:"EVENT"`
	Value     int64              `json:"value"  yaml:"value"  text:"VALUE"`
	Size      int64              `json:"size"   yaml:"size"   text:"SIZE"`
	NumFields int                `json:"-"      yaml:"-"      text:"FIELDS"`
	Fields    []fieldDescription `json:"fields" yaml:"fields" text:"-"`
}

type fieldDescription struct {
	Name   string `json:"name"   yaml:"name"`
	Type   string `json:"type"   yaml:"type"`
	Kind   string `json:"kind"   yaml:"kind"`
	Offset int64  `json:"offset" yaml:"offset"`
	Size   int64  `json:"size"   yaml:"size"`
}

type typeDescription struct {
	Type    string `json:"type"             yaml:"type"             text:"TYPE"`
	Kind    string `json:"kind"             yaml:"kind"             text:"KIND"`
	Size    int64  `json:"size"             yaml:"size"             text:"SIZE"`
	Members int    `json:"members"          yaml:"members"          text:"MEMBERS"`
	Origin  string `json:"origin,omitempty" yaml:"origin,omitempty" text:"ORIGIN"`
}

func describe(ctx context.Context, args []string) error {
	var (
		output = outputFormat("text")
		types  bool
	)

	flagSet := newFlagSet("binlog describe", describeUsage)
	customVar(flagSet, &output, "o", "output")
	boolVar(flagSet, &types, "t", "types")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return usageError(`binlog describe: expected exactly one preamble file as argument`)
	}
	_, logger, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := preamble.Load(args[0])
	if err != nil {
		return err
	}
	warnOffsetMismatches(logger, p)

	if types {
		return writeDescriptions(output, describeTypes(p), func(a, b typeDescription) int {
			return cmp.Compare(a.Type, b.Type)
		})
	}
	return writeDescriptions(output, describeEvents(p), func(a, b eventDescription) int {
		return cmp.Compare(a.Value, b.Value)
	})
}

func writeDescriptions[T any](output outputFormat, values []T, orderBy func(T, T) int) error {
	var w stream.WriteCloser[T]
	switch output {
	case "json":
		w = jsonprint.NewWriter[T](os.Stdout)
	case "yaml":
		w = yamlprint.NewWriter[T](os.Stdout)
	default:
		w = textprint.NewTableWriter[T](os.Stdout, textprint.OrderBy(orderBy))
	}
	if _, err := stream.Copy[T](w, stream.NewReader(values...)); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func describeEvents(p *preamble.Preamble) []eventDescription {
	events := p.Events()
	descriptions := make([]eventDescription, 0, len(events))
	for _, e := range events {
		d := eventDescription{
			Event:  e.ID,
			Value:  e.Value,
			Size:   e.Size,
			Fields: []fieldDescription{},
		}
		if enc, ok := p.Encoding(e.ID); ok {
			d.Size = enc.Size
			for _, f := range enc.Fields {
				d.Fields = append(d.Fields, fieldDescription{
					Name:   f.ID,
					Type:   f.Type.ID,
					Kind:   f.Type.Kind().String(),
					Offset: f.Offset,
					Size:   f.Type.Size,
				})
			}
		}
		d.NumFields = len(d.Fields)
		descriptions = append(descriptions, d)
	}
	return descriptions
}

func describeTypes(p *preamble.Preamble) []typeDescription {
	types := p.Types()
	descriptions := make([]typeDescription, len(types))
	for i, t := range types {
		origin, _ := t.Metadata.Origin()
		descriptions[i] = typeDescription{
			Type:    t.ID,
			Kind:    t.Kind().String(),
			Size:    t.Size,
			Members: len(t.Members),
			Origin:  origin,
		}
	}
	return descriptions
}
