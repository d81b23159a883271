// Package config loads the binlog configuration file.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chi-cdk/binlog/internal/compress"
	"github.com/chi-cdk/binlog/internal/decoder"
	"github.com/chi-cdk/binlog/internal/logging"
	"github.com/chi-cdk/binlog/internal/pipeline"
	"github.com/chi-cdk/binlog/internal/preamble"
	"github.com/chi-cdk/binlog/internal/print/human"
	"github.com/chi-cdk/binlog/internal/tracelog"
)

const defaultConfigPath = "~/.binlog/config.yaml"

// Path is the path to the binlog configuration.
var Path human.Path = defaultConfigPath

// Load opens and reads the configuration file.
func Load() (*Config, error) {
	r, _, err := Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Read(r)
}

// Open opens the configuration file. When the file does not exist, the
// default configuration is returned in its place.
func Open() (io.ReadCloser, string, error) {
	path, err := Path.Resolve()
	if err != nil {
		return nil, path, err
	}
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, path, err
		}
		b, _ := yaml.Marshal(Default())
		return io.NopCloser(bytes.NewReader(b)), path, nil
	}
	return f, path, nil
}

// Read reads and validates configuration. Unknown keys are errors.
func Read(r io.Reader) (*Config, error) {
	c := Default()
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Default is the default configuration.
func Default() *Config {
	c := new(Config)
	c.Decode.Strings = true
	c.Decode.OnError = pipeline.Abort
	c.Decode.UnknownEvents = tracelog.SkipUnknown
	c.Decode.MaxRecordSize = human.Bytes(tracelog.DefaultMaxRecordSize)
	c.Merge.Timestamp = pipeline.DefaultTimestampField
	c.Spill.Compression = compress.Zstd
	c.Log.Level = logging.Level(slog.LevelInfo)
	return c
}

// Config is binlog configuration.
type Config struct {
	Decode struct {
		Workers       int                    `json:"workers"         yaml:"workers"`
		Strings       bool                   `json:"strings"         yaml:"strings"`
		OnError       pipeline.FailurePolicy `json:"on-error"        yaml:"on-error"`
		UnknownEvents tracelog.UnknownEvents `json:"unknown-events"  yaml:"unknown-events"`
		MaxRecordSize human.Bytes            `json:"max-record-size" yaml:"max-record-size"`
	} `json:"decode" yaml:"decode"`
	Merge struct {
		Timestamp string `json:"timestamp" yaml:"timestamp"`
	} `json:"merge" yaml:"merge"`
	Spill struct {
		Location    Nullable[human.Path] `json:"location"    yaml:"location"`
		Compression compress.Compression `json:"compression" yaml:"compression"`
	} `json:"spill" yaml:"spill"`
	Log struct {
		Level logging.Level `json:"level" yaml:"level"`
	} `json:"log" yaml:"log"`
}

func (c *Config) Validate() error {
	if c.Decode.Workers < 0 {
		return fmt.Errorf("decode.workers must not be negative: %d", c.Decode.Workers)
	}
	if c.Decode.MaxRecordSize < 3 {
		return fmt.Errorf("decode.max-record-size is too small to hold any record: %s", c.Decode.MaxRecordSize)
	}
	if c.Merge.Timestamp == "" {
		return errors.New("merge.timestamp must name a field")
	}
	return nil
}

// NewPipeline constructs a decoding pipeline configured according to Config.
func (c *Config) NewPipeline(p *preamble.Preamble, logger *slog.Logger) (*pipeline.Pipeline, error) {
	var spillDir string
	if location, ok := c.Spill.Location.Value(); ok {
		path, err := location.Resolve()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve binlog spill location: %w", err)
		}
		if err := os.MkdirAll(path, 0o777); err != nil {
			return nil, fmt.Errorf("failed to create binlog spill directory: %w", err)
		}
		spillDir = path
	}
	return &pipeline.Pipeline{
		Preamble:       p,
		Workers:        c.Decode.Workers,
		OnError:        c.Decode.OnError,
		UnknownEvents:  c.Decode.UnknownEvents,
		Decoder:        decoder.Options{CharArraysAsString: c.Decode.Strings},
		MaxRecordSize:  int64(c.Decode.MaxRecordSize),
		SpillDir:       spillDir,
		Compression:    c.Spill.Compression,
		TimestampField: c.Merge.Timestamp,
		Logger:         logger,
	}, nil
}

// Nullable is a configuration value which may be left unset.
type Nullable[T any] struct {
	value T
	exist bool
}

func NullableValue[T any](v T) Nullable[T] {
	return Nullable[T]{value: v, exist: true}
}

func (v Nullable[T]) Value() (T, bool) {
	return v.value, v.exist
}

func (v Nullable[T]) MarshalJSON() ([]byte, error) {
	if !v.exist {
		return []byte("null"), nil
	}
	return json.Marshal(v.value)
}

func (v Nullable[T]) MarshalYAML() (any, error) {
	if !v.exist {
		return nil, nil
	}
	return v.value, nil
}

func (v *Nullable[T]) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		v.exist = false
		return nil
	} else if err := json.Unmarshal(b, &v.value); err != nil {
		v.exist = false
		return err
	} else {
		v.exist = true
		return nil
	}
}

func (v *Nullable[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Value == "" || node.Value == "~" || node.Value == "null" {
		v.exist = false
		return nil
	} else if err := node.Decode(&v.value); err != nil {
		v.exist = false
		return err
	} else {
		v.exist = true
		return nil
	}
}
