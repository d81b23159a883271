// Package pipeline decodes batches of trace files in parallel and merges the
// decoded events into one stream ordered by timestamp.
//
// Each trace file is decoded by its own worker into a spill file, in the
// order its records were written. Once every worker completed, the spill
// files are read back and merged.
package pipeline

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/chi-cdk/binlog/internal/compress"
	"github.com/chi-cdk/binlog/internal/decoder"
	"github.com/chi-cdk/binlog/internal/preamble"
	"github.com/chi-cdk/binlog/internal/stream"
	"github.com/chi-cdk/binlog/internal/tracelog"
)

const DefaultTimestampField = "timestamp"

// FailurePolicy selects what happens to a run when a trace file fails to
// decode.
type FailurePolicy int

const (
	// Abort cancels the run and returns the error of the first failed file.
	Abort FailurePolicy = iota
	// Skip records the failure and lets the other files complete.
	Skip
)

func (f FailurePolicy) String() string {
	switch f {
	case Abort:
		return "abort"
	case Skip:
		return "skip"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(f))
	}
}

func (f *FailurePolicy) Set(s string) error {
	switch s {
	case "abort":
		*f = Abort
	case "skip":
		*f = Skip
	default:
		return fmt.Errorf("unsupported failure policy: %q (not one of abort, skip)", s)
	}
	return nil
}

func (f FailurePolicy) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *FailurePolicy) UnmarshalText(b []byte) error { return f.Set(string(b)) }

type Pipeline struct {
	Preamble *preamble.Preamble
	// Number of files decoded concurrently, GOMAXPROCS when zero.
	Workers       int
	OnError       FailurePolicy
	UnknownEvents tracelog.UnknownEvents
	Decoder       decoder.Options
	MaxRecordSize int64
	// Directory where spill files are created, os.TempDir() when empty.
	SpillDir    string
	Compression compress.Compression
	// Name of the integer field holding event timestamps.
	TimestampField string
	Logger         *slog.Logger
}

// Failure is a trace file which could not be decoded under the Skip policy.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string { return f.Err.Error() }

func (f Failure) Unwrap() error { return f.Err }

// Result holds the spill files of a run. It must be closed to remove them.
type Result struct {
	ID          uuid.UUID
	Failed      []Failure
	dir         string
	compression compress.Compression
	spills      []spill
}

type spill struct {
	input  string
	path   string
	events int64
	ok     bool
}

// Run decodes the trace files at paths. The returned error is the first file
// failure under the Abort policy, or the context error if ctx was canceled.
func (p *Pipeline) Run(ctx context.Context, paths []string) (*Result, error) {
	id := uuid.New()
	root := p.SpillDir
	if root == "" {
		root = os.TempDir()
	}
	dir := filepath.Join(root, "binlog-"+id.String())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("run", id.String()))

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	res := &Result{
		ID:          id,
		dir:         dir,
		compression: p.Compression,
		spills:      make([]spill, len(paths)),
	}

	var mutex sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, path := range paths {
		i, path := i, path
		group.Go(func() error {
			file := filepath.Join(dir, fmt.Sprintf("%04d.spill%s", i, p.Compression.Ext()))
			n, err := p.decodeFile(groupCtx, logger, path, file)
			if err != nil {
				os.Remove(file)
				if p.OnError == Abort {
					return err
				}
				logger.Warn("skipping trace file",
					slog.String("path", path),
					slog.String("error", err.Error()))
				mutex.Lock()
				res.Failed = append(res.Failed, Failure{Path: path, Err: err})
				mutex.Unlock()
				return nil
			}
			logger.Debug("decoded trace file",
				slog.String("path", path),
				slog.Int64("events", n))
			res.spills[i] = spill{input: path, path: file, events: n, ok: true}
			return nil
		})
	}

	err := group.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	index := make(map[string]int, len(paths))
	for i, path := range paths {
		index[path] = i
	}
	slices.SortFunc(res.Failed, func(a, b Failure) bool {
		return index[a.Path] < index[b.Path]
	})
	return res, nil
}

func (p *Pipeline) decodeFile(ctx context.Context, logger *slog.Logger, path, file string) (total int64, err error) {
	r, err := tracelog.OpenEvents(path, p.Preamble,
		tracelog.DecoderOptions(p.Decoder),
		tracelog.OnUnknownEvents(p.UnknownEvents),
		tracelog.MaxRecordSize(p.MaxRecordSize),
		tracelog.Logger(logger),
	)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	w, err := createSpill(file, p.Compression)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	field := p.TimestampField
	if field == "" {
		field = DefaultTimestampField
	}

	var events [256]tracelog.Event
	var entries [256]entry
	var timestamp int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, rerr := r.Read(events[:])
		for i, e := range events[:n] {
			// Events without a timestamp inherit the one of the event before
			// them so they stay in place after the merge.
			if v, ok := e.Fields.Get(field); ok {
				if t, ok := decoder.AsInt(v); ok {
					timestamp = t
				}
			}
			entries[i] = entry{Timestamp: timestamp, Name: e.Name, Offset: e.Offset, Fields: e.Fields}
		}
		if _, err := w.Write(entries[:n]); err != nil {
			return total, err
		}
		total += int64(n)
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				rerr = nil
			}
			return total, rerr
		}
	}
}

// Decoded returns the number of events decoded from the files that did not
// fail.
func (r *Result) Decoded() (n int64) {
	for _, s := range r.spills {
		n += s.events
	}
	return n
}

// Inputs returns the paths of the files that were decoded, in input order.
func (r *Result) Inputs() []string {
	var inputs []string
	for _, s := range r.spills {
		if s.ok {
			inputs = append(inputs, s.input)
		}
	}
	return inputs
}

// Merged returns the events of all decoded files ordered by timestamp. Events
// with equal timestamps are ordered by input file, then by position in the
// file.
func (r *Result) Merged() (stream.ReadCloser[tracelog.Event], error) {
	readers, err := r.open()
	if err != nil {
		return nil, err
	}
	inputs := make([]stream.Reader[entry], len(readers))
	for i, rd := range readers {
		inputs[i] = rd
	}
	merged := stream.MergeReader(func(a, b entry) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	}, inputs...)
	return stream.NewReadCloser(
		stream.ConvertReader(merged, entry.event),
		stream.MultiReadCloser(readers...),
	), nil
}

// Concat returns the events of all decoded files in input order.
func (r *Result) Concat() (stream.ReadCloser[tracelog.Event], error) {
	readers, err := r.open()
	if err != nil {
		return nil, err
	}
	concat := stream.MultiReadCloser(readers...)
	return stream.NewReadCloser(stream.ConvertReader[tracelog.Event, entry](concat, entry.event), concat), nil
}

func (r *Result) open() ([]stream.ReadCloser[entry], error) {
	var readers []stream.ReadCloser[entry]
	for _, s := range r.spills {
		if !s.ok {
			continue
		}
		sr, err := openSpill(s.path, r.compression)
		if err != nil {
			for _, rd := range readers {
				rd.Close()
			}
			return nil, err
		}
		readers = append(readers, sr)
	}
	return readers, nil
}

// Close removes the spill files.
func (r *Result) Close() error {
	return os.RemoveAll(r.dir)
}
