package tracelog

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/chi-cdk/binlog/internal/decoder"
	"github.com/chi-cdk/binlog/internal/preamble"
	"github.com/chi-cdk/binlog/internal/stream"
)

// Event is a decoded record: the identifier of the log event and the values
// of its fields.
type Event struct {
	Name   string
	Offset int64
	Fields decoder.Record
}

func (e Event) String() string {
	if len(e.Fields) == 0 {
		return e.Name
	}
	return e.Name + " " + e.Fields.Fields()
}

type jsonEvent struct {
	Event  string         `json:"event" yaml:"event"`
	Fields decoder.Record `json:"fields" yaml:"fields"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonEvent{Event: e.Name, Fields: e.Fields})
}

func (e Event) MarshalYAML() (any, error) {
	return jsonEvent{Event: e.Name, Fields: e.Fields}, nil
}

// UnknownEvents selects what happens to records carrying an event id which
// is not declared in the preamble.
type UnknownEvents int

const (
	// SkipUnknown drops the record and logs a warning the first time each
	// id is seen.
	SkipUnknown UnknownEvents = iota
	// FailUnknown fails the read with an *UnknownEventError.
	FailUnknown
)

func (u UnknownEvents) String() string {
	switch u {
	case SkipUnknown:
		return "skip"
	case FailUnknown:
		return "fail"
	default:
		return fmt.Sprintf("UnknownEvents(%d)", int(u))
	}
}

func (u *UnknownEvents) Set(s string) error {
	switch s {
	case "skip":
		*u = SkipUnknown
	case "fail":
		*u = FailUnknown
	default:
		return fmt.Errorf("unsupported unknown events policy: %q (not one of skip, fail)", s)
	}
	return nil
}

func (u UnknownEvents) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

func (u *UnknownEvents) UnmarshalText(b []byte) error { return u.Set(string(b)) }

type EventOption func(*EventReader)

func DecoderOptions(opts decoder.Options) EventOption {
	return func(r *EventReader) { r.options = opts }
}

func OnUnknownEvents(policy UnknownEvents) EventOption {
	return func(r *EventReader) { r.policy = policy }
}

func MaxRecordSize(size int64) EventOption {
	return func(r *EventReader) { r.maxSize = size }
}

func Logger(logger *slog.Logger) EventOption {
	return func(r *EventReader) { r.logger = logger }
}

// EventReader decodes the records of a trace file into events. It is a
// single pass reader.
type EventReader struct {
	records  *RecordReader
	preamble *preamble.Preamble
	catalog  preamble.Catalog
	options  decoder.Options
	policy   UnknownEvents
	maxSize  int64
	logger   *slog.Logger
	closer   io.Closer
	unknown  map[uint16]int
	buffer   [1]Record
	err      error
}

// NewEventReader returns a reader of the events recorded in input, decoded
// with the layouts of p. The path is only used to report errors.
func NewEventReader(input io.Reader, path string, p *preamble.Preamble, opts ...EventOption) *EventReader {
	r := &EventReader{
		preamble: p,
		catalog:  p.Catalog(),
		options:  decoder.Options{CharArraysAsString: true},
		logger:   slog.Default(),
		unknown:  make(map[uint16]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.records = NewRecordReaderSize(input, path, r.maxSize)
	return r
}

func (r *EventReader) Path() string { return r.records.Path() }

// Skipped returns the number of records skipped for each unknown event id.
func (r *EventReader) Skipped() map[uint16]int { return r.unknown }

func (r *EventReader) Close() error {
	err := r.records.Close()
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Read decodes the next events. Errors are returned once the events decoded
// before them have been consumed, and are sticky.
func (r *EventReader) Read(events []Event) (n int, err error) {
	if r.err != nil {
		return 0, r.err
	}
	for n < len(events) {
		if _, err = r.records.Read(r.buffer[:]); err != nil {
			break
		}
		rec := r.buffer[0]
		value := rec.EventID()

		event, ok := r.preamble.EventByValue(int64(value))
		if !ok {
			if r.policy == FailUnknown {
				err = &UnknownEventError{Path: r.Path(), Offset: rec.Offset, Value: value}
				break
			}
			if r.unknown[value]++; r.unknown[value] == 1 {
				r.logger.Warn("skipping records of unknown event id",
					slog.String("path", r.Path()),
					slog.Int("event_id", int(value)),
					slog.Int64("offset", rec.Offset))
			}
			continue
		}

		events[n] = Event{Name: event.ID, Offset: rec.Offset}
		if enc, ok := r.preamble.Encoding(event.ID); ok {
			events[n].Fields = decoder.DecodeEncoding(enc, rec.Data(), r.catalog, r.options)
		} else {
			events[n].Fields = decoder.Record{}
		}
		n++
	}
	if err != nil {
		r.err = err
		if n > 0 {
			err = nil
		}
	}
	return n, err
}

var (
	_ stream.ReadCloser[Event] = (*EventReader)(nil)
)
