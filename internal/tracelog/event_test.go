package tracelog_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/chi-cdk/binlog/internal/assert"
	"github.com/chi-cdk/binlog/internal/compress"
	"github.com/chi-cdk/binlog/internal/decoder"
	"github.com/chi-cdk/binlog/internal/preamble"
	"github.com/chi-cdk/binlog/internal/stream"
	"github.com/chi-cdk/binlog/internal/tracelog"
)

const fooCallSites = `[
  {"log": {"var": "Foo", "enum val": 7, "size": 2},
   "data": [{"var": "x", "type": "unsigned short", "size": 2}]},
  {"log": {"var": "Bar", "enum val": 8, "size": 8},
   "data": [
     {"var": "name", "type": "char[4]", "size": 4},
     {"var": "timestamp", "type": "unsigned int", "size": 4}
   ]}
]`

func fooPreamble(t *testing.T) *preamble.Preamble {
	t.Helper()
	p, err := preamble.Parse("callsites.json", []byte(fooCallSites))
	assert.OK(t, err)
	return p
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestEventReaderEndToEnd(t *testing.T) {
	data := []byte{
		4, 0, 0, 0, 0, 0, 0, 0, // length
		7, 0, // event id
		42, 0, // x
	}
	r := tracelog.NewEventReader(bytes.NewReader(data), "trace.bin", fooPreamble(t))
	defer r.Close()

	events, err := stream.ReadAll[tracelog.Event](r)
	assert.OK(t, err)

	want := []tracelog.Event{{
		Name:   "Foo",
		Offset: 0,
		Fields: decoder.Record{{Name: "x", Value: decoder.Uint(42)}},
	}}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, events[0].String(), "Foo x=42")
}

func TestEventReaderManyRecords(t *testing.T) {
	b := new(bytes.Buffer)
	w := tracelog.NewRecordWriter(b)
	for i := 0; i < 250; i++ {
		assert.OK(t, w.WriteEvent(7, []byte{byte(i), 0}))
		assert.OK(t, w.WriteEvent(8, []byte{'c', 'a', 'm', 0, byte(i), 0, 0, 0}))
	}
	assert.OK(t, w.Flush())

	r := tracelog.NewEventReader(b, "trace.bin", fooPreamble(t))
	events, err := stream.ReadAll[tracelog.Event](r)
	assert.OK(t, err)
	assert.Equal(t, len(events), 500)

	for i, e := range events {
		if i%2 == 0 {
			assert.Equal(t, e.String(), "Foo x="+decoder.Uint(i/2).String())
		} else {
			assert.Equal(t, e.Name, "Bar")
			name, _ := e.Fields.Get("name")
			assert.Equal(t, name, decoder.Value(decoder.String("cam")))
			ts, _ := e.Fields.Get("timestamp")
			assert.Equal(t, ts, decoder.Value(decoder.Uint(i/2)))
		}
	}
}

func unknownEventTrace(t *testing.T) []byte {
	b := new(bytes.Buffer)
	w := tracelog.NewRecordWriter(b)
	assert.OK(t, w.WriteEvent(7, []byte{1, 0}))
	assert.OK(t, w.WriteEvent(99, []byte{0, 0}))
	assert.OK(t, w.WriteEvent(99, []byte{0, 0}))
	assert.OK(t, w.WriteEvent(7, []byte{2, 0}))
	assert.OK(t, w.Flush())
	return b.Bytes()
}

func TestEventReaderSkipUnknown(t *testing.T) {
	logs := new(bytes.Buffer)
	r := tracelog.NewEventReader(bytes.NewReader(unknownEventTrace(t)), "trace.bin", fooPreamble(t),
		tracelog.Logger(slog.New(slog.NewTextHandler(logs, nil))),
	)
	events, err := stream.ReadAll[tracelog.Event](r)
	assert.OK(t, err)
	assert.Equal(t, len(events), 2)
	assert.Equal(t, events[1].Offset, 36)
	assert.Equal(t, r.Skipped()[99], 2)
	assert.Contains(t, logs.String(), "event_id=99")
	assert.Equal(t, bytes.Count(logs.Bytes(), []byte("\n")), 1)
}

func TestEventReaderFailUnknown(t *testing.T) {
	r := tracelog.NewEventReader(bytes.NewReader(unknownEventTrace(t)), "trace.bin", fooPreamble(t),
		tracelog.OnUnknownEvents(tracelog.FailUnknown),
		tracelog.Logger(discardLogger),
	)
	events, err := stream.ReadAll[tracelog.Event](r)
	assert.Error(t, err, tracelog.ErrUnknownEventID)
	assert.Equal(t, len(events), 1)
	e := assert.ErrorAs[*tracelog.UnknownEventError](t, err)
	assert.Equal(t, e.Value, 99)
	assert.Equal(t, e.Offset, 12)
}

func TestEventReaderCorruptAfterEvents(t *testing.T) {
	data := append([]byte{4, 0, 0, 0, 0, 0, 0, 0, 7, 0, 42, 0}, 1, 2, 3, 4, 5)
	r := tracelog.NewEventReader(bytes.NewReader(data), "trace.bin", fooPreamble(t))
	events, err := stream.ReadAll[tracelog.Event](r)
	assert.Error(t, err, tracelog.ErrCorruptLogFile)
	assert.Equal(t, len(events), 1)
}

func TestEventReaderRawChars(t *testing.T) {
	b := new(bytes.Buffer)
	w := tracelog.NewRecordWriter(b)
	assert.OK(t, w.WriteEvent(8, []byte{'o', 'k', 0, 0, 1, 0, 0, 0}))
	assert.OK(t, w.Flush())

	r := tracelog.NewEventReader(b, "trace.bin", fooPreamble(t), tracelog.DecoderOptions(decoder.Options{}))
	events, err := stream.ReadAll[tracelog.Event](r)
	assert.OK(t, err)
	name, _ := events[0].Fields.Get("name")
	assert.Equal(t, name.String(), `["o" "k" "\x00" "\x00"]`)
}

func TestOpenEventsCompressed(t *testing.T) {
	p := fooPreamble(t)
	dir := t.TempDir()

	for _, c := range []compress.Compression{compress.None, compress.Snappy, compress.Zstd} {
		t.Run(c.String(), func(t *testing.T) {
			path := filepath.Join(dir, "trace.bin"+c.Ext())
			f, err := os.Create(path)
			assert.OK(t, err)
			cw, err := compress.NewWriter(f, c)
			assert.OK(t, err)
			w := tracelog.NewRecordWriter(cw)
			assert.OK(t, w.WriteEvent(7, []byte{42, 0}))
			assert.OK(t, w.Flush())
			assert.OK(t, cw.Close())
			assert.OK(t, f.Close())

			r, err := tracelog.OpenEvents(path, p)
			assert.OK(t, err)
			events, err := stream.ReadAll[tracelog.Event](r)
			assert.OK(t, err)
			assert.OK(t, r.Close())
			assert.Equal(t, len(events), 1)
			assert.Equal(t, events[0].String(), "Foo x=42")
		})
	}
}

func TestEventMarshal(t *testing.T) {
	e := tracelog.Event{
		Name:   "Bar",
		Offset: 12,
		Fields: decoder.Record{
			{Name: "name", Value: decoder.String("cam")},
			{Name: "timestamp", Value: decoder.Uint(100)},
		},
	}

	b, err := json.Marshal(e)
	assert.OK(t, err)
	assert.Equal(t, string(b), `{"event":"Bar","fields":{"name":"cam","timestamp":100}}`)

	b, err = yaml.Marshal(e)
	assert.OK(t, err)
	assert.Equal(t, string(b), "event: Bar\nfields:\n    name: cam\n    timestamp: 100\n")

	assert.Equal(t, e.String(), `Bar name="cam" timestamp=100`)
	assert.Equal(t, tracelog.Event{Name: "Empty"}.String(), "Empty")
}

func TestUnknownEventsFlag(t *testing.T) {
	var u tracelog.UnknownEvents
	assert.OK(t, u.Set("fail"))
	assert.Equal(t, u, tracelog.FailUnknown)
	assert.OK(t, u.UnmarshalText([]byte("skip")))
	assert.Equal(t, u.String(), "skip")
	assert.Contains(t, u.Set("ignore").Error(), "ignore")
}
