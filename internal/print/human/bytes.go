package human

import (
	"encoding"
	"encoding/json"
	"flag"

	"gopkg.in/yaml.v3"
)

// Bytes is a size in bytes, such as the maximum size of trace records.
//
// Values are parsed from a number followed by an optional unit: KB, MB and
// GB are powers of 1000, KiB, MiB and GiB are powers of 1024. Sizes are
// always formatted in powers of 1024.
type Bytes uint64

const (
	B Bytes = 1

	KB Bytes = 1000 * B
	MB Bytes = 1000 * KB
	GB Bytes = 1000 * MB

	KiB Bytes = 1024 * B
	MiB Bytes = 1024 * KiB
	GiB Bytes = 1024 * MiB
)

var byteUnits = []unit{
	{"B", uint64(B)},
	{"KB", uint64(KB)},
	{"MB", uint64(MB)},
	{"GB", uint64(GB)},
	{"KiB", uint64(KiB)},
	{"MiB", uint64(MiB)},
	{"GiB", uint64(GiB)},
}

var byteUnits1024 = []unit{
	{"B", uint64(B)},
	{"KiB", uint64(KiB)},
	{"MiB", uint64(MiB)},
	{"GiB", uint64(GiB)},
}

func ParseBytes(s string) (Bytes, error) {
	n, err := parseScaled("byte size", s, byteUnits)
	return Bytes(n), err
}

func (b Bytes) String() string { return formatScaled(uint64(b), byteUnits1024) }

func (b *Bytes) Set(s string) error {
	n, err := ParseBytes(s)
	if err != nil {
		return err
	}
	*b = n
	return nil
}

// Sizes are numbers in JSON and strings with units in YAML, which is the
// format of configuration files.
func (b Bytes) MarshalJSON() ([]byte, error) { return json.Marshal(uint64(b)) }

func (b *Bytes) UnmarshalJSON(j []byte) error { return json.Unmarshal(j, (*uint64)(b)) }

func (b Bytes) MarshalYAML() (any, error) { return b.String(), nil }

func (b *Bytes) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return b.Set(s)
}

func (b Bytes) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *Bytes) UnmarshalText(t []byte) error { return b.Set(string(t)) }

var (
	_ encoding.TextMarshaler   = Bytes(0)
	_ encoding.TextUnmarshaler = (*Bytes)(nil)
	_ flag.Value               = (*Bytes)(nil)
)
