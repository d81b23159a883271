package decoder

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Value is a decoded field value. The set of implementations is closed:
// Int, Uint, Float, Bool, String, Pointer, Result, Hex, Corrupted, List and
// Record.
type Value interface {
	fmt.Stringer
	value()
}

type Int int64

type Uint uint64

type Float float64

type Bool bool

type String string

// Pointer is an address, printed in hexadecimal.
type Pointer uint64

// Result is the name of a result code.
type Result string

// Hex holds the raw bytes of a value which could not be decoded.
type Hex []byte

// Corrupted holds the raw bytes of a boolean which was neither 0 nor 1.
type Corrupted []byte

type List []Value

// Record is a sequence of named values in the order of the fields of the
// structure they were decoded from.
type Record []Field

type Field struct {
	Name  string
	Value Value
}

func (Int) value()       {}
func (Uint) value()      {}
func (Float) value()     {}
func (Bool) value()      {}
func (String) value()    {}
func (Pointer) value()   {}
func (Result) value()    {}
func (Hex) value()       {}
func (Corrupted) value() {}
func (List) value()      {}
func (Record) value()    {}

func (v Int) String() string       { return strconv.FormatInt(int64(v), 10) }
func (v Uint) String() string      { return strconv.FormatUint(uint64(v), 10) }
func (v Float) String() string     { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Bool) String() string      { return strconv.FormatBool(bool(v)) }
func (v String) String() string    { return string(v) }
func (v Pointer) String() string   { return "0x" + strconv.FormatUint(uint64(v), 16) }
func (v Result) String() string    { return string(v) }
func (v Hex) String() string       { return hex.EncodeToString(v) }
func (v Corrupted) String() string { return "Corrupted(" + hex.EncodeToString(v) + ")" }

func (v List) String() string {
	b := new(strings.Builder)
	formatValue(b, v)
	return b.String()
}

func (r Record) String() string {
	b := new(strings.Builder)
	formatValue(b, r)
	return b.String()
}

// Fields formats the fields of r as space separated name=value pairs.
func (r Record) Fields() string {
	b := new(strings.Builder)
	formatFields(b, r)
	return b.String()
}

// Get returns the value of the first field named name.
func (r Record) Get(name string) (Value, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

func formatValue(b *strings.Builder, v Value) {
	switch x := v.(type) {
	case String:
		b.WriteString(strconv.Quote(string(x)))
	case List:
		b.WriteByte('[')
		for i, e := range x {
			if i != 0 {
				b.WriteByte(' ')
			}
			formatValue(b, e)
		}
		b.WriteByte(']')
	case Record:
		b.WriteByte('{')
		formatFields(b, x)
		b.WriteByte('}')
	case nil:
		b.WriteString("<nil>")
	default:
		b.WriteString(v.String())
	}
}

func formatFields(b *strings.Builder, r Record) {
	for i, f := range r {
		if i != 0 {
			b.WriteByte(' ')
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		formatValue(b, f.Value)
	}
}

// AsInt returns v as a signed integer when it holds one.
func AsInt(v Value) (int64, bool) {
	switch x := v.(type) {
	case Int:
		return int64(x), true
	case Uint:
		if x > math.MaxInt64 {
			return math.MaxInt64, true
		}
		return int64(x), true
	default:
		return 0, false
	}
}

func (v Float) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return json.Marshal(v.String())
	}
	return json.Marshal(f)
}

func (v Pointer) MarshalJSON() ([]byte, error)   { return json.Marshal(v.String()) }
func (v Hex) MarshalJSON() ([]byte, error)       { return json.Marshal(v.String()) }
func (v Corrupted) MarshalJSON() ([]byte, error) { return json.Marshal(v.String()) }

func (v Pointer) MarshalYAML() (any, error)   { return v.String(), nil }
func (v Hex) MarshalYAML() (any, error)       { return v.String(), nil }
func (v Corrupted) MarshalYAML() (any, error) { return v.String(), nil }

// MarshalJSON encodes r as an object, keeping the fields in order.
func (r Record) MarshalJSON() ([]byte, error) {
	b := new(bytes.Buffer)
	b.WriteByte('{')
	for i, f := range r {
		if i != 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// MarshalYAML encodes r as a mapping, keeping the fields in order.
func (r Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range r {
		value := new(yaml.Node)
		if err := value.Encode(f.Value); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
			value,
		)
	}
	return node, nil
}
