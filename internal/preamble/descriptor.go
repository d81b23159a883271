package preamble

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/fnv"
	"strings"

	"golang.org/x/exp/slices"
)

const (
	TagBase     = "base"
	TagBitfield = "bitfield"

	originPrefix = "origin:"
)

// Metadata is a sorted set of tags attached to types and variables.
type Metadata []string

// NewMetadata returns the sorted set of the given tags, or nil if there are
// none.
func NewMetadata(tags ...string) Metadata {
	if len(tags) == 0 {
		return nil
	}
	m := slices.Clone(tags)
	slices.Sort(m)
	return slices.Compact(m)
}

func (m Metadata) Has(tag string) bool { return slices.Contains(m, tag) }

func (m Metadata) Equal(other Metadata) bool { return slices.Equal(m, other) }

// With returns a copy of m with tag added.
func (m Metadata) With(tag string) Metadata {
	return NewMetadata(append(slices.Clip(m), tag)...)
}

// Origin returns the source recorded on a type renamed by Merge.
func (m Metadata) Origin() (string, bool) {
	for _, tag := range m {
		if origin, ok := strings.CutPrefix(tag, originPrefix); ok {
			return origin, true
		}
	}
	return "", false
}

// EnumDescriptor is a log event tag: its identifier and the value carried on
// the wire. Two enum descriptors are equal when both ID and Value match.
type EnumDescriptor struct {
	ID    string
	Value int64
	Size  int64
}

// EnumKey is the comparable identity of an EnumDescriptor.
type EnumKey struct {
	Value int64
	ID    string
}

func (e EnumDescriptor) Key() EnumKey { return EnumKey{Value: e.Value, ID: e.ID} }

func (e EnumDescriptor) Equal(other EnumDescriptor) bool { return e.Key() == other.Key() }

func (e EnumDescriptor) String() string { return fmt.Sprintf("%s(%d)", e.ID, e.Value) }

// TypeDescriptor is the memory layout of a type. Members is empty for scalar
// and array types. Descriptors must not be modified after construction; use
// NewTypeDescriptor to create them so the derived layout and hash are
// computed.
type TypeDescriptor struct {
	ID       string
	Size     int64
	Members  []VariableDescriptor
	Metadata Metadata

	layout layout
	hash   uint64
}

func NewTypeDescriptor(id string, size int64, members []VariableDescriptor, metadata Metadata) *TypeDescriptor {
	t := &TypeDescriptor{
		ID:       id,
		Size:     size,
		Members:  members,
		Metadata: NewMetadata(metadata...),
	}
	t.layout = classify(t)
	h := fnv.New64a()
	t.hashTo(h)
	t.hash = h.Sum64()
	return t
}

func (t *TypeDescriptor) Kind() Kind { return t.layout.kind }

// Dims returns the dimensions of an array type.
func (t *TypeDescriptor) Dims() []int { return t.layout.dims }

// Elem returns the element type name and kind of an array type. The kind is
// KindAggregate when the element must be resolved through a Catalog.
func (t *TypeDescriptor) Elem() (string, Kind) { return t.layout.elem, t.layout.base }

// Signed reports whether a bitfield holds a signed value.
func (t *TypeDescriptor) Signed() bool { return t.layout.signed }

func (t *TypeDescriptor) Hash() uint64 { return t.hash }

// Equal compares identifier, size, members and metadata.
func (t *TypeDescriptor) Equal(other *TypeDescriptor) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil || t.hash != other.hash {
		return false
	}
	return t.ID == other.ID &&
		t.Size == other.Size &&
		t.Metadata.Equal(other.Metadata) &&
		slices.EqualFunc(t.Members, other.Members, VariableDescriptor.Equal)
}

func (t *TypeDescriptor) String() string {
	return fmt.Sprintf("%s(%d)", t.ID, t.Size)
}

func (t *TypeDescriptor) hashTo(h hash.Hash64) {
	var b [8]byte
	h.Write([]byte(t.ID))
	h.Write([]byte{0})
	h.Write(binary.LittleEndian.AppendUint64(b[:0], uint64(t.Size)))
	for _, tag := range t.Metadata {
		h.Write([]byte(tag))
		h.Write([]byte{0})
	}
	for _, m := range t.Members {
		h.Write(binary.LittleEndian.AppendUint64(b[:0], m.Hash()))
	}
}

// VariableDescriptor binds a type at an offset within a parent aggregate or
// a log encoding. Offset is in bytes, or in bits for bitfields.
//
// The variable name does not take part in equality: the same layout may be
// named differently by separate compilation units.
type VariableDescriptor struct {
	ID       string
	Offset   int64
	Type     *TypeDescriptor
	Metadata Metadata
}

func (v VariableDescriptor) Equal(other VariableDescriptor) bool {
	return v.Offset == other.Offset && v.Type.Equal(other.Type)
}

func (v VariableDescriptor) Hash() uint64 {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[:8], uint64(v.Offset))
	if v.Type != nil {
		binary.LittleEndian.PutUint64(b[8:], v.Type.hash)
	}
	h := fnv.New64a()
	h.Write(b[:])
	return h.Sum64()
}

func (v VariableDescriptor) String() string {
	return fmt.Sprintf("%s %s @%d", v.Type.ID, v.ID, v.Offset)
}

// LogEncoding is the wire layout of one log event: the fields following the
// event id in a record payload. Source records where the encoding was parsed
// from and is not compared by Equal.
type LogEncoding struct {
	Event  EnumDescriptor
	Size   int64
	Fields []VariableDescriptor
	Source string
}

// NewLogEncoding lays out fields contiguously, in order, and computes the
// encoding size.
func NewLogEncoding(event EnumDescriptor, fields []VariableDescriptor, source string) *LogEncoding {
	enc := &LogEncoding{
		Event:  event,
		Fields: make([]VariableDescriptor, len(fields)),
		Source: source,
	}
	for i, f := range fields {
		f.Offset = enc.Size
		enc.Fields[i] = f
		enc.Size += f.Type.Size
	}
	return enc
}

func (e *LogEncoding) Equal(other *LogEncoding) bool {
	return e.Event.Equal(other.Event) &&
		e.Size == other.Size &&
		slices.EqualFunc(e.Fields, other.Fields, VariableDescriptor.Equal)
}

func (e *LogEncoding) String() string {
	s := new(strings.Builder)
	fmt.Fprintf(s, "%s [%d bytes]{", e.Event, e.Size)
	for i, f := range e.Fields {
		if i != 0 {
			s.WriteString("; ")
		}
		s.WriteString(f.String())
	}
	s.WriteString("}")
	return s.String()
}
