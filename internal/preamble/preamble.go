// Package preamble models the schema of binary trace files: the log events
// emitted by a program and the memory layout of the values they carry.
//
// A Preamble is built from the call-site descriptions emitted by the compiler
// (Parse), from its JSON interchange form (Unmarshal), or by merging the
// preambles of separate compilation units (Merge). Once built it is never
// modified and may be shared by concurrent decoders.
package preamble

import "golang.org/x/exp/slices"

// IgnoredEvent is the identifier of call sites which never produce records.
// Its encodings are dropped instead of being checked for collisions.
const IgnoredEvent = "LOG_EVENT_IGNORED"

type Preamble struct {
	Source string

	events     []EnumDescriptor
	eventIDs   map[string]int
	values     map[int64]int
	types      []*TypeDescriptor
	typeHashes map[uint64][]*TypeDescriptor
	catalog    map[string]*TypeDescriptor
	encodings  map[string]*LogEncoding
	order      []string
	mismatches []OffsetMismatch
}

// OffsetMismatch records a top-level field whose offset reported by the
// compiler differs from its offset in the packed encoding.
type OffsetMismatch struct {
	Event    string
	Field    string
	Reported int64
	Packed   int64
}

func New(source string) *Preamble {
	return &Preamble{
		Source:     source,
		eventIDs:   make(map[string]int),
		values:     make(map[int64]int),
		typeHashes: make(map[uint64][]*TypeDescriptor),
		catalog:    make(map[string]*TypeDescriptor),
		encodings:  make(map[string]*LogEncoding),
	}
}

// AddEvent registers e unless an event with the same identifier exists.
func (p *Preamble) AddEvent(e EnumDescriptor) {
	if _, ok := p.eventIDs[e.ID]; ok {
		return
	}
	p.eventIDs[e.ID] = len(p.events)
	if _, ok := p.values[e.Value]; !ok {
		p.values[e.Value] = len(p.events)
	}
	p.events = append(p.events, e)
}

// AddType adds t to the type set and returns the descriptor held by the
// preamble, which is t itself unless a structurally equal type was already
// present.
func (p *Preamble) AddType(t *TypeDescriptor) (*TypeDescriptor, bool) {
	if found := p.lookupType(t); found != nil {
		return found, false
	}
	p.typeHashes[t.hash] = append(p.typeHashes[t.hash], t)
	p.types = append(p.types, t)
	if _, ok := p.catalog[t.ID]; !ok {
		p.catalog[t.ID] = t
	}
	return t, true
}

func (p *Preamble) lookupType(t *TypeDescriptor) *TypeDescriptor {
	for _, found := range p.typeHashes[t.hash] {
		if found.Equal(t) {
			return found
		}
	}
	return nil
}

// AddEncoding registers the wire layout of a log event. Adding an encoding
// equal to the one already registered for the same event is a no-op, adding
// a different one fails with an *EncodingCollisionError. Encodings of
// IgnoredEvent are dropped.
func (p *Preamble) AddEncoding(enc *LogEncoding) error {
	id := enc.Event.ID
	if id == IgnoredEvent {
		return nil
	}
	if found, ok := p.encodings[id]; ok {
		if found.Equal(enc) {
			return nil
		}
		return &EncodingCollisionError{ID: id, Existing: found, Incoming: enc}
	}
	p.encodings[id] = enc
	p.order = append(p.order, id)
	return nil
}

func (p *Preamble) Events() []EnumDescriptor { return p.events }

func (p *Preamble) Types() []*TypeDescriptor { return p.types }

// Encodings returns the encodings in the order they were registered.
func (p *Preamble) Encodings() []*LogEncoding {
	encs := make([]*LogEncoding, len(p.order))
	for i, id := range p.order {
		encs[i] = p.encodings[id]
	}
	return encs
}

func (p *Preamble) OffsetMismatches() []OffsetMismatch { return p.mismatches }

func (p *Preamble) Encoding(id string) (*LogEncoding, bool) {
	enc, ok := p.encodings[id]
	return enc, ok
}

func (p *Preamble) Event(id string) (EnumDescriptor, bool) {
	i, ok := p.eventIDs[id]
	if !ok {
		return EnumDescriptor{}, false
	}
	return p.events[i], true
}

// EventByValue returns the event carrying value on the wire. When several
// events share a value the first registered wins.
func (p *Preamble) EventByValue(value int64) (EnumDescriptor, bool) {
	i, ok := p.values[value]
	if !ok {
		return EnumDescriptor{}, false
	}
	return p.events[i], true
}

// Type returns the first type registered with the given identifier.
func (p *Preamble) Type(id string) (*TypeDescriptor, bool) {
	t, ok := p.catalog[id]
	return t, ok
}

// Catalog returns a read-only view of the preamble types, used by decoders to
// resolve the element types of arrays.
func (p *Preamble) Catalog() Catalog { return Catalog{types: p.catalog} }

// Equal compares the events in order, the type sets and the encodings. Source
// names are not compared.
func (p *Preamble) Equal(other *Preamble) bool {
	if !slices.EqualFunc(p.events, other.events, EnumDescriptor.Equal) {
		return false
	}
	if len(p.types) != len(other.types) || len(p.encodings) != len(other.encodings) {
		return false
	}
	for _, t := range p.types {
		if other.lookupType(t) == nil {
			return false
		}
	}
	for id, enc := range p.encodings {
		found, ok := other.encodings[id]
		if !ok || !found.Equal(enc) {
			return false
		}
	}
	return true
}

// Catalog indexes type descriptors by identifier.
type Catalog struct{ types map[string]*TypeDescriptor }

// NewCatalog builds a catalog of types; the first type of each identifier
// wins.
func NewCatalog(types ...*TypeDescriptor) Catalog {
	c := Catalog{types: make(map[string]*TypeDescriptor, len(types))}
	for _, t := range types {
		if _, ok := c.types[t.ID]; !ok {
			c.types[t.ID] = t
		}
	}
	return c
}

func (c Catalog) Type(id string) (*TypeDescriptor, bool) {
	t, ok := c.types[id]
	return t, ok
}

func (c Catalog) Len() int { return len(c.types) }
