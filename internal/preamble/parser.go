package preamble

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/valyala/fastjson"
)

const stringSource = "<string>"

// Parse builds a preamble from the call-site description emitted by the
// compiler: a JSON array with one object per log call site.
//
//	[{"log": {"var": "Foo", "enum val": 7, "size": 2},
//	  "data": [{"var": "x", "type": "unsigned short", "size": 2}]}]
//
// Member nodes have a "type" (optionally suffixed with " (base)"), either a
// "size" in bytes or a "size (bits)" for bitfields, an optional "offset" and
// optional nested "members".
//
// Offsets of the top-level fields of each call site are recomputed so fields
// are packed in order; offsets reported by the compiler which disagree are
// recorded as OffsetMismatch values.
func Parse(source string, data []byte) (*Preamble, error) {
	if source == "" {
		source = stringSource
	}
	var parser fastjson.Parser
	doc, err := parser.ParseBytes(data)
	if err != nil {
		return nil, invalidSource(source, "%w", err)
	}
	sites, err := doc.Array()
	if err != nil {
		return nil, invalidSource(source, "call sites: %w", err)
	}
	p := New(source)
	for i, site := range sites {
		if err := p.parseCallSite(site); err != nil {
			if errors.Is(err, ErrEncodingCollision) {
				return nil, err
			}
			return nil, invalidSource(source, "call site %d: %w", i, err)
		}
	}
	return p, nil
}

// ParseFile parses the call-site description stored in path.
func ParseFile(path string) (*Preamble, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, b)
}

// ParseFiles parses the call-site descriptions of each path and merges them
// into one preamble.
func ParseFiles(paths ...string) (*Preamble, error) {
	preambles := make([]*Preamble, 0, len(paths))
	for _, path := range paths {
		p, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		preambles = append(preambles, p)
	}
	return Merge(preambles...)
}

func (p *Preamble) parseCallSite(site *fastjson.Value) error {
	log := site.Get("log")
	if log == nil {
		return fmt.Errorf(`missing "log" object`)
	}
	event, err := parseEvent(log)
	if err != nil {
		return err
	}
	if event.ID != IgnoredEvent {
		p.AddEvent(event)
	}

	var nodes []*fastjson.Value
	if data := site.Get("data"); data != nil && data.Type() != fastjson.TypeNull {
		if nodes, err = data.Array(); err != nil {
			return fmt.Errorf("%s: data: %w", event.ID, err)
		}
	}

	fields := make([]VariableDescriptor, len(nodes))
	reported := make([]int64, len(nodes))
	for i, node := range nodes {
		v, err := p.parseMember(node)
		if err != nil {
			return fmt.Errorf("%s: %w", event.ID, err)
		}
		fields[i], reported[i] = v, v.Offset
	}

	enc := NewLogEncoding(event, fields, p.Source)
	for i, f := range enc.Fields {
		if nodes[i].Exists("offset") && reported[i] != f.Offset {
			p.mismatches = append(p.mismatches, OffsetMismatch{
				Event:    event.ID,
				Field:    f.ID,
				Reported: reported[i],
				Packed:   f.Offset,
			})
		}
	}
	return p.AddEncoding(enc)
}

func parseEvent(log *fastjson.Value) (EnumDescriptor, error) {
	var e EnumDescriptor
	var err error
	e.ID = string(log.GetStringBytes("var"))
	if e.ID == "" {
		return e, fmt.Errorf(`log: missing "var"`)
	}
	if e.Value, err = intField(log, "enum val"); err != nil {
		return e, fmt.Errorf("log %s: %w", e.ID, err)
	}
	if log.Exists("size") {
		if e.Size, err = intField(log, "size"); err != nil {
			return e, fmt.Errorf("log %s: %w", e.ID, err)
		}
	}
	return e, nil
}

// parseMember parses a member node and its nested members, registering every
// type it discovers. The returned variable references the types held by the
// preamble.
func (p *Preamble) parseMember(node *fastjson.Value) (VariableDescriptor, error) {
	v := VariableDescriptor{ID: string(node.GetStringBytes("var"))}

	typeID := strings.TrimSpace(string(node.GetStringBytes("type")))
	if typeID == "" {
		return v, fmt.Errorf(`member %q: missing "type"`, v.ID)
	}

	var varTags, typeTags []string
	if i := strings.Index(typeID, "(base)"); i >= 0 {
		typeID = strings.TrimSpace(typeID[:i] + typeID[i+len("(base)"):])
		varTags = append(varTags, TagBase)
	}

	var size int64
	var err error
	switch {
	case node.Exists("size (bits)"):
		if size, err = intField(node, "size (bits)"); err != nil {
			return v, fmt.Errorf("member %q: %w", v.ID, err)
		}
		typeID += ":" + strconv.FormatInt(size, 10)
		varTags = append(varTags, TagBitfield)
		typeTags = append(typeTags, TagBitfield)
	case node.Exists("size"):
		if size, err = intField(node, "size"); err != nil {
			return v, fmt.Errorf("member %q: %w", v.ID, err)
		}
	default:
		return v, fmt.Errorf(`member %q: missing "size" or "size (bits)"`, v.ID)
	}

	if node.Exists("offset") {
		if v.Offset, err = intField(node, "offset"); err != nil {
			return v, fmt.Errorf("member %q: %w", v.ID, err)
		}
	}

	var members []VariableDescriptor
	if m := node.Get("members"); m != nil && m.Type() != fastjson.TypeNull {
		children, err := m.Array()
		if err != nil {
			return v, fmt.Errorf("member %q: members: %w", v.ID, err)
		}
		members = make([]VariableDescriptor, len(children))
		for i, child := range children {
			if members[i], err = p.parseMember(child); err != nil {
				return v, fmt.Errorf("%s.%w", v.ID, err)
			}
		}
	}

	v.Type = p.addParsedType(NewTypeDescriptor(typeID, size, members, typeTags))
	v.Metadata = NewMetadata(varTags...)
	return v, nil
}

// addParsedType registers t, renaming it to <id>#<n> when a type with the same
// identifier but a different layout was already registered. Compilers reuse
// names such as "struct (anonymous)" for unrelated layouts, and identifiers
// must stay unique in the interchange format.
func (p *Preamble) addParsedType(t *TypeDescriptor) *TypeDescriptor {
	if found := p.lookupType(t); found != nil {
		return found
	}
	if _, taken := p.Type(t.ID); !taken {
		found, _ := p.AddType(t)
		return found
	}
	for n := 1; ; n++ {
		renamed := NewTypeDescriptor(renameID(t, strconv.Itoa(n)), t.Size, t.Members, t.Metadata)
		if found := p.lookupType(renamed); found != nil {
			return found
		}
		if _, taken := p.Type(renamed.ID); !taken {
			found, _ := p.AddType(renamed)
			return found
		}
	}
}

// intField reads an integer which the compiler may emit either as a JSON
// number or as a string.
func intField(v *fastjson.Value, key string) (int64, error) {
	f := v.Get(key)
	if f == nil {
		return 0, fmt.Errorf("missing %q", key)
	}
	switch f.Type() {
	case fastjson.TypeNumber:
		n, err := f.Int64()
		if err != nil {
			return 0, fmt.Errorf("%q: %w", key, err)
		}
		return n, nil
	case fastjson.TypeString:
		s, _ := f.StringBytes()
		n, err := strconv.ParseInt(strings.TrimSpace(string(s)), 0, 64)
		if err != nil {
			return 0, fmt.Errorf("%q: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%q: expected an integer, got %s", key, f.Type())
	}
}
