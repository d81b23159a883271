package preamble

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Merge combines the preambles of separate compilation units into one.
//
// Types equal to a type already present are shared. A type whose identifier
// is already used by a different layout is renamed with a hash of its source
// name and tagged with its origin; the types and encodings referencing it are
// rewritten to use the renamed type. Encodings are registered with the
// collision rules of AddEncoding, so two different layouts for the same log
// event fail the merge with an *EncodingCollisionError.
func Merge(preambles ...*Preamble) (*Preamble, error) {
	switch len(preambles) {
	case 0:
		return New(""), nil
	case 1:
		return preambles[0], nil
	}
	merged := preambles[0]
	for _, p := range preambles[1:] {
		m, err := merge(merged, p)
		if err != nil {
			return nil, err
		}
		merged = m
	}
	return merged, nil
}

func merge(left, right *Preamble) (*Preamble, error) {
	out := New(left.Source + "+" + right.Source)

	for _, e := range left.events {
		out.AddEvent(e)
	}
	for _, e := range right.events {
		out.AddEvent(e)
	}

	for _, t := range left.types {
		out.AddType(t)
	}
	r := &renamer{
		into:    out,
		from:    right,
		tag:     sourceTag(right.Source),
		origin:  originPrefix + right.Source,
		mapping: make(map[*TypeDescriptor]*TypeDescriptor, len(right.types)),
	}
	for _, t := range right.types {
		r.rename(t)
	}

	for _, enc := range left.Encodings() {
		if err := out.AddEncoding(enc); err != nil {
			return nil, err
		}
	}
	for _, enc := range right.Encodings() {
		if err := out.AddEncoding(r.encoding(enc)); err != nil {
			return nil, err
		}
	}

	out.mismatches = append(out.mismatches, left.mismatches...)
	out.mismatches = append(out.mismatches, right.mismatches...)
	return out, nil
}

type renamer struct {
	into    *Preamble
	from    *Preamble
	tag     string
	origin  string
	mapping map[*TypeDescriptor]*TypeDescriptor
}

// rename adds t to the merged preamble and returns the descriptor standing
// for it there.
func (r *renamer) rename(t *TypeDescriptor) *TypeDescriptor {
	if m, ok := r.mapping[t]; ok {
		return m
	}

	id := t.ID
	if t.Kind() == KindArray {
		// Array elements are referenced by name, rename them first so the
		// array identifier follows.
		if elem, _ := t.Elem(); elem != "" {
			if et, ok := r.from.Type(elem); ok && et != t {
				if re := r.rename(et); re.ID != et.ID {
					id = re.ID + strings.TrimPrefix(id, elem)
				}
			}
		}
	}

	var members []VariableDescriptor
	for i, m := range t.Members {
		if mt := r.rename(m.Type); mt != m.Type {
			if members == nil {
				members = append([]VariableDescriptor(nil), t.Members...)
			}
			members[i].Type = mt
		}
	}

	candidate := t
	if members != nil || id != t.ID {
		if members == nil {
			members = t.Members
		}
		candidate = NewTypeDescriptor(id, t.Size, members, t.Metadata)
	}

	if r.into.lookupType(candidate) == nil {
		if other, ok := r.into.Type(candidate.ID); ok && !other.Equal(candidate) {
			candidate = NewTypeDescriptor(
				renameID(candidate, r.tag),
				candidate.Size,
				candidate.Members,
				candidate.Metadata.With(r.origin),
			)
		}
	}
	found, _ := r.into.AddType(candidate)
	r.mapping[t] = found
	return found
}

func (r *renamer) encoding(enc *LogEncoding) *LogEncoding {
	var fields []VariableDescriptor
	for i, f := range enc.Fields {
		if ft := r.rename(f.Type); ft != f.Type {
			if fields == nil {
				fields = append([]VariableDescriptor(nil), enc.Fields...)
			}
			fields[i].Type = ft
		}
	}
	if fields == nil {
		return enc
	}
	return NewLogEncoding(enc.Event, fields, enc.Source)
}

// renameID inserts #tag after the type name, before any array dimensions or
// bitfield width.
func renameID(t *TypeDescriptor, tag string) string {
	id := t.ID
	i := strings.IndexByte(id, '[')
	if i < 0 && t.Metadata.Has(TagBitfield) {
		i = strings.LastIndexByte(id, ':')
	}
	if i > 0 {
		return id[:i] + "#" + tag + id[i:]
	}
	return id + "#" + tag
}

func sourceTag(source string) string {
	h := fnv.New32a()
	h.Write([]byte(source))
	return fmt.Sprintf("%08x", h.Sum32())
}
