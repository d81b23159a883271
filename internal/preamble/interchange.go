package preamble

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Interchange format of preambles, exchanged between binlog invocations.
// Integers are encoded as strings. The offsets of log encoding fields are not
// part of the format: they are recomputed when the document is loaded.
type document struct {
	LogEvents       []jsonEvent    `json:"log_events"`
	TypeDescriptors []jsonType     `json:"type_descriptors"`
	LogEncodings    []jsonEncoding `json:"log_encodings"`
}

type jsonEvent struct {
	ID    string `json:"id"`
	Size  int64  `json:"size,string"`
	Value int64  `json:"value,string"`
}

type jsonType struct {
	ID       string       `json:"id"`
	Size     int64        `json:"size,string"`
	Metadata []string     `json:"metadata"`
	Members  []jsonMember `json:"members"`
}

type jsonMember struct {
	ID       string   `json:"id"`
	Offset   int64    `json:"offset,string"`
	Type     string   `json:"type"`
	Metadata []string `json:"metadata"`
}

type jsonEncoding struct {
	LogEvent string      `json:"log_event"`
	Encoding []jsonField `json:"encoding"`
}

type jsonField struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Metadata []string `json:"metadata"`
}

// Marshal encodes p in the interchange format. Types are listed after the
// types of their members.
func Marshal(p *Preamble) ([]byte, error) {
	return json.Marshal(p.document())
}

// MarshalIndent is like Marshal but indents the output.
func MarshalIndent(p *Preamble, indent string) ([]byte, error) {
	return json.MarshalIndent(p.document(), "", indent)
}

func (p *Preamble) MarshalJSON() ([]byte, error) { return Marshal(p) }

func (p *Preamble) document() *document {
	doc := &document{
		LogEvents:       make([]jsonEvent, len(p.events)),
		TypeDescriptors: make([]jsonType, 0, len(p.types)),
		LogEncodings:    make([]jsonEncoding, 0, len(p.order)),
	}
	for i, e := range p.events {
		doc.LogEvents[i] = jsonEvent{ID: e.ID, Size: e.Size, Value: e.Value}
	}

	seen := make(map[*TypeDescriptor]bool, len(p.types))
	var visit func(*TypeDescriptor)
	visit = func(t *TypeDescriptor) {
		if seen[t] {
			return
		}
		seen[t] = true
		jt := jsonType{
			ID:       t.ID,
			Size:     t.Size,
			Metadata: tags(t.Metadata),
			Members:  make([]jsonMember, len(t.Members)),
		}
		for i, m := range t.Members {
			visit(m.Type)
			jt.Members[i] = jsonMember{
				ID:       m.ID,
				Offset:   m.Offset,
				Type:     m.Type.ID,
				Metadata: tags(m.Metadata),
			}
		}
		doc.TypeDescriptors = append(doc.TypeDescriptors, jt)
	}
	for _, t := range p.types {
		visit(t)
	}

	for _, enc := range p.Encodings() {
		je := jsonEncoding{
			LogEvent: enc.Event.ID,
			Encoding: make([]jsonField, len(enc.Fields)),
		}
		for i, f := range enc.Fields {
			je.Encoding[i] = jsonField{ID: f.ID, Type: f.Type.ID, Metadata: tags(f.Metadata)}
		}
		doc.LogEncodings = append(doc.LogEncodings, je)
	}
	return doc
}

func tags(m Metadata) []string {
	if m == nil {
		return []string{}
	}
	return m
}

// Unmarshal decodes a preamble from its interchange format.
func Unmarshal(source string, data []byte) (*Preamble, error) {
	if source == "" {
		source = stringSource
	}
	doc := new(document)
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, invalidSource(source, "%w", err)
	}
	p, err := doc.preamble(source)
	if err != nil {
		if errors.Is(err, ErrEncodingCollision) {
			return nil, err
		}
		return nil, invalidSource(source, "%w", err)
	}
	return p, nil
}

func (p *Preamble) UnmarshalJSON(b []byte) error {
	q, err := Unmarshal(p.Source, b)
	if err != nil {
		return err
	}
	*p = *q
	return nil
}

// Load reads a preamble from a file in the interchange format.
func Load(path string) (*Preamble, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(path, b)
}

func (doc *document) preamble(source string) (*Preamble, error) {
	p := New(source)
	for _, e := range doc.LogEvents {
		p.AddEvent(EnumDescriptor{ID: e.ID, Size: e.Size, Value: e.Value})
	}

	decls := make(map[string]*jsonType, len(doc.TypeDescriptors))
	for i := range doc.TypeDescriptors {
		t := &doc.TypeDescriptors[i]
		if _, dup := decls[t.ID]; dup {
			return nil, fmt.Errorf("type %q declared more than once", t.ID)
		}
		decls[t.ID] = t
	}

	resolved := make(map[string]*TypeDescriptor, len(decls))
	var resolve func(id string, path []string) (*TypeDescriptor, error)
	resolve = func(id string, path []string) (*TypeDescriptor, error) {
		if t, ok := resolved[id]; ok {
			return t, nil
		}
		decl, ok := decls[id]
		if !ok {
			return nil, fmt.Errorf("undeclared type %q", id)
		}
		for _, visiting := range path {
			if visiting == id {
				return nil, fmt.Errorf("type %q contains itself", id)
			}
		}
		path = append(path, id)
		members := make([]VariableDescriptor, len(decl.Members))
		for i, m := range decl.Members {
			mt, err := resolve(m.Type, path)
			if err != nil {
				return nil, err
			}
			members[i] = VariableDescriptor{
				ID:       m.ID,
				Offset:   m.Offset,
				Type:     mt,
				Metadata: NewMetadata(m.Metadata...),
			}
		}
		if len(members) == 0 {
			members = nil
		}
		t, _ := p.AddType(NewTypeDescriptor(decl.ID, decl.Size, members, decl.Metadata))
		resolved[id] = t
		return t, nil
	}

	for _, t := range doc.TypeDescriptors {
		if _, err := resolve(t.ID, nil); err != nil {
			return nil, err
		}
	}

	for _, je := range doc.LogEncodings {
		event, ok := p.Event(je.LogEvent)
		if !ok {
			return nil, fmt.Errorf("encoding of undeclared log event %q", je.LogEvent)
		}
		fields := make([]VariableDescriptor, len(je.Encoding))
		for i, f := range je.Encoding {
			t, ok := resolved[f.Type]
			if !ok {
				return nil, fmt.Errorf("%s: field %q: undeclared type %q", je.LogEvent, f.ID, f.Type)
			}
			fields[i] = VariableDescriptor{ID: f.ID, Type: t, Metadata: NewMetadata(f.Metadata...)}
		}
		if err := p.AddEncoding(NewLogEncoding(event, fields, source)); err != nil {
			return nil, err
		}
	}
	return p, nil
}
