package preamble

import (
	"strconv"
	"strings"
)

// Kind classifies how values of a type are decoded. It is derived once from
// the type identifier when a TypeDescriptor is created.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindBool
	KindChar
	KindPointer
	KindResult
	KindBitfield
	KindArray
	KindAggregate
)

var kindNames = [...]string{
	KindUnknown:   "unknown",
	KindInt8:      "int8",
	KindUint8:     "uint8",
	KindInt16:     "int16",
	KindUint16:    "uint16",
	KindInt32:     "int32",
	KindUint32:    "uint32",
	KindInt64:     "int64",
	KindUint64:    "uint64",
	KindFloat32:   "float32",
	KindFloat64:   "float64",
	KindBool:      "bool",
	KindChar:      "char",
	KindPointer:   "pointer",
	KindResult:    "result",
	KindBitfield:  "bitfield",
	KindArray:     "array",
	KindAggregate: "aggregate",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Width returns the byte size of fixed-width kinds, or zero when the width is
// taken from the type descriptor.
func (k Kind) Width() int {
	switch k {
	case KindInt8, KindUint8, KindChar:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindInt64, KindUint64, KindFloat64:
		return 8
	default:
		return 0
	}
}

func (k Kind) Unsigned() bool {
	switch k {
	case KindUint8, KindUint16, KindUint32, KindUint64, KindBool, KindPointer:
		return true
	default:
		return false
	}
}

// Primitive reports whether k decodes a single scalar value.
func (k Kind) Primitive() bool {
	return k >= KindInt8 && k <= KindResult
}

type layout struct {
	kind   Kind
	base   Kind
	elem   string
	dims   []int
	signed bool
}

var primitiveKinds = map[string]Kind{
	"char":                   KindChar,
	"CHAR":                   KindChar,
	"signed char":            KindInt8,
	"int8_t":                 KindInt8,
	"INT8":                   KindInt8,
	"unsigned char":          KindUint8,
	"uint8_t":                KindUint8,
	"UINT8":                  KindUint8,
	"BYTE":                   KindUint8,
	"short":                  KindInt16,
	"short int":              KindInt16,
	"signed short":           KindInt16,
	"int16_t":                KindInt16,
	"INT16":                  KindInt16,
	"unsigned short":         KindUint16,
	"unsigned short int":     KindUint16,
	"uint16_t":               KindUint16,
	"UINT16":                 KindUint16,
	"int":                    KindInt32,
	"signed":                 KindInt32,
	"signed int":             KindInt32,
	"int32_t":                KindInt32,
	"INT":                    KindInt32,
	"INT32":                  KindInt32,
	"unsigned":               KindUint32,
	"unsigned int":           KindUint32,
	"uint32_t":               KindUint32,
	"UINT":                   KindUint32,
	"UINT32":                 KindUint32,
	"long long":              KindInt64,
	"long long int":          KindInt64,
	"signed long long":       KindInt64,
	"int64_t":                KindInt64,
	"INT64":                  KindInt64,
	"unsigned long long":     KindUint64,
	"unsigned long long int": KindUint64,
	"uint64_t":               KindUint64,
	"UINT64":                 KindUint64,
	"float":                  KindFloat32,
	"FLOAT":                  KindFloat32,
	"double":                 KindFloat64,
	"DOUBLE":                 KindFloat64,
	"bool":                   KindBool,
	"_Bool":                  KindBool,
	"BOOL":                   KindBool,
	"CamxResult":             KindResult,
	"CDKResult":              KindResult,
}

// Types whose width differs between platforms; the value is the signedness.
var sizedTypes = map[string]bool{
	"long":              true,
	"long int":          true,
	"signed long":       true,
	"unsigned long":     false,
	"unsigned long int": false,
	"size_t":            false,
	"SIZE_T":            false,
	"ssize_t":           true,
	"intptr_t":          true,
	"INTPTR":            true,
	"uintptr_t":         false,
	"UINTPTR":           false,
	"ptrdiff_t":         true,
}

func classify(t *TypeDescriptor) layout {
	switch {
	case t.Metadata.Has(TagBitfield):
		return classifyBitfield(t)
	case len(t.Members) != 0:
		return layout{kind: KindAggregate}
	case strings.Contains(t.ID, "["):
		return classifyArray(t)
	default:
		return layout{kind: primitive(t.ID, t.Size)}
	}
}

func classifyBitfield(t *TypeDescriptor) layout {
	name := t.ID
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		name = name[:i]
	}
	name = normalize(name)
	base := primitive(name, 4)
	unsigned := strings.Contains(name, "unsigned") ||
		base.Unsigned() ||
		base.Width() == 1
	return layout{kind: KindBitfield, base: base, signed: !unsigned}
}

func classifyArray(t *TypeDescriptor) layout {
	i := strings.IndexByte(t.ID, '[')
	elem := strings.TrimSpace(t.ID[:i])
	dims, ok := parseDims(t.ID[i:])
	if !ok {
		return layout{kind: KindUnknown}
	}
	count := int64(1)
	for _, d := range dims {
		count *= int64(d)
	}
	if count == 0 || t.Size%count != 0 {
		return layout{kind: KindUnknown}
	}
	base := primitive(elem, t.Size/count)
	if base == KindUnknown {
		base = KindAggregate
	}
	return layout{kind: KindArray, base: base, elem: elem, dims: dims}
}

// parseDims parses a sequence of bracketed dimensions like "[2][3]". Text
// after the last closing bracket is ignored.
func parseDims(s string) (dims []int, ok bool) {
	for strings.HasPrefix(s, "[") {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, false
		}
		n, err := strconv.Atoi(strings.TrimSpace(s[1:end]))
		if err != nil || n <= 0 {
			return nil, false
		}
		dims = append(dims, n)
		s = strings.TrimSpace(s[end+1:])
	}
	return dims, len(dims) != 0
}

// primitive maps a type name to the kind of its scalar values. Enumerations
// and platform-sized integers take their width from size.
func primitive(name string, size int64) Kind {
	name = normalize(name)
	switch {
	case strings.HasSuffix(name, "*"):
		return KindPointer
	case strings.HasPrefix(name, "enum "):
		return intKind(size, true)
	}
	if k, ok := primitiveKinds[name]; ok {
		return k
	}
	if signed, ok := sizedTypes[name]; ok {
		return intKind(size, signed)
	}
	return KindUnknown
}

func intKind(size int64, signed bool) Kind {
	var k Kind
	switch size {
	case 1:
		k = KindInt8
	case 2:
		k = KindInt16
	case 4:
		k = KindInt32
	case 8:
		k = KindInt64
	default:
		return KindUnknown
	}
	if !signed {
		k++
	}
	return k
}

// normalize drops cv-qualifiers, rename tags added by Merge and redundant
// white space from a type name.
func normalize(name string) string {
	name = stripRenameTag(name)
	fields := strings.Fields(name)
	n := 0
	for _, f := range fields {
		if f != "const" && f != "volatile" {
			fields[n] = f
			n++
		}
	}
	return strings.Join(fields[:n], " ")
}

func stripRenameTag(name string) string {
	i := strings.IndexByte(name, '#')
	if i < 0 {
		return name
	}
	j := strings.IndexAny(name[i:], "[:")
	if j < 0 {
		return name[:i]
	}
	return name[:i] + name[i+j:]
}
