// Package decoder turns the payload of binary log records into values,
// following the layout described by preamble types.
//
// Decoding is best effort: a field which cannot be decoded, because its type
// is unknown or because the payload is shorter than the layout expects, is
// reported as a Hex value holding its raw bytes and the remaining fields are
// decoded normally.
package decoder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/chi-cdk/binlog/internal/preamble"
)

var (
	errUnknownType = errors.New("unknown type")
	errShortBuffer = errors.New("value exceeds buffer")
	errWidth       = errors.New("unsupported width")
)

type Options struct {
	// Decode arrays of characters as NUL terminated strings instead of lists
	// of one character strings.
	CharArraysAsString bool
}

// Decode decodes fields from buf. Field offsets are relative to the start of
// buf. The catalog resolves the element types of arrays of structures.
func Decode(fields []preamble.VariableDescriptor, buf []byte, catalog preamble.Catalog, opts Options) Record {
	d := decoder{catalog: catalog, opts: opts}
	return d.record(fields, buf)
}

// DecodeEncoding decodes the payload of a record of the given encoding, the
// bytes following the event id.
func DecodeEncoding(enc *preamble.LogEncoding, buf []byte, catalog preamble.Catalog, opts Options) Record {
	return Decode(enc.Fields, buf, catalog, opts)
}

type decoder struct {
	catalog preamble.Catalog
	opts    Options
}

func (d *decoder) record(fields []preamble.VariableDescriptor, buf []byte) Record {
	r := make(Record, len(fields))
	for i, f := range fields {
		v, err := d.field(f, buf)
		if err != nil {
			v = fallback(f, buf)
		}
		r[i] = Field{Name: f.ID, Value: v}
	}
	return r
}

func (d *decoder) field(f preamble.VariableDescriptor, buf []byte) (Value, error) {
	t := f.Type
	if t.Kind() == preamble.KindBitfield {
		return bitfield(t, f.Offset, buf)
	}
	b, err := slice(buf, f.Offset, t.Size)
	if err != nil {
		return nil, err
	}
	return d.value(t, b)
}

// value decodes b, which holds exactly one value of type t.
func (d *decoder) value(t *preamble.TypeDescriptor, b []byte) (Value, error) {
	switch t.Kind() {
	case preamble.KindAggregate:
		return d.record(t.Members, b), nil
	case preamble.KindArray:
		return d.array(t, b)
	case preamble.KindBitfield:
		return bitfield(t, 0, b)
	default:
		return scalar(t.Kind(), b)
	}
}

func (d *decoder) array(t *preamble.TypeDescriptor, b []byte) (Value, error) {
	dims := t.Dims()
	name, kind := t.Elem()

	count := 1
	for _, n := range dims {
		count *= n
	}
	size := len(b) / count

	if kind == preamble.KindChar && size == 1 && d.opts.CharArraysAsString {
		// The innermost dimension holds the characters of each string.
		n := dims[len(dims)-1]
		rows := make([]Value, count/n)
		for i := range rows {
			rows[i] = String(cstring(b[i*n : (i+1)*n]))
		}
		if len(dims) == 1 {
			return rows[0], nil
		}
		return reshape(rows, dims[:len(dims)-1]), nil
	}

	values := make([]Value, count)
	if kind == preamble.KindAggregate {
		elem, ok := d.resolve(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", errUnknownType, name)
		}
		if elem.Size != int64(size) {
			return nil, fmt.Errorf("%s: element size mismatch: %d != %d", name, elem.Size, size)
		}
		for i := range values {
			chunk := b[i*size : (i+1)*size]
			v, err := d.value(elem, chunk)
			if err != nil {
				v = Hex(slices.Clone(chunk))
			}
			values[i] = v
		}
	} else {
		for i := range values {
			chunk := b[i*size : (i+1)*size]
			v, err := scalar(kind, chunk)
			if err != nil {
				v = Hex(slices.Clone(chunk))
			}
			values[i] = v
		}
	}
	return reshape(values, dims), nil
}

// resolve looks up an array element type, retrying without qualifiers or
// elaborated type specifiers.
func (d *decoder) resolve(name string) (*preamble.TypeDescriptor, bool) {
	if t, ok := d.catalog.Type(name); ok {
		return t, true
	}
	fields := strings.Fields(name)
	n := 0
	for _, f := range fields {
		switch f {
		case "const", "volatile", "struct", "class", "union":
		default:
			fields[n] = f
			n++
		}
	}
	return d.catalog.Type(strings.Join(fields[:n], " "))
}

// reshape groups a flat list of values into nested lists following dims,
// starting with the innermost dimension.
func reshape(values []Value, dims []int) Value {
	for i := len(dims) - 1; i > 0; i-- {
		n := dims[i]
		groups := make([]Value, len(values)/n)
		for j := range groups {
			groups[j] = List(values[j*n : (j+1)*n])
		}
		values = groups
	}
	return List(values)
}

// bitfield decodes t.Size bits starting offset bits into buf. Bit positions
// are counted from the most significant bit of the first byte, so the field
// is read MSB-first across the bytes it spans.
func bitfield(t *preamble.TypeDescriptor, offset int64, buf []byte) (Value, error) {
	width := t.Size
	if width <= 0 || width > 64 {
		return nil, fmt.Errorf("%w: %d bits", errWidth, width)
	}
	if offset < 0 || (offset+width+7)/8 > int64(len(buf)) {
		return nil, errShortBuffer
	}
	var v uint64
	for bit := offset; bit < offset+width; bit++ {
		v = v<<1 | uint64(buf[bit/8]>>(7-bit%8)&1)
	}
	if t.Signed() {
		if v&(1<<(width-1)) != 0 {
			v |= ^uint64(0) << width
		}
		return Int(int64(v)), nil
	}
	return Uint(v), nil
}

func scalar(kind preamble.Kind, b []byte) (Value, error) {
	if w := kind.Width(); w != 0 && len(b) != w {
		return nil, fmt.Errorf("%w: %s of %d bytes", errWidth, kind, len(b))
	}
	switch kind {
	case preamble.KindInt8:
		return Int(int8(b[0])), nil
	case preamble.KindUint8:
		return Uint(b[0]), nil
	case preamble.KindInt16:
		return Int(int16(binary.LittleEndian.Uint16(b))), nil
	case preamble.KindUint16:
		return Uint(binary.LittleEndian.Uint16(b)), nil
	case preamble.KindInt32:
		return Int(int32(binary.LittleEndian.Uint32(b))), nil
	case preamble.KindUint32:
		return Uint(binary.LittleEndian.Uint32(b)), nil
	case preamble.KindInt64:
		return Int(int64(binary.LittleEndian.Uint64(b))), nil
	case preamble.KindUint64:
		return Uint(binary.LittleEndian.Uint64(b)), nil
	case preamble.KindFloat32:
		return Float(math.Float32frombits(binary.LittleEndian.Uint32(b))), nil
	case preamble.KindFloat64:
		return Float(math.Float64frombits(binary.LittleEndian.Uint64(b))), nil
	case preamble.KindChar:
		return String([]byte{b[0]}), nil
	case preamble.KindBool:
		n, err := uintLE(b)
		if err != nil {
			return nil, err
		}
		if n > 1 {
			return Corrupted(slices.Clone(b)), nil
		}
		return Bool(n == 1), nil
	case preamble.KindPointer:
		n, err := uintLE(b)
		return Pointer(n), err
	case preamble.KindResult:
		n, err := uintLE(b)
		if err != nil {
			return nil, err
		}
		return Result(resultName(signExtend(n, len(b)))), nil
	default:
		return nil, errUnknownType
	}
}

// uintLE decodes a little-endian unsigned integer of 1 to 8 bytes.
func uintLE(b []byte) (uint64, error) {
	if len(b) == 0 || len(b) > 8 {
		return 0, fmt.Errorf("%w: %d bytes", errWidth, len(b))
	}
	var n uint64
	for i := len(b) - 1; i >= 0; i-- {
		n = n<<8 | uint64(b[i])
	}
	return n, nil
}

func signExtend(n uint64, size int) int64 {
	shift := 64 - 8*size
	return int64(n<<shift) >> shift
}

func slice(buf []byte, offset, size int64) ([]byte, error) {
	if offset < 0 || size < 0 || offset+size > int64(len(buf)) {
		return nil, errShortBuffer
	}
	return buf[offset : offset+size : offset+size], nil
}

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// fallback returns the raw bytes of a field which could not be decoded,
// clipped to the buffer.
func fallback(f preamble.VariableDescriptor, buf []byte) Value {
	offset, size := f.Offset, f.Type.Size
	if f.Type.Kind() == preamble.KindBitfield {
		offset, size = offset/8, (offset%8+size+7)/8
	}
	if offset < 0 || offset > int64(len(buf)) {
		return Hex{}
	}
	end := offset + max(size, 0)
	if end > int64(len(buf)) {
		end = int64(len(buf))
	}
	return Hex(slices.Clone(buf[offset:end]))
}
