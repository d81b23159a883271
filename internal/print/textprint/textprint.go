package textprint

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// cellFunc formats the value of a table column.
type cellFunc func(reflect.Value) string

var stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()

func cellFuncOf(t reflect.Type) cellFunc {
	if t.Implements(stringerType) {
		return func(v reflect.Value) string { return v.Interface().(fmt.Stringer).String() }
	}
	switch t.Kind() {
	case reflect.Bool:
		return func(v reflect.Value) string { return strconv.FormatBool(v.Bool()) }
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(v reflect.Value) string { return strconv.FormatInt(v.Int(), 10) }
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(v reflect.Value) string { return strconv.FormatUint(v.Uint(), 10) }
	case reflect.Float32, reflect.Float64:
		bits := t.Bits()
		return func(v reflect.Value) string { return strconv.FormatFloat(v.Float(), 'g', -1, bits) }
	case reflect.String:
		return reflect.Value.String
	case reflect.Pointer:
		elem := cellFuncOf(t.Elem())
		return func(v reflect.Value) string {
			if v.IsNil() {
				return "-"
			}
			return elem(v.Elem())
		}
	case reflect.Slice, reflect.Array:
		elem := cellFuncOf(t.Elem())
		return func(v reflect.Value) string {
			cells := make([]string, v.Len())
			for i := range cells {
				cells[i] = elem(v.Index(i))
			}
			return strings.Join(cells, ",")
		}
	default:
		panic("textprint: cannot print values of type " + t.String())
	}
}

func fieldCellFunc(t reflect.Type, index []int) cellFunc {
	cell := cellFuncOf(t)
	return func(v reflect.Value) string { return cell(v.FieldByIndex(index)) }
}
