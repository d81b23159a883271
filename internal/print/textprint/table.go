package textprint

import (
	"io"
	"reflect"
	"strings"
	"text/tabwriter"

	"golang.org/x/exp/slices"

	"github.com/chi-cdk/binlog/internal/stream"
)

type TableOption[T any] func(*tableWriter[T])

// Header enables or disables the header row listing column names.
func Header[T any](enable bool) TableOption[T] {
	return func(t *tableWriter[T]) { t.header = enable }
}

// List restricts the output to the first column.
func List[T any](enable bool) TableOption[T] {
	return func(t *tableWriter[T]) { t.list = enable }
}

// OrderBy sorts the rows with cmp before printing them.
func OrderBy[T any](cmp func(T, T) int) TableOption[T] {
	return func(t *tableWriter[T]) { t.orderBy = cmp }
}

// NewTableWriter returns a writer printing values of T as an aligned table,
// one row per value and one column per exported struct field. Column names
// come from the "text" struct tag, "-" hides a field.
//
// Rows are buffered and printed when the writer is closed.
func NewTableWriter[T any](w io.Writer, opts ...TableOption[T]) stream.WriteCloser[T] {
	t := &tableWriter[T]{
		output: w,
		header: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type tableWriter[T any] struct {
	output  io.Writer
	values  []T
	header  bool
	list    bool
	orderBy func(T, T) int
}

func (t *tableWriter[T]) Write(values []T) (int, error) {
	t.values = append(t.values, values...)
	return len(values), nil
}

func (t *tableWriter[T]) Close() error {
	if t.orderBy != nil {
		slices.SortStableFunc(t.values, func(a, b T) bool { return t.orderBy(a, b) < 0 })
	}

	columns, cells := tableColumns(reflect.TypeOf(t.values).Elem())
	if t.list {
		columns, cells = columns[:1], cells[:1]
	}

	tw := tabwriter.NewWriter(t.output, 0, 4, 2, ' ', 0)
	if t.header {
		if _, err := io.WriteString(tw, strings.Join(columns, "\t")+"\n"); err != nil {
			return err
		}
	}

	row := make([]string, len(cells))
	for i := range t.values {
		v := reflect.ValueOf(&t.values[i]).Elem()
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				continue
			}
			v = v.Elem()
		}
		for j, cell := range cells {
			row[j] = cell(v)
		}
		if _, err := io.WriteString(tw, strings.Join(row, "\t")+"\n"); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func tableColumns(t reflect.Type) (columns []string, cells []cellFunc) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name := f.Name
		if tag := f.Tag.Get("text"); tag != "" {
			name, _, _ = strings.Cut(tag, ",")
		}
		if name == "-" {
			continue
		}
		columns = append(columns, name)
		cells = append(cells, fieldCellFunc(f.Type, f.Index))
	}
	return columns, cells
}
