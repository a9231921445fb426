package dataverb

import (
	"fmt"
	"reflect"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pkg/errors"
)

// DataFrame is an ordered collection of named columns (Series) with the same
// length. It is the plain, ungrouped table shape. Verbs never modify the
// frame they receive; they return a new frame.
//
// Column names are allowed to repeat; verbs that cannot tolerate duplicates
// (Arrange) reject them explicitly.
type DataFrame struct {
	cols []*Series
}

// New creates a frame from the given series. All series must have the same
// length; New panics otherwise, since a ragged frame is a programming error.
func New(series ...*Series) *DataFrame {
	df := &DataFrame{}
	for _, s := range series {
		if len(df.cols) > 0 && s.Len() != df.NRow() {
			panic(fmt.Sprintf("dataverb: column %s has %d values, want %d", s.Name, s.Len(), df.NRow()))
		}
		df.cols = append(df.cols, s)
	}
	return df
}

// NRow is the number of rows in the frame.
func (df *DataFrame) NRow() int {
	if len(df.cols) == 0 {
		return 0
	}
	return df.cols[0].Len()
}

// NCol is the number of columns in the frame.
func (df *DataFrame) NCol() int { return len(df.cols) }

// Columns returns the column names in order.
func (df *DataFrame) Columns() []string {
	names := make([]string, len(df.cols))
	for i, s := range df.cols {
		names[i] = s.Name
	}
	return names
}

// Column returns the first column with the given name.
func (df *DataFrame) Column(name string) (*Series, bool) {
	for _, s := range df.cols {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// ColumnAt returns the column at position i.
func (df *DataFrame) ColumnAt(i int) *Series { return df.cols[i] }

// HasColumn reports whether a column with the name exists.
func (df *DataFrame) HasColumn(name string) bool {
	_, ok := df.Column(name)
	return ok
}

// Data returns the underlying plain frame; a DataFrame is its own data.
// This makes *DataFrame satisfy the Frame interface.
func (df *DataFrame) Data() *DataFrame { return df }

// copyFrame returns a deep copy of the frame.
func (df *DataFrame) copyFrame() *DataFrame {
	out := &DataFrame{cols: make([]*Series, len(df.cols))}
	for i, s := range df.cols {
		out.cols[i] = s.clone()
	}
	return out
}

// takeRows returns a new frame with the rows at the given positions, in the
// given order.
func (df *DataFrame) takeRows(rows []int) *DataFrame {
	out := &DataFrame{cols: make([]*Series, len(df.cols))}
	for i, s := range df.cols {
		out.cols[i] = s.take(rows)
	}
	return out
}

// selectColumns returns a new frame with the named columns, in the given
// order. Duplicates in names produce duplicate columns.
func (df *DataFrame) selectColumns(names []string) (*DataFrame, error) {
	out := &DataFrame{}
	for _, name := range names {
		s, ok := df.Column(name)
		if !ok {
			return nil, errors.Wrap(ErrColumnNotFound, name)
		}
		out.cols = append(out.cols, s.clone())
	}
	return out, nil
}

// assign sets the named column to the given values, replacing an existing
// column in place or appending a new one at the right.
func (df *DataFrame) assign(name string, values []any) {
	for _, s := range df.cols {
		if s.Name == name {
			s.Values = values
			return
		}
	}
	df.cols = append(df.cols, &Series{Name: name, Values: values})
}

// dropColumn removes the named column if present.
func (df *DataFrame) dropColumn(name string) {
	for i, s := range df.cols {
		if s.Name == name {
			df.cols = append(df.cols[:i], df.cols[i+1:]...)
			return
		}
	}
}

// alignValue turns a value produced by an expression into a column of n
// values: scalars broadcast, series and slices must match the row count.
func alignValue(v any, n int) ([]any, error) {
	switch vv := v.(type) {
	case *Series:
		return alignValue(vv.Values, n)
	case []any:
		if len(vv) == n {
			return vv, nil
		}
		if len(vv) == 1 {
			return alignValue(vv[0], n)
		}
		return nil, errors.Wrapf(ErrBadLength, "got %d values for %d rows", len(vv), n)
	}
	rv := reflect.ValueOf(v)
	if v != nil && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
		vals := make([]any, rv.Len())
		for i := range vals {
			vals[i] = rv.Index(i).Interface()
		}
		return alignValue(vals, n)
	}
	// scalar broadcast
	vals := make([]any, n)
	for i := range vals {
		vals[i] = v
	}
	return vals, nil
}

// asColumn turns a value into a column without length checking: slices
// convert element-wise, anything else becomes a single cell.
func asColumn(v any) []any {
	switch vv := v.(type) {
	case *Series:
		return append([]any{}, vv.Values...)
	case []any:
		return vv
	}
	rv := reflect.ValueOf(v)
	if v != nil && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
		vals := make([]any, rv.Len())
		for i := range vals {
			vals[i] = rv.Index(i).Interface()
		}
		return vals
	}
	return []any{v}
}

// Equal reports whether two frames have the same columns with the same
// names, the same values and the same order.
func (df *DataFrame) Equal(other *DataFrame) bool {
	if df.NCol() != other.NCol() || df.NRow() != other.NRow() {
		return false
	}
	for i, s := range df.cols {
		o := other.cols[i]
		if s.Name != o.Name {
			return false
		}
		for j := range s.Values {
			if !valuesEqual(s.Values[j], o.Values[j]) {
				return false
			}
		}
	}
	return true
}

// Row returns the values of row i, in column order.
func (df *DataFrame) Row(i int) []any {
	row := make([]any, len(df.cols))
	for j, s := range df.cols {
		row[j] = s.Values[i]
	}
	return row
}

// String renders the frame as a table.
func (df *DataFrame) String() string {
	return renderFrame(df, "")
}

func renderFrame(df *DataFrame, footer string) string {
	tw := table.NewWriter()

	header := make(table.Row, df.NCol())
	for i, name := range df.Columns() {
		header[i] = name
	}
	tw.AppendHeader(header)

	for i := 0; i < df.NRow(); i++ {
		row := make(table.Row, df.NCol())
		for j, v := range df.Row(i) {
			row[j] = fmt.Sprintf("%v", v)
		}
		tw.AppendRow(row)
	}

	caption := fmt.Sprintf("%s rows x %d columns", humanize.Comma(int64(df.NRow())), df.NCol())
	if footer != "" {
		caption += "\n" + footer
	}
	tw.SetCaption("%s", caption)

	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}
