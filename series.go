package dataverb

import "fmt"

// Series is a single named column of values. Values are held as []any so a
// column can carry ints, floats, strings, bools or anything else the caller
// puts in it; the arithmetic in expressions coerces numeric values to
// float64.
type Series struct {
	Name   string
	Values []any
}

// NewSeries creates a series from a name and values.
func NewSeries(name string, values ...any) *Series {
	return &Series{Name: name, Values: values}
}

// SeriesOf creates a series from a typed slice.
func SeriesOf[T any](name string, values []T) *Series {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return &Series{Name: name, Values: vals}
}

// Len is the number of values in the series.
func (s *Series) Len() int { return len(s.Values) }

// clone returns a copy of the series with its own backing slice.
func (s *Series) clone() *Series {
	values := make([]any, len(s.Values))
	copy(values, s.Values)
	return &Series{Name: s.Name, Values: values}
}

// take returns a new series containing the values at the given row
// positions, in the given order.
func (s *Series) take(rows []int) *Series {
	values := make([]any, 0, len(rows))
	for _, r := range rows {
		values = append(values, s.Values[r])
	}
	return &Series{Name: s.Name, Values: values}
}

// asFloat converts a value to float64 for arithmetic and comparison.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// asBool converts a value to a boolean. Missing values (nil) are false, per
// the IfAny/IfAll contract.
func asBool(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	}
	return false
}

// valuesEqual compares two cell values. Numeric values compare by their
// float64 representation so int(1) equals float64(1).
func valuesEqual(a, b any) bool {
	fa, oka := asFloat(a)
	fb, okb := asFloat(b)
	if oka && okb {
		return fa == fb
	}
	return a == b
}

// compareValues orders two cell values. Numbers order numerically, strings
// lexically, bools false < true; nil sorts first. Mixed or unknown types
// fall back to their string forms so sorting is at least deterministic.
func compareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	fa, oka := asFloat(a)
	fb, okb := asFloat(b)
	if oka && okb {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			switch {
			case sa < sb:
				return -1
			case sa > sb:
				return 1
			}
			return 0
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case !ba && bb:
				return -1
			case ba && !bb:
				return 1
			}
			return 0
		}
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}
