package dataverb

import (
	"github.com/pkg/errors"
)

// Selectors specify columns without naming them all literally: by name, by
// position, by span, by negation ("drop these") or by inversion ("everything
// except these"). ResolveSelectors turns any mix of them into concrete
// column names.

// Collection is an ordered sequence of selector atoms. Nested collections
// and slices are flattened recursively at construction, so
// C(C(a, b), c) is the same collection as C(a, b, c).
type Collection []any

// C builds a Collection, flattening nested collections and slices.
func C(elems ...any) Collection {
	return expandCollections(elems)
}

func expandCollections(elems []any) Collection {
	var out Collection
	for _, e := range elems {
		switch v := e.(type) {
		case Collection:
			out = append(out, expandCollections(v)...)
		case []any:
			out = append(out, expandCollections(v)...)
		case []string:
			for _, s := range v {
				out = append(out, s)
			}
		case []int:
			for _, i := range v {
				out = append(out, i)
			}
		default:
			out = append(out, e)
		}
	}
	return out
}

// Span selects a contiguous range of column positions, with Python-style
// semantics: the end is exclusive and negative positions count from the
// end. The zero bounds of RangeFrom / RangeTo leave the corresponding end
// open.
type Span struct {
	start, stop int
	hasStart    bool
	hasStop     bool
}

// Range selects positions start..stop (stop exclusive).
func Range(start, stop int) Span {
	return Span{start: start, stop: stop, hasStart: true, hasStop: true}
}

// RangeFrom selects positions from start to the last column.
func RangeFrom(start int) Span {
	return Span{start: start, hasStart: true}
}

// RangeTo selects positions from the first column up to stop (exclusive).
func RangeTo(stop int) Span {
	return Span{stop: stop, hasStop: true}
}

// positions resolves the span against n columns.
func (sp Span) positions(n int) []int {
	start, stop := 0, n
	if sp.hasStart {
		start = sp.start
		if start < 0 {
			start += n
		}
	}
	if sp.hasStop {
		stop = sp.stop
		if stop < 0 {
			stop += n
		}
	}
	if start < 0 {
		start = 0
	}
	if stop > n {
		stop = n
	}
	var out []int
	for i := start; i < stop; i++ {
		out = append(out, i)
	}
	return out
}

// Inverted selects everything except the wrapped elements. It is built
// against a concrete frame; Complements resolves and caches the set
// difference on first access, so later changes to the frame do not change
// an already-computed result.
type Inverted struct {
	elems Collection
	df    *DataFrame

	complements []string
	resolved    bool
}

// Invert builds an inverted selector against the frame.
func Invert(df *DataFrame, elems ...any) *Inverted {
	return &Inverted{elems: C(elems...), df: df}
}

// Complements returns all frame columns not selected by the wrapped
// elements. The result is computed once and cached.
func (iv *Inverted) Complements() ([]string, error) {
	if iv.resolved {
		return iv.complements, nil
	}
	all := iv.df.Columns()
	selected, err := ResolveSelectors(all, iv.elems...)
	if err != nil {
		return nil, err
	}
	iv.complements = listDiff(all, selected)
	iv.resolved = true
	return iv.complements, nil
}

// Negated drops the wrapped positions or names instead of keeping them.
type Negated struct {
	elems Collection
}

// Negate builds a dropping selector.
func Negate(elems ...any) *Negated {
	return &Negated{elems: C(elems...)}
}

// ResolveSelectors resolves a mix of selector atoms against the ordered
// column list, preserving first-seen order and duplicates. Verbs with set
// semantics (GroupBy) de-duplicate the result themselves.
//
// Atoms may be: literal names, integer positions (negatives count from the
// end), spans, collections, inverted or negated selectors, and bare column
// expressions.
func ResolveSelectors(allColumns []string, selectors ...any) ([]string, error) {
	var out []string
	for _, sel := range expandCollections(selectors) {
		switch v := sel.(type) {
		case string:
			if !containsString(allColumns, v) {
				return nil, errors.Wrap(ErrColumnNotFound, v)
			}
			out = append(out, v)
		case int:
			pos := v
			if pos < 0 {
				pos += len(allColumns)
			}
			if pos < 0 || pos >= len(allColumns) {
				return nil, errors.Wrapf(ErrColumnNotFound, "position %d", v)
			}
			out = append(out, allColumns[pos])
		case Span:
			for _, pos := range v.positions(len(allColumns)) {
				out = append(out, allColumns[pos])
			}
		case *Inverted:
			comp, err := v.Complements()
			if err != nil {
				return nil, err
			}
			out = append(out, comp...)
		case *Negated:
			dropped, err := ResolveSelectors(allColumns, v.elems...)
			if err != nil {
				return nil, err
			}
			out = append(out, listDiff(allColumns, dropped)...)
		case Expr:
			name, ok := columnName(v)
			if !ok {
				return nil, errors.Errorf("cannot use expression as a column selector")
			}
			if !containsString(allColumns, name) {
				return nil, errors.Wrap(ErrColumnNotFound, name)
			}
			out = append(out, name)
		case nil:
			// skip
		default:
			return nil, errors.Errorf("invalid column selector %T", sel)
		}
	}
	return out, nil
}

func containsString(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

// listDiff returns the elements of a not present in b, preserving order.
func listDiff(a, b []string) []string {
	out := []string{}
	for _, x := range a {
		if !containsString(b, x) {
			out = append(out, x)
		}
	}
	return out
}

// listUnion appends the elements of b not already in a.
func listUnion(a, b []string) []string {
	out := append([]string{}, a...)
	for _, x := range b {
		if !containsString(out, x) {
			out = append(out, x)
		}
	}
	return out
}

// listIntersect returns the elements of a also present in b.
func listIntersect(a, b []string) []string {
	out := []string{}
	for _, x := range a {
		if containsString(b, x) {
			out = append(out, x)
		}
	}
	return out
}

// uniqueStrings removes duplicates, keeping first occurrences.
func uniqueStrings(xs []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	return out
}
