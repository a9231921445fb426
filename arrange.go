package dataverb

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// ByGroup makes Arrange sort within groups, by prepending the grouping
// keys to the sort expressions. By default grouping is ignored when
// ordering rows.
type ByGroup bool

var arrangeVerb = Register("arrange", PENDING,
	OnPlain(arrangePlain),
	OnGrouped(arrangeGrouped),
	OnRowwise(arrangePlain),
)

// Arrange reorders rows by the given sort expressions. A plain string
// names a column; wrap an expression in Desc for descending order. The
// sort is stable; rows that compare equal keep their relative order.
func Arrange(args ...any) Step { return arrangeVerb.Bind(args...) }

func arrangePlain(data Frame, args []any) (Frame, error) {
	df := data.Data()
	if len(args) == 0 {
		return data, nil
	}
	if len(uniqueStrings(df.Columns())) != df.NCol() {
		return nil, errors.Wrap(ErrDuplicateName, "cannot arrange a frame with duplicate column names")
	}
	order, err := sortOrder(df, args)
	if err != nil {
		return nil, err
	}
	out := df.takeRows(order)
	if rw, ok := data.(*RowwiseFrame); ok {
		return RowwiseOf(out, rw.identity...)
	}
	return out, nil
}

func arrangeGrouped(data Frame, args []any) (Frame, error) {
	g := data.(*GroupedFrame)
	for _, a := range args {
		if by, ok := a.(ByGroup); ok && bool(by) {
			prefixed := make([]any, 0, len(g.keys)+len(args))
			for _, k := range g.keys {
				prefixed = append(prefixed, Col(k))
			}
			for _, other := range args {
				if _, ok := other.(ByGroup); !ok {
					prefixed = append(prefixed, other)
				}
			}
			args = prefixed
			break
		}
	}
	res, err := arrangePlain(g.df, args)
	if err != nil {
		return nil, err
	}
	return GroupedBy(res.Data(), g.keys...)
}

// sortOrder evaluates the sort expressions into an auxiliary ordering
// frame and returns the stable row permutation. Descending markers are
// tracked as a column-name set on the ordering frame.
func sortOrder(df *DataFrame, args []any) ([]int, error) {
	ctx := NewContext(EVAL)
	sorting := &DataFrame{}
	desc := map[string]bool{}
	for i, a := range args {
		if _, ok := a.(ByGroup); ok {
			continue
		}
		if s, ok := a.(string); ok {
			a = Col(s)
		}
		name := fmt.Sprintf("_sort%d", i)
		if col, ok := columnName(a); ok {
			name = col
		}
		if _, isDesc := descColumn(a); isDesc {
			desc[name] = true
		}
		val, err := EvaluateExpr(a, df, ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "arrange: argument %d", i)
		}
		aligned, err := alignValue(val, df.NRow())
		if err != nil {
			return nil, errors.Wrapf(err, "arrange: argument %d", i)
		}
		sorting.assign(name, aligned)
	}
	order := make([]int, df.NRow())
	for i := range order {
		order[i] = i
	}
	cols := sorting.Columns()
	sort.SliceStable(order, func(a, b int) bool {
		for _, name := range cols {
			s, _ := sorting.Column(name)
			cmp := compareValues(s.Values[order[a]], s.Values[order[b]])
			if cmp == 0 {
				continue
			}
			if desc[name] {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return order, nil
}
