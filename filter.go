package dataverb

import (
	"github.com/pkg/errors"
)

// Preserve keeps the grouping structure as-is after filtering instead of
// recomputing it from the remaining rows.
type Preserve bool

var filterVerb = Register("filter", EVAL,
	OnPlain(filterPlain),
	OnGrouped(filterGrouped),
	OnRowwise(filterRowwise),
)

// Filter keeps the rows for which every condition holds. Conditions are
// combined with a logical AND; nil condition values count as false.
// An Across, IfAny or IfAll descriptor may stand in for a condition.
func Filter(args ...any) Step { return filterVerb.Bind(args...) }

func filterPlain(data Frame, args []any) (Frame, error) {
	df := data.Data()
	keep, err := filterMask(data, df, args)
	if err != nil {
		return nil, err
	}
	var rows []int
	for i, ok := range keep {
		if ok {
			rows = append(rows, i)
		}
	}
	return df.takeRows(rows), nil
}

func filterRowwise(data Frame, args []any) (Frame, error) {
	rw := data.(*RowwiseFrame)
	res, err := filterPlain(data, args)
	if err != nil {
		return nil, err
	}
	return RowwiseOf(res.Data(), rw.identity...)
}

func filterGrouped(data Frame, args []any) (Frame, error) {
	g := data.(*GroupedFrame)
	preserve := false
	for _, a := range args {
		if p, ok := a.(Preserve); ok && bool(p) {
			preserve = true
		}
	}
	groups, err := g.groups()
	if err != nil {
		return nil, err
	}
	selected := make([][]int, len(groups))
	for i, grp := range groups {
		sub := g.df.takeRows(grp.rows)
		keep, err := filterMask(sub, sub, args)
		if err != nil {
			return nil, err
		}
		for j, ok := range keep {
			if ok {
				selected[i] = append(selected[i], grp.rows[j])
			}
		}
	}
	out, err := GroupedBy(g.df.takeRows(reassemble(selected)), g.keys...)
	if err != nil {
		return nil, err
	}
	if preserve {
		out.levels = groups
	}
	return out, nil
}

// filterMask evaluates the conditions against df and returns the combined
// row mask. data carries the grouping envelope for evaluator descriptors.
func filterMask(data Frame, df *DataFrame, args []any) ([]bool, error) {
	n := df.NRow()
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}
	ctx := NewContext(EVAL)
	for i, a := range args {
		if _, ok := a.(Preserve); ok {
			continue
		}
		var val any
		var err error
		if ev, ok := a.(evaluator); ok {
			val, err = ev.Evaluate(data, ctx)
		} else {
			val, err = EvaluateExpr(a, df, ctx)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "filter: condition %d", i)
		}
		mask, err := conditionMask(val, n)
		if err != nil {
			return nil, errors.Wrapf(err, "filter: condition %d", i)
		}
		for j := range keep {
			keep[j] = keep[j] && mask[j]
		}
	}
	return keep, nil
}

// conditionMask coerces a condition result to a boolean row mask. A frame
// result, as produced by Across, is reduced column-wise with AND.
func conditionMask(val any, n int) ([]bool, error) {
	if sub, ok := val.(*DataFrame); ok {
		mask := make([]bool, n)
		for i := range mask {
			mask[i] = true
		}
		for _, s := range sub.cols {
			if s.Len() != n {
				return nil, errors.Wrap(ErrBadLength, "condition column")
			}
			for i, v := range s.Values {
				mask[i] = mask[i] && asBool(v)
			}
		}
		return mask, nil
	}
	aligned, err := alignValue(val, n)
	if err != nil {
		return nil, err
	}
	mask := make([]bool, n)
	for i, v := range aligned {
		mask[i] = asBool(v)
	}
	return mask, nil
}
