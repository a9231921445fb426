package dataverb

import (
	"github.com/pkg/errors"
)

// AddGroups makes GroupBy append to the existing grouping keys instead of
// replacing them.
type AddGroups bool

var groupByVerb = Register("group_by", PENDING,
	OnPlain(groupByPlain),
	OnGrouped(groupByGrouped),
	OnRowwise(groupByPlain),
)

// GroupBy converts a frame into a grouped frame. Positional arguments are
// column selectors (resolved in a selection context); NamedArg pairs and
// Nesting bundles are mutated into the frame first and then used as keys.
// On an already grouped frame the keys replace the existing ones unless
// AddGroups(true) is given.
func GroupBy(args ...any) Step { return groupByVerb.Bind(args...) }

func splitGroupByArgs(args []any) (selectors []any, mutations []any, add bool) {
	for _, a := range args {
		switch v := a.(type) {
		case AddGroups:
			add = bool(v)
		case NamedArg:
			mutations = append(mutations, v)
		case *Nesting:
			// each nesting column becomes a key: existing columns by
			// name, computed values as mutations under the nesting name
			for i, col := range v.Columns {
				if name, ok := col.(string); ok && name == v.Names[i] {
					selectors = append(selectors, name)
					continue
				}
				mutations = append(mutations, NamedArg{Name: v.Names[i], Value: col})
			}
		default:
			selectors = append(selectors, a)
		}
	}
	return selectors, mutations, add
}

func groupByKeys(df *DataFrame, selectors, mutations []any) (*DataFrame, []string, error) {
	out := df
	if len(mutations) > 0 {
		res, err := mutatePlain(df, mutations)
		if err != nil {
			return nil, nil, err
		}
		out = res.Data()
	}
	keys, err := resolveWithAcross(out, selectors)
	if err != nil {
		return nil, nil, err
	}
	for _, m := range mutations {
		keys = append(keys, m.(NamedArg).Name)
	}
	return out, uniqueStrings(keys), nil
}

func groupByPlain(data Frame, args []any) (Frame, error) {
	selectors, mutations, _ := splitGroupByArgs(args)
	out, keys, err := groupByKeys(data.Data(), selectors, mutations)
	if err != nil {
		return nil, err
	}
	return GroupedBy(out, keys...)
}

func groupByGrouped(data Frame, args []any) (Frame, error) {
	g := data.(*GroupedFrame)
	selectors, mutations, add := splitGroupByArgs(args)
	out, keys, err := groupByKeys(g.df, selectors, mutations)
	if err != nil {
		return nil, err
	}
	if add {
		keys = listUnion(g.keys, keys)
	}
	return GroupedBy(out, keys...)
}

var ungroupVerb = Register("ungroup", UNSET,
	OnPlain(ungroupFn),
	OnGrouped(ungroupFn),
	OnRowwise(ungroupFn),
)

// Ungroup discards the grouping envelope; the content is unchanged.
func Ungroup() Step { return ungroupVerb.Bind() }

func ungroupFn(data Frame, _ []any) (Frame, error) {
	return data.Data(), nil
}

var rowwiseVerb = Register("rowwise", SELECT,
	OnPlain(rowwiseFn),
	OnGrouped(rowwiseFn),
	OnRowwise(rowwiseFn),
)

// Rowwise tags the frame for row-at-a-time computation. The optional
// selectors name identity columns preserved by Summarise. Existing
// grouping is discarded.
func Rowwise(selectors ...any) Step { return rowwiseVerb.Bind(selectors...) }

func rowwiseFn(data Frame, args []any) (Frame, error) {
	df := data.Data()
	identity, err := ResolveSelectors(df.Columns(), args...)
	if err != nil {
		return nil, err
	}
	return RowwiseOf(df, identity...)
}

// GroupVars returns the grouping-key names; empty for plain and row-wise
// frames.
func GroupVars(data Frame) []string {
	if g, ok := data.(*GroupedFrame); ok {
		return g.Keys()
	}
	return nil
}

// GroupKeys returns the distinct key combinations as a frame, one row per
// group. A plain frame is grouped by the given selectors first.
func GroupKeys(data Frame, selectors ...any) (*DataFrame, error) {
	g, ok := data.(*GroupedFrame)
	if !ok {
		res, err := groupByVerb.apply(data, selectors)
		if err != nil {
			return nil, err
		}
		g = res.(*GroupedFrame)
	}
	groups, err := g.groups()
	if err != nil {
		return nil, err
	}
	out := &DataFrame{}
	for i, key := range g.keys {
		values := make([]any, len(groups))
		for j, grp := range groups {
			values[j] = grp.key[i]
		}
		out.assign(key, values)
	}
	return out, nil
}

// GroupRows returns the row positions of each group, groups in first-seen
// order.
func GroupRows(data Frame) ([][]int, error) {
	g, ok := data.(*GroupedFrame)
	if !ok {
		return nil, errors.New("group_rows requires a grouped frame")
	}
	groups, err := g.groups()
	if err != nil {
		return nil, err
	}
	out := make([][]int, len(groups))
	for i, grp := range groups {
		out[i] = grp.rows
	}
	return out, nil
}

// GroupMap applies fn to each group's subframe and collects the results.
// A plain frame is a single group.
func GroupMap[T any](data Frame, fn func(*DataFrame) T) ([]T, error) {
	subs, err := GroupSplit(data)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(subs))
	for i, sub := range subs {
		out[i] = fn(sub)
	}
	return out, nil
}

// GroupModify applies fn to each group's subframe and binds the resulting
// frames back together, in group order.
func GroupModify(data Frame, fn func(*DataFrame) (*DataFrame, error)) (Frame, error) {
	g, ok := data.(*GroupedFrame)
	if !ok {
		return fn(data.Data())
	}
	subs, err := GroupSplit(data)
	if err != nil {
		return nil, err
	}
	var parts []*DataFrame
	for _, sub := range subs {
		res, err := fn(sub)
		if err != nil {
			return nil, err
		}
		parts = append(parts, res)
	}
	out, err := concatRows(parts)
	if err != nil {
		return nil, err
	}
	return GroupedBy(out, g.keys...)
}

// GroupWalk applies fn to each group's subframe for its side effects.
func GroupWalk(data Frame, fn func(*DataFrame)) error {
	subs, err := GroupSplit(data)
	if err != nil {
		return err
	}
	for _, sub := range subs {
		fn(sub)
	}
	return nil
}

// GroupSplit returns each group as its own frame: one frame per group for
// grouped input, one frame per row for row-wise input, the whole frame for
// plain input.
func GroupSplit(data Frame) ([]*DataFrame, error) {
	switch v := data.(type) {
	case *RowwiseFrame:
		out := make([]*DataFrame, v.df.NRow())
		for i := range out {
			out[i] = v.df.takeRows([]int{i})
		}
		return out, nil
	case *GroupedFrame:
		groups, err := v.groups()
		if err != nil {
			return nil, err
		}
		out := make([]*DataFrame, len(groups))
		for i, grp := range groups {
			out[i] = v.df.takeRows(grp.rows)
		}
		return out, nil
	}
	return []*DataFrame{data.Data()}, nil
}

// GroupTrim recomputes the grouping from the current rows, dropping empty
// group levels.
func GroupTrim(data Frame) (Frame, error) {
	g, ok := data.(*GroupedFrame)
	if !ok {
		return data, nil
	}
	return GroupedBy(g.df, g.keys...)
}

// WithGroups regroups the frame by the selectors (nil ungroups), applies
// the step, and returns its result.
func WithGroups(data Frame, selectors any, step Step) (Frame, error) {
	var regrouped Frame
	if selectors == nil {
		regrouped = data.Data()
	} else {
		res, err := groupByVerb.apply(data.Data(), []any{selectors})
		if err != nil {
			return nil, err
		}
		regrouped = res
	}
	return step(regrouped)
}

// concatRows appends frames vertically. Columns are the union, missing
// cells are nil.
func concatRows(parts []*DataFrame) (*DataFrame, error) {
	var names []string
	total := 0
	for _, p := range parts {
		names = listUnion(names, p.Columns())
		total += p.NRow()
	}
	out := &DataFrame{}
	for _, name := range names {
		values := make([]any, 0, total)
		for _, p := range parts {
			s, ok := p.Column(name)
			if ok {
				values = append(values, s.Values...)
			} else {
				for i := 0; i < p.NRow(); i++ {
					values = append(values, nil)
				}
			}
		}
		out.assign(name, values)
	}
	return out, nil
}
