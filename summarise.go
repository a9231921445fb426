package dataverb

import (
	"github.com/pkg/errors"
)

// GroupsPolicy controls the grouping of a summarised result.
type GroupsPolicy string

const (
	// GroupsInfer picks a policy from the result sizes and logs the choice.
	GroupsInfer GroupsPolicy = ""
	// GroupsDropLast peels off the last grouping key.
	GroupsDropLast GroupsPolicy = "drop_last"
	// GroupsDrop returns a plain frame.
	GroupsDrop GroupsPolicy = "drop"
	// GroupsKeep keeps the full grouping.
	GroupsKeep GroupsPolicy = "keep"
	// GroupsRowwise returns a row-wise frame.
	GroupsRowwise GroupsPolicy = "rowwise"
)

var summariseVerb = Register("summarise", PENDING,
	OnPlain(summarisePlain),
	OnGrouped(summariseGrouped),
	OnRowwise(summariseRowwise),
)

// Summarise collapses each group to a single row (or as many rows as the
// longest summary expression produces). Expressions may refer to summaries
// computed earlier in the same call. The grouping of the result follows
// the GroupsPolicy argument; without one the policy is inferred from the
// per-group result sizes.
func Summarise(args ...any) Step { return summariseVerb.Bind(args...) }

// Summarize is an alias for Summarise.
func Summarize(args ...any) Step { return summariseVerb.Bind(args...) }

func splitSummariseArgs(args []any) ([]any, GroupsPolicy) {
	policy := GroupsInfer
	exprs := make([]any, 0, len(args))
	for _, a := range args {
		if p, ok := a.(GroupsPolicy); ok {
			policy = p
			continue
		}
		exprs = append(exprs, a)
	}
	return exprs, policy
}

func summarisePlain(data Frame, args []any) (Frame, error) {
	exprs, policy := splitSummariseArgs(args)
	out, err := summariseOne(data.Data(), nil, exprs)
	if err != nil {
		return nil, err
	}
	if policy == GroupsRowwise {
		return RowwiseOf(out)
	}
	return out, nil
}

func summariseRowwise(data Frame, args []any) (Frame, error) {
	rw := data.(*RowwiseFrame)
	exprs, policy := splitSummariseArgs(args)
	parts := make([]*DataFrame, rw.df.NRow())
	for i := range parts {
		row := rw.df.takeRows([]int{i})
		identity := &DataFrame{}
		for _, c := range rw.identity {
			s, _ := row.Column(c)
			identity.assign(c, s.Values)
		}
		part, err := summariseOne(row, identity, exprs)
		if err != nil {
			return nil, err
		}
		parts[i] = part
	}
	out, err := concatRows(parts)
	if err != nil {
		return nil, err
	}
	if policy == GroupsRowwise {
		return RowwiseOf(out, rw.identity...)
	}
	return out, nil
}

func summariseGrouped(data Frame, args []any) (Frame, error) {
	g := data.(*GroupedFrame)
	exprs, policy := splitSummariseArgs(args)
	groups, err := groupRows(g.df, g.keys)
	if err != nil {
		return nil, err
	}
	parts := make([]*DataFrame, len(groups))
	sizes := make([]int, len(groups))
	for i, grp := range groups {
		sub := g.df.takeRows(grp.rows)
		identity := &DataFrame{}
		for j, key := range g.keys {
			identity.assign(key, []any{grp.key[j]})
		}
		part, err := summariseOne(sub, identity, exprs)
		if err != nil {
			return nil, err
		}
		parts[i] = part
		sizes[i] = part.NRow()
	}
	out, err := concatRows(parts)
	if err != nil {
		return nil, err
	}
	if policy == GroupsInfer {
		policy = inferGroupsPolicy(g.keys, sizes)
	}
	switch policy {
	case GroupsDrop:
		return out, nil
	case GroupsDropLast:
		if len(g.keys) <= 1 {
			return out, nil
		}
		return GroupedBy(out, g.keys[:len(g.keys)-1]...)
	case GroupsKeep:
		return GroupedBy(out, g.keys...)
	case GroupsRowwise:
		return RowwiseOf(out)
	}
	return nil, errors.Errorf("summarise: unknown groups policy %q", policy)
}

// inferGroupsPolicy mirrors the conventional behavior: all-singleton
// results peel off the last key, anything else keeps the full grouping,
// with a notice when the sizes are uneven.
func inferGroupsPolicy(keys []string, sizes []int) GroupsPolicy {
	allOne := true
	uniform := true
	for _, n := range sizes {
		if n != 1 {
			allOne = false
		}
		if len(sizes) > 0 && n != sizes[0] {
			uniform = false
		}
	}
	if allOne {
		if len(keys) > 1 {
			logger.Info("summarise: regrouping output",
				"groups", keys[:len(keys)-1])
		}
		return GroupsDropLast
	}
	if !uniform {
		logger.Warn("summarise: result sizes differ across groups; keeping full grouping",
			"groups", keys)
	}
	return GroupsKeep
}

// summariseOne computes the summary columns for one group. identity holds
// the carried-over key columns (nil for a plain frame) and seeds both the
// output and the lookup scope for the expressions.
func summariseOne(df *DataFrame, identity *DataFrame, exprs []any) (*DataFrame, error) {
	out := &DataFrame{}
	if identity != nil {
		for _, s := range identity.cols {
			out.assign(s.Name, append([]any{}, s.Values...))
		}
	}
	ctx := NewContext(EVAL)
	// scope resolves summaries computed earlier in the call, falling back
	// to the source columns.
	results := &DataFrame{}
	scope := func() *DataFrame {
		merged := df.copyFrame()
		for _, s := range results.cols {
			merged.assign(s.Name, s.Values)
		}
		return merged
	}
	add := func(name string, val any) {
		results.cols = append(results.cols, &Series{Name: name, Values: asColumn(val)})
	}
	for i, a := range exprs {
		switch v := a.(type) {
		case NamedArg:
			if ev, ok := v.Value.(evaluator); ok {
				res, err := ev.Evaluate(df, ctx)
				if err != nil {
					return nil, errors.Wrap(err, v.Name)
				}
				if sub, ok := res.(*DataFrame); ok {
					for _, s := range sub.cols {
						name := v.Name
						if sub.NCol() > 1 {
							name = v.Name + "$" + s.Name
						}
						add(name, s.Values)
					}
					continue
				}
				add(v.Name, res)
				continue
			}
			res, err := EvaluateExpr(v.Value, scope(), ctx)
			if err != nil {
				return nil, errors.Wrap(err, v.Name)
			}
			add(v.Name, res)
		case evaluator:
			res, err := v.Evaluate(df, ctx)
			if err != nil {
				return nil, errors.Wrapf(err, "summarise: argument %d", i)
			}
			if sub, ok := res.(*DataFrame); ok {
				for _, s := range sub.cols {
					add(s.Name, s.Values)
				}
				continue
			}
			return nil, errors.Errorf("summarise: argument %d produced no columns", i)
		default:
			return nil, errors.Errorf("summarise: argument %d must be named", i)
		}
	}
	// Broadcast every summary (and the identity columns) to the longest
	// result.
	n := 1
	for _, s := range results.cols {
		if s.Len() > n {
			n = s.Len()
		}
	}
	for _, s := range out.cols {
		if s.Len() != n {
			if s.Len() != 1 {
				return nil, errors.Wrap(ErrBadLength, s.Name)
			}
			values := make([]any, n)
			for i := range values {
				values[i] = s.Values[0]
			}
			s.Values = values
		}
	}
	for _, s := range results.cols {
		if s.Len() != n {
			if s.Len() != 1 {
				return nil, errors.Wrap(ErrBadLength, s.Name)
			}
			values := make([]any, n)
			for i := range values {
				values[i] = s.Values[0]
			}
			s.Values = values
		}
	}
	for _, s := range results.cols {
		out.assign(s.Name, s.Values)
	}
	return out, nil
}
