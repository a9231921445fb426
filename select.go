package dataverb

import (
	"github.com/pkg/errors"
)

var selectVerb = Register("select", SELECT,
	OnPlain(selectFn),
	OnGrouped(selectFn),
	OnRowwise(selectFn),
)

// Select keeps (and optionally renames) columns. Positional arguments are
// selectors; NamedArg pairs select old columns under new names
// (As("new", "old")). Duplicate selections keep duplicate columns.
func Select(args ...any) Step { return selectVerb.Bind(args...) }

func selectFn(data Frame, args []any) (Frame, error) {
	df := data.Data()

	var selectors []any
	renames := map[string]string{} // old -> new
	for _, a := range args {
		if na, ok := a.(NamedArg); ok {
			old, ok := na.Value.(string)
			if !ok {
				if name, isCol := columnName(na.Value); isCol {
					old = name
				} else {
					return nil, errors.Errorf("rename value for %s must be a column", na.Name)
				}
			}
			selectors = append(selectors, old)
			renames[old] = na.Name
			continue
		}
		selectors = append(selectors, a)
	}

	selected, err := resolveWithAcross(df, selectors)
	if err != nil {
		return nil, err
	}
	out, err := df.selectColumns(selected)
	if err != nil {
		return nil, err
	}
	for i := 0; i < out.NCol(); i++ {
		s := out.ColumnAt(i)
		if newName, ok := renames[s.Name]; ok {
			s.Name = newName
		}
	}
	return rewrap(data, out)
}

// resolveWithAcross resolves selectors, expanding Across descriptors in a
// SELECT context first.
func resolveWithAcross(df *DataFrame, selectors []any) ([]string, error) {
	ctx := NewContext(SELECT)
	expanded := make([]any, 0, len(selectors))
	for _, sel := range selectors {
		if ev, ok := sel.(evaluator); ok {
			res, err := ev.Evaluate(df, ctx)
			if err != nil {
				return nil, err
			}
			switch r := res.(type) {
			case []string:
				for _, name := range r {
					expanded = append(expanded, name)
				}
			case []any:
				expanded = append(expanded, r...)
			default:
				expanded = append(expanded, r)
			}
			continue
		}
		expanded = append(expanded, sel)
	}
	return ResolveSelectors(df.Columns(), expanded...)
}

var renameVerb = Register("rename", SELECT,
	OnPlain(renameFn),
	OnGrouped(renameFn),
	OnRowwise(renameFn),
)

// Rename changes individual column names with As("new", "old") pairs,
// keeping every column.
func Rename(args ...any) Step { return renameVerb.Bind(args...) }

func renameFn(data Frame, args []any) (Frame, error) {
	df := data.Data()
	out := df.copyFrame()
	for _, a := range args {
		na, ok := a.(NamedArg)
		if !ok {
			return nil, errors.Errorf("rename takes As(new, old) pairs, got %T", a)
		}
		old, ok := na.Value.(string)
		if !ok {
			if name, isCol := columnName(na.Value); isCol {
				old = name
			} else {
				return nil, errors.Errorf("rename value for %s must be a column", na.Name)
			}
		}
		s, found := out.Column(old)
		if !found {
			return nil, errors.Wrap(ErrColumnNotFound, old)
		}
		s.Name = na.Name
	}
	return rewrap(data, out)
}

var renameWithVerb = Register("rename_with", SELECT,
	OnPlain(renameWithFn),
	OnGrouped(renameWithFn),
	OnRowwise(renameWithFn),
)

// RenameWith renames columns with a function. The first argument is a
// func(string) string; further arguments select the columns to rename
// (all columns when absent).
func RenameWith(fn func(string) string, selectors ...any) Step {
	args := append([]any{fn}, selectors...)
	return renameWithVerb.Bind(args...)
}

func renameWithFn(data Frame, args []any) (Frame, error) {
	if len(args) == 0 {
		return nil, errors.New("rename_with requires a function")
	}
	fn, ok := args[0].(func(string) string)
	if !ok {
		return nil, errors.Errorf("rename_with requires a func(string) string, got %T", args[0])
	}
	df := data.Data()

	targets := df.Columns()
	if len(args) > 1 {
		var err error
		targets, err = ResolveSelectors(df.Columns(), args[1:]...)
		if err != nil {
			return nil, err
		}
	}

	out := df.copyFrame()
	for i := 0; i < out.NCol(); i++ {
		s := out.ColumnAt(i)
		if containsString(targets, s.Name) {
			s.Name = fn(s.Name)
		}
	}
	return rewrap(data, out)
}

var pullVerb = Register("pull", SELECT, OnPlain(pullFn), OnGrouped(pullFn), OnRowwise(pullFn))

// Pull extracts a single column as a series. The selector may be a name or
// a position; the default -1 pulls the last column. Grouping information is
// lost.
func Pull(data Frame, selector ...any) (*Series, error) {
	df := data.Data()
	sel := any(-1)
	if len(selector) > 0 {
		sel = selector[0]
	}
	names, err := ResolveSelectors(df.Columns(), sel)
	if err != nil {
		return nil, err
	}
	if len(names) != 1 {
		return nil, errors.Errorf("pull selects exactly one column, got %d", len(names))
	}
	s, _ := df.Column(names[0])
	return s.clone(), nil
}

func pullFn(data Frame, args []any) (Frame, error) {
	s, err := Pull(data, args...)
	if err != nil {
		return nil, err
	}
	return New(s), nil
}

var distinctVerb = Register("distinct", MIXED,
	OnPlain(distinctFn),
	OnGrouped(distinctFn),
	OnRowwise(distinctFn),
)

// KeepAllCols makes Distinct keep every column, not only the ones used to
// determine uniqueness.
type KeepAllCols bool

// Distinct keeps only unique rows, determined by the selected columns (all
// columns when none are given). Grouping keys are always part of the
// determination on a grouped frame.
func Distinct(args ...any) Step { return distinctVerb.Bind(args...) }

func distinctFn(data Frame, args []any) (Frame, error) {
	df := data.Data()

	keepAll := false
	var selectors []any
	var mutations []NamedArg
	for _, a := range args {
		switch v := a.(type) {
		case KeepAllCols:
			keepAll = bool(v)
		case NamedArg:
			mutations = append(mutations, v)
		default:
			selectors = append(selectors, a)
		}
	}

	columns, err := ResolveSelectors(df.Columns(), selectors...)
	if err != nil {
		return nil, err
	}
	if g, ok := data.(*GroupedFrame); ok {
		columns = listUnion(g.keys, columns)
	}

	work := df
	if len(mutations) > 0 {
		margs := make([]any, len(mutations))
		for i, m := range mutations {
			margs[i] = m
			columns = append(columns, m.Name)
		}
		res, err := mutatePlain(df, margs)
		if err != nil {
			return nil, err
		}
		work = res.Data()
	}
	if len(columns) == 0 {
		columns = work.Columns()
	}
	columns = uniqueStrings(columns)

	groups, err := groupRows(work, columns)
	if err != nil {
		return nil, err
	}
	rows := make([]int, len(groups))
	for i, g := range groups {
		rows[i] = g.rows[0]
	}

	var out *DataFrame
	if keepAll {
		out = work.takeRows(rows)
	} else {
		sub, err := work.selectColumns(columns)
		if err != nil {
			return nil, err
		}
		out = sub.takeRows(rows)
	}
	return rewrap(data, out)
}
