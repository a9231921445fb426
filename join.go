package dataverb

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// JoinBy names the join keys. Plain strings join same-named columns;
// NamedArg pairs join a left column (the name) to a right column (the
// value).
type JoinBy struct {
	left  []string
	right []string
}

// By builds a JoinBy from strings and NamedArg pairs.
func By(keys ...any) JoinBy {
	var by JoinBy
	for _, k := range keys {
		switch v := k.(type) {
		case string:
			by.left = append(by.left, v)
			by.right = append(by.right, v)
		case NamedArg:
			by.left = append(by.left, v.Name)
			by.right = append(by.right, fmt.Sprint(v.Value))
		}
	}
	return by
}

// Suffix disambiguates non-key columns present in both tables; the
// default is ("_x", "_y").
type Suffix [2]string

// KeepKeys keeps the join keys of both tables in the output when the key
// names differ. Without it the right-hand keys are dropped.
type KeepKeys bool

type joinKind int

const (
	joinInner joinKind = iota
	joinLeft
	joinRight
	joinFull
)

type joinSpec struct {
	by     JoinBy
	hasBy  bool
	suffix Suffix
	keep   bool
	name   string
}

func parseJoinSpec(args []any) *joinSpec {
	spec := &joinSpec{suffix: Suffix{"_x", "_y"}, name: "data"}
	for _, a := range args {
		switch v := a.(type) {
		case JoinBy:
			spec.by, spec.hasBy = v, true
		case Suffix:
			spec.suffix = v
		case KeepKeys:
			spec.keep = bool(v)
		case NestName:
			spec.name = string(v)
		}
	}
	return spec
}

// NestName names the nested column produced by NestJoin.
type NestName string

func joinKeys(x, y *DataFrame, spec *joinSpec) (JoinBy, error) {
	by := spec.by
	if !spec.hasBy {
		common := listIntersect(x.Columns(), y.Columns())
		if len(common) == 0 {
			return JoinBy{}, errors.New("join: no common columns and no keys given")
		}
		by = JoinBy{left: common, right: common}
	}
	for _, k := range by.left {
		if !x.HasColumn(k) {
			return JoinBy{}, errors.Wrap(ErrColumnNotFound, k)
		}
	}
	for _, k := range by.right {
		if !y.HasColumn(k) {
			return JoinBy{}, errors.Wrap(ErrColumnNotFound, k)
		}
	}
	return by, nil
}

func rowKey(df *DataFrame, cols []string, row int) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		s, _ := df.Column(c)
		parts[i] = fmt.Sprintf("%v", s.Values[row])
	}
	return strings.Join(parts, "\x00")
}

// matchIndex indexes the right table's rows by key.
func matchIndex(y *DataFrame, keys []string) map[string][]int {
	idx := make(map[string][]int)
	for i := 0; i < y.NRow(); i++ {
		k := rowKey(y, keys, i)
		idx[k] = append(idx[k], i)
	}
	return idx
}

// mergeFrames is the primitive under the mutating joins. The output
// carries all x columns, then the y columns that survive: right keys are
// dropped unless keep is set (same-named keys always collapse into the x
// copy), and clashing non-key names take the suffixes.
func mergeFrames(x, y *DataFrame, by JoinBy, kind joinKind, suffix Suffix, keep bool) (*DataFrame, error) {
	sameName := make(map[string]bool)
	for i, l := range by.left {
		if l == by.right[i] {
			sameName[by.right[i]] = true
		}
	}
	rightDrop := make(map[string]bool)
	for _, r := range by.right {
		if sameName[r] || !keep {
			rightDrop[r] = true
		}
	}
	var yCols []string
	for _, c := range y.Columns() {
		if !rightDrop[c] {
			yCols = append(yCols, c)
		}
	}
	xName := func(c string) string {
		if containsString(yCols, c) {
			return c + suffix[0]
		}
		return c
	}
	yName := func(c string) string {
		if x.HasColumn(c) {
			return c + suffix[1]
		}
		return c
	}

	idx := matchIndex(y, by.right)
	type pair struct{ xi, yi int } // -1 marks no match
	var pairs []pair
	matchedY := make([]bool, y.NRow())
	for i := 0; i < x.NRow(); i++ {
		matches := idx[rowKey(x, by.left, i)]
		if len(matches) == 0 {
			if kind == joinLeft || kind == joinFull {
				pairs = append(pairs, pair{i, -1})
			}
			continue
		}
		for _, j := range matches {
			matchedY[j] = true
			pairs = append(pairs, pair{i, j})
		}
	}
	if kind == joinRight || kind == joinFull {
		for j, m := range matchedY {
			if !m {
				pairs = append(pairs, pair{-1, j})
			}
		}
	}
	out := &DataFrame{}
	for _, c := range x.Columns() {
		s, _ := x.Column(c)
		values := make([]any, len(pairs))
		for i, p := range pairs {
			if p.xi >= 0 {
				values[i] = s.Values[p.xi]
			} else if sameName[c] {
				// key value comes from the y side on right/full fills
				ys, _ := y.Column(c)
				values[i] = ys.Values[p.yi]
			}
		}
		out.assign(xName(c), values)
	}
	for _, c := range yCols {
		s, _ := y.Column(c)
		values := make([]any, len(pairs))
		for i, p := range pairs {
			if p.yi >= 0 {
				values[i] = s.Values[p.yi]
			}
		}
		out.assign(yName(c), values)
	}
	return out, nil
}

func mutatingJoin(name string, kind joinKind) *Verb {
	fn := func(data Frame, args []any) (Frame, error) {
		if len(args) == 0 {
			return nil, errors.Errorf("%s: a right-hand frame is required", name)
		}
		y, ok := args[0].(Frame)
		if !ok {
			return nil, errors.Errorf("%s: first argument must be a frame, got %T", name, args[0])
		}
		spec := parseJoinSpec(args[1:])
		x := data.Data()
		by, err := joinKeys(x, y.Data(), spec)
		if err != nil {
			return nil, errors.Wrap(err, name)
		}
		out, err := mergeFrames(x, y.Data(), by, kind, spec.suffix, spec.keep)
		if err != nil {
			return nil, errors.Wrap(err, name)
		}
		return rewrap(data, out)
	}
	return Register(name, UNSET, TwoTable(), OnPlain(fn), OnGrouped(fn), OnRowwise(fn))
}

var (
	innerJoinVerb = mutatingJoin("inner_join", joinInner)
	leftJoinVerb  = mutatingJoin("left_join", joinLeft)
	rightJoinVerb = mutatingJoin("right_join", joinRight)
	fullJoinVerb  = mutatingJoin("full_join", joinFull)
)

// InnerJoin keeps the rows matched in both tables.
func InnerJoin(y Frame, args ...any) Step {
	return innerJoinVerb.Bind(append([]any{y}, args...)...)
}

// LeftJoin keeps every left row, filling unmatched right columns with nil.
func LeftJoin(y Frame, args ...any) Step {
	return leftJoinVerb.Bind(append([]any{y}, args...)...)
}

// RightJoin keeps every right row.
func RightJoin(y Frame, args ...any) Step {
	return rightJoinVerb.Bind(append([]any{y}, args...)...)
}

// FullJoin keeps every row of both tables.
func FullJoin(y Frame, args ...any) Step {
	return fullJoinVerb.Bind(append([]any{y}, args...)...)
}

func filteringJoin(name string, wantMatch bool) *Verb {
	fn := func(data Frame, args []any) (Frame, error) {
		if len(args) == 0 {
			return nil, errors.Errorf("%s: a right-hand frame is required", name)
		}
		y, ok := args[0].(Frame)
		if !ok {
			return nil, errors.Errorf("%s: first argument must be a frame, got %T", name, args[0])
		}
		spec := parseJoinSpec(args[1:])
		x := data.Data()
		by, err := joinKeys(x, y.Data(), spec)
		if err != nil {
			return nil, errors.Wrap(err, name)
		}
		idx := matchIndex(y.Data(), by.right)
		var rows []int
		for i := 0; i < x.NRow(); i++ {
			if (len(idx[rowKey(x, by.left, i)]) > 0) == wantMatch {
				rows = append(rows, i)
			}
		}
		return rewrap(data, x.takeRows(rows))
	}
	return Register(name, UNSET, TwoTable(), OnPlain(fn), OnGrouped(fn), OnRowwise(fn))
}

var (
	semiJoinVerb = filteringJoin("semi_join", true)
	antiJoinVerb = filteringJoin("anti_join", false)
)

// SemiJoin keeps the left rows that have a match in y, without adding
// columns.
func SemiJoin(y Frame, args ...any) Step {
	return semiJoinVerb.Bind(append([]any{y}, args...)...)
}

// AntiJoin keeps the left rows that have no match in y.
func AntiJoin(y Frame, args ...any) Step {
	return antiJoinVerb.Bind(append([]any{y}, args...)...)
}

var nestJoinVerb = Register("nest_join", UNSET, TwoTable(),
	OnPlain(nestJoinFn),
	OnGrouped(nestJoinFn),
	OnRowwise(nestJoinFn),
)

// NestJoin keeps every left row and adds one column of frames, each
// holding that row's matches from y. The right keys are dropped from the
// nested frames unless KeepKeys(true) is given.
func NestJoin(y Frame, args ...any) Step {
	return nestJoinVerb.Bind(append([]any{y}, args...)...)
}

func nestJoinFn(data Frame, args []any) (Frame, error) {
	if len(args) == 0 {
		return nil, errors.New("nest_join: a right-hand frame is required")
	}
	y, ok := args[0].(Frame)
	if !ok {
		return nil, errors.Errorf("nest_join: first argument must be a frame, got %T", args[0])
	}
	spec := parseJoinSpec(args[1:])
	x := data.Data()
	yd := y.Data()
	by, err := joinKeys(x, yd, spec)
	if err != nil {
		return nil, errors.Wrap(err, "nest_join")
	}
	nestedCols := yd.Columns()
	if !spec.keep {
		nestedCols = listDiff(nestedCols, by.right)
	}
	idx := matchIndex(yd, by.right)
	values := make([]any, x.NRow())
	for i := range values {
		sub := yd.takeRows(idx[rowKey(x, by.left, i)])
		nested, err := sub.selectColumns(nestedCols)
		if err != nil {
			return nil, errors.Wrap(err, "nest_join")
		}
		values[i] = nested
	}
	out := x.copyFrame()
	out.assign(spec.name, values)
	return rewrap(data, out)
}
