package dataverb

import (
	"sort"

	"github.com/pkg/errors"
)

var bindRowsVerb = Register("bind_rows", UNSET, TwoTable(),
	OnPlain(bindRowsFn),
	OnGrouped(bindRowsFn),
	OnRowwise(bindRowsFn),
)

// BindRows appends the frames vertically. Columns are matched by name;
// a column missing from one frame is filled with nil for its rows.
func BindRows(others ...Frame) Step {
	args := make([]any, len(others))
	for i, o := range others {
		args[i] = o
	}
	return bindRowsVerb.Bind(args...)
}

func bindRowsFn(data Frame, args []any) (Frame, error) {
	parts := []*DataFrame{data.Data()}
	for _, a := range args {
		f, ok := a.(Frame)
		if !ok {
			return nil, errors.Errorf("bind_rows: arguments must be frames, got %T", a)
		}
		parts = append(parts, f.Data())
	}
	out, err := concatRows(parts)
	if err != nil {
		return nil, err
	}
	return rewrap(data, out)
}

var bindColsVerb = Register("bind_cols", UNSET, TwoTable(),
	OnPlain(bindColsFn),
	OnGrouped(bindColsFn),
	OnRowwise(bindColsFn),
)

// BindCols puts the frames side by side. All frames must have the same
// number of rows; duplicate names are kept as-is.
func BindCols(others ...Frame) Step {
	args := make([]any, len(others))
	for i, o := range others {
		args[i] = o
	}
	return bindColsVerb.Bind(args...)
}

func bindColsFn(data Frame, args []any) (Frame, error) {
	x := data.Data()
	out := x.copyFrame()
	for _, a := range args {
		f, ok := a.(Frame)
		if !ok {
			return nil, errors.Errorf("bind_cols: arguments must be frames, got %T", a)
		}
		df := f.Data()
		if df.NRow() != x.NRow() {
			return nil, errors.Wrapf(ErrBadLength, "bind_cols: %d rows against %d", df.NRow(), x.NRow())
		}
		for _, s := range df.cols {
			out.cols = append(out.cols, s.clone())
		}
	}
	return rewrap(data, out)
}

// setOn resolves the columns the set operation compares on, defaulting to
// every column of x. Both frames must carry them all.
func setOn(x, y *DataFrame, on []string) ([]string, error) {
	if len(on) == 0 {
		on = x.Columns()
	}
	for _, c := range on {
		if !x.HasColumn(c) || !y.HasColumn(c) {
			return nil, errors.Wrap(ErrColumnNotFound, c)
		}
	}
	return on, nil
}

// On restricts a set operation to the given columns instead of all of
// the left frame's columns.
type On []string

func setOpArgs(name string, args []any) (*DataFrame, []string, error) {
	var y *DataFrame
	var on []string
	for _, a := range args {
		switch v := a.(type) {
		case Frame:
			y = v.Data()
		case On:
			on = []string(v)
		default:
			return nil, nil, errors.Errorf("%s: unsupported argument %T", name, a)
		}
	}
	if y == nil {
		return nil, nil, errors.Errorf("%s: a second frame is required", name)
	}
	return y, on, nil
}

// distinctOn keeps the first row of each key combination, projected to
// the key columns.
func distinctOn(df *DataFrame, on []string) (*DataFrame, error) {
	groups, err := groupRows(df, on)
	if err != nil {
		return nil, err
	}
	var rows []int
	for _, grp := range groups {
		rows = append(rows, grp.rows[0])
	}
	sub := df.takeRows(rows)
	return sub.selectColumns(on)
}

var intersectVerb = Register("intersect", UNSET, TwoTable(),
	OnPlain(intersectFn),
	OnGrouped(intersectFn),
	OnRowwise(intersectFn),
)

// Intersect keeps the distinct rows present in both frames, compared on
// the On columns (all columns by default).
func Intersect(y Frame, args ...any) Step {
	return intersectVerb.Bind(append([]any{y}, args...)...)
}

func intersectFn(data Frame, args []any) (Frame, error) {
	y, on, err := setOpArgs("intersect", args)
	if err != nil {
		return nil, err
	}
	x := data.Data()
	on, err = setOn(x, y, on)
	if err != nil {
		return nil, errors.Wrap(err, "intersect")
	}
	inY := make(map[string]bool)
	for i := 0; i < y.NRow(); i++ {
		inY[rowKey(y, on, i)] = true
	}
	dist, err := distinctOn(x, on)
	if err != nil {
		return nil, err
	}
	var rows []int
	for i := 0; i < dist.NRow(); i++ {
		if inY[rowKey(dist, on, i)] {
			rows = append(rows, i)
		}
	}
	return dist.takeRows(rows), nil
}

var unionVerb = Register("union", UNSET, TwoTable(),
	OnPlain(unionFn),
	OnGrouped(unionFn),
	OnRowwise(unionFn),
)

// Union keeps the distinct rows of both frames, x rows first.
func Union(y Frame, args ...any) Step {
	return unionVerb.Bind(append([]any{y}, args...)...)
}

func unionFn(data Frame, args []any) (Frame, error) {
	y, on, err := setOpArgs("union", args)
	if err != nil {
		return nil, err
	}
	x := data.Data()
	on, err = setOn(x, y, on)
	if err != nil {
		return nil, errors.Wrap(err, "union")
	}
	xs, err := x.selectColumns(on)
	if err != nil {
		return nil, err
	}
	ys, err := y.selectColumns(on)
	if err != nil {
		return nil, err
	}
	both, err := concatRows([]*DataFrame{xs, ys})
	if err != nil {
		return nil, err
	}
	return distinctOn(both, on)
}

var unionAllVerb = Register("union_all", UNSET, TwoTable(),
	OnPlain(unionAllFn),
	OnGrouped(unionAllFn),
	OnRowwise(unionAllFn),
)

// UnionAll appends the rows of both frames without de-duplication.
func UnionAll(y Frame) Step { return unionAllVerb.Bind(y) }

func unionAllFn(data Frame, args []any) (Frame, error) {
	return bindRowsFn(data, args)
}

var setDiffVerb = Register("setdiff", UNSET, TwoTable(),
	OnPlain(setDiffFn),
	OnGrouped(setDiffFn),
	OnRowwise(setDiffFn),
)

// SetDiff keeps the distinct rows of x that do not appear in y.
func SetDiff(y Frame, args ...any) Step {
	return setDiffVerb.Bind(append([]any{y}, args...)...)
}

func setDiffFn(data Frame, args []any) (Frame, error) {
	y, on, err := setOpArgs("setdiff", args)
	if err != nil {
		return nil, err
	}
	x := data.Data()
	on, err = setOn(x, y, on)
	if err != nil {
		return nil, errors.Wrap(err, "setdiff")
	}
	inY := make(map[string]bool)
	for i := 0; i < y.NRow(); i++ {
		inY[rowKey(y, on, i)] = true
	}
	dist, err := distinctOn(x, on)
	if err != nil {
		return nil, err
	}
	var rows []int
	for i := 0; i < dist.NRow(); i++ {
		if !inY[rowKey(dist, on, i)] {
			rows = append(rows, i)
		}
	}
	return dist.takeRows(rows), nil
}

// SetEqual reports whether two frames hold the same rows, ignoring row
// order.
func SetEqual(x, y Frame) bool {
	xd, yd := x.Data(), y.Data()
	if xd.NRow() != yd.NRow() || xd.NCol() != yd.NCol() {
		return false
	}
	cols := xd.Columns()
	for _, c := range cols {
		if !yd.HasColumn(c) {
			return false
		}
	}
	xk := make([]string, xd.NRow())
	yk := make([]string, yd.NRow())
	for i := range xk {
		xk[i] = rowKey(xd, cols, i)
		yk[i] = rowKey(yd, cols, i)
	}
	sort.Strings(xk)
	sort.Strings(yk)
	for i := range xk {
		if xk[i] != yk[i] {
			return false
		}
	}
	return true
}
