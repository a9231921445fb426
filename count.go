package dataverb

import (
	"sort"

	"github.com/pkg/errors"
)

// Wt weights counts by an expression: each row contributes its weight
// instead of 1.
type Wt struct{ Value any }

// SortByCount orders the result with the largest counts first.
type SortByCount bool

// CountName overrides the name of the count column, "n" by default.
type CountName string

type countSpec struct {
	wt      any
	sort    bool
	name    string
	cols    []any
	mutates []any
}

func parseCountArgs(args []any) *countSpec {
	spec := &countSpec{name: "n"}
	for _, a := range args {
		switch v := a.(type) {
		case Wt:
			spec.wt = v.Value
		case SortByCount:
			spec.sort = bool(v)
		case CountName:
			spec.name = string(v)
		case NamedArg:
			spec.mutates = append(spec.mutates, v)
		default:
			spec.cols = append(spec.cols, a)
		}
	}
	return spec
}

// countBy tallies rows of df per combination of the key columns, one
// output row per combination in first-seen order.
func countBy(df *DataFrame, keys []string, spec *countSpec) (*DataFrame, error) {
	weights, err := countWeights(df, spec)
	if err != nil {
		return nil, err
	}
	groups, err := groupRows(df, keys)
	if err != nil {
		return nil, err
	}
	out := &DataFrame{}
	for i, key := range keys {
		values := make([]any, len(groups))
		for j, grp := range groups {
			values[j] = grp.key[i]
		}
		out.assign(key, values)
	}
	counts := make([]any, len(groups))
	for j, grp := range groups {
		total := 0.0
		for _, r := range grp.rows {
			total += weights[r]
		}
		counts[j] = total
	}
	out.assign(spec.name, counts)
	if spec.sort {
		out = sortByColumnDesc(out, spec.name)
	}
	return out, nil
}

func countWeights(df *DataFrame, spec *countSpec) ([]float64, error) {
	weights := make([]float64, df.NRow())
	if spec.wt == nil {
		for i := range weights {
			weights[i] = 1
		}
		return weights, nil
	}
	val, err := EvaluateExpr(spec.wt, df, NewContext(EVAL))
	if err != nil {
		return nil, errors.Wrap(err, "count: weights")
	}
	aligned, err := alignValue(val, df.NRow())
	if err != nil {
		return nil, errors.Wrap(err, "count: weights")
	}
	for i, v := range aligned {
		w, ok := asFloat(v)
		if !ok {
			return nil, errors.New("count: weights must be numeric")
		}
		weights[i] = w
	}
	return weights, nil
}

func sortByColumnDesc(df *DataFrame, name string) *DataFrame {
	s, _ := df.Column(name)
	order := make([]int, df.NRow())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return compareValues(s.Values[order[a]], s.Values[order[b]]) > 0
	})
	return df.takeRows(order)
}

var countVerb = Register("count", MIXED,
	OnPlain(countFn),
	OnGrouped(countFn),
	OnRowwise(countFn),
)

// Count tallies rows per combination of the given columns. NamedArg pairs
// are mutated into the frame first and counted like columns. The result is
// a plain frame with the key columns and a count column.
func Count(args ...any) Step { return countVerb.Bind(args...) }

func countFn(data Frame, args []any) (Frame, error) {
	spec := parseCountArgs(args)
	df := data.Data()
	if len(spec.mutates) > 0 {
		res, err := mutatePlain(df, spec.mutates)
		if err != nil {
			return nil, err
		}
		df = res.Data()
	}
	keys, err := resolveWithAcross(df, spec.cols)
	if err != nil {
		return nil, err
	}
	for _, m := range spec.mutates {
		keys = append(keys, m.(NamedArg).Name)
	}
	keys = uniqueStrings(keys)
	if len(keys) == 0 {
		return nil, errors.New("count: at least one column is required")
	}
	return countBy(df, keys, spec)
}

var tallyVerb = Register("tally", SELECT,
	OnPlain(tallyPlain),
	OnGrouped(tallyGrouped),
	OnRowwise(tallyPlain),
)

// Tally counts the rows of the frame, or of each group, assuming the
// grouping is already in place.
func Tally(args ...any) Step { return tallyVerb.Bind(args...) }

func tallyPlain(data Frame, args []any) (Frame, error) {
	spec := parseCountArgs(args)
	df := data.Data()
	weights, err := countWeights(df, spec)
	if err != nil {
		return nil, err
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	out := &DataFrame{}
	out.assign(spec.name, []any{total})
	return out, nil
}

func tallyGrouped(data Frame, args []any) (Frame, error) {
	g := data.(*GroupedFrame)
	spec := parseCountArgs(args)
	return countBy(g.df, g.keys, spec)
}

var addCountVerb = Register("add_count", MIXED,
	OnPlain(addCountFn),
	OnGrouped(addCountFn),
	OnRowwise(addCountFn),
)

// AddCount is Count without the collapse: every row gains the count of
// its key combination.
func AddCount(args ...any) Step { return addCountVerb.Bind(args...) }

func addCountFn(data Frame, args []any) (Frame, error) {
	spec := parseCountArgs(args)
	df := data.Data()
	if len(spec.mutates) > 0 {
		res, err := mutatePlain(df, spec.mutates)
		if err != nil {
			return nil, err
		}
		df = res.Data()
	}
	keys, err := resolveWithAcross(df, spec.cols)
	if err != nil {
		return nil, err
	}
	for _, m := range spec.mutates {
		keys = append(keys, m.(NamedArg).Name)
	}
	keys = uniqueStrings(keys)
	if len(keys) == 0 {
		if g, ok := data.(*GroupedFrame); ok {
			keys = g.keys
		}
	}
	if len(keys) == 0 {
		return nil, errors.New("add_count: at least one column is required")
	}
	out, err := attachCounts(df, keys, spec)
	if err != nil {
		return nil, err
	}
	return rewrap(data, out)
}

var addTallyVerb = Register("add_tally", SELECT,
	OnPlain(addTallyPlain),
	OnGrouped(addTallyGrouped),
	OnRowwise(addTallyPlain),
)

// AddTally adds the row count (or weight sum) of the frame, or of each
// group, as a column.
func AddTally(args ...any) Step { return addTallyVerb.Bind(args...) }

func addTallyPlain(data Frame, args []any) (Frame, error) {
	spec := parseCountArgs(args)
	df := data.Data()
	weights, err := countWeights(df, spec)
	if err != nil {
		return nil, err
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	out := df.copyFrame()
	values := make([]any, df.NRow())
	for i := range values {
		values[i] = total
	}
	out.assign(spec.name, values)
	return rewrap(data, out)
}

func addTallyGrouped(data Frame, args []any) (Frame, error) {
	g := data.(*GroupedFrame)
	spec := parseCountArgs(args)
	out, err := attachCounts(g.df, g.keys, spec)
	if err != nil {
		return nil, err
	}
	return GroupedBy(out, g.keys...)
}

// attachCounts adds a per-key count column to df without collapsing rows.
func attachCounts(df *DataFrame, keys []string, spec *countSpec) (*DataFrame, error) {
	weights, err := countWeights(df, spec)
	if err != nil {
		return nil, err
	}
	groups, err := groupRows(df, keys)
	if err != nil {
		return nil, err
	}
	values := make([]any, df.NRow())
	for _, grp := range groups {
		total := 0.0
		for _, r := range grp.rows {
			total += weights[r]
		}
		for _, r := range grp.rows {
			values[r] = total
		}
	}
	out := df.copyFrame()
	out.assign(spec.name, values)
	if spec.sort {
		out = sortByColumnDesc(out, spec.name)
	}
	return out, nil
}
