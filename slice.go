package dataverb

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
)

// Prop selects a proportion of rows instead of a count; floor(p*n) rows
// on a table (or group) of n rows.
type Prop float64

// WithTies controls whether SliceMin and SliceMax keep all rows tied with
// the last selected value. Ties are kept by default.
type WithTies bool

// Replace makes SliceSample draw with replacement.
type Replace bool

// WeightBy weights SliceSample draws by the given expression.
type WeightBy struct{ Value any }

// Seed fixes the random source for SliceSample.
type Seed int64

var sliceVerb = Register("slice", PENDING,
	OnPlain(slicePlain),
	OnGrouped(sliceGrouped),
	OnRowwise(slicePlain),
)

// Slice picks rows by position: ints (negative counts from the end),
// Span ranges and Negated drops. On a grouped frame positions are
// group-relative.
func Slice(args ...any) Step { return sliceVerb.Bind(args...) }

func slicePlain(data Frame, args []any) (Frame, error) {
	df := data.Data()
	rows, err := resolveRows(args, df.NRow())
	if err != nil {
		return nil, err
	}
	out := df.takeRows(rows)
	if rw, ok := data.(*RowwiseFrame); ok {
		return RowwiseOf(out, rw.identity...)
	}
	return out, nil
}

func sliceGrouped(data Frame, args []any) (Frame, error) {
	return applyPerGroup(data.(*GroupedFrame), func(sub *DataFrame) ([]int, error) {
		return resolveRows(args, sub.NRow())
	})
}

// resolveRows expands position selectors against n rows. Out-of-range
// positions are dropped, matching group-relative slicing where a request
// can exceed the group size.
func resolveRows(args []any, n int) ([]int, error) {
	var rows []int
	var dropped map[int]bool
	add := func(i int) {
		if i < 0 {
			i += n
		}
		if i >= 0 && i < n {
			rows = append(rows, i)
		}
	}
	for _, a := range args {
		switch v := a.(type) {
		case Preserve:
			// grouping is recomputed from the result either way
		case int:
			add(v)
		case []int:
			for _, i := range v {
				add(i)
			}
		case Span:
			for _, i := range v.positions(n) {
				rows = append(rows, i)
			}
		case *Negated:
			if dropped == nil {
				dropped = map[int]bool{}
			}
			sub, err := resolveRows(v.elems, n)
			if err != nil {
				return nil, err
			}
			for _, i := range sub {
				dropped[i] = true
			}
		case Collection:
			sub, err := resolveRows([]any(v), n)
			if err != nil {
				return nil, err
			}
			rows = append(rows, sub...)
		default:
			return nil, errors.Errorf("slice: unsupported row selector %T", a)
		}
	}
	if dropped != nil {
		if len(rows) > 0 {
			return nil, errors.New("slice: cannot mix positive and negated row selectors")
		}
		for i := 0; i < n; i++ {
			if !dropped[i] {
				rows = append(rows, i)
			}
		}
	}
	return rows, nil
}

// sliceCount applies the n/prop convention: prop yields floor(p*n), a
// count is silently truncated to the table size, and the default is one
// row.
func sliceCount(total int, n int, hasN bool, prop float64, hasProp bool) (int, error) {
	switch {
	case hasN && hasProp:
		return 0, errors.New("slice: provide either a count or a proportion, not both")
	case hasProp:
		if prop < 0 {
			return 0, errors.New("slice: proportion must not be negative")
		}
		k := int(math.Floor(prop * float64(total)))
		if k > total {
			k = total
		}
		return k, nil
	case hasN:
		if n < 0 {
			return 0, errors.New("slice: count must not be negative")
		}
		if n > total {
			n = total
		}
		return n, nil
	}
	if total < 1 {
		return total, nil
	}
	return 1, nil
}

type sliceSpec struct {
	n       int
	hasN    bool
	prop    float64
	hasProp bool
	ties    bool
	replace bool
	orderBy any
	weight  any
	rng     *rand.Rand
}

func parseSliceSpec(args []any, wantOrder bool) (*sliceSpec, error) {
	spec := &sliceSpec{ties: true}
	for _, a := range args {
		switch v := a.(type) {
		case int:
			spec.n, spec.hasN = v, true
		case Prop:
			spec.prop, spec.hasProp = float64(v), true
		case WithTies:
			spec.ties = bool(v)
		case Replace:
			spec.replace = bool(v)
		case WeightBy:
			spec.weight = v.Value
		case Seed:
			spec.rng = rand.New(rand.NewSource(int64(v)))
		default:
			if wantOrder && spec.orderBy == nil {
				spec.orderBy = a
				continue
			}
			return nil, errors.Errorf("slice: unsupported argument %T", a)
		}
	}
	if wantOrder && spec.orderBy == nil {
		return nil, errors.New("slice: an ordering expression is required")
	}
	return spec, nil
}

// applyPerGroup runs pick on each group's subframe and reassembles the
// selected rows in group order, regrouped by the original keys.
func applyPerGroup(g *GroupedFrame, pick func(*DataFrame) ([]int, error)) (Frame, error) {
	groups, err := groupRows(g.df, g.keys)
	if err != nil {
		return nil, err
	}
	var all []int
	for _, grp := range groups {
		sub := g.df.takeRows(grp.rows)
		local, err := pick(sub)
		if err != nil {
			return nil, err
		}
		for _, i := range local {
			all = append(all, grp.rows[i])
		}
	}
	return GroupedBy(g.df.takeRows(all), g.keys...)
}

func headTailVerb(name string, fromTail bool) *Verb {
	pick := func(sub *DataFrame, spec *sliceSpec) ([]int, error) {
		k, err := sliceCount(sub.NRow(), spec.n, spec.hasN, spec.prop, spec.hasProp)
		if err != nil {
			return nil, err
		}
		rows := make([]int, k)
		for i := range rows {
			if fromTail {
				rows[i] = sub.NRow() - k + i
			} else {
				rows[i] = i
			}
		}
		return rows, nil
	}
	plain := func(data Frame, args []any) (Frame, error) {
		spec, err := parseSliceSpec(args, false)
		if err != nil {
			return nil, err
		}
		df := data.Data()
		rows, err := pick(df, spec)
		if err != nil {
			return nil, err
		}
		out := df.takeRows(rows)
		if rw, ok := data.(*RowwiseFrame); ok {
			return RowwiseOf(out, rw.identity...)
		}
		return out, nil
	}
	grouped := func(data Frame, args []any) (Frame, error) {
		spec, err := parseSliceSpec(args, false)
		if err != nil {
			return nil, err
		}
		return applyPerGroup(data.(*GroupedFrame), func(sub *DataFrame) ([]int, error) {
			return pick(sub, spec)
		})
	}
	return Register(name, UNSET, OnPlain(plain), OnGrouped(grouped), OnRowwise(plain))
}

var (
	sliceHeadVerb = headTailVerb("slice_head", false)
	sliceTailVerb = headTailVerb("slice_tail", true)
)

// SliceHead keeps the first rows, a count via an int argument or a
// proportion via Prop.
func SliceHead(args ...any) Step { return sliceHeadVerb.Bind(args...) }

// SliceTail keeps the last rows.
func SliceTail(args ...any) Step { return sliceTailVerb.Bind(args...) }

func minMaxVerb(name string, largest bool) *Verb {
	pick := func(sub *DataFrame, spec *sliceSpec) ([]int, error) {
		k, err := sliceCount(sub.NRow(), spec.n, spec.hasN, spec.prop, spec.hasProp)
		if err != nil {
			return nil, err
		}
		val, err := EvaluateExpr(spec.orderBy, sub, NewContext(EVAL))
		if err != nil {
			return nil, err
		}
		keys, err := alignValue(val, sub.NRow())
		if err != nil {
			return nil, err
		}
		order := make([]int, sub.NRow())
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			cmp := compareValues(keys[order[a]], keys[order[b]])
			if largest {
				return cmp > 0
			}
			return cmp < 0
		})
		if k < len(order) && spec.ties && k > 0 {
			boundary := keys[order[k-1]]
			for k < len(order) && compareValues(keys[order[k]], boundary) == 0 {
				k++
			}
		}
		return order[:k], nil
	}
	plain := func(data Frame, args []any) (Frame, error) {
		spec, err := parseSliceSpec(args, true)
		if err != nil {
			return nil, err
		}
		df := data.Data()
		rows, err := pick(df, spec)
		if err != nil {
			return nil, err
		}
		out := df.takeRows(rows)
		if rw, ok := data.(*RowwiseFrame); ok {
			return RowwiseOf(out, rw.identity...)
		}
		return out, nil
	}
	grouped := func(data Frame, args []any) (Frame, error) {
		spec, err := parseSliceSpec(args, true)
		if err != nil {
			return nil, err
		}
		return applyPerGroup(data.(*GroupedFrame), func(sub *DataFrame) ([]int, error) {
			return pick(sub, spec)
		})
	}
	return Register(name, EVAL, OnPlain(plain), OnGrouped(grouped), OnRowwise(plain))
}

var (
	sliceMinVerb = minMaxVerb("slice_min", false)
	sliceMaxVerb = minMaxVerb("slice_max", true)
)

// SliceMin keeps the rows with the lowest values of the ordering
// expression; ties with the last kept value are included unless
// WithTies(false) is given.
func SliceMin(orderBy any, args ...any) Step {
	return sliceMinVerb.Bind(append([]any{orderBy}, args...)...)
}

// SliceMax keeps the rows with the highest values of the ordering
// expression.
func SliceMax(orderBy any, args ...any) Step {
	return sliceMaxVerb.Bind(append([]any{orderBy}, args...)...)
}

var sliceSampleVerb = Register("slice_sample", EVAL,
	OnPlain(sliceSamplePlain),
	OnGrouped(sliceSampleGrouped),
	OnRowwise(sliceSamplePlain),
)

// SliceSample picks rows at random. Use Replace(true) to draw with
// replacement, WeightBy to bias the draw and Seed for a reproducible
// result.
func SliceSample(args ...any) Step { return sliceSampleVerb.Bind(args...) }

func sampleRows(sub *DataFrame, spec *sliceSpec) ([]int, error) {
	k, err := sliceCount(sub.NRow(), spec.n, spec.hasN, spec.prop, spec.hasProp)
	if err != nil {
		return nil, err
	}
	rng := spec.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	weights := make([]float64, sub.NRow())
	for i := range weights {
		weights[i] = 1
	}
	if spec.weight != nil {
		val, err := EvaluateExpr(spec.weight, sub, NewContext(EVAL))
		if err != nil {
			return nil, err
		}
		aligned, err := alignValue(val, sub.NRow())
		if err != nil {
			return nil, err
		}
		for i, v := range aligned {
			w, ok := asFloat(v)
			if !ok || w < 0 {
				return nil, errors.New("slice_sample: weights must be non-negative numbers")
			}
			weights[i] = w
		}
	}
	var rows []int
	live := append([]float64{}, weights...)
	for len(rows) < k {
		total := 0.0
		for _, w := range live {
			total += w
		}
		if total <= 0 {
			break
		}
		r := rng.Float64() * total
		picked := -1
		for i, w := range live {
			r -= w
			if r < 0 && w > 0 {
				picked = i
				break
			}
		}
		if picked < 0 {
			break
		}
		rows = append(rows, picked)
		if !spec.replace {
			live[picked] = 0
		}
	}
	return rows, nil
}

func sliceSamplePlain(data Frame, args []any) (Frame, error) {
	spec, err := parseSliceSpec(args, false)
	if err != nil {
		return nil, err
	}
	df := data.Data()
	rows, err := sampleRows(df, spec)
	if err != nil {
		return nil, err
	}
	out := df.takeRows(rows)
	if rw, ok := data.(*RowwiseFrame); ok {
		return RowwiseOf(out, rw.identity...)
	}
	return out, nil
}

func sliceSampleGrouped(data Frame, args []any) (Frame, error) {
	spec, err := parseSliceSpec(args, false)
	if err != nil {
		return nil, err
	}
	return applyPerGroup(data.(*GroupedFrame), func(sub *DataFrame) ([]int, error) {
		return sampleRows(sub, spec)
	})
}
