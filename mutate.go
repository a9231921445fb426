package dataverb

import (
	"github.com/pkg/errors"
)

// KeepPolicy controls which of the original columns Mutate retains.
type KeepPolicy string

const (
	// KeepAll retains every column.
	KeepAll KeepPolicy = "all"
	// KeepUsed retains the columns referenced by the new expressions.
	KeepUsed KeepPolicy = "used"
	// KeepUnused retains the columns not referenced by the new expressions.
	KeepUnused KeepPolicy = "unused"
	// KeepNone retains only the new columns.
	KeepNone KeepPolicy = "none"
)

// BeforeSel places new or relocated columns before the selected ones.
type BeforeSel struct{ Sel any }

// AfterSel places new or relocated columns after the selected ones.
type AfterSel struct{ Sel any }

// Before builds a placement directive for Mutate and Relocate.
func Before(sel any) BeforeSel { return BeforeSel{Sel: sel} }

// After builds a placement directive for Mutate and Relocate.
func After(sel any) AfterSel { return AfterSel{Sel: sel} }

var mutateVerb = Register("mutate", PENDING,
	OnPlain(mutatePlain),
	OnGrouped(mutateGrouped),
	OnRowwise(mutatePlain),
)

// Mutate adds new columns and preserves existing ones. Arguments are
// NamedArg pairs (expressions, Across descriptors, plain values, or nil to
// drop a column), bare Across descriptors, a KeepPolicy, and Before/After
// placement directives. On a grouped frame the computation runs per group
// and rows come back in their original order.
func Mutate(args ...any) Step { return mutateVerb.Bind(args...) }

var transmuteVerb = Register("transmute", PENDING,
	OnPlain(transmuteFn),
	OnGrouped(transmuteFn),
	OnRowwise(transmuteFn),
)

// Transmute is Mutate with KeepNone: only the new columns survive.
func Transmute(args ...any) Step { return transmuteVerb.Bind(args...) }

func transmuteFn(data Frame, args []any) (Frame, error) {
	return mutateVerb.apply(data, append([]any{KeepNone}, args...))
}

type mutateSpec struct {
	assignments []any // NamedArg and bare evaluator values, in order
	keep        KeepPolicy
	before      any
	after       any
	hasBefore   bool
	hasAfter    bool
}

func parseMutateArgs(args []any) (*mutateSpec, error) {
	spec := &mutateSpec{keep: KeepAll}
	for _, a := range args {
		switch v := a.(type) {
		case KeepPolicy:
			spec.keep = v
		case BeforeSel:
			spec.before = v.Sel
			spec.hasBefore = true
		case AfterSel:
			spec.after = v.Sel
			spec.hasAfter = true
		case NamedArg:
			spec.assignments = append(spec.assignments, v)
		case *Across, *CAcross, *IfAny, *IfAll:
			spec.assignments = append(spec.assignments, v)
		default:
			return nil, errors.Errorf("unexpected argument %T", a)
		}
	}
	if spec.hasBefore && spec.hasAfter {
		return nil, ErrConflictingDirectives
	}
	return spec, nil
}

func mutatePlain(data Frame, args []any) (Frame, error) {
	spec, err := parseMutateArgs(args)
	if err != nil {
		return nil, err
	}

	df := data.Data()
	out := df.copyFrame()
	wrapped := data
	if rw, ok := data.(*RowwiseFrame); ok {
		wrapped = &RowwiseFrame{df: out, identity: rw.identity}
	} else {
		wrapped = out
	}

	ctx := newTrackingContext()
	var newCols []string

	addColumn := func(name string, values []any) {
		if !containsString(newCols, name) {
			newCols = append(newCols, name)
		}
		out.assign(name, values)
	}

	assignFrame := func(key string, res *DataFrame) error {
		if res.NCol() == 1 && key != "" {
			name := res.ColumnAt(0).Name
			if name == "" {
				name = key
			}
			vals, err := alignValue(res.ColumnAt(0).Values, out.NRow())
			if err != nil {
				return err
			}
			addColumn(name, vals)
			return nil
		}
		for i := 0; i < res.NCol(); i++ {
			s := res.ColumnAt(i)
			name := s.Name
			if key != "" && res.NCol() > 1 {
				name = key + "$" + s.Name
			}
			vals, err := alignValue(s.Values, out.NRow())
			if err != nil {
				return err
			}
			addColumn(name, vals)
		}
		return nil
	}

	for _, a := range spec.assignments {
		switch v := a.(type) {
		case NamedArg:
			if v.Value == nil {
				out.dropColumn(v.Name)
				continue
			}
			if ca, ok := v.Value.(*CAcross); ok {
				ca.OutName = v.Name
			}
			if ev, ok := v.Value.(evaluator); ok {
				res, err := ev.Evaluate(wrapped, ctx)
				if err != nil {
					return nil, err
				}
				switch r := res.(type) {
				case *DataFrame:
					if err := assignFrame(v.Name, r); err != nil {
						return nil, errors.Wrap(err, v.Name)
					}
				default:
					vals, err := alignValue(r, out.NRow())
					if err != nil {
						return nil, errors.Wrap(err, v.Name)
					}
					addColumn(v.Name, vals)
				}
				continue
			}
			val, err := EvaluateExpr(v.Value, out, ctx)
			if err != nil {
				return nil, errors.Wrap(err, v.Name)
			}
			vals, err := alignValue(val, out.NRow())
			if err != nil {
				return nil, errors.Wrap(err, v.Name)
			}
			addColumn(v.Name, vals)
		case evaluator:
			res, err := v.Evaluate(wrapped, ctx)
			if err != nil {
				return nil, err
			}
			switch r := res.(type) {
			case *DataFrame:
				if err := assignFrame("", r); err != nil {
					return nil, err
				}
			case []string:
				// selection result has no place in mutate
				return nil, errors.Errorf("across resolved to a selection, not values")
			default:
				return nil, errors.Errorf("cannot assign unnamed value %T", r)
			}
		}
	}

	if spec.hasBefore || spec.hasAfter {
		rearranged, err := relocateColumns(out.Columns(), newCols, spec.before, spec.after, spec.hasBefore, spec.hasAfter)
		if err != nil {
			return nil, err
		}
		out, err = out.selectColumns(rearranged)
		if err != nil {
			return nil, err
		}
	}

	used := ctx.UsedRefs()
	switch spec.keep {
	case KeepUsed:
		out, err = out.selectColumns(listUnion(listIntersect(used, out.Columns()), newCols))
	case KeepUnused:
		unused := listDiff(out.Columns(), used)
		out, err = out.selectColumns(listUnion(unused, newCols))
	case KeepNone:
		out, err = out.selectColumns(newCols)
	}
	if err != nil {
		return nil, err
	}

	if rw, ok := data.(*RowwiseFrame); ok {
		return &RowwiseFrame{df: out, identity: rw.identity}, nil
	}
	return out, nil
}

func mutateGrouped(data Frame, args []any) (Frame, error) {
	g := data.(*GroupedFrame)
	df := g.df
	groups, err := groupRows(df, g.keys)
	if err != nil {
		return nil, err
	}

	// Each group is mutated independently; results go back to the rows
	// they came from, so the output keeps the original row order.
	var outCols []string
	columns := map[string][]any{}
	for _, grp := range groups {
		sub := df.takeRows(grp.rows)
		res, err := mutatePlain(sub, freshArgs(args))
		if err != nil {
			return nil, err
		}
		rdf := res.Data()
		if rdf.NRow() != len(grp.rows) {
			return nil, errors.Errorf("mutate changed the row count of a group")
		}
		for i := 0; i < rdf.NCol(); i++ {
			s := rdf.ColumnAt(i)
			if _, ok := columns[s.Name]; !ok {
				outCols = append(outCols, s.Name)
				columns[s.Name] = make([]any, df.NRow())
			}
			for j, r := range grp.rows {
				columns[s.Name][r] = s.Values[j]
			}
		}
	}

	out := &DataFrame{}
	// Grouping keys stay valid columns no matter the keep policy; a key
	// dropped inside a group goes back in, in front.
	for _, key := range g.keys {
		if _, ok := columns[key]; !ok {
			s, _ := df.Column(key)
			out.assign(key, append([]any{}, s.Values...))
		}
	}
	for _, name := range outCols {
		out.assign(name, columns[name])
	}
	return GroupedBy(out, g.keys...)
}

// freshArgs re-arms Across descriptors for another group: a bound
// descriptor keeps its resolved columns, which is correct since groups
// share the column set, but grouped application must not let one group's
// evaluation error poison the next. Currently descriptors carry no
// per-evaluation state besides the resolved columns, so the arguments can
// be reused as-is.
func freshArgs(args []any) []any { return args }
