package dataverb

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Across is a deferred descriptor for "apply function(s) to multiple
// columns". It is constructed with a column selector and a set of
// functions; the selector is resolved to concrete column names when the
// descriptor is bound to a frame, and the whole descriptor is consumed
// exactly once by Evaluate inside the receiving verb.
//
// Functions may be a single Func, an ordered []Func (the position index is
// used in output names), a []FnPair or map[string]Func (the name is used in
// output names), or nil.
type Across struct {
	colSel any
	cols   []string
	fns    []fnRecord
	names  string
	args   []any
	bound  bool
}

// FnPair names a function for use in Across output naming.
type FnPair struct {
	Name string
	Fn   Func
}

type fnRecord struct {
	fn    Func
	label string // index or name for the {fn} placeholder; empty when single unnamed
}

// AcrossOption configures an Across-family descriptor.
type AcrossOption func(a *Across)

// WithNames sets the output naming template. The placeholders {col} and
// {fn} expand to the column name and the function index or name.
func WithNames(template string) AcrossOption {
	return func(a *Across) { a.names = template }
}

// WithArgs sets extra arguments forwarded to every function call. A CurCol
// marker among them is replaced with the name of the column being
// processed.
func WithArgs(args ...any) AcrossOption {
	return func(a *Across) { a.args = args }
}

// NewAcross creates an Across descriptor. A nil column selector means all
// columns of the frame the descriptor is bound to.
func NewAcross(cols any, fns any, opts ...AcrossOption) (*Across, error) {
	records, err := normalizeFns(fns)
	if err != nil {
		return nil, err
	}
	a := &Across{colSel: cols, fns: records}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func normalizeFns(fns any) ([]fnRecord, error) {
	switch v := fns.(type) {
	case nil:
		return nil, nil
	case Func:
		return []fnRecord{{fn: v}}, nil
	case func(any, ...any) (any, error):
		return []fnRecord{{fn: v}}, nil
	case []Func:
		records := make([]fnRecord, len(v))
		for i, fn := range v {
			records[i] = fnRecord{fn: fn, label: strconv.Itoa(i)}
		}
		return records, nil
	case []FnPair:
		records := make([]fnRecord, len(v))
		for i, p := range v {
			records[i] = fnRecord{fn: p.Fn, label: p.Name}
		}
		return records, nil
	case map[string]Func:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		records := make([]fnRecord, len(names))
		for i, name := range names {
			records[i] = fnRecord{fn: v[name], label: name}
		}
		return records, nil
	}
	return nil, errors.Wrapf(ErrInvalidFunctions, "got %T", fns)
}

// bind resolves the column selector against the frame. A nil selector
// selects every column. Binding happens once; Evaluate requires it.
func (a *Across) bind(df *DataFrame) error {
	if a.bound {
		return nil
	}
	if a.colSel == nil {
		a.cols = df.Columns()
	} else {
		cols, err := ResolveSelectors(df.Columns(), a.colSel)
		if err != nil {
			return err
		}
		a.cols = cols
	}
	a.bound = true
	return nil
}

// Cols returns the resolved column names. Only valid after the descriptor
// has been bound to a frame.
func (a *Across) Cols() []string { return a.cols }

// outputName renders the naming template for one column and function.
func (a *Across) outputName(col string, rec fnRecord, multi bool) string {
	template := a.names
	if template == "" {
		if rec.label == "" && !multi {
			template = "{col}"
		} else {
			template = "{col}_{fn}"
		}
	}
	name := strings.ReplaceAll(template, "{col}", col)
	return strings.ReplaceAll(name, "{fn}", rec.label)
}

// Evaluate expands the descriptor against the frame.
//
// In a SELECT context with no functions it resolves to the column names;
// with exactly one function, to that function applied to each column name
// (not its values). More than one function in a SELECT context is
// rejected.
//
// In a value context it computes one output column per function x column
// and assembles them into a frame, functions in declaration order, columns
// left to right within each function.
func (a *Across) Evaluate(data Frame, ctx *Context) (any, error) {
	df := data.Data()
	if err := a.bind(df); err != nil {
		return nil, err
	}

	if ctx.Kind == SELECT {
		if len(a.fns) == 0 {
			return a.cols, nil
		}
		if len(a.fns) > 1 {
			return nil, errors.Wrap(ErrTooManyFunctions, "across in selection context")
		}
		fn := a.fns[0].fn
		out := make([]any, len(a.cols))
		for i, col := range a.cols {
			v, err := fn(col, replaceCurCol(a.args, col)...)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	fns := a.fns
	if len(fns) == 0 {
		fns = []fnRecord{{fn: identity}}
	}
	multi := len(fns) > 1

	type output struct {
		name  string
		value any
	}
	var outputs []output
	for _, rec := range fns {
		for _, col := range a.cols {
			s, ok := df.Column(col)
			if !ok {
				return nil, errors.Wrap(ErrColumnNotFound, col)
			}
			ctx.recordRef(col)
			v, err := rec.fn(s.Values, replaceCurCol(a.args, col)...)
			if err != nil {
				return nil, errors.Wrapf(err, "across %s", col)
			}
			outputs = append(outputs, output{name: a.outputName(col, rec, multi), value: v})
		}
	}

	nrow := 1
	for _, o := range outputs {
		if vec, ok := o.value.([]any); ok {
			nrow = len(vec)
			break
		}
	}
	ret := &DataFrame{}
	for _, o := range outputs {
		vals, err := alignValue(o.value, nrow)
		if err != nil {
			return nil, errors.Wrapf(err, "across column %s", o.name)
		}
		ret.assign(o.name, vals)
	}
	return ret, nil
}

func identity(v any, _ ...any) (any, error) { return v, nil }

// CurColumn is a marker usable among Across extra arguments; at evaluation
// time every occurrence is replaced with the name of the column being
// processed.
type CurColumn struct{}

// CurCol is the marker value.
var CurCol = CurColumn{}

func replaceCurCol(args []any, col string) []any {
	if len(args) == 0 {
		return nil
	}
	out := make([]any, len(args))
	for i, a := range args {
		if _, ok := a.(CurColumn); ok {
			out[i] = col
		} else {
			out[i] = a
		}
	}
	return out
}

// CAcross is a columns-combined Across: on a row-wise frame its single
// function receives each row's selected columns as one vector. On any
// other frame shape it behaves like the base Across.
type CAcross struct {
	Across
	fn Func
	// OutName is the output column name; verbs fill it in from the
	// keyword the descriptor was assigned to.
	OutName string
}

// NewCAcross creates a columns-combined Across. Exactly one function is
// required.
func NewCAcross(cols any, fns any, opts ...AcrossOption) (*CAcross, error) {
	base, err := NewAcross(cols, fns, opts...)
	if err != nil {
		return nil, err
	}
	if len(base.fns) == 0 {
		return nil, errors.Wrap(ErrNoFunctions, "c_across")
	}
	if len(base.fns) > 1 {
		return nil, errors.Wrap(ErrTooManyFunctions, "c_across")
	}
	return &CAcross{Across: *base, fn: base.fns[0].fn}, nil
}

// Evaluate applies the function across each row of the selected columns
// when the frame is row-wise; otherwise it degrades to Across behavior.
func (ca *CAcross) Evaluate(data Frame, ctx *Context) (any, error) {
	if _, rowwise := data.(*RowwiseFrame); !rowwise {
		return ca.Across.Evaluate(data, ctx)
	}
	df := data.Data()
	if err := ca.bind(df); err != nil {
		return nil, err
	}

	values := make([]any, df.NRow())
	for i := 0; i < df.NRow(); i++ {
		row := make([]any, len(ca.cols))
		for j, col := range ca.cols {
			s, ok := df.Column(col)
			if !ok {
				return nil, errors.Wrap(ErrColumnNotFound, col)
			}
			ctx.recordRef(col)
			row[j] = s.Values[i]
		}
		v, err := ca.fn(row, ca.args...)
		if err != nil {
			return nil, errors.Wrapf(err, "c_across row %d", i)
		}
		values[i] = v
	}

	name := ca.OutName
	if name == "" {
		name = ca.names
	}
	ret := &DataFrame{}
	ret.assign(name, values)
	return ret, nil
}

// ifAcross is the shared core of IfAny and IfAll: evaluate a predicate
// per-row over the selected columns, coerce each result to a boolean
// (missing is false) and reduce across the row.
type ifAcross struct {
	Across
	fn  Func
	any bool
}

func newIfAcross(kind string, anyOf bool, cols any, fns any) (*ifAcross, error) {
	base, err := NewAcross(cols, fns)
	if err != nil {
		return nil, err
	}
	if len(base.fns) == 0 {
		return nil, errors.Wrap(ErrNoFunctions, kind)
	}
	if len(base.fns) > 1 {
		return nil, errors.Wrap(ErrTooManyFunctions, kind)
	}
	return &ifAcross{Across: *base, fn: base.fns[0].fn, any: anyOf}, nil
}

func (ic *ifAcross) Evaluate(data Frame, ctx *Context) (any, error) {
	df := data.Data()
	if err := ic.bind(df); err != nil {
		return nil, err
	}

	out := make([]any, df.NRow())
	for i := 0; i < df.NRow(); i++ {
		result := !ic.any // AND starts true, OR starts false
		for _, col := range ic.cols {
			s, ok := df.Column(col)
			if !ok {
				return nil, errors.Wrap(ErrColumnNotFound, col)
			}
			ctx.recordRef(col)
			v, err := ic.fn(s.Values[i], ic.args...)
			if err != nil {
				return nil, err
			}
			b := asBool(v)
			if ic.any {
				result = result || b
			} else {
				result = result && b
			}
		}
		out[i] = result
	}
	return out, nil
}

// IfAny evaluates the predicate per-row over the selected columns and
// reduces with boolean OR.
type IfAny struct{ ifAcross }

// NewIfAny creates an IfAny descriptor. Exactly one function is required.
func NewIfAny(cols any, fns any) (*IfAny, error) {
	core, err := newIfAcross("if_any", true, cols, fns)
	if err != nil {
		return nil, err
	}
	return &IfAny{ifAcross: *core}, nil
}

// IfAll evaluates the predicate per-row over the selected columns and
// reduces with boolean AND.
type IfAll struct{ ifAcross }

// NewIfAll creates an IfAll descriptor. Exactly one function is required.
func NewIfAll(cols any, fns any) (*IfAll, error) {
	core, err := newIfAcross("if_all", false, cols, fns)
	if err != nil {
		return nil, err
	}
	return &IfAll{ifAcross: *core}, nil
}

// evaluator is satisfied by the Across family; verbs use it to expand any
// descriptor without caring which one it is.
type evaluator interface {
	Evaluate(data Frame, ctx *Context) (any, error)
}
