package dataverb

import (
	"fmt"

	"github.com/pkg/errors"
)

// Expr is a deferred expression: a column reference, a literal, or an
// operation over other expressions. An Expr holds no data; it is resolved
// against a concrete frame and an evaluation context when a verb decides
// the time is right.
//
// Build expressions from Col and Lit and combine them with the operator
// methods:
//
//	Col("x").Mul(2).Add(Col("y"))
//	Col("age").Gt(30).And(Col("dept").Eq("sales"))
type Expr struct {
	node node
}

type node interface {
	eval(df *DataFrame, ctx *Context) (any, error)
}

// Func is a function applied to resolved values. The first argument is the
// value the function operates on: a whole column ([]any) for Across and
// column transforms, a row vector ([]any) for CAcross, or a single cell for
// IfAny / IfAll. Extra arguments are forwarded as given.
type Func func(v any, args ...any) (any, error)

// Col returns a deferred reference to the named column. In a SELECT context
// it resolves to the name itself, in an EVAL context to the column values.
func Col(name string) Expr {
	return Expr{node: columnNode{name: name}}
}

// Lit returns an expression that resolves to the value unchanged.
func Lit(v any) Expr {
	return Expr{node: literalNode{value: v}}
}

// Desc marks an expression (or a column name) for descending sort order in
// Arrange. Outside Arrange the marker is transparent. A plain string is
// taken as a column reference.
func Desc(v any) Expr {
	if name, ok := v.(string); ok {
		return Expr{node: descNode{inner: Col(name)}}
	}
	return Expr{node: descNode{inner: toExpr(v)}}
}

// toExpr converts a plain value to a literal expression; an Expr passes
// through.
func toExpr(v any) Expr {
	if e, ok := v.(Expr); ok {
		return e
	}
	return Lit(v)
}

// EvaluateExpr resolves a value against the frame in the given context.
// Deferred expressions are evaluated; Across-family descriptors are returned
// unchanged (the verb body expands them); anything else passes through.
func EvaluateExpr(v any, df *DataFrame, ctx *Context) (any, error) {
	switch e := v.(type) {
	case Expr:
		return e.node.eval(df, ctx)
	case nil:
		return nil, nil
	}
	return v, nil
}

// EvaluateArgs resolves a list of values with EvaluateExpr.
func EvaluateArgs(args []any, df *DataFrame, ctx *Context) ([]any, error) {
	out := make([]any, len(args))
	for i, a := range args {
		v, err := EvaluateExpr(a, df, ctx)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Operator methods. The argument may be another Expr or a plain value,
// which is treated as a literal.

func (e Expr) Add(v any) Expr { return binary("+", e, toExpr(v)) }
func (e Expr) Sub(v any) Expr { return binary("-", e, toExpr(v)) }
func (e Expr) Mul(v any) Expr { return binary("*", e, toExpr(v)) }
func (e Expr) Div(v any) Expr { return binary("/", e, toExpr(v)) }
func (e Expr) Gt(v any) Expr  { return binary(">", e, toExpr(v)) }
func (e Expr) Ge(v any) Expr  { return binary(">=", e, toExpr(v)) }
func (e Expr) Lt(v any) Expr  { return binary("<", e, toExpr(v)) }
func (e Expr) Le(v any) Expr  { return binary("<=", e, toExpr(v)) }
func (e Expr) Eq(v any) Expr  { return binary("==", e, toExpr(v)) }
func (e Expr) Ne(v any) Expr  { return binary("!=", e, toExpr(v)) }
func (e Expr) And(v any) Expr { return binary("&&", e, toExpr(v)) }
func (e Expr) Or(v any) Expr  { return binary("||", e, toExpr(v)) }

// Not negates a boolean expression.
func (e Expr) Not() Expr { return Expr{node: notNode{inner: e}} }

// Neg negates a numeric expression.
func (e Expr) Neg() Expr { return binary("-", Lit(0), e) }

// Apply defers a function call on the resolved value of the expression.
// The extra arguments are resolved too, then forwarded to the function.
func (e Expr) Apply(f Func, extra ...any) Expr {
	return Expr{node: callNode{fn: f, recv: e, extra: extra}}
}

// Desc marks the expression for descending sort order in Arrange.
func (e Expr) Desc() Expr { return Expr{node: descNode{inner: e}} }

// Compute wraps a frame-level function as an expression. In a selection
// context it resolves to its name; otherwise the function is called with
// the frame in scope. This is the hook external expression frontends
// build on.
func Compute(name string, fn func(df *DataFrame) (any, error)) Expr {
	return Expr{node: computeNode{name: name, fn: fn}}
}

func binary(op string, l, r Expr) Expr {
	return Expr{node: binaryNode{op: op, left: l, right: r}}
}

type columnNode struct {
	name string
}

func (n columnNode) eval(df *DataFrame, ctx *Context) (any, error) {
	if ctx.Kind == SELECT {
		return n.name, nil
	}
	s, ok := df.Column(n.name)
	if !ok {
		return nil, errors.Wrap(ErrColumnNotFound, n.name)
	}
	ctx.recordRef(n.name)
	return s.Values, nil
}

type literalNode struct {
	value any
}

func (n literalNode) eval(_ *DataFrame, _ *Context) (any, error) {
	return n.value, nil
}

type computeNode struct {
	name string
	fn   func(df *DataFrame) (any, error)
}

func (n computeNode) eval(df *DataFrame, ctx *Context) (any, error) {
	if ctx.Kind == SELECT {
		return n.name, nil
	}
	return n.fn(df)
}

type descNode struct {
	inner Expr
}

func (n descNode) eval(df *DataFrame, ctx *Context) (any, error) {
	return n.inner.node.eval(df, ctx)
}

// descColumn reports whether the value is a Desc-marked expression and, if
// its inner expression is a plain column reference, the column name.
func descColumn(v any) (string, bool) {
	e, ok := v.(Expr)
	if !ok {
		return "", false
	}
	d, ok := e.node.(descNode)
	if !ok {
		return "", false
	}
	if c, ok := d.inner.node.(columnNode); ok {
		return c.name, true
	}
	return "", true
}

// columnName reports whether the expression is a bare column reference.
func columnName(v any) (string, bool) {
	e, ok := v.(Expr)
	if !ok {
		return "", false
	}
	if c, ok := e.node.(columnNode); ok {
		return c.name, true
	}
	if d, ok := e.node.(descNode); ok {
		if c, ok := d.inner.node.(columnNode); ok {
			return c.name, true
		}
	}
	return "", false
}

type notNode struct {
	inner Expr
}

func (n notNode) eval(df *DataFrame, ctx *Context) (any, error) {
	v, err := n.inner.node.eval(df, ctx)
	if err != nil {
		return nil, err
	}
	return mapValues(v, func(x any) (any, error) { return !asBool(x), nil })
}

type callNode struct {
	fn    Func
	recv  Expr
	extra []any
}

func (n callNode) eval(df *DataFrame, ctx *Context) (any, error) {
	v, err := n.recv.node.eval(df, ctx)
	if err != nil {
		return nil, err
	}
	extra, err := EvaluateArgs(n.extra, df, ctx)
	if err != nil {
		return nil, err
	}
	return n.fn(v, extra...)
}

type binaryNode struct {
	op    string
	left  Expr
	right Expr
}

func (n binaryNode) eval(df *DataFrame, ctx *Context) (any, error) {
	lv, err := n.left.node.eval(df, ctx)
	if err != nil {
		return nil, err
	}
	rv, err := n.right.node.eval(df, ctx)
	if err != nil {
		return nil, err
	}
	return zipValues(lv, rv, func(a, b any) (any, error) {
		return applyOp(n.op, a, b)
	})
}

// mapValues applies f elementwise when v is a vector, or once for a scalar.
func mapValues(v any, f func(any) (any, error)) (any, error) {
	if vec, ok := v.([]any); ok {
		out := make([]any, len(vec))
		for i, x := range vec {
			r, err := f(x)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}
	return f(v)
}

// zipValues applies f pairwise, broadcasting a scalar side over a vector
// side. Two vectors must have the same length.
func zipValues(a, b any, f func(any, any) (any, error)) (any, error) {
	av, aok := a.([]any)
	bv, bok := b.([]any)
	switch {
	case aok && bok:
		if len(av) != len(bv) {
			return nil, errors.Wrapf(ErrBadLength, "operands have %d and %d values", len(av), len(bv))
		}
		out := make([]any, len(av))
		for i := range av {
			r, err := f(av[i], bv[i])
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case aok:
		out := make([]any, len(av))
		for i := range av {
			r, err := f(av[i], b)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case bok:
		out := make([]any, len(bv))
		for i := range bv {
			r, err := f(a, bv[i])
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}
	return f(a, b)
}

func applyOp(op string, a, b any) (any, error) {
	switch op {
	case "+", "-", "*", "/":
		fa, oka := asFloat(a)
		fb, okb := asFloat(b)
		if !oka || !okb {
			// string concatenation with +
			if op == "+" {
				if sa, ok := a.(string); ok {
					if sb, ok := b.(string); ok {
						return sa + sb, nil
					}
				}
			}
			return nil, fmt.Errorf("operator %s: non-numeric operands %T and %T", op, a, b)
		}
		switch op {
		case "+":
			return fa + fb, nil
		case "-":
			return fa - fb, nil
		case "*":
			return fa * fb, nil
		case "/":
			if fb == 0 {
				return nil, fmt.Errorf("operator /: division by zero")
			}
			return fa / fb, nil
		}
	case ">", ">=", "<", "<=":
		c := compareValues(a, b)
		switch op {
		case ">":
			return c > 0, nil
		case ">=":
			return c >= 0, nil
		case "<":
			return c < 0, nil
		case "<=":
			return c <= 0, nil
		}
	case "==":
		return valuesEqual(a, b), nil
	case "!=":
		return !valuesEqual(a, b), nil
	case "&&":
		return asBool(a) && asBool(b), nil
	case "||":
		return asBool(a) || asBool(b), nil
	}
	return nil, fmt.Errorf("unknown operator %s", op)
}
