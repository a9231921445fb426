package dataverb_test

import (
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/dataverb/dataverb"
)

func evalOn(t *testing.T, df *dataverb.DataFrame, e dataverb.Expr) any {
	t.Helper()
	v, err := dataverb.EvaluateExpr(e, df, dataverb.NewContext(dataverb.EVAL))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	return v
}

func TestExprArithmetic(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(
		dataverb.NewSeries("x", 1, 2, 3),
		dataverb.NewSeries("y", 10, 20, 30),
	)

	is.Equal(evalOn(t, df, dataverb.Col("x").Mul(2)), []any{2.0, 4.0, 6.0})
	is.Equal(evalOn(t, df, dataverb.Col("x").Add(dataverb.Col("y"))), []any{11.0, 22.0, 33.0})
	is.Equal(evalOn(t, df, dataverb.Col("y").Sub(1).Div(2)), []any{4.5, 9.5, 14.5})
	is.Equal(evalOn(t, df, dataverb.Col("x").Neg()), []any{-1.0, -2.0, -3.0})
}

func TestExprComparison(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(dataverb.NewSeries("x", 1, 2, 3))

	is.Equal(evalOn(t, df, dataverb.Col("x").Gt(1)), []any{false, true, true})
	is.Equal(evalOn(t, df, dataverb.Col("x").Le(2)), []any{true, true, false})
	is.Equal(evalOn(t, df, dataverb.Col("x").Eq(2)), []any{false, true, false})
	is.Equal(evalOn(t, df, dataverb.Col("x").Gt(1).And(dataverb.Col("x").Lt(3))), []any{false, true, false})
	is.Equal(evalOn(t, df, dataverb.Col("x").Eq(1).Or(dataverb.Col("x").Eq(3))), []any{true, false, true})
	is.Equal(evalOn(t, df, dataverb.Col("x").Gt(1).Not()), []any{true, false, false})
}

func TestExprStringConcat(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(dataverb.NewSeries("s", "a", "b"))

	is.Equal(evalOn(t, df, dataverb.Col("s").Add("!")), []any{"a!", "b!"})
}

func TestExprDivisionByZero(t *testing.T) {
	df := dataverb.New(dataverb.NewSeries("x", 1))
	_, err := dataverb.EvaluateExpr(dataverb.Col("x").Div(0), df, dataverb.NewContext(dataverb.EVAL))
	if err == nil {
		t.Fatal("expected a division by zero error")
	}
}

func TestExprLengthMismatch(t *testing.T) {
	df := dataverb.New(dataverb.NewSeries("x", 1, 2, 3))
	e := dataverb.Col("x").Add(dataverb.Lit([]any{1, 2}))
	_, err := dataverb.EvaluateExpr(e, df, dataverb.NewContext(dataverb.EVAL))
	if err == nil {
		t.Fatal("expected a length mismatch error")
	}
}

func TestExprApply(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(dataverb.NewSeries("x", 3, 1, 2))

	is.Equal(evalOn(t, df, dataverb.Col("x").Apply(dataverb.Max)), 3)
	is.Equal(evalOn(t, df, dataverb.Col("x").Apply(dataverb.Mean)), 2.0)
	is.Equal(evalOn(t, df, dataverb.Col("x").Apply(dataverb.N)), 3)
}

func TestExprColumnMissing(t *testing.T) {
	df := dataverb.New(dataverb.NewSeries("x", 1))
	_, err := dataverb.EvaluateExpr(dataverb.Col("nope"), df, dataverb.NewContext(dataverb.EVAL))
	if err == nil {
		t.Fatal("expected an error for a missing column")
	}
}

func TestExprSelectContext(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(dataverb.NewSeries("x", 1))

	v, err := dataverb.EvaluateExpr(dataverb.Col("x"), df, dataverb.NewContext(dataverb.SELECT))
	is.NoErr(err)
	is.Equal(v, "x")
}

func TestCompute(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(dataverb.NewSeries("s", "a", "b"))

	upper := dataverb.Compute("upper_s", func(d *dataverb.DataFrame) (any, error) {
		s, _ := d.Column("s")
		out := make([]any, len(s.Values))
		for i, v := range s.Values {
			out[i] = strings.ToUpper(v.(string))
		}
		return out, nil
	})

	out, err := dataverb.Pipe(df, dataverb.Mutate(dataverb.As("u", upper)))
	is.NoErr(err)
	is.Equal(column(t, out, "u"), []any{"A", "B"})
}
