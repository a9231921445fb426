package dataverb_test

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/dataverb/dataverb"
)

func mustAcross(t *testing.T, cols any, fns any, opts ...dataverb.AcrossOption) *dataverb.Across {
	t.Helper()
	a, err := dataverb.NewAcross(cols, fns, opts...)
	if err != nil {
		t.Fatalf("across: %v", err)
	}
	return a
}

func column(t *testing.T, data dataverb.Frame, name string) []any {
	t.Helper()
	s, ok := data.Data().Column(name)
	if !ok {
		t.Fatalf("missing column %q in %v", name, data.Data().Columns())
	}
	return s.Values
}

func TestAcrossSingleFunction(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(
		dataverb.NewSeries("x", 1, 2),
		dataverb.NewSeries("y", 3, 4),
	)

	out, err := dataverb.Pipe(df, dataverb.Mutate(
		mustAcross(t, dataverb.C("x", "y"), dataverb.Func(dataverb.Sum)),
	))
	is.NoErr(err)

	// a single unnamed function keeps the original column names
	is.Equal(out.Data().Columns(), []string{"x", "y"})
	is.Equal(column(t, out, "x"), []any{3.0, 3.0})
	is.Equal(column(t, out, "y"), []any{7.0, 7.0})
}

func TestAcrossMultipleFunctionsNaming(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(
		dataverb.NewSeries("x", 1, 2),
		dataverb.NewSeries("y", 3, 4),
	)

	out, err := dataverb.Pipe(df, dataverb.Summarise(
		mustAcross(t, dataverb.C("x", "y"), []dataverb.Func{dataverb.Sum, dataverb.Mean}),
	))
	is.NoErr(err)

	// functions iterate in the outer loop: all columns for function 0,
	// then all columns for function 1
	is.Equal(out.Data().Columns(), []string{"x_0", "y_0", "x_1", "y_1"})
	is.Equal(column(t, out, "x_0"), []any{3.0})
	is.Equal(column(t, out, "y_1"), []any{3.5})
}

func TestAcrossNamedFunctions(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(dataverb.NewSeries("x", 1, 2, 3))

	out, err := dataverb.Pipe(df, dataverb.Summarise(
		mustAcross(t, dataverb.C("x"), []dataverb.FnPair{
			{Name: "total", Fn: dataverb.Sum},
			{Name: "avg", Fn: dataverb.Mean},
		}),
	))
	is.NoErr(err)
	is.Equal(out.Data().Columns(), []string{"x_total", "x_avg"})
}

func TestAcrossNamesTemplate(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(dataverb.NewSeries("x", 1, 2))

	out, err := dataverb.Pipe(df, dataverb.Summarise(
		mustAcross(t, dataverb.C("x"),
			[]dataverb.FnPair{{Name: "sum", Fn: dataverb.Sum}},
			dataverb.WithNames("{fn}_of_{col}")),
	))
	is.NoErr(err)
	is.Equal(out.Data().Columns(), []string{"sum_of_x"})
}

func TestAcrossInSelection(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(
		dataverb.NewSeries("x", 1),
		dataverb.NewSeries("y", 2),
		dataverb.NewSeries("z", 3),
	)

	// no function: the descriptor resolves to the selected names
	out, err := dataverb.Pipe(df, dataverb.Select(
		mustAcross(t, dataverb.C("y", "x"), nil),
	))
	is.NoErr(err)
	is.Equal(out.Data().Columns(), []string{"y", "x"})
}

func TestAcrossSelectionRejectsMultipleFunctions(t *testing.T) {
	df := dataverb.New(
		dataverb.NewSeries("x", 1),
		dataverb.NewSeries("y", 2),
	)
	upper := dataverb.Func(func(v any, _ ...any) (any, error) { return v, nil })

	_, err := dataverb.Pipe(df, dataverb.Select(
		mustAcross(t, dataverb.C("x"), []dataverb.Func{upper, upper}),
	))
	if !errors.Is(err, dataverb.ErrTooManyFunctions) {
		t.Fatalf("expected ErrTooManyFunctions, got %v", err)
	}
}

func TestCAcrossRowwise(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(
		dataverb.NewSeries("a", 1, 4),
		dataverb.NewSeries("b", 2, 5),
		dataverb.NewSeries("c", 3, 6),
	)

	ca, err := dataverb.NewCAcross(dataverb.C("a", "b", "c"), dataverb.Func(dataverb.Sum))
	is.NoErr(err)

	out, err := dataverb.Pipe(df,
		dataverb.Rowwise(),
		dataverb.Mutate(dataverb.As("total", ca)),
	)
	is.NoErr(err)
	is.Equal(column(t, out, "total"), []any{6.0, 15.0})
}

func TestIfAnyIfAll(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(
		dataverb.NewSeries("x", 1, -1, 2),
		dataverb.NewSeries("y", -1, -1, 2),
	)
	positive := dataverb.Func(func(v any, _ ...any) (any, error) {
		f, _ := v.(int)
		return f > 0, nil
	})

	anyPos, err := dataverb.NewIfAny(dataverb.C("x", "y"), positive)
	is.NoErr(err)
	out, err := dataverb.Pipe(df, dataverb.Mutate(dataverb.As("any_pos", anyPos)))
	is.NoErr(err)
	is.Equal(column(t, out, "any_pos"), []any{true, false, true})

	allPos, err := dataverb.NewIfAll(dataverb.C("x", "y"), positive)
	is.NoErr(err)
	out, err = dataverb.Pipe(df, dataverb.Mutate(dataverb.As("all_pos", allPos)))
	is.NoErr(err)
	is.Equal(column(t, out, "all_pos"), []any{false, false, true})
}

func TestIfAnyInFilter(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(
		dataverb.NewSeries("x", 1, -1, 2),
		dataverb.NewSeries("y", -1, -1, 2),
	)
	positive := dataverb.Func(func(v any, _ ...any) (any, error) {
		f, _ := v.(int)
		return f > 0, nil
	})

	pred, err := dataverb.NewIfAny(dataverb.C("x", "y"), positive)
	is.NoErr(err)
	out, err := dataverb.Pipe(df, dataverb.Filter(pred))
	is.NoErr(err)
	is.Equal(out.Data().NRow(), 2)
	is.Equal(column(t, out, "x"), []any{1, 2})
}

func TestAcrossCurCol(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(
		dataverb.NewSeries("x", 1),
		dataverb.NewSeries("y", 2),
	)
	nameOf := dataverb.Func(func(_ any, args ...any) (any, error) {
		return args[0], nil
	})

	out, err := dataverb.Pipe(df, dataverb.Mutate(
		mustAcross(t, dataverb.C("x", "y"), nameOf,
			dataverb.WithArgs(dataverb.CurCol)),
	))
	is.NoErr(err)
	is.Equal(column(t, out, "x"), []any{"x"})
	is.Equal(column(t, out, "y"), []any{"y"})
}
