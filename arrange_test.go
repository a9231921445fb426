package dataverb_test

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/dataverb/dataverb"
)

func TestArrangeAscending(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(
		dataverb.NewSeries("x", 3, 1, 2),
		dataverb.NewSeries("tag", "c", "a", "b"),
	)

	out, err := dataverb.Pipe(df, dataverb.Arrange(dataverb.Col("x")))
	is.NoErr(err)
	is.Equal(column(t, out, "x"), []any{1, 2, 3})
	is.Equal(column(t, out, "tag"), []any{"a", "b", "c"})
}

func TestArrangeByName(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(dataverb.NewSeries("x", 3, 1, 2))

	// a bare string sorts by that column, never by the string itself
	out, err := dataverb.Pipe(df, dataverb.Arrange("x"))
	is.NoErr(err)
	is.Equal(column(t, out, "x"), []any{1, 2, 3})

	_, err = dataverb.Pipe(df, dataverb.Arrange("nope"))
	is.True(errors.Is(err, dataverb.ErrColumnNotFound))
}

func TestArrangeDescending(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(dataverb.NewSeries("x", 3, 1, 2))

	out, err := dataverb.Pipe(df, dataverb.Arrange(dataverb.Col("x").Desc()))
	is.NoErr(err)
	is.Equal(column(t, out, "x"), []any{3, 2, 1})

	// Desc also accepts a bare column name
	out, err = dataverb.Pipe(df, dataverb.Arrange(dataverb.Desc("x")))
	is.NoErr(err)
	is.Equal(column(t, out, "x"), []any{3, 2, 1})
}

func TestArrangeStable(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(
		dataverb.NewSeries("k", 1, 1, 0, 0),
		dataverb.NewSeries("id", "a", "b", "c", "d"),
	)

	out, err := dataverb.Pipe(df, dataverb.Arrange(dataverb.Col("k")))
	is.NoErr(err)
	is.Equal(column(t, out, "id"), []any{"c", "d", "a", "b"})
}

func TestArrangeMultipleKeys(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(
		dataverb.NewSeries("a", 2, 1, 2, 1),
		dataverb.NewSeries("b", 1, 2, 2, 1),
	)

	out, err := dataverb.Pipe(df, dataverb.Arrange(dataverb.Col("a"), dataverb.Col("b").Desc()))
	is.NoErr(err)
	is.Equal(column(t, out, "a"), []any{1, 1, 2, 2})
	is.Equal(column(t, out, "b"), []any{2, 1, 2, 1})
}

func TestArrangeByExpression(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(dataverb.NewSeries("x", -3, 1, 2))

	abs := dataverb.Func(func(v any, _ ...any) (any, error) {
		n := v.(int)
		if n < 0 {
			n = -n
		}
		return n, nil
	})
	byAbs := dataverb.Col("x").Apply(func(v any, _ ...any) (any, error) {
		vec := v.([]any)
		out := make([]any, len(vec))
		for i, x := range vec {
			r, err := abs(x)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	})

	out, err := dataverb.Pipe(df, dataverb.Arrange(byAbs))
	is.NoErr(err)
	is.Equal(column(t, out, "x"), []any{1, 2, -3})
}

func TestArrangeDuplicateNames(t *testing.T) {
	df := dataverb.New(
		dataverb.NewSeries("x", 1),
		dataverb.NewSeries("x", 2),
	)
	_, err := dataverb.Pipe(df, dataverb.Arrange(dataverb.Col("x")))
	if !errors.Is(err, dataverb.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestArrangeGrouped(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(
		dataverb.NewSeries("g", "b", "a", "b", "a"),
		dataverb.NewSeries("x", 2, 4, 1, 3),
	)

	// grouping is ignored by default
	out, err := dataverb.Pipe(df,
		dataverb.GroupBy("g"),
		dataverb.Arrange(dataverb.Col("x")),
	)
	is.NoErr(err)
	is.Equal(column(t, out, "x"), []any{1, 2, 3, 4})

	// ByGroup sorts by the keys first
	out, err = dataverb.Pipe(df,
		dataverb.GroupBy("g"),
		dataverb.Arrange(dataverb.Col("x"), dataverb.ByGroup(true)),
	)
	is.NoErr(err)
	is.Equal(column(t, out, "g"), []any{"a", "a", "b", "b"})
	is.Equal(column(t, out, "x"), []any{3, 4, 1, 2})
}
