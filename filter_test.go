package dataverb_test

import (
	"testing"

	"github.com/matryer/is"

	"github.com/dataverb/dataverb"
)

func TestFilterBasic(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(
		dataverb.NewSeries("x", 1, 2, 3, 4),
		dataverb.NewSeries("y", "a", "b", "a", "b"),
	)

	out, err := dataverb.Pipe(df, dataverb.Filter(dataverb.Col("x").Gt(2)))
	is.NoErr(err)
	is.Equal(column(t, out, "x"), []any{3, 4})

	// multiple conditions combine with AND
	out, err = dataverb.Pipe(df, dataverb.Filter(
		dataverb.Col("x").Gt(1),
		dataverb.Col("y").Eq("a"),
	))
	is.NoErr(err)
	is.Equal(column(t, out, "x"), []any{3})
}

func TestFilterScalarCondition(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(dataverb.NewSeries("x", 1, 2))

	out, err := dataverb.Pipe(df, dataverb.Filter(dataverb.Lit(false)))
	is.NoErr(err)
	is.Equal(out.Data().NRow(), 0)

	out, err = dataverb.Pipe(df, dataverb.Filter(dataverb.Lit(true)))
	is.NoErr(err)
	is.Equal(out.Data().NRow(), 2)
}

func TestFilterGrouped(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(
		dataverb.NewSeries("g", "a", "a", "b", "b"),
		dataverb.NewSeries("x", 1, 2, 3, 4),
	)

	// x == max(x) runs per group
	out, err := dataverb.Pipe(df,
		dataverb.GroupBy("g"),
		dataverb.Filter(dataverb.Col("x").Eq(dataverb.Col("x").Apply(dataverb.Max))),
	)
	is.NoErr(err)
	is.Equal(column(t, out, "x"), []any{2, 4})

	g, ok := out.(*dataverb.GroupedFrame)
	is.True(ok)
	is.Equal(g.Keys(), []string{"g"})
}

func TestFilterPreservesEmptyGroups(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(
		dataverb.NewSeries("g", "a", "a", "b"),
		dataverb.NewSeries("x", 1, 2, 3),
	)

	out, err := dataverb.Pipe(df,
		dataverb.GroupBy("g"),
		dataverb.Filter(dataverb.Col("x").Gt(2), dataverb.Preserve(true)),
	)
	is.NoErr(err)
	is.Equal(out.Data().NRow(), 1)

	rows, err := dataverb.GroupRows(out)
	is.NoErr(err)
	is.Equal(len(rows), 2) // group a survives with no rows
	is.Equal(len(rows[0]), 0)
	is.Equal(rows[1], []int{0})

	keys, err := dataverb.GroupKeys(out)
	is.NoErr(err)
	is.Equal(column(t, keys, "g"), []any{"a", "b"})

	// without preserve the empty group is dropped
	out, err = dataverb.Pipe(df,
		dataverb.GroupBy("g"),
		dataverb.Filter(dataverb.Col("x").Gt(2)),
	)
	is.NoErr(err)
	rows, err = dataverb.GroupRows(out)
	is.NoErr(err)
	is.Equal(len(rows), 1)
}

func TestFilterRowwise(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(dataverb.NewSeries("x", 1, 2, 3))

	out, err := dataverb.Pipe(df,
		dataverb.Rowwise(),
		dataverb.Filter(dataverb.Col("x").Ne(2)),
	)
	is.NoErr(err)
	is.Equal(column(t, out, "x"), []any{1, 3})
	_, ok := out.(*dataverb.RowwiseFrame)
	is.True(ok)
}
