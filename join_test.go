package dataverb_test

import (
	"testing"

	"github.com/matryer/is"

	"github.com/dataverb/dataverb"
)

func employees() *dataverb.DataFrame {
	return dataverb.New(
		dataverb.NewSeries("name", "ada", "grace", "linus"),
		dataverb.NewSeries("dept", "eng", "eng", "ops"),
	)
}

func departments() *dataverb.DataFrame {
	return dataverb.New(
		dataverb.NewSeries("dept", "eng", "sales"),
		dataverb.NewSeries("floor", 1, 2),
	)
}

func TestInnerJoin(t *testing.T) {
	is := is.New(t)

	out, err := dataverb.Pipe(employees(), dataverb.InnerJoin(departments()))
	is.NoErr(err)
	is.Equal(out.Data().Columns(), []string{"name", "dept", "floor"})
	is.Equal(column(t, out, "name"), []any{"ada", "grace"})
	is.Equal(column(t, out, "floor"), []any{1, 1})
}

func TestLeftJoin(t *testing.T) {
	is := is.New(t)

	out, err := dataverb.Pipe(employees(), dataverb.LeftJoin(departments()))
	is.NoErr(err)
	is.Equal(column(t, out, "name"), []any{"ada", "grace", "linus"})
	is.Equal(column(t, out, "floor"), []any{1, 1, nil})
}

func TestRightJoin(t *testing.T) {
	is := is.New(t)

	out, err := dataverb.Pipe(employees(), dataverb.RightJoin(departments()))
	is.NoErr(err)
	is.Equal(column(t, out, "dept"), []any{"eng", "eng", "sales"})
	is.Equal(column(t, out, "name"), []any{"ada", "grace", nil})
	is.Equal(column(t, out, "floor"), []any{1, 1, 2})
}

func TestFullJoin(t *testing.T) {
	is := is.New(t)

	out, err := dataverb.Pipe(employees(), dataverb.FullJoin(departments()))
	is.NoErr(err)
	is.Equal(out.Data().NRow(), 4)
	is.Equal(column(t, out, "dept"), []any{"eng", "eng", "ops", "sales"})
	is.Equal(column(t, out, "floor"), []any{1, 1, nil, 2})
}

func TestJoinByDifferentNames(t *testing.T) {
	is := is.New(t)
	x := dataverb.New(
		dataverb.NewSeries("emp", "ada", "bob"),
		dataverb.NewSeries("d", "eng", "ops"),
	)
	y := dataverb.New(
		dataverb.NewSeries("dept", "eng"),
		dataverb.NewSeries("floor", 1),
	)

	out, err := dataverb.Pipe(x, dataverb.InnerJoin(y,
		dataverb.By(dataverb.As("d", "dept")),
	))
	is.NoErr(err)
	is.Equal(out.Data().Columns(), []string{"emp", "d", "floor"})
	is.Equal(column(t, out, "d"), []any{"eng"})

	// KeepKeys retains the right-hand key column
	out, err = dataverb.Pipe(x, dataverb.InnerJoin(y,
		dataverb.By(dataverb.As("d", "dept")),
		dataverb.KeepKeys(true),
	))
	is.NoErr(err)
	is.Equal(out.Data().Columns(), []string{"emp", "d", "dept", "floor"})
}

func TestJoinSuffix(t *testing.T) {
	is := is.New(t)
	x := dataverb.New(
		dataverb.NewSeries("k", 1, 2),
		dataverb.NewSeries("v", "x1", "x2"),
	)
	y := dataverb.New(
		dataverb.NewSeries("k", 1, 2),
		dataverb.NewSeries("v", "y1", "y2"),
	)

	out, err := dataverb.Pipe(x, dataverb.InnerJoin(y, dataverb.By("k")))
	is.NoErr(err)
	is.Equal(out.Data().Columns(), []string{"k", "v_x", "v_y"})

	out, err = dataverb.Pipe(x, dataverb.InnerJoin(y, dataverb.By("k"), dataverb.Suffix{".left", ".right"}))
	is.NoErr(err)
	is.Equal(out.Data().Columns(), []string{"k", "v.left", "v.right"})
}

func TestJoinManyToMany(t *testing.T) {
	is := is.New(t)
	x := dataverb.New(dataverb.NewSeries("k", "a", "a"))
	y := dataverb.New(
		dataverb.NewSeries("k", "a", "a"),
		dataverb.NewSeries("v", 1, 2),
	)

	out, err := dataverb.Pipe(x, dataverb.InnerJoin(y))
	is.NoErr(err)
	is.Equal(out.Data().NRow(), 4)
}

func TestJoinNoCommonColumns(t *testing.T) {
	x := dataverb.New(dataverb.NewSeries("a", 1))
	y := dataverb.New(dataverb.NewSeries("b", 2))
	_, err := dataverb.Pipe(x, dataverb.InnerJoin(y))
	if err == nil {
		t.Fatal("expected an error when no keys can be inferred")
	}
}

func TestSemiJoin(t *testing.T) {
	is := is.New(t)

	out, err := dataverb.Pipe(employees(), dataverb.SemiJoin(departments()))
	is.NoErr(err)
	is.Equal(out.Data().Columns(), []string{"name", "dept"})
	is.Equal(column(t, out, "name"), []any{"ada", "grace"})
}

func TestAntiJoin(t *testing.T) {
	is := is.New(t)

	out, err := dataverb.Pipe(employees(), dataverb.AntiJoin(departments()))
	is.NoErr(err)
	is.Equal(column(t, out, "name"), []any{"linus"})
}

func TestNestJoin(t *testing.T) {
	is := is.New(t)

	out, err := dataverb.Pipe(employees(), dataverb.NestJoin(departments()))
	is.NoErr(err)
	is.Equal(out.Data().Columns(), []string{"name", "dept", "data"})

	cells := column(t, out, "data")
	eng, ok := cells[0].(*dataverb.DataFrame)
	is.True(ok)
	is.Equal(eng.Columns(), []string{"floor"}) // the key column is not nested
	is.Equal(eng.NRow(), 1)

	ops := cells[2].(*dataverb.DataFrame)
	is.Equal(ops.NRow(), 0)
}

func TestNestJoinName(t *testing.T) {
	is := is.New(t)

	out, err := dataverb.Pipe(employees(), dataverb.NestJoin(departments(), dataverb.NestName("matches")))
	is.NoErr(err)
	is.True(out.Data().HasColumn("matches"))
}

func TestJoinKeepsGrouping(t *testing.T) {
	is := is.New(t)

	out, err := dataverb.Pipe(employees(),
		dataverb.GroupBy("dept"),
		dataverb.LeftJoin(departments()),
	)
	is.NoErr(err)
	g, ok := out.(*dataverb.GroupedFrame)
	is.True(ok)
	is.Equal(g.Keys(), []string{"dept"})
}
