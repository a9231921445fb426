package dataverb_test

import (
	"testing"

	"github.com/matryer/is"

	"github.com/dataverb/dataverb"
)

func TestSelect(t *testing.T) {
	is := is.New(t)
	df := sampleFrame()

	out, err := dataverb.Pipe(df, dataverb.Select("c", "a"))
	is.NoErr(err)
	is.Equal(out.Data().Columns(), []string{"c", "a"})

	// duplicate selections keep duplicate columns
	out, err = dataverb.Pipe(df, dataverb.Select("a", "a"))
	is.NoErr(err)
	is.Equal(out.Data().NCol(), 2)
}

func TestSelectWithRename(t *testing.T) {
	is := is.New(t)
	df := sampleFrame()

	out, err := dataverb.Pipe(df, dataverb.Select(
		dataverb.As("first", "a"),
		"c",
	))
	is.NoErr(err)
	is.Equal(out.Data().Columns(), []string{"first", "c"})
}

func TestSelectByExprColumns(t *testing.T) {
	is := is.New(t)
	df := sampleFrame()

	out, err := dataverb.Pipe(df, dataverb.Select(dataverb.Col("b"), dataverb.Col("d")))
	is.NoErr(err)
	is.Equal(out.Data().Columns(), []string{"b", "d"})
}

func TestRename(t *testing.T) {
	is := is.New(t)
	df := sampleFrame()

	out, err := dataverb.Pipe(df, dataverb.Rename(dataverb.As("alpha", "a")))
	is.NoErr(err)
	is.Equal(out.Data().Columns(), []string{"alpha", "b", "c", "d"})

	_, err = dataverb.Pipe(df, dataverb.Rename(dataverb.As("zz", "nope")))
	if err == nil {
		t.Fatal("expected an error for renaming a missing column")
	}
}

func TestPull(t *testing.T) {
	is := is.New(t)
	df := sampleFrame()

	s, err := dataverb.Pull(df, "b")
	is.NoErr(err)
	is.Equal(s.Name, "b")
	is.Equal(s.Values, []any{4.0, 5.0, 6.0})

	// the default pulls the last column
	s, err = dataverb.Pull(df)
	is.NoErr(err)
	is.Equal(s.Name, "d")

	s, err = dataverb.Pull(df, 0)
	is.NoErr(err)
	is.Equal(s.Name, "a")
}

func TestRelocate(t *testing.T) {
	is := is.New(t)
	df := sampleFrame()

	// default destination is the front
	out, err := dataverb.Pipe(df, dataverb.Relocate("d"))
	is.NoErr(err)
	is.Equal(out.Data().Columns(), []string{"d", "a", "b", "c"})

	out, err = dataverb.Pipe(df, dataverb.Relocate("a", dataverb.After("c")))
	is.NoErr(err)
	is.Equal(out.Data().Columns(), []string{"b", "c", "a", "d"})

	out, err = dataverb.Pipe(df, dataverb.Relocate("d", dataverb.Before("b")))
	is.NoErr(err)
	is.Equal(out.Data().Columns(), []string{"a", "d", "b", "c"})

	_, err = dataverb.Pipe(df, dataverb.Relocate("a", dataverb.Before("b"), dataverb.After("c")))
	if err == nil {
		t.Fatal("expected an error for Before together with After")
	}
}

func TestRelocateKeepsGrouping(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(
		dataverb.NewSeries("g", "a", "b"),
		dataverb.NewSeries("x", 1, 2),
	)

	out, err := dataverb.Pipe(df, dataverb.GroupBy("g"), dataverb.Relocate("x"))
	is.NoErr(err)
	is.Equal(out.Data().Columns(), []string{"x", "g"})
	is.Equal(dataverb.GroupVars(out), []string{"g"})
}
