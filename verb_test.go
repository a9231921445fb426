package dataverb_test

import (
	"testing"

	"github.com/matryer/is"

	"github.com/dataverb/dataverb"
)

func TestPipe(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(
		dataverb.NewSeries("g", "a", "a", "b"),
		dataverb.NewSeries("x", 1, 2, 3),
	)

	out, err := dataverb.Pipe(df,
		dataverb.Mutate(dataverb.As("y", dataverb.Col("x").Mul(10))),
		dataverb.Filter(dataverb.Col("y").Gt(10.0)),
		dataverb.Arrange(dataverb.Col("y").Desc()),
	)
	is.NoErr(err)
	is.Equal(column(t, out, "y"), []any{30.0, 20.0})
}

func TestPipeStopsOnError(t *testing.T) {
	df := dataverb.New(dataverb.NewSeries("x", 1))
	_, err := dataverb.Pipe(df,
		dataverb.Filter(dataverb.Col("nope")),
		dataverb.Mutate(dataverb.As("y", 1)),
	)
	if err == nil {
		t.Fatal("expected the pipeline to fail on the bad step")
	}
}

func TestLookup(t *testing.T) {
	is := is.New(t)

	for _, name := range []string{
		"mutate", "filter", "summarise", "arrange", "select", "group_by",
		"slice", "slice_head", "slice_min", "slice_sample", "count",
		"inner_join", "semi_join", "bind_rows", "union", "distinct",
	} {
		v, ok := dataverb.Lookup(name)
		is.True(ok)
		is.Equal(v.Name(), name)
	}

	_, ok := dataverb.Lookup("no_such_verb")
	is.Equal(ok, false)
}

func TestVerbContexts(t *testing.T) {
	is := is.New(t)

	sel, _ := dataverb.Lookup("select")
	is.Equal(sel.Context(), dataverb.SELECT)

	fil, _ := dataverb.Lookup("filter")
	is.Equal(fil.Context(), dataverb.EVAL)

	mut, _ := dataverb.Lookup("mutate")
	is.Equal(mut.Context(), dataverb.PENDING)
}

func TestCallConventions(t *testing.T) {
	is := is.New(t)
	df := dataverb.New(dataverb.NewSeries("x", 1, 2, 3))
	v, _ := dataverb.Lookup("filter")

	// a leading frame makes it a direct call
	res, err := v.Call(df, dataverb.Col("x").Gt(1))
	is.NoErr(err)
	out, ok := res.(dataverb.Frame)
	is.True(ok)
	is.Equal(out.Data().NRow(), 2)

	// without one the verb packages a pipeline step
	res, err = v.Call(dataverb.Col("x").Gt(1))
	is.NoErr(err)
	step, ok := res.(dataverb.Step)
	is.True(ok)
	out, err = step(df)
	is.NoErr(err)
	is.Equal(out.Data().NRow(), 2)
}

func TestCallTwoTableAmbiguity(t *testing.T) {
	is := is.New(t)
	x := dataverb.New(dataverb.NewSeries("k", 1, 2))
	y := dataverb.New(dataverb.NewSeries("k", 2, 3))
	v, _ := dataverb.Lookup("union")

	// by default a single frame is taken as piping usage: the frame is
	// the other table
	res, err := v.Call(y)
	is.NoErr(err)
	step, ok := res.(dataverb.Step)
	is.True(ok)
	out, err := step(x)
	is.NoErr(err)
	is.Equal(out.Data().NRow(), 3)

	// two leading frames are unambiguous
	res, err = v.Call(x, y)
	is.NoErr(err)
	direct, ok := res.(dataverb.Frame)
	is.True(ok)
	is.Equal(direct.Data().NRow(), 3)
}

func TestCallPolicyFromEnvironment(t *testing.T) {
	is := is.New(t)
	x := dataverb.New(dataverb.NewSeries("k", 1, 2))
	v, _ := dataverb.Lookup("union")

	t.Setenv("DATAR_UNION_AST_FALLBACK", "raise")
	_, err := v.Call(x)
	if err == nil {
		t.Fatal("expected the raise policy to reject the ambiguous call")
	}

	t.Setenv("DATAR_UNION_AST_FALLBACK", "piping")
	res, err := v.Call(x)
	is.NoErr(err)
	_, ok := res.(dataverb.Step)
	is.True(ok)
}

func TestPolicyFor(t *testing.T) {
	is := is.New(t)

	is.Equal(dataverb.PolicyFor("mutate"), dataverb.PolicyPiping)

	t.Setenv("DATAR_MUTATE_AST_FALLBACK", "normal")
	is.Equal(dataverb.PolicyFor("mutate"), dataverb.PolicyNormal)
	// trailing underscores share the same variable
	is.Equal(dataverb.PolicyFor("mutate_"), dataverb.PolicyNormal)

	t.Setenv("DATAR_VERB_AST_FALLBACK", "raise")
	is.Equal(dataverb.PolicyFor("filter"), dataverb.PolicyRaise)
	// the verb-specific variable wins
	is.Equal(dataverb.PolicyFor("mutate"), dataverb.PolicyNormal)

	t.Setenv("DATAR_FILTER_AST_FALLBACK", "bogus")
	is.Equal(dataverb.PolicyFor("filter"), dataverb.PolicyRaise)
}

func TestPolicyString(t *testing.T) {
	is := is.New(t)
	is.Equal(dataverb.PolicyPiping.String(), "piping")
	is.Equal(dataverb.PolicyNormal.String(), "normal")
	is.Equal(dataverb.PolicyRaise.String(), "raise")
}
