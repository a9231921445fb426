package dataverb_test

import (
	"testing"

	"github.com/matryer/is"

	"github.com/dataverb/dataverb"
)

func TestAggregations(t *testing.T) {
	is := is.New(t)
	vec := []any{3, 1, 2}

	v, err := dataverb.Sum(vec)
	is.NoErr(err)
	is.Equal(v, 6.0)

	v, err = dataverb.Mean(vec)
	is.NoErr(err)
	is.Equal(v, 2.0)

	v, err = dataverb.Min(vec)
	is.NoErr(err)
	is.Equal(v, 1)

	v, err = dataverb.Max(vec)
	is.NoErr(err)
	is.Equal(v, 3)

	v, err = dataverb.N(vec)
	is.NoErr(err)
	is.Equal(v, 3)

	v, err = dataverb.First(vec)
	is.NoErr(err)
	is.Equal(v, 3)

	v, err = dataverb.Last(vec)
	is.NoErr(err)
	is.Equal(v, 2)
}

func TestAggregationsEmpty(t *testing.T) {
	is := is.New(t)
	var vec []any

	v, err := dataverb.Sum(vec)
	is.NoErr(err)
	is.Equal(v, 0.0)

	v, err = dataverb.Mean(vec)
	is.NoErr(err)
	is.Equal(v, nil)

	v, err = dataverb.Min(vec)
	is.NoErr(err)
	is.Equal(v, nil)

	v, err = dataverb.First(vec)
	is.NoErr(err)
	is.Equal(v, nil)
}

func TestSumNonNumeric(t *testing.T) {
	_, err := dataverb.Sum([]any{"a"})
	if err == nil {
		t.Fatal("expected an error for non-numeric input")
	}
}

func TestAggregationScalarInput(t *testing.T) {
	is := is.New(t)

	// a scalar counts as a one-element vector
	v, err := dataverb.Sum(5)
	is.NoErr(err)
	is.Equal(v, 5.0)

	v, err = dataverb.N(5)
	is.NoErr(err)
	is.Equal(v, 1)
}
