package dataverb

import "github.com/pkg/errors"

// Built-in aggregation and transform functions usable with Across and
// Expr.Apply. All of them operate on a resolved column vector.

func vector(v any) ([]any, error) {
	switch vv := v.(type) {
	case []any:
		return vv, nil
	case *Series:
		return vv.Values, nil
	case nil:
		return nil, nil
	}
	return []any{v}, nil
}

// Sum adds the numeric values of a vector; non-numeric values are an error.
func Sum(v any, _ ...any) (any, error) {
	vec, err := vector(v)
	if err != nil {
		return nil, err
	}
	total := 0.0
	for _, x := range vec {
		f, ok := asFloat(x)
		if !ok {
			return nil, errors.Errorf("sum: non-numeric value %v", x)
		}
		total += f
	}
	return total, nil
}

// Mean averages the numeric values of a vector.
func Mean(v any, _ ...any) (any, error) {
	vec, err := vector(v)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, nil
	}
	total, err := Sum(vec)
	if err != nil {
		return nil, err
	}
	return total.(float64) / float64(len(vec)), nil
}

// Min returns the smallest value of a vector.
func Min(v any, _ ...any) (any, error) {
	vec, err := vector(v)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, nil
	}
	best := vec[0]
	for _, x := range vec[1:] {
		if compareValues(x, best) < 0 {
			best = x
		}
	}
	return best, nil
}

// Max returns the largest value of a vector.
func Max(v any, _ ...any) (any, error) {
	vec, err := vector(v)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, nil
	}
	best := vec[0]
	for _, x := range vec[1:] {
		if compareValues(x, best) > 0 {
			best = x
		}
	}
	return best, nil
}

// N counts the values of a vector.
func N(v any, _ ...any) (any, error) {
	vec, err := vector(v)
	if err != nil {
		return nil, err
	}
	return len(vec), nil
}

// First returns the first value of a vector, nil when empty.
func First(v any, _ ...any) (any, error) {
	vec, err := vector(v)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, nil
	}
	return vec[0], nil
}

// Last returns the last value of a vector, nil when empty.
func Last(v any, _ ...any) (any, error) {
	vec, err := vector(v)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, nil
	}
	return vec[len(vec)-1], nil
}
