package cel

import (
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types/ref"

	"github.com/dataverb/dataverb"
)

// frameDeclarations declares one CEL variable per column, typed from the
// first non-nil value. Columns of unknown or mixed content stay dynamic.
func frameDeclarations(df *dataverb.DataFrame) ([]cel.EnvOption, error) {
	opts := make([]cel.EnvOption, 0, df.NCol())
	for _, name := range df.Columns() {
		s, _ := df.Column(name)
		opts = append(opts, cel.Variable(name, columnType(s)))
	}
	return opts, nil
}

func columnType(s *dataverb.Series) *cel.Type {
	for _, v := range s.Values {
		switch v.(type) {
		case nil:
			continue
		case bool:
			return cel.BoolType
		case string:
			return cel.StringType
		case int, int8, int16, int32, int64:
			return cel.IntType
		case uint, uint8, uint16, uint32, uint64:
			return cel.UintType
		case float32, float64:
			return cel.DoubleType
		default:
			return cel.DynType
		}
	}
	return cel.DynType
}

// rowActivation builds the variable bindings for one row. Integer widths
// collapse to int64 and uint64, the only integer kinds CEL accepts.
func rowActivation(df *dataverb.DataFrame, cols []string, row int) map[string]any {
	vars := make(map[string]any, len(cols))
	for _, name := range cols {
		s, _ := df.Column(name)
		vars[name] = toCELValue(s.Values[row])
	}
	return vars
}

func toCELValue(v any) any {
	switch vv := v.(type) {
	case int:
		return int64(vv)
	case int8:
		return int64(vv)
	case int16:
		return int64(vv)
	case int32:
		return int64(vv)
	case uint:
		return uint64(vv)
	case uint8:
		return uint64(vv)
	case uint16:
		return uint64(vv)
	case uint32:
		return uint64(vv)
	case float32:
		return float64(vv)
	}
	return v
}

// fromRef unwraps a CEL result to a plain Go value.
func fromRef(val ref.Val) any {
	return val.Value()
}
