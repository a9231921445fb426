// Package cel evaluates CEL expressions against data frames.
// See https://github.com/google/cel-go and https://opensource.google/projects/cel
// for more information about CEL. Expressions must conform to the CEL
// spec: https://github.com/google/cel-spec.
//
// Each column of the frame becomes a CEL variable, typed from its
// values. An expression is parsed and type-checked once, then evaluated
// row by row.
package cel

import (
	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"

	"github.com/dataverb/dataverb"
)

// Program is a compiled CEL expression bound to a column schema.
type Program struct {
	source string
	prg    cel.Program
	cols   []string
}

// Compile parses and type-checks the expression against the frame's
// columns and returns a runnable program.
func Compile(source string, df *dataverb.DataFrame) (*Program, error) {
	opts, err := frameDeclarations(df)
	if err != nil {
		return nil, err
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "building environment")
	}
	ast, iss := env.Compile(source)
	if iss != nil && iss.Err() != nil {
		return nil, errors.Wrapf(iss.Err(), "compiling %q", source)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, errors.Wrapf(err, "generating program for %q", source)
	}
	return &Program{source: source, prg: prg, cols: df.Columns()}, nil
}

// Source returns the expression text the program was compiled from.
func (p *Program) Source() string { return p.source }

// Eval runs the program once per row and returns one value per row.
func (p *Program) Eval(df *dataverb.DataFrame) ([]any, error) {
	out := make([]any, df.NRow())
	for i := 0; i < df.NRow(); i++ {
		val, _, err := p.prg.Eval(rowActivation(df, p.cols, i))
		if err != nil {
			return nil, errors.Wrapf(err, "evaluating %q on row %d", p.source, i)
		}
		out[i] = fromRef(val)
	}
	return out, nil
}

// Expr wraps a CEL expression as a frame expression usable in Mutate,
// Filter, Arrange and the rest of the verbs. Compilation happens on
// first use against each frame's columns.
func Expr(source string) dataverb.Expr {
	return dataverb.Compute(source, func(df *dataverb.DataFrame) (any, error) {
		prg, err := Compile(source, df)
		if err != nil {
			return nil, err
		}
		return prg.Eval(df)
	})
}
