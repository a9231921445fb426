package dataverb

import (
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// A Verb is a named table transformation, overloaded per frame shape.
// Verbs are registered once at package init; the registry is guarded by a
// module-level lock so applications can add their own verbs at startup.
//
// A verb is usable two ways: applied directly to a frame
//
//	out, err := Mutate(As("y", Col("x").Mul(2)))(df)
//
// or composed in a pipeline
//
//	out, err := Pipe(df, GroupBy("g"), Mutate(As("y", Col("x").Mul(2))))
type Verb struct {
	name     string
	context  ContextKind
	twoTable bool

	plain   overloadFn
	grouped overloadFn
	rowwise overloadFn
}

type overloadFn func(data Frame, args []any) (Frame, error)

// Step is one stage of a pipeline: it takes a frame and produces the next.
type Step func(Frame) (Frame, error)

// Pipe threads the frame through the steps left to right.
func Pipe(data Frame, steps ...Step) (Frame, error) {
	var err error
	for _, step := range steps {
		data, err = step(data)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

// NamedArg is a name = value pair passed to verbs such as Mutate and
// Summarise. The value may be a deferred expression, an Across-family
// descriptor, a plain value, or nil (meaning "drop this column").
type NamedArg struct {
	Name  string
	Value any
}

// As builds a NamedArg.
func As(name string, value any) NamedArg {
	return NamedArg{Name: name, Value: value}
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*Verb{}
)

// VerbOption configures a verb registration.
type VerbOption func(v *Verb)

// OnPlain sets the overload for plain frames. It is also the fallback for
// shapes without their own overload.
func OnPlain(fn overloadFn) VerbOption {
	return func(v *Verb) { v.plain = fn }
}

// OnGrouped sets the overload for grouped frames.
func OnGrouped(fn overloadFn) VerbOption {
	return func(v *Verb) { v.grouped = fn }
}

// OnRowwise sets the overload for row-wise frames.
func OnRowwise(fn overloadFn) VerbOption {
	return func(v *Verb) { v.rowwise = fn }
}

// TwoTable marks the verb as taking another frame as its first argument,
// which makes a direct call indistinguishable from a piped one; the
// AST-fallback policy decides.
func TwoTable() VerbOption {
	return func(v *Verb) { v.twoTable = true }
}

// Register adds a verb to the registry with its declared evaluation
// context and overloads, replacing any previous registration of the name.
func Register(name string, context ContextKind, opts ...VerbOption) *Verb {
	v := &Verb{name: name, context: context}
	for _, opt := range opts {
		opt(v)
	}
	registryMu.Lock()
	registry[name] = v
	registryMu.Unlock()
	return v
}

// Lookup finds a registered verb by name.
func Lookup(name string) (*Verb, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	v, ok := registry[name]
	return v, ok
}

// Name returns the verb's registered name.
func (v *Verb) Name() string { return v.name }

// Context returns the verb's declared evaluation context.
func (v *Verb) Context() ContextKind { return v.context }

// apply dispatches on the frame shape and runs the matching overload.
func (v *Verb) apply(data Frame, args []any) (Frame, error) {
	var fn overloadFn
	switch data.(type) {
	case *GroupedFrame:
		fn = v.grouped
	case *RowwiseFrame:
		fn = v.rowwise
	}
	if fn == nil {
		fn = v.plain
	}
	if fn == nil {
		return nil, errors.Errorf("verb %s has no overload for %T", v.name, data)
	}
	out, err := fn(data, args)
	if err != nil {
		return nil, errors.Wrap(err, v.name)
	}
	return out, nil
}

// Bind packages the arguments into a pipeline Step.
func (v *Verb) Bind(args ...any) Step {
	return func(data Frame) (Frame, error) {
		return v.apply(data, args)
	}
}

// Call invokes the verb with the calling convention resolved at runtime:
// a leading Frame argument means a direct call and returns a Frame; no
// leading Frame means piping usage and returns a Step. For two-table verbs
// a single leading Frame is ambiguous (it could be the data or the other
// table); the verb's AST-fallback policy decides, and PolicyRaise turns
// the ambiguity into an error.
func (v *Verb) Call(args ...any) (any, error) {
	style := v.callStyle(args)
	switch style {
	case PolicyNormal:
		data, ok := args[0].(Frame)
		if !ok {
			return nil, errors.Errorf("verb %s: direct call without a frame", v.name)
		}
		return v.apply(data, args[1:])
	case PolicyRaise:
		return nil, errors.Errorf(
			"verb %s: cannot determine calling convention; set DATAR_%s_AST_FALLBACK",
			v.name, strings.ToUpper(strings.TrimRight(v.name, "_")))
	}
	return v.Bind(args...), nil
}

func (v *Verb) callStyle(args []any) Policy {
	if len(args) == 0 {
		return PolicyPiping
	}
	_, first := args[0].(Frame)
	if !first {
		return PolicyPiping
	}
	if !v.twoTable {
		return PolicyNormal
	}
	if len(args) > 1 {
		if _, second := args[1].(Frame); second {
			return PolicyNormal
		}
	}
	return PolicyFor(v.name)
}

// Policy is the AST-fallback calling-convention policy: what a verb
// assumes when it cannot tell a direct call from a piped one.
type Policy int

const (
	// PolicyPiping assumes piping usage.
	PolicyPiping Policy = iota
	// PolicyNormal assumes a direct call.
	PolicyNormal
	// PolicyRaise fails loudly.
	PolicyRaise
)

func (p Policy) String() string {
	switch p {
	case PolicyNormal:
		return "normal"
	case PolicyRaise:
		return "raise"
	}
	return "piping"
}

// PolicyFor resolves the policy for a verb name from the environment:
// DATAR_<VERB>_AST_FALLBACK first, then DATAR_VERB_AST_FALLBACK, defaulting
// to piping. Trailing underscores in the verb name are dropped, so filter_
// and filter share DATAR_FILTER_AST_FALLBACK. Unrecognized values are
// reported and the default used.
func PolicyFor(verb string) Policy {
	name := strings.ToUpper(strings.TrimRight(verb, "_"))
	for _, key := range []string{"DATAR_" + name + "_AST_FALLBACK", "DATAR_VERB_AST_FALLBACK"} {
		val := os.Getenv(key)
		if val == "" {
			continue
		}
		switch val {
		case "piping":
			return PolicyPiping
		case "normal":
			return PolicyNormal
		case "raise":
			return PolicyRaise
		default:
			logger.Warn("unrecognized ast fallback policy", "env", key, "value", val)
		}
	}
	return PolicyPiping
}
