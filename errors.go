package dataverb

import "github.com/pkg/errors"

// Sentinel errors returned by verbs and selector resolution. Callers can
// match them with errors.Is; the returned errors carry additional context
// (the offending column name, the verb involved) added with pkg/errors.
var (
	// ErrColumnNotFound is returned when a selector references a column
	// name that does not exist in the frame.
	ErrColumnNotFound = errors.New("column not found")

	// ErrDuplicateName is returned by verbs that require unique column
	// names (for example Arrange) when the frame's names are not unique.
	ErrDuplicateName = errors.New("duplicate column name")

	// ErrNonUniqueNames is returned by RepairNames with the CheckUnique
	// strategy when the names are not unique.
	ErrNonUniqueNames = errors.New("names must be unique")

	// ErrNoFunctions is returned when CAcross, IfAny or IfAll is
	// constructed without a function.
	ErrNoFunctions = errors.New("no function specified")

	// ErrTooManyFunctions is returned when CAcross, IfAny or IfAll is
	// constructed with more than one function.
	ErrTooManyFunctions = errors.New("only a single function is allowed")

	// ErrInvalidFunctions is returned when the functions argument of
	// Across is not a Func, a []Func, a map[string]Func or nil.
	ErrInvalidFunctions = errors.New("invalid functions argument")

	// ErrConflictingDirectives is returned when both a Before and an
	// After destination are given to Relocate or Mutate.
	ErrConflictingDirectives = errors.New("only one of Before and After can be specified")

	// ErrBadLength is returned when a value assigned to a column is
	// neither a scalar nor the same length as the frame.
	ErrBadLength = errors.New("value length does not match row count")
)
