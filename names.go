package dataverb

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/markbates/inflect"
	"github.com/pkg/errors"
)

// NameRepair selects a strategy for fixing a column-name list.
type NameRepair string

const (
	// NamesMinimal only fills in missing names with the empty string.
	NamesMinimal NameRepair = "minimal"
	// NamesUnique appends positional suffixes until every name is unique.
	NamesUnique NameRepair = "unique"
	// NamesCheckUnique rejects empty or duplicated names.
	NamesCheckUnique NameRepair = "check_unique"
	// NamesUniversal makes every name a unique snake_case identifier.
	NamesUniversal NameRepair = "universal"
)

// RepairNames applies a repair strategy to a name list and returns the
// repaired copy.
func RepairNames(names []string, repair NameRepair) ([]string, error) {
	out := append([]string{}, names...)
	switch repair {
	case NamesMinimal, "":
		return out, nil
	case NamesCheckUnique:
		seen := map[string]bool{}
		for _, name := range out {
			if name == "" {
				return nil, errors.Wrap(ErrNonUniqueNames, "empty name")
			}
			if seen[name] {
				return nil, errors.Wrap(ErrNonUniqueNames, name)
			}
			seen[name] = true
		}
		return out, nil
	case NamesUnique:
		return uniquifyNames(out), nil
	case NamesUniversal:
		for i, name := range out {
			out[i] = universalName(name)
		}
		return uniquifyNames(out), nil
	}
	return nil, errors.Errorf("unknown name repair strategy %q", repair)
}

// uniquifyNames appends "...position" to names that are empty or occur
// more than once, the way tibble repairs them.
func uniquifyNames(names []string) []string {
	count := map[string]int{}
	for _, name := range names {
		count[name]++
	}
	out := make([]string, len(names))
	for i, name := range names {
		if name == "" || count[name] > 1 {
			out[i] = fmt.Sprintf("%s...%d", name, i+1)
		} else {
			out[i] = name
		}
	}
	return out
}

// universalName coerces a name to a snake_case identifier: letters,
// digits and underscores, never starting with a digit.
func universalName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	cleaned := inflect.Underscore(strings.TrimSpace(b.String()))
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	if cleaned == "" {
		return "_"
	}
	if unicode.IsDigit(rune(cleaned[0])) {
		cleaned = "_" + cleaned
	}
	return cleaned
}

// WithRepairedNames returns a copy of the frame with its column names
// repaired by the given strategy.
func WithRepairedNames(df *DataFrame, repair NameRepair) (*DataFrame, error) {
	repaired, err := RepairNames(df.Columns(), repair)
	if err != nil {
		return nil, err
	}
	out := df.copyFrame()
	for i, s := range out.cols {
		s.Name = repaired[i]
	}
	return out, nil
}
