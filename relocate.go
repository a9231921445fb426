package dataverb

import (
	"github.com/pkg/errors"
)

var relocateVerb = Register("relocate", SELECT,
	OnPlain(relocateFn),
	OnGrouped(relocateFn),
	OnRowwise(relocateFn),
)

// Relocate changes column positions. The selected columns move to the
// left-hand side, or to the position given by a single Before or After
// directive; giving both is an error. Grouping is not affected.
func Relocate(args ...any) Step { return relocateVerb.Bind(args...) }

func relocateFn(data Frame, args []any) (Frame, error) {
	var selectors []any
	var before, after any
	var hasBefore, hasAfter bool
	for _, a := range args {
		switch v := a.(type) {
		case BeforeSel:
			before = v.Sel
			hasBefore = true
		case AfterSel:
			after = v.Sel
			hasAfter = true
		default:
			selectors = append(selectors, a)
		}
	}

	df := data.Data()
	moved, err := ResolveSelectors(df.Columns(), selectors...)
	if err != nil {
		return nil, err
	}
	rearranged, err := relocateColumns(df.Columns(), uniqueStrings(moved), before, after, hasBefore, hasAfter)
	if err != nil {
		return nil, err
	}
	out, err := df.selectColumns(rearranged)
	if err != nil {
		return nil, err
	}
	return rewrap(data, out)
}

// relocateColumns computes the new column order with the moved columns
// placed before/after the selected destination, or at the front when no
// destination is given.
func relocateColumns(allColumns, moved []string, before, after any, hasBefore, hasAfter bool) ([]string, error) {
	if hasBefore && hasAfter {
		return nil, ErrConflictingDirectives
	}
	rest := listDiff(allColumns, moved)

	if !hasBefore && !hasAfter {
		return append(append([]string{}, moved...), rest...), nil
	}

	var anchor []string
	var err error
	if hasBefore {
		anchor, err = ResolveSelectors(rest, before)
	} else {
		anchor, err = ResolveSelectors(rest, after)
	}
	if err != nil {
		return nil, err
	}
	if len(anchor) == 0 {
		return nil, errors.Wrap(ErrColumnNotFound, "empty destination")
	}

	cut := len(rest)
	if hasBefore {
		for _, a := range anchor {
			for i, c := range rest {
				if c == a && i < cut {
					cut = i
				}
			}
		}
	} else {
		cut = 0
		for _, a := range anchor {
			for i, c := range rest {
				if c == a && i+1 > cut {
					cut = i + 1
				}
			}
		}
	}

	out := append([]string{}, rest[:cut]...)
	out = append(out, moved...)
	out = append(out, rest[cut:]...)
	return out, nil
}

// rewrap restores the input's grouping envelope around a transformed frame.
func rewrap(data Frame, out *DataFrame) (Frame, error) {
	switch v := data.(type) {
	case *GroupedFrame:
		return GroupedBy(out, v.keys...)
	case *RowwiseFrame:
		return RowwiseOf(out, v.identity...)
	}
	return out, nil
}
