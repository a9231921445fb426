package dataverb

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Frame is the shape a verb dispatches on: a plain *DataFrame, a
// *GroupedFrame carrying an ordered grouping-key list, or a *RowwiseFrame
// where every row is its own group. Verbs type-switch over the variant to
// pick plain, per-group or per-row semantics.
type Frame interface {
	// Data returns the underlying plain frame.
	Data() *DataFrame
}

// GroupedFrame tags a frame as grouped by an ordered list of key columns.
// The keys are always valid columns of the underlying frame; verbs that
// mutate grouping columns recompute the envelope rather than carry it over.
type GroupedFrame struct {
	df   *DataFrame
	keys []string

	// levels, when set, fixes the key combinations of the envelope
	// instead of deriving them from the rows. Filter's preserve option
	// uses this to retain combinations that no longer have rows.
	levels []group
}

// GroupedBy wraps the frame in a grouping envelope. All keys must be
// existing columns.
func GroupedBy(df *DataFrame, keys ...string) (*GroupedFrame, error) {
	for _, k := range keys {
		if !df.HasColumn(k) {
			return nil, errors.Wrap(ErrColumnNotFound, k)
		}
	}
	return &GroupedFrame{df: df, keys: append([]string{}, keys...)}, nil
}

// Data returns the underlying plain frame.
func (g *GroupedFrame) Data() *DataFrame { return g.df }

// Keys returns the ordered grouping-key column names.
func (g *GroupedFrame) Keys() []string { return append([]string{}, g.keys...) }

// groups returns the envelope's groups. Normally these derive from the
// rows; with preserved levels, every level appears even when it has no
// rows, followed by any combinations the levels did not anticipate.
func (g *GroupedFrame) groups() ([]group, error) {
	computed, err := groupRows(g.df, g.keys)
	if err != nil {
		return nil, err
	}
	if g.levels == nil {
		return computed, nil
	}
	index := map[string]int{}
	for i, grp := range computed {
		index[groupID(grp.key)] = i
	}
	var out []group
	seen := map[string]bool{}
	for _, lvl := range g.levels {
		id := groupID(lvl.key)
		seen[id] = true
		if i, ok := index[id]; ok {
			out = append(out, computed[i])
		} else {
			out = append(out, group{key: lvl.key})
		}
	}
	for _, grp := range computed {
		if !seen[groupID(grp.key)] {
			out = append(out, grp)
		}
	}
	return out, nil
}

// String renders the underlying frame with a grouping footer.
func (g *GroupedFrame) String() string {
	return renderFrame(g.df, fmt.Sprintf("groups: %s", strings.Join(g.keys, ", ")))
}

// RowwiseFrame tags a frame as row-wise: every row is its own group.
// Identity columns, when present, survive Summarise.
type RowwiseFrame struct {
	df       *DataFrame
	identity []string
}

// RowwiseOf wraps the frame in a row-wise envelope with optional identity
// columns.
func RowwiseOf(df *DataFrame, identity ...string) (*RowwiseFrame, error) {
	for _, c := range identity {
		if !df.HasColumn(c) {
			return nil, errors.Wrap(ErrColumnNotFound, c)
		}
	}
	return &RowwiseFrame{df: df, identity: append([]string{}, identity...)}, nil
}

// Data returns the underlying plain frame.
func (r *RowwiseFrame) Data() *DataFrame { return r.df }

// Identity returns the declared identity columns.
func (r *RowwiseFrame) Identity() []string { return append([]string{}, r.identity...) }

// String renders the underlying frame with a row-wise footer.
func (r *RowwiseFrame) String() string {
	return renderFrame(r.df, "rowwise")
}

// group is one group of rows sharing a key combination. Rows are original
// row positions in first-seen order.
type group struct {
	key  []any
	rows []int
}

// groupRows partitions the frame's rows by the key columns, groups ordered
// by first appearance, rows within a group in original order.
func groupRows(df *DataFrame, keys []string) ([]group, error) {
	cols := make([]*Series, len(keys))
	for i, k := range keys {
		s, ok := df.Column(k)
		if !ok {
			return nil, errors.Wrap(ErrColumnNotFound, k)
		}
		cols[i] = s
	}

	var groups []group
	index := map[string]int{}
	for r := 0; r < df.NRow(); r++ {
		key := make([]any, len(cols))
		for i, s := range cols {
			key[i] = s.Values[r]
		}
		id := groupID(key)
		gi, ok := index[id]
		if !ok {
			gi = len(groups)
			index[id] = gi
			groups = append(groups, group{key: key})
		}
		groups[gi].rows = append(groups[gi].rows, r)
	}
	return groups, nil
}

// groupID builds the map key for one key combination.
func groupID(key []any) string {
	parts := make([]string, len(key))
	for i, v := range key {
		parts[i] = fmt.Sprintf("%v\x00", v)
	}
	return strings.Join(parts, "")
}

// reassemble stitches per-group row selections back together in original
// row order, deterministically.
func reassemble(selected [][]int) []int {
	var all []int
	for _, rows := range selected {
		all = append(all, rows...)
	}
	// insertion sort, group outputs are mostly ordered already
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j] < all[j-1]; j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}
	return all
}

// Nesting is a named bundle of columns or values used to build group keys.
// Values without an inferable name get a synthesized temporary name.
// len(Columns) == len(Names) always holds.
type Nesting struct {
	Columns []any
	Names   []string
}

// NewNesting builds a nesting from plain column names, series and named
// values (As pairs).
func NewNesting(columns ...any) *Nesting {
	n := &Nesting{}
	for i, col := range columns {
		switch v := col.(type) {
		case string:
			n.Columns = append(n.Columns, v)
			n.Names = append(n.Names, v)
		case *Series:
			n.Columns = append(n.Columns, v)
			n.Names = append(n.Names, v.Name)
		case NamedArg:
			n.Columns = append(n.Columns, v.Value)
			n.Names = append(n.Names, v.Name)
		default:
			name := fmt.Sprintf("_tmp%p_%d", n, i)
			logger.Warn("temporary name used for a nesting column; use As to name it",
				"name", name)
			n.Columns = append(n.Columns, v)
			n.Names = append(n.Names, name)
		}
	}
	return n
}

// Len is the number of columns in the nesting.
func (n *Nesting) Len() int { return len(n.Columns) }
