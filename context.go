package dataverb

// ContextKind tells an expression how it should resolve: to column names
// only (SELECT), to concrete values (EVAL), or not at all yet (PENDING, in
// which case the verb body resolves the expression explicitly).
type ContextKind int

const (
	// UNSET means no context was declared for the verb.
	UNSET ContextKind = iota

	// SELECT resolves expressions to column identifiers only.
	SELECT

	// EVAL resolves expressions to concrete column values.
	EVAL

	// PENDING defers resolution; the verb body evaluates explicitly.
	PENDING

	// MIXED lets each argument pick its own context.
	MIXED
)

func (k ContextKind) String() string {
	switch k {
	case SELECT:
		return "select"
	case EVAL:
		return "eval"
	case PENDING:
		return "pending"
	case MIXED:
		return "mixed"
	}
	return "unset"
}

// Context carries the evaluation context through expression resolution.
// An EVAL context can additionally track which source columns were actually
// read; Mutate uses this for its Keep policy.
type Context struct {
	Kind ContextKind

	// usedRefs records the column names read during evaluation, in
	// first-seen order. Only populated when track is true.
	usedRefs []string
	track    bool
	seen     map[string]bool
}

// NewContext returns a context with the given kind.
func NewContext(kind ContextKind) *Context {
	return &Context{Kind: kind}
}

// newTrackingContext returns an EVAL context that records column reads.
func newTrackingContext() *Context {
	return &Context{Kind: EVAL, track: true, seen: map[string]bool{}}
}

func (c *Context) recordRef(name string) {
	if !c.track || c.seen[name] {
		return
	}
	c.seen[name] = true
	c.usedRefs = append(c.usedRefs, name)
}

// UsedRefs returns the column names read through this context, in
// first-seen order.
func (c *Context) UsedRefs() []string { return c.usedRefs }
