package stcerr

type coordinate struct {
	line, column int
	msg          string
}

// Collector is the single sink for diagnostics of one compilation unit.
// It is append-only, keeps insertion order and drops a second diagnostic
// at an already reported (line, column).
type Collector struct {
	debug bool
	seen  map[coordinate]struct{}
	diags []*Diagnostic
}

// NewCollector creates a Collector. In debug mode diagnostics at synthetic
// positions are kept instead of being suppressed.
func NewCollector(debug bool) *Collector {
	return &Collector{
		debug: debug,
		seen:  make(map[coordinate]struct{}),
	}
}

// Add records d and reports whether it was kept.
func (c *Collector) Add(d *Diagnostic) bool {
	key := coordinate{line: d.Line, column: d.Column}
	if d.Synthetic() {
		if !c.debug {
			return false
		}
		// generated code shares one coordinate
		key.msg = d.Msg
	}
	if _, ok := c.seen[key]; ok {
		return false
	}
	c.seen[key] = struct{}{}
	c.diags = append(c.diags, d)
	return true
}

// Diagnostics returns the recorded diagnostics in report order.
func (c *Collector) Diagnostics() []*Diagnostic {
	out := make([]*Diagnostic, len(c.diags))
	copy(out, c.diags)
	return out
}

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int {
	return len(c.diags)
}

// Err returns nil when nothing was recorded, otherwise a *MultiError.
func (c *Collector) Err() error {
	if len(c.diags) == 0 {
		return nil
	}
	errs := make([]error, len(c.diags))
	for i, d := range c.diags {
		errs[i] = d
	}
	return &MultiError{Errors: errs}
}
