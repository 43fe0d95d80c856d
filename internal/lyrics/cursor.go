package lyrics

// Cursor remembers the last active index and tries it, then its successor,
// before falling back to a binary search. Results always match ActiveIndex.
// A Cursor belongs to a single sampling loop.
type Cursor struct {
	index  int
	primed bool
}

func NewCursor() *Cursor {
	return &Cursor{index: -1}
}

// Seek returns the active index for positionSeconds and whether it differs
// from the previous call.
func (c *Cursor) Seek(lines []Line, positionSeconds float64) (int, bool) {
	var idx int

	switch {
	case c.primed && holds(lines, c.index, positionSeconds):
		idx = c.index
	case c.primed && holds(lines, c.index+1, positionSeconds):
		idx = c.index + 1
	default:
		idx = ActiveIndex(lines, positionSeconds)
	}

	changed := !c.primed || idx != c.index
	c.index = idx
	c.primed = true

	return idx, changed
}

func (c *Cursor) Index() int {
	if !c.primed {
		return -1
	}
	return c.index
}

// Reset forgets the hint, e.g. after a new timeline is loaded.
func (c *Cursor) Reset() {
	c.index = -1
	c.primed = false
}

// holds reports whether idx is the active index for positionSeconds.
func holds(lines []Line, idx int, positionSeconds float64) bool {
	if idx < -1 || idx >= len(lines) {
		return false
	}
	if idx >= 0 && !(lines[idx].TimeSeconds <= positionSeconds) {
		return false
	}
	if idx+1 < len(lines) && !(lines[idx+1].TimeSeconds > positionSeconds) {
		return false
	}
	return true
}

// Follow evaluates the timeline at positionSeconds using c as the scan hint.
// The second result reports whether the active line changed.
func (t *Timeline) Follow(c *Cursor, positionSeconds float64) (Evaluation, bool) {
	var lines []Line
	if t != nil {
		lines = t.lines
	}
	idx, changed := c.Seek(lines, positionSeconds)
	return evaluateAt(lines, idx, positionSeconds), changed
}
