package interaction

// CaptureStore records, for every pair currently inside an attractive
// potential's capture range, which shell (well index) they occupy. Absence
// from the map means "not captured" (outside the outer well edge, or a
// purely repulsive pair). Keyed by the unordered pair so lookups don't care
// about argument order, matching the original's symmetric capture map.
//
// Grounded on taskstore.taskstore's map-of-state-by-key bookkeeping style.
type CaptureStore struct {
	shells map[[2]int]int
}

// NewCaptureStore returns an empty store.
func NewCaptureStore() *CaptureStore {
	return &CaptureStore{shells: make(map[[2]int]int)}
}

// Shell returns the well index a pair currently occupies and whether it is
// captured at all.
func (c *CaptureStore) Shell(i, j int) (int, bool) {
	shell, ok := c.shells[normalizedPair(i, j)]
	return shell, ok
}

// Capture records that the pair has entered shell.
func (c *CaptureStore) Capture(i, j, shell int) {
	c.shells[normalizedPair(i, j)] = shell
}

// Release removes the pair from the store entirely (it has escaped the
// outermost shell).
func (c *CaptureStore) Release(i, j int) {
	delete(c.shells, normalizedPair(i, j))
}

// ForgetParticle drops every captured pair involving id — used when a
// particle is deleted or put to sleep, so stale capture state can't leak
// into a future event for a reused ID.
func (c *CaptureStore) ForgetParticle(id int) {
	for pair := range c.shells {
		if pair[0] == id || pair[1] == id {
			delete(c.shells, pair)
		}
	}
}

// Len reports how many pairs are currently captured, useful for
// determinism/replay diffing and diagnostics.
func (c *CaptureStore) Len() int {
	return len(c.shells)
}
