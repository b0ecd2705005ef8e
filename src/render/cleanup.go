package render

// cleanup is a stack of release functions for objects created during a
// multi-step construction. run walks it newest first and empties it, so a
// second run is a no-op.
type cleanup []func()

func (c *cleanup) push(release func()) {
	*c = append(*c, release)
}

func (c *cleanup) run() {
	for i := len(*c) - 1; i >= 0; i-- {
		(*c)[i]()
	}
	*c = nil
}

// disarm drops every recorded release without calling it. Ownership has
// moved elsewhere.
func (c *cleanup) disarm() {
	*c = nil
}
