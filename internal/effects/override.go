package effects

// modeOverride temporarily replaces a boolean mode and puts the captured
// value back exactly once.
type modeOverride struct {
	target   *bool
	previous bool
	restored bool
}

func beginOverride(target *bool) *modeOverride {
	return &modeOverride{target: target, previous: *target}
}

func (o *modeOverride) set(v bool) {
	if o.restored {
		return
	}
	*o.target = v
}

func (o *modeOverride) restore() {
	if o == nil || o.restored {
		return
	}
	*o.target = o.previous
	o.restored = true
}
