package wizard

// fieldClock is a logical clock that stamps every field write of a draft.
// A field whose stamp is unchanged since a snapshot has not been written since.
type fieldClock struct {
	stamps  map[Field]int64
	counter int64
}

func newFieldClock() *fieldClock {
	return &fieldClock{stamps: make(map[Field]int64)}
}

// tick advances the clock and stamps f with the new value.
func (c *fieldClock) tick(f Field) int64 {
	c.counter++
	c.stamps[f] = c.counter
	return c.counter
}

// stamp returns the last write of f, 0 when never written.
func (c *fieldClock) stamp(f Field) int64 {
	return c.stamps[f]
}

// snapshot copies the current stamps.
func (c *fieldClock) snapshot() Snapshot {
	s := Snapshot{stamps: make(map[Field]int64, len(c.stamps))}
	for f, v := range c.stamps {
		s.stamps[f] = v
	}
	return s
}

// Snapshot records field stamps at the moment an async request was issued.
type Snapshot struct {
	stamps map[Field]int64
}

// unchanged reports whether f has not been written after the snapshot.
func (s Snapshot) unchanged(c *fieldClock, f Field) bool {
	return s.stamps[f] == c.stamp(f)
}
