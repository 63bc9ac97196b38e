package midi

import "strconv"

// idCounter is a monotonic per-sequence event id generator. Ids are
// encoded compactly in base36 (matching the spec's "compact encoding of
// a monotonic counter scoped to its owning sequence").
type idCounter struct {
	next uint64
}

func (c *idCounter) draw() string {
	c.next++
	return strconv.FormatUint(c.next, 36)
}

// peek returns what the next draw would produce, without consuming it.
func (c *idCounter) peek() uint64 { return c.next + 1 }

// advanceTo bumps the counter so the next draw is strictly greater than n,
// used when repairing id collisions on deserialize.
func (c *idCounter) advanceTo(n uint64) {
	if n >= c.next {
		c.next = n
	}
}
