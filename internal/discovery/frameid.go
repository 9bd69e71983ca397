package discovery

import "github.com/keke1008/meshd/internal/timeutil"

// frameIDCache is a bounded, drop-oldest ring of recently-seen frame IDs,
// used to suppress re-processing a flood this node has already handled
// (spec §4.8, Testable Property 7: frame-ID idempotence).
type frameIDCache struct {
	ids   [FrameIDCacheSize]FrameID
	count int
	next  int
}

func (c *frameIDCache) contains(id FrameID) bool {
	for i := 0; i < c.count; i++ {
		if c.ids[i] == id {
			return true
		}
	}
	return false
}

func (c *frameIDCache) insert(id FrameID) {
	c.ids[c.next] = id
	c.next = (c.next + 1) % FrameIDCacheSize
	if c.count < FrameIDCacheSize {
		c.count++
	}
}

// insertAndCheckContains records id and reports whether it was already
// present, matching the original's combined check-then-insert call.
func (c *frameIDCache) insertAndCheckContains(id FrameID) bool {
	seen := c.contains(id)
	c.insert(id)
	return seen
}

// generate picks a fresh frame ID not currently in the cache, retrying a
// bounded number of times against collisions before giving up and
// returning whatever the last draw was (a collision only costs one
// redundant drop downstream, never a correctness failure).
func (c *frameIDCache) generate(rand timeutil.Rand) FrameID {
	const maxAttempts = 4
	var id FrameID
	for attempt := 0; attempt < maxAttempts; attempt++ {
		id = FrameID(rand.GenUint16())
		if !c.contains(id) {
			break
		}
	}
	return id
}
