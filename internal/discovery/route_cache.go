package discovery

// routeCacheEntry maps a discovered target to the neighbor that forwards
// toward it.
type routeCacheEntry struct {
	target  NodeID
	gateway NodeID
}

// routeCache is a bounded, drop-oldest (LRU-by-insertion-order) map of
// target -> gateway, populated on discovery completion and by observing
// frames pass through in transit (spec §4.8's route cache).
type routeCache struct {
	entries [MaxRouteCacheEntries]routeCacheEntry
	count   int
	next    int
}

func (c *routeCache) indexOf(target NodeID) (int, bool) {
	for i := 0; i < c.count; i++ {
		if c.entries[i].target.Equal(target) {
			return i, true
		}
	}
	return -1, false
}

// Get returns the cached gateway for target, if any.
func (c *routeCache) Get(target NodeID) (NodeID, bool) {
	i, ok := c.indexOf(target)
	if !ok {
		return NodeID{}, false
	}
	return c.entries[i].gateway, true
}

// Add records target -> gateway, updating an existing entry in place
// rather than duplicating it.
func (c *routeCache) Add(target, gateway NodeID) {
	if i, ok := c.indexOf(target); ok {
		c.entries[i].gateway = gateway
		return
	}
	c.entries[c.next] = routeCacheEntry{target: target, gateway: gateway}
	c.next = (c.next + 1) % MaxRouteCacheEntries
	if c.count < MaxRouteCacheEntries {
		c.count++
	}
}

// Remove drops every entry routed through gateway. The engine does not
// call it: removing a neighbor leaves the cached routes through it in place.
func (c *routeCache) Remove(gateway NodeID) {
	write := 0
	for read := 0; read < c.count; read++ {
		if c.entries[read].gateway.Equal(gateway) {
			continue
		}
		c.entries[write] = c.entries[read]
		write++
	}
	c.count = write
	c.next = write % MaxRouteCacheEntries
}
