package discovery

import "testing"

func TestRouteCacheAddAndGet(t *testing.T) {
	var c routeCache
	c.Add(nodeID(1), nodeID(2))
	gw, ok := c.Get(nodeID(1))
	if !ok || !gw.Equal(nodeID(2)) {
		t.Fatalf("got %+v, %v", gw, ok)
	}
	if _, ok := c.Get(nodeID(9)); ok {
		t.Fatalf("expected miss for unknown target")
	}
}

func TestRouteCacheAddUpdatesExisting(t *testing.T) {
	var c routeCache
	c.Add(nodeID(1), nodeID(2))
	c.Add(nodeID(1), nodeID(3))
	gw, _ := c.Get(nodeID(1))
	if !gw.Equal(nodeID(3)) {
		t.Fatalf("expected update in place, got %+v", gw)
	}
	if c.count != 1 {
		t.Fatalf("expected no duplicate entry, count=%d", c.count)
	}
}

func TestRouteCacheEvictsOldestWhenFull(t *testing.T) {
	var c routeCache
	for i := 0; i < MaxRouteCacheEntries; i++ {
		c.Add(nodeID(byte(i)), nodeID(100))
	}
	c.Add(nodeID(200), nodeID(100))
	if _, ok := c.Get(nodeID(0)); ok {
		t.Fatalf("expected oldest entry evicted")
	}
	if _, ok := c.Get(nodeID(200)); !ok {
		t.Fatalf("expected newest entry present")
	}
}

func TestRouteCacheRemoveByGateway(t *testing.T) {
	var c routeCache
	c.Add(nodeID(1), nodeID(9))
	c.Add(nodeID(2), nodeID(9))
	c.Add(nodeID(3), nodeID(8))
	c.Remove(nodeID(9))
	if _, ok := c.Get(nodeID(1)); ok {
		t.Fatalf("expected route via removed gateway gone")
	}
	if _, ok := c.Get(nodeID(2)); ok {
		t.Fatalf("expected route via removed gateway gone")
	}
	if gw, ok := c.Get(nodeID(3)); !ok || !gw.Equal(nodeID(8)) {
		t.Fatalf("expected unrelated route kept, got %+v %v", gw, ok)
	}
}
