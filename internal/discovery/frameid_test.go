package discovery

import "testing"

func TestFrameIDCacheDedup(t *testing.T) {
	var c frameIDCache
	if c.insertAndCheckContains(1) {
		t.Fatalf("first sighting must not be reported as seen")
	}
	if !c.insertAndCheckContains(1) {
		t.Fatalf("repeat sighting must be reported as seen")
	}
}

func TestFrameIDCacheEvictsOldest(t *testing.T) {
	var c frameIDCache
	for i := 0; i < FrameIDCacheSize; i++ {
		c.insert(FrameID(i))
	}
	if !c.contains(0) {
		t.Fatalf("expected id 0 still cached before eviction")
	}
	c.insert(FrameID(100))
	if c.contains(0) {
		t.Fatalf("expected oldest id evicted once cache is full")
	}
	if !c.contains(100) {
		t.Fatalf("expected newly inserted id present")
	}
}

type sequenceRand struct {
	values []uint16
	i      int
}

func (r *sequenceRand) GenUint8(lo, hi uint8) uint8 { return lo }
func (r *sequenceRand) GenUint16() uint16 {
	v := r.values[r.i]
	if r.i < len(r.values)-1 {
		r.i++
	}
	return v
}

func TestFrameIDCacheGenerateAvoidsCollision(t *testing.T) {
	var c frameIDCache
	c.insert(5)
	r := &sequenceRand{values: []uint16{5, 5, 9}}
	if got := c.generate(r); got != 9 {
		t.Fatalf("got %d, want 9 (first non-colliding draw)", got)
	}
}
