package framebuf

import (
	"github.com/keke1008/meshd/internal/halt"
	"github.com/keke1008/meshd/internal/metrics"
	"github.com/keke1008/meshd/internal/poll"
)

// ShortLen and LargeLen are the pool's two size classes. LargeLen matches
// the link layer's MTU, so any frame fits in one class or the other with no
// fragmentation.
const (
	ShortLen = 16
	LargeLen = 254
)

type slab struct {
	class  sizeClass
	size   int
	arenas []*arena
	free   []bool
}

func newSlab(class sizeClass, size, count int) *slab {
	s := &slab{class: class, size: size, arenas: make([]*arena, count), free: make([]bool, count)}
	for i := range s.arenas {
		s.arenas[i] = &arena{class: class, slot: i, data: make([]byte, size)}
		s.free[i] = true
	}
	return s
}

func (s *slab) allocate(pool *Pool, length int) *arena {
	for i, isFree := range s.free {
		if !isFree {
			continue
		}
		s.free[i] = false
		a := s.arenas[i]
		a.pool = pool
		a.length = length
		a.written = 0
		a.refcount = 1
		return a
	}
	return nil
}

func (s *slab) release(a *arena) {
	s.free[a.slot] = true
}

// Pool is the fixed-capacity backing store for every frame buffer in the
// daemon: two slabs, short and large, each preallocated at construction.
// There is no allocation on the Allocate path beyond picking a free slot.
type Pool struct {
	short *slab
	large *slab
}

func NewPool(shortCount, largeCount int) *Pool {
	return &Pool{
		short: newSlab(classShort, ShortLen, shortCount),
		large: newSlab(classLarge, LargeLen, largeCount),
	}
}

// Allocate reserves a buffer able to hold length bytes, picking the short
// slab when possible and the large slab otherwise. Pending means the chosen
// slab is momentarily exhausted; the caller is expected to retry on a later
// poll once some other handle is released.
func (p *Pool) Allocate(length int) poll.Poll[*Handle] {
	halt.Assert(length >= 0 && length <= LargeLen, "frame length %d out of range", length)

	var a *arena
	if length <= ShortLen {
		a = p.short.allocate(p, length)
	} else {
		a = p.large.allocate(p, length)
	}
	if a == nil {
		metrics.FramebufExhausted.Inc()
		return poll.Pending[*Handle]()
	}
	metrics.FramebufInUse.WithLabelValues(a.class.String()).Inc()
	return poll.Ready(&Handle{arena: a})
}

// AllocateMaxLength always reserves from the large slab, sized to the MTU.
func (p *Pool) AllocateMaxLength() poll.Poll[*Handle] {
	return p.Allocate(LargeLen)
}

func (p *Pool) free(a *arena) {
	switch a.class {
	case classShort:
		p.short.release(a)
	case classLarge:
		p.large.release(a)
	}
}
