package framebuf

import "github.com/keke1008/meshd/internal/metrics"

type sizeClass int

const (
	classShort sizeClass = iota
	classLarge
)

func (c sizeClass) String() string {
	if c == classLarge {
		return "large"
	}
	return "short"
}

// arena is a single preallocated slab backing a frame buffer. It is never
// allocated or freed by the Go runtime after pool construction; Allocate and
// Release only toggle its slot's membership in a slab's free list.
//
// written is the write frontier: the number of bytes the arena's Writer has
// committed so far. It lives here rather than on Writer itself so that every
// Reader cloned from the same Handle — including one obtained before the
// Writer finishes — observes the same frontier and can never read past it.
type arena struct {
	pool     *Pool
	class    sizeClass
	slot     int
	data     []byte
	length   int
	written  int
	refcount int32
}

func (a *arena) retain() {
	a.refcount++
}

func (a *arena) release() {
	a.refcount--
	if a.refcount == 0 {
		metrics.FramebufInUse.WithLabelValues(a.class.String()).Dec()
		a.pool.free(a)
	}
}
