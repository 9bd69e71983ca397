package framebuf

import (
	"github.com/keke1008/meshd/internal/poll"
	"github.com/keke1008/meshd/internal/serde"
)

// Reader is a thin view over an arena that implements serde.ByteReader.
// Multiple Readers can share one arena; each keeps its own cursor.
type Reader struct {
	arena  *arena
	cursor int
}

var _ serde.ByteReader = (*Reader)(nil)

// PollReadable gates on the arena's write frontier, not its declared
// length: a reader taken before the writer finishes sees Pending for any
// byte not yet committed, regardless of how many readers or clones exist.
func (r *Reader) PollReadable(n int) poll.Void {
	if r.cursor+n <= r.arena.written {
		return poll.ReadyVoid
	}
	return poll.PendingVoid
}

func (r *Reader) ReadUnchecked() byte {
	b := r.arena.data[r.cursor]
	r.cursor++
	return b
}

// IsAllRead reports whether the read cursor has consumed the full declared
// frame length.
func (r *Reader) IsAllRead() bool { return r.cursor >= r.arena.length }

// Remaining reports how many bytes are left to read from the current
// cursor position to the frame's declared length.
func (r *Reader) Remaining() int { return r.arena.length - r.cursor }

// Length reports the frame's total declared length, independent of cursor.
func (r *Reader) Length() int { return r.arena.length }

// Clone returns an independent reader over the same arena with its cursor
// reset to zero. Retains the arena, so the clone must be Released
// separately from r.
func (r *Reader) Clone() *Reader {
	r.arena.retain()
	return &Reader{arena: r.arena}
}

// Subreader returns an independent reader over the same arena, preserving
// the current read cursor rather than resetting it.
func (r *Reader) Subreader() *Reader {
	r.arena.retain()
	return &Reader{arena: r.arena, cursor: r.cursor}
}

// Release drops this reader's reference to the underlying arena.
func (r *Reader) Release() {
	r.arena.release()
}
