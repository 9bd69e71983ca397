package framebuf

import (
	"github.com/keke1008/meshd/internal/poll"
	"github.com/keke1008/meshd/internal/serde"
)

// Writer is a thin, non-owning view over a Handle's arena that implements
// serde.ByteWriter. The write cursor is stored on the arena itself
// (arena.written), not here, so that any Reader cloned from the same
// Handle agrees on the current write frontier.
type Writer struct {
	arena *arena
}

var _ serde.ByteWriter = (*Writer)(nil)

func (w *Writer) PollWritable(n int) poll.Void {
	if w.arena.written+n <= w.arena.length {
		return poll.ReadyVoid
	}
	return poll.PendingVoid
}

func (w *Writer) WriteUnchecked(b byte) {
	w.arena.data[w.arena.written] = b
	w.arena.written++
}

// IsAllWritten reports whether the write cursor has reached the declared
// frame length.
func (w *Writer) IsAllWritten() bool { return w.arena.written >= w.arena.length }

// ShrinkFrameLengthToFit tightens the arena's declared length down to the
// current write cursor. One-shot and irreversible: callers use it once a
// variable-length frame's true size is known, after which PollWritable
// never again reports room past the new length.
func (w *Writer) ShrinkFrameLengthToFit() {
	w.arena.length = w.arena.written
}
