// Package serde implements the stateful, resumable byte-level
// (de)serializers the spec calls for in §4.2: each type is a small owned
// state machine that keeps its partial progress in its own fields and
// resumes exactly where it left off on every call, over a byte stream that
// may only ever offer Pending instead of blocking.
package serde

import "github.com/keke1008/meshd/internal/poll"

// Result is the terminal outcome of a deserialize call once it stops being
// Pending.
type Result uint8

const (
	// Ok means the value was parsed successfully.
	Ok Result = iota
	// Invalid means the bytes seen so far cannot form a valid value
	// (unknown enum discriminant, bad hex digit, missing CRLF, ...).
	Invalid
	// NotEnoughLength means the underlying frame's declared length was
	// exhausted before the value could be completed.
	NotEnoughLength
)

// ByteReader is the non-blocking byte-input capability every deserializer
// is written against (spec §4.2/§6).
type ByteReader interface {
	// PollReadable reports whether n more bytes are available to read
	// without blocking.
	PollReadable(n int) poll.Void
	// ReadUnchecked consumes and returns one byte; callers must have
	// already confirmed availability via PollReadable.
	ReadUnchecked() byte
}

// ByteWriter is the non-blocking byte-output capability every serializer
// is written against.
type ByteWriter interface {
	// PollWritable reports whether n more bytes can be written without
	// exceeding the destination's budget.
	PollWritable(n int) poll.Void
	// WriteUnchecked appends one byte; callers must have already
	// confirmed budget via PollWritable.
	WriteUnchecked(b byte)
}

// Deserializer is the common shape of every stateful deserializer in this
// package: Deserialize resumes progress against r until it can report a
// terminal Result, and once terminal it keeps reporting the same Result
// without touching r again.
type Deserializer[T any] interface {
	Deserialize(r ByteReader) poll.Poll[Result]
	Result() T
}

// Serializer is the common shape of every stateful serializer.
type Serializer interface {
	Serialize(w ByteWriter) poll.Poll[Result]
	SerializedLength() int
}

// ReadByte is a small helper used throughout the package: it reports
// Pending until one byte is available, then returns it.
func ReadByte(r ByteReader) poll.Poll[byte] {
	if r.PollReadable(1).IsPending() {
		return poll.Pending[byte]()
	}
	return poll.Ready(r.ReadUnchecked())
}

// WriteByte is the serializer-side counterpart of ReadByte.
func WriteByte(w ByteWriter, b byte) poll.Poll[Result] {
	if w.PollWritable(1).IsPending() {
		return poll.Pending[Result]()
	}
	w.WriteUnchecked(b)
	return poll.Ready(Ok)
}
