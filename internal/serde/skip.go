package serde

import "github.com/keke1008/meshd/internal/poll"

// SkipDeserializer discards exactly n bytes from the stream, used for
// reserved or padding fields whose content carries no meaning.
type SkipDeserializer struct {
	remaining int
}

func NewSkipDeserializer(n int) *SkipDeserializer {
	return &SkipDeserializer{remaining: n}
}

func (d *SkipDeserializer) Deserialize(r ByteReader) poll.Poll[Result] {
	for d.remaining > 0 {
		b := ReadByte(r)
		if b.IsPending() {
			return poll.Pending[Result]()
		}
		d.remaining--
	}
	return poll.Ready(Ok)
}

func (d *SkipDeserializer) Result() struct{} { return struct{}{} }
