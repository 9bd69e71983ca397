package serde

import "github.com/keke1008/meshd/internal/poll"

// LineDeserializer reads bytes up to and including a trailing "\r\n",
// returning the line with the terminator stripped. Used by the UHF modem's
// textual response parser, which frames every response as a single line.
// maxLen bounds the line body (excluding the terminator) to guard against a
// modem that never sends "\r\n".
type LineDeserializer struct {
	maxLen  int
	line    []byte
	lastCR  bool
	done    bool
	invalid bool
}

func NewLineDeserializer(maxLen int) *LineDeserializer {
	return &LineDeserializer{maxLen: maxLen}
}

func (d *LineDeserializer) Deserialize(r ByteReader) poll.Poll[Result] {
	if d.done {
		if d.invalid {
			return poll.Ready(Invalid)
		}
		return poll.Ready(Ok)
	}
	for {
		b := ReadByte(r)
		if b.IsPending() {
			return poll.Pending[Result]()
		}
		c := b.Unwrap()
		if d.lastCR && c == '\n' {
			d.done = true
			return poll.Ready(Ok)
		}
		if d.lastCR {
			// a bare '\r' not followed by '\n' is part of the line body
			d.line = append(d.line, '\r')
			d.lastCR = false
		}
		if c == '\r' {
			d.lastCR = true
			continue
		}
		if len(d.line) >= d.maxLen {
			d.done, d.invalid = true, true
			return poll.Ready(Invalid)
		}
		d.line = append(d.line, c)
	}
}

func (d *LineDeserializer) Result() []byte { return d.line }
