package serde

import (
	"strconv"

	"github.com/keke1008/meshd/internal/poll"
)

// DecimalUint16Serializer renders a uint16 as decimal ASCII digits, no
// leading zeros (used by textual line-based protocols in this codebase
// wherever a hex encoding isn't called for).
type DecimalUint16Serializer struct {
	chars []byte
	n     int
}

func NewDecimalUint16Serializer(v uint16) *DecimalUint16Serializer {
	return &DecimalUint16Serializer{chars: []byte(strconv.FormatUint(uint64(v), 10))}
}

func (s *DecimalUint16Serializer) Serialize(w ByteWriter) poll.Poll[Result] {
	for s.n < len(s.chars) {
		r := WriteByte(w, s.chars[s.n])
		if r.IsPending() {
			return r
		}
		s.n++
	}
	return poll.Ready(Ok)
}

func (s *DecimalUint16Serializer) SerializedLength() int { return len(s.chars) }

// DecimalUint16Deserializer accumulates ASCII decimal digits up to a
// maximum character count. A non-digit byte before maxChars digits is
// consumed and reported as Invalid.
type DecimalUint16Deserializer struct {
	maxChars int
	digits   []byte
	done     bool
	invalid  bool
}

func NewDecimalUint16Deserializer(maxChars int) *DecimalUint16Deserializer {
	return &DecimalUint16Deserializer{maxChars: maxChars}
}

func (d *DecimalUint16Deserializer) Deserialize(r ByteReader) poll.Poll[Result] {
	if d.done {
		if d.invalid {
			return poll.Ready(Invalid)
		}
		return poll.Ready(Ok)
	}
	for len(d.digits) < d.maxChars {
		if r.PollReadable(1).IsPending() {
			return poll.Pending[Result]()
		}
		// Peek by reading; non-digit bytes are not valid in this fixed-
		// length field, so treat them as Invalid rather than trying to
		// push back (the caller sizes maxChars to the exact field width).
		b := r.ReadUnchecked()
		if b < '0' || b > '9' {
			d.done = true
			d.invalid = true
			return poll.Ready(Invalid)
		}
		d.digits = append(d.digits, b)
	}
	d.done = true
	return poll.Ready(Ok)
}

func (d *DecimalUint16Deserializer) Result() uint16 {
	v, _ := strconv.ParseUint(string(d.digits), 10, 16)
	return uint16(v)
}
