package serde

import (
	"github.com/keke1008/meshd/internal/poll"
)

const hexDigits = "0123456789ABCDEF"

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// HexUint8Serializer renders a byte as two uppercase ASCII hex digits
// (Testable Property 2).
type HexUint8Serializer struct {
	chars [2]byte
	n     int
}

func NewHexUint8Serializer(v uint8) *HexUint8Serializer {
	return &HexUint8Serializer{chars: [2]byte{hexDigits[v>>4], hexDigits[v&0xF]}}
}

func (s *HexUint8Serializer) Serialize(w ByteWriter) poll.Poll[Result] {
	for s.n < len(s.chars) {
		r := WriteByte(w, s.chars[s.n])
		if r.IsPending() {
			return r
		}
		s.n++
	}
	return poll.Ready(Ok)
}

func (s *HexUint8Serializer) SerializedLength() int { return 2 }

// HexUint8Deserializer parses two uppercase ASCII hex digits into a byte.
type HexUint8Deserializer struct {
	chars   [2]byte
	n       int
	invalid bool
}

func (d *HexUint8Deserializer) Deserialize(r ByteReader) poll.Poll[Result] {
	if d.invalid {
		return poll.Ready(Invalid)
	}
	for d.n < len(d.chars) {
		b := ReadByte(r)
		if b.IsPending() {
			return poll.Pending[Result]()
		}
		d.chars[d.n] = b.Unwrap()
		d.n++
	}
	if _, ok := hexNibble(d.chars[0]); !ok {
		d.invalid = true
		return poll.Ready(Invalid)
	}
	if _, ok := hexNibble(d.chars[1]); !ok {
		d.invalid = true
		return poll.Ready(Invalid)
	}
	return poll.Ready(Ok)
}

func (d *HexUint8Deserializer) Result() uint8 {
	hi, _ := hexNibble(d.chars[0])
	lo, _ := hexNibble(d.chars[1])
	return hi<<4 | lo
}

// HexUint16Serializer renders a uint16 as 4 uppercase hex ASCII characters,
// big-endian (most significant byte first), matching the UHF modem's
// textual command protocol.
type HexUint16Serializer struct {
	chars [4]byte
	n     int
}

func NewHexUint16Serializer(v uint16) *HexUint16Serializer {
	s := &HexUint16Serializer{}
	hi, lo := byte(v>>8), byte(v)
	s.chars = [4]byte{hexDigits[hi>>4], hexDigits[hi&0xF], hexDigits[lo>>4], hexDigits[lo&0xF]}
	return s
}

func (s *HexUint16Serializer) Serialize(w ByteWriter) poll.Poll[Result] {
	for s.n < len(s.chars) {
		r := WriteByte(w, s.chars[s.n])
		if r.IsPending() {
			return r
		}
		s.n++
	}
	return poll.Ready(Ok)
}

func (s *HexUint16Serializer) SerializedLength() int { return 4 }

// HexUint32Serializer renders a uint32 as 8 uppercase hex ASCII characters,
// big-endian. Testable Property 2: 0x1A2B3C4D -> "1A2B3C4D".
type HexUint32Serializer struct {
	chars [8]byte
	n     int
}

func NewHexUint32Serializer(v uint32) *HexUint32Serializer {
	s := &HexUint32Serializer{}
	for i := 0; i < 4; i++ {
		b := byte(v >> (8 * (3 - i)))
		s.chars[2*i] = hexDigits[b>>4]
		s.chars[2*i+1] = hexDigits[b&0xF]
	}
	return s
}

func (s *HexUint32Serializer) Serialize(w ByteWriter) poll.Poll[Result] {
	for s.n < len(s.chars) {
		r := WriteByte(w, s.chars[s.n])
		if r.IsPending() {
			return r
		}
		s.n++
	}
	return poll.Ready(Ok)
}

func (s *HexUint32Serializer) SerializedLength() int { return 8 }

// HexUint32Deserializer parses 8 uppercase hex ASCII characters into a
// uint32, big-endian.
type HexUint32Deserializer struct {
	chars   [8]byte
	n       int
	invalid bool
}

func (d *HexUint32Deserializer) Deserialize(r ByteReader) poll.Poll[Result] {
	if d.invalid {
		return poll.Ready(Invalid)
	}
	for d.n < len(d.chars) {
		b := ReadByte(r)
		if b.IsPending() {
			return poll.Pending[Result]()
		}
		d.chars[d.n] = b.Unwrap()
		d.n++
	}
	for _, c := range d.chars {
		if _, ok := hexNibble(c); !ok {
			d.invalid = true
			return poll.Ready(Invalid)
		}
	}
	return poll.Ready(Ok)
}

func (d *HexUint32Deserializer) Result() uint32 {
	var v uint32
	for i := 0; i < 4; i++ {
		hi, _ := hexNibble(d.chars[2*i])
		lo, _ := hexNibble(d.chars[2*i+1])
		v = v<<8 | uint32(hi<<4|lo)
	}
	return v
}
