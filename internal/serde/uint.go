package serde

import "github.com/keke1008/meshd/internal/poll"

// Uint8Deserializer reads one byte as-is.
type Uint8Deserializer struct {
	result byte
	done   bool
}

func (d *Uint8Deserializer) Deserialize(r ByteReader) poll.Poll[Result] {
	if d.done {
		return poll.Ready(Ok)
	}
	b := ReadByte(r)
	if b.IsPending() {
		return poll.Pending[Result]()
	}
	d.result = b.Unwrap()
	d.done = true
	return poll.Ready(Ok)
}

func (d *Uint8Deserializer) Result() byte { return d.result }

type Uint8Serializer struct {
	value byte
	done  bool
}

func NewUint8Serializer(v byte) *Uint8Serializer { return &Uint8Serializer{value: v} }

func (s *Uint8Serializer) Serialize(w ByteWriter) poll.Poll[Result] {
	if s.done {
		return poll.Ready(Ok)
	}
	r := WriteByte(w, s.value)
	if r.IsPending() {
		return r
	}
	s.done = true
	return r
}

func (s *Uint8Serializer) SerializedLength() int { return 1 }

// Uint16LEDeserializer reads a little-endian uint16 across resumable calls.
type Uint16LEDeserializer struct {
	buf [2]byte
	n   int
}

func (d *Uint16LEDeserializer) Deserialize(r ByteReader) poll.Poll[Result] {
	for d.n < 2 {
		b := ReadByte(r)
		if b.IsPending() {
			return poll.Pending[Result]()
		}
		d.buf[d.n] = b.Unwrap()
		d.n++
	}
	return poll.Ready(Ok)
}

func (d *Uint16LEDeserializer) Result() uint16 {
	return uint16(d.buf[0]) | uint16(d.buf[1])<<8
}

type Uint16LESerializer struct {
	buf [2]byte
	n   int
}

func NewUint16LESerializer(v uint16) *Uint16LESerializer {
	return &Uint16LESerializer{buf: [2]byte{byte(v), byte(v >> 8)}}
}

func (s *Uint16LESerializer) Serialize(w ByteWriter) poll.Poll[Result] {
	for s.n < 2 {
		r := WriteByte(w, s.buf[s.n])
		if r.IsPending() {
			return r
		}
		s.n++
	}
	return poll.Ready(Ok)
}

func (s *Uint16LESerializer) SerializedLength() int { return 2 }

// Uint32LEDeserializer reads a little-endian uint32 across resumable calls.
type Uint32LEDeserializer struct {
	buf [4]byte
	n   int
}

func (d *Uint32LEDeserializer) Deserialize(r ByteReader) poll.Poll[Result] {
	for d.n < 4 {
		b := ReadByte(r)
		if b.IsPending() {
			return poll.Pending[Result]()
		}
		d.buf[d.n] = b.Unwrap()
		d.n++
	}
	return poll.Ready(Ok)
}

func (d *Uint32LEDeserializer) Result() uint32 {
	return uint32(d.buf[0]) | uint32(d.buf[1])<<8 | uint32(d.buf[2])<<16 | uint32(d.buf[3])<<24
}

type Uint32LESerializer struct {
	buf [4]byte
	n   int
}

func NewUint32LESerializer(v uint32) *Uint32LESerializer {
	return &Uint32LESerializer{buf: [4]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}}
}

func (s *Uint32LESerializer) Serialize(w ByteWriter) poll.Poll[Result] {
	for s.n < 4 {
		r := WriteByte(w, s.buf[s.n])
		if r.IsPending() {
			return r
		}
		s.n++
	}
	return poll.Ready(Ok)
}

func (s *Uint32LESerializer) SerializedLength() int { return 4 }
