package serde

import (
	"testing"

	"github.com/keke1008/meshd/internal/poll"
)

// fakeStream is a minimal in-memory ByteReader/ByteWriter used to drive
// serializers and deserializers to completion in tests, including a limit
// that simulates a stream that isn't readable/writable yet.
type fakeStream struct {
	buf   []byte
	limit int
}

func (s *fakeStream) PollWritable(n int) poll.Void {
	if len(s.buf)+n <= s.limit {
		return poll.ReadyVoid
	}
	return poll.PendingVoid
}

func (s *fakeStream) WriteUnchecked(b byte) {
	s.buf = append(s.buf, b)
}

func (s *fakeStream) PollReadable(n int) poll.Void {
	if n <= s.limit {
		return poll.ReadyVoid
	}
	return poll.PendingVoid
}

func (s *fakeStream) ReadUnchecked() byte {
	b := s.buf[0]
	s.buf = s.buf[1:]
	s.limit--
	return b
}

func TestUint16LERoundTrip(t *testing.T) {
	s := NewUint16LESerializer(0x1234)
	stream := &fakeStream{limit: 2}
	if r := s.Serialize(stream); r.Unwrap() != Ok {
		t.Fatalf("serialize: got %v", r.Unwrap())
	}

	d := &Uint16LEDeserializer{}
	if r := d.Deserialize(stream); r.Unwrap() != Ok {
		t.Fatalf("deserialize: got %v", r.Unwrap())
	}
	if d.Result() != 0x1234 {
		t.Fatalf("got %#x, want 0x1234", d.Result())
	}
}

func TestHexUint32RoundTrip(t *testing.T) {
	s := NewHexUint32Serializer(0x1A2B3C4D)
	stream := &fakeStream{limit: 8}
	s.Serialize(stream)
	if string(stream.buf) != "1A2B3C4D" {
		t.Fatalf("got %q, want 1A2B3C4D", stream.buf)
	}

	d := &HexUint32Deserializer{}
	stream.limit = len(stream.buf)
	if r := d.Deserialize(stream); r.Unwrap() != Ok {
		t.Fatalf("deserialize: got %v", r.Unwrap())
	}
	if d.Result() != 0x1A2B3C4D {
		t.Fatalf("got %#x, want 0x1A2B3C4D", d.Result())
	}
}

func TestResumesAfterPending(t *testing.T) {
	s := NewUint16LESerializer(0xABCD)
	stream := &fakeStream{limit: 0}
	if !s.Serialize(stream).IsPending() {
		t.Fatalf("expected pending with no room")
	}
	stream.limit = 2
	if r := s.Serialize(stream); r.Unwrap() != Ok {
		t.Fatalf("expected ready once room available, got %v", r)
	}
}

func TestReadyStaysReadyWithoutTouchingStream(t *testing.T) {
	s := NewUint8Serializer(0x42)
	stream := &fakeStream{limit: 1}
	s.Serialize(stream)
	before := len(stream.buf)
	if r := s.Serialize(stream); r.Unwrap() != Ok {
		t.Fatalf("expected still ready")
	}
	if len(stream.buf) != before {
		t.Fatalf("serializer touched the stream again after completion")
	}
}

func TestVecRejectsOverLength(t *testing.T) {
	d := NewVecDeserializer(2, func() Deserializer[uint8] { return &Uint8Deserializer{} })
	stream := &fakeStream{buf: []byte{3, 1, 2, 3}, limit: 4}
	r := d.Deserialize(stream)
	if r.Unwrap() != Invalid {
		t.Fatalf("expected Invalid for over-length count, got %v", r.Unwrap())
	}
}

func TestVecRoundTrip(t *testing.T) {
	values := []uint8{1, 2, 3}
	s := NewVecSerializer(values, func(v uint8) Serializer { return NewUint8Serializer(v) })
	stream := &fakeStream{limit: 4}
	s.Serialize(stream)

	d := NewVecDeserializer(255, func() Deserializer[uint8] { return &Uint8Deserializer{} })
	stream.limit = len(stream.buf)
	d.Deserialize(stream)
	got := d.Result()
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestLineDeserializerStripsCRLF(t *testing.T) {
	d := NewLineDeserializer(32)
	stream := &fakeStream{buf: []byte("hello\r\n"), limit: 7}
	r := d.Deserialize(stream)
	if r.Unwrap() != Ok {
		t.Fatalf("got %v", r.Unwrap())
	}
	if string(d.Result()) != "hello" {
		t.Fatalf("got %q, want hello", d.Result())
	}
}

func TestOptionalRoundTrip(t *testing.T) {
	v := uint8(9)
	s := NewOptionalSerializer(&v, func(x uint8) Serializer { return NewUint8Serializer(x) })
	stream := &fakeStream{limit: 2}
	s.Serialize(stream)

	d := NewOptionalDeserializer(func() Deserializer[uint8] { return &Uint8Deserializer{} })
	stream.limit = len(stream.buf)
	d.Deserialize(stream)
	if d.Result() == nil || *d.Result() != 9 {
		t.Fatalf("unexpected result: %v", d.Result())
	}

	s2 := NewOptionalSerializer[uint8](nil, func(x uint8) Serializer { return NewUint8Serializer(x) })
	stream2 := &fakeStream{limit: 1}
	s2.Serialize(stream2)
	d2 := NewOptionalDeserializer(func() Deserializer[uint8] { return &Uint8Deserializer{} })
	stream2.limit = len(stream2.buf)
	d2.Deserialize(stream2)
	if d2.Result() != nil {
		t.Fatalf("expected nil result for absent optional")
	}
}
