package serde

import "github.com/keke1008/meshd/internal/poll"

// OptionalSerializer writes a presence byte followed by the payload if
// present (spec §4.2).
type OptionalSerializer[T any] struct {
	present     bool
	presenceW   *BoolSerializer
	payload     Serializer
	wrotePresen bool
}

func NewOptionalSerializer[T any](value *T, makePayload func(T) Serializer) *OptionalSerializer[T] {
	s := &OptionalSerializer[T]{present: value != nil}
	s.presenceW = NewBoolSerializer(value != nil)
	if value != nil {
		s.payload = makePayload(*value)
	}
	return s
}

func (s *OptionalSerializer[T]) Serialize(w ByteWriter) poll.Poll[Result] {
	if !s.wrotePresen {
		r := s.presenceW.Serialize(w)
		if r.IsPending() {
			return r
		}
		s.wrotePresen = true
	}
	if !s.present {
		return poll.Ready(Ok)
	}
	return s.payload.Serialize(w)
}

func (s *OptionalSerializer[T]) SerializedLength() int {
	if s.present {
		return 1 + s.payload.SerializedLength()
	}
	return 1
}

// OptionalDeserializer reads a presence byte then, if set, the payload.
type OptionalDeserializer[T any] struct {
	presence    BoolDeserializer
	makePayload func() Deserializer[T]
	payload     Deserializer[T]
	done        bool
	result      Result
	present     bool
}

func NewOptionalDeserializer[T any](makePayload func() Deserializer[T]) *OptionalDeserializer[T] {
	return &OptionalDeserializer[T]{makePayload: makePayload}
}

func (d *OptionalDeserializer[T]) Deserialize(r ByteReader) poll.Poll[Result] {
	if d.done {
		return poll.Ready(d.result)
	}
	if d.payload == nil {
		res := d.presence.Deserialize(r)
		if res.IsPending() {
			return res
		}
		if res.Unwrap() != Ok {
			d.done = true
			d.result = res.Unwrap()
			return res
		}
		d.present = d.presence.Result()
		if !d.present {
			d.done = true
			d.result = Ok
			return poll.Ready(Ok)
		}
		d.payload = d.makePayload()
	}
	res := d.payload.Deserialize(r)
	if res.IsPending() {
		return res
	}
	d.done = true
	d.result = res.Unwrap()
	return res
}

func (d *OptionalDeserializer[T]) Result() *T {
	if !d.present {
		return nil
	}
	v := d.payload.Result()
	return &v
}
