package serde

import "github.com/keke1008/meshd/internal/poll"

// VecSerializer writes a 1-byte element count (<=255) followed by each
// element's serialization (spec §4.2 length-prefixed variable arrays).
type VecSerializer[T any] struct {
	count      *Uint8Serializer
	wroteCount bool
	elements   []Serializer
	index      int
}

func NewVecSerializer[T any](values []T, makeElement func(T) Serializer) *VecSerializer[T] {
	elements := make([]Serializer, len(values))
	for i, v := range values {
		elements[i] = makeElement(v)
	}
	return &VecSerializer[T]{count: NewUint8Serializer(uint8(len(values))), elements: elements}
}

func (s *VecSerializer[T]) Serialize(w ByteWriter) poll.Poll[Result] {
	if !s.wroteCount {
		r := s.count.Serialize(w)
		if r.IsPending() {
			return r
		}
		s.wroteCount = true
	}
	for s.index < len(s.elements) {
		r := s.elements[s.index].Serialize(w)
		if r.IsPending() {
			return r
		}
		if r.Unwrap() != Ok {
			return r
		}
		s.index++
	}
	return poll.Ready(Ok)
}

func (s *VecSerializer[T]) SerializedLength() int {
	total := 1
	for _, e := range s.elements {
		total += e.SerializedLength()
	}
	return total
}

// VecDeserializer reads the 1-byte element count then that many elements,
// rejecting counts above maxLen.
type VecDeserializer[T any] struct {
	maxLen      int
	count       Uint8Deserializer
	haveCount   bool
	n           int
	makeElement func() Deserializer[T]
	current     Deserializer[T]
	results     []T
	done        bool
	invalid     bool
}

func NewVecDeserializer[T any](maxLen int, makeElement func() Deserializer[T]) *VecDeserializer[T] {
	return &VecDeserializer[T]{maxLen: maxLen, makeElement: makeElement}
}

func (d *VecDeserializer[T]) Deserialize(r ByteReader) poll.Poll[Result] {
	if d.done {
		if d.invalid {
			return poll.Ready(Invalid)
		}
		return poll.Ready(Ok)
	}
	if !d.haveCount {
		res := d.count.Deserialize(r)
		if res.IsPending() {
			return res
		}
		d.haveCount = true
		if int(d.count.Result()) > d.maxLen {
			d.done, d.invalid = true, true
			return poll.Ready(Invalid)
		}
		d.results = make([]T, 0, d.count.Result())
	}
	for d.n < int(d.count.Result()) {
		if d.current == nil {
			d.current = d.makeElement()
		}
		res := d.current.Deserialize(r)
		if res.IsPending() {
			return res
		}
		if res.Unwrap() != Ok {
			d.done, d.invalid = true, true
			return res
		}
		d.results = append(d.results, d.current.Result())
		d.current = nil
		d.n++
	}
	d.done = true
	return poll.Ready(Ok)
}

func (d *VecDeserializer[T]) Result() []T { return d.results }
