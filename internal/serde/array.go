package serde

import "github.com/keke1008/meshd/internal/poll"

// ArraySerializer writes exactly count elements with no length prefix; the
// total length is fixed by the caller's framing (e.g. a frame's remaining
// length) rather than encoded inline.
type ArraySerializer struct {
	elements []Serializer
	index    int
}

func NewArraySerializer[T any](values []T, makeElement func(T) Serializer) *ArraySerializer {
	elements := make([]Serializer, len(values))
	for i, v := range values {
		elements[i] = makeElement(v)
	}
	return &ArraySerializer{elements: elements}
}

func (s *ArraySerializer) Serialize(w ByteWriter) poll.Poll[Result] {
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

func (s *ArraySerializer) SerializedLength() int {
	total := 0
	for _, e := range s.elements {
		total += e.SerializedLength()
	}
	return total
}

// ArrayDeserializer reads a fixed count of elements, the count decided by
// the caller ahead of time rather than read from the stream.
type ArrayDeserializer[T any] struct {
	count       int
	makeElement func() Deserializer[T]
	current     Deserializer[T]
	results     []T
	n           int
	done        bool
	invalid     bool
}

func NewArrayDeserializer[T any](count int, makeElement func() Deserializer[T]) *ArrayDeserializer[T] {
	return &ArrayDeserializer[T]{count: count, makeElement: makeElement, results: make([]T, 0, count)}
}

func (d *ArrayDeserializer[T]) Deserialize(r ByteReader) poll.Poll[Result] {
	if d.done {
		if d.invalid {
			return poll.Ready(Invalid)
		}
		return poll.Ready(Ok)
	}
	for d.n < d.count {
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

func (d *ArrayDeserializer[T]) Result() []T { return d.results }
