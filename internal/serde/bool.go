package serde

import "github.com/keke1008/meshd/internal/poll"

// BoolSerializer writes a bool as a single 0x01/0x00 byte.
type BoolSerializer struct{ inner *Uint8Serializer }

func NewBoolSerializer(v bool) *BoolSerializer {
	var b byte
	if v {
		b = 1
	}
	return &BoolSerializer{inner: NewUint8Serializer(b)}
}

func (s *BoolSerializer) Serialize(w ByteWriter) poll.Poll[Result] { return s.inner.Serialize(w) }
func (s *BoolSerializer) SerializedLength() int                    { return 1 }

// BoolDeserializer reads a single byte and maps any non-zero value to true.
type BoolDeserializer struct{ inner Uint8Deserializer }

func (d *BoolDeserializer) Deserialize(r ByteReader) poll.Poll[Result] {
	return d.inner.Deserialize(r)
}

func (d *BoolDeserializer) Result() bool { return d.inner.Result() != 0 }
