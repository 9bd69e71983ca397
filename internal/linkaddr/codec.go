package linkaddr

import (
	"github.com/keke1008/meshd/internal/poll"
	"github.com/keke1008/meshd/internal/serde"
)

// AddressSerializer writes an Address as {type:u8, len:u8, body[len]byte}
// (the wire rendition of NodeId::write_to_builder in the source: a type tag
// followed by the address's own bytes).
type AddressSerializer struct {
	addr    Address
	typ     *serde.Uint8Serializer
	ln      *serde.Uint8Serializer
	wroteTL bool
	sent    uint8
}

func NewAddressSerializer(addr Address) *AddressSerializer {
	return &AddressSerializer{
		addr: addr,
		typ:  serde.NewUint8Serializer(byte(addr.Type)),
		ln:   serde.NewUint8Serializer(addr.Len),
	}
}

func (s *AddressSerializer) Serialize(w serde.ByteWriter) poll.Poll[serde.Result] {
	if !s.wroteTL {
		if r := s.typ.Serialize(w); r.IsPending() {
			return r
		}
		if r := s.ln.Serialize(w); r.IsPending() {
			return r
		}
		s.wroteTL = true
	}
	for s.sent < s.addr.Len {
		r := serde.WriteByte(w, s.addr.Body[s.sent])
		if r.IsPending() {
			return r
		}
		s.sent++
	}
	return poll.Ready(serde.Ok)
}

func (s *AddressSerializer) SerializedLength() int { return 2 + int(s.addr.Len) }

// AddressDeserializer is the resumable counterpart: reads the type and
// length tags, then that many body bytes. A length above MaxAddressLen is
// Invalid.
type AddressDeserializer struct {
	typ     serde.Uint8Deserializer
	ln      serde.Uint8Deserializer
	haveTL  bool
	body    [MaxAddressLen]byte
	read    uint8
	done    bool
	invalid bool
}

func (d *AddressDeserializer) Deserialize(r serde.ByteReader) poll.Poll[serde.Result] {
	if d.done {
		if d.invalid {
			return poll.Ready(serde.Invalid)
		}
		return poll.Ready(serde.Ok)
	}
	if !d.haveTL {
		if res := d.typ.Deserialize(r); res.IsPending() {
			return res
		}
		if res := d.ln.Deserialize(r); res.IsPending() {
			return res
		}
		d.haveTL = true
		if d.ln.Result() > MaxAddressLen {
			d.done, d.invalid = true, true
			return poll.Ready(serde.Invalid)
		}
	}
	for d.read < d.ln.Result() {
		b := serde.ReadByte(r)
		if b.IsPending() {
			return poll.Pending[serde.Result]()
		}
		d.body[d.read] = b.Unwrap()
		d.read++
	}
	d.done = true
	return poll.Ready(serde.Ok)
}

func (d *AddressDeserializer) Result() Address {
	return Address{Type: Type(d.typ.Result()), Body: d.body, Len: d.ln.Result()}
}
