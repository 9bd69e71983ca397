package neighbor

import (
	"github.com/keke1008/meshd/internal/linkaddr"
	"github.com/keke1008/meshd/internal/poll"
	"github.com/keke1008/meshd/internal/serde"
)

// FrameType is the neighbor protocol's one-byte frame discriminant
// (grounded on original_source's net::routing::neighbor::FrameType).
type FrameType byte

const (
	FrameHello     FrameType = 0x01
	FrameHelloAck  FrameType = 0x02
	FrameGoodbye   FrameType = 0x03
)

// HelloFrame is the body shared by Hello and HelloAck (spec §4.7:
// "{sender_id, sender_cluster_id, node_cost, link_cost}" — this module
// drops sender_cluster_id per the richer/simpler-version open question,
// since no cluster concept survives into the in-scope neighbor table).
type HelloFrame struct {
	SenderID NodeID
	NodeCost Cost
	LinkCost Cost
}

// GoodbyeFrame is the teardown notice: just the sender's identity.
type GoodbyeFrame struct {
	SenderID NodeID
}

// ParsedFrame is the sum of the three wire frames this protocol carries.
type ParsedFrame struct {
	Kind    FrameType
	Hello   HelloFrame
	Goodbye GoodbyeFrame
}

// HelloSerializer streams a Hello or HelloAck frame: {type, sender_id,
// node_cost, link_cost}.
type HelloSerializer struct {
	kind  *serde.Uint8Serializer
	addr  *linkaddr.AddressSerializer
	node  *serde.Uint16LESerializer
	link  *serde.Uint16LESerializer
	stage int
}

func NewHelloSerializer(ack bool, f HelloFrame) *HelloSerializer {
	kind := byte(FrameHello)
	if ack {
		kind = byte(FrameHelloAck)
	}
	return &HelloSerializer{
		kind: serde.NewUint8Serializer(kind),
		addr: linkaddr.NewAddressSerializer(f.SenderID),
		node: serde.NewUint16LESerializer(uint16(f.NodeCost)),
		link: serde.NewUint16LESerializer(uint16(f.LinkCost)),
	}
}

func (s *HelloSerializer) Serialize(w serde.ByteWriter) poll.Poll[serde.Result] {
	steps := []serde.Serializer{s.kind, s.addr, s.node, s.link}
	for s.stage < len(steps) {
		r := steps[s.stage].Serialize(w)
		if r.IsPending() {
			return r
		}
		s.stage++
	}
	return poll.Ready(serde.Ok)
}

func (s *HelloSerializer) SerializedLength() int {
	return s.kind.SerializedLength() + s.addr.SerializedLength() + s.node.SerializedLength() + s.link.SerializedLength()
}

// GoodbyeSerializer streams a Goodbye frame: {type, sender_id}.
type GoodbyeSerializer struct {
	kind  *serde.Uint8Serializer
	addr  *linkaddr.AddressSerializer
	stage int
}

func NewGoodbyeSerializer(f GoodbyeFrame) *GoodbyeSerializer {
	return &GoodbyeSerializer{
		kind: serde.NewUint8Serializer(byte(FrameGoodbye)),
		addr: linkaddr.NewAddressSerializer(f.SenderID),
	}
}

func (s *GoodbyeSerializer) Serialize(w serde.ByteWriter) poll.Poll[serde.Result] {
	steps := []serde.Serializer{s.kind, s.addr}
	for s.stage < len(steps) {
		r := steps[s.stage].Serialize(w)
		if r.IsPending() {
			return r
		}
		s.stage++
	}
	return poll.Ready(serde.Ok)
}

func (s *GoodbyeSerializer) SerializedLength() int {
	return s.kind.SerializedLength() + s.addr.SerializedLength()
}

// FrameDeserializer reads the type tag, then the body matching it.
type FrameDeserializer struct {
	typ      serde.Uint8Deserializer
	haveType bool
	kind     FrameType

	addr linkaddr.AddressDeserializer
	node serde.Uint16LEDeserializer
	link serde.Uint16LEDeserializer

	stage   int
	done    bool
	invalid bool
}

func (d *FrameDeserializer) Deserialize(r serde.ByteReader) poll.Poll[serde.Result] {
	if d.done {
		if d.invalid {
			return poll.Ready(serde.Invalid)
		}
		return poll.Ready(serde.Ok)
	}
	if !d.haveType {
		if res := d.typ.Deserialize(r); res.IsPending() {
			return res
		}
		d.kind = FrameType(d.typ.Result())
		switch d.kind {
		case FrameHello, FrameHelloAck, FrameGoodbye:
			d.haveType = true
		default:
			d.done, d.invalid = true, true
			return poll.Ready(serde.Invalid)
		}
	}

	if d.kind == FrameGoodbye {
		if d.stage == 0 {
			if res := d.addr.Deserialize(r); res.IsPending() {
				return res
			}
			d.stage++
		}
		d.done = true
		return poll.Ready(serde.Ok)
	}

	// Hello / HelloAck: sender_id, node_cost, link_cost in sequence.
	if d.stage == 0 {
		if res := d.addr.Deserialize(r); res.IsPending() {
			return res
		}
		d.stage++
	}
	if d.stage == 1 {
		if res := d.node.Deserialize(r); res.IsPending() {
			return res
		}
		d.stage++
	}
	if d.stage == 2 {
		if res := d.link.Deserialize(r); res.IsPending() {
			return res
		}
		d.stage++
	}
	d.done = true
	return poll.Ready(serde.Ok)
}

func (d *FrameDeserializer) Result() ParsedFrame {
	if d.kind == FrameGoodbye {
		return ParsedFrame{Kind: d.kind, Goodbye: GoodbyeFrame{SenderID: d.addr.Result()}}
	}
	return ParsedFrame{Kind: d.kind, Hello: HelloFrame{
		SenderID: d.addr.Result(),
		NodeCost: Cost(d.node.Result()),
		LinkCost: Cost(d.link.Result()),
	}}
}
