package discovery

import (
	"github.com/keke1008/meshd/internal/linkaddr"
	"github.com/keke1008/meshd/internal/neighbor"
	"github.com/keke1008/meshd/internal/poll"
	"github.com/keke1008/meshd/internal/serde"
)

// NodeID and Cost are shared with the neighbor table: a discovered
// gateway is always one of the sender's known neighbors, and path costs
// accumulate the same unit the neighbor service reports (grounded on
// original_source's shared net::node::NodeId/Cost namespace).
type NodeID = neighbor.NodeID
type Cost = neighbor.Cost

// FrameID is the 16-bit random tag that lets the frame-ID cache suppress
// re-processing a flood it has already seen.
type FrameID uint16

type FrameType byte

const (
	FrameRequest FrameType = 0x01
	FrameReply   FrameType = 0x02
)

// Frame is the wire shape of a discovery Request or Reply (spec §4.8):
// {type, frame_id, total_cost, source_id, target_id, sender_id}.
type Frame struct {
	Type      FrameType
	FrameID   FrameID
	TotalCost Cost
	SourceID  NodeID
	TargetID  NodeID
	SenderID  NodeID
}

// requestFrame builds the initial broadcast Request for a fresh discovery.
func requestFrame(id FrameID, self NodeID, selfCost Cost, target NodeID) Frame {
	return Frame{
		Type: FrameRequest, FrameID: id, TotalCost: selfCost,
		SourceID: self, TargetID: target, SenderID: self,
	}
}

// replyFrame builds the unicast Reply sent back toward a Request's source
// once it reaches the node it was looking for.
func replyFrame(id FrameID, self NodeID, requestSource NodeID) Frame {
	return Frame{
		Type: FrameReply, FrameID: id, TotalCost: 0,
		SourceID: self, TargetID: requestSource, SenderID: self,
	}
}

// repeat rebuilds f for one more hop: same identity and target, cost
// increased by this hop's contribution, sender replaced with this node.
func (f Frame) repeat(self NodeID, additionalCost Cost) Frame {
	next := f
	next.TotalCost += additionalCost
	next.SenderID = self
	return next
}

type FrameSerializer struct {
	kind   *serde.Uint8Serializer
	id     *serde.Uint16LESerializer
	cost   *serde.Uint16LESerializer
	source *linkaddr.AddressSerializer
	target *linkaddr.AddressSerializer
	sender *linkaddr.AddressSerializer
	stage  int
}

func NewFrameSerializer(f Frame) *FrameSerializer {
	return &FrameSerializer{
		kind:   serde.NewUint8Serializer(byte(f.Type)),
		id:     serde.NewUint16LESerializer(uint16(f.FrameID)),
		cost:   serde.NewUint16LESerializer(uint16(f.TotalCost)),
		source: linkaddr.NewAddressSerializer(f.SourceID),
		target: linkaddr.NewAddressSerializer(f.TargetID),
		sender: linkaddr.NewAddressSerializer(f.SenderID),
	}
}

func (s *FrameSerializer) Serialize(w serde.ByteWriter) poll.Poll[serde.Result] {
	steps := []serde.Serializer{s.kind, s.id, s.cost, s.source, s.target, s.sender}
	for s.stage < len(steps) {
		r := steps[s.stage].Serialize(w)
		if r.IsPending() {
			return r
		}
		s.stage++
	}
	return poll.Ready(serde.Ok)
}

func (s *FrameSerializer) SerializedLength() int {
	return s.kind.SerializedLength() + s.id.SerializedLength() + s.cost.SerializedLength() +
		s.source.SerializedLength() + s.target.SerializedLength() + s.sender.SerializedLength()
}

type FrameDeserializer struct {
	kind   serde.Uint8Deserializer
	id     serde.Uint16LEDeserializer
	cost   serde.Uint16LEDeserializer
	source linkaddr.AddressDeserializer
	target linkaddr.AddressDeserializer
	sender linkaddr.AddressDeserializer

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

	if d.stage == 0 {
		if res := d.kind.Deserialize(r); res.IsPending() {
			return res
		}
		switch FrameType(d.kind.Result()) {
		case FrameRequest, FrameReply:
		default:
			d.done, d.invalid = true, true
			return poll.Ready(serde.Invalid)
		}
		d.stage++
	}

	if d.stage == 1 {
		if res := d.id.Deserialize(r); res.IsPending() {
			return res
		}
		d.stage++
	}
	if d.stage == 2 {
		if res := d.cost.Deserialize(r); res.IsPending() {
			return res
		}
		d.stage++
	}
	if d.stage == 3 {
		if res := d.source.Deserialize(r); res.IsPending() {
			return res
		}
		d.stage++
	}
	if d.stage == 4 {
		if res := d.target.Deserialize(r); res.IsPending() {
			return res
		}
		d.stage++
	}
	if d.stage == 5 {
		if res := d.sender.Deserialize(r); res.IsPending() {
			return res
		}
		d.stage++
	}

	d.done = true
	return poll.Ready(serde.Ok)
}

func (d *FrameDeserializer) Result() Frame {
	return Frame{
		Type:      FrameType(d.kind.Result()),
		FrameID:   FrameID(d.id.Result()),
		TotalCost: Cost(d.cost.Result()),
		SourceID:  d.source.Result(),
		TargetID:  d.target.Result(),
		SenderID:  d.sender.Result(),
	}
}
