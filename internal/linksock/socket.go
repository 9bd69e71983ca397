package linksock

import (
	"github.com/keke1008/meshd/internal/framebuf"
	"github.com/keke1008/meshd/internal/linkaddr"
	"github.com/keke1008/meshd/internal/netcore"
	"github.com/keke1008/meshd/internal/poll"
)

// SendError classifies why PollSendFrame could not enqueue a frame.
type SendError uint8

const (
	SendErrorNone SendError = iota
	// SendErrorNoMedium means no attached medium can carry this address.
	SendErrorNoMedium
	// SendErrorBackpressure means the protocol's TX queue is full.
	SendErrorBackpressure
)

// Socket is a protocol-scoped handle over a Broker: services receive and
// send frames through it without knowing which media drivers back it.
type Socket struct {
	broker   *Broker
	protocol netcore.ProtocolNumber
	queues   *protocolQueues

	broadcast *broadcastCursor
}

// PollReceiveFrame returns the next frame queued for this protocol.
func (s *Socket) PollReceiveFrame() poll.Poll[netcore.Frame] {
	f, ok := s.queues.rx.pop()
	if !ok {
		return poll.Pending[netcore.Frame]()
	}
	return poll.Ready(f)
}

// PollSendFrame enqueues a unicast frame for transmission. Ready(SendErrorNone)
// means the frame was accepted onto the TX queue; any other SendError means
// it was rejected and the caller retains ownership of reader.
func (s *Socket) PollSendFrame(addr linkaddr.Address, reader *framebuf.Reader) (poll.Void, SendError) {
	frame := netcore.Frame{Protocol: s.protocol, Peer: addr, Reader: reader}
	if !s.queues.tx.push(frame) {
		return poll.ReadyVoid, SendErrorBackpressure
	}
	return poll.ReadyVoid, SendErrorNone
}

// broadcastCursor drives a resumable fan-out send across every known
// neighbor address, surviving Pending results from individual sends.
type broadcastCursor struct {
	addresses []linkaddr.Address
	index     int
}

// PollSendBroadcastFrame drains the neighbor table's current address set
// and enqueues one copy of the frame per neighbor, resuming across ticks
// wherever backpressure paused it (spec §4.4). Each queued frame carries
// its own Reader clone; reader itself is released once every copy is queued.
func (s *Socket) PollSendBroadcastFrame(reader *framebuf.Reader) (poll.Void, SendError) {
	if s.broker.neighbors == nil {
		return poll.ReadyVoid, SendErrorNoMedium
	}
	if s.broadcast == nil {
		s.broadcast = &broadcastCursor{addresses: s.broker.neighbors.BroadcastAddresses()}
	}
	for s.broadcast.index < len(s.broadcast.addresses) {
		addr := s.broadcast.addresses[s.broadcast.index]
		clone := reader.Clone()
		frame := netcore.Frame{Protocol: s.protocol, Peer: addr, Reader: clone}
		if !s.queues.tx.push(frame) {
			clone.Release()
			return poll.PendingVoid, SendErrorNone
		}
		s.broadcast.index++
	}
	s.broadcast = nil
	reader.Release()
	return poll.ReadyVoid, SendErrorNone
}
