// Package linksock implements the frame broker and per-protocol sockets
// that multiplex every media driver's RX/TX traffic to the services above
// them (spec §4.4): one fixed-capacity queue per protocol in each
// direction, no goroutines, no channels.
package linksock

import (
	"github.com/keke1008/meshd/internal/linkaddr"
	"github.com/keke1008/meshd/internal/netcore"
)

// defaultQueueCapacity bounds every per-protocol ring; a slow consumer
// backpressures the producer via SendErrorBackpressure rather than growing
// unbounded memory.
const defaultQueueCapacity = 8

// NeighborTable is the minimal view into the neighbor table a broadcast
// send needs: the set of addresses currently worth fanning a frame out to.
// linksock depends only on this interface, not on the neighbor package
// itself, so the two packages don't import each other.
type NeighborTable interface {
	BroadcastAddresses() []linkaddr.Address
}

type protocolQueues struct {
	rx *ring
	tx *ring
}

// Broker owns every protocol's RX/TX queues and the media drivers'
// connection to them. Media drivers push received frames in and drain
// outgoing frames out; Sockets are the service-facing handle.
type Broker struct {
	queues    map[netcore.ProtocolNumber]*protocolQueues
	neighbors NeighborTable
}

// NewBroker creates a Broker. neighbors is consulted by broadcast sends;
// it may be nil until the neighbor service is wired up, in which case
// broadcast sends report SendErrorNoMedium.
func NewBroker(neighbors NeighborTable) *Broker {
	return &Broker{queues: make(map[netcore.ProtocolNumber]*protocolQueues), neighbors: neighbors}
}

func (b *Broker) queuesFor(p netcore.ProtocolNumber) *protocolQueues {
	q, ok := b.queues[p]
	if !ok {
		q = &protocolQueues{rx: newRing(defaultQueueCapacity), tx: newRing(defaultQueueCapacity)}
		b.queues[p] = q
	}
	return q
}

// Socket returns the service-facing handle for a protocol.
func (b *Broker) Socket(p netcore.ProtocolNumber) *Socket {
	return &Socket{broker: b, protocol: p, queues: b.queuesFor(p)}
}

// DeliverFrame is called by a media driver when it has fully received a
// frame; it enqueues onto the protocol's RX queue. Returns false if the
// queue is full, meaning the caller must hold onto the frame and retry.
func (b *Broker) DeliverFrame(f netcore.Frame) bool {
	return b.queuesFor(f.Protocol).rx.push(f)
}

// NextOutgoing is called by a media driver to drain one frame queued for
// transmission on a protocol, in FIFO order.
func (b *Broker) NextOutgoing(p netcore.ProtocolNumber) (netcore.Frame, bool) {
	return b.queuesFor(p).tx.pop()
}

// NextOutgoingForMedium scans every protocol's TX queue for the first frame
// whose peer address belongs to the given medium, and pops it. A media
// driver uses this to drain traffic addressed to it regardless of which
// protocol originated the frame. Queue order across protocols is not
// preserved by this scan; within a single protocol's queue, FIFO order is.
func (b *Broker) NextOutgoingForMedium(medium linkaddr.Type) (netcore.Frame, bool) {
	for _, q := range b.queues {
		if !q.tx.empty() && q.tx.items[q.tx.head].Peer.Type == medium {
			return q.tx.pop()
		}
	}
	return netcore.Frame{}, false
}
