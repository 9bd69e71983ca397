package neighbor

import (
	"testing"

	"github.com/keke1008/meshd/internal/framebuf"
	"github.com/keke1008/meshd/internal/linkaddr"
	"github.com/keke1008/meshd/internal/linksock"
	"github.com/keke1008/meshd/internal/netcore"
	"github.com/keke1008/meshd/internal/serde"
	"github.com/keke1008/meshd/internal/timeutil"
)

// TestServiceHelloHandshake covers the discovery handshake: an incoming
// Hello from a fresh peer is recorded, a NeighborUpdated notification is
// raised, and a HelloAck is queued in reply (spec §4.7's S3 scenario).
func TestServiceHelloHandshake(t *testing.T) {
	pool := framebuf.NewPool(4, 4)
	broker := linksock.NewBroker(nil)
	sock := broker.Socket(netcore.ProtocolRoutingNeighbor)

	self := linkaddr.UHFAddress(0x01)
	peer := linkaddr.UHFAddress(0x02)
	now := timeutil.Instant(0)
	svc := NewService(now, self, Cost(10), false, NewTable(), sock, pool)

	h := serializeToHandle(t, pool, NewHelloSerializer(false, HelloFrame{SenderID: peer, NodeCost: 5, LinkCost: 3}))
	if !broker.DeliverFrame(netcore.Frame{Protocol: netcore.ProtocolRoutingNeighbor, Peer: peer, Reader: h.Reader()}) {
		t.Fatalf("expected DeliverFrame to accept")
	}

	svc.Execute(now)

	entry, ok := svc.Table().Get(peer)
	if !ok {
		t.Fatalf("expected peer to be recorded as a neighbor")
	}
	if entry.LinkCost != 3 {
		t.Fatalf("got link cost %d, want 3", entry.LinkCost)
	}

	n, ok := svc.Poll()
	if !ok || n.Kind != NeighborUpdated || !n.ID.Equal(peer) {
		t.Fatalf("expected a NeighborUpdated notification, got %+v (ok=%v)", n, ok)
	}

	reply, ok := broker.NextOutgoing(netcore.ProtocolRoutingNeighbor)
	if !ok {
		t.Fatalf("expected a queued HelloAck reply")
	}
	if !reply.Peer.Equal(peer) {
		t.Fatalf("got reply addressed to %v, want %v", reply.Peer, peer)
	}
	var d FrameDeserializer
	if r := d.Deserialize(reply.Reader); r.Unwrap() != serde.Ok {
		t.Fatalf("deserialize reply: got %v", r.Unwrap())
	}
	reply.Reader.Release()
	parsed := d.Result()
	if parsed.Kind != FrameHelloAck || !parsed.Hello.SenderID.Equal(self) {
		t.Fatalf("got %+v, want a HelloAck from self", parsed)
	}
}

// TestServiceGoodbyeRemovesNeighbor covers the teardown path: a Goodbye
// from a known neighbor removes it and raises a NeighborRemoved
// notification.
func TestServiceGoodbyeRemovesNeighbor(t *testing.T) {
	pool := framebuf.NewPool(4, 4)
	broker := linksock.NewBroker(nil)
	sock := broker.Socket(netcore.ProtocolRoutingNeighbor)

	self := linkaddr.UHFAddress(0x01)
	peer := linkaddr.UHFAddress(0x02)
	now := timeutil.Instant(0)
	svc := NewService(now, self, Cost(10), false, NewTable(), sock, pool)
	svc.Table().AddOrUpdate(now, peer, Cost(4), peer)

	h := serializeToHandle(t, pool, NewGoodbyeSerializer(GoodbyeFrame{SenderID: peer}))
	broker.DeliverFrame(netcore.Frame{Protocol: netcore.ProtocolRoutingNeighbor, Peer: peer, Reader: h.Reader()})

	svc.Execute(now)

	if _, ok := svc.Table().Get(peer); ok {
		t.Fatalf("expected peer to be removed")
	}
	n, ok := svc.Poll()
	if !ok || n.Kind != NeighborRemoved || !n.ID.Equal(peer) {
		t.Fatalf("expected a NeighborRemoved notification, got %+v (ok=%v)", n, ok)
	}
}

// TestServiceHelloFromSelfIgnored guards against a broadcast Hello looping
// back to its own sender.
func TestServiceHelloFromSelfIgnored(t *testing.T) {
	pool := framebuf.NewPool(4, 4)
	broker := linksock.NewBroker(nil)
	sock := broker.Socket(netcore.ProtocolRoutingNeighbor)

	self := linkaddr.UHFAddress(0x01)
	now := timeutil.Instant(0)
	svc := NewService(now, self, Cost(10), false, NewTable(), sock, pool)

	h := serializeToHandle(t, pool, NewHelloSerializer(false, HelloFrame{SenderID: self, NodeCost: 1, LinkCost: 1}))
	broker.DeliverFrame(netcore.Frame{Protocol: netcore.ProtocolRoutingNeighbor, Peer: self, Reader: h.Reader()})

	svc.Execute(now)

	if svc.Table().Len() != 0 {
		t.Fatalf("expected self-hello to be ignored, table has %d entries", svc.Table().Len())
	}
}

// TestHelloWorkerSendsKeepAliveToDueNeighbor exercises the periodic worker
// directly: once the hello interval elapses, a neighbor due for a
// keep-alive gets one queued.
func TestHelloWorkerSendsKeepAliveToDueNeighbor(t *testing.T) {
	pool := framebuf.NewPool(4, 4)
	broker := linksock.NewBroker(nil)
	sock := broker.Socket(netcore.ProtocolRoutingNeighbor)

	self := linkaddr.UHFAddress(0x01)
	peer := linkaddr.UHFAddress(0x02)
	now := timeutil.Instant(0)
	svc := NewService(now, self, Cost(10), false, NewTable(), sock, pool)
	svc.Table().AddOrUpdate(now, peer, Cost(2), peer)

	later := now.Add(SendHelloInterval + 1)
	svc.Execute(later)

	reply, ok := broker.NextOutgoing(netcore.ProtocolRoutingNeighbor)
	if !ok {
		t.Fatalf("expected a keep-alive hello to be queued")
	}
	if !reply.Peer.Equal(peer) {
		t.Fatalf("got reply addressed to %v, want %v", reply.Peer, peer)
	}
	reply.Reader.Release()
}
