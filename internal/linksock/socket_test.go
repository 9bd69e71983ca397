package linksock

import (
	"testing"

	"github.com/keke1008/meshd/internal/framebuf"
	"github.com/keke1008/meshd/internal/linkaddr"
	"github.com/keke1008/meshd/internal/netcore"
)

func TestDeliverAndReceive(t *testing.T) {
	b := NewBroker(nil)
	sock := b.Socket(netcore.ProtocolUHFControl)

	if sock.PollReceiveFrame().IsReady() {
		t.Fatalf("expected no frame queued yet")
	}

	b.DeliverFrame(netcore.Frame{Protocol: netcore.ProtocolUHFControl, Peer: linkaddr.UHFAddress(1)})
	f := sock.PollReceiveFrame()
	if !f.IsReady() {
		t.Fatalf("expected delivered frame to be receivable")
	}
	if f.Unwrap().Peer.Bytes()[0] != 1 {
		t.Fatalf("unexpected peer address")
	}
}

func TestSendFrameBackpressure(t *testing.T) {
	b := NewBroker(nil)
	sock := b.Socket(netcore.ProtocolUHFControl)
	pool := framebuf.NewPool(1, 0)
	h := pool.Allocate(1).Unwrap()
	defer h.Release()

	for i := 0; i < defaultQueueCapacity; i++ {
		_, err := sock.PollSendFrame(linkaddr.UHFAddress(1), h.Reader())
		if err != SendErrorNone {
			t.Fatalf("unexpected send error at %d: %v", i, err)
		}
	}
	if _, err := sock.PollSendFrame(linkaddr.UHFAddress(1), h.Reader()); err != SendErrorBackpressure {
		t.Fatalf("expected backpressure once queue is full, got %v", err)
	}
}

type fakeNeighborTable struct {
	addrs []linkaddr.Address
}

func (f fakeNeighborTable) BroadcastAddresses() []linkaddr.Address { return f.addrs }

func TestBroadcastFanOut(t *testing.T) {
	neighbors := fakeNeighborTable{addrs: []linkaddr.Address{linkaddr.UHFAddress(1), linkaddr.UHFAddress(2)}}
	b := NewBroker(neighbors)
	sock := b.Socket(netcore.ProtocolRoutingReactive)
	pool := framebuf.NewPool(1, 0)
	h := pool.Allocate(1).Unwrap()
	defer h.Release()

	_, err := sock.PollSendBroadcastFrame(h.Reader())
	if err != SendErrorNone {
		t.Fatalf("unexpected error: %v", err)
	}

	count := 0
	for {
		_, ok := b.NextOutgoing(netcore.ProtocolRoutingReactive)
		if !ok {
			break
		}
		count++
	}
	if count != 2 {
		t.Fatalf("expected 2 fanned-out frames, got %d", count)
	}
}

func TestBroadcastWithNoNeighborTable(t *testing.T) {
	b := NewBroker(nil)
	sock := b.Socket(netcore.ProtocolRoutingReactive)
	pool := framebuf.NewPool(1, 0)
	h := pool.Allocate(1).Unwrap()
	defer h.Release()

	if _, err := sock.PollSendBroadcastFrame(h.Reader()); err != SendErrorNoMedium {
		t.Fatalf("expected SendErrorNoMedium, got %v", err)
	}
}
