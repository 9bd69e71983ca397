package discovery

import (
	"testing"

	"github.com/keke1008/meshd/internal/framebuf"
	"github.com/keke1008/meshd/internal/linkaddr"
	"github.com/keke1008/meshd/internal/linksock"
	"github.com/keke1008/meshd/internal/neighbor"
	"github.com/keke1008/meshd/internal/netcore"
	"github.com/keke1008/meshd/internal/timeutil"
)

type incrementingRand struct{ n uint16 }

func (r *incrementingRand) GenUint8(lo, hi uint8) uint8 { return lo }
func (r *incrementingRand) GenUint16() uint16 {
	r.n++
	return r.n
}

func newTestEngine(now timeutil.Instant, self NodeID) (*Engine, *neighbor.Table, *linksock.Broker) {
	neighbors := neighbor.NewTable()
	broker := linksock.NewBroker(neighbors)
	sock := broker.Socket(netcore.ProtocolRoutingReactive)
	pool := framebuf.NewPool(4, 4)
	e := NewEngine(now, self, 1, neighbors, sock, pool, &incrementingRand{})
	return e, neighbors, broker
}

func TestHandlerShortCircuitsOnDirectNeighbor(t *testing.T) {
	e, neighbors, _ := newTestEngine(0, nodeID(1))
	neighbors.AddOrUpdate(0, nodeID(2), 5, linkaddr.UHFAddress(2))

	h := e.RequestSend(nodeID(2))
	p := h.Poll(0, e)
	if !p.IsReady() {
		t.Fatalf("expected immediate resolution for a direct neighbor")
	}
	if got := p.Unwrap(); got == nil || !got.Equal(nodeID(2)) {
		t.Fatalf("got %+v, want gateway == target", got)
	}
}

func TestHandlerShortCircuitsOnRouteCache(t *testing.T) {
	e, _, _ := newTestEngine(0, nodeID(1))
	e.routes.Add(nodeID(9), nodeID(2))

	h := e.RequestSend(nodeID(9))
	p := h.Poll(0, e)
	if !p.IsReady() {
		t.Fatalf("expected immediate resolution from route cache")
	}
	if got := p.Unwrap(); got == nil || !got.Equal(nodeID(2)) {
		t.Fatalf("got %+v, want cached gateway", got)
	}
}

func TestHandlerBroadcastsRequestThenTimesOut(t *testing.T) {
	e, _, _ := newTestEngine(0, nodeID(1))

	h := e.RequestSend(nodeID(9))
	if p := h.Poll(0, e); !p.IsPending() {
		t.Fatalf("expected pending while discovery is in flight")
	}
	if len(e.inflight) != 1 {
		t.Fatalf("expected one in-flight entry, got %d", len(e.inflight))
	}

	late := timeutil.Instant(uint32(DiscoveryFirstResponseTimeout) + 1)
	e.Execute(late)
	if p := h.Poll(late, e); !p.IsReady() || p.Unwrap() != nil {
		t.Fatalf("expected timeout to resolve to no gateway, got %+v", p)
	}
}

func TestEngineForwardsRequestNotAddressedToSelf(t *testing.T) {
	engineB, neighborsB, brokerB := newTestEngine(0, nodeID(2))
	neighborsB.AddOrUpdate(0, nodeID(1), 3, linkaddr.UHFAddress(1))

	pool := framebuf.NewPool(4, 4)
	request := requestFrame(55, nodeID(1), 2, nodeID(9))
	ser := NewFrameSerializer(request)
	handle := pool.Allocate(ser.SerializedLength()).Unwrap()
	w := handle.Writer()
	for !ser.Serialize(w).IsReady() {
	}

	frame := netcore.Frame{Protocol: netcore.ProtocolRoutingReactive, Peer: linkaddr.UHFAddress(1), Reader: handle.Reader()}
	if !brokerB.DeliverFrame(frame) {
		t.Fatalf("expected frame delivery to succeed")
	}

	engineB.Execute(0)

	if gw, ok := engineB.routes.Get(nodeID(1)); !ok || !gw.Equal(nodeID(1)) {
		t.Fatalf("expected reverse route to source cached, got %+v %v", gw, ok)
	}

	out, ok := brokerB.NextOutgoing(netcore.ProtocolRoutingReactive)
	if !ok {
		t.Fatalf("expected forwarded frame queued for transmission")
	}
	defer out.Reader.Release()

	var d FrameDeserializer
	for !d.Deserialize(out.Reader).IsReady() {
	}
	got := d.Result()
	if !got.SenderID.Equal(nodeID(2)) {
		t.Fatalf("expected sender rewritten to forwarding node, got %+v", got.SenderID)
	}
	if got.TotalCost != request.TotalCost+3+1 {
		t.Fatalf("expected cost incremented by link cost + self cost, got %d", got.TotalCost)
	}
}

func TestEngineRepliesWhenRequestTargetsSelf(t *testing.T) {
	engine, neighbors, broker := newTestEngine(0, nodeID(2))
	neighbors.AddOrUpdate(0, nodeID(1), 3, linkaddr.UHFAddress(1))

	pool := framebuf.NewPool(4, 4)
	request := requestFrame(7, nodeID(1), 2, nodeID(2))
	ser := NewFrameSerializer(request)
	handle := pool.Allocate(ser.SerializedLength()).Unwrap()
	w := handle.Writer()
	for !ser.Serialize(w).IsReady() {
	}
	frame := netcore.Frame{Protocol: netcore.ProtocolRoutingReactive, Peer: linkaddr.UHFAddress(1), Reader: handle.Reader()}
	broker.DeliverFrame(frame)

	engine.Execute(0)

	out, ok := broker.NextOutgoing(netcore.ProtocolRoutingReactive)
	if !ok {
		t.Fatalf("expected a reply frame queued")
	}
	defer out.Reader.Release()

	var d FrameDeserializer
	for !d.Deserialize(out.Reader).IsReady() {
	}
	got := d.Result()
	if got.Type != FrameReply {
		t.Fatalf("expected a Reply frame, got %+v", got.Type)
	}
	if !got.TargetID.Equal(nodeID(1)) || !got.SourceID.Equal(nodeID(2)) {
		t.Fatalf("expected reply addressed back to request source, got %+v", got)
	}
}
