package discovery

import (
	"github.com/keke1008/meshd/internal/framebuf"
	"github.com/keke1008/meshd/internal/linksock"
	"github.com/keke1008/meshd/internal/logging"
	"github.com/keke1008/meshd/internal/metrics"
	"github.com/keke1008/meshd/internal/neighbor"
	"github.com/keke1008/meshd/internal/netcore"
	"github.com/keke1008/meshd/internal/serde"
	"github.com/keke1008/meshd/internal/timeutil"
)

// Engine drives reactive route discovery (spec §4.8): it floods Request
// frames, aggregates Reply frames across a bounded set of in-flight
// searches, and caches resolved gateways so a repeated discovery of the
// same target costs nothing. It is the only discovery type the daemon's
// scheduler calls.
type Engine struct {
	pool      *framebuf.Pool
	sock      *linksock.Socket
	neighbors *neighbor.Table

	self     NodeID
	selfCost Cost
	rand     timeutil.Rand

	frameIDs frameIDCache
	routes   routeCache
	inflight []*inflightEntry

	aggregate *timeutil.Debounce
}

// NewEngine creates an Engine bound to self's identity, the neighbor
// table it consults for link costs and direct-neighbor short-circuits,
// and the reactive-routing socket it sends and receives frames through.
func NewEngine(now timeutil.Instant, self NodeID, selfCost Cost, neighbors *neighbor.Table, sock *linksock.Socket, pool *framebuf.Pool, rand timeutil.Rand) *Engine {
	return &Engine{
		pool:      pool,
		sock:      sock,
		neighbors: neighbors,
		self:      self,
		selfCost:  selfCost,
		rand:      rand,
		aggregate: timeutil.NewDebounce(now, DiscoverInterval),
	}
}

// RequestSend starts (or joins) a discovery for target and returns a
// handle the caller polls to completion.
func (e *Engine) RequestSend(target NodeID) *DiscoveryHandler {
	return &DiscoveryHandler{target: target}
}

// Execute runs one scheduler tick: dispatch one received frame, then
// resolve any in-flight discoveries whose window has elapsed.
func (e *Engine) Execute(now timeutil.Instant) {
	if f := e.sock.PollReceiveFrame(); f.IsReady() {
		e.handleFrame(now, f.Unwrap())
	}

	if e.aggregate.Poll(now) {
		e.resolveExpired(now)
		metrics.DiscoveryInFlight.Set(float64(len(e.inflight)))
		metrics.RouteCacheSize.Set(float64(e.routes.count))
	}
}

func (e *Engine) resolveExpired(now timeutil.Instant) {
	kept := e.inflight[:0]
	for _, entry := range e.inflight {
		if !entry.isExpired(now) {
			kept = append(kept, entry)
			continue
		}
		if entry.gateway != nil {
			e.routes.Add(entry.remoteID, entry.gateway.gatewayID)
			metrics.DiscoveryResolved.WithLabelValues(metrics.DiscoveryOutcomeFound).Inc()
		} else {
			metrics.DiscoveryResolved.WithLabelValues(metrics.DiscoveryOutcomeTimeout).Inc()
		}
	}
	e.inflight = kept
}

func (e *Engine) containsInflight(target NodeID) (*inflightEntry, bool) {
	for _, entry := range e.inflight {
		if entry.remoteID.Equal(target) {
			return entry, true
		}
	}
	return nil, false
}

func (e *Engine) canAddInflight() bool { return len(e.inflight) < MaxConcurrentDiscoveries }

func (e *Engine) addInflight(now timeutil.Instant, target NodeID) {
	if _, ok := e.containsInflight(target); ok {
		return
	}
	e.inflight = append(e.inflight, &inflightEntry{remoteID: target, startedAt: now})
}

func (e *Engine) onGatewayFound(remoteID, gatewayID NodeID, cost Cost) {
	if entry, ok := e.containsInflight(remoteID); ok {
		entry.replaceIfCheaper(gatewayID, cost)
	}
}

// sendRequest broadcasts a fresh discovery Request for target. Returns
// false if no buffer was available or the broadcast queue applied
// backpressure; the caller (DiscoveryHandler) retries on a later tick.
func (e *Engine) sendRequest(target NodeID) bool {
	id := e.frameIDs.generate(e.rand)
	e.frameIDs.insert(id)
	frame := requestFrame(id, e.self, e.selfCost, target)
	reader, ok := e.buildFrame(frame)
	if !ok {
		return false
	}
	if _, sendErr := e.sock.PollSendBroadcastFrame(reader); sendErr != linksock.SendErrorNone {
		reader.Release()
		return false
	}
	metrics.DiscoveryRequests.Inc()
	return true
}

// handleFrame implements spec §4.8's six-step receive algorithm.
func (e *Engine) handleFrame(now timeutil.Instant, raw netcore.Frame) {
	var d FrameDeserializer
	result := d.Deserialize(raw.Reader)
	raw.Reader.Release()
	if result.IsPending() || result.Unwrap() != serde.Ok {
		metrics.MalformedFrames.Inc()
		logging.L().Warn("discovery: malformed frame, dropping")
		return
	}
	frame := d.Result()

	// Step 1: frame-ID dedup (Testable Property 7).
	if e.frameIDs.insertAndCheckContains(frame.FrameID) {
		return
	}

	// Step 2: sender must be a known neighbor; cost of that hop comes
	// from the neighbor table, not the frame itself.
	senderEntry, ok := e.neighbors.Get(frame.SenderID)
	if !ok {
		logging.L().Debug("discovery: frame from non-neighbor, dropping", "sender", frame.SenderID)
		return
	}

	// Step 3: learn a reverse path toward the frame's originator through
	// whoever just relayed it to us.
	e.routes.Add(frame.SourceID, frame.SenderID)

	// Step 4: frame addressed to this node.
	if frame.TargetID.Equal(e.self) {
		switch frame.Type {
		case FrameRequest:
			e.replyTo(frame)
		case FrameReply:
			// A Reply addressed to self is a result event, never a
			// re-reply (Design Note: reply-vs-forward branching when
			// target is self).
			e.onGatewayFound(frame.SourceID, frame.SenderID, frame.TotalCost)
		}
		return
	}

	// Step 5/6: not for us — relay it on, one more hop's cost added.
	e.forward(frame, senderEntry.LinkCost)
}

func (e *Engine) replyTo(request Frame) {
	id := e.frameIDs.generate(e.rand)
	e.frameIDs.insert(id)
	reply := replyFrame(id, e.self, request.SourceID)
	reader, ok := e.buildFrame(reply)
	if !ok {
		return
	}
	if _, sendErr := e.sock.PollSendFrame(lookupAddress(e.neighbors, request.SenderID), reader); sendErr != linksock.SendErrorNone {
		reader.Release()
	}
}

func (e *Engine) forward(frame Frame, linkCost Cost) {
	next := frame.repeat(e.self, linkCost+e.selfCost)
	reader, ok := e.buildFrame(next)
	if !ok {
		return
	}
	if gateway, cached := e.routes.Get(frame.TargetID); cached {
		if _, sendErr := e.sock.PollSendFrame(lookupAddress(e.neighbors, gateway), reader); sendErr != linksock.SendErrorNone {
			reader.Release()
		}
		return
	}
	if _, sendErr := e.sock.PollSendBroadcastFrame(reader); sendErr != linksock.SendErrorNone {
		reader.Release()
	}
}

// lookupAddress resolves a neighbor's link address to send a unicast
// frame to. A node absent from the table (e.g. expired between frames)
// gets its node ID used directly: for this stack a NodeID is itself a
// link address, so the send still reaches the right medium.
func lookupAddress(neighbors *neighbor.Table, id NodeID) NodeID {
	if entry, ok := neighbors.Get(id); ok {
		addrs := entry.Addresses()
		if len(addrs) > 0 {
			return addrs[0]
		}
	}
	return id
}

// buildFrame allocates a buffer sized to frame and serializes it into a
// fresh handle, returning a reader ready to hand to the socket.
func (e *Engine) buildFrame(frame Frame) (*framebuf.Reader, bool) {
	ser := NewFrameSerializer(frame)
	alloc := e.pool.Allocate(ser.SerializedLength())
	if alloc.IsPending() {
		logging.L().Warn("discovery: no buffer available for outgoing frame")
		return nil, false
	}
	handle := alloc.Unwrap()
	w := handle.Writer()
	for !ser.Serialize(w).IsReady() {
	}
	return handle.Reader(), true
}
