package discovery

import (
	"github.com/keke1008/meshd/internal/metrics"
	"github.com/keke1008/meshd/internal/poll"
	"github.com/keke1008/meshd/internal/timeutil"
)

type handlerState int

const (
	handlerInitial handlerState = iota
	handlerRequestDiscovery
	handlerDiscovering
)

// DiscoveryHandler tracks one caller's interest in resolving target to a
// gateway address, implementing spec §4.8's Initial -> RequestDiscovery
// -> Discovering sequence (grounded on original_source's DiscoveryHandler
// in net/discovery/discovery.h). It is polled once per scheduler tick
// until it yields a result.
type DiscoveryHandler struct {
	target NodeID
	state  handlerState
}

// Poll drives the handler forward. Ready(&gw) means target resolved to
// gateway gw; Ready(nil) means the discovery timed out with no answer;
// Pending means keep polling on a later tick.
func (h *DiscoveryHandler) Poll(now timeutil.Instant, e *Engine) poll.Poll[*NodeID] {
	if h.state == handlerInitial {
		if _, ok := e.neighbors.Get(h.target); ok {
			// target is itself a neighbor: no discovery needed, it is
			// its own gateway.
			metrics.DiscoveryResolved.WithLabelValues(metrics.DiscoveryOutcomeNeighbor).Inc()
			gw := h.target
			return poll.Ready(&gw)
		}
		if gw, ok := e.routes.Get(h.target); ok {
			metrics.DiscoveryResolved.WithLabelValues(metrics.DiscoveryOutcomeCached).Inc()
			return poll.Ready(&gw)
		}
		if entry, ok := e.containsInflight(h.target); ok {
			if entry.gateway != nil {
				gw := entry.gateway.gatewayID
				return poll.Ready(&gw)
			}
			h.state = handlerDiscovering
			return poll.Pending[*NodeID]()
		}
		h.state = handlerRequestDiscovery
	}

	if h.state == handlerRequestDiscovery {
		if !e.canAddInflight() {
			return poll.Pending[*NodeID]()
		}
		if !e.sendRequest(h.target) {
			return poll.Pending[*NodeID]()
		}
		e.addInflight(now, h.target)
		h.state = handlerDiscovering
		return poll.Pending[*NodeID]()
	}

	// handlerDiscovering: wait for Engine.Execute to either resolve this
	// target into the route cache (success) or drop it from inflight
	// without one (timed out).
	if _, ok := e.containsInflight(h.target); ok {
		return poll.Pending[*NodeID]()
	}
	if gw, ok := e.routes.Get(h.target); ok {
		return poll.Ready(&gw)
	}
	return poll.Ready[*NodeID](nil)
}
