package discovery

import "github.com/keke1008/meshd/internal/timeutil"

// foundGateway is the cheapest gateway seen so far for an in-flight
// discovery.
type foundGateway struct {
	gatewayID NodeID
	cost      Cost
}

// inflightEntry aggregates replies for one in-flight discovery (spec
// §4.8's "strictly-smaller cost wins" merge and two-tier timeout).
type inflightEntry struct {
	remoteID NodeID
	startedAt timeutil.Instant
	gateway   *foundGateway
}

func (e *inflightEntry) replaceIfCheaper(gatewayID NodeID, cost Cost) {
	if e.gateway == nil || cost < e.gateway.cost {
		e.gateway = &foundGateway{gatewayID: gatewayID, cost: cost}
	}
}

// isExpired reports whether this entry's window has elapsed: a longer
// window while no reply has arrived, a shorter one once at least one has
// (so a cheaper reply has a last chance to beat it, but the discovery
// doesn't hang open indefinitely).
func (e *inflightEntry) isExpired(now timeutil.Instant) bool {
	elapsed := now.Sub(e.startedAt)
	if e.gateway != nil {
		return elapsed >= DiscoveryBetterResponseTimeout
	}
	return elapsed >= DiscoveryFirstResponseTimeout
}
