package discovery

import (
	"testing"

	"github.com/keke1008/meshd/internal/timeutil"
)

func TestInflightEntryKeepsCheaperGateway(t *testing.T) {
	e := &inflightEntry{remoteID: nodeID(1), startedAt: 0}
	e.replaceIfCheaper(nodeID(2), 10)
	e.replaceIfCheaper(nodeID(3), 20)
	if e.gateway.gatewayID != nodeID(2) || e.gateway.cost != 10 {
		t.Fatalf("expected cheaper gateway kept, got %+v", e.gateway)
	}
	e.replaceIfCheaper(nodeID(4), 5)
	if e.gateway.gatewayID != nodeID(4) || e.gateway.cost != 5 {
		t.Fatalf("expected strictly cheaper gateway to replace, got %+v", e.gateway)
	}
}

func TestInflightEntryTimeouts(t *testing.T) {
	e := &inflightEntry{remoteID: nodeID(1), startedAt: 0}
	if e.isExpired(timeutil.Instant(uint32(DiscoveryFirstResponseTimeout) - 1)) {
		t.Fatalf("must not expire before first-response window elapses with no reply")
	}
	if !e.isExpired(timeutil.Instant(uint32(DiscoveryFirstResponseTimeout))) {
		t.Fatalf("expected expiry once first-response window elapses with no reply")
	}

	e.replaceIfCheaper(nodeID(2), 1)
	if e.isExpired(timeutil.Instant(uint32(DiscoveryBetterResponseTimeout) - 1)) {
		t.Fatalf("must not expire before the shorter better-response window elapses")
	}
	if !e.isExpired(timeutil.Instant(uint32(DiscoveryBetterResponseTimeout))) {
		t.Fatalf("expected expiry once better-response window elapses after a reply arrived")
	}
}
