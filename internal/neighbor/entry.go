package neighbor

import (
	"github.com/keke1008/meshd/internal/linkaddr"
	"github.com/keke1008/meshd/internal/timeutil"
)

// Entry is one neighbor record. addresses is deduplicated and capped at
// MaxMediaPerNode (spec §3 invariant).
type Entry struct {
	ID        NodeID
	LinkCost  Cost
	addresses [MaxMediaPerNode]linkaddr.Address
	addrCount uint8

	expiration timeutil.Delay
	nextHello  timeutil.Delay
}

// Addresses returns the entry's known addresses, most-recently-added last.
func (e *Entry) Addresses() []linkaddr.Address { return e.addresses[:e.addrCount] }

func (e *Entry) hasAddress(addr linkaddr.Address) bool {
	for i := uint8(0); i < e.addrCount; i++ {
		if e.addresses[i].Equal(addr) {
			return true
		}
	}
	return false
}

// addAddressIfNew records addr unless already known or the entry is full
// (silently: spec doesn't treat a full address list as an error).
func (e *Entry) addAddressIfNew(addr linkaddr.Address) {
	if e.hasAddress(addr) || e.addrCount >= MaxMediaPerNode {
		return
	}
	e.addresses[e.addrCount] = addr
	e.addrCount++
}

func (e *Entry) isExpired(now timeutil.Instant) bool { return e.expiration.Poll(now) }

func (e *Entry) shouldSendHello(now timeutil.Instant) bool { return e.nextHello.Poll(now) }

func (e *Entry) delayExpiration(now timeutil.Instant) {
	e.expiration = timeutil.NewDelay(now, NeighborExpirationTimeout)
}

func (e *Entry) delayHello(now timeutil.Instant) {
	e.nextHello = timeutil.NewDelay(now, SendHelloInterval)
}
