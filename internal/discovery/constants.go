// Package discovery implements the reactive route-discovery engine (spec
// §4.8): flood-and-reply Request/Reply frames, a bounded in-flight
// aggregation table, a frame-ID dedup cache, and an LRU-style gateway
// cache so a second discovery of the same target is free.
package discovery

import "github.com/keke1008/meshd/internal/timeutil"

const (
	MaxConcurrentDiscoveries = 4
	MaxRouteCacheEntries     = 8
	FrameIDCacheSize         = 8

	// DiscoverInterval is the aggregation debounce: how often in-flight
	// entries are checked for expiration.
	DiscoverInterval = timeutil.Duration(25)

	// DiscoveryFirstResponseTimeout bounds an in-flight entry that has
	// not yet seen any reply.
	DiscoveryFirstResponseTimeout = timeutil.Duration(10_000)

	// DiscoveryBetterResponseTimeout bounds an in-flight entry that has
	// already seen at least one reply, giving a short window for a
	// cheaper one to arrive before committing (original_source declares
	// a BETTER_RESPONSE_TIMEOUT_RATE but never assigns it a concrete
	// value in the retrieved sources; this picks a value short enough to
	// keep discovery latency low without discarding an imminent cheaper
	// reply).
	DiscoveryBetterResponseTimeout = timeutil.Duration(2_000)
)
