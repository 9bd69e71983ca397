// Package neighbor implements the neighbor discovery and link-state
// service (spec §4.7): a bounded table of directly-reachable nodes, a
// Hello/HelloAck/Goodbye exchange over the neighbor protocol, periodic
// keep-alive and expiration sweeps, a cursor API that survives removal
// during iteration, and the per-neighbor address list the broker's
// broadcast path reads to fan sends out across every known neighbor.
package neighbor

import "github.com/keke1008/meshd/internal/timeutil"

const (
	// MaxNeighbors bounds the table (spec §3 "up to N (≈10) entries").
	MaxNeighbors = 10
	// MaxMediaPerNode bounds how many addresses one neighbor record keeps
	// (spec §3 "≤ MAX_MEDIA_PER_NODE ≈ 4").
	MaxMediaPerNode = 4
	// MaxCursors is the source's cursor-pool size. Table.NewCursor does not
	// enforce it: the number of outstanding cursors is unbounded.
	MaxCursors = 4

	// NeighborExpirationTimeout is how long a neighbor may go without a
	// Hello/HelloAck before the expiration sweep removes it.
	NeighborExpirationTimeout = timeutil.Duration(30_000)
	// SendHelloInterval is the keep-alive period for an established
	// neighbor (reset whenever a Hello or HelloAck is sent to it).
	SendHelloInterval = timeutil.Duration(10_000)
	// CheckExpirationInterval is the sweep period (spec §4.7 "periodic
	// (≈1s) sweep").
	CheckExpirationInterval = timeutil.Duration(1_000)
)
