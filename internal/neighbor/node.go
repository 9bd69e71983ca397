package neighbor

import "github.com/keke1008/meshd/internal/linkaddr"

// NodeID identifies a node by the link address it was first discovered
// through; the source's NodeId wraps exactly one link::Address the same
// way.
type NodeID = linkaddr.Address

// Cost is a non-negative path-cost estimate: a neighbor's link cost, or a
// node's own contribution added by intermediaries while forwarding.
type Cost uint16
