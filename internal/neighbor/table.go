package neighbor

import (
	"github.com/keke1008/meshd/internal/linkaddr"
	"github.com/keke1008/meshd/internal/timeutil"
)

// AddResult reports how AddOrUpdate changed the table.
type AddResult int

const (
	// AddNoChange means the neighbor was already present with this cost.
	AddNoChange AddResult = iota
	// AddUpdated means a new neighbor was inserted or an existing one's
	// link cost changed.
	AddUpdated
	// AddFull means the table has no room for a new entry.
	AddFull
)

// Table is the fixed-capacity (MaxNeighbors) set of known neighbors, with
// a cursor API that survives concurrent removal (spec §4.7, Testable
// Property 9).
type Table struct {
	entries []*Entry
	cursors []*cursorRef
}

func NewTable() *Table { return &Table{} }

func (t *Table) findIndex(id NodeID) (int, bool) {
	for i, e := range t.entries {
		if e.ID.Equal(id) {
			return i, true
		}
	}
	return -1, false
}

// AddOrUpdate records a Hello/HelloAck from addr for id, refreshing its
// expiration. Matches source's NeighborList::add_neighbor.
func (t *Table) AddOrUpdate(now timeutil.Instant, id NodeID, linkCost Cost, addr linkaddr.Address) AddResult {
	if i, ok := t.findIndex(id); ok {
		e := t.entries[i]
		e.addAddressIfNew(addr)
		e.delayExpiration(now)
		if e.LinkCost == linkCost {
			return AddNoChange
		}
		e.LinkCost = linkCost
		return AddUpdated
	}
	if len(t.entries) >= MaxNeighbors {
		return AddFull
	}
	e := &Entry{ID: id, LinkCost: linkCost}
	e.addAddressIfNew(addr)
	e.delayExpiration(now)
	e.delayHello(now)
	t.entries = append(t.entries, e)
	return AddUpdated
}

// Remove deletes the neighbor identified by id, if present, fixing up
// every outstanding cursor (spec's cursor-stability invariant).
func (t *Table) Remove(id NodeID) bool {
	i, ok := t.findIndex(id)
	if !ok {
		return false
	}
	t.removeIndex(i)
	return true
}

func (t *Table) removeIndex(index int) {
	t.entries = append(t.entries[:index], t.entries[index+1:]...)
	for _, c := range t.cursors {
		c.onRemoved(index)
	}
}

// Get returns the neighbor record for id, if any.
func (t *Table) Get(id NodeID) (*Entry, bool) {
	i, ok := t.findIndex(id)
	if !ok {
		return nil, false
	}
	return t.entries[i], true
}

// FindByAddress returns the neighbor owning addr, if any.
func (t *Table) FindByAddress(addr linkaddr.Address) (*Entry, bool) {
	for _, e := range t.entries {
		if e.hasAddress(addr) {
			return e, true
		}
	}
	return nil, false
}

// Len reports the current neighbor count.
func (t *Table) Len() int { return len(t.entries) }

// DelayHello refreshes id's keep-alive deadline (called after a Hello or
// HelloAck has been sent to it, so a just-spoken-to neighbor isn't
// immediately re-hello'd by the periodic worker).
func (t *Table) DelayHello(now timeutil.Instant, id NodeID) {
	if e, ok := t.Get(id); ok {
		e.delayHello(now)
	}
}

// BroadcastAddresses satisfies linksock.NeighborTable: one representative
// address per neighbor (its first), used by the broker's broadcast fan-out,
// which queues one unicast copy of a broadcast frame per address.
func (t *Table) BroadcastAddresses() []linkaddr.Address {
	addrs := make([]linkaddr.Address, 0, len(t.entries))
	for _, e := range t.entries {
		if e.addrCount > 0 {
			addrs = append(addrs, e.addresses[0])
		}
	}
	return addrs
}

// Sweep removes every neighbor whose expiration has elapsed, calling
// onRemoved for each (spec §4.7's ≈1s sweep; Testable Property 6).
func (t *Table) Sweep(now timeutil.Instant, onRemoved func(*Entry)) {
	index := 0
	for index < len(t.entries) {
		e := t.entries[index]
		if e.isExpired(now) {
			onRemoved(e)
			t.removeIndex(index)
			continue
		}
		index++
	}
}

// ForEach iterates every neighbor without a cursor; used by the service's
// shutdown Goodbye pass.
func (t *Table) ForEach(f func(*Entry)) {
	for _, e := range t.entries {
		f(e)
	}
}

// cursorRef is the shared, index-adjusting state behind a Cursor; removal
// decrements every cursor whose index was past the removed slot.
type cursorRef struct {
	index int
}

func (c *cursorRef) onRemoved(removedIndex int) {
	if c.index > removedIndex {
		c.index--
	}
}

// Cursor is a resumable iterator over the table that survives concurrent
// removal (spec §4.7/§6 Testable Property 9): removing entry i decrements
// every cursor with index > i, and a cursor sitting at i is left pointing
// at whatever took i's place.
type Cursor struct {
	ref *cursorRef
}

// NewCursor creates a cursor starting at the first entry. Cursors are not
// bounded in this Go port (unlike the source's fixed MAX_NEIGHBOR_LIST_-
// CURSOR_COUNT pool): callers hold at most one broadcast cursor at a time
// in practice, so the extra bookkeeping to reclaim stale cursor slots
// brings no benefit here.
func (t *Table) NewCursor() *Cursor {
	ref := &cursorRef{}
	t.cursors = append(t.cursors, ref)
	return &Cursor{ref: ref}
}

// Next returns the entry at the cursor's current position and advances
// it, or false once the cursor has run past the end.
func (t *Table) Next(c *Cursor) (*Entry, bool) {
	if c.ref.index >= len(t.entries) {
		return nil, false
	}
	e := t.entries[c.ref.index]
	c.ref.index++
	return e, true
}

// ResetCursor rewinds c to the first entry, for reuse across repeated
// full passes (the hello worker's once-per-interval unicast sweep).
func (t *Table) ResetCursor(c *Cursor) { c.ref.index = 0 }

// Release drops the cursor's bookkeeping slot once the caller is done
// iterating.
func (t *Table) Release(c *Cursor) {
	for i, r := range t.cursors {
		if r == c.ref {
			t.cursors = append(t.cursors[:i], t.cursors[i+1:]...)
			return
		}
	}
}
