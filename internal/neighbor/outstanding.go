package neighbor

import "github.com/keke1008/meshd/internal/timeutil"

// outstandingHello correlates a just-sent Hello with the HelloAck that
// completes it, so the periodic worker doesn't re-broadcast a Hello to a
// node it's already waiting to hear back from (original_source's
// net/neighbor/socket/task.h: SendFrameTask carries a destination_node
// that the handshake's reply resolves against). spec.md compresses this
// into "this completes the handshake initiator's outstanding request";
// this type is the minimal state needed to honor that without resending.
type outstandingHello struct {
	active bool
	target NodeID
	expiry timeutil.Instant
}

// outstandingHelloTimeout bounds how long an unanswered Hello suppresses
// a retry before the slot is freed for another attempt.
const outstandingHelloTimeout = timeutil.Duration(5_000)

func (o *outstandingHello) mark(now timeutil.Instant, target NodeID) {
	o.active = true
	o.target = target
	o.expiry = now.Add(outstandingHelloTimeout)
}

// suppresses reports whether a Hello to target should be skipped because
// one is already outstanding.
func (o *outstandingHello) suppresses(now timeutil.Instant, target NodeID) bool {
	if !o.active {
		return false
	}
	if now.AtOrAfter(o.expiry) {
		o.active = false
		return false
	}
	return o.target.Equal(target)
}

// resolve clears the outstanding slot once a HelloAck (or any fresh
// record/refresh) arrives from target.
func (o *outstandingHello) resolve(target NodeID) {
	if o.active && o.target.Equal(target) {
		o.active = false
	}
}
