package timeutil

import (
	"time"

	"github.com/cenkalti/backoff"
)

// CSMABackOff implements backoff.BackOff with the uniform-jitter policy the
// UHF carrier-sense task needs (spec §4.6): each attempt waits a random
// duration in [Lo, Hi), not an exponentially growing one. It exists so the
// jitter policy is expressed against the same interface the rest of the Go
// ecosystem uses for retry policies, even though the cooperative scheduler
// can't use backoff.Retry's blocking loop directly — NextBackOff is instead
// polled manually by CSMAWaiter below.
type CSMABackOff struct {
	Rand   Rand
	Lo, Hi time.Duration
}

var _ backoff.BackOff = (*CSMABackOff)(nil)

// NextBackOff returns a uniformly jittered duration in [Lo, Hi).
func (b *CSMABackOff) NextBackOff() time.Duration {
	loMs := uint8(b.Lo.Milliseconds())
	hiMs := uint8(b.Hi.Milliseconds())
	return time.Duration(b.Rand.GenUint8(loMs, hiMs)) * time.Millisecond
}

// Reset is a no-op: the policy is stateless (uniform, not exponential).
func (b *CSMABackOff) Reset() {}

// CSMAWaiter drives a backoff.BackOff non-blockingly: Arm samples the next
// backoff duration and starts a Delay; Poll reports whether the wait has
// elapsed. This is the cooperative-scheduler equivalent of backoff.Retry's
// sleep, without ever blocking the calling goroutine.
type CSMAWaiter struct {
	policy backoff.BackOff
	delay  Delay
	armed  bool
}

// NewCSMAWaiter wraps a backoff.BackOff for non-blocking polling.
func NewCSMAWaiter(policy backoff.BackOff) *CSMAWaiter {
	return &CSMAWaiter{policy: policy}
}

// Arm starts a new wait window from now.
func (w *CSMAWaiter) Arm(now Instant) {
	d := w.policy.NextBackOff()
	w.delay = NewDelay(now, Duration(d.Milliseconds()))
	w.armed = true
}

// Poll reports whether the armed wait has elapsed. It is false if Arm was
// never called.
func (w *CSMAWaiter) Poll(now Instant) bool {
	return w.armed && w.delay.Poll(now)
}

// Reset clears the waiter and resets the underlying policy.
func (w *CSMAWaiter) Reset() {
	w.armed = false
	w.policy.Reset()
}
