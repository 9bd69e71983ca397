// Package timeutil provides the monotonic tick oracle and bounded PRNG the
// spec requires in place of a wall-clock source: Instant is an opaque
// millisecond counter supplied by the host, never read from time.Now
// inside the cooperative core.
package timeutil

// Instant is an opaque monotonic millisecond timestamp supplied by a host
// oracle. The core never calls time.Now(); callers of Execute/poll methods
// pass the current Instant in.
type Instant uint32

// Duration is a millisecond duration with saturating arithmetic.
type Duration uint32

// Millis constructs a Duration from a millisecond count.
func Millis(ms uint32) Duration { return Duration(ms) }

// Seconds constructs a Duration from a second count.
func Seconds(s uint32) Duration { return Duration(s) * 1000 }

// Add returns the instant advanced by d, saturating at the uint32 max.
func (i Instant) Add(d Duration) Instant {
	sum := uint64(i) + uint64(d)
	if sum > uint64(^uint32(0)) {
		return Instant(^uint32(0))
	}
	return Instant(sum)
}

// Sub returns the non-negative elapsed duration between i and earlier,
// saturating at zero if earlier is actually later than i.
func (i Instant) Sub(earlier Instant) Duration {
	if i < earlier {
		return 0
	}
	return Duration(i - earlier)
}

// Before reports whether i happened strictly before other.
func (i Instant) Before(other Instant) bool { return i < other }

// AtOrAfter reports whether i has reached or passed other.
func (i Instant) AtOrAfter(other Instant) bool { return i >= other }

// Clock supplies the current Instant; hosts implement it over whatever
// monotonic counter the platform exposes (millis() on Arduino, a
// monotonic goroutine-driven counter on a Go host).
type Clock interface {
	Now() Instant
}

// Delay polls Ready once now has reached Deadline.
type Delay struct {
	Deadline Instant
}

// NewDelay returns a Delay that becomes ready after d has elapsed from now.
func NewDelay(now Instant, d Duration) Delay {
	return Delay{Deadline: now.Add(d)}
}

// Poll reports whether the deadline has been reached.
func (d Delay) Poll(now Instant) bool {
	return now.AtOrAfter(d.Deadline)
}

// Debounce produces a Ready signal every Interval, resetting its own
// deadline each time it fires (used to drive the ~1s neighbor expiration
// sweep and the ~25ms discovery aggregation tick).
type Debounce struct {
	Interval Duration
	next     Instant
	primed   bool
}

// NewDebounce creates a Debounce whose first tick fires after Interval has
// elapsed from now.
func NewDebounce(now Instant, interval Duration) *Debounce {
	return &Debounce{Interval: interval, next: now.Add(interval), primed: true}
}

// Poll reports whether the interval elapsed, rearming for the next period.
func (d *Debounce) Poll(now Instant) bool {
	if !d.primed {
		d.next = now.Add(d.Interval)
		d.primed = true
	}
	if now.AtOrAfter(d.next) {
		d.next = now.Add(d.Interval)
		return true
	}
	return false
}
