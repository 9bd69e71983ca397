package timeutil

import "testing"

// fixedRand always returns its configured values, ignoring the requested
// bounds, making CSMA backoff tests deterministic.
type fixedRand struct {
	u8  uint8
	u16 uint16
}

func (r fixedRand) GenUint8(lo, hi uint8) uint8 { return r.u8 }
func (r fixedRand) GenUint16() uint16           { return r.u16 }

func TestCSMAWaiterFiresAfterArmedDelay(t *testing.T) {
	policy := &CSMABackOff{Rand: fixedRand{u8: 20}, Lo: 0, Hi: 100_000_000}
	w := NewCSMAWaiter(policy)

	w.Arm(Instant(0))
	if w.Poll(Instant(10)) {
		t.Fatalf("expected not yet elapsed")
	}
	if !w.Poll(Instant(20)) {
		t.Fatalf("expected elapsed at sampled duration")
	}
}

func TestCSMAWaiterUnarmedNeverFires(t *testing.T) {
	w := NewCSMAWaiter(&CSMABackOff{Rand: fixedRand{}, Lo: 0, Hi: 1})
	if w.Poll(Instant(1000)) {
		t.Fatalf("expected unarmed waiter to never report ready")
	}
}
