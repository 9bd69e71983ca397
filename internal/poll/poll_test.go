package poll

import "testing"

func TestReadyUnwrap(t *testing.T) {
	p := Ready(42)
	if !p.IsReady() || p.IsPending() {
		t.Fatalf("expected ready")
	}
	if got := p.Unwrap(); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestPending(t *testing.T) {
	p := Pending[int]()
	if p.IsReady() || !p.IsPending() {
		t.Fatalf("expected pending")
	}
	if got := p.UnwrapOr(7); got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
}

func TestUnwrapPendingPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	Pending[int]().Unwrap()
}

func TestMap(t *testing.T) {
	p := Ready(3)
	mapped := Map(p, func(v int) string {
		if v == 3 {
			return "three"
		}
		return "?"
	})
	if mapped.Unwrap() != "three" {
		t.Fatalf("unexpected map result: %v", mapped.Unwrap())
	}
	if !Map(Pending[int](), func(int) int { return 1 }).IsPending() {
		t.Fatalf("map of pending should stay pending")
	}
}
