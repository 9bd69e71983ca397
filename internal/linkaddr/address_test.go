package linkaddr

import "testing"

func TestEqualRequiresSameType(t *testing.T) {
	a := SerialAddress(0x05)
	b := UHFAddress(0x05)
	if a.Equal(b) {
		t.Fatalf("addresses of different media must never compare equal")
	}
}

func TestUHFBroadcast(t *testing.T) {
	if !UHFBroadcast.IsBroadcast() {
		t.Fatalf("expected UHFBroadcast to report IsBroadcast")
	}
	if UHFAddress(0x01).IsBroadcast() {
		t.Fatalf("non-zero UHF address must not be broadcast")
	}
	if SerialAddress(0x00).IsBroadcast() {
		t.Fatalf("serial addresses have no broadcast value")
	}
}

func TestBytes(t *testing.T) {
	a := UHFAddress(0x2A)
	if len(a.Bytes()) != 1 || a.Bytes()[0] != 0x2A {
		t.Fatalf("unexpected bytes: %v", a.Bytes())
	}
}
