package serialmedium

import (
	"testing"

	"github.com/keke1008/meshd/internal/framebuf"
	"github.com/keke1008/meshd/internal/linkaddr"
	"github.com/keke1008/meshd/internal/netcore"
)

func TestSenderStreamsPreambleHeaderPayload(t *testing.T) {
	pool := framebuf.NewPool(4, 4)
	h := pool.Allocate(2).Unwrap()
	w := h.Writer()
	w.WriteUnchecked(0xB1)
	w.WriteUnchecked(0xB2)

	local := linkaddr.SerialAddress(0x0A)
	s := NewSender(&local)
	dest := linkaddr.SerialAddress(0x05)
	frame := netcore.Frame{Protocol: 0x10, Peer: dest, Reader: h.Reader()}

	if !s.Idle() {
		t.Fatalf("expected idle sender before Send")
	}
	s.Send(0x10, dest, frame)
	if s.Idle() {
		t.Fatalf("expected busy sender after Send")
	}

	out := &byteStream{}
	for !s.Idle() {
		s.Poll(out)
	}

	want := []byte{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAB, 0x10, 0x0A, 0x05, 0x02, 0xB1, 0xB2}
	if len(out.written) != len(want) {
		t.Fatalf("got %d bytes, want %d: %v", len(out.written), len(want), out.written)
	}
	for i := range want {
		if out.written[i] != want[i] {
			t.Fatalf("byte %d: got %#x, want %#x", i, out.written[i], want[i])
		}
	}
	h.Release()
}
