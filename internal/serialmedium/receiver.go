package serialmedium

import (
	"github.com/keke1008/meshd/internal/framebuf"
	"github.com/keke1008/meshd/internal/linkaddr"
	"github.com/keke1008/meshd/internal/logging"
	"github.com/keke1008/meshd/internal/netcore"
	"github.com/keke1008/meshd/internal/poll"
	"github.com/keke1008/meshd/internal/serde"
)

// receiverState is the Go rendition of the original's variant-based state
// machine: a sum type realized as an interface with one struct per
// variant, each owning its own sub-state and no shared references between
// variants.
type receiverState interface {
	// poll attempts to make progress against r. ok is false if it needs
	// more bytes than are currently available; when ok is true, next is
	// the state to continue from (possibly a completed frame if frame.Reader
	// is non-nil).
	poll(rc *Receiver, r serde.ByteReader) (next receiverState, frame *netcore.Frame, ok bool)
}

// Receiver turns a raw byte stream into link frames, resyncing from any
// garbage by scanning for the preamble (spec §4.5's SkipPreamble state).
type Receiver struct {
	pool  *framebuf.Pool
	local *linkaddr.Address // learned from the first frame's destination
	peer  *linkaddr.Address // learned from the first frame's source
	state receiverState
}

// NewReceiver creates a Receiver. local may be pre-set by configuration; if
// nil it is learned from the first successfully parsed frame.
func NewReceiver(pool *framebuf.Pool, local *linkaddr.Address) *Receiver {
	return &Receiver{pool: pool, local: local, state: &skipPreambleState{}}
}

// Poll drives the receiver state machine against r until a frame is ready
// or the stream runs dry for this tick.
func (rc *Receiver) Poll(r serde.ByteReader) poll.Poll[netcore.Frame] {
	for {
		next, frame, ok := rc.state.poll(rc, r)
		rc.state = next
		if !ok {
			return poll.Pending[netcore.Frame]()
		}
		if frame != nil {
			return poll.Ready(*frame)
		}
		// State transitioned without producing a frame yet (header parsed,
		// data discarded, preamble resynced...); keep driving this tick.
	}
}

// --- SkipPreamble ---

type skipPreambleState struct {
	matched int
}

func (s *skipPreambleState) poll(rc *Receiver, r serde.ByteReader) (receiverState, *netcore.Frame, bool) {
	for {
		b := serde.ReadByte(r)
		if b.IsPending() {
			return s, nil, false
		}
		c := b.Unwrap()
		switch {
		case c == preambleTerm && s.matched >= preambleAACount:
			return &parseHeaderState{}, nil, true
		case c == preambleByte:
			s.matched++
		default:
			s.matched = 0
		}
	}
}

// --- ParseHeader ---

type parseHeaderState struct {
	d headerDeserializer
}

func (s *parseHeaderState) poll(rc *Receiver, r serde.ByteReader) (receiverState, *netcore.Frame, bool) {
	res := s.d.Deserialize(r)
	if res.IsPending() {
		return s, nil, false
	}
	if res.Unwrap() != serde.Ok {
		return &skipPreambleState{}, nil, true
	}

	h := s.d.Result()
	if int(h.Length) > maxPayloadLength {
		return &skipPreambleState{}, nil, true
	}

	dst := linkaddr.SerialAddress(h.Destination)
	src := linkaddr.SerialAddress(h.Source)

	if rc.local == nil {
		rc.local = &dst
		logging.L().Info("serial: learned local address", "address", dst)
	}
	if !rc.local.Equal(dst) {
		return &discardDataState{remaining: int(h.Length)}, nil, true
	}

	if rc.peer == nil {
		rc.peer = &src
		logging.L().Info("serial: learned peer address", "address", src)
	} else if !rc.peer.Equal(src) {
		logging.L().Warn("serial: frame from unrecognized source, discarding", "source", src)
		return &discardDataState{remaining: int(h.Length)}, nil, true
	}

	alloc := rc.pool.Allocate(int(h.Length))
	if alloc.IsPending() {
		// No buffer available for this frame right now; rather than stall
		// the receiver waiting on it, discard the payload and resync.
		return &discardDataState{remaining: int(h.Length)}, nil, true
	}
	handle := alloc.Unwrap()
	return &receiveDataState{
		protocol: netcore.ProtocolNumber(h.Protocol),
		source:   src,
		handle:   handle,
		writer:   handle.Writer(),
		total:    int(h.Length),
	}, nil, true
}

// --- ReceiveData ---

type receiveDataState struct {
	protocol netcore.ProtocolNumber
	source   linkaddr.Address
	handle   *framebuf.Handle
	writer   *framebuf.Writer
	total    int
	written  int
}

func (s *receiveDataState) poll(rc *Receiver, r serde.ByteReader) (receiverState, *netcore.Frame, bool) {
	for s.written < s.total {
		b := serde.ReadByte(r)
		if b.IsPending() {
			return s, nil, false
		}
		s.writer.WriteUnchecked(b.Unwrap())
		s.written++
	}
	// s.handle is not released here: frame.Reader carries its one
	// reference onward to whoever drains the frame from the broker queue.
	frame := netcore.Frame{Protocol: s.protocol, Peer: s.source, Reader: s.handle.Reader()}
	return &skipPreambleState{}, &frame, true
}

// --- DiscardData ---

type discardDataState struct {
	remaining int
}

func (s *discardDataState) poll(rc *Receiver, r serde.ByteReader) (receiverState, *netcore.Frame, bool) {
	for s.remaining > 0 {
		b := serde.ReadByte(r)
		if b.IsPending() {
			return s, nil, false
		}
		s.remaining--
	}
	return &skipPreambleState{}, nil, true
}
