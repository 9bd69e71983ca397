package serialmedium

import (
	"github.com/keke1008/meshd/internal/framebuf"
	"github.com/keke1008/meshd/internal/linkaddr"
	"github.com/keke1008/meshd/internal/netcore"
	"github.com/keke1008/meshd/internal/poll"
	"github.com/keke1008/meshd/internal/serde"
)

// Sender drains the broker's serial TX queue and streams preamble, header,
// and payload out to the wire one byte at a time (spec §4.5).
type Sender struct {
	local *linkaddr.Address
	state senderState
}

// NewSender creates a Sender bound to the driver's learned or configured
// local address, used as the header's source field.
func NewSender(local *linkaddr.Address) *Sender {
	return &Sender{local: local}
}

type senderState interface {
	poll(w serde.ByteWriter) (next senderState, ok bool)
}

// Idle reports whether the sender has no frame in flight and can accept a
// new one via Send.
func (s *Sender) Idle() bool { return s.state == nil }

// Poll drives the frame in flight (if any) out to w.
func (s *Sender) Poll(w serde.ByteWriter) poll.Void {
	if s.state == nil {
		return poll.ReadyVoid
	}
	next, ok := s.state.poll(w)
	s.state = next
	if !ok {
		return poll.PendingVoid
	}
	return poll.ReadyVoid
}

// Send begins streaming f out. dest must already be the frame's serial
// destination, converted from the generic link address by the caller (a
// frame whose address isn't serial-convertible is never handed here).
func (s *Sender) Send(protocol netcore.ProtocolNumber, dest linkaddr.Address, f netcore.Frame) {
	srcByte := byte(0)
	if s.local != nil {
		srcByte = s.local.Body[0]
	}
	h := header{Protocol: byte(protocol), Source: srcByte, Destination: dest.Body[0], Length: byte(f.Reader.Remaining())}
	s.state = &sendPreambleState{header: h, payload: f.Reader}
}

const preambleFrameLen = preambleAACount + 1

type sendPreambleState struct {
	sent    int
	header  header
	payload *framebuf.Reader
}

func (s *sendPreambleState) poll(w serde.ByteWriter) (senderState, bool) {
	for s.sent < preambleFrameLen {
		b := byte(preambleByte)
		if s.sent == preambleAACount {
			b = preambleTerm
		}
		r := serde.WriteByte(w, b)
		if r.IsPending() {
			return s, false
		}
		s.sent++
	}
	return &sendHeaderState{header: s.header, payload: s.payload}, true
}

type sendHeaderState struct {
	fields  [4]byte
	sent    int
	started bool
	header  header
	payload *framebuf.Reader
}

func (s *sendHeaderState) poll(w serde.ByteWriter) (senderState, bool) {
	if !s.started {
		s.fields = [4]byte{s.header.Protocol, s.header.Source, s.header.Destination, s.header.Length}
		s.started = true
	}
	for s.sent < len(s.fields) {
		r := serde.WriteByte(w, s.fields[s.sent])
		if r.IsPending() {
			return s, false
		}
		s.sent++
	}
	return &sendPayloadState{payload: s.payload}, true
}

type sendPayloadState struct {
	payload *framebuf.Reader
}

func (s *sendPayloadState) poll(w serde.ByteWriter) (senderState, bool) {
	for !s.payload.IsAllRead() {
		if w.PollWritable(1).IsPending() {
			return s, false
		}
		w.WriteUnchecked(s.payload.ReadUnchecked())
	}
	s.payload.Release()
	return nil, true
}
