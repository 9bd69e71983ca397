package neighbor

import (
	"github.com/keke1008/meshd/internal/framebuf"
	"github.com/keke1008/meshd/internal/linkaddr"
	"github.com/keke1008/meshd/internal/linksock"
	"github.com/keke1008/meshd/internal/logging"
	"github.com/keke1008/meshd/internal/metrics"
	"github.com/keke1008/meshd/internal/netcore"
	"github.com/keke1008/meshd/internal/serde"
	"github.com/keke1008/meshd/internal/timeutil"
)

// Service owns the neighbor table and drives the Hello/HelloAck/Goodbye
// exchange and expiration sweep (spec §4.7). It is the only neighbor type
// the daemon's scheduler calls.
type Service struct {
	table *Table
	sock  *linksock.Socket
	pool  *framebuf.Pool

	self     NodeID
	selfCost Cost
	autoSend bool

	notifications notificationRing
	outstanding   outstandingHello

	sweep *timeutil.Debounce
	hello helloWorker
}

// NewService creates a Service bound to self's identity and self-reported
// cost, driving the neighbor table passed in by the caller. The table is
// shared with whatever constructed the broker, so accepting it here
// (rather than owning a private one) lets the broker's broadcast-address
// lookups and this service's own bookkeeping agree on one neighbor set.
// autoDiscovery controls whether the periodic worker broadcasts Hello
// frames on broadcast-capable media (spec §4.7's auto-discovery open
// question) or limits itself to refreshing already-known neighbors.
func NewService(now timeutil.Instant, self NodeID, selfCost Cost, autoDiscovery bool, table *Table, sock *linksock.Socket, pool *framebuf.Pool) *Service {
	s := &Service{
		table:    table,
		sock:     sock,
		pool:     pool,
		self:     self,
		selfCost: selfCost,
		autoSend: autoDiscovery,
		sweep:    timeutil.NewDebounce(now, CheckExpirationInterval),
	}
	s.hello.cursor = s.table.NewCursor()
	s.hello.debounce = timeutil.NewDebounce(now, SendHelloInterval)
	return s
}

// Table exposes the underlying table for read-only queries (route cost
// lookups, discovery's "already a neighbor" fast path).
func (s *Service) Table() *Table { return s.table }

// Poll drains one pending notification, if any.
func (s *Service) Poll() (Notification, bool) { return s.notifications.Poll() }

// Execute runs one scheduler tick: receive and dispatch one frame, sweep
// expired neighbors, then advance the periodic hello worker.
func (s *Service) Execute(now timeutil.Instant) {
	if f := s.sock.PollReceiveFrame(); f.IsReady() {
		s.handleFrame(now, f.Unwrap())
	}

	if s.sweep.Poll(now) {
		s.table.Sweep(now, func(e *Entry) {
			metrics.NeighborExpirations.Inc()
			s.notifications.push(Notification{Kind: NeighborRemoved, ID: e.ID, LinkCost: e.LinkCost})
		})
		metrics.NeighborCount.Set(float64(s.table.Len()))
	}

	s.hello.poll(now, s)
}

func (s *Service) handleFrame(now timeutil.Instant, frame netcore.Frame) {
	// The reader already holds every byte of a delivered frame, so a
	// well-formed frame always finishes deserializing in this single
	// call; Pending here means the declared body ran short, which no
	// further polling will fix.
	var d FrameDeserializer
	result := d.Deserialize(frame.Reader)
	frame.Reader.Release()
	if result.IsPending() || result.Unwrap() != serde.Ok {
		metrics.MalformedFrames.Inc()
		logging.L().Warn("neighbor: malformed frame, dropping")
		return
	}

	parsed := d.Result()
	switch parsed.Kind {
	case FrameHello:
		s.onHello(now, frame.Peer, parsed.Hello, false)
	case FrameHelloAck:
		s.onHello(now, frame.Peer, parsed.Hello, true)
	case FrameGoodbye:
		s.onGoodbye(parsed.Goodbye)
	}
}

func (s *Service) onHello(now timeutil.Instant, via linkaddr.Address, f HelloFrame, ack bool) {
	if f.SenderID.Equal(s.self) {
		return
	}
	result := s.table.AddOrUpdate(now, f.SenderID, f.LinkCost, via)
	switch result {
	case AddFull:
		logging.L().Warn("neighbor: table full, dropping hello", "sender", f.SenderID)
		return
	case AddUpdated:
		metrics.NeighborUpdates.Inc()
		metrics.NeighborCount.Set(float64(s.table.Len()))
		s.notifications.push(Notification{Kind: NeighborUpdated, ID: f.SenderID, LinkCost: f.LinkCost})
	}
	s.outstanding.resolve(f.SenderID)

	if !ack {
		s.sendHello(now, via, f.SenderID, f.LinkCost, true)
	}
}

func (s *Service) onGoodbye(f GoodbyeFrame) {
	if s.table.Remove(f.SenderID) {
		metrics.NeighborCount.Set(float64(s.table.Len()))
		s.notifications.push(Notification{Kind: NeighborRemoved, ID: f.SenderID})
	}
}

// sendHelloFrame builds and enqueues a bare Hello or HelloAck addressed to
// dest, with no neighbor-table bookkeeping. Used both for unicast
// keep-alives (wrapped by sendHello below) and for the broadcast
// announcement, which has no single target neighbor to correlate against.
// linkCost is the value carried in the frame: for a HelloAck it must be the
// link cost echoed back from the Hello being answered (spec §4.7); for an
// unsolicited Hello (keep-alive or broadcast) there is nothing to echo and
// callers pass 0.
func (s *Service) sendHelloFrame(dest linkaddr.Address, linkCost Cost, ack bool) bool {
	ser := NewHelloSerializer(ack, HelloFrame{SenderID: s.self, NodeCost: s.selfCost, LinkCost: linkCost})
	reader, ok := s.buildFrame(ser)
	if !ok {
		return false
	}
	if _, sendErr := s.sock.PollSendFrame(dest, reader); sendErr != linksock.SendErrorNone {
		reader.Release()
		return false
	}
	return true
}

// sendHello builds and enqueues a Hello or HelloAck addressed to dest,
// correlating it against target's outstanding-request and hello-deadline
// bookkeeping. linkCost is only meaningful when ack is true, in which case
// it must be the link cost reported by the Hello being acknowledged.
func (s *Service) sendHello(now timeutil.Instant, dest linkaddr.Address, target NodeID, linkCost Cost, ack bool) {
	if !ack {
		if s.outstanding.suppresses(now, target) {
			return
		}
		s.outstanding.mark(now, target)
	}
	if s.sendHelloFrame(dest, linkCost, ack) {
		s.table.DelayHello(now, target)
	}
}

// broadcastHello announces presence on the UHF medium's broadcast address
// (spec §4.7's auto-discovery path; serial has no broadcast concept). It is
// not acknowledging anything, so it reports no link cost.
func (s *Service) broadcastHello() bool {
	return s.sendHelloFrame(linkaddr.UHFBroadcast, 0, false)
}

// sendGoodbyeTo builds and enqueues a Goodbye frame addressed to dest.
func (s *Service) sendGoodbyeTo(dest linkaddr.Address) {
	ser := NewGoodbyeSerializer(GoodbyeFrame{SenderID: s.self})
	reader, ok := s.buildFrame(ser)
	if !ok {
		return
	}
	if _, sendErr := s.sock.PollSendFrame(dest, reader); sendErr != linksock.SendErrorNone {
		reader.Release()
	}
}

// SendGoodbye announces local departure to every known neighbor's first
// known address. Called once at shutdown.
func (s *Service) SendGoodbye() {
	s.table.ForEach(func(e *Entry) {
		addrs := e.Addresses()
		if len(addrs) == 0 {
			return
		}
		s.sendGoodbyeTo(addrs[0])
	})
}

// buildFrame allocates a buffer sized to ser and drives it to completion.
// A local buffer is always writable, so this never stalls on Pending; it
// only fails if the pool itself is exhausted.
func (s *Service) buildFrame(ser serde.Serializer) (*framebuf.Reader, bool) {
	alloc := s.pool.Allocate(ser.SerializedLength())
	if alloc.IsPending() {
		logging.L().Warn("neighbor: no buffer available for outgoing frame")
		return nil, false
	}
	handle := alloc.Unwrap()
	w := handle.Writer()
	for !ser.Serialize(w).IsReady() {
	}
	return handle.Reader(), true
}
