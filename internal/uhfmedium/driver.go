package uhfmedium

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

// taskTimeout is the 5-second deadline applied to every main-slot task
// (spec §4.6/§5).
const taskTimeout = timeutil.Duration(5000)

// Driver owns the single task slot, the response-line reader, and the
// bookkeeping for the single-slot scheduler: clear the main task on
// timeout, emplace the next send task when idle, poll the main task, then
// drain one response line and dispatch it. There is no separate receive
// task: a DR line is turned into a frame inline when it is dispatched,
// without interrupting the main task or resetting its timeout.
type Driver struct {
	stream serde.ByteReader
	writer serde.ByteWriter
	broker *linksock.Broker
	pool   *framebuf.Pool
	rand   timeutil.Rand

	lines *lineReceiver

	local   *linkaddr.Address
	init    *InitSequencer
	initted bool

	mainTask     task
	mainDeadline timeutil.Instant
	mainActive   bool
}

// NewDriver creates a Driver that runs the init sequence before accepting
// ordinary sends.
func NewDriver(stream serde.ByteReader, writer serde.ByteWriter, broker *linksock.Broker, pool *framebuf.Pool, rand timeutil.Rand) *Driver {
	return &Driver{
		stream: stream,
		writer: writer,
		broker: broker,
		pool:   pool,
		rand:   rand,
		lines:  newLineReceiver(),
		init:   NewInitSequencer(),
	}
}

// Execute runs one scheduler tick. The step numbers below start at 2:
// there is no receive-task step, since DR lines are handled in step 5.
func (d *Driver) Execute(now timeutil.Instant) {
	// Step 2: clear the main task on timeout.
	if d.mainActive && now.AtOrAfter(d.mainDeadline) {
		logging.L().Warn("uhf: main task timed out")
		d.mainTask = nil
		d.mainActive = false
	}

	// Step 3: emplace work when the slot is empty.
	if !d.mainActive {
		if !d.initted {
			d.mainTask = d.init
			d.mainActive = true
			d.mainDeadline = now.Add(taskTimeout)
		} else if frame, ok := d.broker.NextOutgoingForMedium(linkaddr.TypeUHF); ok {
			dest := frame.Peer.Bytes()
			destID := byte(0)
			if len(dest) > 0 {
				destID = dest[0]
			}
			var payload []byte
			for !frame.Reader.IsAllRead() {
				payload = append(payload, frame.Reader.ReadUnchecked())
			}
			frame.Reader.Release()
			d.mainTask = NewSendTask(payload, byte(frame.Protocol), destID, d.rand)
			d.mainActive = true
			d.mainDeadline = now.Add(taskTimeout)
		}
	}

	// Step 4: poll the main task.
	if d.mainActive {
		if d.mainTask.execute(d.writer, now) {
			if d.init != nil && d.mainTask == d.init {
				if id, ok := d.init.LocalID(); ok {
					addr := linkaddr.UHFAddress(id)
					d.local = &addr
					d.initted = true
					logging.L().Info("uhf: initialization complete", "local_address", addr)
				}
			}
			if send, ok := d.mainTask.(*SendTask); ok {
				metrics.UHFCSMARetries.Add(float64(send.Attempts))
				if send.Result() != nil {
					metrics.UHFCSMAFailures.Inc()
					logging.L().Warn("uhf: send failed", "error", send.Result())
				} else {
					metrics.UHFTxFrames.Inc()
				}
			}
			d.mainTask = nil
			d.mainActive = false
		}
	}

	// Step 5: drain and dispatch one response line.
	resp, valid, ok := d.lines.poll(d.stream)
	if !ok {
		return
	}
	if !valid {
		return
	}
	if resp.Code == RespDataRx {
		d.handleReceive(resp)
		return
	}
	if d.mainActive && d.mainTask.handleResponse(resp, now) == dispatchHandled {
		return
	}
	// No active task claimed this response. The line reader already
	// consumed the whole line, so nothing further needs discarding; this
	// is the DiscardResponse fallback of spec §4.6 degenerating to a
	// no-op once lines are read in full rather than byte-by-byte.
	logging.L().Debug("uhf: discarding unclaimed response", "code", resp.Code)
}

func (d *Driver) handleReceive(resp response) {
	protocol, payload, source, ok := parseDRBody(resp.Body)
	if !ok {
		logging.L().Warn("uhf: malformed DR response, dropping")
		return
	}
	alloc := d.pool.Allocate(len(payload))
	if alloc.IsPending() {
		logging.L().Warn("uhf: no buffer available for received frame, dropping")
		return
	}
	handle := alloc.Unwrap()
	w := handle.Writer()
	for _, b := range payload {
		w.WriteUnchecked(b)
	}
	frame := netcore.Frame{
		Protocol: netcore.ProtocolNumber(protocol),
		Peer:     linkaddr.UHFAddress(source),
		Reader:   handle.Reader(),
	}
	metrics.UHFRxFrames.Inc()
	// handle is not released here: frame.Reader carries the handle's one
	// reference onward, and whoever drains it from the broker queue owns
	// the call to Reader.Release (see netcore.Frame's doc comment).
	if !d.broker.DeliverFrame(frame) {
		metrics.IncBrokerDrop(frame.Protocol.String(), "rx")
		frame.Reader.Release()
	}
}
