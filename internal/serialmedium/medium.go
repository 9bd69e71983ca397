package serialmedium

import (
	"github.com/keke1008/meshd/internal/framebuf"
	"github.com/keke1008/meshd/internal/linkaddr"
	"github.com/keke1008/meshd/internal/linksock"
	"github.com/keke1008/meshd/internal/metrics"
	"github.com/keke1008/meshd/internal/serde"
)

// Driver ties a Receiver and Sender to a broker's serial protocol queue and
// a concrete byte stream (normally internal/hwserial's tarm/serial
// adapter). It is the only serialmedium type the daemon's scheduler calls.
type Driver struct {
	stream   serde.ByteReader
	writer   serde.ByteWriter
	broker   *linksock.Broker
	receiver *Receiver
	sender   *Sender
}

// NewDriver wires a Receiver/Sender pair to stream and to the broker.
func NewDriver(stream serde.ByteReader, writer serde.ByteWriter, broker *linksock.Broker, pool *framebuf.Pool, local *linkaddr.Address) *Driver {
	return &Driver{
		stream:   stream,
		writer:   writer,
		broker:   broker,
		receiver: NewReceiver(pool, local),
		sender:   NewSender(local),
	}
}

// Execute runs one scheduler tick: it tries to receive a frame and, if the
// sender is idle, pulls the next queued frame bound for this medium.
func (d *Driver) Execute() {
	if f := d.receiver.Poll(d.stream); f.IsReady() {
		frame := f.Unwrap()
		metrics.SerialRxFrames.Inc()
		if !d.broker.DeliverFrame(frame) {
			metrics.IncBrokerDrop(frame.Protocol.String(), "rx")
			frame.Reader.Release()
		}
	}

	if d.sender.Idle() {
		if frame, ok := d.broker.NextOutgoingForMedium(linkaddr.TypeSerial); ok {
			metrics.SerialTxFrames.Inc()
			// The receiver may have learned the local address since the
			// last send; the sender uses it as the header's source field.
			d.sender.local = d.receiver.local
			d.sender.Send(frame.Protocol, frame.Peer, frame)
		}
	}
	d.sender.Poll(d.writer)
}
