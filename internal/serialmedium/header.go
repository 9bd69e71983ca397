// Package serialmedium implements the preamble-framed serial media driver
// (spec §4.5): a receiver state machine that resyncs on any byte prefix
// that isn't a valid preamble, and a sender that drains the broker's serial
// TX queue.
package serialmedium

import (
	"github.com/keke1008/meshd/internal/poll"
	"github.com/keke1008/meshd/internal/serde"
)

// preamble is the 8-byte sync pattern: seven 0xAA bytes then one 0xAB
// terminator.
const (
	preambleByte     = 0xAA
	preambleTerm     = 0xAB
	preambleAACount  = 7
	headerLen        = 4
	maxPayloadLength = 254
)

// header is the 4-byte frame header: protocol, source, destination, length
// (spec §4.5, wire order proto|src|dst|len).
type header struct {
	Protocol    byte
	Source      byte
	Destination byte
	Length      byte
}

type headerDeserializer struct {
	fields  [headerLen]serde.Uint8Deserializer
	n       int
	invalid bool
}

func (d *headerDeserializer) Deserialize(r serde.ByteReader) poll.Poll[serde.Result] {
	for d.n < headerLen {
		res := d.fields[d.n].Deserialize(r)
		if res.IsPending() {
			return res
		}
		d.n++
	}
	return poll.Ready(serde.Ok)
}

func (d *headerDeserializer) Result() header {
	return header{
		Protocol:    d.fields[0].Result(),
		Source:      d.fields[1].Result(),
		Destination: d.fields[2].Result(),
		Length:      d.fields[3].Result(),
	}
}
