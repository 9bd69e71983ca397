// Package uhfmedium implements the UHF modem media driver: the ASCII
// command/response protocol, the five-step initialization sequence, the
// three-step CSMA send task, inline DR receive, and the single task-slot
// scheduler (spec §4.6).
package uhfmedium

import (
	"fmt"

	"github.com/keke1008/meshd/internal/serde"
)

// Response codes the modem can send (spec §4.6).
const (
	RespError       = "ER"
	RespRouteInfo   = "RI"
	RespSerial      = "SN"
	RespEquipmentID = "EI"
	RespCarrierDone = "CS"
	RespDataTx      = "DT"
	RespDataRx      = "DR"
	RespInterfere   = "IR"
)

const (
	maxLineLength  = 280 // generous bound on any single modem response line
	responseBodyEn = "EN"
	responseBodyDn = "DN"
)

// protocolSize is net::frame::PROTOCOL_SIZE from the original: the @DT/DR
// length field (HH) counts the protocol byte in addition to the payload,
// not the payload alone.
const protocolSize = 1

var hexDigits = "0123456789ABCDEF"

// encodeHexASCII renders b as 2*len(b) uppercase hex-ASCII characters, one
// pair per byte, matching the modem's textual command protocol (the same
// convention commandEI and the length/protocol fields already use).
func encodeHexASCII(b []byte) []byte {
	out := make([]byte, 0, 2*len(b))
	for _, c := range b {
		out = append(out, hexDigits[c>>4], hexDigits[c&0xF])
	}
	return out
}

// decodeHexASCII parses 2*n hex-ASCII characters from b into n raw bytes.
func decodeHexASCII(b []byte) []byte {
	out := make([]byte, len(b)/2)
	for i := range out {
		out[i] = hexNibbleFromASCII(b[2*i])<<4 | hexNibbleFromASCII(b[2*i+1])
	}
	return out
}

// response is one parsed `*XX=body` line.
type response struct {
	Code string
	Body []byte
}

func parseResponseLine(line []byte) (response, bool) {
	if len(line) < 4 || line[0] != '*' || line[3] != '=' {
		return response{}, false
	}
	return response{Code: string(line[1:3]), Body: line[4:]}, true
}

// lineReceiver wraps serde.LineDeserializer, resetting itself to parse the
// next line once a complete one has been consumed.
type lineReceiver struct {
	d *serde.LineDeserializer
}

func newLineReceiver() *lineReceiver {
	return &lineReceiver{d: serde.NewLineDeserializer(maxLineLength)}
}

// poll returns the parsed response once a full line has arrived, resetting
// for the next one. ok is false while more bytes are needed.
func (lr *lineReceiver) poll(r serde.ByteReader) (resp response, valid bool, ok bool) {
	res := lr.d.Deserialize(r)
	if res.IsPending() {
		return response{}, false, false
	}
	line := lr.d.Result()
	lr.d = serde.NewLineDeserializer(maxLineLength)
	if res.Unwrap() != serde.Ok {
		return response{}, false, true
	}
	resp, valid = parseResponseLine(line)
	return resp, valid, true
}

// literalSender streams a precomputed byte slice out to a ByteWriter,
// resumable across Pending writes. Used for every fixed or formatted
// command the driver sends (@RION, @SN, @EI.., @CS, @DT..).
type literalSender struct {
	bytes []byte
	sent  int
}

func newLiteralSender(s string) *literalSender {
	return &literalSender{bytes: []byte(s)}
}

func (ls *literalSender) poll(w serde.ByteWriter) bool {
	for ls.sent < len(ls.bytes) {
		r := serde.WriteByte(w, ls.bytes[ls.sent])
		if r.IsPending() {
			return false
		}
		ls.sent++
	}
	return true
}

func commandRION() string { return "@RION\r\n" }
func commandSN() string   { return "@SN\r\n" }
func commandEI(id byte) string {
	return fmt.Sprintf("@EI%02X\r\n", id)
}
func commandCS() string { return "@CS\r\n" }
func commandDT(payload []byte, protocol byte, dest byte) string {
	return fmt.Sprintf("@DT%02X%02X%s/R%02X\r\n", len(payload)+protocolSize, protocol, encodeHexASCII(payload), dest)
}
