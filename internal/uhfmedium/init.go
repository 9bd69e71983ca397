package uhfmedium

import (
	"github.com/keke1008/meshd/internal/logging"
	"github.com/keke1008/meshd/internal/serde"
	"github.com/keke1008/meshd/internal/timeutil"
)

type initStep int

const (
	stepRION initStep = iota
	stepSN
	stepEI
	stepDone
)

// InitSequencer runs the modem's five-step bring-up (spec §4.6): enable
// route-info, query serial number, derive the local modem id, set the
// equipment id, then publish the id. Any unexpected response restarts the
// whole sequence from step one.
type InitSequencer struct {
	step             initStep
	sender           *literalSender
	awaitingResponse bool
	localID          byte
}

func NewInitSequencer() *InitSequencer { return &InitSequencer{} }

// LocalID returns the derived modem id once the sequence has completed.
func (s *InitSequencer) LocalID() (byte, bool) {
	return s.localID, s.step == stepDone
}

func (s *InitSequencer) commandForStep() string {
	switch s.step {
	case stepRION:
		return commandRION()
	case stepSN:
		return commandSN()
	case stepEI:
		return commandEI(s.localID)
	default:
		return ""
	}
}

func (s *InitSequencer) execute(w serde.ByteWriter, now timeutil.Instant) bool {
	if s.step == stepDone {
		return true
	}
	if s.sender == nil {
		s.sender = newLiteralSender(s.commandForStep())
	}
	if !s.awaitingResponse {
		if !s.sender.poll(w) {
			return false
		}
		s.awaitingResponse = true
	}
	return false
}

func (s *InitSequencer) handleResponse(resp response, now timeutil.Instant) dispatchResult {
	switch s.step {
	case stepRION:
		if resp.Code != RespRouteInfo {
			return s.restart("unexpected response to @RION")
		}
		s.step = stepSN
	case stepSN:
		if resp.Code != RespSerial || len(resp.Body) < 2 {
			return s.restart("unexpected response to @SN")
		}
		s.localID = lowByteOfHex(resp.Body)
		s.step = stepEI
	case stepEI:
		if resp.Code != RespEquipmentID {
			return s.restart("unexpected response to @EI")
		}
		s.step = stepDone
	default:
		return dispatchInvalid
	}
	s.sender = nil
	s.awaitingResponse = false
	return dispatchHandled
}

func (s *InitSequencer) restart(reason string) dispatchResult {
	logging.L().Warn("uhf: init sequence restarting", "reason", reason)
	s.step = stepRION
	s.sender = nil
	s.awaitingResponse = false
	return dispatchInvalid
}

func hexNibbleFromASCII(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return 0
	}
}

// lowByteOfHex derives the modem id from the low two hex-ASCII characters
// of the serial number body (spec: "low two bytes of the serial number").
func lowByteOfHex(body []byte) byte {
	tail := body[len(body)-2:]
	return hexNibbleFromASCII(tail[0])<<4 | hexNibbleFromASCII(tail[1])
}
