package uhfmedium

import (
	"time"

	"github.com/keke1008/meshd/internal/logging"
	"github.com/keke1008/meshd/internal/netcore"
	"github.com/keke1008/meshd/internal/serde"
	"github.com/keke1008/meshd/internal/timeutil"
)

const (
	maxCSRetries = 15
	maxIRRetries = 10
	irWaitMillis = 20
)

type sendPhase int

const (
	phasePreJitter sendPhase = iota
	phaseCarrierSense
	phaseSendData
	phaseWaitIR
	phaseDone
)

// SendTask is the three-step CSMA send state machine from spec §4.6: an
// unconditional pre-jitter, carrier sense with bounded backoff retries,
// the data transmission itself, then a short wait for an interference
// report that would mean the send must be retried from carrier sense.
type SendTask struct {
	payload  []byte
	protocol byte
	dest     byte
	rand     timeutil.Rand

	phase      sendPhase
	preJitter  timeutil.Delay
	jitterSet  bool
	waiter     *timeutil.CSMAWaiter
	waiting    bool
	csAttempts int
	irAttempts int

	sender       *literalSender
	awaitingResp bool
	irDeadline   timeutil.Instant

	done bool
	err  error
	// Attempts surfaces the number of CSMA retries performed, for
	// logging/metrics (spec's "supplemented" diagnostics, not protocol
	// behavior — see the carrier-sense retry counter in original_source).
	Attempts int
}

func NewSendTask(payload []byte, protocol, dest byte, rand timeutil.Rand) *SendTask {
	return &SendTask{payload: payload, protocol: protocol, dest: dest, rand: rand}
}

// Result reports the terminal outcome once execute has returned done.
func (t *SendTask) Result() error { return t.err }

func (t *SendTask) execute(w serde.ByteWriter, now timeutil.Instant) bool {
	switch t.phase {
	case phasePreJitter:
		if !t.jitterSet {
			t.preJitter = timeutil.NewDelay(now, timeutil.Millis(uint32(t.rand.GenUint8(0, 100))))
			t.jitterSet = true
		}
		if !t.preJitter.Poll(now) {
			return false
		}
		t.phase = phaseCarrierSense
		return false

	case phaseCarrierSense:
		return t.executeCommand(w, now, commandCS)

	case phaseSendData:
		return t.executeCommand(w, now, func() string {
			return commandDT(t.payload, t.protocol, t.dest)
		})

	case phaseWaitIR:
		if now.AtOrAfter(t.irDeadline) {
			t.done = true
			t.phase = phaseDone
			return true
		}
		return false
	}
	return true
}

// executeCommand waits out any armed retry backoff, then streams the
// command (built lazily) and waits for handleResponse to advance the
// phase.
func (t *SendTask) executeCommand(w serde.ByteWriter, now timeutil.Instant, build func() string) bool {
	if t.waiting {
		if !t.waiter.Poll(now) {
			return false
		}
		t.waiting = false
		t.waiter = nil
	}
	if t.sender == nil && !t.awaitingResp {
		t.sender = newLiteralSender(build())
	}
	if t.sender != nil {
		if !t.sender.poll(w) {
			return false
		}
		t.sender = nil
		t.awaitingResp = true
	}
	return false
}

func (t *SendTask) handleResponse(resp response, now timeutil.Instant) dispatchResult {
	switch t.phase {
	case phaseCarrierSense:
		if resp.Code != RespCarrierDone {
			return dispatchInvalid
		}
		t.awaitingResp = false
		if string(resp.Body) == responseBodyEn {
			t.phase = phaseSendData
			return dispatchHandled
		}
		t.csAttempts++
		t.Attempts++
		if t.csAttempts >= maxCSRetries {
			t.err = netcore.ErrCSFailure
			t.done = true
			t.phase = phaseDone
			logging.L().Warn("uhf: carrier sense failed after max retries", "attempts", t.csAttempts)
			return dispatchHandled
		}
		t.armRetry(now, 50, 100)
		return dispatchHandled

	case phaseSendData:
		if resp.Code != RespDataTx {
			return dispatchInvalid
		}
		t.awaitingResp = false
		t.phase = phaseWaitIR
		t.irDeadline = now.Add(timeutil.Millis(irWaitMillis))
		return dispatchHandled

	case phaseWaitIR:
		if resp.Code != RespInterfere {
			return dispatchInvalid
		}
		t.awaitingResp = false
		t.irAttempts++
		if t.irAttempts >= maxIRRetries {
			t.err = netcore.ErrCSFailure
			t.done = true
			t.phase = phaseDone
			logging.L().Warn("uhf: send aborted after max interference retries", "attempts", t.irAttempts)
			return dispatchHandled
		}
		t.phase = phaseCarrierSense
		return dispatchHandled
	}
	return dispatchInvalid
}

// armRetry sets up a uniformly jittered [loMs, hiMs) backoff before the
// carrier-sense command is resent.
func (t *SendTask) armRetry(now timeutil.Instant, loMs, hiMs uint8) {
	policy := &timeutil.CSMABackOff{Rand: t.rand, Lo: time.Duration(loMs) * time.Millisecond, Hi: time.Duration(hiMs) * time.Millisecond}
	t.waiter = timeutil.NewCSMAWaiter(policy)
	t.waiter.Arm(now)
	t.waiting = true
}
