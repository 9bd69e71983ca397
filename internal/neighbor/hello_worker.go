package neighbor

import "github.com/keke1008/meshd/internal/timeutil"

// helloWorkerStage is the periodic hello worker's state (grounded on
// original_source's SendHelloWorker: Interval -> Broadcast -> Unicast,
// collapsed here since this port has one broadcast-capable medium rather
// than an enumerable set of media types).
type helloWorkerStage int

const (
	stageInterval helloWorkerStage = iota
	stageBroadcast
	stageUnicast
)

// helloWorker drives the ~10s keep-alive cycle: once per interval, it
// optionally announces a broadcast Hello, then walks every neighbor due
// for a keep-alive and sends one each, one neighbor per tick so a single
// slow send can't stall the whole cycle.
type helloWorker struct {
	debounce *timeutil.Debounce
	stage    helloWorkerStage
	cursor   *Cursor
}

// poll advances the worker by one step. It is always safe to call every
// tick; most ticks it does nothing until the interval debounce fires.
func (w *helloWorker) poll(now timeutil.Instant, s *Service) {
	if w.stage == stageInterval {
		if !w.debounce.Poll(now) {
			return
		}
		w.stage = stageBroadcast
	}

	if w.stage == stageBroadcast {
		if s.autoSend {
			s.broadcastHello()
		}
		s.table.ResetCursor(w.cursor)
		w.stage = stageUnicast
	}

	if w.stage == stageUnicast {
		for {
			e, ok := s.table.Next(w.cursor)
			if !ok {
				w.stage = stageInterval
				return
			}
			if !e.shouldSendHello(now) {
				continue
			}
			addrs := e.Addresses()
			if len(addrs) == 0 {
				continue
			}
			for _, addr := range addrs {
				s.sendHello(now, addr, e.ID, 0, false)
			}
			return
		}
	}
}
