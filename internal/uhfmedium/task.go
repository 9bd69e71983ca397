package uhfmedium

import (
	"github.com/keke1008/meshd/internal/serde"
	"github.com/keke1008/meshd/internal/timeutil"
)

// dispatchResult is a task's handle_response contract (spec §4.6): Handle
// means the task has claimed the response body and will consume it itself;
// Invalid means the scheduler must route the line to a DiscardResponse.
type dispatchResult int

const (
	dispatchInvalid dispatchResult = iota
	dispatchHandled
)

// task is the single main-slot state machine unit: init steps and CSMA
// send both implement it.
type task interface {
	// execute advances the task; done is true once it has produced a
	// terminal result (success or failure — callers inspect task-specific
	// fields before discarding it).
	execute(w serde.ByteWriter, now timeutil.Instant) (done bool)
	// handleResponse offers an already-parsed response line to the task.
	handleResponse(resp response, now timeutil.Instant) dispatchResult
}
