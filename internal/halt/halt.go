// Package halt provides the contract-violation abort hook the spec calls
// for in place of the original firmware's FASSERT/logger::halt: a writer
// cursor over-append, a cursor misuse, or any other invariant break is not
// recoverable and must stop the process rather than silently corrupt
// shared pool state.
package halt

import (
	"fmt"

	"github.com/keke1008/meshd/internal/logging"
)

// AbortFunc is called by Assert after the violation has been logged.
// Tests may replace it to observe a contract violation without killing
// the test binary.
var AbortFunc = func() { panic("meshd: contract violation") }

// Assert logs and aborts the process if cond is false.
func Assert(cond bool, format string, args ...any) {
	if cond {
		return
	}
	msg := fmt.Sprintf(format, args...)
	logging.L().Error("contract_violation", "message", msg)
	AbortFunc()
}
