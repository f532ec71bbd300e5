//go:build tinygo

package core

import "runtime/interrupt"

// State is the saved interrupt mask of the running core.
type State = interrupt.State

// disableInterrupts masks interrupts on the running core so the trace ring
// can be updated from both foreground and handler context.
func disableInterrupts() State {
	return interrupt.Disable()
}

func restoreInterrupts(state State) {
	interrupt.Restore(state)
}
