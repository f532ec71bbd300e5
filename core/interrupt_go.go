//go:build !tinygo

package core

import "sync"

// State is a placeholder for interrupt state on regular Go
type State uintptr

// On regular Go, fake interrupt handlers run on their own goroutines, so a
// mutex stands in for masking them.
var interruptMu sync.Mutex

func disableInterrupts() State {
	interruptMu.Lock()
	return 0
}

func restoreInterrupts(state State) {
	interruptMu.Unlock()
}
