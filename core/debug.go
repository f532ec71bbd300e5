package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TraceEvent captures a capture-pipeline event for post-mortem analysis.
// Events are recorded from both foreground and interrupt context.
type TraceEvent struct {
	Kind   uint8  // Event kind code
	Source uint8  // PIO block index of the camera that recorded it
	Seq    uint32 // Monotonic sequence number
	Value1 uint32 // Context-dependent value
	Value2 uint32 // Context-dependent value
}

// Event kind codes
const (
	EvtInit      = 1 // Camera initialized (v1 = DMA channel mask)
	EvtConfigure = 2 // Hardware reconfigured (v1 = format, v2 = width<<16|height)
	EvtArm       = 3 // DMA channels armed (v1 = planes, v2 = plane 0 transfer count)
	EvtTrigger   = 4 // Frame program triggered (v1 = rows, v2 = chunks per row)
	EvtComplete  = 5 // Frame completion interrupt handled a request
	EvtSpurious  = 6 // Frame interrupt with nothing pending
	EvtBusy      = 7 // Capture rejected, request already in flight
	EvtTerm      = 8 // Camera terminated (v1 = 1 if a request was dropped)
)

const (
	TraceRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Trace ring buffer (non-blocking, for post-mortem)
	traceRing     [TraceRingSize]TraceEvent
	traceRingHead uint8
	traceSeq      uint32

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer.
// Never call it from interrupt context; use RecordEvent there.
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output (non-blocking)
// Returns immediately even if channel is full (drops message)
func DebugAsync(msg string) {
	if debugChan != nil {
		select {
		case debugChan <- msg:
		default:
		}
	}
}

// RecordEvent captures an event in the trace ring.
// It never blocks or allocates, so interrupt handlers may call it.
func RecordEvent(kind, source uint8, value1, value2 uint32) {
	state := disableInterrupts()
	idx := traceRingHead
	traceSeq++
	traceRing[idx] = TraceEvent{
		Kind:   kind,
		Source: source,
		Seq:    traceSeq,
		Value1: value1,
		Value2: value2,
	}
	traceRingHead = (idx + 1) % TraceRingSize
	restoreInterrupts(state)
}

// Events returns a copy of the recorded events, oldest first.
func Events() []TraceEvent {
	state := disableInterrupts()
	ring := traceRing
	start := traceRingHead
	restoreInterrupts(state)

	events := make([]TraceEvent, 0, TraceRingSize)
	for i := uint8(0); i < TraceRingSize; i++ {
		evt := ring[(start+i)%TraceRingSize]
		if evt.Kind == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	return events
}

// EventName returns a short name for an event kind.
func EventName(kind uint8) string {
	switch kind {
	case EvtInit:
		return "INIT"
	case EvtConfigure:
		return "CONFIGURE"
	case EvtArm:
		return "ARM"
	case EvtTrigger:
		return "TRIGGER"
	case EvtComplete:
		return "COMPLETE"
	case EvtSpurious:
		return "SPURIOUS"
	case EvtBusy:
		return "BUSY!"
	case EvtTerm:
		return "TERM"
	default:
		return "UNKNOWN"
	}
}

// DumpEvents outputs the trace ring (call on shutdown/error).
func DumpEvents() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TRACE] === Trace Ring Dump ===")
	for _, evt := range Events() {
		debugPrintln("[TRACE] " + EventName(evt.Kind) +
			" pio=" + Itoa(int(evt.Source)) +
			" seq=" + Utoa(evt.Seq) +
			" v1=" + Hex32(evt.Value1) +
			" v2=" + Utoa(evt.Value2))
	}
	debugPrintln("[TRACE] === End Dump ===")
}

// ClearEvents clears the trace ring
func ClearEvents() {
	state := disableInterrupts()
	for i := range traceRing {
		traceRing[i] = TraceEvent{}
	}
	traceRingHead = 0
	traceSeq = 0
	restoreInterrupts(state)
}
