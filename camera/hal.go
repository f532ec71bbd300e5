package camera

// Hardware Abstraction Layer for the capture pipeline.
// Platform-specific implementations are supplied through PlatformConfig.

// PIO is one programmable I/O block with four state machines.
type PIO interface {
	// BlockIndex returns 0 for PIO0 and 1 for PIO1.
	BlockIndex() uint8

	// AddProgram loads instructions, relocating JMP targets, and returns the
	// load offset. origin < 0 places the program anywhere.
	AddProgram(instructions []uint16, origin int8) (uint8, error)

	// ClearProgramSection frees instruction memory previously returned by AddProgram.
	ClearProgramSection(offset, length uint8)

	// WriteInstruction overwrites one instruction slot.
	WriteInstruction(addr uint8, instr uint16)

	// ConfigureInputs routes count consecutive GPIOs starting at base to the
	// block as inputs.
	ConfigureInputs(base, count uint8)

	// SetEnabled enables or disables every state machine in mask.
	SetEnabled(mask uint8, enabled bool)

	// Restart resets the internal state of every state machine in mask.
	Restart(mask uint8)

	// ClearFIFOs empties both FIFOs of one state machine.
	ClearFIFOs(sm uint8)

	// Init configures a state machine and jumps it to pc. It stays disabled.
	Init(sm uint8, pc uint8, cfg StateMachineConfig)

	// Put blocks until the TX FIFO has room, then pushes v.
	Put(sm uint8, v uint32)

	// PC returns the current program counter of a state machine.
	PC(sm uint8) uint8

	// RxFIFOAddr returns the bus address of a state machine's RX FIFO register.
	RxFIFOAddr(sm uint8) uintptr

	// RxDREQ returns the DMA request line paced by a state machine's RX FIFO.
	RxDREQ(sm uint8) uint8

	// SetInterruptEnabled routes state machine IRQ flag to the block's
	// system interrupt line 0 and enables or disables that line.
	SetInterruptEnabled(flag uint8, enabled bool)

	// ClearInterrupt acknowledges state machine IRQ flag.
	ClearInterrupt(flag uint8)
}

// DMA is the platform DMA controller.
type DMA interface {
	// Claim reserves a specific channel.
	Claim(ch uint8) error

	// ClaimUnused reserves any free channel.
	ClaimUnused() (uint8, error)

	// Unclaim releases a channel.
	Unclaim(ch uint8)

	// Start configures a channel and triggers it. The channel then waits on
	// its DREQ and moves count transfers from src into dst.
	Start(ch uint8, cfg DMAConfig, dst []byte, src uintptr, count uint32)

	// Busy reports whether the channel still has transfers outstanding.
	Busy(ch uint8) bool

	// Abort stops the channel and waits until in-flight transfers drain.
	Abort(ch uint8)
}

// Clock drives the sensor's XCLK input.
type Clock interface {
	// StartGPOut outputs the system clock divided by divider on pin.
	StartGPOut(pin uint8, divider uint32) error
}

// TransferSize is the width of one DMA transfer.
type TransferSize uint8

const (
	Transfer8 TransferSize = iota
	Transfer16
	Transfer32
)

// Bytes returns the transfer width in bytes.
func (s TransferSize) Bytes() uint8 {
	return 1 << s
}

// DMAConfig is the per-plane channel configuration.
type DMAConfig struct {
	Size           TransferSize
	ReadIncrement  bool
	WriteIncrement bool
	DREQ           uint8
}

// StateMachineConfig is a platform-neutral state machine configuration.
// Wrap and WrapTarget are absolute instruction addresses.
type StateMachineConfig struct {
	InBase        uint8 // First input pin
	InCount       uint8
	WrapTarget    uint8
	Wrap          uint8
	ShiftRight    bool // ISR shift direction
	Autopush      bool
	PushThreshold uint8 // Bits, 1..32
	JoinRX        bool  // Join both FIFOs into an 8-entry RX FIFO
	ClkDivInt     uint16
}
