package camera

import (
	"errors"
	"runtime"
	"sync"
	"time"

	"picocam/drivers/ov7670"
)

// fakeSCCB answers like a sensor register file.
type fakeSCCB struct {
	mu   sync.Mutex
	regs [256]uint8
	ptr  uint8
	fail error
}

func newFakeSCCB() *fakeSCCB {
	f := &fakeSCCB{}
	f.regs[ov7670.RegPID] = ov7670.ProductID
	return f
}

func (f *fakeSCCB) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	if addr != ov7670.Address {
		return errors.New("nack")
	}
	if len(w) > 0 {
		f.ptr = w[0]
	}
	if len(w) > 1 {
		f.regs[w[0]] = w[1]
	}
	for i := range r {
		r[i] = f.regs[f.ptr]
	}
	return nil
}

func (f *fakeSCCB) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return f.Tx(uint16(addr), []byte{r}, buf)
}

func (f *fakeSCCB) WriteRegister(addr uint8, r uint8, buf []byte) error {
	return f.Tx(uint16(addr), append([]byte{r}, buf...), nil)
}

func (f *fakeSCCB) reg(r uint8) uint8 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.regs[r]
}

// fakeClock records the GPOUT request.
type fakeClock struct {
	pin     uint8
	divider uint32
	started bool
	fail    error
}

func (c *fakeClock) StartGPOut(pin uint8, divider uint32) error {
	if c.fail != nil {
		return c.fail
	}
	c.pin, c.divider, c.started = pin, divider, true
	return nil
}

// fakeChannel is one DMA channel. A started channel stays busy until the
// fake PIO fills it, which also checks the transfer programming.
type fakeChannel struct {
	claimed bool
	busy    bool
	cfg     DMAConfig
	dst     []byte
	src     uintptr
	count   uint32
	starts  int
	aborts  int
}

type fakeDMA struct {
	mu       sync.Mutex
	ch       [12]fakeChannel
	reserved uint16 // channels claimed by someone else
}

func (d *fakeDMA) Claim(ch uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(ch) >= len(d.ch) || d.ch[ch].claimed || d.reserved&(1<<ch) != 0 {
		return errors.New("channel in use")
	}
	d.ch[ch].claimed = true
	return nil
}

func (d *fakeDMA) ClaimUnused() (uint8, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.ch {
		if !d.ch[i].claimed && d.reserved&(1<<i) == 0 {
			d.ch[i].claimed = true
			return uint8(i), nil
		}
	}
	return 0, errors.New("no free channel")
}

func (d *fakeDMA) Unclaim(ch uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ch[ch].claimed = false
}

func (d *fakeDMA) Start(ch uint8, cfg DMAConfig, dst []byte, src uintptr, count uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := &d.ch[ch]
	c.busy = true
	c.cfg, c.dst, c.src, c.count = cfg, dst, src, count
	c.starts++
}

func (d *fakeDMA) Busy(ch uint8) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ch[ch].busy
}

func (d *fakeDMA) Abort(ch uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ch[ch].busy = false
	d.ch[ch].aborts++
}

func (d *fakeDMA) claimedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for i := range d.ch {
		if d.ch[i].claimed {
			n++
		}
	}
	return n
}

// fill completes the channel reading from src, writing pattern bytes for
// the given plane. It reports how many bytes were written.
func (d *fakeDMA) fill(src uintptr, plane uint8) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.ch {
		c := &d.ch[i]
		if !c.busy || c.src != src {
			continue
		}
		n := int(c.count) * int(c.cfg.Size.Bytes())
		for j := 0; j < n && j < len(c.dst); j++ {
			c.dst[j] = pattern(plane, j)
		}
		c.busy = false
		return n
	}
	return 0
}

func pattern(plane uint8, i int) byte {
	return byte(int(plane)*0x40 + i)
}

const fakeFIFOBase = 0x50200020

// fakePIO models one PIO block: instruction memory, state machine
// configuration and the frame interrupt.
type fakePIO struct {
	mu    sync.Mutex
	index uint8
	mem   [32]uint16
	used  uint32

	cfgs    [4]StateMachineConfig
	pcs     [4]uint8
	enabled uint8
	puts    [4][]uint32

	inBase, inCount uint8
	irqEnabled      bool
	irqCleared      int

	dma *fakeDMA

	// autoComplete runs a frame as soon as the frame machine has both its
	// words, like a sensor streaming continuously.
	autoComplete bool
	frames       int
	planeBytes   [MaxPlanes]int
	signalled    [MaxPlanes]int
	walked       bool // the last frame reached frameIRQ
	failAdd      int // fail the Nth AddProgram, 1 based
	adds         int
}

func newFakePIO(index uint8, dma *fakeDMA) *fakePIO {
	return &fakePIO{index: index, dma: dma, autoComplete: true}
}

func (p *fakePIO) BlockIndex() uint8 { return p.index }

func (p *fakePIO) AddProgram(instrs []uint16, origin int8) (uint8, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.adds++
	if p.adds == p.failAdd {
		return 0, errors.New("no program space")
	}
	mask := uint32(1)<<len(instrs) - 1
	for off := 0; off+len(instrs) <= len(p.mem); off++ {
		if origin >= 0 && off != int(origin) {
			continue
		}
		if p.used&(mask<<off) != 0 {
			continue
		}
		for i, instr := range instrs {
			if instr&0xE000 == 0 { // JMP
				instr += uint16(off)
			}
			p.mem[off+i] = instr
		}
		p.used |= mask << off
		return uint8(off), nil
	}
	return 0, errors.New("no program space")
}

func (p *fakePIO) ClearProgramSection(offset, length uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	mask := uint32(1)<<length - 1
	p.used &^= mask << offset
	for i := offset; i < offset+length; i++ {
		p.mem[i] = 0
	}
}

func (p *fakePIO) WriteInstruction(addr uint8, instr uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mem[addr] = instr
}

func (p *fakePIO) ConfigureInputs(base, count uint8) {
	p.inBase, p.inCount = base, count
}

func (p *fakePIO) SetEnabled(mask uint8, enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if enabled {
		p.enabled |= mask
	} else {
		p.enabled &^= mask
	}
}

func (p *fakePIO) Restart(mask uint8) {}

func (p *fakePIO) ClearFIFOs(sm uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.puts[sm] = nil
}

func (p *fakePIO) Init(sm uint8, pc uint8, cfg StateMachineConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfgs[sm] = cfg
	p.pcs[sm] = pc
}

func (p *fakePIO) Put(sm uint8, v uint32) {
	p.mu.Lock()
	p.puts[sm] = append(p.puts[sm], v)
	run := p.autoComplete && sm == frameSM && len(p.puts[sm]) == 2
	p.mu.Unlock()
	if run {
		go p.fire()
	}
}

func (p *fakePIO) PC(sm uint8) uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pcs[sm]
}

func (p *fakePIO) RxFIFOAddr(sm uint8) uintptr {
	return fakeFIFOBase + uintptr(p.index)<<20 + uintptr(sm)*4
}

func (p *fakePIO) RxDREQ(sm uint8) uint8 {
	return 4 + 8*p.index + sm
}

func (p *fakePIO) SetInterruptEnabled(flag uint8, enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.irqEnabled = enabled
}

func (p *fakePIO) ClearInterrupt(flag uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.irqCleared++
}

// fire runs one frame from the words the frame machine pulled: it steps the
// frame machine through its program to count the bytes each plane machine
// is signalled for, fills the plane channels and raises the frame interrupt.
func (p *fakePIO) fire() {
	p.mu.Lock()
	puts := p.puts[frameSM]
	p.puts[frameSM] = nil
	flags, done := p.walk(puts)
	var width [MaxPlanes]int
	for plane := range width {
		width[plane] = int(p.cfgs[plane+1].PushThreshold / 8)
	}
	enabled := p.enabled
	p.walked = done
	p.mu.Unlock()

	if enabled&1 != 0 {
		for plane := uint8(0); plane < MaxPlanes; plane++ {
			if flags[plane] == 0 || enabled&(1<<(plane+1)) == 0 {
				continue
			}
			got := p.dma.fill(p.RxFIFOAddr(plane+1)+uintptr(4-width[plane]), plane)
			p.mu.Lock()
			p.planeBytes[plane] = got
			p.signalled[plane] = flags[plane]
			p.mu.Unlock()
		}
	}

	p.mu.Lock()
	p.frames++
	p.mu.Unlock()
	HandleFrameInterrupt(p.index, p)
}

// walkLimit bounds one frame; a full 80x60 frame takes about 40000 steps.
const walkLimit = 1 << 20

// walk executes the frame machine from its PC until it raises frameIRQ, with
// every pin wait already satisfied. It returns the plane flags raised and
// whether frameIRQ was reached. Stalling on an empty TX FIFO, an unknown
// instruction or the step limit ends the walk early.
func (p *fakePIO) walk(words []uint32) (flags [MaxPlanes]int, done bool) {
	cfg := p.cfgs[frameSM]
	pc := p.pcs[frameSM]
	var x, y, osr uint32
	for step := 0; step < walkLimit; step++ {
		instr := p.mem[pc&0x1F]
		next := pc + 1
		if pc == cfg.Wrap {
			next = cfg.WrapTarget
		}
		arg1 := (instr >> 5) & 7
		switch instr >> 13 {
		case 0: // jmp
			target := uint8(instr & 0x1F)
			switch arg1 {
			case 0:
				next = target
			case 2:
				if x != 0 {
					next = target
				}
				x--
			case 4:
				if y != 0 {
					next = target
				}
				y--
			default:
				return flags, false
			}
		case 1: // wait
		case 3: // out
			if arg1 != 2 || instr&0x1F != 0 {
				return flags, false
			}
			y = osr
		case 4: // pull
			if instr&0x80 == 0 {
				return flags, false
			}
			if len(words) == 0 {
				return flags, false
			}
			osr, words = words[0], words[1:]
		case 5: // mov
			switch {
			case arg1 == 1 && instr&0x1F == 7:
				x = osr
			case instr == 0xA042:
			default:
				return flags, false
			}
		case 6: // irq
			flag := instr & 7
			if flag == frameIRQ {
				return flags, true
			}
			if flag >= planeIRQBase {
				flags[flag-planeIRQBase]++
			}
		default:
			return flags, false
		}
		pc = next
	}
	return flags, false
}

// frameDone reports whether the last frame ran to its frame interrupt.
func (p *fakePIO) frameDone() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.walked
}

func (p *fakePIO) frameCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

// bytesFor returns the bytes the plane's channel moved in the last frame and
// the bytes the frame machine signalled for that plane.
func (p *fakePIO) bytesFor(plane uint8) (moved, signalled int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.planeBytes[plane], p.signalled[plane]
}

type rig struct {
	bus   *fakeSCCB
	pio   *fakePIO
	dma   *fakeDMA
	clock *fakeClock
	cfg   PlatformConfig
}

func newRig(index uint8) *rig {
	r := &rig{bus: newFakeSCCB(), dma: &fakeDMA{}, clock: &fakeClock{}}
	r.pio = newFakePIO(index, r.dma)
	r.cfg = DefaultPlatformConfig()
	r.cfg.Bus = r.bus
	r.cfg.PIO = r.pio
	r.cfg.DMA = r.dma
	r.cfg.Clock = r.clock
	r.cfg.Sleep = func(time.Duration) { runtime.Gosched() }
	return r
}
