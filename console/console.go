package console

import (
	"sync/atomic"

	"github.com/pocke42/famicore/bus"
	"github.com/pocke42/famicore/cartridge"
	"github.com/pocke42/famicore/controller"
	"github.com/pocke42/famicore/cpu"
	"github.com/pocke42/famicore/ppu"
)

// Master clock rates.
const (
	ClockFrequency = 21_477_272         // Hz
	PPUFrequency   = ClockFrequency / 4 // Hz
	CPUFrequency   = PPUFrequency / 3   // Hz

	// TicksPerFrame is one video frame's worth of Tick calls.
	TicksPerFrame = ppu.TicksPerFrame
)

// Console wires the four chips together and drives them from a single
// master clock: the PPU advances on every tick, the CPU on every third.
type Console struct {
	Bus *bus.Bus
	CPU *cpu.CPU
	PPU *ppu.PPU

	controllers [2]*controller.Controller

	tickIndex int

	framebuffers [2][]byte

	paused       atomic.Bool
	stepRequests atomic.Int32
}

// New creates a fully wired console with no cartridge inserted.
func New() *Console {
	c := &Console{
		Bus: bus.New(),
		CPU: cpu.New(),
		PPU: ppu.New(),
	}
	c.CPU.ConnectBus(c.Bus)
	c.Bus.AttachPPU(c.PPU)
	for i := range c.controllers {
		c.controllers[i] = controller.New()
		c.Bus.AttachController(c.controllers[i], i)
	}
	return c
}

// InsertCartridge maps a cartridge and resets the machine, the only state
// in which swapping cartridges is defined.
func (c *Console) InsertCartridge(cart *cartridge.Cartridge) {
	c.Bus.InsertCartridge(cart)
	c.Reset()
}

func (c *Console) HasCartridge() bool {
	return c.Bus.HasCartridge()
}

// Reset runs the power-on sequence of every chip.
func (c *Console) Reset() {
	c.Bus.Reset()
	if c.Bus.HasCartridge() {
		c.PPU.Reset()
		c.CPU.Reset()
	}
	c.tickIndex = 0
}

// Tick advances the machine by one PPU dot. The CPU steps first on the
// ticks it runs, mirroring the hardware phase relation.
func (c *Console) Tick() {
	if c.tickIndex == 0 && c.Bus.HasCartridge() {
		c.CPU.Clock()
	}
	c.tickIndex = (c.tickIndex + 1) % 3
	c.PPU.Clock()
}

// TickFrame advances the machine by one full video frame.
func (c *Console) TickFrame() {
	for i := 0; i < TicksPerFrame; i++ {
		c.Tick()
	}
}

// StepInstruction runs the machine until the CPU has fetched and fully
// paid for exactly one more instruction.
func (c *Console) StepInstruction() {
	if !c.Bus.HasCartridge() {
		return
	}
	start := c.CPU.Instructions
	for c.CPU.Instructions == start || !c.CPU.Ready() {
		c.Tick()
	}
}

// SetFramebuffers registers the two host-owned RGBA buffers.
func (c *Console) SetFramebuffers(buf0, buf1 []byte) {
	c.framebuffers[0] = buf0
	c.framebuffers[1] = buf1
	c.PPU.SetFramebuffers(buf0, buf1)
}

// ActiveFramebufferID identifies the buffer the PPU writes into next.
func (c *Console) ActiveFramebufferID() int {
	return c.PPU.ActiveFramebufferID()
}

// FramePixels returns the last completed frame.
func (c *Console) FramePixels() []byte {
	return c.framebuffers[1-c.PPU.ActiveFramebufferID()]
}

func (c *Console) PressButton(port int, b controller.Button) {
	c.controllers[port].PressButton(b)
}

func (c *Console) ReleaseButton(port int, b controller.Button) {
	c.controllers[port].ReleaseButton(b)
}

// SetControllerState replaces a pad's whole button byte, ordered A, B,
// Select, Start, Up, Down, Left, Right.
func (c *Console) SetControllerState(port int, buttons [8]bool) {
	c.controllers[port].SetButtons(buttons)
}

// CPUState snapshots the CPU registers for debuggers.
func (c *Console) CPUState() cpu.State {
	return c.CPU.State()
}

// Read peeks a bus address without side effects.
func (c *Console) Read(addr uint16) byte {
	return c.Bus.ReadSilent(addr)
}

// ReadBlock peeks a run of bus addresses without side effects.
func (c *Console) ReadBlock(addr, size uint16) []byte {
	block := make([]byte, size)
	for i := range block {
		block[i] = c.Bus.ReadSilent(addr + uint16(i))
	}
	return block
}

// SetPaused suspends or resumes ticking. The flag is honored by the host
// loop, so it is safe to flip from another goroutine.
func (c *Console) SetPaused(paused bool) {
	c.paused.Store(paused)
}

func (c *Console) Paused() bool {
	return c.paused.Load()
}

// RequestStep queues one single-instruction step for the host loop to
// execute while paused.
func (c *Console) RequestStep() {
	c.stepRequests.Add(1)
}

// TakeStepRequest consumes one queued step request.
func (c *Console) TakeStepRequest() bool {
	for {
		n := c.stepRequests.Load()
		if n <= 0 {
			return false
		}
		if c.stepRequests.CompareAndSwap(n, n-1) {
			return true
		}
	}
}
