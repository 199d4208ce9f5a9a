package bus

import (
	"fmt"

	"github.com/pocke42/famicore/cartridge"
	"github.com/pocke42/famicore/controller"
	"github.com/pocke42/famicore/ppu"
)

const oamDMAAddr uint16 = 0x4014

// Bus is the CPU-side memory map. It owns the 2 KiB of internal RAM and
// routes every other address to the attached peripheral. The two latched
// signals the PPU raises, NMI and DMA, live here as plain flags: producers
// set them, the CPU consumes them with the Take methods.
type Bus struct {
	ram [2048]byte

	cart        *cartridge.Cartridge
	ppu         *ppu.PPU
	controllers [2]*controller.Controller

	nmiPending bool
	dmaPending bool
}

// New creates a new Bus instance.
func New() *Bus {
	return &Bus{}
}

// AttachPPU connects the PPU register window and gives the PPU its view of
// the bus.
func (b *Bus) AttachPPU(p *ppu.PPU) {
	b.ppu = p
	p.AttachBus(b)
}

// AttachController wires a pad into port 0 (0x4016) or 1 (0x4017).
func (b *Bus) AttachController(c *controller.Controller, port int) {
	b.controllers[port] = c
}

// InsertCartridge maps a cartridge into 0x4020-0xFFFF. Swapping cartridges
// is only safe while the CPU is held in reset.
func (b *Bus) InsertCartridge(cart *cartridge.Cartridge) {
	b.cart = cart
}

func (b *Bus) HasCartridge() bool {
	return b.cart != nil
}

// Read reads a byte from the bus.
func (b *Bus) Read(addr uint16) byte {
	return b.read(addr, false)
}

// ReadSilent reads a byte without triggering read side effects anywhere on
// the map; debuggers and the disassembler use it.
func (b *Bus) ReadSilent(addr uint16) byte {
	return b.read(addr, true)
}

func (b *Bus) read(addr uint16, silent bool) byte {
	switch {
	case addr <= 0x1FFF:
		return b.ram[addr%0x0800]

	case addr <= 0x3FFF:
		return b.ppu.Read(0x2000+(addr-0x2000)%8, silent)

	case addr <= 0x4017:
		switch addr {
		case 0x4016:
			return b.readController(0, silent)
		case 0x4017:
			return b.readController(1, silent)
		}
		// APU and the remaining I/O registers are not implemented.
		return 0

	case addr >= 0x4020:
		if b.cart != nil {
			return b.cart.ReadPRG(addr)
		}
	}
	return 0
}

func (b *Bus) readController(port int, silent bool) byte {
	c := b.controllers[port]
	if c == nil {
		return 0
	}
	if silent {
		return c.Peek()
	}
	return c.Read()
}

// Write writes a byte to the bus.
func (b *Bus) Write(addr uint16, val byte) {
	switch {
	case addr <= 0x1FFF:
		b.ram[addr%0x0800] = val

	case addr <= 0x3FFF:
		b.ppu.Write(0x2000+(addr-0x2000)%8, val)

	case addr <= 0x4017:
		switch addr {
		case oamDMAAddr:
			b.ppu.Write(oamDMAAddr, val)
		case 0x4016:
			// The strobe line feeds both pads.
			for _, c := range b.controllers {
				if c != nil {
					c.Write(val)
				}
			}
		}

	case addr >= 0x4020:
		if b.cart != nil {
			b.cart.WritePRG(addr, val)
		}
	}
}

// ReadSpan returns a contiguous view into internal RAM or mapper-owned PRG
// memory; OAM DMA fetches its page through it. A window straddling region
// boundaries is a programmer error.
func (b *Bus) ReadSpan(addr, count uint16) []byte {
	switch {
	case addr <= 0x1FFF:
		start := addr % 0x0800
		if int(start)+int(count) > len(b.ram) {
			panic(fmt.Sprintf("bus: span 0x%04X+%d straddles internal RAM", addr, count))
		}
		return b.ram[start : start+count]

	case addr >= 0x4020:
		if b.cart != nil {
			return b.cart.ReadPRGSpan(addr, count)
		}
		return nil
	}
	panic(fmt.Sprintf("bus: span 0x%04X+%d has no contiguous backing", addr, count))
}

// ReadCHR and ReadCHRSpan are the PPU-side pattern fetches, delegated to
// the mapper.
func (b *Bus) ReadCHR(addr uint16) byte {
	if b.cart == nil {
		return 0
	}
	return b.cart.ReadCHR(addr)
}

func (b *Bus) ReadCHRSpan(addr, count uint16) []byte {
	if b.cart == nil {
		return nil
	}
	return b.cart.ReadCHRSpan(addr, count)
}

// Mirroring reports the nametable arrangement of the inserted cartridge.
func (b *Bus) Mirroring() byte {
	if b.cart == nil {
		return cartridge.MirrorVertical
	}
	return b.cart.Mirroring()
}

// Reset drains the signal latches and returns the mapper to its power-on
// banking.
func (b *Bus) Reset() {
	b.nmiPending = false
	b.dmaPending = false
	if b.cart != nil {
		b.cart.Reset()
	}
}

// TriggerNMI latches a pending NMI for the CPU.
func (b *Bus) TriggerNMI() { b.nmiPending = true }

// TriggerDMA latches a pending OAM DMA stall for the CPU.
func (b *Bus) TriggerDMA() { b.dmaPending = true }

// TakeNMI reads and clears the NMI latch.
func (b *Bus) TakeNMI() bool {
	tmp := b.nmiPending
	b.nmiPending = false
	return tmp
}

// TakeDMA reads and clears the DMA latch.
func (b *Bus) TakeDMA() bool {
	tmp := b.dmaPending
	b.dmaPending = false
	return tmp
}
