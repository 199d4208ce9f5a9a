package ppu

import (
	"log"

	"github.com/pocke42/famicore/cartridge"
)

// Bus is what the PPU needs from the system bus: CHR access through the
// mapper, span reads for OAM DMA, the current nametable mirroring and the
// two latched signals it produces.
type Bus interface {
	ReadCHR(addr uint16) byte
	ReadCHRSpan(addr, count uint16) []byte
	ReadSpan(addr, count uint16) []byte
	Mirroring() byte
	TriggerNMI()
	TriggerDMA()
}

// Register addresses as seen by the CPU.
const (
	regPPUCTRL   uint16 = 0x2000 // W
	regPPUMASK   uint16 = 0x2001 // W
	regPPUSTATUS uint16 = 0x2002 // R
	regOAMADDR   uint16 = 0x2003 // W
	regOAMDATA   uint16 = 0x2004 // R/W
	regPPUSCROLL uint16 = 0x2005 // Wx2
	regPPUADDR   uint16 = 0x2006 // Wx2
	regPPUDATA   uint16 = 0x2007 // R/W
	regOAMDMA    uint16 = 0x4014 // W
)

// Status register bits.
const (
	statusVBlank         byte = 0x80
	statusSpriteZeroHit  byte = 0x40
	statusSpriteOverflow byte = 0x20
)

// Frame geometry.
const (
	ScanlineRowCount = 262
	ScanlineColCount = 341
	ScreenRowCount   = 240
	ScreenColCount   = 256

	// TicksPerFrame is the nominal dot count of one frame.
	TicksPerFrame = ScanlineRowCount * ScanlineColCount

	// FrameBufferSize is the byte length of one RGBA8888 frame.
	FrameBufferSize = ScreenRowCount * ScreenColCount * 4
)

const (
	nametableSize        = 0x0400
	attributeTableOffset = 0x03C0
	paletteTableStart    = 0x3F00
	tileDataSize         = 16
)

// controlState is the parsed PPUCTRL byte.
type controlState struct {
	nameTableID        byte
	addressIncrement   uint16
	spriteTableAddr    uint16
	backgroundTableIdx byte
	spriteSize8x16     bool
	outputSelect       bool
	generateNMI        bool
}

// maskState is the parsed PPUMASK byte.
type maskState struct {
	grayscale          bool
	showBackgroundLeft bool
	showSpritesLeft    bool
	showBackground     bool
	showSprites        bool
	emphasizeRed       bool
	emphasizeGreen     bool
	emphasizeBlue      bool
}

// PPU emulates the Ricoh 2C02. Rendering follows the whole-frame model:
// both background layers and the sprite layer are prepared once per frame
// and composed pixel by pixel during the visible dot walk, which keeps NMI
// and sprite-zero timing dot-accurate.
type PPU struct {
	bus Bus

	status  byte
	control controlState
	mask    maskState

	oam     [256]byte
	oamAddr byte

	vram    [2048]byte
	palette [32]byte

	vramAddr   uint16
	dataBuffer byte

	scroll    [2]byte
	scrollIdx int

	dotIdx   uint32
	oddFrame bool

	spriteZeroReported bool

	backgroundBuffers [2][ScreenRowCount * ScreenColCount]bufferDot
	spriteBuffer      [ScreenRowCount * ScreenColCount]bufferDot

	frameBuffers [2][]byte
	activeFB     int
}

// New creates a new PPU instance.
func New() *PPU {
	return &PPU{}
}

// AttachBus connects the PPU to the system bus.
func (p *PPU) AttachBus(bus Bus) {
	p.bus = bus
}

// Reset returns the PPU to its power-on state. VRAM and OAM survive; the
// register file and the dot counter do not.
func (p *PPU) Reset() {
	p.status = 0
	p.control = controlState{addressIncrement: 1}
	p.mask = maskState{}
	p.oamAddr = 0
	p.vramAddr = 0
	p.dataBuffer = 0
	p.scroll = [2]byte{}
	p.scrollIdx = 0
	p.dotIdx = 0
	p.oddFrame = false
	p.spriteZeroReported = false
}

// SetFramebuffers registers the two host-owned RGBA buffers the renderer
// alternates between. Each must be FrameBufferSize bytes.
func (p *PPU) SetFramebuffers(buf0, buf1 []byte) {
	p.frameBuffers[0] = buf0
	p.frameBuffers[1] = buf1
	p.activeFB = 0
}

// ActiveFramebufferID identifies the buffer the PPU is currently writing.
// The other one holds the last completed frame.
func (p *PPU) ActiveFramebufferID() int {
	return p.activeFB
}

// Read reads from a PPU register. Silent reads return the same byte without
// any of the read side effects.
func (p *PPU) Read(addr uint16, silent bool) byte {
	switch addr {
	case regPPUSTATUS:
		tmp := p.status
		if !silent {
			p.status &^= statusVBlank
			p.scrollIdx = 0
			p.scroll = [2]byte{}
			p.vramAddr = 0
			p.dataBuffer = 0
		}
		return tmp

	case regOAMDATA:
		return p.oam[p.oamAddr]

	case regPPUDATA:
		return p.handleDataRead(silent)
	}
	// The remaining registers are write-only.
	return 0
}

// Write writes to a PPU register.
func (p *PPU) Write(addr uint16, val byte) {
	switch addr {
	case regPPUCTRL:
		p.parseControl(val)

	case regPPUMASK:
		p.parseMask(val)

	case regPPUSTATUS:
		// read-only

	case regOAMADDR:
		p.oamAddr = val

	case regOAMDATA:
		p.oam[p.oamAddr] = val
		p.oamAddr++

	case regPPUSCROLL:
		p.scroll[p.scrollIdx] = val
		p.scrollIdx ^= 1

	case regPPUADDR:
		p.vramAddr = p.vramAddr<<8 | uint16(val)

	case regPPUDATA:
		p.handleDataWrite(val)

	case regOAMDMA:
		p.oamDMA(val)

	default:
		log.Printf("ppu: write to unmapped register 0x%04X", addr)
	}
}

func (p *PPU) parseControl(val byte) {
	p.control.nameTableID = val & 0x03
	p.control.addressIncrement = 1
	if val&0x04 != 0 {
		p.control.addressIncrement = 32
	}
	p.control.spriteTableAddr = 0x0000
	if val&0x08 != 0 {
		p.control.spriteTableAddr = 0x1000
	}
	p.control.backgroundTableIdx = (val >> 4) & 0x01
	p.control.spriteSize8x16 = val&0x20 != 0
	p.control.outputSelect = val&0x40 != 0
	p.control.generateNMI = val&0x80 != 0
}

func (p *PPU) parseMask(val byte) {
	p.mask.grayscale = val&0x01 != 0
	p.mask.showBackgroundLeft = val&0x02 != 0
	p.mask.showSpritesLeft = val&0x04 != 0
	p.mask.showBackground = val&0x08 != 0
	p.mask.showSprites = val&0x10 != 0
	p.mask.emphasizeRed = val&0x20 != 0
	p.mask.emphasizeGreen = val&0x40 != 0
	p.mask.emphasizeBlue = val&0x80 != 0
}

// oamDMA copies one page of CPU memory into OAM through the cursor and
// signals the bus so the CPU picks up the transfer stall.
func (p *PPU) oamDMA(page byte) {
	base := uint16(page) << 8
	data := p.bus.ReadSpan(base, 256)
	for i, v := range data {
		p.oam[(int(p.oamAddr)+i)&0xFF] = v
	}
	p.bus.TriggerDMA()
}

// handleDataRead implements the $2007 read-buffer rule: non-palette reads
// return the previously buffered byte and refill the buffer from the new
// address; palette reads bypass the buffer.
func (p *PPU) handleDataRead(silent bool) byte {
	addr := p.vramAddr & 0x3FFF

	if silent {
		// Same byte a normal read would yield, with nothing disturbed.
		if addr >= paletteTableStart {
			return p.palette[paletteIndex(addr)]
		}
		return p.dataBuffer
	}
	result := p.vramRead(addr)

	if addr >= paletteTableStart {
		p.dataBuffer = result
	} else {
		result, p.dataBuffer = p.dataBuffer, result
	}

	p.vramAddr += p.control.addressIncrement
	return result
}

func (p *PPU) handleDataWrite(val byte) {
	p.vramWrite(p.vramAddr&0x3FFF, val)
	p.vramAddr += p.control.addressIncrement
}

// vramRead decodes a PPU address into CHR, nametable or palette space.
func (p *PPU) vramRead(addr uint16) byte {
	switch {
	case addr <= 0x1FFF:
		return p.bus.ReadCHR(addr)
	case addr >= paletteTableStart:
		return p.palette[paletteIndex(addr)]
	default:
		return p.vram[p.mirrorAddress(addr)]
	}
}

func (p *PPU) vramWrite(addr uint16, val byte) {
	switch {
	case addr <= 0x1FFF:
		// CHR is read-only on the supported mappers; the write is dropped.
		log.Printf("ppu: dropped CHR write of 0x%02X at 0x%04X", val, addr)
	case addr >= paletteTableStart:
		p.palette[paletteIndex(addr)] = val
	default:
		p.vram[p.mirrorAddress(addr)] = val
	}
}

// paletteIndex folds a 0x3F00-0x3FFF address into the 32-byte palette RAM,
// aliasing the sprite backdrop entries onto the background ones.
func paletteIndex(addr uint16) uint16 {
	idx := (addr - paletteTableStart) & 0x1F
	switch idx {
	case 0x10, 0x14, 0x18, 0x1C:
		idx -= 0x10
	}
	return idx
}

// mirrorAddress maps a nametable address (0x2000-0x3EFF, with 0x3000+
// aliasing 0x2000+) into the 2 KiB of physical VRAM per the cartridge's
// mirroring.
func (p *PPU) mirrorAddress(addr uint16) uint16 {
	addr &= 0x0FFF
	table := addr / nametableSize
	offset := addr & (nametableSize - 1)
	return uint16(p.physicalNametable(byte(table)))*nametableSize + offset
}

// physicalNametable maps a logical nametable id (0-3) onto one of the two
// physical tables.
func (p *PPU) physicalNametable(id byte) int {
	switch p.bus.Mirroring() {
	case cartridge.MirrorHorizontal:
		// 0 0
		// 1 1
		return int(id >> 1)
	case cartridge.MirrorVertical:
		// 0 1
		// 0 1
		return int(id & 1)
	default:
		// Four-screen VRAM is approximated with the same 2 KiB.
		return int(id & 1)
	}
}

func (p *PPU) renderingEnabled() bool {
	return p.mask.showBackground || p.mask.showSprites
}

// DotPosition reports the current dot as (row, col) for debuggers.
func (p *PPU) DotPosition() (row, col int) {
	return int(p.dotIdx / ScanlineColCount), int(p.dotIdx % ScanlineColCount)
}

// Status exposes the raw status byte without the read side effects.
func (p *PPU) Status() byte {
	return p.status
}
