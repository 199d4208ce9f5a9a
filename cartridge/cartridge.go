package cartridge

import (
	"bytes"
	"fmt"
)

const headerSize = 16

var magicNumber = []byte{'N', 'E', 'S', 0x1A}

// Mirroring types.
const (
	MirrorHorizontal byte = 0
	MirrorVertical   byte = 1
	MirrorFourScreen byte = 2
)

const (
	prgBankSize = 16384
	chrBankSize = 8192
	trainerSize = 512
)

// RomDescriptor is the decoded iNES header: where PRG and CHR live inside
// the raw buffer, plus the cartridge flags.
type RomDescriptor struct {
	PRGROMStart int
	PRGROMSize  int
	CHRROMStart int
	CHRROMSize  int

	Mirror            byte
	HasBatteryRAM     bool
	HasTrainer        bool
	HasFourScreenVRAM bool
	MapperID          uint16
}

// ParseHeader decodes a 16-byte iNES v1 header and lays the PRG/CHR regions
// out over the buffer that follows it.
func ParseHeader(data []byte) (RomDescriptor, error) {
	if len(data) < headerSize {
		return RomDescriptor{}, fmt.Errorf("rom file too small: %d bytes", len(data))
	}
	if !bytes.Equal(data[0:4], magicNumber) {
		return RomDescriptor{}, fmt.Errorf("missing iNES signature")
	}

	desc := RomDescriptor{
		PRGROMSize: int(data[4]) * prgBankSize,
		CHRROMSize: int(data[5]) * chrBankSize,
	}

	flags := data[6]
	desc.Mirror = MirrorHorizontal
	if flags&0x01 != 0 {
		desc.Mirror = MirrorVertical
	}
	desc.HasBatteryRAM = flags&0x02 != 0
	desc.HasTrainer = flags&0x04 != 0
	if flags&0x08 != 0 {
		desc.HasFourScreenVRAM = true
		desc.Mirror = MirrorFourScreen
	}
	desc.MapperID = uint16(flags>>4) | uint16(data[7]&0xF0)

	desc.PRGROMStart = headerSize
	if desc.HasTrainer {
		desc.PRGROMStart += trainerSize
	}
	desc.CHRROMStart = desc.PRGROMStart + desc.PRGROMSize

	if total := desc.CHRROMStart + desc.CHRROMSize; total > len(data) {
		return RomDescriptor{}, fmt.Errorf("rom file truncated: header declares %d bytes, buffer has %d", total, len(data))
	}

	return desc, nil
}

// Cartridge owns the raw ROM buffer and the mapper interpreting it.
type Cartridge struct {
	rom    []byte
	desc   RomDescriptor
	mapper Mapper
}

// New builds a cartridge from a raw .nes image.
func New(data []byte) (*Cartridge, error) {
	desc, err := ParseHeader(data)
	if err != nil {
		return nil, fmt.Errorf("load rom: %w", err)
	}
	return NewWithDescriptor(data, desc)
}

// NewWithDescriptor builds a cartridge from a buffer and an already parsed
// descriptor.
func NewWithDescriptor(data []byte, desc RomDescriptor) (*Cartridge, error) {
	c := &Cartridge{rom: data, desc: desc}
	m, err := newMapper(c)
	if err != nil {
		return nil, err
	}
	c.mapper = m
	return c, nil
}

// newMapper creates a Mapper instance based on the cartridge's mapper ID.
func newMapper(cart *Cartridge) (Mapper, error) {
	switch cart.desc.MapperID {
	case 0:
		return newNROM(cart), nil
	case 1:
		return newMMC1(cart), nil
	case 3:
		return newCNROM(cart), nil
	default:
		return nil, fmt.Errorf("unsupported mapper: %d", cart.desc.MapperID)
	}
}

func (c *Cartridge) Descriptor() RomDescriptor { return c.desc }
func (c *Cartridge) MapperName() string        { return c.mapper.Name() }

func (c *Cartridge) ReadPRG(addr uint16) byte        { return c.mapper.ReadPRG(addr) }
func (c *Cartridge) WritePRG(addr uint16, data byte) { c.mapper.WritePRG(addr, data) }
func (c *Cartridge) ReadCHR(addr uint16) byte        { return c.mapper.ReadCHR(addr) }
func (c *Cartridge) WriteCHR(addr uint16, data byte) { c.mapper.WriteCHR(addr, data) }

func (c *Cartridge) ReadPRGSpan(addr, count uint16) []byte {
	return c.mapper.ReadPRGSpan(addr, count)
}

func (c *Cartridge) ReadCHRSpan(addr, count uint16) []byte {
	return c.mapper.ReadCHRSpan(addr, count)
}

// Mirroring returns the nametable arrangement currently in effect.
func (c *Cartridge) Mirroring() byte { return c.mapper.Mirroring() }

// Reset returns the mapper to its power-on banking.
func (c *Cartridge) Reset() { c.mapper.Reset() }
