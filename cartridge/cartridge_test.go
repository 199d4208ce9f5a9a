package cartridge

import (
	"testing"
)

// buildROM assembles an iNES image in memory.
func buildROM(t *testing.T, mapperID byte, prgBanks, chrBanks int, flags6 byte) []byte {
	t.Helper()
	header := []byte{
		'N', 'E', 'S', 0x1A,
		byte(prgBanks), byte(chrBanks),
		flags6 | mapperID<<4, mapperID & 0xF0,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	data := append([]byte{}, header...)
	data = append(data, make([]byte, prgBanks*prgBankSize)...)
	data = append(data, make([]byte, chrBanks*chrBankSize)...)
	return data
}

func TestParseHeader(t *testing.T) {
	data := buildROM(t, 3, 2, 1, 0x03) // vertical mirroring, battery RAM

	desc, err := ParseHeader(data)
	if err != nil {
		t.Fatal(err)
	}
	if desc.PRGROMSize != 2*prgBankSize {
		t.Errorf("PRGROMSize = %d, want %d", desc.PRGROMSize, 2*prgBankSize)
	}
	if desc.CHRROMSize != chrBankSize {
		t.Errorf("CHRROMSize = %d, want %d", desc.CHRROMSize, chrBankSize)
	}
	if desc.PRGROMStart != headerSize {
		t.Errorf("PRGROMStart = %d, want %d", desc.PRGROMStart, headerSize)
	}
	if desc.CHRROMStart != headerSize+2*prgBankSize {
		t.Errorf("CHRROMStart = %d", desc.CHRROMStart)
	}
	if desc.MapperID != 3 {
		t.Errorf("MapperID = %d, want 3", desc.MapperID)
	}
	if desc.Mirror != MirrorVertical {
		t.Errorf("Mirror = %d, want vertical", desc.Mirror)
	}
	if !desc.HasBatteryRAM {
		t.Error("battery flag lost")
	}
}

func TestParseHeaderTrainerOffset(t *testing.T) {
	data := buildROM(t, 0, 1, 1, 0x04)
	data = append(data[:headerSize], append(make([]byte, trainerSize), data[headerSize:]...)...)

	desc, err := ParseHeader(data)
	if err != nil {
		t.Fatal(err)
	}
	if !desc.HasTrainer {
		t.Error("trainer flag lost")
	}
	if desc.PRGROMStart != headerSize+trainerSize {
		t.Errorf("PRGROMStart = %d, want %d", desc.PRGROMStart, headerSize+trainerSize)
	}
}

func TestParseHeaderRejectsBadMagic(t *testing.T) {
	data := buildROM(t, 0, 1, 1, 0)
	data[0] = 'X'
	if _, err := ParseHeader(data); err == nil {
		t.Error("bad magic must fail")
	}
}

func TestParseHeaderRejectsTruncatedImage(t *testing.T) {
	data := buildROM(t, 0, 2, 1, 0)
	if _, err := ParseHeader(data[:len(data)-100]); err == nil {
		t.Error("truncated image must fail")
	}
}

func TestUnsupportedMapper(t *testing.T) {
	data := buildROM(t, 7, 1, 1, 0)
	if _, err := New(data); err == nil {
		t.Error("unsupported mapper must fail at load time")
	}
}

func TestNROM16KMirrorsUpperHalf(t *testing.T) {
	data := buildROM(t, 0, 1, 1, 0)
	data[headerSize] = 0x11        // PRG offset 0x0000
	data[headerSize+0x3FFC] = 0x77 // reset vector low

	cart, err := New(data)
	if err != nil {
		t.Fatal(err)
	}
	if got := cart.ReadPRG(0x8000); got != 0x11 {
		t.Errorf("0x8000 = 0x%02X, want 0x11", got)
	}
	if got := cart.ReadPRG(0xC000); got != 0x11 {
		t.Errorf("0xC000 = 0x%02X, want the 16K bank mirrored", got)
	}
	if got := cart.ReadPRG(0xFFFC); got != 0x77 {
		t.Errorf("0xFFFC = 0x%02X, want 0x77", got)
	}
}

func TestNROM32KMapsLinearly(t *testing.T) {
	data := buildROM(t, 0, 2, 1, 0)
	data[headerSize] = 0x11
	data[headerSize+prgBankSize] = 0x22

	cart, err := New(data)
	if err != nil {
		t.Fatal(err)
	}
	if got := cart.ReadPRG(0x8000); got != 0x11 {
		t.Errorf("0x8000 = 0x%02X, want 0x11", got)
	}
	if got := cart.ReadPRG(0xC000); got != 0x22 {
		t.Errorf("0xC000 = 0x%02X, want 0x22", got)
	}
}

func TestNROMRejectsWrites(t *testing.T) {
	data := buildROM(t, 0, 1, 1, 0)
	cart, err := New(data)
	if err != nil {
		t.Fatal(err)
	}
	cart.WritePRG(0x8000, 0xFF)
	cart.WriteCHR(0x0000, 0xFF)
	if cart.ReadPRG(0x8000) != 0 || cart.ReadCHR(0x0000) != 0 {
		t.Error("writes must be dropped, not stored")
	}
}

func TestCNROMBankSelect(t *testing.T) {
	data := buildROM(t, 3, 2, 4, 0)
	chrStart := headerSize + 2*prgBankSize
	data[chrStart] = 0xA0               // bank 0
	data[chrStart+chrBankSize] = 0xA1   // bank 1
	data[chrStart+3*chrBankSize] = 0xA3 // bank 3

	cart, err := New(data)
	if err != nil {
		t.Fatal(err)
	}
	if got := cart.ReadCHR(0); got != 0xA0 {
		t.Errorf("bank 0: 0x%02X, want 0xA0", got)
	}

	cart.WritePRG(0x8000, 0x01)
	if got := cart.ReadCHR(0); got != 0xA1 {
		t.Errorf("bank 1: 0x%02X, want 0xA1", got)
	}

	// Only the low two bits select.
	cart.WritePRG(0xFFFF, 0x07)
	if got := cart.ReadCHR(0); got != 0xA3 {
		t.Errorf("bank 3: 0x%02X, want 0xA3", got)
	}
}

func TestCNROMFixedPRGBanks(t *testing.T) {
	data := buildROM(t, 3, 2, 1, 0)
	data[headerSize] = 0x10
	data[headerSize+prgBankSize] = 0x20

	cart, err := New(data)
	if err != nil {
		t.Fatal(err)
	}
	if got := cart.ReadPRG(0x8000); got != 0x10 {
		t.Errorf("0x8000 = 0x%02X, want first bank", got)
	}
	if got := cart.ReadPRG(0xC000); got != 0x20 {
		t.Errorf("0xC000 = 0x%02X, want last bank", got)
	}
}

// mmc1Write clocks one serial write sequence of a 5-bit value, LSB first.
func mmc1Write(cart *Cartridge, addr uint16, value byte) {
	for i := 0; i < 5; i++ {
		cart.WritePRG(addr, value>>i&1)
	}
}

func newMMC1Cart(t *testing.T, prgBanks int) (*Cartridge, []byte) {
	t.Helper()
	data := buildROM(t, 1, prgBanks, 2, 0)
	for bank := 0; bank < prgBanks; bank++ {
		data[headerSize+bank*prgBankSize] = 0xB0 | byte(bank)
	}
	cart, err := New(data)
	if err != nil {
		t.Fatal(err)
	}
	return cart, data
}

func TestMMC1PowerOnBanking(t *testing.T) {
	cart, _ := newMMC1Cart(t, 4)

	// Mode 3 at power-on: bank 0 at 0x8000, last bank fixed at 0xC000.
	if got := cart.ReadPRG(0x8000); got != 0xB0 {
		t.Errorf("0x8000 = 0x%02X, want bank 0", got)
	}
	if got := cart.ReadPRG(0xC000); got != 0xB3 {
		t.Errorf("0xC000 = 0x%02X, want the last bank", got)
	}
}

func TestMMC1PRGBankSwitch(t *testing.T) {
	cart, _ := newMMC1Cart(t, 4)

	mmc1Write(cart, 0xE000, 0b00001) // select PRG bank 1
	if got := cart.ReadPRG(0x8000); got != 0xB1 {
		t.Errorf("0x8000 = 0x%02X, want bank 1", got)
	}
	if got := cart.ReadPRG(0xC000); got != 0xB3 {
		t.Errorf("0xC000 = 0x%02X, want the last bank still fixed", got)
	}
}

func TestMMC1ResetBitPinsLastBank(t *testing.T) {
	cart, _ := newMMC1Cart(t, 4)

	// Put the mapper into 32K mode, then hit the reset bit.
	mmc1Write(cart, 0x8000, 0b00000)
	cart.WritePRG(0x8000, 0x80)
	mmc1Write(cart, 0xE000, 0b00010)
	if got := cart.ReadPRG(0x8000); got != 0xB2 {
		t.Errorf("0x8000 = 0x%02X, want switched bank 2", got)
	}
	if got := cart.ReadPRG(0xC000); got != 0xB3 {
		t.Errorf("0xC000 = 0x%02X, want last bank after reset", got)
	}
}

func TestMMC1PRGModeFixFirst(t *testing.T) {
	cart, _ := newMMC1Cart(t, 4)

	mmc1Write(cart, 0x8000, 0b01000) // control: PRG mode 2
	mmc1Write(cart, 0xE000, 0b00010) // bank 2 at 0xC000
	if got := cart.ReadPRG(0x8000); got != 0xB0 {
		t.Errorf("0x8000 = 0x%02X, want the first bank fixed", got)
	}
	if got := cart.ReadPRG(0xC000); got != 0xB2 {
		t.Errorf("0xC000 = 0x%02X, want switched bank 2", got)
	}
}

func TestMMC1CHRBankSwitch4K(t *testing.T) {
	cart, data := newMMC1Cart(t, 2)
	chrStart := headerSize + 2*prgBankSize
	for bank := 0; bank < 4; bank++ {
		data[chrStart+bank*0x1000] = 0xC0 | byte(bank)
	}

	mmc1Write(cart, 0x8000, 0b11100) // control: 4 KiB CHR, PRG mode 3
	mmc1Write(cart, 0xA000, 0b00010) // CHR bank 0 <- 2
	mmc1Write(cart, 0xC000, 0b00011) // CHR bank 1 <- 3
	if got := cart.ReadCHR(0x0000); got != 0xC2 {
		t.Errorf("CHR 0x0000 = 0x%02X, want bank 2", got)
	}
	if got := cart.ReadCHR(0x1000); got != 0xC3 {
		t.Errorf("CHR 0x1000 = 0x%02X, want bank 3", got)
	}
}

func TestMMC1PRGRAM(t *testing.T) {
	cart, _ := newMMC1Cart(t, 2)

	cart.WritePRG(0x6000, 0x42)
	if got := cart.ReadPRG(0x6000); got != 0x42 {
		t.Errorf("PRG RAM read = 0x%02X, want 0x42", got)
	}

	// Bit 4 of the PRG register disables the RAM; reads float to 0.
	mmc1Write(cart, 0xE000, 0b10000)
	if got := cart.ReadPRG(0x6000); got != 0 {
		t.Errorf("disabled PRG RAM read = 0x%02X, want 0", got)
	}

	// Re-enabling reveals the old contents.
	mmc1Write(cart, 0xE000, 0b00000)
	if got := cart.ReadPRG(0x6000); got != 0x42 {
		t.Errorf("re-enabled PRG RAM read = 0x%02X, want 0x42", got)
	}
}

func TestReadPRGSpan(t *testing.T) {
	data := buildROM(t, 0, 1, 1, 0)
	for i := 0; i < 16; i++ {
		data[headerSize+0x100+i] = byte(i)
	}
	cart, err := New(data)
	if err != nil {
		t.Fatal(err)
	}
	span := cart.ReadPRGSpan(0x8100, 16)
	for i, v := range span {
		if v != byte(i) {
			t.Fatalf("span[%d] = 0x%02X, want 0x%02X", i, v, i)
		}
	}
}
