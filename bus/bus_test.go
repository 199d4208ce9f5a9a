package bus

import (
	"testing"

	"github.com/pocke42/famicore/cartridge"
	"github.com/pocke42/famicore/controller"
	"github.com/pocke42/famicore/ppu"
)

func setupBus(t *testing.T) *Bus {
	t.Helper()
	b := New()
	b.AttachPPU(ppu.New())
	b.AttachController(controller.New(), 0)
	b.AttachController(controller.New(), 1)
	return b
}

// buildNROM assembles a minimal 16 KiB NROM image.
func buildNROM(t *testing.T, fill func(prg []byte)) *cartridge.Cartridge {
	t.Helper()
	header := []byte{'N', 'E', 'S', 0x1A, 0x01, 0x01, 0x00, 0x00, 0, 0, 0, 0, 0, 0, 0, 0}
	prg := make([]byte, 16384)
	if fill != nil {
		fill(prg)
	}
	chr := make([]byte, 8192)
	data := append(header, prg...)
	data = append(data, chr...)

	cart, err := cartridge.New(data)
	if err != nil {
		t.Fatal(err)
	}
	return cart
}

func TestRAMMirroring(t *testing.T) {
	b := setupBus(t)

	b.Write(0x0042, 0xAB)
	for _, addr := range []uint16{0x0042, 0x0842, 0x1042, 0x1842} {
		if got := b.Read(addr); got != 0xAB {
			t.Errorf("read 0x%04X = 0x%02X, want 0xAB", addr, got)
		}
	}

	// Property over the whole window: every address aliases its fold.
	b.Write(0x07FF, 0x55)
	for addr := uint16(0x0000); addr <= 0x1FFF; addr++ {
		if b.Read(addr) != b.Read(addr%0x0800) {
			t.Fatalf("0x%04X does not mirror 0x%04X", addr, addr%0x0800)
		}
	}
}

func TestPPURegisterMirroring(t *testing.T) {
	b := setupBus(t)
	b.InsertCartridge(buildNROM(t, nil))

	// Load a VRAM pointer through a mirrored PPUADDR at 0x3FFE, write
	// through the canonical 0x2007, then read back through the mirrored
	// PPUDATA at 0x200F.
	b.Write(0x3FFE, 0x20)
	b.Write(0x3FFE, 0x00)
	b.Write(0x2007, 0x5A)

	b.Write(0x2006, 0x20)
	b.Write(0x2006, 0x00)
	b.Read(0x200F) // primes the read buffer
	if got := b.Read(0x200F); got != 0x5A {
		t.Errorf("buffered PPUDATA read = 0x%02X, want 0x5A", got)
	}
}

func TestControllerPorts(t *testing.T) {
	b := setupBus(t)
	pad := controller.New()
	b.AttachController(pad, 0)

	pad.PressButton(controller.A)
	pad.PressButton(controller.Start)

	b.Write(0x4016, 1)
	b.Write(0x4016, 0)

	want := []byte{1, 0, 0, 1, 0, 0, 0, 0} // A, B, Select, Start, ...
	for i, w := range want {
		if got := b.Read(0x4016); got != w {
			t.Errorf("read %d = %d, want %d", i, got, w)
		}
	}
	if got := b.Read(0x4016); got != 1 {
		t.Errorf("post-shift read = %d, want open-bus 1", got)
	}
}

func TestOpenBusReadsReturnZero(t *testing.T) {
	b := setupBus(t)

	for _, addr := range []uint16{0x4000, 0x4015, 0x4018, 0x8000} {
		if got := b.Read(addr); got != 0 {
			t.Errorf("read 0x%04X = 0x%02X, want 0", addr, got)
		}
	}
}

func TestCartridgeWindow(t *testing.T) {
	b := setupBus(t)
	b.InsertCartridge(buildNROM(t, func(prg []byte) {
		prg[0] = 0xDE
		prg[0x3FFF] = 0xAD
	}))

	if got := b.Read(0x8000); got != 0xDE {
		t.Errorf("read 0x8000 = 0x%02X, want 0xDE", got)
	}
	// 16 KiB PRG mirrors into the upper half.
	if got := b.Read(0xC000); got != 0xDE {
		t.Errorf("read 0xC000 = 0x%02X, want mirrored 0xDE", got)
	}
	if got := b.Read(0xFFFF); got != 0xAD {
		t.Errorf("read 0xFFFF = 0x%02X, want 0xAD", got)
	}
}

func TestLatchConsumeSemantics(t *testing.T) {
	b := setupBus(t)

	if b.TakeNMI() {
		t.Error("NMI latch should start clear")
	}
	b.TriggerNMI()
	if !b.TakeNMI() {
		t.Error("TakeNMI should observe the trigger")
	}
	if b.TakeNMI() {
		t.Error("TakeNMI must clear the latch")
	}

	b.TriggerDMA()
	if !b.TakeDMA() {
		t.Error("TakeDMA should observe the trigger")
	}
	if b.TakeDMA() {
		t.Error("TakeDMA must clear the latch")
	}
}

func TestReadSpanFromRAM(t *testing.T) {
	b := setupBus(t)
	for i := 0; i < 256; i++ {
		b.Write(0x0200+uint16(i), byte(i))
	}

	span := b.ReadSpan(0x0200, 256)
	for i, v := range span {
		if v != byte(i) {
			t.Fatalf("span[%d] = 0x%02X, want 0x%02X", i, v, i)
		}
	}

	// Mirrored pages resolve to the same storage.
	mirrored := b.ReadSpan(0x0A00, 256)
	for i := range mirrored {
		if mirrored[i] != span[i] {
			t.Fatal("mirrored span should alias the same RAM")
		}
	}
}

func TestReadSpanStraddlePanics(t *testing.T) {
	b := setupBus(t)
	defer func() {
		if recover() == nil {
			t.Error("a span straddling region boundaries must panic")
		}
	}()
	b.ReadSpan(0x07FF, 16)
}

func TestSilentReadDoesNotDisturbPPU(t *testing.T) {
	b := setupBus(t)
	b.InsertCartridge(buildNROM(t, nil))

	// Force VBlank by ticking into it.
	for i := 0; i < 241*ppu.ScanlineColCount+1; i++ {
		b.ppu.Clock()
	}

	if b.ReadSilent(0x2002)&0x80 == 0 {
		t.Fatal("silent status read should see VBlank")
	}
	if b.Read(0x2002)&0x80 == 0 {
		t.Fatal("VBlank should have survived the silent read")
	}
	if b.Read(0x2002)&0x80 != 0 {
		t.Fatal("normal read should have cleared VBlank")
	}
}
