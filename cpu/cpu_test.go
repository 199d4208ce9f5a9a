package cpu

import (
	"testing"
)

type mockBus struct {
	ram [65536]byte

	nmiPending bool
	dmaPending bool
}

func (b *mockBus) Read(addr uint16) byte       { return b.ram[addr] }
func (b *mockBus) ReadSilent(addr uint16) byte { return b.ram[addr] }

func (b *mockBus) Write(addr uint16, data byte) { b.ram[addr] = data }

func (b *mockBus) TakeNMI() bool {
	tmp := b.nmiPending
	b.nmiPending = false
	return tmp
}

func (b *mockBus) TakeDMA() bool {
	tmp := b.dmaPending
	b.dmaPending = false
	return tmp
}

func setupCPU(t *testing.T) (*CPU, *mockBus) {
	t.Helper()
	c := New()
	bus := &mockBus{}
	bus.ram[0xFFFC] = 0x00
	bus.ram[0xFFFD] = 0x80
	c.ConnectBus(bus)
	c.Reset()
	return c, bus
}

// executeOneInstruction runs the fetch clock plus however many debt clocks
// the instruction left behind.
func executeOneInstruction(c *CPU) {
	c.Clock()
	for !c.Ready() {
		c.Clock()
	}
}

func TestResetState(t *testing.T) {
	c, bus := setupCPU(t)
	bus.ram[0xFFFC] = 0x00
	bus.ram[0xFFFD] = 0xC0
	c.Reset()

	if c.PC != 0xC000 {
		t.Errorf("PC = 0x%04X, want 0xC000", c.PC)
	}
	if c.SP != 0xFF {
		t.Errorf("SP = 0x%02X, want 0xFF", c.SP)
	}
	if c.Cycles != 7 {
		t.Errorf("Cycles = %d, want 7", c.Cycles)
	}
}

func TestLoadStore(t *testing.T) {
	c, bus := setupCPU(t)

	// LDA #$42
	bus.Write(0x8000, 0xA9)
	bus.Write(0x8001, 0x42)
	executeOneInstruction(c)
	if c.A != 0x42 {
		t.Error("LDA IMM failed")
	}

	// STA $0110
	bus.Write(0x8002, 0x8D)
	bus.Write(0x8003, 0x10)
	bus.Write(0x8004, 0x01)
	executeOneInstruction(c)
	if bus.ram[0x0110] != 0x42 {
		t.Error("STA ABS failed")
	}

	// LDX $0110
	bus.Write(0x8005, 0xAE)
	bus.Write(0x8006, 0x10)
	bus.Write(0x8007, 0x01)
	executeOneInstruction(c)
	if c.X != 0x42 {
		t.Error("LDX ABS failed")
	}
}

func TestADCImmediate(t *testing.T) {
	c, bus := setupCPU(t)

	c.A = 0x20
	bus.Write(0x8000, 0x69) // ADC #$10
	bus.Write(0x8001, 0x10)
	c.Clock()

	if c.A != 0x30 {
		t.Errorf("A = 0x%02X, want 0x30", c.A)
	}
	if c.isSet(flagC) || c.isSet(flagV) || c.isSet(flagN) || c.isSet(flagZ) {
		t.Errorf("P = 0x%02X, want C=V=N=Z=0", c.P)
	}
	if c.PC != 0x8002 {
		t.Errorf("PC = 0x%04X, want 0x8002", c.PC)
	}
	if c.cyclesLeft != 2 {
		t.Errorf("cycle debt = %d, want 2", c.cyclesLeft)
	}
}

func TestADCOverflow(t *testing.T) {
	cases := []struct {
		a, m, carryIn byte
		result        byte
		c, v, n, z    bool
	}{
		{0x50, 0x10, 0, 0x60, false, false, false, false},
		{0x50, 0x50, 0, 0xA0, false, true, true, false},
		{0xD0, 0x90, 0, 0x60, true, true, false, false},
		{0xD0, 0xD0, 0, 0xA0, true, false, true, false},
		{0xFF, 0x01, 0, 0x00, true, false, false, true},
		{0x7F, 0x00, 1, 0x80, false, true, true, false},
	}

	for _, tc := range cases {
		c, bus := setupCPU(t)
		c.A = tc.a
		c.setFlag(flagC, tc.carryIn == 1)
		bus.Write(0x8000, 0x69)
		bus.Write(0x8001, tc.m)
		executeOneInstruction(c)

		if c.A != tc.result {
			t.Errorf("0x%02X + 0x%02X + %d: A = 0x%02X, want 0x%02X", tc.a, tc.m, tc.carryIn, c.A, tc.result)
		}
		if c.isSet(flagC) != tc.c || c.isSet(flagV) != tc.v || c.isSet(flagN) != tc.n || c.isSet(flagZ) != tc.z {
			t.Errorf("0x%02X + 0x%02X + %d: P = 0x%02X, want C=%v V=%v N=%v Z=%v",
				tc.a, tc.m, tc.carryIn, c.P, tc.c, tc.v, tc.n, tc.z)
		}
	}
}

func TestSBC(t *testing.T) {
	c, bus := setupCPU(t)

	// 0x50 - 0x30 with no borrow: carry stays set.
	c.A = 0x50
	c.setFlag(flagC, true)
	bus.Write(0x8000, 0xE9) // SBC #$30
	bus.Write(0x8001, 0x30)
	executeOneInstruction(c)
	if c.A != 0x20 {
		t.Errorf("A = 0x%02X, want 0x20", c.A)
	}
	if !c.isSet(flagC) {
		t.Error("C should be set (no borrow)")
	}

	// 0x20 - 0x30 borrows: carry cleared, result wraps.
	bus.Write(0x8002, 0xE9) // SBC #$30
	bus.Write(0x8003, 0x30)
	c.A = 0x20
	executeOneInstruction(c)
	if c.A != 0xF0 {
		t.Errorf("A = 0x%02X, want 0xF0", c.A)
	}
	if c.isSet(flagC) {
		t.Error("C should be clear (borrow)")
	}
	if !c.isSet(flagN) {
		t.Error("N should be set")
	}
}

func TestBranchNotTaken(t *testing.T) {
	c, bus := setupCPU(t)

	bus.Write(0x8000, 0xF0) // BEQ +0x10 with Z clear
	bus.Write(0x8001, 0x10)
	c.Clock()
	if c.PC != 0x8002 {
		t.Errorf("PC = 0x%04X, want 0x8002", c.PC)
	}
	if c.cyclesLeft != 2 {
		t.Errorf("cycle debt = %d, want 2", c.cyclesLeft)
	}
}

func TestBranchTaken(t *testing.T) {
	c, bus := setupCPU(t)

	c.setFlag(flagZ, true)
	bus.Write(0x8000, 0xF0) // BEQ +0x10
	bus.Write(0x8001, 0x10)
	c.Clock()
	if c.PC != 0x8012 {
		t.Errorf("PC = 0x%04X, want 0x8012", c.PC)
	}
	if c.cyclesLeft != 3 {
		t.Errorf("cycle debt = %d, want 3", c.cyclesLeft)
	}
}

func TestBranchTakenPageCross(t *testing.T) {
	c, bus := setupCPU(t)

	c.PC = 0x80FE
	c.setFlag(flagZ, true)
	bus.Write(0x80FE, 0xF0) // BEQ +0x04
	bus.Write(0x80FF, 0x04)
	c.Clock()
	if c.PC != 0x8104 {
		t.Errorf("PC = 0x%04X, want 0x8104", c.PC)
	}
	if c.cyclesLeft != 4 {
		t.Errorf("cycle debt = %d, want 4", c.cyclesLeft)
	}
}

func TestPageCrossCycle(t *testing.T) {
	c, bus := setupCPU(t)

	// LDA $80F0,X with X=0x08: no crossing, 4 cycles.
	c.X = 0x08
	bus.Write(0x8000, 0xBD)
	bus.Write(0x8001, 0xF0)
	bus.Write(0x8002, 0x80)
	c.Clock()
	if c.cyclesLeft != 4 {
		t.Errorf("no cross: cycle debt = %d, want 4", c.cyclesLeft)
	}
	for !c.Ready() {
		c.Clock()
	}

	// LDA $80F0,X with X=0x20: crosses into 0x8110, 5 cycles.
	c.PC = 0x8003
	c.X = 0x20
	bus.Write(0x8003, 0xBD)
	bus.Write(0x8004, 0xF0)
	bus.Write(0x8005, 0x80)
	c.Clock()
	if c.cyclesLeft != 5 {
		t.Errorf("cross: cycle debt = %d, want 5", c.cyclesLeft)
	}
}

func TestIndexedStoreHasNoPageCrossBonus(t *testing.T) {
	c, bus := setupCPU(t)

	c.A = 0x55
	c.X = 0xFF
	bus.Write(0x8000, 0x9D) // STA $80F0,X
	bus.Write(0x8001, 0xF0)
	bus.Write(0x8002, 0x80)
	c.Clock()
	if c.cyclesLeft != 5 {
		t.Errorf("cycle debt = %d, want 5", c.cyclesLeft)
	}
	if bus.ram[0x81EF] != 0x55 {
		t.Error("STA ABX missed its target")
	}
}

func TestCompareUsesWideArithmetic(t *testing.T) {
	c, bus := setupCPU(t)

	// 0x10 < 0x20: carry clear, negative from bit 7 of the difference.
	c.A = 0x10
	bus.Write(0x8000, 0xC9) // CMP #$20
	bus.Write(0x8001, 0x20)
	executeOneInstruction(c)
	if c.isSet(flagC) {
		t.Error("C should be clear for A < M")
	}
	if !c.isSet(flagN) {
		t.Error("N should be set from the difference")
	}

	// 0x80 >= 0x01 even though A is "negative" as an int8.
	c.A = 0x80
	bus.Write(0x8002, 0xC9) // CMP #$01
	bus.Write(0x8003, 0x01)
	executeOneInstruction(c)
	if !c.isSet(flagC) {
		t.Error("C should be set for unsigned A >= M")
	}

	c.A = 0x42
	bus.Write(0x8004, 0xC9) // CMP #$42
	bus.Write(0x8005, 0x42)
	executeOneInstruction(c)
	if !c.isSet(flagZ) || !c.isSet(flagC) {
		t.Error("equal compare should set Z and C")
	}
}

func TestShiftRotate(t *testing.T) {
	c, bus := setupCPU(t)

	c.A = 0b1101_0101
	bus.Write(0x8000, 0x0A) // ASL A
	executeOneInstruction(c)
	if c.A != 0b1010_1010 {
		t.Errorf("ASL: A = 0b%08b", c.A)
	}
	if !c.isSet(flagC) {
		t.Error("ASL should shift bit 7 into C")
	}

	// ROL pulls the pre-operation carry into bit 0.
	bus.Write(0x8001, 0x2A) // ROL A
	executeOneInstruction(c)
	if c.A != 0b0101_0101 {
		t.Errorf("ROL: A = 0b%08b", c.A)
	}
	if !c.isSet(flagC) {
		t.Error("ROL should shift bit 7 into C")
	}

	// ROR pulls the pre-operation carry into bit 7.
	bus.Write(0x8002, 0x6A) // ROR A
	executeOneInstruction(c)
	if c.A != 0b1010_1010 {
		t.Errorf("ROR: A = 0b%08b", c.A)
	}
	if !c.isSet(flagC) {
		t.Error("ROR should shift bit 0 into C")
	}

	bus.Write(0x8003, 0x4A) // LSR A
	executeOneInstruction(c)
	if c.A != 0b0101_0101 {
		t.Errorf("LSR: A = 0b%08b", c.A)
	}
	if c.isSet(flagN) {
		t.Error("LSR clears N")
	}
}

func TestReadModifyWriteMemory(t *testing.T) {
	c, bus := setupCPU(t)

	bus.Write(0x0010, 0x41)
	bus.Write(0x8000, 0xE6) // INC $10
	bus.Write(0x8001, 0x10)
	c.Clock()
	if bus.ram[0x0010] != 0x42 {
		t.Error("INC failed")
	}
	if c.cyclesLeft != 5 {
		t.Errorf("cycle debt = %d, want 5", c.cyclesLeft)
	}
	for !c.Ready() {
		c.Clock()
	}

	// RMW on abs,X always pays the full cost, crossed or not.
	c.X = 0
	bus.Write(0x0020, 0x80)
	bus.Write(0x8002, 0x5E) // LSR $0020,X
	bus.Write(0x8003, 0x20)
	bus.Write(0x8004, 0x00)
	c.Clock()
	if bus.ram[0x0020] != 0x40 {
		t.Error("LSR abs,X failed")
	}
	if c.cyclesLeft != 7 {
		t.Errorf("cycle debt = %d, want 7", c.cyclesLeft)
	}
}

func TestStackRoundTrip(t *testing.T) {
	c, _ := setupCPU(t)

	sp := c.SP
	c.pushStack(0x7A)
	if c.SP != sp-1 {
		t.Errorf("SP = 0x%02X after push, want 0x%02X", c.SP, sp-1)
	}
	if v := c.popStack(); v != 0x7A {
		t.Errorf("pop = 0x%02X, want 0x7A", v)
	}
	if c.SP != sp {
		t.Errorf("SP = 0x%02X after pop, want 0x%02X", c.SP, sp)
	}
}

func TestPushPopFlags(t *testing.T) {
	c, bus := setupCPU(t)

	// PHP always pushes with B and the ignored bit set.
	c.P = flagC | flagX
	bus.Write(0x8000, 0x08) // PHP
	executeOneInstruction(c)
	pushed := bus.ram[0x0100+uint16(c.SP)+1]
	if pushed != flagC|flagB|flagX {
		t.Errorf("pushed P = 0x%02X, want 0x%02X", pushed, flagC|flagB|flagX)
	}

	// PLP drops B and forces the ignored bit.
	bus.ram[0x0100+uint16(c.SP)+1] = 0xFF
	bus.Write(0x8001, 0x28) // PLP
	executeOneInstruction(c)
	if c.P&flagB != 0 {
		t.Error("PLP must clear B")
	}
	if c.P&flagX == 0 {
		t.Error("PLP must set the ignored bit")
	}
}

func TestJSRRTS(t *testing.T) {
	c, bus := setupCPU(t)

	bus.Write(0x8000, 0x20) // JSR $9000
	bus.Write(0x8001, 0x00)
	bus.Write(0x8002, 0x90)
	executeOneInstruction(c)
	if c.PC != 0x9000 {
		t.Errorf("PC = 0x%04X, want 0x9000", c.PC)
	}

	bus.Write(0x9000, 0x60) // RTS
	executeOneInstruction(c)
	if c.PC != 0x8003 {
		t.Errorf("PC = 0x%04X, want 0x8003", c.PC)
	}
}

func TestBRKRTI(t *testing.T) {
	c, bus := setupCPU(t)

	bus.ram[0xFFFE] = 0x00
	bus.ram[0xFFFF] = 0x90
	c.setFlag(flagC, true)
	bus.Write(0x8000, 0x00) // BRK
	executeOneInstruction(c)

	if c.PC != 0x9000 {
		t.Errorf("PC = 0x%04X, want 0x9000", c.PC)
	}
	if !c.isSet(flagI) {
		t.Error("BRK must set I")
	}
	pushedP := bus.ram[0x0100+uint16(c.SP)+1]
	if pushedP&flagB == 0 || pushedP&flagX == 0 {
		t.Errorf("pushed P = 0x%02X, want B and the ignored bit set", pushedP)
	}

	bus.Write(0x9000, 0x40) // RTI
	executeOneInstruction(c)
	if c.PC != 0x8002 {
		t.Errorf("PC = 0x%04X after RTI, want 0x8002", c.PC)
	}
	if c.P&flagB != 0 {
		t.Error("RTI must clear B")
	}
}

func TestJMPIndirectPageWrapBug(t *testing.T) {
	c, bus := setupCPU(t)

	// Pointer at 0x02FF: the high byte comes from 0x0200, not 0x0300.
	bus.ram[0x02FF] = 0x34
	bus.ram[0x0200] = 0x12
	bus.ram[0x0300] = 0x56
	bus.Write(0x8000, 0x6C) // JMP ($02FF)
	bus.Write(0x8001, 0xFF)
	bus.Write(0x8002, 0x02)
	executeOneInstruction(c)
	if c.PC != 0x1234 {
		t.Errorf("PC = 0x%04X, want 0x1234", c.PC)
	}
}

func TestBITFlags(t *testing.T) {
	c, bus := setupCPU(t)

	bus.ram[0x0010] = 0xC0
	c.A = 0x0F
	bus.Write(0x8000, 0x24) // BIT $10
	bus.Write(0x8001, 0x10)
	executeOneInstruction(c)
	if !c.isSet(flagN) || !c.isSet(flagV) {
		t.Error("BIT should copy operand bits 7/6 into N/V")
	}
	if !c.isSet(flagZ) {
		t.Error("BIT should set Z when A & M == 0")
	}
}

func TestNMIServicedAtFetchBoundary(t *testing.T) {
	c, bus := setupCPU(t)

	bus.ram[0xFFFA] = 0x00
	bus.ram[0xFFFB] = 0x90
	bus.Write(0x8000, 0xA9) // LDA #$01, 2 cycles of debt
	bus.Write(0x8001, 0x01)
	bus.Write(0x9000, 0xEA) // NOP at the handler

	c.Clock()
	bus.nmiPending = true

	// The NMI must not preempt the in-flight instruction.
	c.Clock()
	if !bus.nmiPending {
		t.Fatal("NMI consumed while cycle debt was pending")
	}
	c.Clock()

	// Next fetch boundary services it.
	c.Clock()
	if c.PC != 0x9001 {
		t.Errorf("PC = 0x%04X, want 0x9001 (one opcode into the handler)", c.PC)
	}
	if !c.isSet(flagI) {
		t.Error("NMI must set I")
	}

	// Return address on the stack points at the interrupted fetch.
	lo := bus.ram[0x0100+uint16(c.SP)+2]
	hi := bus.ram[0x0100+uint16(c.SP)+3]
	if join(lo, hi) != 0x8002 {
		t.Errorf("pushed return = 0x%04X, want 0x8002", join(lo, hi))
	}
}

func TestDMAStall(t *testing.T) {
	c, bus := setupCPU(t)

	bus.Write(0x8000, 0xEA) // NOP
	bus.dmaPending = true
	c.Clock()

	// 2 cycles for the NOP plus the 513/514 transfer stall.
	if c.cyclesLeft != 515 && c.cyclesLeft != 516 {
		t.Errorf("cycle debt = %d, want 515 or 516", c.cyclesLeft)
	}
	if bus.dmaPending {
		t.Error("DMA latch must be consumed")
	}
}

func TestIllegalLAX(t *testing.T) {
	c, bus := setupCPU(t)

	bus.ram[0x0010] = 0x3C
	bus.Write(0x8000, 0xA7) // LAX $10
	bus.Write(0x8001, 0x10)
	executeOneInstruction(c)
	if c.A != 0x3C || c.X != 0x3C {
		t.Errorf("A = 0x%02X X = 0x%02X, want both 0x3C", c.A, c.X)
	}
}

func TestIllegalSAX(t *testing.T) {
	c, bus := setupCPU(t)

	c.A = 0xF0
	c.X = 0x3C
	bus.Write(0x8000, 0x87) // SAX $10
	bus.Write(0x8001, 0x10)
	executeOneInstruction(c)
	if bus.ram[0x0010] != 0x30 {
		t.Errorf("stored 0x%02X, want A & X = 0x30", bus.ram[0x0010])
	}
}

func TestIllegalDCP(t *testing.T) {
	c, bus := setupCPU(t)

	c.A = 0x40
	bus.ram[0x0010] = 0x41
	bus.Write(0x8000, 0xC7) // DCP $10
	bus.Write(0x8001, 0x10)
	executeOneInstruction(c)
	if bus.ram[0x0010] != 0x40 {
		t.Errorf("memory = 0x%02X, want 0x40", bus.ram[0x0010])
	}
	if !c.isSet(flagZ) || !c.isSet(flagC) {
		t.Error("DCP should compare A against the decremented value")
	}
}

func TestIllegalISC(t *testing.T) {
	c, bus := setupCPU(t)

	c.A = 0x10
	c.setFlag(flagC, true)
	bus.ram[0x0010] = 0x04
	bus.Write(0x8000, 0xE7) // ISC $10
	bus.Write(0x8001, 0x10)
	executeOneInstruction(c)
	if bus.ram[0x0010] != 0x05 {
		t.Errorf("memory = 0x%02X, want 0x05", bus.ram[0x0010])
	}
	if c.A != 0x0B {
		t.Errorf("A = 0x%02X, want 0x0B", c.A)
	}
}

func TestIllegalSLO(t *testing.T) {
	c, bus := setupCPU(t)

	c.A = 0x01
	bus.ram[0x0010] = 0x81
	bus.Write(0x8000, 0x07) // SLO $10
	bus.Write(0x8001, 0x10)
	executeOneInstruction(c)
	if bus.ram[0x0010] != 0x02 {
		t.Errorf("memory = 0x%02X, want 0x02", bus.ram[0x0010])
	}
	if c.A != 0x03 {
		t.Errorf("A = 0x%02X, want 0x03", c.A)
	}
	if !c.isSet(flagC) {
		t.Error("SLO should feed C from the shifted-out bit")
	}
}

func TestIllegalRRA(t *testing.T) {
	c, bus := setupCPU(t)

	c.A = 0x10
	bus.ram[0x0010] = 0x03
	bus.Write(0x8000, 0x67) // RRA $10
	bus.Write(0x8001, 0x10)
	executeOneInstruction(c)
	// 0x03 rotates to 0x01 with C=1, then A = 0x10 + 0x01 + 1.
	if bus.ram[0x0010] != 0x01 {
		t.Errorf("memory = 0x%02X, want 0x01", bus.ram[0x0010])
	}
	if c.A != 0x12 {
		t.Errorf("A = 0x%02X, want 0x12", c.A)
	}
}

func TestUSBCAliasesSBC(t *testing.T) {
	c, bus := setupCPU(t)

	c.A = 0x50
	c.setFlag(flagC, true)
	bus.Write(0x8000, 0xEB) // USBC #$30
	bus.Write(0x8001, 0x30)
	executeOneInstruction(c)
	if c.A != 0x20 {
		t.Errorf("A = 0x%02X, want 0x20", c.A)
	}
}

func TestStatusIgnoredBitAlwaysPushed(t *testing.T) {
	c, bus := setupCPU(t)

	c.P = 0
	bus.Write(0x8000, 0x08) // PHP
	executeOneInstruction(c)
	if bus.ram[0x0100+uint16(c.SP)+1]&flagX == 0 {
		t.Error("the ignored bit must read back as 1 whenever P is pushed")
	}
}

func TestDisassemble(t *testing.T) {
	c, bus := setupCPU(t)

	bus.Write(0x8000, 0x4C)
	bus.Write(0x8001, 0xF5)
	bus.Write(0x8002, 0xC5)
	raw, text := c.Disassemble(0x8000)
	if text != "JMP $C5F5" {
		t.Errorf("text = %q, want %q", text, "JMP $C5F5")
	}
	if len(raw) != 3 {
		t.Errorf("len(raw) = %d, want 3", len(raw))
	}

	bus.Write(0x8003, 0xA7) // LAX, undocumented
	bus.Write(0x8004, 0x10)
	_, text = c.Disassemble(0x8003)
	if text != "*LAX $10" {
		t.Errorf("text = %q, want %q", text, "*LAX $10")
	}
}
