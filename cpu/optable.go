package cpu

// optable is the 256-entry decode table. Slots left nil are opcodes the
// interpreter refuses to execute; hitting one is an emulator bug, not a ROM
// bug. Cycle counts follow the documented 6502 table; PageCycle marks the
// "+1 on page cross" opportunities. Indexed stores and read-modify-write
// instructions pay their worst-case cost unconditionally.
var optable = [256]Instruction{
	// ADC
	0x69: {"ADC", IMM, (*CPU).adc, 2, false, false},
	0x65: {"ADC", ZP, (*CPU).adc, 3, false, false},
	0x75: {"ADC", ZPX, (*CPU).adc, 4, false, false},
	0x6D: {"ADC", ABS, (*CPU).adc, 4, false, false},
	0x7D: {"ADC", ABX, (*CPU).adc, 4, true, false},
	0x79: {"ADC", ABY, (*CPU).adc, 4, true, false},
	0x61: {"ADC", INX, (*CPU).adc, 6, false, false},
	0x71: {"ADC", INY, (*CPU).adc, 5, true, false},

	// AND
	0x29: {"AND", IMM, (*CPU).and, 2, false, false},
	0x25: {"AND", ZP, (*CPU).and, 3, false, false},
	0x35: {"AND", ZPX, (*CPU).and, 4, false, false},
	0x2D: {"AND", ABS, (*CPU).and, 4, false, false},
	0x3D: {"AND", ABX, (*CPU).and, 4, true, false},
	0x39: {"AND", ABY, (*CPU).and, 4, true, false},
	0x21: {"AND", INX, (*CPU).and, 6, false, false},
	0x31: {"AND", INY, (*CPU).and, 5, true, false},

	// ASL
	0x0A: {"ASL", ACC, (*CPU).asl, 2, false, false},
	0x06: {"ASL", ZP, (*CPU).asl, 5, false, false},
	0x16: {"ASL", ZPX, (*CPU).asl, 6, false, false},
	0x0E: {"ASL", ABS, (*CPU).asl, 6, false, false},
	0x1E: {"ASL", ABX, (*CPU).asl, 7, false, false},

	// Branches
	0x90: {"BCC", REL, (*CPU).bcc, 2, false, false},
	0xB0: {"BCS", REL, (*CPU).bcs, 2, false, false},
	0xF0: {"BEQ", REL, (*CPU).beq, 2, false, false},
	0x30: {"BMI", REL, (*CPU).bmi, 2, false, false},
	0xD0: {"BNE", REL, (*CPU).bne, 2, false, false},
	0x10: {"BPL", REL, (*CPU).bpl, 2, false, false},
	0x50: {"BVC", REL, (*CPU).bvc, 2, false, false},
	0x70: {"BVS", REL, (*CPU).bvs, 2, false, false},

	// BIT
	0x24: {"BIT", ZP, (*CPU).bit, 3, false, false},
	0x2C: {"BIT", ABS, (*CPU).bit, 4, false, false},

	// BRK
	0x00: {"BRK", IMP, (*CPU).brk, 7, false, false},

	// Flag operations
	0x18: {"CLC", IMP, (*CPU).clc, 2, false, false},
	0xD8: {"CLD", IMP, (*CPU).cld, 2, false, false},
	0x58: {"CLI", IMP, (*CPU).cli, 2, false, false},
	0xB8: {"CLV", IMP, (*CPU).clv, 2, false, false},
	0x38: {"SEC", IMP, (*CPU).sec, 2, false, false},
	0xF8: {"SED", IMP, (*CPU).sed, 2, false, false},
	0x78: {"SEI", IMP, (*CPU).sei, 2, false, false},

	// CMP
	0xC9: {"CMP", IMM, (*CPU).cmp, 2, false, false},
	0xC5: {"CMP", ZP, (*CPU).cmp, 3, false, false},
	0xD5: {"CMP", ZPX, (*CPU).cmp, 4, false, false},
	0xCD: {"CMP", ABS, (*CPU).cmp, 4, false, false},
	0xDD: {"CMP", ABX, (*CPU).cmp, 4, true, false},
	0xD9: {"CMP", ABY, (*CPU).cmp, 4, true, false},
	0xC1: {"CMP", INX, (*CPU).cmp, 6, false, false},
	0xD1: {"CMP", INY, (*CPU).cmp, 5, true, false},

	// CPX / CPY
	0xE0: {"CPX", IMM, (*CPU).cpx, 2, false, false},
	0xE4: {"CPX", ZP, (*CPU).cpx, 3, false, false},
	0xEC: {"CPX", ABS, (*CPU).cpx, 4, false, false},
	0xC0: {"CPY", IMM, (*CPU).cpy, 2, false, false},
	0xC4: {"CPY", ZP, (*CPU).cpy, 3, false, false},
	0xCC: {"CPY", ABS, (*CPU).cpy, 4, false, false},

	// DEC
	0xC6: {"DEC", ZP, (*CPU).dec, 5, false, false},
	0xD6: {"DEC", ZPX, (*CPU).dec, 6, false, false},
	0xCE: {"DEC", ABS, (*CPU).dec, 6, false, false},
	0xDE: {"DEC", ABX, (*CPU).dec, 7, false, false},

	// Register increments/decrements
	0xCA: {"DEX", IMP, (*CPU).dex, 2, false, false},
	0x88: {"DEY", IMP, (*CPU).dey, 2, false, false},
	0xE8: {"INX", IMP, (*CPU).inx, 2, false, false},
	0xC8: {"INY", IMP, (*CPU).iny, 2, false, false},

	// EOR
	0x49: {"EOR", IMM, (*CPU).eor, 2, false, false},
	0x45: {"EOR", ZP, (*CPU).eor, 3, false, false},
	0x55: {"EOR", ZPX, (*CPU).eor, 4, false, false},
	0x4D: {"EOR", ABS, (*CPU).eor, 4, false, false},
	0x5D: {"EOR", ABX, (*CPU).eor, 4, true, false},
	0x59: {"EOR", ABY, (*CPU).eor, 4, true, false},
	0x41: {"EOR", INX, (*CPU).eor, 6, false, false},
	0x51: {"EOR", INY, (*CPU).eor, 5, true, false},

	// INC
	0xE6: {"INC", ZP, (*CPU).inc, 5, false, false},
	0xF6: {"INC", ZPX, (*CPU).inc, 6, false, false},
	0xEE: {"INC", ABS, (*CPU).inc, 6, false, false},
	0xFE: {"INC", ABX, (*CPU).inc, 7, false, false},

	// JMP / JSR / returns
	0x4C: {"JMP", ABS, (*CPU).jmp, 3, false, false},
	0x6C: {"JMP", IND, (*CPU).jmp, 5, false, false},
	0x20: {"JSR", ABS, (*CPU).jsr, 6, false, false},
	0x60: {"RTS", IMP, (*CPU).rts, 6, false, false},
	0x40: {"RTI", IMP, (*CPU).rti, 6, false, false},

	// LDA
	0xA9: {"LDA", IMM, (*CPU).lda, 2, false, false},
	0xA5: {"LDA", ZP, (*CPU).lda, 3, false, false},
	0xB5: {"LDA", ZPX, (*CPU).lda, 4, false, false},
	0xAD: {"LDA", ABS, (*CPU).lda, 4, false, false},
	0xBD: {"LDA", ABX, (*CPU).lda, 4, true, false},
	0xB9: {"LDA", ABY, (*CPU).lda, 4, true, false},
	0xA1: {"LDA", INX, (*CPU).lda, 6, false, false},
	0xB1: {"LDA", INY, (*CPU).lda, 5, true, false},

	// LDX
	0xA2: {"LDX", IMM, (*CPU).ldx, 2, false, false},
	0xA6: {"LDX", ZP, (*CPU).ldx, 3, false, false},
	0xB6: {"LDX", ZPY, (*CPU).ldx, 4, false, false},
	0xAE: {"LDX", ABS, (*CPU).ldx, 4, false, false},
	0xBE: {"LDX", ABY, (*CPU).ldx, 4, true, false},

	// LDY
	0xA0: {"LDY", IMM, (*CPU).ldy, 2, false, false},
	0xA4: {"LDY", ZP, (*CPU).ldy, 3, false, false},
	0xB4: {"LDY", ZPX, (*CPU).ldy, 4, false, false},
	0xAC: {"LDY", ABS, (*CPU).ldy, 4, false, false},
	0xBC: {"LDY", ABX, (*CPU).ldy, 4, true, false},

	// LSR
	0x4A: {"LSR", ACC, (*CPU).lsr, 2, false, false},
	0x46: {"LSR", ZP, (*CPU).lsr, 5, false, false},
	0x56: {"LSR", ZPX, (*CPU).lsr, 6, false, false},
	0x4E: {"LSR", ABS, (*CPU).lsr, 6, false, false},
	0x5E: {"LSR", ABX, (*CPU).lsr, 7, false, false},

	// NOP
	0xEA: {"NOP", IMP, (*CPU).nop, 2, false, false},

	// ORA
	0x09: {"ORA", IMM, (*CPU).ora, 2, false, false},
	0x05: {"ORA", ZP, (*CPU).ora, 3, false, false},
	0x15: {"ORA", ZPX, (*CPU).ora, 4, false, false},
	0x0D: {"ORA", ABS, (*CPU).ora, 4, false, false},
	0x1D: {"ORA", ABX, (*CPU).ora, 4, true, false},
	0x19: {"ORA", ABY, (*CPU).ora, 4, true, false},
	0x01: {"ORA", INX, (*CPU).ora, 6, false, false},
	0x11: {"ORA", INY, (*CPU).ora, 5, true, false},

	// Stack operations
	0x48: {"PHA", IMP, (*CPU).pha, 3, false, false},
	0x08: {"PHP", IMP, (*CPU).php, 3, false, false},
	0x68: {"PLA", IMP, (*CPU).pla, 4, false, false},
	0x28: {"PLP", IMP, (*CPU).plp, 4, false, false},

	// ROL
	0x2A: {"ROL", ACC, (*CPU).rol, 2, false, false},
	0x26: {"ROL", ZP, (*CPU).rol, 5, false, false},
	0x36: {"ROL", ZPX, (*CPU).rol, 6, false, false},
	0x2E: {"ROL", ABS, (*CPU).rol, 6, false, false},
	0x3E: {"ROL", ABX, (*CPU).rol, 7, false, false},

	// ROR
	0x6A: {"ROR", ACC, (*CPU).ror, 2, false, false},
	0x66: {"ROR", ZP, (*CPU).ror, 5, false, false},
	0x76: {"ROR", ZPX, (*CPU).ror, 6, false, false},
	0x6E: {"ROR", ABS, (*CPU).ror, 6, false, false},
	0x7E: {"ROR", ABX, (*CPU).ror, 7, false, false},

	// SBC
	0xE9: {"SBC", IMM, (*CPU).sbc, 2, false, false},
	0xE5: {"SBC", ZP, (*CPU).sbc, 3, false, false},
	0xF5: {"SBC", ZPX, (*CPU).sbc, 4, false, false},
	0xED: {"SBC", ABS, (*CPU).sbc, 4, false, false},
	0xFD: {"SBC", ABX, (*CPU).sbc, 4, true, false},
	0xF9: {"SBC", ABY, (*CPU).sbc, 4, true, false},
	0xE1: {"SBC", INX, (*CPU).sbc, 6, false, false},
	0xF1: {"SBC", INY, (*CPU).sbc, 5, true, false},

	// STA
	0x85: {"STA", ZP, (*CPU).sta, 3, false, false},
	0x95: {"STA", ZPX, (*CPU).sta, 4, false, false},
	0x8D: {"STA", ABS, (*CPU).sta, 4, false, false},
	0x9D: {"STA", ABX, (*CPU).sta, 5, false, false},
	0x99: {"STA", ABY, (*CPU).sta, 5, false, false},
	0x81: {"STA", INX, (*CPU).sta, 6, false, false},
	0x91: {"STA", INY, (*CPU).sta, 6, false, false},

	// STX / STY
	0x86: {"STX", ZP, (*CPU).stx, 3, false, false},
	0x96: {"STX", ZPY, (*CPU).stx, 4, false, false},
	0x8E: {"STX", ABS, (*CPU).stx, 4, false, false},
	0x84: {"STY", ZP, (*CPU).sty, 3, false, false},
	0x94: {"STY", ZPX, (*CPU).sty, 4, false, false},
	0x8C: {"STY", ABS, (*CPU).sty, 4, false, false},

	// Transfers
	0xAA: {"TAX", IMP, (*CPU).tax, 2, false, false},
	0xA8: {"TAY", IMP, (*CPU).tay, 2, false, false},
	0xBA: {"TSX", IMP, (*CPU).tsx, 2, false, false},
	0x8A: {"TXA", IMP, (*CPU).txa, 2, false, false},
	0x9A: {"TXS", IMP, (*CPU).txs, 2, false, false},
	0x98: {"TYA", IMP, (*CPU).tya, 2, false, false},

	// Undocumented NOPs
	0x1A: {"NOP", IMP, (*CPU).nop, 2, false, true},
	0x3A: {"NOP", IMP, (*CPU).nop, 2, false, true},
	0x5A: {"NOP", IMP, (*CPU).nop, 2, false, true},
	0x7A: {"NOP", IMP, (*CPU).nop, 2, false, true},
	0xDA: {"NOP", IMP, (*CPU).nop, 2, false, true},
	0xFA: {"NOP", IMP, (*CPU).nop, 2, false, true},
	0x80: {"NOP", IMM, (*CPU).nop, 2, false, true},
	0x82: {"NOP", IMM, (*CPU).nop, 2, false, true},
	0x89: {"NOP", IMM, (*CPU).nop, 2, false, true},
	0xC2: {"NOP", IMM, (*CPU).nop, 2, false, true},
	0xE2: {"NOP", IMM, (*CPU).nop, 2, false, true},
	0x04: {"NOP", ZP, (*CPU).nop, 3, false, true},
	0x44: {"NOP", ZP, (*CPU).nop, 3, false, true},
	0x64: {"NOP", ZP, (*CPU).nop, 3, false, true},
	0x14: {"NOP", ZPX, (*CPU).nop, 4, false, true},
	0x34: {"NOP", ZPX, (*CPU).nop, 4, false, true},
	0x54: {"NOP", ZPX, (*CPU).nop, 4, false, true},
	0x74: {"NOP", ZPX, (*CPU).nop, 4, false, true},
	0xD4: {"NOP", ZPX, (*CPU).nop, 4, false, true},
	0xF4: {"NOP", ZPX, (*CPU).nop, 4, false, true},
	0x0C: {"NOP", ABS, (*CPU).nop, 4, false, true},
	0x1C: {"NOP", ABX, (*CPU).nop, 4, true, true},
	0x3C: {"NOP", ABX, (*CPU).nop, 4, true, true},
	0x5C: {"NOP", ABX, (*CPU).nop, 4, true, true},
	0x7C: {"NOP", ABX, (*CPU).nop, 4, true, true},
	0xDC: {"NOP", ABX, (*CPU).nop, 4, true, true},
	0xFC: {"NOP", ABX, (*CPU).nop, 4, true, true},

	// LAX
	0xA7: {"LAX", ZP, (*CPU).lax, 3, false, true},
	0xB7: {"LAX", ZPY, (*CPU).lax, 4, false, true},
	0xAF: {"LAX", ABS, (*CPU).lax, 4, false, true},
	0xBF: {"LAX", ABY, (*CPU).lax, 4, true, true},
	0xA3: {"LAX", INX, (*CPU).lax, 6, false, true},
	0xB3: {"LAX", INY, (*CPU).lax, 5, true, true},

	// SAX
	0x87: {"SAX", ZP, (*CPU).sax, 3, false, true},
	0x97: {"SAX", ZPY, (*CPU).sax, 4, false, true},
	0x8F: {"SAX", ABS, (*CPU).sax, 4, false, true},
	0x83: {"SAX", INX, (*CPU).sax, 6, false, true},

	// USBC, an alias of SBC
	0xEB: {"USBC", IMM, (*CPU).sbc, 2, false, true},

	// DCP
	0xC7: {"DCP", ZP, (*CPU).dcp, 5, false, true},
	0xD7: {"DCP", ZPX, (*CPU).dcp, 6, false, true},
	0xCF: {"DCP", ABS, (*CPU).dcp, 6, false, true},
	0xDF: {"DCP", ABX, (*CPU).dcp, 7, false, true},
	0xDB: {"DCP", ABY, (*CPU).dcp, 7, false, true},
	0xC3: {"DCP", INX, (*CPU).dcp, 8, false, true},
	0xD3: {"DCP", INY, (*CPU).dcp, 8, false, true},

	// ISC
	0xE7: {"ISC", ZP, (*CPU).isc, 5, false, true},
	0xF7: {"ISC", ZPX, (*CPU).isc, 6, false, true},
	0xEF: {"ISC", ABS, (*CPU).isc, 6, false, true},
	0xFF: {"ISC", ABX, (*CPU).isc, 7, false, true},
	0xFB: {"ISC", ABY, (*CPU).isc, 7, false, true},
	0xE3: {"ISC", INX, (*CPU).isc, 8, false, true},
	0xF3: {"ISC", INY, (*CPU).isc, 8, false, true},

	// SLO
	0x07: {"SLO", ZP, (*CPU).slo, 5, false, true},
	0x17: {"SLO", ZPX, (*CPU).slo, 6, false, true},
	0x0F: {"SLO", ABS, (*CPU).slo, 6, false, true},
	0x1F: {"SLO", ABX, (*CPU).slo, 7, false, true},
	0x1B: {"SLO", ABY, (*CPU).slo, 7, false, true},
	0x03: {"SLO", INX, (*CPU).slo, 8, false, true},
	0x13: {"SLO", INY, (*CPU).slo, 8, false, true},

	// RLA
	0x27: {"RLA", ZP, (*CPU).rla, 5, false, true},
	0x37: {"RLA", ZPX, (*CPU).rla, 6, false, true},
	0x2F: {"RLA", ABS, (*CPU).rla, 6, false, true},
	0x3F: {"RLA", ABX, (*CPU).rla, 7, false, true},
	0x3B: {"RLA", ABY, (*CPU).rla, 7, false, true},
	0x23: {"RLA", INX, (*CPU).rla, 8, false, true},
	0x33: {"RLA", INY, (*CPU).rla, 8, false, true},

	// SRE
	0x47: {"SRE", ZP, (*CPU).sre, 5, false, true},
	0x57: {"SRE", ZPX, (*CPU).sre, 6, false, true},
	0x4F: {"SRE", ABS, (*CPU).sre, 6, false, true},
	0x5F: {"SRE", ABX, (*CPU).sre, 7, false, true},
	0x5B: {"SRE", ABY, (*CPU).sre, 7, false, true},
	0x43: {"SRE", INX, (*CPU).sre, 8, false, true},
	0x53: {"SRE", INY, (*CPU).sre, 8, false, true},

	// RRA
	0x67: {"RRA", ZP, (*CPU).rra, 5, false, true},
	0x77: {"RRA", ZPX, (*CPU).rra, 6, false, true},
	0x6F: {"RRA", ABS, (*CPU).rra, 6, false, true},
	0x7F: {"RRA", ABX, (*CPU).rra, 7, false, true},
	0x7B: {"RRA", ABY, (*CPU).rra, 7, false, true},
	0x63: {"RRA", INX, (*CPU).rra, 8, false, true},
	0x73: {"RRA", INY, (*CPU).rra, 8, false, true},
}

// Decode exposes the table entry for an opcode. Callers must treat the
// entry as read-only.
func Decode(opcode byte) *Instruction {
	return &optable[opcode]
}
