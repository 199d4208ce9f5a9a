package cpu

import "fmt"

// Disassemble renders the instruction at addr without disturbing the
// machine: all fetches go through the silent read path. It returns the
// raw instruction bytes and the assembly text; undocumented opcodes are
// prefixed with '*' the way nestest logs them.
func (c *CPU) Disassemble(addr uint16) (raw []byte, text string) {
	opcode := c.bus.ReadSilent(addr)
	instr := &optable[opcode]
	if instr.Operate == nil {
		return []byte{opcode}, fmt.Sprintf(".byte $%02X", opcode)
	}

	raw = make([]byte, instr.Mode.Size())
	for i := range raw {
		raw[i] = c.bus.ReadSilent(addr + uint16(i))
	}

	name := instr.Name
	if instr.Illegal {
		name = "*" + name
	}

	switch instr.Mode {
	case IMP:
		text = name
	case ACC:
		text = name + " A"
	case IMM:
		text = fmt.Sprintf("%s #$%02X", name, raw[1])
	case ZP:
		text = fmt.Sprintf("%s $%02X", name, raw[1])
	case ZPX:
		text = fmt.Sprintf("%s $%02X,X", name, raw[1])
	case ZPY:
		text = fmt.Sprintf("%s $%02X,Y", name, raw[1])
	case REL:
		target := addr + 2 + uint16(int8(raw[1]))
		text = fmt.Sprintf("%s $%04X", name, target)
	case ABS:
		text = fmt.Sprintf("%s $%04X", name, join(raw[1], raw[2]))
	case ABX:
		text = fmt.Sprintf("%s $%04X,X", name, join(raw[1], raw[2]))
	case ABY:
		text = fmt.Sprintf("%s $%04X,Y", name, join(raw[1], raw[2]))
	case IND:
		text = fmt.Sprintf("%s ($%04X)", name, join(raw[1], raw[2]))
	case INX:
		text = fmt.Sprintf("%s ($%02X,X)", name, raw[1])
	case INY:
		text = fmt.Sprintf("%s ($%02X),Y", name, raw[1])
	}
	return raw, text
}
