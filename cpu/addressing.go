package cpu

// AddrMode identifies one of the thirteen 6502 addressing modes.
type AddrMode int

const (
	IMP AddrMode = iota // implied
	ACC                 // accumulator
	IMM                 // immediate
	ZP                  // zero page
	ZPX                 // zero page, X indexed
	ZPY                 // zero page, Y indexed
	REL                 // relative
	ABS                 // absolute
	ABX                 // absolute, X indexed
	ABY                 // absolute, Y indexed
	IND                 // indirect
	INX                 // indexed indirect, (zp,X)
	INY                 // indirect indexed, (zp),Y
)

// Size returns the full instruction size in bytes for the mode.
func (m AddrMode) Size() int {
	switch m {
	case IMP, ACC:
		return 1
	case IMM, ZP, ZPX, ZPY, REL, INX, INY:
		return 2
	case ABS, ABX, ABY, IND:
		return 3
	}
	return 1
}

func (m AddrMode) String() string {
	switch m {
	case IMP:
		return "IMP"
	case ACC:
		return "ACC"
	case IMM:
		return "IMM"
	case ZP:
		return "ZP"
	case ZPX:
		return "ZPX"
	case ZPY:
		return "ZPY"
	case REL:
		return "REL"
	case ABS:
		return "ABS"
	case ABX:
		return "ABX"
	case ABY:
		return "ABY"
	case IND:
		return "IND"
	case INX:
		return "INX"
	case INY:
		return "INY"
	}
	return "???"
}

// Operand is the decoded input of an instruction: the byte the mode
// resolves to, the effective address when the mode has one, and whether the
// resolution crossed a page boundary.
type Operand struct {
	Value       byte
	Addr        uint16
	HasAddr     bool
	PageCrossed bool
}

func join(ll, hh byte) uint16 {
	return uint16(hh)<<8 | uint16(ll)
}

// fetchOperand resolves the operand for the given mode. PC still points at
// the opcode; operand bytes follow it.
func (c *CPU) fetchOperand(m AddrMode) Operand {
	switch m {
	case IMP:
		return Operand{}

	case ACC:
		return Operand{Value: c.A}

	case IMM:
		addr := c.PC + 1
		return Operand{Value: c.bus.Read(addr), Addr: addr, HasAddr: true}

	case ZP:
		addr := uint16(c.bus.Read(c.PC + 1))
		return Operand{Value: c.bus.Read(addr), Addr: addr, HasAddr: true}

	case ZPX:
		addr := uint16(c.bus.Read(c.PC+1) + c.X)
		return Operand{Value: c.bus.Read(addr), Addr: addr, HasAddr: true}

	case ZPY:
		addr := uint16(c.bus.Read(c.PC+1) + c.Y)
		return Operand{Value: c.bus.Read(addr), Addr: addr, HasAddr: true}

	case REL:
		addr := c.PC + 1
		offset := c.bus.Read(addr)
		target := c.PC + uint16(int8(offset))
		return Operand{
			Value:       offset,
			Addr:        addr,
			HasAddr:     true,
			PageCrossed: c.PC&0xFF00 != target&0xFF00,
		}

	case ABS:
		addr := join(c.bus.Read(c.PC+1), c.bus.Read(c.PC+2))
		return Operand{Value: c.bus.Read(addr), Addr: addr, HasAddr: true}

	case ABX:
		ll := c.bus.Read(c.PC + 1)
		hh := c.bus.Read(c.PC + 2)
		addr := join(ll, hh) + uint16(c.X)
		return Operand{
			Value:       c.bus.Read(addr),
			Addr:        addr,
			HasAddr:     true,
			PageCrossed: uint16(ll)+uint16(c.X) > 0xFF,
		}

	case ABY:
		ll := c.bus.Read(c.PC + 1)
		hh := c.bus.Read(c.PC + 2)
		addr := join(ll, hh) + uint16(c.Y)
		return Operand{
			Value:       c.bus.Read(addr),
			Addr:        addr,
			HasAddr:     true,
			PageCrossed: uint16(ll)+uint16(c.Y) > 0xFF,
		}

	case IND:
		ptr := join(c.bus.Read(c.PC+1), c.bus.Read(c.PC+2))
		// The high byte is fetched without carrying into the page: a pointer
		// at 0xXXFF wraps to 0xXX00.
		lo := c.bus.Read(ptr)
		hi := c.bus.Read(ptr&0xFF00 | (ptr+1)&0x00FF)
		addr := join(lo, hi)
		return Operand{Value: c.bus.Read(addr), Addr: addr, HasAddr: true}

	case INX:
		zp := c.bus.Read(c.PC+1) + c.X
		lo := c.bus.Read(uint16(zp))
		hi := c.bus.Read(uint16(zp + 1))
		addr := join(lo, hi)
		return Operand{Value: c.bus.Read(addr), Addr: addr, HasAddr: true}

	case INY:
		zp := c.bus.Read(c.PC + 1)
		lo := c.bus.Read(uint16(zp))
		hi := c.bus.Read(uint16(zp + 1))
		addr := join(lo, hi) + uint16(c.Y)
		return Operand{
			Value:       c.bus.Read(addr),
			Addr:        addr,
			HasAddr:     true,
			PageCrossed: uint16(lo)+uint16(c.Y) > 0xFF,
		}
	}
	return Operand{}
}
