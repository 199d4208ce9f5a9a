package cpu

// State is a register snapshot for debuggers and trace logs. Building one
// never touches the bus, so it is safe to take mid-instruction.
type State struct {
	PC     uint16
	SP     byte
	A      byte
	X      byte
	Y      byte
	P      byte
	Cycles uint64
}

func (c *CPU) State() State {
	return State{
		PC:     c.PC,
		SP:     c.SP,
		A:      c.A,
		X:      c.X,
		Y:      c.Y,
		P:      c.P,
		Cycles: c.Cycles,
	}
}
