package cpu

// State is the architectural state at a cycle boundary.
type State struct {
	// PC is the program counter.
	PC uint32
	// Regs are the general-purpose registers. Regs[0] is forced to zero on commit.
	Regs [NumRegs]uint32
	// HI holds the high word of a product or the remainder of a division.
	HI uint32
	// LO holds the low word of a product or the quotient of a division.
	LO uint32
}

// InitialState returns the power-on state with the PC at pc.
func InitialState(pc uint32) State {
	return State{PC: pc}
}
