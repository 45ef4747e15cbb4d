package cpu

// Result is what a single execute reports back to the cycle driver.
type Result struct {
	// Jumped is set when a taken branch or jump wrote next.PC.
	Jumped bool
	// Halt requests the Halted status.
	Halt bool
	// Fault raised by this instruction, if any.
	Fault *Fault
}

// cycle carries one instruction's inputs and outputs. cur is only ever read.
type cycle struct {
	cur  *State
	next *State
	bus  *Bus
	res  Result
}

// Execute computes the effects of inst into next, reading registers only from cur.
// next must start as a copy of cur. Memory side effects go straight to bus.
// Every variant, including Unsupported, has a defined outcome.
func Execute(inst Instruction, cur, next *State, bus *Bus) Result {
	c := &cycle{cur: cur, next: next, bus: bus}

	switch in := inst.(type) {
	case RType:
		c.special(in)
	case IType:
		c.immediate(in)
	case JType:
		c.jump(in)
	case RegImm:
		c.regimm(in)
	default:
		c.unimplemented(inst.Word())
	}

	next.Regs[RegZero] = 0
	return c.res
}

// special dispatches R-type instructions on their function code.
func (c *cycle) special(in RType) {
	switch in.Funct {
	case FNSLL:
		c.opSLL(in)
	case FNSRL:
		c.opSRL(in)
	case FNSRA:
		c.opSRA(in)
	case FNJR:
		c.opJR(in)
	case FNJALR:
		c.opJALR(in)
	case FNSYSCALL:
		c.opSYSCALL(in)
	case FNMFHI:
		c.opMFHI(in)
	case FNMTHI:
		c.opMTHI(in)
	case FNMFLO:
		c.opMFLO(in)
	case FNMTLO:
		c.opMTLO(in)
	case FNMULT:
		c.opMULT(in)
	case FNMULTU:
		c.opMULTU(in)
	case FNDIV:
		c.opDIV(in)
	case FNDIVU:
		c.opDIVU(in)
	case FNADD, FNADDU:
		c.opADD(in)
	case FNSUB, FNSUBU:
		c.opSUB(in)
	case FNAND:
		c.opAND(in)
	case FNOR:
		c.opOR(in)
	case FNXOR:
		c.opXOR(in)
	case FNNOR:
		c.opNOR(in)
	case FNSLT:
		c.opSLT(in)
	default:
		c.unimplemented(in.Raw)
	}
}

// immediate dispatches I-type instructions on their opcode.
func (c *cycle) immediate(in IType) {
	switch in.Opcode {
	case OPBEQ:
		c.opBEQ(in)
	case OPBNE:
		c.opBNE(in)
	case OPBLEZ:
		c.opBLEZ(in)
	case OPBGTZ:
		c.opBGTZ(in)
	case OPADDI, OPADDIU:
		c.opADDI(in)
	case OPSLTI:
		c.opSLTI(in)
	case OPANDI:
		c.opANDI(in)
	case OPORI:
		c.opORI(in)
	case OPXORI:
		c.opXORI(in)
	case OPLUI:
		c.opLUI(in)
	case OPLB:
		c.opLB(in)
	case OPLH:
		c.opLH(in)
	case OPLW:
		c.opLW(in)
	case OPSB:
		c.opSB(in)
	case OPSH:
		c.opSH(in)
	case OPSW:
		c.opSW(in)
	default:
		c.unimplemented(in.Raw)
	}
}

// unimplemented raises the fatal fault and requests a halt.
func (c *cycle) unimplemented(raw uint32) {
	c.res.Halt = true
	c.res.Fault = &Fault{Kind: FaultUnimplemented, PC: c.cur.PC, Raw: raw}
}

// raise records a non-fatal fault unless one is already pending for this step.
func (c *cycle) raise(kind FaultKind, addr uint32) {
	if c.res.Fault != nil {
		return
	}
	c.res.Fault = &Fault{Kind: kind, PC: c.cur.PC, Raw: c.bus.Read32(c.cur.PC), Addr: addr}
}

// setPC takes a branch or jump.
func (c *cycle) setPC(addr uint32) {
	c.next.PC = addr
	c.res.Jumped = true
}

// reg reads register r from the current state.
func (c *cycle) reg(r uint8) uint32 {
	return c.cur.Regs[r&0x1F]
}

// setReg writes register r of the next state.
func (c *cycle) setReg(r uint8, v uint32) {
	c.next.Regs[r&0x1F] = v
}
