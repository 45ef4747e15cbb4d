package cpu

// Branch conditions read the current registers. A taken branch lands on
// PC + 4 + (offset << 2); a branch not taken falls through to the default PC rule.

// branch takes the branch at imm when cond holds.
func (c *cycle) branch(cond bool, imm uint16) {
	if cond {
		c.setPC(BranchTarget(c.cur.PC, imm))
	}
}

func (c *cycle) opBEQ(in IType) {
	c.branch(c.reg(in.Rs) == c.reg(in.Rt), in.Imm)
}

func (c *cycle) opBNE(in IType) {
	c.branch(c.reg(in.Rs) != c.reg(in.Rt), in.Imm)
}

func (c *cycle) opBLEZ(in IType) {
	c.branch(int32(c.reg(in.Rs)) <= 0, in.Imm)
}

func (c *cycle) opBGTZ(in IType) {
	c.branch(int32(c.reg(in.Rs)) > 0, in.Imm)
}

// regimm handles BLTZ and BGEZ.
func (c *cycle) regimm(in RegImm) {
	v := int32(c.reg(in.Rs))
	switch in.Code {
	case RIBLTZ:
		c.branch(v < 0, in.Imm)
	case RIBGEZ:
		c.branch(v >= 0, in.Imm)
	default:
		c.unimplemented(in.Raw)
	}
}

// jump handles J and JAL.
func (c *cycle) jump(in JType) {
	switch in.Opcode {
	case OPJ:
		c.setPC(JumpTarget(c.cur.PC, in.Target))
	case OPJAL:
		c.setReg(RegRA, c.cur.PC+4)
		c.setPC(JumpTarget(c.cur.PC, in.Target))
	default:
		c.unimplemented(in.Raw)
	}
}

// opJR jumps to the address in rs.
func (c *cycle) opJR(in RType) {
	c.setPC(c.reg(in.Rs))
}

// opJALR jumps to the address in rs and links PC+4 into rd.
func (c *cycle) opJALR(in RType) {
	target := c.reg(in.Rs)
	c.setReg(in.Rd, c.cur.PC+4)
	c.setPC(target)
}
