package cpu

// All arithmetic wraps on overflow; ADD and ADDI never trap.

// opADD handles ADD and ADDU.
func (c *cycle) opADD(in RType) {
	c.setReg(in.Rd, c.reg(in.Rs)+c.reg(in.Rt))
}

// opSUB handles SUB and SUBU.
func (c *cycle) opSUB(in RType) {
	c.setReg(in.Rd, c.reg(in.Rs)-c.reg(in.Rt))
}

// opADDI handles ADDI and ADDIU. The immediate is sign-extended.
func (c *cycle) opADDI(in IType) {
	c.setReg(in.Rt, c.reg(in.Rs)+SignExtend16(in.Imm))
}

// opSLT sets rd to 1 when rs < rt as signed values.
func (c *cycle) opSLT(in RType) {
	c.setReg(in.Rd, boolToWord(int32(c.reg(in.Rs)) < int32(c.reg(in.Rt))))
}

// opSLTI sets rt to 1 when rs < sign-extended immediate.
func (c *cycle) opSLTI(in IType) {
	c.setReg(in.Rt, boolToWord(int32(c.reg(in.Rs)) < int32(SignExtend16(in.Imm))))
}

// opMULT is a signed 32x32->64 multiply into HI:LO.
func (c *cycle) opMULT(in RType) {
	product := uint64(int64(int32(c.reg(in.Rs))) * int64(int32(c.reg(in.Rt))))
	c.next.HI = uint32(product >> 32)
	c.next.LO = uint32(product)
}

// opMULTU is an unsigned 32x32->64 multiply into HI:LO.
func (c *cycle) opMULTU(in RType) {
	product := uint64(c.reg(in.Rs)) * uint64(c.reg(in.Rt))
	c.next.HI = uint32(product >> 32)
	c.next.LO = uint32(product)
}

// opDIV is signed division: LO = quotient, HI = remainder.
// A zero divisor leaves HI and LO alone and raises a non-fatal fault.
func (c *cycle) opDIV(in RType) {
	divisor := int32(c.reg(in.Rt))
	if divisor == 0 {
		c.raise(FaultArithmetic, 0)
		return
	}

	// MinInt32 / -1 wraps to MinInt32 with remainder 0.
	dividend := int32(c.reg(in.Rs))
	c.next.LO = uint32(dividend / divisor)
	c.next.HI = uint32(dividend % divisor)
}

// opDIVU is unsigned division: LO = quotient, HI = remainder.
func (c *cycle) opDIVU(in RType) {
	divisor := c.reg(in.Rt)
	if divisor == 0 {
		c.raise(FaultArithmetic, 0)
		return
	}

	dividend := c.reg(in.Rs)
	c.next.LO = dividend / divisor
	c.next.HI = dividend % divisor
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
