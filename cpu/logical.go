package cpu

func (c *cycle) opAND(in RType) {
	c.setReg(in.Rd, c.reg(in.Rs)&c.reg(in.Rt))
}

func (c *cycle) opOR(in RType) {
	c.setReg(in.Rd, c.reg(in.Rs)|c.reg(in.Rt))
}

func (c *cycle) opXOR(in RType) {
	c.setReg(in.Rd, c.reg(in.Rs)^c.reg(in.Rt))
}

func (c *cycle) opNOR(in RType) {
	c.setReg(in.Rd, ^(c.reg(in.Rs) | c.reg(in.Rt)))
}

// Logical immediates are zero-extended.

func (c *cycle) opANDI(in IType) {
	c.setReg(in.Rt, c.reg(in.Rs)&ZeroExtend16(in.Imm))
}

func (c *cycle) opORI(in IType) {
	c.setReg(in.Rt, c.reg(in.Rs)|ZeroExtend16(in.Imm))
}

func (c *cycle) opXORI(in IType) {
	c.setReg(in.Rt, c.reg(in.Rs)^ZeroExtend16(in.Imm))
}

// opLUI loads the immediate into the upper half of rt and clears the lower half.
func (c *cycle) opLUI(in IType) {
	c.setReg(in.Rt, ZeroExtend16(in.Imm)<<16)
}

// opSLL shifts rt left by shamt.
func (c *cycle) opSLL(in RType) {
	c.setReg(in.Rd, c.reg(in.Rt)<<in.Shamt)
}

// opSRL shifts rt right by shamt, filling with zeros.
func (c *cycle) opSRL(in RType) {
	c.setReg(in.Rd, c.reg(in.Rt)>>in.Shamt)
}

// opSRA shifts rt right by shamt, copying the sign bit.
func (c *cycle) opSRA(in RType) {
	c.setReg(in.Rd, uint32(int32(c.reg(in.Rt))>>in.Shamt))
}
