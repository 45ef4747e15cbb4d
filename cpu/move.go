package cpu

// opMFHI copies HI into rd.
func (c *cycle) opMFHI(in RType) {
	c.setReg(in.Rd, c.cur.HI)
}

// opMTHI copies rs into HI.
func (c *cycle) opMTHI(in RType) {
	c.next.HI = c.reg(in.Rs)
}

// opMFLO copies LO into rd.
func (c *cycle) opMFLO(in RType) {
	c.setReg(in.Rd, c.cur.LO)
}

// opMTLO copies rs into LO.
func (c *cycle) opMTLO(in RType) {
	c.next.LO = c.reg(in.Rs)
}

// load32 reads through the bus, recording a memory fault for unmapped addresses.
func (c *cycle) load32(addr uint32) uint32 {
	if !c.bus.Mapped(addr) {
		c.raise(FaultMemory, addr)
	}
	return c.bus.Read32(addr)
}

// store32 writes through the bus, recording a memory fault for unmapped addresses.
// The bus drops the write in that case.
func (c *cycle) store32(addr, value uint32) {
	if !c.bus.Mapped(addr) {
		c.raise(FaultMemory, addr)
	}
	c.bus.Write32(addr, value)
}

// opLB loads the byte at rs+offset, sign-extended.
func (c *cycle) opLB(in IType) {
	data := c.load32(EffectiveAddress(c.reg(in.Rs), in.Imm))
	c.setReg(in.Rt, SignExtend8(uint8(data)))
}

// opLH loads the halfword at rs+offset, sign-extended.
func (c *cycle) opLH(in IType) {
	data := c.load32(EffectiveAddress(c.reg(in.Rs), in.Imm))
	c.setReg(in.Rt, SignExtend16(uint16(data)))
}

// opLW loads the word at rs+offset.
func (c *cycle) opLW(in IType) {
	c.setReg(in.Rt, c.load32(EffectiveAddress(c.reg(in.Rs), in.Imm)))
}

// opSB stores the low byte of rt, keeping the other three bytes of the word.
func (c *cycle) opSB(in IType) {
	addr := EffectiveAddress(c.reg(in.Rs), in.Imm)
	data := c.load32(addr)
	c.store32(addr, (data&0xFFFFFF00)|(c.reg(in.Rt)&0xFF))
}

// opSH stores the low halfword of rt, keeping the upper halfword of the word.
func (c *cycle) opSH(in IType) {
	addr := EffectiveAddress(c.reg(in.Rs), in.Imm)
	data := c.load32(addr)
	c.store32(addr, (data&0xFFFF0000)|(c.reg(in.Rt)&0xFFFF))
}

// opSW stores rt at rs+offset.
func (c *cycle) opSW(in IType) {
	c.store32(EffectiveAddress(c.reg(in.Rs), in.Imm), c.reg(in.Rt))
}
