package cpu

// Immediate extension. Every instruction that widens a 16-bit immediate goes through
// one of these:
//
//	SignExtend16: ADDI, ADDIU, SLTI, load/store offsets, branch offsets
//	ZeroExtend16: ANDI, ORI, XORI (LUI shifts the raw pattern into the top half)

// SignExtend16 replicates bit 15 of v into bits 31..16.
func SignExtend16(v uint16) uint32 {
	return uint32(int32(int16(v)))
}

// ZeroExtend16 widens v with zero high bits.
func ZeroExtend16(v uint16) uint32 {
	return uint32(v)
}

// SignExtend8 replicates bit 7 of v into bits 31..8.
func SignExtend8(v uint8) uint32 {
	return uint32(int32(int8(v)))
}

// BranchTarget is the taken destination of a PC-relative branch at pc.
// Offsets count words from the instruction after the branch.
func BranchTarget(pc uint32, imm uint16) uint32 {
	return pc + 4 + SignExtend16(imm)<<2
}

// JumpTarget is the destination of J/JAL at pc: the top four bits of pc joined with
// the 26-bit word index.
func JumpTarget(pc, target uint32) uint32 {
	return (pc & 0xF0000000) | (target&0x03FFFFFF)<<2
}

// EffectiveAddress is base plus the sign-extended offset.
func EffectiveAddress(base uint32, offset uint16) uint32 {
	return base + SignExtend16(offset)
}
