package cpu

// EncodeR builds an R-type word.
func EncodeR(funct Funct, rs, rt, rd, shamt uint8) uint32 {
	return uint32(rs&0x1F)<<21 |
		uint32(rt&0x1F)<<16 |
		uint32(rd&0x1F)<<11 |
		uint32(shamt&0x1F)<<6 |
		uint32(funct&0x3F)
}

// EncodeI builds an I-type word.
func EncodeI(op Opcode, rs, rt uint8, imm uint16) uint32 {
	return uint32(op&0x3F)<<26 |
		uint32(rs&0x1F)<<21 |
		uint32(rt&0x1F)<<16 |
		uint32(imm)
}

// EncodeJ builds a J-type word from a 26-bit word index.
func EncodeJ(op Opcode, target uint32) uint32 {
	return uint32(op&0x3F)<<26 | target&0x03FFFFFF
}

// EncodeRegImm builds a REGIMM branch word.
func EncodeRegImm(code RegImmCode, rs uint8, imm uint16) uint32 {
	return EncodeI(OPREGIMM, rs, uint8(code), imm)
}

// Encode rebuilds the word for inst from its fields. Unsupported returns its raw word.
func Encode(inst Instruction) uint32 {
	switch in := inst.(type) {
	case RType:
		return EncodeR(in.Funct, in.Rs, in.Rt, in.Rd, in.Shamt)
	case IType:
		return EncodeI(in.Opcode, in.Rs, in.Rt, in.Imm)
	case JType:
		return EncodeJ(in.Opcode, in.Target)
	case RegImm:
		return EncodeRegImm(in.Code, in.Rs, in.Imm)
	default:
		return inst.Word()
	}
}
