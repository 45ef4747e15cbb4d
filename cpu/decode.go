package cpu

// Instruction is a decoded instruction word. The set of implementations is closed:
// RType, IType, JType, RegImm and Unsupported.
type Instruction interface {
	// Word returns the raw 32-bit encoding.
	Word() uint32
	isInstruction()
}

// RType is a register-register instruction (opcode 0), selected by Funct.
type RType struct {
	Raw   uint32
	Funct Funct
	Rs    uint8
	Rt    uint8
	Rd    uint8
	Shamt uint8
}

// IType is a register-immediate instruction: arithmetic, logical, load/store, BEQ..BGTZ.
type IType struct {
	Raw    uint32
	Opcode Opcode
	Rs     uint8
	Rt     uint8
	Imm    uint16
}

// JType is J or JAL with a 26-bit word index.
type JType struct {
	Raw    uint32
	Opcode Opcode
	Target uint32
}

// RegImm is a compare-against-zero branch (opcode 1), selected by Code.
type RegImm struct {
	Raw  uint32
	Rs   uint8
	Code RegImmCode
	Imm  uint16
}

// Unsupported is any word outside the supported table. Executing it halts the simulator.
type Unsupported struct {
	Raw    uint32
	Opcode Opcode
	Funct  Funct
}

func (i RType) Word() uint32       { return i.Raw }
func (i IType) Word() uint32       { return i.Raw }
func (i JType) Word() uint32       { return i.Raw }
func (i RegImm) Word() uint32      { return i.Raw }
func (i Unsupported) Word() uint32 { return i.Raw }

func (RType) isInstruction()       {}
func (IType) isInstruction()       {}
func (JType) isInstruction()       {}
func (RegImm) isInstruction()      {}
func (Unsupported) isInstruction() {}

// Field extraction.
func fieldOpcode(w uint32) Opcode { return Opcode(w >> 26) }
func fieldRs(w uint32) uint8      { return uint8(w>>21) & 0x1F }
func fieldRt(w uint32) uint8      { return uint8(w>>16) & 0x1F }
func fieldRd(w uint32) uint8      { return uint8(w>>11) & 0x1F }
func fieldShamt(w uint32) uint8   { return uint8(w>>6) & 0x1F }
func fieldFunct(w uint32) Funct   { return Funct(w & 0x3F) }
func fieldImm(w uint32) uint16    { return uint16(w) }
func fieldTarget(w uint32) uint32 { return w & 0x03FFFFFF }

// Decode maps any 32-bit word to an Instruction. It never fails: encodings outside the
// supported table come back as Unsupported.
func Decode(word uint32) Instruction {
	op := fieldOpcode(word)
	unsupported := Unsupported{Raw: word, Opcode: op, Funct: fieldFunct(word)}

	switch op {
	case OPSPECIAL:
		funct := fieldFunct(word)
		if _, ok := FunctNames[funct]; !ok {
			return unsupported
		}
		return RType{
			Raw:   word,
			Funct: funct,
			Rs:    fieldRs(word),
			Rt:    fieldRt(word),
			Rd:    fieldRd(word),
			Shamt: fieldShamt(word),
		}

	case OPREGIMM:
		code := RegImmCode(fieldRt(word))
		if _, ok := RegImmNames[code]; !ok {
			return unsupported
		}
		return RegImm{
			Raw:  word,
			Rs:   fieldRs(word),
			Code: code,
			Imm:  fieldImm(word),
		}

	case OPJ, OPJAL:
		return JType{Raw: word, Opcode: op, Target: fieldTarget(word)}
	}

	if _, ok := OpcodeNames[op]; !ok {
		return unsupported
	}
	return IType{
		Raw:    word,
		Opcode: op,
		Rs:     fieldRs(word),
		Rt:     fieldRt(word),
		Imm:    fieldImm(word),
	}
}
