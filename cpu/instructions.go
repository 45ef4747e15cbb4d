package cpu

import "fmt"

// Opcode is the primary operation selector, bits 31..26.
type Opcode uint8

// Supported opcodes.
const (
	OPSPECIAL Opcode = 0x00 // R-type, selected by funct
	OPREGIMM  Opcode = 0x01 // BLTZ/BGEZ, selected by rt
	OPJ       Opcode = 0x02
	OPJAL     Opcode = 0x03
	OPBEQ     Opcode = 0x04
	OPBNE     Opcode = 0x05
	OPBLEZ    Opcode = 0x06
	OPBGTZ    Opcode = 0x07
	OPADDI    Opcode = 0x08
	OPADDIU   Opcode = 0x09
	OPSLTI    Opcode = 0x0A
	OPANDI    Opcode = 0x0C
	OPORI     Opcode = 0x0D
	OPXORI    Opcode = 0x0E
	OPLUI     Opcode = 0x0F
	OPLB      Opcode = 0x20
	OPLH      Opcode = 0x21
	OPLW      Opcode = 0x23
	OPSB      Opcode = 0x28
	OPSH      Opcode = 0x29
	OPSW      Opcode = 0x2B
)

// Funct selects the operation of an R-type instruction, bits 5..0.
type Funct uint8

// Supported function codes.
const (
	FNSLL     Funct = 0x00
	FNSRL     Funct = 0x02
	FNSRA     Funct = 0x03
	FNJR      Funct = 0x08
	FNJALR    Funct = 0x09
	FNSYSCALL Funct = 0x0C
	FNMFHI    Funct = 0x10
	FNMTHI    Funct = 0x11
	FNMFLO    Funct = 0x12
	FNMTLO    Funct = 0x13
	FNMULT    Funct = 0x18
	FNMULTU   Funct = 0x19
	FNDIV     Funct = 0x1A
	FNDIVU    Funct = 0x1B
	FNADD     Funct = 0x20
	FNADDU    Funct = 0x21
	FNSUB     Funct = 0x22
	FNSUBU    Funct = 0x23
	FNAND     Funct = 0x24
	FNOR      Funct = 0x25
	FNXOR     Funct = 0x26
	FNNOR     Funct = 0x27
	FNSLT     Funct = 0x2A
)

// RegImmCode is the rt field of a REGIMM instruction.
type RegImmCode uint8

// Supported REGIMM branch codes.
const (
	RIBLTZ RegImmCode = 0x00
	RIBGEZ RegImmCode = 0x01
)

// SyscallExit is the $v0 value that terminates the simulation.
const SyscallExit = 10

// FunctNames maps supported function codes to mnemonics.
var FunctNames = map[Funct]string{
	FNSLL:     "sll",
	FNSRL:     "srl",
	FNSRA:     "sra",
	FNJR:      "jr",
	FNJALR:    "jalr",
	FNSYSCALL: "syscall",
	FNMFHI:    "mfhi",
	FNMTHI:    "mthi",
	FNMFLO:    "mflo",
	FNMTLO:    "mtlo",
	FNMULT:    "mult",
	FNMULTU:   "multu",
	FNDIV:     "div",
	FNDIVU:    "divu",
	FNADD:     "add",
	FNADDU:    "addu",
	FNSUB:     "sub",
	FNSUBU:    "subu",
	FNAND:     "and",
	FNOR:      "or",
	FNXOR:     "xor",
	FNNOR:     "nor",
	FNSLT:     "slt",
}

// OpcodeNames maps supported non-R-type opcodes to mnemonics.
var OpcodeNames = map[Opcode]string{
	OPJ:     "j",
	OPJAL:   "jal",
	OPBEQ:   "beq",
	OPBNE:   "bne",
	OPBLEZ:  "blez",
	OPBGTZ:  "bgtz",
	OPADDI:  "addi",
	OPADDIU: "addiu",
	OPSLTI:  "slti",
	OPANDI:  "andi",
	OPORI:   "ori",
	OPXORI:  "xori",
	OPLUI:   "lui",
	OPLB:    "lb",
	OPLH:    "lh",
	OPLW:    "lw",
	OPSB:    "sb",
	OPSH:    "sh",
	OPSW:    "sw",
}

// RegImmNames maps REGIMM codes to mnemonics.
var RegImmNames = map[RegImmCode]string{
	RIBLTZ: "bltz",
	RIBGEZ: "bgez",
}

// String returns the mnemonic, or "funct(0xNN)" for unsupported codes.
func (f Funct) String() string {
	if name, ok := FunctNames[f]; ok {
		return name
	}
	return fmt.Sprintf("funct(0x%02x)", uint8(f))
}

// String returns the mnemonic, or "opcode(0xNN)" for unsupported codes.
func (o Opcode) String() string {
	if name, ok := OpcodeNames[o]; ok {
		return name
	}
	switch o {
	case OPSPECIAL:
		return "special"
	case OPREGIMM:
		return "regimm"
	}
	return fmt.Sprintf("opcode(0x%02x)", uint8(o))
}

// String returns the mnemonic.
func (c RegImmCode) String() string {
	if name, ok := RegImmNames[c]; ok {
		return name
	}
	return fmt.Sprintf("regimm(0x%02x)", uint8(c))
}
