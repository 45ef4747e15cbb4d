package assembler

import (
	"fmt"

	"github.com/Urethramancer/mips32/cpu"
)

var mathsFuncts = map[string]cpu.Funct{
	"add":   cpu.FNADD,
	"addu":  cpu.FNADDU,
	"sub":   cpu.FNSUB,
	"subu":  cpu.FNSUBU,
	"slt":   cpu.FNSLT,
	"mult":  cpu.FNMULT,
	"multu": cpu.FNMULTU,
	"div":   cpu.FNDIV,
	"divu":  cpu.FNDIVU,
}

var mathsOpcodes = map[string]cpu.Opcode{
	"addi":  cpu.OPADDI,
	"addiu": cpu.OPADDIU,
	"slti":  cpu.OPSLTI,
}

// assembleMaths handles the arithmetic group.
func assembleMaths(asm *Assembler, mn string, operands []Operand, pc uint32) (uint32, error) {
	switch mn {
	case "add", "addu", "sub", "subu", "slt":
		return assembleThreeReg(mn, mathsFuncts[mn], operands)
	case "mult", "multu", "div", "divu":
		return assembleMulDiv(mn, operands)
	case "addi", "addiu", "slti":
		return assembleSignedImmediate(asm, mn, operands)
	}
	return 0, fmt.Errorf("unknown arithmetic instruction: %s", mn)
}

// assembleThreeReg encodes "op rd, rs, rt".
func assembleThreeReg(mn string, funct cpu.Funct, operands []Operand) (uint32, error) {
	if err := expectOperands(mn, operands, 3); err != nil {
		return 0, err
	}
	r, err := registers(mn, operands)
	if err != nil {
		return 0, err
	}
	return cpu.EncodeR(funct, r[1], r[2], r[0], 0), nil
}

// assembleMulDiv encodes "op rs, rt". Results go to HI and LO.
func assembleMulDiv(mn string, operands []Operand) (uint32, error) {
	if err := expectOperands(mn, operands, 2); err != nil {
		return 0, err
	}
	r, err := registers(mn, operands)
	if err != nil {
		return 0, err
	}
	return cpu.EncodeR(mathsFuncts[mn], r[0], r[1], 0, 0), nil
}

// assembleSignedImmediate encodes "op rt, rs, imm" with a sign-extended immediate.
func assembleSignedImmediate(asm *Assembler, mn string, operands []Operand) (uint32, error) {
	if err := expectOperands(mn, operands, 3); err != nil {
		return 0, err
	}
	r, err := registers(mn, operands[:2])
	if err != nil {
		return 0, err
	}
	v, err := asm.value(operands[2])
	if err != nil {
		return 0, err
	}
	imm, err := signed16(v)
	if err != nil {
		return 0, err
	}
	return cpu.EncodeI(mathsOpcodes[mn], r[1], r[0], imm), nil
}
