package assembler

import (
	"fmt"

	"github.com/Urethramancer/mips32/cpu"
)

var logicalFuncts = map[string]cpu.Funct{
	"and": cpu.FNAND,
	"or":  cpu.FNOR,
	"xor": cpu.FNXOR,
	"nor": cpu.FNNOR,
	"sll": cpu.FNSLL,
	"srl": cpu.FNSRL,
	"sra": cpu.FNSRA,
}

var logicalOpcodes = map[string]cpu.Opcode{
	"andi": cpu.OPANDI,
	"ori":  cpu.OPORI,
	"xori": cpu.OPXORI,
}

// assembleLogical handles bitwise operations and shifts.
func assembleLogical(asm *Assembler, mn string, operands []Operand, pc uint32) (uint32, error) {
	switch mn {
	case "and", "or", "xor", "nor":
		return assembleThreeReg(mn, logicalFuncts[mn], operands)
	case "andi", "ori", "xori":
		return assembleUnsignedImmediate(asm, mn, operands)
	case "lui":
		return assembleLui(asm, operands)
	case "sll", "srl", "sra":
		return assembleShift(asm, mn, operands)
	}
	return 0, fmt.Errorf("unknown logical instruction: %s", mn)
}

// assembleUnsignedImmediate encodes "op rt, rs, imm" with a zero-extended immediate.
func assembleUnsignedImmediate(asm *Assembler, mn string, operands []Operand) (uint32, error) {
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
	imm, err := unsigned16(v)
	if err != nil {
		return 0, err
	}
	return cpu.EncodeI(logicalOpcodes[mn], r[1], r[0], imm), nil
}

// assembleLui encodes "lui rt, imm".
func assembleLui(asm *Assembler, operands []Operand) (uint32, error) {
	if err := expectOperands("lui", operands, 2); err != nil {
		return 0, err
	}
	r, err := registers("lui", operands[:1])
	if err != nil {
		return 0, err
	}
	v, err := asm.value(operands[1])
	if err != nil {
		return 0, err
	}
	imm, err := unsigned16(v)
	if err != nil {
		return 0, err
	}
	return cpu.EncodeI(cpu.OPLUI, 0, r[0], imm), nil
}

// assembleShift encodes "op rd, rt, shamt".
func assembleShift(asm *Assembler, mn string, operands []Operand) (uint32, error) {
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
	if v < 0 || v > 31 {
		return 0, fmt.Errorf("shift amount %d out of range 0-31", v)
	}
	return cpu.EncodeR(logicalFuncts[mn], 0, r[1], r[0], uint8(v)), nil
}
