package assembler

import (
	"fmt"

	"github.com/Urethramancer/mips32/cpu"
)

// assembleFlow dispatches to the correct flow-control assembly function.
func assembleFlow(asm *Assembler, mn string, operands []Operand, pc uint32) (uint32, error) {
	switch mn {
	case "beq", "bne":
		return assembleBranchCompare(asm, mn, operands, pc)
	case "blez", "bgtz", "bltz", "bgez":
		return assembleBranchZero(asm, mn, operands, pc)
	case "j", "jal":
		return assembleJump(asm, mn, operands, pc)
	case "jr":
		return assembleJr(operands)
	case "jalr":
		return assembleJalr(operands)
	}
	return 0, fmt.Errorf("unknown flow instruction: %s", mn)
}

// BEQ / BNE

func assembleBranchCompare(asm *Assembler, mn string, operands []Operand, pc uint32) (uint32, error) {
	if err := expectOperands(mn, operands, 3); err != nil {
		return 0, err
	}
	r, err := registers(mn, operands[:2])
	if err != nil {
		return 0, err
	}
	off, err := asm.branchTo(operands[2], pc)
	if err != nil {
		return 0, err
	}

	op := cpu.OPBEQ
	if mn == "bne" {
		op = cpu.OPBNE
	}
	return cpu.EncodeI(op, r[0], r[1], off), nil
}

// BLEZ / BGTZ / BLTZ / BGEZ

func assembleBranchZero(asm *Assembler, mn string, operands []Operand, pc uint32) (uint32, error) {
	if err := expectOperands(mn, operands, 2); err != nil {
		return 0, err
	}
	r, err := registers(mn, operands[:1])
	if err != nil {
		return 0, err
	}
	off, err := asm.branchTo(operands[1], pc)
	if err != nil {
		return 0, err
	}

	switch mn {
	case "blez":
		return cpu.EncodeI(cpu.OPBLEZ, r[0], 0, off), nil
	case "bgtz":
		return cpu.EncodeI(cpu.OPBGTZ, r[0], 0, off), nil
	case "bltz":
		return cpu.EncodeRegImm(cpu.RIBLTZ, r[0], off), nil
	}
	return cpu.EncodeRegImm(cpu.RIBGEZ, r[0], off), nil
}

func (asm *Assembler) branchTo(op Operand, pc uint32) (uint16, error) {
	target, err := asm.target(op)
	if err != nil {
		return 0, err
	}
	return branchOffset(pc, target)
}

// J / JAL

func assembleJump(asm *Assembler, mn string, operands []Operand, pc uint32) (uint32, error) {
	if err := expectOperands(mn, operands, 1); err != nil {
		return 0, err
	}
	target, err := asm.target(operands[0])
	if err != nil {
		return 0, err
	}
	if target&0xF0000000 != pc&0xF0000000 {
		return 0, fmt.Errorf("jump target 0x%08x is outside the 256MB region of 0x%08x", target, pc)
	}

	op := cpu.OPJ
	if mn == "jal" {
		op = cpu.OPJAL
	}
	return cpu.EncodeJ(op, (target>>2)&0x03FFFFFF), nil
}

// JR / JALR

func assembleJr(operands []Operand) (uint32, error) {
	if err := expectOperands("jr", operands, 1); err != nil {
		return 0, err
	}
	r, err := registers("jr", operands)
	if err != nil {
		return 0, err
	}
	return cpu.EncodeR(cpu.FNJR, r[0], 0, 0, 0), nil
}

// assembleJalr accepts "jalr rs" (linking $ra) and "jalr rd, rs".
func assembleJalr(operands []Operand) (uint32, error) {
	r, err := registers("jalr", operands)
	if err != nil {
		return 0, err
	}
	switch len(r) {
	case 1:
		return cpu.EncodeR(cpu.FNJALR, r[0], 0, cpu.RegRA, 0), nil
	case 2:
		return cpu.EncodeR(cpu.FNJALR, r[1], 0, r[0], 0), nil
	}
	return 0, fmt.Errorf("jalr requires 1 or 2 operands, got %d", len(r))
}
