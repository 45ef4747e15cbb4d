package assembler

import (
	"fmt"
	"math"
)

// assembleFunc encodes one instruction at pc.
type assembleFunc func(asm *Assembler, mn string, operands []Operand, pc uint32) (uint32, error)

// instructionSet maps every accepted mnemonic to its encoder.
var instructionSet = map[string]assembleFunc{
	// maths.go
	"add":   assembleMaths,
	"addu":  assembleMaths,
	"sub":   assembleMaths,
	"subu":  assembleMaths,
	"slt":   assembleMaths,
	"addi":  assembleMaths,
	"addiu": assembleMaths,
	"slti":  assembleMaths,
	"mult":  assembleMaths,
	"multu": assembleMaths,
	"div":   assembleMaths,
	"divu":  assembleMaths,
	// logical.go
	"and":  assembleLogical,
	"or":   assembleLogical,
	"xor":  assembleLogical,
	"nor":  assembleLogical,
	"andi": assembleLogical,
	"ori":  assembleLogical,
	"xori": assembleLogical,
	"lui":  assembleLogical,
	"sll":  assembleLogical,
	"srl":  assembleLogical,
	"sra":  assembleLogical,
	// move.go
	"lb":   assembleMove,
	"lh":   assembleMove,
	"lw":   assembleMove,
	"sb":   assembleMove,
	"sh":   assembleMove,
	"sw":   assembleMove,
	"mfhi": assembleMove,
	"mflo": assembleMove,
	"mthi": assembleMove,
	"mtlo": assembleMove,
	// flow.go
	"beq":  assembleFlow,
	"bne":  assembleFlow,
	"blez": assembleFlow,
	"bgtz": assembleFlow,
	"bltz": assembleFlow,
	"bgez": assembleFlow,
	"j":    assembleFlow,
	"jal":  assembleFlow,
	"jr":   assembleFlow,
	"jalr": assembleFlow,
	// trap.go
	"syscall": assembleTrap,
	// misc.go
	"nop":  assembleMisc,
	"move": assembleMisc,
	"li":   assembleMisc,
}

// expectOperands checks the operand count.
func expectOperands(mn string, operands []Operand, n int) error {
	if len(operands) != n {
		return fmt.Errorf("%s requires %d operand(s), got %d", mn, n, len(operands))
	}
	return nil
}

// registers extracts register numbers from operands, which must all be registers.
func registers(mn string, operands []Operand) ([]uint8, error) {
	regs := make([]uint8, len(operands))
	for i, op := range operands {
		if op.Kind != OperandRegister {
			return nil, fmt.Errorf("%s operand %d must be a register, got %q", mn, i+1, op.Raw)
		}
		regs[i] = op.Register
	}
	return regs, nil
}

// value resolves an immediate or label operand to a number. Labels are looked up first as
// symbols, then as addresses.
func (asm *Assembler) value(op Operand) (int64, error) {
	switch op.Kind {
	case OperandImmediate:
		return op.Value, nil
	case OperandLabel:
		if v, ok := asm.symbols[op.Label]; ok {
			return v, nil
		}
		if addr, ok := asm.labels[op.Label]; ok {
			return int64(addr), nil
		}
		return 0, fmt.Errorf("undefined symbol: %s", op.Raw)
	}
	return 0, fmt.Errorf("expected a constant, got %q", op.Raw)
}

// signed16 encodes v as a 16-bit two's complement immediate.
func signed16(v int64) (uint16, error) {
	if v < math.MinInt16 || v > math.MaxInt16 {
		return 0, fmt.Errorf("immediate %d out of signed 16-bit range", v)
	}
	return uint16(int16(v)), nil
}

// unsigned16 encodes v as a zero-extended 16-bit immediate.
func unsigned16(v int64) (uint16, error) {
	if v < 0 || v > math.MaxUint16 {
		return 0, fmt.Errorf("immediate %d out of unsigned 16-bit range", v)
	}
	return uint16(v), nil
}

// target resolves a branch or jump destination, which must be word aligned.
func (asm *Assembler) target(op Operand) (uint32, error) {
	v, err := asm.value(op)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > math.MaxUint32 {
		return 0, fmt.Errorf("target %d out of range", v)
	}
	if v%4 != 0 {
		return 0, fmt.Errorf("target 0x%x is not word aligned", v)
	}
	return uint32(v), nil
}

// branchOffset computes the word offset from the delay-free PC+4 base to target.
func branchOffset(pc, target uint32) (uint16, error) {
	delta := int64(target) - int64(pc) - 4
	if delta%4 != 0 {
		return 0, fmt.Errorf("branch from 0x%08x to 0x%08x is not a whole number of words", pc, target)
	}
	diff := delta / 4
	if diff < math.MinInt16 || diff > math.MaxInt16 {
		return 0, fmt.Errorf("branch target 0x%08x out of range from 0x%08x", target, pc)
	}
	return uint16(int16(diff)), nil
}
