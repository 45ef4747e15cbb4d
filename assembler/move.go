package assembler

import (
	"fmt"

	"github.com/Urethramancer/mips32/cpu"
)

var memoryOpcodes = map[string]cpu.Opcode{
	"lb": cpu.OPLB,
	"lh": cpu.OPLH,
	"lw": cpu.OPLW,
	"sb": cpu.OPSB,
	"sh": cpu.OPSH,
	"sw": cpu.OPSW,
}

// assembleMove handles loads, stores and the HI/LO transfers.
func assembleMove(asm *Assembler, mn string, operands []Operand, pc uint32) (uint32, error) {
	switch mn {
	case "lb", "lh", "lw", "sb", "sh", "sw":
		return assembleMemory(asm, mn, operands)
	case "mfhi", "mflo":
		return assembleHiLo(mn, operands, true)
	case "mthi", "mtlo":
		return assembleHiLo(mn, operands, false)
	}
	return 0, fmt.Errorf("unknown move instruction: %s", mn)
}

// assembleMemory encodes "op rt, offset(base)". A bare constant or label address is
// accepted as an offset from $zero.
func assembleMemory(asm *Assembler, mn string, operands []Operand) (uint32, error) {
	if err := expectOperands(mn, operands, 2); err != nil {
		return 0, err
	}
	r, err := registers(mn, operands[:1])
	if err != nil {
		return 0, err
	}

	mem := operands[1]
	base := uint8(cpu.RegZero)
	var off int64
	switch mem.Kind {
	case OperandMemory:
		base = mem.Register
		off = mem.Value
	case OperandImmediate, OperandLabel:
		off, err = asm.value(mem)
		if err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("%s requires an offset(base) operand, got %q", mn, mem.Raw)
	}

	imm, err := signed16(off)
	if err != nil {
		return 0, err
	}
	return cpu.EncodeI(memoryOpcodes[mn], base, r[0], imm), nil
}

// assembleHiLo encodes mfhi/mflo (destination rd) and mthi/mtlo (source rs).
func assembleHiLo(mn string, operands []Operand, from bool) (uint32, error) {
	if err := expectOperands(mn, operands, 1); err != nil {
		return 0, err
	}
	r, err := registers(mn, operands)
	if err != nil {
		return 0, err
	}

	var funct cpu.Funct
	switch mn {
	case "mfhi":
		funct = cpu.FNMFHI
	case "mflo":
		funct = cpu.FNMFLO
	case "mthi":
		funct = cpu.FNMTHI
	case "mtlo":
		funct = cpu.FNMTLO
	}

	if from {
		return cpu.EncodeR(funct, 0, 0, r[0], 0), nil
	}
	return cpu.EncodeR(funct, r[0], 0, 0, 0), nil
}
