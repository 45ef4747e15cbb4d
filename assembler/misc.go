package assembler

import (
	"fmt"
	"math"

	"github.com/Urethramancer/mips32/cpu"
)

// assembleMisc handles the single-word pseudo-instructions.
func assembleMisc(asm *Assembler, mn string, operands []Operand, pc uint32) (uint32, error) {
	switch mn {
	case "nop":
		if err := expectOperands(mn, operands, 0); err != nil {
			return 0, err
		}
		return 0, nil

	case "move":
		// addu rd, rs, $zero
		if err := expectOperands(mn, operands, 2); err != nil {
			return 0, err
		}
		r, err := registers(mn, operands)
		if err != nil {
			return 0, err
		}
		return cpu.EncodeR(cpu.FNADDU, r[1], cpu.RegZero, r[0], 0), nil

	case "li":
		return assembleLi(asm, operands)
	}
	return 0, fmt.Errorf("unknown instruction: %s", mn)
}

// assembleLi loads a 16-bit constant: addiu for signed values, ori for 0x8000-0xffff.
// Wider constants need an explicit lui/ori pair.
func assembleLi(asm *Assembler, operands []Operand) (uint32, error) {
	if err := expectOperands("li", operands, 2); err != nil {
		return 0, err
	}
	r, err := registers("li", operands[:1])
	if err != nil {
		return 0, err
	}
	v, err := asm.value(operands[1])
	if err != nil {
		return 0, err
	}

	switch {
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return cpu.EncodeI(cpu.OPADDIU, cpu.RegZero, r[0], uint16(int16(v))), nil
	case v > math.MaxInt16 && v <= math.MaxUint16:
		return cpu.EncodeI(cpu.OPORI, cpu.RegZero, r[0], uint16(v)), nil
	}
	return 0, fmt.Errorf("li constant %d does not fit in 16 bits; use lui and ori", v)
}
