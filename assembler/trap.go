package assembler

import (
	"github.com/Urethramancer/mips32/cpu"
)

// assembleTrap assembles SYSCALL. The service number is taken from $v0 at run time.
func assembleTrap(asm *Assembler, mn string, operands []Operand, pc uint32) (uint32, error) {
	if err := expectOperands(mn, operands, 0); err != nil {
		return 0, err
	}
	return cpu.EncodeR(cpu.FNSYSCALL, 0, 0, 0, 0), nil
}
