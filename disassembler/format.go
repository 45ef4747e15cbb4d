package disassembler

import (
	"fmt"
	"strings"

	"github.com/Urethramancer/mips32/cpu"
)

// Flow describes how an instruction affects control flow.
type Flow int

const (
	// Sequential instructions fall through to the next word.
	Sequential Flow = iota
	// Branch is a conditional branch; both the target and the next word are reachable.
	Branch
	// Jump unconditionally transfers to a known target.
	Jump
	// Call transfers to a known subroutine and returns to the next word.
	Call
	// Indirect transfers through a register. The target is unknown.
	Indirect
	// IndirectCall calls through a register and returns to the next word.
	IndirectCall
	// Stop means execution does not continue past this word.
	Stop
)

// Line is one decoded instruction split into printable parts.
type Line struct {
	Mnemonic string
	// Args are the operands in assembler order. For branches and jumps the target is last.
	Args   []string
	Flow   Flow
	Target uint32
}

// HasTarget reports whether Target holds a static branch or jump destination.
func (l Line) HasTarget() bool {
	return l.Flow == Branch || l.Flow == Jump || l.Flow == Call
}

// String renders the line the same way Format does.
func (l Line) String() string {
	if len(l.Args) == 0 {
		return l.Mnemonic
	}
	return l.Mnemonic + " " + strings.Join(l.Args, ", ")
}

// Format renders one instruction as assembler text. pc is the address the instruction
// was fetched from and is only used to resolve branch and jump targets.
func Format(inst cpu.Instruction, pc uint32) string {
	return Decode(inst, pc).String()
}

// FormatWord decodes and renders a raw word.
func FormatWord(word, pc uint32) string {
	return Format(cpu.Decode(word), pc)
}

// Decode splits an instruction into mnemonic, operands and control-flow information.
func Decode(inst cpu.Instruction, pc uint32) Line {
	switch in := inst.(type) {
	case cpu.RType:
		return decodeSpecial(in)
	case cpu.IType:
		return decodeImmediate(in, pc)
	case cpu.JType:
		return decodeJump(in, pc)
	case cpu.RegImm:
		target := cpu.BranchTarget(pc, in.Imm)
		return Line{
			Mnemonic: in.Code.String(),
			Args:     []string{reg(in.Rs), addr(target)},
			Flow:     Branch,
			Target:   target,
		}
	}

	return Line{
		Mnemonic: ".word",
		Args:     []string{fmt.Sprintf("0x%08x", inst.Word())},
		Flow:     Stop,
	}
}

func decodeSpecial(in cpu.RType) Line {
	mn := in.Funct.String()
	switch in.Funct {
	case cpu.FNSLL, cpu.FNSRL, cpu.FNSRA:
		if in.Raw == 0 {
			return Line{Mnemonic: "nop"}
		}
		return Line{Mnemonic: mn, Args: []string{reg(in.Rd), reg(in.Rt), fmt.Sprintf("%d", in.Shamt)}}
	case cpu.FNJR:
		return Line{Mnemonic: mn, Args: []string{reg(in.Rs)}, Flow: Indirect}
	case cpu.FNJALR:
		if in.Rd == cpu.RegRA {
			return Line{Mnemonic: mn, Args: []string{reg(in.Rs)}, Flow: IndirectCall}
		}
		return Line{Mnemonic: mn, Args: []string{reg(in.Rd), reg(in.Rs)}, Flow: IndirectCall}
	case cpu.FNSYSCALL:
		return Line{Mnemonic: mn}
	case cpu.FNMFHI, cpu.FNMFLO:
		return Line{Mnemonic: mn, Args: []string{reg(in.Rd)}}
	case cpu.FNMTHI, cpu.FNMTLO:
		return Line{Mnemonic: mn, Args: []string{reg(in.Rs)}}
	case cpu.FNMULT, cpu.FNMULTU, cpu.FNDIV, cpu.FNDIVU:
		return Line{Mnemonic: mn, Args: []string{reg(in.Rs), reg(in.Rt)}}
	}

	return Line{Mnemonic: mn, Args: []string{reg(in.Rd), reg(in.Rs), reg(in.Rt)}}
}

func decodeImmediate(in cpu.IType, pc uint32) Line {
	mn := in.Opcode.String()
	switch in.Opcode {
	case cpu.OPBEQ, cpu.OPBNE:
		target := cpu.BranchTarget(pc, in.Imm)
		return Line{Mnemonic: mn, Args: []string{reg(in.Rs), reg(in.Rt), addr(target)}, Flow: Branch, Target: target}
	case cpu.OPBLEZ, cpu.OPBGTZ:
		target := cpu.BranchTarget(pc, in.Imm)
		return Line{Mnemonic: mn, Args: []string{reg(in.Rs), addr(target)}, Flow: Branch, Target: target}
	case cpu.OPANDI, cpu.OPORI, cpu.OPXORI:
		return Line{Mnemonic: mn, Args: []string{reg(in.Rt), reg(in.Rs), hex16(in.Imm)}}
	case cpu.OPLUI:
		return Line{Mnemonic: mn, Args: []string{reg(in.Rt), hex16(in.Imm)}}
	case cpu.OPLB, cpu.OPLH, cpu.OPLW, cpu.OPSB, cpu.OPSH, cpu.OPSW:
		return Line{Mnemonic: mn, Args: []string{reg(in.Rt), fmt.Sprintf("%d(%s)", int16(in.Imm), reg(in.Rs))}}
	}

	return Line{Mnemonic: mn, Args: []string{reg(in.Rt), reg(in.Rs), fmt.Sprintf("%d", int16(in.Imm))}}
}

func decodeJump(in cpu.JType, pc uint32) Line {
	target := cpu.JumpTarget(pc, in.Target)
	flow := Jump
	if in.Opcode == cpu.OPJAL {
		flow = Call
	}
	return Line{Mnemonic: in.Opcode.String(), Args: []string{addr(target)}, Flow: flow, Target: target}
}
