package disassembler

import (
	"fmt"
	"strings"

	"github.com/Urethramancer/mips32/cpu"
)

// LabelType defines the context of a label.
type LabelType int

const (
	// JumpTarget is for a branch or plain jump.
	JumpTarget LabelType = iota
	// SubroutineEntry is for a JAL target.
	SubroutineEntry
)

// Instruction represents a single decoded instruction at a specific address.
type Instruction struct {
	Address uint32
	Word    uint32
	Line    Line
	IsCode  bool // Flag to mark as reachable code
}

// Disassemble renders a program listing for words loaded at base. Words reachable from
// base are shown as instructions with labels on branch and jump targets; the rest are
// shown as .word data.
func Disassemble(words []uint32, base uint32) string {
	if len(words) == 0 {
		return ""
	}

	// --- STAGE 1: Linear Sweep ---
	instructions := make(map[uint32]*Instruction, len(words))
	for i, w := range words {
		addr := base + uint32(i)*4
		instructions[addr] = &Instruction{
			Address: addr,
			Word:    w,
			Line:    Decode(cpu.Decode(w), addr),
		}
	}

	// --- STAGE 2: Control Flow Analysis ---
	labels := make(map[uint32]LabelType)
	q := newQueue()
	q.push(base)

	for {
		addr, ok := q.pop()
		if !ok {
			break
		}

		inst, exists := instructions[addr]
		if !exists || inst.IsCode {
			continue
		}
		if inst.Line.Mnemonic == ".word" {
			continue
		}
		inst.IsCode = true

		if !isTerminal(inst.Line.Flow) {
			q.push(addr + 4)
		}

		if inst.Line.HasTarget() {
			target := inst.Line.Target
			q.push(target)
			if inst.Line.Flow == Call {
				labels[target] = SubroutineEntry
			} else if _, exists := labels[target]; !exists {
				labels[target] = JumpTarget
			}
		}
	}

	// --- STAGE 3: Render Final Output ---
	var out strings.Builder
	// Index by position; base+4*len(words) may wrap past the top of the address space.
	for i := range words {
		pc := base + uint32(i)*4
		inst := instructions[pc]
		if labelType, exists := labels[pc]; exists && inst.IsCode {
			fmt.Fprintf(&out, "%s:\n", labelName(pc, labelType))
		}

		if !inst.IsCode {
			fmt.Fprintf(&out, "    %-8s 0x%08x\n", ".word", inst.Word)
			continue
		}

		line := inst.Line
		if line.HasTarget() {
			if labelType, exists := labels[line.Target]; exists && isCode(instructions, line.Target) {
				args := append([]string(nil), line.Args...)
				args[len(args)-1] = labelName(line.Target, labelType)
				line.Args = args
			}
		}

		if len(line.Args) > 0 {
			fmt.Fprintf(&out, "    %-8s %s\n", line.Mnemonic, strings.Join(line.Args, ", "))
		} else {
			fmt.Fprintf(&out, "    %s\n", line.Mnemonic)
		}
	}

	return out.String()
}

// isTerminal checks if an instruction unconditionally stops linear execution.
func isTerminal(f Flow) bool {
	return f == Jump || f == Indirect || f == Stop
}

func isCode(instructions map[uint32]*Instruction, addr uint32) bool {
	inst, ok := instructions[addr]
	return ok && inst.IsCode
}

// addrQueue is a simple worklist queue for addresses to decode.
type addrQueue struct {
	items []uint32
	seen  map[uint32]bool
}

func newQueue() *addrQueue {
	return &addrQueue{seen: make(map[uint32]bool)}
}

func (q *addrQueue) push(addr uint32) {
	addr &^= 3 // Align to word boundary
	if !q.seen[addr] {
		q.items = append(q.items, addr)
		q.seen[addr] = true
	}
}

func (q *addrQueue) pop() (uint32, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	a := q.items[0]
	q.items = q.items[1:]
	return a, true
}
