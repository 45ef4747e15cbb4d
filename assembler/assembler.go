// Package assembler turns assembly source into program words for the simulator.
package assembler

import (
	"fmt"
	"strings"
)

// Assembler holds the state for the assembly process.
type Assembler struct {
	symbols map[string]int64
	labels  map[string]uint32
}

// New creates a new Assembler instance.
func New() *Assembler {
	return &Assembler{
		symbols: make(map[string]int64),
		labels:  make(map[string]uint32),
	}
}

// Assemble takes assembly source and returns the program words. The first word is placed
// at base; gaps left by .org are zero-filled.
func (asm *Assembler) Assemble(src string, base uint32) ([]uint32, error) {
	if base%4 != 0 {
		return nil, fmt.Errorf("base address 0x%08x is not word aligned", base)
	}

	asm.symbols = make(map[string]int64)
	asm.labels = make(map[string]uint32)

	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	nodes, err := asm.parseLines(lines)
	if err != nil {
		return nil, fmt.Errorf("parsing error: %w", err)
	}

	// Pass 1: resolve label addresses and node sizes.
	pc := base
	for _, n := range nodes {
		switch n.Type {
		case NodeLabel:
			if _, ok := asm.labels[n.Label]; ok {
				return nil, fmt.Errorf("line %d: duplicate label %s", n.Line, n.Label)
			}
			asm.labels[n.Label] = pc
			continue
		case NodeDirective:
			if n.Parts[0] == ".org" {
				pc, err = asm.orgAddress(n, pc)
				if err != nil {
					return nil, err
				}
				continue
			}
			n.Size, err = asm.getDirectiveSize(n)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", n.Line, err)
			}
		case NodeInstruction:
			n.Size = 4
		}
		pc += n.Size
	}

	// Pass 2: generate machine code.
	var words []uint32
	pc = base
	for _, n := range nodes {
		var code []uint32
		switch n.Type {
		case NodeLabel:
			// Labels do not emit code.
			continue
		case NodeDirective:
			if n.Parts[0] == ".org" {
				pc, _ = asm.orgAddress(n, pc)
				for uint32(len(words)) < (pc-base)/4 {
					words = append(words, 0)
				}
				continue
			}
			code, err = asm.generateDirectiveCode(n)
		case NodeInstruction:
			var w uint32
			w, err = asm.generateInstructionCode(n, pc)
			code = []uint32{w}
		}

		if err != nil {
			return nil, fmt.Errorf("line %d: '%s': %w", n.Line, strings.Join(n.Parts, " "), err)
		}
		words = append(words, code...)
		pc += n.Size
	}

	return words, nil
}

// Labels returns a copy of the label table from the last Assemble call.
func (asm *Assembler) Labels() map[string]uint32 {
	out := make(map[string]uint32, len(asm.labels))
	for k, v := range asm.labels {
		out[k] = v
	}
	return out
}

// parseLines converts raw source lines into a slice of Node objects.
func (asm *Assembler) parseLines(lines []string) ([]*Node, error) {
	var nodes []*Node
	for i, line := range lines {
		lineNo := i + 1
		line = strings.TrimSpace(stripComment(line))
		if line == "" {
			continue
		}

		for {
			idx := strings.IndexByte(line, ':')
			if idx < 0 {
				break
			}
			label := strings.TrimSpace(line[:idx])
			if !reLabel.MatchString(label) {
				return nil, fmt.Errorf("line %d: invalid label %q", lineNo, label)
			}
			nodes = append(nodes, &Node{Type: NodeLabel, Line: lineNo, Label: strings.ToLower(label), Parts: []string{label + ":"}})
			line = strings.TrimSpace(line[idx+1:])
		}

		if line == "" {
			continue
		}

		var mnemonic, operandStr string
		firstSpace := strings.IndexAny(line, " \t")
		if firstSpace == -1 {
			mnemonic = line
		} else {
			mnemonic = line[:firstSpace]
			operandStr = strings.TrimSpace(line[firstSpace:])
		}

		nodeParts := []string{strings.ToLower(mnemonic)}
		if operandStr != "" {
			nodeParts = append(nodeParts, operandStr)
		}

		if strings.HasPrefix(mnemonic, ".") {
			n := &Node{Type: NodeDirective, Line: lineNo, Parts: nodeParts}
			err := asm.parseDirective(n)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			nodes = append(nodes, n)
			continue
		}

		mn, err := ParseMnemonic(mnemonic)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		var operands []Operand
		if operandStr != "" {
			for _, s := range splitOperands(operandStr) {
				op, err := parseOperand(s, asm)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				operands = append(operands, op)
			}
		}
		nodes = append(nodes, &Node{Type: NodeInstruction, Line: lineNo, Mnemonic: mn, Operands: operands, Parts: nodeParts})
	}
	return nodes, nil
}

// generateInstructionCode dispatches to the appropriate instruction assembler.
func (asm *Assembler) generateInstructionCode(n *Node, pc uint32) (uint32, error) {
	fn, ok := instructionSet[n.Mnemonic]
	if !ok {
		return 0, fmt.Errorf("unknown instruction: %s", n.Mnemonic)
	}
	return fn(asm, n.Mnemonic, n.Operands, pc)
}
