package assembler

import (
	"fmt"
	"strings"
)

// parseDirective checks a directive while parsing. Symbol definitions take effect
// immediately so later lines can use them as constants.
func (asm *Assembler) parseDirective(n *Node) error {
	switch n.Parts[0] {
	case ".org", ".word", ".space":
		if len(n.Parts) < 2 {
			return fmt.Errorf("%s requires an argument", n.Parts[0])
		}
		return nil

	case ".equ", ".set":
		if len(n.Parts) < 2 {
			return fmt.Errorf("%s requires a name and a value", n.Parts[0])
		}
		args := splitOperands(n.Parts[1])
		if len(args) != 2 {
			return fmt.Errorf("%s requires a name and a value", n.Parts[0])
		}
		name := strings.ToLower(args[0])
		if !reLabel.MatchString(name) {
			return fmt.Errorf("invalid symbol name %q", args[0])
		}
		val, err := parseConstant(args[1], asm)
		if err != nil {
			return err
		}
		asm.symbols[name] = val
		return nil
	}

	return fmt.Errorf("unknown directive: %s", n.Parts[0])
}

// getDirectiveSize calculates the byte size of a directive for the sizing pass.
func (asm *Assembler) getDirectiveSize(n *Node) (uint32, error) {
	switch n.Parts[0] {
	case ".equ", ".set":
		return 0, nil

	case ".word":
		return uint32(len(splitOperands(n.Parts[1]))) * 4, nil

	case ".space":
		count, err := parseConstant(n.Parts[1], asm)
		if err != nil {
			return 0, fmt.Errorf("invalid count for .space: %w", err)
		}
		if count < 0 {
			return 0, fmt.Errorf("negative count for .space: %d", count)
		}
		// Rounded up to whole words.
		return uint32(count+3) &^ 3, nil
	}

	return 0, fmt.Errorf("unknown directive: %s", n.Parts[0])
}

// generateDirectiveCode generates the data words for a directive.
func (asm *Assembler) generateDirectiveCode(n *Node) ([]uint32, error) {
	switch n.Parts[0] {
	case ".equ", ".set":
		return nil, nil

	case ".word":
		var words []uint32
		for _, s := range splitOperands(n.Parts[1]) {
			op, err := parseOperand(s, asm)
			if err != nil {
				return nil, err
			}
			v, err := asm.value(op)
			if err != nil {
				return nil, err
			}
			if v < -0x80000000 || v > 0xFFFFFFFF {
				return nil, fmt.Errorf("value %d does not fit in a word", v)
			}
			words = append(words, uint32(v))
		}
		return words, nil

	case ".space":
		return make([]uint32, n.Size/4), nil
	}

	return nil, fmt.Errorf("unknown directive: %s", n.Parts[0])
}

// orgAddress returns the new location counter for a .org directive. It may only move
// forward and must stay word aligned.
func (asm *Assembler) orgAddress(n *Node, pc uint32) (uint32, error) {
	addr, err := parseConstant(n.Parts[1], asm)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid .org address: %w", n.Line, err)
	}
	if addr < int64(pc) || addr > 0xFFFFFFFF {
		return 0, fmt.Errorf("line %d: .org 0x%x is behind the current address 0x%08x", n.Line, addr, pc)
	}
	if addr%4 != 0 {
		return 0, fmt.Errorf("line %d: .org 0x%x is not word aligned", n.Line, addr)
	}
	return uint32(addr), nil
}
