package assembler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Urethramancer/mips32/cpu"
)

// OperandKind classifies a parsed operand.
type OperandKind int

const (
	// OperandRegister is $n or $name.
	OperandRegister OperandKind = iota
	// OperandImmediate is a numeric constant or a known symbol.
	OperandImmediate
	// OperandMemory is offset($base).
	OperandMemory
	// OperandLabel is a bare name, resolved after the sizing pass.
	OperandLabel
)

// Operand represents a parsed instruction operand.
type Operand struct {
	Kind     OperandKind
	Register uint8
	Value    int64
	Raw      string
	Label    string
}

var (
	reRegister = regexp.MustCompile(`^\$[a-zA-Z0-9]+$`)
	reMemory   = regexp.MustCompile(`^([^()]*)\(\s*(\$[a-zA-Z0-9]+)\s*\)$`)
	reLabel    = regexp.MustCompile(`(?i)^[a-z_.][a-z0-9_.]*$`)
)

// ParseMnemonic normalises a mnemonic and checks it is known.
func ParseMnemonic(s string) (string, error) {
	mn := strings.ToLower(s)
	if _, ok := instructionSet[mn]; !ok {
		return "", fmt.Errorf("unknown instruction: %s", s)
	}
	return mn, nil
}

// parseOperand converts an operand string into a structured Operand.
// It acts as a dispatcher, trying the operand forms from most to least specific.
func parseOperand(s string, asm *Assembler) (Operand, error) {
	s = strings.TrimSpace(s)
	op := Operand{Raw: s}

	if reRegister.MatchString(s) {
		r, err := cpu.ParseRegister(s)
		if err != nil {
			return op, err
		}
		op.Kind = OperandRegister
		op.Register = r
		return op, nil
	}

	if m := reMemory.FindStringSubmatch(s); m != nil {
		r, err := cpu.ParseRegister(m[2])
		if err != nil {
			return op, err
		}
		op.Kind = OperandMemory
		op.Register = r
		off := strings.TrimSpace(m[1])
		if off != "" {
			op.Value, err = parseConstant(off, asm)
			if err != nil {
				return op, err
			}
		}
		return op, nil
	}

	if val, err := parseConstant(s, asm); err == nil {
		op.Kind = OperandImmediate
		op.Value = val
		return op, nil
	}

	// Finally, if nothing else matches, check if it's a bare label.
	if reLabel.MatchString(s) {
		op.Kind = OperandLabel
		op.Label = strings.ToLower(s)
		return op, nil
	}

	return op, fmt.Errorf("unknown operand format: %s", s)
}

// parseConstant converts numeric or symbolic expressions to int64.
func parseConstant(s string, asm *Assembler) (int64, error) {
	s = strings.TrimSpace(s)

	// Character literal ('A')
	if len(s) == 3 && s[0] == '\'' && s[2] == '\'' {
		return int64(s[1]), nil
	}

	// Symbol lookup
	if asm != nil {
		if val, ok := asm.symbols[strings.ToLower(s)]; ok {
			return val, nil
		}
	}

	neg := false
	num := s
	switch {
	case strings.HasPrefix(num, "-"):
		neg = true
		num = num[1:]
	case strings.HasPrefix(num, "+"):
		num = num[1:]
	}

	base := 10
	switch {
	case strings.HasPrefix(strings.ToLower(num), "0x"):
		num = num[2:]
		base = 16
	case strings.HasPrefix(strings.ToLower(num), "0b"):
		num = num[2:]
		base = 2
	}

	val, err := strconv.ParseInt(num, base, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number format: %s", s)
	}
	if neg {
		val = -val
	}
	return val, nil
}

// splitOperands splits an operand string by commas, but ignores commas inside parentheses.
func splitOperands(s string) []string {
	var result []string
	parenLevel := 0
	last := 0
	for i, r := range s {
		switch r {
		case '(':
			parenLevel++
		case ')':
			parenLevel--
		case ',':
			if parenLevel == 0 {
				result = append(result, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}
	result = append(result, strings.TrimSpace(s[last:]))
	return result
}

// stripComment cuts a line at the first '#' or ';' outside a character literal.
func stripComment(line string) string {
	inChar := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\'':
			inChar = !inChar
		case '#', ';':
			if !inChar {
				return line[:i]
			}
		}
	}
	return line
}
