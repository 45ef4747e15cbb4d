package cpu

import (
	"fmt"
	"strconv"
	"strings"
)

// NumRegs is the number of general-purpose registers.
const NumRegs = 32

// Register numbers
const (
	// Hard-wired zero
	RegZero = 0
	// Assembler temporary
	RegAT = 1
	// Function results; $v0 also carries the syscall code
	RegV0 = 2
	RegV1 = 3
	// Arguments
	RegA0 = 4
	RegA1 = 5
	RegA2 = 6
	RegA3 = 7
	// Temporaries
	RegT0 = 8
	RegT1 = 9
	RegT2 = 10
	RegT3 = 11
	RegT4 = 12
	RegT5 = 13
	RegT6 = 14
	RegT7 = 15
	// Saved
	RegS0 = 16
	RegS1 = 17
	RegS2 = 18
	RegS3 = 19
	RegS4 = 20
	RegS5 = 21
	RegS6 = 22
	RegS7 = 23
	RegT8 = 24
	RegT9 = 25
	RegK0 = 26
	RegK1 = 27
	// Global pointer
	RegGP = 28
	// Stack pointer
	RegSP = 29
	// Frame pointer
	RegFP = 30
	// Return address, written by JAL
	RegRA = 31
)

// RegisterNames holds the conventional ABI name of each register.
var RegisterNames = [NumRegs]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

// RegisterName returns "$name" for register r.
func RegisterName(r uint8) string {
	if int(r) >= NumRegs {
		return fmt.Sprintf("$%d", r)
	}
	return "$" + RegisterNames[r]
}

// ParseRegister accepts "$8", "8", "$t0", "t0" or "$s8" (alias of $fp).
func ParseRegister(s string) (uint8, error) {
	name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "$")
	if n, err := strconv.Atoi(name); err == nil {
		if n < 0 || n >= NumRegs {
			return 0, fmt.Errorf("register out of range: %s", s)
		}
		return uint8(n), nil
	}

	if name == "s8" {
		return RegFP, nil
	}
	for i, rn := range RegisterNames {
		if rn == name {
			return uint8(i), nil
		}
	}

	return 0, fmt.Errorf("unknown register: %s", s)
}
