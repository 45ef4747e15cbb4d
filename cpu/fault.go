package cpu

import (
	"errors"
	"fmt"
)

// Status of the run loop.
type Status int

const (
	// Running accepts further steps.
	Running Status = iota
	// Halted is terminal until Reset.
	Halted
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Halted:
		return "halted"
	default:
		return "unknown"
	}
}

// FaultKind classifies a fault.
type FaultKind int

const (
	// FaultMemory is an access to an unmapped address. Reads yield 0 and writes are dropped.
	FaultMemory FaultKind = iota
	// FaultArithmetic is a division by zero. HI and LO are left unchanged.
	FaultArithmetic
	// FaultUnimplemented is an instruction outside the supported set. It halts the simulator.
	FaultUnimplemented

	numFaultKinds
)

func (k FaultKind) String() string {
	switch k {
	case FaultMemory:
		return "memory fault"
	case FaultArithmetic:
		return "arithmetic fault"
	case FaultUnimplemented:
		return "unimplemented instruction"
	default:
		return "unknown fault"
	}
}

// Fault records what went wrong during a step.
type Fault struct {
	Kind FaultKind
	// PC of the instruction that raised the fault.
	PC uint32
	// Raw instruction word.
	Raw uint32
	// Addr is the offending address for memory faults.
	Addr uint32
}

func (f *Fault) Error() string {
	switch f.Kind {
	case FaultMemory:
		return fmt.Sprintf("%s at 0x%08x: unmapped address 0x%08x", f.Kind, f.PC, f.Addr)
	default:
		return fmt.Sprintf("%s at 0x%08x: 0x%08x", f.Kind, f.PC, f.Raw)
	}
}

// Fatal reports whether the fault halts the simulator.
func (f *Fault) Fatal() bool {
	return f.Kind == FaultUnimplemented
}

var (
	// ErrRegisterIndex is returned for register numbers outside 0..31.
	ErrRegisterIndex = errors.New("register index out of range")
	// ErrZeroRegister is returned when writing register 0, which is hard-wired to zero.
	ErrZeroRegister = errors.New("register 0 is read-only")
)
