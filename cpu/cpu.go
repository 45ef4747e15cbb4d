package cpu

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Program is a reloadable program image. Reset calls Load after clearing memory.
type Program interface {
	// Load writes the image into bus starting at base and returns the number of words written.
	Load(bus *Bus, base uint32) (int, error)
}

// TraceFunc is called with each fetched instruction before it executes.
type TraceFunc func(pc uint32, inst Instruction)

// Config for a Simulator.
type Config struct {
	// Layout of the memory map. Empty means DefaultLayout.
	Layout []RegionSpec
	// TextBase is the load address and reset PC. Zero means TextBase.
	TextBase uint32
	// Logger receives step and fault diagnostics. Nil discards them.
	Logger logrus.FieldLogger
	// Trace is optional.
	Trace TraceFunc
}

// DefaultConfig returns the standard memory map with a discarding logger.
func DefaultConfig() Config {
	return Config{
		Layout:   DefaultLayout(),
		TextBase: TextBase,
	}
}

// Simulator owns the memory bus and the current/next architectural state, and drives
// fetch, decode, execute and commit one instruction at a time.
// A Simulator is not safe for concurrent use; inspect it only between steps.
type Simulator struct {
	bus     *Bus
	current State
	next    State

	// Instructions committed since the last reset.
	count  uint64
	status Status

	textBase    uint32
	program     Program
	programSize int

	lastFault *Fault
	faults    [numFaultKinds]uint64

	log   logrus.FieldLogger
	trace TraceFunc
}

// New allocates memory, loads prog (which may be nil) and returns a running simulator.
func New(cfg Config, prog Program) (*Simulator, error) {
	layout := cfg.Layout
	if len(layout) == 0 {
		layout = DefaultLayout()
	}

	bus, err := NewBus(layout)
	if err != nil {
		return nil, fmt.Errorf("memory map: %w", err)
	}

	base := cfg.TextBase
	if base == 0 {
		base = TextBase
	}

	log := cfg.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	s := &Simulator{
		bus:      bus,
		textBase: base,
		program:  prog,
		log:      log,
		trace:    cfg.Trace,
	}
	err = s.Reset()
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Reset zeroes registers and memory, reloads the program and resumes at the text base.
func (s *Simulator) Reset() error {
	s.bus.Clear()
	s.current = InitialState(s.textBase)
	s.next = s.current
	s.count = 0
	s.status = Running
	s.lastFault = nil
	s.faults = [numFaultKinds]uint64{}
	s.programSize = 0

	if s.program == nil {
		return nil
	}

	n, err := s.program.Load(s.bus, s.textBase)
	if err != nil {
		return fmt.Errorf("load program: %w", err)
	}
	s.programSize = n
	s.log.WithFields(logrus.Fields{
		"words": n,
		"base":  fmt.Sprintf("0x%08x", s.textBase),
	}).Info("program loaded")
	return nil
}

// Step executes one instruction. It does nothing once the simulator has halted.
// The returned error is the *Fault raised by the instruction, if any; only
// FaultUnimplemented stops the simulator.
func (s *Simulator) Step() error {
	if s.status == Halted {
		return nil
	}

	// Fetch
	pc := s.current.PC
	raw := s.bus.Read32(pc)

	// Decode
	inst := Decode(raw)
	if s.trace != nil {
		s.trace(pc, inst)
	}
	s.log.WithFields(logrus.Fields{
		"pc":   fmt.Sprintf("0x%08x", pc),
		"word": fmt.Sprintf("0x%08x", raw),
	}).Debug("step")

	// Execute
	s.next = s.current
	res := Execute(inst, &s.current, &s.next, s.bus)

	fault := res.Fault
	if fault == nil && !s.bus.Mapped(pc) {
		fault = &Fault{Kind: FaultMemory, PC: pc, Raw: raw, Addr: pc}
	}

	if fault != nil && fault.Fatal() {
		s.next = s.current
		s.status = Halted
		s.record(fault)
		return fault
	}

	// Commit
	if !res.Jumped {
		s.next.PC = pc + 4
	}
	s.current = s.next
	s.count++

	if res.Halt {
		s.status = Halted
		s.log.WithFields(logrus.Fields{
			"pc":           fmt.Sprintf("0x%08x", pc),
			"instructions": s.count,
		}).Info("simulation halted")
	}

	if fault != nil {
		s.record(fault)
		return fault
	}
	return nil
}

// record keeps the fault for inspection and logs it.
func (s *Simulator) record(f *Fault) {
	s.lastFault = f
	s.faults[f.Kind]++

	entry := s.log.WithFields(logrus.Fields{
		"pc":   fmt.Sprintf("0x%08x", f.PC),
		"raw":  fmt.Sprintf("0x%08x", f.Raw),
		"addr": fmt.Sprintf("0x%08x", f.Addr),
	})
	if f.Fatal() {
		entry.Error(f.Kind.String())
	} else {
		entry.Warn(f.Kind.String())
	}
}

// Run steps until the simulator halts, limit instructions have been attempted, or ctx
// is done. A negative limit means no bound. ctx is only checked between instructions.
// It returns the number of instructions committed.
func (s *Simulator) Run(ctx context.Context, limit int) (int, error) {
	start := s.count
	for i := 0; s.status == Running && (limit < 0 || i < limit); i++ {
		err := ctx.Err()
		if err != nil {
			return int(s.count - start), err
		}
		_ = s.Step()
	}

	return int(s.count - start), nil
}

// RunFor steps up to n times, stopping early if the simulator halts.
func (s *Simulator) RunFor(n int) int {
	if n < 0 {
		return 0
	}
	count, _ := s.Run(context.Background(), n)
	return count
}

// RunToCompletion steps until the simulator halts. A program that never halts never returns.
func (s *Simulator) RunToCompletion() int {
	count, _ := s.Run(context.Background(), -1)
	return count
}

// Register returns general register i, or 0 when i is out of range.
func (s *Simulator) Register(i int) uint32 {
	if i < 0 || i >= NumRegs {
		return 0
	}
	return s.current.Regs[i]
}

// SetRegister sets general register i in both the current and next state.
func (s *Simulator) SetRegister(i int, v uint32) error {
	if i < 0 || i >= NumRegs {
		return fmt.Errorf("%w: %d", ErrRegisterIndex, i)
	}
	if i == RegZero {
		return ErrZeroRegister
	}

	s.current.Regs[i] = v
	s.next.Regs[i] = v
	return nil
}

// PC returns the program counter.
func (s *Simulator) PC() uint32 { return s.current.PC }

// SetPC moves the program counter.
func (s *Simulator) SetPC(v uint32) {
	s.current.PC = v
	s.next.PC = v
}

// HI returns the HI register.
func (s *Simulator) HI() uint32 { return s.current.HI }

// LO returns the LO register.
func (s *Simulator) LO() uint32 { return s.current.LO }

// SetHI sets the HI register.
func (s *Simulator) SetHI(v uint32) {
	s.current.HI = v
	s.next.HI = v
}

// SetLO sets the LO register.
func (s *Simulator) SetLO(v uint32) {
	s.current.LO = v
	s.next.LO = v
}

// State returns a copy of the current architectural state.
func (s *Simulator) State() State { return s.current }

// Read32 reads a word from memory.
func (s *Simulator) Read32(addr uint32) uint32 { return s.bus.Read32(addr) }

// Write32 writes a word to memory.
func (s *Simulator) Write32(addr, v uint32) { s.bus.Write32(addr, v) }

// Bus exposes the memory bus.
func (s *Simulator) Bus() *Bus { return s.bus }

// InstructionCount returns the number of instructions committed since the last reset.
func (s *Simulator) InstructionCount() uint64 { return s.count }

// Status returns Running or Halted.
func (s *Simulator) Status() Status { return s.status }

// TextBase returns the load address of the program.
func (s *Simulator) TextBase() uint32 { return s.textBase }

// ProgramSize is the word count reported by the last program load.
func (s *Simulator) ProgramSize() int { return s.programSize }

// LastFault returns the most recent fault, or nil.
func (s *Simulator) LastFault() *Fault { return s.lastFault }

// FaultCount returns how many faults of kind have been recorded since the last reset.
func (s *Simulator) FaultCount(kind FaultKind) uint64 {
	if kind < 0 || kind >= numFaultKinds {
		return 0
	}
	return s.faults[kind]
}

// SetTrace replaces the trace callback.
func (s *Simulator) SetTrace(fn TraceFunc) { s.trace = fn }
