// Package monitor is the interactive debugger for a cpu.Simulator: a line-oriented
// command interpreter with register and memory dumps, program listing and Lua scripting.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Urethramancer/mips32/cpu"
	"github.com/Urethramancer/mips32/disassembler"
	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"
)

// Prompt is printed before each command.
const Prompt = "MU-MIPS SIM:> "

// ErrQuit is returned by Execute for the quit command.
var ErrQuit = errors.New("quit")

// Monitor runs debugger commands against a simulator. It is not safe for concurrent use.
type Monitor struct {
	sim *cpu.Simulator
	out io.Writer
	log logrus.FieldLogger

	// ctx is the context of the command being executed, for Lua callbacks.
	ctx     context.Context
	lua     *lua.LState
	tracing bool

	// Nesting of running scripts, and whether one of them asked to quit.
	depth    int
	quitting bool
}

// New returns a monitor printing to out.
func New(sim *cpu.Simulator, out io.Writer, log logrus.FieldLogger) *Monitor {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Monitor{
		sim: sim,
		out: out,
		log: log,
		ctx: context.Background(),
	}
}

// Close releases the Lua interpreter, if one was started.
func (m *Monitor) Close() {
	if m.lua != nil {
		m.lua.Close()
		m.lua = nil
	}
}

// Simulator returns the simulator being debugged.
func (m *Monitor) Simulator() *cpu.Simulator { return m.sim }

// SetOutput redirects command output.
func (m *Monitor) SetOutput(w io.Writer) { m.out = w }

func (m *Monitor) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

// Execute runs one command line. Unknown commands print "Invalid Command." and are not
// errors. Long-running commands stop between instructions when ctx is cancelled.
// The quit command returns ErrQuit.
func (m *Monitor) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	prev := m.ctx
	m.ctx = ctx
	defer func() { m.ctx = prev }()

	cmd := strings.ToLower(fields[0])
	args := fields[1:]
	m.log.WithField("command", line).Debug("execute")

	switch cmd {
	case "sim":
		return m.cmdSim(ctx)
	case "run":
		return m.cmdRun(ctx, args)
	case "step":
		return m.cmdStep()
	case "rdump":
		m.RegisterDump()
		return nil
	case "mdump":
		return m.cmdMdump(args)
	case "input":
		return m.cmdInput(args)
	case "high":
		return m.cmdHiLo(args, m.sim.SetHI)
	case "low":
		return m.cmdHiLo(args, m.sim.SetLO)
	case "print":
		m.PrintProgram()
		return nil
	case "reset":
		return m.sim.Reset()
	case "trace":
		return m.cmdTrace(args)
	case "script":
		if len(args) != 1 {
			return fmt.Errorf("usage: script <file>")
		}
		return m.RunScript(args[0])
	case "lua":
		code := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
		if code == "" {
			return fmt.Errorf("usage: lua <code>")
		}
		return m.RunLua(code)
	case "?", "help":
		m.Help()
		return nil
	case "quit":
		m.quit()
		return ErrQuit
	}

	// Abbreviations dispatch on the first letter.
	switch cmd[0] {
	case 's':
		return m.cmdSim(ctx)
	case 'm':
		return m.cmdMdump(args)
	case 'q':
		m.quit()
		return ErrQuit
	case 'r':
		switch {
		case strings.HasPrefix(cmd, "rd"):
			m.RegisterDump()
			return nil
		case strings.HasPrefix(cmd, "re"):
			return m.sim.Reset()
		}
		return m.cmdRun(ctx, args)
	case 'i':
		return m.cmdInput(args)
	case 'h':
		return m.cmdHiLo(args, m.sim.SetHI)
	case 'l':
		return m.cmdHiLo(args, m.sim.SetLO)
	case 'p':
		m.PrintProgram()
		return nil
	}

	m.printf("Invalid Command.\n")
	return nil
}

func (m *Monitor) quit() {
	m.printf("**************************\n")
	m.printf("Exiting MU-MIPS! Good Bye...\n")
	m.printf("**************************\n")
}

func (m *Monitor) cmdSim(ctx context.Context) error {
	if m.sim.Status() == cpu.Halted {
		m.printf("Simulation Stopped.\n\n")
		return nil
	}

	m.printf("Simulation Started...\n\n")
	_, err := m.sim.Run(ctx, -1)
	if err != nil {
		m.printf("Simulation interrupted at 0x%08x.\n\n", m.sim.PC())
		return nil
	}
	m.reportFatal()
	m.printf("Simulation Finished.\n\n")
	return nil
}

func (m *Monitor) cmdRun(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: run <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return fmt.Errorf("run: invalid count %q", args[0])
	}

	if m.sim.Status() == cpu.Halted {
		m.printf("Simulation Stopped\n\n")
		return nil
	}

	m.printf("Running simulator for %d cycles...\n\n", n)
	_, err = m.sim.Run(ctx, n)
	if err != nil {
		m.printf("Simulation interrupted at 0x%08x.\n\n", m.sim.PC())
		return nil
	}
	if m.sim.Status() == cpu.Halted {
		m.reportFatal()
		m.printf("Simulation Stopped.\n\n")
	}
	return nil
}

func (m *Monitor) cmdStep() error {
	if m.sim.Status() == cpu.Halted {
		m.printf("Simulation Stopped.\n\n")
		return nil
	}

	pc := m.sim.PC()
	word := m.sim.Read32(pc)
	err := m.sim.Step()
	if !m.tracing {
		m.printf("[0x%08x]\t%s\n", pc, disassembler.FormatWord(word, pc))
	}
	var f *cpu.Fault
	if errors.As(err, &f) {
		m.printf("%s\n", f)
	}
	return nil
}

// reportFatal prints the fault that stopped the simulator, if any.
func (m *Monitor) reportFatal() {
	f := m.sim.LastFault()
	if f != nil && f.Fatal() && m.sim.Status() == cpu.Halted {
		m.printf("%s\n", f)
	}
}

func (m *Monitor) cmdMdump(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: mdump <start> <stop>")
	}
	start, err := parseHex(args[0])
	if err != nil {
		return fmt.Errorf("mdump: %w", err)
	}
	stop, err := parseHex(args[1])
	if err != nil {
		return fmt.Errorf("mdump: %w", err)
	}
	m.MemoryDump(start, stop)
	return nil
}

func (m *Monitor) cmdInput(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: input <reg> <val>")
	}
	r, err := cpu.ParseRegister(args[0])
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	v, err := ParseValue(args[1])
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	err = m.sim.SetRegister(int(r), v)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	return nil
}

func (m *Monitor) cmdHiLo(args []string, set func(uint32)) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: high|low <val>")
	}
	v, err := ParseValue(args[0])
	if err != nil {
		return err
	}
	set(v)
	return nil
}

func (m *Monitor) cmdTrace(args []string) error {
	on := !m.tracing
	if len(args) == 1 {
		switch strings.ToLower(args[0]) {
		case "on":
			on = true
		case "off":
			on = false
		default:
			return fmt.Errorf("usage: trace [on|off]")
		}
	}

	m.tracing = on
	if !on {
		m.sim.SetTrace(nil)
		m.printf("Trace off.\n")
		return nil
	}

	m.sim.SetTrace(func(pc uint32, inst cpu.Instruction) {
		m.printf("[0x%08x]\t%s\n", pc, disassembler.Format(inst, pc))
	})
	m.printf("Trace on.\n")
	return nil
}

// ParseValue reads a register or memory value: decimal, 0x-prefixed hex, or negative
// decimal, truncated to 32 bits.
func ParseValue(s string) (uint32, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		u, uerr := strconv.ParseUint(s, 0, 64)
		if uerr != nil {
			return 0, fmt.Errorf("invalid value %q", s)
		}
		v = int64(u)
	}
	if v < -0x80000000 || v > 0xFFFFFFFF {
		return 0, fmt.Errorf("value %q does not fit in 32 bits", s)
	}
	return uint32(v), nil
}

// parseHex reads an address, with or without the 0x prefix.
func parseHex(s string) (uint32, error) {
	t := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(t, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint32(v), nil
}
