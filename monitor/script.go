package monitor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Urethramancer/mips32/cpu"
	"github.com/Urethramancer/mips32/disassembler"
	lua "github.com/yuin/gopher-lua"
)

// maxScriptDepth bounds scripts that run other scripts through cmd().
const maxScriptDepth = 8

// RunScript runs a Lua file against the simulator.
func (m *Monitor) RunScript(path string) error {
	return m.runLua(func(L *lua.LState) error { return L.DoFile(path) })
}

// RunLua runs a chunk of Lua source.
func (m *Monitor) RunLua(code string) error {
	return m.runLua(func(L *lua.LState) error { return L.DoString(code) })
}

func (m *Monitor) runLua(do func(*lua.LState) error) error {
	if m.depth >= maxScriptDepth {
		return errors.New("script recursion limit reached")
	}

	L := m.luaState()
	if m.depth == 0 {
		m.quitting = false
	}
	m.depth++
	L.SetContext(m.ctx)
	defer func() {
		m.depth--
		if m.depth == 0 {
			L.RemoveContext()
		}
	}()

	err := do(L)
	if m.quitting {
		return ErrQuit
	}
	if err != nil {
		m.log.WithError(err).Warn("script failed")
		return fmt.Errorf("lua: %w", err)
	}
	return nil
}

// luaState starts the interpreter on first use.
func (m *Monitor) luaState() *lua.LState {
	if m.lua != nil {
		return m.lua
	}

	L := lua.NewState()
	funcs := map[string]lua.LGFunction{
		"print":   m.luaPrint,
		"step":    m.luaStep,
		"run":     m.luaRun,
		"sim":     m.luaSim,
		"reset":   m.luaReset,
		"reg":     m.luaReg,
		"setreg":  m.luaSetReg,
		"pc":      m.luaPC,
		"setpc":   m.luaSetPC,
		"hi":      m.luaHI,
		"lo":      m.luaLO,
		"sethi":   m.luaSetHI,
		"setlo":   m.luaSetLO,
		"mem":     m.luaMem,
		"setmem":  m.luaSetMem,
		"count":   m.luaCount,
		"halted":  m.luaHalted,
		"faults":  m.luaFaults,
		"disasm":  m.luaDisasm,
		"cmd":     m.luaCmd,
		"program": m.luaProgram,
	}
	for name, fn := range funcs {
		L.SetGlobal(name, L.NewFunction(fn))
	}

	m.lua = L
	return L
}

func (m *Monitor) luaPrint(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	m.printf("%s\n", strings.Join(parts, "\t"))
	return 0
}

// step() executes one instruction and returns the fault message, or nil.
func (m *Monitor) luaStep(L *lua.LState) int {
	err := m.sim.Step()
	if err != nil {
		L.Push(lua.LString(err.Error()))
		return 1
	}
	L.Push(lua.LNil)
	return 1
}

// run(n) returns the number of instructions committed.
func (m *Monitor) luaRun(L *lua.LState) int {
	n := L.CheckInt(1)
	if n < 0 {
		L.ArgError(1, "count must not be negative")
	}
	count, err := m.sim.Run(m.ctx, n)
	if err != nil {
		L.RaiseError("%s", err)
	}
	L.Push(lua.LNumber(count))
	return 1
}

func (m *Monitor) luaSim(L *lua.LState) int {
	count, err := m.sim.Run(m.ctx, -1)
	if err != nil {
		L.RaiseError("%s", err)
	}
	L.Push(lua.LNumber(count))
	return 1
}

func (m *Monitor) luaReset(L *lua.LState) int {
	err := m.sim.Reset()
	if err != nil {
		L.RaiseError("%s", err)
	}
	return 0
}

// checkRegister accepts a register number or a name such as "t0" or "$sp".
func checkRegister(L *lua.LState, n int) int {
	switch v := L.CheckAny(n).(type) {
	case lua.LNumber:
		return int(v)
	case lua.LString:
		r, err := cpu.ParseRegister(string(v))
		if err != nil {
			L.ArgError(n, err.Error())
		}
		return int(r)
	}
	L.ArgError(n, "register number or name expected")
	return 0
}

// checkWord accepts any integer that fits in 32 bits, signed or not.
func checkWord(L *lua.LState, n int) uint32 {
	v := L.CheckInt64(n)
	if v < -0x80000000 || v > 0xFFFFFFFF {
		L.ArgError(n, "value does not fit in 32 bits")
	}
	return uint32(v)
}

func (m *Monitor) luaReg(L *lua.LState) int {
	r := checkRegister(L, 1)
	if r < 0 || r >= cpu.NumRegs {
		L.ArgError(1, cpu.ErrRegisterIndex.Error())
	}
	L.Push(lua.LNumber(m.sim.Register(r)))
	return 1
}

func (m *Monitor) luaSetReg(L *lua.LState) int {
	r := checkRegister(L, 1)
	v := checkWord(L, 2)
	err := m.sim.SetRegister(r, v)
	if err != nil {
		L.ArgError(1, err.Error())
	}
	return 0
}

func (m *Monitor) luaPC(L *lua.LState) int {
	L.Push(lua.LNumber(m.sim.PC()))
	return 1
}

func (m *Monitor) luaSetPC(L *lua.LState) int {
	m.sim.SetPC(checkWord(L, 1))
	return 0
}

func (m *Monitor) luaHI(L *lua.LState) int {
	L.Push(lua.LNumber(m.sim.HI()))
	return 1
}

func (m *Monitor) luaLO(L *lua.LState) int {
	L.Push(lua.LNumber(m.sim.LO()))
	return 1
}

func (m *Monitor) luaSetHI(L *lua.LState) int {
	m.sim.SetHI(checkWord(L, 1))
	return 0
}

func (m *Monitor) luaSetLO(L *lua.LState) int {
	m.sim.SetLO(checkWord(L, 1))
	return 0
}

func (m *Monitor) luaMem(L *lua.LState) int {
	L.Push(lua.LNumber(m.sim.Read32(checkWord(L, 1))))
	return 1
}

func (m *Monitor) luaSetMem(L *lua.LState) int {
	m.sim.Write32(checkWord(L, 1), checkWord(L, 2))
	return 0
}

func (m *Monitor) luaCount(L *lua.LState) int {
	L.Push(lua.LNumber(m.sim.InstructionCount()))
	return 1
}

func (m *Monitor) luaHalted(L *lua.LState) int {
	L.Push(lua.LBool(m.sim.Status() == cpu.Halted))
	return 1
}

// faults() returns a table of fault counts keyed by kind.
func (m *Monitor) luaFaults(L *lua.LState) int {
	t := L.NewTable()
	t.RawSetString("memory", lua.LNumber(m.sim.FaultCount(cpu.FaultMemory)))
	t.RawSetString("arithmetic", lua.LNumber(m.sim.FaultCount(cpu.FaultArithmetic)))
	t.RawSetString("unimplemented", lua.LNumber(m.sim.FaultCount(cpu.FaultUnimplemented)))
	L.Push(t)
	return 1
}

// disasm(addr) returns the instruction text at addr.
func (m *Monitor) luaDisasm(L *lua.LState) int {
	addr := checkWord(L, 1)
	L.Push(lua.LString(disassembler.FormatWord(m.sim.Read32(addr), addr)))
	return 1
}

// program() returns the text base and the number of loaded words.
func (m *Monitor) luaProgram(L *lua.LState) int {
	L.Push(lua.LNumber(m.sim.TextBase()))
	L.Push(lua.LNumber(m.sim.ProgramSize()))
	return 2
}

// cmd(line) runs a monitor command. It returns false once quit has been requested.
func (m *Monitor) luaCmd(L *lua.LState) int {
	err := m.Execute(m.ctx, L.CheckString(1))
	switch {
	case errors.Is(err, ErrQuit):
		m.quitting = true
		L.Push(lua.LFalse)
		return 1
	case err != nil:
		L.RaiseError("%s", err)
	}
	L.Push(lua.LTrue)
	return 1
}
