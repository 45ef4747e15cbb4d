package monitor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Urethramancer/mips32/cpu"
	"github.com/Urethramancer/mips32/loader"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var (
	exitWord    = cpu.EncodeI(cpu.OPADDIU, cpu.RegZero, cpu.RegV0, cpu.SyscallExit)
	syscallWord = cpu.EncodeR(cpu.FNSYSCALL, 0, 0, 0, 0)
	exitProgram = loader.Words{exitWord, syscallWord}
	// counts $t0 up to 2 before exiting
	countProgram = loader.Words{
		cpu.EncodeI(cpu.OPADDIU, cpu.RegZero, cpu.RegT0, 1),
		cpu.EncodeI(cpu.OPADDIU, cpu.RegT0, cpu.RegT0, 1),
		exitWord,
		syscallWord,
	}
)

func newMonitor(t *testing.T, prog cpu.Program) (*Monitor, *bytes.Buffer) {
	t.Helper()
	sim, err := cpu.New(cpu.DefaultConfig(), prog)
	require.NoError(t, err)

	var out bytes.Buffer
	m := New(sim, &out, nil)
	t.Cleanup(m.Close)
	return m, &out
}

func exec(t *testing.T, m *Monitor, lines ...string) {
	t.Helper()
	for _, line := range lines {
		require.NoError(t, m.Execute(context.Background(), line), line)
	}
}

func TestRegisterDump(t *testing.T) {
	m, out := newMonitor(t, exitProgram)
	exec(t, m, "input $t0 0x10", "input 9 -2", "high 5", "low 0xffffffff", "rdump")

	s := out.String()
	require.Contains(t, s, "Dumping Register Content\n")
	require.Contains(t, s, "# Instructions Executed\t: 0\n")
	require.Contains(t, s, "PC\t: 0x00400000\n")
	require.Contains(t, s, "[R0]\t: 0x00000000\n")
	require.Contains(t, s, "[R8]\t: 0x00000010\n")
	require.Contains(t, s, "[R9]\t: 0xfffffffe\n")
	require.Contains(t, s, "[R31]\t: 0x00000000\n")
	require.Contains(t, s, "[HI]\t: 0x00000005\n")
	require.Contains(t, s, "[LO]\t: 0xffffffff\n")
}

func TestMemoryDump(t *testing.T) {
	m, out := newMonitor(t, exitProgram)
	exec(t, m, "mdump 0x00400000 0x00400004")

	want := "-------------------------------------------------------------\n" +
		"Memory content [0x00400000..0x00400004] :\n" +
		"-------------------------------------------------------------\n" +
		"\t[Address in Hex (Dec) ]\t[Value]\n" +
		"\t0x00400000 (4194304) :\t0x2402000a\n" +
		"\t0x00400004 (4194308) :\t0x0000000c\n" +
		"\n"
	require.Equal(t, want, out.String())
}

func TestSimulate(t *testing.T) {
	m, out := newMonitor(t, countProgram)
	exec(t, m, "sim")
	require.Equal(t, "Simulation Started...\n\nSimulation Finished.\n\n", out.String())
	require.Equal(t, cpu.Halted, m.Simulator().Status())
	require.Equal(t, uint64(4), m.Simulator().InstructionCount())
	require.Equal(t, uint32(2), m.Simulator().Register(cpu.RegT0))

	out.Reset()
	exec(t, m, "sim", "run 3")
	require.Equal(t, "Simulation Stopped.\n\nSimulation Stopped\n\n", out.String())
}

func TestRunAndReset(t *testing.T) {
	m, out := newMonitor(t, countProgram)
	exec(t, m, "run 2")
	require.Equal(t, "Running simulator for 2 cycles...\n\n", out.String())
	require.Equal(t, cpu.Running, m.Simulator().Status())
	require.Equal(t, uint32(2), m.Simulator().Register(cpu.RegT0))

	out.Reset()
	exec(t, m, "run 10")
	require.Equal(t, "Running simulator for 10 cycles...\n\nSimulation Stopped.\n\n", out.String())
	require.Equal(t, uint64(4), m.Simulator().InstructionCount())

	exec(t, m, "reset")
	require.Equal(t, cpu.Running, m.Simulator().Status())
	require.Equal(t, uint64(0), m.Simulator().InstructionCount())
	require.Equal(t, uint32(0), m.Simulator().Register(cpu.RegT0))
	require.Equal(t, uint32(cpu.TextBase), m.Simulator().PC())
}

func TestAbbreviations(t *testing.T) {
	m, out := newMonitor(t, countProgram)
	exec(t, m, "r 2", "h 3", "l 4", "i $a0 9")
	require.Equal(t, uint64(2), m.Simulator().InstructionCount())
	require.Equal(t, uint32(3), m.Simulator().HI())
	require.Equal(t, uint32(4), m.Simulator().LO())
	require.Equal(t, uint32(9), m.Simulator().Register(cpu.RegA0))

	exec(t, m, "re")
	require.Equal(t, uint64(0), m.Simulator().InstructionCount())

	out.Reset()
	exec(t, m, "rd")
	require.Contains(t, out.String(), "Dumping Register Content")

	out.Reset()
	exec(t, m, "s")
	require.Contains(t, out.String(), "Simulation Finished.")

	out.Reset()
	exec(t, m, "m 0x400008 0x400008")
	require.Contains(t, out.String(), "\t0x00400008 (4194312) :\t0x2402000a\n")
}

func TestPrintProgram(t *testing.T) {
	m, out := newMonitor(t, exitProgram)
	exec(t, m, "print")
	require.Equal(t, "[0x400000]\taddiu $v0, $zero, 10\n[0x400004]\tsyscall\n", out.String())

	out.Reset()
	exec(t, m, "p")
	require.Equal(t, "[0x400000]\taddiu $v0, $zero, 10\n[0x400004]\tsyscall\n", out.String())
}

func TestStep(t *testing.T) {
	m, out := newMonitor(t, loader.Words{exitWord, 0xFC000000})
	exec(t, m, "step")
	require.Equal(t, "[0x00400000]\taddiu $v0, $zero, 10\n", out.String())

	out.Reset()
	exec(t, m, "step")
	require.Equal(t, "[0x00400004]\t.word 0xfc000000\n"+
		"unimplemented instruction at 0x00400004: 0xfc000000\n", out.String())
	require.Equal(t, cpu.Halted, m.Simulator().Status())

	out.Reset()
	exec(t, m, "step")
	require.Equal(t, "Simulation Stopped.\n\n", out.String())
}

func TestSimReportsFatalFault(t *testing.T) {
	m, out := newMonitor(t, loader.Words{0, 0xFC000000})
	exec(t, m, "sim")
	require.Equal(t, "Simulation Started...\n\n"+
		"unimplemented instruction at 0x00400004: 0xfc000000\n"+
		"Simulation Finished.\n\n", out.String())
}

func TestTrace(t *testing.T) {
	m, out := newMonitor(t, exitProgram)
	exec(t, m, "trace on", "sim")
	require.Equal(t, "Trace on.\n"+
		"Simulation Started...\n\n"+
		"[0x00400000]\taddiu $v0, $zero, 10\n"+
		"[0x00400004]\tsyscall\n"+
		"Simulation Finished.\n\n", out.String())

	out.Reset()
	exec(t, m, "trace", "reset", "sim")
	require.Equal(t, "Trace off.\nSimulation Started...\n\nSimulation Finished.\n\n", out.String())

	require.Error(t, m.Execute(context.Background(), "trace maybe"))

	// A traced step prints the instruction once.
	out.Reset()
	exec(t, m, "trace on", "reset", "step")
	require.Equal(t, "Trace on.\n[0x00400000]\taddiu $v0, $zero, 10\n", out.String())
}

func TestInterruptedSimulation(t *testing.T) {
	// j to itself
	m, out := newMonitor(t, loader.Words{cpu.EncodeJ(cpu.OPJ, cpu.TextBase>>2)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, m.Execute(ctx, "sim"))
	require.Equal(t, "Simulation Started...\n\nSimulation interrupted at 0x00400000.\n\n", out.String())
	require.Equal(t, cpu.Running, m.Simulator().Status())
}

func TestHelp(t *testing.T) {
	m, out := newMonitor(t, exitProgram)
	exec(t, m, "?")
	s := out.String()
	require.Contains(t, s, "\t**********MU-MIPS Help MENU**********\n\n")
	require.Contains(t, s, "sim\t-- simulate program to completion \n")
	require.Contains(t, s, "quit\t-- exit the simulator\n\n")

	out.Reset()
	exec(t, m, "help")
	require.Equal(t, s, out.String())
}

func TestQuit(t *testing.T) {
	for _, cmd := range []string{"quit", "q", "QUIT"} {
		m, out := newMonitor(t, exitProgram)
		err := m.Execute(context.Background(), cmd)
		require.ErrorIs(t, err, ErrQuit, cmd)
		require.Equal(t, "**************************\n"+
			"Exiting MU-MIPS! Good Bye...\n"+
			"**************************\n", out.String())
	}
}

func TestInvalidCommand(t *testing.T) {
	m, out := newMonitor(t, exitProgram)
	exec(t, m, "bogus", "", "   ")
	require.Equal(t, "Invalid Command.\n", out.String())
}

func TestCommandErrors(t *testing.T) {
	m, _ := newMonitor(t, exitProgram)
	bad := []string{
		"input $t0",
		"input $x1 5",
		"input $t0 banana",
		"input $t0 0x100000000",
		"mdump 0x400000",
		"mdump zz 0x400000",
		"run",
		"run -1",
		"run many",
		"high",
		"low nope",
		"script",
		"lua",
	}
	for _, line := range bad {
		require.Error(t, m.Execute(context.Background(), line), line)
	}

	err := m.Execute(context.Background(), "input $zero 5")
	require.ErrorIs(t, err, cpu.ErrZeroRegister)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
		ok   bool
	}{
		{"0", 0, true},
		{"42", 42, true},
		{"0x2a", 42, true},
		{"-1", 0xFFFFFFFF, true},
		{"0xffffffff", 0xFFFFFFFF, true},
		{"4294967295", 0xFFFFFFFF, true},
		{"-2147483648", 0x80000000, true},
		{"-2147483649", 0, false},
		{"0x100000000", 0, false},
		{"x", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseValue(tt.in)
		if !tt.ok {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
}

func TestCommandLogging(t *testing.T) {
	sim, err := cpu.New(cpu.DefaultConfig(), exitProgram)
	require.NoError(t, err)

	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	m := New(sim, &bytes.Buffer{}, log)
	defer m.Close()

	require.NoError(t, m.Execute(context.Background(), "rdump"))
	require.Equal(t, "execute", hook.LastEntry().Message)
	require.Equal(t, "rdump", hook.LastEntry().Data["command"])

	require.Error(t, m.RunLua("error('boom')"))
	require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	require.Equal(t, "script failed", hook.LastEntry().Message)
}

func TestServe(t *testing.T) {
	m, out := newMonitor(t, exitProgram)
	in := strings.NewReader("input $t0 7\nrdump\nbogus\nrun x\nquit\nrdump\n")
	require.NoError(t, m.Serve(context.Background(), in))

	s := out.String()
	require.True(t, strings.HasPrefix(s, Prompt))
	require.Contains(t, s, "[R8]\t: 0x00000007\n")
	require.Contains(t, s, "Invalid Command.\n")
	require.Contains(t, s, "Error: run: invalid count \"x\"\n")
	require.Contains(t, s, "Exiting MU-MIPS! Good Bye...")
	require.Equal(t, 1, strings.Count(s, "Dumping Register Content"))
}

func TestServeEndOfInput(t *testing.T) {
	m, out := newMonitor(t, exitProgram)
	require.NoError(t, m.Serve(context.Background(), strings.NewReader("sim\n")))
	require.Equal(t, Prompt+"Simulation Started...\n\nSimulation Finished.\n\n"+Prompt+"\n", out.String())
}

func TestServeCancelled(t *testing.T) {
	m, out := newMonitor(t, exitProgram)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.Serve(ctx, strings.NewReader("rdump\n"))
	require.True(t, errors.Is(err, context.Canceled))
	require.Empty(t, out.String())
}

func TestScriptFile(t *testing.T) {
	m, out := newMonitor(t, countProgram)
	path := filepath.Join(t.TempDir(), "count.lua")
	script := `
local n = run(2)
print("ran", n, reg("t0"))
sim()
print(halted(), count(), string.format("0x%08x", pc()))
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o644))

	exec(t, m, "script "+path)
	require.Equal(t, "ran\t2\t2\ntrue\t4\t0x00400010\n", out.String())

	require.Error(t, m.Execute(context.Background(), "script "+filepath.Join(t.TempDir(), "missing.lua")))
}

func TestLuaBindings(t *testing.T) {
	m, out := newMonitor(t, exitProgram)
	code := `
setreg("t0", 5)
setreg(9, -1)
print(reg(8), reg("$t0"), reg("t1") == 0xffffffff)
sethi(-1)
setlo(7)
print(hi() == 4294967295, lo())
setmem(0x10010000, 0xdeadbeef)
print(mem(0x10010000) == 0xdeadbeef)
local base, size = program()
print(base == 0x00400000, size, disasm(base))
print(step(), pc() == 0x00400004, count())
`
	require.NoError(t, m.RunLua(code))
	require.Equal(t, "5\t5\ttrue\n"+
		"true\t7\n"+
		"true\n"+
		"true\t2\taddiu $v0, $zero, 10\n"+
		"nil\ttrue\t1\n", out.String())

	out.Reset()
	exec(t, m, "lua setpc(0x20000000) print(step(), faults().memory)")
	require.Equal(t, "memory fault at 0x20000000: unmapped address 0x20000000\t1\n", out.String())

	exec(t, m, "lua reset() print(count(), halted())")
	require.Contains(t, out.String(), "0\tfalse\n")
}

func TestLuaErrors(t *testing.T) {
	m, _ := newMonitor(t, exitProgram)
	bad := []string{
		`reg("x9")`,
		`reg(32)`,
		`setreg(0, 1)`,
		`setreg("t0", 0x100000000)`,
		`run(-1)`,
		`this is not lua`,
	}
	for _, code := range bad {
		require.Error(t, m.RunLua(code), code)
	}
}

func TestLuaCommands(t *testing.T) {
	m, out := newMonitor(t, exitProgram)
	require.NoError(t, m.RunLua(`cmd("input $s0 3") cmd("rdump")`))
	require.Contains(t, out.String(), "[R16]\t: 0x00000003\n")

	out.Reset()
	err := m.RunLua(`if not cmd("quit") then print("bye") end`)
	require.ErrorIs(t, err, ErrQuit)
	require.True(t, strings.HasSuffix(out.String(), "bye\n"))

	// A later script starts afresh.
	require.NoError(t, m.RunLua(`print(1 + 1)`))
}

func TestScriptRecursion(t *testing.T) {
	m, _ := newMonitor(t, exitProgram)
	path := filepath.Join(t.TempDir(), "self.lua")
	require.NoError(t, os.WriteFile(path, []byte(`cmd("script `+path+`")`), 0o644))

	err := m.Execute(context.Background(), "script "+path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "script recursion limit reached")
	require.Zero(t, m.depth)
}
