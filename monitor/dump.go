package monitor

import (
	"github.com/Urethramancer/mips32/cpu"
	"github.com/Urethramancer/mips32/disassembler"
)

const rule = "-------------------------------------\n"

// RegisterDump prints the instruction count, PC, all general registers and HI/LO.
func (m *Monitor) RegisterDump() {
	s := m.sim.State()
	m.printf(rule)
	m.printf("Dumping Register Content\n")
	m.printf(rule)
	m.printf("# Instructions Executed\t: %d\n", m.sim.InstructionCount())
	m.printf("PC\t: 0x%08x\n", s.PC)
	m.printf(rule)
	m.printf("[Register]\t[Value]\n")
	m.printf(rule)
	for i := 0; i < cpu.NumRegs; i++ {
		m.printf("[R%d]\t: 0x%08x\n", i, s.Regs[i])
	}
	m.printf(rule)
	m.printf("[HI]\t: 0x%08x\n", s.HI)
	m.printf("[LO]\t: 0x%08x\n", s.LO)
	m.printf(rule)
}

// MemoryDump prints the words from start to stop inclusive, stepping by 4.
func (m *Monitor) MemoryDump(start, stop uint32) {
	m.printf("-------------------------------------------------------------\n")
	m.printf("Memory content [0x%08x..0x%08x] :\n", start, stop)
	m.printf("-------------------------------------------------------------\n")
	m.printf("\t[Address in Hex (Dec) ]\t[Value]\n")
	for addr := uint64(start); addr <= uint64(stop); addr += 4 {
		a := uint32(addr)
		m.printf("\t0x%08x (%d) :\t0x%08x\n", a, a, m.sim.Read32(a))
	}
	m.printf("\n")
}

// PrintProgram lists the loaded program, one instruction per line.
func (m *Monitor) PrintProgram() {
	base := m.sim.TextBase()
	for i := 0; i < m.sim.ProgramSize(); i++ {
		addr := base + uint32(i)*4
		m.printf("[0x%x]\t%s\n", addr, disassembler.FormatWord(m.sim.Read32(addr), addr))
	}
}

// Help prints the command summary.
func (m *Monitor) Help() {
	m.printf("------------------------------------------------------------------\n\n")
	m.printf("\t**********MU-MIPS Help MENU**********\n\n")
	m.printf("sim\t-- simulate program to completion \n")
	m.printf("run <n>\t-- simulate program for <n> instructions\n")
	m.printf("step\t-- execute one instruction and show it\n")
	m.printf("rdump\t-- dump register values\n")
	m.printf("reset\t-- clears all registers/memory and re-loads the program\n")
	m.printf("input <reg> <val>\t-- set GPR <reg> to <val>\n")
	m.printf("mdump <start> <stop>\t-- dump memory from <start> to <stop> address\n")
	m.printf("high <val>\t-- set the HI register to <val>\n")
	m.printf("low <val>\t-- set the LO register to <val>\n")
	m.printf("print\t-- print the program loaded into memory\n")
	m.printf("trace [on|off]\t-- print each instruction as it executes\n")
	m.printf("script <file>\t-- run a Lua script\n")
	m.printf("lua <code>\t-- run a Lua statement\n")
	m.printf("?\t-- display help menu\n")
	m.printf("quit\t-- exit the simulator\n\n")
	m.printf("------------------------------------------------------------------\n\n")
}
