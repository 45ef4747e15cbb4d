package cpu

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const testPC = 0x00400000

// execute runs word against cur and returns the next state. It also checks that the
// current state was left untouched.
func execute(t *testing.T, bus *Bus, cur State, word uint32) (State, Result) {
	t.Helper()
	before := cur
	next := cur
	res := Execute(Decode(word), &cur, &next, bus)
	if diff := cmp.Diff(before, cur); diff != "" {
		t.Fatalf("current state modified during execute (-before +after):\n%s", diff)
	}
	return next, res
}

func stateWith(regs map[uint8]uint32) State {
	s := InitialState(testPC)
	for r, v := range regs {
		s.Regs[r] = v
	}
	return s
}

func TestExecuteALU(t *testing.T) {
	tests := []struct {
		name string
		word uint32
		regs map[uint8]uint32
		dst  uint8
		want uint32
	}{
		{"add wraps", EncodeR(FNADD, 1, 2, 3, 0), map[uint8]uint32{1: 0x7FFFFFFF, 2: 1}, 3, 0x80000000},
		{"addu wraps", EncodeR(FNADDU, 1, 2, 3, 0), map[uint8]uint32{1: 0xFFFFFFFF, 2: 2}, 3, 1},
		{"sub", EncodeR(FNSUB, 1, 2, 3, 0), map[uint8]uint32{1: 5, 2: 7}, 3, 0xFFFFFFFE},
		{"subu", EncodeR(FNSUBU, 1, 2, 3, 0), map[uint8]uint32{1: 0x80000000, 2: 1}, 3, 0x7FFFFFFF},
		{"addi negative", EncodeI(OPADDI, 1, 2, 0xFFFF), map[uint8]uint32{1: 10}, 2, 9},
		{"addi wraps", EncodeI(OPADDI, 1, 2, 1), map[uint8]uint32{1: 0x7FFFFFFF}, 2, 0x80000000},
		{"addiu", EncodeI(OPADDIU, 0, 1, 5), nil, 1, 5},
		{"and", EncodeR(FNAND, 1, 2, 3, 0), map[uint8]uint32{1: 0xF0F0, 2: 0xFF00}, 3, 0xF000},
		{"or", EncodeR(FNOR, 1, 2, 3, 0), map[uint8]uint32{1: 0xF0F0, 2: 0xFF00}, 3, 0xFFF0},
		{"xor", EncodeR(FNXOR, 1, 2, 3, 0), map[uint8]uint32{1: 0xF0F0, 2: 0xFF00}, 3, 0x0FF0},
		{"nor", EncodeR(FNNOR, 1, 2, 3, 0), map[uint8]uint32{1: 0xF0F0, 2: 0xFF00}, 3, 0xFFFF000F},
		{"andi zero-extends", EncodeI(OPANDI, 1, 2, 0x8001), map[uint8]uint32{1: 0xFFFFFFFF}, 2, 0x00008001},
		{"ori zero-extends", EncodeI(OPORI, 1, 2, 0x8000), map[uint8]uint32{1: 0x1}, 2, 0x00008001},
		{"xori zero-extends", EncodeI(OPXORI, 1, 2, 0xFFFF), map[uint8]uint32{1: 0xFFFFFFFF}, 2, 0xFFFF0000},
		{"lui", EncodeI(OPLUI, 0, 2, 0x8123), map[uint8]uint32{2: 0xFFFF}, 2, 0x81230000},
		{"sll", EncodeR(FNSLL, 0, 1, 2, 4), map[uint8]uint32{1: 0x80000001}, 2, 0x00000010},
		{"srl", EncodeR(FNSRL, 0, 1, 2, 4), map[uint8]uint32{1: 0x80000000}, 2, 0x08000000},
		{"sra negative", EncodeR(FNSRA, 0, 1, 2, 4), map[uint8]uint32{1: 0x80000000}, 2, 0xF8000000},
		{"sra positive", EncodeR(FNSRA, 0, 1, 2, 4), map[uint8]uint32{1: 0x40000000}, 2, 0x04000000},
		{"sra by 31", EncodeR(FNSRA, 0, 1, 2, 31), map[uint8]uint32{1: 0x80000000}, 2, 0xFFFFFFFF},
		{"slt signed true", EncodeR(FNSLT, 1, 2, 3, 0), map[uint8]uint32{1: 0xFFFFFFFF, 2: 1}, 3, 1},
		{"slt signed false", EncodeR(FNSLT, 1, 2, 3, 0), map[uint8]uint32{1: 1, 2: 0xFFFFFFFF}, 3, 0},
		{"slti", EncodeI(OPSLTI, 1, 2, 0xFFFF), map[uint8]uint32{1: 0xFFFFFFFE}, 2, 1},
		{"slti false", EncodeI(OPSLTI, 1, 2, 0xFFFF), map[uint8]uint32{1: 0}, 2, 0},
		{"mfhi", EncodeR(FNMFHI, 0, 0, 4, 0), nil, 4, 0},
	}

	bus := newTestBus(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, res := execute(t, bus, stateWith(tt.regs), tt.word)
			require.Equal(t, tt.want, next.Regs[tt.dst])
			require.False(t, res.Jumped)
			require.False(t, res.Halt)
			require.Nil(t, res.Fault)
		})
	}
}

func TestExecuteZeroRegister(t *testing.T) {
	bus := newTestBus(t)
	next, _ := execute(t, bus, stateWith(nil), EncodeI(OPADDIU, 0, 0, 42))
	require.Zero(t, next.Regs[0])
}

func TestExecuteMultiply(t *testing.T) {
	tests := []struct {
		name   string
		funct  Funct
		rs, rt uint32
		hi, lo uint32
	}{
		{"mult -1*-1", FNMULT, 0xFFFFFFFF, 0xFFFFFFFF, 0, 1},
		{"mult -2*3", FNMULT, 0xFFFFFFFE, 3, 0xFFFFFFFF, 0xFFFFFFFA},
		{"mult large", FNMULT, 0x7FFFFFFF, 0x7FFFFFFF, 0x3FFFFFFF, 0x00000001},
		{"multu", FNMULTU, 0xFFFFFFFF, 2, 1, 0xFFFFFFFE},
		{"multu max", FNMULTU, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFE, 1},
	}

	bus := newTestBus(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, res := execute(t, bus, stateWith(map[uint8]uint32{8: tt.rs, 9: tt.rt}), EncodeR(tt.funct, 8, 9, 0, 0))
			require.Equal(t, tt.hi, next.HI, "HI")
			require.Equal(t, tt.lo, next.LO, "LO")
			require.Nil(t, res.Fault)
		})
	}
}

func TestExecuteDivide(t *testing.T) {
	tests := []struct {
		name   string
		funct  Funct
		rs, rt uint32
		hi, lo uint32
	}{
		{"div", FNDIV, 7, 2, 1, 3},
		{"div negative", FNDIV, 0xFFFFFFF9, 2, 0xFFFFFFFF, 0xFFFFFFFD},
		{"div min by -1", FNDIV, 0x80000000, 0xFFFFFFFF, 0, 0x80000000},
		{"divu", FNDIVU, 0xFFFFFFF9, 2, 1, 0x7FFFFFFC},
	}

	bus := newTestBus(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, res := execute(t, bus, stateWith(map[uint8]uint32{8: tt.rs, 9: tt.rt}), EncodeR(tt.funct, 8, 9, 0, 0))
			require.Equal(t, tt.hi, next.HI, "HI")
			require.Equal(t, tt.lo, next.LO, "LO")
			require.Nil(t, res.Fault)
		})
	}
}

func TestExecuteDivideByZero(t *testing.T) {
	bus := newTestBus(t)
	for _, funct := range []Funct{FNDIV, FNDIVU} {
		cur := stateWith(map[uint8]uint32{8: 100})
		cur.HI = 0x1111
		cur.LO = 0x2222

		next, res := execute(t, bus, cur, EncodeR(funct, 8, 9, 0, 0))
		require.Equal(t, uint32(0x1111), next.HI)
		require.Equal(t, uint32(0x2222), next.LO)
		require.False(t, res.Halt)
		require.NotNil(t, res.Fault)
		require.Equal(t, FaultArithmetic, res.Fault.Kind)
		require.False(t, res.Fault.Fatal())
	}
}

func TestExecuteHILOMoves(t *testing.T) {
	bus := newTestBus(t)
	cur := stateWith(map[uint8]uint32{5: 0xABCD})
	cur.HI = 0x1234
	cur.LO = 0x5678

	next, _ := execute(t, bus, cur, EncodeR(FNMFHI, 0, 0, 6, 0))
	require.Equal(t, uint32(0x1234), next.Regs[6])
	next, _ = execute(t, bus, cur, EncodeR(FNMFLO, 0, 0, 6, 0))
	require.Equal(t, uint32(0x5678), next.Regs[6])
	next, _ = execute(t, bus, cur, EncodeR(FNMTHI, 5, 0, 0, 0))
	require.Equal(t, uint32(0xABCD), next.HI)
	next, _ = execute(t, bus, cur, EncodeR(FNMTLO, 5, 0, 0, 0))
	require.Equal(t, uint32(0xABCD), next.LO)
}

func TestExecuteBranches(t *testing.T) {
	tests := []struct {
		name  string
		word  uint32
		regs  map[uint8]uint32
		taken bool
	}{
		{"beq taken", EncodeI(OPBEQ, 1, 2, 2), map[uint8]uint32{1: 5, 2: 5}, true},
		{"beq not taken", EncodeI(OPBEQ, 1, 2, 2), map[uint8]uint32{1: 5, 2: 6}, false},
		{"bne taken", EncodeI(OPBNE, 1, 2, 2), map[uint8]uint32{1: 5, 2: 6}, true},
		{"bne not taken", EncodeI(OPBNE, 1, 2, 2), map[uint8]uint32{1: 5, 2: 5}, false},
		{"blez zero", EncodeI(OPBLEZ, 1, 0, 2), nil, true},
		{"blez negative", EncodeI(OPBLEZ, 1, 0, 2), map[uint8]uint32{1: 0x80000000}, true},
		{"blez positive", EncodeI(OPBLEZ, 1, 0, 2), map[uint8]uint32{1: 1}, false},
		{"bgtz positive", EncodeI(OPBGTZ, 1, 0, 2), map[uint8]uint32{1: 1}, true},
		{"bgtz zero", EncodeI(OPBGTZ, 1, 0, 2), nil, false},
		{"bgtz negative", EncodeI(OPBGTZ, 1, 0, 2), map[uint8]uint32{1: 0xFFFFFFFF}, false},
		{"bltz negative", EncodeRegImm(RIBLTZ, 1, 2), map[uint8]uint32{1: 0xFFFFFFFF}, true},
		{"bltz zero", EncodeRegImm(RIBLTZ, 1, 2), nil, false},
		{"bgez zero", EncodeRegImm(RIBGEZ, 1, 2), nil, true},
		{"bgez negative", EncodeRegImm(RIBGEZ, 1, 2), map[uint8]uint32{1: 0x80000000}, false},
	}

	bus := newTestBus(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, res := execute(t, bus, stateWith(tt.regs), tt.word)
			require.Equal(t, tt.taken, res.Jumped)
			if tt.taken {
				require.Equal(t, uint32(0x0040000C), next.PC)
			} else {
				require.Equal(t, uint32(testPC), next.PC, "untaken branch leaves PC to the cycle driver")
			}
		})
	}
}

func TestExecuteBackwardBranch(t *testing.T) {
	bus := newTestBus(t)
	cur := stateWith(nil)
	cur.PC = 0x00400010

	next, res := execute(t, bus, cur, EncodeI(OPBEQ, 0, 0, 0xFFFB))
	require.True(t, res.Jumped)
	require.Equal(t, uint32(0x00400000), next.PC)
}

func TestExecuteJumps(t *testing.T) {
	bus := newTestBus(t)

	next, res := execute(t, bus, stateWith(nil), EncodeJ(OPJAL, 0x00400020>>2))
	require.True(t, res.Jumped)
	require.Equal(t, uint32(0x00400020), next.PC)
	require.Equal(t, uint32(0x00400004), next.Regs[RegRA])

	next, _ = execute(t, bus, stateWith(nil), EncodeJ(OPJ, 0x00400100>>2))
	require.Equal(t, uint32(0x00400100), next.PC)
	require.Zero(t, next.Regs[RegRA])

	next, res = execute(t, bus, stateWith(map[uint8]uint32{RegRA: 0x00400040}), EncodeR(FNJR, RegRA, 0, 0, 0))
	require.True(t, res.Jumped)
	require.Equal(t, uint32(0x00400040), next.PC)

	next, _ = execute(t, bus, stateWith(map[uint8]uint32{8: 0x00400080}), EncodeR(FNJALR, 8, 0, RegRA, 0))
	require.Equal(t, uint32(0x00400080), next.PC)
	require.Equal(t, uint32(0x00400004), next.Regs[RegRA])

	// JALR with rd == rs jumps to the old value.
	next, _ = execute(t, bus, stateWith(map[uint8]uint32{8: 0x00400080}), EncodeR(FNJALR, 8, 0, 8, 0))
	require.Equal(t, uint32(0x00400080), next.PC)
	require.Equal(t, uint32(0x00400004), next.Regs[8])
}

func TestExecuteLoadStore(t *testing.T) {
	bus := newTestBus(t)
	const base = DataBegin + 0x10
	bus.Write32(base, 0x8081F0F1)
	bus.Write32(base+4, 0x11223344)

	regs := map[uint8]uint32{RegT0: base + 4}

	next, res := execute(t, bus, stateWith(regs), EncodeI(OPLW, RegT0, RegT1, 0xFFFC))
	require.Nil(t, res.Fault)
	require.Equal(t, uint32(0x8081F0F1), next.Regs[RegT1])

	next, _ = execute(t, bus, stateWith(regs), EncodeI(OPLB, RegT0, RegT1, 0xFFFC))
	require.Equal(t, uint32(0xFFFFFFF1), next.Regs[RegT1])

	next, _ = execute(t, bus, stateWith(regs), EncodeI(OPLH, RegT0, RegT1, 0xFFFC))
	require.Equal(t, uint32(0xFFFFF0F1), next.Regs[RegT1])

	next, _ = execute(t, bus, stateWith(regs), EncodeI(OPLB, RegT0, RegT1, 0))
	require.Equal(t, uint32(0x00000044), next.Regs[RegT1])

	next, _ = execute(t, bus, stateWith(regs), EncodeI(OPLH, RegT0, RegT1, 0))
	require.Equal(t, uint32(0x00003344), next.Regs[RegT1])

	// Stores keep the untouched bytes of the word.
	regs[RegT2] = 0xAABBCCDD
	execute(t, bus, stateWith(regs), EncodeI(OPSB, RegT0, RegT2, 0))
	require.Equal(t, uint32(0x112233DD), bus.Read32(base+4))

	execute(t, bus, stateWith(regs), EncodeI(OPSH, RegT0, RegT2, 0))
	require.Equal(t, uint32(0x1122CCDD), bus.Read32(base+4))

	execute(t, bus, stateWith(regs), EncodeI(OPSW, RegT0, RegT2, 4))
	require.Equal(t, uint32(0xAABBCCDD), bus.Read32(base+8))
}

func TestExecuteUnmappedMemory(t *testing.T) {
	bus := newTestBus(t)
	const addr = 0x00001000
	regs := map[uint8]uint32{RegT0: addr, RegT2: 0xFFFFFFFF}

	_, res := execute(t, bus, stateWith(regs), EncodeI(OPSW, RegT0, RegT2, 0))
	require.NotNil(t, res.Fault)
	require.Equal(t, FaultMemory, res.Fault.Kind)
	require.Equal(t, uint32(addr), res.Fault.Addr)
	require.False(t, res.Halt)

	next, res := execute(t, bus, stateWith(regs), EncodeI(OPLW, RegT0, RegT1, 0))
	require.Equal(t, FaultMemory, res.Fault.Kind)
	require.Zero(t, next.Regs[RegT1], "unmapped write had no effect")
}

func TestExecuteSyscall(t *testing.T) {
	bus := newTestBus(t)

	_, res := execute(t, bus, stateWith(map[uint8]uint32{RegV0: SyscallExit}), EncodeR(FNSYSCALL, 0, 0, 0, 0))
	require.True(t, res.Halt)
	require.Nil(t, res.Fault)

	_, res = execute(t, bus, stateWith(map[uint8]uint32{RegV0: 1}), EncodeR(FNSYSCALL, 0, 0, 0, 0))
	require.False(t, res.Halt)
}

func TestExecuteUnsupported(t *testing.T) {
	bus := newTestBus(t)
	_, res := execute(t, bus, stateWith(nil), 0xFFFFFFFF)
	require.True(t, res.Halt)
	require.NotNil(t, res.Fault)
	require.Equal(t, FaultUnimplemented, res.Fault.Kind)
	require.Equal(t, uint32(testPC), res.Fault.PC)
	require.Equal(t, uint32(0xFFFFFFFF), res.Fault.Raw)
	require.True(t, res.Fault.Fatal())
}
