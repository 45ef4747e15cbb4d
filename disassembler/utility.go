package disassembler

import (
	"fmt"

	"github.com/Urethramancer/mips32/cpu"
)

func labelName(addr uint32, labelType LabelType) string {
	prefix := "loc_"
	switch labelType {
	case SubroutineEntry:
		prefix = "sub_"
	}
	return fmt.Sprintf("%s%08X", prefix, addr)
}

func reg(r uint8) string {
	return cpu.RegisterName(r)
}

func addr(a uint32) string {
	return fmt.Sprintf("0x%08x", a)
}

func hex16(v uint16) string {
	if v < 10 {
		return fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("0x%x", v)
}
