package assembler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBranchOffset(t *testing.T) {
	tests := []struct {
		pc, target uint32
		want       uint16
		err        bool
	}{
		{0x00400000, 0x0040000C, 2, false},
		{0x00400000, 0x00400004, 0, false},
		{0x00400008, 0x00400000, 0xFFFD, false},
		{0x00400000, 0x00400006, 0, true},
		{0x00400002, 0x00400010, 0, true},
		{0x00400000, 0x00420004, 0, true},
	}

	for _, tt := range tests {
		got, err := branchOffset(tt.pc, tt.target)
		if tt.err {
			require.Error(t, err, "0x%08x -> 0x%08x", tt.pc, tt.target)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}
