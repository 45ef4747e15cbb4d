package cpu

// opSYSCALL handles SYSCALL. The code is taken from $v0.
// Only code 10 (exit) is implemented; it halts the simulator. Other codes do nothing.
func (c *cycle) opSYSCALL(in RType) {
	if c.reg(RegV0) == SyscallExit {
		c.res.Halt = true
	}
}
