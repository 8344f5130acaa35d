// ops_shift.go - Grp2 shift/rotate family (0xD0-0xD3)
//
// Grounded on cpu_x86_grp.go's Grp2 dispatch, routed through the Shift8/
// Shift16 primitives of alu.go rather than reimplementing the bit loops here.
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later

package cpu

func init() {
	register(0xD0, OpInfo{HasModRM: true}, opGrp2Eb1)
	register(0xD1, OpInfo{HasModRM: true}, opGrp2Ev1)
	register(0xD2, OpInfo{HasModRM: true}, opGrp2EbCL)
	register(0xD3, OpInfo{HasModRM: true}, opGrp2EvCL)
}

// grp2Op maps a ModR/M reg field to the ShiftOp it selects. reg==6 has no
// documented meaning; real 8088/8086 silicon decodes it as SETMO (the 0xD0/
// 0xD1 fixed-count forms) or SETMOC (the 0xD2/0xD3 CL-count forms) instead of
// repeating SHL/SAL, so the two encodings need distinct ShiftOp values even
// though the ModR/M byte itself doesn't distinguish them.
func grp2Op(reg byte, counted bool) ShiftOp {
	if reg == 6 {
		if counted {
			return OpSETMOC
		}
		return OpSETMO
	}
	return ShiftOp(reg)
}

func opGrp2Eb1(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	v := c.rmRead8(dec.Addr)
	r, flags := Shift8(grp2Op(dec.Reg, false), v, 1, c.regs.Flags)
	c.regs.Flags = flags
	c.rmWrite8(dec.Addr, r)
	return StatusOkay, nil
}

func opGrp2Ev1(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	v := c.rmRead16(dec.Addr)
	r, flags := Shift16(grp2Op(dec.Reg, false), v, 1, c.regs.Flags)
	c.regs.Flags = flags
	c.rmWrite16(dec.Addr, r)
	return StatusOkay, nil
}

func opGrp2EbCL(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	v := c.rmRead8(dec.Addr)
	r, flags := Shift8(grp2Op(dec.Reg, true), v, int(c.regs.CL()), c.regs.Flags)
	c.regs.Flags = flags
	c.rmWrite8(dec.Addr, r)
	return StatusOkay, nil
}

func opGrp2EvCL(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	v := c.rmRead16(dec.Addr)
	r, flags := Shift16(grp2Op(dec.Reg, true), v, int(c.regs.CL()), c.regs.Flags)
	c.regs.Flags = flags
	c.rmWrite16(dec.Addr, r)
	return StatusOkay, nil
}
