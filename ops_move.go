// ops_move.go - MOV/XCHG and the string-move instructions
//
// Grounded on the opMOV_* family and its rep-prefixed string-op handlers in
// cpu_x86_ops.go; the string ops here are iteration bodies only (one SI/DI
// step each call) — the REP loop itself lives in eu.go's stepRepIteration,
// which yields back to the caller after every iteration rather than
// running the whole loop inside a single call the way cpu_x86_ops.go does.
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later

package cpu

func init() {
	register(0x88, OpInfo{HasModRM: true}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		c.rmWrite8(dec.Addr, c.regs.reg8(dec.Reg))
		return StatusOkay, nil
	})
	register(0x89, OpInfo{HasModRM: true}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		c.rmWrite16(dec.Addr, c.regs.reg16(dec.Reg))
		return StatusOkay, nil
	})
	register(0x8A, OpInfo{HasModRM: true}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		c.regs.setReg8(dec.Reg, c.rmRead8(dec.Addr))
		return StatusOkay, nil
	})
	register(0x8B, OpInfo{HasModRM: true}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		c.regs.setReg16(dec.Reg, c.rmRead16(dec.Addr))
		return StatusOkay, nil
	})

	register(0x8C, OpInfo{HasModRM: true}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		c.rmWrite16(dec.Addr, c.regs.seg(segIndex(dec.Reg&3)))
		return StatusOkay, nil
	})
	register(0x8E, OpInfo{HasModRM: true}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		v := c.rmRead16(dec.Addr)
		seg := segIndex(dec.Reg & 3)
		c.regs.setSeg(seg, v)
		if seg == SegSS {
			c.istate.armInhibit()
		}
		return StatusOkay, nil
	})

	register(0x8D, OpInfo{HasModRM: true}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		if dec.Addr.IsReg {
			return 0, newCPUError(ErrUnsupportedOpcode, dec.Linear, "LEA requires a memory operand")
		}
		c.regs.setReg16(dec.Reg, dec.Addr.Offset)
		return StatusOkay, nil
	})

	for r := byte(0); r < 8; r++ {
		register(0xB0+r, OpInfo{ImmKind: Imm8}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
			c.regs.setReg8(dec.Opcode-0xB0, byte(dec.Imm))
			return StatusOkay, nil
		})
		register(0xB8+r, OpInfo{ImmKind: Imm16}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
			c.regs.setReg16(dec.Opcode-0xB8, dec.Imm)
			return StatusOkay, nil
		})
	}

	register(0xC6, OpInfo{HasModRM: true, ImmKind: Imm8}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		c.rmWrite8(dec.Addr, byte(dec.Imm))
		return StatusOkay, nil
	})
	register(0xC7, OpInfo{HasModRM: true, ImmKind: Imm16}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		c.rmWrite16(dec.Addr, dec.Imm)
		return StatusOkay, nil
	})

	register(0xA0, OpInfo{ImmKind: Imm16}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		c.regs.SetAL(c.readMem8(c.effectiveSegment(SegDS), dec.Imm))
		return StatusOkay, nil
	})
	register(0xA1, OpInfo{ImmKind: Imm16}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		c.regs.AX = c.readMem16(c.effectiveSegment(SegDS), dec.Imm)
		return StatusOkay, nil
	})
	register(0xA2, OpInfo{ImmKind: Imm16}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		c.writeMem8(c.effectiveSegment(SegDS), dec.Imm, c.regs.AL())
		return StatusOkay, nil
	})
	register(0xA3, OpInfo{ImmKind: Imm16}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		c.writeMem16(c.effectiveSegment(SegDS), dec.Imm, c.regs.AX)
		return StatusOkay, nil
	})

	register(0x90, OpInfo{}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) { return StatusOkay, nil })
	for r := byte(1); r < 8; r++ {
		register(0x90+r, OpInfo{}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
			reg := dec.Opcode & 7
			a, b := c.regs.AX, c.regs.reg16(reg)
			c.regs.AX, b = b, a
			c.regs.setReg16(reg, b)
			return StatusOkay, nil
		})
	}

	register(0xA4, OpInfo{}, opMOVSB)
	register(0xA5, OpInfo{}, opMOVSW)
	register(0xAA, OpInfo{}, opSTOSB)
	register(0xAB, OpInfo{}, opSTOSW)
	register(0xAC, OpInfo{}, opLODSB)
	register(0xAD, OpInfo{}, opLODSW)
	register(0xA6, OpInfo{}, opCMPSB)
	register(0xA7, OpInfo{}, opCMPSW)
	register(0xAE, OpInfo{}, opSCASB)
	register(0xAF, OpInfo{}, opSCASW)
}

// strStep returns the signed per-iteration pointer delta for a string
// instruction of the given operand width, as an unsigned value that wraps
// correctly when DF=1 (uint16(-width)).
func strStep(df bool, width uint16) uint16 {
	if df {
		return -width // wraps to the uint16 two's-complement form
	}
	return width
}

func opMOVSB(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	v := c.readMem8(c.effectiveSegment(SegDS), c.regs.SI)
	c.writeMem8(SegES, c.regs.DI, v)
	step := strStep(c.regs.GetFlag(FlagDF), 1)
	c.regs.SI += step
	c.regs.DI += step
	return StatusOkay, nil
}

func opMOVSW(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	v := c.readMem16(c.effectiveSegment(SegDS), c.regs.SI)
	c.writeMem16(SegES, c.regs.DI, v)
	step := strStep(c.regs.GetFlag(FlagDF), 2)
	c.regs.SI += step
	c.regs.DI += step
	return StatusOkay, nil
}

func opSTOSB(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.writeMem8(SegES, c.regs.DI, c.regs.AL())
	c.regs.DI += strStep(c.regs.GetFlag(FlagDF), 1)
	return StatusOkay, nil
}

func opSTOSW(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.writeMem16(SegES, c.regs.DI, c.regs.AX)
	c.regs.DI += strStep(c.regs.GetFlag(FlagDF), 2)
	return StatusOkay, nil
}

func opLODSB(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.regs.SetAL(c.readMem8(c.effectiveSegment(SegDS), c.regs.SI))
	c.regs.SI += strStep(c.regs.GetFlag(FlagDF), 1)
	return StatusOkay, nil
}

func opLODSW(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.regs.AX = c.readMem16(c.effectiveSegment(SegDS), c.regs.SI)
	c.regs.SI += strStep(c.regs.GetFlag(FlagDF), 2)
	return StatusOkay, nil
}

func opCMPSB(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	a := c.readMem8(c.effectiveSegment(SegDS), c.regs.SI)
	b := c.readMem8(SegES, c.regs.DI)
	_, f := aluSub8(a, b, false)
	c.regs.Flags = applyArith(c.regs.Flags, f)
	step := strStep(c.regs.GetFlag(FlagDF), 1)
	c.regs.SI += step
	c.regs.DI += step
	return StatusOkay, nil
}

func opCMPSW(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	a := c.readMem16(c.effectiveSegment(SegDS), c.regs.SI)
	b := c.readMem16(SegES, c.regs.DI)
	_, f := aluSub16(a, b, false)
	c.regs.Flags = applyArith(c.regs.Flags, f)
	step := strStep(c.regs.GetFlag(FlagDF), 2)
	c.regs.SI += step
	c.regs.DI += step
	return StatusOkay, nil
}

func opSCASB(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	b := c.readMem8(SegES, c.regs.DI)
	_, f := aluSub8(c.regs.AL(), b, false)
	c.regs.Flags = applyArith(c.regs.Flags, f)
	c.regs.DI += strStep(c.regs.GetFlag(FlagDF), 1)
	return StatusOkay, nil
}

func opSCASW(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	b := c.readMem16(SegES, c.regs.DI)
	_, f := aluSub16(c.regs.AX, b, false)
	c.regs.Flags = applyArith(c.regs.Flags, f)
	c.regs.DI += strStep(c.regs.GetFlag(FlagDF), 2)
	return StatusOkay, nil
}
