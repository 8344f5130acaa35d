// ops_control.go - branches, loops, CALL/RET, stack, flags, INT/IRET, HLT
//
// Grounded on the jump-condition table and push16/pop16 stack
// helpers (cpu_x86.go), generalized to route CALL/INT through the call-stack
// shadow and INT through the shared interrupt entry path
// instead of the flat EIP assignment.
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later

package cpu

func init() {
	for cc := byte(0); cc < 16; cc++ {
		register(0x70+cc, OpInfo{ImmKind: Rel8}, opJcc)
	}
	register(0xEB, OpInfo{ImmKind: Rel8}, opJMPshort)
	register(0xE9, OpInfo{ImmKind: Rel16}, opJMPnear)
	register(0xEA, OpInfo{ImmKind: Imm16}, opJMPfar)

	register(0xE0, OpInfo{ImmKind: Rel8}, opLOOPNE)
	register(0xE1, OpInfo{ImmKind: Rel8}, opLOOPE)
	register(0xE2, OpInfo{ImmKind: Rel8}, opLOOP)
	register(0xE3, OpInfo{ImmKind: Rel8}, opJCXZ)

	register(0xE8, OpInfo{ImmKind: Rel16}, opCALLnear)
	register(0x9A, OpInfo{ImmKind: Imm16}, opCALLfar)
	register(0xC3, OpInfo{}, opRETnear)
	register(0xC2, OpInfo{ImmKind: Imm16}, opRETnearImm)
	register(0xCB, OpInfo{}, opRETfar)
	register(0xCA, OpInfo{ImmKind: Imm16}, opRETfarImm)

	for r := byte(0); r < 8; r++ {
		register(0x50+r, OpInfo{}, opPUSHreg16)
		register(0x58+r, OpInfo{}, opPOPreg16)
	}
	register(0x06, OpInfo{}, opPUSHseg(SegES))
	register(0x07, OpInfo{}, opPOPseg(SegES))
	register(0x0E, OpInfo{}, opPUSHseg(SegCS))
	register(0x16, OpInfo{}, opPUSHseg(SegSS))
	register(0x17, OpInfo{}, opPOPseg(SegSS))
	register(0x1E, OpInfo{}, opPUSHseg(SegDS))
	register(0x1F, OpInfo{}, opPOPseg(SegDS))

	register(0x9C, OpInfo{}, opPUSHF)
	register(0x9D, OpInfo{}, opPOPF)
	register(0x9E, OpInfo{}, opSAHF)
	register(0x9F, OpInfo{}, opLAHF)

	register(0xCC, OpInfo{}, opINT3)
	register(0xCD, OpInfo{ImmKind: Imm8}, opINTimm8)
	register(0xCE, OpInfo{}, opINTO)
	register(0xCF, OpInfo{}, opIRET)

	register(0xF4, OpInfo{}, opHLT)
	register(0xF5, OpInfo{}, opCMC)
	register(0xF8, OpInfo{}, opFlagOp(FlagCF, false))
	register(0xF9, OpInfo{}, opFlagOp(FlagCF, true))
	register(0xFA, OpInfo{}, opFlagOp(FlagIF, false))
	register(0xFB, OpInfo{}, opFlagOp(FlagIF, true))
	register(0xFC, OpInfo{}, opFlagOp(FlagDF, false))
	register(0xFD, OpInfo{}, opFlagOp(FlagDF, true))
}

// evalCond evaluates the 16 Jcc condition codes against the flag register.
func evalCond(cc byte, r *Registers) bool {
	switch cc {
	case 0x0: // JO
		return r.GetFlag(FlagOF)
	case 0x1: // JNO
		return !r.GetFlag(FlagOF)
	case 0x2: // JB/JC
		return r.GetFlag(FlagCF)
	case 0x3: // JNB/JNC
		return !r.GetFlag(FlagCF)
	case 0x4: // JE/JZ
		return r.GetFlag(FlagZF)
	case 0x5: // JNE/JNZ
		return !r.GetFlag(FlagZF)
	case 0x6: // JBE
		return r.GetFlag(FlagCF) || r.GetFlag(FlagZF)
	case 0x7: // JA
		return !r.GetFlag(FlagCF) && !r.GetFlag(FlagZF)
	case 0x8: // JS
		return r.GetFlag(FlagSF)
	case 0x9: // JNS
		return !r.GetFlag(FlagSF)
	case 0xA: // JP/JPE
		return r.GetFlag(FlagPF)
	case 0xB: // JNP/JPO
		return !r.GetFlag(FlagPF)
	case 0xC: // JL
		return r.GetFlag(FlagSF) != r.GetFlag(FlagOF)
	case 0xD: // JGE
		return r.GetFlag(FlagSF) == r.GetFlag(FlagOF)
	case 0xE: // JLE
		return r.GetFlag(FlagZF) || (r.GetFlag(FlagSF) != r.GetFlag(FlagOF))
	default: // JG
		return !r.GetFlag(FlagZF) && (r.GetFlag(FlagSF) == r.GetFlag(FlagOF))
	}
}

func opJcc(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	cc := dec.Opcode - 0x70
	if evalCond(cc, &c.regs) {
		c.regs.IP = c.regs.IP + uint16(len(dec.Bytes)) + dec.Imm
		c.biu.Flush(SegCS, c.regs.Seg[SegCS], c.regs.IP)
		return StatusOkayJump, nil
	}
	return StatusOkay, nil
}

func opJMPshort(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.regs.IP = c.regs.IP + uint16(len(dec.Bytes)) + dec.Imm
	c.biu.Flush(SegCS, c.regs.Seg[SegCS], c.regs.IP)
	return StatusOkayJump, nil
}

func opJMPnear(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.regs.IP = c.regs.IP + uint16(len(dec.Bytes)) + dec.Imm
	c.biu.Flush(SegCS, c.regs.Seg[SegCS], c.regs.IP)
	return StatusOkayJump, nil
}

func opJMPfar(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	src := &stallingSource{c: c}
	csLo, _ := src.PopOpcodeByte()
	csHi, _ := src.PopOpcodeByte()
	dec.Bytes = append(dec.Bytes, csLo, csHi)
	newCS := uint16(csLo) | uint16(csHi)<<8
	newIP := dec.Imm
	c.regs.Seg[SegCS] = newCS
	c.regs.IP = newIP
	c.biu.Flush(SegCS, newCS, newIP)
	return StatusOkayJump, nil
}

func opLOOP(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.regs.CX--
	if c.regs.CX != 0 {
		c.regs.IP = c.regs.IP + uint16(len(dec.Bytes)) + dec.Imm
		c.biu.Flush(SegCS, c.regs.Seg[SegCS], c.regs.IP)
		return StatusOkayJump, nil
	}
	return StatusOkay, nil
}

func opLOOPE(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.regs.CX--
	if c.regs.CX != 0 && c.regs.GetFlag(FlagZF) {
		c.regs.IP = c.regs.IP + uint16(len(dec.Bytes)) + dec.Imm
		c.biu.Flush(SegCS, c.regs.Seg[SegCS], c.regs.IP)
		return StatusOkayJump, nil
	}
	return StatusOkay, nil
}

func opLOOPNE(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.regs.CX--
	if c.regs.CX != 0 && !c.regs.GetFlag(FlagZF) {
		c.regs.IP = c.regs.IP + uint16(len(dec.Bytes)) + dec.Imm
		c.biu.Flush(SegCS, c.regs.Seg[SegCS], c.regs.IP)
		return StatusOkayJump, nil
	}
	return StatusOkay, nil
}

func opJCXZ(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	if c.regs.CX == 0 {
		c.regs.IP = c.regs.IP + uint16(len(dec.Bytes)) + dec.Imm
		c.biu.Flush(SegCS, c.regs.Seg[SegCS], c.regs.IP)
		return StatusOkayJump, nil
	}
	return StatusOkay, nil
}

func opCALLnear(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	retIP := c.regs.IP + uint16(len(dec.Bytes))
	c.push16(retIP)
	c.callStack.Push(FrameNearCall, c.regs.Seg[SegCS], retIP)
	c.regs.IP = retIP + dec.Imm
	c.biu.Flush(SegCS, c.regs.Seg[SegCS], c.regs.IP)
	return StatusOkayJump, nil
}

func opCALLfar(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	src := &stallingSource{c: c}
	csLo, _ := src.PopOpcodeByte()
	csHi, _ := src.PopOpcodeByte()
	dec.Bytes = append(dec.Bytes, csLo, csHi)
	newCS := uint16(csLo) | uint16(csHi)<<8
	newIP := dec.Imm

	retIP := c.regs.IP + uint16(len(dec.Bytes))
	c.push16(c.regs.Seg[SegCS])
	c.push16(retIP)
	c.callStack.Push(FrameFarCall, c.regs.Seg[SegCS], retIP)

	c.regs.Seg[SegCS] = newCS
	c.regs.IP = newIP
	c.biu.Flush(SegCS, newCS, newIP)
	return StatusOkayJump, nil
}

func opRETnear(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.regs.IP = c.pop16()
	c.biu.Flush(SegCS, c.regs.Seg[SegCS], c.regs.IP)
	return StatusOkayJump, nil
}

func opRETnearImm(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.regs.IP = c.pop16()
	c.regs.SP += dec.Imm
	c.biu.Flush(SegCS, c.regs.Seg[SegCS], c.regs.IP)
	return StatusOkayJump, nil
}

func opRETfar(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.regs.IP = c.pop16()
	c.regs.Seg[SegCS] = c.pop16()
	c.biu.Flush(SegCS, c.regs.Seg[SegCS], c.regs.IP)
	return StatusOkayJump, nil
}

func opRETfarImm(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.regs.IP = c.pop16()
	c.regs.Seg[SegCS] = c.pop16()
	c.regs.SP += dec.Imm
	c.biu.Flush(SegCS, c.regs.Seg[SegCS], c.regs.IP)
	return StatusOkayJump, nil
}

func opPUSHreg16(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.push16(c.regs.reg16(dec.Opcode & 7))
	return StatusOkay, nil
}

func opPOPreg16(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.regs.setReg16(dec.Opcode&7, c.pop16())
	return StatusOkay, nil
}

func opPUSHseg(seg segIndex) opHandler {
	return func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		c.push16(c.regs.seg(seg))
		return StatusOkay, nil
	}
}

func opPOPseg(seg segIndex) opHandler {
	return func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		c.regs.setSeg(seg, c.pop16())
		if seg == SegSS {
			c.istate.armInhibit()
		}
		return StatusOkay, nil
	}
}

func opPUSHF(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.push16(c.regs.Flags)
	return StatusOkay, nil
}

func opPOPF(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.regs.LoadFlags(c.pop16())
	return StatusOkay, nil
}

func opSAHF(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.regs.SAHF(c.regs.AH())
	return StatusOkay, nil
}

func opLAHF(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.regs.SetAH(c.regs.LAHF())
	return StatusOkay, nil
}

func opINT3(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.enterVector(3, c.regs.IP+uint16(len(dec.Bytes)))
	return StatusOkayJump, nil
}

func opINTimm8(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	vector := byte(dec.Imm)
	if vector == vectorServiceCall && c.regs.AH() == 1 {
		c.serviceCallRequested = true
	}
	c.enterVector(vector, c.regs.IP+uint16(len(dec.Bytes)))
	return StatusOkayJump, nil
}

func opINTO(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	if c.regs.GetFlag(FlagOF) {
		c.enterVector(vectorIntoOverflow, c.regs.IP+uint16(len(dec.Bytes)))
	}
	return StatusOkayJump, nil
}

func opIRET(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.regs.IP = c.pop16()
	c.regs.Seg[SegCS] = c.pop16()
	c.regs.LoadFlags(c.pop16())
	c.biu.Flush(SegCS, c.regs.Seg[SegCS], c.regs.IP)
	return StatusOkayJump, nil
}

func opHLT(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	return StatusHalted, nil
}

func opCMC(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	c.regs.SetFlagState(FlagCF, !c.regs.GetFlag(FlagCF))
	return StatusOkay, nil
}

func opFlagOp(mask uint16, set bool) opHandler {
	return func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		c.regs.SetFlagState(mask, set)
		return StatusOkay, nil
	}
}
