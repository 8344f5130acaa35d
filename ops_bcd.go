// ops_bcd.go - sign-extension and BCD adjustment opcodes
//
// Grounded on the opCBW/opCWD/opDAA-style handlers in
// cpu_x86_ops.go; none of these carry a ModR/M byte. All but XLAT work on
// registers alone (XLAT reads one byte at DS:BX+AL), and only AAM/AAD take
// an immediate (the base byte) in their OpInfo.
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later

package cpu

func init() {
	register(0x98, OpInfo{}, opCBW)
	register(0x99, OpInfo{}, opCWD)
	register(0x27, OpInfo{}, opDAA)
	register(0x2F, OpInfo{}, opDAS)
	register(0x37, OpInfo{}, opAAA)
	register(0x3F, OpInfo{}, opAAS)
	register(0xD4, OpInfo{ImmKind: Imm8}, opAAM)
	register(0xD5, OpInfo{ImmKind: Imm8}, opAAD)
	register(0xD7, OpInfo{}, opXLAT)
}

// opCBW sign-extends AL into AH (AX := (int16)(int8)AL).
func opCBW(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	if c.regs.AL()&0x80 != 0 {
		c.regs.SetAH(0xFF)
	} else {
		c.regs.SetAH(0x00)
	}
	return StatusOkay, nil
}

// opCWD sign-extends AX into DX (DX:AX := (int32)(int16)AX).
func opCWD(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	if c.regs.AX&0x8000 != 0 {
		c.regs.DX = 0xFFFF
	} else {
		c.regs.DX = 0x0000
	}
	return StatusOkay, nil
}

// opDAA adjusts AL after an ADD/ADC of two packed-BCD bytes.
func opDAA(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	al := c.regs.AL()
	oldAL := al
	oldCF := c.regs.GetFlag(FlagCF)
	cf, af := oldCF, c.regs.GetFlag(FlagAF)

	if al&0x0F > 9 || af {
		carried := uint16(al) + 6 > 0xFF
		al += 6
		af = true
		cf = oldCF || carried
	}
	if oldAL > 0x99 || oldCF {
		al += 0x60
		cf = true
	}

	c.regs.SetAL(al)
	c.regs.SetFlagState(FlagCF, cf)
	c.regs.SetFlagState(FlagAF, af)
	c.regs.SetFlagState(FlagPF, parity(al))
	c.regs.SetFlagState(FlagZF, al == 0)
	c.regs.SetFlagState(FlagSF, al&0x80 != 0)
	return StatusOkay, nil
}

// opDAS adjusts AL after a SUB/SBB of two packed-BCD bytes.
func opDAS(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	al := c.regs.AL()
	oldAL := al
	oldCF := c.regs.GetFlag(FlagCF)
	cf, af := oldCF, c.regs.GetFlag(FlagAF)

	if al&0x0F > 9 || af {
		borrowed := al < 6
		al -= 6
		af = true
		cf = oldCF || borrowed
	}
	if oldAL > 0x99 || oldCF {
		al -= 0x60
		cf = true
	}

	c.regs.SetAL(al)
	c.regs.SetFlagState(FlagCF, cf)
	c.regs.SetFlagState(FlagAF, af)
	c.regs.SetFlagState(FlagPF, parity(al))
	c.regs.SetFlagState(FlagZF, al == 0)
	c.regs.SetFlagState(FlagSF, al&0x80 != 0)
	return StatusOkay, nil
}

// opAAA adjusts AL after an ADD of two unpacked-BCD digits, carrying into AH.
func opAAA(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	al := c.regs.AL()
	if al&0x0F > 9 || c.regs.GetFlag(FlagAF) {
		c.regs.SetAL((al + 6) & 0x0F)
		c.regs.SetAH(c.regs.AH() + 1)
		c.regs.SetFlagState(FlagAF, true)
		c.regs.SetFlagState(FlagCF, true)
	} else {
		c.regs.SetAL(al & 0x0F)
		c.regs.SetFlagState(FlagAF, false)
		c.regs.SetFlagState(FlagCF, false)
	}
	return StatusOkay, nil
}

// opAAS adjusts AL after a SUB of two unpacked-BCD digits, borrowing from AH.
func opAAS(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	al := c.regs.AL()
	if al&0x0F > 9 || c.regs.GetFlag(FlagAF) {
		c.regs.SetAL((al - 6) & 0x0F)
		c.regs.SetAH(c.regs.AH() - 1)
		c.regs.SetFlagState(FlagAF, true)
		c.regs.SetFlagState(FlagCF, true)
	} else {
		c.regs.SetAL(al & 0x0F)
		c.regs.SetFlagState(FlagAF, false)
		c.regs.SetFlagState(FlagCF, false)
	}
	return StatusOkay, nil
}

// opAAM converts AL into two unpacked-BCD digits in AH:AL by dividing by the
// immediate base (always 0x0A in practice, but the encoding allows any byte).
func opAAM(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	base := byte(dec.Imm)
	if base == 0 {
		return 0, newCPUError(ErrExecution, dec.Linear, "AAM divide by zero")
	}
	al := c.regs.AL()
	c.regs.SetAH(al / base)
	c.regs.SetAL(al % base)
	c.regs.SetFlagState(FlagPF, parity(c.regs.AL()))
	c.regs.SetFlagState(FlagZF, c.regs.AL() == 0)
	c.regs.SetFlagState(FlagSF, c.regs.AL()&0x80 != 0)
	return StatusOkay, nil
}

// opAAD converts two unpacked-BCD digits in AH:AL into a single binary value
// in AL ahead of a following DIV, undoing AAM's expansion.
func opAAD(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	base := byte(dec.Imm)
	al := c.regs.AH()*base + c.regs.AL()
	c.regs.SetAL(al)
	c.regs.SetAH(0)
	c.regs.SetFlagState(FlagPF, parity(al))
	c.regs.SetFlagState(FlagZF, al == 0)
	c.regs.SetFlagState(FlagSF, al&0x80 != 0)
	return StatusOkay, nil
}

// opXLAT loads AL from the translate table: AL := [DS:BX+AL].
func opXLAT(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	addr := c.regs.BX + uint16(c.regs.AL())
	c.regs.SetAL(c.readMem8(c.effectiveSegment(SegDS), addr))
	return StatusOkay, nil
}
