// ops_grp5.go - Grp5 word-size INC/DEC/CALL/JMP/PUSH (0xFF)
//
// Grounded on the cpu_x86_grp.go Grp5 dispatch and the CALL/JMP
// handlers of ops_control.go, whose call-stack-shadow and BIU-flush
// conventions the indirect forms here reuse rather than duplicate.
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later

package cpu

func init() {
	register(0xFF, OpInfo{HasModRM: true}, opGrp5Ev)
}

// opGrp5Ev dispatches 0xFF by its ModR/M reg field: /0 INC, /1 DEC, /2 CALL
// near indirect, /3 CALL far indirect, /4 JMP near indirect, /5 JMP far
// indirect, /6 PUSH. /7 is undefined on the 8088/8086 and left unwired.
func opGrp5Ev(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	switch dec.Reg {
	case 0:
		v := c.rmRead16(dec.Addr)
		r, f := aluInc16(v)
		c.regs.Flags = applyArithNoCarry(c.regs.Flags, f)
		c.rmWrite16(dec.Addr, r)
		return StatusOkay, nil

	case 1:
		v := c.rmRead16(dec.Addr)
		r, f := aluDec16(v)
		c.regs.Flags = applyArithNoCarry(c.regs.Flags, f)
		c.rmWrite16(dec.Addr, r)
		return StatusOkay, nil

	case 2:
		target := c.rmRead16(dec.Addr)
		retIP := c.regs.IP + uint16(len(dec.Bytes))
		c.push16(retIP)
		c.callStack.Push(FrameNearCall, c.regs.Seg[SegCS], retIP)
		c.regs.IP = target
		c.biu.Flush(SegCS, c.regs.Seg[SegCS], c.regs.IP)
		return StatusOkayJump, nil

	case 3:
		newIP, newCS, ok := c.rmReadFarPtr(dec.Addr)
		if !ok {
			return 0, newCPUError(ErrUnsupportedOpcode, dec.Linear, "CALL far indirect requires a memory operand")
		}
		retIP := c.regs.IP + uint16(len(dec.Bytes))
		c.push16(c.regs.Seg[SegCS])
		c.push16(retIP)
		c.callStack.Push(FrameFarCall, c.regs.Seg[SegCS], retIP)
		c.regs.Seg[SegCS] = newCS
		c.regs.IP = newIP
		c.biu.Flush(SegCS, newCS, newIP)
		return StatusOkayJump, nil

	case 4:
		target := c.rmRead16(dec.Addr)
		c.regs.IP = target
		c.biu.Flush(SegCS, c.regs.Seg[SegCS], c.regs.IP)
		return StatusOkayJump, nil

	case 5:
		newIP, newCS, ok := c.rmReadFarPtr(dec.Addr)
		if !ok {
			return 0, newCPUError(ErrUnsupportedOpcode, dec.Linear, "JMP far indirect requires a memory operand")
		}
		c.regs.Seg[SegCS] = newCS
		c.regs.IP = newIP
		c.biu.Flush(SegCS, newCS, newIP)
		return StatusOkayJump, nil

	case 6:
		c.push16(c.rmRead16(dec.Addr))
		return StatusOkay, nil
	}
	return 0, newCPUError(ErrUnsupportedOpcode, dec.Linear, "unsupported Grp5 /reg")
}
