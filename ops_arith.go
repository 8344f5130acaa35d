// ops_arith.go - ADD/ADC/SUB/SBB/AND/OR/XOR/CMP/TEST and their Grp1 immediate forms
//
// Grounded on the opADD_Eb_Gb / opADD_Ev_Gv / opADD_Gb_Eb /
// opADD_Gv_Ev / opADD_AL_Ib / opADD_AX_Iv family (cpu_x86_ops.go) and
// cpu_x86_grp.go's Grp1 dispatch, trimmed to the 8088/8086's 8/16-bit
// operand sizes (the 32-bit prefixOpSize branch has no 8088/8086
// equivalent and is dropped).
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later

package cpu

func init() {
	registerArithFamily(0x00, OpAdd)
	registerArithFamily(0x08, OpOr)
	registerArithFamily(0x10, OpAdc)
	registerArithFamily(0x18, OpSbb)
	registerArithFamily(0x20, OpAnd)
	registerArithFamily(0x28, OpSub)
	registerArithFamily(0x30, OpXor)
	registerArithFamily(0x38, OpCmp)

	register(0x84, OpInfo{HasModRM: true}, opTESTEbGb)
	register(0x85, OpInfo{HasModRM: true}, opTESTEvGv)
	register(0xA8, OpInfo{ImmKind: Imm8}, opTESTALIb)
	register(0xA9, OpInfo{ImmKind: Imm16}, opTESTAXIv)

	register(0x80, OpInfo{HasModRM: true, ImmKind: Imm8}, opGrp1Eb)
	register(0x81, OpInfo{HasModRM: true, ImmKind: Imm16}, opGrp1Ev)
	register(0x83, OpInfo{HasModRM: true, ImmKind: Imm8SignExtended}, opGrp1Ev)

	for r := byte(0); r < 8; r++ {
		register(0x40+r, OpInfo{}, opINCreg16)
		register(0x48+r, OpInfo{}, opDECreg16)
	}

	register(0xFE, OpInfo{HasModRM: true}, opGrp4or5Eb)
	register(0xF6, OpInfo{HasModRM: true}, opGrp3Eb)
	register(0xF7, OpInfo{HasModRM: true}, opGrp3Ev)
}

// ArithOp names the eight Grp1/row-of-8 ALU operations by their reg-field
// encoding ("up to two operands" instruction record covers all
// eight identically; only the ALU primitive differs).
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpOr
	OpAdc
	OpSbb
	OpAnd
	OpSub
	OpXor
	OpCmp
)

func applyArithOp8(op ArithOp, flags uint16, a, b byte) (byte, uint16) {
	switch op {
	case OpAdd:
		r, f := aluAdd8(a, b, false)
		return r, applyArith(flags, f)
	case OpAdc:
		r, f := aluAdd8(a, b, flags&FlagCF != 0)
		return r, applyArith(flags, f)
	case OpSub, OpCmp:
		r, f := aluSub8(a, b, false)
		return r, applyArith(flags, f)
	case OpSbb:
		r, f := aluSub8(a, b, flags&FlagCF != 0)
		return r, applyArith(flags, f)
	case OpAnd:
		r, f := aluAnd8(a, b)
		return r, applyLogic(flags, f)
	case OpOr:
		r, f := aluOr8(a, b)
		return r, applyLogic(flags, f)
	default: // OpXor
		r, f := aluXor8(a, b)
		return r, applyLogic(flags, f)
	}
}

func applyArithOp16(op ArithOp, flags uint16, a, b uint16) (uint16, uint16) {
	switch op {
	case OpAdd:
		r, f := aluAdd16(a, b, false)
		return r, applyArith(flags, f)
	case OpAdc:
		r, f := aluAdd16(a, b, flags&FlagCF != 0)
		return r, applyArith(flags, f)
	case OpSub, OpCmp:
		r, f := aluSub16(a, b, false)
		return r, applyArith(flags, f)
	case OpSbb:
		r, f := aluSub16(a, b, flags&FlagCF != 0)
		return r, applyArith(flags, f)
	case OpAnd:
		r, f := aluAnd16(a, b)
		return r, applyLogic(flags, f)
	case OpOr:
		r, f := aluOr16(a, b)
		return r, applyLogic(flags, f)
	default:
		r, f := aluXor16(a, b)
		return r, applyLogic(flags, f)
	}
}

// registerArithFamily wires the six ModR/M+immediate forms shared by every
// row of the classic ALU opcode grid (base .. base+5).
func registerArithFamily(base byte, op ArithOp) {
	register(base+0, OpInfo{HasModRM: true}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		a := c.rmRead8(dec.Addr)
		b := c.regs.reg8(dec.Reg)
		r, flags := applyArithOp8(op, c.regs.Flags, a, b)
		c.regs.Flags = flags
		if op != OpCmp {
			c.rmWrite8(dec.Addr, r)
		}
		return StatusOkay, nil
	})
	register(base+1, OpInfo{HasModRM: true}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		a := c.rmRead16(dec.Addr)
		b := c.regs.reg16(dec.Reg)
		r, flags := applyArithOp16(op, c.regs.Flags, a, b)
		c.regs.Flags = flags
		if op != OpCmp {
			c.rmWrite16(dec.Addr, r)
		}
		return StatusOkay, nil
	})
	register(base+2, OpInfo{HasModRM: true}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		a := c.regs.reg8(dec.Reg)
		b := c.rmRead8(dec.Addr)
		r, flags := applyArithOp8(op, c.regs.Flags, a, b)
		c.regs.Flags = flags
		if op != OpCmp {
			c.regs.setReg8(dec.Reg, r)
		}
		return StatusOkay, nil
	})
	register(base+3, OpInfo{HasModRM: true}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		a := c.regs.reg16(dec.Reg)
		b := c.rmRead16(dec.Addr)
		r, flags := applyArithOp16(op, c.regs.Flags, a, b)
		c.regs.Flags = flags
		if op != OpCmp {
			c.regs.setReg16(dec.Reg, r)
		}
		return StatusOkay, nil
	})
	register(base+4, OpInfo{ImmKind: Imm8}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		a := c.regs.AL()
		r, flags := applyArithOp8(op, c.regs.Flags, a, byte(dec.Imm))
		c.regs.Flags = flags
		if op != OpCmp {
			c.regs.SetAL(r)
		}
		return StatusOkay, nil
	})
	register(base+5, OpInfo{ImmKind: Imm16}, func(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
		a := c.regs.AX
		r, flags := applyArithOp16(op, c.regs.Flags, a, dec.Imm)
		c.regs.Flags = flags
		if op != OpCmp {
			c.regs.AX = r
		}
		return StatusOkay, nil
	})
}

func opTESTEbGb(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	a := c.rmRead8(dec.Addr)
	b := c.regs.reg8(dec.Reg)
	_, f := aluAnd8(a, b)
	c.regs.Flags = applyLogic(c.regs.Flags, f)
	return StatusOkay, nil
}

func opTESTEvGv(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	a := c.rmRead16(dec.Addr)
	b := c.regs.reg16(dec.Reg)
	_, f := aluAnd16(a, b)
	c.regs.Flags = applyLogic(c.regs.Flags, f)
	return StatusOkay, nil
}

func opTESTALIb(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	_, f := aluAnd8(c.regs.AL(), byte(dec.Imm))
	c.regs.Flags = applyLogic(c.regs.Flags, f)
	return StatusOkay, nil
}

func opTESTAXIv(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	_, f := aluAnd16(c.regs.AX, dec.Imm)
	c.regs.Flags = applyLogic(c.regs.Flags, f)
	return StatusOkay, nil
}

// opGrp1Eb/opGrp1Ev dispatch 0x80/0x81/0x83 by the ModR/M reg field, which
// names the ALU operation rather than a destination register.
func opGrp1Eb(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	a := c.rmRead8(dec.Addr)
	op := ArithOp(dec.Reg)
	r, flags := applyArithOp8(op, c.regs.Flags, a, byte(dec.Imm))
	c.regs.Flags = flags
	if op != OpCmp {
		c.rmWrite8(dec.Addr, r)
	}
	return StatusOkay, nil
}

func opGrp1Ev(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	a := c.rmRead16(dec.Addr)
	op := ArithOp(dec.Reg)
	r, flags := applyArithOp16(op, c.regs.Flags, a, dec.Imm)
	c.regs.Flags = flags
	if op != OpCmp {
		c.rmWrite16(dec.Addr, r)
	}
	return StatusOkay, nil
}

func opINCreg16(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	reg := dec.Opcode & 7
	v := c.regs.reg16(reg)
	r, f := aluInc16(v)
	c.regs.Flags = applyArithNoCarry(c.regs.Flags, f)
	c.regs.setReg16(reg, r)
	return StatusOkay, nil
}

func opDECreg16(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	reg := dec.Opcode & 7
	v := c.regs.reg16(reg)
	r, f := aluDec16(v)
	c.regs.Flags = applyArithNoCarry(c.regs.Flags, f)
	c.regs.setReg16(reg, r)
	return StatusOkay, nil
}

// opGrp4or5Eb implements the /0 and /1 (INC/DEC Eb) encodings of 0xFE; the
// word-size Grp5 (0xFF), which adds INC/DEC Ev plus the indirect CALL/JMP/
// PUSH forms, is wired separately in ops_grp5.go.
func opGrp4or5Eb(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	v := c.rmRead8(dec.Addr)
	switch dec.Reg {
	case 0:
		r, f := aluInc8(v)
		c.regs.Flags = applyArithNoCarry(c.regs.Flags, f)
		c.rmWrite8(dec.Addr, r)
	case 1:
		r, f := aluDec8(v)
		c.regs.Flags = applyArithNoCarry(c.regs.Flags, f)
		c.rmWrite8(dec.Addr, r)
	default:
		return 0, newCPUError(ErrUnsupportedOpcode, dec.Linear, "unsupported Grp4 /reg")
	}
	return StatusOkay, nil
}

// opGrp3Eb/opGrp3Ev implement the 0xF6/0xF7 forms /0 TEST, /2 NOT, /3 NEG,
// /4 MUL, /5 IMUL, /6 DIV and /7 IDIV; /1 is not handled and returns an
// unsupported-opcode error. DIV/IDIV route a zero divisor or
// a quotient that overflows the destination into the divide-error vector
// rather than returning a CPUError: the
// fault is architectural, not a host-side failure.
func opGrp3Eb(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	switch dec.Reg {
	case 0:
		// /0 TEST Eb,Ib is the one Grp3 form that still carries an immediate;
		// the opcode's static decode shape has no ModR/M-conditional way to say
		// so, so the byte is pulled here instead, right where decode left off.
		src := &stallingSource{c: c}
		imm, ok := src.PopOpcodeByte()
		if !ok {
			return 0, newCPUError(ErrDecodeFailure, dec.Linear, "TEST Eb,Ib: immediate byte never arrived")
		}
		dec.Bytes = append(dec.Bytes, imm)
		_, f := aluAnd8(c.rmRead8(dec.Addr), imm)
		c.regs.Flags = applyLogic(c.regs.Flags, f)
		return StatusOkay, nil
	case 2:
		v := c.rmRead8(dec.Addr)
		r := ^v
		c.rmWrite8(dec.Addr, r)
		return StatusOkay, nil
	case 3:
		v := c.rmRead8(dec.Addr)
		r, f := aluSub8(0, v, false)
		f.cf = v != 0
		c.regs.Flags = applyArith(c.regs.Flags, f)
		c.rmWrite8(dec.Addr, r)
		return StatusOkay, nil
	case 4:
		v := c.rmRead8(dec.Addr)
		result := uint16(c.regs.AL()) * uint16(v)
		c.regs.AX = result
		cf, of := mulFlags(byte(result>>8) != 0)
		c.regs.Flags = setFlagBit(c.regs.Flags, FlagCF, cf)
		c.regs.Flags = setFlagBit(c.regs.Flags, FlagOF, of)
		return StatusOkay, nil
	case 5:
		v := int8(c.rmRead8(dec.Addr))
		result := int16(int8(c.regs.AL())) * int16(v)
		c.regs.AX = uint16(result)
		overflow := result != int16(int8(byte(result)))
		c.regs.Flags = setFlagBit(c.regs.Flags, FlagCF, overflow)
		c.regs.Flags = setFlagBit(c.regs.Flags, FlagOF, overflow)
		return StatusOkay, nil
	case 6:
		divisor := c.rmRead8(dec.Addr)
		if divisor == 0 {
			c.raiseException(vectorDivideError, c.regs.IP)
			return StatusOkayJump, nil
		}
		dividend := c.regs.AX
		quotient := dividend / uint16(divisor)
		remainder := dividend % uint16(divisor)
		if quotient > 0xFF {
			c.raiseException(vectorDivideError, c.regs.IP)
			return StatusOkayJump, nil
		}
		c.regs.SetAL(byte(quotient))
		c.regs.SetAH(byte(remainder))
		return StatusOkay, nil
	case 7:
		divisor := int8(c.rmRead8(dec.Addr))
		if divisor == 0 {
			c.raiseException(vectorDivideError, c.regs.IP)
			return StatusOkayJump, nil
		}
		dividend := int16(c.regs.AX)
		quotient := dividend / int16(divisor)
		remainder := dividend % int16(divisor)
		if quotient > 127 || quotient < -128 {
			c.raiseException(vectorDivideError, c.regs.IP)
			return StatusOkayJump, nil
		}
		c.regs.SetAL(byte(quotient))
		c.regs.SetAH(byte(remainder))
		return StatusOkay, nil
	}
	return 0, newCPUError(ErrUnsupportedOpcode, dec.Linear, "unsupported Grp3 /reg")
}

func opGrp3Ev(c *CPU, dec *Decoded) (StepStatus, *CPUError) {
	switch dec.Reg {
	case 0:
		src := &stallingSource{c: c}
		lo, ok1 := src.PopOpcodeByte()
		hi, ok2 := src.PopOpcodeByte()
		if !ok1 || !ok2 {
			return 0, newCPUError(ErrDecodeFailure, dec.Linear, "TEST Ev,Iv: immediate word never arrived")
		}
		dec.Bytes = append(dec.Bytes, lo, hi)
		imm := uint16(lo) | uint16(hi)<<8
		_, f := aluAnd16(c.rmRead16(dec.Addr), imm)
		c.regs.Flags = applyLogic(c.regs.Flags, f)
		return StatusOkay, nil
	case 2:
		v := c.rmRead16(dec.Addr)
		r := ^v
		c.rmWrite16(dec.Addr, r)
		return StatusOkay, nil
	case 3:
		v := c.rmRead16(dec.Addr)
		r, f := aluSub16(0, v, false)
		f.cf = v != 0
		c.regs.Flags = applyArith(c.regs.Flags, f)
		c.rmWrite16(dec.Addr, r)
		return StatusOkay, nil
	case 4:
		v := c.rmRead16(dec.Addr)
		result := uint32(c.regs.AX) * uint32(v)
		c.regs.AX = uint16(result)
		c.regs.DX = uint16(result >> 16)
		cf, of := mulFlags(c.regs.DX != 0)
		c.regs.Flags = setFlagBit(c.regs.Flags, FlagCF, cf)
		c.regs.Flags = setFlagBit(c.regs.Flags, FlagOF, of)
		return StatusOkay, nil
	case 5:
		v := int16(c.rmRead16(dec.Addr))
		result := int32(int16(c.regs.AX)) * int32(v)
		c.regs.AX = uint16(result)
		c.regs.DX = uint16(result >> 16)
		overflow := result != int32(int16(uint16(result)))
		c.regs.Flags = setFlagBit(c.regs.Flags, FlagCF, overflow)
		c.regs.Flags = setFlagBit(c.regs.Flags, FlagOF, overflow)
		return StatusOkay, nil
	case 6:
		divisor := c.rmRead16(dec.Addr)
		if divisor == 0 {
			c.raiseException(vectorDivideError, c.regs.IP)
			return StatusOkayJump, nil
		}
		dividend := uint32(c.regs.DX)<<16 | uint32(c.regs.AX)
		quotient := dividend / uint32(divisor)
		remainder := dividend % uint32(divisor)
		if quotient > 0xFFFF {
			c.raiseException(vectorDivideError, c.regs.IP)
			return StatusOkayJump, nil
		}
		c.regs.AX = uint16(quotient)
		c.regs.DX = uint16(remainder)
		return StatusOkay, nil
	case 7:
		divisor := int16(c.rmRead16(dec.Addr))
		if divisor == 0 {
			c.raiseException(vectorDivideError, c.regs.IP)
			return StatusOkayJump, nil
		}
		dividend := int32(uint32(c.regs.DX)<<16 | uint32(c.regs.AX))
		quotient := dividend / int32(divisor)
		remainder := dividend % int32(divisor)
		if quotient > 32767 || quotient < -32768 {
			c.raiseException(vectorDivideError, c.regs.IP)
			return StatusOkayJump, nil
		}
		c.regs.AX = uint16(quotient)
		c.regs.DX = uint16(remainder)
		return StatusOkay, nil
	}
	return 0, newCPUError(ErrUnsupportedOpcode, dec.Linear, "unsupported Grp3 /reg")
}
