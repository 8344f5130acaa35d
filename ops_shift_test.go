// ops_shift_test.go - Grp2 shift/rotate opcode family unit tests, including
// the undocumented reg=6 SETMO/SETMOC encoding
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later

package cpu

import "testing"

func TestShift8_SETMOForcesAllOnesAndClearsFlags(t *testing.T) {
	v, flags := Shift8(OpSETMO, 0x00, 1, FlagCF|FlagAF|FlagOF)
	if v != 0xFF {
		t.Errorf("SETMO result: got 0x%02X, want 0xFF", v)
	}
	if flags&(FlagCF|FlagAF|FlagOF) != 0 {
		t.Errorf("SETMO should clear CF/AF/OF, got flags=0x%04X", flags)
	}
	if flags&FlagSF == 0 || flags&FlagZF != 0 {
		t.Errorf("SETMO result 0xFF should set SF and clear ZF, got flags=0x%04X", flags)
	}
}

func TestShift16_SETMOForcesAllOnesAndClearsFlags(t *testing.T) {
	v, flags := Shift16(OpSETMO, 0x1234, 1, FlagCF|FlagAF|FlagOF)
	if v != 0xFFFF {
		t.Errorf("SETMO result: got 0x%04X, want 0xFFFF", v)
	}
	if flags&(FlagCF|FlagAF|FlagOF) != 0 {
		t.Errorf("SETMO should clear CF/AF/OF, got flags=0x%04X", flags)
	}
}

func TestShift8_SETMOCWithNonZeroCountForcesAllOnes(t *testing.T) {
	v, flags := Shift8(OpSETMOC, 0x00, 3, FlagCF|FlagAF|FlagOF)
	if v != 0xFF {
		t.Errorf("SETMOC (count!=0) result: got 0x%02X, want 0xFF", v)
	}
	if flags&(FlagCF|FlagAF|FlagOF) != 0 {
		t.Errorf("SETMOC should clear CF/AF/OF when count!=0, got flags=0x%04X", flags)
	}
}

func TestShift8_SETMOCWithZeroCountLeavesOperandAndFlagsAlone(t *testing.T) {
	v, flags := Shift8(OpSETMOC, 0x42, 0, FlagCF|FlagZF)
	if v != 0x42 {
		t.Errorf("SETMOC (CL=0) result: got 0x%02X, want unchanged 0x42", v)
	}
	if flags != FlagCF|FlagZF {
		t.Errorf("SETMOC (CL=0) should leave flags untouched, got 0x%04X", flags)
	}
}

func TestShift16_SETMOCWithZeroCountLeavesOperandAndFlagsAlone(t *testing.T) {
	v, flags := Shift16(OpSETMOC, 0xBEEF, 0, FlagCF|FlagZF)
	if v != 0xBEEF {
		t.Errorf("SETMOC (CL=0) result: got 0x%04X, want unchanged 0xBEEF", v)
	}
	if flags != FlagCF|FlagZF {
		t.Errorf("SETMOC (CL=0) should leave flags untouched, got 0x%04X", flags)
	}
}

// D0 /6 (mod=11 reg=110 rm=000) is the undocumented SETMO encoding on AL.
func TestOpcode_D0Reg6IsSETMOOnAL(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0xD0, 0xF0) // D0 /6, rm=AL
	regs := c.Registers()
	regs.AX = 0x0000
	regs.Flags |= FlagCF | FlagAF | FlagOF
	c.SetRegisters(regs)

	stepN(t, c, 1)
	if c.Registers().AL() != 0xFF {
		t.Errorf("AL: got 0x%02X, want 0xFF", c.Registers().AL())
	}
	if c.Registers().Flags&(FlagCF|FlagAF|FlagOF) != 0 {
		t.Errorf("CF/AF/OF should be clear after SETMO, got flags=0x%04X", c.Registers().Flags)
	}
}

// D2 /6 (mod=11 reg=110 rm=000) is the undocumented SETMOC encoding on AL,
// gated on CL.
func TestOpcode_D2Reg6IsSETMOCGatedOnCL(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0xD2, 0xF0) // D2 /6, rm=AL
	regs := c.Registers()
	regs.AX = 0x0034 // AL = 0x34
	regs.CX = 0x0000 // CL = 0
	c.SetRegisters(regs)

	stepN(t, c, 1)
	if c.Registers().AL() != 0x34 {
		t.Errorf("AL with CL=0: got 0x%02X, want unchanged 0x34", c.Registers().AL())
	}

	bus.load(0, 0xD2, 0xF0)
	regs = c.Registers()
	regs.IP = 0
	regs.CX = 0x0005 // CL = 5
	c.SetRegisters(regs)

	stepN(t, c, 1)
	if c.Registers().AL() != 0xFF {
		t.Errorf("AL with CL=5: got 0x%02X, want 0xFF", c.Registers().AL())
	}
}

func TestOpcode_D1Reg6IsSETMOOnWordOperand(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0xD1, 0xF3) // D1 /6, rm=BX
	regs := c.Registers()
	regs.BX = 0x0000
	c.SetRegisters(regs)

	stepN(t, c, 1)
	if c.Registers().BX != 0xFFFF {
		t.Errorf("BX: got 0x%04X, want 0xFFFF", c.Registers().BX)
	}
}

func TestOpcode_D0Reg4IsStillPlainSHL(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0xD0, 0xE0) // D0 /4 (reg=100), rm=AL
	regs := c.Registers()
	regs.AX = 0x0001
	c.SetRegisters(regs)

	stepN(t, c, 1)
	if c.Registers().AL() != 0x02 {
		t.Errorf("AL after SHL AL,1: got 0x%02X, want 0x02", c.Registers().AL())
	}
}
