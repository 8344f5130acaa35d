// seed_scenarios_test.go - end-to-end scenarios exercising the BIU/EU split,
// interrupt admission, and exception entry together rather than one
// component in isolation.
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later

package cpu

import "testing"

func TestScenario_MovImmediateWordRecordsOneHistoryEntry(t *testing.T) {
	bus := newTestBus()
	bus.mem[0xFFFF0] = 0xB8
	bus.mem[0xFFFF1] = 0x34
	bus.mem[0xFFFF2] = 0x12
	cfg := DefaultConfig()
	cfg.InstructionHistoryOn = true
	c := New(bus, nil, cfg)

	flagsBefore := c.Registers().Flags
	stepN(t, c, 1)

	regs := c.Registers()
	if regs.AX != 0x1234 {
		t.Errorf("AX: got 0x%04X, want 0x1234", regs.AX)
	}
	if regs.IP != 3 {
		t.Errorf("IP: got %d, want 3", regs.IP)
	}
	if regs.Flags != flagsBefore {
		t.Error("MOV must not touch any flags")
	}
	if len(c.History()) != 1 {
		t.Fatalf("history length: got %d, want 1", len(c.History()))
	}
}

func TestScenario_DivideByZeroEntersVectorZero(t *testing.T) {
	c, bus := newTestCPU()
	setIVT(bus, 0x00, 0x9000, 0x0040)
	bus.load(0, 0xF7, 0xF3) // DIV BX (Grp3 Ev, /6, rm=BX)

	regs := c.Registers()
	regs.AX = 0x0010
	regs.BX = 0x0000
	regs.Flags |= FlagIF
	c.SetRegisters(regs)

	res, err := c.Step()
	if err != nil {
		t.Fatalf("DIV by zero should enter the exception vector, not fail the step: %v", err)
	}
	if c.IsError {
		t.Error("a divide-error exception is architectural, not a host error: IsError should stay false")
	}
	final := c.Registers()
	if final.Seg[SegCS] != 0x9000 || final.IP != 0x0040 {
		t.Errorf("vector 0 entry: got CS:IP=%04X:%04X, want 9000:0040", final.Seg[SegCS], final.IP)
	}
	if res.Status != StatusOkayJump {
		t.Errorf("status: got %v, want okay-jump", res.Status)
	}
}

func TestScenario_DivideOverflowAlsoFaults(t *testing.T) {
	c, bus := newTestCPU()
	setIVT(bus, 0x00, 0x9000, 0x0040)
	bus.load(0, 0xF6, 0xF3) // DIV BL (Grp3 Eb, /6, rm=BX's low byte)

	regs := c.Registers()
	regs.AX = 0x1000 // quotient with divisor 1 would be 0x1000, too large for AL
	regs.BX = 0x0001
	c.SetRegisters(regs)

	stepN(t, c, 1)
	final := c.Registers()
	if final.Seg[SegCS] != 0x9000 || final.IP != 0x0040 {
		t.Errorf("quotient overflow should also fault into vector 0: got CS:IP=%04X:%04X", final.Seg[SegCS], final.IP)
	}
}

func TestScenario_RepMovsbYieldsToIRQAfterOneIteration(t *testing.T) {
	c, bus := newTestCPU()
	setIVT(bus, 0x08, 0x6000, 0x0080)
	bus.load(0, 0xF3, 0xA4) // REP MOVSB

	regs := c.Registers()
	regs.CX = 0x0010
	regs.SI = 0x0200
	regs.DI = 0x0300
	regs.Flags |= FlagIF
	c.SetRegisters(regs)
	// The IRQ line is already high before the first Step(): the first
	// iteration of a freshly-latched REP must still complete, since
	// admission is only checked between iterations.
	ic := &testInterruptController{line: true, vector: 0x08}
	c.ic = ic

	res1, err := c.Step()
	if err != nil {
		t.Fatalf("first REP iteration: %v", err)
	}
	if res1.Status != StatusOkayRep {
		t.Fatalf("first iteration status: got %v, want okay-rep", res1.Status)
	}
	mid := c.Registers()
	if mid.CX != 0x000F || mid.SI != 0x0201 || mid.DI != 0x0301 {
		t.Errorf("after one iteration: got CX=%04X SI=%04X DI=%04X, want 000F/0201/0301", mid.CX, mid.SI, mid.DI)
	}
	if mid.IP != 0 {
		t.Errorf("IP should still point at the REP prefix mid-loop: got %d, want 0", mid.IP)
	}

	if _, err := c.Step(); err != nil {
		t.Fatalf("second call: %v", err)
	}
	final := c.Registers()
	if final.Seg[SegCS] != 0x6000 || final.IP != 0x0080 {
		t.Errorf("pending IRQ should be admitted in place of a second iteration: got CS:IP=%04X:%04X", final.Seg[SegCS], final.IP)
	}
	if final.CX != 0x000F {
		t.Error("the IRQ admission must not perform a second REP iteration")
	}
}

func TestScenario_MovSSInhibitsInterruptUntilMovSPRetires(t *testing.T) {
	c, bus := newTestCPU()
	setIVT(bus, 0x08, 0x6000, 0x0200)
	bus.load(0,
		0x8E, 0xD0, // MOV SS,AX
		0xBC, 0x00, 0x02, // MOV SP,0x0200
	)

	regs := c.Registers()
	regs.AX = 0x0100
	regs.Flags |= FlagIF
	c.SetRegisters(regs)
	ic := &testInterruptController{line: true, vector: 0x08}
	c.ic = ic

	stepN(t, c, 1) // MOV SS,AX
	afterMovSS := c.Registers()
	if afterMovSS.Seg[SegSS] != 0x0100 {
		t.Fatalf("SS: got 0x%04X, want 0x0100", afterMovSS.Seg[SegSS])
	}
	if afterMovSS.Seg[SegCS] != 0 {
		t.Fatal("the pending IRQ must not be admitted on MOV SS's own retirement")
	}

	stepN(t, c, 1) // MOV SP,imm16
	final := c.Registers()
	if final.Seg[SegCS] != 0x6000 || final.IP != 0x0200 {
		t.Errorf("IRQ should be admitted right after MOV SP retires: got CS:IP=%04X:%04X", final.Seg[SegCS], final.IP)
	}
}

func TestScenario_MemoryOperandReadSurvivesPrefetchContention(t *testing.T) {
	// Exercises an EU-initiated memory read (requiring RequestEUCycle to
	// arbitrate against whatever prefetch the BIU has in flight) immediately
	// out of reset, when the BIU is most likely to have a fetch scheduled.
	c, bus := newTestCPU()
	bus.mem[0x0500] = 0x77
	bus.load(0,
		0x8A, 0x06, 0x00, 0x05, // MOV AL,[0x0500]
	)

	stepN(t, c, 1)
	if c.Registers().AL() != 0x77 {
		t.Errorf("AL: got 0x%02X, want 0x77", c.Registers().AL())
	}
}
