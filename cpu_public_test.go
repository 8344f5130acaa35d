// cpu_public_test.go - exported breakpoint/watchpoint wrapper unit tests
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later

package cpu

import "testing"

func TestPublic_SetAndClearBreakpoint(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0x90, 0x90) // NOP, NOP
	lin := LinearAddress(0, 0)

	c.SetBreakpoint(lin)
	res, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if res.Status != StatusBreakpointHit {
		t.Fatalf("status: got %v, want breakpoint-hit", res.Status)
	}

	c.ClearBreakpoint(lin)
	stepN(t, c, 1)
	if c.Registers().IP != 1 {
		t.Errorf("IP: got %d, want 1 after the breakpoint is cleared", c.Registers().IP)
	}
}

func TestPublic_WatchpointIndependentOfExecuteBreakpoint(t *testing.T) {
	c, _ := newTestCPU()
	lin := LinearAddress(0, 0x0200)

	c.SetWatchpoint(lin)
	if c.CallDepth() != 0 {
		t.Fatalf("CallDepth: got %d, want 0", c.CallDepth())
	}
	c.ClearWatchpoint(lin)
}

func TestPublic_CallDepthTracksCallAndRet(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0,
		0xE8, 0x01, 0x00, // CALL near +1 (skips the NOP, lands on RET)
		0x90, // NOP (skipped)
		0xC3, // RET
	)
	regs := c.Registers()
	regs.SP = 0x0100
	c.SetRegisters(regs)

	stepN(t, c, 1) // CALL
	if c.CallDepth() != 1 {
		t.Fatalf("CallDepth after CALL: got %d, want 1", c.CallDepth())
	}
	stepN(t, c, 1) // RET
	if c.CallDepth() != 0 {
		t.Errorf("CallDepth after RET: got %d, want 0", c.CallDepth())
	}
}
