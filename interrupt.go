// interrupt.go - software/hardware interrupt and exception entry
//
// CPU_X86 has no interrupt controller collaborator at all (it runs as one
// chip among many in a larger system and defers interrupt delivery to a
// different subsystem entirely), so this module's entry sequence is built
// from scratch for the IVT-vectored 8088/8086 model; the push/pop stack
// plumbing it calls into is the same push16/pop16 pattern cpu_x86.go uses.
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later

package cpu

// InterruptController is the external collaborator queried between
// instructions.
type InterruptController interface {
	QueryInterruptLine() bool
	GetInterruptVector() (vector byte, ok bool)
}

const (
	vectorDivideError  = 0x00
	vectorIntoOverflow = 0x04
	vectorServiceCall  = 0xFC
)

// interruptState tracks the one-shot inhibit latch set by SS-modifying
// instructions.
type interruptState struct {
	inhibitNext bool // set by MOV SS and POP SS; clears after the following instruction
}

// admitted reports whether a pending interrupt may be taken right now: IF=1
// and the inhibit latch (from the *previous* instruction) is clear.
func (is *interruptState) admitted(regs *Registers) bool {
	return regs.GetFlag(FlagIF) && !is.inhibitNext
}

// armInhibit is called by SS-modifying instructions on retirement.
func (is *interruptState) armInhibit() { is.inhibitNext = true }

// consumeInhibit is called once per instruction boundary, after the
// admission check, clearing the one-shot latch.
func (is *interruptState) consumeInhibit() { is.inhibitNext = false }

// enterVector performs the common entry sequence shared by hardware IRQs,
// software INT, and CPU exceptions: push flags, clear IF/TF, push CS:IP,
// load CS:IP from the IVT, flush the prefetch queue. faultIP is the IP
// pushed as the return address: the *next* instruction's IP for INT/IRQ,
// the *current* (faulting) instruction's IP for exceptions.
func (c *CPU) enterVector(vector byte, faultIP uint16) {
	c.push16(c.regs.Flags)
	c.regs.SetFlagState(FlagIF, false)
	c.regs.SetFlagState(FlagTF, false)

	c.push16(c.regs.Seg[SegCS])
	c.push16(faultIP)

	c.callStack.Push(FrameInterrupt, c.regs.Seg[SegCS], faultIP)

	ivtAddr := uint32(vector) * 4
	ipLo, _ := c.bus.ReadByte(ivtAddr)
	ipHi, _ := c.bus.ReadByte(ivtAddr + 1)
	csLo, _ := c.bus.ReadByte(ivtAddr + 2)
	csHi, _ := c.bus.ReadByte(ivtAddr + 3)

	newIP := uint16(ipLo) | uint16(ipHi)<<8
	newCS := uint16(csLo) | uint16(csHi)<<8

	if vector == vectorServiceCall && c.serviceCallRequested {
		c.handleServiceCall()
		return
	}

	c.regs.Seg[SegCS] = newCS
	c.regs.IP = newIP
	c.biu.Flush(SegCS, newCS, newIP)
}

// handleServiceCall implements the reserved INT 0xFC/AH=1 entry: transfer
// to BX:CX, reset DS/ES/SS to the new CS, SP=FFFE, raise a breakpoint and an
// internal service event.
func (c *CPU) handleServiceCall() {
	newCS := c.regs.BX
	newIP := c.regs.CX

	c.regs.Seg[SegDS] = newCS
	c.regs.Seg[SegES] = newCS
	c.regs.Seg[SegSS] = newCS
	c.regs.SP = 0xFFFE
	c.regs.Seg[SegCS] = newCS
	c.regs.IP = newIP

	c.biu.Flush(SegCS, newCS, newIP)
	c.serviceCallRequested = false
	c.serviceCallPending = true
	c.callStack.SetExecuteBreakpoint(linearAddress(newCS, newIP))
}

// checkInterrupt is called at an instruction boundary (stepRepIteration makes
// its own check between REP iterations). It returns true if an interrupt was
// admitted and entered this boundary.
func (c *CPU) checkInterrupt() bool {
	admitted := c.istate.admitted(&c.regs)
	c.istate.consumeInhibit()
	if !admitted || c.ic == nil {
		return false
	}
	if !c.ic.QueryInterruptLine() {
		return false
	}
	vector, ok := c.ic.GetInterruptVector()
	if !ok {
		return false
	}
	c.enterVector(vector, c.regs.IP)
	return true
}

// raiseException enters the shared path for a CPU-internal fault, pushing
// the *current* (faulting) IP rather than the next one.
func (c *CPU) raiseException(vector byte, faultIP uint16) {
	c.enterVector(vector, faultIP)
}
