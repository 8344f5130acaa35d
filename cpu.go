// cpu.go - top-level CPU: wiring, reset, cycle/step entry points
//
// Grounded on the CPU_X86 struct (cpu_x86.go), which owns the
// register file, bus handle, and per-instruction dispatch in one place;
// generalized here into a BIU/EU split, with cpu_x86.go's single
// bus.Read/Write calls replaced by the T-phase bus engine and prefetch
// queue.
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later

package cpu

// CPU is the complete 8088/8086 core: register file, ALU, prefetch queue,
// bus engine, BIU, DRAM-refresh simulator, decoder, EU, interrupt/call-stack
// shadow state, and the optional validator/trace/history collaborators.
type CPU struct {
	regs Registers

	bus Bus
	be  *busEngine
	biu *BIU
	ref *refreshController

	ic        InterruptController
	istate    interruptState
	callStack *CallStack

	validator *validatorSession
	trace     *TraceSink
	history   []HistoryEntry

	config Config

	segOverride    segIndex
	hasSegOverride bool

	repActive   bool
	repDecoded  *Decoded
	repLinear   uint32
	repStartIP  uint16
	repIterDone bool // false until the freshly-latched REP has run its first iteration

	serviceCallRequested bool
	serviceCallPending   bool

	watchHit    bool
	watchLinear uint32

	IsRunning bool
	IsError   bool
	LastError error
}

// HistoryEntry is one entry in the optional last-32-retired-instructions
// ring buffer.
type HistoryEntry struct {
	Linear uint32
	Bytes  []byte
	Post   Registers
}

const historyCapacity = 32

// New constructs a CPU bound to bus (the external memory/IO/flag-map
// collaborator) and ic (the interrupt controller, which may be nil if the
// caller never intends to deliver hardware interrupts).
func New(bus Bus, ic InterruptController, cfg Config) *CPU {
	be := newBusEngine(bus)
	c := &CPU{
		bus:       bus,
		be:        be,
		biu:       NewBIU(be, cfg.queueCapacity()),
		ref:       newRefreshController(cfg.Refresh),
		ic:        ic,
		callStack: newCallStack(bus),
		validator: newValidatorSession(nil),
		config:    cfg,
	}
	c.Reset()
	return c
}

// SetValidator attaches or detaches (pass nil) the optional conformance
// validator.
func (c *CPU) SetValidator(v Validator) { c.validator = newValidatorSession(v) }

// SetTrace attaches the trace sink.
func (c *CPU) SetTrace(t *TraceSink) { c.trace = t }

// Registers returns a copy of the current register file.
func (c *CPU) Registers() Registers { return c.regs }

// SetRegisters overwrites the register file wholesale (used by test
// harnesses and the Harte fixture runner to establish a pre-state) and
// repoints the prefetcher at the new CS:IP, discarding any queued bytes.
func (c *CPU) SetRegisters(r Registers) {
	c.regs = r
	c.biu.Flush(SegCS, r.Seg[SegCS], r.IP)
}

// Reset reinitializes every piece of architectural and micro-architectural
// state to the power-on condition.
func (c *CPU) Reset() {
	rv := c.config.ResetVector
	c.regs.Reset(rv.Segment, rv.Offset)
	c.be.cur = BusCycle{Phase: TIdle, Status: StatusPassive}
	c.be.active = false
	c.be.done = true
	c.biu.Reset(SegCS, rv.Segment, rv.Offset)
	c.ref.reset()
	c.callStack.reset()
	c.istate = interruptState{}
	c.segOverride = SegDS
	c.hasSegOverride = false
	c.repActive = false
	c.repIterDone = false
	c.serviceCallRequested = false
	c.serviceCallPending = false
	c.history = c.history[:0]
	c.IsRunning = true
	c.IsError = false
	c.LastError = nil
}

// Cycle advances the core by exactly one clock: the refresh controller, the
// BIU/prefetcher, and the bus engine if an EU-initiated transaction is in
// flight. This is the primitive the outer host drives; Step is a convenience
// built on top of it plus synchronous EU execution for a whole instruction.
func (c *CPU) Cycle() {
	extraWait, _ := c.ref.Tick()
	c.biu.Cycle(extraWait)
	if c.trace != nil {
		c.trace.Cycle(c.be.cur)
	}
}

// linear returns the 20-bit physical address for seg:off.
func linear(seg, off uint16) uint32 { return linearAddress(seg, off) }

// effectiveSegment resolves which segment register governs a decoded
// memory operand, honoring any prefix override.
func (c *CPU) effectiveSegment(defaultSeg segIndex) segIndex {
	if c.hasSegOverride {
		return c.segOverride
	}
	return defaultSeg
}

// readMem8 and writeMem8 each perform one EU-initiated bus cycle (readMem16
// and writeMem16 run two of them in turn), yielding to any in-flight
// prefetch that's already past T1 and driving the bus engine to completion.
// Each T-phase goes to the trace sink when one is attached; no per-cycle
// record is passed to the validator.
// noteWatch flags a memory-access breakpoint hit at lin for the current
// Step call. Step folds it into the returned StepResult once the
// instruction's accesses have finished; noteWatch itself never aborts the
// access in progress, matching how a real in-circuit emulator's watchpoint
// latches after the cycle that tripped it.
func (c *CPU) noteWatch(lin uint32) {
	if c.callStack.MemAccessBreakpointHit(lin) {
		c.watchHit = true
		c.watchLinear = lin
	}
}

func (c *CPU) readMem8(seg segIndex, off uint16) byte {
	lin := linear(c.regs.Seg[seg], off)
	c.noteWatch(lin)
	for !c.biu.RequestEUCycle() {
		c.Cycle()
	}
	extraWait, _ := c.ref.Tick()
	c.be.begin(StatusMemRead, seg, lin, WidthByte, 0)
	for !c.be.done {
		c.be.step(extraWait)
		extraWait = 0
		if c.trace != nil {
			c.trace.Cycle(c.be.cur)
		}
	}
	c.biu.ReleaseEUCycle()
	return byte(c.be.readResult)
}

func (c *CPU) readMem16(seg segIndex, off uint16) uint16 {
	lo := c.readMem8(seg, off)
	hi := c.readMem8(seg, off+1)
	return uint16(lo) | uint16(hi)<<8
}

func (c *CPU) writeMem8(seg segIndex, off uint16, v byte) {
	lin := linear(c.regs.Seg[seg], off)
	c.noteWatch(lin)
	for !c.biu.RequestEUCycle() {
		c.Cycle()
	}
	extraWait, _ := c.ref.Tick()
	c.be.begin(StatusMemWrite, seg, lin, WidthByte, uint16(v))
	for !c.be.done {
		c.be.step(extraWait)
		extraWait = 0
		if c.trace != nil {
			c.trace.Cycle(c.be.cur)
		}
	}
	c.biu.ReleaseEUCycle()
}

func (c *CPU) writeMem16(seg segIndex, off uint16, v uint16) {
	c.writeMem8(seg, off, byte(v))
	c.writeMem8(seg, off+1, byte(v>>8))
}

func (c *CPU) ioRead8(port uint16) byte {
	for !c.biu.RequestEUCycle() {
		c.Cycle()
	}
	c.be.begin(StatusIORead, SegDS, uint32(port), WidthByte, 0)
	for !c.be.done {
		c.be.step(0)
	}
	c.biu.ReleaseEUCycle()
	return byte(c.be.readResult)
}

func (c *CPU) ioWrite8(port uint16, v byte) {
	for !c.biu.RequestEUCycle() {
		c.Cycle()
	}
	c.be.begin(StatusIOWrite, SegDS, uint32(port), WidthByte, uint16(v))
	for !c.be.done {
		c.be.step(0)
	}
	c.biu.ReleaseEUCycle()
}

// push16/pop16 implement the stack operand conventions shared by PUSH/POP,
// CALL, INT and interrupt/exception entry.
func (c *CPU) push16(v uint16) {
	c.regs.SP -= 2
	c.writeMem16(SegSS, c.regs.SP, v)
}

func (c *CPU) pop16() uint16 {
	v := c.readMem16(SegSS, c.regs.SP)
	c.regs.SP += 2
	return v
}

// recordHistory appends a retired instruction to the ring buffer when
// instruction-history-on is configured.
func (c *CPU) recordHistory(e HistoryEntry) {
	if !c.config.InstructionHistoryOn {
		return
	}
	c.history = append(c.history, e)
	if len(c.history) > historyCapacity {
		c.history = c.history[len(c.history)-historyCapacity:]
	}
}

// History returns the retained ring buffer, oldest first.
func (c *CPU) History() []HistoryEntry { return c.history }

// LinearAddress exposes the segment:offset-to-20-bit-physical formula
// to external consumers such as the terminal monitor, which
// need to turn a breakpoint address typed at the prompt into the linear
// address the call-stack shadow's flag map is keyed by.
func LinearAddress(seg, off uint16) uint32 { return linearAddress(seg, off) }

// SetBreakpoint arms an unconditional execute breakpoint at linear.
func (c *CPU) SetBreakpoint(linear uint32) { c.callStack.SetExecuteBreakpoint(linear) }

// SetConditionalBreakpoint arms an execute breakpoint at linear that only
// halts Step when the Lua expression evaluates true.
func (c *CPU) SetConditionalBreakpoint(linear uint32, expr string) {
	c.callStack.SetConditionalExecuteBreakpoint(linear, expr)
}

// ClearBreakpoint disarms any execute breakpoint (conditional or not) at
// linear.
func (c *CPU) ClearBreakpoint(linear uint32) {
	c.callStack.ClearExecuteBreakpoint(linear)
	c.callStack.ClearCondition(linear)
}

// SetWatchpoint arms a memory-access breakpoint at linear.
func (c *CPU) SetWatchpoint(linear uint32) { c.callStack.SetMemAccessBreakpoint(linear) }

// ClearWatchpoint disarms a memory-access breakpoint at linear.
func (c *CPU) ClearWatchpoint(linear uint32) { c.callStack.ClearMemAccessBreakpoint(linear) }

// CallDepth reports how many shadow call-stack frames are outstanding.
func (c *CPU) CallDepth() int { return c.callStack.Depth() }

// fail latches a fatal error and stops the core.
func (c *CPU) fail(err *CPUError) (StepResult, error) {
	c.IsError = true
	c.IsRunning = false
	c.LastError = err
	if c.trace != nil {
		c.trace.Flush()
	}
	return StepResult{}, err
}
