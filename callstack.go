// callstack.go - call-stack shadow and memory-flag-map breakpoints
//
// Grounded on the breakpoint map (DebugX86.breakpoints in
// debug_cpu_x86.go keyed by address with explicit Set/Clear/List accessors),
// extended here with the return-address shadow and the two flag-map bits a
// bus-resident breakpoint store needs. DebugX86's breakpoints live purely
// in debugger-side state external to CPU_X86, so CallStack's flag-map calls
// instead route through the Bus GetFlags/SetFlags/ClearFlags methods
// attached to the external bus target.
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later

package cpu

const (
	flagBitExecuteBreak = 1 << 0
	flagBitMemAccessBreak = 1 << 1
	flagBitReturnAddr   = 1 << 2
)

// CallFrameKind distinguishes the three ways a shadow entry can be pushed.
type CallFrameKind int

const (
	FrameNearCall CallFrameKind = iota
	FrameFarCall
	FrameInterrupt
)

// CallFrame is one shadow call-stack entry.
type CallFrame struct {
	Kind       CallFrameKind
	ReturnSeg  uint16
	ReturnOff  uint16
	ReturnLin  uint32
}

// CallStack is a best-effort diagnostic shadow of the real hardware stack:
// every CALL/CALLF/INT pushes an entry here and marks the return address in
// the external memory flag map; every retirement checks the new IP against
// that map and rewinds on a match. Mismatched RET/IRET patterns (tail calls,
// hand-rolled calling conventions) are tolerated, not errors.
type CallStack struct {
	frames     []CallFrame
	bus        Bus
	conditions map[uint32]string
	eval       *ConditionEvaluator
}

func newCallStack(bus Bus) *CallStack {
	return &CallStack{bus: bus}
}

func (cs *CallStack) reset() {
	for _, f := range cs.frames {
		cs.bus.ClearFlags(f.ReturnLin, flagBitReturnAddr)
	}
	cs.frames = cs.frames[:0]
	for k := range cs.conditions {
		delete(cs.conditions, k)
	}
}

// SetConditionalExecuteBreakpoint arms the execute-breakpoint bit at linear
// the same as SetExecuteBreakpoint, but additionally records a Lua boolean
// expression that gates whether a hit actually halts Step. The evaluator is
// created lazily on first use.
func (cs *CallStack) SetConditionalExecuteBreakpoint(linear uint32, expr string) {
	cs.bus.SetFlags(linear, flagBitExecuteBreak)
	if cs.conditions == nil {
		cs.conditions = make(map[uint32]string)
	}
	cs.conditions[linear] = expr
	if cs.eval == nil {
		cs.eval = NewConditionEvaluator(cs.bus)
	}
}

// ClearCondition drops any Lua predicate previously armed at linear, leaving
// the bare execute-breakpoint bit (if any) untouched.
func (cs *CallStack) ClearCondition(linear uint32) {
	delete(cs.conditions, linear)
}

// ShouldBreak reports whether an execute-breakpoint hit at linear should
// actually stop Step: true unconditionally for a bare breakpoint, or the
// Lua predicate's truthiness for a conditional one. A predicate that fails
// to evaluate is treated as true, so Step stops at the breakpoint rather
// than silently skipping past it; the evaluation error itself is dropped.
func (cs *CallStack) ShouldBreak(linear uint32, regs *Registers) bool {
	expr, ok := cs.conditions[linear]
	if !ok {
		return true
	}
	hit, err := cs.eval.Eval(expr, regs)
	if err != nil {
		return true
	}
	return hit
}

// Push records a call/interrupt entry and marks its return address.
func (cs *CallStack) Push(kind CallFrameKind, returnSeg, returnOff uint16) {
	lin := linearAddress(returnSeg, returnOff)
	cs.frames = append(cs.frames, CallFrame{Kind: kind, ReturnSeg: returnSeg, ReturnOff: returnOff, ReturnLin: lin})
	cs.bus.SetFlags(lin, flagBitReturnAddr)
}

// CheckRetirement consults the flag at the instruction's new linear address;
// if the return bit is set, the shadow rewinds to (and including) the
// matching entry, clearing bits for every popped frame.
func (cs *CallStack) CheckRetirement(newLinear uint32) {
	if cs.bus.GetFlags(newLinear)&flagBitReturnAddr == 0 {
		return
	}
	for i := len(cs.frames) - 1; i >= 0; i-- {
		f := cs.frames[i]
		cs.bus.ClearFlags(f.ReturnLin, flagBitReturnAddr)
		if f.ReturnLin == newLinear {
			cs.frames = cs.frames[:i]
			return
		}
	}
	// No matching frame: tolerate it, the flag bit is already cleared.
}

// Depth reports how many shadow frames remain, for debuggers/tests.
func (cs *CallStack) Depth() int { return len(cs.frames) }

// SetExecuteBreakpoint / ClearExecuteBreakpoint manage the execute-breakpoint
// bit at a linear address.
func (cs *CallStack) SetExecuteBreakpoint(linear uint32)   { cs.bus.SetFlags(linear, flagBitExecuteBreak) }
func (cs *CallStack) ClearExecuteBreakpoint(linear uint32) { cs.bus.ClearFlags(linear, flagBitExecuteBreak) }

// SetMemAccessBreakpoint / ClearMemAccessBreakpoint manage the
// memory-access-breakpoint bit.
func (cs *CallStack) SetMemAccessBreakpoint(linear uint32) {
	cs.bus.SetFlags(linear, flagBitMemAccessBreak)
}
func (cs *CallStack) ClearMemAccessBreakpoint(linear uint32) {
	cs.bus.ClearFlags(linear, flagBitMemAccessBreak)
}

// ExecuteBreakpointHit reports whether the execute-breakpoint bit is set at
// linear; the EU checks this before decoding each instruction.
func (cs *CallStack) ExecuteBreakpointHit(linear uint32) bool {
	return cs.bus.GetFlags(linear)&flagBitExecuteBreak != 0
}

// MemAccessBreakpointHit reports whether the memory-access-breakpoint bit is
// set at linear; the EU checks this on every operand read/write.
func (cs *CallStack) MemAccessBreakpointHit(linear uint32) bool {
	return cs.bus.GetFlags(linear)&flagBitMemAccessBreak != 0
}
