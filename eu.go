// eu.go - EU orchestrator: decode/dispatch, REP loop, finalize, halt
//
// Grounded on the per-opcode dispatch table built over CPU_X86's step loop
// (cpu_x86.go / cpu_x86_ops.go), restructured around a result-variant
// contract (okay / okay-jump / okay-rep / unsupported-opcode /
// execution-error / halt / exception) instead of the plain "return error"
// step function cpu_x86.go uses.
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later

package cpu

// stallingSource adapts the BIU's queue into a ByteSource that blocks
// (by driving Cycle) instead of failing when the queue is momentarily
// empty; decode must never outrun the BIU's own fetch progress.
type stallingSource struct {
	c     *CPU
	spins int
}

// maxStallSpins bounds how many cycles decode will wait for a byte before
// giving up and surfacing a decode failure; a real fetch always arrives
// within a handful of cycles, so hitting this is itself an invariant
// violation (e.g. the BIU wedged on a malformed bus target).
const maxStallSpins = 10000

func (s *stallingSource) PopOpcodeByte() (byte, bool) {
	for {
		if b, ok := s.c.biu.PopOpcodeByte(); ok {
			return b, true
		}
		if s.spins >= maxStallSpins {
			return 0, false
		}
		s.spins++
		s.c.Cycle()
	}
}

// opHandler executes one decoded instruction (or one REP iteration of a
// string instruction) and reports the result variant.
type opHandler func(c *CPU, dec *Decoded) (StepStatus, *CPUError)

var opTable = map[byte]opHandler{}
var opInfo = map[byte]OpInfo{}

func register(opcode byte, info OpInfo, h opHandler) {
	opInfo[opcode] = info
	opTable[opcode] = h
}

func lookupOpInfo(opcode byte) OpInfo { return opInfo[opcode] }

// Step decodes and executes exactly one instruction (or one REP iteration),
// returning a StepResult. Fatal conditions are returned as a *CPUError,
// matching the standard Go error-return convention the rest of the module
// uses. A memory-access breakpoint tripped by this step is folded into the
// returned status here, since the hit can only be known once the
// instruction's operand accesses have actually run.
func (c *CPU) Step() (StepResult, error) {
	c.watchHit = false
	res, err := c.step()
	if err == nil && c.watchHit {
		switch res.Status {
		case StatusOkay, StatusOkayJump, StatusOkayRep:
			res.Status = StatusWatchpointHit
			res.WatchLinear = c.watchLinear
		}
	}
	return res, err
}

func (c *CPU) step() (StepResult, error) {
	if !c.IsRunning {
		return StepResult{}, c.LastError
	}

	startLinear := linear(c.regs.Seg[SegCS], c.regs.IP)

	if c.callStack.ExecuteBreakpointHit(startLinear) && c.callStack.ShouldBreak(startLinear, &c.regs) {
		return StepResult{Status: StatusBreakpointHit}, nil
	}

	if c.repActive {
		return c.stepRepIteration()
	}

	src := &stallingSource{c: c}
	dec, err := Decode(src, &c.regs, startLinear, lookupOpInfo)
	if err != nil {
		de, _ := err.(*DecodeError)
		linear := startLinear
		reason := err.Error()
		if de != nil {
			linear = de.Linear
			reason = de.Reason
		}
		return c.fail(newCPUError(ErrDecodeFailure, linear, reason))
	}

	c.hasSegOverride = dec.Prefixes.HasSegOverride
	c.segOverride = dec.Prefixes.SegOverride

	c.validator.begin(c.regs)

	if dec.Prefixes.Rep || dec.Prefixes.RepNE {
		if !isStringOpcode(dec.Opcode) {
			return c.fail(newCPUError(ErrUnsupportedOpcode, startLinear, "REP prefix on non-string opcode"))
		}
		c.repActive = true
		c.repDecoded = dec
		c.repLinear = startLinear
		c.repStartIP = c.regs.IP
		c.repIterDone = false
		if c.regs.CX == 0 {
			c.repActive = false
			c.regs.IP += uint16(len(dec.Bytes))
			return c.finishInstruction(dec, startLinear, StatusOkay)
		}
		return c.stepRepIteration()
	}

	handler, ok := opTable[dec.Opcode]
	if !ok {
		return c.fail(newCPUError(ErrUnsupportedOpcode, startLinear, "no executor for opcode"))
	}

	status, ferr := handler(c, dec)
	if ferr != nil {
		return c.fail(ferr)
	}

	switch status {
	case StatusOkay:
		c.regs.IP += uint16(len(dec.Bytes))
	case StatusHalted:
		return c.finishInstruction(dec, startLinear, StatusHalted)
	}

	return c.finishInstruction(dec, startLinear, status)
}

// stepRepIteration runs exactly one iteration of the latched REP-prefixed
// string instruction, or admits a pending interrupt in its place when one is
// due. The first iteration of a freshly-latched REP always runs regardless
// of a pending interrupt: real hardware only samples for interrupt entry
// between iterations, never before the first one has had a chance to run.
func (c *CPU) stepRepIteration() (StepResult, error) {
	dec := c.repDecoded

	if c.repIterDone && c.istate.admitted(&c.regs) && c.ic != nil && c.ic.QueryInterruptLine() {
		if vector, ok := c.ic.GetInterruptVector(); ok {
			c.repActive = false
			c.istate.consumeInhibit()
			c.enterVector(vector, c.regs.IP)
			return StepResult{Status: StatusOkay}, nil
		}
	}

	handler := opTable[dec.Opcode]
	if handler == nil {
		return c.fail(newCPUError(ErrUnsupportedOpcode, c.repLinear, "no executor for REP string opcode"))
	}

	c.hasSegOverride = dec.Prefixes.HasSegOverride
	c.segOverride = dec.Prefixes.SegOverride

	_, ferr := handler(c, dec)
	if ferr != nil {
		return c.fail(ferr)
	}
	c.regs.CX--
	c.repIterDone = true

	done := c.regs.CX == 0
	if !done && isRepConditional(dec.Opcode) {
		wantZF := dec.Prefixes.Rep // REPE/REPZ wants ZF=1 to continue; REPNE/REPNZ wants ZF=0
		if c.regs.GetFlag(FlagZF) != wantZF {
			done = true
		}
	}

	if done {
		c.repActive = false
		c.regs.IP = c.repStartIP + uint16(len(dec.Bytes))
		return c.finishInstruction(dec, c.repLinear, StatusOkay)
	}

	return StepResult{Status: StatusOkayRep}, nil
}

func isStringOpcode(op byte) bool {
	switch op {
	case 0xA4, 0xA5, 0xA6, 0xA7, 0xAA, 0xAB, 0xAC, 0xAD, 0xAE, 0xAF:
		return true
	}
	return false
}

// isRepConditional reports whether the string opcode's REP loop also checks
// ZF (CMPS/SCAS), as opposed to looping purely on CX (MOVS/STOS/LODS).
func isRepConditional(op byte) bool {
	switch op {
	case 0xA6, 0xA7, 0xAE, 0xAF:
		return true
	}
	return false
}

// finishInstruction runs the shared retirement path: call-stack shadow
// check, history, validator finish, finalize-to-next-opcode-preload, and
// between-instruction interrupt admission.
func (c *CPU) finishInstruction(dec *Decoded, startLinear uint32, status StepStatus) (StepResult, error) {
	newLinear := linear(c.regs.Seg[SegCS], c.regs.IP)
	c.callStack.CheckRetirement(newLinear)

	c.recordHistory(HistoryEntry{Linear: startLinear, Bytes: dec.Bytes, Post: c.regs})

	if err := c.validator.finish(mnemonicFor(dec), dec.Bytes, dec.HasModRM, c.regs.Flags, c.regs); err != nil {
		return c.fail(newCPUError(ErrValidatorMismatch, newLinear, err.Error()))
	}

	if c.trace != nil {
		c.trace.Instruction(startLinear, dec.Bytes, mnemonicFor(dec))
	}

	c.finalizePreload()

	if status == StatusHalted {
		if !c.regs.GetFlag(FlagIF) {
			return c.fail(newCPUError(ErrHaltNoInterrupts, newLinear, "HLT with IF=0"))
		}
		return StepResult{Status: StatusHalted}, nil
	}

	if status != StatusOkayRep {
		c.checkInterrupt()
	}

	return StepResult{Status: status}, nil
}

// finalizePreload drives cycles until the next opcode byte is present in
// the queue, then marks it preloaded so cycle traces attribute the first
// fetch to the next instruction.
func (c *CPU) finalizePreload() {
	spins := 0
	for c.biu.QueueLen() == 0 && spins < maxStallSpins {
		c.Cycle()
		spins++
	}
	if c.biu.QueueLen() > 0 {
		c.biu.queue.MarkPreloaded()
	}
}

// mnemonicFor is a minimal disassembly label for the trace/validator; it is
// not a full disassembler, just enough to identify the retired opcode.
func mnemonicFor(dec *Decoded) string {
	if name, ok := mnemonicTable[dec.Opcode]; ok {
		return name
	}
	return "???"
}
