// condition.go - Lua-scripted execute-breakpoint conditions
//
// debug_conditions.go parses a tiny fixed grammar ("r1==$FF",
// "[$1000]==$42", "hitcount>10") by hand. A call-stack shadow breakpoint
// here instead needs arbitrary boolean expressions over the register file
// and memory, and go.mod already pulls in github.com/yuin/gopher-lua for
// exactly that without anything importing it yet; this module is where
// that dependency finally gets exercised, swapping the hand-rolled
// comparison grammar for a one-line Lua expression evaluated against the
// live CPU state.
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later

package cpu

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ConditionEvaluator compiles and runs Lua boolean expressions such as
// "ax == 0x1234 and cx > 0" or "mem(0x1000) == 0x42" against a snapshot of
// CPU state, used by execute breakpoints that need more than a bare address
// match. Watchpoints take no condition.
type ConditionEvaluator struct {
	state *lua.LState
	bus   Bus
}

// NewConditionEvaluator creates an evaluator bound to bus for mem() lookups.
// Each evaluator owns its own Lua state; callers that need many concurrent
// conditions should create one evaluator per condition rather than share.
func NewConditionEvaluator(bus Bus) *ConditionEvaluator {
	return &ConditionEvaluator{state: lua.NewState(), bus: bus}
}

// Close releases the underlying Lua state.
func (ce *ConditionEvaluator) Close() {
	ce.state.Close()
}

func (ce *ConditionEvaluator) bindRegisters(regs *Registers) {
	L := ce.state
	set := func(name string, v uint16) { L.SetGlobal(name, lua.LNumber(v)) }
	set("ax", regs.AX)
	set("bx", regs.BX)
	set("cx", regs.CX)
	set("dx", regs.DX)
	set("sp", regs.SP)
	set("bp", regs.BP)
	set("si", regs.SI)
	set("di", regs.DI)
	set("ip", regs.IP)
	set("es", regs.Seg[SegES])
	set("cs", regs.Seg[SegCS])
	set("ss", regs.Seg[SegSS])
	set("ds", regs.Seg[SegDS])
	set("flags", regs.Flags)
	L.SetGlobal("al", lua.LNumber(regs.AL()))
	L.SetGlobal("ah", lua.LNumber(regs.AH()))
	L.SetGlobal("cf", lua.LBool(regs.GetFlag(FlagCF)))
	L.SetGlobal("zf", lua.LBool(regs.GetFlag(FlagZF)))
	L.SetGlobal("sf", lua.LBool(regs.GetFlag(FlagSF)))
	L.SetGlobal("of", lua.LBool(regs.GetFlag(FlagOF)))
	L.SetGlobal("mem", L.NewFunction(ce.luaMem))
}

func (ce *ConditionEvaluator) luaMem(L *lua.LState) int {
	addr := uint32(L.CheckNumber(1))
	v, _ := ce.bus.ReadByte(addr)
	L.Push(lua.LNumber(v))
	return 1
}

// Eval compiles expr afresh on every call and runs it against the given register
// snapshot, returning its truthiness. A non-boolean result is coerced: any
// non-nil, non-false value is true, matching Lua's own truthiness rule.
func (ce *ConditionEvaluator) Eval(expr string, regs *Registers) (bool, error) {
	ce.bindRegisters(regs)
	fn, err := ce.state.LoadString("return (" + expr + ")")
	if err != nil {
		return false, fmt.Errorf("condition %q: %w", expr, err)
	}
	ce.state.Push(fn)
	if err := ce.state.PCall(0, 1, nil); err != nil {
		return false, fmt.Errorf("condition %q: %w", expr, err)
	}
	ret := ce.state.Get(-1)
	ce.state.Pop(1)
	return lua.LVAsBool(ret), nil
}
