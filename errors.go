// errors.go - step-result variants and the fatal-error taxonomy
//
// Grounded on the plain sentinel-error style in cpu_x86.go
// (errors.New-wrapped failures bubbled straight out of Step), generalized
// into an ordered recoverable/fatal taxonomy a cycle-stepped core needs:
// architectural faults (divide error, breakpoint hit) are outcomes Step
// reports through its result value, while only a genuine host-side failure
// bubbles up as an error.
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later

package cpu

import "fmt"

// StepStatus is the outcome variant Step reports in its StepResult. Fatal
// conditions come back as Step's error instead; Okay/OkayJump/OkayRep are
// not errors at all.
type StepStatus int

const (
	StatusOkay StepStatus = iota
	StatusOkayJump
	StatusOkayRep
	StatusBreakpointHit
	StatusWatchpointHit
	StatusHalted
)

func (s StepStatus) String() string {
	switch s {
	case StatusOkay:
		return "okay"
	case StatusOkayJump:
		return "okay-jump"
	case StatusOkayRep:
		return "okay-rep"
	case StatusBreakpointHit:
		return "breakpoint-hit"
	case StatusWatchpointHit:
		return "watchpoint-hit"
	case StatusHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// StepResult bundles the status with the EU-level bookkeeping the caller
// needs (the address that tripped a watchpoint).
type StepResult struct {
	Status StepStatus

	// WatchLinear is the linear address that tripped a memory-access
	// breakpoint when Status is StatusWatchpointHit.
	WatchLinear uint32
}

// CPUErrorKind orders the fatal taxonomy from most to least recoverable,
// matching (breakpoint-hit and CPU exceptions are not part of
// this list: the former is a StepStatus, the latter is absorbed into an
// interrupt entry and never reaches the caller as an error).
type CPUErrorKind int

const (
	ErrDecodeFailure CPUErrorKind = iota
	ErrUnsupportedOpcode
	ErrExecution
	ErrHaltNoInterrupts
	ErrValidatorMismatch
)

func (k CPUErrorKind) String() string {
	switch k {
	case ErrDecodeFailure:
		return "decode failure"
	case ErrUnsupportedOpcode:
		return "unsupported opcode"
	case ErrExecution:
		return "execution error"
	case ErrHaltNoInterrupts:
		return "halt with interrupts disabled"
	case ErrValidatorMismatch:
		return "validator mismatch"
	default:
		return "unknown error"
	}
}

// CPUError is the sealed fatal-error type Step returns. Once returned,
// IsError and !IsRunning are both latched on the owning CPU.
type CPUError struct {
	Kind   CPUErrorKind
	Linear uint32
	Detail string
}

func (e *CPUError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s at %05X", e.Kind, e.Linear)
	}
	return fmt.Sprintf("%s at %05X: %s", e.Kind, e.Linear, e.Detail)
}

func newCPUError(kind CPUErrorKind, linear uint32, detail string) *CPUError {
	return &CPUError{Kind: kind, Linear: linear, Detail: detail}
}
