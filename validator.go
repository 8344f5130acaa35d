// validator.go - per-instruction conformance validator hook
//
// Grounded on the Tom Harte SingleStepTests conformance harness already
// wired into cpu_x86_harte_test.go (pre-state, bytes, post-state, per-cycle
// records compared against a reference JSON fixture), generalized from a
// test-only one-shot comparison into an always-available hook any caller
// can attach: begin() snapshots pre-state, validate() is handed everything
// the caller needs to diff against a reference model.
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later

package cpu

// CycleRecord is one entry in the ordered per-cycle sequence a validated
// instruction produces.
type CycleRecord struct {
	Phase     TPhase
	Status    BusStatus
	Address   uint32
	Data      uint16
	Strobes   Strobes
	QueueOp   QueueOp
	QueueLen  int
}

// QueueOp tags what, if anything, happened to the prefetch queue this cycle.
type QueueOp int

const (
	QueueOpIdle QueueOp = iota
	QueueOpFirstByte
	QueueOpSubsequent
	QueueOpFlush
)

// Validator compares a retired instruction's behavior against a reference
// model. Implementations might replay a Tom Harte fixture, talk to real
// hardware over a bus-sniffing rig, or drive a trusted second simulator.
type Validator interface {
	Begin(regs Registers)
	Validate(asm string, bytes []byte, hasModRM bool, flags uint16, post Registers, cycles []CycleRecord) error
}

// validatorSession holds the pre-state and the per-cycle record list for the
// instruction currently retiring, handed to the configured Validator at
// finalize time. Nothing in the core calls record, so the cycle list that
// Validate receives is always empty.
type validatorSession struct {
	v       Validator
	pre     Registers
	cycles  []CycleRecord
	active  bool
}

func newValidatorSession(v Validator) *validatorSession {
	return &validatorSession{v: v}
}

func (vs *validatorSession) begin(regs Registers) {
	if vs.v == nil {
		return
	}
	vs.pre = regs
	vs.cycles = vs.cycles[:0]
	vs.active = true
	vs.v.Begin(regs)
}

func (vs *validatorSession) record(r CycleRecord) {
	if vs.v == nil || !vs.active {
		return
	}
	vs.cycles = append(vs.cycles, r)
}

func (vs *validatorSession) finish(asm string, bytes []byte, hasModRM bool, flags uint16, post Registers) error {
	if vs.v == nil || !vs.active {
		return nil
	}
	vs.active = false
	return vs.v.Validate(asm, bytes, hasModRM, flags, post, vs.cycles)
}
