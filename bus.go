// bus.go - four-phase bus transaction engine (T1-T4/Tw) and controller strobes
//
// Grounded on the X86Bus interface (cpu_x86.go) generalized from a flat
// Read/Write/In/Out/Tick contract into a cycle-by-cycle T-state machine,
// with the six command-line strobes and ALE/DTR/PDEN/DEN/INTA exposed for
// the validator.
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later

package cpu

// TPhase is one state of the four-phase (plus wait) bus cycle.
type TPhase int

const (
	TIdle TPhase = iota // "T-init" in table
	T1
	T2
	T3
	TWait
	T4
)

func (p TPhase) String() string {
	switch p {
	case TIdle:
		return "Tidle"
	case T1:
		return "T1"
	case T2:
		return "T2"
	case T3:
		return "T3"
	case TWait:
		return "Tw"
	case T4:
		return "T4"
	default:
		return "T?"
	}
}

// BusStatus tags what kind of transfer a bus cycle performs.
type BusStatus int

const (
	StatusPassive BusStatus = iota
	StatusCodeFetch
	StatusMemRead
	StatusMemWrite
	StatusIORead
	StatusIOWrite
	StatusInterruptAck
	StatusHalt
)

// TransferWidth distinguishes byte and word bus transfers.
type TransferWidth int

const (
	WidthByte TransferWidth = 1
	WidthWord TransferWidth = 2
)

// Strobes mirrors the bus controller command lines driven by the T-phase and
// bus status.
type Strobes struct {
	MRDC  bool // memory read command
	AMWC  bool // advanced memory write command
	MWTC  bool // memory write command
	IORC  bool // IO read command
	AIOWC bool // advanced IO write command
	IOWC  bool // IO write command
	ALE   bool // address latch enable
	DTR   bool // data transmit/receive
	PDEN  bool // peripheral data enable
	DEN   bool // data enable
	INTA  bool // interrupt acknowledge
}

// BusCycle is the tagged record describing the transaction currently in
// flight. Only one is ever in flight at a time.
type BusCycle struct {
	Status     BusStatus
	Phase      TPhase
	Segment    segIndex
	Address    uint32 // 20-bit linear address
	Data       uint16
	Width      TransferWidth
	ByteIndex  int // which byte of a multi-byte operand this phase serves
	WaitStates int
	Strobes    Strobes
}

// Bus is the external collaborator the core reads and writes through.
// Implementations model wait-state insertion by returning a nonzero count
// from the appropriate method.
type Bus interface {
	ReadByte(linear uint32) (byte, int)
	ReadWord(linear uint32) (uint16, int)
	WriteByte(linear uint32, v byte) int
	WriteWord(linear uint32, v uint16) int
	IOReadByte(port uint16) byte
	IOWriteByte(port uint16, v byte)
	GetFlags(linear uint32) byte
	SetFlags(linear uint32, mask byte)
	ClearFlags(linear uint32, mask byte)
}

// busEngine drives one bus transaction at a time through the T1-T4 (Tw)
// state machine.
type busEngine struct {
	bus     Bus
	cur     BusCycle
	active  bool
	pending bool // a cycle has been requested but not yet started (T-init -> T1 edge)

	// result of the T3 access, latched for T4's consumer (the BIU or EU).
	readResult uint16
	done       bool // true once T4 has retired the current cycle
}

func newBusEngine(b Bus) *busEngine {
	return &busEngine{bus: b, cur: BusCycle{Phase: TIdle, Status: StatusPassive}}
}

// begin starts a new bus cycle with the given shape. It must only be called
// when the engine is idle (cur.Phase == TIdle or the previous cycle retired
// to T1/passive).
func (e *busEngine) begin(status BusStatus, seg segIndex, addr uint32, width TransferWidth, writeData uint16) {
	e.cur = BusCycle{
		Status:  status,
		Phase:   TIdle,
		Segment: seg,
		Address: addr,
		Width:   width,
		Data:    writeData,
	}
	e.pending = true
	e.active = true
	e.done = false
}

// Busy reports whether a transaction is currently in flight (not passive,
// not yet retired).
func (e *busEngine) Busy() bool { return e.active && !e.done }

// AtOrPastT2 reports whether the in-flight cycle has progressed beyond the
// point the BIU's EU-priority rule allows aborting a prefetch.
func (e *busEngine) AtOrPastT2() bool {
	return e.active && e.cur.Phase != TIdle && e.cur.Phase != T1
}

func isActiveStatus(s BusStatus) bool { return s != StatusPassive }

// step advances the T-phase by exactly one. extraWait is DMA-refresh
// contention injected on top of whatever the bus target itself reports.
func (e *busEngine) step(extraWait int) {
	if !e.active {
		e.cur.Phase = TIdle
		return
	}

	switch e.cur.Phase {
	case TIdle:
		e.cur.Phase = T1
		e.cur.Strobes.ALE = true

	case T1:
		e.cur.Strobes.ALE = false
		if isActiveStatus(e.cur.Status) {
			e.cur.Phase = T2
		} else {
			// No real cycle was requested; stay parked at T1 equivalent to idle.
			e.cur.Phase = TIdle
			e.active = false
			e.done = true
		}

	case T2:
		switch e.cur.Status {
		case StatusMemRead, StatusCodeFetch:
			e.cur.Strobes.MRDC = true
		case StatusIORead:
			e.cur.Strobes.IORC = true
		case StatusMemWrite:
			e.cur.Strobes.AMWC = true
		case StatusIOWrite:
			e.cur.Strobes.AIOWC = true
		case StatusInterruptAck:
			e.cur.Strobes.INTA = true
		}
		e.cur.Phase = T3

	case T3:
		e.performTransfer()
		wait := e.cur.WaitStates + extraWait
		switch e.cur.Status {
		case StatusMemWrite:
			e.cur.Strobes.MWTC = true
			e.cur.Strobes.AMWC = false
		case StatusIOWrite:
			e.cur.Strobes.IOWC = true
			e.cur.Strobes.AIOWC = false
		}
		if wait > 0 {
			e.cur.WaitStates = wait
			e.cur.Phase = TWait
		} else {
			e.cur.Phase = T4
		}

	case TWait:
		if extraWait > 0 {
			e.cur.WaitStates += extraWait
		}
		e.cur.WaitStates--
		if e.cur.WaitStates <= 0 {
			e.cur.Phase = T4
		}

	case T4:
		e.retireStrobes()
		e.cur.Phase = T1
		e.cur.Status = StatusPassive
		e.active = false
		e.done = true
	}
}

func (e *busEngine) retireStrobes() {
	e.cur.Strobes = Strobes{}
}

// performTransfer executes the actual read/write on T3, sampling the bus
// target's wait-state count at the moment the transfer actually occurs.
func (e *busEngine) performTransfer() {
	switch e.cur.Status {
	case StatusCodeFetch, StatusMemRead:
		if e.cur.Width == WidthWord {
			v, ws := e.bus.ReadWord(e.cur.Address)
			e.cur.Data = v
			e.cur.WaitStates = ws
		} else {
			v, ws := e.bus.ReadByte(e.cur.Address)
			e.cur.Data = uint16(v)
			e.cur.WaitStates = ws
		}
		e.readResult = e.cur.Data
	case StatusMemWrite:
		if e.cur.Width == WidthWord {
			e.cur.WaitStates = e.bus.WriteWord(e.cur.Address, e.cur.Data)
		} else {
			e.cur.WaitStates = e.bus.WriteByte(e.cur.Address, byte(e.cur.Data))
		}
	case StatusIORead:
		v := e.bus.IOReadByte(uint16(e.cur.Address))
		e.cur.Data = uint16(v)
		e.readResult = e.cur.Data
		e.cur.WaitStates = 0
	case StatusIOWrite:
		e.bus.IOWriteByte(uint16(e.cur.Address), byte(e.cur.Data))
		e.cur.WaitStates = 0
	case StatusInterruptAck:
		e.cur.WaitStates = 0
	}
}
