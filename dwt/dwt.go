// Package dwt configures the Data Watchpoint and Trace unit: PC sampling,
// event counters, exception trace and watchpoint comparators.
//
// The DWT emits no data on its own transport; its packets go to the ITM,
// which must be configured with DWT forwarding enabled for any of this
// output to reach the trace stream.
//
// Reference: ARMv7-M Architecture Reference Manual, chapter C1.8.
package dwt

import (
	"cmtrace/internal/coredebug"
	"cmtrace/reg"
)

// SyncTap selects which cycle counter bit paces ITM synchronization
// packets.
type SyncTap uint8

const (
	SyncTapDisabled SyncTap = 0
	SyncTap24       SyncTap = 1 // CYCCNT[24], processor clock / 16M
	SyncTap26       SyncTap = 2 // CYCCNT[26], processor clock / 64M
	SyncTap28       SyncTap = 3 // CYCCNT[28], processor clock / 256M
)

// CycleTap selects which cycle counter bit clocks the POSTCNT timer pacing
// PC sample and event counter packets.
type CycleTap uint8

const (
	CycleTap6  CycleTap = 0 // CYCCNT[6], processor clock / 64
	CycleTap10 CycleTap = 1 // CYCCNT[10], processor clock / 1024
)

// Comparator function codes from ARMv7-M table C1-14. The watchpoint group
// halts or notifies the debugger; the remaining (trace-emitting) codes vary
// with DWT_CTRL capability bits, consult the manual before use.
const (
	FuncDisabled        uint8 = 0x0
	FuncWatchpointPC    uint8 = 0x4 // debug event on instruction fetch match
	FuncWatchpointRead  uint8 = 0x5
	FuncWatchpointWrite uint8 = 0x6
	FuncWatchpointRW    uint8 = 0x7
)

// NumComparators is the number of comparator slots this package can
// address. Implementations may provide fewer; DWT_CTRL[31:28] reports the
// actual count and writes to absent slots are ignored by the hardware.
const NumComparators = 4

// Options describes the requested DWT configuration.
//
// No field is validated; capabilities vary per MCU and checking them is the
// caller's job.
type Options struct {
	// FoldedInstructionCounterEvent emits an event packet on folded
	// instruction counter overflow.
	FoldedInstructionCounterEvent bool

	// LSUCounterEvent emits an event packet on load/store counter
	// overflow.
	LSUCounterEvent bool

	// SleepCounterEvent emits an event packet on sleep counter overflow.
	SleepCounterEvent bool

	// ExceptionOverheadCounterEvent emits an event packet on exception
	// overhead counter overflow.
	ExceptionOverheadCounterEvent bool

	// CPICounterEvent emits an event packet on cycles-per-instruction
	// counter overflow.
	CPICounterEvent bool

	// ExceptionTrace emits a packet on each exception entry and exit.
	ExceptionTrace bool

	// PCSampling periodically emits the current program counter, paced
	// by CycleTap and SamplingPrescaler.
	PCSampling bool

	// SyncTap paces ITM synchronization and timestamp packets.
	SyncTap SyncTap

	// CycleTap clocks the POSTCNT timer behind PC sampling and event
	// counters.
	CycleTap CycleTap

	// SamplingPrescaler further divides the POSTCNT clock. Range 1-16;
	// the hardware field holds the value minus one.
	SamplingPrescaler uint8
}

// DWT register addresses. Comparator slots are addressed through an
// explicit table: the COMP/MASK/FUNCTION layout is not guaranteed uniformly
// strided on every implementation family, so no offsets are computed.
const (
	regCTRL uint32 = 0xE0001000
	regLAR  uint32 = 0xE0001FB0
)

type compRegs struct {
	comp     uint32
	mask     uint32
	function uint32
}

var comparators = [NumComparators]compRegs{
	{comp: 0xE0001020, mask: 0xE0001024, function: 0xE0001028},
	{comp: 0xE0001030, mask: 0xE0001034, function: 0xE0001038},
	{comp: 0xE0001040, mask: 0xE0001044, function: 0xE0001048},
	{comp: 0xE0001050, mask: 0xE0001054, function: 0xE0001058},
}

// CTRL bit assignments.
const (
	ctrlCycCntEna     uint32 = 1 << 0
	ctrlPostPresetPos        = 1
	ctrlCycTapPos            = 9
	ctrlSyncTapPos           = 10
	ctrlPCSampleEna   uint32 = 1 << 12
	ctrlExcTrcEna     uint32 = 1 << 16
	ctrlCPIEvtEna     uint32 = 1 << 17
	ctrlExcEvtEna     uint32 = 1 << 18
	ctrlSleepEvtEna   uint32 = 1 << 19
	ctrlLSUEvtEna     uint32 = 1 << 20
	ctrlFoldEvtEna    uint32 = 1 << 21
)

// FUNCTION bit assignments.
const (
	funcFunctionMask uint32 = 0xF
	funcEmitRange    uint32 = 1 << 5
)

// DWT is a configurator handle bound to a register bank.
type DWT struct {
	bank reg.Bank
}

// New creates a DWT configurator operating on the given register bank.
func New(bank reg.Bank) *DWT {
	return &DWT{bank: bank}
}

// Configure applies opts: asserts the shared trace enable, unlocks the
// unit, assembles the control word in one pure OR pass (the cycle counter
// enable is always included) and writes it once. Every call fully
// overwrites the prior control state.
func (d *DWT) Configure(opts Options) {
	coredebug.EnableTrace(d.bank)
	d.bank.Write32(regLAR, coredebug.UnlockKey)

	ctrl := uint32(0)
	if opts.FoldedInstructionCounterEvent {
		ctrl |= ctrlFoldEvtEna
	}
	if opts.LSUCounterEvent {
		ctrl |= ctrlLSUEvtEna
	}
	if opts.SleepCounterEvent {
		ctrl |= ctrlSleepEvtEna
	}
	if opts.ExceptionOverheadCounterEvent {
		ctrl |= ctrlExcEvtEna
	}
	if opts.CPICounterEvent {
		ctrl |= ctrlCPIEvtEna
	}
	if opts.ExceptionTrace {
		ctrl |= ctrlExcTrcEna
	}
	if opts.PCSampling {
		ctrl |= ctrlPCSampleEna
	}
	ctrl |= (uint32(opts.SyncTap) & 3) << ctrlSyncTapPos
	ctrl |= (uint32(opts.CycleTap) & 3) << ctrlCycTapPos
	ctrl |= uint32(opts.SamplingPrescaler-1) << ctrlPostPresetPos
	ctrl |= ctrlCycCntEna

	d.bank.Write32(regCTRL, ctrl)
}

// EnableComparator arms comparator slot index to watch the power-of-two
// range defined by address and ignoreBits (the count of low address bits to
// ignore). emitRange selects the packet payload: the matched data address
// (true) or the program counter that caused the access (false). function is
// a raw ARMv7-M comparator function code.
//
// Indices at or beyond NumComparators are a silent no-op.
func (d *DWT) EnableComparator(index uint8, address uint32, ignoreBits uint8, emitRange bool, function uint8) {
	if int(index) >= len(comparators) {
		return
	}
	fn := uint32(function) & funcFunctionMask
	if emitRange {
		fn |= funcEmitRange
	}

	c := comparators[index]
	d.bank.Write32(c.comp, address)
	d.bank.Write32(c.mask, uint32(ignoreBits))
	d.bank.Write32(c.function, fn)
}

// DisableComparator disarms comparator slot index by clearing only its
// function register. The address and mask registers keep their last values:
// re-enabling without respecifying the address reuses the stale one.
//
// Indices at or beyond NumComparators are a silent no-op.
func (d *DWT) DisableComparator(index uint8) {
	if int(index) >= len(comparators) {
		return
	}
	d.bank.Write32(comparators[index].function, 0)
}
