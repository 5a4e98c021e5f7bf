// Package itm configures the Instrumentation Trace Macrocell and writes
// user data through its stimulus ports.
//
// The ITM arbitrates two packet sources onto the trace stream: software
// writes to up to 32 numbered stimulus ports, and forwarded DWT hardware
// packets. It is the only trace component with a runtime write operation.
//
// Reference: ARMv7-M Architecture Reference Manual, chapter C1.7.
package itm

import (
	"encoding/binary"

	"cmtrace/internal/coredebug"
	"cmtrace/reg"
)

// GlobalTimestampFrequency selects how often global (absolute) timestamp
// packets are generated.
type GlobalTimestampFrequency uint8

const (
	GTSFreqDisabled    GlobalTimestampFrequency = 0
	GTSFreqPosition7   GlobalTimestampFrequency = 1 // on change of timestamp bit [7]
	GTSFreqPosition13  GlobalTimestampFrequency = 2 // on change of timestamp bit [13]
	GTSFreqOutputEmpty GlobalTimestampFrequency = 3 // only when the output FIFO is empty
)

// LocalTimestampPrescaler selects the divider for the local (delta)
// timestamp counter.
type LocalTimestampPrescaler uint8

const (
	LTSPrescaleNone  LocalTimestampPrescaler = 0
	LTSPrescaleDiv4  LocalTimestampPrescaler = 1
	LTSPrescaleDiv10 LocalTimestampPrescaler = 2
	LTSPrescaleDiv64 LocalTimestampPrescaler = 3
)

// EnablePortsAll enables all 32 stimulus ports when used as
// Options.EnabledStimulusPorts. Ports not implemented on a given MCU stay
// disabled regardless of their mask bit.
const EnablePortsAll uint32 = 0xFFFFFFFF

// Options describes the requested ITM configuration.
//
// No field is validated; capabilities vary per MCU and checking them is the
// caller's job.
type Options struct {
	// TraceBusID distinguishes ITM packets from other sources (e.g. ETM)
	// when TPIU formatting is enabled. 7-bit field.
	TraceBusID uint8

	// GlobalTimestampFrequency configures absolute timestamp packets.
	GlobalTimestampFrequency GlobalTimestampFrequency

	// LocalTimestampPrescaler divides the local timestamp clock.
	LocalTimestampPrescaler LocalTimestampPrescaler

	// EnableLocalTimestamp generates delta timestamp packets.
	EnableLocalTimestamp bool

	// ForwardDWT passes DWT hardware packets (PC samples, watchpoints,
	// counter events) through to the trace stream. Leave false if the
	// only use is stimulus port output.
	ForwardDWT bool

	// EnableSyncPacket emits periodic synchronization packets the
	// receiver can lock onto. Pacing comes from the DWT sync tap.
	EnableSyncPacket bool

	// EnabledStimulusPorts enables stimulus ports bitwise: bit N set
	// means port N accepts writes.
	EnabledStimulusPorts uint32
}

// ITM register addresses. Stimulus port n sits at itmBase + 4n and aliases
// byte, halfword and word access widths.
const (
	itmBase uint32 = 0xE0000000
	regTER  uint32 = itmBase + 0xE00 // Trace Enable (stimulus port mask)
	regTCR  uint32 = itmBase + 0xE80 // Trace Control
	regLAR  uint32 = itmBase + 0xFB0 // Lock Access
)

// TCR bit assignments.
const (
	tcrITMEna        uint32 = 1 << 0
	tcrTSEna         uint32 = 1 << 1
	tcrSyncEna       uint32 = 1 << 2
	tcrTXEna         uint32 = 1 << 3 // DWT packet forwarding
	tcrTSPrescalePos        = 8
	tcrGTSFreqPos           = 10
	tcrTraceBusIDPos        = 16
)

// ITM is a configurator and stimulus port writer bound to a register bank.
type ITM struct {
	bank reg.Bank
	wait WaitFunc
}

// New creates an ITM handle operating on the given register bank. Port
// writes block without bound on a full FIFO; see SetWaitStrategy.
func New(bank reg.Bank) *ITM {
	return &ITM{bank: bank, wait: SpinForever}
}

// SetWaitStrategy replaces the FIFO-ready wait used by the write
// operations. The default, SpinForever, matches the hardware contract.
func (i *ITM) SetWaitStrategy(wait WaitFunc) {
	if wait == nil {
		wait = SpinForever
	}
	i.wait = wait
}

// Configure applies opts: asserts the shared trace enable, unlocks the
// unit, assembles the control word in one pure OR pass and writes it, then
// writes the stimulus port mask verbatim. Every call fully overwrites the
// prior control and port-enable state.
func (i *ITM) Configure(opts Options) {
	coredebug.EnableTrace(i.bank)
	i.bank.Write32(regLAR, coredebug.UnlockKey)

	tcr := uint32(0)
	tcr |= uint32(opts.TraceBusID) << tcrTraceBusIDPos
	tcr |= uint32(opts.GlobalTimestampFrequency) << tcrGTSFreqPos
	tcr |= uint32(opts.LocalTimestampPrescaler) << tcrTSPrescalePos
	if opts.ForwardDWT {
		tcr |= tcrTXEna
	}
	if opts.EnableSyncPacket {
		tcr |= tcrSyncEna
	}
	if opts.EnableLocalTimestamp {
		tcr |= tcrTSEna
	}
	tcr |= tcrITMEna

	i.bank.Write32(regTCR, tcr)
	i.bank.Write32(regTER, opts.EnabledStimulusPorts)
}

// IsPortEnabled reports whether a write to port would be accepted: the
// unit's global enable and the port's mask bit must both be set. Both bits
// are read fresh on every call since concurrent reconfiguration can clear
// them at any time.
func (i *ITM) IsPortEnabled(port uint8) bool {
	return i.bank.Read32(regTCR)&tcrITMEna != 0 &&
		i.bank.Read32(regTER)&(uint32(1)<<port) != 0
}

// Write8 writes a byte to a stimulus port. Disabled port: silently
// discarded. Enabled port: blocks until the port FIFO accepts data, then
// stores; with the default wait strategy the block is unbounded.
func (i *ITM) Write8(port uint8, value uint8) {
	if !i.IsPortEnabled(port) {
		return
	}
	i.emit8(stimAddr(port), value)
}

// Write16 writes a halfword to a stimulus port. Same contract as Write8.
func (i *ITM) Write16(port uint8, value uint16) {
	if !i.IsPortEnabled(port) {
		return
	}
	i.emit16(stimAddr(port), value)
}

// Write32 writes a word to a stimulus port. Same contract as Write8.
func (i *ITM) Write32(port uint8, value uint32) {
	if !i.IsPortEnabled(port) {
		return
	}
	i.emit32(stimAddr(port), value)
}

// WriteBuffer writes buf to a stimulus port using the largest packet size
// the remaining length allows: words while 4 or more bytes remain, then
// halfwords, then a final byte. Packing never assumes buf is aligned.
// Enablement is checked once, on entry; a disabled port discards the whole
// buffer silently.
func (i *ITM) WriteBuffer(port uint8, buf []byte) {
	if !i.IsPortEnabled(port) {
		return
	}
	addr := stimAddr(port)

	for len(buf) >= 4 {
		i.emit32(addr, binary.LittleEndian.Uint32(buf))
		buf = buf[4:]
	}
	for len(buf) >= 2 {
		i.emit16(addr, binary.LittleEndian.Uint16(buf))
		buf = buf[2:]
	}
	if len(buf) > 0 {
		i.emit8(addr, buf[0])
	}
}

func stimAddr(port uint8) uint32 {
	return itmBase + 4*uint32(port)
}

// fifoReady reads the port's 32-bit view, which is non-zero while the FIFO
// can accept another write. Enablement is deliberately not re-checked here:
// a port disabled mid-spin keeps the writer waiting on the status bit, as
// the hardware contract has it.
func (i *ITM) fifoReady(addr uint32) func() bool {
	return func() bool {
		return i.bank.Read32(addr) != 0
	}
}

func (i *ITM) emit8(addr uint32, value uint8) {
	if !i.wait(i.fifoReady(addr)) {
		return
	}
	i.bank.Write8(addr, value)
}

func (i *ITM) emit16(addr uint32, value uint16) {
	if !i.wait(i.fifoReady(addr)) {
		return
	}
	i.bank.Write16(addr, value)
}

func (i *ITM) emit32(addr uint32, value uint32) {
	if !i.wait(i.fifoReady(addr)) {
		return
	}
	i.bank.Write32(addr, value)
}
