// Package tpiu configures the Trace Port Interface Unit, the component that
// pushes ITM (and ETM) data onto the physical trace pins.
//
// Reference: ARMv7-M Architecture Reference Manual, chapter C1.10.
package tpiu

import (
	"cmtrace/internal/coredebug"
	"cmtrace/reg"
)

// Protocol selects the physical trace transport.
type Protocol uint8

const (
	// ProtocolParallel is the 1-4 bit parallel trace port. Highest
	// bandwidth; needs a trace-capable probe.
	ProtocolParallel Protocol = 0

	// ProtocolSwoManchester is Manchester-encoded SWO on a single pin.
	// Receivers detect the data rate automatically.
	ProtocolSwoManchester Protocol = 1

	// ProtocolSwoUART is NRZ (UART) encoded SWO on a single pin. The
	// receiver baudrate must match TraceClock/SwoPrescaler.
	ProtocolSwoUART Protocol = 2
)

// Options describes the requested TPIU configuration.
//
// No field is validated: not every protocol or port width exists on every
// MCU, and out-of-range values produce whatever the hardware does with
// them. Checking capabilities is the caller's job.
type Options struct {
	// Protocol selects the trace transport.
	Protocol Protocol

	// FormattingEnabled wraps output in TPIU frames carrying the trace
	// bus ID of each source. Required when more than one source (e.g.
	// ITM and ETM) shares the port; receivers must be told either way.
	FormattingEnabled bool

	// SwoPrescaler divides the trace clock to produce the SWO bit rate.
	SwoPrescaler int

	// TracePortWidth is the number of parallel trace data lines.
	TracePortWidth uint8
}

// TPIU register addresses.
const (
	regCSPSR uint32 = 0xE0040004 // Current Parallel Port Size
	regACPR  uint32 = 0xE0040010 // Asynchronous Clock Prescaler
	regSPPR  uint32 = 0xE00400F0 // Selected Pin Protocol
	regFFCR  uint32 = 0xE0040304 // Formatter and Flush Control
)

// ffcrEnFCont enables continuous formatting in FFCR.
const ffcrEnFCont uint32 = 1 << 1

// TPIU is a configurator handle bound to a register bank.
type TPIU struct {
	bank reg.Bank
}

// New creates a TPIU configurator operating on the given register bank.
func New(bank reg.Bank) *TPIU {
	return &TPIU{bank: bank}
}

// Configure applies opts. Every call fully overwrites the prescaler,
// protocol and port-width registers; the formatting bit is set or cleared
// by read-modify-write so the remaining FFCR bits are preserved.
func (t *TPIU) Configure(opts Options) {
	coredebug.EnableTrace(t.bank)

	t.bank.Write32(regACPR, uint32(opts.SwoPrescaler-1))
	t.bank.Write32(regSPPR, uint32(opts.Protocol))
	t.bank.Write32(regCSPSR, uint32(1)<<(opts.TracePortWidth-1))

	ffcr := t.bank.Read32(regFFCR)
	if opts.FormattingEnabled {
		ffcr |= ffcrEnFCont
	} else {
		ffcr &^= ffcrEnFCont
	}
	t.bank.Write32(regFFCR, ffcr)
}
