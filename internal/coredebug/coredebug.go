// Package coredebug holds the Core Debug facts shared by all three trace
// configurators: the DEMCR trace-enable latch and the CoreSight
// lock-access key.
//
// Reference: ARMv7-M Architecture Reference Manual, C1.6 Debug system
// registers.
package coredebug

import "cmtrace/reg"

const (
	// DEMCR is the Debug Exception and Monitor Control Register.
	DEMCR uint32 = 0xE000EDFC

	// TRCENA gates the whole trace system; DWT, ITM and TPIU registers
	// ignore writes while it is clear.
	TRCENA uint32 = 1 << 24

	// UnlockKey, written to a unit's Lock Access Register, allows
	// subsequent writes to that unit's registers.
	UnlockKey uint32 = 0xC5ACCE55
)

// EnableTrace asserts DEMCR.TRCENA, preserving the other DEMCR bits.
// Idempotent; every configurator asserts it so the three setup calls can
// run in any order.
func EnableTrace(b reg.Bank) {
	b.Write32(DEMCR, b.Read32(DEMCR)|TRCENA)
}
