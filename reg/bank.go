// Package reg provides the register-bank capability through which the trace
// components reach the memory-mapped Core Debug, DWT, ITM and TPIU registers.
//
// The configurators never touch fixed global symbols; they operate on a Bank
// handle supplied at construction. On target hardware this is an MMIO bank;
// in tests and tools it is a SimBank that records every access.
package reg

// Width of a single register access in bits.
type Width uint8

const (
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
)

// Bank is a window onto a set of memory-mapped 32-bit registers.
//
// The sub-word stores exist because ITM stimulus ports alias the same
// address at byte, halfword and word access width, and the access width is
// part of the wire protocol (it selects the stimulus packet payload size).
// Reads are always full-width: the only register the library polls is a
// stimulus port's 32-bit FIFO status view.
type Bank interface {
	Read32(addr uint32) uint32
	Write32(addr uint32, value uint32)
	Write16(addr uint32, value uint16)
	Write8(addr uint32, value uint8)
}
