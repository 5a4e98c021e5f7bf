package reg

import "unsafe"

// MMIO is the hardware-backed Bank: every access is a direct load or store
// against the private peripheral bus address given. It carries no state of
// its own.
//
// The Go compiler does not provide volatile semantics; on a bare-metal
// target (TinyGo and similar) the runtime treats stores through unsafe
// pointers to device memory as side-effecting. Do not use MMIO on a hosted
// OS - the PPB addresses are not mapped there.
type MMIO struct{}

func (MMIO) Read32(addr uint32) uint32 {
	return *(*uint32)(unsafe.Pointer(uintptr(addr)))
}

func (MMIO) Write32(addr uint32, value uint32) {
	*(*uint32)(unsafe.Pointer(uintptr(addr))) = value
}

func (MMIO) Write16(addr uint32, value uint16) {
	*(*uint16)(unsafe.Pointer(uintptr(addr))) = value
}

func (MMIO) Write8(addr uint32, value uint8) {
	*(*uint8)(unsafe.Pointer(uintptr(addr))) = value
}
