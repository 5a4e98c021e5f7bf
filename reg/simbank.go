package reg

import "fmt"

// Access records a single write observed by a SimBank.
type Access struct {
	Addr  uint32
	Value uint32
	Width Width
}

// SimBank is a software-simulated register bank. Registers read back what
// was last written unless a read hook overrides the address; every write is
// appended to an ordered log so tests and tools can assert on the exact
// sequence of register accesses a configuration produced.
type SimBank struct {
	mem       map[uint32]uint32
	readHooks map[uint32]func() uint32
	writes    []Access
	logger    Logger
}

// NewSimBank creates an empty simulated bank. All registers read as zero
// until written or hooked.
func NewSimBank() *SimBank {
	return &SimBank{
		mem:       make(map[uint32]uint32),
		readHooks: make(map[uint32]func() uint32),
		logger:    NewNoOpLogger(),
	}
}

// SetLogger attaches a logger; each subsequent access is reported at Debug.
func (b *SimBank) SetLogger(l Logger) {
	if l == nil {
		l = NewNoOpLogger()
	}
	b.logger = l
}

// OnRead overrides reads of addr with fn. Used to model hardware status
// bits that change independently of software writes, such as a stimulus
// port FIFO draining.
func (b *SimBank) OnRead(addr uint32, fn func() uint32) {
	b.readHooks[addr] = fn
}

// Poke sets a register value directly, bypassing the write log. Used to
// seed pre-existing hardware state (e.g. reset values, bits owned by other
// units) before exercising a configurator.
func (b *SimBank) Poke(addr uint32, value uint32) {
	b.mem[addr] = value
}

// Peek reads a register value directly, bypassing read hooks.
func (b *SimBank) Peek(addr uint32) uint32 {
	return b.mem[addr]
}

// Writes returns the ordered write log.
func (b *SimBank) Writes() []Access {
	return b.writes
}

// ResetLog clears the write log but keeps register contents and hooks.
func (b *SimBank) ResetLog() {
	b.writes = nil
}

func (b *SimBank) Read32(addr uint32) uint32 {
	var v uint32
	if fn, ok := b.readHooks[addr]; ok {
		v = fn()
	} else {
		v = b.mem[addr]
	}
	b.logger.Logf(SeverityDebug, "rd32 [0x%08X] -> 0x%08X", addr, v)
	return v
}

func (b *SimBank) Write32(addr uint32, value uint32) {
	b.record(addr, value, Width32)
	b.mem[addr] = value
}

func (b *SimBank) Write16(addr uint32, value uint16) {
	b.record(addr, uint32(value), Width16)
	b.mem[addr] = uint32(value)
}

func (b *SimBank) Write8(addr uint32, value uint8) {
	b.record(addr, uint32(value), Width8)
	b.mem[addr] = uint32(value)
}

func (b *SimBank) record(addr uint32, value uint32, w Width) {
	b.writes = append(b.writes, Access{Addr: addr, Value: value, Width: w})
	b.logger.Logf(SeverityDebug, "wr%-2d [0x%08X] <- 0x%08X", w, addr, value)
}

// String formats an access the way the cmd tools print the write log.
func (a Access) String() string {
	return fmt.Sprintf("wr%-2d [0x%08X] <- 0x%08X", a.Width, a.Addr, a.Value)
}
