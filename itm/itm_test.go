package itm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"cmtrace/internal/coredebug"
	"cmtrace/reg"
)

var _ = Describe("ITM", func() {
	var (
		bank *reg.SimBank
		unit *ITM
	)

	BeforeEach(func() {
		bank = reg.NewSimBank()
		unit = New(bank)
	})

	// enablePort configures the unit with the given port mask and marks
	// every stimulus FIFO as ready, then clears the write log so specs
	// see only the writes they trigger.
	enablePort := func(mask uint32, readyPorts ...uint8) {
		unit.Configure(Options{EnabledStimulusPorts: mask})
		for _, p := range readyPorts {
			bank.Poke(stimAddr(p), 1)
		}
		bank.ResetLog()
	}

	stimWrites := func(port uint8) []reg.Access {
		var out []reg.Access
		for _, a := range bank.Writes() {
			if a.Addr == stimAddr(port) {
				out = append(out, a)
			}
		}
		return out
	}

	Describe("Configure", func() {
		It("unlocks the unit before touching the control register", func() {
			unit.Configure(Options{})

			writes := bank.Writes()
			Expect(writes).To(HaveLen(4))
			Expect(writes[0].Addr).To(Equal(coredebug.DEMCR))
			Expect(writes[1]).To(Equal(reg.Access{Addr: regLAR, Value: coredebug.UnlockKey, Width: reg.Width32}))
			Expect(writes[2].Addr).To(Equal(regTCR))
			Expect(writes[3].Addr).To(Equal(regTER))
		})

		It("always sets the unit enable bit", func() {
			unit.Configure(Options{})
			Expect(bank.Peek(regTCR) & tcrITMEna).NotTo(BeZero())
		})

		DescribeTable("maps each flag to exactly its control bit",
			func(opts Options, want uint32) {
				unit.Configure(opts)
				Expect(bank.Peek(regTCR)).To(Equal(want | tcrITMEna))
			},
			Entry("no flags", Options{}, uint32(0)),
			Entry("local timestamps", Options{EnableLocalTimestamp: true}, tcrTSEna),
			Entry("sync packets", Options{EnableSyncPacket: true}, tcrSyncEna),
			Entry("DWT forwarding", Options{ForwardDWT: true}, tcrTXEna),
			Entry("all flags", Options{EnableLocalTimestamp: true, EnableSyncPacket: true, ForwardDWT: true},
				tcrTSEna|tcrSyncEna|tcrTXEna),
		)

		It("encodes the multi-bit fields at their positions", func() {
			unit.Configure(Options{
				TraceBusID:               0x2A,
				GlobalTimestampFrequency: GTSFreqPosition13,
				LocalTimestampPrescaler:  LTSPrescaleDiv64,
			})

			tcr := bank.Peek(regTCR)
			Expect((tcr >> tcrTraceBusIDPos) & 0x7F).To(Equal(uint32(0x2A)))
			Expect((tcr >> tcrGTSFreqPos) & 0x3).To(Equal(uint32(GTSFreqPosition13)))
			Expect((tcr >> tcrTSPrescalePos) & 0x3).To(Equal(uint32(LTSPrescaleDiv64)))
		})

		It("writes the stimulus port mask verbatim, not merged", func() {
			unit.Configure(Options{EnabledStimulusPorts: 0xF0F0F0F0})
			unit.Configure(Options{EnabledStimulusPorts: 0x00000021})
			Expect(bank.Peek(regTER)).To(Equal(uint32(0x00000021)))
		})

		It("fully overwrites the control word on reconfigure", func() {
			unit.Configure(Options{TraceBusID: 0x11, ForwardDWT: true, EnableSyncPacket: true})
			unit.Configure(Options{})
			Expect(bank.Peek(regTCR)).To(Equal(tcrITMEna))
		})
	})

	Describe("IsPortEnabled", func() {
		It("requires both the unit enable and the port mask bit", func() {
			unit.Configure(Options{EnabledStimulusPorts: 1 << 5})

			Expect(unit.IsPortEnabled(5)).To(BeTrue())
			Expect(unit.IsPortEnabled(4)).To(BeFalse())

			bank.Poke(regTCR, 0) // unit disabled out from under us
			Expect(unit.IsPortEnabled(5)).To(BeFalse())
		})

		It("is a pure function of the mask across all 32 ports", func() {
			const mask = uint32(0xA5C3170F)
			unit.Configure(Options{EnabledStimulusPorts: mask})

			for port := uint8(0); port < 32; port++ {
				Expect(unit.IsPortEnabled(port)).To(Equal(mask&(1<<port) != 0),
					"port %d", port)
			}
		})

		It("reports ports beyond 31 as disabled", func() {
			unit.Configure(Options{EnabledStimulusPorts: EnablePortsAll})
			Expect(unit.IsPortEnabled(32)).To(BeFalse())
			Expect(unit.IsPortEnabled(255)).To(BeFalse())
		})
	})

	Describe("scalar writes", func() {
		It("silently discards writes to a disabled port", func() {
			enablePort(0, 5) // FIFO ready but port not enabled

			unit.Write8(5, 'X')
			unit.Write16(5, 0x1234)
			unit.Write32(5, 0xCAFEBABE)

			Expect(bank.Writes()).To(BeEmpty())
		})

		It("stores through the access width matching the call", func() {
			enablePort(1<<3, 3)

			unit.Write8(3, 0xAB)
			unit.Write16(3, 0x1234)
			unit.Write32(3, 0xCAFEBABE)

			Expect(stimWrites(3)).To(Equal([]reg.Access{
				{Addr: stimAddr(3), Value: 0xAB, Width: reg.Width8},
				{Addr: stimAddr(3), Value: 0x1234, Width: reg.Width16},
				{Addr: stimAddr(3), Value: 0xCAFEBABE, Width: reg.Width32},
			}))
		})

		It("spins on the FIFO status until it reads non-zero", func() {
			unit.Configure(Options{EnabledStimulusPorts: 1 << 0})

			polls := 0
			bank.OnRead(stimAddr(0), func() uint32 {
				polls++
				if polls < 4 {
					return 0 // FIFO full
				}
				return 1
			})

			unit.Write32(0, 42)

			Expect(polls).To(Equal(4))
			Expect(stimWrites(0)).To(HaveLen(1))
		})

		It("drops the write when a bounded wait strategy gives up", func() {
			unit.Configure(Options{EnabledStimulusPorts: 1 << 0})
			bank.ResetLog()
			bank.OnRead(stimAddr(0), func() uint32 { return 0 }) // never drained

			unit.SetWaitStrategy(PollLimit(8))
			unit.Write8(0, 'X')

			Expect(bank.Writes()).To(BeEmpty())
		})
	})

	Describe("WriteBuffer", func() {
		It("packs a 7-byte buffer as word, halfword, byte", func() {
			enablePort(1<<2, 2)

			unit.WriteBuffer(2, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07})

			Expect(stimWrites(2)).To(Equal([]reg.Access{
				{Addr: stimAddr(2), Value: 0x04030201, Width: reg.Width32},
				{Addr: stimAddr(2), Value: 0x0605, Width: reg.Width16},
				{Addr: stimAddr(2), Value: 0x07, Width: reg.Width8},
			}))
		})

		It("preserves byte order across chunk boundaries", func() {
			enablePort(1<<0, 0)

			input := []byte("stimulus!")
			unit.WriteBuffer(0, input)

			var rebuilt []byte
			for _, a := range stimWrites(0) {
				for i := reg.Width(0); i < a.Width; i += 8 {
					rebuilt = append(rebuilt, byte(a.Value>>i))
				}
			}
			Expect(rebuilt).To(Equal(input))
		})

		It("emits halfword then byte for a 3-byte buffer", func() {
			enablePort(1<<0, 0)

			unit.WriteBuffer(0, []byte{0xAA, 0xBB, 0xCC})

			Expect(stimWrites(0)).To(Equal([]reg.Access{
				{Addr: stimAddr(0), Value: 0xBBAA, Width: reg.Width16},
				{Addr: stimAddr(0), Value: 0xCC, Width: reg.Width8},
			}))
		})

		It("writes nothing for an empty buffer", func() {
			enablePort(1<<0, 0)
			unit.WriteBuffer(0, nil)
			Expect(bank.Writes()).To(BeEmpty())
		})

		It("silently discards the whole buffer on a disabled port", func() {
			enablePort(1<<0, 5)
			unit.WriteBuffer(5, []byte{1, 2, 3, 4})
			Expect(bank.Writes()).To(BeEmpty())
		})
	})
})
