// stim_port_demo pushes a message through a simulated ITM stimulus port and
// prints the resulting packet chunking. The simulated FIFO reads busy for a
// configurable number of polls before each write to show the handshake.
package main

import (
	"flag"
	"fmt"
	"os"

	"cmtrace/itm"
	"cmtrace/reg"
)

func main() {
	port := flag.Uint("port", 0, "Stimulus port number (0-31)")
	text := flag.String("text", "Hello trace", "Payload to write")
	busyPolls := flag.Int("busy-polls", 2, "FIFO reads that report busy before each write")
	pollLimit := flag.Int("poll-limit", 0, "Give up after N polls (0 = spin forever)")

	flag.Parse()

	if *port > 31 {
		fmt.Printf("Stimulus Port Demo : Error: port %d out of range\n", *port)
		os.Exit(1)
	}

	bank := reg.NewSimBank()
	unit := itm.New(bank)
	if *pollLimit > 0 {
		unit.SetWaitStrategy(itm.PollLimit(*pollLimit))
	}

	unit.Configure(itm.Options{
		TraceBusID:           1,
		EnableLocalTimestamp: true,
		EnabledStimulusPorts: itm.EnablePortsAll,
	})
	configWrites := len(bank.Writes())

	// Model a FIFO that drains after busyPolls reads.
	stim := uint32(0xE0000000) + 4*uint32(*port)
	remaining := *busyPolls
	bank.OnRead(stim, func() uint32 {
		if remaining > 0 {
			remaining--
			return 0
		}
		remaining = *busyPolls
		return 1
	})

	unit.WriteBuffer(uint8(*port), []byte(*text))

	chunks := bank.Writes()[configWrites:]
	fmt.Printf("Wrote %d bytes as %d stimulus packets:\n", len(*text), len(chunks))
	for _, access := range chunks {
		fmt.Printf("  %s\n", access)
	}
	if len(chunks) == 0 {
		fmt.Println("  (nothing written - port disabled or wait strategy gave up)")
	}
}
