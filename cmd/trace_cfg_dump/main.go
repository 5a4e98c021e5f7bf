// trace_cfg_dump runs the three trace configurators against a simulated
// register bank and prints the exact register write sequence a target would
// see. Useful for reviewing a configuration before flashing it.
package main

import (
	"flag"
	"fmt"
	"os"

	"cmtrace/dwt"
	"cmtrace/itm"
	"cmtrace/reg"
	"cmtrace/tpiu"
)

func main() {
	protocol := flag.String("protocol", "uart", "TPIU protocol: parallel, manchester or uart")
	formatting := flag.Bool("formatting", false, "Enable TPIU frame formatting")
	prescaler := flag.Int("prescaler", 1, "SWO output prescaler")
	width := flag.Uint("width", 1, "Parallel trace port width in bits")
	busID := flag.Uint("bus-id", 1, "ITM trace bus ID")
	ports := flag.Uint64("ports", uint64(itm.EnablePortsAll), "Stimulus port enable mask")
	forwardDWT := flag.Bool("forward-dwt", false, "Forward DWT packets through ITM")
	pcSampling := flag.Bool("pc-sampling", false, "Enable DWT PC sampling")
	verbose := flag.Bool("v", false, "Log every simulated register access")

	flag.Parse()

	protocols := map[string]tpiu.Protocol{
		"parallel":   tpiu.ProtocolParallel,
		"manchester": tpiu.ProtocolSwoManchester,
		"uart":       tpiu.ProtocolSwoUART,
	}
	proto, ok := protocols[*protocol]
	if !ok {
		fmt.Printf("Trace Config Dump : Error: unknown protocol %q\n", *protocol)
		os.Exit(1)
	}

	bank := reg.NewSimBank()
	if *verbose {
		bank.SetLogger(reg.NewStdLogger(reg.SeverityDebug))
	}

	tpiu.New(bank).Configure(tpiu.Options{
		Protocol:          proto,
		FormattingEnabled: *formatting,
		SwoPrescaler:      *prescaler,
		TracePortWidth:    uint8(*width),
	})

	itm.New(bank).Configure(itm.Options{
		TraceBusID:           uint8(*busID),
		ForwardDWT:           *forwardDWT,
		EnableSyncPacket:     *forwardDWT,
		EnabledStimulusPorts: uint32(*ports),
	})

	dwt.New(bank).Configure(dwt.Options{
		PCSampling:        *pcSampling,
		SyncTap:           dwt.SyncTap24,
		CycleTap:          dwt.CycleTap10,
		SamplingPrescaler: 1,
	})

	fmt.Println("Register write sequence:")
	for _, access := range bank.Writes() {
		fmt.Printf("  %s\n", access)
	}
}
