//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"rvgo/app"
	"rvgo/guest"
	"rvgo/hal"
)

func main() {
	var hcfg hal.HeadlessConfig
	var (
		binPath  string
		fibIndex int
		dumpRegs bool
		mirror   bool
		trace    bool
		batch    int
	)
	flag.StringVar(&binPath, "bin", "", "Flat guest binary to run (default: built-in fib guest).")
	flag.IntVar(&fibIndex, "n", 10, "Fibonacci index for the built-in guest.")
	flag.BoolVar(&hcfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&hcfg.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&hcfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run until halt).")
	flag.BoolVar(&dumpRegs, "dump-regs", false, "Print the register file when the guest halts.")
	flag.BoolVar(&mirror, "mirror-serial", false, "Copy guest UART output to stdout.")
	flag.BoolVar(&trace, "trace", false, "Log every executed instruction to stderr.")
	flag.IntVar(&batch, "batch", 0, "Instructions per tick (0 = default).")
	flag.Parse()

	cfg := app.Config{
		DRAMSize:     1 << 20,
		BatchPerTick: batch,
		DumpRegs:     dumpRegs,
		MirrorSerial: mirror,
		ExitOnHalt:   hcfg.Enabled,
	}
	if trace {
		cfg.Trace = os.Stderr
	}

	if binPath != "" {
		bin, err := os.ReadFile(binPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg.Binary = bin
	} else {
		bin, err := guest.Fib(fibIndex)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg.Binary = bin
		cfg.VerifyFib = true
		cfg.FibIndex = fibIndex
	}

	newApp := func(h hal.HAL) func() error {
		return app.New(h, cfg)
	}

	if hcfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err := hal.RunHeadless(ctx, newApp, hcfg)
		if err == nil || errors.Is(err, app.ErrHalted) || errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := hal.RunWindow(newApp); err != nil && !errors.Is(err, app.ErrHalted) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
