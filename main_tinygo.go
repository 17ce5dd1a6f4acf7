//go:build tinygo

package main

import (
	"rvgo/app"
	"rvgo/guest"
	"rvgo/hal"
)

func main() {
	h := hal.New()

	bin, err := guest.Fib(10)
	if err != nil {
		h.Logger().WriteLineString(err.Error())
		return
	}

	cfg := app.Config{
		Binary:       bin,
		DRAMSize:     1 << 16,
		BatchPerTick: 5_000,
		MirrorSerial: true,
		VerifyFib:    true,
		FibIndex:     10,
	}

	if disp, err := hal.InitDisplay(); err == nil {
		cfg.Display = disp
	}

	if err := app.Run(h, cfg); err != nil {
		h.Logger().WriteLineString(err.Error())
	}
	select {}
}
