// Package app glues the machine to a HAL: it feeds keyboard input into the
// guest UART, steps the CPU, and renders UART output on the console.
package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"tinygo.org/x/tinyterm"

	"rvgo/console"
	"rvgo/emu"
	"rvgo/fib"
	"rvgo/hal"
)

// ErrHalted reports that the guest executed its halt instruction. Runners
// that should exit once the guest is done treat it as success.
var ErrHalted = errors.New("app: guest halted")

type Config struct {
	// Binary is the flat guest image loaded at the DRAM base.
	Binary []byte

	// DRAMSize overrides the default guest memory size when positive.
	DRAMSize int

	// BatchPerTick caps instructions executed per UI tick (default 50000).
	BatchPerTick int

	// ExitOnHalt stops the runner when the guest halts instead of keeping
	// the console on screen.
	ExitOnHalt bool

	// DumpRegs prints the register file when the guest halts.
	DumpRegs bool

	// MirrorSerial copies guest UART output to the HAL serial port.
	MirrorSerial bool

	// Trace receives one line per executed instruction when non-nil.
	Trace io.Writer

	// VerifyFib cross-checks the halted guest's a0 against the host
	// computation for FibIndex.
	VerifyFib bool
	FibIndex  int

	// Display overrides the HAL framebuffer console, for boards whose LCD
	// driver is used directly.
	Display tinyterm.Displayer
}

type system struct {
	h      hal.HAL
	cfg    Config
	emu    *emu.Emulator
	cons   *console.Console
	halted bool
	rx     [256]byte
}

// New builds the machine and returns the per-tick step function.
func New(h hal.HAL, cfg Config) func() error {
	if cfg.BatchPerTick <= 0 {
		cfg.BatchPerTick = 50_000
	}

	e := emu.New(emu.Config{DRAMSize: cfg.DRAMSize})
	e.Trace = cfg.Trace
	if err := e.LoadBinary(cfg.Binary); err != nil {
		return func() error { return fmt.Errorf("load guest: %w", err) }
	}

	var cons *console.Console
	if cfg.Display != nil {
		cons = console.New(cfg.Display)
	} else {
		cons = console.NewFromFramebuffer(h.Display().Framebuffer())
	}

	s := &system{h: h, cfg: cfg, emu: e, cons: cons}
	return s.step
}

// Run starts the machine and blocks, ticking it at 60 Hz. This is the
// entrypoint for targets without a windowing runner.
func Run(h hal.HAL, cfg Config) error {
	step := New(h, cfg)
	for {
		if err := step(); err != nil {
			return err
		}
		time.Sleep(time.Second / 60)
	}
}

func (s *system) step() error {
	s.forwardKeys()

	if !s.halted {
		status, err := s.emu.StepBatch(s.cfg.BatchPerTick)
		if err != nil {
			s.drainUART()
			s.log(fmt.Sprintf("machine fault: %v", err))
			return err
		}
		if status == emu.StatusHalted {
			s.halted = true
			s.drainUART()
			s.onHalt()
			if s.cfg.ExitOnHalt {
				return ErrHalted
			}
		}
	}

	s.drainUART()
	return s.cons.Flush()
}

// forwardKeys drains pending key events into the guest UART receive FIFO.
func (s *system) forwardKeys() {
	events := s.h.Input().Keyboard().Events()
	for {
		select {
		case ev := <-events:
			if !ev.Press {
				continue
			}
			if b, ok := keyByte(ev); ok {
				s.emu.CPU.Bus.UART.Push([]byte{b})
			}
		default:
			return
		}
	}
}

func keyByte(ev hal.KeyEvent) (byte, bool) {
	switch ev.Code {
	case hal.KeyEnter:
		return '\r', true
	case hal.KeyBackspace:
		return 0x7f, true
	case hal.KeyEscape:
		return 0x1b, true
	case hal.KeyTab:
		return '\t', true
	}
	if ev.Rune > 0 && ev.Rune < 0x80 {
		return byte(ev.Rune), true
	}
	return 0, false
}

func (s *system) drainUART() {
	for {
		n := s.emu.CPU.Bus.UART.Drain(s.rx[:])
		if n == 0 {
			return
		}
		s.cons.Write(s.rx[:n])
		if s.cfg.MirrorSerial {
			s.h.Serial().Write(s.rx[:n])
		}
	}
}

func (s *system) onHalt() {
	a0 := int32(s.emu.CPU.XRegs.Read(emu.A0))
	cycles := s.emu.CPU.CSR.Read(emu.MCYCLE)
	s.log(fmt.Sprintf("guest halted: a0=%d cycles=%d", a0, cycles))

	if s.cfg.VerifyFib {
		want, err := fib.Compute(s.cfg.FibIndex)
		switch {
		case err != nil:
			s.log(fmt.Sprintf("fib check skipped: %v", err))
		case want == a0:
			s.log(fmt.Sprintf("fib check ok: fib(%d)=%d", s.cfg.FibIndex, want))
		default:
			s.log(fmt.Sprintf("fib check FAILED: guest=%d host=%d", a0, want))
		}
	}

	if s.cfg.DumpRegs {
		var buf bytes.Buffer
		s.emu.CPU.DumpRegisters(&buf)
		for _, line := range bytes.Split(buf.Bytes(), []byte{'\n'}) {
			if len(line) == 0 {
				continue
			}
			s.h.Logger().WriteLineBytes(line)
		}
	}
}

func (s *system) log(msg string) {
	s.h.Logger().WriteLineString(msg)
	s.cons.Write([]byte(msg))
	s.cons.Write([]byte("\r\n"))
}
