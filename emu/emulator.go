// Package emu implements a small RISC-V (RV64IM+Zicsr) machine: one hart, a
// system bus, DRAM, a 16550 UART and a CLINT timer, laid out like the QEMU
// virt machine. Guests are flat binaries loaded at the DRAM base; they halt
// the machine by executing EBREAK.
package emu

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Config controls machine construction.
type Config struct {
	// DRAMSize is the memory size in bytes. DefaultDRAMSize when zero.
	DRAMSize int
}

// ErrFatalTrap is wrapped by run errors when the machine stops on a trap the
// guest cannot recover from.
var ErrFatalTrap = errors.New("emu: fatal trap")

// Status reports why a batch of steps ended.
type Status uint8

const (
	// StatusRunning: the batch completed and the machine can continue.
	StatusRunning Status = iota
	// StatusHalted: the guest executed EBREAK.
	StatusHalted
)

// Emulator owns a hart and its bus and drives the fetch-execute loop.
type Emulator struct {
	CPU *CPU

	// Trace receives one line per executed instruction when non-nil.
	Trace io.Writer
}

// New builds a machine.
func New(cfg Config) *Emulator {
	size := cfg.DRAMSize
	if size <= 0 {
		size = DefaultDRAMSize
	}
	return &Emulator{CPU: NewCPU(NewBus(size))}
}

// Reset restores the power-on state and clears memory.
func (e *Emulator) Reset() {
	e.CPU.Bus.DRAM.Clear()
	e.CPU.Reset()
}

// LoadBinary copies a flat guest image to the DRAM base and points the
// program counter at it.
func (e *Emulator) LoadBinary(bin []byte) error {
	if err := e.CPU.Bus.DRAM.LoadBinary(bin); err != nil {
		return err
	}
	e.CPU.PC = DRAMBase
	return nil
}

// SetPC sets the program counter.
func (e *Emulator) SetPC(pc uint64) { e.CPU.PC = pc }

// StepBatch executes up to n instructions. It stops early when the guest
// halts or a fatal trap is taken.
func (e *Emulator) StepBatch(n int) (Status, error) {
	for i := 0; i < n; i++ {
		if e.Trace != nil {
			fmt.Fprintf(e.Trace, "pc=%#x\n", e.CPU.PC)
		}
		trap, exc := e.CPU.Step()
		if exc == ExcBreakpoint {
			return StatusHalted, nil
		}
		if trap == TrapFatal {
			return StatusHalted, fmt.Errorf("%w: %v (mepc=%#x, mtval=%#x)",
				ErrFatalTrap, exc, e.CPU.CSR.Read(MEPC), e.CPU.CSR.Read(MTVAL))
		}
	}
	return StatusRunning, nil
}

// Run executes the guest until it halts, a fatal trap is taken, or ctx is
// cancelled.
func (e *Emulator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		st, err := e.StepBatch(4096)
		if err != nil {
			return err
		}
		if st == StatusHalted {
			return nil
		}
	}
}
