// Package guest contains the built-in guest programs, assembled in-process.
//
// Guests are flat RV64 binaries that start executing at the DRAM base in
// machine mode and halt the machine with EBREAK.
package guest

import (
	"errors"
	"fmt"

	"rvgo/emu"
)

// MaxFibIndex is the largest index Fib can encode as a single ADDI
// immediate.
const MaxFibIndex = 2047

// ErrIndexRange is returned when a fib index cannot be encoded.
var ErrIndexRange = errors.New("guest: fib index out of range")

// Fib returns the reference Fibonacci guest for index n. The program seeds
// fib = fibPrev = 1 and iterates while i < n, leaving the result in a0:
//
//	if n <= 1 { a0 = n } else { a0 = fib after the loop }
//
// The loop body uses 32-bit adds (addw), so the result wraps exactly like a
// C int. The seeding looks 1-based but the loop bound makes a0 equal the
// zero-indexed F(n) at every index, which package fib's tests rely on.
func Fib(n int) ([]byte, error) {
	if n < 0 || n > MaxFibIndex {
		return nil, fmt.Errorf("%w: %d", ErrIndexRange, n)
	}
	words := []uint32{
		emu.ADDI(emu.A2, emu.Zero, int32(n)), // n
		emu.ADDI(emu.T0, emu.Zero, 1),
		emu.BLT(emu.T0, emu.A2, 12), // n > 1: compute
		emu.ADDW(emu.A0, emu.A2, emu.Zero), // a0 = n
		emu.JAL(emu.Zero, 40), // done
		// compute:
		emu.ADDI(emu.A0, emu.Zero, 1), // fib
		emu.ADDI(emu.A1, emu.Zero, 1), // fibPrev
		emu.ADDI(emu.A3, emu.Zero, 2), // i
		// loop:
		emu.BGE(emu.A3, emu.A2, 24), // i >= n: done
		emu.ADDW(emu.T1, emu.A0, emu.Zero), // temp = fib
		emu.ADDW(emu.A0, emu.A0, emu.A1),   // fib += fibPrev
		emu.ADDW(emu.A1, emu.T1, emu.Zero), // fibPrev = temp
		emu.ADDI(emu.A3, emu.A3, 1),        // i++
		emu.JAL(emu.Zero, -20), // loop
		// done:
		emu.EBREAK(),
	}
	return emu.Assemble(words), nil
}

// Banner returns a guest that writes msg to the UART and then echoes every
// received byte back. It never halts; the front end stops it.
//
// msg must be ASCII so each byte fits an ADDI immediate.
func Banner(msg string) ([]byte, error) {
	words := []uint32{
		emu.LUI(emu.T0, int32(emu.UARTBase>>12)),
	}
	for i := 0; i < len(msg); i++ {
		c := msg[i]
		if c > 0x7f {
			return nil, fmt.Errorf("guest: banner byte %#x is not ASCII", c)
		}
		words = append(words,
			emu.ADDI(emu.T1, emu.Zero, int32(c)),
			emu.SB(emu.T1, emu.T0, 0),
		)
	}
	words = append(words,
		// echo:
		emu.LBU(emu.T2, emu.T0, 5),  // LSR
		emu.ANDI(emu.T2, emu.T2, 1), // rx ready?
		emu.BEQ(emu.T2, emu.Zero, -8),
		emu.LBU(emu.T3, emu.T0, 0), // RHR
		emu.SB(emu.T3, emu.T0, 0),  // THR
		emu.JAL(emu.Zero, -20),
	)
	return emu.Assemble(words), nil
}
