package emu

import (
	"fmt"
	"io"
)

// RegCount is the number of integer registers.
const RegCount = 32

// Mode is the privilege mode of the hart. Only machine mode is reachable on
// this machine; the others exist for mstatus.MPP bookkeeping.
type Mode uint8

const (
	User       Mode = 0b00
	Supervisor Mode = 0b01
	Machine    Mode = 0b11
)

// XRegs is the integer register file. x0 is hardwired to zero.
type XRegs struct {
	regs [RegCount]uint64
}

// Read returns the value of register i.
func (x *XRegs) Read(i uint32) uint64 { return x.regs[i&0x1f] }

// Write sets register i. Writes to x0 are discarded.
func (x *XRegs) Write(i uint32, v uint64) {
	if i&0x1f != 0 {
		x.regs[i&0x1f] = v
	}
}

// CPU is a single RV64IM+Zicsr hart operating in machine mode.
type CPU struct {
	XRegs XRegs
	PC    uint64
	Mode  Mode
	CSR   CSRFile
	Bus   *Bus

	wfi bool
}

// NewCPU returns a reset CPU attached to bus.
func NewCPU(bus *Bus) *CPU {
	c := &CPU{Bus: bus}
	c.Reset()
	return c
}

// Reset restores the power-on state: pc at the DRAM base, sp at the top of
// DRAM, machine mode.
func (c *CPU) Reset() {
	c.XRegs = XRegs{}
	c.XRegs.Write(SP, DRAMBase+uint64(c.Bus.DRAM.Size()))
	c.PC = DRAMBase
	c.Mode = Machine
	c.CSR = NewCSRFile()
	c.wfi = false
}

func (c *CPU) fetch() (uint32, Exception) {
	v, exc := c.Bus.Read(c.PC, 32)
	if exc != ExcNone {
		// Fetch faults report as instruction access faults regardless of
		// which bus range rejected them.
		return 0, ExcInstructionAccessFault
	}
	return uint32(v), ExcNone
}

// Step runs one fetch-decode-execute cycle and then polls for interrupts.
// It returns the trap that was taken (TrapNone if none) and the exception
// that caused it.
func (c *CPU) Step() (Trap, Exception) {
	c.Bus.Tick()
	c.CSR.regs[MCYCLE]++

	if c.wfi {
		if irq := c.pendingInterrupt(); irq != IntNone {
			c.wfi = false
			irq.TakeTrap(c)
		}
		return TrapNone, ExcNone
	}

	instAddr := c.PC
	inst, exc := c.fetch()
	if exc != ExcNone {
		return exc.TakeTrap(c, instAddr), exc
	}
	c.PC += 4
	if exc = c.execute(inst); exc != ExcNone {
		return exc.TakeTrap(c, instAddr), exc
	}

	if irq := c.pendingInterrupt(); irq != IntNone {
		irq.TakeTrap(c)
	}
	return TrapNone, ExcNone
}

// pendingInterrupt refreshes mip from the device state and returns the
// highest-priority enabled pending interrupt (external > software > timer).
func (c *CPU) pendingInterrupt() Interrupt {
	mip := c.CSR.Read(MIP)
	mip &^= MIPMSIP | MIPMTIP | MIPMEIP
	if c.Bus.CLINT.SoftwarePending() {
		mip |= MIPMSIP
	}
	if c.Bus.CLINT.TimerPending() {
		mip |= MIPMTIP
	}
	if c.Bus.UART.InterruptPending() {
		mip |= MIPMEIP
	}
	c.CSR.Write(MIP, mip)

	if c.CSR.ReadBit(MSTATUS, mstatusMIE) == 0 {
		return IntNone
	}
	enabled := c.CSR.Read(MIE) & mip
	switch {
	case enabled&MIPMEIP != 0:
		c.Bus.UART.ClearInterrupt()
		return IntMachineExternal
	case enabled&MIPMSIP != 0:
		return IntMachineSoftware
	case enabled&MIPMTIP != 0:
		return IntMachineTimer
	}
	return IntNone
}

// DumpRegisters writes the integer registers and the program counter to w.
func (c *CPU) DumpRegisters(w io.Writer) {
	for i := uint32(0); i < RegCount; i += 4 {
		fmt.Fprintf(w, "x%02d=%#018x x%02d=%#018x x%02d=%#018x x%02d=%#018x\n",
			i, c.XRegs.Read(i),
			i+1, c.XRegs.Read(i+1),
			i+2, c.XRegs.Read(i+2),
			i+3, c.XRegs.Read(i+3))
	}
	fmt.Fprintf(w, "pc=%#018x\n", c.PC)
}
