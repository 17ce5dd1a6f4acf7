package emu

// Interrupt is an asynchronous trap cause.
type Interrupt uint8

const (
	IntNone Interrupt = iota
	IntMachineSoftware
	IntMachineTimer
	IntMachineExternal
)

func (i Interrupt) String() string {
	switch i {
	case IntNone:
		return "none"
	case IntMachineSoftware:
		return "machine software interrupt"
	case IntMachineTimer:
		return "machine timer interrupt"
	case IntMachineExternal:
		return "machine external interrupt"
	default:
		return "unknown"
	}
}

// Code returns the mcause interrupt code (without the interrupt bit).
func (i Interrupt) Code() uint64 {
	switch i {
	case IntMachineSoftware:
		return 3
	case IntMachineTimer:
		return 7
	case IntMachineExternal:
		return 11
	default:
		return 0
	}
}

// mcause bit 63 marks interrupts.
const interruptBit = uint64(1) << 63

// TakeTrap vectors the CPU to the machine trap handler for this interrupt.
// mepc holds the address of the next instruction to resume at. When mtvec is
// in vectored mode (low bits 0b01), the handler is base + 4*code.
func (i Interrupt) TakeTrap(c *CPU) {
	c.CSR.Write(MEPC, c.PC&^1)
	c.CSR.Write(MCAUSE, interruptBit|i.Code())
	c.CSR.Write(MTVAL, 0)

	tvec := c.CSR.Read(MTVEC)
	base := tvec &^ 0b11
	if tvec&0b11 == 1 {
		c.PC = base + 4*i.Code()
	} else {
		c.PC = base
	}

	c.CSR.WriteBit(MSTATUS, mstatusMPIE, c.CSR.ReadBit(MSTATUS, mstatusMIE))
	c.CSR.WriteBit(MSTATUS, mstatusMIE, 0)
	c.CSR.WriteBits(MSTATUS, mstatusMPPLo, mstatusMPPHi, uint64(c.Mode))
	c.Mode = Machine
}
