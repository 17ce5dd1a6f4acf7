package emu

// Exception is a synchronous trap cause raised during fetch or execute.
//
// The zero value ExcNone means no exception, so bus and execute paths can
// return it by value without allocating.
type Exception uint8

const (
	ExcNone Exception = iota
	ExcInstructionAddressMisaligned
	ExcInstructionAccessFault
	ExcIllegalInstruction
	ExcBreakpoint
	ExcLoadAddressMisaligned
	ExcLoadAccessFault
	ExcStoreAddressMisaligned
	ExcStoreAccessFault
	ExcEnvironmentCallFromUMode
	ExcEnvironmentCallFromSMode
	ExcEnvironmentCallFromMMode
)

func (e Exception) String() string {
	switch e {
	case ExcNone:
		return "none"
	case ExcInstructionAddressMisaligned:
		return "instruction address misaligned"
	case ExcInstructionAccessFault:
		return "instruction access fault"
	case ExcIllegalInstruction:
		return "illegal instruction"
	case ExcBreakpoint:
		return "breakpoint"
	case ExcLoadAddressMisaligned:
		return "load address misaligned"
	case ExcLoadAccessFault:
		return "load access fault"
	case ExcStoreAddressMisaligned:
		return "store/AMO address misaligned"
	case ExcStoreAccessFault:
		return "store/AMO access fault"
	case ExcEnvironmentCallFromUMode:
		return "environment call from U-mode"
	case ExcEnvironmentCallFromSMode:
		return "environment call from S-mode"
	case ExcEnvironmentCallFromMMode:
		return "environment call from M-mode"
	default:
		return "unknown"
	}
}

// Code returns the mcause exception code.
func (e Exception) Code() uint64 {
	switch e {
	case ExcInstructionAddressMisaligned:
		return 0
	case ExcInstructionAccessFault:
		return 1
	case ExcIllegalInstruction:
		return 2
	case ExcBreakpoint:
		return 3
	case ExcLoadAddressMisaligned:
		return 4
	case ExcLoadAccessFault:
		return 5
	case ExcStoreAddressMisaligned:
		return 6
	case ExcStoreAccessFault:
		return 7
	case ExcEnvironmentCallFromUMode:
		return 8
	case ExcEnvironmentCallFromSMode:
		return 9
	case ExcEnvironmentCallFromMMode:
		return 11
	default:
		return 0
	}
}

// Trap classifies how severe a taken trap is.
type Trap uint8

const (
	// TrapNone: execution proceeded without a trap.
	TrapNone Trap = iota
	// TrapContained: visible to and handled by guest software.
	TrapContained
	// TrapRequested: an explicit request by the guest (ecall, ebreak).
	TrapRequested
	// TrapInvisible: handled transparently, execution resumes.
	TrapInvisible
	// TrapFatal: the machine cannot continue.
	TrapFatal
)

func (t Trap) String() string {
	switch t {
	case TrapNone:
		return "none"
	case TrapContained:
		return "contained"
	case TrapRequested:
		return "requested"
	case TrapInvisible:
		return "invisible"
	case TrapFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

func (e Exception) severity() Trap {
	switch e {
	case ExcInstructionAddressMisaligned, ExcInstructionAccessFault,
		ExcLoadAddressMisaligned, ExcLoadAccessFault,
		ExcStoreAddressMisaligned, ExcStoreAccessFault:
		return TrapFatal
	case ExcIllegalInstruction:
		return TrapInvisible
	case ExcBreakpoint,
		ExcEnvironmentCallFromUMode, ExcEnvironmentCallFromSMode, ExcEnvironmentCallFromMMode:
		return TrapRequested
	default:
		return TrapContained
	}
}

// TakeTrap updates the CSRs and the program counter for an exception raised
// by the instruction at instAddr, and returns its severity.
//
// Traps are always taken in machine mode: this machine never leaves M-mode
// and medeleg reads as zero.
func (e Exception) TakeTrap(c *CPU, instAddr uint64) Trap {
	c.CSR.Write(MEPC, instAddr&^1)
	c.CSR.Write(MCAUSE, e.Code())
	c.CSR.Write(MTVAL, instAddr)
	c.PC = c.CSR.Read(MTVEC) &^ 0b11

	// mstatus: stack the interrupt enable bit and the privilege mode.
	c.CSR.WriteBit(MSTATUS, mstatusMPIE, c.CSR.ReadBit(MSTATUS, mstatusMIE))
	c.CSR.WriteBit(MSTATUS, mstatusMIE, 0)
	c.CSR.WriteBits(MSTATUS, mstatusMPPLo, mstatusMPPHi, uint64(c.Mode))
	c.Mode = Machine

	return e.severity()
}
