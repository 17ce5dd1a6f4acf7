package emu

import "testing"

// run assembles the words into a fresh machine with a small DRAM, appends a
// halting EBREAK, and executes until the guest halts.
func run(t *testing.T, words ...uint32) *CPU {
	t.Helper()
	e := New(Config{DRAMSize: 1 << 16})
	bin := Assemble(append(words, EBREAK()))
	if err := e.LoadBinary(bin); err != nil {
		t.Fatalf("LoadBinary() err = %v", err)
	}
	st, err := e.StepBatch(10_000)
	if err != nil {
		t.Fatalf("StepBatch() err = %v", err)
	}
	if st != StatusHalted {
		t.Fatalf("StepBatch() status = %v, want halted", st)
	}
	return e.CPU
}

// u64 reinterprets a signed value as its two's-complement bit pattern;
// constant conversions like uint64(int64(-8))) do not compile.
func u64(x int64) uint64 { return uint64(x) }

func checkReg(t *testing.T, c *CPU, reg uint32, want uint64) {
	t.Helper()
	if got := c.XRegs.Read(reg); got != want {
		t.Fatalf("x%d = %#x, want %#x", reg, got, want)
	}
}

func TestOpImm(t *testing.T) {
	c := run(t,
		ADDI(T0, Zero, 42),
		ADDI(T1, T0, -50),
		SLTI(T2, T1, 0),
		SLTIU(T3, T1, 1),
		XORI(T4, T0, 0xff),
		ORI(T5, Zero, 0x70),
		ANDI(T6, T0, 0x0f),
	)
	checkReg(t, c, T0, 42)
	checkReg(t, c, T1, u64(int64(-8)))
	checkReg(t, c, T2, 1) // -8 < 0
	checkReg(t, c, T3, 0) // unsigned -8 is huge
	checkReg(t, c, T4, 42^0xff)
	checkReg(t, c, T5, 0x70)
	checkReg(t, c, T6, 42&0x0f)
}

func TestShifts(t *testing.T) {
	c := run(t,
		ADDI(T0, Zero, -16),
		SLLI(T1, T0, 2),
		SRLI(T2, T0, 60),
		SRAI(T3, T0, 2),
		ADDI(T4, Zero, 1),
		SLLI(T4, T4, 63), // MinInt64
		SRAI(T4, T4, 63),
	)
	checkReg(t, c, T1, u64(int64(-64)))
	checkReg(t, c, T2, 0xf)
	checkReg(t, c, T3, u64(int64(-4)))
	checkReg(t, c, T4, ^uint64(0))
}

func TestOpReg(t *testing.T) {
	c := run(t,
		ADDI(T0, Zero, 21),
		ADDI(T1, Zero, -2),
		ADD(T2, T0, T1),
		SUB(T3, T0, T1),
		SLT(T4, T1, T0),
		SLTU(T5, T1, T0), // unsigned: -2 is huge
		AND(T6, T0, T1),
	)
	checkReg(t, c, T2, 19)
	checkReg(t, c, T3, 23)
	checkReg(t, c, T4, 1)
	checkReg(t, c, T5, 0)
	checkReg(t, c, T6, 21&^1)
}

func TestWordOps(t *testing.T) {
	c := run(t,
		// 0x7fffffff + 1 overflows int32 and sign-extends.
		LUI(T0, 0x80000),
		ADDIW(T0, T0, -1), // 0x7fffffff
		ADDI(T1, Zero, 1),
		ADDW(T2, T0, T1),
		SUBW(T3, T1, T0),
		ADDIW(T4, Zero, -5),
	)
	checkReg(t, c, T0, 0x7fffffff)
	checkReg(t, c, T2, u64(int64(int32(-2147483648))))
	checkReg(t, c, T3, u64(int64(int32(1-2147483647))))
	checkReg(t, c, T4, ^uint64(4))
}

func TestMulDiv(t *testing.T) {
	c := run(t,
		ADDI(T0, Zero, -7),
		ADDI(T1, Zero, 3),
		MUL(T2, T0, T1),
		DIV(T3, T0, T1),
		REM(T4, T0, T1),
		DIVU(T5, T1, Zero), // divide by zero: all ones
		REM(T6, T0, Zero),  // remainder by zero: dividend
	)
	checkReg(t, c, T2, u64(int64(-21)))
	checkReg(t, c, T3, u64(int64(-2)))
	checkReg(t, c, T4, u64(int64(-1)))
	checkReg(t, c, T5, ^uint64(0))
	checkReg(t, c, T6, u64(int64(-7)))
}

func TestMulh(t *testing.T) {
	c := run(t,
		ADDI(T0, Zero, -1),
		ADDI(T1, Zero, 2),
		MULH(T2, T0, T1),   // -1*2 high half = -1
		MULHU(T3, T0, T1),  // unsigned: (2^64-1)*2 high half = 1
		MULHSU(T4, T0, T1), // signed * unsigned = -1
	)
	checkReg(t, c, T2, ^uint64(0))
	checkReg(t, c, T3, 1)
	checkReg(t, c, T4, ^uint64(0))
}

func TestDivOverflow(t *testing.T) {
	c := run(t,
		ADDI(T0, Zero, 1),
		SLLI(T0, T0, 63), // MinInt64
		ADDI(T1, Zero, -1),
		DIV(T2, T0, T1), // overflow: dividend
		REM(T3, T0, T1), // overflow: zero
	)
	checkReg(t, c, T2, uint64(1)<<63)
	checkReg(t, c, T3, 0)
}

func TestBranches(t *testing.T) {
	c := run(t,
		ADDI(T0, Zero, 5),
		ADDI(T1, Zero, 5),
		BEQ(T0, T1, 8),     // taken: skip next
		ADDI(T2, Zero, 1),  // skipped
		BNE(T0, T1, 8),     // not taken
		ADDI(T3, Zero, 1),  // executed
		BLT(T1, T0, 8),     // not taken (equal)
		ADDI(T4, Zero, 1),  // executed
		BGE(T0, T1, 8),     // taken
		ADDI(T5, Zero, 1),  // skipped
	)
	checkReg(t, c, T2, 0)
	checkReg(t, c, T3, 1)
	checkReg(t, c, T4, 1)
	checkReg(t, c, T5, 0)
}

func TestJalJalr(t *testing.T) {
	c := run(t,
		JAL(RA, 12),        // skip two instructions
		ADDI(T0, Zero, 1),  // skipped
		ADDI(T1, Zero, 1),  // skipped
		ADDI(T2, Zero, 1),  // landing site
		AUIPC(T3, 0),       // t3 = pc of this instruction
		JALR(T4, T3, 12),   // skip the next instruction
		ADDI(T5, Zero, 1),  // skipped
	)
	checkReg(t, c, T0, 0)
	checkReg(t, c, T1, 0)
	checkReg(t, c, T2, 1)
	checkReg(t, c, T5, 0)
	checkReg(t, c, RA, DRAMBase+4)
}

func TestLoadStore(t *testing.T) {
	c := run(t,
		LUI(T0, 0x80001), // a scratch address in DRAM: 0x80001000
		SLLI(T0, T0, 32),
		SRLI(T0, T0, 32), // clear the sign extension from lui
		ADDI(T1, Zero, -2),
		SD(T1, T0, 0),
		LD(T2, T0, 0),
		LW(T3, T0, 0),
		LWU(T4, T0, 0),
		LHU(T5, T0, 0),
		LB(T6, T0, 0),
	)
	checkReg(t, c, T2, ^uint64(1))
	checkReg(t, c, T3, ^uint64(1))
	checkReg(t, c, T4, 0xfffffffe)
	checkReg(t, c, T5, 0xfffe)
	checkReg(t, c, T6, ^uint64(1))
}

func TestStoreByteAndHalf(t *testing.T) {
	c := run(t,
		LUI(T0, 0x80001),
		SLLI(T0, T0, 32),
		SRLI(T0, T0, 32),
		ADDI(T1, Zero, 0x123),
		SH(T1, T0, 0),
		ADDI(T2, Zero, 0x45),
		SB(T2, T0, 2),
		LW(T3, T0, 0),
	)
	checkReg(t, c, T3, 0x450123)
}

func TestCsrOps(t *testing.T) {
	c := run(t,
		ADDI(T0, Zero, 0x55),
		CSRRW(T1, T0, MSCRATCH), // old value (0) to t1
		CSRRS(T2, Zero, MSCRATCH),
		ADDI(T3, Zero, 0x0f),
		CSRRC(T4, T3, MSCRATCH), // clear low nibble
		CSRRS(T5, Zero, MSCRATCH),
	)
	checkReg(t, c, T1, 0)
	checkReg(t, c, T2, 0x55)
	checkReg(t, c, T4, 0x55)
	checkReg(t, c, T5, 0x50)
}

func TestCsrReadOnlyIdentity(t *testing.T) {
	c := run(t,
		ADDI(T0, Zero, -1),
		CSRRW(T1, T0, MHARTID),
		CSRRS(T2, Zero, MHARTID),
	)
	checkReg(t, c, T2, 0) // write discarded
}

func TestIllegalInstructionTrap(t *testing.T) {
	// An all-ones word is not a valid instruction. With mtvec pointing past
	// it, the handler reads mcause and halts.
	e := New(Config{DRAMSize: 1 << 16})
	words := []uint32{
		// mtvec = DRAMBase + 16 (the handler below).
		AUIPC(T0, 0),
		ADDI(T0, T0, 16),
		CSRRW(Zero, T0, MTVEC),
		0xffffffff, // illegal
		// handler:
		CSRRS(T1, Zero, MCAUSE),
		CSRRS(T2, Zero, MEPC),
		EBREAK(),
	}
	if err := e.LoadBinary(Assemble(words)); err != nil {
		t.Fatalf("LoadBinary() err = %v", err)
	}
	st, err := e.StepBatch(100)
	if err != nil {
		t.Fatalf("StepBatch() err = %v", err)
	}
	if st != StatusHalted {
		t.Fatalf("status = %v, want halted", st)
	}
	if got := e.CPU.XRegs.Read(T1); got != ExcIllegalInstruction.Code() {
		t.Fatalf("mcause = %d, want %d", got, ExcIllegalInstruction.Code())
	}
	if got := e.CPU.XRegs.Read(T2); got != DRAMBase+12 {
		t.Fatalf("mepc = %#x, want %#x", got, DRAMBase+12)
	}
}

func TestEcallMret(t *testing.T) {
	e := New(Config{DRAMSize: 1 << 16})
	words := []uint32{
		AUIPC(T0, 0),
		ADDI(T0, T0, 24),
		CSRRW(Zero, T0, MTVEC),
		ECALL(),
		ADDI(T3, Zero, 7), // resumed here after mret
		EBREAK(),
		// handler at +24:
		CSRRS(T1, Zero, MCAUSE),
		CSRRS(T2, Zero, MEPC),
		ADDI(T2, T2, 4), // resume past the ecall
		CSRRW(Zero, T2, MEPC),
		MRET(),
	}
	if err := e.LoadBinary(Assemble(words)); err != nil {
		t.Fatalf("LoadBinary() err = %v", err)
	}
	st, err := e.StepBatch(100)
	if err != nil {
		t.Fatalf("StepBatch() err = %v", err)
	}
	if st != StatusHalted {
		t.Fatalf("status = %v, want halted", st)
	}
	if got := e.CPU.XRegs.Read(T1); got != ExcEnvironmentCallFromMMode.Code() {
		t.Fatalf("mcause = %d, want %d", got, ExcEnvironmentCallFromMMode.Code())
	}
	if got := e.CPU.XRegs.Read(T3); got != 7 {
		t.Fatalf("x%d = %d, want 7 (mret did not resume)", T3, got)
	}
}

func TestFatalTrapOutOfRange(t *testing.T) {
	e := New(Config{DRAMSize: 1 << 16})
	// Load from address zero: no device claims it.
	if err := e.LoadBinary(Assemble([]uint32{LD(T0, Zero, 0)})); err != nil {
		t.Fatalf("LoadBinary() err = %v", err)
	}
	_, err := e.StepBatch(10)
	if err == nil {
		t.Fatalf("StepBatch() err = nil, want fatal trap")
	}
}

func TestX0Hardwired(t *testing.T) {
	c := run(t,
		ADDI(Zero, Zero, 5),
		ADD(T0, Zero, Zero),
	)
	checkReg(t, c, Zero, 0)
	checkReg(t, c, T0, 0)
}
