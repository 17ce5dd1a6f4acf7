package emu

// Machine-level CSR addresses (the subset this machine implements).
const (
	MSTATUS  = 0x300
	MISA     = 0x301
	MEDELEG  = 0x302
	MIDELEG  = 0x303
	MIE      = 0x304
	MTVEC    = 0x305
	MSCRATCH = 0x340
	MEPC     = 0x341
	MCAUSE   = 0x342
	MTVAL    = 0x343
	MIP      = 0x344

	MCYCLE = 0xb00

	MVENDORID = 0xf11
	MARCHID   = 0xf12
	MIMPID    = 0xf13
	MHARTID   = 0xf14
)

// mstatus bit positions.
const (
	mstatusMIE   = 3
	mstatusMPIE  = 7
	mstatusMPPLo = 11
	mstatusMPPHi = 13 // exclusive
)

// mip/mie bits for the machine-level interrupts.
const (
	MIPMSIP = uint64(1) << 3
	MIPMTIP = uint64(1) << 7
	MIPMEIP = uint64(1) << 11
)

const numCSRs = 4096

// CSRFile is a flat control and status register file.
type CSRFile struct {
	regs [numCSRs]uint64
}

// NewCSRFile returns a CSR file with the identity registers populated.
func NewCSRFile() CSRFile {
	var f CSRFile
	// misa: RV64 (MXL=2) with the I and M extensions.
	f.regs[MISA] = 2<<62 | 1<<8 | 1<<12
	return f
}

// Read returns the value of a CSR. Unimplemented registers read as zero,
// which also covers medeleg/mideleg: traps are never delegated.
func (f *CSRFile) Read(addr uint32) uint64 {
	return f.regs[addr&(numCSRs-1)]
}

// Write stores a value to a CSR. The read-only identity registers and misa
// are left untouched.
func (f *CSRFile) Write(addr uint32, v uint64) {
	addr &= numCSRs - 1
	switch addr {
	case MISA, MVENDORID, MARCHID, MIMPID, MHARTID:
		return
	}
	f.regs[addr] = v
}

// ReadBit returns bit pos of a CSR.
func (f *CSRFile) ReadBit(addr uint32, pos uint) uint64 {
	return (f.Read(addr) >> pos) & 1
}

// WriteBit sets bit pos of a CSR to the low bit of v.
func (f *CSRFile) WriteBit(addr uint32, pos uint, v uint64) {
	cur := f.Read(addr)
	if v&1 == 1 {
		f.Write(addr, cur|uint64(1)<<pos)
	} else {
		f.Write(addr, cur&^(uint64(1)<<pos))
	}
}

// WriteBits sets the half-open bit range [lo, hi) of a CSR to v.
func (f *CSRFile) WriteBits(addr uint32, lo, hi uint, v uint64) {
	mask := (uint64(1)<<(hi-lo) - 1) << lo
	cur := f.Read(addr)
	f.Write(addr, cur&^mask|(v<<lo)&mask)
}
