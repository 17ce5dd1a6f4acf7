package emu

// CLINT register addresses (absolute, within the CLINT range).
const (
	clintMSIP     = CLINTBase + 0x0
	clintMTIMECMP = CLINTBase + 0x4000
	clintMTIME    = CLINTBase + 0xbff8
)

// CLINT is the core-local interruptor: it owns the machine timer (mtime,
// mtimecmp) and the machine software interrupt bit (msip). mtime advances by
// one per executed instruction.
type CLINT struct {
	msip     uint32
	mtime    uint64
	mtimecmp uint64
}

// NewCLINT returns a CLINT with the timer disarmed.
func NewCLINT() *CLINT {
	// mtimecmp starts at the maximum so the timer stays quiet until the
	// guest arms it.
	return &CLINT{mtimecmp: ^uint64(0)}
}

// Tick advances mtime by one.
func (c *CLINT) Tick() { c.mtime++ }

// MTime returns the current timer value.
func (c *CLINT) MTime() uint64 { return c.mtime }

// TimerPending reports whether the machine timer interrupt is pending.
func (c *CLINT) TimerPending() bool { return c.mtime >= c.mtimecmp }

// SoftwarePending reports whether the machine software interrupt is pending.
func (c *CLINT) SoftwarePending() bool { return c.msip&1 == 1 }

// Read returns bits of the register at addr.
func (c *CLINT) Read(addr uint64, bits int) (uint64, Exception) {
	var reg uint64
	switch addr {
	case clintMSIP:
		reg = uint64(c.msip)
	case clintMTIMECMP:
		reg = c.mtimecmp
	case clintMTIME:
		reg = c.mtime
	default:
		return 0, ExcLoadAccessFault
	}
	switch bits {
	case 32:
		return reg & 0xffffffff, ExcNone
	case 64:
		return reg, ExcNone
	}
	return 0, ExcLoadAccessFault
}

// Write stores bits of v to the register at addr.
func (c *CLINT) Write(addr uint64, bits int, v uint64) Exception {
	if bits != 32 && bits != 64 {
		return ExcStoreAccessFault
	}
	switch addr {
	case clintMSIP:
		c.msip = uint32(v)
	case clintMTIMECMP:
		if bits == 32 {
			c.mtimecmp = c.mtimecmp&^uint64(0xffffffff) | v&0xffffffff
		} else {
			c.mtimecmp = v
		}
	case clintMTIME:
		if bits == 32 {
			c.mtime = c.mtime&^uint64(0xffffffff) | v&0xffffffff
		} else {
			c.mtime = v
		}
	default:
		return ExcStoreAccessFault
	}
	return ExcNone
}
