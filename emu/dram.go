package emu

import (
	"encoding/binary"
	"fmt"
)

// DefaultDRAMSize is the memory size used when Config leaves it zero,
// matching the QEMU virt machine default.
const DefaultDRAMSize = 128 << 20

// DRAM is the main memory, addressed from offset zero (the bus subtracts
// DRAMBase). All access is little-endian.
type DRAM struct {
	mem      []byte
	codeSize int
}

// NewDRAM allocates size bytes of zeroed memory.
func NewDRAM(size int) *DRAM {
	return &DRAM{mem: make([]byte, size)}
}

// Size returns the memory size in bytes.
func (d *DRAM) Size() int { return len(d.mem) }

// CodeSize returns the length of the most recently loaded binary.
func (d *DRAM) CodeSize() int { return d.codeSize }

// LoadBinary splices a flat binary image at the start of memory.
func (d *DRAM) LoadBinary(bin []byte) error {
	if len(bin) > len(d.mem) {
		return fmt.Errorf("emu: binary of %d bytes exceeds %d bytes of DRAM", len(bin), len(d.mem))
	}
	copy(d.mem, bin)
	d.codeSize = len(bin)
	return nil
}

// Clear zeroes the memory.
func (d *DRAM) Clear() {
	for i := range d.mem {
		d.mem[i] = 0
	}
	d.codeSize = 0
}

// Read returns bits (8, 16, 32 or 64) of memory at addr.
func (d *DRAM) Read(addr uint64, bits int) (uint64, Exception) {
	n := uint64(bits / 8)
	if addr+n > uint64(len(d.mem)) {
		return 0, ExcLoadAccessFault
	}
	switch bits {
	case 8:
		return uint64(d.mem[addr]), ExcNone
	case 16:
		return uint64(binary.LittleEndian.Uint16(d.mem[addr:])), ExcNone
	case 32:
		return uint64(binary.LittleEndian.Uint32(d.mem[addr:])), ExcNone
	case 64:
		return binary.LittleEndian.Uint64(d.mem[addr:]), ExcNone
	}
	return 0, ExcLoadAccessFault
}

// Write stores the low bits (8, 16, 32 or 64) of v at addr.
func (d *DRAM) Write(addr uint64, bits int, v uint64) Exception {
	n := uint64(bits / 8)
	if addr+n > uint64(len(d.mem)) {
		return ExcStoreAccessFault
	}
	switch bits {
	case 8:
		d.mem[addr] = byte(v)
	case 16:
		binary.LittleEndian.PutUint16(d.mem[addr:], uint16(v))
	case 32:
		binary.LittleEndian.PutUint32(d.mem[addr:], uint32(v))
	case 64:
		binary.LittleEndian.PutUint64(d.mem[addr:], v)
	default:
		return ExcStoreAccessFault
	}
	return ExcNone
}
