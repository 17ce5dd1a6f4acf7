package emu

// Physical address map, matching the QEMU virt machine.
const (
	CLINTBase uint64 = 0x200_0000
	CLINTSize uint64 = 0x1_0000
	UARTBase  uint64 = 0x1000_0000
	UARTSize  uint64 = 0x100
	DRAMBase  uint64 = 0x8000_0000
)

// Bus routes physical memory accesses to DRAM and the memory-mapped devices.
type Bus struct {
	CLINT *CLINT
	UART  *UART
	DRAM  *DRAM
}

// NewBus builds a bus with dramSize bytes of memory and fresh devices.
func NewBus(dramSize int) *Bus {
	return &Bus{
		CLINT: NewCLINT(),
		UART:  NewUART(),
		DRAM:  NewDRAM(dramSize),
	}
}

// Tick advances the bus-attached timers by one cycle.
func (b *Bus) Tick() { b.CLINT.Tick() }

// Read loads bits (8, 16, 32 or 64) from the physical address addr.
func (b *Bus) Read(addr uint64, bits int) (uint64, Exception) {
	switch {
	case addr >= CLINTBase && addr < CLINTBase+CLINTSize:
		return b.CLINT.Read(addr, bits)
	case addr >= UARTBase && addr < UARTBase+UARTSize:
		if bits != 8 {
			return 0, ExcLoadAccessFault
		}
		return uint64(b.UART.Read(addr - UARTBase)), ExcNone
	case addr >= DRAMBase && addr < DRAMBase+uint64(b.DRAM.Size()):
		return b.DRAM.Read(addr-DRAMBase, bits)
	}
	return 0, ExcLoadAccessFault
}

// Write stores the low bits (8, 16, 32 or 64) of v to the physical address
// addr.
func (b *Bus) Write(addr uint64, bits int, v uint64) Exception {
	switch {
	case addr >= CLINTBase && addr < CLINTBase+CLINTSize:
		return b.CLINT.Write(addr, bits, v)
	case addr >= UARTBase && addr < UARTBase+UARTSize:
		if bits != 8 {
			return ExcStoreAccessFault
		}
		b.UART.Write(addr-UARTBase, byte(v))
		return ExcNone
	case addr >= DRAMBase && addr < DRAMBase+uint64(b.DRAM.Size()):
		return b.DRAM.Write(addr-DRAMBase, bits, v)
	}
	return ExcStoreAccessFault
}
