package emu

import "sync"

// 16550A register offsets, relative to UARTBase. RHR and THR share offset 0
// (read vs write), ISR and FCR share offset 2.
const (
	uartRHR = 0
	uartTHR = 0
	uartIER = 1
	uartFCR = 2
	uartISR = 2
	uartLCR = 3
	uartLSR = 5
)

// Line status register bits.
const (
	lsrRxReady = 1 << 0 // receive holding register has data
	lsrTxIdle  = 1 << 5 // transmit holding register is empty
)

// ierRxEnable enables the receive data interrupt.
const ierRxEnable = 1 << 0

// UART models the 16550A serial port of the QEMU virt machine, reduced to
// the registers guests actually poll. The transmit side never blocks: bytes
// accumulate until the front end drains them. The receive side is fed by the
// front end (keyboard or serial input).
//
// The front-end methods (Push, Drain) may be called from a different
// goroutine than the bus.
type UART struct {
	mu  sync.Mutex
	ier byte
	lcr byte
	rx  []byte
	tx  []byte
	irq bool
}

// NewUART returns an idle UART.
func NewUART() *UART { return &UART{} }

// Read returns the register at offset (relative to UARTBase).
func (u *UART) Read(offset uint64) byte {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch offset {
	case uartRHR:
		if len(u.rx) == 0 {
			return 0
		}
		b := u.rx[0]
		u.rx = u.rx[1:]
		return b
	case uartIER:
		return u.ier
	case uartLCR:
		return u.lcr
	case uartLSR:
		s := byte(lsrTxIdle)
		if len(u.rx) > 0 {
			s |= lsrRxReady
		}
		return s
	}
	return 0
}

// Write stores a byte to the register at offset (relative to UARTBase).
func (u *UART) Write(offset uint64, v byte) {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch offset {
	case uartTHR:
		u.tx = append(u.tx, v)
	case uartIER:
		u.ier = v
	case uartLCR:
		u.lcr = v
	}
}

// Push queues received bytes for the guest and raises the receive interrupt
// if the guest enabled it.
func (u *UART) Push(p []byte) {
	if len(p) == 0 {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.rx = append(u.rx, p...)
	if u.ier&ierRxEnable != 0 {
		u.irq = true
	}
}

// Drain moves transmitted bytes into p and reports how many were copied.
func (u *UART) Drain(p []byte) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := copy(p, u.tx)
	u.tx = u.tx[n:]
	if len(u.tx) == 0 {
		u.tx = nil
	}
	return n
}

// InterruptPending reports whether the UART is asserting its interrupt.
func (u *UART) InterruptPending() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.irq
}

// ClearInterrupt deasserts the interrupt line.
func (u *UART) ClearInterrupt() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.irq = false
}
