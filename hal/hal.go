// Package hal abstracts the host the emulator runs on: a framebuffer for
// the console, a keyboard, and a serial port. The desktop implementation
// renders through ebiten; the TinyGo implementation drives a real display.
package hal

import (
	"errors"
	"io"
)

var ErrNotImplemented = errors.New("not implemented")

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// KeyCode is a minimal key identifier.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyEnter
	KeyBackspace
	KeyEscape
	KeyTab
)

// KeyEvent is a keyboard event. Rune carries printable input.
type KeyEvent struct {
	Code  KeyCode
	Press bool
	Rune  rune
}

// Keyboard provides key events (best-effort on each platform).
type Keyboard interface {
	Events() <-chan KeyEvent
}

// Display provides access to the framebuffer (nil where none exists).
type Display interface {
	Framebuffer() Framebuffer
}

// Input provides access to input devices.
type Input interface {
	Keyboard() Keyboard
}

// Serial is the byte stream the machine's UART is mirrored to.
type Serial io.ReadWriter

// HAL is the host abstraction the front end is built against.
type HAL interface {
	Logger() Logger
	Display() Display
	Input() Input
	Serial() Serial
}
