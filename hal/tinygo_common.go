//go:build tinygo

package hal

import (
	"machine"
	"time"
)

type tinyGoHAL struct {
	logger *serialLogger
	fb     *tinyGoFramebuffer
	kbd    *serialKeyboard
	serial Serial
}

// New returns the hardware HAL implementation. The console output goes to
// the board display via InitDisplay; the HAL framebuffer is a small
// in-memory surface kept for API parity with the host build.
func New() HAL {
	return &tinyGoHAL{
		logger: &serialLogger{},
		fb:     newTinyGoFramebuffer(160, 128),
		kbd:    newSerialKeyboard(),
		serial: serialPort{},
	}
}

func (h *tinyGoHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHAL) Display() Display { return tinyGoDisplay{fb: h.fb} }
func (h *tinyGoHAL) Input() Input     { return tinyGoInput{kbd: h.kbd} }
func (h *tinyGoHAL) Serial() Serial   { return h.serial }

type tinyGoDisplay struct {
	fb Framebuffer
}

func (d tinyGoDisplay) Framebuffer() Framebuffer { return d.fb }

type tinyGoInput struct {
	kbd Keyboard
}

func (in tinyGoInput) Keyboard() Keyboard { return in.kbd }

type serialLogger struct{}

func (l *serialLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		machine.Serial.WriteByte(s[i])
	}
	machine.Serial.WriteByte('\r')
	machine.Serial.WriteByte('\n')
}

func (l *serialLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		machine.Serial.WriteByte(b[i])
	}
	machine.Serial.WriteByte('\r')
	machine.Serial.WriteByte('\n')
}

type serialPort struct{}

func (serialPort) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			break
		}
		p[n] = b
		n++
	}
	return n, nil
}

func (serialPort) Write(p []byte) (int, error) {
	for i := 0; i < len(p); i++ {
		machine.Serial.WriteByte(p[i])
	}
	return len(p), nil
}

// serialKeyboard turns bytes arriving on the USB serial into key events.
type serialKeyboard struct {
	ch chan KeyEvent
}

func newSerialKeyboard() *serialKeyboard {
	k := &serialKeyboard{ch: make(chan KeyEvent, 64)}
	go func() {
		for {
			k.poll()
			time.Sleep(2 * time.Millisecond)
		}
	}()
	return k
}

func (k *serialKeyboard) Events() <-chan KeyEvent { return k.ch }

func (k *serialKeyboard) poll() {
	for machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			return
		}
		var ev KeyEvent
		switch b {
		case '\r', '\n':
			ev = KeyEvent{Code: KeyEnter, Press: true}
		case 0x7f, 0x08:
			ev = KeyEvent{Code: KeyBackspace, Press: true}
		case 0x1b:
			ev = KeyEvent{Code: KeyEscape, Press: true}
		case '\t':
			ev = KeyEvent{Code: KeyTab, Press: true}
		default:
			ev = KeyEvent{Press: true, Rune: rune(b)}
		}
		select {
		case k.ch <- ev:
		default:
		}
	}
}

type tinyGoFramebuffer struct {
	w      int
	h      int
	stride int
	buf    []byte
}

func newTinyGoFramebuffer(w, h int) *tinyGoFramebuffer {
	return &tinyGoFramebuffer{w: w, h: h, stride: w * 2, buf: make([]byte, w*h*2)}
}

func (f *tinyGoFramebuffer) Width() int          { return f.w }
func (f *tinyGoFramebuffer) Height() int         { return f.h }
func (f *tinyGoFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *tinyGoFramebuffer) StrideBytes() int    { return f.stride }
func (f *tinyGoFramebuffer) Buffer() []byte      { return f.buf }
func (f *tinyGoFramebuffer) Present() error      { return nil }

func (f *tinyGoFramebuffer) ClearRGB(r, g, b uint8) {
	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}
