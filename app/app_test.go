package app

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"rvgo/guest"
	"rvgo/hal"
)

type testLogger struct {
	lines []string
}

func (l *testLogger) WriteLineString(s string) { l.lines = append(l.lines, s) }
func (l *testLogger) WriteLineBytes(b []byte)  { l.lines = append(l.lines, string(b)) }

type testFB struct {
	w, h int
	buf  []byte
}

func newTestFB(w, h int) *testFB {
	return &testFB{w: w, h: h, buf: make([]byte, w*h*2)}
}

func (f *testFB) Width() int              { return f.w }
func (f *testFB) Height() int             { return f.h }
func (f *testFB) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *testFB) StrideBytes() int        { return f.w * 2 }
func (f *testFB) Buffer() []byte          { return f.buf }
func (f *testFB) Present() error          { return nil }
func (f *testFB) ClearRGB(r, g, b uint8)  {}

type testDisplay struct{ fb *testFB }

func (d testDisplay) Framebuffer() hal.Framebuffer { return d.fb }

type testKeyboard struct{ ch chan hal.KeyEvent }

func (k *testKeyboard) Events() <-chan hal.KeyEvent { return k.ch }

type testInput struct{ kbd *testKeyboard }

func (in testInput) Keyboard() hal.Keyboard { return in.kbd }

type testSerial struct{ bytes.Buffer }

type testHAL struct {
	logger *testLogger
	fb     *testFB
	kbd    *testKeyboard
	serial *testSerial
}

func newTestHAL() *testHAL {
	return &testHAL{
		logger: &testLogger{},
		fb:     newTestFB(160, 120),
		kbd:    &testKeyboard{ch: make(chan hal.KeyEvent, 16)},
		serial: &testSerial{},
	}
}

func (h *testHAL) Logger() hal.Logger   { return h.logger }
func (h *testHAL) Display() hal.Display { return testDisplay{fb: h.fb} }
func (h *testHAL) Input() hal.Input     { return testInput{kbd: h.kbd} }
func (h *testHAL) Serial() hal.Serial   { return h.serial }

func logContains(l *testLogger, sub string) bool {
	for _, line := range l.lines {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

func runToHalt(t *testing.T, step func() error) {
	t.Helper()
	for i := 0; i < 100; i++ {
		err := step()
		if err == nil {
			continue
		}
		if errors.Is(err, ErrHalted) {
			return
		}
		t.Fatalf("step: %v", err)
	}
	t.Fatalf("guest did not halt")
}

func TestGuestRunsToHalt(t *testing.T) {
	bin, err := guest.Fib(10)
	if err != nil {
		t.Fatalf("guest: %v", err)
	}

	h := newTestHAL()
	step := New(h, Config{
		Binary:     bin,
		DRAMSize:   1 << 16,
		ExitOnHalt: true,
		VerifyFib:  true,
		FibIndex:   10,
	})

	runToHalt(t, step)

	if !logContains(h.logger, "a0=55") {
		t.Fatalf("missing halt summary, log: %q", h.logger.lines)
	}
	if !logContains(h.logger, "fib check ok") {
		t.Fatalf("missing fib check, log: %q", h.logger.lines)
	}
}

func TestHaltWithoutExitKeepsStepping(t *testing.T) {
	bin, err := guest.Fib(5)
	if err != nil {
		t.Fatalf("guest: %v", err)
	}

	h := newTestHAL()
	step := New(h, Config{Binary: bin, DRAMSize: 1 << 16, DumpRegs: true})

	for i := 0; i < 10; i++ {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if !logContains(h.logger, "guest halted") {
		t.Fatalf("missing halt summary, log: %q", h.logger.lines)
	}
	if !logContains(h.logger, "x08") {
		t.Fatalf("missing register dump, log: %q", h.logger.lines)
	}
}

func TestKeyboardForwardAndSerialMirror(t *testing.T) {
	bin, err := guest.Banner("hi\n")
	if err != nil {
		t.Fatalf("guest: %v", err)
	}

	h := newTestHAL()
	step := New(h, Config{
		Binary:       bin,
		DRAMSize:     1 << 16,
		BatchPerTick: 1_000,
		MirrorSerial: true,
	})

	h.kbd.ch <- hal.KeyEvent{Press: true, Rune: 'x'}
	h.kbd.ch <- hal.KeyEvent{Code: hal.KeyEnter, Press: true}

	for i := 0; i < 10; i++ {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	out := h.serial.String()
	if !strings.Contains(out, "hi\n") {
		t.Fatalf("serial output %q missing banner", out)
	}
	if !strings.Contains(out, "x") || !strings.Contains(out, "\r") {
		t.Fatalf("serial output %q missing echoed input", out)
	}
}
