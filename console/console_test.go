package console

import (
	"image/color"
	"testing"

	"rvgo/hal"
)

type fakeFB struct {
	w, h      int
	buf       []byte
	presented int
}

func newFakeFB(w, h int) *fakeFB {
	return &fakeFB{w: w, h: h, buf: make([]byte, w*h*2)}
}

func (f *fakeFB) Width() int              { return f.w }
func (f *fakeFB) Height() int             { return f.h }
func (f *fakeFB) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *fakeFB) StrideBytes() int        { return f.w * 2 }
func (f *fakeFB) Buffer() []byte          { return f.buf }
func (f *fakeFB) Present() error          { f.presented++; return nil }

func (f *fakeFB) ClearRGB(r, g, b uint8) {
	pixel := hal.RGB565From888(r, g, b)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = byte(pixel)
		f.buf[i+1] = byte(pixel >> 8)
	}
}

func TestFBDisplaySetPixel(t *testing.T) {
	fb := newFakeFB(16, 8)
	d := newFBDisplay(fb)

	if x, y := d.Size(); x != 16 || y != 8 {
		t.Fatalf("size = (%d,%d), want (16,8)", x, y)
	}

	d.SetPixel(1, 2, color.RGBA{R: 255, A: 255})
	off := 2*fb.StrideBytes() + 1*2
	got := uint16(fb.buf[off]) | uint16(fb.buf[off+1])<<8
	if got != 0xF800 {
		t.Fatalf("pixel = %#x, want 0xF800", got)
	}

	// Out of range writes must be ignored.
	d.SetPixel(-1, 0, color.RGBA{R: 255})
	d.SetPixel(16, 0, color.RGBA{R: 255})
	d.SetPixel(0, 8, color.RGBA{R: 255})
}

func TestFBDisplayFillRectangleClamps(t *testing.T) {
	fb := newFakeFB(8, 8)
	d := newFBDisplay(fb)

	if err := d.FillRectangle(4, 4, 100, 100, color.RGBA{G: 255}); err != nil {
		t.Fatalf("fill: %v", err)
	}

	inside := 4*fb.StrideBytes() + 4*2
	got := uint16(fb.buf[inside]) | uint16(fb.buf[inside+1])<<8
	if got != 0x07E0 {
		t.Fatalf("inside pixel = %#x, want 0x07E0", got)
	}
	outside := 0
	if fb.buf[outside] != 0 || fb.buf[outside+1] != 0 {
		t.Fatalf("pixel outside rectangle was written")
	}
}

func TestConsoleWriteAndFlush(t *testing.T) {
	fb := newFakeFB(120, 80)
	c := NewFromFramebuffer(fb)

	if _, err := c.Write([]byte("fib(10) = 55\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := c.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if fb.presented != 1 {
		t.Fatalf("presented = %d, want 1", fb.presented)
	}

	// Glyphs must have landed in the framebuffer.
	blank := true
	for _, b := range fb.buf {
		if b != 0 {
			blank = false
			break
		}
	}
	if blank {
		t.Fatalf("framebuffer is still blank after write")
	}

	// Flush with no new output is a no-op.
	if err := c.Flush(); err != nil {
		t.Fatalf("second flush: %v", err)
	}
	if fb.presented != 1 {
		t.Fatalf("presented after idle flush = %d, want 1", fb.presented)
	}
}
