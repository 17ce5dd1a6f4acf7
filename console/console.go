// Package console renders guest UART output as a text terminal on a
// display. The host build draws into a HAL framebuffer; the hardware build
// draws straight onto the board LCD.
package console

import (
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

// Console is a write-only text terminal. Write buffers glyphs; Flush pushes
// them to the underlying display.
type Console struct {
	disp  tinyterm.Displayer
	term  *tinyterm.Terminal
	dirty bool
}

// New builds a console on any tinyterm Displayer (an LCD driver, or the
// framebuffer adapter from NewFromFramebuffer).
func New(disp tinyterm.Displayer) *Console {
	c := &Console{disp: disp}
	c.reset()
	return c
}

func (c *Console) reset() {
	c.term = tinyterm.NewTerminal(c.disp)
	c.term.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        10,
		FontOffset:        6,
		UseSoftwareScroll: true,
	})
}

func (c *Console) Write(p []byte) (int, error) {
	n, err := c.term.Write(p)
	if n > 0 {
		c.dirty = true
	}
	return n, err
}

// Flush presents pending output. It is cheap to call when nothing changed.
func (c *Console) Flush() error {
	if !c.dirty {
		return nil
	}
	c.dirty = false
	c.term.Display()
	return nil
}
