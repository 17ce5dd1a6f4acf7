//go:build tinygo && pyportal

package hal

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ili9341"
	"tinygo.org/x/tinyterm"
)

// InitDisplay brings up the PyPortal's parallel ILI9341 panel and returns it
// ready for drawing.
func InitDisplay() (tinyterm.Displayer, error) {
	display := ili9341.NewParallel(
		machine.LCD_DATA0,
		machine.TFT_WR,
		machine.TFT_DC,
		machine.TFT_CS,
		machine.TFT_RESET,
		machine.TFT_RD,
	)

	machine.TFT_BACKLIGHT.Configure(machine.PinConfig{Mode: machine.PinOutput})

	display.Configure(ili9341.Config{})
	display.SetRotation(ili9341.Rotation270)
	display.FillScreen(color.RGBA{A: 255})
	machine.TFT_BACKLIGHT.High()

	return display, nil
}
