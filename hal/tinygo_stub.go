//go:build tinygo && !pyportal

package hal

import "tinygo.org/x/tinyterm"

func InitDisplay() (tinyterm.Displayer, error) {
	return nil, ErrNotImplemented
}
