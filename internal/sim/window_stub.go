//go:build !cgo && !tinygo

package sim

import (
	"errors"
	"image"

	"github.com/sweeney/counter-console/internal/glyph"
	"github.com/sweeney/counter-console/internal/gpio"
	"github.com/sweeney/counter-console/internal/render"
)

// Window is unavailable without cgo.
type Window struct{}

// NewWindow returns an error on builds without cgo.
func NewWindow(width, height int, faces *glyph.Faces, volts float64) (*Window, error) {
	return nil, errors.New("sim: simulator requires a cgo build")
}

func (w *Window) Run() error                   { return errors.New("sim: not supported") }
func (w *Window) Buttons() gpio.Reader         { return nil }
func (w *Window) Battery() *Knob               { return nil }
func (w *Window) Present(f render.Frame) error { return errors.New("sim: not supported") }
func (w *Window) Width() int                   { return 0 }
func (w *Window) Height() int                  { return 0 }
func (w *Window) Raster() *image.Gray          { return nil }
func (w *Window) Close() error                 { return nil }
