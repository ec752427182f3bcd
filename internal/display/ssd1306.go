//go:build !tinygo

package display

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/sweeney/counter-console/internal/glyph"
	"github.com/sweeney/counter-console/internal/render"
)

// SSD1306Sink drives an SSD1306 OLED panel over I²C.
type SSD1306Sink struct {
	bus   i2c.BusCloser
	dev   *ssd1306.Dev
	faces *glyph.Faces
	img   *image1bit.VerticalLSB
	last  *image.Gray
}

// NewSSD1306Sink opens the named I²C bus ("" for the first one) and
// initialises a w×h panel.
func NewSSD1306Sink(busName string, w, h int, faces *glyph.Faces) (*SSD1306Sink, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}

	opts := ssd1306.DefaultOpts
	opts.W, opts.H = w, h
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("init ssd1306: %w", err)
	}

	return &SSD1306Sink{
		bus:   bus,
		dev:   dev,
		faces: faces,
		img:   image1bit.NewVerticalLSB(dev.Bounds()),
	}, nil
}

// Present rasterizes f and pushes the whole buffer to the panel.
func (s *SSD1306Sink) Present(f render.Frame) error {
	gray := Rasterize(f, s.faces)
	s.last = gray
	draw.Draw(s.img, s.img.Bounds(), gray, image.Point{}, draw.Src)
	if err := s.dev.Draw(s.dev.Bounds(), s.img, image.Point{}); err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	return nil
}

// Raster returns the image of the last presented frame.
func (s *SSD1306Sink) Raster() *image.Gray { return s.last }

func (s *SSD1306Sink) Width() int  { return s.dev.Bounds().Dx() }
func (s *SSD1306Sink) Height() int { return s.dev.Bounds().Dy() }

// Close blanks the panel and closes the bus.
func (s *SSD1306Sink) Close() error {
	var errs []error
	if err := s.dev.Halt(); err != nil {
		errs = append(errs, fmt.Errorf("halt display: %w", err))
	}
	if err := s.bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close i2c bus: %w", err))
	}
	return errors.Join(errs...)
}
