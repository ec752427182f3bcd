//go:build tinygo

package board

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyfont/proggy"

	"github.com/sweeney/counter-console/internal/render"
)

// Panel geometry and bus address.
const (
	PanelWidth   = 128
	PanelHeight  = 64
	PanelAddress = 0x3C
)

var white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Fonts are the two tinyfont faces of the console.
type Fonts struct {
	Small, Large tinyfont.Fonter
}

// DefaultFonts returns proggy for the carousel and bold FreeMono for headings.
func DefaultFonts() Fonts {
	return Fonts{Small: &proggy.TinySZ8pt7b, Large: &freemono.Bold9pt7b}
}

func (f Fonts) face(font render.Font) tinyfont.Fonter {
	if font == render.FontLarge {
		return f.Large
	}
	return f.Small
}

// Measure implements render.Metrics.
func (f Fonts) Measure(font render.Font, text string, scale int) int {
	_, w := tinyfont.LineWidth(f.face(font), text)
	return int(w) * max(scale, 1)
}

// ascent is the height of a capital above the baseline.
func ascent(f tinyfont.Fonter) int {
	return -int(f.GetGlyph('M').Info().YOffset)
}

// Panel is the SSD1306 on I2C0. It implements the display sink contract
// without the host rasterizer.
type Panel struct {
	dev   *ssd1306.Device
	fonts Fonts
}

// NewPanel configures I2C0 and the display controller.
func NewPanel(fonts Fonts) *Panel {
	machine.I2C0.Configure(machine.I2CConfig{Frequency: 400 * machine.KHz})
	p := &Panel{dev: ssd1306.NewI2C(machine.I2C0), fonts: fonts}
	p.dev.Configure(ssd1306.Config{
		Address: PanelAddress,
		Width:   PanelWidth,
		Height:  PanelHeight,
	})
	p.dev.ClearDisplay()
	return p
}

// Present clears the buffer, draws every element of f and flushes it.
func (p *Panel) Present(f render.Frame) error {
	p.dev.ClearBuffer()
	for _, e := range f.Elements {
		switch e := e.(type) {
		case render.Text:
			p.drawText(e)
		case render.Icon:
			for y := 0; y < render.IconSize; y++ {
				for x := 0; x < render.IconSize; x++ {
					if e.Bitmap.Set(x, y) {
						p.dev.SetPixel(int16(e.X+x), int16(e.Y+y), white)
					}
				}
			}
		}
	}
	return p.dev.Display()
}

func (p *Panel) drawText(t render.Text) {
	face := p.fonts.face(t.Font)
	scale := max(t.Scale, 1)
	top := t.Y - int(face.GetYAdvance())*scale/2
	target := &scaled{dev: p.dev, scale: int16(scale), ox: int16(t.X), oy: int16(top)}
	tinyfont.WriteLine(target, face, 0, int16(ascent(face)), t.Text, white)
}

func (p *Panel) Width() int  { return PanelWidth }
func (p *Panel) Height() int { return PanelHeight }

// Close blanks the panel.
func (p *Panel) Close() error {
	p.dev.ClearBuffer()
	return p.dev.Display()
}

var _ drivers.Displayer = (*ssd1306.Device)(nil)

// scaled draws each font pixel as a scale×scale block at an offset,
// clipped to the underlying display.
type scaled struct {
	dev    drivers.Displayer
	scale  int16
	ox, oy int16
}

func (s *scaled) Size() (int16, int16) { return s.dev.Size() }
func (s *scaled) Display() error       { return nil }

func (s *scaled) SetPixel(x, y int16, c color.RGBA) {
	w, h := s.dev.Size()
	for dy := int16(0); dy < s.scale; dy++ {
		for dx := int16(0); dx < s.scale; dx++ {
			px, py := s.ox+x*s.scale+dx, s.oy+y*s.scale+dy
			if px < 0 || py < 0 || px >= w || py >= h {
				continue
			}
			s.dev.SetPixel(px, py, c)
		}
	}
}
