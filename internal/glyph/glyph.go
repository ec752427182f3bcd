// Package glyph supplies the two console typefaces from golang.org/x/image
// and measures text with them.
package glyph

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/inconsolata"

	"github.com/sweeney/counter-console/internal/render"
)

var _ render.Metrics = (*Faces)(nil)

// Faces maps render fonts to bitmap font faces. It implements
// render.Metrics.
type Faces struct {
	small font.Face
	large font.Face
}

// Default returns the stock faces: a 7×13 face for the carousel and a bold
// 8×16 face for headings and values.
func Default() *Faces {
	return New(basicfont.Face7x13, inconsolata.Bold8x16)
}

// New builds Faces from arbitrary faces.
func New(small, large font.Face) *Faces {
	return &Faces{small: small, large: large}
}

// Face returns the face behind f.
func (fc *Faces) Face(f render.Font) font.Face {
	if f == render.FontLarge {
		return fc.large
	}
	return fc.small
}

// Measure returns the advance width of text in pixels at the given scale.
func (fc *Faces) Measure(f render.Font, text string, scale int) int {
	if scale < 1 {
		scale = 1
	}
	return font.MeasureString(fc.Face(f), text).Round() * scale
}

// Height returns the line height of f in pixels, unscaled.
func (fc *Faces) Height(f render.Font) int {
	m := fc.Face(f).Metrics()
	return (m.Ascent + m.Descent).Round()
}

// Ascent returns the distance from the top of the glyph box to the
// baseline, unscaled.
func (fc *Faces) Ascent(f render.Font) int {
	return fc.Face(f).Metrics().Ascent.Round()
}
