// Package display presents composed frames on a pixel panel.
// Frames are rasterized to an 8-bit grey image with golang.org/x/image
// faces; sinks convert that image to whatever the panel needs.
package display

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/sweeney/counter-console/internal/glyph"
	"github.com/sweeney/counter-console/internal/render"
)

// Sink accepts composed frames and performs the physical update.
type Sink interface {
	// Present draws f. It is called only when the frame changed.
	Present(f render.Frame) error

	// Width and Height are the panel size used for centering.
	Width() int
	Height() int

	// Close blanks the panel and releases the bus.
	Close() error
}

// RasterSink is a Sink that rasterizes as part of Present and keeps the
// result. Raster returns nil before the first frame; the image must not be
// modified by the caller.
type RasterSink interface {
	Sink
	Raster() *image.Gray
}

// Headless is a Sink with no panel. Frames still reach the status page
// through the run loop.
type Headless struct {
	W, H int
}

func (h Headless) Present(render.Frame) error { return nil }
func (h Headless) Width() int                 { return h.W }
func (h Headless) Height() int                { return h.H }
func (h Headless) Close() error               { return nil }

// Rasterize draws f as white-on-black pixels. Text Y positions are the
// vertical centre of the scaled glyph box.
func Rasterize(f render.Frame, faces *glyph.Faces) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	for _, e := range f.Elements {
		switch e := e.(type) {
		case render.Text:
			drawText(img, faces, e)
		case render.Icon:
			drawIcon(img, e)
		}
	}
	return img
}

// Lit reports whether pixel (x, y) of a rasterized frame is on.
func Lit(img *image.Gray, x, y int) bool {
	return img.GrayAt(x, y).Y >= 0x80
}

func drawText(dst *image.Gray, faces *glyph.Faces, t render.Text) {
	scale := t.Scale
	if scale < 1 {
		scale = 1
	}
	w := faces.Measure(t.Font, t.Text, 1)
	h := faces.Height(t.Font)
	if w == 0 || h == 0 {
		return
	}

	// Render unscaled into a coverage mask, then blow it up.
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: faces.Face(t.Font),
		Dot:  fixed.P(0, faces.Ascent(t.Font)),
	}
	d.DrawString(t.Text)

	top := t.Y - h*scale/2
	r := image.Rect(t.X, top, t.X+w*scale, top+h*scale)
	if scale > 1 {
		big := image.NewAlpha(image.Rect(0, 0, w*scale, h*scale))
		draw.NearestNeighbor.Scale(big, big.Bounds(), mask, mask.Bounds(), draw.Src, nil)
		mask = big
	}
	draw.DrawMask(dst, r, image.White, image.Point{}, mask, image.Point{}, draw.Over)
}

func drawIcon(dst *image.Gray, ic render.Icon) {
	for y := 0; y < render.IconSize; y++ {
		for x := 0; x < render.IconSize; x++ {
			if ic.Bitmap.Set(x, y) {
				dst.SetGray(ic.X+x, ic.Y+y, color.Gray{Y: 0xff})
			}
		}
	}
}
