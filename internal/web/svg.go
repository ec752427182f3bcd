package web

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/sweeney/counter-console/internal/glyph"
	"github.com/sweeney/counter-console/internal/render"
)

// writeSVG draws f as vector elements: text runs keep their layout
// position and the icon becomes one square per lit pixel.
func writeSVG(w io.Writer, f render.Frame, faces *glyph.Faces) {
	canvas := svg.New(w)
	canvas.Start(f.Width, f.Height)
	canvas.Rect(0, 0, f.Width, f.Height, "fill:black")

	for _, e := range f.Elements {
		switch e := e.(type) {
		case render.Text:
			size := faces.Height(e.Font) * max(e.Scale, 1)
			style := fmt.Sprintf("fill:white;font-family:monospace;font-size:%dpx;dominant-baseline:central", size)
			canvas.Text(e.X, e.Y, e.Text, style)
		case render.Icon:
			canvas.Group("fill:white")
			for y := 0; y < render.IconSize; y++ {
				for x := 0; x < render.IconSize; x++ {
					if e.Bitmap.Set(x, y) {
						canvas.Rect(e.X+x, e.Y+y, 1, 1)
					}
				}
			}
			canvas.Gend()
		}
	}
	canvas.End()
}
