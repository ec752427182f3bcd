package display

import (
	"errors"
	"image"

	"github.com/sweeney/counter-console/internal/glyph"
	"github.com/sweeney/counter-console/internal/render"
)

// FakeSink is a test double that records presented frames.
type FakeSink struct {
	W, H int

	// Frames contains every presented frame in order.
	Frames []render.Frame

	// Faces, if set, makes Present rasterize into Last.
	Faces *glyph.Faces
	Last  *image.Gray

	// PresentError, if set, will be returned by Present.
	PresentError error

	Closed bool
}

// NewFakeSink creates a FakeSink of the given size.
func NewFakeSink(w, h int) *FakeSink {
	return &FakeSink{W: w, H: h}
}

// Present records f.
func (s *FakeSink) Present(f render.Frame) error {
	if s.Closed {
		return errors.New("display closed")
	}
	s.Frames = append(s.Frames, f)
	if s.Faces != nil {
		s.Last = Rasterize(f, s.Faces)
	}
	return s.PresentError
}

// Raster returns Last.
func (s *FakeSink) Raster() *image.Gray { return s.Last }

func (s *FakeSink) Width() int  { return s.W }
func (s *FakeSink) Height() int { return s.H }

// Close marks the sink as closed.
func (s *FakeSink) Close() error {
	s.Closed = true
	return nil
}
