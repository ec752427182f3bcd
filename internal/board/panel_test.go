//go:build tinygo

package board

import (
	"image/color"
	"testing"
)

type pixel struct{ x, y int16 }

// grid is an in-memory drivers.Displayer.
type grid struct {
	w, h int16
	lit  map[pixel]bool
}

func newGrid(w, h int16) *grid {
	return &grid{w: w, h: h, lit: map[pixel]bool{}}
}

func (g *grid) Size() (int16, int16) { return g.w, g.h }
func (g *grid) Display() error       { return nil }

func (g *grid) SetPixel(x, y int16, _ color.RGBA) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		panic("pixel outside display")
	}
	g.lit[pixel{x, y}] = true
}

func TestScaledDrawsBlocks(t *testing.T) {
	g := newGrid(PanelWidth, PanelHeight)
	s := &scaled{dev: g, scale: 2, ox: 10, oy: 20}

	s.SetPixel(1, 1, white)

	want := []pixel{{12, 22}, {13, 22}, {12, 23}, {13, 23}}
	if len(g.lit) != len(want) {
		t.Fatalf("lit %d pixels, want %d", len(g.lit), len(want))
	}
	for _, p := range want {
		if !g.lit[p] {
			t.Errorf("pixel %v not lit", p)
		}
	}
}

func TestScaledClipsToDisplay(t *testing.T) {
	g := newGrid(PanelWidth, PanelHeight)
	s := &scaled{dev: g, scale: 2, ox: PanelWidth - 1, oy: -1}

	s.SetPixel(0, 0, white)

	if len(g.lit) != 1 || !g.lit[pixel{PanelWidth - 1, 0}] {
		t.Errorf("expected only the in-bounds corner lit, got %v", g.lit)
	}
}

func TestScaledSize(t *testing.T) {
	s := &scaled{dev: newGrid(PanelWidth, PanelHeight), scale: 3}
	if w, h := s.Size(); w != PanelWidth || h != PanelHeight {
		t.Errorf("size: got %dx%d", w, h)
	}
}
