//go:build cgo && !tinygo

package sim

import (
	"errors"
	"image"
	"image/draw"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/sweeney/counter-console/internal/display"
	"github.com/sweeney/counter-console/internal/glyph"
	"github.com/sweeney/counter-console/internal/gpio"
	"github.com/sweeney/counter-console/internal/logic"
	"github.com/sweeney/counter-console/internal/render"
)

// Keys maps each button to its keyboard key.
var Keys = [logic.NumButtons]ebiten.Key{
	logic.B1:         ebiten.Key1,
	logic.B2:         ebiten.Key2,
	logic.B3:         ebiten.Key3,
	logic.B4:         ebiten.Key4,
	logic.B5:         ebiten.Key5,
	logic.B6:         ebiten.Key6,
	logic.B7:         ebiten.Key7,
	logic.ButtonPage: ebiten.KeyP,
}

const windowScale = 4

// Window is the simulator. It is a display.Sink; Buttons and Battery
// expose its inputs. Run must be called from the main goroutine.
type Window struct {
	width, height int
	faces         *glyph.Faces
	knob          *Knob

	mu     sync.Mutex
	levels gpio.Levels
	frame  *image.RGBA
	last   *image.Gray
	closed bool

	screen *ebiten.Image
}

var _ display.RasterSink = (*Window)(nil)

// NewWindow creates a simulator for a panel of the given size with the
// battery knob at volts.
func NewWindow(width, height int, faces *glyph.Faces, volts float64) (*Window, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("sim: invalid panel size")
	}
	return &Window{
		width:  width,
		height: height,
		faces:  faces,
		knob:   NewKnob(volts),
		levels: gpio.AllReleased(),
		frame:  image.NewRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

// Run opens the window and blocks until it is closed.
func (w *Window) Run() error {
	ebiten.SetWindowTitle("Counter Console")
	ebiten.SetWindowSize(w.width*windowScale, w.height*windowScale)
	ebiten.SetTPS(100)
	return ebiten.RunGame(w)
}

// Buttons returns the keyboard as a button reader.
func (w *Window) Buttons() gpio.Reader { return buttons{w} }

// Battery returns the voltage knob as an analog input.
func (w *Window) Battery() *Knob { return w.knob }

// Update implements ebiten.Game.
func (w *Window) Update() error {
	var levels gpio.Levels
	for b, key := range Keys {
		levels[b] = !ebiten.IsKeyPressed(key)
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		w.knob.Turn(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		w.knob.Turn(-1)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.levels = levels
	if w.closed {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (w *Window) Draw(screen *ebiten.Image) {
	if w.screen == nil {
		w.screen = ebiten.NewImage(w.width, w.height)
	}
	w.mu.Lock()
	w.screen.WritePixels(w.frame.Pix)
	w.mu.Unlock()
	screen.DrawImage(w.screen, nil)
}

// Layout implements ebiten.Game.
func (w *Window) Layout(_, _ int) (int, int) {
	return w.width, w.height
}

// Present rasterizes f into the window buffer.
func (w *Window) Present(f render.Frame) error {
	img := display.Rasterize(f, w.faces)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.New("sim: window closed")
	}
	draw.Draw(w.frame, w.frame.Bounds(), img, image.Point{}, draw.Src)
	w.last = img
	return nil
}

// Raster returns the image of the last presented frame.
func (w *Window) Raster() *image.Gray {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

func (w *Window) Width() int  { return w.width }
func (w *Window) Height() int { return w.height }

// Close ends Run on the next update.
func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

type buttons struct{ w *Window }

func (b buttons) Read() (gpio.Levels, error) {
	b.w.mu.Lock()
	defer b.w.mu.Unlock()
	return b.w.levels, nil
}

func (b buttons) Close() error { return nil }
