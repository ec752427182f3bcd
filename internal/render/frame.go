// Package render composes display frames from the console state.
// Layout math goes through the Metrics capability, so the package has no
// dependency on a concrete font or panel.
package render

// Font selects one of the two typefaces of the console.
type Font uint8

const (
	// FontSmall is the carousel font.
	FontSmall Font = iota
	// FontLarge is the page heading and value font.
	FontLarge
)

func (f Font) String() string {
	if f == FontLarge {
		return "large"
	}
	return "small"
}

// Metrics measures text for layout.
type Metrics interface {
	// Measure returns the pixel width of text in font f drawn at scale.
	Measure(f Font, text string, scale int) int
}

// Element is a positioned primitive of a frame.
type Element interface {
	element()
}

// Text is a run of text. X is the left edge; Y is the vertical centre of
// the glyph box.
type Text struct {
	Font  Font
	Text  string
	X, Y  int
	Scale int
}

// Icon is a 1-bit bitmap with its top-left corner at X, Y.
type Icon struct {
	X, Y   int
	Bitmap Bitmap
}

func (Text) element() {}
func (Icon) element() {}

// IconSize is the edge length of the warning icon.
const IconSize = 10

// Bitmap is a 10×10 monochrome image; bit x of row y is pixel (x, y).
type Bitmap [IconSize]uint16

// Set reports whether pixel (x, y) is lit.
func (b Bitmap) Set(x, y int) bool {
	if x < 0 || y < 0 || x >= IconSize || y >= IconSize {
		return false
	}
	return b[y]&(1<<uint(x)) != 0
}

// LowBatteryIcon is a battery outline struck through by the diagonal.
var LowBatteryIcon = func() Bitmap {
	var b Bitmap
	set := func(x, y int) { b[y] |= 1 << uint(x) }
	for x := 2; x <= 8; x++ {
		set(x, 1)
		set(x, 8)
	}
	for y := 2; y <= 7; y++ {
		set(2, y)
		set(8, y)
	}
	for i := 0; i < IconSize; i++ {
		set(i, i)
	}
	return b
}()

// Frame is the ordered list of primitives for one display update.
type Frame struct {
	Width    int
	Height   int
	Elements []Element
}

// Texts returns the text elements in draw order.
func (f Frame) Texts() []Text {
	var out []Text
	for _, e := range f.Elements {
		if t, ok := e.(Text); ok {
			out = append(out, t)
		}
	}
	return out
}

// Icons returns the icon elements in draw order.
func (f Frame) Icons() []Icon {
	var out []Icon
	for _, e := range f.Elements {
		if i, ok := e.(Icon); ok {
			out = append(out, i)
		}
	}
	return out
}
