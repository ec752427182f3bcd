package render

import (
	"fmt"
	"strconv"

	"github.com/sweeney/counter-console/internal/logic"
)

// Layout of the 128×64 panel. Y values are text centre lines.
const (
	browseTop  = 10
	browseStep = 15

	headingY     = 5
	valueY       = 30
	cmdValueY    = 40
	infectValueY = 25
	infectFullX  = 55
	captionY     = 50

	iconRightInset = 12
	iconY          = 2
)

// Source is the state a Composer draws from. *logic.Console implements it.
type Source interface {
	Dirty() bool
	ClearDirty()
	View() logic.View
}

// Composer turns console state into frames.
type Composer struct {
	metrics Metrics
	width   int
	height  int
	built   int
}

// NewComposer creates a composer for a display of the given size.
func NewComposer(m Metrics, width, height int) *Composer {
	return &Composer{metrics: m, width: width, height: height}
}

// Render returns a new frame and clears the dirty flag when src is dirty.
// When src is clean it does nothing and returns ok == false.
func (c *Composer) Render(src Source) (f Frame, ok bool) {
	if !src.Dirty() {
		return Frame{}, false
	}
	f = c.Compose(src.View())
	src.ClearDirty()
	return f, true
}

// Built returns the number of frames composed so far.
func (c *Composer) Built() int {
	return c.built
}

// Compose builds the frame for v unconditionally.
func (c *Composer) Compose(v logic.View) Frame {
	c.built++
	f := Frame{Width: c.width, Height: c.height}

	if v.Mode == logic.ModeBrowse {
		f.Elements = c.browse(v.Index)
	} else {
		f.Elements = c.detail(v)
	}

	if v.ShowIcon() {
		f.Elements = append(f.Elements, Icon{
			X:      c.width - iconRightInset,
			Y:      iconY,
			Bitmap: LowBatteryIcon,
		})
	}
	return f
}

func (c *Composer) browse(index int) []Element {
	out := make([]Element, 0, logic.PageCount)
	for i := 0; i < logic.PageCount; i++ {
		page := logic.Pages[(index+i)%logic.PageCount]
		out = append(out, c.centered(FontSmall, page.Label(), browseTop+i*browseStep, 1))
	}
	return out
}

func (c *Composer) detail(v logic.View) []Element {
	n := v.Counters
	switch v.Page {
	case logic.PageJoules:
		return []Element{
			c.centered(FontLarge, "Joules", headingY, 1),
			c.centered(FontLarge, FormatCounter(n.Joules), valueY, 2),
		}

	case logic.PageCmd:
		return c.columns([3]int{n.Cmd1, n.Cmd2, n.Cmd3})

	case logic.PageInfect:
		if n.Infect < logic.InfectMax {
			return []Element{
				c.centered(FontLarge, "TOXIC", headingY, 1),
				c.centered(FontLarge, strconv.Itoa(n.Infect), infectValueY, 2),
			}
		}
		value := c.centered(FontLarge, strconv.Itoa(n.Infect), infectValueY, 1)
		value.X = infectFullX
		return []Element{
			c.centered(FontLarge, "TOXIC", headingY, 1),
			value,
			c.centered(FontLarge, "COMPLEATED", captionY, 1),
		}

	case logic.PageSpeed:
		heading := "Speed"
		if n.Speed >= logic.SpeedMax {
			heading = "MAX SPEED"
		}
		return []Element{
			c.centered(FontLarge, heading, headingY, 1),
			c.centered(FontLarge, strconv.Itoa(n.Speed), valueY, 2),
		}

	case logic.PageBattery:
		return []Element{
			c.centered(FontLarge, "Battery", headingY, 1),
			c.centered(FontLarge, logic.FormatVoltage(v.Voltage), valueY, 2),
		}
	}
	return nil
}

// columns lays out the three CMD counters, each centred in its third of
// the display.
func (c *Composer) columns(values [3]int) []Element {
	colWidth := c.width / 3
	out := make([]Element, 0, 6)
	for i, heading := range []string{"1", "2", "3"} {
		out = append(out, c.inColumn(i, colWidth, heading, headingY))
	}
	for i, v := range values {
		out = append(out, c.inColumn(i, colWidth, FormatCounter(v), cmdValueY))
	}
	return out
}

func (c *Composer) inColumn(col, colWidth int, text string, y int) Text {
	center := col*colWidth + colWidth/2
	w := c.metrics.Measure(FontLarge, text, 1)
	return Text{Font: FontLarge, Text: text, X: center - w/2, Y: y, Scale: 1}
}

// centered places text horizontally centred on the display. Go integer
// division truncates toward zero, which is the required rounding.
func (c *Composer) centered(f Font, text string, y, scale int) Text {
	w := c.metrics.Measure(f, text, scale)
	return Text{Font: f, Text: text, X: (c.width - w) / 2, Y: y, Scale: scale}
}

// FormatCounter renders a counter with at least two digits.
func FormatCounter(n int) string {
	return fmt.Sprintf("%02d", n)
}
