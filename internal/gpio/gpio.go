// Package gpio provides button input reading with hardware abstraction.
// The real implementation uses the Linux GPIO character device; the evdev
// implementation maps keyboard keys onto buttons. The fake implementation
// allows testing without hardware.
package gpio

import "github.com/sweeney/counter-console/internal/logic"

// Levels holds one raw level per button in logic.Buttons order.
// true = pulled high (released), false = pulled low (pressed).
type Levels = [logic.NumButtons]bool

// Reader reads raw button levels. Debouncing is not done here.
type Reader interface {
	// Read returns the current level of every button.
	Read() (Levels, error)

	// Close releases input resources.
	Close() error
}

// Pins maps each button to a line offset (BCM numbering).
type Pins [logic.NumButtons]int

// DefaultPins is the stock wiring.
var DefaultPins = Pins{
	logic.B1:         5,
	logic.B2:         6,
	logic.B3:         13,
	logic.B4:         19,
	logic.B5:         26,
	logic.B6:         12,
	logic.B7:         16,
	logic.ButtonPage: 4,
}

// AllReleased returns the levels of an idle keypad.
func AllReleased() Levels {
	var l Levels
	for i := range l {
		l[i] = true
	}
	return l
}
