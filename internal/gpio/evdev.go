//go:build linux && !tinygo

package gpio

import (
	"fmt"

	"github.com/holoplot/go-evdev"

	"github.com/sweeney/counter-console/internal/logic"
)

// EvdevKeys maps buttons to keyboard keys: 1-7 for B1..B7 and P for PAGE.
var EvdevKeys = [logic.NumButtons]evdev.EvCode{
	logic.B1:         evdev.KEY_1,
	logic.B2:         evdev.KEY_2,
	logic.B3:         evdev.KEY_3,
	logic.B4:         evdev.KEY_4,
	logic.B5:         evdev.KEY_5,
	logic.B6:         evdev.KEY_6,
	logic.B7:         evdev.KEY_7,
	logic.ButtonPage: evdev.KEY_P,
}

// EvdevReader polls the key state of an input device, so a USB keypad can
// stand in for the button board.
type EvdevReader struct {
	dev *evdev.InputDevice
}

// NewEvdevReader opens the input device at path (e.g. /dev/input/event0).
func NewEvdevReader(path string) (*EvdevReader, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input device %s: %w", path, err)
	}
	return &EvdevReader{dev: dev}, nil
}

// Read returns held keys as low levels.
func (r *EvdevReader) Read() (Levels, error) {
	state, err := r.dev.State(evdev.EV_KEY)
	if err != nil {
		return AllReleased(), fmt.Errorf("read key state: %w", err)
	}
	return levelsFromKeys(state), nil
}

// Close releases the input device.
func (r *EvdevReader) Close() error {
	if err := r.dev.Close(); err != nil {
		return fmt.Errorf("close input device: %w", err)
	}
	return nil
}

func levelsFromKeys(held map[evdev.EvCode]bool) Levels {
	l := AllReleased()
	for b, code := range EvdevKeys {
		if held[code] {
			l[b] = false
		}
	}
	return l
}
