// Package sim runs the console in a desktop window. Number keys 1-7 and P
// stand in for the buttons, the arrow keys turn a battery voltage knob and
// the window shows the panel.
package sim

import (
	"math"
	"sync"

	"github.com/sweeney/counter-console/internal/adc"
	"github.com/sweeney/counter-console/internal/logic"
)

// Knob limits, in battery volts.
const (
	KnobStep = 0.05
	KnobMin  = 0.0
	KnobMax  = 2 * logic.ReferenceVoltage
)

// Knob is a simulated battery whose voltage is turned in fixed steps.
// It is safe for concurrent use.
type Knob struct {
	mu    sync.Mutex
	volts float64
}

// NewKnob returns a knob set to volts, clamped to the knob range.
func NewKnob(volts float64) *Knob {
	return &Knob{volts: clampVolts(volts)}
}

// Turn moves the knob by steps (negative turns down) and returns the new voltage.
func (k *Knob) Turn(steps int) float64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.volts = clampVolts(k.volts + float64(steps)*KnobStep)
	return k.volts
}

// Volts returns the current battery voltage.
func (k *Knob) Volts() float64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.volts
}

// Read returns the voltage as seen by the ADC behind the divider.
func (k *Knob) Read() (int, error) {
	return adc.RawFromPinVoltage(k.Volts() / logic.DividerFactor), nil
}

func (k *Knob) Max() int     { return adc.MaxRaw }
func (k *Knob) Close() error { return nil }

func clampVolts(v float64) float64 {
	// Round to the step grid so repeated turns do not drift.
	v = math.Round(v/KnobStep) * KnobStep
	return min(max(v, KnobMin), KnobMax)
}
