package logic

import (
	"fmt"
	"time"
)

// Battery divider constants: the pack voltage is halved before it reaches
// the ADC, which measures against ReferenceVoltage.
const (
	ReferenceVoltage = 3.3
	DividerFactor    = 2.0
)

// AnalogInput is a raw sampling source for the battery voltage.
type AnalogInput interface {
	// Read returns a raw sample in [0, Max()].
	Read() (int, error)
	// Max returns the full-scale raw reading.
	Max() int
}

// Voltage converts a raw ADC sample to the battery voltage.
func Voltage(raw, maxRaw int) float64 {
	if maxRaw <= 0 {
		return 0
	}
	return float64(raw) / float64(maxRaw) * ReferenceVoltage * DividerFactor
}

// ReadVoltage samples in once and converts the reading to volts.
func ReadVoltage(in AnalogInput) (float64, error) {
	raw, err := in.Read()
	if err != nil {
		return 0, err
	}
	return Voltage(raw, in.Max()), nil
}

// FormatVoltage renders a voltage the way the battery page shows it.
func FormatVoltage(v float64) string {
	return fmt.Sprintf("%.2fV", v)
}

// FlashState is the phase of the low-battery warning icon.
type FlashState struct {
	On         bool
	LastToggle time.Time
}

// BatteryMonitor drives the low-battery flash.
type BatteryMonitor struct {
	interval  time.Duration
	threshold float64
	state     FlashState
}

// NewBatteryMonitor creates a monitor whose flash timer starts at start.
func NewBatteryMonitor(interval time.Duration, threshold float64, start time.Time) *BatteryMonitor {
	return &BatteryMonitor{
		interval:  interval,
		threshold: threshold,
		state:     FlashState{LastToggle: start},
	}
}

// Low reports whether voltage is under the low-battery threshold.
func (m *BatteryMonitor) Low(voltage float64) bool {
	return voltage < m.threshold
}

// Tick flips the flash phase when the battery is low and the flash
// interval has elapsed. It reports whether the phase changed.
// Above the threshold the state is left alone: the phase and the timer
// freeze instead of resetting.
func (m *BatteryMonitor) Tick(voltage float64, now time.Time) bool {
	if !m.Low(voltage) {
		return false
	}
	if now.Sub(m.state.LastToggle) < m.interval {
		return false
	}
	m.state.On = !m.state.On
	m.state.LastToggle = now
	return true
}

// ShowIcon reports whether the warning icon is drawn for voltage.
func (m *BatteryMonitor) ShowIcon(voltage float64) bool {
	return m.Low(voltage) && m.state.On
}

// State returns the current flash state.
func (m *BatteryMonitor) State() FlashState {
	return m.state
}
