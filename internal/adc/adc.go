// Package adc samples the battery voltage input.
// Readings are normalised to a 16-bit raw scale against the 3.3V
// reference, so the console's conversion is the same on every board.
package adc

import (
	"errors"
	"math"

	"github.com/sweeney/counter-console/internal/logic"
)

// MaxRaw is the full-scale raw reading.
const MaxRaw = 65535

// Reader is a logic.AnalogInput that owns a device.
type Reader interface {
	logic.AnalogInput

	// Close releases the device.
	Close() error
}

// RawFromPinVoltage converts a voltage at the ADC pin to the raw scale,
// clamped to [0, MaxRaw].
func RawFromPinVoltage(v float64) int {
	raw := int(math.Round(v / logic.ReferenceVoltage * MaxRaw))
	return min(max(raw, 0), MaxRaw)
}

// Fixed always reports the same battery voltage. It stands in when no
// ADC is fitted.
type Fixed struct {
	raw int
}

// NewFixed returns a Fixed reader for a battery at volts.
func NewFixed(volts float64) *Fixed {
	return &Fixed{raw: RawFromPinVoltage(volts / logic.DividerFactor)}
}

func (f *Fixed) Read() (int, error) { return f.raw, nil }
func (f *Fixed) Max() int           { return MaxRaw }
func (f *Fixed) Close() error       { return nil }

// FakeReader is a test double that returns scripted raw samples.
type FakeReader struct {
	// Samples contains scripted raw values.
	// Each call to Read() consumes the next sample.
	Samples []int

	// MaxRaw is reported by Max; zero means the package MaxRaw.
	MaxRaw int

	index int

	// ReadError, if set, will be returned by Read()
	ReadError error

	Closed bool
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples ...int) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample, repeating the last one.
func (f *FakeReader) Read() (int, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}
	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s, nil
}

// Max returns the scripted full-scale value.
func (f *FakeReader) Max() int {
	if f.MaxRaw == 0 {
		return MaxRaw
	}
	return f.MaxRaw
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}
