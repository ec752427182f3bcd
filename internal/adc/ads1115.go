//go:build !tinygo

package adc

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"
)

// ADS1115Reader samples one single-ended channel of an ADS1115 over I²C.
type ADS1115Reader struct {
	bus i2c.BusCloser
	dev *ads1x15.Dev
	pin ads1x15.PinADC
}

// Channels lists the single-ended inputs by index.
var Channels = [4]ads1x15.Channel{ads1x15.Channel0, ads1x15.Channel1, ads1x15.Channel2, ads1x15.Channel3}

// NewADS1115Reader opens busName ("" for the first bus) and configures
// channel (0-3) of the converter at addr.
func NewADS1115Reader(busName string, addr uint16, channel int) (*ADS1115Reader, error) {
	if channel < 0 || channel >= len(Channels) {
		return nil, fmt.Errorf("ads1115 channel %d out of range", channel)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}

	opts := ads1x15.DefaultOpts
	opts.I2cAddress = addr
	dev, err := ads1x15.NewADS1115(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("init ads1115: %w", err)
	}

	// Full scale just above the reference so a charged pack still reads.
	maxV := 4096 * physic.MilliVolt
	pin, err := dev.PinForChannel(Channels[channel], maxV, 1*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("configure ads1115 channel %d: %w", channel, err)
	}

	return &ADS1115Reader{bus: bus, dev: dev, pin: pin}, nil
}

// Read samples the channel and returns it on the 16-bit raw scale.
func (r *ADS1115Reader) Read() (int, error) {
	s, err := r.pin.Read()
	if err != nil {
		return 0, fmt.Errorf("read ads1115: %w", err)
	}
	return RawFromPinVoltage(float64(s.V) / float64(physic.Volt)), nil
}

// Max returns the full-scale raw reading.
func (r *ADS1115Reader) Max() int {
	return MaxRaw
}

// Close stops conversions and closes the bus.
func (r *ADS1115Reader) Close() error {
	var errs []error
	if err := r.pin.Halt(); err != nil {
		errs = append(errs, fmt.Errorf("halt ads1115 pin: %w", err))
	}
	if err := r.bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close i2c bus: %w", err))
	}
	return errors.Join(errs...)
}
