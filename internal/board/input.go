//go:build tinygo

package board

import (
	"machine"

	"github.com/sweeney/counter-console/internal/gpio"
	"github.com/sweeney/counter-console/internal/logic"
)

// ButtonPins is the Feather wiring, in logic.Buttons order.
var ButtonPins = [logic.NumButtons]machine.Pin{
	logic.B1:         machine.D5,
	logic.B2:         machine.D6,
	logic.B3:         machine.D9,
	logic.B4:         machine.D10,
	logic.B5:         machine.D11,
	logic.B6:         machine.D12,
	logic.B7:         machine.D13,
	logic.ButtonPage: machine.D4,
}

// BatteryPin is the analog input behind the 2:1 divider.
const BatteryPin = machine.A3

// Buttons reads the button pins. It implements gpio.Reader.
type Buttons struct {
	pins [logic.NumButtons]machine.Pin
}

var _ gpio.Reader = (*Buttons)(nil)

// NewButtons configures every button pin as an input with pull-up.
func NewButtons() *Buttons {
	b := &Buttons{pins: ButtonPins}
	for _, p := range b.pins {
		p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}
	return b
}

// Read returns the pin levels. It never fails.
func (b *Buttons) Read() (gpio.Levels, error) {
	var l gpio.Levels
	for i, p := range b.pins {
		l[i] = p.Get()
	}
	return l, nil
}

func (b *Buttons) Close() error { return nil }

// Battery samples the battery divider. machine.ADC readings are scaled to
// 16 bits whatever the converter's native resolution.
type Battery struct {
	adc machine.ADC
}

var _ logic.AnalogInput = (*Battery)(nil)

// NewBattery initialises the ADC and configures BatteryPin.
func NewBattery() *Battery {
	machine.InitADC()
	a := machine.ADC{Pin: BatteryPin}
	a.Configure(machine.ADCConfig{})
	return &Battery{adc: a}
}

func (b *Battery) Read() (int, error) { return int(b.adc.Get()), nil }
func (b *Battery) Max() int           { return 0xffff }
