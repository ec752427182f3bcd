// Package config loads the console configuration from an optional YAML
// file layered over compiled defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/counter-console/internal/logic"
)

// Input sources.
const (
	InputGPIO  = "gpio"
	InputEvdev = "evdev"
	InputSim   = "sim"
)

// Config is the complete runtime configuration.
type Config struct {
	Input   string        `yaml:"input"`
	Pins    PinsConfig    `yaml:"pins"`
	Evdev   EvdevConfig   `yaml:"evdev"`
	Display DisplayConfig `yaml:"display"`
	ADC     ADCConfig     `yaml:"adc"`
	Timing  TimingConfig  `yaml:"timing"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	HTTP    HTTPConfig    `yaml:"http"`
}

// PinsConfig holds BCM line offsets for the buttons.
type PinsConfig struct {
	Chip string `yaml:"chip"`
	B1   int    `yaml:"b1"`
	B2   int    `yaml:"b2"`
	B3   int    `yaml:"b3"`
	B4   int    `yaml:"b4"`
	B5   int    `yaml:"b5"`
	B6   int    `yaml:"b6"`
	B7   int    `yaml:"b7"`
	Page int    `yaml:"page"`
}

// Offsets returns the pins in button order.
func (p PinsConfig) Offsets() [logic.NumButtons]int {
	return [logic.NumButtons]int{p.B1, p.B2, p.B3, p.B4, p.B5, p.B6, p.B7, p.Page}
}

// EvdevConfig selects the keyboard used by the evdev input.
type EvdevConfig struct {
	Device string `yaml:"device"`
}

// DisplayConfig describes the panel. Disabled panels are replaced by a
// headless sink, which still feeds the status page.
type DisplayConfig struct {
	Enabled bool   `yaml:"enabled"`
	Bus     string `yaml:"bus"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
}

// ADCConfig describes the battery converter. With Enabled false the
// battery reads as FixedVoltage.
type ADCConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Bus          string  `yaml:"bus"`
	Address      uint16  `yaml:"address"`
	Channel      int     `yaml:"channel"`
	FixedVoltage float64 `yaml:"fixed_voltage"`
}

// TimingConfig holds loop cadence and thresholds.
type TimingConfig struct {
	Poll       time.Duration `yaml:"poll"`
	Debounce   time.Duration `yaml:"debounce"`
	Flash      time.Duration `yaml:"flash"`
	LowVoltage float64       `yaml:"low_voltage"`
	Heartbeat  time.Duration `yaml:"heartbeat"`
}

// MQTTConfig configures the optional event journal. An empty broker
// disables it.
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// HTTPConfig configures the optional status server. An empty address
// disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the compiled defaults.
func Default() Config {
	return Config{
		Input: InputGPIO,
		Pins: PinsConfig{
			Chip: "gpiochip0",
			B1:   5,
			B2:   6,
			B3:   13,
			B4:   19,
			B5:   26,
			B6:   12,
			B7:   16,
			Page: 4,
		},
		Evdev: EvdevConfig{Device: "/dev/input/event0"},
		Display: DisplayConfig{
			Enabled: true,
			Width:   128,
			Height:  64,
		},
		ADC: ADCConfig{
			Enabled:      true,
			Address:      0x48,
			Channel:      3,
			FixedVoltage: 4.2,
		},
		Timing: TimingConfig{
			Poll:       logic.TickInterval,
			Debounce:   logic.DebounceInterval,
			Flash:      logic.FlashInterval,
			LowVoltage: logic.LowBatteryVoltage,
			Heartbeat:  15 * time.Minute,
		},
		MQTT: MQTTConfig{TopicPrefix: "console/counter"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, leaving absent keys untouched, and
// validates the result.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// Logic returns the state machine timing.
func (c Config) Logic() logic.Config {
	return logic.Config{
		Debounce:      c.Timing.Debounce,
		FlashInterval: c.Timing.Flash,
		LowVoltage:    c.Timing.LowVoltage,
	}
}

// Validate reports every problem in c.
func (c Config) Validate() error {
	var errs []error

	switch c.Input {
	case InputGPIO, InputEvdev, InputSim:
	default:
		errs = append(errs, fmt.Errorf("unknown input %q (want gpio, evdev or sim)", c.Input))
	}

	seen := map[int]logic.ButtonID{}
	for i, pin := range c.Pins.Offsets() {
		b := logic.ButtonID(i)
		if pin < 0 {
			errs = append(errs, fmt.Errorf("pin for %s is negative", b))
			continue
		}
		if other, dup := seen[pin]; dup {
			errs = append(errs, fmt.Errorf("pin %d assigned to both %s and %s", pin, other, b))
		}
		seen[pin] = b
	}

	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, fmt.Errorf("display size %dx%d must be positive", c.Display.Width, c.Display.Height))
	}
	if c.ADC.Channel < 0 || c.ADC.Channel > 3 {
		errs = append(errs, fmt.Errorf("adc channel %d out of range 0-3", c.ADC.Channel))
	}

	intervals := []struct {
		name string
		d    time.Duration
	}{
		{"poll", c.Timing.Poll},
		{"debounce", c.Timing.Debounce},
		{"flash", c.Timing.Flash},
	}
	for _, iv := range intervals {
		if iv.d <= 0 {
			errs = append(errs, fmt.Errorf("timing.%s must be positive, got %v", iv.name, iv.d))
		}
	}
	if c.Timing.Heartbeat < 0 {
		errs = append(errs, fmt.Errorf("timing.heartbeat must not be negative, got %v", c.Timing.Heartbeat))
	}
	if c.Timing.LowVoltage <= 0 {
		errs = append(errs, fmt.Errorf("timing.low_voltage must be positive, got %v", c.Timing.LowVoltage))
	}

	return errors.Join(errs...)
}
