package logic

import "time"

// Config holds the tunable timing of the console.
type Config struct {
	Debounce      time.Duration
	FlashInterval time.Duration
	LowVoltage    float64
}

// DefaultConfig returns the stock timing.
func DefaultConfig() Config {
	return Config{
		Debounce:      DebounceInterval,
		FlashInterval: FlashInterval,
		LowVoltage:    LowBatteryVoltage,
	}
}

// Console is the complete application state: button table, navigation,
// counters, battery flash and the render dirty flag. It is owned by the
// main loop and is not safe for concurrent use.
type Console struct {
	sampler  *Sampler
	nav      Navigation
	counters Counters
	battery  *BatteryMonitor

	voltage     float64
	voltageText string
	iconShown   bool

	dirty bool

	presses       PressCounts
	startTime     time.Time
	lastHeartbeat time.Time
}

// NewConsole creates a console in browse mode at the first page with the
// power-on counter values. The dirty flag starts set so the first render
// draws the carousel.
func NewConsole(cfg Config, startTime time.Time) *Console {
	return &Console{
		sampler:       NewSampler(cfg.Debounce),
		counters:      NewCounters(),
		battery:       NewBatteryMonitor(cfg.FlashInterval, cfg.LowVoltage, startTime),
		dirty:         true,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Step runs one loop iteration short of rendering: it debounces levels,
// dispatches every accepted press in button order, then feeds the battery
// voltage to the flash monitor. It returns one Action per accepted press.
func (c *Console) Step(levels [NumButtons]bool, voltage float64, now time.Time) []Action {
	var actions []Action
	for _, ev := range c.sampler.Poll(levels, now) {
		// Releases only feed the debounce bookkeeping.
		if ev.Transition != TransitionPressed {
			continue
		}
		c.presses[ev.Button]++
		actions = append(actions, c.Press(ev.Button))
	}
	c.ObserveVoltage(voltage, now)
	return actions
}

// Press dispatches one debounced press. Depending on the mode it maps to a
// navigation change, a counter mutation, or nothing. The exception is B7 on
// the Speed page, which zeroes the counter and also returns to the carousel.
func (c *Console) Press(b ButtonID) Action {
	a := Action{Button: b}

	page, detail := c.nav.Selected()
	if !detail {
		switch b {
		case B3:
			c.nav.Prev()
		case B4:
			c.nav.Next()
		case ButtonPage:
			c.nav.Enter()
		default:
			return a
		}
		a.Navigated = true
		c.dirty = true
		return a
	}

	a.Mutated = c.counters.Apply(page, b)
	if b == B7 && leavesOnBack(page) {
		c.nav.Back()
		a.Navigated = true
	}
	if a.Changed() {
		c.dirty = true
	}
	return a
}

// leavesOnBack reports whether B7 returns page to the carousel. CMD keeps
// B7 for its reset-all rule.
func leavesOnBack(page Page) bool {
	return page != PageCmd
}

// ObserveVoltage records the latest battery reading and advances the flash.
// It marks the display dirty when the flash phase flips, when the warning
// icon appears or disappears, or when the battery page text changes.
func (c *Console) ObserveVoltage(voltage float64, now time.Time) {
	c.voltage = voltage
	if c.battery.Tick(voltage, now) {
		c.dirty = true
	}

	icon := c.battery.ShowIcon(voltage)
	if icon != c.iconShown {
		c.iconShown = icon
		c.dirty = true
	}

	text := FormatVoltage(voltage)
	if text != c.voltageText {
		c.voltageText = text
		if page, ok := c.nav.Selected(); ok && page == PageBattery {
			c.dirty = true
		}
	}
}

// View is a read-only copy of everything a renderer needs.
type View struct {
	Mode     Mode
	Index    int
	Page     Page
	Counters Counters
	Voltage  float64
	Low      bool
	FlashOn  bool
}

// ShowIcon reports whether the low-battery icon is overlaid.
func (v View) ShowIcon() bool {
	return v.Low && v.FlashOn
}

// View returns the state as of the end of the last dispatch.
func (c *Console) View() View {
	page, _ := c.nav.Selected()
	return View{
		Mode:     c.nav.Mode(),
		Index:    c.nav.Index(),
		Page:     page,
		Counters: c.counters,
		Voltage:  c.voltage,
		Low:      c.battery.Low(c.voltage),
		FlashOn:  c.battery.State().On,
	}
}

// Dirty reports whether state changed since the last render.
func (c *Console) Dirty() bool {
	return c.dirty
}

// MarkDirty forces the next render to redraw.
func (c *Console) MarkDirty() {
	c.dirty = true
}

// ClearDirty is called by the renderer once a frame has been built.
func (c *Console) ClearDirty() {
	c.dirty = false
}

// Navigation returns the navigation state.
func (c *Console) Navigation() Navigation {
	return c.nav
}

// Counters returns the current counter values.
func (c *Console) Counters() Counters {
	return c.counters
}

// Flash returns the battery flash state.
func (c *Console) Flash() FlashState {
	return c.battery.State()
}

// Voltage returns the last observed battery voltage.
func (c *Console) Voltage() float64 {
	return c.voltage
}

// Button returns the debounce record of b.
func (c *Console) Button(b ButtonID) ButtonState {
	return c.sampler.State(b)
}

// Presses returns the accepted press counts since startup.
func (c *Console) Presses() PressCounts {
	return c.presses
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (c *Console) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}

	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		Presses:   c.presses,
	}
}
