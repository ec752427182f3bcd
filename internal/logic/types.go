// Package logic contains the pure state machine of the counter console:
// input debounce, page navigation, counter rules and the battery flash.
// This package has NO external dependencies (no GPIO, display, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Timing and threshold defaults.
const (
	TickInterval     = 10 * time.Millisecond
	DebounceInterval = 200 * time.Millisecond
	FlashInterval    = 500 * time.Millisecond

	LowBatteryVoltage = 3.3
)

// ButtonID identifies one of the eight physical inputs.
type ButtonID int

const (
	B1 ButtonID = iota
	B2
	B3
	B4
	B5
	B6
	B7
	ButtonPage

	NumButtons = 8
)

// Buttons lists every button in the fixed order they are polled and dispatched.
var Buttons = [NumButtons]ButtonID{B1, B2, B3, B4, B5, B6, B7, ButtonPage}

func (b ButtonID) String() string {
	switch b {
	case B1:
		return "B1"
	case B2:
		return "B2"
	case B3:
		return "B3"
	case B4:
		return "B4"
	case B5:
		return "B5"
	case B6:
		return "B6"
	case B7:
		return "B7"
	case ButtonPage:
		return "PAGE"
	}
	return "UNKNOWN"
}

// Transition is the debounced edge observed on a button during one poll.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionPressed
	TransitionReleased
)

func (t Transition) String() string {
	switch t {
	case TransitionPressed:
		return "PRESSED"
	case TransitionReleased:
		return "RELEASED"
	}
	return "NONE"
}

// ButtonEvent is a debounced transition emitted by the sampler.
type ButtonEvent struct {
	Button     ButtonID
	Transition Transition
	Time       time.Time
}

// ButtonState tracks debounce state for a single button.
type ButtonState struct {
	// Last raw sample, true = pressed (already inverted from the active-low pin)
	Physical bool
	// Accepted (debounced) level, true = pressed
	Debounced bool
	// Time of the last accepted transition
	LastTransition time.Time
}

// Page is one entry of the page carousel.
type Page int

const (
	PageJoules Page = iota
	PageCmd
	PageInfect
	PageSpeed
	PageBattery

	PageCount = 5
)

// Pages lists the carousel in its cyclic order.
var Pages = [PageCount]Page{PageJoules, PageCmd, PageInfect, PageSpeed, PageBattery}

// Label returns the text shown for the page in the carousel.
func (p Page) Label() string {
	switch p {
	case PageJoules:
		return "Joules Counter"
	case PageCmd:
		return "CMD Counters"
	case PageInfect:
		return "Infect Counter"
	case PageSpeed:
		return "Speed Tracker"
	case PageBattery:
		return "Battery Voltage"
	}
	return "Unknown"
}

func (p Page) String() string {
	switch p {
	case PageJoules:
		return "JOULES"
	case PageCmd:
		return "CMD"
	case PageInfect:
		return "INFECT"
	case PageSpeed:
		return "SPEED"
	case PageBattery:
		return "BATTERY"
	}
	return "UNKNOWN"
}

// Mode is the navigation mode.
type Mode string

const (
	ModeBrowse Mode = "BROWSE"
	ModeDetail Mode = "DETAIL"
)

// Action reports what a dispatched press did. The zero value means the
// press had no effect in the current mode.
type Action struct {
	Button    ButtonID
	Navigated bool
	Mutated   bool
}

// Changed reports whether the press changed navigation or counters.
func (a Action) Changed() bool {
	return a.Navigated || a.Mutated
}

// PressCounts tracks the number of accepted presses per button since startup.
type PressCounts [NumButtons]int

// Total returns the sum of all presses.
func (c PressCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Presses   PressCounts
}
