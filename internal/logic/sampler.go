package logic

import "time"

// Sampler debounces the button inputs and turns raw levels into edges.
type Sampler struct {
	hold    time.Duration
	buttons [NumButtons]ButtonState
}

// NewSampler creates a sampler that accepts a transition on a button only
// when at least hold has elapsed since that button's last accepted one.
func NewSampler(hold time.Duration) *Sampler {
	return &Sampler{hold: hold}
}

// Poll takes one raw sample of every input and returns the accepted
// transitions in button order. Levels are the electrical pin states:
// true = pulled high (released), false = pressed.
func (s *Sampler) Poll(levels [NumButtons]bool, now time.Time) []ButtonEvent {
	var events []ButtonEvent
	for _, b := range Buttons {
		tr := s.processButton(&s.buttons[b], !levels[b], now)
		if tr == TransitionNone {
			continue
		}
		events = append(events, ButtonEvent{Button: b, Transition: tr, Time: now})
	}
	return events
}

// processButton handles debounce logic for a single button.
func (s *Sampler) processButton(st *ButtonState, pressed bool, now time.Time) Transition {
	st.Physical = pressed

	if pressed == st.Debounced {
		return TransitionNone
	}

	// Within the hold window since the last accepted edge: treat as bounce.
	if !st.LastTransition.IsZero() && now.Sub(st.LastTransition) < s.hold {
		return TransitionNone
	}

	st.Debounced = pressed
	st.LastTransition = now
	if pressed {
		return TransitionPressed
	}
	return TransitionReleased
}

// State returns the debounce record of a button.
func (s *Sampler) State(b ButtonID) ButtonState {
	return s.buttons[b]
}

// Held reports the buttons whose debounced level is currently pressed.
func (s *Sampler) Held() []ButtonID {
	var held []ButtonID
	for _, b := range Buttons {
		if s.buttons[b].Debounced {
			held = append(held, b)
		}
	}
	return held
}
