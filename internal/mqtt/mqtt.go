// Package mqtt provides an optional MQTT event journal with abstraction
// for testing. Every accepted press and every lifecycle event can be
// published; nothing is ever received, so the console stays a
// single-device system.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/counter-console/internal/logic"
)

// DefaultTopicPrefix is the root of every console topic.
const DefaultTopicPrefix = "console/counter"

// Topics names the two topics the console writes.
type Topics struct {
	Events string
	System string
}

// NewTopics derives the topics from prefix.
func NewTopics(prefix string) Topics {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{
		Events: prefix + "/events",
		System: prefix + "/system",
	}
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a press event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event PressEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// PressEvent is one accepted button press and the console state at the
// end of the tick it was dispatched in.
type PressEvent struct {
	Timestamp time.Time
	Action    logic.Action
	View      logic.View
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Press PressPayload `json:"press"`
}

// PressPayload contains the press event details.
type PressPayload struct {
	Timestamp string          `json:"timestamp"`
	Button    string          `json:"button"`
	Effect    string          `json:"effect"`
	Mode      string          `json:"mode"`
	Page      string          `json:"page,omitempty"`
	Counters  CountersPayload `json:"counters"`
}

// CountersPayload is the counter bank after the press.
type CountersPayload struct {
	Joules int    `json:"joules"`
	Cmd    [3]int `json:"cmd"`
	Infect int    `json:"infect"`
	Speed  int    `json:"speed"`
}

// Effect names what a press did.
func Effect(a logic.Action) string {
	switch {
	case a.Navigated && a.Mutated:
		return "NAVIGATE+MUTATE"
	case a.Navigated:
		return "NAVIGATE"
	case a.Mutated:
		return "MUTATE"
	}
	return "NONE"
}

// FormatPayload creates the JSON payload for a press event.
func FormatPayload(event PressEvent) ([]byte, error) {
	v := event.View
	p := PressPayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		Button:    event.Action.Button.String(),
		Effect:    Effect(event.Action),
		Mode:      string(v.Mode),
		Counters: CountersPayload{
			Joules: v.Counters.Joules,
			Cmd:    [3]int{v.Counters.Cmd1, v.Counters.Cmd2, v.Counters.Cmd3},
			Infect: v.Counters.Infect,
			Speed:  v.Counters.Speed,
		},
	}
	if v.Mode == logic.ModeDetail {
		p.Page = v.Page.String()
	}
	return json.Marshal(Payload{Press: p})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// WillPayload is the retained last-will message sent by the broker when
// the console drops off without a clean shutdown.
func WillPayload() []byte {
	data, _ := json.Marshal(SystemPayload{System: SystemPayloadInner{Event: "OFFLINE", Reason: "CONNECTION_LOST"}})
	return data
}
