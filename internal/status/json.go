package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/counter-console/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string         `json:"event,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	Mode          string         `json:"mode"`
	Page          string         `json:"page,omitempty"`
	Carousel      string         `json:"carousel"`
	Counters      CountersJSON   `json:"counters"`
	Battery       BatteryJSON    `json:"battery"`
	Presses       map[string]int `json:"presses"`
	Frames        int            `json:"frames"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     string         `json:"start_time"`
	Timestamp     string         `json:"timestamp"`
	MQTT          MQTTStatus     `json:"mqtt"`
	Network       *NetworkJSON   `json:"network,omitempty"`
	Config        ConfigJSON     `json:"config"`
}

// CountersJSON is the JSON representation of the counter bank.
type CountersJSON struct {
	Joules int    `json:"joules"`
	Cmd    [3]int `json:"cmd"`
	Infect int    `json:"infect"`
	Speed  int    `json:"speed"`
}

// BatteryJSON reports the battery reading and warning state.
type BatteryJSON struct {
	Voltage float64 `json:"voltage"`
	Text    string  `json:"text"`
	Low     bool    `json:"low"`
	FlashOn bool    `json:"flash_on"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of console config.
type ConfigJSON struct {
	Input       string  `json:"input"`
	PollMs      int64   `json:"poll_ms"`
	DebounceMs  int64   `json:"debounce_ms"`
	FlashMs     int64   `json:"flash_ms"`
	HeartbeatMs int64   `json:"heartbeat_ms"`
	LowVoltage  float64 `json:"low_voltage"`
	Broker      string  `json:"broker"`
	HTTPPort    string  `json:"http_port"`
}

func buildInner(snap Snapshot) StatusInner {
	v := snap.View
	mode := string(v.Mode)
	if mode == "" {
		mode = "UNKNOWN"
	}
	inner := StatusInner{
		Mode:     mode,
		Carousel: logic.Pages[v.Index].String(),
		Counters: CountersJSON{
			Joules: v.Counters.Joules,
			Cmd:    [3]int{v.Counters.Cmd1, v.Counters.Cmd2, v.Counters.Cmd3},
			Infect: v.Counters.Infect,
			Speed:  v.Counters.Speed,
		},
		Battery: BatteryJSON{
			Voltage: v.Voltage,
			Text:    logic.FormatVoltage(v.Voltage),
			Low:     v.Low,
			FlashOn: v.FlashOn,
		},
		Presses:       make(map[string]int, logic.NumButtons),
		Frames:        snap.Frames,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			Input:       snap.Config.Input,
			PollMs:      snap.Config.PollMs,
			DebounceMs:  snap.Config.DebounceMs,
			FlashMs:     snap.Config.FlashMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			LowVoltage:  snap.Config.LowVoltage,
			Broker:      snap.Config.Broker,
			HTTPPort:    snap.Config.HTTPPort,
		},
	}
	if v.Mode == logic.ModeDetail {
		inner.Page = v.Page.String()
	}
	for _, b := range logic.Buttons {
		inner.Presses[b.String()] = snap.Presses[b]
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
