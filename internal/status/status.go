// Package status provides a thread-safe status tracker for the counter
// console. It is written by the run loop and read by HTTP handlers and
// MQTT system events.
package status

import (
	"image"
	"sync"
	"time"

	"github.com/sweeney/counter-console/internal/logic"
	"github.com/sweeney/counter-console/internal/render"
)

// NetworkInfo contains network state as reported by the host.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains console configuration for display.
type Config struct {
	Input       string
	PollMs      int64
	DebounceMs  int64
	FlashMs     int64
	HeartbeatMs int64
	LowVoltage  float64
	Broker      string
	HTTPPort    string
}

// Snapshot is a point-in-time view of console state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	View          logic.View
	Presses       logic.PressCounts
	Frame         render.Frame
	Image         *image.Gray
	Frames        int
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the console started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable console state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the console view and press counts.
// Called from runLoop on every tick.
func (t *Tracker) Update(v logic.View, presses logic.PressCounts) {
	t.mu.Lock()
	t.snap.View = v
	t.snap.Presses = presses
	t.mu.Unlock()
}

// SetFrame records the last presented frame and its raster. img may be nil
// when nothing serves it and must not be modified afterwards.
func (t *Tracker) SetFrame(f render.Frame, img *image.Gray) {
	t.mu.Lock()
	t.snap.Frame = f
	t.snap.Image = img
	t.snap.Frames++
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the console state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
