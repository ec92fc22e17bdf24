// Package status provides a thread-safe status tracker for the tempcycle daemon.
// It is the display surface for each cycle: the main loop renders into it and
// HTTP handlers read it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/tempcycle/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PeriodMs       int64
	HeartbeatMs    int64
	Threshold      float64
	HistorySize    int
	SamplesPerMean int
	Sensor         string
	Broker         string
	HTTPAddr       string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Temperature   float64
	Trend         logic.Trend
	Rendered      bool // false until the first cycle has been rendered
	RenderedAt    time.Time
	Counts        logic.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
			Trend:     logic.TrendUnknown,
		},
		now: time.Now,
	}
}

// Render records the latest temperature and trend. It implements the cycle
// presenter and never fails.
func (t *Tracker) Render(temperature float64, trend logic.Trend) error {
	at := t.now()
	t.mu.Lock()
	t.snap.Temperature = temperature
	t.snap.Trend = trend
	t.snap.Rendered = true
	t.snap.RenderedAt = at
	t.mu.Unlock()
	return nil
}

// SetCounts sets the cycle counters.
// Called from runLoop after every poll.
func (t *Tracker) SetCounts(counts logic.Counts) {
	t.mu.Lock()
	t.snap.Counts = counts
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

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
