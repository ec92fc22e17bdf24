// Package logic contains pure business logic for temperature trend tracking.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Trend represents the short-term direction of the temperature.
type Trend string

const (
	TrendUnknown Trend = "UNKNOWN"
	TrendRising  Trend = "RISING"
	TrendFalling Trend = "FALLING"
	TrendStable  Trend = "STABLE"
)

// String returns the telemetry name of the trend. The zero value reads as UNKNOWN.
func (t Trend) String() string {
	if t == "" {
		return string(TrendUnknown)
	}
	return string(t)
}

// Counts tracks cycle outcomes since startup.
type Counts struct {
	Ticks            uint64
	Completed        uint64
	Overruns         uint64
	SampleFailures   uint64
	PresentFailures  uint64
	IndicateFailures uint64
	ReportFailures   uint64
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}
