// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"math"
	"time"

	"github.com/sweeney/tempcycle/internal/cycle"
)

// Topic is the MQTT topic for completed cycles.
const Topic = "tempcycle/sensor/cycles"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "tempcycle/sensor/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a completed cycle to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(c cycle.Cycle) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "FAULT"
	Reason     string // e.g., "SIGTERM", "TIMER_REGISTRATION"
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Cycle CyclePayload `json:"cycle"`
}

// CyclePayload contains the completed cycle details.
type CyclePayload struct {
	Timestamp   string            `json:"timestamp"`
	Sequence    uint64            `json:"sequence"`
	Temperature float64           `json:"temperature"`
	Trend       string            `json:"trend"`
	DurationsMs DurationsMsFields `json:"durations_ms"`
}

// DurationsMsFields holds per-stage durations in milliseconds.
type DurationsMsFields struct {
	Sample   float64 `json:"sample"`
	Classify float64 `json:"classify"`
	Present  float64 `json:"present"`
	Indicate float64 `json:"indicate"`
}

func ms(d time.Duration) float64 {
	return math.Round(float64(d)/float64(time.Microsecond)) / 1000
}

// FormatPayload creates the JSON payload for a completed cycle.
func FormatPayload(c cycle.Cycle) ([]byte, error) {
	payload := Payload{
		Cycle: CyclePayload{
			Timestamp:   c.CompletedAt.UTC().Format(time.RFC3339),
			Sequence:    c.Sequence,
			Temperature: math.Round(c.Temperature*100) / 100,
			Trend:       c.Trend.String(),
			DurationsMs: DurationsMsFields{
				Sample:   ms(c.Durations.Sample),
				Classify: ms(c.Durations.Classify),
				Present:  ms(c.Durations.Present),
				Indicate: ms(c.Durations.Indicate),
			},
		},
	}
	return json.Marshal(payload)
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
