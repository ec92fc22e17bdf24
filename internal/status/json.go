package status

import (
	"encoding/json"
	"math"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Temperature   *float64     `json:"temperature"`
	Trend         string       `json:"trend"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"cycle_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of cycle counters.
type CountsJSON struct {
	Ticks            uint64 `json:"ticks"`
	Completed        uint64 `json:"completed"`
	Overruns         uint64 `json:"overruns"`
	SampleFailures   uint64 `json:"sample_failures"`
	PresentFailures  uint64 `json:"present_failures"`
	IndicateFailures uint64 `json:"indicate_failures"`
	ReportFailures   uint64 `json:"report_failures"`
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

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PeriodMs       int64   `json:"period_ms"`
	HeartbeatMs    int64   `json:"heartbeat_ms"`
	Threshold      float64 `json:"threshold"`
	HistorySize    int     `json:"history_size"`
	SamplesPerMean int     `json:"samples_per_mean"`
	Sensor         string  `json:"sensor"`
	Broker         string  `json:"broker"`
	HTTPAddr       string  `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Trend:         snap.Trend.String(),
		Ready:         snap.Rendered,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Ticks:            snap.Counts.Ticks,
			Completed:        snap.Counts.Completed,
			Overruns:         snap.Counts.Overruns,
			SampleFailures:   snap.Counts.SampleFailures,
			PresentFailures:  snap.Counts.PresentFailures,
			IndicateFailures: snap.Counts.IndicateFailures,
			ReportFailures:   snap.Counts.ReportFailures,
		},
		Config: ConfigJSON{
			PeriodMs:       snap.Config.PeriodMs,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			Threshold:      snap.Config.Threshold,
			HistorySize:    snap.Config.HistorySize,
			SamplesPerMean: snap.Config.SamplesPerMean,
			Sensor:         snap.Config.Sensor,
			Broker:         snap.Config.Broker,
			HTTPAddr:       snap.Config.HTTPAddr,
		},
	}
	if snap.Rendered {
		temp := math.Round(snap.Temperature*100) / 100
		inner.Temperature = &temp
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
