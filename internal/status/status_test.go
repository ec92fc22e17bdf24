package status

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/tempcycle/internal/logic"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{PeriodMs: 1000, Threshold: 0.2, Broker: "tcp://localhost:1883", HTTPAddr: ":80"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.PeriodMs != 1000 {
		t.Errorf("Config.PeriodMs: got %d, want 1000", snap.Config.PeriodMs)
	}
	if snap.Config.HTTPAddr != ":80" {
		t.Errorf("Config.HTTPAddr: got %q, want %q", snap.Config.HTTPAddr, ":80")
	}
	if snap.Rendered {
		t.Error("expected Rendered=false initially")
	}
	if snap.Trend != logic.TrendUnknown {
		t.Errorf("Trend: got %q, want UNKNOWN", snap.Trend)
	}
}

func TestRenderAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return at }

	if err := tr.Render(20.5, logic.TrendRising); err != nil {
		t.Fatalf("Render: %v", err)
	}

	snap := tr.Snapshot()
	if snap.Temperature != 20.5 {
		t.Errorf("Temperature: got %v, want 20.5", snap.Temperature)
	}
	if snap.Trend != logic.TrendRising {
		t.Errorf("Trend: got %q, want RISING", snap.Trend)
	}
	if !snap.Rendered {
		t.Error("expected Rendered=true")
	}
	if !snap.RenderedAt.Equal(at) {
		t.Errorf("RenderedAt: got %v, want %v", snap.RenderedAt, at)
	}
}

func TestSetCounts(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetCounts(logic.Counts{Completed: 3, Overruns: 1})

	snap := tr.Snapshot()
	if snap.Counts.Completed != 3 {
		t.Errorf("Counts.Completed: got %d, want 3", snap.Counts.Completed)
	}
	if snap.Counts.Overruns != 1 {
		t.Errorf("Counts.Overruns: got %d, want 1", snap.Counts.Overruns)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSetNetwork(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	if tr.Snapshot().Network != nil {
		t.Error("expected nil Network initially")
	}

	net := &NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected"}
	tr.SetNetwork(net)

	snap := tr.Snapshot()
	if snap.Network == nil || snap.Network.IP != "192.168.1.42" {
		t.Errorf("Network: got %+v", snap.Network)
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Render(20, logic.TrendStable)

	snap1 := tr.Snapshot()

	tr.Render(25, logic.TrendRising)

	if snap1.Temperature != 20 {
		t.Error("snapshot should be a copy; Temperature was modified")
	}
	if snap1.Trend != logic.TrendStable {
		t.Error("snapshot should be a copy; Trend was modified")
	}
}

func TestFormatJSON(t *testing.T) {
	snap := Snapshot{
		Temperature: 20.456,
		Trend:       logic.TrendFalling,
		Rendered:    true,
		Counts:      logic.Counts{Ticks: 10, Completed: 8, Overruns: 1, SampleFailures: 1},
		StartTime:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:         time.Date(2026, 1, 1, 0, 1, 30, 0, time.UTC),
		Config:      Config{PeriodMs: 1000, Threshold: 0.2, HistorySize: 3, Broker: "tcp://localhost:1883"},
	}

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(snap), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	s := parsed.Status
	if s.Temperature == nil || *s.Temperature != 20.46 {
		t.Errorf("Temperature: got %v, want 20.46", s.Temperature)
	}
	if s.Trend != "FALLING" {
		t.Errorf("Trend: got %q, want FALLING", s.Trend)
	}
	if !s.Ready {
		t.Error("expected Ready=true")
	}
	if s.UptimeSeconds != 90 {
		t.Errorf("UptimeSeconds: got %d, want 90", s.UptimeSeconds)
	}
	if s.Counts.Completed != 8 || s.Counts.Overruns != 1 || s.Counts.SampleFailures != 1 {
		t.Errorf("Counts: got %+v", s.Counts)
	}
	if s.Config.PeriodMs != 1000 || s.Config.HistorySize != 3 {
		t.Errorf("Config: got %+v", s.Config)
	}
	if s.Event != "" || s.Reason != "" {
		t.Error("web JSON should not carry event/reason")
	}
}

func TestFormatJSONBeforeFirstCycle(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	data := FormatJSON(snap)
	if !strings.Contains(string(data), `"temperature": null`) {
		t.Errorf("expected null temperature before first cycle:\n%s", data)
	}

	var parsed StatusJSON
	json.Unmarshal(data, &parsed)
	if parsed.Status.Trend != "UNKNOWN" {
		t.Errorf("Trend: got %q, want UNKNOWN", parsed.Status.Trend)
	}
	if parsed.Status.Ready {
		t.Error("expected Ready=false")
	}
}

func TestFormatStatusEvent(t *testing.T) {
	snap := Snapshot{
		Temperature: 21,
		Trend:       logic.TrendStable,
		Rendered:    true,
		StartTime:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	data := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")
	if strings.Contains(string(data), "\n") {
		t.Error("MQTT payload should be compact")
	}

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q, want SIGTERM", parsed.Status.Reason)
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	data := FormatStatusEvent(Snapshot{}, "STARTUP", "")
	if strings.Contains(string(data), `"reason"`) {
		t.Errorf("expected reason omitted: %s", data)
	}
}

func TestFormatJSONWithNetwork(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC),
		Network:   &NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected", SSID: "MyNet"},
	}

	var parsed StatusJSON
	json.Unmarshal(FormatJSON(snap), &parsed)

	if parsed.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if parsed.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", parsed.Status.Network.IP)
	}
	if parsed.Status.Network.SSID != "MyNet" {
		t.Errorf("Network.SSID: got %q, want MyNet", parsed.Status.Network.SSID)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	// Writer
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.Render(float64(i), logic.TrendRising)
			tr.SetCounts(logic.Counts{Completed: uint64(i)})
			tr.SetMQTTConnected(i%2 == 0)
			tr.SetNetwork(&NetworkInfo{IP: "1.2.3.4"})
		}
	}()

	// Reader
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = FormatJSON(snap)
		}
	}()

	wg.Wait()
}
