package logic

import (
	"testing"
	"time"
)

func TestHeartbeatDisabled(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h := NewHeartbeat(0, start)

	if hb := h.Check(start.Add(time.Hour), Counts{}); hb != nil {
		t.Errorf("expected nil with interval 0, got %+v", hb)
	}
}

func TestHeartbeatBeforeInterval(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h := NewHeartbeat(15*time.Minute, start)

	if hb := h.Check(start.Add(14*time.Minute), Counts{}); hb != nil {
		t.Errorf("expected nil before interval, got %+v", hb)
	}
}

func TestHeartbeatFiresAndResets(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h := NewHeartbeat(15*time.Minute, start)
	counts := Counts{Completed: 42, Overruns: 1}

	at := start.Add(15 * time.Minute)
	hb := h.Check(at, counts)
	if hb == nil {
		t.Fatal("expected heartbeat at interval")
	}
	if !hb.Timestamp.Equal(at) {
		t.Errorf("unexpected timestamp: %v", hb.Timestamp)
	}
	if hb.Uptime != 15*time.Minute {
		t.Errorf("expected uptime 15m, got %v", hb.Uptime)
	}
	if hb.Counts != counts {
		t.Errorf("expected counts %+v, got %+v", counts, hb.Counts)
	}

	// Next one is measured from the last heartbeat, not from startup.
	if hb := h.Check(at.Add(10*time.Minute), counts); hb != nil {
		t.Error("expected nil 10m after last heartbeat")
	}
	hb = h.Check(at.Add(15*time.Minute), counts)
	if hb == nil {
		t.Fatal("expected second heartbeat")
	}
	if hb.Uptime != 30*time.Minute {
		t.Errorf("expected uptime 30m, got %v", hb.Uptime)
	}
}
