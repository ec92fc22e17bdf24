package logic

import "testing"

func TestFirstSampleIsUnknown(t *testing.T) {
	c := NewClassifier(0.2, 3)

	if got := c.Classify(20.0); got != TrendUnknown {
		t.Errorf("expected UNKNOWN for first sample, got %s", got)
	}
	if h := c.History(); len(h) != 1 || h[0] != 20.0 {
		t.Errorf("expected history [20], got %v", h)
	}
}

func TestRisingAboveThreshold(t *testing.T) {
	c := NewClassifier(0.2, 3)
	c.Classify(20.0)

	if got := c.Classify(20.5); got != TrendRising {
		t.Errorf("expected RISING, got %s", got)
	}
}

func TestStableWithinThreshold(t *testing.T) {
	c := NewClassifier(0.2, 3)
	c.Classify(20.5)

	if got := c.Classify(20.45); got != TrendStable {
		t.Errorf("expected STABLE, got %s", got)
	}
}

func TestFallingBelowThreshold(t *testing.T) {
	c := NewClassifier(0.2, 3)
	c.Classify(21.0)

	if got := c.Classify(20.0); got != TrendFalling {
		t.Errorf("expected FALLING, got %s", got)
	}
}

func TestDeltaEqualToThresholdIsStable(t *testing.T) {
	c := NewClassifier(0.5, 3)
	c.Classify(0.0)

	if got := c.Classify(0.5); got != TrendStable {
		t.Errorf("expected STABLE at +threshold, got %s", got)
	}
	if got := c.Classify(0.0); got != TrendStable {
		t.Errorf("expected STABLE at -threshold, got %s", got)
	}
}

func TestComparesAgainstPreviousOnly(t *testing.T) {
	c := NewClassifier(0.2, 3)

	// Slow drift: each step is below threshold even though the total is not.
	values := []float64{20.0, 20.1, 20.2, 20.3, 20.4}
	want := []Trend{TrendUnknown, TrendStable, TrendStable, TrendStable, TrendStable}
	for i, v := range values {
		if got := c.Classify(v); got != want[i] {
			t.Errorf("step %d (%.2f): expected %s, got %s", i, v, want[i], got)
		}
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	c := NewClassifier(0.2, 3)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		c.Classify(v)
	}

	h := c.History()
	want := []float64{3, 4, 5}
	if len(h) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(h))
	}
	for i := range want {
		if h[i] != want[i] {
			t.Errorf("history[%d]: expected %v, got %v", i, want[i], h[i])
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	seq := []float64{20.0, 20.5, 20.45, 19.9, 19.95, 22.0, 21.0}

	run := func() []Trend {
		c := NewClassifier(0.2, 2)
		out := make([]Trend, len(seq))
		for i, v := range seq {
			out[i] = c.Classify(v)
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("step %d: runs diverged: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestNewClassifierClampsArguments(t *testing.T) {
	c := NewClassifier(-1, 0)
	if c.Threshold() != 0 {
		t.Errorf("expected threshold clamped to 0, got %v", c.Threshold())
	}
	c.Classify(1)
	c.Classify(2)
	if h := c.History(); len(h) != 1 || h[0] != 2 {
		t.Errorf("expected history [2] with capacity 1, got %v", h)
	}
}

func TestHistoryEmpty(t *testing.T) {
	h := NewHistory(3)
	if _, ok := h.Last(); ok {
		t.Error("empty history should have no last value")
	}
	if h.Len() != 0 || h.Cap() != 3 {
		t.Errorf("expected len 0 cap 3, got len %d cap %d", h.Len(), h.Cap())
	}
	if v := h.Values(); len(v) != 0 {
		t.Errorf("expected no values, got %v", v)
	}
}

func TestTrendString(t *testing.T) {
	tests := []struct {
		trend Trend
		want  string
	}{
		{TrendUnknown, "UNKNOWN"},
		{TrendRising, "RISING"},
		{TrendFalling, "FALLING"},
		{TrendStable, "STABLE"},
		{"", "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.trend.String(); got != tt.want {
			t.Errorf("Trend(%q).String() = %q, want %q", string(tt.trend), got, tt.want)
		}
	}
}
