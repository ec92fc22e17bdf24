package gpio

import "github.com/sweeney/tempcycle/internal/logic"

// FakeIndicator is a test double that records LED changes.
type FakeIndicator struct {
	// Trends contains every trend passed to SetByTrend.
	Trends []logic.Trend

	// Current is the colour currently shown.
	Current Color

	// SetError, if set, will be returned by SetByTrend.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeIndicator creates a FakeIndicator.
func NewFakeIndicator() *FakeIndicator {
	return &FakeIndicator{}
}

// SetByTrend records the trend and the resulting colour.
func (f *FakeIndicator) SetByTrend(trend logic.Trend) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Trends = append(f.Trends, trend)
	f.Current = ColorForTrend(trend)
	return nil
}

// Close turns the LED off and marks the indicator as closed.
func (f *FakeIndicator) Close() error {
	f.Current = Off
	f.Closed = true
	return nil
}

// Reset clears recorded state.
func (f *FakeIndicator) Reset() {
	f.Trends = nil
	f.Current = Off
	f.SetError = nil
	f.Closed = false
}
