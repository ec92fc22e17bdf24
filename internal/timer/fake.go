package timer

import (
	"errors"
	"fmt"
	"time"

	"github.com/temoto/alive/v2"
)

// Fake is a Service whose ticks are fired manually by tests.
type Fake struct {
	// RegisterError, if set, is returned by RegisterPeriodic.
	RegisterError error

	// Period records the last registered period.
	Period time.Duration

	cb    Callback
	alive *alive.Alive
}

// NewFake creates a Fake timer service.
func NewFake() *Fake {
	return &Fake{}
}

// RegisterPeriodic records the callback without starting a goroutine.
func (f *Fake) RegisterPeriodic(period time.Duration, cb Callback) (*Handle, error) {
	if f.RegisterError != nil {
		return nil, f.RegisterError
	}
	if period <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeriod, period)
	}
	if f.cb != nil {
		return nil, errors.New("timer: fake already registered")
	}
	f.Period = period
	f.cb = cb
	f.alive = alive.NewAlive()
	return &Handle{alive: f.alive}, nil
}

// Fire invokes the callback once, as the hardware timer would. It returns
// false if nothing is registered, the handle was stopped, or the callback
// asked to stop.
func (f *Fake) Fire() bool {
	if f.cb == nil || !f.alive.IsRunning() {
		return false
	}
	if !f.cb() {
		f.alive.Stop()
		return false
	}
	return true
}
