// Package timer provides the periodic callback service that drives the
// cycle coordinator.
package timer

import (
	"errors"
	"fmt"
	"time"

	"github.com/temoto/alive/v2"
)

// ErrInvalidPeriod is returned when registering a non-positive period.
var ErrInvalidPeriod = errors.New("timer: period must be positive")

// Callback is invoked once per period. Returning false stops the timer.
// Callbacks must not block.
type Callback func() bool

// Service registers periodic callbacks.
type Service interface {
	RegisterPeriodic(period time.Duration, cb Callback) (*Handle, error)
}

// Handle controls a registered periodic callback.
type Handle struct {
	alive *alive.Alive
}

// Stop halts future ticks and waits for the timer goroutine to exit.
// It is safe to call more than once.
func (h *Handle) Stop() {
	h.alive.Stop()
	h.alive.Wait()
}

// Done is closed once the timer has fully stopped, either via Stop or
// because the callback returned false.
func (h *Handle) Done() <-chan struct{} {
	return h.alive.WaitChan()
}

// Ticker is the real Service, backed by time.Ticker.
type Ticker struct{}

// RegisterPeriodic starts calling cb every period on its own goroutine.
func (Ticker) RegisterPeriodic(period time.Duration, cb Callback) (*Handle, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeriod, period)
	}
	if cb == nil {
		return nil, errors.New("timer: nil callback")
	}

	a := alive.NewAlive()
	a.Add(1)
	t := time.NewTicker(period)
	go func() {
		defer a.Done()
		defer t.Stop()
		for {
			select {
			case <-a.StopChan():
				return
			case <-t.C:
				if !cb() {
					a.Stop()
					return
				}
			}
		}
	}()

	return &Handle{alive: a}, nil
}
