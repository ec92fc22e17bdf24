// Package sensor provides temperature acquisition with hardware abstraction.
// Readers return one raw temperature reading in °C; the Sampler averages
// several readings into the mean consumed by the cycle coordinator.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultSamplesPerMean is the number of readings averaged per cycle.
const DefaultSamplesPerMean = 16

var (
	// ErrTimeout is returned when acquisition exceeds its latency bound.
	ErrTimeout = errors.New("sensor: acquisition timeout")
	// ErrInvalidChannel is returned when the configured source does not exist.
	ErrInvalidChannel = errors.New("sensor: invalid channel")
	// ErrNoReadings is returned when no readings are configured or available.
	ErrNoReadings = errors.New("sensor: no readings")
)

// Reader reads one temperature value in °C.
type Reader interface {
	// Read returns a single reading. It may block for a bounded time.
	Read() (float64, error)

	// Close releases the underlying device.
	Close() error
}

// Sampler averages N readings from a Reader.
type Sampler struct {
	reader  Reader
	n       int
	timeout time.Duration
}

// NewSampler creates a sampler taking n readings per mean. A timeout <= 0
// means the only bound is the caller's context.
func NewSampler(r Reader, n int, timeout time.Duration) *Sampler {
	if n <= 0 {
		n = DefaultSamplesPerMean
	}
	return &Sampler{reader: r, n: n, timeout: timeout}
}

// Sample performs the readings and returns their arithmetic mean.
// The first failing reading aborts the whole sample.
func (s *Sampler) Sample(ctx context.Context) (float64, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var sum float64
	for i := 0; i < s.n; i++ {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return 0, fmt.Errorf("%w after %d/%d readings", ErrTimeout, i, s.n)
			}
			return 0, err
		}
		v, err := s.reader.Read()
		if err != nil {
			return 0, fmt.Errorf("reading %d/%d: %w", i+1, s.n, err)
		}
		sum += v
	}
	return sum / float64(s.n), nil
}

// Close closes the underlying reader.
func (s *Sampler) Close() error {
	return s.reader.Close()
}

// RP2040 on-die sensor constants.
const (
	adcVRef       = 3.3
	adcMaxCounts  = 4096
	rp2040VBE27C  = 0.706
	rp2040SlopeVC = 0.001721
)

// RP2040Celsius converts a raw 12-bit reading of the RP2040 internal
// temperature channel into °C.
func RP2040Celsius(raw uint16) float64 {
	v := float64(raw) * adcVRef / adcMaxCounts
	return 27 - (v-rp2040VBE27C)/rp2040SlopeVC
}
