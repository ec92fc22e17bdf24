package sensor

import (
	"math"
	"math/rand"
)

// Simulated produces a slowly oscillating temperature with noise, for running
// without hardware.
type Simulated struct {
	Base      float64 // centre temperature in °C
	Amplitude float64 // swing in °C
	Period    int     // readings per full oscillation
	Noise     float64 // uniform noise amplitude in °C

	n   int
	rng *rand.Rand
}

// NewSimulated creates a simulated reader around base °C.
func NewSimulated(base float64, seed int64) *Simulated {
	return &Simulated{
		Base:      base,
		Amplitude: 2,
		Period:    16 * 120,
		Noise:     0.05,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Read returns the next simulated reading.
func (s *Simulated) Read() (float64, error) {
	phase := 2 * math.Pi * float64(s.n) / float64(s.Period)
	s.n++
	noise := (s.rng.Float64()*2 - 1) * s.Noise
	return s.Base + s.Amplitude*math.Sin(phase) + noise, nil
}

// Close is a no-op.
func (s *Simulated) Close() error { return nil }
