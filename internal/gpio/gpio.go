// Package gpio drives the trend indicator LED with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "github.com/sweeney/tempcycle/internal/logic"

// Indicator reflects a trend on an RGB LED.
type Indicator interface {
	// SetByTrend switches the LED to the colour for trend.
	SetByTrend(trend logic.Trend) error

	// Close turns the LED off and releases GPIO resources.
	Close() error
}

// Default pin definitions (BCM numbering)
const (
	DefaultChip     = "gpiochip0"
	DefaultPinRed   = 17
	DefaultPinGreen = 27
	DefaultPinBlue  = 22
)

// Color is the on/off state of each LED channel.
type Color struct {
	R, G, B bool
}

// ColorForTrend maps a trend to an LED colour.
// Unknown shows amber (red+green) so a live but unclassified loop is visible.
func ColorForTrend(trend logic.Trend) Color {
	switch trend {
	case logic.TrendRising:
		return Color{R: true}
	case logic.TrendFalling:
		return Color{B: true}
	case logic.TrendStable:
		return Color{G: true}
	default:
		return Color{R: true, G: true}
	}
}

// Off is the colour with every channel dark.
var Off = Color{}

func level(on bool) int {
	if on {
		return 1
	}
	return 0
}
