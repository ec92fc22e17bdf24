//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/tempcycle/internal/logic"
)

// RealIndicator drives an RGB LED through three output lines.
type RealIndicator struct {
	chip  *gpiocdev.Chip
	red   *gpiocdev.Line
	green *gpiocdev.Line
	blue  *gpiocdev.Line
}

// NewRealIndicator requests the three lines as outputs, initially low.
func NewRealIndicator(chipName string, pinR, pinG, pinB int) (*RealIndicator, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	ind := &RealIndicator{chip: chip}
	lines := []struct {
		name string
		pin  int
		dst  **gpiocdev.Line
	}{
		{"red", pinR, &ind.red},
		{"green", pinG, &ind.green},
		{"blue", pinB, &ind.blue},
	}
	for _, l := range lines {
		line, err := chip.RequestLine(l.pin, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("tempcycle"))
		if err != nil {
			ind.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", l.name, l.pin, err)
		}
		*l.dst = line
	}
	return ind, nil
}

// SetByTrend switches the LED to the colour for trend.
func (r *RealIndicator) SetByTrend(trend logic.Trend) error {
	return r.set(ColorForTrend(trend))
}

func (r *RealIndicator) set(c Color) error {
	if err := r.red.SetValue(level(c.R)); err != nil {
		return fmt.Errorf("set red: %w", err)
	}
	if err := r.green.SetValue(level(c.G)); err != nil {
		return fmt.Errorf("set green: %w", err)
	}
	if err := r.blue.SetValue(level(c.B)); err != nil {
		return fmt.Errorf("set blue: %w", err)
	}
	return nil
}

// Close turns the LED off, then reconfigures the lines as inputs with
// pull-down (Raspberry Pi boot defaults) before releasing them.
func (r *RealIndicator) Close() error {
	var errs []error

	for _, l := range []*gpiocdev.Line{r.red, r.green, r.blue} {
		if l == nil {
			continue
		}
		if err := l.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("switch off line %d: %w", l.Offset(), err))
		}
		if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure line %d: %w", l.Offset(), err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line %d: %w", l.Offset(), err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	return errors.Join(errs...)
}
