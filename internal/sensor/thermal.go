package sensor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"periph.io/x/conn/v3/physic"
)

// DefaultThermalZone is the sysfs file of the first thermal zone.
const DefaultThermalZone = "/sys/class/thermal/thermal_zone0/temp"

// ThermalReader reads a Linux sysfs thermal zone, which reports millidegrees
// Celsius.
type ThermalReader struct {
	path string
}

// NewThermalReader checks that path exists and returns a reader for it.
func NewThermalReader(path string) (*ThermalReader, error) {
	if path == "" {
		path = DefaultThermalZone
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidChannel, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return &ThermalReader{path: path}, nil
}

// Read returns the zone temperature in °C.
func (r *ThermalReader) Read() (float64, error) {
	t, err := r.ReadTemperature()
	if err != nil {
		return 0, err
	}
	return celsius(t), nil
}

// ReadTemperature returns the zone temperature as a physic.Temperature.
func (r *ThermalReader) ReadTemperature() (physic.Temperature, error) {
	b, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrInvalidChannel, r.path)
		}
		return 0, fmt.Errorf("read %s: %w", r.path, err)
	}
	milli, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", r.path, err)
	}
	return physic.ZeroCelsius + physic.Temperature(milli)*physic.MilliKelvin, nil
}

// Close is a no-op; the file is reopened on every read.
func (r *ThermalReader) Close() error { return nil }

func celsius(t physic.Temperature) float64 {
	return float64(t-physic.ZeroCelsius) / float64(physic.Kelvin)
}
