// Package config loads the tempcycle daemon configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/tempcycle/internal/gpio"
	"github.com/sweeney/tempcycle/internal/logic"
	"github.com/sweeney/tempcycle/internal/sensor"
	"github.com/sweeney/tempcycle/internal/telemetry"
)

// Sensor sources.
const (
	SourceSimulated = "simulated"
	SourceThermal   = "thermal"
	SourceSerial    = "serial"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config represents the daemon configuration.
type Config struct {
	Cycle     CycleConfig     `yaml:"cycle"`
	Sensor    SensorConfig    `yaml:"sensor"`
	Indicator IndicatorConfig `yaml:"indicator"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	HTTP      HTTPConfig      `yaml:"http"`
}

// CycleConfig controls the periodic sample/classify/present cycle.
type CycleConfig struct {
	Period         time.Duration `yaml:"period"`
	HistorySize    int           `yaml:"history_size"`
	Threshold      float64       `yaml:"threshold"` // °C
	SamplesPerMean int           `yaml:"samples_per_mean"`
	SampleTimeout  time.Duration `yaml:"sample_timeout"` // 0 = one period
	Heartbeat      time.Duration `yaml:"heartbeat"`
}

// SensorConfig selects and configures the temperature source.
type SensorConfig struct {
	Source      string `yaml:"source"` // simulated, thermal or serial
	ThermalZone string `yaml:"thermal_zone"`
	SerialPort  string `yaml:"serial_port"`
	Baud        int    `yaml:"baud"`
}

// IndicatorConfig configures the RGB trend LED.
type IndicatorConfig struct {
	Enabled bool   `yaml:"enabled"`
	Chip    string `yaml:"chip"`
	Red     int    `yaml:"red"`
	Green   int    `yaml:"green"`
	Blue    int    `yaml:"blue"`
}

// TelemetryConfig configures the telemetry line output.
type TelemetryConfig struct {
	SerialPort string `yaml:"serial_port"` // empty = stdout
	Baud       int    `yaml:"baud"`
}

// MQTTConfig configures the broker connection. An empty broker disables MQTT.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
}

// HTTPConfig configures the status page. An empty addr disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Cycle: CycleConfig{
			Period:         time.Second,
			HistorySize:    logic.DefaultHistorySize,
			Threshold:      logic.DefaultThreshold,
			SamplesPerMean: sensor.DefaultSamplesPerMean,
			Heartbeat:      15 * time.Minute,
		},
		Sensor: SensorConfig{
			Source:      SourceSimulated,
			ThermalZone: sensor.DefaultThermalZone,
			SerialPort:  "/dev/ttyACM0",
			Baud:        sensor.DefaultBaudRate,
		},
		Indicator: IndicatorConfig{
			Chip:  gpio.DefaultChip,
			Red:   gpio.DefaultPinRed,
			Green: gpio.DefaultPinGreen,
			Blue:  gpio.DefaultPinBlue,
		},
		Telemetry: TelemetryConfig{
			Baud: telemetry.DefaultBaudRate,
		},
		MQTT: MQTTConfig{
			Broker:   "tcp://192.168.1.200:1883",
			ClientID: "tempcycle",
		},
		HTTP: HTTPConfig{
			Addr: ":80",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Marshal returns the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// SampleTimeout returns the acquisition bound, defaulting to one period.
func (c *Config) SampleTimeout() time.Duration {
	if c.Cycle.SampleTimeout > 0 {
		return c.Cycle.SampleTimeout
	}
	return c.Cycle.Period
}

// Validate reports values the daemon cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Cycle.Period <= 0 {
		errs = append(errs, fmt.Errorf("%w: cycle.period must be positive", ErrInvalid))
	}
	if c.Cycle.HistorySize < 1 {
		errs = append(errs, fmt.Errorf("%w: cycle.history_size must be at least 1", ErrInvalid))
	}
	if c.Cycle.Threshold < 0 {
		errs = append(errs, fmt.Errorf("%w: cycle.threshold must not be negative", ErrInvalid))
	}
	if c.Cycle.SamplesPerMean < 1 {
		errs = append(errs, fmt.Errorf("%w: cycle.samples_per_mean must be at least 1", ErrInvalid))
	}
	switch c.Sensor.Source {
	case SourceSimulated, SourceThermal:
	case SourceSerial:
		if c.Sensor.SerialPort == "" {
			errs = append(errs, fmt.Errorf("%w: sensor.serial_port is required for the serial source", ErrInvalid))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: unknown sensor.source %q", ErrInvalid, c.Sensor.Source))
	}
	if c.Indicator.Enabled {
		pins := map[int]bool{c.Indicator.Red: true, c.Indicator.Green: true, c.Indicator.Blue: true}
		if len(pins) != 3 {
			errs = append(errs, fmt.Errorf("%w: indicator pins must be distinct", ErrInvalid))
		}
	}
	return errors.Join(errs...)
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Cycle.Period == 0 {
		c.Cycle.Period = def.Cycle.Period
	}
	if c.Cycle.HistorySize == 0 {
		c.Cycle.HistorySize = def.Cycle.HistorySize
	}
	if c.Cycle.SamplesPerMean == 0 {
		c.Cycle.SamplesPerMean = def.Cycle.SamplesPerMean
	}
	if c.Cycle.Heartbeat == 0 {
		c.Cycle.Heartbeat = def.Cycle.Heartbeat
	}

	if c.Sensor.Source == "" {
		c.Sensor.Source = def.Sensor.Source
	}
	if c.Sensor.ThermalZone == "" {
		c.Sensor.ThermalZone = def.Sensor.ThermalZone
	}
	if c.Sensor.Baud == 0 {
		c.Sensor.Baud = def.Sensor.Baud
	}

	if c.Indicator.Chip == "" {
		c.Indicator.Chip = def.Indicator.Chip
	}

	if c.Telemetry.Baud == 0 {
		c.Telemetry.Baud = def.Telemetry.Baud
	}

	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}
}
