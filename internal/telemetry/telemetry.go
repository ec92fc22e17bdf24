// Package telemetry emits one report per completed cycle: a fixed-format text
// line on the serial link and a JSON event on MQTT.
package telemetry

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/sweeney/tempcycle/internal/cycle"
	"github.com/sweeney/tempcycle/internal/mqtt"
)

// DefaultBaudRate is the baud rate of the telemetry UART.
const DefaultBaudRate = 115200

// ErrWrite is returned when the telemetry line could not be written.
var ErrWrite = errors.New("telemetry write failed")

// FormatLine renders the telemetry line for a completed cycle, newline included.
func FormatLine(c cycle.Cycle) string {
	return fmt.Sprintf("Temperature: %.2f C | sample: %.3fs | classify: %.3fs | present: %.3fs | indicate: %.3fs | Trend: %s | seq: %d\n",
		c.Temperature,
		seconds(c.Durations.Sample),
		seconds(c.Durations.Classify),
		seconds(c.Durations.Present),
		seconds(c.Durations.Indicate),
		c.Trend,
		c.Sequence,
	)
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}

// OpenSerial opens a serial port as a telemetry sink.
func OpenSerial(port string, baud int) (io.WriteCloser, error) {
	if baud == 0 {
		baud = DefaultBaudRate
	}
	p, err := serial.Open(port, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open telemetry port %s: %w", port, err)
	}
	return p, nil
}

// OpenSink returns the serial port when one is configured, stdout otherwise.
func OpenSink(port string, baud int) (io.WriteCloser, error) {
	if port == "" {
		return nopCloser{os.Stdout}, nil
	}
	return OpenSerial(port, baud)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Reporter writes the telemetry line and publishes the cycle to MQTT.
// A nil publisher disables MQTT.
type Reporter struct {
	mu  sync.Mutex
	w   io.Writer
	pub mqtt.Publisher
	log *slog.Logger
}

var _ cycle.Reporter = (*Reporter)(nil)

// NewReporter creates a Reporter.
func NewReporter(w io.Writer, pub mqtt.Publisher, log *slog.Logger) *Reporter {
	if log == nil {
		log = slog.Default()
	}
	return &Reporter{w: w, pub: pub, log: log}
}

// Report emits the cycle. Both outputs are attempted even if the first fails.
func (r *Reporter) Report(c cycle.Cycle) error {
	var errs []error

	line := FormatLine(c)
	r.mu.Lock()
	_, err := io.WriteString(r.w, line)
	r.mu.Unlock()
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrWrite, err))
	}

	if r.pub != nil {
		if err := r.pub.Publish(c); err != nil {
			errs = append(errs, fmt.Errorf("publish cycle %d: %w", c.Sequence, err))
		}
	}

	r.log.Debug("cycle reported", "seq", c.Sequence, "temperature", c.Temperature, "trend", c.Trend.String())
	return errors.Join(errs...)
}
