package sensor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate is the USB CDC baud rate used by the sensor MCU.
const DefaultBaudRate = 115200

// SerialReader reads raw RP2040 temperature-channel counts, one decimal
// number per line, from a serial-attached microcontroller.
type SerialReader struct {
	rc io.ReadCloser
	br *bufio.Reader

	// set after a read was cut short mid-line; the rest of that line is
	// dropped before the next reading is parsed
	resync bool
}

// OpenSerialReader opens the named port. timeout bounds each line read.
func OpenSerialReader(port string, baud int, timeout time.Duration) (*SerialReader, error) {
	if port == "" {
		return nil, fmt.Errorf("%w: no serial port configured", ErrInvalidChannel)
	}
	if baud == 0 {
		baud = DefaultBaudRate
	}
	p, err := serial.Open(port, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrInvalidChannel, port, err)
	}
	if timeout > 0 {
		if err := p.SetReadTimeout(timeout); err != nil {
			p.Close()
			return nil, fmt.Errorf("set read timeout on %s: %w", port, err)
		}
	}
	return NewSerialReader(timeoutReader{p}), nil
}

// NewSerialReader wraps an already open stream.
func NewSerialReader(rc io.ReadCloser) *SerialReader {
	return &SerialReader{rc: rc, br: bufio.NewReader(rc)}
}

// Read returns the next reading in °C. Blank lines are skipped. A line that
// is interrupted by a timeout or read error is never parsed.
func (r *SerialReader) Read() (float64, error) {
	for {
		line, err := r.readLine()
		if err != nil {
			return 0, err
		}
		if r.resync {
			r.resync = false
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		raw, err := strconv.ParseUint(line, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("parse reading %q: %w", line, err)
		}
		if raw >= adcMaxCounts {
			return 0, fmt.Errorf("reading %d out of 12-bit range", raw)
		}
		return RP2040Celsius(uint16(raw)), nil
	}
}

// readLine returns one complete line. Partial data read before an error is
// discarded and marks the stream for resync.
func (r *SerialReader) readLine() (string, error) {
	line, err := r.br.ReadString('\n')
	if err == nil {
		return line, nil
	}
	if line != "" {
		r.resync = true
	}
	if errors.Is(err, ErrTimeout) {
		return "", err
	}
	return "", fmt.Errorf("read serial: %w", err)
}

// Close closes the port.
func (r *SerialReader) Close() error {
	return r.rc.Close()
}

// timeoutReader turns the (0, nil) result of an expired serial read timeout
// into ErrTimeout.
type timeoutReader struct {
	serial.Port
}

func (t timeoutReader) Read(p []byte) (int, error) {
	n, err := t.Port.Read(p)
	if n == 0 && err == nil {
		return 0, ErrTimeout
	}
	return n, err
}
