package sensor

// FakeReader is a test double that returns scripted readings.
type FakeReader struct {
	// Values contains scripted readings. Each Read consumes the next one;
	// once exhausted, the last value repeats.
	Values []float64

	// Errors, if set, are returned by the Read call at the same index.
	Errors []error

	// ReadError, if set, is returned by every Read.
	ReadError error

	// Reads counts calls to Read.
	Reads int

	// Closed tracks if Close was called.
	Closed bool

	index int
}

// NewFakeReader creates a FakeReader with the given values.
func NewFakeReader(values ...float64) *FakeReader {
	return &FakeReader{Values: values}
}

// Read returns the next scripted reading.
func (f *FakeReader) Read() (float64, error) {
	i := f.Reads
	f.Reads++
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if i < len(f.Errors) && f.Errors[i] != nil {
		return 0, f.Errors[i]
	}
	if len(f.Values) == 0 {
		return 0, ErrNoReadings
	}

	v := f.Values[f.index]
	if f.index < len(f.Values)-1 {
		f.index++
	}
	return v, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}
