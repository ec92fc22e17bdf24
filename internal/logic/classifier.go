package logic

// Default classification parameters.
const (
	// DefaultThreshold is the minimum change in °C between consecutive means
	// that counts as a rise or fall.
	DefaultThreshold = 0.2
	// DefaultHistorySize is the number of means kept by the classifier.
	DefaultHistorySize = 3
)

// History is a fixed-capacity FIFO of recent mean temperatures.
// Not safe for concurrent use.
type History struct {
	buf   []float64
	head  int // next write position
	count int
}

// NewHistory creates a history holding at most capacity values.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]float64, capacity)}
}

// Push appends v, evicting the oldest value when full.
func (h *History) Push(v float64) {
	h.buf[h.head] = v
	h.head = (h.head + 1) % len(h.buf)
	if h.count < len(h.buf) {
		h.count++
	}
}

// Last returns the most recent value and whether one exists.
func (h *History) Last() (float64, bool) {
	if h.count == 0 {
		return 0, false
	}
	return h.buf[(h.head-1+len(h.buf))%len(h.buf)], true
}

// Values returns the stored values, oldest first.
func (h *History) Values() []float64 {
	out := make([]float64, h.count)
	start := (h.head - h.count + len(h.buf)) % len(h.buf)
	for i := range out {
		out[i] = h.buf[(start+i)%len(h.buf)]
	}
	return out
}

// Len returns the number of stored values.
func (h *History) Len() int { return h.count }

// Cap returns the history capacity.
func (h *History) Cap() int { return len(h.buf) }

// Classifier turns a stream of mean temperatures into trend categories.
// The result depends only on the new value and the stored history.
type Classifier struct {
	threshold float64
	history   *History
}

// NewClassifier creates a classifier with the given threshold and history size.
// A negative threshold is treated as zero.
func NewClassifier(threshold float64, historySize int) *Classifier {
	if threshold < 0 {
		threshold = 0
	}
	return &Classifier{
		threshold: threshold,
		history:   NewHistory(historySize),
	}
}

// Classify records v and returns its trend relative to the previous mean.
// The first call always returns TrendUnknown.
func (c *Classifier) Classify(v float64) Trend {
	prev, ok := c.history.Last()
	c.history.Push(v)
	if !ok {
		return TrendUnknown
	}

	delta := v - prev
	switch {
	case delta > c.threshold:
		return TrendRising
	case delta < -c.threshold:
		return TrendFalling
	default:
		return TrendStable
	}
}

// Threshold returns the configured classification threshold.
func (c *Classifier) Threshold() float64 { return c.threshold }

// History returns a copy of the stored means, oldest first.
func (c *Classifier) History() []float64 { return c.history.Values() }
