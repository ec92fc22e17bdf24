package cycle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/temoto/atomic_clock"

	"github.com/sweeney/tempcycle/internal/logic"
)

var (
	// ErrSampleFailed marks a cycle abandoned because acquisition failed.
	ErrSampleFailed = errors.New("cycle: sample failed")
	// ErrOutputFailed marks a cycle whose presentation or indication failed.
	// The cycle still completes.
	ErrOutputFailed = errors.New("cycle: output failed")
	// ErrReportFailed marks a cycle whose telemetry could not be emitted.
	ErrReportFailed = errors.New("cycle: report failed")
)

// Step describes the transition performed by one TryAdvance call.
type Step struct {
	From     Stage
	To       Stage
	Sequence uint64
	// Idle is set when there was nothing to do.
	Idle bool
	// Abandoned is set when the cycle was dropped after a sample failure.
	Abandoned bool
	// Completed is set when the cycle closed on this step.
	Completed *Cycle
}

// Coordinator is the sole owner of the cycle state.
//
// OnTimerTick is the only method allowed from the timer context: it performs
// the Idle → SampleRequested transition using atomics only and never blocks.
// Every later transition belongs to the goroutine calling TryAdvance. Data
// fields are stored before the stage that publishes them, so a reader that
// loads the stage first never sees a value newer than the stage implies.
type Coordinator struct {
	stage    atomic.Uint32
	sequence atomic.Uint64

	temperature    atomic.Uint64 // math.Float64bits
	temperatureSeq atomic.Uint64
	trend          atomic.Value // logic.Trend
	trendSeq       atomic.Uint64

	requestedAt atomic_clock.Clock
	halted      atomic.Bool
	wake        chan struct{}

	ticks            atomic.Uint64
	completed        atomic.Uint64
	overruns         atomic.Uint64
	sampleFailures   atomic.Uint64
	presentFailures  atomic.Uint64
	indicateFailures atomic.Uint64
	reportFailures   atomic.Uint64

	// owned by the TryAdvance goroutine
	durations Durations

	now func() time.Time
}

// NewCoordinator creates an idle coordinator. The now func is used for stage
// timing; pass time.Now outside of tests.
func NewCoordinator(now func() time.Time) *Coordinator {
	if now == nil {
		now = time.Now
	}
	c := &Coordinator{
		wake: make(chan struct{}, 1),
		now:  now,
	}
	c.trend.Store(logic.TrendUnknown)
	return c
}

// OnTimerTick arms a new cycle if the previous one has closed, otherwise it
// records an overrun and leaves the in-flight cycle untouched. It must be
// called from a single producer. The return value is the timer continuation
// flag: false once the coordinator has been halted.
func (c *Coordinator) OnTimerTick() bool {
	if c.halted.Load() {
		return false
	}
	c.ticks.Add(1)

	if Stage(c.stage.Load()) != StageIdle {
		c.overruns.Add(1)
		return true
	}

	c.sequence.Add(1)
	c.requestedAt.SetNow()
	c.stage.Store(uint32(StageSampleRequested))

	select {
	case c.wake <- struct{}{}:
	default:
	}
	return true
}

// Wake returns a channel that receives after a tick arms a new cycle.
func (c *Coordinator) Wake() <-chan struct{} {
	return c.wake
}

// Halt makes subsequent ticks return false so the timer stops repeating.
// An in-flight cycle can still be advanced to completion.
func (c *Coordinator) Halt() {
	c.halted.Store(true)
}

// Halted reports whether Halt was called.
func (c *Coordinator) Halted() bool {
	return c.halted.Load()
}

// TryAdvance performs at most one stage transition using h.
//
//	SampleRequested → Sampled     h.Sample (on error: abandon → Idle)
//	Sampled         → Classified  h.Classify
//	Classified      → Presented   h.Present, h.Indicate
//	Presented       → Idle        h.Report
//
// Errors from Present, Indicate and Report are returned but never stop the
// cycle from progressing.
func (c *Coordinator) TryAdvance(ctx context.Context, h Handler) (Step, error) {
	stage := Stage(c.stage.Load())
	seq := c.sequence.Load()
	step := Step{From: stage, To: stage, Sequence: seq}

	switch stage {
	case StageIdle:
		step.Idle = true
		return step, nil

	case StageSampleRequested:
		c.durations = Durations{}
		start := c.now()
		temp, err := h.Sample(ctx)
		c.durations.Sample = c.now().Sub(start)
		if err != nil {
			c.sampleFailures.Add(1)
			c.stage.Store(uint32(StageIdle))
			step.To = StageIdle
			step.Abandoned = true
			return step, fmt.Errorf("%w: cycle %d: %w", ErrSampleFailed, seq, err)
		}
		c.temperature.Store(math.Float64bits(temp))
		c.temperatureSeq.Store(seq)
		c.stage.Store(uint32(StageSampled))
		step.To = StageSampled
		return step, nil

	case StageSampled:
		temp := math.Float64frombits(c.temperature.Load())
		start := c.now()
		trend := h.Classify(temp)
		c.durations.Classify = c.now().Sub(start)
		c.trend.Store(trend)
		c.trendSeq.Store(seq)
		c.stage.Store(uint32(StageClassified))
		step.To = StageClassified
		return step, nil

	case StageClassified:
		temp := math.Float64frombits(c.temperature.Load())
		trend := c.trend.Load().(logic.Trend)

		var errs []error
		start := c.now()
		if err := h.Present(temp, trend); err != nil {
			c.presentFailures.Add(1)
			errs = append(errs, fmt.Errorf("present: %w", err))
		}
		mid := c.now()
		if err := h.Indicate(trend); err != nil {
			c.indicateFailures.Add(1)
			errs = append(errs, fmt.Errorf("indicate: %w", err))
		}
		c.durations.Present = mid.Sub(start)
		c.durations.Indicate = c.now().Sub(mid)

		c.stage.Store(uint32(StagePresented))
		step.To = StagePresented
		if len(errs) > 0 {
			return step, fmt.Errorf("%w: cycle %d: %w", ErrOutputFailed, seq, errors.Join(errs...))
		}
		return step, nil

	case StagePresented:
		latency := atomic_clock.Since(&c.requestedAt)
		completedAt := c.now()
		cyc := Cycle{
			Sequence:    seq,
			Temperature: math.Float64frombits(c.temperature.Load()),
			Trend:       c.trend.Load().(logic.Trend),
			RequestedAt: completedAt.Add(-latency),
			CompletedAt: completedAt,
			Durations:   c.durations,
		}
		err := h.Report(cyc)
		c.completed.Add(1)
		c.stage.Store(uint32(StageIdle))
		step.To = StageIdle
		step.Completed = &cyc
		if err != nil {
			c.reportFailures.Add(1)
			return step, fmt.Errorf("%w: cycle %d: %w", ErrReportFailed, seq, err)
		}
		return step, nil
	}

	return step, fmt.Errorf("cycle: invalid stage %v", stage)
}

// Snapshot returns a consistent copy of the cycle state. It may be called
// from any goroutine; it retries if the state moved while being read.
func (c *Coordinator) Snapshot() State {
	for {
		stage := Stage(c.stage.Load())
		seq := c.sequence.Load()
		s := State{
			Stage:          stage,
			Sequence:       seq,
			Temperature:    math.Float64frombits(c.temperature.Load()),
			TemperatureSeq: c.temperatureSeq.Load(),
			Trend:          c.trend.Load().(logic.Trend),
			TrendSeq:       c.trendSeq.Load(),
		}
		if c.sequence.Load() == seq && Stage(c.stage.Load()) == stage {
			return s
		}
	}
}

// Stats returns the cycle counters.
func (c *Coordinator) Stats() logic.Counts {
	return logic.Counts{
		Ticks:            c.ticks.Load(),
		Completed:        c.completed.Load(),
		Overruns:         c.overruns.Load(),
		SampleFailures:   c.sampleFailures.Load(),
		PresentFailures:  c.presentFailures.Load(),
		IndicateFailures: c.indicateFailures.Load(),
		ReportFailures:   c.reportFailures.Load(),
	}
}
