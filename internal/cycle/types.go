// Package cycle coordinates the hand-off between the periodic timer callback
// and the main loop that samples, classifies, presents and reports.
package cycle

import (
	"context"
	"fmt"
	"time"

	"github.com/sweeney/tempcycle/internal/logic"
)

// Stage is the progress marker of the current cycle.
type Stage uint32

const (
	StageIdle Stage = iota
	StageSampleRequested
	StageSampled
	StageClassified
	StagePresented
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "IDLE"
	case StageSampleRequested:
		return "SAMPLE_REQUESTED"
	case StageSampled:
		return "SAMPLED"
	case StageClassified:
		return "CLASSIFIED"
	case StagePresented:
		return "PRESENTED"
	}
	return fmt.Sprintf("Stage(%d)", uint32(s))
}

// State is a consistent view of the shared cycle state.
// Temperature is only meaningful when Stage >= StageSampled and Trend when
// Stage >= StageClassified. The *Seq fields carry the sequence of the cycle
// that wrote each value.
type State struct {
	Stage          Stage
	Sequence       uint64
	Temperature    float64
	TemperatureSeq uint64
	Trend          logic.Trend
	TrendSeq       uint64
}

// Durations records how long each stage of a cycle took.
type Durations struct {
	Sample   time.Duration
	Classify time.Duration
	Present  time.Duration
	Indicate time.Duration
}

// Cycle is the record of one completed cycle, handed to the reporter.
type Cycle struct {
	Sequence    uint64
	Temperature float64
	Trend       logic.Trend
	RequestedAt time.Time
	CompletedAt time.Time
	Durations   Durations
}

// Sampler performs one blocking acquisition and returns the mean temperature.
type Sampler interface {
	Sample(ctx context.Context) (float64, error)
}

// Classifier turns a new mean into a trend category.
type Classifier interface {
	Classify(v float64) logic.Trend
}

// Presenter renders the current temperature and trend.
type Presenter interface {
	Render(temperature float64, trend logic.Trend) error
}

// Indicator reflects the trend on an LED.
type Indicator interface {
	SetByTrend(trend logic.Trend) error
}

// Reporter emits telemetry for a completed cycle.
type Reporter interface {
	Report(c Cycle) error
}

// Handler performs the work of each stage. It is only ever called from the
// main loop, never from the timer callback.
type Handler interface {
	Sample(ctx context.Context) (float64, error)
	Classify(v float64) logic.Trend
	Present(temperature float64, trend logic.Trend) error
	Indicate(trend logic.Trend) error
	Report(c Cycle) error
}

// Stages adapts individual collaborators into a Handler.
// Nil Presenter, Indicator and Reporter are treated as no-ops.
type Stages struct {
	Sampler    Sampler
	Classifier Classifier
	Presenter  Presenter
	Indicator  Indicator
	Reporter   Reporter
}

var _ Handler = Stages{}

func (s Stages) Sample(ctx context.Context) (float64, error) { return s.Sampler.Sample(ctx) }

func (s Stages) Classify(v float64) logic.Trend { return s.Classifier.Classify(v) }

func (s Stages) Present(temperature float64, trend logic.Trend) error {
	if s.Presenter == nil {
		return nil
	}
	return s.Presenter.Render(temperature, trend)
}

func (s Stages) Indicate(trend logic.Trend) error {
	if s.Indicator == nil {
		return nil
	}
	return s.Indicator.SetByTrend(trend)
}

func (s Stages) Report(c Cycle) error {
	if s.Reporter == nil {
		return nil
	}
	return s.Reporter.Report(c)
}
