package cycle

import (
	"context"
	"errors"
	"log/slog"
)

// Loop is the cooperative consumer: it drives the coordinator through every
// pending stage using its handler.
type Loop struct {
	coord   *Coordinator
	handler Handler
	log     *slog.Logger
}

// NewLoop creates a main loop. A nil logger uses slog.Default().
func NewLoop(coord *Coordinator, handler Handler, log *slog.Logger) *Loop {
	if log == nil {
		log = slog.Default()
	}
	return &Loop{coord: coord, handler: handler, log: log}
}

// Poll advances the coordinator until it is idle and returns the cycles that
// completed. Stage failures are logged, not returned.
func (l *Loop) Poll(ctx context.Context) ([]Cycle, error) {
	var done []Cycle
	for {
		if err := ctx.Err(); err != nil {
			return done, err
		}

		step, err := l.coord.TryAdvance(ctx, l.handler)
		if err != nil {
			l.logStepError(step, err)
		}
		if step.Completed != nil {
			done = append(done, *step.Completed)
		}
		if step.Idle || step.To == StageIdle {
			return done, nil
		}
		if step.To == step.From {
			// no progress possible
			return done, err
		}
	}
}

func (l *Loop) logStepError(step Step, err error) {
	switch {
	case errors.Is(err, ErrSampleFailed):
		l.log.Warn("cycle abandoned", "seq", step.Sequence, "err", err)
	case errors.Is(err, ErrOutputFailed):
		l.log.Warn("output failed", "seq", step.Sequence, "stage", step.To, "err", err)
	case errors.Is(err, ErrReportFailed):
		l.log.Warn("report failed", "seq", step.Sequence, "err", err)
	default:
		l.log.Error("cycle error", "seq", step.Sequence, "stage", step.From, "err", err)
	}
}
