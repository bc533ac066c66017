/*
Package bench times the strategies of a parpat.Task.

A Runner executes every strategy of a task for a number of rounds. The
dataset is refreshed with Setup before each timed call, outside the
timed region, so that strategies which modify the dataset in place all
start from the same input. The report holds the mean and standard
deviation of each strategy in milliseconds, and flags every strategy
whose result differs from the result of Sequential in the same round.
*/
package bench

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/exascience/parpat"
	"github.com/exascience/parpat/internal/logger"
	"github.com/exascience/parpat/storage"
)

// DefaultRounds is the number of rounds of a Runner without WithRounds.
const DefaultRounds = 5

// A Measurement holds the timings of one strategy.
type Measurement struct {
	Strategy string

	// Result is the metric returned in the last round.
	Result int

	Timings  []time.Duration
	MeanMs   float64
	StdDevMs float64

	// Diverges is set if the strategy returned a different metric than
	// Sequential in at least one round.
	Diverges bool
}

// A Report holds the measurements of all strategies of a task, in the
// canonical order of parpat.Strategies.
type Report struct {
	Task         string
	N            int
	Rounds       int
	Environment  Environment
	Measurements []Measurement
	Fastest      string
	Slowest      string
}

// Diverging returns the names of the strategies that diverge from
// Sequential.
func (r *Report) Diverging() (names []string) {
	for _, m := range r.Measurements {
		if m.Diverges {
			names = append(names, m.Strategy)
		}
	}
	return
}

// Results converts the measurements into results of a storage session.
func (r *Report) Results() []storage.Result {
	results := make([]storage.Result, len(r.Measurements))
	for i, m := range r.Measurements {
		results[i] = storage.Result{
			Method:   m.Strategy,
			MeanMs:   m.MeanMs,
			StdDevMs: m.StdDevMs,
			N:        r.N,
		}
		if m.Diverges {
			results[i].Comment = fmt.Sprintf("diverges from Sequential, returned %d", m.Result)
		}
	}
	return results
}

// Session returns a storage session describing the report.
func (r *Report) Session() storage.Session {
	return storage.Session{
		Task:        r.Task,
		Description: fmt.Sprintf("%d strategies, %d rounds", len(r.Measurements), r.Rounds),
		Host:        r.Environment.Host,
		OS:          r.Environment.OS,
		Arch:        r.Environment.Arch,
		Cores:       r.Environment.Cores,
		GoVersion:   r.Environment.GoVersion,
	}
}

// An Option configures a Runner.
type Option func(*Runner)

// WithRounds sets the number of timed rounds per strategy. Values < 1 are
// ignored.
func WithRounds(rounds int) Option {
	return func(r *Runner) {
		if rounds > 0 {
			r.rounds = rounds
		}
	}
}

// WithLogger sets the logger of the runner.
func WithLogger(log logger.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.logger = log
		}
	}
}

// A Runner times the strategies of tasks.
type Runner struct {
	rounds int
	logger logger.Logger
}

// NewRunner returns a runner with the given options.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		rounds: DefaultRounds,
		logger: logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type sized interface {
	Len() int
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Run times every strategy of task. It stops at the first failing Setup
// or strategy, or when ctx is done.
func (r *Runner) Run(ctx context.Context, task parpat.Task) (*Report, error) {
	strategies := parpat.Strategies(task)
	measurements := make([]Measurement, len(strategies))
	for i, s := range strategies {
		measurements[i] = Measurement{
			Strategy: s.Name,
			Timings:  make([]time.Duration, 0, r.rounds),
		}
	}

	for round := 0; round < r.rounds; round++ {
		var reference int
		for i, s := range strategies {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := task.Setup(); err != nil {
				return nil, fmt.Errorf("setup of task %s: %w", task.Name(), err)
			}
			start := time.Now()
			result, err := s.Run()
			elapsed := time.Since(start)
			if err != nil {
				return nil, fmt.Errorf("strategy %s of task %s: %w", s.Name, task.Name(), err)
			}

			m := &measurements[i]
			m.Timings = append(m.Timings, elapsed)
			m.Result = result
			if i == 0 {
				reference = result
			} else if result != reference {
				m.Diverges = true
			}
			r.logger.DebugWithContext(ctx, "strategy timed",
				zap.String("strategy", s.Name),
				zap.Int("round", round),
				zap.Int("result", result),
				zap.Duration("elapsed", elapsed))
		}
	}

	report := &Report{
		Task:         task.Name(),
		Rounds:       r.rounds,
		Environment:  CurrentEnvironment(),
		Measurements: measurements,
	}
	if s, ok := task.(sized); ok {
		report.N = s.Len()
	}

	means := make([]float64, len(measurements))
	for i := range measurements {
		m := &measurements[i]
		samples := make([]float64, len(m.Timings))
		for j, d := range m.Timings {
			samples[j] = milliseconds(d)
		}
		m.MeanMs, m.StdDevMs = stat.MeanStdDev(samples, nil)
		if len(samples) < 2 {
			m.StdDevMs = 0
		}
		means[i] = m.MeanMs

		fields := []zap.Field{
			zap.String("task", report.Task),
			zap.String("strategy", m.Strategy),
			zap.Int("result", m.Result),
			zap.Float64("mean_ms", m.MeanMs),
			zap.Float64("std_dev_ms", m.StdDevMs),
		}
		if m.Diverges {
			r.logger.WarnWithContext(ctx, "strategy diverges from Sequential", fields...)
		} else {
			r.logger.InfoWithContext(ctx, "strategy measured", fields...)
		}
	}
	report.Fastest = measurements[floats.MinIdx(means)].Strategy
	report.Slowest = measurements[floats.MaxIdx(means)].Strategy

	return report, nil
}
