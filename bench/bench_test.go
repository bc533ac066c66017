package bench

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/exascience/parpat"
	"github.com/exascience/parpat/executor"
	"github.com/exascience/parpat/internal/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errSetup = errors.New("setup failed")

type evenTask struct {
	*executor.Executor[int]
	setups    int
	failSetup bool
	diverge   bool
}

var _ parpat.Task = (*evenTask)(nil)

func newEvenTask() *evenTask {
	return &evenTask{Executor: executor.New(func(x int) bool { return x%2 == 0 }, executor.WithWorkers(2))}
}

func (t *evenTask) Name() string { return "even values" }

func (t *evenTask) Setup() error {
	t.setups++
	if t.failSetup {
		return errSetup
	}
	t.Load([]int{1, 2, 3, 4, 5, 6})
	return nil
}

func (t *evenTask) LockedCounter() (int, error) {
	if t.diverge {
		return 42, nil
	}
	return t.Executor.LockedCounter()
}

func TestRun(t *testing.T) {
	task := newEvenTask()
	report, err := NewRunner(WithRounds(3)).Run(context.Background(), task)
	require.NoError(t, err)

	require.Equal(t, 3*13, task.setups)
	require.Equal(t, "even values", report.Task)
	require.Equal(t, 6, report.N)
	require.Equal(t, 3, report.Rounds)
	require.Len(t, report.Measurements, 13)
	require.Empty(t, report.Diverging())
	for i, m := range report.Measurements {
		require.Equal(t, parpat.Strategies(task)[i].Name, m.Strategy)
		require.Equal(t, 3, m.Result)
		require.Len(t, m.Timings, 3)
		require.GreaterOrEqual(t, m.MeanMs, 0.0)
		require.GreaterOrEqual(t, m.StdDevMs, 0.0)
	}
	require.NotEmpty(t, report.Fastest)
	require.NotEmpty(t, report.Slowest)
	require.Equal(t, CurrentEnvironment(), report.Environment)
}

func TestRunSingleRound(t *testing.T) {
	report, err := NewRunner(WithRounds(1), WithRounds(0)).Run(context.Background(), newEvenTask())
	require.NoError(t, err)
	for _, m := range report.Measurements {
		require.Zero(t, m.StdDevMs)
	}
}

func TestDivergence(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	task := newEvenTask()
	task.diverge = true

	report, err := NewRunner(WithRounds(2), WithLogger(&logger.ZapLogger{Logger: zap.New(core)})).
		Run(context.Background(), task)
	require.NoError(t, err)
	require.Equal(t, []string{"LockedCounter"}, report.Diverging())

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	require.Equal(t, "LockedCounter", warnings[0].ContextMap()["strategy"])
	require.Len(t, logs.FilterMessage("strategy measured").All(), 12)

	results := report.Results()
	require.Len(t, results, 13)
	for _, result := range results {
		require.Equal(t, 6, result.N)
		if result.Method == "LockedCounter" {
			require.Contains(t, result.Comment, "returned 42")
		} else {
			require.Empty(t, result.Comment)
		}
	}

	session := report.Session()
	require.Equal(t, "even values", session.Task)
	require.Equal(t, report.Environment.Cores, session.Cores)
}

func TestSetupFailure(t *testing.T) {
	task := newEvenTask()
	task.failSetup = true
	_, err := NewRunner().Run(context.Background(), task)
	require.ErrorIs(t, err, errSetup)
	require.Equal(t, 1, task.setups)
}

func TestStrategyFailure(t *testing.T) {
	task := newEvenTask()
	task.Executor = executor.New(func(x int) bool {
		if x == 5 {
			panic("five")
		}
		return false
	})
	_, err := NewRunner().Run(context.Background(), task)
	require.Error(t, err)
	require.Contains(t, err.Error(), "strategy Sequential")
	require.Contains(t, err.Error(), "five")
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	task := newEvenTask()
	_, err := NewRunner().Run(ctx, task)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, task.setups)
}
