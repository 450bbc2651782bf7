package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/estatedesk/internal/logger"
	"github.com/stwalsh4118/estatedesk/internal/services"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) RunLifecycle(ctx context.Context, now time.Time) (services.LifecycleResult, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(services.LifecycleResult), args.Error(1)
}

func TestNew_RejectsBadSchedule(t *testing.T) {
	_, err := New(new(mockRunner), "every tuesday-ish", logger.Nop())
	assert.Error(t, err)
}

func TestNew_AcceptsDescriptors(t *testing.T) {
	for _, spec := range []string{"@every 1m", "@hourly", "*/5 * * * *"} {
		_, err := New(new(mockRunner), spec, logger.Nop())
		assert.NoError(t, err, spec)
	}
}

func TestRunOnce_PassesUTCNow(t *testing.T) {
	runner := new(mockRunner)
	s, err := New(runner, "@every 1m", logger.Nop())
	require.NoError(t, err)

	fixed := time.Date(2026, 5, 1, 9, 30, 0, 0, time.FixedZone("GST", 4*3600))
	s.now = func() time.Time { return fixed }

	runner.On("RunLifecycle", mock.Anything, fixed.UTC()).
		Return(services.LifecycleResult{Activated: 1, Completed: 2}, nil)

	result, err := s.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Activated)
	assert.Equal(t, int64(2), result.Completed)
	runner.AssertExpectations(t)
}

func TestRunOnce_SetsDeadline(t *testing.T) {
	runner := new(mockRunner)
	s, err := New(runner, "@every 1m", logger.Nop())
	require.NoError(t, err)

	runner.On("RunLifecycle", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything).Return(services.LifecycleResult{}, nil)

	_, err = s.RunOnce(context.Background())
	require.NoError(t, err)
	runner.AssertExpectations(t)
}

func TestRun_LogsFailureWithoutPanicking(t *testing.T) {
	runner := new(mockRunner)
	s, err := New(runner, "@every 1m", logger.Nop())
	require.NoError(t, err)

	runner.On("RunLifecycle", mock.Anything, mock.Anything).
		Return(services.LifecycleResult{}, errors.New("database unavailable"))

	assert.NotPanics(t, s.run)
	runner.AssertNumberOfCalls(t, "RunLifecycle", 1)
}

func TestStartStop(t *testing.T) {
	s, err := New(new(mockRunner), "@every 1h", logger.Nop())
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

func TestKVFields(t *testing.T) {
	fields := kvFields([]interface{}{"entry", 1, "next", "soon", "dangling"})
	assert.Equal(t, map[string]interface{}{"entry": 1, "next": "soon"}, fields)
}
