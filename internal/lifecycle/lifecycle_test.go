package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/socialpulse-onboarding/internal/health"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestShutdown_RunsPhasesInOrder(t *testing.T) {
	s := NewShutdown(testLogger())

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}

	s.Register(PhaseFlush, "logger", record("logger"))
	s.Register(PhaseFlush+1, "late", record("late"))
	s.Register(PhaseRelease, "postgres", record("postgres"))
	s.Register(PhaseRelease, "nil", nil)

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"postgres", "logger", "late"}, order)
}

func TestShutdown_JoinsErrors(t *testing.T) {
	s := NewShutdown(testLogger())
	errDB := errors.New("db close failed")
	ran := false

	s.Register(PhaseRelease, "postgres", func(context.Context) error { return errDB })
	s.Register(PhaseFlush, "logger", func(context.Context) error {
		ran = true
		return nil
	})

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errDB)
	assert.Contains(t, err.Error(), "postgres")
	assert.True(t, ran)
}

func TestProbes(t *testing.T) {
	ctx := context.Background()

	healthy := true
	checker := health.NewChecker(testLogger())
	checker.AddCheck("redis", health.CheckFunc(func(context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("connection refused")
	}))

	probes := NewProbes(checker, testLogger())
	assert.NoError(t, probes.Liveness(ctx))
	assert.NoError(t, probes.Readiness(ctx))

	healthy = false
	err := probes.Readiness(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis: connection refused")

	healthy = true
	probes.MarkDraining()
	assert.Error(t, probes.Readiness(ctx))
	assert.NoError(t, probes.Liveness(ctx))
}

func TestProbes_NoChecker(t *testing.T) {
	assert.NoError(t, NewProbes(nil, nil).Readiness(context.Background()))
}
