package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChecker_Check(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	checker := NewChecker(testLogger())
	checker.AddCheck("redis", NewRedisChecker(client))
	checker.AddCheck("static", CheckFunc(func(context.Context) error { return nil }))
	checker.AddCheck("", CheckFunc(func(context.Context) error { return nil }))
	checker.AddCheck("nil", nil)

	assert.Equal(t, []string{"redis", "static"}, checker.Components())

	results := checker.Check(context.Background())
	assert.Equal(t, map[string]string{"redis": StatusOK, "static": StatusOK}, results)
	assert.True(t, Healthy(results))

	mr.Close()
	results = checker.Check(context.Background())
	assert.NotEqual(t, StatusOK, results["redis"])
	assert.False(t, Healthy(results))
}

func TestChecker_ReportsErrorText(t *testing.T) {
	checker := NewChecker(testLogger())
	checker.AddCheck("db", CheckFunc(func(context.Context) error { return errors.New("connection refused") }))

	assert.Equal(t, map[string]string{"db": "connection refused"}, checker.Check(context.Background()))
}

func TestNilCheckers(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, NewDBChecker(nil).HealthCheck(ctx))
	assert.Error(t, NewRedisChecker(nil).HealthCheck(ctx))
}
