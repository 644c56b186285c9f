package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_SerializesSameAccount(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
		wg      sync.WaitGroup
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			unlock, err := locker.Lock(ctx, 1)
			if err != nil {
				t.Errorf("unexpected lock error: %v", err)
				return
			}
			defer unlock()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(2 * time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}

	wg.Wait()
	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, locker.slots)
}

func TestMemoryLocker_DifferentAccountsIndependent(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	unlockA, err := locker.Lock(ctx, 1)
	require.NoError(t, err)
	defer unlockA()

	ctxB, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	unlockB, err := locker.Lock(ctxB, 2)
	require.NoError(t, err)
	unlockB()
}

func TestMemoryLocker_ContextCancelled(t *testing.T) {
	locker := NewMemoryLocker()

	unlock, err := locker.Lock(context.Background(), 5)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock()

	relock, err := locker.Lock(context.Background(), 5)
	require.NoError(t, err)
	relock()
}

func TestRedisLocker_Contention(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	locker := NewRedisLocker(client, testLogger(), time.Second)
	ctx := context.Background()

	var wg sync.WaitGroup
	errCh := make(chan error, 2)
	release := make(chan struct{})

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, 77)
			if err == nil {
				<-release
				unlock()
			}
			errCh <- err
		}()
	}

	// the loser returns right away; let the winner go once it has reported
	first := <-errCh
	close(release)
	wg.Wait()
	close(errCh)

	errs := []error{first}
	for err := range errCh {
		errs = append(errs, err)
	}

	var success, locked int
	for _, err := range errs {
		switch {
		case err == nil:
			success++
		case errors.Is(err, ErrStateLocked):
			locked++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, success)
	assert.Equal(t, 1, locked)
}

func TestRedisLocker_ReleaseAllowsRelock(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	locker := NewRedisLocker(client, testLogger(), time.Second)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, 9)
	require.NoError(t, err)
	unlock()

	unlock, err = locker.Lock(ctx, 9)
	require.NoError(t, err)
	unlock()
}

func TestRedisLocker_ReleaseKeepsForeignToken(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	locker := NewRedisLocker(client, testLogger(), time.Second)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, 3)
	require.NoError(t, err)

	// simulate expiry and takeover by another instance
	require.NoError(t, client.Set(ctx, "onboarding:lock:3", "someone-else", time.Second).Err())
	unlock()

	value, err := client.Get(ctx, "onboarding:lock:3").Result()
	require.NoError(t, err)
	assert.Equal(t, "someone-else", value)
}

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}

	return client, cleanup
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
