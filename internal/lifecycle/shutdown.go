// Package lifecycle coordinates process readiness and graceful shutdown.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Hook describes a named shutdown hook.
type Hook struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Shutdown runs registered hooks phase by phase. Hooks in the same phase run
// concurrently; phases run in ascending order, so stores close after the
// components that use them.
type Shutdown struct {
	mu     sync.Mutex
	phases map[int][]Hook
	log    *slog.Logger
}

// Shutdown phases used by the server.
const (
	// PhaseRelease closes connections to backing stores.
	PhaseRelease = iota
	// PhaseFlush flushes telemetry sinks after everything else has logged.
	PhaseFlush
)

// NewShutdown constructs a new Shutdown coordinator.
func NewShutdown(log *slog.Logger) *Shutdown {
	if log == nil {
		log = slog.Default()
	}

	return &Shutdown{
		phases: make(map[int][]Hook),
		log:    log,
	}
}

// Register adds a named shutdown hook to phase.
func (s *Shutdown) Register(phase int, name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.phases[phase] = append(s.phases[phase], Hook{Name: name, Fn: fn})
}

// Execute runs every phase and joins the hook errors. A failing hook does not
// stop later phases.
func (s *Shutdown) Execute(ctx context.Context) error {
	s.mu.Lock()
	order := make([]int, 0, len(s.phases))
	hooks := make(map[int][]Hook, len(s.phases))
	for phase, list := range s.phases {
		order = append(order, phase)
		hooks[phase] = append([]Hook(nil), list...)
	}
	s.mu.Unlock()

	sort.Ints(order)

	start := time.Now()
	s.log.Info("shutdown sequence started", slog.Int("phases", len(order)))

	var errs []error
	for _, phase := range order {
		errs = append(errs, s.runPhase(ctx, hooks[phase])...)
	}

	s.log.Info("shutdown sequence finished", slog.Duration("elapsed", time.Since(start)))

	return errors.Join(errs...)
}

func (s *Shutdown) runPhase(ctx context.Context, hooks []Hook) []error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, hook := range hooks {
		wg.Add(1)
		go func(h Hook) {
			defer wg.Done()

			s.log.Info("running shutdown hook", slog.String("hook", h.Name))
			if err := h.Fn(ctx); err != nil {
				s.log.Error("shutdown hook failed", slog.String("hook", h.Name), slog.Any("error", err))
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", h.Name, err))
				mu.Unlock()
				return
			}
			s.log.Info("shutdown hook completed", slog.String("hook", h.Name))
		}(hook)
	}

	wg.Wait()
	return errs
}
