package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/Proton-105/socialpulse-onboarding/internal/health"
)

// HealthChecker exposes liveness and readiness probes.
type HealthChecker interface {
	Liveness(ctx context.Context) error
	Readiness(ctx context.Context) error
}

// Probes answers liveness from process state and readiness from component checks.
type Probes struct {
	checker  *health.Checker
	draining atomic.Bool
	log      *slog.Logger
}

var _ HealthChecker = (*Probes)(nil)

// NewProbes creates probes over checker; a nil checker makes readiness follow liveness.
func NewProbes(checker *health.Checker, log *slog.Logger) *Probes {
	if log == nil {
		log = slog.Default()
	}
	return &Probes{checker: checker, log: log}
}

// MarkDraining makes readiness fail so load balancers stop routing during shutdown.
func (p *Probes) MarkDraining() {
	p.draining.Store(true)
}

// Liveness reports success while the process is running.
func (p *Probes) Liveness(ctx context.Context) error {
	p.log.Debug("liveness probe called")
	return nil
}

// Readiness fails while draining or when any registered component is unhealthy.
func (p *Probes) Readiness(ctx context.Context) error {
	if p.draining.Load() {
		return fmt.Errorf("shutting down")
	}
	if p.checker == nil {
		return nil
	}

	results := p.checker.Check(ctx)
	if health.Healthy(results) {
		return nil
	}

	failed := make([]string, 0, len(results))
	for name, status := range results {
		if status != health.StatusOK {
			failed = append(failed, name+": "+status)
		}
	}
	sort.Strings(failed)

	return fmt.Errorf("components unhealthy: %s", strings.Join(failed, "; "))
}
