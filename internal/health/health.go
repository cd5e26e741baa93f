// Package health aggregates dependency checks for the service probes.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Status is the outcome of a single dependency check.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// CheckFunc probes one dependency. It must honor ctx cancellation.
type CheckFunc func(ctx context.Context) Status

const checkTimeout = 5 * time.Second

// Report is the aggregate outcome of all registered checks. Ready is
// false only when at least one check is down; degraded dependencies do
// not block readiness.
type Report struct {
	Ready  bool              `json:"ready"`
	Checks map[string]Status `json:"checks"`
}

// Checker runs registered dependency checks on demand.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
	logger zerolog.Logger
}

func NewChecker(logger zerolog.Logger) *Checker {
	return &Checker{
		checks: make(map[string]CheckFunc),
		logger: logger.With().Str("component", "health").Logger(),
	}
}

// Register adds a named check. Re-registering a name replaces it.
func (c *Checker) Register(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = fn
}

// Run executes every registered check concurrently, each under its own
// timeout, and aggregates the outcomes.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	report := Report{Ready: true, Checks: make(map[string]Status, len(checks))}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for name, fn := range checks {
		wg.Add(1)
		go func(name string, fn CheckFunc) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			status := fn(checkCtx)
			if status == StatusDown {
				c.logger.Warn().Str("check", name).Msg("dependency down")
			}
			mu.Lock()
			report.Checks[name] = status
			if status == StatusDown {
				report.Ready = false
			}
			mu.Unlock()
		}(name, fn)
	}
	wg.Wait()

	return report
}

// IsReady reports whether no registered check is down.
func (c *Checker) IsReady(ctx context.Context) bool {
	return c.Run(ctx).Ready
}
