package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/solrent/solrent/internal/security"
)

// Janitor periodically prunes expired fixed-window records from the rate
// limiter so abandoned keys do not accumulate.
type Janitor struct {
	limiter  *security.RateLimiter
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewJanitor creates a new janitor
func NewJanitor(limiter *security.RateLimiter, logger *slog.Logger, interval time.Duration) *Janitor {
	return &Janitor{
		limiter:  limiter,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic prune task
func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.runPrune()
		case <-j.stopCh:
			j.logger.Info("rate limiter janitor stopped")
			return
		case <-ctx.Done():
			j.logger.Info("rate limiter janitor context cancelled")
			return
		}
	}
}

func (j *Janitor) runPrune() {
	pruned := j.limiter.Prune()
	if pruned > 0 {
		j.logger.Info("pruned expired rate limit records",
			slog.Int("pruned", pruned),
			slog.Int("remaining", j.limiter.Len()))
	}
}

// Stop signals the janitor to stop
func (j *Janitor) Stop() {
	close(j.stopCh)
}
