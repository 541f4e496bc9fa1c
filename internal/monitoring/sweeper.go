package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Purger deletes expired results and reports how many were removed.
type Purger interface {
	DeleteExpired(ctx context.Context) (int, error)
}

// Sweeper periodically purges expired results from a store.
type Sweeper struct {
	purger   Purger
	interval time.Duration
}

// NewSweeper creates a Sweeper. A non-positive interval defaults to 5 minutes.
func NewSweeper(p Purger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{purger: p, interval: interval}
}

// Run purges on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	log := zap.L().With(zap.String("component", "monitoring.sweeper"))
	log.Info("starting expired result sweeper", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("expired result sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one purge and returns the number of removed results. Errors
// are logged.
func (s *Sweeper) Sweep(ctx context.Context) int {
	n, err := s.purger.DeleteExpired(ctx)
	if err != nil {
		zap.L().Error("monitoring: purge expired results", zap.Error(err))
		return 0
	}
	if n > 0 {
		StoreRemovals.WithLabelValues("expired").Add(float64(n))
		zap.L().Info("monitoring: purged expired results", zap.Int("removed", n))
	}
	return n
}
