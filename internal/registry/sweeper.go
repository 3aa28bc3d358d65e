package registry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultSessionTTL    = 24 * time.Hour
	DefaultSweepInterval = time.Hour
)

// StartSweeper runs the expiry sweep on a fixed interval until ctx is
// cancelled. It owns its goroutine; callers stop it by cancelling the
// context they passed at startup.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	go s.sweepLoop(ctx, interval)
}

func (s *Store) sweepLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Debug("session sweeper stopped")
			return
		case <-ticker.C:
			if removed := s.SweepExpired(); removed > 0 {
				s.log.Info("swept expired sessions", zap.Int("removed", removed))
			}
		}
	}
}
