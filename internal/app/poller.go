package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/five82/linkboard/internal/viewstate"
)

const maxBackoff = 30 * time.Second

// Reloader is the part of the view-state controller the poller drives.
type Reloader interface {
	Reload(ctx context.Context) (viewstate.Snapshot, error)
}

// RunPoller reloads the view state every interval until ctx is cancelled.
// Consecutive failures back off exponentially up to maxBackoff. It blocks.
func RunPoller(ctx context.Context, r Reloader, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	failures := 0
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if _, err := r.Reload(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			logger.Warn("background refresh failed",
				zap.Error(err),
				zap.Int("failures", failures),
				zap.Duration("next_in", calculateBackoff(failures, interval)))
		} else {
			failures = 0
		}
		timer.Reset(calculateBackoff(failures, interval))
	}
}

// calculateBackoff doubles base once per consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
