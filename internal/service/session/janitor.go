package session

import (
	"context"
	"sync"
	"time"

	"github.com/sandevgo/searchbot/pkg/log"
)

// Janitor periodically expires idle sessions.
type Janitor struct {
	mgr      *Manager
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
}

func NewJanitor(mgr *Manager, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Janitor{
		mgr:      mgr,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (j *Janitor) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	logger.Debug().Dur("interval", j.interval).Msg("session janitor started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-j.stop:
			return nil
		case <-ticker.C:
			if n := j.mgr.Expire(ctx); n > 0 {
				logger.Info().Int("expired", n).Msg("idle sessions ended")
			}
		}
	}
}

func (j *Janitor) Shutdown(ctx context.Context) error {
	j.stopOnce.Do(func() { close(j.stop) })
	return nil
}
