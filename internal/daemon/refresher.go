package daemon

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RefresherConfig holds configuration for the refresher.
type RefresherConfig struct {
	Interval time.Duration
	Logger   zerolog.Logger
}

// Refresher periodically re-reads the environment so windows opened or
// closed outside the prompt are tiled.
type Refresher struct {
	interval time.Duration
	refresh  func() error
	logger   zerolog.Logger
}

// NewRefresher creates a refresher calling refresh every interval.
func NewRefresher(cfg RefresherConfig, refresh func() error) *Refresher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	return &Refresher{
		interval: interval,
		refresh:  refresh,
		logger:   cfg.Logger,
	}
}

// Run starts the refresh loop. Blocks until context is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Msg("refresher started")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("refresher stopped")
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Refresher) tick() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error().Interface("error", err).Msg("refresher panic recovered")
		}
	}()

	if err := r.refresh(); err != nil {
		r.logger.Debug().Err(err).Msg("refresh failed")
	}
}
