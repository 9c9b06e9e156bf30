// Package sweeper proactively clears expired pending tokens. Redemption
// already rejects them lazily; the sweep exists so a stale token does not
// sit in the directory as a replay target until someone tries it.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/wpup/conauth/internal/metrics"
	"github.com/wpup/conauth/internal/repository"
)

type Sweeper struct {
	directory repository.AccountDirectory
	schedule  cron.Schedule
	tokenTTL  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// New parses spec as a standard cron expression and returns a sweeper that
// fires on that schedule.
func New(directory repository.AccountDirectory, spec string, tokenTTL time.Duration, logger *slog.Logger) (*Sweeper, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse sweep cron %q: %w", spec, err)
	}
	return &Sweeper{
		directory: directory,
		schedule:  schedule,
		tokenTTL:  tokenTTL,
		logger:    logger.With("component", "sweeper"),
		now:       time.Now,
	}, nil
}

// WithClock overrides the time source. Test hook.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("sweeper started", "token_ttl", s.tokenTTL)

	for {
		next := s.schedule.Next(s.now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("sweeper shut down")
			return
		case <-timer.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep clears every pending token whose validity window has elapsed.
func (s *Sweeper) Sweep(ctx context.Context) {
	start := s.now()
	cutoff := start.Add(-s.tokenTTL)

	purged, err := s.directory.PurgeExpiredTokens(ctx, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "sweep purge", "error", err)
		return
	}

	metrics.SweepCycleDuration.Observe(time.Since(start).Seconds())
	if purged > 0 {
		metrics.SweepPurgedTotal.Add(float64(purged))
		s.logger.InfoContext(ctx, "swept expired tokens", "purged", purged)
	}
}
