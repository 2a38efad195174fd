// Package scheduler runs periodic background jobs: turning due recurring
// expenses into expenses and purging expired refresh tokens.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/robfig/cron/v3"
)

type Materializer interface {
	MaterializeDue(ctx context.Context, now time.Time) (int, error)
}

type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron      *cron.Cron
	recurring Materializer
	tokens    TokenPurger
	logger    logging.Logger
	now       func() time.Time
}

// New parses spec (standard cron syntax or descriptors such as "@every 1h").
func New(spec string, recurring Materializer, tokens TokenPurger, l logging.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(),
		recurring: recurring,
		tokens:    tokens,
		logger:    l.With("module", "scheduler"),
		now:       time.Now,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.runOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Run does one pass right away, so rows that fell due while the server was
// down are picked up, then follows the schedule until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	s.runOnce(ctx)
	s.cron.Start()
	s.logger.Info(ctx, "Scheduler started")

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info(ctx, "Scheduler stopped")
}

func (s *Scheduler) runOnce(ctx context.Context) {
	n, err := s.recurring.MaterializeDue(ctx, s.now())
	if err != nil {
		s.logger.Error(ctx, "materialize recurring expenses", "error", err)
	} else if n > 0 {
		s.logger.Info(ctx, "recurring expenses materialized", "count", n)
	}

	purged, err := s.tokens.PurgeExpiredTokens(ctx)
	if err != nil {
		s.logger.Error(ctx, "purge refresh tokens", "error", err)
	} else if purged > 0 {
		s.logger.Debug(ctx, "expired refresh tokens purged", "count", purged)
	}
}
