// Package worker runs the periodic housekeeping jobs.
package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/metrics"
)

// TokenPurger clears password reset tokens past their expiry.
type TokenPurger interface {
	PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// LimiterSweeper drops idle rate limiter buckets.
type LimiterSweeper interface {
	Cleanup(maxIdle time.Duration) int
}

// LimiterIdle is how long a client IP may stay quiet before its bucket is dropped.
const LimiterIdle = 10 * time.Minute

type Scheduler struct {
	cron    *cron.Cron
	tokens  TokenPurger
	limiter LimiterSweeper
	now     func() time.Time
}

// New registers the cleanup job on spec, a standard five field cron
// expression or a descriptor such as "@every 1h". limiter may be nil.
func New(spec string, tokens TokenPurger, limiter LimiterSweeper) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		tokens:  tokens,
		limiter: limiter,
		now:     time.Now,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.RunCleanup(context.Background()) }); err != nil {
		return nil, err
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Warn().Msg("scheduler stop timed out")
	}
}

// RunCleanup purges expired reset tokens and sweeps the rate limiter.
func (s *Scheduler) RunCleanup(ctx context.Context) {
	n, err := s.tokens.PurgeExpiredResetTokens(ctx, s.now())
	metrics.RecordJobRun("purge_reset_tokens", err)
	if err != nil {
		log.Error().Err(err).Msg("purge expired reset tokens failed")
	} else if n > 0 {
		log.Info().Int64("count", n).Msg("expired reset tokens purged")
	}

	if s.limiter != nil {
		dropped := s.limiter.Cleanup(LimiterIdle)
		metrics.RecordJobRun("limiter_sweep", nil)
		log.Debug().Int("count", dropped).Msg("rate limiter swept")
	}
}
