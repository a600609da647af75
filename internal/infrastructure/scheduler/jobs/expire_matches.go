package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/match"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPIRE MATCHES JOB
// ══════════════════════════════════════════════════════════════════════════════

// ExpireMatchesJob closes scheduled matches whose time passed long ago
// without anyone recording results. Expired matches stay visible in history
// but no longer block the schedule or await results.
type ExpireMatchesJob struct {
	// Dependencies
	matchRepo      match.Repository
	eventPublisher shared.EventPublisher
	logger         *slog.Logger

	// Configuration
	config ExpireMatchesConfig

	// State (for metrics)
	lastExpireStats atomic.Value // *ExpireStats
}

// ExpireMatchesConfig contains configuration for the expiry job.
type ExpireMatchesConfig struct {
	// Grace is how long after the scheduled time a match may still
	// receive results before it is expired.
	Grace time.Duration

	// Timeout is the maximum duration for the entire run.
	Timeout time.Duration
}

// DefaultExpireMatchesConfig returns sensible defaults.
func DefaultExpireMatchesConfig() ExpireMatchesConfig {
	return ExpireMatchesConfig{
		Grace:   72 * time.Hour,
		Timeout: time.Minute,
	}
}

// ExpireStats contains statistics from an expiry run.
type ExpireStats struct {
	StartedAt    time.Time
	CompletedAt  time.Time
	Duration     time.Duration
	OverdueCount int
	ExpiredCount int
	FailedCount  int
}

// NewExpireMatchesJob creates a new expiry job.
// eventPublisher may be nil.
func NewExpireMatchesJob(
	matchRepo match.Repository,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	config ExpireMatchesConfig,
) *ExpireMatchesJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Grace <= 0 {
		config.Grace = 72 * time.Hour
	}

	return &ExpireMatchesJob{
		matchRepo:      matchRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
		config:         config,
	}
}

// Name returns the job name.
func (j *ExpireMatchesJob) Name() string {
	return "expire_matches"
}

// Description returns a human-readable description.
func (j *ExpireMatchesJob) Description() string {
	return "Expires scheduled matches left without results past the grace period"
}

// Run executes the expiry pass.
func (j *ExpireMatchesJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &ExpireStats{StartedAt: startedAt}

	// Apply timeout
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	now := time.Now()
	overdue, err := j.matchRepo.FindOverdue(ctx, now, j.config.Grace)
	if err != nil {
		return fmt.Errorf("failed to find overdue matches: %w", err)
	}

	stats.OverdueCount = len(overdue)
	if stats.OverdueCount == 0 {
		j.finalize(stats)
		return nil
	}

	j.logger.Info("found overdue matches", "count", stats.OverdueCount)

	for _, m := range overdue {
		select {
		case <-ctx.Done():
			j.finalize(stats)
			return ctx.Err()
		default:
		}

		if err := j.expireMatch(ctx, m, now); err != nil {
			stats.FailedCount++
			j.logger.Error("failed to expire match",
				"match_id", m.ID,
				"group_id", m.GroupID,
				"error", err,
			)
			continue
		}
		stats.ExpiredCount++
	}

	j.finalize(stats)

	j.logger.Info("expire_matches job completed",
		"duration", stats.Duration.String(),
		"overdue", stats.OverdueCount,
		"expired", stats.ExpiredCount,
		"failed", stats.FailedCount,
	)

	return nil
}

func (j *ExpireMatchesJob) expireMatch(ctx context.Context, m *match.Match, now time.Time) error {
	if err := m.Expire(now); err != nil {
		return fmt.Errorf("expire: %w", err)
	}
	if err := j.matchRepo.Update(ctx, m); err != nil {
		return fmt.Errorf("update: %w", err)
	}

	if j.eventPublisher != nil {
		event := shared.NewMatchExpiredEvent(m.ID, m.GroupID, m.GameID, m.ScheduledAt)
		if err := j.eventPublisher.Publish(event); err != nil {
			j.logger.Error("failed to publish match expired event",
				"match_id", m.ID,
				"error", err,
			)
		}
	}
	return nil
}

func (j *ExpireMatchesJob) finalize(stats *ExpireStats) {
	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(stats.StartedAt)
	j.lastExpireStats.Store(stats)
}

// LastExpireStats returns statistics from the most recent run, or nil.
func (j *ExpireMatchesJob) LastExpireStats() *ExpireStats {
	if v := j.lastExpireStats.Load(); v != nil {
		return v.(*ExpireStats)
	}
	return nil
}
