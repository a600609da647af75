package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/group"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/match"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/ranking"
)

// ══════════════════════════════════════════════════════════════════════════════
// REBUILD RANKING JOB
// ══════════════════════════════════════════════════════════════════════════════

// RebuildRankingJob recomputes per-group player statistics from finished
// matches and refreshes the ranking cache.
//
// The incremental path (ApplyAward on match finish) keeps statistics accurate
// under normal operation; the periodic rebuild repairs drift after manual data
// fixes or missed events, and repopulates the cache after Redis restarts.
type RebuildRankingJob struct {
	// Dependencies
	groupRepo    group.Repository
	matchRepo    match.Repository
	statsRepo    ranking.Repository
	rankingCache RankingCache
	logger       *slog.Logger

	// Configuration
	config RebuildRankingConfig

	// State (for metrics)
	lastRebuildStats atomic.Value // *RankingRebuildStats
}

// RebuildRankingConfig contains configuration for the rebuild job.
type RebuildRankingConfig struct {
	// GroupPageSize is the number of groups fetched per page.
	GroupPageSize int

	// MatchPageSize is the number of matches fetched per page.
	MatchPageSize int

	// Timeout is the maximum duration for the entire rebuild.
	Timeout time.Duration
}

// DefaultRebuildRankingConfig returns sensible defaults.
func DefaultRebuildRankingConfig() RebuildRankingConfig {
	return RebuildRankingConfig{
		GroupPageSize: 50,
		MatchPageSize: 200,
		Timeout:       5 * time.Minute,
	}
}

// RankingRebuildStats contains statistics from a rebuild run.
type RankingRebuildStats struct {
	StartedAt      time.Time
	CompletedAt    time.Time
	Duration       time.Duration
	GroupsTotal    int
	GroupsRebuilt  int
	GroupsFailed   int
	MatchesCounted int
	Errors         []RankingRebuildError
}

// RankingRebuildError represents a failure to rebuild a single group.
type RankingRebuildError struct {
	GroupID    string
	Error      error
	OccurredAt time.Time
}

// RankingCache defines the cache operations the rebuild needs.
type RankingCache interface {
	// Rebuild atomically replaces the cached table for a group.
	Rebuild(ctx context.Context, groupID string, entries []ranking.Entry) error
}

// NewRebuildRankingJob creates a new rebuild job.
// rankingCache may be nil; the database snapshot is still replaced.
func NewRebuildRankingJob(
	groupRepo group.Repository,
	matchRepo match.Repository,
	statsRepo ranking.Repository,
	rankingCache RankingCache,
	logger *slog.Logger,
	config RebuildRankingConfig,
) *RebuildRankingJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.GroupPageSize <= 0 {
		config.GroupPageSize = 50
	}
	if config.MatchPageSize <= 0 {
		config.MatchPageSize = 200
	}

	return &RebuildRankingJob{
		groupRepo:    groupRepo,
		matchRepo:    matchRepo,
		statsRepo:    statsRepo,
		rankingCache: rankingCache,
		logger:       logger,
		config:       config,
	}
}

// Name returns the job name.
func (j *RebuildRankingJob) Name() string {
	return "rebuild_ranking"
}

// Description returns a human-readable description.
func (j *RebuildRankingJob) Description() string {
	return "Recomputes group rankings from finished matches and refreshes the cache"
}

// Run executes the rebuild for every group.
func (j *RebuildRankingJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &RankingRebuildStats{
		StartedAt: startedAt,
		Errors:    make([]RankingRebuildError, 0),
	}

	j.logger.Info("starting rebuild_ranking job")

	// Apply timeout
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	groups, err := j.getAllGroups(ctx)
	if err != nil {
		return fmt.Errorf("failed to list groups: %w", err)
	}
	stats.GroupsTotal = len(groups)

	for _, g := range groups {
		select {
		case <-ctx.Done():
			j.finalize(stats)
			return ctx.Err()
		default:
		}

		matchCount, err := j.rebuildGroup(ctx, g.ID)
		if err != nil {
			stats.GroupsFailed++
			stats.Errors = append(stats.Errors, RankingRebuildError{
				GroupID:    g.ID,
				Error:      err,
				OccurredAt: time.Now(),
			})
			j.logger.Error("failed to rebuild group ranking",
				"group_id", g.ID,
				"error", err,
			)
			continue
		}
		stats.GroupsRebuilt++
		stats.MatchesCounted += matchCount
	}

	j.finalize(stats)

	j.logger.Info("rebuild_ranking job completed",
		"duration", stats.Duration.String(),
		"groups", stats.GroupsTotal,
		"rebuilt", stats.GroupsRebuilt,
		"failed", stats.GroupsFailed,
		"matches", stats.MatchesCounted,
	)

	if stats.GroupsFailed > 0 && stats.GroupsFailed == stats.GroupsTotal {
		return fmt.Errorf("rebuild failed for all %d groups", stats.GroupsTotal)
	}
	return nil
}

// rebuildGroup recomputes one group's statistics from its finished matches,
// replaces the stored snapshot and refreshes the cache. Returns the number
// of matches counted.
func (j *RebuildRankingJob) rebuildGroup(ctx context.Context, groupID string) (int, error) {
	matches, err := j.getFinishedMatches(ctx, groupID)
	if err != nil {
		return 0, fmt.Errorf("load finished matches: %w", err)
	}

	stats := accumulateStats(groupID, matches)

	if err := j.statsRepo.ReplaceGroup(ctx, groupID, stats); err != nil {
		return 0, fmt.Errorf("replace stats snapshot: %w", err)
	}

	if j.rankingCache != nil {
		entries := ranking.Compute(stats)
		if err := j.rankingCache.Rebuild(ctx, groupID, entries); err != nil {
			// The snapshot is already replaced; a stale cache expires on TTL.
			j.logger.Warn("failed to rebuild ranking cache",
				"group_id", groupID,
				"error", err,
			)
		}
	}

	return len(matches), nil
}

// getFinishedMatches pages through all finished matches of a group,
// oldest first so earlier players win ties on equal points.
func (j *RebuildRankingJob) getFinishedMatches(ctx context.Context, groupID string) ([]*match.Match, error) {
	var all []*match.Match
	filter := match.Filter{
		Status: match.StatusFinished,
		Limit:  j.config.MatchPageSize,
	}

	for {
		page, err := j.matchRepo.GetByGroupID(ctx, groupID, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < filter.Limit {
			break
		}
		filter.Offset += filter.Limit
	}

	// Pages arrive newest first; reverse into chronological order.
	for i, k := 0, len(all)-1; i < k; i, k = i+1, k-1 {
		all[i], all[k] = all[k], all[i]
	}
	return all, nil
}

func (j *RebuildRankingJob) getAllGroups(ctx context.Context) ([]*group.Group, error) {
	var all []*group.Group
	opts := group.ListOptions{Limit: j.config.GroupPageSize}

	for {
		page, err := j.groupRepo.GetAll(ctx, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < opts.Limit {
			break
		}
		opts.Offset += opts.Limit
	}
	return all, nil
}

func (j *RebuildRankingJob) finalize(stats *RankingRebuildStats) {
	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(stats.StartedAt)
	j.lastRebuildStats.Store(stats)
}

// LastRebuildStats returns statistics from the most recent run, or nil.
func (j *RebuildRankingJob) LastRebuildStats() *RankingRebuildStats {
	if v := j.lastRebuildStats.Load(); v != nil {
		return v.(*RankingRebuildStats)
	}
	return nil
}

// accumulateStats folds match results into per-player statistics.
// Players keep the order of their first recorded result, which makes the
// subsequent stable sort in ranking.Compute deterministic.
func accumulateStats(groupID string, matches []*match.Match) []*ranking.PlayerStats {
	byPlayer := make(map[string]*ranking.PlayerStats)
	var order []*ranking.PlayerStats

	for _, m := range matches {
		playedAt := m.ScheduledAt
		if m.FinishedAt != nil {
			playedAt = *m.FinishedAt
		}

		for _, r := range m.Results {
			s, ok := byPlayer[r.PlayerID]
			if !ok {
				s = ranking.NewPlayerStats(groupID, r.PlayerID)
				byPlayer[r.PlayerID] = s
				order = append(order, s)
			}
			if err := s.RecordMatch(r.Points, r.IsWin(), playedAt); err != nil {
				// Stored results are validated on finish; skip anything odd.
				continue
			}
		}
	}

	return order
}
