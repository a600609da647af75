// Package jobs contains implementations of scheduled jobs for Tabletop Mastering.
// Each job keeps derived data fresh: the game catalog in sync with BoardGameGeek,
// rankings consistent with recorded results, and overdue matches closed.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/game"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/shared"
	"github.com/Trevictus/tabletopmastering-sub000/internal/infrastructure/external/boardgamegeek"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYNC GAMES JOB
// ══════════════════════════════════════════════════════════════════════════════

// SyncGamesJob refreshes BGG-linked catalog entries from the BoardGameGeek API.
// Several groups may reference the same external game, so details are fetched
// once per external ID and applied to every linked record.
type SyncGamesJob struct {
	// Dependencies
	gameRepo       game.Repository
	catalogClient  CatalogClient
	catalogCache   CatalogCache
	eventPublisher shared.EventPublisher
	logger         *slog.Logger

	// Configuration
	config SyncGamesConfig

	// State (for metrics)
	lastSyncStats atomic.Value // *GameSyncStats
}

// SyncGamesConfig contains configuration for the catalog sync job.
type SyncGamesConfig struct {
	// BatchSize is the number of external IDs per API request.
	// BGG accepts at most 20 IDs per thing request.
	BatchSize int

	// MinSyncInterval is the minimum interval between syncs of the same entry.
	MinSyncInterval time.Duration

	// Timeout is the maximum duration for the entire sync operation.
	Timeout time.Duration

	// SkipRecentlySynced skips entries synced within MinSyncInterval.
	SkipRecentlySynced bool
}

// DefaultSyncGamesConfig returns sensible defaults.
func DefaultSyncGamesConfig() SyncGamesConfig {
	return SyncGamesConfig{
		BatchSize:          20,
		MinSyncInterval:    6 * time.Hour,
		Timeout:            10 * time.Minute,
		SkipRecentlySynced: true,
	}
}

// GameSyncStats contains statistics from a catalog sync run.
type GameSyncStats struct {
	StartedAt    time.Time
	CompletedAt  time.Time
	Duration     time.Duration
	TotalGames   int
	SyncedCount  int
	SkippedCount int
	FailedCount  int
	CacheHits    int
	Errors       []GameSyncError
}

// GameSyncError represents a failure to sync a single catalog entry.
type GameSyncError struct {
	GameID     string
	ExternalID int64
	Error      error
	OccurredAt time.Time
}

// CatalogClient defines the interface for fetching game details from BGG.
type CatalogClient interface {
	// GetThings fetches details for up to 20 external IDs per call.
	GetThings(ctx context.Context, externalIDs []int64) ([]*boardgamegeek.ThingDetails, error)
}

// CatalogCache defines the interface for caching fetched game details.
type CatalogCache interface {
	Get(ctx context.Context, externalID int64, dest interface{}) error
	Set(ctx context.Context, externalID int64, value interface{}) error
}

// NewSyncGamesJob creates a new catalog sync job.
// catalogCache and eventPublisher may be nil.
func NewSyncGamesJob(
	gameRepo game.Repository,
	catalogClient CatalogClient,
	catalogCache CatalogCache,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	config SyncGamesConfig,
) *SyncGamesJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 || config.BatchSize > 20 {
		config.BatchSize = 20
	}

	return &SyncGamesJob{
		gameRepo:       gameRepo,
		catalogClient:  catalogClient,
		catalogCache:   catalogCache,
		eventPublisher: eventPublisher,
		logger:         logger,
		config:         config,
	}
}

// Name returns the job name.
func (j *SyncGamesJob) Name() string {
	return "sync_games"
}

// Description returns a human-readable description.
func (j *SyncGamesJob) Description() string {
	return "Refreshes BGG-linked catalog entries from the BoardGameGeek API"
}

// Run executes the catalog sync.
func (j *SyncGamesJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &GameSyncStats{
		StartedAt: startedAt,
		Errors:    make([]GameSyncError, 0),
	}

	j.logger.Info("starting sync_games job")

	// Apply timeout
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	games, err := j.getGamesToSync(ctx, stats)
	if err != nil {
		return fmt.Errorf("failed to get games to sync: %w", err)
	}

	stats.TotalGames = len(games)
	j.logger.Info("found catalog entries to sync", "count", stats.TotalGames)

	if stats.TotalGames == 0 {
		j.finalize(stats)
		return nil
	}

	// Fetch details once per external ID, then apply to every linked record.
	byExternalID := groupByExternalID(games)
	ids := make([]int64, 0, len(byExternalID))
	for id := range byExternalID {
		ids = append(ids, id)
	}

	details := j.fetchDetails(ctx, ids, stats)

	for externalID, linked := range byExternalID {
		d, ok := details[externalID]
		if !ok {
			for _, g := range linked {
				j.recordFailure(stats, g, fmt.Errorf("no details fetched for BGG id %d", externalID))
			}
			continue
		}

		for _, g := range linked {
			if err := j.applyDetails(ctx, g, d); err != nil {
				j.recordFailure(stats, g, err)
				continue
			}
			stats.SyncedCount++
		}
	}

	j.finalize(stats)

	// Emit sync completed event
	if j.eventPublisher != nil {
		event := shared.NewCatalogSyncCompletedEvent(stats.SyncedCount, stats.FailedCount, stats.Duration)
		if err := j.eventPublisher.Publish(event); err != nil {
			j.logger.Error("failed to publish catalog sync event", "error", err)
		}
	}

	j.logger.Info("sync_games job completed",
		"duration", stats.Duration.String(),
		"total", stats.TotalGames,
		"synced", stats.SyncedCount,
		"failed", stats.FailedCount,
		"skipped", stats.SkippedCount,
		"cache_hits", stats.CacheHits,
	)

	// Return error if too many failures
	if stats.TotalGames > 0 {
		failureRate := float64(stats.FailedCount) / float64(stats.TotalGames)
		if failureRate > 0.5 {
			return fmt.Errorf("sync failed for more than 50%% of entries (%d/%d)",
				stats.FailedCount, stats.TotalGames)
		}
	}

	return nil
}

// getGamesToSync returns BGG-linked entries that are due for a refresh.
func (j *SyncGamesJob) getGamesToSync(ctx context.Context, stats *GameSyncStats) ([]*game.Game, error) {
	games, err := j.gameRepo.FindSynced(ctx)
	if err != nil {
		return nil, err
	}

	if !j.config.SkipRecentlySynced {
		return games, nil
	}

	threshold := time.Now().Add(-j.config.MinSyncInterval)
	filtered := make([]*game.Game, 0, len(games))
	for _, g := range games {
		if g.SyncedAt != nil && g.SyncedAt.After(threshold) {
			stats.SkippedCount++
			continue
		}
		filtered = append(filtered, g)
	}
	return filtered, nil
}

// fetchDetails resolves external IDs to details, consulting the cache first
// and batching the remaining IDs into API requests.
func (j *SyncGamesJob) fetchDetails(
	ctx context.Context,
	ids []int64,
	stats *GameSyncStats,
) map[int64]*boardgamegeek.ThingDetails {
	details := make(map[int64]*boardgamegeek.ThingDetails, len(ids))

	missing := make([]int64, 0, len(ids))
	for _, id := range ids {
		if j.catalogCache == nil {
			missing = append(missing, id)
			continue
		}
		var cached boardgamegeek.ThingDetails
		if err := j.catalogCache.Get(ctx, id, &cached); err != nil {
			missing = append(missing, id)
			continue
		}
		details[id] = &cached
		stats.CacheHits++
	}

	for start := 0; start < len(missing); start += j.config.BatchSize {
		select {
		case <-ctx.Done():
			return details
		default:
		}

		end := start + j.config.BatchSize
		if end > len(missing) {
			end = len(missing)
		}
		batch := missing[start:end]

		fetched, err := j.catalogClient.GetThings(ctx, batch)
		if err != nil {
			j.logger.Error("failed to fetch game details batch",
				"ids", batch,
				"error", err,
			)
			continue
		}

		for _, d := range fetched {
			details[d.ExternalID] = d
			if j.catalogCache != nil {
				if err := j.catalogCache.Set(ctx, d.ExternalID, d); err != nil {
					j.logger.Warn("failed to cache game details",
						"external_id", d.ExternalID,
						"error", err,
					)
				}
			}
		}
	}

	return details
}

// applyDetails updates a single catalog entry with fetched details.
func (j *SyncGamesJob) applyDetails(ctx context.Context, g *game.Game, d *boardgamegeek.ThingDetails) error {
	if err := d.Apply(g); err != nil {
		return fmt.Errorf("apply details: %w", err)
	}
	if err := j.gameRepo.Update(ctx, g); err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	return nil
}

func (j *SyncGamesJob) recordFailure(stats *GameSyncStats, g *game.Game, err error) {
	stats.FailedCount++
	stats.Errors = append(stats.Errors, GameSyncError{
		GameID:     g.ID,
		ExternalID: g.ExternalID,
		Error:      err,
		OccurredAt: time.Now(),
	})
	j.logger.Error("failed to sync catalog entry",
		"game_id", g.ID,
		"external_id", g.ExternalID,
		"error", err,
	)
}

func (j *SyncGamesJob) finalize(stats *GameSyncStats) {
	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(stats.StartedAt)
	j.lastSyncStats.Store(stats)
}

// LastSyncStats returns statistics from the most recent run, or nil.
func (j *SyncGamesJob) LastSyncStats() *GameSyncStats {
	if v := j.lastSyncStats.Load(); v != nil {
		return v.(*GameSyncStats)
	}
	return nil
}

func groupByExternalID(games []*game.Game) map[int64][]*game.Game {
	grouped := make(map[int64][]*game.Game)
	for _, g := range games {
		if g.ExternalID <= 0 {
			continue
		}
		grouped[g.ExternalID] = append(grouped[g.ExternalID], g)
	}
	return grouped
}
