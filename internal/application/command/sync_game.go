package command

import (
	"context"
	"fmt"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/game"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYNC GAME COMMAND
// Refreshes a single BGG-linked catalog entry on demand, bypassing the
// background sync schedule.
// ══════════════════════════════════════════════════════════════════════════════

// SyncGameCommand contains the data needed to sync a game.
type SyncGameCommand struct {
	// GameID is the catalog entry to refresh.
	GameID string

	// ForceSync bypasses the sync interval check.
	ForceSync bool
}

// Validate validates the command.
func (c SyncGameCommand) Validate() error {
	if c.GameID == "" {
		return fmt.Errorf("sync_game: game id is required")
	}
	return nil
}

// SyncGameResult contains the result of the refresh.
type SyncGameResult struct {
	GameID     string
	ExternalID int64
	WasUpdated bool
	SyncedAt   *time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SyncGameHandler handles the SyncGameCommand.
type SyncGameHandler struct {
	gameRepo game.Repository
	catalog  GameCatalogProvider

	// minSyncInterval is the minimum interval between refreshes.
	minSyncInterval time.Duration
}

// SyncGameHandlerConfig contains configuration for the handler.
type SyncGameHandlerConfig struct {
	MinSyncInterval time.Duration
}

// DefaultSyncGameHandlerConfig returns default configuration.
func DefaultSyncGameHandlerConfig() SyncGameHandlerConfig {
	return SyncGameHandlerConfig{
		MinSyncInterval: 15 * time.Minute,
	}
}

// NewSyncGameHandler creates a new SyncGameHandler.
func NewSyncGameHandler(
	gameRepo game.Repository,
	catalog GameCatalogProvider,
	config SyncGameHandlerConfig,
) *SyncGameHandler {
	if config.MinSyncInterval == 0 {
		config = DefaultSyncGameHandlerConfig()
	}

	return &SyncGameHandler{
		gameRepo:        gameRepo,
		catalog:         catalog,
		minSyncInterval: config.MinSyncInterval,
	}
}

// Handle executes the sync game command.
func (h *SyncGameHandler) Handle(ctx context.Context, cmd SyncGameCommand) (*SyncGameResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if h.catalog == nil {
		return nil, fmt.Errorf("sync_game: %w", shared.ErrServiceUnavailable)
	}

	g, err := h.gameRepo.GetByID(ctx, cmd.GameID)
	if err != nil {
		return nil, fmt.Errorf("sync_game: %w", err)
	}
	if !g.IsSynced() {
		return nil, fmt.Errorf("sync_game: game %s is not linked to an external catalog", g.ID)
	}

	if !cmd.ForceSync && !h.shouldSync(g) {
		return &SyncGameResult{
			GameID:     g.ID,
			ExternalID: g.ExternalID,
			WasUpdated: false,
			SyncedAt:   g.SyncedAt,
		}, nil
	}

	details, err := h.catalog.GetGame(ctx, g.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("sync_game: failed to fetch details: %w", err)
	}

	if err := g.ApplySync(
		details.Name, details.Description, details.ThumbnailURL,
		game.PlayerRange{Min: details.MinPlayers, Max: details.MaxPlayers},
		details.PlayTimeMinutes, details.YearPublished, details.Rating,
	); err != nil {
		return nil, fmt.Errorf("sync_game: %w", err)
	}

	if err := h.gameRepo.Update(ctx, g); err != nil {
		return nil, fmt.Errorf("sync_game: %w", err)
	}

	return &SyncGameResult{
		GameID:     g.ID,
		ExternalID: g.ExternalID,
		WasUpdated: true,
		SyncedAt:   g.SyncedAt,
	}, nil
}

// shouldSync determines if a refresh should be performed based on the interval.
func (h *SyncGameHandler) shouldSync(g *game.Game) bool {
	if g.SyncedAt == nil {
		return true
	}
	return time.Since(*g.SyncedAt) >= h.minSyncInterval
}
