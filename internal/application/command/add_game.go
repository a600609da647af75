package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/game"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/group"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD GAME COMMAND
// Adds a game to a group's catalog, either as a manual entry or linked to
// BoardGameGeek by external ID. Linked entries are enriched from the
// external catalog when a provider is configured.
// ══════════════════════════════════════════════════════════════════════════════

// AddGameCommand contains the data needed to add a game.
type AddGameCommand struct {
	// GroupID is the owning group.
	GroupID string

	// PlayerID is the member adding the game.
	PlayerID string

	// Name is the game name. Optional when ExternalID is set and a
	// catalog provider supplies it.
	Name string

	// Description is an optional description.
	Description string

	// ExternalID links the entry to BoardGameGeek. Zero means a manual entry.
	ExternalID int64

	// MinPlayers and MaxPlayers bound the supported player count.
	MinPlayers int
	MaxPlayers int

	// PlayTimeMinutes is the typical play time.
	PlayTimeMinutes int

	// YearPublished is the publication year.
	YearPublished int
}

// Validate validates the command.
func (c AddGameCommand) Validate() error {
	if c.GroupID == "" {
		return fmt.Errorf("add_game: group id is required")
	}
	if c.PlayerID == "" {
		return fmt.Errorf("add_game: player id is required")
	}
	if c.Name == "" && c.ExternalID <= 0 {
		return fmt.Errorf("add_game: either name or external id is required")
	}
	return nil
}

// AddGameResult contains the created catalog entry.
type AddGameResult struct {
	GameID     string
	GroupID    string
	Name       string
	Source     game.Source
	ExternalID int64
	SyncedAt   *time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// GameDetails represents game data fetched from the external catalog.
type GameDetails struct {
	ExternalID      int64
	Name            string
	Description     string
	ThumbnailURL    string
	MinPlayers      int
	MaxPlayers      int
	PlayTimeMinutes int
	YearPublished   int
	Rating          float64
}

// GameCatalogProvider fetches game data from the external catalog (BGG).
type GameCatalogProvider interface {
	// GetGame fetches details for a single external ID.
	GetGame(ctx context.Context, externalID int64) (*GameDetails, error)

	// SearchGames searches the external catalog by name.
	SearchGames(ctx context.Context, query string) ([]GameDetails, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// AddGameHandler handles the AddGameCommand.
type AddGameHandler struct {
	gameRepo  game.Repository
	groupRepo group.Repository
	catalog   GameCatalogProvider
}

// NewAddGameHandler creates a new AddGameHandler.
// catalog may be nil; without a catalog provider, BGG-linked entries are
// created from the command fields alone and enriched later by the
// background sync.
func NewAddGameHandler(
	gameRepo game.Repository,
	groupRepo group.Repository,
	catalog GameCatalogProvider,
) *AddGameHandler {
	return &AddGameHandler{
		gameRepo:  gameRepo,
		groupRepo: groupRepo,
		catalog:   catalog,
	}
}

// Handle executes the add game command.
func (h *AddGameHandler) Handle(ctx context.Context, cmd AddGameCommand) (*AddGameResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	g, err := h.groupRepo.GetByID(ctx, cmd.GroupID)
	if err != nil {
		return nil, fmt.Errorf("add_game: %w", err)
	}
	if !g.IsMember(cmd.PlayerID) {
		return nil, group.ErrNotMember
	}

	params := game.NewGameParams{
		ID:              uuid.NewString(),
		GroupID:         g.ID,
		Name:            cmd.Name,
		Description:     cmd.Description,
		Source:          game.SourceManual,
		Players:         game.PlayerRange{Min: cmd.MinPlayers, Max: cmd.MaxPlayers},
		PlayTimeMinutes: cmd.PlayTimeMinutes,
		YearPublished:   cmd.YearPublished,
	}

	var details *GameDetails
	if cmd.ExternalID > 0 {
		if err := h.ensureNotLinked(ctx, g.ID, cmd.ExternalID); err != nil {
			return nil, err
		}
		params.Source = game.SourceBGG
		params.ExternalID = cmd.ExternalID

		details = h.fetchDetails(ctx, cmd.ExternalID)
		if details != nil {
			applyDetails(&params, details)
		} else if params.Name == "" {
			// Provider unavailable and no name given; sync fills it in later.
			params.Name = fmt.Sprintf("BGG #%d", cmd.ExternalID)
		}
	}

	created, err := game.NewGame(params)
	if err != nil {
		return nil, fmt.Errorf("add_game: %w", err)
	}

	if details != nil {
		// Record the successful fetch so the background sync skips
		// this entry until its refresh interval passes.
		if err := created.ApplySync(
			details.Name, details.Description, details.ThumbnailURL,
			game.PlayerRange{Min: details.MinPlayers, Max: details.MaxPlayers},
			details.PlayTimeMinutes, details.YearPublished, details.Rating,
		); err != nil {
			return nil, fmt.Errorf("add_game: %w", err)
		}
	}

	if err := h.gameRepo.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("add_game: %w", err)
	}

	return &AddGameResult{
		GameID:     created.ID,
		GroupID:    created.GroupID,
		Name:       created.Name,
		Source:     created.Source,
		ExternalID: created.ExternalID,
		SyncedAt:   created.SyncedAt,
	}, nil
}

func (h *AddGameHandler) ensureNotLinked(ctx context.Context, groupID string, externalID int64) error {
	existing, err := h.gameRepo.GetByExternalID(ctx, groupID, externalID)
	if err != nil {
		if errors.Is(err, game.ErrGameNotFound) {
			return nil
		}
		return fmt.Errorf("add_game: %w", err)
	}
	if existing != nil {
		return game.ErrGameAlreadyExists
	}
	return nil
}

// fetchDetails fetches external details; failures degrade to a bare entry.
func (h *AddGameHandler) fetchDetails(ctx context.Context, externalID int64) *GameDetails {
	if h.catalog == nil {
		return nil
	}
	details, err := h.catalog.GetGame(ctx, externalID)
	if err != nil {
		return nil
	}
	return details
}

func applyDetails(params *game.NewGameParams, d *GameDetails) {
	params.Name = d.Name
	if params.Description == "" {
		params.Description = d.Description
	}
	params.Players = game.PlayerRange{Min: d.MinPlayers, Max: d.MaxPlayers}
	params.PlayTimeMinutes = d.PlayTimeMinutes
	params.YearPublished = d.YearPublished
	params.ThumbnailURL = d.ThumbnailURL
	params.Rating = d.Rating
}
