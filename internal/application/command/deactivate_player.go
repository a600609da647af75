package command

import (
	"context"
	"fmt"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/player"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEACTIVATE PLAYER COMMAND
// Soft-deletes a player's own account. The account switches to the
// "left" status: it can no longer log in, but its match history and
// accumulated statistics stay intact.
// ══════════════════════════════════════════════════════════════════════════════

// DeactivatePlayerCommand identifies the account to close.
type DeactivatePlayerCommand struct {
	// PlayerID is the account being closed.
	PlayerID string

	// CallerID is the authenticated player making the request.
	// Players may only close their own account.
	CallerID string
}

// Validate validates the command.
func (c DeactivatePlayerCommand) Validate() error {
	if c.PlayerID == "" {
		return fmt.Errorf("deactivate_player: player id is required")
	}
	if c.CallerID == "" {
		return fmt.Errorf("deactivate_player: caller id is required")
	}
	return nil
}

// DeactivatePlayerHandler handles the DeactivatePlayerCommand.
type DeactivatePlayerHandler struct {
	playerRepo player.Repository
}

// NewDeactivatePlayerHandler creates a new DeactivatePlayerHandler.
func NewDeactivatePlayerHandler(playerRepo player.Repository) *DeactivatePlayerHandler {
	return &DeactivatePlayerHandler{playerRepo: playerRepo}
}

// Handle executes the deactivate player command.
func (h *DeactivatePlayerHandler) Handle(ctx context.Context, cmd DeactivatePlayerCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if cmd.CallerID != cmd.PlayerID {
		return shared.ErrForbidden
	}

	p, err := h.playerRepo.GetByID(ctx, cmd.PlayerID)
	if err != nil {
		return fmt.Errorf("deactivate_player: %w", err)
	}

	if err := p.Leave(); err != nil {
		return fmt.Errorf("deactivate_player: %w", err)
	}

	if err := h.playerRepo.Update(ctx, p); err != nil {
		return fmt.Errorf("deactivate_player: %w", err)
	}

	return nil
}
