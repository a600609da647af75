package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/player"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE PLAYER COMMAND
// Edits a player's own profile. Nil fields stay unchanged.
// ══════════════════════════════════════════════════════════════════════════════

// UpdatePlayerCommand contains the profile changes.
type UpdatePlayerCommand struct {
	// PlayerID is the profile being edited.
	PlayerID string

	// CallerID is the authenticated player making the request.
	// Players may only edit their own profile.
	CallerID string

	// DisplayName replaces the display name when non-nil.
	DisplayName *string

	// AvatarURL replaces the avatar link when non-nil. An empty string
	// removes the avatar.
	AvatarURL *string
}

// Validate validates the command.
func (c UpdatePlayerCommand) Validate() error {
	if c.PlayerID == "" {
		return fmt.Errorf("update_player: player id is required")
	}
	if c.CallerID == "" {
		return fmt.Errorf("update_player: caller id is required")
	}
	if c.DisplayName == nil && c.AvatarURL == nil {
		return fmt.Errorf("update_player: nothing to update")
	}
	if c.DisplayName != nil && strings.TrimSpace(*c.DisplayName) == "" {
		return fmt.Errorf("update_player: display name cannot be empty")
	}
	return nil
}

// UpdatePlayerResult contains the updated profile.
type UpdatePlayerResult struct {
	PlayerID    string
	DisplayName string
	AvatarURL   string
}

// UpdatePlayerHandler handles the UpdatePlayerCommand.
type UpdatePlayerHandler struct {
	playerRepo player.Repository
}

// NewUpdatePlayerHandler creates a new UpdatePlayerHandler.
func NewUpdatePlayerHandler(playerRepo player.Repository) *UpdatePlayerHandler {
	return &UpdatePlayerHandler{playerRepo: playerRepo}
}

// Handle executes the update player command.
func (h *UpdatePlayerHandler) Handle(ctx context.Context, cmd UpdatePlayerCommand) (*UpdatePlayerResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if cmd.CallerID != cmd.PlayerID {
		return nil, shared.ErrForbidden
	}

	p, err := h.playerRepo.GetByID(ctx, cmd.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("update_player: %w", err)
	}

	if cmd.DisplayName != nil {
		if err := p.Rename(*cmd.DisplayName); err != nil {
			return nil, fmt.Errorf("update_player: %w", err)
		}
	}
	if cmd.AvatarURL != nil {
		p.ChangeAvatar(*cmd.AvatarURL)
	}

	if err := h.playerRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update_player: %w", err)
	}

	return &UpdatePlayerResult{
		PlayerID:    p.ID,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
	}, nil
}
