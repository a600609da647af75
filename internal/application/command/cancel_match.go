package command

import (
	"context"
	"fmt"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/group"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/match"
)

// ══════════════════════════════════════════════════════════════════════════════
// CANCEL MATCH COMMAND
// Cancels a scheduled match before any results are recorded.
// ══════════════════════════════════════════════════════════════════════════════

// CancelMatchCommand contains the data needed to cancel a match.
type CancelMatchCommand struct {
	MatchID string

	// CancelledBy must be the creator or a group admin.
	CancelledBy string
}

// Validate validates the command.
func (c CancelMatchCommand) Validate() error {
	if c.MatchID == "" {
		return fmt.Errorf("cancel_match: match id is required")
	}
	if c.CancelledBy == "" {
		return fmt.Errorf("cancel_match: canceller id is required")
	}
	return nil
}

// CancelMatchHandler handles the CancelMatchCommand.
type CancelMatchHandler struct {
	matchRepo match.Repository
	groupRepo group.Repository
}

// NewCancelMatchHandler creates a new CancelMatchHandler.
func NewCancelMatchHandler(matchRepo match.Repository, groupRepo group.Repository) *CancelMatchHandler {
	return &CancelMatchHandler{
		matchRepo: matchRepo,
		groupRepo: groupRepo,
	}
}

// Handle executes the cancel match command.
func (h *CancelMatchHandler) Handle(ctx context.Context, cmd CancelMatchCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	m, err := h.matchRepo.GetByID(ctx, cmd.MatchID)
	if err != nil {
		return fmt.Errorf("cancel_match: %w", err)
	}

	if m.CreatedBy != cmd.CancelledBy {
		g, err := h.groupRepo.GetByID(ctx, m.GroupID)
		if err != nil {
			return fmt.Errorf("cancel_match: %w", err)
		}
		if !g.IsAdmin(cmd.CancelledBy) {
			return group.ErrNotAdmin
		}
	}

	if err := m.Cancel(); err != nil {
		return fmt.Errorf("cancel_match: %w", err)
	}

	if err := h.matchRepo.Update(ctx, m); err != nil {
		return fmt.Errorf("cancel_match: %w", err)
	}
	return nil
}
