package command

import (
	"context"
	"fmt"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/group"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEAVE GROUP COMMAND
// Removes a player from a group. The last admin cannot leave while the
// group has other members.
// ══════════════════════════════════════════════════════════════════════════════

// LeaveGroupCommand contains the data needed to leave a group.
type LeaveGroupCommand struct {
	GroupID  string
	PlayerID string
}

// Validate validates the command.
func (c LeaveGroupCommand) Validate() error {
	if c.GroupID == "" {
		return fmt.Errorf("leave_group: group id is required")
	}
	if c.PlayerID == "" {
		return fmt.Errorf("leave_group: player id is required")
	}
	return nil
}

// LeaveGroupResult contains the updated membership.
type LeaveGroupResult struct {
	GroupID     string
	PlayerID    string
	MemberCount int
}

// LeaveGroupHandler handles the LeaveGroupCommand.
type LeaveGroupHandler struct {
	groupRepo group.Repository
}

// NewLeaveGroupHandler creates a new LeaveGroupHandler.
func NewLeaveGroupHandler(groupRepo group.Repository) *LeaveGroupHandler {
	return &LeaveGroupHandler{groupRepo: groupRepo}
}

// Handle executes the leave group command.
func (h *LeaveGroupHandler) Handle(ctx context.Context, cmd LeaveGroupCommand) (*LeaveGroupResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	g, err := h.groupRepo.GetByID(ctx, cmd.GroupID)
	if err != nil {
		return nil, fmt.Errorf("leave_group: %w", err)
	}

	if err := g.RemoveMember(cmd.PlayerID); err != nil {
		return nil, fmt.Errorf("leave_group: %w", err)
	}

	if err := h.groupRepo.Update(ctx, g); err != nil {
		return nil, fmt.Errorf("leave_group: %w", err)
	}

	return &LeaveGroupResult{
		GroupID:     g.ID,
		PlayerID:    cmd.PlayerID,
		MemberCount: g.MemberCount(),
	}, nil
}
