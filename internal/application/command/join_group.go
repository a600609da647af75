package command

import (
	"context"
	"fmt"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/group"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/player"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOIN GROUP COMMAND
// Adds a player to a group as a regular member.
// ══════════════════════════════════════════════════════════════════════════════

// JoinGroupCommand contains the data needed to join a group.
type JoinGroupCommand struct {
	GroupID  string
	PlayerID string
}

// Validate validates the command.
func (c JoinGroupCommand) Validate() error {
	if c.GroupID == "" {
		return fmt.Errorf("join_group: group id is required")
	}
	if c.PlayerID == "" {
		return fmt.Errorf("join_group: player id is required")
	}
	return nil
}

// JoinGroupResult contains the updated membership.
type JoinGroupResult struct {
	GroupID     string
	PlayerID    string
	Role        group.Role
	JoinedAt    time.Time
	MemberCount int
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// JoinGroupHandler handles the JoinGroupCommand.
type JoinGroupHandler struct {
	groupRepo      group.Repository
	playerRepo     player.Repository
	eventPublisher shared.EventPublisher
}

// NewJoinGroupHandler creates a new JoinGroupHandler.
// eventPublisher may be nil.
func NewJoinGroupHandler(
	groupRepo group.Repository,
	playerRepo player.Repository,
	eventPublisher shared.EventPublisher,
) *JoinGroupHandler {
	return &JoinGroupHandler{
		groupRepo:      groupRepo,
		playerRepo:     playerRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the join group command.
func (h *JoinGroupHandler) Handle(ctx context.Context, cmd JoinGroupCommand) (*JoinGroupResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p, err := h.playerRepo.GetByID(ctx, cmd.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("join_group: %w", err)
	}
	if !p.Status.IsEnrolled() {
		return nil, player.ErrPlayerNotEnrolled
	}

	g, err := h.groupRepo.GetByID(ctx, cmd.GroupID)
	if err != nil {
		return nil, fmt.Errorf("join_group: %w", err)
	}

	if err := g.AddMember(p.ID, group.RoleMember); err != nil {
		return nil, fmt.Errorf("join_group: %w", err)
	}

	if err := h.groupRepo.Update(ctx, g); err != nil {
		return nil, fmt.Errorf("join_group: %w", err)
	}

	if h.eventPublisher != nil {
		event := shared.NewMemberJoinedEvent(g.ID, p.ID, string(group.RoleMember))
		_ = h.eventPublisher.Publish(event)
	}

	member := g.Members[p.ID]
	return &JoinGroupResult{
		GroupID:     g.ID,
		PlayerID:    p.ID,
		Role:        member.Role,
		JoinedAt:    member.JoinedAt,
		MemberCount: g.MemberCount(),
	}, nil
}
