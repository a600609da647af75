package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/group"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/player"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE GROUP COMMAND
// Creates a playing group; the creator becomes its first admin.
// ══════════════════════════════════════════════════════════════════════════════

// CreateGroupCommand contains the data needed to create a group.
type CreateGroupCommand struct {
	// Name is the group name, unique among active groups.
	Name string

	// Description is an optional free-form description.
	Description string

	// OwnerID is the creating player.
	OwnerID string
}

// Validate validates the command.
func (c CreateGroupCommand) Validate() error {
	if c.Name == "" {
		return group.ErrInvalidName
	}
	if c.OwnerID == "" {
		return fmt.Errorf("create_group: owner id is required")
	}
	return nil
}

// CreateGroupResult contains the created group.
type CreateGroupResult struct {
	GroupID   string
	Name      string
	OwnerID   string
	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CreateGroupHandler handles the CreateGroupCommand.
type CreateGroupHandler struct {
	groupRepo      group.Repository
	playerRepo     player.Repository
	eventPublisher shared.EventPublisher
}

// NewCreateGroupHandler creates a new CreateGroupHandler.
// eventPublisher may be nil.
func NewCreateGroupHandler(
	groupRepo group.Repository,
	playerRepo player.Repository,
	eventPublisher shared.EventPublisher,
) *CreateGroupHandler {
	return &CreateGroupHandler{
		groupRepo:      groupRepo,
		playerRepo:     playerRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the create group command.
func (h *CreateGroupHandler) Handle(ctx context.Context, cmd CreateGroupCommand) (*CreateGroupResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("create_group: validation failed: %w", err)
	}

	owner, err := h.playerRepo.GetByID(ctx, cmd.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("create_group: %w", err)
	}
	if !owner.Status.IsEnrolled() {
		return nil, player.ErrPlayerNotEnrolled
	}

	g, err := group.NewGroup(group.NewGroupParams{
		ID:          uuid.NewString(),
		Name:        cmd.Name,
		Description: cmd.Description,
		OwnerID:     owner.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("create_group: %w", err)
	}

	if err := h.groupRepo.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create_group: %w", err)
	}

	if h.eventPublisher != nil {
		event := shared.NewMemberJoinedEvent(g.ID, owner.ID, string(group.RoleAdmin))
		_ = h.eventPublisher.Publish(event)
	}

	return &CreateGroupResult{
		GroupID:   g.ID,
		Name:      g.Name,
		OwnerID:   g.OwnerID,
		CreatedAt: g.CreatedAt,
	}, nil
}
