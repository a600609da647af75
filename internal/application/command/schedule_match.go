package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/game"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/group"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/match"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE MATCH COMMAND
// Plans a match of a catalog game between group members.
// ══════════════════════════════════════════════════════════════════════════════

// ScheduleMatchCommand contains the data needed to schedule a match.
type ScheduleMatchCommand struct {
	// GroupID is the group hosting the match.
	GroupID string

	// GameID is the catalog entry being played.
	GameID string

	// CreatedBy is the member scheduling the match.
	CreatedBy string

	// ScheduledAt is when the match takes place.
	ScheduledAt time.Time

	// Location is an optional free-form venue.
	Location string

	// ParticipantIDs are the players expected to play. The creator is
	// included automatically if missing.
	ParticipantIDs []string
}

// Validate validates the command.
func (c ScheduleMatchCommand) Validate() error {
	if c.GroupID == "" {
		return fmt.Errorf("schedule_match: group id is required")
	}
	if c.GameID == "" {
		return fmt.Errorf("schedule_match: game id is required")
	}
	if c.CreatedBy == "" {
		return fmt.Errorf("schedule_match: creator id is required")
	}
	if c.ScheduledAt.IsZero() {
		return fmt.Errorf("schedule_match: scheduled time is required")
	}
	return nil
}

// ScheduleMatchResult contains the planned match.
type ScheduleMatchResult struct {
	MatchID      string
	GroupID      string
	GameID       string
	ScheduledAt  time.Time
	Participants []string
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ScheduleMatchHandler handles the ScheduleMatchCommand.
type ScheduleMatchHandler struct {
	matchRepo match.Repository
	groupRepo group.Repository
	gameRepo  game.Repository
}

// NewScheduleMatchHandler creates a new ScheduleMatchHandler.
func NewScheduleMatchHandler(
	matchRepo match.Repository,
	groupRepo group.Repository,
	gameRepo game.Repository,
) *ScheduleMatchHandler {
	return &ScheduleMatchHandler{
		matchRepo: matchRepo,
		groupRepo: groupRepo,
		gameRepo:  gameRepo,
	}
}

// Handle executes the schedule match command.
func (h *ScheduleMatchHandler) Handle(ctx context.Context, cmd ScheduleMatchCommand) (*ScheduleMatchResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	g, err := h.groupRepo.GetByID(ctx, cmd.GroupID)
	if err != nil {
		return nil, fmt.Errorf("schedule_match: %w", err)
	}
	if !g.IsMember(cmd.CreatedBy) {
		return nil, group.ErrNotMember
	}

	participants := withCreator(cmd.ParticipantIDs, cmd.CreatedBy)
	if !g.ContainsAll(participants) {
		return nil, fmt.Errorf("schedule_match: %w", group.ErrNotMember)
	}

	played, err := h.gameRepo.GetByID(ctx, cmd.GameID)
	if err != nil {
		return nil, fmt.Errorf("schedule_match: %w", err)
	}
	if played.GroupID != g.ID {
		return nil, game.ErrGameNotFound
	}
	if !played.SupportsPlayerCount(len(participants)) {
		return nil, match.ErrPlayerCountUnsupported
	}

	m, err := match.NewMatch(match.NewMatchParams{
		ID:             uuid.NewString(),
		GroupID:        g.ID,
		GameID:         played.ID,
		CreatedBy:      cmd.CreatedBy,
		ScheduledAt:    cmd.ScheduledAt,
		Location:       cmd.Location,
		ParticipantIDs: participants,
	})
	if err != nil {
		return nil, fmt.Errorf("schedule_match: %w", err)
	}

	if err := h.matchRepo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("schedule_match: %w", err)
	}

	return &ScheduleMatchResult{
		MatchID:      m.ID,
		GroupID:      m.GroupID,
		GameID:       m.GameID,
		ScheduledAt:  m.ScheduledAt,
		Participants: m.ParticipantIDs,
	}, nil
}

// withCreator returns the participant list with the creator included.
func withCreator(participants []string, creatorID string) []string {
	for _, id := range participants {
		if id == creatorID {
			return participants
		}
	}
	out := make([]string, 0, len(participants)+1)
	out = append(out, participants...)
	return append(out, creatorID)
}
