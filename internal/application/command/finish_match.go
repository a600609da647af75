package command

import (
	"context"
	"fmt"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/group"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/match"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/ranking"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FINISH MATCH COMMAND
// Records match results, resolves positions to ranking points and applies
// the awards to player statistics.
// ══════════════════════════════════════════════════════════════════════════════

// ResultInput is one player's result as submitted.
type ResultInput struct {
	// PlayerID is the participant.
	PlayerID string

	// Position is the finishing place starting at 1. Zero means the
	// player took part but no place was recorded.
	Position int

	// Score is the raw in-game score, optional.
	Score int
}

// FinishMatchCommand contains the data needed to finish a match.
type FinishMatchCommand struct {
	// MatchID identifies the match.
	MatchID string

	// RecordedBy is the player submitting the results. Must be a
	// participant or a group admin.
	RecordedBy string

	// Results are the submitted results, one per playing participant.
	Results []ResultInput
}

// Validate validates the command.
func (c FinishMatchCommand) Validate() error {
	if c.MatchID == "" {
		return fmt.Errorf("finish_match: match id is required")
	}
	if c.RecordedBy == "" {
		return fmt.Errorf("finish_match: recorder id is required")
	}
	if len(c.Results) == 0 {
		return match.ErrNoResults
	}
	return nil
}

// AwardFailure is an award that could not be applied to statistics.
type AwardFailure struct {
	PlayerID string
	Points   int
	Error    error
}

// FinishMatchResult contains the finished match and applied awards.
type FinishMatchResult struct {
	MatchID    string
	GroupID    string
	FinishedAt time.Time
	WinnerID   string
	Awards     []match.PointAward

	// FailedAwards lists awards that failed to apply. The match result
	// itself stays recorded; the periodic ranking rebuild repairs the
	// statistics.
	FailedAwards []AwardFailure
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// RankingInvalidator drops cached ranking tables after statistics change.
type RankingInvalidator interface {
	Invalidate(ctx context.Context, groupID string) error
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// FinishMatchHandler handles the FinishMatchCommand.
type FinishMatchHandler struct {
	matchRepo      match.Repository
	groupRepo      group.Repository
	statsRepo      ranking.Repository
	rankingCache   RankingInvalidator
	eventPublisher shared.EventPublisher

	// curve resolves finishing places to ranking points.
	curve match.PointCurve
}

// NewFinishMatchHandler creates a new FinishMatchHandler.
// rankingCache and eventPublisher may be nil. A zero curve falls back
// to the default 10/2/1 curve.
func NewFinishMatchHandler(
	matchRepo match.Repository,
	groupRepo group.Repository,
	statsRepo ranking.Repository,
	rankingCache RankingInvalidator,
	eventPublisher shared.EventPublisher,
	curve match.PointCurve,
) *FinishMatchHandler {
	if !curve.IsValid() {
		curve = match.DefaultPointCurve()
	}

	return &FinishMatchHandler{
		matchRepo:      matchRepo,
		groupRepo:      groupRepo,
		statsRepo:      statsRepo,
		rankingCache:   rankingCache,
		eventPublisher: eventPublisher,
		curve:          curve,
	}
}

// Handle executes the finish match command.
func (h *FinishMatchHandler) Handle(ctx context.Context, cmd FinishMatchCommand) (*FinishMatchResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	m, err := h.matchRepo.GetByID(ctx, cmd.MatchID)
	if err != nil {
		return nil, fmt.Errorf("finish_match: %w", err)
	}

	if err := h.authorizeRecorder(ctx, m, cmd.RecordedBy); err != nil {
		return nil, err
	}

	results := make([]match.Result, 0, len(cmd.Results))
	for _, r := range cmd.Results {
		results = append(results, match.Result{
			PlayerID: r.PlayerID,
			Position: r.Position,
			Score:    r.Score,
		})
	}

	if err := m.Finish(results, h.curve); err != nil {
		return nil, fmt.Errorf("finish_match: %w", err)
	}

	if err := h.matchRepo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("finish_match: %w", err)
	}

	// Apply awards one by one: a failing player must not block the rest.
	awards := m.Awards()
	failed := h.applyAwards(ctx, m.GroupID, awards)

	if h.rankingCache != nil {
		// Stale cache expires on TTL even if invalidation fails.
		_ = h.rankingCache.Invalidate(ctx, m.GroupID)
	}

	winnerID := ""
	if w, ok := m.Winner(); ok {
		winnerID = w.PlayerID
	}

	if h.eventPublisher != nil {
		points := make(map[string]int, len(awards))
		for _, a := range awards {
			points[a.PlayerID] = a.Points
		}
		event := shared.NewMatchFinishedEvent(m.ID, m.GroupID, m.GameID, winnerID, points)
		_ = h.eventPublisher.Publish(event)
	}

	return &FinishMatchResult{
		MatchID:      m.ID,
		GroupID:      m.GroupID,
		FinishedAt:   *m.FinishedAt,
		WinnerID:     winnerID,
		Awards:       awards,
		FailedAwards: failed,
	}, nil
}

// authorizeRecorder allows participants and group admins to record results.
func (h *FinishMatchHandler) authorizeRecorder(ctx context.Context, m *match.Match, recorderID string) error {
	if m.IsParticipant(recorderID) {
		return nil
	}

	g, err := h.groupRepo.GetByID(ctx, m.GroupID)
	if err != nil {
		return fmt.Errorf("finish_match: %w", err)
	}
	if !g.IsAdmin(recorderID) {
		return group.ErrNotAdmin
	}
	return nil
}

func (h *FinishMatchHandler) applyAwards(ctx context.Context, groupID string, awards []match.PointAward) []AwardFailure {
	var failed []AwardFailure
	for _, a := range awards {
		if err := h.statsRepo.ApplyAward(ctx, groupID, a.PlayerID, a.Points, a.Won); err != nil {
			failed = append(failed, AwardFailure{
				PlayerID: a.PlayerID,
				Points:   a.Points,
				Error:    err,
			})
		}
	}
	return failed
}
