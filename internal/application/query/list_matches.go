package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/match"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST MATCHES QUERY
// Возвращает матчи группы с фильтрацией по статусу, игре и времени.
// ══════════════════════════════════════════════════════════════════════════════

// ListMatchesQuery содержит параметры запроса матчей.
type ListMatchesQuery struct {
	// GroupID - группа.
	GroupID string

	// Status ограничивает выборку статусом (пустой - все).
	Status string

	// GameID ограничивает выборку игрой (пустой - все).
	GameID string

	// From и To ограничивают выборку по времени проведения.
	From time.Time
	To   time.Time

	// Limit - количество записей (по умолчанию 50, максимум 200).
	Limit int

	// Offset - смещение для пагинации.
	Offset int
}

// Validate проверяет корректность параметров запроса.
func (q *ListMatchesQuery) Validate() error {
	if q.GroupID == "" {
		return errors.New("group id is required")
	}
	if q.Status != "" && !match.Status(q.Status).IsValid() {
		return fmt.Errorf("unknown match status: %s", q.Status)
	}
	if q.Limit < 0 || q.Offset < 0 {
		return errors.New("limit and offset cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = match.DefaultFilter().Limit
	}
	if q.Limit > 200 {
		q.Limit = 200
	}
	return nil
}

// MatchResultDTO - результат одного игрока.
type MatchResultDTO struct {
	PlayerID string `json:"player_id"`
	Position int    `json:"position"`
	Score    int    `json:"score"`
	Points   int    `json:"points"`
}

// MatchDTO - матч для выдачи наружу.
type MatchDTO struct {
	MatchID      string           `json:"match_id"`
	GroupID      string           `json:"group_id"`
	GameID       string           `json:"game_id"`
	CreatedBy    string           `json:"created_by"`
	Status       string           `json:"status"`
	ScheduledAt  time.Time        `json:"scheduled_at"`
	Location     string           `json:"location,omitempty"`
	Participants []string         `json:"participants"`
	Results      []MatchResultDTO `json:"results,omitempty"`
	FinishedAt   *time.Time       `json:"finished_at,omitempty"`
}

// ListMatchesResult содержит страницу матчей.
type ListMatchesResult struct {
	GroupID string     `json:"group_id"`
	Matches []MatchDTO `json:"matches"`
}

// ListMatchesHandler обрабатывает ListMatchesQuery.
type ListMatchesHandler struct {
	matchRepo match.Repository
}

// NewListMatchesHandler создаёт новый ListMatchesHandler.
func NewListMatchesHandler(matchRepo match.Repository) *ListMatchesHandler {
	return &ListMatchesHandler{matchRepo: matchRepo}
}

// Handle выполняет запрос матчей.
func (h *ListMatchesHandler) Handle(ctx context.Context, q ListMatchesQuery) (*ListMatchesResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("list_matches: %w", err)
	}

	filter := match.Filter{
		Status: match.Status(q.Status),
		GameID: q.GameID,
		From:   q.From,
		To:     q.To,
		Offset: q.Offset,
		Limit:  q.Limit,
	}

	matches, err := h.matchRepo.GetByGroupID(ctx, q.GroupID, filter)
	if err != nil {
		return nil, fmt.Errorf("list_matches: %w", err)
	}

	dtos := make([]MatchDTO, 0, len(matches))
	for _, m := range matches {
		dtos = append(dtos, toMatchDTO(m))
	}

	return &ListMatchesResult{
		GroupID: q.GroupID,
		Matches: dtos,
	}, nil
}

func toMatchDTO(m *match.Match) MatchDTO {
	results := make([]MatchResultDTO, 0, len(m.Results))
	for _, r := range m.Results {
		results = append(results, MatchResultDTO{
			PlayerID: r.PlayerID,
			Position: r.Position,
			Score:    r.Score,
			Points:   r.Points,
		})
	}

	return MatchDTO{
		MatchID:      m.ID,
		GroupID:      m.GroupID,
		GameID:       m.GameID,
		CreatedBy:    m.CreatedBy,
		Status:       string(m.Status),
		ScheduledAt:  m.ScheduledAt,
		Location:     m.Location,
		Participants: m.ParticipantIDs,
		Results:      results,
		FinishedAt:   m.FinishedAt,
	}
}
