package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/match"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET MATCH QUERY
// Возвращает один матч по внутреннему ID.
// ══════════════════════════════════════════════════════════════════════════════

// GetMatchQuery содержит параметры запроса матча.
type GetMatchQuery struct {
	// MatchID - внутренний ID матча.
	MatchID string
}

// Validate проверяет корректность параметров запроса.
func (q GetMatchQuery) Validate() error {
	if q.MatchID == "" {
		return errors.New("match id is required")
	}
	return nil
}

// GetMatchHandler обрабатывает GetMatchQuery.
type GetMatchHandler struct {
	matchRepo match.Repository
}

// NewGetMatchHandler создаёт новый GetMatchHandler.
func NewGetMatchHandler(matchRepo match.Repository) *GetMatchHandler {
	return &GetMatchHandler{matchRepo: matchRepo}
}

// Handle выполняет запрос матча.
func (h *GetMatchHandler) Handle(ctx context.Context, q GetMatchQuery) (*MatchDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_match: %w", err)
	}

	m, err := h.matchRepo.GetByID(ctx, q.MatchID)
	if err != nil {
		return nil, fmt.Errorf("get_match: %w", err)
	}

	dto := toMatchDTO(m)
	return &dto, nil
}
