package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/game"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET GAME QUERY
// Возвращает одну запись каталога по внутреннему ID.
// ══════════════════════════════════════════════════════════════════════════════

// GetGameQuery содержит параметры запроса игры.
type GetGameQuery struct {
	// GameID - внутренний ID игры.
	GameID string
}

// Validate проверяет корректность параметров запроса.
func (q GetGameQuery) Validate() error {
	if q.GameID == "" {
		return errors.New("game id is required")
	}
	return nil
}

// GetGameHandler обрабатывает GetGameQuery.
type GetGameHandler struct {
	gameRepo game.Repository
}

// NewGetGameHandler создаёт новый GetGameHandler.
func NewGetGameHandler(gameRepo game.Repository) *GetGameHandler {
	return &GetGameHandler{gameRepo: gameRepo}
}

// Handle выполняет запрос игры.
func (h *GetGameHandler) Handle(ctx context.Context, q GetGameQuery) (*GameDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_game: %w", err)
	}

	g, err := h.gameRepo.GetByID(ctx, q.GameID)
	if err != nil {
		return nil, fmt.Errorf("get_game: %w", err)
	}

	dto := toGameDTO(g)
	return &dto, nil
}
