package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/game"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST GAMES QUERY
// Возвращает каталог группы, при необходимости с поиском по названию.
// ══════════════════════════════════════════════════════════════════════════════

// ListGamesQuery содержит параметры запроса каталога.
type ListGamesQuery struct {
	// GroupID - группа.
	GroupID string

	// Search - подстрока названия (пустая - весь каталог).
	Search string

	// Limit - количество записей (по умолчанию 50, максимум 200).
	Limit int

	// Offset - смещение для пагинации.
	Offset int
}

// Validate проверяет корректность параметров запроса.
func (q *ListGamesQuery) Validate() error {
	if q.GroupID == "" {
		return errors.New("group id is required")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return errors.New("limit and offset cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = game.DefaultListOptions().Limit
	}
	if q.Limit > 200 {
		q.Limit = 200
	}
	return nil
}

// GameDTO - запись каталога для выдачи наружу.
type GameDTO struct {
	GameID          string     `json:"game_id"`
	GroupID         string     `json:"group_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Source          string     `json:"source"`
	ExternalID      int64      `json:"external_id,omitempty"`
	MinPlayers      int        `json:"min_players,omitempty"`
	MaxPlayers      int        `json:"max_players,omitempty"`
	PlayTimeMinutes int        `json:"play_time_minutes,omitempty"`
	YearPublished   int        `json:"year_published,omitempty"`
	ThumbnailURL    string     `json:"thumbnail_url,omitempty"`
	Rating          float64    `json:"rating,omitempty"`
	SyncedAt        *time.Time `json:"synced_at,omitempty"`
}

// ListGamesResult содержит страницу каталога.
type ListGamesResult struct {
	GroupID    string    `json:"group_id"`
	Games      []GameDTO `json:"games"`
	TotalCount int64     `json:"total_count"`
}

// ListGamesHandler обрабатывает ListGamesQuery.
type ListGamesHandler struct {
	gameRepo game.Repository
}

// NewListGamesHandler создаёт новый ListGamesHandler.
func NewListGamesHandler(gameRepo game.Repository) *ListGamesHandler {
	return &ListGamesHandler{gameRepo: gameRepo}
}

// Handle выполняет запрос каталога.
func (h *ListGamesHandler) Handle(ctx context.Context, q ListGamesQuery) (*ListGamesResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("list_games: %w", err)
	}

	var (
		games []*game.Game
		err   error
	)
	if q.Search != "" {
		games, err = h.gameRepo.Search(ctx, q.GroupID, q.Search, q.Limit)
	} else {
		games, err = h.gameRepo.GetByGroupID(ctx, q.GroupID, game.ListOptions{
			Offset: q.Offset,
			Limit:  q.Limit,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("list_games: %w", err)
	}

	total, _ := h.gameRepo.CountByGroupID(ctx, q.GroupID)

	dtos := make([]GameDTO, 0, len(games))
	for _, g := range games {
		dtos = append(dtos, toGameDTO(g))
	}

	return &ListGamesResult{
		GroupID:    q.GroupID,
		Games:      dtos,
		TotalCount: total,
	}, nil
}

func toGameDTO(g *game.Game) GameDTO {
	return GameDTO{
		GameID:          g.ID,
		GroupID:         g.GroupID,
		Name:            g.Name,
		Description:     g.Description,
		Source:          string(g.Source),
		ExternalID:      g.ExternalID,
		MinPlayers:      g.Players.Min,
		MaxPlayers:      g.Players.Max,
		PlayTimeMinutes: g.PlayTimeMinutes,
		YearPublished:   g.YearPublished,
		ThumbnailURL:    g.ThumbnailURL,
		Rating:          g.Rating,
		SyncedAt:        g.SyncedAt,
	}
}
