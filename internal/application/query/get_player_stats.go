package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/player"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/ranking"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PLAYER STATS QUERY
// Возвращает статистику одного игрока в группе вместе с его текущим
// местом в таблице.
// ══════════════════════════════════════════════════════════════════════════════

// GetPlayerStatsQuery содержит параметры запроса статистики.
type GetPlayerStatsQuery struct {
	// GroupID - группа.
	GroupID string

	// PlayerID - игрок.
	PlayerID string
}

// Validate проверяет корректность параметров запроса.
func (q GetPlayerStatsQuery) Validate() error {
	if q.GroupID == "" {
		return errors.New("group id is required")
	}
	if q.PlayerID == "" {
		return errors.New("player id is required")
	}
	return nil
}

// GetPlayerStatsResult содержит статистику игрока.
type GetPlayerStatsResult struct {
	// GroupID - группа.
	GroupID string `json:"group_id"`

	// PlayerID - игрок.
	PlayerID string `json:"player_id"`

	// DisplayName - отображаемое имя.
	DisplayName string `json:"display_name"`

	// Position - место в таблице группы (0, если матчей ещё не было).
	Position int `json:"position"`

	// TotalPoints - суммарные очки рейтинга.
	TotalPoints int `json:"total_points"`

	// MatchesPlayed - количество сыгранных матчей.
	MatchesPlayed int `json:"matches_played"`

	// Wins - количество побед.
	Wins int `json:"wins"`

	// WinRate - доля побед в процентах.
	WinRate float64 `json:"win_rate"`

	// AveragePoints - средние очки за матч.
	AveragePoints float64 `json:"average_points"`

	// LastPlayedAt - время последнего завершённого матча.
	LastPlayedAt *time.Time `json:"last_played_at,omitempty"`
}

// GetPlayerStatsHandler обрабатывает GetPlayerStatsQuery.
type GetPlayerStatsHandler struct {
	statsRepo  ranking.Repository
	playerRepo player.Repository
}

// NewGetPlayerStatsHandler создаёт новый GetPlayerStatsHandler.
func NewGetPlayerStatsHandler(statsRepo ranking.Repository, playerRepo player.Repository) *GetPlayerStatsHandler {
	return &GetPlayerStatsHandler{
		statsRepo:  statsRepo,
		playerRepo: playerRepo,
	}
}

// Handle выполняет запрос статистики.
func (h *GetPlayerStatsHandler) Handle(ctx context.Context, q GetPlayerStatsQuery) (*GetPlayerStatsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_player_stats: %w", err)
	}

	p, err := h.playerRepo.GetByID(ctx, q.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("get_player_stats: %w", err)
	}

	stats, err := h.statsRepo.GetByPlayer(ctx, q.GroupID, q.PlayerID)
	if err != nil {
		if errors.Is(err, ranking.ErrStatsNotFound) {
			// Игрок ещё не сыграл ни одного матча в группе.
			return &GetPlayerStatsResult{
				GroupID:     q.GroupID,
				PlayerID:    q.PlayerID,
				DisplayName: p.DisplayName,
			}, nil
		}
		return nil, fmt.Errorf("get_player_stats: %w", err)
	}

	position, err := h.findPosition(ctx, q.GroupID, q.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("get_player_stats: %w", err)
	}

	return &GetPlayerStatsResult{
		GroupID:       stats.GroupID,
		PlayerID:      stats.PlayerID,
		DisplayName:   p.DisplayName,
		Position:      position,
		TotalPoints:   stats.TotalPoints,
		MatchesPlayed: stats.MatchesPlayed,
		Wins:          stats.Wins,
		WinRate:       stats.WinRate(),
		AveragePoints: stats.AveragePoints(),
		LastPlayedAt:  stats.LastPlayedAt,
	}, nil
}

// findPosition определяет место игрока по полной таблице группы.
func (h *GetPlayerStatsHandler) findPosition(ctx context.Context, groupID, playerID string) (int, error) {
	all, err := h.statsRepo.GetByGroup(ctx, groupID)
	if err != nil {
		return 0, err
	}
	for _, e := range ranking.Compute(all) {
		if e.PlayerID == playerID {
			return e.Position, nil
		}
	}
	return 0, nil
}
