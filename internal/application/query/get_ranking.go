// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
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
// GET RANKING QUERY
// Возвращает турнирную таблицу группы: места, очки, победы, процент
// побед. Сначала проверяется кеш; при промахе таблица строится из
// накопленной статистики и кеш прогревается заново.
// ══════════════════════════════════════════════════════════════════════════════

// GetRankingQuery содержит параметры запроса рейтинга.
type GetRankingQuery struct {
	// GroupID - группа, чей рейтинг запрашивается.
	GroupID string

	// Limit - количество записей (по умолчанию 20, максимум 100).
	Limit int

	// Offset - смещение для пагинации.
	Offset int
}

// Validate проверяет корректность параметров запроса.
func (q *GetRankingQuery) Validate() error {
	if q.GroupID == "" {
		return errors.New("group id is required")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return errors.New("limit and offset cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}

// RankingEntryDTO - строка рейтинга для выдачи наружу.
type RankingEntryDTO struct {
	// Position - место в таблице, начиная с 1.
	Position int `json:"position"`

	// PlayerID - внутренний ID игрока.
	PlayerID string `json:"player_id"`

	// DisplayName - отображаемое имя.
	DisplayName string `json:"display_name"`

	// TotalPoints - суммарные очки рейтинга.
	TotalPoints int `json:"total_points"`

	// MatchesPlayed - количество сыгранных матчей.
	MatchesPlayed int `json:"matches_played"`

	// Wins - количество побед.
	Wins int `json:"wins"`

	// WinRate - доля побед в процентах.
	WinRate float64 `json:"win_rate"`
}

// GetRankingResult содержит результат запроса рейтинга.
type GetRankingResult struct {
	// GroupID - группа.
	GroupID string `json:"group_id"`

	// Entries - строки таблицы.
	Entries []RankingEntryDTO `json:"entries"`

	// TotalCount - общее количество игроков в таблице.
	TotalCount int `json:"total_count"`

	// FromCache - таблица получена из кеша.
	FromCache bool `json:"from_cache"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// RankingReader читает и прогревает кешированную таблицу.
// Реализация - Redis sorted set в infrastructure слое.
type RankingReader interface {
	// GetAll возвращает всю таблицу группы. Ошибка означает промах кеша.
	GetAll(ctx context.Context, groupID string) ([]ranking.Entry, error)

	// Rebuild атомарно заменяет кешированную таблицу группы.
	Rebuild(ctx context.Context, groupID string, entries []ranking.Entry) error
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetRankingHandler обрабатывает GetRankingQuery.
type GetRankingHandler struct {
	statsRepo    ranking.Repository
	playerRepo   player.Repository
	rankingCache RankingReader
}

// NewGetRankingHandler создаёт новый GetRankingHandler.
// rankingCache может быть nil - тогда таблица строится из базы.
func NewGetRankingHandler(
	statsRepo ranking.Repository,
	playerRepo player.Repository,
	rankingCache RankingReader,
) *GetRankingHandler {
	return &GetRankingHandler{
		statsRepo:    statsRepo,
		playerRepo:   playerRepo,
		rankingCache: rankingCache,
	}
}

// Handle выполняет запрос рейтинга.
func (h *GetRankingHandler) Handle(ctx context.Context, q GetRankingQuery) (*GetRankingResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_ranking: %w", err)
	}

	entries, fromCache, err := h.loadEntries(ctx, q.GroupID)
	if err != nil {
		return nil, fmt.Errorf("get_ranking: %w", err)
	}

	total := len(entries)
	page := paginate(entries, q.Offset, q.Limit)

	dtos, err := h.toDTOs(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("get_ranking: %w", err)
	}

	return &GetRankingResult{
		GroupID:     q.GroupID,
		Entries:     dtos,
		TotalCount:  total,
		FromCache:   fromCache,
		GeneratedAt: time.Now(),
	}, nil
}

// loadEntries возвращает таблицу из кеша либо строит её из статистики.
func (h *GetRankingHandler) loadEntries(ctx context.Context, groupID string) ([]ranking.Entry, bool, error) {
	if h.rankingCache != nil {
		if entries, err := h.rankingCache.GetAll(ctx, groupID); err == nil {
			return entries, true, nil
		}
	}

	stats, err := h.statsRepo.GetByGroup(ctx, groupID)
	if err != nil {
		return nil, false, err
	}
	entries := ranking.Compute(stats)

	if h.rankingCache != nil && len(entries) > 0 {
		// Прогрев кеша после промаха; ошибка не мешает ответу.
		_ = h.rankingCache.Rebuild(ctx, groupID, entries)
	}

	return entries, false, nil
}

// toDTOs обогащает строки таблицы именами игроков.
func (h *GetRankingHandler) toDTOs(ctx context.Context, entries []ranking.Entry) ([]RankingEntryDTO, error) {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.PlayerID)
	}

	names := make(map[string]string, len(ids))
	if len(ids) > 0 {
		players, err := h.playerRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range players {
			names[p.ID] = p.DisplayName
		}
	}

	dtos := make([]RankingEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, RankingEntryDTO{
			Position:      e.Position,
			PlayerID:      e.PlayerID,
			DisplayName:   names[e.PlayerID],
			TotalPoints:   e.TotalPoints,
			MatchesPlayed: e.MatchesPlayed,
			Wins:          e.Wins,
			WinRate:       e.WinRate,
		})
	}
	return dtos, nil
}

// paginate возвращает срез [offset, offset+limit) без выхода за границы.
func paginate(entries []ranking.Entry, offset, limit int) []ranking.Entry {
	if offset >= len(entries) {
		return nil
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end]
}
