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
// GET GLOBAL RANKING QUERY
// Возвращает сквозную таблицу по всем группам: очки каждого игрока
// суммируются по всем его группам. Таблица строится из базы напрямую,
// без кеша: сквозной рейтинг запрашивается редко.
// ══════════════════════════════════════════════════════════════════════════════

// GetGlobalRankingQuery содержит параметры запроса сквозного рейтинга.
type GetGlobalRankingQuery struct {
	// Limit - количество записей (по умолчанию 20, максимум 100).
	Limit int

	// Offset - смещение для пагинации.
	Offset int
}

// Validate проверяет корректность параметров запроса.
func (q *GetGlobalRankingQuery) Validate() error {
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

// GetGlobalRankingResult содержит результат запроса сквозного рейтинга.
type GetGlobalRankingResult struct {
	// Entries - строки таблицы.
	Entries []RankingEntryDTO `json:"entries"`

	// TotalCount - общее количество игроков в таблице.
	TotalCount int `json:"total_count"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetGlobalRankingHandler обрабатывает GetGlobalRankingQuery.
type GetGlobalRankingHandler struct {
	statsRepo  ranking.Repository
	playerRepo player.Repository
}

// NewGetGlobalRankingHandler создаёт новый GetGlobalRankingHandler.
func NewGetGlobalRankingHandler(
	statsRepo ranking.Repository,
	playerRepo player.Repository,
) *GetGlobalRankingHandler {
	return &GetGlobalRankingHandler{
		statsRepo:  statsRepo,
		playerRepo: playerRepo,
	}
}

// Handle выполняет запрос сквозного рейтинга.
func (h *GetGlobalRankingHandler) Handle(ctx context.Context, q GetGlobalRankingQuery) (*GetGlobalRankingResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_global_ranking: %w", err)
	}

	stats, err := h.statsRepo.GetGlobalTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_global_ranking: %w", err)
	}
	entries := ranking.Compute(stats)

	total := len(entries)
	page := paginate(entries, q.Offset, q.Limit)

	dtos, err := h.enrichNames(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("get_global_ranking: %w", err)
	}

	return &GetGlobalRankingResult{
		Entries:     dtos,
		TotalCount:  total,
		GeneratedAt: time.Now(),
	}, nil
}

// enrichNames дополняет строки таблицы именами игроков.
func (h *GetGlobalRankingHandler) enrichNames(ctx context.Context, entries []ranking.Entry) ([]RankingEntryDTO, error) {
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
