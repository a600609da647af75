package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/player"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/ranking"
)

// ─────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────

type fakeStatsReader struct {
	ranking.Repository
	stats map[string][]*ranking.PlayerStats
	calls int
}

func (f *fakeStatsReader) GetByGroup(_ context.Context, groupID string) ([]*ranking.PlayerStats, error) {
	f.calls++
	return f.stats[groupID], nil
}

type fakePlayerReader struct {
	player.Repository
	players map[string]*player.Player
}

func (f *fakePlayerReader) GetByIDs(_ context.Context, ids []string) ([]*player.Player, error) {
	out := make([]*player.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.players[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeRankingReader struct {
	entries map[string][]ranking.Entry
	rebuilt map[string][]ranking.Entry
}

func (f *fakeRankingReader) GetAll(_ context.Context, groupID string) ([]ranking.Entry, error) {
	entries, ok := f.entries[groupID]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return entries, nil
}

func (f *fakeRankingReader) Rebuild(_ context.Context, groupID string, entries []ranking.Entry) error {
	if f.rebuilt == nil {
		f.rebuilt = make(map[string][]ranking.Entry)
	}
	f.rebuilt[groupID] = entries
	return nil
}

func somePlayers() map[string]*player.Player {
	return map[string]*player.Player{
		"p1": {ID: "p1", DisplayName: "Алия"},
		"p2": {ID: "p2", DisplayName: "Данияр"},
		"p3": {ID: "p3", DisplayName: "Мадина"},
	}
}

// ─────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────

func TestGetRankingQuery_Validate(t *testing.T) {
	q := GetRankingQuery{GroupID: "g1"}
	require.NoError(t, q.Validate())
	assert.Equal(t, 20, q.Limit, "default limit")

	q = GetRankingQuery{GroupID: "g1", Limit: 500}
	require.NoError(t, q.Validate())
	assert.Equal(t, 100, q.Limit, "limit capped")

	q = GetRankingQuery{}
	assert.Error(t, q.Validate())

	q = GetRankingQuery{GroupID: "g1", Offset: -1}
	assert.Error(t, q.Validate())
}

func TestGetRankingHandler_BuildsFromStatsOnCacheMiss(t *testing.T) {
	statsRepo := &fakeStatsReader{stats: map[string][]*ranking.PlayerStats{
		"g1": {
			{GroupID: "g1", PlayerID: "p1", MatchesPlayed: 4, Wins: 3, TotalPoints: 34},
			{GroupID: "g1", PlayerID: "p2", MatchesPlayed: 4, Wins: 1, TotalPoints: 28},
			{GroupID: "g1", PlayerID: "p3", MatchesPlayed: 2, Wins: 0, TotalPoints: 12},
		},
	}}
	cache := &fakeRankingReader{entries: map[string][]ranking.Entry{}}
	h := NewGetRankingHandler(statsRepo, &fakePlayerReader{players: somePlayers()}, cache)

	res, err := h.Handle(context.Background(), GetRankingQuery{GroupID: "g1"})
	require.NoError(t, err)

	assert.False(t, res.FromCache)
	assert.Equal(t, 3, res.TotalCount)
	require.Len(t, res.Entries, 3)

	first := res.Entries[0]
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, "p1", first.PlayerID)
	assert.Equal(t, "Алия", first.DisplayName)
	assert.Equal(t, 34, first.TotalPoints)
	assert.Equal(t, 3, first.Wins)
	assert.InDelta(t, 75.0, first.WinRate, 0.01)

	// Промах кеша прогревает его заново.
	assert.Len(t, cache.rebuilt["g1"], 3)
}

func TestGetRankingHandler_ReturnsFromCache(t *testing.T) {
	statsRepo := &fakeStatsReader{}
	cache := &fakeRankingReader{entries: map[string][]ranking.Entry{
		"g1": {
			{Position: 1, PlayerID: "p2", TotalPoints: 50, MatchesPlayed: 5, Wins: 5, WinRate: 100},
			{Position: 2, PlayerID: "p1", TotalPoints: 40, MatchesPlayed: 5, Wins: 3, WinRate: 60},
		},
	}}
	h := NewGetRankingHandler(statsRepo, &fakePlayerReader{players: somePlayers()}, cache)

	res, err := h.Handle(context.Background(), GetRankingQuery{GroupID: "g1"})
	require.NoError(t, err)

	assert.True(t, res.FromCache)
	assert.Equal(t, 0, statsRepo.calls, "stats repo not touched on cache hit")
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "Данияр", res.Entries[0].DisplayName)
}

func TestGetRankingHandler_WorksWithoutCache(t *testing.T) {
	statsRepo := &fakeStatsReader{stats: map[string][]*ranking.PlayerStats{
		"g1": {{GroupID: "g1", PlayerID: "p1", MatchesPlayed: 1, Wins: 1, TotalPoints: 10}},
	}}
	h := NewGetRankingHandler(statsRepo, &fakePlayerReader{players: somePlayers()}, nil)

	res, err := h.Handle(context.Background(), GetRankingQuery{GroupID: "g1"})
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	require.Len(t, res.Entries, 1)
}

func TestGetRankingHandler_Pagination(t *testing.T) {
	stats := make([]*ranking.PlayerStats, 0, 5)
	players := make(map[string]*player.Player, 5)
	for i, id := range []string{"p1", "p2", "p3", "p4", "p5"} {
		stats = append(stats, &ranking.PlayerStats{
			GroupID: "g1", PlayerID: id, MatchesPlayed: 1, TotalPoints: 50 - i*10,
		})
		players[id] = &player.Player{ID: id, DisplayName: id}
	}
	statsRepo := &fakeStatsReader{stats: map[string][]*ranking.PlayerStats{"g1": stats}}
	h := NewGetRankingHandler(statsRepo, &fakePlayerReader{players: players}, nil)

	res, err := h.Handle(context.Background(), GetRankingQuery{GroupID: "g1", Limit: 2, Offset: 2})
	require.NoError(t, err)

	assert.Equal(t, 5, res.TotalCount)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, 3, res.Entries[0].Position)
	assert.Equal(t, "p3", res.Entries[0].PlayerID)
	assert.Equal(t, "p4", res.Entries[1].PlayerID)

	// Смещение за пределами таблицы даёт пустую страницу, а не ошибку.
	res, err = h.Handle(context.Background(), GetRankingQuery{GroupID: "g1", Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Equal(t, 5, res.TotalCount)
}
