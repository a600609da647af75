package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statsWith(playerID string, matches, wins, points int) *PlayerStats {
	return &PlayerStats{
		GroupID:       "group-1",
		PlayerID:      playerID,
		MatchesPlayed: matches,
		Wins:          wins,
		TotalPoints:   points,
	}
}

func TestCompute_SortsByPointsDescending(t *testing.T) {
	entries := Compute([]*PlayerStats{
		statsWith("alice", 3, 0, 14),
		statsWith("bob", 5, 3, 38),
		statsWith("carol", 2, 1, 18),
	})

	require.Len(t, entries, 3)
	assert.Equal(t, "bob", entries[0].PlayerID)
	assert.Equal(t, "carol", entries[1].PlayerID)
	assert.Equal(t, "alice", entries[2].PlayerID)

	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, 2, entries[1].Position)
	assert.Equal(t, 3, entries[2].Position)
}

func TestCompute_TiesKeepInputOrder(t *testing.T) {
	entries := Compute([]*PlayerStats{
		statsWith("alice", 2, 1, 20),
		statsWith("bob", 4, 0, 20),
		statsWith("carol", 1, 1, 20),
	})

	require.Len(t, entries, 3)
	assert.Equal(t, "alice", entries[0].PlayerID)
	assert.Equal(t, "bob", entries[1].PlayerID)
	assert.Equal(t, "carol", entries[2].PlayerID)

	// Ничьи не делят место: позиции идут подряд
	assert.Equal(t, []int{1, 2, 3}, []int{
		entries[0].Position, entries[1].Position, entries[2].Position,
	})
}

func TestCompute_EmptyAndNilInput(t *testing.T) {
	assert.Empty(t, Compute(nil))
	assert.Empty(t, Compute([]*PlayerStats{nil, nil}))
}

func TestCompute_WinRate(t *testing.T) {
	entries := Compute([]*PlayerStats{
		statsWith("alice", 3, 1, 16),
	})

	require.Len(t, entries, 1)
	assert.InDelta(t, 33.33, entries[0].WinRate, 0.001)
}

func TestTop(t *testing.T) {
	entries := Compute([]*PlayerStats{
		statsWith("alice", 1, 1, 10),
		statsWith("bob", 1, 0, 8),
		statsWith("carol", 1, 0, 6),
	})

	top := Top(entries, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "alice", top[0].PlayerID)

	assert.Len(t, Top(entries, 0), 3)
	assert.Len(t, Top(entries, 10), 3)
}

func TestFind(t *testing.T) {
	entries := Compute([]*PlayerStats{
		statsWith("alice", 1, 1, 10),
		statsWith("bob", 1, 0, 8),
	})

	e, ok := Find(entries, "bob")
	require.True(t, ok)
	assert.Equal(t, 2, e.Position)

	_, ok = Find(entries, "mallory")
	assert.False(t, ok)
}

func TestPlayerStats_RecordMatch(t *testing.T) {
	s := NewPlayerStats("group-1", "alice")
	playedAt := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordMatch(10, true, playedAt))
	require.NoError(t, s.RecordMatch(6, false, playedAt.Add(24*time.Hour)))

	assert.Equal(t, 2, s.MatchesPlayed)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 16, s.TotalPoints)
	require.NotNil(t, s.LastPlayedAt)
	assert.Equal(t, playedAt.Add(24*time.Hour), *s.LastPlayedAt)
}

func TestPlayerStats_RecordMatch_RejectsNegativePoints(t *testing.T) {
	s := NewPlayerStats("group-1", "alice")
	assert.ErrorIs(t, s.RecordMatch(-1, false, time.Now()), ErrNegativePoints)
	assert.Equal(t, 0, s.MatchesPlayed)
}

func TestPlayerStats_WinRate(t *testing.T) {
	s := NewPlayerStats("group-1", "alice")
	assert.Zero(t, s.WinRate())

	s.MatchesPlayed = 4
	s.Wins = 3
	assert.Equal(t, 75.0, s.WinRate())

	s.MatchesPlayed = 3
	s.Wins = 2
	assert.InDelta(t, 66.67, s.WinRate(), 0.001)
}

func TestPlayerStats_AveragePoints(t *testing.T) {
	s := NewPlayerStats("group-1", "alice")
	assert.Zero(t, s.AveragePoints())

	s.MatchesPlayed = 3
	s.TotalPoints = 20
	assert.InDelta(t, 6.67, s.AveragePoints(), 0.001)
}
