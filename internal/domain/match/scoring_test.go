package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPointCurve_Resolve(t *testing.T) {
	curve := DefaultPointCurve()

	tests := []struct {
		name     string
		position int
		want     int
	}{
		{"first place", 1, 10},
		{"second place", 2, 8},
		{"third place", 3, 6},
		{"fourth place", 4, 4},
		{"fifth place", 5, 2},
		{"sixth place hits floor", 6, 1},
		{"tenth place stays at floor", 10, 1},
		{"unranked player gets nothing", 0, 0},
		{"negative position gets nothing", -3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, curve.Resolve(tt.position))
		})
	}
}

func TestPointCurve_Resolve_CustomCurve(t *testing.T) {
	curve := PointCurve{Base: 5, Step: 1, Floor: 0}

	assert.Equal(t, 5, curve.Resolve(1))
	assert.Equal(t, 1, curve.Resolve(5))
	assert.Equal(t, 0, curve.Resolve(6))
	assert.Equal(t, 0, curve.Resolve(100))
}

func TestPointCurve_IsValid(t *testing.T) {
	assert.True(t, DefaultPointCurve().IsValid())
	assert.True(t, PointCurve{Base: 1, Step: 0, Floor: 0}.IsValid())
	assert.False(t, PointCurve{Base: 0, Step: 2, Floor: 1}.IsValid())
	assert.False(t, PointCurve{Base: 5, Step: 2, Floor: 6}.IsValid())
	assert.False(t, PointCurve{Base: 5, Step: -1, Floor: 1}.IsValid())
}

func newScheduledMatch(t *testing.T, participants ...string) *Match {
	t.Helper()

	m, err := NewMatch(NewMatchParams{
		ID:             "match-1",
		GroupID:        "group-1",
		GameID:         "game-1",
		CreatedBy:      participants[0],
		ScheduledAt:    time.Now().Add(time.Hour),
		ParticipantIDs: participants,
	})
	require.NoError(t, err)
	return m
}

func TestMatch_Finish_AwardsPointsByPosition(t *testing.T) {
	m := newScheduledMatch(t, "alice", "bob", "carol")

	err := m.Finish([]Result{
		{PlayerID: "alice", Position: 1, Score: 87},
		{PlayerID: "bob", Position: 2, Score: 64},
		{PlayerID: "carol", Position: 3, Score: 41},
	}, DefaultPointCurve())
	require.NoError(t, err)

	assert.Equal(t, StatusFinished, m.Status)
	require.NotNil(t, m.FinishedAt)
	assert.Equal(t, 10, m.Results[0].Points)
	assert.Equal(t, 8, m.Results[1].Points)
	assert.Equal(t, 6, m.Results[2].Points)
}

func TestMatch_Finish_UnrankedParticipantGetsZero(t *testing.T) {
	m := newScheduledMatch(t, "alice", "bob")

	err := m.Finish([]Result{
		{PlayerID: "alice", Position: 1},
		{PlayerID: "bob", Position: 0},
	}, DefaultPointCurve())
	require.NoError(t, err)

	assert.Equal(t, 10, m.Results[0].Points)
	assert.Equal(t, 0, m.Results[1].Points)
	assert.False(t, m.Results[1].IsRanked())
}

func TestMatch_Finish_RejectsDuplicatePosition(t *testing.T) {
	m := newScheduledMatch(t, "alice", "bob")

	err := m.Finish([]Result{
		{PlayerID: "alice", Position: 1},
		{PlayerID: "bob", Position: 1},
	}, DefaultPointCurve())

	assert.ErrorIs(t, err, ErrDuplicatePosition)
	assert.Equal(t, StatusScheduled, m.Status)
	assert.Empty(t, m.Results)
}

func TestMatch_Finish_AllowsDuplicateUnranked(t *testing.T) {
	m := newScheduledMatch(t, "alice", "bob", "carol")

	// Ноль - не место, а его отсутствие: повторяться может
	err := m.Finish([]Result{
		{PlayerID: "alice", Position: 1},
		{PlayerID: "bob", Position: 0},
		{PlayerID: "carol", Position: 0},
	}, DefaultPointCurve())

	require.NoError(t, err)
	assert.Equal(t, StatusFinished, m.Status)
}

func TestMatch_Finish_RejectsNonParticipant(t *testing.T) {
	m := newScheduledMatch(t, "alice", "bob")

	err := m.Finish([]Result{
		{PlayerID: "alice", Position: 1},
		{PlayerID: "mallory", Position: 2},
	}, DefaultPointCurve())

	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestMatch_Finish_RejectsDuplicatePlayer(t *testing.T) {
	m := newScheduledMatch(t, "alice", "bob")

	err := m.Finish([]Result{
		{PlayerID: "alice", Position: 1},
		{PlayerID: "alice", Position: 2},
	}, DefaultPointCurve())

	assert.ErrorIs(t, err, ErrDuplicateParticipant)
}

func TestMatch_Finish_RejectsEmptyResults(t *testing.T) {
	m := newScheduledMatch(t, "alice")

	err := m.Finish(nil, DefaultPointCurve())

	assert.ErrorIs(t, err, ErrNoResults)
}

func TestMatch_Finish_Twice(t *testing.T) {
	m := newScheduledMatch(t, "alice")

	results := []Result{{PlayerID: "alice", Position: 1}}
	require.NoError(t, m.Finish(results, DefaultPointCurve()))

	err := m.Finish(results, DefaultPointCurve())
	assert.ErrorIs(t, err, ErrAlreadyFinished)
}

func TestMatch_Finish_AfterCancel(t *testing.T) {
	m := newScheduledMatch(t, "alice")
	require.NoError(t, m.Cancel())

	err := m.Finish([]Result{{PlayerID: "alice", Position: 1}}, DefaultPointCurve())
	assert.ErrorIs(t, err, ErrNotScheduled)
}

func TestMatch_Awards(t *testing.T) {
	m := newScheduledMatch(t, "alice", "bob", "carol")

	require.NoError(t, m.Finish([]Result{
		{PlayerID: "alice", Position: 2},
		{PlayerID: "bob", Position: 1},
		{PlayerID: "carol", Position: 0},
	}, DefaultPointCurve()))

	awards := m.Awards()
	require.Len(t, awards, 3)

	assert.Equal(t, PointAward{PlayerID: "alice", Position: 2, Points: 8}, awards[0])
	assert.Equal(t, PointAward{PlayerID: "bob", Position: 1, Points: 10, Won: true}, awards[1])
	assert.Equal(t, PointAward{PlayerID: "carol", Position: 0, Points: 0}, awards[2])
}

func TestMatch_Awards_AllUnrankedIsUngraded(t *testing.T) {
	m := newScheduledMatch(t, "alice", "bob")

	// Матч без единого зафиксированного места: начислений нет
	require.NoError(t, m.Finish([]Result{
		{PlayerID: "alice", Position: 0},
		{PlayerID: "bob", Position: 0},
	}, DefaultPointCurve()))

	awards := m.Awards()
	require.NotNil(t, awards)
	assert.Empty(t, awards)
}

func TestMatch_Awards_UnfinishedReturnsNil(t *testing.T) {
	m := newScheduledMatch(t, "alice")
	assert.Nil(t, m.Awards())
}

func TestMatch_Winner(t *testing.T) {
	m := newScheduledMatch(t, "alice", "bob")

	require.NoError(t, m.Finish([]Result{
		{PlayerID: "alice", Position: 2},
		{PlayerID: "bob", Position: 1},
	}, DefaultPointCurve()))

	winner, ok := m.Winner()
	require.True(t, ok)
	assert.Equal(t, "bob", winner.PlayerID)
}

func TestMatch_Winner_NoRankedResults(t *testing.T) {
	m := newScheduledMatch(t, "alice")

	require.NoError(t, m.Finish([]Result{
		{PlayerID: "alice", Position: 0},
	}, DefaultPointCurve()))

	_, ok := m.Winner()
	assert.False(t, ok)
}
