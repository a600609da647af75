package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatch_Validation(t *testing.T) {
	base := NewMatchParams{
		ID:             "match-1",
		GroupID:        "group-1",
		GameID:         "game-1",
		CreatedBy:      "alice",
		ScheduledAt:    time.Now().Add(time.Hour),
		ParticipantIDs: []string{"alice", "bob"},
	}

	m, err := NewMatch(base)
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, m.Status)
	assert.Len(t, m.ParticipantIDs, 2)

	noParticipants := base
	noParticipants.ParticipantIDs = nil
	_, err = NewMatch(noParticipants)
	assert.ErrorIs(t, err, ErrNoParticipants)

	duplicated := base
	duplicated.ParticipantIDs = []string{"alice", "alice"}
	_, err = NewMatch(duplicated)
	assert.ErrorIs(t, err, ErrDuplicateParticipant)

	noGame := base
	noGame.GameID = ""
	_, err = NewMatch(noGame)
	assert.Error(t, err)
}

func TestMatch_AddRemoveParticipant(t *testing.T) {
	m := newScheduledMatch(t, "alice", "bob")

	require.NoError(t, m.AddParticipant("carol"))
	assert.True(t, m.IsParticipant("carol"))

	assert.ErrorIs(t, m.AddParticipant("carol"), ErrDuplicateParticipant)

	require.NoError(t, m.RemoveParticipant("bob"))
	assert.False(t, m.IsParticipant("bob"))

	assert.ErrorIs(t, m.RemoveParticipant("bob"), ErrNotParticipant)
}

func TestMatch_RemoveLastParticipant(t *testing.T) {
	m := newScheduledMatch(t, "alice")
	assert.ErrorIs(t, m.RemoveParticipant("alice"), ErrNoParticipants)
}

func TestMatch_Expire(t *testing.T) {
	m := newScheduledMatch(t, "alice")
	m.ScheduledAt = time.Now().Add(-2 * time.Hour)

	require.NoError(t, m.Expire(time.Now()))
	assert.Equal(t, StatusExpired, m.Status)

	// Второй раз - уже не scheduled
	assert.ErrorIs(t, m.Expire(time.Now()), ErrNotScheduled)
}

func TestMatch_Expire_NotOverdueYet(t *testing.T) {
	m := newScheduledMatch(t, "alice")
	assert.Error(t, m.Expire(time.Now()))
	assert.Equal(t, StatusScheduled, m.Status)
}

func TestMatch_Clone_IsIndependent(t *testing.T) {
	m := newScheduledMatch(t, "alice", "bob")
	clone := m.Clone()

	clone.ParticipantIDs[0] = "mallory"
	assert.Equal(t, "alice", m.ParticipantIDs[0])
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusScheduled.IsTerminal())
	assert.True(t, StatusFinished.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusExpired.IsTerminal())
}
