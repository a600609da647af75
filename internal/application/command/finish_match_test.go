package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/group"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/match"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/ranking"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/shared"
)

// ─────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────

type fakeMatchRepo struct {
	match.Repository
	matches map[string]*match.Match
	updated *match.Match
}

func (f *fakeMatchRepo) GetByID(_ context.Context, id string) (*match.Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return nil, match.ErrMatchNotFound
	}
	return m, nil
}

func (f *fakeMatchRepo) Update(_ context.Context, m *match.Match) error {
	f.updated = m
	return nil
}

type fakeGroupRepo struct {
	group.Repository
	groups map[string]*group.Group
}

func (f *fakeGroupRepo) GetByID(_ context.Context, id string) (*group.Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, group.ErrGroupNotFound
	}
	return g, nil
}

type appliedAward struct {
	groupID  string
	playerID string
	points   int
	won      bool
}

type fakeStatsRepo struct {
	ranking.Repository
	applied []appliedAward
	failFor map[string]error
}

func (f *fakeStatsRepo) ApplyAward(_ context.Context, groupID, playerID string, points int, won bool) error {
	if err, ok := f.failFor[playerID]; ok {
		return err
	}
	f.applied = append(f.applied, appliedAward{groupID, playerID, points, won})
	return nil
}

type fakeInvalidator struct {
	invalidated []string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, groupID string) error {
	f.invalidated = append(f.invalidated, groupID)
	return nil
}

type capturingPublisher struct {
	events []shared.Event
}

func (p *capturingPublisher) Publish(e shared.Event) error {
	p.events = append(p.events, e)
	return nil
}

// ─────────────────────────────────────────────
// Fixtures
// ─────────────────────────────────────────────

func scheduledMatch(t *testing.T) *match.Match {
	t.Helper()
	m, err := match.NewMatch(match.NewMatchParams{
		ID:             "m1",
		GroupID:        "g1",
		GameID:         "game1",
		CreatedBy:      "alice",
		ScheduledAt:    time.Now().Add(time.Hour),
		ParticipantIDs: []string{"alice", "bob", "carol"},
	})
	require.NoError(t, err)
	return m
}

func testGroup(t *testing.T) *group.Group {
	t.Helper()
	g, err := group.NewGroup(group.NewGroupParams{
		ID:      "g1",
		Name:    "Thursday Night Games",
		OwnerID: "admin",
	})
	require.NoError(t, err)
	for _, id := range []string{"alice", "bob", "carol"} {
		require.NoError(t, g.AddMember(id, group.RoleMember))
	}
	return g
}

func newHandler(
	matchRepo *fakeMatchRepo,
	groupRepo *fakeGroupRepo,
	statsRepo *fakeStatsRepo,
	cache *fakeInvalidator,
	pub *capturingPublisher,
) *FinishMatchHandler {
	return NewFinishMatchHandler(matchRepo, groupRepo, statsRepo, cache, pub, match.DefaultPointCurve())
}

// ─────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────

func TestFinishMatchHandler_Handle(t *testing.T) {
	m := scheduledMatch(t)
	matchRepo := &fakeMatchRepo{matches: map[string]*match.Match{"m1": m}}
	groupRepo := &fakeGroupRepo{groups: map[string]*group.Group{"g1": testGroup(t)}}
	statsRepo := &fakeStatsRepo{}
	cache := &fakeInvalidator{}
	pub := &capturingPublisher{}

	h := newHandler(matchRepo, groupRepo, statsRepo, cache, pub)

	result, err := h.Handle(context.Background(), FinishMatchCommand{
		MatchID:    "m1",
		RecordedBy: "alice",
		Results: []ResultInput{
			{PlayerID: "alice", Position: 1, Score: 74},
			{PlayerID: "bob", Position: 2, Score: 61},
			{PlayerID: "carol", Position: 3, Score: 40},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", result.WinnerID)
	assert.Empty(t, result.FailedAwards)
	require.Len(t, result.Awards, 3)
	assert.Equal(t, 10, result.Awards[0].Points)
	assert.Equal(t, 8, result.Awards[1].Points)
	assert.Equal(t, 6, result.Awards[2].Points)

	// Match persisted as finished.
	require.NotNil(t, matchRepo.updated)
	assert.Equal(t, match.StatusFinished, matchRepo.updated.Status)

	// Every award applied to the correct group with the win flag.
	require.Len(t, statsRepo.applied, 3)
	assert.Equal(t, appliedAward{"g1", "alice", 10, true}, statsRepo.applied[0])
	assert.Equal(t, appliedAward{"g1", "bob", 8, false}, statsRepo.applied[1])

	// Cache invalidated and event published.
	assert.Equal(t, []string{"g1"}, cache.invalidated)
	require.Len(t, pub.events, 1)
	assert.Equal(t, shared.EventMatchFinished, pub.events[0].EventType())
}

func TestFinishMatchHandler_Handle_UngradedMatchSkipsStats(t *testing.T) {
	m := scheduledMatch(t)
	matchRepo := &fakeMatchRepo{matches: map[string]*match.Match{"m1": m}}
	groupRepo := &fakeGroupRepo{groups: map[string]*group.Group{"g1": testGroup(t)}}
	statsRepo := &fakeStatsRepo{}
	cache := &fakeInvalidator{}
	pub := &capturingPublisher{}

	h := newHandler(matchRepo, groupRepo, statsRepo, cache, pub)

	// Ни у кого нет места: матч сыгран без зачётного исхода
	result, err := h.Handle(context.Background(), FinishMatchCommand{
		MatchID:    "m1",
		RecordedBy: "alice",
		Results: []ResultInput{
			{PlayerID: "alice", Position: 0},
			{PlayerID: "bob", Position: 0},
		},
	})
	require.NoError(t, err)

	assert.Empty(t, result.Awards)
	assert.Empty(t, result.FailedAwards)
	assert.Empty(t, result.WinnerID)

	// Никаких инкрементов статистики - totalMatches не растёт
	assert.Empty(t, statsRepo.applied)

	// Матч всё равно завершён и сохранён.
	require.NotNil(t, matchRepo.updated)
	assert.Equal(t, match.StatusFinished, matchRepo.updated.Status)
}

func TestFinishMatchHandler_Handle_AwardFailureIsolation(t *testing.T) {
	m := scheduledMatch(t)
	matchRepo := &fakeMatchRepo{matches: map[string]*match.Match{"m1": m}}
	groupRepo := &fakeGroupRepo{groups: map[string]*group.Group{"g1": testGroup(t)}}
	boom := errors.New("connection reset")
	statsRepo := &fakeStatsRepo{failFor: map[string]error{"bob": boom}}

	h := newHandler(matchRepo, groupRepo, statsRepo, &fakeInvalidator{}, &capturingPublisher{})

	result, err := h.Handle(context.Background(), FinishMatchCommand{
		MatchID:    "m1",
		RecordedBy: "alice",
		Results: []ResultInput{
			{PlayerID: "alice", Position: 1},
			{PlayerID: "bob", Position: 2},
			{PlayerID: "carol", Position: 3},
		},
	})
	require.NoError(t, err)

	// One failed award does not block the others.
	require.Len(t, result.FailedAwards, 1)
	assert.Equal(t, "bob", result.FailedAwards[0].PlayerID)
	assert.ErrorIs(t, result.FailedAwards[0].Error, boom)
	assert.Len(t, statsRepo.applied, 2)
}

func TestFinishMatchHandler_Handle_AdminMayRecord(t *testing.T) {
	m := scheduledMatch(t)
	matchRepo := &fakeMatchRepo{matches: map[string]*match.Match{"m1": m}}
	groupRepo := &fakeGroupRepo{groups: map[string]*group.Group{"g1": testGroup(t)}}

	h := newHandler(matchRepo, groupRepo, &fakeStatsRepo{}, &fakeInvalidator{}, &capturingPublisher{})

	// "admin" is not a participant but owns the group.
	_, err := h.Handle(context.Background(), FinishMatchCommand{
		MatchID:    "m1",
		RecordedBy: "admin",
		Results:    []ResultInput{{PlayerID: "alice", Position: 1}},
	})
	require.NoError(t, err)
}

func TestFinishMatchHandler_Handle_OutsiderRejected(t *testing.T) {
	m := scheduledMatch(t)
	matchRepo := &fakeMatchRepo{matches: map[string]*match.Match{"m1": m}}
	groupRepo := &fakeGroupRepo{groups: map[string]*group.Group{"g1": testGroup(t)}}

	h := newHandler(matchRepo, groupRepo, &fakeStatsRepo{}, &fakeInvalidator{}, &capturingPublisher{})

	_, err := h.Handle(context.Background(), FinishMatchCommand{
		MatchID:    "m1",
		RecordedBy: "mallory",
		Results:    []ResultInput{{PlayerID: "alice", Position: 1}},
	})
	assert.ErrorIs(t, err, group.ErrNotAdmin)
}

func TestFinishMatchHandler_Handle_AlreadyFinished(t *testing.T) {
	m := scheduledMatch(t)
	require.NoError(t, m.Finish([]match.Result{{PlayerID: "alice", Position: 1}}, match.DefaultPointCurve()))
	matchRepo := &fakeMatchRepo{matches: map[string]*match.Match{"m1": m}}
	groupRepo := &fakeGroupRepo{groups: map[string]*group.Group{"g1": testGroup(t)}}

	h := newHandler(matchRepo, groupRepo, &fakeStatsRepo{}, &fakeInvalidator{}, &capturingPublisher{})

	_, err := h.Handle(context.Background(), FinishMatchCommand{
		MatchID:    "m1",
		RecordedBy: "alice",
		Results:    []ResultInput{{PlayerID: "alice", Position: 1}},
	})
	assert.ErrorIs(t, err, match.ErrAlreadyFinished)
}
