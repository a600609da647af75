package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/match"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/shared"
)

type fakeMatchRepo struct {
	match.Repository
	overdue   []*match.Match
	updated   []*match.Match
	updateErr map[string]error
}

func (f *fakeMatchRepo) FindOverdue(_ context.Context, _ time.Time, _ time.Duration) ([]*match.Match, error) {
	return f.overdue, nil
}

func (f *fakeMatchRepo) Update(_ context.Context, m *match.Match) error {
	if err, ok := f.updateErr[m.ID]; ok {
		return err
	}
	f.updated = append(f.updated, m)
	return nil
}

type capturingPublisher struct {
	events []shared.Event
}

func (p *capturingPublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func overdueMatch(id string) *match.Match {
	return &match.Match{
		ID:          id,
		GroupID:     "g1",
		GameID:      "game1",
		Status:      match.StatusScheduled,
		ScheduledAt: time.Now().Add(-100 * time.Hour),
	}
}

func TestExpireMatchesJob_ExpiresOverdueMatches(t *testing.T) {
	repo := &fakeMatchRepo{overdue: []*match.Match{overdueMatch("m1"), overdueMatch("m2")}}
	pub := &capturingPublisher{}
	job := NewExpireMatchesJob(repo, pub, nil, DefaultExpireMatchesConfig())

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, repo.updated, 2)
	for _, m := range repo.updated {
		assert.Equal(t, match.StatusExpired, m.Status)
	}
	assert.Len(t, pub.events, 2)
	assert.Equal(t, shared.EventMatchExpired, pub.events[0].EventType())

	stats := job.LastExpireStats()
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.OverdueCount)
	assert.Equal(t, 2, stats.ExpiredCount)
	assert.Equal(t, 0, stats.FailedCount)
}

func TestExpireMatchesJob_ContinuesAfterFailure(t *testing.T) {
	repo := &fakeMatchRepo{
		overdue:   []*match.Match{overdueMatch("m1"), overdueMatch("m2"), overdueMatch("m3")},
		updateErr: map[string]error{"m2": errors.New("connection reset")},
	}
	job := NewExpireMatchesJob(repo, nil, nil, DefaultExpireMatchesConfig())

	require.NoError(t, job.Run(context.Background()))

	stats := job.LastExpireStats()
	require.NotNil(t, stats)
	assert.Equal(t, 3, stats.OverdueCount)
	assert.Equal(t, 2, stats.ExpiredCount)
	assert.Equal(t, 1, stats.FailedCount)
}

func TestExpireMatchesJob_NoOverdueMatches(t *testing.T) {
	repo := &fakeMatchRepo{}
	job := NewExpireMatchesJob(repo, nil, nil, DefaultExpireMatchesConfig())

	require.NoError(t, job.Run(context.Background()))

	assert.Empty(t, repo.updated)
	stats := job.LastExpireStats()
	require.NotNil(t, stats)
	assert.Equal(t, 0, stats.OverdueCount)
}
