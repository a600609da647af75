package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCronExpression(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"every five minutes", "*/5 * * * *", false},
		{"nightly at four", "0 4 * * *", false},
		{"sunday midnight", "0 0 * * 0", false},
		{"ranges and lists", "0,30 9-18 * * 1-5", false},
		{"too few fields", "* * * *", true},
		{"minute out of range", "60 * * * *", true},
		{"garbage field", "x * * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce, err := ParseCronExpression(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expr, ce.String())
		})
	}
}

func TestCronExpression_Next(t *testing.T) {
	// 2026-03-10 — вторник.
	base := time.Date(2026, 3, 10, 15, 37, 42, 0, time.UTC)

	ce := MustParseCronExpression("0 4 * * *")
	next := ce.Next(base)
	assert.Equal(t, time.Date(2026, 3, 11, 4, 0, 0, 0, time.UTC), next)

	ce = MustParseCronExpression("*/15 * * * *")
	next = ce.Next(base)
	assert.Equal(t, time.Date(2026, 3, 10, 15, 45, 0, 0, time.UTC), next)

	// Ближайшее воскресенье - 15 марта.
	ce = MustParseCronExpression("0 0 * * 0")
	next = ce.Next(base)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), next)
}

// CronExpression должен подходить как расписание для обычного планировщика.
func TestCronExpressionSatisfiesSchedule(t *testing.T) {
	var _ Schedule = MustParseCronExpression("0 4 * * *")
}

type noopJob struct{ name string }

func (j *noopJob) Name() string                { return j.name }
func (j *noopJob) Description() string         { return "noop" }
func (j *noopJob) Run(_ context.Context) error { return nil }

func TestCronScheduler_JobManagement(t *testing.T) {
	cs := NewCronScheduler(WithLocation(time.UTC))

	require.NoError(t, cs.AddJob("nightly", "0 4 * * *", &noopJob{name: "nightly"}))
	assert.Error(t, cs.AddJob("broken", "not a cron", &noopJob{name: "broken"}))

	status, ok := cs.GetJobStatus("nightly")
	require.True(t, ok)
	assert.True(t, status.Enabled)
	assert.False(t, status.NextRun.IsZero())

	require.NoError(t, cs.DisableJob("nightly"))
	status, _ = cs.GetJobStatus("nightly")
	assert.False(t, status.Enabled)

	require.NoError(t, cs.EnableJob("nightly"))
	assert.Error(t, cs.EnableJob("missing"))

	jobs := cs.ListJobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "nightly", jobs[0].Name)

	cs.RemoveJob("nightly")
	_, ok = cs.GetJobStatus("nightly")
	assert.False(t, ok)
}
