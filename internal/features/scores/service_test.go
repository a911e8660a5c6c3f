package scores

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatscore.ru/contribution-bot/internal/common"
)

// fakeAggregator записывает, с какими границами его спрашивали.
type fakeAggregator struct {
	windowedCalls   []timeRange
	cumulativeCalls int
	totals          Counts
	oldest          time.Time
	hasOldest       bool
	rows            []Row
}

type timeRange struct {
	since, until time.Time
}

func (f *fakeAggregator) TopNWindowed(_ context.Context, _ int, since, until time.Time, _ Weights) ([]Row, error) {
	f.windowedCalls = append(f.windowedCalls, timeRange{since, until})
	return f.rows, nil
}

func (f *fakeAggregator) TopNCumulative(_ context.Context, _ int, _ Weights) ([]Row, error) {
	f.cumulativeCalls++
	return f.rows, nil
}

func (f *fakeAggregator) UserTotals(_ context.Context, _ int64) (Counts, error) {
	return f.totals, nil
}

func (f *fakeAggregator) OldestEventTime(_ context.Context) (time.Time, bool, error) {
	return f.oldest, f.hasOldest, nil
}

func TestTopNCumulativeReadsMirror(t *testing.T) {
	repo := &fakeAggregator{}
	svc := NewService(repo, defaultWeights(), clockwork.NewFakeClock())

	_, err := svc.TopN(context.Background(), 5, Cumulative())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.cumulativeCalls)
	assert.Empty(t, repo.windowedCalls)
}

func TestTopNRollingEqualsExplicit(t *testing.T) {
	// Скользящее окно при замороженных часах эквивалентно явному
	// диапазону [since, now)
	now := time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)
	since := now.AddDate(0, 0, -7)
	repo := &fakeAggregator{}
	svc := NewService(repo, defaultWeights(), clockwork.NewFakeClockAt(now))
	ctx := context.Background()

	_, err := svc.TopN(ctx, 5, RollingSince(since))
	require.NoError(t, err)
	_, err = svc.TopN(ctx, 5, ExplicitRange(since, now))
	require.NoError(t, err)

	require.Len(t, repo.windowedCalls, 2)
	assert.Equal(t, repo.windowedCalls[0], repo.windowedCalls[1])
}

func TestTopNBadWindow(t *testing.T) {
	now := time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)
	repo := &fakeAggregator{}
	svc := NewService(repo, defaultWeights(), clockwork.NewFakeClockAt(now))
	ctx := context.Background()

	// until <= since
	_, err := svc.TopN(ctx, 5, ExplicitRange(now, now))
	assert.ErrorIs(t, err, common.ErrBadWindow)

	_, err = svc.TopN(ctx, 5, ExplicitRange(now, now.Add(-time.Hour)))
	assert.ErrorIs(t, err, common.ErrBadWindow)

	// Скользящее окно, начинающееся в будущем
	_, err = svc.TopN(ctx, 5, RollingSince(now.Add(time.Hour)))
	assert.ErrorIs(t, err, common.ErrBadWindow)

	assert.Empty(t, repo.windowedCalls)
}

func TestUserTotalsAppliesWeights(t *testing.T) {
	repo := &fakeAggregator{totals: Counts{Posts: 2, Reactions: 1, Answers: 1, Violations: 1}}
	svc := NewService(repo, defaultWeights(), clockwork.NewFakeClock())

	row, err := svc.UserTotals(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), row.UserID)
	assert.InDelta(t, 0.5, row.Score, 1e-9)
}

func TestHistoryStart(t *testing.T) {
	now := time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)
	oldest := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	svc := NewService(&fakeAggregator{oldest: oldest, hasOldest: true},
		defaultWeights(), clockwork.NewFakeClockAt(now))
	assert.Equal(t, oldest, svc.HistoryStart(context.Background()))

	// Пустой леджер — начало истории «сейчас»
	svc = NewService(&fakeAggregator{}, defaultWeights(), clockwork.NewFakeClockAt(now))
	assert.Equal(t, now, svc.HistoryStart(context.Background()))
}
