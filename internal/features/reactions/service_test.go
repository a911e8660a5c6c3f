package reactions

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache считает обращения, чтобы проверить порядок «список → кэш».
type fakeCache struct {
	verdicts map[string]Verdict
	lookups  int
	stored   []Judgement
}

func (f *fakeCache) Lookup(_ context.Context, symbol string) (Verdict, error) {
	f.lookups++
	if v, ok := f.verdicts[symbol]; ok {
		return v, nil
	}
	return VerdictUnknown, nil
}

func (f *fakeCache) Store(_ context.Context, j Judgement) error {
	f.stored = append(f.stored, j)
	return nil
}

func TestLookupAllowlistFirst(t *testing.T) {
	cache := &fakeCache{verdicts: map[string]Verdict{"👍": VerdictNegative}}
	svc := NewService(NewAllowlist([]string{"👍", "🔥"}), cache, clockwork.NewFakeClock())

	// Статический список авторитетнее кэша: до кэша дело не доходит
	v, err := svc.Lookup(context.Background(), "👍")
	require.NoError(t, err)
	assert.Equal(t, VerdictPositive, v)
	assert.Zero(t, cache.lookups)
}

func TestLookupFallsBackToCache(t *testing.T) {
	cache := &fakeCache{verdicts: map[string]Verdict{"💩": VerdictNegative}}
	svc := NewService(NewAllowlist([]string{"👍"}), cache, clockwork.NewFakeClock())
	ctx := context.Background()

	v, err := svc.Lookup(ctx, "💩")
	require.NoError(t, err)
	assert.Equal(t, VerdictNegative, v)

	v, err = svc.Lookup(ctx, "🤔")
	require.NoError(t, err)
	assert.Equal(t, VerdictUnknown, v)
	assert.Equal(t, 2, cache.lookups)
}

func TestStoreMemoizesWithClock(t *testing.T) {
	now := time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	cache := &fakeCache{}
	svc := NewService(NewAllowlist(nil), cache, clockwork.NewFakeClockAt(now))

	require.NoError(t, svc.Store(context.Background(), "🤯", true))
	require.Len(t, cache.stored, 1)
	assert.Equal(t, "🤯", cache.stored[0].Symbol)
	assert.True(t, cache.stored[0].IsPositive)
	assert.Equal(t, now, cache.stored[0].JudgedAt)
}

func TestAllowlist(t *testing.T) {
	a := NewAllowlist([]string{"👍", "❤️", ""})
	assert.True(t, a.Contains("👍"))
	assert.False(t, a.Contains("💩"))
	assert.False(t, a.Contains(""))
	assert.ElementsMatch(t, []string{"👍", "❤️"}, a.Symbols())
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "unknown", VerdictUnknown.String())
	assert.Equal(t, "positive", VerdictPositive.String())
	assert.Equal(t, "negative", VerdictNegative.String())
}
