package settlement

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatscore.ru/contribution-bot/internal/features/ledger"
)

// fakeLedger — состояние леджера в памяти: символы без вердикта и
// события без балла.
type fakeLedger struct {
	unjudged     []string
	limitSeen    int
	positive     []ledger.Event
	nonReactions []ledger.Event
}

func (f *fakeLedger) UnjudgedSymbols(_ context.Context, _ []string, limit int) ([]string, error) {
	f.limitSeen = limit
	if len(f.unjudged) > limit {
		return f.unjudged[:limit], nil
	}
	return f.unjudged, nil
}

func (f *fakeLedger) UnscoredPositiveReactions(_ context.Context, _ []string) ([]ledger.Event, error) {
	return f.positive, nil
}

func (f *fakeLedger) UnscoredNonReactions(_ context.Context) ([]ledger.Event, error) {
	return f.nonReactions, nil
}

// fakeVerdicts запоминает сохранённые вердикты.
type fakeVerdicts struct {
	stored map[string]bool
	err    error
}

func (f *fakeVerdicts) Store(_ context.Context, symbol string, isPositive bool) error {
	if f.err != nil {
		return f.err
	}
	if f.stored == nil {
		f.stored = make(map[string]bool)
	}
	f.stored[symbol] = isPositive
	return nil
}

// fakeScorer имитирует атомарное начисление: повторный вызов по тому же
// событию возвращает false.
type fakeScorer struct {
	scored map[int64]bool
}

func (f *fakeScorer) ScoreEvent(_ context.Context, eventID int64) (bool, error) {
	if f.scored == nil {
		f.scored = make(map[int64]bool)
	}
	if f.scored[eventID] {
		return false, nil
	}
	f.scored[eventID] = true
	return true, nil
}

// fakeJudge судит по словарю и падает на символах из failOn.
type fakeJudge struct {
	positive map[string]bool
	failOn   map[string]bool
	calls    []string
}

func (f *fakeJudge) Judge(_ context.Context, symbol string) (bool, error) {
	f.calls = append(f.calls, symbol)
	if f.failOn[symbol] {
		return false, errors.New("классификатор недоступен")
	}
	return f.positive[symbol], nil
}

func reactionEvent(id int64, symbol string) ledger.Event {
	actor := int64(100 + id)
	return ledger.Event{
		ID: id, SubjectUser: 1, ActorUser: &actor,
		Kind: ledger.KindReaction, ReactionSymbol: &symbol,
	}
}

func TestRunJudgesAndScores(t *testing.T) {
	led := &fakeLedger{
		unjudged: []string{"🤯", "💩"},
		positive: []ledger.Event{reactionEvent(1, "🤯"), reactionEvent(2, "👍")},
	}
	verdicts := &fakeVerdicts{}
	scorer := &fakeScorer{}
	judge := &fakeJudge{positive: map[string]bool{"🤯": true}}

	svc := NewService(led, verdicts, scorer, judge, []string{"👍"}, 50)
	stats, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.SymbolsJudged)
	assert.Zero(t, stats.SymbolsFailed)
	assert.Equal(t, 2, stats.ReactionsScored)
	assert.Equal(t, map[string]bool{"🤯": true, "💩": false}, verdicts.stored)
}

func TestRunIsIdempotent(t *testing.T) {
	// Второй прогон без новых событий ничего не доначисляет
	led := &fakeLedger{positive: []ledger.Event{reactionEvent(1, "👍")}}
	scorer := &fakeScorer{}
	svc := NewService(led, &fakeVerdicts{}, scorer, &fakeJudge{}, []string{"👍"}, 50)
	ctx := context.Background()

	stats, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ReactionsScored)

	stats, err = svc.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.ReactionsScored)
	assert.Zero(t, stats.SweptScored)
}

func TestRunSymbolErrorIsolated(t *testing.T) {
	// Отказ классификатора по одному символу не прерывает прогон
	led := &fakeLedger{unjudged: []string{"🤯", "💥", "👌"}}
	verdicts := &fakeVerdicts{}
	judge := &fakeJudge{
		positive: map[string]bool{"👌": true},
		failOn:   map[string]bool{"💥": true},
	}

	svc := NewService(led, verdicts, &fakeScorer{}, judge, nil, 50)
	stats, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.SymbolsJudged)
	assert.Equal(t, 1, stats.SymbolsFailed)
	assert.Len(t, judge.calls, 3)
	assert.NotContains(t, verdicts.stored, "💥")
}

func TestRunRespectsSymbolCap(t *testing.T) {
	led := &fakeLedger{unjudged: []string{"a", "b", "c", "d"}}
	judge := &fakeJudge{}

	svc := NewService(led, &fakeVerdicts{}, &fakeScorer{}, judge, nil, 2)
	stats, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, led.limitSeen)
	assert.Equal(t, 2, stats.SymbolsJudged)
	assert.Len(t, judge.calls, 2)
}

func TestRunSweepsUnscoredNonReactions(t *testing.T) {
	// След упавшего процесса: пост записан, но балл не начислен
	led := &fakeLedger{
		nonReactions: []ledger.Event{
			{ID: 7, SubjectUser: 1, Kind: ledger.KindPost},
			{ID: 8, SubjectUser: 2, Kind: ledger.KindViolation},
		},
	}
	scorer := &fakeScorer{}

	svc := NewService(led, &fakeVerdicts{}, scorer, &fakeJudge{}, nil, 50)
	stats, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.SweptScored)
	assert.True(t, scorer.scored[7])
	assert.True(t, scorer.scored[8])
}

func TestRunStoreErrorCountsAsFailed(t *testing.T) {
	led := &fakeLedger{unjudged: []string{"🤯"}}
	verdicts := &fakeVerdicts{err: errors.New("БД недоступна")}

	svc := NewService(led, verdicts, &fakeScorer{}, &fakeJudge{}, nil, 50)
	stats, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.SymbolsJudged)
	assert.Equal(t, 1, stats.SymbolsFailed)
}
