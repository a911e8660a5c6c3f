package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatscore.ru/contribution-bot/internal/common"
)

// fakeStore — хранилище в памяти для тестов сервиса.
type fakeStore struct {
	events []Event
	nextID int64
}

func (f *fakeStore) Append(_ context.Context, e *Event) (int64, error) {
	f.nextID++
	stored := *e
	stored.ID = f.nextID
	f.events = append(f.events, stored)
	return f.nextID, nil
}

func (f *fakeStore) MarkScored(_ context.Context, eventID int64) error {
	for i := range f.events {
		if f.events[i].ID == eventID {
			f.events[i].Scored = true
		}
	}
	return nil
}

func (f *fakeStore) Query(_ context.Context, _ Filter) ([]Event, error) {
	return f.events, nil
}

func TestAppendValidation(t *testing.T) {
	svc := NewService(&fakeStore{}, clockwork.NewFakeClock())
	ctx := context.Background()

	_, err := svc.Append(ctx, &Event{Kind: KindPost})
	assert.ErrorIs(t, err, common.ErrNoSubjectUser)

	_, err = svc.Append(ctx, &Event{SubjectUser: 1, Kind: Kind("karma")})
	assert.ErrorIs(t, err, common.ErrUnknownKind)

	_, err = svc.Append(ctx, &Event{SubjectUser: 1, Kind: KindReaction})
	assert.ErrorIs(t, err, common.ErrNoReactionSymbol)

	actor := int64(1)
	symbol := "👍"
	_, err = svc.Append(ctx, &Event{
		SubjectUser: 1, ActorUser: &actor, Kind: KindReaction, ReactionSymbol: &symbol,
	})
	assert.ErrorIs(t, err, common.ErrSelfReaction)
}

func TestAppendRejectedEventNotStored(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, clockwork.NewFakeClock())

	_, err := svc.Append(context.Background(), &Event{Kind: KindPost})
	require.Error(t, err)
	assert.Empty(t, store.events)
}

func TestAppendFillsOccurredAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{}
	svc := NewService(store, clockwork.NewFakeClockAt(now))

	id, err := svc.Append(context.Background(), &Event{SubjectUser: 42, Kind: KindPost})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, now, store.events[0].OccurredAt)
}

func TestAppendKeepsExplicitOccurredAt(t *testing.T) {
	// Импорт истории: время события в прошлом сохраняется как есть
	past := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{}
	svc := NewService(store, clockwork.NewFakeClock())

	_, err := svc.Append(context.Background(),
		&Event{SubjectUser: 42, Kind: KindPost, OccurredAt: past})
	require.NoError(t, err)
	assert.Equal(t, past, store.events[0].OccurredAt)
}

func TestAppendAllowsDuplicates(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, clockwork.NewFakeClock())
	ctx := context.Background()

	e := Event{SubjectUser: 42, Kind: KindPost}
	first := e
	second := e
	_, err := svc.Append(ctx, &first)
	require.NoError(t, err)
	_, err = svc.Append(ctx, &second)
	require.NoError(t, err)
	assert.Len(t, store.events, 2)
}

func TestQueryBadWindow(t *testing.T) {
	svc := NewService(&fakeStore{}, clockwork.NewFakeClock())

	since := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Query(context.Background(), Filter{Since: &since, Until: &until})
	assert.ErrorIs(t, err, common.ErrBadWindow)

	// until == since — тоже пустое окно, тоже ошибка вызывающего
	_, err = svc.Query(context.Background(), Filter{Since: &since, Until: &since})
	assert.ErrorIs(t, err, common.ErrBadWindow)
}
