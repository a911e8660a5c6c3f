// Package ledger — service.go содержит бизнес-логику леджера:
// валидацию событий на границе приёма и контракт оконных запросов.
package ledger

import (
	"context"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"chatscore.ru/contribution-bot/internal/common"
)

// Store — операции хранилища, нужные сервису леджера.
// Реализуется *Repository.
type Store interface {
	Append(ctx context.Context, e *Event) (int64, error)
	MarkScored(ctx context.Context, eventID int64) error
	Query(ctx context.Context, f Filter) ([]Event, error)
}

// Service управляет леджером событий.
type Service struct {
	store Store
	clock clockwork.Clock
}

// NewService создаёт сервис леджера.
func NewService(store Store, clock clockwork.Clock) *Service {
	return &Service{store: store, clock: clock}
}

// Append валидирует и записывает событие, возвращая его ID.
// Некорректное событие отклоняется ДО записи и в леджер не попадает.
// Хорошо сформированные дубликаты не отклоняются.
func (s *Service) Append(ctx context.Context, e *Event) (int64, error) {
	if err := s.validate(e); err != nil {
		return 0, err
	}
	if e.OccurredAt.IsZero() {
		// Время события задаёт вызывающий; если не задал — сейчас
		e.OccurredAt = s.clock.Now()
	}

	id, err := s.store.Append(ctx, e)
	if err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{
		"event_id": id,
		"user_id":  e.SubjectUser,
		"kind":     e.Kind,
		"scored":   e.Scored,
	}).Debug("Событие записано в леджер")
	return id, nil
}

// MarkScored выставляет флаг scored (идемпотентно).
func (s *Service) MarkScored(ctx context.Context, eventID int64) error {
	return s.store.MarkScored(ctx, eventID)
}

// Query возвращает события по фильтру. Если заданы обе границы окна
// и until <= since — это ошибка вызывающего, а не пустой результат.
func (s *Service) Query(ctx context.Context, f Filter) ([]Event, error) {
	if f.Since != nil && f.Until != nil && !f.Until.After(*f.Since) {
		return nil, common.ErrBadWindow
	}
	return s.store.Query(ctx, f)
}

func (s *Service) validate(e *Event) error {
	if e.SubjectUser == 0 {
		return common.ErrNoSubjectUser
	}
	if !e.Kind.Valid() {
		return common.ErrUnknownKind
	}
	if e.Kind == KindReaction {
		if e.ReactionSymbol == nil || *e.ReactionSymbol == "" {
			return common.ErrNoReactionSymbol
		}
		// Самореакции не попадают в леджер вовсе
		if e.ActorUser != nil && *e.ActorUser == e.SubjectUser {
			return common.ErrSelfReaction
		}
	}
	return nil
}
