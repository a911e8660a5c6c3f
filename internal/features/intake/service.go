// Package intake — service.go содержит логику приёма событий.
package intake

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"chatscore.ru/contribution-bot/internal/common"
	"chatscore.ru/contribution-bot/internal/features/ledger"
	"chatscore.ru/contribution-bot/internal/features/reactions"
	"chatscore.ru/contribution-bot/internal/features/routing"
)

// Ledger — запись событий. Реализуется *ledger.Service.
type Ledger interface {
	Append(ctx context.Context, e *ledger.Event) (int64, error)
}

// Scorer — атомарное начисление балла. Реализуется *scores.Repository.
type Scorer interface {
	ScoreEvent(ctx context.Context, eventID int64) (bool, error)
}

// Verdicts — быстрый путь классификации реакций. Реализуется *reactions.Service.
type Verdicts interface {
	Lookup(ctx context.Context, symbol string) (reactions.Verdict, error)
}

// Index — индекс авторов сообщений. Реализуется *Repository.
type Index interface {
	Remember(ctx context.Context, chatID int64, messageID int, userID int64, at time.Time) (bool, error)
	AuthorOf(ctx context.Context, chatID int64, messageID int) (int64, bool, error)
}

// Service принимает события активности.
type Service struct {
	router   *routing.Router
	ledger   Ledger
	scorer   Scorer
	verdicts Verdicts
	index    Index
	clock    clockwork.Clock
}

// NewService создаёт сервис приёма.
func NewService(router *routing.Router, l Ledger, s Scorer, v Verdicts, idx Index, clock clockwork.Clock) *Service {
	return &Service{router: router, ledger: l, scorer: s, verdicts: v, index: idx, clock: clock}
}

// HandleMessage маршрутизирует и записывает сообщение.
// Возвращает принятое решение (для уведомления о нарушении).
//
// Нереактивные категории начисляются сразу: запись события и инкремент
// зеркала — отдельные шаги, но начисление атомарно, а упавший между
// ними процесс доначислится прогоном урегулирования.
func (s *Service) HandleMessage(ctx context.Context, in IncomingMessage) (routing.Decision, error) {
	if in.Author == 0 {
		return routing.Decision{}, common.ErrNoSubjectUser
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = s.clock.Now()
	}

	// Индекс авторов: по нему реакции находят субъект, а повторная
	// доставка того же сообщения не леджерится второй раз
	fresh, err := s.index.Remember(ctx, in.ChatID, in.MessageID, in.Author, in.OccurredAt)
	if err != nil {
		return routing.Decision{}, err
	}
	if !fresh && !in.Edited {
		log.WithFields(log.Fields{
			"chat_id":    in.ChatID,
			"message_id": in.MessageID,
		}).Debug("Повторная доставка сообщения, пропускаем")
		return routing.Decision{}, nil
	}

	decision := s.router.Route(ctx, routing.Message{
		Author:          in.Author,
		Text:            in.Text,
		Mentions:        in.Mentions,
		IsQAThreadReply: in.IsQAThreadReply,
		ParentAuthor:    in.ParentAuthor,
		ParentText:      in.ParentText,
		OccurredAt:      in.OccurredAt,
	})

	// Редактирование: пост уже записан, интересно только нарушение
	// в новом тексте
	if in.Edited && decision.Kind != ledger.KindViolation {
		return routing.Decision{}, nil
	}

	switch decision.Kind {
	case ledger.KindPositiveFeedback:
		// Ошибки по одному получателю не отменяют запись остальным
		for _, target := range decision.Targets {
			if err := s.recordScored(ctx, &ledger.Event{
				SubjectUser: target,
				Kind:        ledger.KindPositiveFeedback,
				OccurredAt:  in.OccurredAt,
			}); err != nil {
				log.WithError(err).WithField("user_id", target).Error("Не удалось записать позитивный фидбэк")
			}
		}
		return decision, nil

	default:
		err := s.recordScored(ctx, &ledger.Event{
			SubjectUser:    in.Author,
			Kind:           decision.Kind,
			OccurredAt:     in.OccurredAt,
			ViolationRules: decision.Rules,
		})
		return decision, err
	}
}

// HandleReaction записывает реакцию. Начисление немедленное, только
// если символ уже известен как позитивный (статический список или кэш);
// иначе событие ждёт прогона урегулирования.
func (s *Service) HandleReaction(ctx context.Context, in IncomingReaction) error {
	if in.Symbol == "" {
		return common.ErrNoReactionSymbol
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = s.clock.Now()
	}

	subject, found, err := s.index.AuthorOf(ctx, in.ChatID, in.MessageID)
	if err != nil {
		return err
	}
	if !found {
		// Реакция на сообщение, которого бот не видел (старая история)
		log.WithFields(log.Fields{
			"chat_id":    in.ChatID,
			"message_id": in.MessageID,
		}).Debug("Реакция на неизвестное сообщение, пропускаем")
		return nil
	}
	if subject == in.Actor {
		// Самореакции не леджерятся и баллов не дают
		return common.ErrSelfReaction
	}

	symbol := in.Symbol
	actor := in.Actor
	eventID, err := s.ledger.Append(ctx, &ledger.Event{
		SubjectUser:    subject,
		ActorUser:      &actor,
		Kind:           ledger.KindReaction,
		ReactionSymbol: &symbol,
		OccurredAt:     in.OccurredAt,
	})
	if err != nil {
		return err
	}

	verdict, err := s.verdicts.Lookup(ctx, symbol)
	if err != nil {
		// Событие записано; балл доначислит урегулирование
		log.WithError(err).WithField("symbol", symbol).Warn("Кэш вердиктов недоступен, отложено")
		return nil
	}
	if verdict != reactions.VerdictPositive {
		log.WithFields(log.Fields{
			"symbol":  symbol,
			"verdict": verdict.String(),
		}).Debug("Реакция записана без балла (ждёт батч-судейства)")
		return nil
	}

	if _, err := s.scorer.ScoreEvent(ctx, eventID); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"event_id": eventID,
		"user_id":  subject,
		"symbol":   symbol,
	}).Debug("Реакция начислена немедленно")
	return nil
}

// recordScored записывает событие и сразу начисляет балл.
func (s *Service) recordScored(ctx context.Context, e *ledger.Event) error {
	id, err := s.ledger.Append(ctx, e)
	if err != nil {
		return err
	}
	if _, err := s.scorer.ScoreEvent(ctx, id); err != nil {
		return err
	}
	return nil
}
