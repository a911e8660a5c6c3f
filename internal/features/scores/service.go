// Package scores — service.go содержит бизнес-логику рейтинга.
package scores

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"chatscore.ru/contribution-bot/internal/common"
)

// Aggregator — операции хранилища, нужные сервису рейтинга.
// Реализуется *Repository.
type Aggregator interface {
	TopNWindowed(ctx context.Context, n int, since, until time.Time, w Weights) ([]Row, error)
	TopNCumulative(ctx context.Context, n int, w Weights) ([]Row, error)
	UserTotals(ctx context.Context, userID int64) (Counts, error)
	OldestEventTime(ctx context.Context) (time.Time, bool, error)
}

// Service вычисляет рейтинги вклада.
type Service struct {
	repo    Aggregator
	weights Weights
	clock   clockwork.Clock
}

// NewService создаёт сервис рейтинга.
func NewService(repo Aggregator, weights Weights, clock clockwork.Clock) *Service {
	return &Service{repo: repo, weights: weights, clock: clock}
}

// Weights возвращает действующую таблицу весов.
func (s *Service) Weights() Weights { return s.weights }

// TopN возвращает топ-N пользователей по баллу в заданном окне.
//
// Чтения не блокируют приём событий; для скользящего и явного окна
// источник — леджер, для накопительного — зеркало счётов. Зеркало может
// временно отставать от леджера по столбцу реакций (до ближайшего
// прогона урегулирования), но никогда его не опережает.
func (s *Service) TopN(ctx context.Context, n int, w Window) ([]Row, error) {
	switch w.Mode() {
	case ModeCumulative:
		return s.repo.TopNCumulative(ctx, n, s.weights)

	case ModeRolling, ModeExplicit:
		since, until, _ := w.Bounds(s.clock.Now())
		if !until.After(since) {
			return nil, common.ErrBadWindow
		}
		rows, err := s.repo.TopNWindowed(ctx, n, since, until, s.weights)
		if err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{
			"since": since,
			"until": until,
			"rows":  len(rows),
		}).Debug("Оконный рейтинг посчитан")
		return rows, nil

	default:
		return nil, common.ErrBadWindow
	}
}

// UserTotals возвращает накопительные счётчики и балл одного пользователя.
func (s *Service) UserTotals(ctx context.Context, userID int64) (Row, error) {
	c, err := s.repo.UserTotals(ctx, userID)
	if err != nil {
		return Row{}, err
	}
	return Row{UserID: userID, Counts: c, Score: s.weights.Score(c)}, nil
}

// HistoryStart возвращает время первого события (для подписи
// накопительного рейтинга). Если событий нет — текущее время.
func (s *Service) HistoryStart(ctx context.Context) time.Time {
	t, ok, err := s.repo.OldestEventTime(ctx)
	if err != nil {
		log.WithError(err).Warn("Не удалось получить время первого события")
		return s.clock.Now()
	}
	if !ok {
		return s.clock.Now()
	}
	return t
}
