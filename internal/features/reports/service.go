// Package reports — service.go публикует рейтинги.
package reports

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"chatscore.ru/contribution-bot/internal/features/scores"
)

// SendFunc отправляет готовый текст в чат. Подставляется ботом.
type SendFunc func(chatID int64, text string)

// Service строит и рассылает отчёты.
type Service struct {
	scores *scores.Service
	topN   int
	loc    *time.Location
	clock  clockwork.Clock
	send   SendFunc
}

// NewService создаёт сервис отчётов.
func NewService(sc *scores.Service, topN int, loc *time.Location, clock clockwork.Clock, send SendFunc) *Service {
	return &Service{scores: sc, topN: topN, loc: loc, clock: clock, send: send}
}

// Scoreboard строит текст рейтинга по строке периода.
func (s *Service) Scoreboard(ctx context.Context, periodText string) (string, error) {
	now := s.clock.Now()
	label, window, err := ParsePeriod(periodText, now, s.loc)
	if err != nil {
		return "", err
	}

	rows, err := s.scores.TopN(ctx, s.topN, window)
	if err != nil {
		return "", err
	}

	since, until, ok := window.Bounds(now)
	if !ok {
		// Накопительный режим: подписываем от первого события до «сейчас»
		since, until = s.scores.HistoryStart(ctx), now
	}
	return BuildScoreboard(label, rows, since, until, s.loc), nil
}

// PublishPeriodic строит рейтинг за период и отправляет его в чат.
// Используется планировщиком.
func (s *Service) PublishPeriodic(ctx context.Context, periodText string, chatID int64) {
	text, err := s.Scoreboard(ctx, periodText)
	if err != nil {
		log.WithError(err).WithField("period", periodText).Error("Не удалось построить рейтинг")
		return
	}
	s.send(chatID, text)
	log.WithField("period", periodText).Info("Рейтинг опубликован")
}
