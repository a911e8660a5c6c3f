// Package settlement реализует отложенное урегулирование реакций:
// батч-процедуру, которая закрывает разрыв между «реакция замечена»
// и «реакция осуждена» и задним числом начисляет баллы.
package settlement

import (
	"context"

	log "github.com/sirupsen/logrus"

	"chatscore.ru/contribution-bot/internal/features/ledger"
)

// LedgerScans — выборки леджера, нужные урегулированию.
// Реализуется *ledger.Repository.
type LedgerScans interface {
	UnjudgedSymbols(ctx context.Context, known []string, limit int) ([]string, error)
	UnscoredPositiveReactions(ctx context.Context, allowlist []string) ([]ledger.Event, error)
	UnscoredNonReactions(ctx context.Context) ([]ledger.Event, error)
}

// Verdicts — кэш вердиктов. Реализуется *reactions.Service.
type Verdicts interface {
	Store(ctx context.Context, symbol string, isPositive bool) error
}

// Scorer — атомарное начисление балла. Реализуется *scores.Repository.
type Scorer interface {
	ScoreEvent(ctx context.Context, eventID int64) (bool, error)
}

// Judge — внешний классификатор настроения реакций.
type Judge interface {
	Judge(ctx context.Context, symbol string) (bool, error)
}

// Stats — итоги одного прогона.
type Stats struct {
	SymbolsJudged   int
	SymbolsFailed   int
	ReactionsScored int
	SweptScored     int
}

// Service выполняет прогоны урегулирования.
type Service struct {
	ledger     LedgerScans
	verdicts   Verdicts
	scorer     Scorer
	judge      Judge
	allowlist  []string
	maxSymbols int
}

// NewService создаёт сервис урегулирования.
func NewService(l LedgerScans, v Verdicts, s Scorer, j Judge, allowlist []string, maxSymbols int) *Service {
	return &Service{
		ledger:     l,
		verdicts:   v,
		scorer:     s,
		judge:      j,
		allowlist:  allowlist,
		maxSymbols: maxSymbols,
	}
}

// Run выполняет один прогон урегулирования. Идемпотентен: повторный
// прогон без новых событий ничего не доначисляет. Прерванный прогон
// безопасен — незаконченная работа доделается в следующем.
func (s *Service) Run(ctx context.Context) (Stats, error) {
	var st Stats

	// 1. Судим неизвестные символы. Классификатор может быть медленным
	// и внешним, поэтому здесь не держится никаких блокировок БД, а
	// стоимость прогона ограничена maxSymbols.
	symbols, err := s.ledger.UnjudgedSymbols(ctx, s.allowlist, s.maxSymbols)
	if err != nil {
		return st, err
	}
	for _, symbol := range symbols {
		isPositive, err := s.judge.Judge(ctx, symbol)
		if err != nil {
			// Ошибка по одному символу не прерывает прогон:
			// символ вернётся в следующем запуске
			st.SymbolsFailed++
			log.WithError(err).WithField("symbol", symbol).Warn("Классификатор не осудил реакцию")
			continue
		}
		if err := s.verdicts.Store(ctx, symbol, isPositive); err != nil {
			st.SymbolsFailed++
			log.WithError(err).WithField("symbol", symbol).Error("Не удалось сохранить вердикт")
			continue
		}
		st.SymbolsJudged++
	}

	// 2. Начисляем баллы за реакции, чей символ признан позитивным.
	// ScoreEvent атомарен (флаг + зеркало в одной транзакции), поэтому
	// падение между событиями не ведёт ни к потере, ни к двойному счёту.
	events, err := s.ledger.UnscoredPositiveReactions(ctx, s.allowlist)
	if err != nil {
		return st, err
	}
	for _, e := range events {
		applied, err := s.scorer.ScoreEvent(ctx, e.ID)
		if err != nil {
			log.WithError(err).WithField("event_id", e.ID).Error("Не удалось начислить балл за реакцию")
			continue
		}
		if applied {
			st.ReactionsScored++
		}
	}

	// 3. Подметаем нереактивные события без балла — след процессов,
	// упавших между записью и немедленным начислением.
	swept, err := s.ledger.UnscoredNonReactions(ctx)
	if err != nil {
		return st, err
	}
	for _, e := range swept {
		applied, err := s.scorer.ScoreEvent(ctx, e.ID)
		if err != nil {
			log.WithError(err).WithField("event_id", e.ID).Error("Не удалось доначислить событие")
			continue
		}
		if applied {
			st.SweptScored++
		}
	}

	log.WithFields(log.Fields{
		"judged": st.SymbolsJudged,
		"failed": st.SymbolsFailed,
		"scored": st.ReactionsScored,
		"swept":  st.SweptScored,
	}).Info("Прогон урегулирования завершён")
	return st, nil
}
