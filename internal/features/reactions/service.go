// Package reactions — service.go содержит логику классификации реакций.
package reactions

import (
	"context"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

// Cache — операции хранилища вердиктов. Реализуется *Repository.
type Cache interface {
	Lookup(ctx context.Context, symbol string) (Verdict, error)
	Store(ctx context.Context, j Judgement) error
}

// Service отвечает на вопрос «позитивна ли реакция».
type Service struct {
	allowlist Allowlist
	cache     Cache
	clock     clockwork.Clock
}

// NewService создаёт сервис классификации реакций.
func NewService(allowlist Allowlist, cache Cache, clock clockwork.Clock) *Service {
	return &Service{allowlist: allowlist, cache: cache, clock: clock}
}

// Allowlist возвращает статический список (для SQL-запросов урегулирования).
func (s *Service) Allowlist() Allowlist { return s.allowlist }

// Lookup возвращает вердикт по символу.
// Порядок строгий: сначала статический список (дешёвый и авторитетный),
// только потом кэш в БД.
func (s *Service) Lookup(ctx context.Context, symbol string) (Verdict, error) {
	if s.allowlist.Contains(symbol) {
		return VerdictPositive, nil
	}
	return s.cache.Lookup(ctx, symbol)
}

// Store мемоизирует вердикт внешнего классификатора.
func (s *Service) Store(ctx context.Context, symbol string, isPositive bool) error {
	err := s.cache.Store(ctx, Judgement{
		Symbol:     symbol,
		IsPositive: isPositive,
		JudgedAt:   s.clock.Now(),
	})
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"symbol":   symbol,
		"positive": isPositive,
	}).Info("Вердикт по реакции сохранён в кэш")
	return nil
}
