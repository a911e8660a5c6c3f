// Package reactions — repository.go выполняет операции с таблицей
// reaction_judgement (персистентный кэш вердиктов).
package reactions

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chatscore.ru/contribution-bot/internal/common"
)

// Repository работает с таблицей reaction_judgement.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий кэша вердиктов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Lookup возвращает вердикт по символу. Отсутствие записи — VerdictUnknown.
func (r *Repository) Lookup(ctx context.Context, symbol string) (Verdict, error) {
	var isPositive bool
	err := r.db.QueryRow(ctx,
		`SELECT is_positive FROM reaction_judgement WHERE reaction_name = $1`, symbol,
	).Scan(&isPositive)
	if errors.Is(err, pgx.ErrNoRows) {
		return VerdictUnknown, nil
	}
	if err != nil {
		return VerdictUnknown, fmt.Errorf("ошибка чтения вердикта %q: %w", symbol, err)
	}
	if isPositive {
		return VerdictPositive, nil
	}
	return VerdictNegative, nil
}

// Store записывает вердикт (upsert: повторный суд перезаписывает запись).
func (r *Repository) Store(ctx context.Context, j Judgement) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO reaction_judgement (reaction_name, is_positive, last_checked_ts)
		VALUES ($1, $2, $3)
		ON CONFLICT (reaction_name)
		DO UPDATE SET is_positive = EXCLUDED.is_positive, last_checked_ts = EXCLUDED.last_checked_ts
	`, j.Symbol, j.IsPositive, common.ToEpoch(j.JudgedAt))
	if err != nil {
		return fmt.Errorf("ошибка записи вердикта %q: %w", j.Symbol, err)
	}
	return nil
}
