// Package intake — repository.go выполняет операции с таблицей
// message_index (chat_id + message_id → автор).
package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chatscore.ru/contribution-bot/internal/common"
)

// Repository работает с таблицей message_index.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий индекса сообщений.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Remember запоминает автора сообщения. Возвращает false, если
// сообщение уже было в индексе (естественный ключ chat_id+message_id —
// это и есть защита от двойной записи поста).
func (r *Repository) Remember(ctx context.Context, chatID int64, messageID int, userID int64, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO message_index (chat_id, message_id, user_id, ts_epoch)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chat_id, message_id) DO NOTHING
	`, chatID, messageID, userID, common.ToEpoch(at))
	if err != nil {
		return false, fmt.Errorf("ошибка записи индекса сообщений: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AuthorOf возвращает автора сообщения по индексу.
func (r *Repository) AuthorOf(ctx context.Context, chatID int64, messageID int) (int64, bool, error) {
	var userID int64
	err := r.db.QueryRow(ctx,
		`SELECT user_id FROM message_index WHERE chat_id = $1 AND message_id = $2`,
		chatID, messageID,
	).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("ошибка чтения индекса сообщений: %w", err)
	}
	return userID, true, nil
}
