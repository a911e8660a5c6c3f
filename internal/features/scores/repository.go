// Package scores — repository.go выполняет операции с таблицей user_scores
// и агрегирующие запросы по таблице events.
package scores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chatscore.ru/contribution-bot/internal/common"
	"chatscore.ru/contribution-bot/internal/features/ledger"
)

// counterColumns сопоставляет категорию события столбцу-счётчику.
// Имена подставляются в SQL напрямую, поэтому источник — только эта карта.
var counterColumns = map[ledger.Kind]string{
	ledger.KindPost:             "post_count",
	ledger.KindReaction:         "reaction_count",
	ledger.KindAnswer:           "answer_count",
	ledger.KindPositiveFeedback: "positive_feedback_count",
	ledger.KindViolation:        "violation_count",
}

// Repository работает с зеркалом счётов и агрегацией леджера.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий счётов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ScoreEvent атомарно начисляет балл за событие: в ОДНОЙ транзакции
// переводит scored false→true и увеличивает счётчик категории в зеркале.
// Возвращает false, если событие уже было начислено (повторный вызов,
// перезапуск после падения) — тогда зеркало не трогается.
//
// Это единственный путь начисления: и немедленного при приёме,
// и отложенного при урегулировании реакций.
func (r *Repository) ScoreEvent(ctx context.Context, eventID int64) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		userID int64
		kind   string
	)
	err = tx.QueryRow(ctx, `
		UPDATE events SET scored = TRUE
		WHERE id = $1 AND scored = FALSE
		RETURNING subject_user_id, kind
	`, eventID).Scan(&userID, &kind)
	if errors.Is(err, pgx.ErrNoRows) {
		// Уже начислено либо события нет — повторное начисление исключено
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ошибка отметки события %d: %w", eventID, err)
	}

	col, ok := counterColumns[ledger.Kind(kind)]
	if !ok {
		return false, fmt.Errorf("событие %d: %w (%s)", eventID, common.ErrUnknownKind, kind)
	}

	// Строка зеркала создаётся лениво при первом событии пользователя
	if _, err := tx.Exec(ctx,
		`INSERT INTO user_scores (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		userID,
	); err != nil {
		return false, fmt.Errorf("ошибка создания строки счёта: %w", err)
	}

	if _, err := tx.Exec(ctx,
		fmt.Sprintf(`UPDATE user_scores SET %s = %s + 1, updated_at = NOW() WHERE user_id = $1`, col, col),
		userID,
	); err != nil {
		return false, fmt.Errorf("ошибка инкремента счёта: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("ошибка фиксации начисления: %w", err)
	}
	return true, nil
}

// TopNWindowed агрегирует события леджера за окно [since, until)
// и возвращает топ-N по взвешенному баллу.
// Гейт scored применяется ТОЛЬКО к реакциям: пост или нарушение
// считается всегда, как только записано.
// При равенстве баллов порядок детерминирован: по возрастанию user_id.
func (r *Repository) TopNWindowed(ctx context.Context, n int, since, until time.Time, w Weights) ([]Row, error) {
	query := `
		SELECT
		  subject_user_id,
		  SUM(CASE WHEN kind = 'post'  THEN 1 ELSE 0 END) AS posts,
		  SUM(CASE WHEN kind = 'reaction' AND scored THEN 1 ELSE 0 END) AS reactions,
		  SUM(CASE WHEN kind = 'answer' THEN 1 ELSE 0 END) AS answers,
		  SUM(CASE WHEN kind = 'positive_feedback' THEN 1 ELSE 0 END) AS positive_fb,
		  SUM(CASE WHEN kind = 'violation' THEN 1 ELSE 0 END) AS violations,
		  (
			SUM(CASE WHEN kind = 'post' THEN 1 ELSE 0 END) * $1
		  + SUM(CASE WHEN kind = 'reaction' AND scored THEN 1 ELSE 0 END) * $2
		  + SUM(CASE WHEN kind = 'answer' THEN 1 ELSE 0 END) * $3
		  + SUM(CASE WHEN kind = 'positive_feedback' THEN 1 ELSE 0 END) * $4
		  + SUM(CASE WHEN kind = 'violation' THEN 1 ELSE 0 END) * $5
		  ) AS score
		FROM events
		WHERE ts_epoch >= $6 AND ts_epoch < $7
		GROUP BY subject_user_id
		ORDER BY score DESC, subject_user_id ASC
		LIMIT $8
	`
	rows, err := r.db.Query(ctx, query,
		w.Post, w.Reaction, w.Answer, w.PositiveFeedback, w.Violation,
		common.ToEpoch(since), common.ToEpoch(until), n,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка оконной агрегации: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// TopNCumulative возвращает топ-N по зеркалу накопительных счётов.
// O(1) на пользователя, не зависит от размера леджера.
func (r *Repository) TopNCumulative(ctx context.Context, n int, w Weights) ([]Row, error) {
	query := `
		SELECT
		  user_id, post_count, reaction_count, answer_count,
		  positive_feedback_count, violation_count,
		  (
			post_count * $1
		  + reaction_count * $2
		  + answer_count * $3
		  + positive_feedback_count * $4
		  + violation_count * $5
		  ) AS score
		FROM user_scores
		ORDER BY score DESC, user_id ASC
		LIMIT $6
	`
	rows, err := r.db.Query(ctx, query,
		w.Post, w.Reaction, w.Answer, w.PositiveFeedback, w.Violation, n)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения зеркала счётов: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// UserTotals возвращает накопительные счётчики одного пользователя.
// Если строки ещё нет (не было ни одного события) — нулевые счётчики.
func (r *Repository) UserTotals(ctx context.Context, userID int64) (Counts, error) {
	var c Counts
	err := r.db.QueryRow(ctx, `
		SELECT post_count, reaction_count, answer_count, positive_feedback_count, violation_count
		FROM user_scores WHERE user_id = $1
	`, userID).Scan(&c.Posts, &c.Reactions, &c.Answers, &c.PositiveFeedback, &c.Violations)
	if errors.Is(err, pgx.ErrNoRows) {
		return Counts{}, nil
	}
	if err != nil {
		return Counts{}, fmt.Errorf("ошибка чтения счёта пользователя: %w", err)
	}
	return c, nil
}

// OldestEventTime возвращает время самого раннего события леджера.
// Используется для подписи накопительного рейтинга.
func (r *Repository) OldestEventTime(ctx context.Context) (time.Time, bool, error) {
	var minEpoch *float64
	if err := r.db.QueryRow(ctx, `SELECT MIN(ts_epoch) FROM events`).Scan(&minEpoch); err != nil {
		return time.Time{}, false, fmt.Errorf("ошибка чтения минимального времени: %w", err)
	}
	if minEpoch == nil {
		return time.Time{}, false, nil
	}
	return common.FromEpoch(*minEpoch), true, nil
}

func scanRows(rows pgx.Rows) ([]Row, error) {
	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(
			&row.UserID, &row.Posts, &row.Reactions, &row.Answers,
			&row.PositiveFeedback, &row.Violations, &row.Score,
		); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки рейтинга: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
