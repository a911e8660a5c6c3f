// Package ledger — repository.go выполняет операции с таблицей events.
package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chatscore.ru/contribution-bot/internal/common"
)

const eventColumns = `id, subject_user_id, actor_user_id, kind, reaction_symbol, ts_epoch, scored, violation_rules`

// Repository работает с таблицей events.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий леджера.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Append добавляет событие в леджер и возвращает присвоенный ID.
// Дубликаты не отфильтровываются: идемпотентность записи — забота
// вызывающей стороны (естественные ключи вроде chat_id+message_id).
func (r *Repository) Append(ctx context.Context, e *Event) (int64, error) {
	query := `
		INSERT INTO events (subject_user_id, actor_user_id, kind, reaction_symbol, ts_epoch, scored, violation_rules)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRow(ctx, query,
		e.SubjectUser, e.ActorUser, string(e.Kind), e.ReactionSymbol,
		common.ToEpoch(e.OccurredAt), e.Scored, rulesToCSV(e.ViolationRules),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка записи события: %w", err)
	}
	return id, nil
}

// MarkScored выставляет флаг scored. Повторный вызов — no-op, не ошибка.
func (r *Repository) MarkScored(ctx context.Context, eventID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE events SET scored = TRUE WHERE id = $1 AND scored = FALSE`, eventID)
	if err != nil {
		return fmt.Errorf("ошибка отметки события %d: %w", eventID, err)
	}
	return nil
}

// Filter — необязательные условия выборки событий.
// Окно полузакрытое: [Since, Until) — соседние окна не пересекаются
// и не оставляют дыр.
type Filter struct {
	SubjectUser *int64
	Kind        *Kind
	Since       *time.Time
	Until       *time.Time
}

// Query возвращает события по фильтру, упорядоченные по времени события.
func (r *Repository) Query(ctx context.Context, f Filter) ([]Event, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}

	if f.SubjectUser != nil {
		add("subject_user_id = ?", *f.SubjectUser)
	}
	if f.Kind != nil {
		add("kind = ?", string(*f.Kind))
	}
	if f.Since != nil {
		add("ts_epoch >= ?", common.ToEpoch(*f.Since))
	}
	if f.Until != nil {
		add("ts_epoch < ?", common.ToEpoch(*f.Until))
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY ts_epoch ASC, id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки событий: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// UnjudgedSymbols возвращает уникальные символы реакций, для которых
// нет записи в кэше вердиктов. Символы из статического списка known
// пропускаются: их вердикт бесплатный и в БД не хранится.
// Лимит ограничивает стоимость одного прогона урегулирования.
func (r *Repository) UnjudgedSymbols(ctx context.Context, known []string, limit int) ([]string, error) {
	query := `
		SELECT DISTINCT reaction_symbol FROM events
		WHERE kind = 'reaction'
		  AND reaction_symbol IS NOT NULL
		  AND NOT (reaction_symbol = ANY($1))
		  AND reaction_symbol NOT IN (SELECT reaction_name FROM reaction_judgement)
		ORDER BY reaction_symbol
		LIMIT $2
	`
	if known == nil {
		known = []string{}
	}
	rows, err := r.db.Query(ctx, query, known, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска несуженных реакций: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// UnscoredPositiveReactions возвращает реакции без балла, чей символ
// признан позитивным: в кэше вердиктов или в статическом списке allowlist.
func (r *Repository) UnscoredPositiveReactions(ctx context.Context, allowlist []string) ([]Event, error) {
	query := `
		SELECT ` + eventColumns + ` FROM events
		WHERE kind = 'reaction'
		  AND scored = FALSE
		  AND reaction_symbol IS NOT NULL
		  AND (
			reaction_symbol = ANY($1)
			OR reaction_symbol IN (
				SELECT reaction_name FROM reaction_judgement WHERE is_positive = TRUE
			)
		  )
		ORDER BY id ASC
	`
	if allowlist == nil {
		allowlist = []string{}
	}
	rows, err := r.db.Query(ctx, query, allowlist)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска неучтённых позитивных реакций: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// UnscoredNonReactions возвращает события нереактивных категорий без балла.
// В норме таких нет: баллы начисляются в момент записи. Непустой результат —
// след упавшего процесса между записью и начислением; прогон урегулирования
// доначислит их.
func (r *Repository) UnscoredNonReactions(ctx context.Context) ([]Event, error) {
	query := `
		SELECT ` + eventColumns + ` FROM events
		WHERE kind <> 'reaction' AND scored = FALSE
		ORDER BY id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска неучтённых событий: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var (
			e        Event
			kind     string
			tsEpoch  float64
			rulesCSV *string
		)
		if err := rows.Scan(
			&e.ID, &e.SubjectUser, &e.ActorUser, &kind,
			&e.ReactionSymbol, &tsEpoch, &e.Scored, &rulesCSV,
		); err != nil {
			return nil, fmt.Errorf("ошибка чтения события: %w", err)
		}
		e.Kind = Kind(kind)
		e.OccurredAt = common.FromEpoch(tsEpoch)
		e.ViolationRules = rulesFromCSV(rulesCSV)
		events = append(events, e)
	}
	return events, rows.Err()
}
