// Package ledger реализует леджер активности — append-only журнал
// классифицированных событий сообщества.
// models.go описывает структуру события и его категории.
package ledger

import (
	"strconv"
	"strings"
	"time"
)

// Kind — категория события активности.
type Kind string

const (
	KindPost             Kind = "post"
	KindReaction         Kind = "reaction"
	KindAnswer           Kind = "answer"
	KindPositiveFeedback Kind = "positive_feedback"
	KindViolation        Kind = "violation"
)

// Valid сообщает, известна ли категория.
func (k Kind) Valid() bool {
	switch k {
	case KindPost, KindReaction, KindAnswer, KindPositiveFeedback, KindViolation:
		return true
	}
	return false
}

// Deferred сообщает, откладывается ли начисление балла для категории.
// Только реакции ждут вердикта классификатора; остальные категории
// начисляются сразу при записи.
func (k Kind) Deferred() bool {
	return k == KindReaction
}

// Event — неизменяемый факт активности. Записывается один раз,
// мутируется ровно один раз (флаг Scored: false→true), никогда не удаляется.
type Event struct {
	ID          int64
	SubjectUser int64 // кому засчитывается событие
	ActorUser   *int64 // кто поставил реакцию (только для Kind=reaction)
	Kind        Kind
	// Символ реакции (только для Kind=reaction)
	ReactionSymbol *string
	// Время события, не время записи: при импорте истории может быть в прошлом
	OccurredAt time.Time
	// Scored = балл уже применён к зеркалу счётов
	Scored bool
	// Номера нарушенных правил (только для Kind=violation)
	ViolationRules []int
}

// rulesToCSV сериализует номера правил в строку "1,3,7" для хранения в БД.
func rulesToCSV(rules []int) *string {
	if len(rules) == 0 {
		return nil
	}
	parts := make([]string, len(rules))
	for i, r := range rules {
		parts[i] = strconv.Itoa(r)
	}
	s := strings.Join(parts, ",")
	return &s
}

// rulesFromCSV разбирает строку "1,3,7" обратно в номера правил.
// Мусорные элементы пропускаются: леджер — вечный журнал, падать из-за
// одной битой записи нельзя.
func rulesFromCSV(s *string) []int {
	if s == nil || *s == "" {
		return nil
	}
	parts := strings.Split(*s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
