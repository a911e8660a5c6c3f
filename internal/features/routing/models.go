// Package routing реализует маршрутизацию сообщений по категориям.
// Сама классификация содержимого внешняя; здесь живёт политика выбора
// РОВНО ОДНОЙ категории — строгая цепочка приоритетов, не набор
// независимых проверок.
// models.go описывает вход и результат маршрутизации.
package routing

import (
	"time"

	"chatscore.ru/contribution-bot/internal/features/ledger"
)

// Message — входящее сообщение глазами маршрутизатора.
type Message struct {
	Author int64
	Text   string
	// Пользователи, упомянутые в сообщении (из Telegram-entities):
	// кандидаты в получатели позитивного фидбэка
	Mentions []int64
	// Сообщение — ответ в треде топика вопросов-ответов
	IsQAThreadReply bool
	// Автор родительского сообщения треда (0, если не тред)
	ParentAuthor int64
	// Текст родительского сообщения (для проверки «это действительно ответ»)
	ParentText string
	OccurredAt time.Time
}

// Decision — результат маршрутизации.
// Для KindPositiveFeedback событие записывается каждому из Targets;
// для остальных категорий субъект один — автор сообщения.
type Decision struct {
	Kind    ledger.Kind
	Targets []int64
	Rules   []int
}

// Classification — вердикт внешнего классификатора по нарушению.
type Classification struct {
	IsViolation bool
	RuleIDs     []int
}
