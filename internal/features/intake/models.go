// Package intake — граница приёма событий: валидация, запись в леджер,
// немедленное начисление и индекс авторов сообщений.
// models.go описывает входные события.
package intake

import "time"

// IncomingMessage — сообщение, пришедшее от транспорта.
type IncomingMessage struct {
	ChatID    int64
	MessageID int
	Author    int64
	Text      string
	Mentions  []int64
	// Ответ в треде топика вопросов-ответов
	IsQAThreadReply bool
	ParentAuthor    int64
	ParentText      string
	OccurredAt      time.Time
	// Редактирование уже записанного сообщения: пост повторно не
	// леджерится, проверяется только нарушение
	Edited bool
}

// IncomingReaction — добавленная реакция, пришедшая от транспорта.
// Автора сообщения Telegram в апдейте не передаёт — субъект
// разрешается через индекс сообщений.
type IncomingReaction struct {
	ChatID     int64
	MessageID  int
	Actor      int64
	Symbol     string
	OccurredAt time.Time
}
