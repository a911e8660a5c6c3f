// Package scores реализует подсчёт баллов вклада: таблицу весов,
// зеркало накопительных счётов и оконную агрегацию рейтинга.
// models.go описывает структуры счётов.
package scores

// Counts — количество событий пользователя по категориям.
// Все значения неотрицательны и в зеркале счётов только растут.
type Counts struct {
	Posts            int
	Reactions        int
	Answers          int
	PositiveFeedback int
	Violations       int
}

// Row — строка рейтинга: пользователь, его счётчики и итоговый балл.
type Row struct {
	UserID int64
	Counts
	Score float64
}
