// Package scores — window.go описывает окно запроса рейтинга.
//
// Три режима не взаимозаменяемы, поэтому вместо пары nullable-границ
// используется явный тип с конструкторами:
//   - ExplicitRange: обе границы заданы, [since, until), воспроизводимо;
//   - RollingSince: конец окна — «сейчас» на момент запроса,
//     результат НЕ воспроизводим при повторе;
//   - Cumulative: без окна, читается зеркало накопительных счётов.
package scores

import "time"

// Mode — режим окна.
type Mode int

const (
	ModeCumulative Mode = iota
	ModeRolling
	ModeExplicit
)

// Window — окно запроса рейтинга. Создаётся только конструкторами.
type Window struct {
	mode  Mode
	since time.Time
	until time.Time
}

// Cumulative — накопительный режим: вся история, O(1) чтение зеркала.
func Cumulative() Window {
	return Window{mode: ModeCumulative}
}

// RollingSince — скользящее окно [since, now).
func RollingSince(since time.Time) Window {
	return Window{mode: ModeRolling, since: since}
}

// ExplicitRange — явный диапазон [since, until).
func ExplicitRange(since, until time.Time) Window {
	return Window{mode: ModeExplicit, since: since, until: until}
}

// Mode возвращает режим окна.
func (w Window) Mode() Mode { return w.mode }

// Bounds возвращает конкретные границы [since, until) на момент now.
// Для накопительного режима границ нет (ok=false).
func (w Window) Bounds(now time.Time) (since, until time.Time, ok bool) {
	switch w.mode {
	case ModeExplicit:
		return w.since, w.until, true
	case ModeRolling:
		return w.since, now, true
	default:
		return time.Time{}, time.Time{}, false
	}
}
