// Package reactions реализует классификацию эмодзи-реакций:
// статический список однозначно позитивных символов и персистентный
// кэш вердиктов для остальных.
// models.go описывает вердикт и его хранимую форму.
package reactions

import "time"

// Verdict — трёхзначный вердикт по символу реакции.
type Verdict int

const (
	// VerdictUnknown — символ ещё не судили
	VerdictUnknown Verdict = iota
	// VerdictPositive — символ выражает благодарность/одобрение
	VerdictPositive
	// VerdictNegative — символ не позитивный
	VerdictNegative
)

func (v Verdict) String() string {
	switch v {
	case VerdictPositive:
		return "positive"
	case VerdictNegative:
		return "negative"
	default:
		return "unknown"
	}
}

// Judgement — запись кэша вердиктов.
// Вердикт мемоизируется навсегда: получить его заново дорого
// (внешний классификатор), перезапись допустима только повторным судом.
type Judgement struct {
	Symbol     string
	IsPositive bool
	JudgedAt   time.Time
}
