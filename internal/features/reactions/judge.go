// Package reactions — judge.go описывает внешний классификатор реакций.
package reactions

import "context"

// Judge — внешний классификатор настроения реакции.
// Вызывается ТОЛЬКО из прогона урегулирования, по одному разу на
// уникальный символ. Обязан быть идемпотентным и без побочных эффектов
// с точки зрения движка; может падать — тогда символ судится в
// следующем прогоне.
type Judge interface {
	Judge(ctx context.Context, symbol string) (bool, error)
}

// builtinPositive — эвристика по умолчанию: известные позитивные эмодзи
// за пределами конфигурируемого allowlist. Боевой классификатор
// (LLM и т.п.) подключается реализацией Judge вместо этой.
var builtinPositive = map[string]struct{}{
	"💯": {}, "⚡": {}, "🏆": {}, "💪": {}, "🤝": {},
	"😍": {}, "🥰": {}, "👌": {}, "🫡": {}, "❤️‍🔥": {},
}

// HeuristicJudge — детерминированная реализация Judge по словарю.
type HeuristicJudge struct{}

// NewHeuristicJudge создаёт эвристический классификатор.
func NewHeuristicJudge() *HeuristicJudge {
	return &HeuristicJudge{}
}

// Judge возвращает true для известных позитивных символов.
func (j *HeuristicJudge) Judge(_ context.Context, symbol string) (bool, error) {
	_, ok := builtinPositive[symbol]
	return ok, nil
}
