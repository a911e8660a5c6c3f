// Package scores — weights.go содержит таблицу весов категорий.
package scores

import "chatscore.ru/contribution-bot/internal/config"

// Weights — веса категорий событий. Итоговый балл: Σ weight × count.
// Вес нарушения отрицательный. После загрузки конфигурации только читается.
type Weights struct {
	Post             float64
	Reaction         float64
	Answer           float64
	PositiveFeedback float64
	Violation        float64
}

// WeightsFromConfig собирает таблицу весов из конфигурации.
func WeightsFromConfig(cfg *config.Config) Weights {
	return Weights{
		Post:             cfg.WeightPost,
		Reaction:         cfg.WeightReaction,
		Answer:           cfg.WeightAnswer,
		PositiveFeedback: cfg.WeightPositiveFeedback,
		Violation:        cfg.WeightViolation,
	}
}

// Score вычисляет взвешенный балл по счётчикам.
func (w Weights) Score(c Counts) float64 {
	return float64(c.Posts)*w.Post +
		float64(c.Reactions)*w.Reaction +
		float64(c.Answers)*w.Answer +
		float64(c.PositiveFeedback)*w.PositiveFeedback +
		float64(c.Violations)*w.Violation
}
