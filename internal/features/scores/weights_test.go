package scores

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultWeights() Weights {
	return Weights{
		Post:             1,
		Reaction:         0.5,
		Answer:           3,
		PositiveFeedback: 3,
		Violation:        -5,
	}
}

func TestScore(t *testing.T) {
	w := defaultWeights()

	// 2 поста + 1 реакция + 1 ответ + 1 нарушение:
	// 2·1 + 1·0.5 + 1·3 + 0·3 + 1·(−5) = 0.5
	c := Counts{Posts: 2, Reactions: 1, Answers: 1, PositiveFeedback: 0, Violations: 1}
	assert.InDelta(t, 0.5, w.Score(c), 1e-9)
}

func TestScoreEmpty(t *testing.T) {
	assert.Zero(t, defaultWeights().Score(Counts{}))
}

func TestScoreViolationsOnly(t *testing.T) {
	// Балл может уходить в минус
	c := Counts{Violations: 2}
	assert.InDelta(t, -10, defaultWeights().Score(c), 1e-9)
}
