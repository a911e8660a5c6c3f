package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindValid(t *testing.T) {
	assert.True(t, KindPost.Valid())
	assert.True(t, KindReaction.Valid())
	assert.True(t, KindAnswer.Valid())
	assert.True(t, KindPositiveFeedback.Valid())
	assert.True(t, KindViolation.Valid())

	assert.False(t, Kind("").Valid())
	assert.False(t, Kind("karma").Valid())
}

func TestKindDeferred(t *testing.T) {
	// Только реакции ждут вердикта, остальное начисляется сразу
	assert.True(t, KindReaction.Deferred())
	assert.False(t, KindPost.Deferred())
	assert.False(t, KindAnswer.Deferred())
	assert.False(t, KindPositiveFeedback.Deferred())
	assert.False(t, KindViolation.Deferred())
}

func TestRulesCSVRoundTrip(t *testing.T) {
	s := rulesToCSV([]int{1, 3, 7})
	assert.NotNil(t, s)
	assert.Equal(t, "1,3,7", *s)
	assert.Equal(t, []int{1, 3, 7}, rulesFromCSV(s))
}

func TestRulesCSVEmpty(t *testing.T) {
	assert.Nil(t, rulesToCSV(nil))
	assert.Nil(t, rulesToCSV([]int{}))

	assert.Nil(t, rulesFromCSV(nil))
	empty := ""
	assert.Nil(t, rulesFromCSV(&empty))
}

func TestRulesFromCSVSkipsGarbage(t *testing.T) {
	// Битые элементы пропускаются, а не роняют чтение
	broken := "1,мусор, 3 ,"
	assert.Equal(t, []int{1, 3}, rulesFromCSV(&broken))
}
