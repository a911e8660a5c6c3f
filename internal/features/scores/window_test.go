package scores

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCumulativeHasNoBounds(t *testing.T) {
	w := Cumulative()
	assert.Equal(t, ModeCumulative, w.Mode())

	_, _, ok := w.Bounds(time.Now())
	assert.False(t, ok)
}

func TestRollingBoundsFollowNow(t *testing.T) {
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	w := RollingSince(since)
	assert.Equal(t, ModeRolling, w.Mode())

	now1 := since.Add(time.Hour)
	s, u, ok := w.Bounds(now1)
	assert.True(t, ok)
	assert.Equal(t, since, s)
	assert.Equal(t, now1, u)

	// Конец окна — «сейчас»: при другом now граница другая
	now2 := since.Add(2 * time.Hour)
	_, u2, _ := w.Bounds(now2)
	assert.Equal(t, now2, u2)
}

func TestExplicitBoundsIgnoreNow(t *testing.T) {
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	w := ExplicitRange(since, until)
	assert.Equal(t, ModeExplicit, w.Mode())

	s, u, ok := w.Bounds(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, since, s)
	assert.Equal(t, until, u)
}
