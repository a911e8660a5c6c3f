package reports

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"chatscore.ru/contribution-bot/internal/features/scores"
)

func TestBuildScoreboard(t *testing.T) {
	rows := []scores.Row{
		{UserID: 42, Counts: scores.Counts{Posts: 3, Reactions: 2}, Score: 4},
		{UserID: 7, Counts: scores.Counts{Posts: 1}, Score: 1},
	}
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)

	text := BuildScoreboard("за неделю", rows, since, until, time.UTC)

	assert.Contains(t, text, "за неделю")
	assert.Contains(t, text, "01.06.2025 00:00")
	assert.Contains(t, text, `tg://user?id=42`)
	assert.Contains(t, text, "Балл: 4.0")
	// Порядок сохраняется: первый — лидер
	assert.Less(t, strings.Index(text, "id=42"), strings.Index(text, "id=7"))
}

func TestBuildScoreboardEmpty(t *testing.T) {
	text := BuildScoreboard("за всё время", nil, time.Time{}, time.Time{}, time.UTC)
	assert.Contains(t, text, "Подходящих участников нет")
}

func TestBuildViolationAlertEscapesHTML(t *testing.T) {
	text := BuildViolationAlert(42, "<script>бяка</script>", []int{1, 3})
	assert.Contains(t, text, "&lt;script&gt;")
	assert.NotContains(t, text, "<script>")
	assert.Contains(t, text, "1, 3")
}
