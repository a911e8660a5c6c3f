// Package reports — scoreboard.go строит тексты рейтинга и уведомлений.
package reports

import (
	"fmt"
	"strings"
	"time"

	"chatscore.ru/contribution-bot/internal/common"
	"chatscore.ru/contribution-bot/internal/features/scores"
)

// BuildScoreboard собирает текст рейтинга (Telegram HTML).
// В заголовке показываются фактические границы окна: для скользящего
// окна это зафиксированный момент запроса, иначе результат не объясним.
func BuildScoreboard(label string, rows []scores.Row, since, until time.Time, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏅 <b>Рейтинг вклада %s</b>\n", label)
	fmt.Fprintf(&b, "Период: %s — %s\n\n",
		common.FormatDateTime(since, loc), common.FormatDateTime(until, loc))

	if len(rows) == 0 {
		b.WriteString("Подходящих участников нет.")
		return b.String()
	}

	for i, row := range rows {
		fmt.Fprintf(&b, "<b>%d.</b> %s  <b>Балл: %.1f</b>\n", i+1, mention(row.UserID), row.Score)
		fmt.Fprintf(&b, " • Постов: %d\n", row.Posts)
		fmt.Fprintf(&b, " • Полученных реакций: %d\n", row.Reactions)
		fmt.Fprintf(&b, " • Ответов: %d\n", row.Answers)
		fmt.Fprintf(&b, " • Полученного фидбэка: %d\n", row.PositiveFeedback)
		fmt.Fprintf(&b, " • Нарушений: %d\n", row.Violations)
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// BuildViolationAlert собирает уведомление о нарушении для админ-чата.
func BuildViolationAlert(userID int64, text string, rules []int) string {
	var b strings.Builder
	b.WriteString("🚨 <b>Обнаружено нарушение правил!</b>\n")
	fmt.Fprintf(&b, "Участник: %s\n", mention(userID))
	fmt.Fprintf(&b, "Текст: %s\n", escapeHTML(text))
	if len(rules) > 0 {
		nums := make([]string, len(rules))
		for i, r := range rules {
			nums[i] = fmt.Sprintf("%d", r)
		}
		fmt.Fprintf(&b, "Нарушенные правила: %s\n", strings.Join(nums, ", "))
	}
	return b.String()
}

// mention возвращает кликабельное упоминание пользователя по ID.
func mention(userID int64) string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">%d</a>`, userID, userID)
}

func escapeHTML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
