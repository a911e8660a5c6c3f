// Package reports строит и публикует отчёты по рейтингу вклада.
// period.go разбирает человекочитаемый период в окно запроса.
package reports

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"chatscore.ru/contribution-bot/internal/common"
	"chatscore.ru/contribution-bot/internal/features/scores"
)

var rangeRe = regexp.MustCompile(`^(\d{8})-(\d{8})$`)

// ParsePeriod переводит аргумент команды в подпись и окно запроса.
//
// Поддерживается:
//   - "YYYYMMDD-YYYYMMDD" — явный диапазон, конечная дата включительно
//     (внутри превращается в полуоткрытое окно добавлением суток);
//   - today / daily / weekly / monthly / quarterly / semiannual / annual —
//     скользящие окна от «сейчас»;
//   - пусто или всё остальное — накопительный рейтинг за всю историю.
func ParsePeriod(text string, now time.Time, loc *time.Location) (string, scores.Window, error) {
	t := strings.ToLower(strings.TrimSpace(text))

	if m := rangeRe.FindStringSubmatch(t); m != nil {
		start, err := time.ParseInLocation("20060102", m[1], loc)
		if err != nil {
			return "", scores.Window{}, fmt.Errorf("некорректная дата начала %q: %w", m[1], err)
		}
		endDay, err := time.ParseInLocation("20060102", m[2], loc)
		if err != nil {
			return "", scores.Window{}, fmt.Errorf("некорректная дата конца %q: %w", m[2], err)
		}
		// Конечную дату включаем: until = её полночь + сутки
		until := endDay.AddDate(0, 0, 1)
		if !until.After(start) {
			return "", scores.Window{}, common.ErrBadWindow
		}
		label := fmt.Sprintf("%s—%s", start.Format("02.01.2006"), endDay.Format("02.01.2006"))
		return label, scores.ExplicitRange(start, until), nil
	}

	now = now.In(loc)
	switch t {
	case "today", "сегодня":
		return "за сегодня", scores.RollingSince(common.StartOfDay(now)), nil
	case "daily", "день", "сутки":
		return "за сутки", scores.RollingSince(now.AddDate(0, 0, -1)), nil
	case "weekly", "неделя":
		return "за неделю", scores.RollingSince(now.AddDate(0, 0, -7)), nil
	case "monthly", "месяц":
		return "за месяц", scores.RollingSince(now.AddDate(0, -1, 0)), nil
	case "quarterly", "квартал":
		return "за квартал", scores.RollingSince(now.AddDate(0, -3, 0)), nil
	case "semiannual", "полгода":
		return "за полгода", scores.RollingSince(now.AddDate(0, -6, 0)), nil
	case "annual", "год":
		return "за год", scores.RollingSince(now.AddDate(-1, 0, 0)), nil
	default:
		return "за всё время", scores.Cumulative(), nil
	}
}
