// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: работа с эпох-временем событий и форматирование дат.
package common

import (
	"math"
	"time"
)

// ToEpoch переводит время в секунды с начала эпохи (float).
// В таком виде время событий хранится в БД: формат позволяет и
// исторический импорт, и быстрые запросы по диапазону без
// неоднозначности таймзон.
func ToEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// FromEpoch переводит секунды с начала эпохи обратно в time.Time (UTC).
func FromEpoch(epoch float64) time.Time {
	sec, frac := math.Modf(epoch)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
}

// AppLocation возвращает часовой пояс приложения.
// Если пояс не загрузился — используем UTC+3 вручную.
func AppLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04".
// Используется в заголовках рейтинга.
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02.01.2006 15:04")
}

// StartOfDay возвращает полночь дня t в его часовом поясе.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
