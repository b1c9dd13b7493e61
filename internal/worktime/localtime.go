package worktime

import (
	"fmt"
	"strings"
	"time"

	"smena/internal/models"
)

const (
	layoutMinutes = "2006-01-02 15:04"
	layoutSeconds = "2006-01-02 15:04:05"
)

// Offset фиксированное смещение отображаемого времени от UTC.
var Offset = time.Duration(models.DefaultTimezoneOffsetHours) * time.Hour

// FormatLocal рендерит UTC-время для пользователя с фиксированным смещением.
func FormatLocal(t time.Time) string {
	return t.UTC().Add(Offset).Format(layoutMinutes)
}

// FormatLocalSeconds — то же, но с секундами (для отчётов о завершении).
func FormatLocalSeconds(t time.Time) string {
	return t.UTC().Add(Offset).Format(layoutSeconds)
}

// ParseLocal разбирает введённое администратором время и переводит его в UTC.
// Принимаются форматы "2006-01-02 15:04" и "2006-01-02 15:04:05";
// оба трактуются как локальное время, смещение вычитается единообразно.
func ParseLocal(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	t, err := time.Parse(layoutMinutes, s)
	if err != nil {
		t, err = time.Parse(layoutSeconds, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("неверный формат времени %q: %w", s, err)
		}
	}

	return t.Add(-Offset).UTC(), nil
}
