package models

import "time"

// Worker — работник, привязанный к Telegram-аккаунту.
type Worker struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// WorkSession — одна смена: интервал от старта до завершения,
// геолокация и позиция на момент старта, опциональная почасовая ставка.
// Все времена хранятся в UTC.
type WorkSession struct {
	ID        int64      `json:"id"`
	WorkerID  int64      `json:"worker_id"`
	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Position  string  `json:"position"`

	// Ставка в копейках за час; nil — ставка ещё не назначена
	HourRateKopecks *int64 `json:"hour_rate_kopecks,omitempty"`

	// ID сообщения-отчёта без ставки, которое нужно удалить после её назначения
	PendingMessageID *int `json:"pending_message_id,omitempty"`

	// Заполняется стором при выборке с join
	WorkerTelegramID int64 `json:"worker_telegram_id"`
}

// IsEnded — сессия закрыта. Вычисляется из EndedAt, отдельный флаг не храним.
func (s *WorkSession) IsEnded() bool {
	return s != nil && s.EndedAt != nil
}

type UserState struct {
	UserID      int64                  `json:"user_id"`
	CurrentStep string                 `json:"current_step"`
	TempData    map[string]interface{} `json:"temp_data"`
}

// GetInt64 достаёт число из TempData. После round-trip через JSON
// числа приходят как float64, поэтому разбираем все числовые типы.
func (s *UserState) GetInt64(key string) (int64, bool) {
	if s.TempData == nil {
		return 0, false
	}
	val, ok := s.TempData[key]
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

func (s *UserState) GetFloat64(key string) (float64, bool) {
	if s.TempData == nil {
		return 0, false
	}
	val, ok := s.TempData[key]
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func (s *UserState) GetString(key string) (string, bool) {
	if s.TempData == nil {
		return "", false
	}
	val, ok := s.TempData[key]
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}
