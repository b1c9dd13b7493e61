package models

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

// Шаги диалога работника: гео -> позиция -> активная смена
const (
	StateAwaitGeolocation = "await_geolocation"
	StateAwaitPosition    = "await_position"
)

// Шаги диалога администратора
const (
	StateAwaitRate       = "await_rate"
	StateAwaitStartTime  = "await_start_time"
	StateAwaitEndTime    = "await_end_time"
	StateAwaitTelegramID = "await_telegram_id"
)

const (
	// DefaultRedisTTL время жизни состояния пользователя в Redis
	DefaultRedisTTL = 24 * 60 * 60 // 24 часа в секундах

	// DefaultPaginationSize размер страницы списков (работники, сессии)
	DefaultPaginationSize = 15

	// MaxPositionLength ограничение на текст позиции работника
	MaxPositionLength = 255

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений в секундах
	RateLimitWindow = 60

	// DefaultTimezoneOffsetHours смещение отображаемого времени от UTC (МСК)
	DefaultTimezoneOffsetHours = 3
)
