package domain

import (
	"context"
	"time"

	"smena/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Store — персистентное хранилище работников и сессий.
// Единственный страж инварианта "не больше одной открытой сессии".
type Store interface {
	GetOrCreateWorker(ctx context.Context, telegramID int64) (*models.Worker, error)
	GetWorkerByTelegramID(ctx context.Context, telegramID int64) (*models.Worker, error)
	GetWorkerByID(ctx context.Context, id int64) (*models.Worker, error)
	ListWorkers(ctx context.Context, page, perPage int) ([]*models.Worker, error)
	CountWorkers(ctx context.Context) (int, error)

	FindOpenSession(ctx context.Context, workerID int64) (*models.WorkSession, error)
	GetSessionByID(ctx context.Context, id int64) (*models.WorkSession, error)
	CreateSession(ctx context.Context, workerID int64, latitude, longitude float64, position string) (*models.WorkSession, error)
	CloseSession(ctx context.Context, workerID int64, endedAt time.Time) error
	UpdateSessionRate(ctx context.Context, sessionID, rateKopecks int64) error
	UpdateSessionStartTime(ctx context.Context, sessionID int64, ts time.Time) error
	UpdateSessionEndTime(ctx context.Context, sessionID int64, ts time.Time) error
	DeleteSession(ctx context.Context, sessionID int64) error
	SetPendingMessageID(ctx context.Context, sessionID int64, messageID int) error
	ClearPendingMessageID(ctx context.Context, sessionID int64) error
	ListSessionsForWorker(ctx context.Context, workerID int64, page, perPage int) ([]*models.WorkSession, error)
	ListAllSessions(ctx context.Context, page, perPage int) ([]*models.WorkSession, error)
	CountSessionsForWorker(ctx context.Context, workerID int64) (int, error)
	CountAllSessions(ctx context.Context) (int, error)
}

type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type StateManager interface {
	GetUserState(ctx context.Context, userID int64) (*models.UserState, error)
	SetUserState(ctx context.Context, userID int64, step string, data map[string]interface{}) error
	ClearUserState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	DeleteMessage(chatID int64, messageID int) error
	AnswerCallback(callbackID string, text string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// Geocoder переводит координаты в человекочитаемый адрес.
// Единственный best-effort вызов; при любой ошибке возвращается заглушка.
type Geocoder interface {
	ResolveAddress(ctx context.Context, latitude, longitude float64) string
}

// SessionService — контроллер жизненного цикла смен.
type SessionService interface {
	StartSession(ctx context.Context, telegramID int64, latitude, longitude float64, position string) (*models.WorkSession, error)
	EndSession(ctx context.Context, workerID int64, endedAt time.Time) (*models.WorkSession, error)
	SetRate(ctx context.Context, sessionID, rateKopecks int64) (*models.WorkSession, error)
	EditStartTime(ctx context.Context, sessionID int64, ts time.Time) error
	EditEndTime(ctx context.Context, sessionID int64, ts time.Time) error
	DeleteSession(ctx context.Context, sessionID int64) error
	GetSession(ctx context.Context, sessionID int64) (*models.WorkSession, error)
	FindOpenSessionByTelegramID(ctx context.Context, telegramID int64) (*models.WorkSession, error)
	RememberPendingMessage(ctx context.Context, sessionID int64, messageID int) error
	ListAllSessions(ctx context.Context, page, perPage int) ([]*models.WorkSession, error)
	ListWorkerSessions(ctx context.Context, workerID int64, page, perPage int) ([]*models.WorkSession, error)
	CountAllSessions(ctx context.Context) int
	CountWorkerSessions(ctx context.Context, workerID int64) int
}

// WorkerService — доступ к работникам и проверка прав.
type WorkerService interface {
	IsAdmin(telegramID int64) bool
	GetOrCreateWorker(ctx context.Context, telegramID int64) (*models.Worker, error)
	GetWorkerByTelegramID(ctx context.Context, telegramID int64) (*models.Worker, error)
	ListWorkers(ctx context.Context, page, perPage int) ([]*models.Worker, error)
	CountWorkers(ctx context.Context) int
}
