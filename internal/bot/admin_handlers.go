package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"smena/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type callbackHandler func(ctx context.Context, callback *tgbotapi.CallbackQuery, arg string)

type callbackRoute struct {
	prefix  string
	exact   bool
	handler callbackHandler
}

// buildCallbackRoutes собирает таблицу маршрутов callback-запросов.
// Маршруты проверяются по порядку: сначала точные, затем префиксные.
func (b *Bot) buildCallbackRoutes() []callbackRoute {
	return []callbackRoute{
		{prefix: "workers_management", exact: true, handler: b.cbWorkersManagement},
		{prefix: "sessions_management", exact: true, handler: b.cbSessionsManagement},
		{prefix: "search_user", exact: true, handler: b.cbSearchUser},
		{prefix: "export_sessions", exact: true, handler: b.cbExportSessions},
		{prefix: "page:", handler: b.cbWorkersPage},
		{prefix: "sessions_page:", handler: b.cbSessionsPage},
		{prefix: "user_sessions:", handler: b.cbWorkerSessions},
		{prefix: "user:", handler: b.cbWorkerInfo},
		{prefix: "session_info:", handler: b.cbSessionInfo},
		{prefix: "change_rate:", handler: b.cbChangeRate},
		{prefix: "edit_start_time:", handler: b.cbEditStartTime},
		{prefix: "edit_end_time:", handler: b.cbEditEndTime},
		{prefix: "end_session:", handler: b.cbEndSession},
		{prefix: "delete_session:", handler: b.cbDeleteSession},
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	callback := update.CallbackQuery
	data := callback.Data
	userID := callback.From.ID

	// Отвечаем на callback сразу, чтобы убрать "часики"
	if err := b.tgService.AnswerCallback(callback.ID, ""); err != nil {
		b.logger.Debug().Err(err).Msg("Не удалось ответить на callback")
	}

	// Вся inline-панель административная
	if !b.isAdmin(userID) {
		return
	}

	for _, route := range b.routes {
		if route.exact {
			if data == route.prefix {
				route.handler(ctx, callback, "")
				return
			}
			continue
		}
		if strings.HasPrefix(data, route.prefix) {
			route.handler(ctx, callback, strings.TrimPrefix(data, route.prefix))
			return
		}
	}

	zerolog.Ctx(ctx).Warn().Str("data", data).Msg("Неизвестный callback")
}

func (b *Bot) cbWorkersManagement(ctx context.Context, callback *tgbotapi.CallbackQuery, _ string) {
	b.listWorkers(ctx, callback, 1)
}

func (b *Bot) cbWorkersPage(ctx context.Context, callback *tgbotapi.CallbackQuery, arg string) {
	page, err := strconv.Atoi(arg)
	if err != nil || page < 1 {
		page = 1
	}
	b.listWorkers(ctx, callback, page)
}

func (b *Bot) cbSessionsManagement(ctx context.Context, callback *tgbotapi.CallbackQuery, _ string) {
	b.listSessions(ctx, callback, 0, 1)
}

// cbSessionsPage разбирает "sessions_page:<worker_id>:<page>"; нулевой
// worker_id означает общий список.
func (b *Bot) cbSessionsPage(ctx context.Context, callback *tgbotapi.CallbackQuery, arg string) {
	parts := strings.SplitN(arg, ":", 2)
	if len(parts) != 2 {
		return
	}
	workerID, _ := strconv.ParseInt(parts[0], 10, 64)
	page, err := strconv.Atoi(parts[1])
	if err != nil || page < 1 {
		page = 1
	}
	b.listSessions(ctx, callback, workerID, page)
}

func (b *Bot) cbWorkerInfo(ctx context.Context, callback *tgbotapi.CallbackQuery, arg string) {
	telegramID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return
	}
	b.showWorkerInfo(ctx, callback.Message.Chat.ID, telegramID)
}

func (b *Bot) cbWorkerSessions(ctx context.Context, callback *tgbotapi.CallbackQuery, arg string) {
	telegramID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return
	}

	worker, err := b.workerService.GetWorkerByTelegramID(ctx, telegramID)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, "Пользователь не найден.")
		return
	}
	b.listSessions(ctx, callback, worker.ID, 1)
}

func (b *Bot) cbSessionInfo(ctx context.Context, callback *tgbotapi.CallbackQuery, arg string) {
	sessionID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return
	}

	session, err := b.sessionService.GetSession(ctx, sessionID)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, "Сессия не найдена.")
		return
	}

	keyboard := editSessionKeyboard(sessionID)
	if _, err := b.tgService.EditMessage(callback.Message.Chat.ID, callback.Message.MessageID,
		b.sessionInfoText(ctx, session), &keyboard); err != nil {
		b.logger.Debug().Err(err).Msg("Не удалось отредактировать сообщение, отправляем новое")
		b.sendWithInlineKeyboard(callback.Message.Chat.ID, b.sessionInfoText(ctx, session), keyboard)
	}
}

func (b *Bot) cbSearchUser(ctx context.Context, callback *tgbotapi.CallbackQuery, _ string) {
	b.setUserState(ctx, callback.From.ID, models.StateAwaitTelegramID, nil)
	b.sendWithKeyboard(callback.Message.Chat.ID, "Введите Telegram ID пользователя:", backActionKeyboard())
}

func (b *Bot) cbChangeRate(ctx context.Context, callback *tgbotapi.CallbackQuery, arg string) {
	sessionID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return
	}

	b.setUserState(ctx, callback.From.ID, models.StateAwaitRate, map[string]interface{}{
		"session_id": sessionID,
	})
	b.sendWithKeyboard(callback.Message.Chat.ID, "Пожалуйста, введите новую ставку в рублях:", backActionKeyboard())
}

func (b *Bot) cbEditStartTime(ctx context.Context, callback *tgbotapi.CallbackQuery, arg string) {
	sessionID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return
	}

	b.setUserState(ctx, callback.From.ID, models.StateAwaitStartTime, map[string]interface{}{
		"session_id": sessionID,
	})
	b.sendWithKeyboard(callback.Message.Chat.ID,
		"Пожалуйста, введите новое время начала сессии в формате 'YYYY-MM-DD HH:MM'.", backActionKeyboard())
}

func (b *Bot) cbEditEndTime(ctx context.Context, callback *tgbotapi.CallbackQuery, arg string) {
	sessionID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return
	}

	b.setUserState(ctx, callback.From.ID, models.StateAwaitEndTime, map[string]interface{}{
		"session_id": sessionID,
	})
	b.sendWithKeyboard(callback.Message.Chat.ID,
		"Пожалуйста, введите новое время конца сессии в формате 'YYYY-MM-DD HH:MM'.", backActionKeyboard())
}

func (b *Bot) cbEndSession(ctx context.Context, callback *tgbotapi.CallbackQuery, arg string) {
	sessionID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return
	}

	session, err := b.sessionService.GetSession(ctx, sessionID)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, "Сессия не найдена.")
		return
	}
	if session.IsEnded() {
		b.sendMessage(callback.Message.Chat.ID, "Сессия уже завершена.")
		return
	}

	if session.PendingMessageID != nil {
		if err := b.tgService.DeleteMessage(session.WorkerTelegramID, *session.PendingMessageID); err != nil {
			b.logger.Debug().Err(err).Msg("Не удалось удалить старое сообщение")
		}
	}

	closed, err := b.sessionService.EndSession(ctx, session.WorkerID, time.Now().UTC())
	if err != nil || closed == nil {
		b.sendMessage(callback.Message.Chat.ID, "Ошибка при остановке сессии")
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Int64("session_id", sessionID).Msg("Ошибка при остановке сессии")
		}
		return
	}

	b.sendMessage(callback.Message.Chat.ID, "Сессия успешно остановлена.")
	zerolog.Ctx(ctx).Info().
		Int64("admin_id", callback.From.ID).
		Int64("session_id", sessionID).
		Msg("Администратор остановил сессию")

	workerText := "Вашу смену завершил администратор!\n" + b.sessionDetails(ctx, closed)
	b.sendWithKeyboard(closed.WorkerTelegramID, workerText, b.workerMenu(closed.WorkerTelegramID))
}

func (b *Bot) cbDeleteSession(ctx context.Context, callback *tgbotapi.CallbackQuery, arg string) {
	sessionID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return
	}

	if err := b.sessionService.DeleteSession(ctx, sessionID); err != nil {
		b.sendMessage(callback.Message.Chat.ID, "Ошибка при удалении сессии")
		zerolog.Ctx(ctx).Error().Err(err).Int64("session_id", sessionID).Msg("Ошибка при удалении сессии")
		return
	}

	b.sendMessage(callback.Message.Chat.ID, "Сессия успешно удалена.")
	zerolog.Ctx(ctx).Info().
		Int64("admin_id", callback.From.ID).
		Int64("session_id", sessionID).
		Msg("Администратор удалил сессию")
}

func (b *Bot) showWorkerInfo(ctx context.Context, chatID, telegramID int64) {
	worker, err := b.workerService.GetWorkerByTelegramID(ctx, telegramID)
	if err != nil {
		b.sendMessage(chatID, "Пользователь не найден.")
		return
	}

	sessionCount := b.sessionService.CountWorkerSessions(ctx, worker.ID)
	text := fmt.Sprintf("Информация о пользователе:\nTelegram ID: %d\nКоличество сессий: %d", worker.TelegramID, sessionCount)
	b.sendWithInlineKeyboard(chatID, text, workerInfoKeyboard(worker.TelegramID))
}
