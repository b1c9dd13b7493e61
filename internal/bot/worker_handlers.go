package bot

import (
	"context"
	"fmt"
	"time"

	"smena/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// handleWorkToggle — /work: если смена открыта, завершает ее, иначе
// начинает сценарий старта.
func (b *Bot) handleWorkToggle(ctx context.Context, update tgbotapi.Update) {
	session, err := b.sessionService.FindOpenSessionByTelegramID(ctx, update.Message.From.ID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", update.Message.From.ID).Msg("Не удалось проверить открытую смену")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	if session != nil {
		b.handleEndWork(ctx, update)
		return
	}
	b.handleStartWork(ctx, update)
}

func (b *Bot) handleStartWork(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID

	// Повторный старт при открытой смене молча игнорируем
	session, err := b.sessionService.FindOpenSessionByTelegramID(ctx, userID)
	if err == nil && session != nil {
		return
	}

	b.setUserState(ctx, userID, models.StateAwaitGeolocation, nil)

	text := "Отправьте своё местоположение для фиксации:" +
		"\nНажмите на кнопку \"" + ButtonSendLocation + "\" ниже." +
		"\n\nОчень важно! Убедитесь, что у Telegram есть доступ к вашему местоположению " +
		"(у вас включена передача геолокационных данных и у Telegram есть права на просмотр и получение этих данных)."
	b.sendWithKeyboard(update.Message.Chat.ID, text, sendGeolocationKeyboard())
}

func (b *Bot) handleGeolocation(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	location := update.Message.Location

	b.setUserState(ctx, userID, models.StateAwaitPosition, map[string]interface{}{
		"latitude":  location.Latitude,
		"longitude": location.Longitude,
	})

	b.sendWithKeyboard(update.Message.Chat.ID,
		"Успех! Геолокация успешно получена и сохранена, введите вашу текущую позицию на должности:",
		cancelKeyboard())
}

func (b *Bot) handlePositionInput(ctx context.Context, update tgbotapi.Update, state *models.UserState) {
	userID := update.Message.From.ID
	position := update.Message.Text

	if len([]rune(position)) > models.MaxPositionLength {
		b.sendMessage(update.Message.Chat.ID, "Текст не должен превышать 255 символов. Повторите попытку:")
		return
	}

	latitude, okLat := state.GetFloat64("latitude")
	longitude, okLon := state.GetFloat64("longitude")
	if !okLat || !okLon {
		b.clearUserState(ctx, userID)
		b.sendMessage(update.Message.Chat.ID, "Сценарий сброшен, начните сначала командой /work.")
		return
	}

	defer b.clearUserState(ctx, userID)

	session, err := b.sessionService.StartSession(ctx, userID, latitude, longitude, position)
	if err != nil {
		b.sendMessage(update.Message.Chat.ID,
			"Непредвиденная ошибка, убедитесь в правильности введённых данных или обратитесь к Администратору")
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Не удалось открыть смену")
		return
	}

	zerolog.Ctx(ctx).Info().Int64("user_id", userID).Msg("Работник запустил свой таймер (приступил к работе)")

	// Сообщение работнику запоминаем, чтобы удалить при завершении
	workerText := b.startWorkReport(ctx, "Вы начали работу!", session)
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, workerText)
	msg.ReplyMarkup = endsWorkKeyboard()
	sent, err := b.notifier.Send(msg)
	if err == nil {
		if err := b.sessionService.RememberPendingMessage(ctx, session.ID, sent.MessageID); err != nil {
			b.logger.Warn().Err(err).Int64("session_id", session.ID).Msg("Не удалось запомнить сообщение смены")
		}
	}

	b.notifyAdmins(
		b.startWorkReport(ctx, fmt.Sprintf("Пользователь @%s ID%d начал работу", update.Message.From.UserName, userID), session),
		sessionReportKeyboard(session.ID),
	)
}

func (b *Bot) handleEndWork(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID

	session, err := b.sessionService.FindOpenSessionByTelegramID(ctx, userID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Не удалось найти открытую смену")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}
	if session == nil {
		// Завершать нечего
		return
	}

	// Стартовое сообщение больше не актуально
	if session.PendingMessageID != nil {
		if err := b.tgService.DeleteMessage(userID, *session.PendingMessageID); err != nil {
			b.logger.Debug().Err(err).Int64("user_id", userID).Msg("Не удалось удалить старое сообщение")
		}
	}

	closed, err := b.sessionService.EndSession(ctx, session.WorkerID, time.Now().UTC())
	if err != nil {
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}
	if closed == nil {
		return
	}

	zerolog.Ctx(ctx).Info().Int64("user_id", userID).Msg("Работник остановил свой таймер (завершил работу)")

	report := b.sessionReport(ctx, "Смена завершена!", closed)
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, report)
	msg.ReplyMarkup = b.workerMenu(userID)
	sent, sendErr := b.notifier.Send(msg)

	// Пока ставка не задана, отчет работника остается "живым": админ
	// может изменить ставку, и бот перешлет свежий расчет
	if sendErr == nil && closed.HourRateKopecks == nil {
		if err := b.sessionService.RememberPendingMessage(ctx, closed.ID, sent.MessageID); err != nil {
			b.logger.Warn().Err(err).Int64("session_id", closed.ID).Msg("Не удалось запомнить сообщение смены")
		}
	}

	b.notifyAdmins(
		b.sessionReport(ctx, fmt.Sprintf("Отчёт за пользователя @%s ID%d", update.Message.From.UserName, userID), closed),
		editSessionKeyboard(closed.ID),
	)
}

// notifyAdmins рассылает текст всем админам с inline-клавиатурой
// управления сессией.
func (b *Bot) notifyAdmins(text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	for _, adminID := range b.config.Admins {
		msg := tgbotapi.NewMessage(adminID, text)
		msg.ReplyMarkup = keyboard
		if _, err := b.notifier.Send(msg); err != nil {
			b.logger.Error().Err(err).Int64("admin_id", adminID).Msg("Не удалось отправить отчёт администратору")
		}
	}
}
