package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"smena/internal/models"
	"smena/internal/worktime"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// handleRateInput сохраняет новую ставку сессии. Ввод в рублях,
// хранение в копейках.
func (b *Bot) handleRateInput(ctx context.Context, update tgbotapi.Update, state *models.UserState) {
	chatID := update.Message.Chat.ID

	rateRub, err := strconv.ParseFloat(strings.ReplaceAll(update.Message.Text, ",", "."), 64)
	if err != nil || rateRub < 0 {
		b.sendMessage(chatID, "Некорректный формат ставки. Пожалуйста, введите число.")
		return
	}

	sessionID, ok := state.GetInt64("session_id")
	if !ok {
		b.clearUserState(ctx, update.Message.From.ID)
		b.sendMessage(chatID, "Сессия не найдена.")
		return
	}

	rateKopecks := int64(rateRub * 100)
	session, err := b.sessionService.SetRate(ctx, sessionID, rateKopecks)
	if err != nil {
		b.clearUserState(ctx, update.Message.From.ID)
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.clearUserState(ctx, update.Message.From.ID)

	// Старый отчет работника устарел вместе с расчетом оплаты
	if session.PendingMessageID != nil {
		if err := b.tgService.DeleteMessage(session.WorkerTelegramID, *session.PendingMessageID); err != nil {
			b.logger.Debug().Err(err).Msg("Не удалось удалить старое сообщение")
		}
	}

	workerText := fmt.Sprintf("Ваша ставка изменилась, отправляю отчёт по сессии №%d\n%s",
		session.ID, b.sessionDetails(ctx, session))
	b.sendMessage(session.WorkerTelegramID, workerText)

	zerolog.Ctx(ctx).Info().
		Int64("admin_id", update.Message.From.ID).
		Int64("worker_telegram_id", session.WorkerTelegramID).
		Float64("rate_rub", rateRub).
		Msg("Администратор изменил ставку")

	b.sendWithKeyboard(chatID,
		fmt.Sprintf("Ставка пользователя %d успешно изменена на %.2f руб.", session.WorkerTelegramID, rateRub),
		b.workerMenu(update.Message.From.ID))
}

func (b *Bot) handleStartTimeInput(ctx context.Context, update tgbotapi.Update, state *models.UserState) {
	b.handleTimeInput(ctx, update, state, true)
}

func (b *Bot) handleEndTimeInput(ctx context.Context, update tgbotapi.Update, state *models.UserState) {
	b.handleTimeInput(ctx, update, state, false)
}

// handleTimeInput разбирает введенное местное время и двигает границу
// сессии. Обе границы обрабатываются одинаково, отличается только поле.
func (b *Bot) handleTimeInput(ctx context.Context, update tgbotapi.Update, state *models.UserState, isStart bool) {
	chatID := update.Message.Chat.ID

	ts, err := worktime.ParseLocal(strings.TrimSpace(update.Message.Text))
	if err != nil {
		b.sendMessage(chatID, "Некорректный формат времени. Используйте 'YYYY-MM-DD HH:MM'.")
		return
	}

	sessionID, ok := state.GetInt64("session_id")
	if !ok {
		b.clearUserState(ctx, update.Message.From.ID)
		b.sendMessage(chatID, "Сессия не найдена.")
		return
	}

	defer b.clearUserState(ctx, update.Message.From.ID)

	if isStart {
		err = b.sessionService.EditStartTime(ctx, sessionID, ts)
	} else {
		err = b.sessionService.EditEndTime(ctx, sessionID, ts)
	}
	if err != nil {
		b.sendMessage(chatID, "Ошибка при изменении времени")
		zerolog.Ctx(ctx).Error().Err(err).Int64("session_id", sessionID).Msg("Ошибка при изменении времени")
		return
	}

	if isStart {
		b.sendMessage(chatID, "Время начала сессии успешно изменено.")
	} else {
		b.sendMessage(chatID, "Время конца сессии успешно изменено.")
	}
	zerolog.Ctx(ctx).Info().
		Int64("admin_id", update.Message.From.ID).
		Int64("session_id", sessionID).
		Bool("start", isStart).
		Str("value", update.Message.Text).
		Msg("Администратор изменил время сессии")
}

// handleTelegramIDInput — поиск работника по telegram id.
func (b *Bot) handleTelegramIDInput(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID

	telegramID, err := strconv.ParseInt(strings.TrimSpace(update.Message.Text), 10, 64)
	if err != nil {
		b.sendMessage(chatID, "Некорректный telegram_id. Введите число")
		return
	}

	b.clearUserState(ctx, update.Message.From.ID)

	if _, err := b.workerService.GetWorkerByTelegramID(ctx, telegramID); err != nil {
		b.sendMessage(chatID, "Пользователь с таким telegram_id не найден")
		return
	}
	b.showWorkerInfo(ctx, chatID, telegramID)
}
