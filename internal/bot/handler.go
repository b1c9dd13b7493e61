package bot

import (
	"context"
	"strings"

	"smena/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	text := update.Message.Text
	l := zerolog.Ctx(ctx)

	l.Debug().
		Int64("user_id", userID).
		Str("username", update.Message.From.UserName).
		Str("text", text).
		Msg("Handling message")

	state := b.getUserState(ctx, userID)

	switch {
	case text == "/start" || text == ButtonCancel || strings.ToLower(text) == "сброс":
		b.clearUserState(ctx, userID)
		b.handleStart(ctx, update)

	case text == ButtonCancelAction:
		b.clearUserState(ctx, userID)
		b.sendMessage(update.Message.Chat.ID, "Действие отменено")

	case text == "/work":
		b.handleWorkToggle(ctx, update)

	case text == ButtonStartWork:
		b.handleStartWork(ctx, update)

	case text == ButtonEndWork:
		b.handleEndWork(ctx, update)

	case text == ButtonAdminPanel && b.isAdmin(userID):
		b.sendWithInlineKeyboard(update.Message.Chat.ID, ButtonAdminPanel, adminPanelKeyboard())

	case update.Message.Location != nil && state != nil && state.CurrentStep == models.StateAwaitGeolocation:
		b.handleGeolocation(ctx, update)

	case state != nil && state.CurrentStep == models.StateAwaitPosition:
		b.handlePositionInput(ctx, update, state)

	case state != nil && state.CurrentStep == models.StateAwaitRate && b.isAdmin(userID):
		b.handleRateInput(ctx, update, state)

	case state != nil && state.CurrentStep == models.StateAwaitStartTime && b.isAdmin(userID):
		b.handleStartTimeInput(ctx, update, state)

	case state != nil && state.CurrentStep == models.StateAwaitEndTime && b.isAdmin(userID):
		b.handleEndTimeInput(ctx, update, state)

	case state != nil && state.CurrentStep == models.StateAwaitTelegramID && b.isAdmin(userID):
		b.handleTelegramIDInput(ctx, update)

	default:
		// Незнакомый ввод вне сценария просто игнорируем, как и оригинальное меню
	}
}

func (b *Bot) handleStart(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	name := strings.TrimSpace(update.Message.From.FirstName + " " + update.Message.From.LastName)

	text := "Добро пожаловать, " + name + "!" +
		"\n\nНажмите на кнопку \"" + ButtonStartWork + "\" или введите команду /work для того, чтобы приступить к выполнению работы."
	b.sendWithKeyboard(update.Message.Chat.ID, text, b.workerMenu(userID))

	if b.isAdmin(userID) {
		b.sendMessage(update.Message.Chat.ID, "Вы авторизовались как Администратор")
	}

	if _, err := b.workerService.GetOrCreateWorker(ctx, userID); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Не удалось зарегистрировать работника")
	}
}

// Хелперы состояния. Ошибки пишутся в лог, сценарий не прерывают.

func (b *Bot) setUserState(ctx context.Context, userID int64, step string, tempData map[string]interface{}) {
	if err := b.stateService.SetUserState(ctx, userID, step, tempData); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Str("step", step).Msg("Не удалось сохранить состояние")
	}
}

func (b *Bot) getUserState(ctx context.Context, userID int64) *models.UserState {
	state, err := b.stateService.GetUserState(ctx, userID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Не удалось получить состояние")
		return nil
	}
	return state
}

func (b *Bot) clearUserState(ctx context.Context, userID int64) {
	if err := b.stateService.ClearUserState(ctx, userID); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Не удалось очистить состояние")
	}
}

// Хелперы отправки. Сообщения идут через notifier с повтором при флуд-контроле.

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.notifier.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Не удалось отправить сообщение")
	}
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := b.notifier.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Не удалось отправить сообщение")
	}
}

func (b *Bot) sendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := b.notifier.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Не удалось отправить сообщение")
	}
}
