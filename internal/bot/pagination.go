package bot

import (
	"context"
	"fmt"

	"smena/internal/models"
	"smena/internal/worktime"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) pageSize() int {
	if b.config.Bot.PaginationSize > 0 {
		return b.config.Bot.PaginationSize
	}
	return models.DefaultPaginationSize
}

func maxPage(total, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// paginationRow строит кнопки Назад/Вперед. callbackFor отдает
// callback data для нужной страницы.
func paginationRow(page, totalPages int, callbackFor func(page int) string) []tgbotapi.InlineKeyboardButton {
	var row []tgbotapi.InlineKeyboardButton
	if page > 1 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("Назад", callbackFor(page-1)))
	}
	if page < totalPages {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("Вперед", callbackFor(page+1)))
	}
	return row
}

// renderList правит существующее сообщение панели. Если Telegram
// отказал в правке (сообщение устарело), отправляем новым.
func (b *Bot) renderList(ctx context.Context, callback *tgbotapi.CallbackQuery, title string, keyboard tgbotapi.InlineKeyboardMarkup) {
	if _, err := b.tgService.EditMessage(callback.Message.Chat.ID, callback.Message.MessageID, title, &keyboard); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("Не удалось отредактировать сообщение, отправляем новое")
		b.sendWithInlineKeyboard(callback.Message.Chat.ID, title, keyboard)
	}
}

// listWorkers выводит страницу списка работников: кнопка на карточку
// каждого плюс пагинация и поиск.
func (b *Bot) listWorkers(ctx context.Context, callback *tgbotapi.CallbackQuery, page int) {
	perPage := b.pageSize()

	workers, err := b.workerService.ListWorkers(ctx, page, perPage)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Ошибка при выводе списка пользователей")
		b.sendMessage(callback.Message.Chat.ID, "Произошла ошибка при выводе списка пользователей.")
		return
	}
	if len(workers) == 0 {
		b.sendMessage(callback.Message.Chat.ID, "Нет пользователей для отображения.")
		return
	}

	totalPages := maxPage(b.workerService.CountWorkers(ctx), perPage)

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, worker := range workers {
		sessionCount := b.sessionService.CountWorkerSessions(ctx, worker.ID)
		label := fmt.Sprintf("ID: %d | Сессий: %d", worker.TelegramID, sessionCount)
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("user:%d", worker.TelegramID)),
		})
	}

	if nav := paginationRow(page, totalPages, func(p int) string {
		return fmt.Sprintf("page:%d", p)
	}); len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("Поиск пользователя", "search_user"),
	})

	b.renderList(ctx, callback, "Список пользователей:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// listSessions выводит страницу списка сессий. workerID == 0 — общий
// список, иначе сессии конкретного работника.
func (b *Bot) listSessions(ctx context.Context, callback *tgbotapi.CallbackQuery, workerID int64, page int) {
	perPage := b.pageSize()

	var (
		sessions []*models.WorkSession
		total    int
		title    string
		err      error
	)
	if workerID == 0 {
		sessions, err = b.sessionService.ListAllSessions(ctx, page, perPage)
		total = b.sessionService.CountAllSessions(ctx)
		title = "Список сессий:"
	} else {
		sessions, err = b.sessionService.ListWorkerSessions(ctx, workerID, page, perPage)
		total = b.sessionService.CountWorkerSessions(ctx, workerID)
		title = "Сессии пользователя:"
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("worker_id", workerID).Msg("Ошибка при получении списка сессий")
		b.sendMessage(callback.Message.Chat.ID, "Произошла ошибка при выводе списка сессий.")
		return
	}
	if len(sessions) == 0 {
		b.sendMessage(callback.Message.Chat.ID, "Нет сессий для отображения.")
		return
	}

	totalPages := maxPage(total, perPage)

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, session := range sessions {
		label := fmt.Sprintf("Сессия от: %s", worktime.FormatLocal(session.CreatedAt))
		if workerID == 0 {
			label = fmt.Sprintf("ID%d | %s", session.WorkerTelegramID, label)
		}
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("session_info:%d", session.ID)),
		})
	}

	if nav := paginationRow(page, totalPages, func(p int) string {
		return fmt.Sprintf("sessions_page:%d:%d", workerID, p)
	}); len(nav) > 0 {
		rows = append(rows, nav)
	}

	b.renderList(ctx, callback, title, tgbotapi.NewInlineKeyboardMarkup(rows...))
}
