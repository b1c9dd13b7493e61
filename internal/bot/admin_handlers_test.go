package bot

import (
	"context"
	"fmt"
	"testing"

	"smena/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startSession прогоняет полный сценарий старта смены за работника.
func (tb *testBot) startSession(t *testing.T, workerID int64, position string) *models.WorkSession {
	t.Helper()
	ctx := context.Background()

	tb.bot.processUpdate(ctx, messageUpdate(workerID, ButtonStartWork))
	tb.bot.processUpdate(ctx, locationUpdate(workerID, 55.75, 37.61))
	tb.bot.processUpdate(ctx, messageUpdate(workerID, position))

	session, err := tb.bot.sessionService.FindOpenSessionByTelegramID(ctx, workerID)
	require.NoError(t, err)
	require.NotNil(t, session)
	return session
}

func TestAdminPanelButton(t *testing.T) {
	tb := newTestBot(t)

	tb.bot.processUpdate(context.Background(), messageUpdate(testAdminID, ButtonAdminPanel))

	texts := tb.sender.texts()
	require.NotEmpty(t, texts)
	assert.Equal(t, ButtonAdminPanel, texts[len(texts)-1])
}

func TestSessionInfoCallback(t *testing.T) {
	tb := newTestBot(t)
	session := tb.startSession(t, testWorkerID, "Грузчик")

	tb.bot.processUpdate(context.Background(), callbackUpdate(testAdminID, fmt.Sprintf("session_info:%d", session.ID)))

	// Карточка правит сообщение панели
	var edited *tgbotapi.EditMessageTextConfig
	for _, c := range tb.sender.sent {
		if e, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			edited = &e
		}
	}
	require.NotNil(t, edited)
	assert.Contains(t, edited.Text, "Информация о сессии:")
	assert.Contains(t, edited.Text, "Грузчик")
	assert.Contains(t, edited.Text, "Тестовый адрес")
}

func TestChangeRateFlow(t *testing.T) {
	tb := newTestBot(t)
	ctx := context.Background()
	session := tb.startSession(t, testWorkerID, "Грузчик")

	tb.bot.processUpdate(ctx, callbackUpdate(testAdminID, fmt.Sprintf("change_rate:%d", session.ID)))

	state := tb.bot.getUserState(ctx, testAdminID)
	require.NotNil(t, state)
	assert.Equal(t, models.StateAwaitRate, state.CurrentStep)

	// Ставка вводится в рублях, хранится в копейках
	tb.bot.processUpdate(ctx, messageUpdate(testAdminID, "250.50"))

	updated, err := tb.bot.sessionService.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.HourRateKopecks)
	assert.Equal(t, int64(25050), *updated.HourRateKopecks)

	texts := tb.sender.texts()
	assert.Contains(t, texts[len(texts)-2], "Ваша ставка изменилась")
	assert.Contains(t, texts[len(texts)-1], "успешно изменена")
	assert.Nil(t, tb.bot.getUserState(ctx, testAdminID))
}

func TestChangeRateInvalidInput(t *testing.T) {
	tb := newTestBot(t)
	ctx := context.Background()
	session := tb.startSession(t, testWorkerID, "Грузчик")

	tb.bot.processUpdate(ctx, callbackUpdate(testAdminID, fmt.Sprintf("change_rate:%d", session.ID)))
	tb.bot.processUpdate(ctx, messageUpdate(testAdminID, "не число"))

	texts := tb.sender.texts()
	assert.Contains(t, texts[len(texts)-1], "Некорректный формат ставки")

	// Состояние сохраняется для повторного ввода
	state := tb.bot.getUserState(ctx, testAdminID)
	require.NotNil(t, state)
	assert.Equal(t, models.StateAwaitRate, state.CurrentStep)
}

func TestEditStartTimeFlow(t *testing.T) {
	tb := newTestBot(t)
	ctx := context.Background()
	session := tb.startSession(t, testWorkerID, "Грузчик")

	tb.bot.processUpdate(ctx, callbackUpdate(testAdminID, fmt.Sprintf("edit_start_time:%d", session.ID)))
	tb.bot.processUpdate(ctx, messageUpdate(testAdminID, "2025-06-01 08:00"))

	updated, err := tb.bot.sessionService.GetSession(ctx, session.ID)
	require.NoError(t, err)
	// Местное время (UTC+3) хранится как UTC
	assert.Equal(t, "2025-06-01 05:00", updated.CreatedAt.UTC().Format("2006-01-02 15:04"))

	texts := tb.sender.texts()
	assert.Contains(t, texts[len(texts)-1], "Время начала сессии успешно изменено.")
}

func TestEditTimeInvalidFormat(t *testing.T) {
	tb := newTestBot(t)
	ctx := context.Background()
	session := tb.startSession(t, testWorkerID, "Грузчик")

	tb.bot.processUpdate(ctx, callbackUpdate(testAdminID, fmt.Sprintf("edit_end_time:%d", session.ID)))
	tb.bot.processUpdate(ctx, messageUpdate(testAdminID, "01.06.2025"))

	texts := tb.sender.texts()
	assert.Contains(t, texts[len(texts)-1], "Некорректный формат времени")
}

func TestEndSessionByAdmin(t *testing.T) {
	tb := newTestBot(t)
	ctx := context.Background()
	session := tb.startSession(t, testWorkerID, "Грузчик")

	tb.bot.processUpdate(ctx, callbackUpdate(testAdminID, fmt.Sprintf("end_session:%d", session.ID)))

	open, err := tb.bot.sessionService.FindOpenSessionByTelegramID(ctx, testWorkerID)
	require.NoError(t, err)
	assert.Nil(t, open)

	texts := tb.sender.texts()
	assert.Contains(t, texts[len(texts)-2], "Сессия успешно остановлена.")
	assert.Contains(t, texts[len(texts)-1], "Вашу смену завершил администратор!")
}

func TestDeleteSessionByAdmin(t *testing.T) {
	tb := newTestBot(t)
	ctx := context.Background()
	session := tb.startSession(t, testWorkerID, "Грузчик")

	tb.bot.processUpdate(ctx, callbackUpdate(testAdminID, fmt.Sprintf("delete_session:%d", session.ID)))

	_, err := tb.bot.sessionService.GetSession(ctx, session.ID)
	assert.Error(t, err)

	texts := tb.sender.texts()
	assert.Contains(t, texts[len(texts)-1], "Сессия успешно удалена.")
}

func TestWorkersListCallback(t *testing.T) {
	tb := newTestBot(t)
	ctx := context.Background()
	tb.startSession(t, testWorkerID, "Грузчик")

	tb.bot.processUpdate(ctx, callbackUpdate(testAdminID, "workers_management"))

	var edited *tgbotapi.EditMessageTextConfig
	for _, c := range tb.sender.sent {
		if e, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			edited = &e
		}
	}
	require.NotNil(t, edited)
	assert.Equal(t, "Список пользователей:", edited.Text)
	require.NotNil(t, edited.ReplyMarkup)
	// Кнопка работника + кнопка поиска
	assert.Len(t, edited.ReplyMarkup.InlineKeyboard, 2)
}

func TestSearchWorkerFlow(t *testing.T) {
	tb := newTestBot(t)
	ctx := context.Background()
	tb.startSession(t, testWorkerID, "Грузчик")

	tb.bot.processUpdate(ctx, callbackUpdate(testAdminID, "search_user"))
	tb.bot.processUpdate(ctx, messageUpdate(testAdminID, fmt.Sprintf("%d", testWorkerID)))

	texts := tb.sender.texts()
	assert.Contains(t, texts[len(texts)-1], "Информация о пользователе:")

	tb.bot.processUpdate(ctx, callbackUpdate(testAdminID, "search_user"))
	tb.bot.processUpdate(ctx, messageUpdate(testAdminID, "424242"))

	texts = tb.sender.texts()
	assert.Contains(t, texts[len(texts)-1], "не найден")
}
