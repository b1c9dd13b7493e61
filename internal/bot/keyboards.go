package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Тексты кнопок основного меню. Handler сравнивает с ними побуквенно,
// поэтому они вынесены в константы.
const (
	ButtonStartWork    = "Начать работу"
	ButtonEndWork      = "Завершить работу"
	ButtonSendLocation = "Отправить местоположение"
	ButtonCancel       = "Отменить"
	ButtonCancelAction = "Отменить действие"
	ButtonAdminPanel   = "Административная панель"
)

// workerMenu — главное меню работника. Админам добавляется кнопка панели.
func (b *Bot) workerMenu(userID int64) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		{tgbotapi.NewKeyboardButton(ButtonStartWork)},
	}
	if b.isAdmin(userID) {
		rows = append(rows, []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(ButtonAdminPanel)})
	}

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func endsWorkKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonEndWork)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func sendGeolocationKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonLocation(ButtonSendLocation)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonCancel)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func backActionKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonCancelAction)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func adminPanelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Управление работниками", "workers_management"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Управление сессиями", "sessions_management"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Выгрузка смен в Excel", "export_sessions"),
		),
	)
}

// editSessionKeyboard — полный набор действий над сессией для карточки
// session_info.
func editSessionKeyboard(sessionID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Изменить ставку работника", fmt.Sprintf("change_rate:%d", sessionID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Изменить время начала", fmt.Sprintf("edit_start_time:%d", sessionID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Изменить время конца", fmt.Sprintf("edit_end_time:%d", sessionID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Завершить сессию", fmt.Sprintf("end_session:%d", sessionID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Удалить сессию навсегда", fmt.Sprintf("delete_session:%d", sessionID)),
		),
	)
}

// sessionReportKeyboard прикладывается к отчетам, уходящим админам.
// Без правки времени конца: у активной сессии его еще нет.
func sessionReportKeyboard(sessionID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Изменить ставку работника", fmt.Sprintf("change_rate:%d", sessionID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Изменить время начала", fmt.Sprintf("edit_start_time:%d", sessionID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Завершить сессию", fmt.Sprintf("end_session:%d", sessionID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Удалить сессию навсегда", fmt.Sprintf("delete_session:%d", sessionID)),
		),
	)
}

func workerInfoKeyboard(telegramID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Сессии пользователя", fmt.Sprintf("user_sessions:%d", telegramID)),
		),
	)
}
