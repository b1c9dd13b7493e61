package bot

import (
	"errors"

	"smena/internal/database"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, database.ErrSessionConflict) {
		return "⚠️ У вас уже есть открытая смена. Завершите её, прежде чем начинать новую."
	}

	if errors.Is(err, database.ErrPositionTooLong) {
		return "⚠️ Текст не должен превышать 255 символов. Повторите попытку:"
	}

	if errors.Is(err, database.ErrNotFound) {
		return "⚠️ Запись не найдена. Возможно, она была удалена."
	}

	// Default error message
	return "❌ Произошла ошибка при обработке вашего запроса. Пожалуйста, попробуйте позже или обратитесь к Администратору."
}
