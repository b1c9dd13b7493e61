package database

import (
	"errors"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound запись не существует
	ErrNotFound = errors.New("record not found")

	// ErrSessionConflict у работника уже есть открытая сессия
	ErrSessionConflict = errors.New("worker already has an open session")

	// ErrPositionTooLong текст позиции превышает допустимую длину
	ErrPositionTooLong = errors.New("position text is too long")
)

// isUniqueViolation распознает нарушение уникального индекса sqlite.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	// Драйвер не всегда отдаёт типизированную ошибку из-под транзакций
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
