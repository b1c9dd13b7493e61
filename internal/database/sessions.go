package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"smena/internal/models"
)

const sessionColumns = `s.id, s.worker_id, s.created_at, s.ended_at,
	s.latitude, s.longitude, s.position, s.hour_rate_kopecks,
	s.pending_message_id, w.telegram_id`

const sessionSelect = `SELECT ` + sessionColumns + `
	FROM work_sessions s JOIN workers w ON w.id = s.worker_id`

// FindOpenSession возвращает открытую сессию работника или ErrNotFound.
// Инвариант "не больше одной открытой сессии" гарантирует единственность.
func (db *DB) FindOpenSession(ctx context.Context, workerID int64) (*models.WorkSession, error) {
	query := sessionSelect + ` WHERE s.worker_id = ? AND s.ended_at IS NULL`
	return db.querySession(ctx, query, workerID)
}

func (db *DB) GetSessionByID(ctx context.Context, id int64) (*models.WorkSession, error) {
	query := sessionSelect + ` WHERE s.id = ?`
	return db.querySession(ctx, query, id)
}

func (db *DB) querySession(ctx context.Context, query string, args ...interface{}) (*models.WorkSession, error) {
	row := db.QueryRowContext(ctx, query, args...)
	session, err := scanSession(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

func scanSession(scan func(dest ...interface{}) error) (*models.WorkSession, error) {
	var (
		s        models.WorkSession
		endedAt  sql.NullTime
		rate     sql.NullInt64
		pendingM sql.NullInt64
	)
	err := scan(&s.ID, &s.WorkerID, &s.CreatedAt, &endedAt,
		&s.Latitude, &s.Longitude, &s.Position, &rate,
		&pendingM, &s.WorkerTelegramID)
	if err != nil {
		return nil, err
	}

	s.CreatedAt = s.CreatedAt.UTC()
	if endedAt.Valid {
		t := endedAt.Time.UTC()
		s.EndedAt = &t
	}
	if rate.Valid {
		v := rate.Int64
		s.HourRateKopecks = &v
	}
	if pendingM.Valid {
		v := int(pendingM.Int64)
		s.PendingMessageID = &v
	}
	return &s, nil
}

// CreateSession открывает новую сессию работника. Если открытая сессия уже
// есть, возвращает её без изменений (идемпотентное создание, не ошибка).
// Гонку двух одновременных созданий разрешает частичный уникальный индекс:
// проигравший перечитывает выигравшую запись.
func (db *DB) CreateSession(ctx context.Context, workerID int64, latitude, longitude float64, position string) (*models.WorkSession, error) {
	if utf8.RuneCountInString(position) > models.MaxPositionLength {
		return nil, ErrPositionTooLong
	}

	if existing, err := db.FindOpenSession(ctx, workerID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	query := `INSERT INTO work_sessions
	              (worker_id, created_at, latitude, longitude, position)
	          VALUES (?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, workerID, time.Now().UTC(), latitude, longitude, position)
	if isUniqueViolation(err) {
		// Проиграли гонку: сессию только что открыл параллельный вызов
		if existing, findErr := db.FindOpenSession(ctx, workerID); findErr == nil {
			return existing, nil
		}
		return nil, ErrSessionConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return db.GetSessionByID(ctx, id)
}

// CloseSession завершает открытую сессию работника. Без открытой сессии — no-op.
func (db *DB) CloseSession(ctx context.Context, workerID int64, endedAt time.Time) error {
	query := `UPDATE work_sessions SET ended_at = ?
	          WHERE worker_id = ? AND ended_at IS NULL`
	if _, err := db.ExecContext(ctx, query, endedAt.UTC(), workerID); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}

func (db *DB) UpdateSessionRate(ctx context.Context, sessionID, rateKopecks int64) error {
	return db.updateSession(ctx, `UPDATE work_sessions SET hour_rate_kopecks = ? WHERE id = ?`, rateKopecks, sessionID)
}

func (db *DB) UpdateSessionStartTime(ctx context.Context, sessionID int64, ts time.Time) error {
	return db.updateSession(ctx, `UPDATE work_sessions SET created_at = ? WHERE id = ?`, ts.UTC(), sessionID)
}

func (db *DB) UpdateSessionEndTime(ctx context.Context, sessionID int64, ts time.Time) error {
	return db.updateSession(ctx, `UPDATE work_sessions SET ended_at = ? WHERE id = ?`, ts.UTC(), sessionID)
}

func (db *DB) SetPendingMessageID(ctx context.Context, sessionID int64, messageID int) error {
	return db.updateSession(ctx, `UPDATE work_sessions SET pending_message_id = ? WHERE id = ?`, messageID, sessionID)
}

func (db *DB) ClearPendingMessageID(ctx context.Context, sessionID int64) error {
	return db.updateSession(ctx, `UPDATE work_sessions SET pending_message_id = NULL WHERE id = ?`, sessionID)
}

func (db *DB) updateSession(ctx context.Context, query string, args ...interface{}) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSession удаляет сессию безвозвратно. Работник остаётся.
func (db *DB) DeleteSession(ctx context.Context, sessionID int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM work_sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSessionsForWorker возвращает сессии работника, новые первыми.
// page нумеруется с 1; page <= 0 отключает пагинацию.
func (db *DB) ListSessionsForWorker(ctx context.Context, workerID int64, page, perPage int) ([]*models.WorkSession, error) {
	query := sessionSelect + ` WHERE s.worker_id = ? ORDER BY s.created_at DESC`
	args := []interface{}{workerID}
	if page > 0 && perPage > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, perPage, (page-1)*perPage)
	}
	return db.querySessions(ctx, query, args...)
}

// ListAllSessions возвращает все сессии, новые первыми.
func (db *DB) ListAllSessions(ctx context.Context, page, perPage int) ([]*models.WorkSession, error) {
	query := sessionSelect + ` ORDER BY s.created_at DESC`
	args := []interface{}{}
	if page > 0 && perPage > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, perPage, (page-1)*perPage)
	}
	return db.querySessions(ctx, query, args...)
}

func (db *DB) querySessions(ctx context.Context, query string, args ...interface{}) ([]*models.WorkSession, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.WorkSession
	for rows.Next() {
		s, err := scanSession(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

func (db *DB) CountSessionsForWorker(ctx context.Context, workerID int64) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM work_sessions WHERE worker_id = ?`, workerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

func (db *DB) CountAllSessions(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM work_sessions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}
