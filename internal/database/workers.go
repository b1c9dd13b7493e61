package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"smena/internal/models"
)

// GetOrCreateWorker возвращает работника по Telegram ID, создавая запись
// при первом обращении. Идемпотентен.
func (db *DB) GetOrCreateWorker(ctx context.Context, telegramID int64) (*models.Worker, error) {
	worker, err := db.GetWorkerByTelegramID(ctx, telegramID)
	if err == nil {
		return worker, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	query := `INSERT INTO workers (telegram_id, created_at) VALUES (?, ?)
              ON CONFLICT(telegram_id) DO NOTHING`
	if _, err := db.ExecContext(ctx, query, telegramID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to create worker: %w", err)
	}

	// Перечитываем: при гонке вставок запись мог успеть создать другой вызов
	return db.GetWorkerByTelegramID(ctx, telegramID)
}

func (db *DB) GetWorkerByTelegramID(ctx context.Context, telegramID int64) (*models.Worker, error) {
	query := `SELECT id, telegram_id, created_at FROM workers WHERE telegram_id = ?`
	return db.queryWorker(ctx, query, telegramID)
}

func (db *DB) GetWorkerByID(ctx context.Context, id int64) (*models.Worker, error) {
	query := `SELECT id, telegram_id, created_at FROM workers WHERE id = ?`
	return db.queryWorker(ctx, query, id)
}

func (db *DB) queryWorker(ctx context.Context, query string, args ...interface{}) (*models.Worker, error) {
	var worker models.Worker
	err := db.QueryRowContext(ctx, query, args...).Scan(&worker.ID, &worker.TelegramID, &worker.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	return &worker, nil
}

// ListWorkers возвращает работников, отсортированных по Telegram ID.
// page нумеруется с 1; page <= 0 отключает пагинацию.
func (db *DB) ListWorkers(ctx context.Context, page, perPage int) ([]*models.Worker, error) {
	query := `SELECT id, telegram_id, created_at FROM workers ORDER BY telegram_id ASC`
	args := []interface{}{}
	if page > 0 && perPage > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, perPage, (page-1)*perPage)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	defer rows.Close()

	var workers []*models.Worker
	for rows.Next() {
		w := &models.Worker{}
		if err := rows.Scan(&w.ID, &w.TelegramID, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		workers = append(workers, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workers: %w", err)
	}
	return workers, nil
}

func (db *DB) CountWorkers(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workers`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count workers: %w", err)
	}
	return count, nil
}
