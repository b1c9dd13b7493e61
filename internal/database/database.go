package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		// Создаем директорию для БД, если её нет
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// busy_timeout: конкурирующие записи ждут блокировку, а не падают с SQLITE_BUSY
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Создаем таблицы
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	logger.Info().Str("path", path).Msg("База данных инициализирована")

	return &DB{DB: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Таблица работников
		`CREATE TABLE IF NOT EXISTS workers (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            telegram_id INTEGER UNIQUE NOT NULL,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		// Таблица рабочих сессий
		`CREATE TABLE IF NOT EXISTS work_sessions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            worker_id INTEGER NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
            created_at DATETIME NOT NULL,
            ended_at DATETIME,
            latitude REAL NOT NULL,
            longitude REAL NOT NULL,
            position TEXT NOT NULL,
            hour_rate_kopecks INTEGER,
            pending_message_id INTEGER
        )`,

		`CREATE INDEX IF NOT EXISTS idx_workers_telegram_id ON workers(telegram_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_worker_id ON work_sessions(worker_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON work_sessions(created_at)`,

		// Единственная открытая сессия на работника: гонку check-then-act
		// закрывает сама БД, проигравший получает constraint violation
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_single_open
            ON work_sessions(worker_id) WHERE ended_at IS NULL`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
