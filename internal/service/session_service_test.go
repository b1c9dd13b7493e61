package service

import (
	"context"
	"io"
	"testing"
	"time"

	"smena/internal/database"
	"smena/internal/events"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSessionService(t *testing.T) (*SessionWorkService, *events.EventBus) {
	t.Helper()

	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	bus := events.NewEventBus()
	return NewSessionWorkService(db, bus, &logger), bus
}

func TestStartSession(t *testing.T) {
	svc, bus := setupSessionService(t)
	ctx := context.Background()

	var published []string
	bus.Subscribe(events.EventSessionStarted, func(e *events.Event) error {
		published = append(published, e.Type)
		return nil
	})

	session, err := svc.StartSession(ctx, 100500, 55.75, 37.61, "Грузчик")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.False(t, session.IsEnded())
	assert.Equal(t, "Грузчик", session.Position)
	assert.Equal(t, []string{events.EventSessionStarted}, published)

	// Повторный старт не создает вторую смену
	again, err := svc.StartSession(ctx, 100500, 1, 1, "Другое")
	require.NoError(t, err)
	assert.Equal(t, session.ID, again.ID)
	assert.Len(t, published, 1)
}

func TestEndSession(t *testing.T) {
	svc, bus := setupSessionService(t)
	ctx := context.Background()

	var ended int
	bus.Subscribe(events.EventSessionEnded, func(e *events.Event) error {
		ended++
		return nil
	})

	session, err := svc.StartSession(ctx, 100500, 55.75, 37.61, "Грузчик")
	require.NoError(t, err)

	endedAt := time.Now().UTC().Add(time.Hour)
	closed, err := svc.EndSession(ctx, session.WorkerID, endedAt)
	require.NoError(t, err)
	require.NotNil(t, closed)
	assert.True(t, closed.IsEnded())
	assert.Equal(t, 1, ended)

	// Открытой смены больше нет
	open, err := svc.FindOpenSessionByTelegramID(ctx, 100500)
	require.NoError(t, err)
	assert.Nil(t, open)

	// Повторное завершение — no-op
	closed, err = svc.EndSession(ctx, session.WorkerID, endedAt)
	require.NoError(t, err)
	assert.Nil(t, closed)
	assert.Equal(t, 1, ended)
}

func TestSetRate(t *testing.T) {
	svc, bus := setupSessionService(t)
	ctx := context.Background()

	var rateEvents int
	bus.Subscribe(events.EventRateChanged, func(e *events.Event) error {
		rateEvents++
		return nil
	})

	session, err := svc.StartSession(ctx, 200, 0, 0, "Кассир")
	require.NoError(t, err)

	updated, err := svc.SetRate(ctx, session.ID, 25050)
	require.NoError(t, err)
	require.NotNil(t, updated.HourRateKopecks)
	assert.Equal(t, int64(25050), *updated.HourRateKopecks)
	assert.Equal(t, 1, rateEvents)
}

func TestSetRateNotFound(t *testing.T) {
	svc, _ := setupSessionService(t)

	_, err := svc.SetRate(context.Background(), 999, 10000)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestEditTimes(t *testing.T) {
	svc, _ := setupSessionService(t)
	ctx := context.Background()

	session, err := svc.StartSession(ctx, 300, 0, 0, "Охранник")
	require.NoError(t, err)

	start := time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 1, 13, 30, 0, 0, time.UTC)

	require.NoError(t, svc.EditStartTime(ctx, session.ID, start))
	require.NoError(t, svc.EditEndTime(ctx, session.ID, end))

	got, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(start))
	require.NotNil(t, got.EndedAt)
	assert.True(t, got.EndedAt.Equal(end))
}

func TestDeleteSession(t *testing.T) {
	svc, _ := setupSessionService(t)
	ctx := context.Background()

	session, err := svc.StartSession(ctx, 400, 0, 0, "Повар")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(ctx, session.ID))

	_, err = svc.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteSession(ctx, session.ID), database.ErrNotFound)
}

func TestEndSessionWithoutOpen(t *testing.T) {
	svc, bus := setupSessionService(t)
	ctx := context.Background()

	var ended int
	bus.Subscribe(events.EventSessionEnded, func(e *events.Event) error {
		ended++
		return nil
	})

	// Работник зарегистрирован, но смен не открывал
	worker, err := svc.store.GetOrCreateWorker(ctx, 100500)
	require.NoError(t, err)

	closed, err := svc.EndSession(ctx, worker.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.Nil(t, closed)
	assert.Equal(t, 0, ended)

	// Отсутствие открытой смены не мешает открыть первую
	session, err := svc.StartSession(ctx, 100500, 55.75, 37.61, "Грузчик")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.False(t, session.IsEnded())
}

func TestFindOpenSessionUnknownWorker(t *testing.T) {
	svc, _ := setupSessionService(t)

	session, err := svc.FindOpenSessionByTelegramID(context.Background(), 77777)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestCounts(t *testing.T) {
	svc, _ := setupSessionService(t)
	ctx := context.Background()

	first, err := svc.StartSession(ctx, 500, 0, 0, "Первая")
	require.NoError(t, err)
	_, err = svc.EndSession(ctx, first.WorkerID, time.Now().UTC())
	require.NoError(t, err)
	_, err = svc.StartSession(ctx, 500, 0, 0, "Вторая")
	require.NoError(t, err)

	assert.Equal(t, 2, svc.CountAllSessions(ctx))
	assert.Equal(t, 2, svc.CountWorkerSessions(ctx, first.WorkerID))

	sessions, err := svc.ListWorkerSessions(ctx, first.WorkerID, 1, 15)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}
