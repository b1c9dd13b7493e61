package service

import (
	"context"
	"errors"
	"time"

	"smena/internal/database"
	"smena/internal/domain"
	"smena/internal/events"
	"smena/internal/models"

	"github.com/rs/zerolog"
)

// SessionWorkService — контроллер жизненного цикла смен. Все изменения
// сессий проходят через него, чтобы события и логи были единообразными.
type SessionWorkService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewSessionWorkService(store domain.Store, eventBus domain.EventPublisher, logger *zerolog.Logger) *SessionWorkService {
	return &SessionWorkService{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *SessionWorkService) publishEvent(eventType string, session *models.WorkSession, changedBy int64) {
	payload := events.SessionEventPayload{
		SessionID:        session.ID,
		WorkerID:         session.WorkerID,
		WorkerTelegramID: session.WorkerTelegramID,
		Position:         session.Position,
		StartedAt:        session.CreatedAt,
		EndedAt:          session.EndedAt,
		ChangedByID:      changedBy,
	}
	if session.HourRateKopecks != nil {
		payload.RateKopecks = *session.HourRateKopecks
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("Не удалось опубликовать событие")
	}
}

// StartSession открывает смену работника. Если открытая смена уже есть,
// она и возвращается — повторный старт не создает дубликат.
func (s *SessionWorkService) StartSession(ctx context.Context, telegramID int64, latitude, longitude float64, position string) (*models.WorkSession, error) {
	worker, err := s.store.GetOrCreateWorker(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	existing, err := s.findOpenSession(ctx, worker.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	session, err := s.store.CreateSession(ctx, worker.ID, latitude, longitude, position)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("session_id", session.ID).
		Int64("telegram_id", telegramID).
		Str("position", position).
		Msg("Смена начата")
	s.publishEvent(events.EventSessionStarted, session, telegramID)

	return session, nil
}

// EndSession закрывает открытую смену работника и возвращает ее срез
// для отчета. Если открытой смены нет, возвращается nil.
func (s *SessionWorkService) EndSession(ctx context.Context, workerID int64, endedAt time.Time) (*models.WorkSession, error) {
	session, err := s.findOpenSession(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	if err := s.store.CloseSession(ctx, workerID, endedAt); err != nil {
		return nil, err
	}

	session, err = s.store.GetSessionByID(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("session_id", session.ID).
		Int64("worker_id", workerID).
		Msg("Смена завершена")
	s.publishEvent(events.EventSessionEnded, session, session.WorkerTelegramID)

	return session, nil
}

// SetRate задает почасовую ставку смены в копейках.
func (s *SessionWorkService) SetRate(ctx context.Context, sessionID, rateKopecks int64) (*models.WorkSession, error) {
	if err := s.store.UpdateSessionRate(ctx, sessionID, rateKopecks); err != nil {
		return nil, err
	}

	session, err := s.store.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("session_id", sessionID).
		Int64("rate_kopecks", rateKopecks).
		Msg("Ставка смены изменена")
	s.publishEvent(events.EventRateChanged, session, 0)

	return session, nil
}

func (s *SessionWorkService) EditStartTime(ctx context.Context, sessionID int64, ts time.Time) error {
	if err := s.store.UpdateSessionStartTime(ctx, sessionID, ts); err != nil {
		return err
	}

	session, err := s.store.GetSessionByID(ctx, sessionID)
	if err == nil {
		s.publishEvent(events.EventSessionEdited, session, 0)
	}
	return nil
}

func (s *SessionWorkService) EditEndTime(ctx context.Context, sessionID int64, ts time.Time) error {
	if err := s.store.UpdateSessionEndTime(ctx, sessionID, ts); err != nil {
		return err
	}

	session, err := s.store.GetSessionByID(ctx, sessionID)
	if err == nil {
		s.publishEvent(events.EventSessionEdited, session, 0)
	}
	return nil
}

func (s *SessionWorkService) DeleteSession(ctx context.Context, sessionID int64) error {
	session, err := s.store.GetSessionByID(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return err
	}

	s.logger.Info().Int64("session_id", sessionID).Msg("Смена удалена")
	s.publishEvent(events.EventSessionDeleted, session, 0)
	return nil
}

func (s *SessionWorkService) GetSession(ctx context.Context, sessionID int64) (*models.WorkSession, error) {
	return s.store.GetSessionByID(ctx, sessionID)
}

// FindOpenSessionByTelegramID ищет открытую смену по telegram id работника.
// Нет работника — нет и смены, это не ошибка.
func (s *SessionWorkService) FindOpenSessionByTelegramID(ctx context.Context, telegramID int64) (*models.WorkSession, error) {
	worker, err := s.store.GetWorkerByTelegramID(ctx, telegramID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.findOpenSession(ctx, worker.ID)
}

// findOpenSession переводит ErrNotFound стора в nil: отсутствие
// открытой смены — штатное состояние, а не ошибка.
func (s *SessionWorkService) findOpenSession(ctx context.Context, workerID int64) (*models.WorkSession, error) {
	session, err := s.store.FindOpenSession(ctx, workerID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionWorkService) RememberPendingMessage(ctx context.Context, sessionID int64, messageID int) error {
	return s.store.SetPendingMessageID(ctx, sessionID, messageID)
}

func (s *SessionWorkService) ListAllSessions(ctx context.Context, page, perPage int) ([]*models.WorkSession, error) {
	return s.store.ListAllSessions(ctx, page, perPage)
}

func (s *SessionWorkService) ListWorkerSessions(ctx context.Context, workerID int64, page, perPage int) ([]*models.WorkSession, error) {
	return s.store.ListSessionsForWorker(ctx, workerID, page, perPage)
}

func (s *SessionWorkService) CountAllSessions(ctx context.Context) int {
	count, err := s.store.CountAllSessions(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Не удалось посчитать смены")
		return 0
	}
	return count
}

func (s *SessionWorkService) CountWorkerSessions(ctx context.Context, workerID int64) int {
	count, err := s.store.CountSessionsForWorker(ctx, workerID)
	if err != nil {
		s.logger.Error().Err(err).Int64("worker_id", workerID).Msg("Не удалось посчитать смены работника")
		return 0
	}
	return count
}
