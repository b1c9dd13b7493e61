package service

import (
	"context"

	"smena/internal/domain"
	"smena/internal/models"

	"github.com/rs/zerolog"
)

// WorkerAccountService отвечает за работников и проверку админских прав.
// Список админов фиксируется на старте из конфигурации.
type WorkerAccountService struct {
	store  domain.Store
	admins map[int64]struct{}
	logger *zerolog.Logger
}

func NewWorkerAccountService(store domain.Store, adminIDs []int64, logger *zerolog.Logger) *WorkerAccountService {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &WorkerAccountService{
		store:  store,
		admins: admins,
		logger: logger,
	}
}

func (s *WorkerAccountService) IsAdmin(telegramID int64) bool {
	_, ok := s.admins[telegramID]
	return ok
}

func (s *WorkerAccountService) GetOrCreateWorker(ctx context.Context, telegramID int64) (*models.Worker, error) {
	return s.store.GetOrCreateWorker(ctx, telegramID)
}

func (s *WorkerAccountService) GetWorkerByTelegramID(ctx context.Context, telegramID int64) (*models.Worker, error) {
	return s.store.GetWorkerByTelegramID(ctx, telegramID)
}

func (s *WorkerAccountService) ListWorkers(ctx context.Context, page, perPage int) ([]*models.Worker, error) {
	return s.store.ListWorkers(ctx, page, perPage)
}

func (s *WorkerAccountService) CountWorkers(ctx context.Context) int {
	count, err := s.store.CountWorkers(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Не удалось посчитать работников")
		return 0
	}
	return count
}
