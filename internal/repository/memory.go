package repository

import (
	"context"
	"sync"
	"time"

	"smena/internal/models"
)

// MemoryStateRepository — резервное хранилище состояний на случай
// недоступности Redis. Состояния живут до перезапуска процесса.
type MemoryStateRepository struct {
	mu         sync.Mutex
	states     map[int64]*models.UserState
	rateLimits map[int64]*rateLimitEntry
	ttl        time.Duration
}

func NewMemoryStateRepository(ttl time.Duration) *MemoryStateRepository {
	return &MemoryStateRepository{
		states:     make(map[int64]*models.UserState),
		rateLimits: make(map[int64]*rateLimitEntry),
		ttl:        ttl,
	}
}

func (r *MemoryStateRepository) GetState(ctx context.Context, userID int64) (*models.UserState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[userID]
	if !ok {
		return nil, nil
	}
	return state, nil
}

func (r *MemoryStateRepository) SetState(ctx context.Context, state *models.UserState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state.UserID] = state
	return nil
}

func (r *MemoryStateRepository) ClearState(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, userID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryStateRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	entry, ok := r.rateLimits[userID]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
		r.rateLimits[userID] = entry
		return entry.count <= limit, nil
	}

	entry.count++
	return entry.count <= limit, nil
}
