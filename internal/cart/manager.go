package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopsmith/storefront/internal/event"
	"github.com/shopsmith/storefront/internal/repository"
)

// Manager hands out the per-session cart Store, constructing it (and loading
// persisted state) on first use. A session's store is created exactly once,
// so mid-session reads always hit the in-memory state, never storage.
type Manager struct {
	repo     repository.CartRepository
	producer *event.Producer
	logger   *slog.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

// NewManager creates a new cart store manager.
func NewManager(repo repository.CartRepository, producer *event.Producer, logger *slog.Logger) *Manager {
	return &Manager{
		repo:     repo,
		producer: producer,
		logger:   logger,
		stores:   make(map[string]*Store),
	}
}

// Get returns the cart store for a session, creating it on first use.
func (m *Manager) Get(ctx context.Context, sessionID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[sessionID]; ok {
		return s
	}

	s := NewStore(ctx, sessionID, m.repo, m.producer, m.logger)
	m.stores[sessionID] = s
	return s
}

// Evict drops a session's store from the manager. The persisted entry is left
// alone; a later Get reloads it.
func (m *Manager) Evict(sessionID string) {
	m.mu.Lock()
	delete(m.stores, sessionID)
	m.mu.Unlock()
}
