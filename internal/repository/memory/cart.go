package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shopsmith/storefront/internal/domain"
	apperrors "github.com/shopsmith/storefront/pkg/errors"
)

// CartRepository is an in-memory repository.CartRepository used in tests and
// development mode. It stores the serialized form so the JSON round-trip
// matches the Redis implementation.
type CartRepository struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewCartRepository creates an empty in-memory cart repository.
func NewCartRepository() *CartRepository {
	return &CartRepository{
		entries: make(map[string][]byte),
	}
}

// Load retrieves the persisted item list for a session.
func (r *CartRepository) Load(_ context.Context, sessionID string) ([]domain.CartItem, error) {
	r.mu.RLock()
	data, ok := r.entries[sessionID]
	r.mu.RUnlock()

	if !ok {
		return nil, apperrors.NotFound("cart", sessionID)
	}

	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart items: %w", err)
	}
	return items, nil
}

// Save persists the full item list for a session.
func (r *CartRepository) Save(_ context.Context, sessionID string, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart items: %w", err)
	}

	r.mu.Lock()
	r.entries[sessionID] = data
	r.mu.Unlock()
	return nil
}

// Delete removes the session's cart entry.
func (r *CartRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.entries, sessionID)
	r.mu.Unlock()
	return nil
}

// Corrupt overwrites a session's entry with non-JSON bytes. Test helper for
// exercising malformed-storage recovery.
func (r *CartRepository) Corrupt(sessionID string) {
	r.mu.Lock()
	r.entries[sessionID] = []byte("{not json")
	r.mu.Unlock()
}
