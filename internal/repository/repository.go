package repository

import (
	"context"

	"github.com/shopsmith/storefront/internal/domain"
)

// CartRepository defines the interface for session-scoped cart persistence.
// Implementations store the full item list as a single entry per session;
// there is no partial update.
type CartRepository interface {
	// Load retrieves the persisted item list for a session. Returns
	// pkg/errors.ErrNotFound (wrapped) when no entry exists.
	Load(ctx context.Context, sessionID string) ([]domain.CartItem, error)

	// Save persists the full item list for a session, overwriting any
	// existing entry.
	Save(ctx context.Context, sessionID string, items []domain.CartItem) error

	// Delete removes the session's cart entry.
	Delete(ctx context.Context, sessionID string) error
}
