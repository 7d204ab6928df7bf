package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/shopsmith/storefront/internal/domain"
	"github.com/shopsmith/storefront/internal/event"
	"github.com/shopsmith/storefront/internal/repository"
	apperrors "github.com/shopsmith/storefront/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single cart item.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct items allowed in a cart.
	MaxItemsPerCart = 50
)

// Store is the single source of truth for one browsing session's cart
// contents and aggregates. Persisted storage is read once at construction and
// written as a side effect of every recompute; no other component touches it
// mid-session.
type Store struct {
	sessionID string
	repo      repository.CartRepository
	producer  *event.Producer
	logger    *slog.Logger

	mu     sync.Mutex
	items  []domain.CartItem
	totals domain.CartTotals

	priceFeed    *Feed[decimal.Decimal]
	quantityFeed *Feed[int]
}

// NewStore constructs a session cart, loading the persisted item list. Missing
// or malformed stored data falls back to an empty cart; that failure is
// recovered locally and never surfaced to the caller.
func NewStore(ctx context.Context, sessionID string, repo repository.CartRepository, producer *event.Producer, logger *slog.Logger) *Store {
	items, err := repo.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.WarnContext(ctx, "discarding unreadable persisted cart",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		items = []domain.CartItem{}
	}

	s := &Store{
		sessionID:    sessionID,
		repo:         repo,
		producer:     producer,
		logger:       logger,
		items:        items,
		totals:       domain.ComputeTotals(items),
		priceFeed:    NewFeed(decimal.Zero),
		quantityFeed: NewFeed(0),
	}
	s.priceFeed.Publish(s.totals.Price)
	s.quantityFeed.Publish(s.totals.Quantity)
	return s
}

// SessionID returns the owning browsing-session ID.
func (s *Store) SessionID() string {
	return s.sessionID
}

// TotalPrice exposes the aggregate price stream. New subscribers immediately
// receive the current total.
func (s *Store) TotalPrice() *Feed[decimal.Decimal] {
	return s.priceFeed
}

// TotalQuantity exposes the aggregate quantity stream.
func (s *Store) TotalQuantity() *Feed[int] {
	return s.quantityFeed
}

// Snapshot returns a value copy of the current items and totals for use by
// the checkout orchestrator. Mutating the returned slice does not affect the
// store.
func (s *Store) Snapshot() ([]domain.CartItem, domain.CartTotals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.CartItem, len(s.items))
	copy(items, s.items)
	return items, s.totals
}

// AddItem adds an item to the cart. An item with the same identity merges by
// incrementing its quantity by 1; otherwise the item is appended with its
// initial quantity.
func (s *Store) AddItem(ctx context.Context, item domain.CartItem) error {
	if item.ID == "" {
		return apperrors.InvalidInput("item id is required")
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if item.UnitPrice.IsNegative() {
		return apperrors.InvalidInput("unit price must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := domain.FindItemIndex(s.items, item.ID); idx >= 0 {
		if s.items[idx].Quantity >= MaxQuantityPerItem {
			return apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
		}
		s.items[idx].Quantity++
	} else {
		if len(s.items) >= MaxItemsPerCart {
			return apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
		}
		s.items = append(s.items, item)
	}

	s.recomputeTotals(ctx)

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", s.sessionID),
		slog.String("item_id", item.ID),
	)

	return nil
}

// DecrementItem decreases an item's quantity by 1. Reaching zero removes the
// row entirely; a zero-quantity line never remains in the cart.
func (s *Store) DecrementItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := domain.FindItemIndex(s.items, id)
	if idx < 0 {
		return apperrors.NotFound("cart item", id)
	}

	s.items[idx].Quantity--
	if s.items[idx].Quantity == 0 {
		s.items = append(s.items[:idx], s.items[idx+1:]...)
	}

	s.recomputeTotals(ctx)
	return nil
}

// RemoveItem removes the item with the given ID. Absent items are a no-op:
// no recompute, no notification.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := domain.FindItemIndex(s.items, id)
	if idx < 0 {
		return
	}

	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.recomputeTotals(ctx)
}

// Reset clears all items and zeroes both aggregates. Called by the checkout
// orchestrator only after the gateway has confirmed the order.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	s.items = []domain.CartItem{}
	s.totals = domain.ZeroTotals()
	s.priceFeed.Publish(s.totals.Price)
	s.quantityFeed.Publish(s.totals.Quantity)

	if err := s.repo.Delete(ctx, s.sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete persisted cart",
			slog.String("session_id", s.sessionID),
			slog.String("error", err.Error()),
		)
	}
	s.mu.Unlock()

	if s.producer != nil {
		if err := s.producer.PublishCartCleared(ctx, s.sessionID); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
				slog.String("session_id", s.sessionID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "cart reset",
		slog.String("session_id", s.sessionID),
	)
}

// recomputeTotals is the single path that updates and broadcasts aggregates.
// It rescans the full item list, persists it, and notifies observers in a
// fixed order (price, then quantity). Persistence and event-publish failures
// are logged, never propagated; the in-memory state is authoritative for the
// rest of the session. Callers must hold s.mu.
func (s *Store) recomputeTotals(ctx context.Context) {
	s.totals = domain.ComputeTotals(s.items)

	if s.logger.Enabled(ctx, slog.LevelDebug) {
		for _, item := range s.items {
			s.logger.DebugContext(ctx, "cart line",
				slog.String("name", item.Name),
				slog.Int("quantity", item.Quantity),
				slog.String("unit_price", item.UnitPrice.StringFixed(2)),
				slog.String("subtotal", item.Subtotal().StringFixed(2)),
			)
		}
		s.logger.DebugContext(ctx, "cart totals",
			slog.String("total_price", s.totals.Price.StringFixed(2)),
			slog.Int("total_quantity", s.totals.Quantity),
		)
	}

	if err := s.repo.Save(ctx, s.sessionID, s.items); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist cart",
			slog.String("session_id", s.sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.priceFeed.Publish(s.totals.Price)
	s.quantityFeed.Publish(s.totals.Quantity)

	if s.producer != nil {
		if err := s.producer.PublishCartUpdated(ctx, s.sessionID, s.items, s.totals); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
				slog.String("session_id", s.sessionID),
				slog.String("error", err.Error()),
			)
		}
	}
}
