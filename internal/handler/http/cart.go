package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/shopsmith/storefront/internal/cart"
	"github.com/shopsmith/storefront/internal/domain"
	"github.com/shopsmith/storefront/pkg/httputil"
	"github.com/shopsmith/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	carts  *cart.Manager
	logger *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(carts *cart.Manager, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		carts:  carts,
		logger: logger,
	}
}

// AddItemRequest is the JSON request body for adding an item to the cart.
type AddItemRequest struct {
	ID        string          `json:"id" validate:"required"`
	Name      string          `json:"name" validate:"required,max=500"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity" validate:"gte=0,lte=100"`
	ImageURL  string          `json:"imageUrl"`
}

// CartResponse is the JSON representation of the cart contents and aggregates.
type CartResponse struct {
	Items         []domain.CartItem `json:"items"`
	TotalPrice    decimal.Decimal   `json:"totalPrice"`
	TotalQuantity int               `json:"totalQuantity"`
}

func cartResponseFrom(store *cart.Store) CartResponse {
	items, totals := store.Snapshot()
	return CartResponse{
		Items:         items,
		TotalPrice:    totals.Price,
		TotalQuantity: totals.Quantity,
	}
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFromContext(r.Context())
	if !ok {
		writeBadRequest(w, "X-Session-ID header is required")
		return
	}

	store := h.carts.Get(r.Context(), sessionID)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartResponseFrom(store)})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFromContext(r.Context())
	if !ok {
		writeBadRequest(w, "X-Session-ID header is required")
		return
	}

	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	store := h.carts.Get(r.Context(), sessionID)
	item := domain.CartItem{
		ID:        req.ID,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Quantity:  req.Quantity,
		ImageURL:  req.ImageURL,
	}
	if err := store.AddItem(r.Context(), item); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartResponseFrom(store)})
}

// DecrementItem handles POST /api/v1/cart/items/{id}/decrement
func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFromContext(r.Context())
	if !ok {
		writeBadRequest(w, "X-Session-ID header is required")
		return
	}

	itemID := chi.URLParam(r, "id")
	store := h.carts.Get(r.Context(), sessionID)
	if err := store.DecrementItem(r.Context(), itemID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartResponseFrom(store)})
}

// RemoveItem handles DELETE /api/v1/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFromContext(r.Context())
	if !ok {
		writeBadRequest(w, "X-Session-ID header is required")
		return
	}

	itemID := chi.URLParam(r, "id")
	store := h.carts.Get(r.Context(), sessionID)
	store.RemoveItem(r.Context(), itemID)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartResponseFrom(store)})
}

// writeBadRequest writes a 400 response with the standard envelope.
func writeBadRequest(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: message},
	})
}
