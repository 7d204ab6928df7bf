package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopsmith/storefront/internal/checkout"
	"github.com/shopsmith/storefront/pkg/httputil"
	"github.com/shopsmith/storefront/pkg/validator"
)

// CheckoutHandler handles HTTP requests for checkout endpoints.
type CheckoutHandler struct {
	service *checkout.Service
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *checkout.Service, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// StartSessionRequest is the JSON request body for starting a checkout session.
type StartSessionRequest struct {
	// Email pre-fills the customer group from the shopper's stored address.
	Email string `json:"email" validate:"omitempty,email"`
}

// ToggleRequest is the JSON request body for the billing-same-as-shipping toggle.
type ToggleRequest struct {
	Enabled bool `json:"enabled"`
}

// StartSession handles POST /api/v1/checkout/session
func (h *CheckoutHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFromContext(r.Context())
	if !ok {
		writeBadRequest(w, "X-Session-ID header is required")
		return
	}

	var req StartSessionRequest
	if r.ContentLength > 0 {
		if err := validator.DecodeAndValidate(r, &req); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
	}

	session, err := h.service.StartSession(r.Context(), sessionID, req.Email)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: session})
}

// GetSession handles GET /api/v1/checkout/session
func (h *CheckoutHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFromContext(r.Context())
	if !ok {
		writeBadRequest(w, "X-Session-ID header is required")
		return
	}

	session, err := h.service.Session(sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// UpdateForm handles PUT /api/v1/checkout/form
func (h *CheckoutHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFromContext(r.Context())
	if !ok {
		writeBadRequest(w, "X-Session-ID header is required")
		return
	}

	var form checkout.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	session, err := h.service.UpdateForm(sessionID, form)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// ResolveRegions handles POST /api/v1/checkout/regions/{group}
func (h *CheckoutHandler) ResolveRegions(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFromContext(r.Context())
	if !ok {
		writeBadRequest(w, "X-Session-ID header is required")
		return
	}

	group := checkout.AddressGroup(chi.URLParam(r, "group"))
	session, err := h.service.ResolveRegions(r.Context(), sessionID, group)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// BillingSameAsShipping handles POST /api/v1/checkout/billing-same
func (h *CheckoutHandler) BillingSameAsShipping(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFromContext(r.Context())
	if !ok {
		writeBadRequest(w, "X-Session-ID header is required")
		return
	}

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	session, err := h.service.SetBillingSameAsShipping(sessionID, req.Enabled)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// Submit handles POST /api/v1/checkout/submit
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFromContext(r.Context())
	if !ok {
		writeBadRequest(w, "X-Session-ID header is required")
		return
	}

	resp, err := h.service.PlaceOrder(r.Context(), sessionID)
	if err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			httputil.WriteValidationError(w, err)
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resp})
}
