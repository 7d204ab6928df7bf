package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopsmith/storefront/internal/cart"
	"github.com/shopsmith/storefront/internal/domain"
	"github.com/shopsmith/storefront/internal/event"
	"github.com/shopsmith/storefront/internal/refdata"
	"github.com/shopsmith/storefront/internal/tokenizer"
	apperrors "github.com/shopsmith/storefront/pkg/errors"
	"github.com/shopsmith/storefront/pkg/validator"
)

// currency is the single pricing currency of the storefront.
const currency = "USD"

// currentMonth returns the 1-based current month; card expiry options start here.
func currentMonth() int {
	return int(time.Now().UTC().Month())
}

// OrderGateway is the checkout service's view of the order submission
// backend. *gateway.Client satisfies it.
type OrderGateway interface {
	PlaceOrder(ctx context.Context, purchase domain.Purchase, payment domain.PaymentInfo) (domain.PurchaseResponse, error)
	CreatePaymentIntent(ctx context.Context, payment domain.PaymentInfo) (string, error)
}

// Service drives a checkout attempt from validated form state to a placed
// order or a reported, retryable failure. It owns the transient purchase and
// payment data during a submission attempt only; cart data is read as a
// snapshot at submission time.
type Service struct {
	carts     *cart.Manager
	gateway   OrderGateway
	tokenizer tokenizer.Tokenizer
	refdata   refdata.Provider
	producer  *event.Producer
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewService creates a new checkout service.
func NewService(
	carts *cart.Manager,
	gw OrderGateway,
	tok tokenizer.Tokenizer,
	ref refdata.Provider,
	producer *event.Producer,
	logger *slog.Logger,
) *Service {
	return &Service{
		carts:     carts,
		gateway:   gw,
		tokenizer: tok,
		refdata:   ref,
		producer:  producer,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// StartSession creates (or recreates) the checkout session for a browsing
// session: a pristine form plus the reference option lists. A stored customer
// email, when known, pre-fills the customer group.
func (s *Service) StartSession(ctx context.Context, sessionID, storedEmail string) (*Session, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	countries, err := s.refdata.Countries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load countries: %w", err)
	}

	startMonth := currentMonth()
	session := &Session{
		ID:               sessionID,
		Countries:        countries,
		CreditCardMonths: s.refdata.CreditCardMonths(startMonth),
		CreditCardYears:  s.refdata.CreditCardYears(),
	}
	session.Form.Customer.Email = storedEmail

	s.mu.Lock()
	s.sessions[sessionID] = session
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "checkout session started",
		slog.String("session_id", sessionID),
		slog.Int("countries", len(countries)),
	)

	return session, nil
}

// Session returns the live checkout session for a browsing session.
func (s *Service) Session(sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, apperrors.NotFound("checkout session", sessionID)
	}
	return session, nil
}

// UpdateForm replaces the session's form values. Rejected while a submission
// is in flight so an outstanding attempt always sees the state it validated.
func (s *Service) UpdateForm(sessionID string, form Form) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, apperrors.NotFound("checkout session", sessionID)
	}
	if session.submitting {
		return nil, apperrors.Conflict("a submission is in progress")
	}

	session.Form = form
	return session, nil
}

// ResolveRegions fetches the states matching the group's selected country,
// replaces the group's option list, and auto-selects the first state: a
// region control must always have a concrete value once its country is set.
func (s *Service) ResolveRegions(ctx context.Context, sessionID string, group AddressGroup) (*Session, error) {
	if !group.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown address group %q", group))
	}

	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, apperrors.NotFound("checkout session", sessionID)
	}
	country := session.addressForm(group).Country
	s.mu.Unlock()

	if country == nil || country.Code == "" {
		return nil, apperrors.InvalidInput("select a country first")
	}

	states, err := s.refdata.States(ctx, country.Code)
	if err != nil {
		return nil, fmt.Errorf("resolve states for %s: %w", country.Code, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session.setStates(group, states)
	if len(states) > 0 {
		first := states[0]
		session.addressForm(group).State = &first
	} else {
		session.addressForm(group).State = nil
	}

	s.logger.InfoContext(ctx, "address group states resolved",
		slog.String("session_id", sessionID),
		slog.String("group", string(group)),
		slog.String("country", country.Code),
		slog.Int("states", len(states)),
	)

	return session, nil
}

// SetBillingSameAsShipping applies the one-shot copy toggle. Enabling
// snapshots the shipping group's current values and option list into billing;
// disabling clears the billing group and its options. Subsequent shipping
// edits never propagate.
func (s *Service) SetBillingSameAsShipping(sessionID string, enabled bool) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, apperrors.NotFound("checkout session", sessionID)
	}
	if session.submitting {
		return nil, apperrors.Conflict("a submission is in progress")
	}

	session.BillingSameAsShipping = enabled
	if enabled {
		session.Form.BillingAddress = snapshotAddress(session.Form.ShippingAddress)
		session.BillingStates = append([]domain.State(nil), session.ShippingStates...)
	} else {
		session.Form.BillingAddress = AddressForm{}
		session.BillingStates = nil
	}

	return session, nil
}

// snapshotAddress copies an address group by value, including the selected
// reference objects, so later edits to the source do not alias into the copy.
func snapshotAddress(src AddressForm) AddressForm {
	dst := src
	if src.State != nil {
		state := *src.State
		dst.State = &state
	}
	if src.Country != nil {
		country := *src.Country
		dst.Country = &country
	}
	return dst
}

// PlaceOrder runs one submission attempt: validate, tokenize, assemble,
// submit. An invalid form or an attempt already in flight marks every field
// touched and returns without any network call or state mutation. Success
// resets the cart and the form only after the gateway confirms; failure
// leaves both exactly as they were so the user can retry immediately.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string) (domain.PurchaseResponse, error) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return domain.PurchaseResponse{}, apperrors.NotFound("checkout session", sessionID)
	}

	if session.submitting {
		session.Touched = true
		s.mu.Unlock()
		return domain.PurchaseResponse{}, apperrors.Conflict("a submission is already in progress")
	}

	if err := validator.Validate(session.Form); err != nil {
		session.Touched = true
		s.mu.Unlock()
		return domain.PurchaseResponse{}, err
	}

	session.submitting = true
	form := session.Form
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		session.submitting = false
		s.mu.Unlock()
	}()

	store := s.carts.Get(ctx, sessionID)
	items, totals := store.Snapshot()

	payment := domain.PaymentInfo{
		Amount:       totals.Price.Shift(2).IntPart(),
		Currency:     currency,
		ReceiptEmail: form.Customer.Email,
	}

	if _, err := s.gateway.CreatePaymentIntent(ctx, payment); err != nil {
		return domain.PurchaseResponse{}, fmt.Errorf("create payment intent: %w", err)
	}

	token, err := s.tokenizer.Tokenize(ctx, form.CreditCard.CardDetails())
	if err != nil {
		s.logger.WarnContext(ctx, "card tokenization rejected",
			slog.String("session_id", sessionID),
			slog.String("provider", s.tokenizer.Name()),
		)
		return domain.PurchaseResponse{}, err
	}
	payment.PaymentToken = token

	purchase := assemblePurchase(form, items, totals)

	resp, err := s.gateway.PlaceOrder(ctx, purchase, payment)
	if err != nil {
		s.logger.ErrorContext(ctx, "order submission failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return domain.PurchaseResponse{}, err
	}

	// Confirmed: reset cart and form, in that order. Never speculatively.
	store.Reset(ctx)

	s.mu.Lock()
	session.resetForm()
	s.mu.Unlock()

	if s.producer != nil {
		if err := s.producer.PublishOrderPlaced(ctx, sessionID, resp.OrderTrackingNumber, purchase.Order); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order.placed event",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("session_id", sessionID),
		slog.String("order_tracking_number", resp.OrderTrackingNumber),
		slog.String("total_price", totals.Price.StringFixed(2)),
		slog.Int("total_quantity", totals.Quantity),
	)

	return resp, nil
}

// assemblePurchase composes a fresh Purchase from the validated form and the
// cart snapshot. Every value is copied; the purchase never aliases live cart
// or form state.
func assemblePurchase(form Form, items []domain.CartItem, totals domain.CartTotals) domain.Purchase {
	orderItems := make([]domain.OrderItem, len(items))
	for i, item := range items {
		orderItems[i] = domain.OrderItemFromCartItem(item)
	}

	return domain.Purchase{
		Customer: domain.Customer{
			FirstName: form.Customer.FirstName,
			LastName:  form.Customer.LastName,
			Email:     form.Customer.Email,
		},
		ShippingAddress: form.ShippingAddress.Address(),
		BillingAddress:  form.BillingAddress.Address(),
		Order: domain.Order{
			TotalPrice:    totals.Price,
			TotalQuantity: totals.Quantity,
		},
		OrderItems: orderItems,
	}
}
