package checkout

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shopsmith/storefront/internal/cart"
	"github.com/shopsmith/storefront/internal/domain"
	"github.com/shopsmith/storefront/internal/repository/memory"
	apperrors "github.com/shopsmith/storefront/pkg/errors"
	"github.com/shopsmith/storefront/pkg/validator"
)

// --- Mock Order Gateway ---

type mockOrderGateway struct {
	mock.Mock
}

func (m *mockOrderGateway) PlaceOrder(ctx context.Context, purchase domain.Purchase, payment domain.PaymentInfo) (domain.PurchaseResponse, error) {
	args := m.Called(ctx, purchase, payment)
	return args.Get(0).(domain.PurchaseResponse), args.Error(1)
}

func (m *mockOrderGateway) CreatePaymentIntent(ctx context.Context, payment domain.PaymentInfo) (string, error) {
	args := m.Called(ctx, payment)
	return args.String(0), args.Error(1)
}

// --- Stub Tokenizer ---

type stubTokenizer struct {
	token string
	err   error
	calls int
}

func (s *stubTokenizer) Name() string { return "stub" }

func (s *stubTokenizer) Tokenize(_ context.Context, _ domain.CardDetails) (string, error) {
	s.calls++
	return s.token, s.err
}

// --- Stub Reference Data Provider ---

type stubRefData struct {
	countries []domain.Country
	states    map[string][]domain.State
	statesErr error
}

func (s *stubRefData) Countries(_ context.Context) ([]domain.Country, error) {
	return s.countries, nil
}

func (s *stubRefData) States(_ context.Context, countryCode string) ([]domain.State, error) {
	if s.statesErr != nil {
		return nil, s.statesErr
	}
	return s.states[countryCode], nil
}

func (s *stubRefData) CreditCardMonths(startMonth int) []int {
	months := make([]int, 0, 12-startMonth+1)
	for m := startMonth; m <= 12; m++ {
		months = append(months, m)
	}
	return months
}

func (s *stubRefData) CreditCardYears() []int {
	return []int{2026, 2027, 2028}
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func defaultRefData() *stubRefData {
	return &stubRefData{
		countries: []domain.Country{
			{Code: "US", Name: "United States"},
			{Code: "CA", Name: "Canada"},
		},
		states: map[string][]domain.State{
			"US": {{Code: "NY", Name: "New York"}, {Code: "CA", Name: "California"}},
			"CA": {{Code: "ON", Name: "Ontario"}},
		},
	}
}

type testFixture struct {
	service *Service
	gateway *mockOrderGateway
	tok     *stubTokenizer
	carts   *cart.Manager
	repo    *memory.CartRepository
}

func newTestService(t *testing.T) *testFixture {
	t.Helper()
	logger := newTestLogger()
	repo := memory.NewCartRepository()
	carts := cart.NewManager(repo, nil, logger)
	gw := &mockOrderGateway{}
	tok := &stubTokenizer{token: "tok_test"}
	svc := NewService(carts, gw, tok, defaultRefData(), nil, logger)
	return &testFixture{service: svc, gateway: gw, tok: tok, carts: carts, repo: repo}
}

func validForm() Form {
	return Form{
		Customer: CustomerForm{
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane.doe@example.com",
		},
		ShippingAddress: AddressForm{
			Street:  "123 Main St",
			City:    "New York",
			State:   &domain.State{Code: "NY", Name: "New York"},
			Country: &domain.Country{Code: "US", Name: "United States"},
			ZipCode: "10001",
		},
		BillingAddress: AddressForm{
			Street:  "456 Oak Ave",
			City:    "Albany",
			State:   &domain.State{Code: "NY", Name: "New York"},
			Country: &domain.Country{Code: "US", Name: "United States"},
			ZipCode: "12201",
		},
		CreditCard: CreditCardForm{
			CardType:        "Visa",
			NameOnCard:      "Jane Doe",
			CardNumber:      "4242424242424242",
			SecurityCode:    "123",
			ExpirationMonth: 12,
			ExpirationYear:  2027,
		},
	}
}

func seedCart(t *testing.T, f *testFixture, sessionID string) {
	t.Helper()
	store := f.carts.Get(context.Background(), sessionID)
	require.NoError(t, store.AddItem(context.Background(), domain.CartItem{
		ID:        "prod-1",
		Name:      "Widget",
		UnitPrice: decimal.RequireFromString("10.00"),
		Quantity:  2,
	}))
	require.NoError(t, store.AddItem(context.Background(), domain.CartItem{
		ID:        "prod-2",
		Name:      "Gadget",
		UnitPrice: decimal.RequireFromString("5.00"),
		Quantity:  1,
	}))
}

func startSession(t *testing.T, f *testFixture, sessionID string) *Session {
	t.Helper()
	session, err := f.service.StartSession(context.Background(), sessionID, "")
	require.NoError(t, err)
	return session
}

// ---------------------------------------------------------------------------
// StartSession / Session
// ---------------------------------------------------------------------------

func TestStartSession_LoadsReferenceData(t *testing.T) {
	f := newTestService(t)

	session := startSession(t, f, "session-1")

	assert.Len(t, session.Countries, 2)
	assert.NotEmpty(t, session.CreditCardMonths)
	assert.Equal(t, []int{2026, 2027, 2028}, session.CreditCardYears)
	assert.False(t, session.Touched)
	assert.Empty(t, session.ShippingStates)
}

func TestStartSession_PrefillsStoredEmail(t *testing.T) {
	f := newTestService(t)

	session, err := f.service.StartSession(context.Background(), "session-1", "jane@example.com")
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", session.Form.Customer.Email)
	assert.Empty(t, session.Form.Customer.FirstName)
}

func TestStartSession_RequiresSessionID(t *testing.T) {
	f := newTestService(t)

	_, err := f.service.StartSession(context.Background(), "", "")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSession_NotFound(t *testing.T) {
	f := newTestService(t)

	_, err := f.service.Session("missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ---------------------------------------------------------------------------
// UpdateForm
// ---------------------------------------------------------------------------

func TestUpdateForm_ReplacesValues(t *testing.T) {
	f := newTestService(t)
	startSession(t, f, "session-1")

	form := validForm()
	session, err := f.service.UpdateForm("session-1", form)
	require.NoError(t, err)

	assert.Equal(t, "Jane", session.Form.Customer.FirstName)
	assert.Equal(t, "4242424242424242", session.Form.CreditCard.CardNumber)
}

func TestUpdateForm_RejectedWhileSubmitting(t *testing.T) {
	f := newTestService(t)
	session := startSession(t, f, "session-1")
	session.submitting = true

	_, err := f.service.UpdateForm("session-1", validForm())

	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

// ---------------------------------------------------------------------------
// ResolveRegions
// ---------------------------------------------------------------------------

func TestResolveRegions_AutoSelectsFirstState(t *testing.T) {
	f := newTestService(t)
	startSession(t, f, "session-1")
	_, err := f.service.UpdateForm("session-1", validForm())
	require.NoError(t, err)

	session, err := f.service.ResolveRegions(context.Background(), "session-1", GroupShipping)
	require.NoError(t, err)

	require.Len(t, session.ShippingStates, 2)
	require.NotNil(t, session.Form.ShippingAddress.State)
	assert.Equal(t, "NY", session.Form.ShippingAddress.State.Code)
	// Billing options stay untouched.
	assert.Empty(t, session.BillingStates)
}

func TestResolveRegions_EmptyStateListClearsSelection(t *testing.T) {
	f := newTestService(t)
	startSession(t, f, "session-1")
	form := validForm()
	form.ShippingAddress.Country = &domain.Country{Code: "DE", Name: "Germany"}
	_, err := f.service.UpdateForm("session-1", form)
	require.NoError(t, err)

	session, err := f.service.ResolveRegions(context.Background(), "session-1", GroupShipping)
	require.NoError(t, err)

	assert.Empty(t, session.ShippingStates)
	assert.Nil(t, session.Form.ShippingAddress.State)
}

func TestResolveRegions_RequiresCountry(t *testing.T) {
	f := newTestService(t)
	startSession(t, f, "session-1")

	_, err := f.service.ResolveRegions(context.Background(), "session-1", GroupShipping)

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestResolveRegions_UnknownGroup(t *testing.T) {
	f := newTestService(t)
	startSession(t, f, "session-1")

	_, err := f.service.ResolveRegions(context.Background(), "session-1", AddressGroup("mailingAddress"))

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// ---------------------------------------------------------------------------
// SetBillingSameAsShipping
// ---------------------------------------------------------------------------

func TestSetBillingSameAsShipping_CopiesSnapshot(t *testing.T) {
	f := newTestService(t)
	startSession(t, f, "session-1")
	form := validForm()
	form.BillingAddress = AddressForm{}
	_, err := f.service.UpdateForm("session-1", form)
	require.NoError(t, err)
	_, err = f.service.ResolveRegions(context.Background(), "session-1", GroupShipping)
	require.NoError(t, err)

	session, err := f.service.SetBillingSameAsShipping("session-1", true)
	require.NoError(t, err)

	assert.Equal(t, "123 Main St", session.Form.BillingAddress.Street)
	assert.Equal(t, session.ShippingStates, session.BillingStates)
	require.NotNil(t, session.Form.BillingAddress.State)
	assert.Equal(t, "NY", session.Form.BillingAddress.State.Code)
}

func TestSetBillingSameAsShipping_CopyIsOneShot(t *testing.T) {
	f := newTestService(t)
	startSession(t, f, "session-1")
	form := validForm()
	_, err := f.service.UpdateForm("session-1", form)
	require.NoError(t, err)

	_, err = f.service.SetBillingSameAsShipping("session-1", true)
	require.NoError(t, err)

	// A later shipping edit must not bleed into the billing copy.
	form.ShippingAddress.Street = "789 Elm St"
	session, err := f.service.UpdateForm("session-1", form)
	require.NoError(t, err)

	assert.Equal(t, "789 Elm St", session.Form.ShippingAddress.Street)
	assert.Equal(t, "123 Main St", session.Form.BillingAddress.Street)
}

func TestSetBillingSameAsShipping_DisableClears(t *testing.T) {
	f := newTestService(t)
	startSession(t, f, "session-1")
	_, err := f.service.UpdateForm("session-1", validForm())
	require.NoError(t, err)
	_, err = f.service.SetBillingSameAsShipping("session-1", true)
	require.NoError(t, err)

	session, err := f.service.SetBillingSameAsShipping("session-1", false)
	require.NoError(t, err)

	assert.Equal(t, AddressForm{}, session.Form.BillingAddress)
	assert.Empty(t, session.BillingStates)
	assert.False(t, session.BillingSameAsShipping)
}

// ---------------------------------------------------------------------------
// PlaceOrder
// ---------------------------------------------------------------------------

func TestPlaceOrder_Success(t *testing.T) {
	f := newTestService(t)
	startSession(t, f, "session-1")
	seedCart(t, f, "session-1")
	_, err := f.service.UpdateForm("session-1", validForm())
	require.NoError(t, err)

	f.gateway.On("CreatePaymentIntent", mock.Anything, mock.MatchedBy(func(p domain.PaymentInfo) bool {
		return p.Amount == 2500 && p.Currency == "USD" && p.ReceiptEmail == "jane.doe@example.com"
	})).Return("pi_secret", nil)
	f.gateway.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(p domain.Purchase) bool {
		return p.Customer.FirstName == "Jane" &&
			p.ShippingAddress.State == "New York" &&
			p.ShippingAddress.Country == "United States" &&
			p.Order.TotalQuantity == 3 &&
			len(p.OrderItems) == 2
	}), mock.MatchedBy(func(p domain.PaymentInfo) bool {
		return p.PaymentToken == "tok_test"
	})).Return(domain.PurchaseResponse{OrderTrackingNumber: "TRK-001"}, nil)

	resp, err := f.service.PlaceOrder(context.Background(), "session-1")

	require.NoError(t, err)
	assert.Equal(t, "TRK-001", resp.OrderTrackingNumber)
	f.gateway.AssertExpectations(t)

	// Confirmed success resets the cart and the form.
	items, totals := f.carts.Get(context.Background(), "session-1").Snapshot()
	assert.Empty(t, items)
	assert.True(t, totals.Price.IsZero())

	session, err := f.service.Session("session-1")
	require.NoError(t, err)
	assert.Equal(t, Form{}, session.Form)
	assert.False(t, session.Touched)
	assert.False(t, session.submitting)
	// Countries and expiry options survive the reset.
	assert.Len(t, session.Countries, 2)
	assert.NotEmpty(t, session.CreditCardYears)
}

func TestPlaceOrder_InvalidFormBlocksSubmission(t *testing.T) {
	f := newTestService(t)
	startSession(t, f, "session-1")
	seedCart(t, f, "session-1")
	form := validForm()
	form.Customer.Email = "not-an-email"
	form.CreditCard.CardNumber = "1234"
	_, err := f.service.UpdateForm("session-1", form)
	require.NoError(t, err)

	_, err = f.service.PlaceOrder(context.Background(), "session-1")

	require.Error(t, err)
	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Customer.Email")
	assert.Contains(t, fields, "CreditCard.CardNumber")

	// No network calls, cart untouched, every field marked touched.
	f.gateway.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything)
	f.gateway.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 0, f.tok.calls)

	_, totals := f.carts.Get(context.Background(), "session-1").Snapshot()
	assert.Equal(t, 3, totals.Quantity)

	session, err := f.service.Session("session-1")
	require.NoError(t, err)
	assert.True(t, session.Touched)
}

func TestPlaceOrder_WhitespaceOnlyFieldsRejected(t *testing.T) {
	f := newTestService(t)
	startSession(t, f, "session-1")
	form := validForm()
	form.Customer.FirstName = "   "
	_, err := f.service.UpdateForm("session-1", form)
	require.NoError(t, err)

	_, err = f.service.PlaceOrder(context.Background(), "session-1")

	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "Customer.FirstName")
}

func TestPlaceOrder_TokenizationFailureBlocksSubmission(t *testing.T) {
	f := newTestService(t)
	startSession(t, f, "session-1")
	seedCart(t, f, "session-1")
	_, err := f.service.UpdateForm("session-1", validForm())
	require.NoError(t, err)

	f.tok.err = apperrors.PaymentFailed("your card was declined")
	f.gateway.On("CreatePaymentIntent", mock.Anything, mock.Anything).Return("pi_secret", nil)

	_, err = f.service.PlaceOrder(context.Background(), "session-1")

	require.ErrorIs(t, err, apperrors.ErrPaymentFailed)
	f.gateway.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything, mock.Anything)

	// Cart and form survive so the shopper can retry.
	_, totals := f.carts.Get(context.Background(), "session-1").Snapshot()
	assert.Equal(t, 3, totals.Quantity)
	session, err := f.service.Session("session-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", session.Form.Customer.FirstName)
	assert.False(t, session.submitting)
}

func TestPlaceOrder_GatewayFailureKeepsState(t *testing.T) {
	f := newTestService(t)
	startSession(t, f, "session-1")
	seedCart(t, f, "session-1")
	_, err := f.service.UpdateForm("session-1", validForm())
	require.NoError(t, err)

	f.gateway.On("CreatePaymentIntent", mock.Anything, mock.Anything).Return("pi_secret", nil)
	f.gateway.On("PlaceOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.PurchaseResponse{}, apperrors.SubmissionRejected("inventory unavailable"))

	_, err = f.service.PlaceOrder(context.Background(), "session-1")

	require.ErrorIs(t, err, apperrors.ErrSubmission)

	// Nothing was reset; an immediate retry succeeds against the same state.
	_, totals := f.carts.Get(context.Background(), "session-1").Snapshot()
	assert.Equal(t, 3, totals.Quantity)
	session, err := f.service.Session("session-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", session.Form.Customer.FirstName)
	assert.False(t, session.submitting)
}

func TestPlaceOrder_PaymentIntentFailureBlocksSubmission(t *testing.T) {
	f := newTestService(t)
	startSession(t, f, "session-1")
	seedCart(t, f, "session-1")
	_, err := f.service.UpdateForm("session-1", validForm())
	require.NoError(t, err)

	f.gateway.On("CreatePaymentIntent", mock.Anything, mock.Anything).
		Return("", errors.New("connection refused"))

	_, err = f.service.PlaceOrder(context.Background(), "session-1")

	require.Error(t, err)
	assert.Equal(t, 0, f.tok.calls)
	f.gateway.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_RejectedWhileInFlight(t *testing.T) {
	f := newTestService(t)
	session := startSession(t, f, "session-1")
	_, err := f.service.UpdateForm("session-1", validForm())
	require.NoError(t, err)

	session.submitting = true

	_, err = f.service.PlaceOrder(context.Background(), "session-1")

	require.ErrorIs(t, err, apperrors.ErrConflict)
	assert.True(t, session.Touched)
	f.gateway.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything)
}

func TestPlaceOrder_SessionNotFound(t *testing.T) {
	f := newTestService(t)

	_, err := f.service.PlaceOrder(context.Background(), "missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ---------------------------------------------------------------------------
// assemblePurchase
// ---------------------------------------------------------------------------

func TestAssemblePurchase_ProjectsNamesAndSnapshots(t *testing.T) {
	form := validForm()
	items := []domain.CartItem{
		{ID: "prod-1", Name: "Widget", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2},
	}
	totals := domain.ComputeTotals(items)

	purchase := assemblePurchase(form, items, totals)

	assert.Equal(t, "New York", purchase.ShippingAddress.State)
	assert.Equal(t, "United States", purchase.ShippingAddress.Country)
	assert.Equal(t, "New York", purchase.BillingAddress.State)
	require.Len(t, purchase.OrderItems, 1)
	assert.Equal(t, "prod-1", purchase.OrderItems[0].ProductID)
	assert.True(t, purchase.Order.TotalPrice.Equal(decimal.RequireFromString("20.00")))
	assert.Equal(t, 2, purchase.Order.TotalQuantity)

	// Mutating the source does not alias into the purchase.
	items[0].Quantity = 99
	assert.Equal(t, 2, purchase.OrderItems[0].Quantity)
}

func TestAssemblePurchase_NilSelectionsProjectEmpty(t *testing.T) {
	form := validForm()
	form.ShippingAddress.State = nil
	form.ShippingAddress.Country = nil

	purchase := assemblePurchase(form, nil, domain.ZeroTotals())

	assert.Empty(t, purchase.ShippingAddress.State)
	assert.Empty(t, purchase.ShippingAddress.Country)
	assert.Empty(t, purchase.OrderItems)
}
