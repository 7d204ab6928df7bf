package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsmith/storefront/internal/domain"
	apperrors "github.com/shopsmith/storefront/pkg/errors"
	"github.com/shopsmith/storefront/pkg/httpclient"
)

func newTestClient(serverURL string) *Client {
	return NewClient(httpclient.New(httpclient.NoRetryConfig()), serverURL)
}

func samplePurchase() domain.Purchase {
	return domain.Purchase{
		Customer: domain.Customer{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"},
		ShippingAddress: domain.Address{
			Street: "123 Main St", City: "New York", State: "New York",
			Country: "United States", ZipCode: "10001",
		},
		BillingAddress: domain.Address{
			Street: "123 Main St", City: "New York", State: "New York",
			Country: "United States", ZipCode: "10001",
		},
		Order: domain.Order{
			TotalPrice:    decimal.RequireFromString("25.00"),
			TotalQuantity: 3,
		},
		OrderItems: []domain.OrderItem{
			{ProductID: "prod-1", Name: "Widget", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2},
		},
	}
}

func samplePayment() domain.PaymentInfo {
	return domain.PaymentInfo{
		Amount:       2500,
		Currency:     "USD",
		ReceiptEmail: "jane@example.com",
		PaymentToken: "tok_abc",
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	var gotBody placeOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/checkout/purchase", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"orderTrackingNumber": "TRK-42"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	resp, err := client.PlaceOrder(context.Background(), samplePurchase(), samplePayment())

	require.NoError(t, err)
	assert.Equal(t, "TRK-42", resp.OrderTrackingNumber)

	// The wire body nests the purchase and payment under fixed keys.
	assert.Equal(t, "Jane", gotBody.Purchase.Customer.FirstName)
	assert.Equal(t, int64(2500), gotBody.PaymentInfo.Amount)
	assert.Equal(t, "tok_abc", gotBody.PaymentInfo.PaymentToken)
}

func TestPlaceOrder_GatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "inventory unavailable"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.PlaceOrder(context.Background(), samplePurchase(), samplePayment())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSubmission)
	assert.Contains(t, err.Error(), "inventory unavailable")
}

func TestPlaceOrder_NestedErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"card expired"}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.PlaceOrder(context.Background(), samplePurchase(), samplePayment())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "card expired")
}

func TestPlaceOrder_MissingTrackingNumber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.PlaceOrder(context.Background(), samplePurchase(), samplePayment())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSubmission)
}

func TestPlaceOrder_SingleAttempt(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.PlaceOrder(context.Background(), samplePurchase(), samplePayment())

	require.Error(t, err)
	// Order submission must never be retried transparently.
	assert.Equal(t, 1, attempts)
}

func TestCreatePaymentIntent_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/checkout/payment-intent", r.URL.Path)

		var payment domain.PaymentInfo
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payment))
		assert.Equal(t, int64(2500), payment.Amount)
		assert.Equal(t, "USD", payment.Currency)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_1","client_secret":"pi_1_secret"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	secret, err := client.CreatePaymentIntent(context.Background(), samplePayment())

	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret", secret)
}

func TestCreatePaymentIntent_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream timeout`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreatePaymentIntent(context.Background(), samplePayment())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSubmission)
	assert.Contains(t, err.Error(), "upstream timeout")
}
