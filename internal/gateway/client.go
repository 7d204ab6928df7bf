package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopsmith/storefront/internal/domain"
	apperrors "github.com/shopsmith/storefront/pkg/errors"
)

// Doer is the interface for executing HTTP requests. Both httpclient.Client
// and httpclient.CircuitBreakerClient satisfy this.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client talks to the order submission gateway. The purchase POST must reach
// the backend at most once per attempt, so callers wire it with a
// no-retry HTTP client.
type Client struct {
	http    Doer
	baseURL string
}

// NewClient creates an order gateway client against the given base URL.
func NewClient(doer Doer, baseURL string) *Client {
	return &Client{
		http:    doer,
		baseURL: baseURL,
	}
}

// placeOrderRequest is the wire body for order submission.
type placeOrderRequest struct {
	Purchase    domain.Purchase    `json:"purchase"`
	PaymentInfo domain.PaymentInfo `json:"paymentInfo"`
}

// PlaceOrder submits the composed purchase and payment info. Success returns
// the tracking number; any non-2xx response becomes a user-visible,
// retryable error carrying the gateway's message.
func (c *Client) PlaceOrder(ctx context.Context, purchase domain.Purchase, payment domain.PaymentInfo) (domain.PurchaseResponse, error) {
	body, err := json.Marshal(placeOrderRequest{Purchase: purchase, PaymentInfo: payment})
	if err != nil {
		return domain.PurchaseResponse{}, fmt.Errorf("marshal purchase: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/checkout/purchase", bytes.NewReader(body))
	if err != nil {
		return domain.PurchaseResponse{}, fmt.Errorf("create purchase request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return domain.PurchaseResponse{}, fmt.Errorf("submit purchase: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.PurchaseResponse{}, apperrors.SubmissionRejected(readErrorMessage(resp))
	}

	var result domain.PurchaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.PurchaseResponse{}, fmt.Errorf("decode purchase response: %w", err)
	}
	if result.OrderTrackingNumber == "" {
		return domain.PurchaseResponse{}, apperrors.SubmissionRejected("gateway response missing order tracking number")
	}

	return result, nil
}

// CreatePaymentIntent asks the gateway for the amount/currency context the
// tokenization widget needs before card confirmation.
func (c *Client) CreatePaymentIntent(ctx context.Context, payment domain.PaymentInfo) (string, error) {
	body, err := json.Marshal(payment)
	if err != nil {
		return "", fmt.Errorf("marshal payment info: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/checkout/payment-intent", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create payment-intent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperrors.SubmissionRejected(readErrorMessage(resp))
	}

	var result struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode payment-intent response: %w", err)
	}

	return result.ClientSecret, nil
}

// readErrorMessage extracts a human-readable message from an error response
// body, falling back to the raw body or status code.
func readErrorMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil || len(raw) == 0 {
		return fmt.Sprintf("gateway returned status %d", resp.StatusCode)
	}

	var structured struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &structured) == nil {
		if structured.Message != "" {
			return structured.Message
		}
		if structured.Error.Message != "" {
			return structured.Error.Message
		}
	}
	return string(raw)
}
