package tokenizer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopsmith/storefront/internal/domain"
	apperrors "github.com/shopsmith/storefront/pkg/errors"
	"github.com/shopsmith/storefront/pkg/httpclient"
)

// Tokenizer exchanges raw card details for a payment-method token. Card-level
// problems (malformed number, bad expiry) come back as PaymentFailed errors
// and block submission without touching cart or form state.
type Tokenizer interface {
	// Name returns the provider name (e.g., "widget", "mock").
	Name() string

	// Tokenize converts card details into a payment-method token.
	Tokenize(ctx context.Context, card domain.CardDetails) (string, error)
}

// WidgetTokenizer tokenizes cards through the payment widget's HTTP token
// endpoint. The widget owns the real validation; this client only relays
// card-level rejections.
type WidgetTokenizer struct {
	http    *httpclient.Client
	baseURL string
}

// NewWidgetTokenizer creates a tokenizer against the payment widget API.
func NewWidgetTokenizer(client *httpclient.Client, baseURL string) *WidgetTokenizer {
	return &WidgetTokenizer{
		http:    client,
		baseURL: baseURL,
	}
}

// Name returns the provider name.
func (t *WidgetTokenizer) Name() string {
	return "widget"
}

// Tokenize posts the card details form-encoded, the way the widget expects,
// and returns the token ID.
func (t *WidgetTokenizer) Tokenize(ctx context.Context, card domain.CardDetails) (string, error) {
	form := url.Values{}
	form.Set("card[number]", card.CardNumber)
	form.Set("card[cvc]", card.SecurityCode)
	form.Set("card[exp_month]", strconv.Itoa(card.ExpirationMonth))
	form.Set("card[exp_year]", strconv.Itoa(card.ExpirationYear))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/v1/tokens", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.http.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("tokenize card: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusOK {
		var body struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return "", fmt.Errorf("decode token response: %w", err)
		}
		if body.ID == "" {
			return "", fmt.Errorf("token response missing id")
		}
		return body.ID, nil
	}

	// 4xx from the widget is a card-level problem; relay its message inline.
	var errBody struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && errBody.Error.Message != "" {
		return "", apperrors.PaymentFailed(errBody.Error.Message)
	}
	return "", apperrors.PaymentFailed(fmt.Sprintf("card was declined (status %d)", resp.StatusCode))
}
