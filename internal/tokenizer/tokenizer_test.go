package tokenizer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsmith/storefront/internal/domain"
	apperrors "github.com/shopsmith/storefront/pkg/errors"
	"github.com/shopsmith/storefront/pkg/httpclient"
)

func sampleCard() domain.CardDetails {
	return domain.CardDetails{
		CardNumber:      "4242424242424242",
		SecurityCode:    "123",
		ExpirationMonth: 12,
		ExpirationYear:  2027,
	}
}

func newWidget(serverURL string) *WidgetTokenizer {
	return NewWidgetTokenizer(httpclient.New(httpclient.NoRetryConfig()), serverURL)
}

func TestWidgetTokenizer_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/tokens", r.URL.Path)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "4242424242424242", r.PostForm.Get("card[number]"))
		assert.Equal(t, "123", r.PostForm.Get("card[cvc]"))
		assert.Equal(t, "12", r.PostForm.Get("card[exp_month]"))
		assert.Equal(t, "2027", r.PostForm.Get("card[exp_year]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"tok_widget_1"}`))
	}))
	defer srv.Close()

	token, err := newWidget(srv.URL).Tokenize(context.Background(), sampleCard())

	require.NoError(t, err)
	assert.Equal(t, "tok_widget_1", token)
}

func TestWidgetTokenizer_CardDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	_, err := newWidget(srv.URL).Tokenize(context.Background(), sampleCard())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)
	assert.Contains(t, err.Error(), "Your card was declined.")
}

func TestWidgetTokenizer_MissingTokenID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newWidget(srv.URL).Tokenize(context.Background(), sampleCard())

	require.Error(t, err)
}

func TestWidgetTokenizer_UnstructuredErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`bad request`))
	}))
	defer srv.Close()

	_, err := newWidget(srv.URL).Tokenize(context.Background(), sampleCard())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)
}
