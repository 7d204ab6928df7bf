package mock

import (
	"context"

	"github.com/google/uuid"

	"github.com/shopsmith/storefront/internal/domain"
	apperrors "github.com/shopsmith/storefront/pkg/errors"
)

// Tokenizer is a mock payment tokenizer for development and testing. It
// accepts any well-formed card and rejects the classic decline test number.
type Tokenizer struct{}

// NewTokenizer creates a new mock tokenizer.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Name returns the provider name.
func (t *Tokenizer) Name() string {
	return "mock"
}

// Tokenize returns a generated token for any card except the decline number.
func (t *Tokenizer) Tokenize(_ context.Context, card domain.CardDetails) (string, error) {
	if card.CardNumber == "4000000000000002" {
		return "", apperrors.PaymentFailed("your card was declined")
	}
	return "tok_" + uuid.New().String(), nil
}
