package mock

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsmith/storefront/internal/domain"
	apperrors "github.com/shopsmith/storefront/pkg/errors"
)

func TestTokenize_AcceptsCard(t *testing.T) {
	tok := NewTokenizer()

	token, err := tok.Tokenize(context.Background(), domain.CardDetails{CardNumber: "4242424242424242"})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "tok_"))
}

func TestTokenize_DeclinesTestNumber(t *testing.T) {
	tok := NewTokenizer()

	_, err := tok.Tokenize(context.Background(), domain.CardDetails{CardNumber: "4000000000000002"})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)
}

func TestTokenize_TokensAreUnique(t *testing.T) {
	tok := NewTokenizer()
	card := domain.CardDetails{CardNumber: "4242424242424242"}

	a, err := tok.Tokenize(context.Background(), card)
	require.NoError(t, err)
	b, err := tok.Tokenize(context.Background(), card)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
