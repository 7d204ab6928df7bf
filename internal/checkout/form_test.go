package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsmith/storefront/internal/domain"
	"github.com/shopsmith/storefront/pkg/validator"
)

func TestForm_ValidPassesValidation(t *testing.T) {
	require.NoError(t, validator.Validate(validForm()))
}

func TestForm_MissingRequiredFields(t *testing.T) {
	form := validForm()
	form.Customer.FirstName = ""
	form.ShippingAddress.Country = nil

	err := validator.Validate(form)

	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Customer.FirstName")
	assert.Contains(t, fields, "ShippingAddress.Country")
}

func TestForm_CardNumberMustBeSixteenDigits(t *testing.T) {
	cases := []struct {
		name   string
		number string
	}{
		{"too short", "42424242"},
		{"too long", "42424242424242424242"},
		{"non numeric", "4242aaaa42424242"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := validForm()
			form.CreditCard.CardNumber = tc.number

			err := validator.Validate(form)

			var valErr *validator.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Contains(t, valErr.Fields(), "CreditCard.CardNumber")
		})
	}
}

func TestForm_SecurityCodeMustBeThreeDigits(t *testing.T) {
	form := validForm()
	form.CreditCard.SecurityCode = "12"

	err := validator.Validate(form)

	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "CreditCard.SecurityCode")
}

func TestForm_ExpirationMonthRange(t *testing.T) {
	form := validForm()
	form.CreditCard.ExpirationMonth = 13

	err := validator.Validate(form)

	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "CreditCard.ExpirationMonth")
}

func TestAddressGroup_Valid(t *testing.T) {
	assert.True(t, GroupShipping.Valid())
	assert.True(t, GroupBilling.Valid())
	assert.False(t, AddressGroup("mailingAddress").Valid())
	assert.False(t, AddressGroup("").Valid())
}

func TestAddressForm_Address(t *testing.T) {
	form := AddressForm{
		Street:  "1 Front St",
		City:    "Toronto",
		State:   &domain.State{Code: "ON", Name: "Ontario"},
		Country: &domain.Country{Code: "CA", Name: "Canada"},
		ZipCode: "M5J 2X5",
	}

	addr := form.Address()

	assert.Equal(t, "1 Front St", addr.Street)
	assert.Equal(t, "Ontario", addr.State)
	assert.Equal(t, "Canada", addr.Country)
	assert.Equal(t, "M5J 2X5", addr.ZipCode)
}

func TestCreditCardForm_CardDetails(t *testing.T) {
	form := validForm().CreditCard

	card := form.CardDetails()

	assert.Equal(t, "4242424242424242", card.CardNumber)
	assert.Equal(t, "123", card.SecurityCode)
	assert.Equal(t, 12, card.ExpirationMonth)
	assert.Equal(t, 2027, card.ExpirationYear)
}

func TestSession_ResetFormKeepsReferenceOptions(t *testing.T) {
	session := &Session{
		ID:               "session-1",
		Form:             validForm(),
		Countries:        []domain.Country{{Code: "US", Name: "United States"}},
		ShippingStates:   []domain.State{{Code: "NY", Name: "New York"}},
		CreditCardMonths: []int{11, 12},
		CreditCardYears:  []int{2026, 2027},
		Touched:          true,
	}

	session.resetForm()

	assert.Equal(t, Form{}, session.Form)
	assert.Nil(t, session.ShippingStates)
	assert.False(t, session.Touched)
	assert.Len(t, session.Countries, 1)
	assert.Equal(t, []int{11, 12}, session.CreditCardMonths)
	assert.Equal(t, []int{2026, 2027}, session.CreditCardYears)
}
