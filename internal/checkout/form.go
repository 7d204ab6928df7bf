package checkout

import (
	"github.com/shopsmith/storefront/internal/domain"
)

// AddressGroup names one of the two address form groups.
type AddressGroup string

const (
	GroupShipping AddressGroup = "shippingAddress"
	GroupBilling  AddressGroup = "billingAddress"
)

// Valid reports whether the group name is one of the two known groups.
func (g AddressGroup) Valid() bool {
	return g == GroupShipping || g == GroupBilling
}

// CustomerForm holds the customer group's raw values.
type CustomerForm struct {
	FirstName string `json:"firstName" validate:"required,min=2,notblank"`
	LastName  string `json:"lastName" validate:"required,min=2,notblank"`
	Email     string `json:"email" validate:"required,email"`
}

// AddressForm holds one address group's raw values. State and Country are the
// full selected reference objects; projection to display names happens only
// during purchase assembly.
type AddressForm struct {
	Street  string          `json:"street" validate:"required,min=2,notblank"`
	City    string          `json:"city" validate:"required,min=2,notblank"`
	State   *domain.State   `json:"state" validate:"required"`
	Country *domain.Country `json:"country" validate:"required"`
	ZipCode string          `json:"zipCode" validate:"required,min=2,notblank"`
}

// CreditCardForm holds the card group's raw values.
type CreditCardForm struct {
	CardType        string `json:"cardType" validate:"required"`
	NameOnCard      string `json:"nameOnCard" validate:"required,min=2,notblank"`
	CardNumber      string `json:"cardNumber" validate:"required,len=16,numeric"`
	SecurityCode    string `json:"securityCode" validate:"required,len=3,numeric"`
	ExpirationMonth int    `json:"expirationMonth" validate:"required,gte=1,lte=12"`
	ExpirationYear  int    `json:"expirationYear" validate:"required"`
}

// Form is the aggregate checkout form state.
type Form struct {
	Customer        CustomerForm   `json:"customer"`
	ShippingAddress AddressForm    `json:"shippingAddress"`
	BillingAddress  AddressForm    `json:"billingAddress"`
	CreditCard      CreditCardForm `json:"creditCard"`
}

// Address projects an address group's raw selections into a resolved Address
// by substituting the reference objects' display names for the object
// references. Callers validate first; nil selections project to empty names.
func (a AddressForm) Address() domain.Address {
	addr := domain.Address{
		Street:  a.Street,
		City:    a.City,
		ZipCode: a.ZipCode,
	}
	if a.State != nil {
		addr.State = a.State.Name
	}
	if a.Country != nil {
		addr.Country = a.Country.Name
	}
	return addr
}

// CardDetails extracts the transient card input from the credit-card group.
func (c CreditCardForm) CardDetails() domain.CardDetails {
	return domain.CardDetails{
		CardNumber:      c.CardNumber,
		SecurityCode:    c.SecurityCode,
		ExpirationMonth: c.ExpirationMonth,
		ExpirationYear:  c.ExpirationYear,
	}
}
