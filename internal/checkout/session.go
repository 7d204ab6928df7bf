package checkout

import (
	"github.com/shopsmith/storefront/internal/domain"
)

// Session is one browsing session's checkout state: the form, the option
// lists backing its select controls, and the single-submission guard.
type Session struct {
	ID   string `json:"id"`
	Form Form   `json:"form"`

	// Option lists for the select controls. Countries, months, and years are
	// fetched once when the session starts; state lists are replaced per
	// address group as countries are selected.
	Countries        []domain.Country `json:"countries"`
	ShippingStates   []domain.State   `json:"shippingStates"`
	BillingStates    []domain.State   `json:"billingStates"`
	CreditCardMonths []int            `json:"creditCardMonths"`
	CreditCardYears  []int            `json:"creditCardYears"`

	// Touched marks every field as interacted-with so validation messages
	// render. Set by a rejected submit, cleared by a form reset.
	Touched bool `json:"touched"`

	// BillingSameAsShipping records the one-shot copy toggle's position.
	BillingSameAsShipping bool `json:"billingSameAsShipping"`

	// submitting guards against re-entrant submission. It does not cancel an
	// outstanding attempt.
	submitting bool
}

// states returns the option list for the given address group.
func (s *Session) states(group AddressGroup) []domain.State {
	if group == GroupShipping {
		return s.ShippingStates
	}
	return s.BillingStates
}

// setStates replaces the option list for the given address group.
func (s *Session) setStates(group AddressGroup, states []domain.State) {
	if group == GroupShipping {
		s.ShippingStates = states
	} else {
		s.BillingStates = states
	}
}

// addressForm returns a pointer to the given group's form values.
func (s *Session) addressForm(group AddressGroup) *AddressForm {
	if group == GroupShipping {
		return &s.Form.ShippingAddress
	}
	return &s.Form.BillingAddress
}

// resetForm restores the form to its pristine default state. Reference option
// lists that do not depend on form values (countries, months, years) are kept.
func (s *Session) resetForm() {
	s.Form = Form{}
	s.ShippingStates = nil
	s.BillingStates = nil
	s.Touched = false
	s.BillingSameAsShipping = false
}
