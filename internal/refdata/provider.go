package refdata

import (
	"context"
	"time"

	"github.com/shopsmith/storefront/internal/domain"
)

// Provider supplies the reference data the checkout form needs: countries,
// states filtered by country, and valid card-expiry ranges.
type Provider interface {
	// Countries returns all selectable countries.
	Countries(ctx context.Context) ([]domain.Country, error)

	// States returns the states belonging to the given country code.
	States(ctx context.Context, countryCode string) ([]domain.State, error)

	// CreditCardMonths returns the valid expiry months from startMonth
	// through December.
	CreditCardMonths(startMonth int) []int

	// CreditCardYears returns the forward-looking range of valid expiry years.
	CreditCardYears() []int
}

// yearsAhead is how far into the future card expiry years are offered.
const yearsAhead = 10

// creditCardMonths returns startMonth..12. Out-of-range start months clamp
// to January.
func creditCardMonths(startMonth int) []int {
	if startMonth < 1 || startMonth > 12 {
		startMonth = 1
	}
	months := make([]int, 0, 12-startMonth+1)
	for m := startMonth; m <= 12; m++ {
		months = append(months, m)
	}
	return months
}

// creditCardYears returns the current year through current+yearsAhead.
func creditCardYears(now time.Time) []int {
	start := now.Year()
	years := make([]int, 0, yearsAhead+1)
	for y := start; y <= start+yearsAhead; y++ {
		years = append(years, y)
	}
	return years
}
