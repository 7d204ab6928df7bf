package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopsmith/storefront/internal/domain"
	apperrors "github.com/shopsmith/storefront/pkg/errors"
	"github.com/shopsmith/storefront/pkg/httpclient"
)

// Client fetches countries and states from the backend reference-data API.
// Expiry month and year ranges are computed locally.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
}

// NewClient creates a reference-data client against the given base URL.
func NewClient(http *httpclient.CircuitBreakerClient, baseURL string) *Client {
	return &Client{
		http:    http,
		baseURL: baseURL,
	}
}

// Countries returns all selectable countries.
func (c *Client) Countries(ctx context.Context) ([]domain.Country, error) {
	resp, err := c.http.Get(ctx, c.baseURL+"/api/countries")
	if err != nil {
		return nil, fmt.Errorf("fetch countries: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.ServiceUnavailable(fmt.Sprintf("reference data returned status %d", resp.StatusCode))
	}

	var countries []domain.Country
	if err := json.NewDecoder(resp.Body).Decode(&countries); err != nil {
		return nil, fmt.Errorf("decode countries: %w", err)
	}
	return countries, nil
}

// States returns the states belonging to the given country code.
func (c *Client) States(ctx context.Context, countryCode string) ([]domain.State, error) {
	if countryCode == "" {
		return nil, apperrors.InvalidInput("country code is required")
	}

	u := c.baseURL + "/api/states?country=" + url.QueryEscape(countryCode)
	resp, err := c.http.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch states for %s: %w", countryCode, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.ServiceUnavailable(fmt.Sprintf("reference data returned status %d", resp.StatusCode))
	}

	var states []domain.State
	if err := json.NewDecoder(resp.Body).Decode(&states); err != nil {
		return nil, fmt.Errorf("decode states: %w", err)
	}
	return states, nil
}

// CreditCardMonths returns the valid expiry months from startMonth through December.
func (c *Client) CreditCardMonths(startMonth int) []int {
	return creditCardMonths(startMonth)
}

// CreditCardYears returns the current year through the configured horizon.
func (c *Client) CreditCardYears() []int {
	return creditCardYears(time.Now().UTC())
}
