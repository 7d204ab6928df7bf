package domain

import "github.com/shopspring/decimal"

// CartItem represents a single line item in the cart. The JSON layout doubles
// as the persisted storage format, so field names are part of the contract.
type CartItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"imageUrl"`
}

// Subtotal returns quantity x unit price for this line.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartTotals holds the derived cart aggregates. They are always recomputed
// from the full item list, never patched incrementally.
type CartTotals struct {
	Price    decimal.Decimal `json:"totalPrice"`
	Quantity int             `json:"totalQuantity"`
}

// ZeroTotals returns the totals of an empty cart.
func ZeroTotals() CartTotals {
	return CartTotals{Price: decimal.Zero, Quantity: 0}
}

// ComputeTotals scans the full item list and returns the aggregate price and
// quantity.
func ComputeTotals(items []CartItem) CartTotals {
	totals := ZeroTotals()
	for _, item := range items {
		totals.Price = totals.Price.Add(item.Subtotal())
		totals.Quantity += item.Quantity
	}
	return totals
}

// FindItemIndex returns the index of the cart item with the given ID, or -1.
func FindItemIndex(items []CartItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
