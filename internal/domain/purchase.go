package domain

import "github.com/shopspring/decimal"

// Customer identifies the person placing the order.
type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Address is a resolved shipping or billing address. State and Country carry
// display names, not codes; the projection from reference entities happens
// during purchase assembly.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zipCode"`
}

// OrderItem is a snapshot projection of a CartItem taken at submission time,
// so the order record is decoupled from further cart mutation.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"imageUrl"`
}

// Order carries the cart aggregates as they were at submission time.
type Order struct {
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	TotalQuantity int             `json:"totalQuantity"`
}

// Purchase is the full order payload composed per submission attempt. It is
// never persisted on this side.
type Purchase struct {
	Customer        Customer    `json:"customer"`
	ShippingAddress Address     `json:"shippingAddress"`
	BillingAddress  Address     `json:"billingAddress"`
	Order           Order       `json:"order"`
	OrderItems      []OrderItem `json:"orderItems"`
}

// OrderItemFromCartItem projects a cart line into an order snapshot.
func OrderItemFromCartItem(item CartItem) OrderItem {
	return OrderItem{
		ProductID: item.ID,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Quantity:  item.Quantity,
		ImageURL:  item.ImageURL,
	}
}

// PaymentInfo is the payment-intent payload sent to the gateway before card
// confirmation. Amount is in the currency's minor unit (cents).
type PaymentInfo struct {
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	ReceiptEmail string `json:"receiptEmail,omitempty"`
	PaymentToken string `json:"paymentToken,omitempty"`
}

// CardDetails holds raw card input for tokenization. Values exist only for
// the duration of one submission attempt and must never be logged, published,
// or persisted.
type CardDetails struct {
	CardNumber      string
	SecurityCode    string
	ExpirationMonth int
	ExpirationYear  int
}

// PurchaseResponse is the gateway's reply to a successful order submission.
type PurchaseResponse struct {
	OrderTrackingNumber string `json:"orderTrackingNumber"`
}
