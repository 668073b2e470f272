package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the canonical shape every provider order is normalized into.
// Monetary fields are decimals; total = subtotal + tax within rounding
// tolerance (the normalizer does not enforce this, the provider owns it).
type Order struct {
	Id                string            `json:"id"`
	OrderNumber       string            `json:"order_number"`
	CustomerId        string            `json:"customer_id"`
	Subtotal          decimal.Decimal   `json:"subtotal"`
	Tax               decimal.Decimal   `json:"tax"`
	Total             decimal.Decimal   `json:"total"`
	Currency          string            `json:"currency"`
	FinancialStatus   FinancialStatus   `json:"financial_status"`
	FulfillmentStatus FulfillmentStatus `json:"fulfillment_status"`
	LineItems         []LineItem        `json:"line_items"`
	Tags              []string          `json:"tags"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	ProcessedAt       *time.Time        `json:"processed_at"`
	CancelledAt       *time.Time        `json:"cancelled_at"`
}

// LineItem is owned exclusively by its Order.
type LineItem struct {
	ProductId   string          `json:"product_id"`
	VariantId   string          `json:"variant_id"`
	Title       string          `json:"title"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	Sku         string          `json:"sku"`
	Vendor      string          `json:"vendor"`
	ProductType string          `json:"product_type"`
}

func (o *Order) Fulfilled() bool {
	return o.FulfillmentStatus == FulfillmentStatusFulfilled
}

func (o *Order) Cancelled() bool {
	return o.CancelledAt != nil
}

// ItemCount is the total units across all line items.
func (o *Order) ItemCount() int {
	count := 0
	for _, li := range o.LineItems {
		count += li.Quantity
	}
	return count
}
