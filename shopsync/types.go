package shopsync

import "encoding/json"

// Raw record shapes as the commerce platform sends them. Everything numeric
// arrives as json.Number or a decimal string; everything temporal as a
// timestamp string. Validation happens in the normalizer, not here.

type RawOrder struct {
	Id                string         `json:"id"`
	OrderNumber       string         `json:"order_number"`
	CustomerId        string         `json:"customer_id"`
	SubtotalPrice     string         `json:"subtotal_price"`
	TotalTax          string         `json:"total_tax"`
	TotalPrice        string         `json:"total_price"`
	Currency          string         `json:"currency"`
	FinancialStatus   string         `json:"financial_status"`
	FulfillmentStatus string         `json:"fulfillment_status"`
	Tags              string         `json:"tags"`
	CreatedAt         string         `json:"created_at"`
	UpdatedAt         string         `json:"updated_at"`
	ProcessedAt       string         `json:"processed_at"`
	CancelledAt       string         `json:"cancelled_at"`
	LineItems         []RawLineItem  `json:"line_items"`
}

type RawLineItem struct {
	ProductId     string      `json:"product_id"`
	VariantId     string      `json:"variant_id"`
	Title         string      `json:"title"`
	Quantity      json.Number `json:"quantity"`
	Price         string      `json:"price"`
	TotalDiscount string      `json:"total_discount"`
	Sku           string      `json:"sku"`
	Vendor        string      `json:"vendor"`
	ProductType   string      `json:"product_type"`
}

type RawProduct struct {
	Id          string       `json:"id"`
	Title       string       `json:"title"`
	Handle      string       `json:"handle"`
	Vendor      string       `json:"vendor"`
	ProductType string       `json:"product_type"`
	Tags        string       `json:"tags"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
	Variants    []RawVariant `json:"variants"`
	Images      []RawImage   `json:"images"`
}

type RawVariant struct {
	Id                string      `json:"id"`
	ProductId         string      `json:"product_id"`
	Title             string      `json:"title"`
	Price             string      `json:"price"`
	Sku               string      `json:"sku"`
	InventoryQuantity json.Number `json:"inventory_quantity"`
	Weight            json.Number `json:"weight"`
	WeightUnit        string      `json:"weight_unit"`
}

type RawImage struct {
	Id  string `json:"id"`
	Src string `json:"src"`
	Alt string `json:"alt"`
}

type RawCustomer struct {
	Id               string      `json:"id"`
	Email            string      `json:"email"`
	FirstName        string      `json:"first_name"`
	LastName         string      `json:"last_name"`
	Phone            string      `json:"phone"`
	OrdersCount      json.Number `json:"orders_count"`
	TotalSpent       string      `json:"total_spent"`
	Tags             string      `json:"tags"`
	AcceptsMarketing bool        `json:"accepts_marketing"`
	CreatedAt        string      `json:"created_at"`
	UpdatedAt        string      `json:"updated_at"`
	LastOrderAt      string      `json:"last_order_at"`
}

// listResponse is the cursor-paginated envelope the platform wraps every
// collection in. The adapter owns rate-limit headers; we only read the body.
type listResponse struct {
	Data       []json.RawMessage `json:"data"`
	Items      []json.RawMessage `json:"items"`
	NextCursor string            `json:"next_cursor"`
	HasMore    *bool             `json:"has_more"`
}

func (r listResponse) records() []json.RawMessage {
	if len(r.Data) > 0 {
		return r.Data
	}
	return r.Items
}

func (r listResponse) more() bool {
	if r.HasMore != nil {
		return *r.HasMore
	}
	return r.NextCursor != ""
}
