package shopsync

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/mmdatafocus/insights_backend/models"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNormalizeOrder_RequiresId(t *testing.T) {
	_, err := NormalizeOrder(RawOrder{TotalPrice: "10.00"})
	if err == nil {
		t.Fatal("expected error for missing id")
	}
	var malformed *MalformedRecordError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedRecordError, got %T", err)
	}
	if malformed.Entity != "order" {
		t.Fatalf("expected order entity, got %s", malformed.Entity)
	}
}

func TestNormalizeOrder_FullRecord(t *testing.T) {
	raw := RawOrder{
		Id:                "o-1",
		OrderNumber:       "1001",
		CustomerId:        "c-1",
		SubtotalPrice:     "90.00",
		TotalTax:          "10.00",
		TotalPrice:        "100.00",
		Currency:          "usd",
		FinancialStatus:   "PAID",
		FulfillmentStatus: "Fulfilled",
		Tags:              "vip, wholesale",
		CreatedAt:         "2026-08-20T10:00:00Z",
		UpdatedAt:         "2026-08-21T10:00:00Z",
		ProcessedAt:       "2026-08-21T09:00:00Z",
		LineItems: []RawLineItem{
			{ProductId: "p-1", Quantity: json.Number("2"), Price: "45.00"},
		},
	}

	order, err := NormalizeOrder(raw)
	if err != nil {
		t.Fatalf("NormalizeOrder error: %v", err)
	}
	if order.Currency != "USD" {
		t.Fatalf("currency must be upper-cased, got %q", order.Currency)
	}
	if order.FinancialStatus != models.FinancialStatusPaid {
		t.Fatalf("expected paid, got %s", order.FinancialStatus)
	}
	if order.FulfillmentStatus != models.FulfillmentStatusFulfilled {
		t.Fatalf("expected fulfilled, got %s", order.FulfillmentStatus)
	}
	if order.Total.String() != "100" {
		t.Fatalf("expected total 100, got %s", order.Total)
	}
	if len(order.Tags) != 2 || order.Tags[0] != "vip" || order.Tags[1] != "wholesale" {
		t.Fatalf("expected trimmed tags, got %v", order.Tags)
	}
	if order.ProcessedAt == nil {
		t.Fatal("expected processed timestamp")
	}
	if order.CancelledAt != nil {
		t.Fatal("missing cancelled timestamp must stay nil")
	}
	if len(order.LineItems) != 1 || order.LineItems[0].Quantity != 2 {
		t.Fatalf("unexpected line items: %+v", order.LineItems)
	}
}

func TestNormalizeOrder_MissingOptionalFields(t *testing.T) {
	order, err := NormalizeOrder(RawOrder{Id: "o-1"})
	if err != nil {
		t.Fatalf("minimal order must normalize: %v", err)
	}
	if !order.Total.IsZero() {
		t.Fatalf("missing total must be zero, got %s", order.Total)
	}
	if order.FinancialStatus != models.FinancialStatusPending {
		t.Fatalf("missing financial status must default to pending, got %s", order.FinancialStatus)
	}
	if order.FulfillmentStatus != models.FulfillmentStatusUnfulfilled {
		t.Fatalf("missing fulfillment status must default to unfulfilled, got %s", order.FulfillmentStatus)
	}
}

func TestNormalizeOrder_UnknownStatusesFallBack(t *testing.T) {
	order, err := NormalizeOrder(RawOrder{
		Id:                "o-1",
		FinancialStatus:   "weird_status",
		FulfillmentStatus: "shipped-ish",
	})
	if err != nil {
		t.Fatalf("NormalizeOrder error: %v", err)
	}
	if order.FinancialStatus != models.FinancialStatusPending {
		t.Fatalf("unknown financial status must fall back to pending, got %s", order.FinancialStatus)
	}
	if order.FulfillmentStatus != models.FulfillmentStatusUnfulfilled {
		t.Fatalf("unknown fulfillment status must fall back to unfulfilled, got %s", order.FulfillmentStatus)
	}
}

func TestNormalizeOrder_NegativeQuantityClamped(t *testing.T) {
	order, err := NormalizeOrder(RawOrder{
		Id:        "o-1",
		LineItems: []RawLineItem{{ProductId: "p-1", Quantity: json.Number("-3")}},
	})
	if err != nil {
		t.Fatalf("NormalizeOrder error: %v", err)
	}
	if order.LineItems[0].Quantity != 0 {
		t.Fatalf("negative quantity must clamp to 0, got %d", order.LineItems[0].Quantity)
	}
}

func TestNormalizeProduct_NegativeInventoryClamped(t *testing.T) {
	product, err := NormalizeProduct(RawProduct{
		Id: "p-1",
		Variants: []RawVariant{
			{Id: "v-1", InventoryQuantity: json.Number("-7")},
			{Id: "v-2", InventoryQuantity: json.Number("12")},
		},
	})
	if err != nil {
		t.Fatalf("NormalizeProduct error: %v", err)
	}
	if product.Variants[0].InventoryQuantity != 0 {
		t.Fatalf("oversold stock must clamp to 0, got %d", product.Variants[0].InventoryQuantity)
	}
	if product.Variants[1].InventoryQuantity != 12 {
		t.Fatalf("expected 12, got %d", product.Variants[1].InventoryQuantity)
	}
	if product.Variants[0].ProductId != "p-1" {
		t.Fatalf("variant must back-reference its product, got %q", product.Variants[0].ProductId)
	}
}

func TestNormalizeCustomer_NameAndOptionalLastOrder(t *testing.T) {
	customer, err := NormalizeCustomer(RawCustomer{
		Id:         "c-1",
		FirstName:  "Aye",
		LastName:   "Chan",
		TotalSpent: "250.50",
	})
	if err != nil {
		t.Fatalf("NormalizeCustomer error: %v", err)
	}
	if customer.Name != "Aye Chan" {
		t.Fatalf("expected joined name, got %q", customer.Name)
	}
	if customer.LastOrderAt != nil {
		t.Fatal("missing last order timestamp must stay nil")
	}
	if customer.TotalSpent.String() != "250.5" {
		t.Fatalf("expected 250.5, got %s", customer.TotalSpent)
	}
}

func TestNormalizeBatch_DropsMalformedKeepsRest(t *testing.T) {
	raws := []RawOrder{
		{Id: "o-1", TotalPrice: "10.00"},
		{TotalPrice: "999.00"}, // no id, dropped
		{Id: "o-3", TotalPrice: "20.00"},
	}

	orders := NormalizeOrders(raws, quietLogger())

	if len(orders) != 2 {
		t.Fatalf("expected 2 surviving orders, got %d", len(orders))
	}
	if orders[0].Id != "o-1" || orders[1].Id != "o-3" {
		t.Fatalf("unexpected survivors: %s, %s", orders[0].Id, orders[1].Id)
	}
}

func TestNormalizeBatch_GarbageDecimalsBecomeZero(t *testing.T) {
	orders := NormalizeOrders([]RawOrder{{Id: "o-1", TotalPrice: "not-a-number"}}, quietLogger())
	if len(orders) != 1 {
		t.Fatalf("a garbage amount must not drop the record, got %d orders", len(orders))
	}
	if !orders[0].Total.IsZero() {
		t.Fatalf("garbage amount must parse to zero, got %s", orders[0].Total)
	}
}
