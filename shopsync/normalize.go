package shopsync

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/insights_backend/config"
	"github.com/mmdatafocus/insights_backend/models"
	"github.com/mmdatafocus/insights_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MalformedRecordError means a single raw record is missing a required
// identity field. Callers drop the record and keep going; one bad record
// never aborts a batch.
type MalformedRecordError struct {
	Entity string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record: %s", e.Entity, e.Reason)
}

// NormalizeOrder maps a provider order into the canonical shape. Missing
// optional fields (processed/cancelled timestamps, statuses) become zero
// values; only a missing id is fatal for the record.
func NormalizeOrder(raw RawOrder) (*models.Order, error) {
	if strings.TrimSpace(raw.Id) == "" {
		return nil, &MalformedRecordError{Entity: "order", Reason: "id is required"}
	}

	order := &models.Order{
		Id:                raw.Id,
		OrderNumber:       raw.OrderNumber,
		CustomerId:        raw.CustomerId,
		Subtotal:          parseDecimal(raw.SubtotalPrice),
		Tax:               parseDecimal(raw.TotalTax),
		Total:             parseDecimal(raw.TotalPrice),
		Currency:          strings.ToUpper(strings.TrimSpace(raw.Currency)),
		FinancialStatus:   normalizeFinancialStatus(raw.FinancialStatus),
		FulfillmentStatus: normalizeFulfillmentStatus(raw.FulfillmentStatus),
		Tags:              utils.SplitAndTrim(raw.Tags),
		CreatedAt:         parseTime(raw.CreatedAt),
		UpdatedAt:         parseTime(raw.UpdatedAt),
		ProcessedAt:       utils.ParseOptionalTime(raw.ProcessedAt),
		CancelledAt:       utils.ParseOptionalTime(raw.CancelledAt),
	}

	order.LineItems = make([]models.LineItem, 0, len(raw.LineItems))
	for _, li := range raw.LineItems {
		qty, _ := li.Quantity.Int64()
		if qty < 0 {
			qty = 0
		}
		order.LineItems = append(order.LineItems, models.LineItem{
			ProductId:   li.ProductId,
			VariantId:   li.VariantId,
			Title:       li.Title,
			Quantity:    int(qty),
			UnitPrice:   parseDecimal(li.Price),
			Discount:    parseDecimal(li.TotalDiscount),
			Sku:         li.Sku,
			Vendor:      li.Vendor,
			ProductType: li.ProductType,
		})
	}
	return order, nil
}

func NormalizeProduct(raw RawProduct) (*models.Product, error) {
	if strings.TrimSpace(raw.Id) == "" {
		return nil, &MalformedRecordError{Entity: "product", Reason: "id is required"}
	}

	product := &models.Product{
		Id:          raw.Id,
		Title:       raw.Title,
		Handle:      raw.Handle,
		Vendor:      raw.Vendor,
		ProductType: raw.ProductType,
		Tags:        utils.SplitAndTrim(raw.Tags),
		CreatedAt:   parseTime(raw.CreatedAt),
		UpdatedAt:   parseTime(raw.UpdatedAt),
	}

	product.Variants = make([]models.Variant, 0, len(raw.Variants))
	for _, v := range raw.Variants {
		qty, _ := v.InventoryQuantity.Int64()
		if qty < 0 {
			// Providers report oversold stock as negative; clamp to the
			// canonical non-negative invariant.
			qty = 0
		}
		weight, _ := decimal.NewFromString(v.Weight.String())
		parentId := v.ProductId
		if parentId == "" {
			parentId = raw.Id
		}
		product.Variants = append(product.Variants, models.Variant{
			Id:                v.Id,
			ProductId:         parentId,
			Title:             v.Title,
			Price:             parseDecimal(v.Price),
			Sku:               v.Sku,
			InventoryQuantity: int(qty),
			Weight:            weight,
			WeightUnit:        v.WeightUnit,
		})
	}

	product.Images = make([]models.Image, 0, len(raw.Images))
	for _, img := range raw.Images {
		product.Images = append(product.Images, models.Image{Id: img.Id, Src: img.Src, Alt: img.Alt})
	}
	return product, nil
}

func NormalizeCustomer(raw RawCustomer) (*models.Customer, error) {
	if strings.TrimSpace(raw.Id) == "" {
		return nil, &MalformedRecordError{Entity: "customer", Reason: "id is required"}
	}

	ordersCount, _ := raw.OrdersCount.Int64()
	if ordersCount < 0 {
		ordersCount = 0
	}
	return &models.Customer{
		Id:               raw.Id,
		Email:            raw.Email,
		Name:             strings.TrimSpace(raw.FirstName + " " + raw.LastName),
		Phone:            raw.Phone,
		OrdersCount:      int(ordersCount),
		TotalSpent:       parseDecimal(raw.TotalSpent),
		Tags:             utils.SplitAndTrim(raw.Tags),
		AcceptsMarketing: raw.AcceptsMarketing,
		CreatedAt:        parseTime(raw.CreatedAt),
		UpdatedAt:        parseTime(raw.UpdatedAt),
		LastOrderAt:      utils.ParseOptionalTime(raw.LastOrderAt),
	}, nil
}

// NormalizeOrders drops malformed records with a warning and returns the rest.
func NormalizeOrders(raws []RawOrder, logger *logrus.Logger) []*models.Order {
	orders := make([]*models.Order, 0, len(raws))
	for _, raw := range raws {
		order, err := NormalizeOrder(raw)
		if err != nil {
			config.LogWarn(logger, "shopsync", "NormalizeOrders", "dropping record", err)
			continue
		}
		orders = append(orders, order)
	}
	return orders
}

func NormalizeProducts(raws []RawProduct, logger *logrus.Logger) []*models.Product {
	products := make([]*models.Product, 0, len(raws))
	for _, raw := range raws {
		product, err := NormalizeProduct(raw)
		if err != nil {
			config.LogWarn(logger, "shopsync", "NormalizeProducts", "dropping record", err)
			continue
		}
		products = append(products, product)
	}
	return products
}

func NormalizeCustomers(raws []RawCustomer, logger *logrus.Logger) []*models.Customer {
	customers := make([]*models.Customer, 0, len(raws))
	for _, raw := range raws {
		customer, err := NormalizeCustomer(raw)
		if err != nil {
			config.LogWarn(logger, "shopsync", "NormalizeCustomers", "dropping record", err)
			continue
		}
		customers = append(customers, customer)
	}
	return customers
}

func parseDecimal(value string) decimal.Decimal {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseTime(value string) time.Time {
	if t := utils.ParseOptionalTime(value); t != nil {
		return *t
	}
	return time.Time{}
}

func normalizeFinancialStatus(value string) models.FinancialStatus {
	switch models.FinancialStatus(strings.ToLower(strings.TrimSpace(value))) {
	case models.FinancialStatusAuthorized:
		return models.FinancialStatusAuthorized
	case models.FinancialStatusPaid:
		return models.FinancialStatusPaid
	case models.FinancialStatusPartiallyPaid:
		return models.FinancialStatusPartiallyPaid
	case models.FinancialStatusRefunded:
		return models.FinancialStatusRefunded
	case models.FinancialStatusPartiallyRefunded:
		return models.FinancialStatusPartiallyRefunded
	case models.FinancialStatusVoided:
		return models.FinancialStatusVoided
	default:
		return models.FinancialStatusPending
	}
}

func normalizeFulfillmentStatus(value string) models.FulfillmentStatus {
	switch models.FulfillmentStatus(strings.ToLower(strings.TrimSpace(value))) {
	case models.FulfillmentStatusFulfilled:
		return models.FulfillmentStatusFulfilled
	case models.FulfillmentStatusPartial:
		return models.FulfillmentStatusPartial
	default:
		return models.FulfillmentStatusUnfulfilled
	}
}
