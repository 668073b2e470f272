package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InsightBundle is the aggregate root produced by one pipeline run. A new
// bundle supersedes the previous one for the same business and timeframe;
// bundles are never mutated after generation.
type InsightBundle struct {
	Id          string             `json:"id"`
	BusinessId  string             `json:"business_id"`
	StoreId     string             `json:"store_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Timeframe   Timeframe          `json:"timeframe"`
	Sales       SalesSummary       `json:"sales"`
	TopProducts []ProductStat      `json:"top_products"`
	Customers   CustomerMetrics    `json:"customers"`
	Fulfillment FulfillmentMetrics `json:"fulfillment"`
	Conversion  ConversionMetrics  `json:"conversion"`
	Inventory   InventoryAlerts    `json:"inventory"`
	Trend       TrendBlock         `json:"trend"`
}

type SalesSummary struct {
	Revenue       decimal.Decimal `json:"revenue"`
	OrderCount    int             `json:"order_count"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
	RevenueGrowth float64         `json:"revenue_growth"`
	OrderGrowth   float64         `json:"order_growth"`
	Currency      string          `json:"currency"`
}

type ProductStat struct {
	ProductId string          `json:"product_id"`
	Title     string          `json:"title"`
	UnitsSold int             `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type CustomerMetrics struct {
	TotalCustomers        int             `json:"total_customers"`
	NewCustomers          int             `json:"new_customers"`
	ReturningCustomers    int             `json:"returning_customers"`
	RepeatCustomerRate    float64         `json:"repeat_customer_rate"`
	CustomerLifetimeValue decimal.Decimal `json:"customer_lifetime_value"`
	ChurnRate             float64         `json:"churn_rate"`
}

type FulfillmentMetrics struct {
	AvgFulfillmentHours float64 `json:"avg_fulfillment_hours"`
	DelayedOrders       int     `json:"delayed_orders"`
	DelayedRate         float64 `json:"delayed_rate"`
	ReturnRate          float64 `json:"return_rate"`
	RefundRate          float64 `json:"refund_rate"`
}

// ConversionMetrics: the commerce platform exposes no session or checkout
// data, so everything except AvgItemsPerOrder is an industry-average
// fallback. Estimated stays true until a real analytics source exists.
type ConversionMetrics struct {
	AvgItemsPerOrder       float64 `json:"avg_items_per_order"`
	CartAbandonmentRate    float64 `json:"cart_abandonment_rate"`
	CheckoutConversionRate float64 `json:"checkout_conversion_rate"`
	BounceRate             float64 `json:"bounce_rate"`
	Estimated              bool    `json:"estimated"`
}

type InventoryAlerts struct {
	LowStock          []StockAlert `json:"low_stock"`
	OutOfStock        []StockAlert `json:"out_of_stock"`
	LowStockThreshold int          `json:"low_stock_threshold"`
}

type StockAlert struct {
	ProductId         string  `json:"product_id"`
	VariantId         string  `json:"variant_id"`
	Title             string  `json:"title"`
	Sku               string  `json:"sku"`
	InventoryQuantity int     `json:"inventory_quantity"`
	ProjectedDaysLeft float64 `json:"projected_days_left"`
}

type TrendBlock struct {
	Direction     TrendDirection  `json:"direction"`
	ChangePercent float64         `json:"change_percent"`
	Daily         []PeriodPoint   `json:"daily"`
	Categories    []CategoryTrend `json:"categories"`
	Seasonal      []SeasonalPoint `json:"seasonal"`
}

type PeriodPoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type CategoryTrend struct {
	Category        string          `json:"category"`
	Revenue         decimal.Decimal `json:"revenue"`
	PreviousRevenue decimal.Decimal `json:"previous_revenue"`
	ChangePercent   float64         `json:"change_percent"`
	Direction       TrendDirection  `json:"direction"`
}

type SeasonalPoint struct {
	Month      string          `json:"month"`
	Revenue    decimal.Decimal `json:"revenue"`
	Multiplier float64         `json:"multiplier"`
	Note       string          `json:"note"`
}

// InsightSummary is the rendered, domain-scoped view of a bundle. Consumers
// treat Urgency as authoritative and must not recompute it.
type InsightSummary struct {
	Id              string        `json:"id"`
	BusinessId      string        `json:"business_id"`
	BundleId        string        `json:"bundle_id"`
	Domain          InsightDomain `json:"domain"`
	Summary         string        `json:"summary"`
	KeyPoints       []string      `json:"key_points"`
	Recommendations []string      `json:"recommendations"`
	Urgency         UrgencyLevel  `json:"urgency"`
	IsActive        bool          `json:"is_active"`
}
