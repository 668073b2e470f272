package insights

import (
	"strings"
	"testing"
	"time"

	"github.com/mmdatafocus/insights_backend/models"
	"github.com/shopspring/decimal"
)

func bundleWith(sales models.SalesSummary, customers models.CustomerMetrics, fulfillment models.FulfillmentMetrics, inventory models.InventoryAlerts) *models.InsightBundle {
	return &models.InsightBundle{
		Id:          "bundle-1",
		BusinessId:  "biz-1",
		StoreId:     "store-1",
		GeneratedAt: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
		Timeframe:   models.TimeframeMonth,
		Sales:       sales,
		Customers:   customers,
		Fulfillment: fulfillment,
		Inventory:   inventory,
	}
}

func summaryFor(t *testing.T, summaries []*models.InsightSummary, domain models.InsightDomain) *models.InsightSummary {
	t.Helper()
	for _, s := range summaries {
		if s.Domain == domain {
			return s
		}
	}
	t.Fatalf("no summary for domain %s", domain)
	return nil
}

func TestSummarize_OneSummaryPerDomainInOrder(t *testing.T) {
	bundle := bundleWith(models.SalesSummary{}, models.CustomerMetrics{}, models.FulfillmentMetrics{}, models.InventoryAlerts{})

	summaries := Summarize(bundle, testTuning())

	if len(summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(summaries))
	}
	for i, domain := range models.AllInsightDomains {
		s := summaries[i]
		if s.Domain != domain {
			t.Fatalf("position %d: expected domain %s, got %s", i, domain, s.Domain)
		}
		if s.Id == "" || s.BundleId != bundle.Id || s.BusinessId != bundle.BusinessId {
			t.Fatalf("summary %s not linked to bundle: %+v", domain, s)
		}
		if !s.IsActive {
			t.Fatalf("summary %s should be active", domain)
		}
	}
}

func TestRevenueUrgency_StrictBoundaries(t *testing.T) {
	cases := []struct {
		growth   float64
		expected models.UrgencyLevel
	}{
		{-20.01, models.UrgencyHigh},
		{-20, models.UrgencyMedium}, // boundary lands in the less urgent bucket
		{-10.01, models.UrgencyMedium},
		{-10, models.UrgencyLow},
		{0, models.UrgencyLow},
		{30, models.UrgencyLow},
	}
	for _, tc := range cases {
		if got := revenueUrgency(tc.growth, testTuning()); got != tc.expected {
			t.Fatalf("growth %v: expected %s, got %s", tc.growth, tc.expected, got)
		}
	}
}

func TestCustomerUrgency_ZeroCustomersStaysLow(t *testing.T) {
	// Repeat rate 0 on an empty store must not read as medium urgency.
	got := customerUrgency(models.CustomerMetrics{}, testTuning())
	if got != models.UrgencyLow {
		t.Fatalf("expected low for no customers, got %s", got)
	}
}

func TestCustomerUrgency_Boundaries(t *testing.T) {
	cases := []struct {
		metrics  models.CustomerMetrics
		expected models.UrgencyLevel
	}{
		{models.CustomerMetrics{TotalCustomers: 10, ChurnRate: 30.5}, models.UrgencyHigh},
		{models.CustomerMetrics{TotalCustomers: 10, ChurnRate: 30, RepeatCustomerRate: 50}, models.UrgencyLow},
		{models.CustomerMetrics{TotalCustomers: 10, RepeatCustomerRate: 14.9}, models.UrgencyMedium},
		{models.CustomerMetrics{TotalCustomers: 10, RepeatCustomerRate: 15}, models.UrgencyLow},
	}
	for i, tc := range cases {
		if got := customerUrgency(tc.metrics, testTuning()); got != tc.expected {
			t.Fatalf("case %d: expected %s, got %s", i, tc.expected, got)
		}
	}
}

func TestOperationsUrgency_Boundaries(t *testing.T) {
	cases := []struct {
		delayedRate float64
		outOfStock  int
		lowStock    int
		expected    models.UrgencyLevel
	}{
		{16, 0, 0, models.UrgencyHigh},
		{15, 0, 0, models.UrgencyMedium}, // boundary: not high, but above medium
		{9, 0, 0, models.UrgencyMedium},
		{8, 0, 0, models.UrgencyLow},
		{0, 6, 0, models.UrgencyHigh},
		{0, 5, 0, models.UrgencyLow},
		{0, 0, 4, models.UrgencyMedium},
		{0, 0, 3, models.UrgencyLow},
		{3, 0, 0, models.UrgencyLow},
	}
	for i, tc := range cases {
		if got := operationsUrgency(tc.delayedRate, tc.outOfStock, tc.lowStock, testTuning()); got != tc.expected {
			t.Fatalf("case %d: expected %s, got %s", i, tc.expected, got)
		}
	}
}

func TestSummarize_ZeroDataBundleIsAllLowUrgency(t *testing.T) {
	bundle := bundleWith(models.SalesSummary{}, models.CustomerMetrics{}, models.FulfillmentMetrics{}, models.InventoryAlerts{})

	summaries := Summarize(bundle, testTuning())

	for _, s := range summaries {
		if s.Urgency != models.UrgencyLow {
			t.Fatalf("domain %s: expected low urgency on empty data, got %s", s.Domain, s.Urgency)
		}
		if s.Summary == "" {
			t.Fatalf("domain %s: summary text must not be empty", s.Domain)
		}
	}
	revenue := summaryFor(t, summaries, models.InsightDomainRevenue)
	if !strings.Contains(revenue.Summary, "No sales were recorded") {
		t.Fatalf("expected the zero-data revenue template, got %q", revenue.Summary)
	}
}

func TestSummarize_GrowthWording(t *testing.T) {
	up := bundleWith(models.SalesSummary{
		Revenue:       decimal.NewFromInt(10000),
		OrderCount:    100,
		AvgOrderValue: decimal.NewFromInt(100),
		RevenueGrowth: 25,
		Currency:      "USD",
	}, models.CustomerMetrics{}, models.FulfillmentMetrics{}, models.InventoryAlerts{})

	revenue := summaryFor(t, Summarize(up, testTuning()), models.InsightDomainRevenue)
	if !strings.Contains(revenue.Summary, "up") {
		t.Fatalf("expected growth wording 'up', got %q", revenue.Summary)
	}

	down := bundleWith(models.SalesSummary{
		Revenue:       decimal.NewFromInt(8000),
		OrderCount:    50,
		AvgOrderValue: decimal.NewFromInt(160),
		RevenueGrowth: -15,
		Currency:      "USD",
	}, models.CustomerMetrics{}, models.FulfillmentMetrics{}, models.InventoryAlerts{})

	revenue = summaryFor(t, Summarize(down, testTuning()), models.InsightDomainRevenue)
	if !strings.Contains(revenue.Summary, "down") {
		t.Fatalf("expected growth wording 'down', got %q", revenue.Summary)
	}
	// The magnitude is rendered unsigned; "down" already carries the sign.
	if strings.Contains(revenue.Summary, "-15") {
		t.Fatalf("summary should not embed a negative percent, got %q", revenue.Summary)
	}
}

func TestSummarize_Recommendations(t *testing.T) {
	bundle := bundleWith(
		models.SalesSummary{
			Revenue:       decimal.NewFromInt(900),
			OrderCount:    30,
			AvgOrderValue: decimal.NewFromInt(30), // below 50
			RevenueGrowth: -5,                     // negative
			Currency:      "USD",
		},
		models.CustomerMetrics{TotalCustomers: 100, RepeatCustomerRate: 10}, // below 25
		models.FulfillmentMetrics{DelayedRate: 12},                          // above warning 5
		models.InventoryAlerts{LowStock: []models.StockAlert{{VariantId: "v-1", InventoryQuantity: 2}}},
	)

	summaries := Summarize(bundle, testTuning())

	revenue := summaryFor(t, summaries, models.InsightDomainRevenue)
	if len(revenue.Recommendations) != 2 {
		t.Fatalf("expected promo + upsell recommendations, got %v", revenue.Recommendations)
	}
	customer := summaryFor(t, summaries, models.InsightDomainCustomer)
	if len(customer.Recommendations) != 1 || !strings.Contains(customer.Recommendations[0], "loyalty") {
		t.Fatalf("expected a loyalty recommendation, got %v", customer.Recommendations)
	}
	operations := summaryFor(t, summaries, models.InsightDomainOperations)
	if len(operations.Recommendations) != 2 {
		t.Fatalf("expected fulfillment + reorder recommendations, got %v", operations.Recommendations)
	}
}

func TestSummarize_KeyPointsPresent(t *testing.T) {
	bundle := bundleWith(models.SalesSummary{
		Revenue:       decimal.NewFromInt(5000),
		OrderCount:    40,
		AvgOrderValue: decimal.NewFromInt(125),
		Currency:      "USD",
	}, models.CustomerMetrics{TotalCustomers: 20}, models.FulfillmentMetrics{}, models.InventoryAlerts{})
	bundle.TopProducts = []models.ProductStat{{ProductId: "p-1", Title: "Hoodie", Revenue: decimal.NewFromInt(900)}}

	summaries := Summarize(bundle, testTuning())

	revenue := summaryFor(t, summaries, models.InsightDomainRevenue)
	if len(revenue.KeyPoints) != 6 {
		t.Fatalf("expected 6 revenue key points including top product, got %d", len(revenue.KeyPoints))
	}
	if !strings.Contains(revenue.Summary, "Hoodie") {
		t.Fatalf("expected top seller in the summary, got %q", revenue.Summary)
	}
}
