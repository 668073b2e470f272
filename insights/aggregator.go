package insights

import (
	"sort"
	"time"

	"github.com/mmdatafocus/insights_backend/config"
	"github.com/mmdatafocus/insights_backend/models"
	"github.com/mmdatafocus/insights_backend/utils"
	"github.com/shopspring/decimal"
)

// percentChange is the one growth formula used everywhere in this package.
// A zero baseline yields 0, never NaN or Inf.
func percentChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		return 0
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

func percentChangeInt(current, previous int) float64 {
	return percentChange(decimal.NewFromInt(int64(current)), decimal.NewFromInt(int64(previous)))
}

func ratePercent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func sumOrderTotals(orders []*models.Order) decimal.Decimal {
	revenue := decimal.Zero
	for _, order := range orders {
		revenue = revenue.Add(order.Total)
	}
	return revenue
}

// AggregateSales computes the point-in-time sales block plus growth deltas
// against the immediately preceding period of equal length.
func AggregateSales(current, previous []*models.Order) models.SalesSummary {
	revenue := sumOrderTotals(current)
	prevRevenue := sumOrderTotals(previous)
	orderCount := len(current)

	avgOrderValue := decimal.Zero
	if orderCount > 0 {
		avgOrderValue = revenue.Div(decimal.NewFromInt(int64(orderCount))).Round(2)
	}

	currency := ""
	for _, order := range current {
		if order.Currency != "" {
			currency = order.Currency
			break
		}
	}

	return models.SalesSummary{
		Revenue:       revenue,
		OrderCount:    orderCount,
		AvgOrderValue: avgOrderValue,
		RevenueGrowth: percentChange(revenue, prevRevenue),
		OrderGrowth:   percentChangeInt(orderCount, len(previous)),
		Currency:      currency,
	}
}

// RankTopProducts accumulates units and revenue per product across all line
// items of the current period, ranks by revenue descending and truncates.
// Ties break by product id ascending so the ranking is deterministic.
func RankTopProducts(orders []*models.Order, products []*models.Product, limit int) []models.ProductStat {
	titles := make(map[string]string, len(products))
	for _, product := range products {
		titles[product.Id] = product.Title
	}

	stats := map[string]*models.ProductStat{}
	for _, order := range orders {
		for _, li := range order.LineItems {
			if li.ProductId == "" {
				continue
			}
			stat := stats[li.ProductId]
			if stat == nil {
				title := titles[li.ProductId]
				if title == "" {
					title = li.Title
				}
				stat = &models.ProductStat{ProductId: li.ProductId, Title: title, Revenue: decimal.Zero}
				stats[li.ProductId] = stat
			}
			stat.UnitsSold += li.Quantity
			lineRevenue := li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity))).Sub(li.Discount)
			stat.Revenue = stat.Revenue.Add(lineRevenue)
		}
	}

	ranked := make([]models.ProductStat, 0, len(stats))
	for _, stat := range stats {
		ranked = append(ranked, *stat)
	}
	sort.Slice(ranked, func(i, j int) bool {
		cmp := ranked[i].Revenue.Cmp(ranked[j].Revenue)
		if cmp != 0 {
			return cmp > 0
		}
		return ranked[i].ProductId < ranked[j].ProductId
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func AggregateCustomers(customers []*models.Customer, orders []*models.Order, periodStart, asOf time.Time, tuning config.InsightTuning) models.CustomerMetrics {
	total := len(customers)

	newCustomers := 0
	for _, customer := range customers {
		if !customer.CreatedAt.Before(periodStart) && !customer.CreatedAt.After(asOf) {
			newCustomers++
		}
	}

	orderCounts := map[string]int{}
	for _, order := range orders {
		if order.CustomerId != "" {
			orderCounts[order.CustomerId]++
		}
	}
	returning := 0
	for _, count := range orderCounts {
		if count > 1 {
			returning++
		}
	}

	lifetimeValue := decimal.Zero
	if total > 0 {
		spent := decimal.Zero
		for _, customer := range customers {
			spent = spent.Add(customer.TotalSpent)
		}
		lifetimeValue = spent.Div(decimal.NewFromInt(int64(total))).Round(2)
	}

	churnCutoff := asOf.AddDate(0, 0, -tuning.ChurnWindowDays)
	churned := 0
	for _, customer := range customers {
		if customer.LastOrderAt == nil || customer.LastOrderAt.Before(churnCutoff) {
			churned++
		}
	}

	return models.CustomerMetrics{
		TotalCustomers:        total,
		NewCustomers:          newCustomers,
		ReturningCustomers:    returning,
		RepeatCustomerRate:    ratePercent(returning, total),
		CustomerLifetimeValue: lifetimeValue,
		ChurnRate:             ratePercent(churned, total),
	}
}

func AggregateFulfillment(orders []*models.Order, asOf time.Time, tuning config.InsightTuning) models.FulfillmentMetrics {
	total := len(orders)

	fulfilledCount := 0
	fulfillmentHours := 0.0
	delayed := 0
	returned := 0
	refunded := 0
	for _, order := range orders {
		if order.Fulfilled() && order.ProcessedAt != nil {
			fulfilledCount++
			fulfillmentHours += utils.HoursBetween(order.CreatedAt, *order.ProcessedAt)
		}
		if !order.Fulfilled() && !order.Cancelled() && asOf.Sub(order.CreatedAt).Hours() > tuning.DelayedOrderHours {
			delayed++
		}
		if order.FinancialStatus.Refunded() {
			refunded++
		}
		// Full refunds count as returns; partial refunds do not.
		if order.FinancialStatus == models.FinancialStatusRefunded {
			returned++
		}
	}

	avgHours := 0.0
	if fulfilledCount > 0 {
		avgHours = fulfillmentHours / float64(fulfilledCount)
	}

	return models.FulfillmentMetrics{
		AvgFulfillmentHours: avgHours,
		DelayedOrders:       delayed,
		DelayedRate:         ratePercent(delayed, total),
		ReturnRate:          ratePercent(returned, total),
		RefundRate:          ratePercent(refunded, total),
	}
}

// AggregateConversion computes the one measurable conversion number exactly
// and fills the rest with clearly-tagged industry-average fallbacks; the
// platform exposes no session or checkout data to measure them from.
func AggregateConversion(orders []*models.Order, tuning config.InsightTuning) models.ConversionMetrics {
	items := 0
	for _, order := range orders {
		items += order.ItemCount()
	}
	avgItems := 0.0
	if len(orders) > 0 {
		avgItems = float64(items) / float64(len(orders))
	}

	return models.ConversionMetrics{
		AvgItemsPerOrder:       avgItems,
		CartAbandonmentRate:    tuning.EstCartAbandonmentRate,
		CheckoutConversionRate: tuning.EstCheckoutConversionRate,
		BounceRate:             tuning.EstBounceRate,
		Estimated:              true,
	}
}
