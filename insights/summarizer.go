package insights

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/mmdatafocus/insights_backend/config"
	"github.com/mmdatafocus/insights_backend/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summarize renders one InsightSummary per domain from a computed bundle.
// Urgency here is authoritative; downstream consumers must not recompute it.
func Summarize(bundle *models.InsightBundle, tuning config.InsightTuning) []*models.InsightSummary {
	r := renderer{
		tuning:  tuning,
		printer: message.NewPrinter(language.English),
		unit:    currencyUnit(bundle.Sales.Currency),
	}

	summaries := make([]*models.InsightSummary, 0, len(models.AllInsightDomains))
	for _, domain := range models.AllInsightDomains {
		var summary *models.InsightSummary
		switch domain {
		case models.InsightDomainRevenue:
			summary = r.revenue(bundle)
		case models.InsightDomainCustomer:
			summary = r.customer(bundle)
		case models.InsightDomainOperations:
			summary = r.operations(bundle)
		}
		summary.Id = uuid.NewString()
		summary.BusinessId = bundle.BusinessId
		summary.BundleId = bundle.Id
		summary.Domain = domain
		summary.IsActive = true
		summaries = append(summaries, summary)
	}
	return summaries
}

type renderer struct {
	tuning  config.InsightTuning
	printer *message.Printer
	unit    currency.Unit
}

func (r renderer) revenue(bundle *models.InsightBundle) *models.InsightSummary {
	sales := bundle.Sales

	var text string
	if sales.OrderCount == 0 {
		text = fmt.Sprintf("No sales were recorded in the last %d days; revenue insights are unavailable until new orders arrive.", bundle.Timeframe.Days())
	} else {
		text = fmt.Sprintf("Revenue over the last %d days was %s across %d orders, %s %s from the previous period. Average order value was %s.",
			bundle.Timeframe.Days(),
			r.money(sales.Revenue),
			sales.OrderCount,
			growthWord(sales.RevenueGrowth),
			r.percent(math.Abs(sales.RevenueGrowth)),
			r.money(sales.AvgOrderValue),
		)
		if len(bundle.TopProducts) > 0 {
			text += fmt.Sprintf(" Top seller: %s.", bundle.TopProducts[0].Title)
		}
	}

	keyPoints := []string{
		"Revenue: " + r.money(sales.Revenue),
		fmt.Sprintf("Orders: %d", sales.OrderCount),
		"Average order value: " + r.money(sales.AvgOrderValue),
		"Revenue growth: " + r.signedPercent(sales.RevenueGrowth),
		"Order growth: " + r.signedPercent(sales.OrderGrowth),
	}
	if len(bundle.TopProducts) > 0 {
		top := bundle.TopProducts[0]
		keyPoints = append(keyPoints, fmt.Sprintf("Top product: %s (%s revenue)", top.Title, r.money(top.Revenue)))
	}

	var recommendations []string
	if sales.RevenueGrowth < 0 {
		recommendations = append(recommendations, "Revenue is down versus the previous period; consider a promotional push or a targeted discount campaign.")
	}
	if sales.OrderCount > 0 && sales.AvgOrderValue.InexactFloat64() < r.tuning.LowAvgOrderValue {
		recommendations = append(recommendations, fmt.Sprintf("Average order value is below %s; add upsells, bundles or a free-shipping threshold to raise basket size.", r.money(decimal.NewFromFloat(r.tuning.LowAvgOrderValue))))
	}

	return &models.InsightSummary{
		Summary:         text,
		KeyPoints:       keyPoints,
		Recommendations: recommendations,
		Urgency:         revenueUrgency(sales.RevenueGrowth, r.tuning),
	}
}

func (r renderer) customer(bundle *models.InsightBundle) *models.InsightSummary {
	customers := bundle.Customers

	var text string
	if customers.TotalCustomers == 0 {
		text = "No customer data is available for this period yet."
	} else {
		text = fmt.Sprintf("Your store has %d customers, %d of them new in the last %d days. %s of customers made repeat purchases and churn stands at %s. Average customer lifetime value is %s.",
			customers.TotalCustomers,
			customers.NewCustomers,
			bundle.Timeframe.Days(),
			r.percent(customers.RepeatCustomerRate),
			r.percent(customers.ChurnRate),
			r.money(customers.CustomerLifetimeValue),
		)
	}

	keyPoints := []string{
		fmt.Sprintf("Total customers: %d", customers.TotalCustomers),
		fmt.Sprintf("New customers: %d", customers.NewCustomers),
		"Repeat customer rate: " + r.percent(customers.RepeatCustomerRate),
		"Churn rate: " + r.percent(customers.ChurnRate),
		"Customer lifetime value: " + r.money(customers.CustomerLifetimeValue),
	}

	var recommendations []string
	if customers.TotalCustomers > 0 && customers.RepeatCustomerRate < r.tuning.LowRepeatRate {
		recommendations = append(recommendations, fmt.Sprintf("Repeat purchase rate is below %s; launch a loyalty program or post-purchase email flow to bring customers back.", r.percent(r.tuning.LowRepeatRate)))
	}

	return &models.InsightSummary{
		Summary:         text,
		KeyPoints:       keyPoints,
		Recommendations: recommendations,
		Urgency:         customerUrgency(customers, r.tuning),
	}
}

func (r renderer) operations(bundle *models.InsightBundle) *models.InsightSummary {
	fulfillment := bundle.Fulfillment
	inventory := bundle.Inventory
	outOfStock := len(inventory.OutOfStock)
	lowStock := len(inventory.LowStock)

	var text string
	if bundle.Sales.OrderCount == 0 && outOfStock == 0 && lowStock == 0 {
		text = "No operations data is available for this period yet."
	} else {
		text = fmt.Sprintf("Average fulfillment time was %.1f hours. %d orders (%s) are delayed beyond %.0f hours. %d variants are out of stock and %d are running low.",
			fulfillment.AvgFulfillmentHours,
			fulfillment.DelayedOrders,
			r.percent(fulfillment.DelayedRate),
			r.tuning.DelayedOrderHours,
			outOfStock,
			lowStock,
		)
	}

	keyPoints := []string{
		fmt.Sprintf("Average fulfillment time: %.1f hours", fulfillment.AvgFulfillmentHours),
		"Delayed order rate: " + r.percent(fulfillment.DelayedRate),
		"Refund rate: " + r.percent(fulfillment.RefundRate),
		fmt.Sprintf("Out-of-stock variants: %d", outOfStock),
		fmt.Sprintf("Low-stock variants: %d", lowStock),
	}

	var recommendations []string
	if fulfillment.DelayedRate > r.tuning.DelayedRateWarning {
		recommendations = append(recommendations, fmt.Sprintf("%s of orders are delayed; review the fulfillment process and carrier handoffs.", r.percent(fulfillment.DelayedRate)))
	}
	if lowStock > 0 {
		recommendations = append(recommendations, fmt.Sprintf("%d variants are below the stock threshold; reorder now to avoid stockouts.", lowStock))
	}

	return &models.InsightSummary{
		Summary:         text,
		KeyPoints:       keyPoints,
		Recommendations: recommendations,
		Urgency:         operationsUrgency(fulfillment.DelayedRate, outOfStock, lowStock, r.tuning),
	}
}

// Urgency boundaries are strict comparisons: the boundary value itself
// always lands in the less urgent bucket.

func revenueUrgency(revenueGrowth float64, tuning config.InsightTuning) models.UrgencyLevel {
	switch {
	case revenueGrowth < tuning.RevenueGrowthHighUrgency:
		return models.UrgencyHigh
	case revenueGrowth < tuning.RevenueGrowthMediumUrgency:
		return models.UrgencyMedium
	default:
		return models.UrgencyLow
	}
}

func customerUrgency(customers models.CustomerMetrics, tuning config.InsightTuning) models.UrgencyLevel {
	switch {
	case customers.ChurnRate > tuning.ChurnRateHighUrgency:
		return models.UrgencyHigh
	case customers.TotalCustomers > 0 && customers.RepeatCustomerRate < tuning.RepeatRateMediumUrgency:
		return models.UrgencyMedium
	default:
		return models.UrgencyLow
	}
}

func operationsUrgency(delayedRate float64, outOfStock, lowStock int, tuning config.InsightTuning) models.UrgencyLevel {
	switch {
	case delayedRate > tuning.DelayedRateHighUrgency || outOfStock > tuning.OutOfStockHighUrgency:
		return models.UrgencyHigh
	case delayedRate > tuning.DelayedRateMediumUrgency || lowStock > tuning.LowStockMediumUrgency:
		return models.UrgencyMedium
	default:
		return models.UrgencyLow
	}
}

func growthWord(growth float64) string {
	if growth < 0 {
		return "down"
	}
	return "up"
}

func currencyUnit(code string) currency.Unit {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return currency.USD
	}
	return unit
}

func (r renderer) money(amount decimal.Decimal) string {
	return r.printer.Sprintf("%v", currency.Symbol(r.unit.Amount(amount.InexactFloat64())))
}

func (r renderer) percent(value float64) string {
	return r.printer.Sprintf("%.1f%%", value)
}

func (r renderer) signedPercent(value float64) string {
	return r.printer.Sprintf("%+.1f%%", value)
}
