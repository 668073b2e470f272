package insights

import (
	"sort"
	"time"

	"github.com/mmdatafocus/insights_backend/config"
	"github.com/mmdatafocus/insights_backend/models"
	"github.com/shopspring/decimal"
)

// ClassifyTrend applies the dead-band rule: a percent change inside
// +/- deadBand is stable. Every trend label in a bundle comes through here.
func ClassifyTrend(changePercent, deadBand float64) models.TrendDirection {
	switch {
	case changePercent > deadBand:
		return models.TrendIncreasing
	case changePercent < -deadBand:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

// AnalyzeTrend classifies the overall period direction, builds the daily
// revenue series, per-category trends against their own trailing baseline,
// and the seasonal month pattern.
func AnalyzeTrend(current, previous []*models.Order, products []*models.Product, tuning config.InsightTuning) models.TrendBlock {
	curRevenue := sumOrderTotals(current)
	prevRevenue := sumOrderTotals(previous)
	change := percentChange(curRevenue, prevRevenue)

	return models.TrendBlock{
		Direction:     ClassifyTrend(change, tuning.TrendDeadBandPercent),
		ChangePercent: change,
		Daily:         dailySeries(current),
		Categories:    categoryTrends(current, previous, products, tuning),
		Seasonal:      seasonalPattern(current, tuning),
	}
}

func dailySeries(orders []*models.Order) []models.PeriodPoint {
	byDay := map[string]*models.PeriodPoint{}
	for _, order := range orders {
		day := order.CreatedAt.UTC().Format("2006-01-02")
		point := byDay[day]
		if point == nil {
			point = &models.PeriodPoint{Date: day, Revenue: decimal.Zero}
			byDay[day] = point
		}
		point.Revenue = point.Revenue.Add(order.Total)
		point.Orders++
	}

	series := make([]models.PeriodPoint, 0, len(byDay))
	for _, point := range byDay {
		series = append(series, *point)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series
}

// categoryTrends attributes each line item's revenue to its product's
// category and classifies every category with the same dead-band rule
// against its own previous-period revenue.
func categoryTrends(current, previous []*models.Order, products []*models.Product, tuning config.InsightTuning) []models.CategoryTrend {
	categoryOf := make(map[string]string, len(products))
	for _, product := range products {
		categoryOf[product.Id] = product.ProductType
	}

	curByCategory := categoryRevenue(current, categoryOf)
	prevByCategory := categoryRevenue(previous, categoryOf)

	names := make([]string, 0, len(curByCategory))
	for name := range curByCategory {
		names = append(names, name)
	}
	for name := range prevByCategory {
		if _, seen := curByCategory[name]; !seen {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	trends := make([]models.CategoryTrend, 0, len(names))
	for _, name := range names {
		cur := curByCategory[name]
		prev := prevByCategory[name]
		change := percentChange(cur, prev)
		trends = append(trends, models.CategoryTrend{
			Category:        name,
			Revenue:         cur,
			PreviousRevenue: prev,
			ChangePercent:   change,
			Direction:       ClassifyTrend(change, tuning.TrendDeadBandPercent),
		})
	}
	return trends
}

func categoryRevenue(orders []*models.Order, categoryOf map[string]string) map[string]decimal.Decimal {
	revenue := map[string]decimal.Decimal{}
	for _, order := range orders {
		for _, li := range order.LineItems {
			category := categoryOf[li.ProductId]
			if category == "" {
				category = li.ProductType
			}
			if category == "" {
				category = "Uncategorized"
			}
			lineRevenue := li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity))).Sub(li.Discount)
			revenue[category] = revenue[category].Add(lineRevenue)
		}
	}
	return revenue
}

// seasonalPattern groups current-period revenue by calendar month and
// expresses each month as a multiplier over the earliest month in the
// window. The note is a coarse qualitative label, not a forecast.
func seasonalPattern(orders []*models.Order, tuning config.InsightTuning) []models.SeasonalPoint {
	type monthRevenue struct {
		start   time.Time
		revenue decimal.Decimal
	}
	byMonth := map[string]*monthRevenue{}
	for _, order := range orders {
		created := order.CreatedAt.UTC()
		key := created.Format("2006-Jan")
		m := byMonth[key]
		if m == nil {
			m = &monthRevenue{
				start:   time.Date(created.Year(), created.Month(), 1, 0, 0, 0, 0, time.UTC),
				revenue: decimal.Zero,
			}
			byMonth[key] = m
		}
		m.revenue = m.revenue.Add(order.Total)
	}

	keys := make([]string, 0, len(byMonth))
	for key := range byMonth {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return byMonth[keys[i]].start.Before(byMonth[keys[j]].start) })

	points := make([]models.SeasonalPoint, 0, len(keys))
	var baseline decimal.Decimal
	for i, key := range keys {
		m := byMonth[key]
		if i == 0 {
			baseline = m.revenue
		}
		multiplier := 0.0
		if !baseline.IsZero() {
			multiplier = m.revenue.Div(baseline).InexactFloat64()
		}
		note := "moderate"
		if m.revenue.InexactFloat64() >= tuning.SeasonalStrongRevenue {
			note = "strong"
		}
		points = append(points, models.SeasonalPoint{
			Month:      key,
			Revenue:    m.revenue,
			Multiplier: multiplier,
			Note:       note,
		})
	}
	return points
}
